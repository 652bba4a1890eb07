// Package telemetry is how components report what happens to them.
//
// Components never log directly, they report through an API so tests can
// swap in TestAPI and assert on what was reported.
package telemetry

import (
	"fmt"
)

// API reports component health and counters.
//
// Ids name the component that reported, not the line of code: `adapter.fetch`
// for any failure while a board adapter fetches, not `adapter.fetch-page-2`.
// Details go into params or into the wrapped error. Ids are lowercase,
// `<type>.<method>`, with dashes inside multi-word methods. Package or
// instance prefixes come from ScopedAPI.
type API interface {
	// ReportBroken reports a failure someone has to fix, ex. a source whose
	// markup no longer matches its selectors.
	ReportBroken(id string, params ...any)
	// ReportWarning reports a failure that was recovered from, ex. a source
	// that timed out while the snapshot was used instead.
	ReportWarning(id string, params ...any)
	// ReportDebug is only visible with verbose logging.
	ReportDebug(msg string, params ...any)
	// ReportCount records the value of a counter at this moment. Values are
	// samples over time, they are not summed.
	ReportCount(id string, count int64)
}

// ScopedAPI prefixes every id or message with a namespace, ex. "board(forum)".
type ScopedAPI struct {
	namespace string
	inner     API
}

func NewScopedAPI(namespace string, inner API) ScopedAPI {
	return ScopedAPI{namespace: namespace, inner: inner}
}

func (s ScopedAPI) scope(id string) string {
	return fmt.Sprintf("%s: %s", s.namespace, id)
}

func (s ScopedAPI) ReportBroken(id string, params ...any) {
	s.inner.ReportBroken(s.scope(id), params...)
}

func (s ScopedAPI) ReportWarning(id string, params ...any) {
	s.inner.ReportWarning(s.scope(id), params...)
}

func (s ScopedAPI) ReportDebug(msg string, params ...any) {
	s.inner.ReportDebug(s.scope(msg), params...)
}

func (s ScopedAPI) ReportCount(id string, count int64) {
	s.inner.ReportCount(s.scope(id), count)
}
