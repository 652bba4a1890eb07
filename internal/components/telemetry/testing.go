package telemetry

import (
	"fmt"
	"strings"
	"sync"
)

// Report is a single call recorded by TestAPI.
type Report struct {
	Level  string
	ID     string
	Params []any
	Count  int64
}

// TestAPI records every report so tests can assert on them.
type TestAPI struct {
	mutex   sync.Mutex
	reports []Report
}

func NewTestAPI() *TestAPI {
	return &TestAPI{}
}

func (t *TestAPI) push(r Report) {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	t.reports = append(t.reports, r)
}

func (t *TestAPI) ReportBroken(id string, params ...any) {
	t.push(Report{Level: "broken", ID: id, Params: params})
}

func (t *TestAPI) ReportWarning(id string, params ...any) {
	t.push(Report{Level: "warning", ID: id, Params: params})
}

func (t *TestAPI) ReportDebug(msg string, params ...any) {
	t.push(Report{Level: "debug", ID: msg, Params: params})
}

func (t *TestAPI) ReportCount(id string, count int64) {
	t.push(Report{Level: "count", ID: id, Count: count})
}

// Reports returns a copy of every report with the given level.
func (t *TestAPI) Reports(level string) []Report {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	var out []Report
	for _, r := range t.reports {
		if r.Level == level {
			out = append(out, r)
		}
	}
	return out
}

// HasReport returns true if a report with the given level has an id ending with suffix.
func (t *TestAPI) HasReport(level, suffix string) bool {
	for _, r := range t.Reports(level) {
		if strings.HasSuffix(r.ID, suffix) {
			return true
		}
	}
	return false
}

// Count returns the most recent count reported under an id ending with suffix.
func (t *TestAPI) Count(suffix string) (int64, error) {
	reports := t.Reports("count")
	for i := len(reports) - 1; i >= 0; i-- {
		if strings.HasSuffix(reports[i].ID, suffix) {
			return reports[i].Count, nil
		}
	}
	return 0, fmt.Errorf("no count reported for %s", suffix)
}
