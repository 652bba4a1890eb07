// Package sources defines how drop reports are pulled from community sites.
package sources

import (
	"context"

	"hellchannel/internal/drops"
)

// Adapter scrapes one site and returns raw, site-shaped records.
//
// Fetch failures should be *fetcherr.Error values of kind Network,
// HttpStatus or ParseStructure.
type Adapter interface {
	ID() string
	Fetch(ctx context.Context) ([]drops.RawRecord, error)
}

// Static is an Adapter that returns fixed records, it is mostly useful in tests
// and for replaying a saved batch.
type Static struct {
	Name    string
	Records []drops.RawRecord
	Err     error
}

func (s Static) ID() string {
	return s.Name
}

func (s Static) Fetch(ctx context.Context) ([]drops.RawRecord, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	out := make([]drops.RawRecord, len(s.Records))
	copy(out, s.Records)
	return out, nil
}
