// Package snapshot persists the last normalized batch of drop events so a
// later invocation can rank without reaching any live source.
package snapshot

import (
	"context"
	"errors"
	"fmt"

	"hellchannel/internal/components/telemetry"
	"hellchannel/internal/drops"

	"go.opentelemetry.io/otel"
)

const (
	report_store_publish      = "store.publish"
	report_store_fetch_latest = "store.fetch-latest"
)

var tracer = otel.Tracer("hellchannel.internal.snapshot")

// Store publishes snapshots and fetches the latest one.
//
// FetchLatest failures should be *fetcherr.Error values of kind Network,
// NotFound, Decode or Empty.
type Store interface {
	Name() string
	Publish(ctx context.Context, events []drops.DropEvent) error
	FetchLatest(ctx context.Context) ([]drops.RawRecord, error)
}

// Multi publishes to every store and fetches from the first store that
// succeeds, in the order given.
type Multi struct {
	stores []Store
	tel    telemetry.API
}

func NewMulti(tel telemetry.API, stores ...Store) Multi {
	return Multi{
		stores: stores,
		tel:    telemetry.NewScopedAPI("snapshot", tel),
	}
}

func (m Multi) Name() string {
	return "multi"
}

func (m Multi) Len() int {
	return len(m.stores)
}

// Publish attempts every store even if one fails, the returned error joins
// every failure.
func (m Multi) Publish(ctx context.Context, events []drops.DropEvent) error {
	ctx, span := tracer.Start(ctx, "Multi.Publish")
	defer span.End()

	if len(m.stores) == 0 {
		return fmt.Errorf("snapshot: no store configured")
	}

	var errs []error
	for _, store := range m.stores {
		err := store.Publish(ctx, events)
		if err != nil {
			m.tel.ReportWarning(report_store_publish, err, store.Name())
			errs = append(errs, fmt.Errorf("%s: %w", store.Name(), err))
			continue
		}
		m.tel.ReportDebug("published snapshot", store.Name(), len(events))
	}
	return errors.Join(errs...)
}

func (m Multi) FetchLatest(ctx context.Context) ([]drops.RawRecord, error) {
	ctx, span := tracer.Start(ctx, "Multi.FetchLatest")
	defer span.End()

	if len(m.stores) == 0 {
		return nil, fmt.Errorf("snapshot: no store configured")
	}

	var errs []error
	for _, store := range m.stores {
		records, err := store.FetchLatest(ctx)
		if err == nil {
			return records, nil
		}
		m.tel.ReportWarning(report_store_fetch_latest, err, store.Name())
		errs = append(errs, err)
	}
	return nil, errors.Join(errs...)
}
