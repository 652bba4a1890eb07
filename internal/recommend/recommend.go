// Package recommend decides where drop data comes from for one invocation
// and turns it into a channel ranking.
//
// A live refresh fetches every registered adapter and publishes the result
// as the new snapshot. Without a refresh, or when every adapter fails, the
// last published snapshot is used instead. When the snapshot is unavailable
// too, Recommend returns ErrUnavailable and no ranking.
package recommend

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"hellchannel/internal/components/assert"
	"hellchannel/internal/components/chrono"
	"hellchannel/internal/components/telemetry"
	"hellchannel/internal/drops"
	"hellchannel/internal/fetcherr"
	"hellchannel/internal/snapshot"
	"hellchannel/internal/sources"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const (
	report_coordinator_live     = "coordinator.live"
	report_coordinator_adapter  = "coordinator.adapter"
	report_coordinator_fallback = "coordinator.fallback"
	report_coordinator_publish  = "coordinator.publish"
)

var tracer = otel.Tracer("hellchannel.internal.recommend")

// ErrUnavailable means neither a live source nor the snapshot produced data.
var ErrUnavailable = errors.New("no drop data available")

type Mode int

const (
	// ModeCached ranks the last published snapshot.
	ModeCached Mode = iota
	// ModeLive scrapes the sources and falls back to the snapshot on failure.
	ModeLive
)

type State int

const (
	LiveRequested State = iota + 1
	Fallback
	Unavailable
)

func (s State) String() string {
	switch s {
	case LiveRequested:
		return "LIVE_REQUESTED"
	case Fallback:
		return "FALLBACK"
	case Unavailable:
		return "UNAVAILABLE"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

type Origin int

const (
	OriginNone Origin = iota
	OriginLive
	OriginSnapshot
)

func (o Origin) String() string {
	switch o {
	case OriginLive:
		return "live"
	case OriginSnapshot:
		return "snapshot"
	}
	return "none"
}

// Result is the outcome of one Recommend call.
type Result struct {
	// State is the state the coordinator ended in, LiveRequested means the
	// live fetch succeeded.
	State  State
	Origin Origin
	// Stale is set whenever the ranking is built from the snapshot.
	Stale bool

	Rankings []drops.ChannelRanking
	// Similar lists channel labels that look like spellings of one channel.
	Similar []drops.SimilarPair
	Events  int
	Skipped int
	// Sources lists the adapters whose data made it into the ranking.
	Sources []string

	// LiveErr holds the adapter failures, set even when the live fetch
	// partially succeeded.
	LiveErr error
	// PublishErr is set if publishing the live batch failed.
	PublishErr error
	// SnapshotErr is set if the snapshot fetch failed.
	SnapshotErr error

	GeneratedAt time.Time
}

// Available returns false if the result carries no ranking at all, an empty
// ranking from a successful fetch is available.
func (r Result) Available() bool {
	return r.State != Unavailable
}

type Options struct {
	// Timeout bounds each adapter fetch and the snapshot fetch.
	Timeout time.Duration
	// PublishTimeout bounds publishing, it defaults to Timeout.
	PublishTimeout time.Duration
	// SimilarityThreshold enables near-duplicate channel detection when
	// positive.
	SimilarityThreshold float64
}

// Coordinator is the source availability coordinator.
type Coordinator struct {
	adapters []sources.Adapter
	store    snapshot.Store
	opts     Options
	time     chrono.API
	tel      telemetry.API
}

func NewCoordinator(
	adapters []sources.Adapter,
	store snapshot.Store,
	opts Options,
	time chrono.API,
	tel telemetry.API,
) Coordinator {
	assert.NotNil(store)
	assert.NotNil(time)
	assert.NotNil(tel)
	assert.Positive(opts.Timeout)

	if opts.PublishTimeout <= 0 {
		opts.PublishTimeout = opts.Timeout
	}

	return Coordinator{
		adapters: adapters,
		store:    store,
		opts:     opts,
		time:     time,
		tel:      telemetry.NewScopedAPI("recommend", tel),
	}
}

// Recommend produces a ranking for the given mode. The only error it returns
// wraps ErrUnavailable, every other failure is reported on the Result.
func (c Coordinator) Recommend(ctx context.Context, mode Mode) (Result, error) {
	ctx, span := tracer.Start(ctx, "Recommend")
	defer span.End()

	result := Result{GeneratedAt: c.time.Now()}

	if mode == ModeLive {
		result.State = LiveRequested
		events, batch, err := c.fetchLive(ctx)
		result.LiveErr = err
		if batch.ok() {
			result.Origin = OriginLive
			result.Sources = batch.sources
			result.Skipped = batch.skipped
			result.PublishErr = c.publish(ctx, events)
			c.rank(&result, events)
			span.SetAttributes(attribute.String("origin", result.Origin.String()))
			return result, nil
		}
		c.tel.ReportWarning(report_coordinator_live, err)
	}

	result.State = Fallback
	events, skipped, err := c.fetchSnapshot(ctx)
	if err != nil {
		result.State = Unavailable
		result.SnapshotErr = err
		c.tel.ReportBroken(report_coordinator_fallback, err)
		span.SetStatus(codes.Error, ErrUnavailable.Error())
		return result, fmt.Errorf("%w: %w", ErrUnavailable, errors.Join(result.LiveErr, err))
	}

	result.Origin = OriginSnapshot
	result.Stale = true
	result.Skipped = skipped
	result.Sources = []string{c.store.Name()}
	c.rank(&result, events)
	span.SetAttributes(attribute.String("origin", result.Origin.String()))
	return result, nil
}

func (c Coordinator) rank(result *Result, events []drops.DropEvent) {
	result.Events = len(events)
	result.Rankings = drops.Rank(events)
	if c.opts.SimilarityThreshold > 0 {
		result.Similar = drops.SimilarChannels(result.Rankings, c.opts.SimilarityThreshold)
	}
	c.tel.ReportCount("ranking.channels", int64(len(result.Rankings)))
	c.tel.ReportCount("ranking.events", int64(len(events)))
}

type liveBatch struct {
	sources []string
	skipped int
}

func (b liveBatch) ok() bool {
	return len(b.sources) > 0
}

type adapterResult struct {
	records []drops.RawRecord
	err     error
}

// fetchLive fetches every adapter concurrently, each failure is independent.
// The events of successful adapters are concatenated in registration order.
func (c Coordinator) fetchLive(ctx context.Context) ([]drops.DropEvent, liveBatch, error) {
	ctx, span := tracer.Start(ctx, "fetchLive")
	defer span.End()

	if len(c.adapters) == 0 {
		return nil, liveBatch{}, fmt.Errorf("no source adapter registered")
	}

	results := make([]adapterResult, len(c.adapters))
	wg := sync.WaitGroup{}
	for i, adapter := range c.adapters {
		wg.Add(1)
		go func() {
			defer wg.Done()

			fetchCtx, cancel := context.WithTimeout(ctx, c.opts.Timeout)
			defer cancel()

			records, err := adapter.Fetch(fetchCtx)
			results[i] = adapterResult{records: records, err: err}
		}()
	}
	wg.Wait()

	var (
		events []drops.DropEvent
		batch  liveBatch
		errs   []error
	)
	for i, adapter := range c.adapters {
		res := results[i]
		if res.err != nil {
			c.tel.ReportWarning(report_coordinator_adapter, adapter.ID(), describe(res.err), res.err)
			errs = append(errs, fmt.Errorf("%s: %w", adapter.ID(), res.err))
			continue
		}

		normalized, stats := drops.Normalize(res.records, adapter.ID())
		if stats.Skipped > 0 {
			c.tel.ReportCount(fmt.Sprintf("normalize.skipped.%s", adapter.ID()), int64(stats.Skipped))
		}
		events = append(events, normalized...)
		batch.sources = append(batch.sources, adapter.ID())
		batch.skipped += stats.Skipped
	}

	span.SetAttributes(
		attribute.Int("adapters.ok", len(batch.sources)),
		attribute.Int("adapters.failed", len(errs)),
	)
	return events, batch, errors.Join(errs...)
}

// publish hands a live batch to the snapshot store. Empty batches are not
// published so the last useful snapshot stays available for fallback.
func (c Coordinator) publish(ctx context.Context, events []drops.DropEvent) error {
	if len(events) == 0 {
		c.tel.ReportDebug("skip publishing empty batch")
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, c.opts.PublishTimeout)
	defer cancel()

	err := c.store.Publish(ctx, events)
	if err != nil {
		c.tel.ReportWarning(report_coordinator_publish, err)
	}
	return err
}

func (c Coordinator) fetchSnapshot(ctx context.Context) ([]drops.DropEvent, int, error) {
	ctx, cancel := context.WithTimeout(ctx, c.opts.Timeout)
	defer cancel()

	records, err := c.store.FetchLatest(ctx)
	if err != nil {
		return nil, 0, err
	}

	events, stats := drops.Normalize(records, c.store.Name())
	if len(events) == 0 {
		return nil, stats.Skipped, fetcherr.New(
			fetcherr.Empty,
			fmt.Sprintf("%s.fetch-latest", c.store.Name()),
			fmt.Errorf("no usable records in snapshot, %d skipped", stats.Skipped),
		)
	}
	return events, stats.Skipped, nil
}

// describe is a short human readable cause for diagnostics.
func describe(err error) string {
	switch {
	case fetcherr.Is(err, fetcherr.Network):
		return "source unreachable"
	case fetcherr.Is(err, fetcherr.HttpStatus):
		return "source returned an error status"
	case fetcherr.Is(err, fetcherr.ParseStructure):
		return "source markup changed"
	case fetcherr.Is(err, fetcherr.NotFound):
		return "nothing published yet"
	case fetcherr.Is(err, fetcherr.Decode):
		return "snapshot is malformed"
	case fetcherr.Is(err, fetcherr.Empty):
		return "snapshot is empty"
	}
	return "source unavailable"
}

// Describe explains why a result is stale or unavailable, it returns "" for
// a fresh live result.
func Describe(result Result) string {
	switch {
	case result.State == Unavailable && result.LiveErr != nil:
		return fmt.Sprintf("live: %s, snapshot: %s", describe(result.LiveErr), describe(result.SnapshotErr))
	case result.State == Unavailable:
		return fmt.Sprintf("snapshot: %s", describe(result.SnapshotErr))
	case result.Stale && result.LiveErr != nil:
		return fmt.Sprintf("using cached data, live: %s", describe(result.LiveErr))
	case result.Stale:
		return "using cached data"
	}
	return ""
}
