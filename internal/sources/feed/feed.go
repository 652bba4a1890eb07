// Package feed reads drop reports from sources that publish JSON instead of markup.
package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"hellchannel/internal/components/assert"
	"hellchannel/internal/components/telemetry"
	"hellchannel/internal/drops"
	"hellchannel/internal/fetcherr"
	"hellchannel/lib/restyutil"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const report_adapter_fetch = "adapter.fetch"

var tracer = otel.Tracer("hellchannel.internal.sources.feed")

type Config struct {
	ID  string `json:"id"`
	URL string `json:"url"`
	// Path is a dot separated path to the array of records inside the
	// response, empty means the response itself is the array.
	Path  string `json:"path"`
	Token string `json:"token"`
}

type Adapter struct {
	id   string
	link string
	path []string
	http *resty.Client
	tel  telemetry.API
}

func New(cfg Config, timeout time.Duration, tel telemetry.API) (*Adapter, error) {
	assert.NotNil(tel)

	if cfg.ID == "" {
		return nil, fmt.Errorf("feed: id is required")
	}
	parsed, err := url.Parse(cfg.URL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("feed(%s): invalid url %q", cfg.ID, cfg.URL)
	}

	var path []string
	if cfg.Path != "" {
		path = strings.Split(cfg.Path, ".")
	}

	tel = telemetry.NewScopedAPI(fmt.Sprintf("feed(%s)", cfg.ID), tel)
	client := restyutil.NewClient(restyutil.ClientOptions{Timeout: timeout}, tel)
	client.SetHeader("accept", "application/json")
	if cfg.Token != "" {
		client.SetAuthToken(cfg.Token)
	}

	return &Adapter{
		id:   cfg.ID,
		link: cfg.URL,
		path: path,
		http: client,
		tel:  tel,
	}, nil
}

func (a *Adapter) ID() string {
	return a.id
}

func (a *Adapter) Fetch(ctx context.Context) ([]drops.RawRecord, error) {
	ctx, span := tracer.Start(ctx, "Fetch")
	defer span.End()
	span.SetAttributes(attribute.String("adapter", a.id))

	op := fmt.Sprintf("feed(%s).fetch", a.id)

	records, err := a.fetch(ctx, op)
	if err != nil {
		a.tel.ReportBroken(report_adapter_fetch, err, a.link)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	a.tel.ReportCount("adapter.records", int64(len(records)))
	return records, nil
}

func (a *Adapter) fetch(ctx context.Context, op string) ([]drops.RawRecord, error) {
	res, err := restyutil.Get(ctx, a.http.R(), op, a.link)
	if err != nil {
		return nil, err
	}

	var body any
	err = json.Unmarshal(res.Body(), &body)
	if err != nil {
		return nil, fetcherr.New(fetcherr.ParseStructure, op, fmt.Errorf("decode: %w", err))
	}

	for _, key := range a.path {
		obj, ok := body.(map[string]any)
		if !ok {
			return nil, fetcherr.New(fetcherr.ParseStructure, op, fmt.Errorf("expected object at %q", key))
		}
		body, ok = obj[key]
		if !ok {
			return nil, fetcherr.New(fetcherr.ParseStructure, op, fmt.Errorf("missing key %q", key))
		}
	}

	list, ok := body.([]any)
	if !ok {
		return nil, fetcherr.New(fetcherr.ParseStructure, op, fmt.Errorf("expected an array of records"))
	}

	records := make([]drops.RawRecord, 0, len(list))
	for i, item := range list {
		obj, ok := item.(map[string]any)
		if !ok {
			a.tel.ReportWarning(report_adapter_fetch, fmt.Errorf("record %d is not an object", i))
			continue
		}
		records = append(records, drops.RawRecord(obj))
	}
	return records, nil
}
