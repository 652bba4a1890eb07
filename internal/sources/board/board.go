// Package board scrapes community boards where players post their drops.
//
// Boards differ only in markup, so everything site-specific lives in Config:
// a row selector picks one post per element, and channel / gear / link are
// read from selectors (and optionally regexes) relative to the row.
package board

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"time"

	"hellchannel/internal/components/assert"
	"hellchannel/internal/components/telemetry"
	"hellchannel/internal/drops"
	"hellchannel/internal/fetcherr"
	"hellchannel/lib/htmlutil"
	"hellchannel/lib/restyutil"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/time/rate"
)

const (
	report_adapter_fetch      = "adapter.fetch"
	report_adapter_parse_page = "adapter.parse-page"
)

var tracer = otel.Tracer("hellchannel.internal.sources.board")

type Config struct {
	ID  string `json:"id"`
	URL string `json:"url"`
	// Pages is the number of list pages to read, page n is requested by
	// setting PageParam=n on URL. 0 or 1 reads URL as is.
	Pages     int    `json:"pages"`
	PageParam string `json:"page_param"`

	Rows    string `json:"rows"`
	Channel string `json:"channel"`
	Gear    string `json:"gear"`
	Link    string `json:"link"`

	// ChannelPattern extracts the channel from the channel text (or the
	// whole row text when Channel is empty), ex. `(?:중천|마계|백해) ?Ch\. ?\d+`.
	// The first capture group is used when the pattern has one.
	ChannelPattern string `json:"channel_pattern"`
	// GearPattern extracts the gear name, the first capture group is used
	// when present.
	GearPattern string `json:"gear_pattern"`

	RequestsPerSecond float64 `json:"requests_per_second"`
	CloudflareBypass  bool    `json:"cloudflare_bypass"`
	DumpDir           string  `json:"dump_dir"`
}

type Adapter struct {
	id      string
	base    *url.URL
	cfg     Config
	http    *resty.Client
	limiter *rate.Limiter

	rows           cascadia.Selector
	channelPattern *regexp.Regexp
	gearPattern    *regexp.Regexp

	tel telemetry.API
}

// New validates cfg and creates an adapter whose requests are bounded by timeout.
func New(cfg Config, timeout time.Duration, tel telemetry.API) (*Adapter, error) {
	assert.NotNil(tel)

	if cfg.ID == "" {
		return nil, fmt.Errorf("board: id is required")
	}
	base, err := url.Parse(cfg.URL)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("board(%s): invalid url %q", cfg.ID, cfg.URL)
	}
	if cfg.Rows == "" {
		return nil, fmt.Errorf("board(%s): rows selector is required", cfg.ID)
	}
	rows, err := cascadia.Compile(cfg.Rows)
	if err != nil {
		return nil, fmt.Errorf("board(%s): rows selector: %w", cfg.ID, err)
	}
	for _, field := range [][2]string{{"channel", cfg.Channel}, {"gear", cfg.Gear}, {"link", cfg.Link}} {
		if field[1] == "" {
			continue
		}
		_, err := cascadia.Compile(field[1])
		if err != nil {
			return nil, fmt.Errorf("board(%s): %s selector: %w", cfg.ID, field[0], err)
		}
	}
	if cfg.Channel == "" && cfg.ChannelPattern == "" {
		return nil, fmt.Errorf("board(%s): one of channel or channel_pattern is required", cfg.ID)
	}

	a := &Adapter{
		id:   cfg.ID,
		base: base,
		cfg:  cfg,
		rows: rows,
	}

	if cfg.ChannelPattern != "" {
		a.channelPattern, err = regexp.Compile(cfg.ChannelPattern)
		if err != nil {
			return nil, fmt.Errorf("board(%s): channel_pattern: %w", cfg.ID, err)
		}
	}
	if cfg.GearPattern != "" {
		a.gearPattern, err = regexp.Compile(cfg.GearPattern)
		if err != nil {
			return nil, fmt.Errorf("board(%s): gear_pattern: %w", cfg.ID, err)
		}
	}
	if a.cfg.PageParam == "" {
		a.cfg.PageParam = "page"
	}
	if a.cfg.Link == "" {
		a.cfg.Link = "a"
	}

	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = 2
	}
	// burst >= 1 so a single page is never delayed
	a.limiter = rate.NewLimiter(rate.Limit(rps), 1)

	a.tel = telemetry.NewScopedAPI(fmt.Sprintf("board(%s)", cfg.ID), tel)
	a.http = restyutil.NewClient(restyutil.ClientOptions{
		Timeout:          timeout,
		CloudflareBypass: cfg.CloudflareBypass,
		DumpDir:          cfg.DumpDir,
	}, a.tel)

	return a, nil
}

func (a *Adapter) ID() string {
	return a.id
}

func (a *Adapter) pageURL(page int) string {
	if a.cfg.Pages <= 1 {
		return a.base.String()
	}
	link := *a.base
	query := link.Query()
	query.Set(a.cfg.PageParam, strconv.Itoa(page))
	link.RawQuery = query.Encode()
	return link.String()
}

// Fetch reads every configured page. A failure on the first page fails the
// fetch, a failure on a later page ends pagination early.
func (a *Adapter) Fetch(ctx context.Context) ([]drops.RawRecord, error) {
	ctx, span := tracer.Start(ctx, "Fetch")
	defer span.End()
	span.SetAttributes(attribute.String("adapter", a.id))

	op := fmt.Sprintf("board(%s).fetch", a.id)
	pages := max(a.cfg.Pages, 1)

	var records []drops.RawRecord
	for page := 1; page <= pages; page++ {
		link := a.pageURL(page)

		err := a.limiter.Wait(ctx)
		if err != nil {
			err = fetcherr.New(fetcherr.Network, op, err)
		}
		var pageRecords []drops.RawRecord
		if err == nil {
			pageRecords, err = a.fetchPage(ctx, op, link)
		}
		if err != nil {
			if page == 1 {
				a.tel.ReportBroken(report_adapter_fetch, err, link)
				span.RecordError(err)
				span.SetStatus(codes.Error, err.Error())
				return nil, err
			}
			a.tel.ReportWarning(report_adapter_fetch, err, link, page)
			break
		}
		records = append(records, pageRecords...)
	}

	span.SetAttributes(attribute.Int("records", len(records)))
	a.tel.ReportCount("adapter.records", int64(len(records)))
	return records, nil
}

func (a *Adapter) fetchPage(ctx context.Context, op, link string) ([]drops.RawRecord, error) {
	res, err := restyutil.Get(ctx, a.http.R(), op, link)
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewBuffer(res.Body()))
	if err != nil {
		return nil, fetcherr.New(fetcherr.ParseStructure, op, fmt.Errorf("parse html: %w", err))
	}

	rows := doc.FindMatcher(a.rows)
	if rows.Length() == 0 {
		return nil, fetcherr.New(
			fetcherr.ParseStructure, op,
			fmt.Errorf("selector %q matched nothing", a.cfg.Rows),
		)
	}

	pageUrl := a.base
	if res.RawResponse != nil && res.RawResponse.Request != nil {
		pageUrl = res.RawResponse.Request.URL
	}

	records := make([]drops.RawRecord, 0, rows.Length())
	rows.Each(func(_ int, row *goquery.Selection) {
		records = append(records, a.parseRow(pageUrl, row))
	})
	a.tel.ReportDebug(report_adapter_parse_page, link, len(records))
	return records, nil
}

func (a *Adapter) parseRow(pageUrl *url.URL, row *goquery.Selection) drops.RawRecord {
	channelText := htmlutil.SelectionText(row)
	if a.cfg.Channel != "" {
		channelText = htmlutil.SelectionText(row.Find(a.cfg.Channel))
	}
	channel := extract(a.channelPattern, channelText)

	gearText := ""
	if a.cfg.Gear != "" {
		gearText = htmlutil.SelectionText(row.Find(a.cfg.Gear))
	} else if a.gearPattern != nil {
		gearText = htmlutil.SelectionText(row)
	}
	gear := extract(a.gearPattern, gearText)

	record := drops.RawRecord{
		"channel": channel,
		"gear":    gear,
	}

	anchors := htmlutil.GetAnchors(pageUrl, row.Find(a.cfg.Link))
	if len(anchors) == 0 && goquery.NodeName(row) == "a" {
		anchors = htmlutil.GetAnchors(pageUrl, row)
	}
	if len(anchors) > 0 {
		record["link"] = anchors[0].Url.String()
	}
	return record
}

// extract returns the first capture group of pattern in text, or the whole
// match when the pattern has no groups. A nil pattern returns text.
func extract(pattern *regexp.Regexp, text string) string {
	if pattern == nil {
		return text
	}
	match := pattern.FindStringSubmatch(text)
	switch {
	case len(match) == 0:
		return ""
	case len(match) > 1 && match[1] != "":
		return match[1]
	}
	return match[0]
}
