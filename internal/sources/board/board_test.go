package board

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"hellchannel/internal/components/telemetry"
	"hellchannel/internal/drops"
	"hellchannel/internal/fetcherr"

	"github.com/stretchr/testify/require"
)

const listPage = `<html><body>
<table class="board">
  <tr class="post">
    <td class="subject"><a href="/view/101">[득템] 중천 Ch.70 에서 혼돈 목걸이 먹었어요</a></td>
    <td class="item">혼돈 목걸이</td>
  </tr>
  <tr class="post">
    <td class="subject"><a href="/view/102">마계 Ch. 6 천재지변 반지!!</a></td>
    <td class="item"></td>
  </tr>
  <tr class="post">
    <td class="subject"><a href="/view/103">오늘 운이 없네요</a></td>
    <td class="item">없음</td>
  </tr>
</table>
</body></html>`

func newTestAdapter(t *testing.T, cfg Config) *Adapter {
	t.Helper()
	if cfg.ID == "" {
		cfg.ID = "test"
	}
	if cfg.Rows == "" {
		cfg.Rows = "tr.post"
	}
	if cfg.Channel == "" && cfg.ChannelPattern == "" {
		cfg.Channel = "td.subject"
		cfg.ChannelPattern = `(?:중천|마계|백해) ?Ch\. ?\d+`
	}
	cfg.RequestsPerSecond = 100
	adapter, err := New(cfg, time.Second, telemetry.NewTestAPI())
	require.NoError(t, err)
	return adapter
}

func TestFetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("content-type", "text/html; charset=utf-8")
		fmt.Fprint(w, listPage)
	}))
	defer server.Close()

	adapter := newTestAdapter(t, Config{
		URL:  server.URL + "/list",
		Gear: "td.item",
	})
	require.Equal(t, "test", adapter.ID())

	records, err := adapter.Fetch(context.Background())
	require.NoError(t, err)
	require.Equal(t, []drops.RawRecord{
		{"channel": "중천 Ch.70", "gear": "혼돈 목걸이", "link": server.URL + "/view/101"},
		{"channel": "마계 Ch. 6", "gear": "", "link": server.URL + "/view/102"},
		{"channel": "", "gear": "없음", "link": server.URL + "/view/103"},
	}, records)

	// rows without a channel are left for the normalizer to drop
	events, stats := drops.Normalize(records, adapter.ID())
	require.Len(t, events, 2)
	require.Equal(t, 1, stats.Skipped)
	require.Equal(t, drops.UnidentifiedGear, events[1].Gear)
	require.Equal(t, "test", events[0].Source)
}

func TestFetchGearPattern(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, listPage)
	}))
	defer server.Close()

	adapter := newTestAdapter(t, Config{
		URL:            server.URL,
		Rows:           "td.subject a",
		ChannelPattern: `(?:중천|마계|백해) ?Ch\. ?\d+`,
		GearPattern:    `(혼돈 목걸이|천재지변 반지)`,
	})

	records, err := adapter.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 3)
	require.Equal(t, "중천 Ch.70", records[0]["channel"])
	require.Equal(t, "혼돈 목걸이", records[0]["gear"])
	require.Equal(t, "천재지변 반지", records[1]["gear"])
	require.Equal(t, server.URL+"/view/102", records[1]["link"])
	require.Equal(t, "", records[2]["gear"])
}

func TestFetchPages(t *testing.T) {
	var requests atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		switch r.URL.Query().Get("p") {
		case "1", "2":
			fmt.Fprint(w, listPage)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	adapter := newTestAdapter(t, Config{
		URL:       server.URL + "/list?board=drops",
		Pages:     4,
		PageParam: "p",
	})

	records, err := adapter.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 6)
	// page 3 fails, page 4 is never requested
	require.Equal(t, int32(3), requests.Load())
}

func TestFetchFailures(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/empty":
			fmt.Fprint(w, `<html><body><p>점검 중입니다</p></body></html>`)
		case "/error":
			w.WriteHeader(http.StatusBadGateway)
		}
	}))
	defer server.Close()

	adapter := newTestAdapter(t, Config{URL: server.URL + "/empty"})
	_, err := adapter.Fetch(context.Background())
	require.True(t, fetcherr.Is(err, fetcherr.ParseStructure), err)

	adapter = newTestAdapter(t, Config{URL: server.URL + "/error"})
	_, err = adapter.Fetch(context.Background())
	require.True(t, fetcherr.Is(err, fetcherr.HttpStatus), err)

	closed := httptest.NewServer(http.NotFoundHandler())
	closed.Close()
	adapter = newTestAdapter(t, Config{URL: closed.URL})
	_, err = adapter.Fetch(context.Background())
	require.True(t, fetcherr.Is(err, fetcherr.Network), err)
}

func TestNewValidation(t *testing.T) {
	tel := telemetry.NewTestAPI()
	testCases := []Config{
		{URL: "https://example.com", Rows: "tr", Channel: "td"},
		{ID: "x", URL: "not a url", Rows: "tr", Channel: "td"},
		{ID: "x", URL: "https://example.com", Channel: "td"},
		{ID: "x", URL: "https://example.com", Rows: "tr[", Channel: "td"},
		{ID: "x", URL: "https://example.com", Rows: "tr"},
		{ID: "x", URL: "https://example.com", Rows: "tr", ChannelPattern: "("},
		{ID: "x", URL: "https://example.com", Rows: "tr", Channel: "td", Gear: "td["},
	}
	for _, cfg := range testCases {
		_, err := New(cfg, time.Second, tel)
		require.Error(t, err, cfg)
	}
}

func TestExtract(t *testing.T) {
	require.Equal(t, "text", extract(nil, "text"))
	require.Equal(t, "", extract(nil, ""))
}
