package config

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"hellchannel/internal/components/chrono"
	"hellchannel/internal/components/telemetry"
	"hellchannel/internal/drops"
	"hellchannel/internal/sources/board"
	"hellchannel/internal/sources/feed"
	"hellchannel/lib/configutil"
	"hellchannel/lib/testutil"

	"github.com/stretchr/testify/require"
)

const sample = `{
	// seconds
	timeout_seconds: 5,
	sources: {
		board: [
			{
				id: "drops-board",
				url: "https://example.com/board",
				pages: 2,
				rows: "table.list tr.post",
				channel: "td.channel",
				gear: "td.subject",
			},
		],
		feed: [
			{ id: "drops-api", url: "https://example.com/api/drops", path: "data.items" },
		],
	},
	snapshot: { file: "snapshot.json" },
}`

func TestReadConfig(t *testing.T) {
	path := testutil.WriteFile(t, "config.json5", sample)

	cfg, err := configutil.ReadConfig[Config](path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	require.Equal(t, 5*time.Second, cfg.Timeout())
	require.Equal(t, 5*time.Second, cfg.PublishTimeout())
	require.Equal(t, defaultSimilarityThreshold, cfg.SimilarityThreshold)
	require.Equal(t, "snapshot.json", cfg.Snapshot.File)
	require.Len(t, cfg.Sources.Board, 1)
	require.Equal(t, 2, cfg.Sources.Board[0].Pages)
	require.Equal(t, "data.items", cfg.Sources.Feed[0].Path)

	options := cfg.CoordinatorOptions()
	require.Equal(t, 5*time.Second, options.Timeout)
	require.Equal(t, defaultSimilarityThreshold, options.SimilarityThreshold)
}

func TestApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()

	require.Equal(t, defaultTimeoutSeconds, cfg.TimeoutSeconds)
	require.Equal(t, defaultTimeoutSeconds, cfg.PublishTimeoutSeconds)
	require.Equal(t, defaultSnapshotFile, cfg.Snapshot.File)

	cfg = Config{Snapshot: SnapshotConfig{HttpUrl: "https://example.com/snapshot"}}
	cfg.ApplyDefaults()
	require.Empty(t, cfg.Snapshot.File)
}

func TestValidate(t *testing.T) {
	testCases := []struct {
		name string
		cfg  Config
	}{
		{name: "threshold", cfg: Config{SimilarityThreshold: 1.5}},
		{name: "http token", cfg: Config{Snapshot: SnapshotConfig{HttpToken: "secret"}}},
		{name: "libsql token", cfg: Config{Snapshot: SnapshotConfig{LibsqlAuthToken: "secret"}}},
	}
	for _, test := range testCases {
		t.Run(test.name, func(t *testing.T) {
			require.Error(t, test.cfg.Validate())
		})
	}
}

func TestAdapters(t *testing.T) {
	tel := telemetry.NewTestAPI()
	cfg := Config{
		Sources: SourcesConfig{
			Board: []board.Config{{
				ID:      "board",
				URL:     "https://example.com/board",
				Rows:    "tr",
				Channel: "td.channel",
			}},
			Feed: []feed.Config{{ID: "feed", URL: "https://example.com/feed"}},
		},
	}
	cfg.ApplyDefaults()

	adapters, err := cfg.Adapters(tel)
	require.NoError(t, err)
	require.Len(t, adapters, 2)
	require.Equal(t, "board", adapters[0].ID())
	require.Equal(t, "feed", adapters[1].ID())

	cfg.Sources.Feed[0].ID = "board"
	_, err = cfg.Adapters(tel)
	require.ErrorContains(t, err, "duplicate source id 'board'")

	cfg.Sources.Feed = nil
	cfg.Sources.Board[0].Rows = ""
	_, err = cfg.Adapters(tel)
	require.ErrorContains(t, err, "sources.board[0]")
}

func TestStores(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	tel := telemetry.NewTestAPI()

	cfg := Config{Snapshot: SnapshotConfig{
		File:   filepath.Join(dir, "snapshot.json"),
		Sqlite: filepath.Join(dir, "snapshot.db"),
	}}
	cfg.ApplyDefaults()

	stores, err := cfg.Stores(chrono.FixedImpl{Time: time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)}, tel)
	require.NoError(t, err)
	t.Cleanup(func() { stores.Close() })
	require.Equal(t, 2, stores.Len())

	events := []drops.DropEvent{
		{Channel: "중천 Ch.70", Gear: "A", Category: "중천", Source: "board"},
	}
	require.NoError(t, stores.Publish(ctx, events))

	records, err := stores.FetchLatest(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, "중천 Ch.70", records[0]["채널"])
}
