// Package config is the hellchannel configuration file and the wiring that
// turns it into adapters, snapshot stores and a coordinator.
package config

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"hellchannel/internal/components/chrono"
	"hellchannel/internal/components/telemetry"
	"hellchannel/internal/recommend"
	"hellchannel/internal/snapshot"
	"hellchannel/internal/sources"
	"hellchannel/internal/sources/board"
	"hellchannel/internal/sources/feed"
	"hellchannel/lib/configuration"
)

const (
	defaultTimeoutSeconds      = 10
	defaultSimilarityThreshold = 0.92
	defaultSnapshotFile        = "snapshot.json"
)

type SourcesConfig struct {
	Board []board.Config `json:"board"`
	Feed  []feed.Config  `json:"feed"`
}

// SnapshotConfig enables one store per non-empty field. Stores are read in
// the order file, sqlite, libsql, http and published to all at once.
type SnapshotConfig struct {
	File            string `json:"file"`
	Sqlite          string `json:"sqlite"`
	LibsqlUrl       string `json:"libsql_url"`
	LibsqlAuthToken string `json:"libsql_auth_token"`
	HttpUrl         string `json:"http_url"`
	HttpToken       string `json:"http_token"`
}

func (c SnapshotConfig) empty() bool {
	return c.File == "" && c.Sqlite == "" && c.LibsqlUrl == "" && c.HttpUrl == ""
}

type Config struct {
	TimeoutSeconds        int     `json:"timeout_seconds"`
	PublishTimeoutSeconds int     `json:"publish_timeout_seconds"`
	SimilarityThreshold   float64 `json:"similarity_threshold"`

	Sources   SourcesConfig    `json:"sources"`
	Snapshot  SnapshotConfig   `json:"snapshot"`
	Telemetry telemetry.Config `json:"telemetry"`
}

func (c *Config) ApplyDefaults() {
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = defaultTimeoutSeconds
	}
	if c.PublishTimeoutSeconds <= 0 {
		c.PublishTimeoutSeconds = c.TimeoutSeconds
	}
	if c.SimilarityThreshold == 0 {
		c.SimilarityThreshold = defaultSimilarityThreshold
	}
	if c.Snapshot.empty() {
		c.Snapshot.File = defaultSnapshotFile
	}
}

func (c Config) Validate() error {
	if c.SimilarityThreshold < 0 || c.SimilarityThreshold > 1 {
		return fmt.Errorf("similarity_threshold must be within [0, 1], got %v", c.SimilarityThreshold)
	}
	if c.Snapshot.HttpUrl == "" && c.Snapshot.HttpToken != "" {
		return fmt.Errorf("snapshot: http_token is set without http_url")
	}
	if c.Snapshot.LibsqlUrl == "" && c.Snapshot.LibsqlAuthToken != "" {
		return fmt.Errorf("snapshot: libsql_auth_token is set without libsql_url")
	}
	return nil
}

func (c Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

func (c Config) PublishTimeout() time.Duration {
	return time.Duration(c.PublishTimeoutSeconds) * time.Second
}

// Adapters creates every configured adapter, boards first, each kind in file
// order. This is also the order their events are ranked in.
func (c Config) Adapters(tel telemetry.API) ([]sources.Adapter, error) {
	var adapters []sources.Adapter
	seen := map[string]struct{}{}
	register := func(adapter sources.Adapter) error {
		if _, ok := seen[adapter.ID()]; ok {
			return fmt.Errorf("duplicate source id '%s'", adapter.ID())
		}
		seen[adapter.ID()] = struct{}{}
		adapters = append(adapters, adapter)
		return nil
	}

	for i, cfg := range c.Sources.Board {
		adapter, err := board.New(cfg, c.Timeout(), tel)
		if err != nil {
			return nil, fmt.Errorf("sources.board[%d]: %w", i, err)
		}
		if err := register(adapter); err != nil {
			return nil, err
		}
	}
	for i, cfg := range c.Sources.Feed {
		adapter, err := feed.New(cfg, c.Timeout(), tel)
		if err != nil {
			return nil, fmt.Errorf("sources.feed[%d]: %w", i, err)
		}
		if err := register(adapter); err != nil {
			return nil, err
		}
	}
	return adapters, nil
}

// Stores holds the opened snapshot stores and the databases behind them.
type Stores struct {
	snapshot.Multi
	dbs []*sql.DB
}

func (s Stores) Close() error {
	var errs []error
	for _, db := range s.dbs {
		errs = append(errs, db.Close())
	}
	return errors.Join(errs...)
}

// Stores opens every configured snapshot store.
func (c Config) Stores(time chrono.API, tel telemetry.API) (Stores, error) {
	var (
		stores []snapshot.Store
		out    Stores
	)

	if c.Snapshot.File != "" {
		stores = append(stores, snapshot.NewFileStore(c.Snapshot.File))
	}

	databases := []struct {
		name string
		db   configuration.Database
	}{
		{name: "sqlite", db: configuration.Database{File: c.Snapshot.Sqlite}},
		{name: "libsql", db: configuration.Database{Url: c.Snapshot.LibsqlUrl, AuthToken: c.Snapshot.LibsqlAuthToken}},
	}
	for _, database := range databases {
		if !database.db.Enabled() {
			continue
		}
		db, err := database.db.OpenDB(snapshot.Schema)
		if err != nil {
			return Stores{}, errors.Join(fmt.Errorf("snapshot.%s: %w", database.name, err), out.Close())
		}
		out.dbs = append(out.dbs, db)
		stores = append(stores, snapshot.NewSQLStore(database.name, db, time))
	}

	if c.Snapshot.HttpUrl != "" {
		stores = append(stores, snapshot.NewHTTPStore(c.Snapshot.HttpUrl, c.Snapshot.HttpToken, c.Timeout(), tel))
	}

	out.Multi = snapshot.NewMulti(tel, stores...)
	return out, nil
}

func (c Config) CoordinatorOptions() recommend.Options {
	return recommend.Options{
		Timeout:             c.Timeout(),
		PublishTimeout:      c.PublishTimeout(),
		SimilarityThreshold: c.SimilarityThreshold,
	}
}
