package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"hellchannel/internal/components/chrono"
	"hellchannel/internal/components/telemetry"
	"hellchannel/internal/config"
	"hellchannel/lib/configutil"

	"github.com/spf13/cobra"
)

// app is everything a command needs, built from the configuration file.
type app struct {
	cfg    config.Config
	time   chrono.API
	tel    telemetry.API
	otel   telemetry.Telemetry
	stores config.Stores
}

func readConfig(cmd *cobra.Command) (config.Config, error) {
	if cmd.Flags().Changed("config") {
		return configutil.ReadConfig[config.Config](configPath)
	}

	cfg, path, err := configutil.ReadRecursively[config.Config](configPath)
	if errors.Is(err, os.ErrNotExist) {
		slog.Warn("no configuration file found, using defaults", "name", configPath)
		cfg = config.Config{}
		cfg.ApplyDefaults()
		return cfg, nil
	}
	if err != nil {
		return cfg, err
	}
	slog.Debug("read configuration", "path", path)
	return cfg, nil
}

func newApp(cmd *cobra.Command) (*app, error) {
	cfg, err := readConfig(cmd)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	err = cfg.Validate()
	if err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	otel, err := telemetry.Setup(cmd.Context(), "hellchannel", cfg.Telemetry)
	if err != nil {
		return nil, fmt.Errorf("setup telemetry: %w", err)
	}

	clock, err := chrono.NewStandardImpl()
	if err != nil {
		return nil, fmt.Errorf("load timezone: %w", err)
	}
	tel := telemetry.NewSlogAPI()

	stores, err := cfg.Stores(clock, tel)
	if err != nil {
		return nil, fmt.Errorf("open snapshot stores: %w", err)
	}

	return &app{
		cfg:    cfg,
		time:   clock,
		tel:    tel,
		otel:   otel,
		stores: stores,
	}, nil
}

func (a *app) Close() {
	err := a.stores.Close()
	if err != nil {
		slog.Warn("close snapshot stores", "err", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err = telemetry.ReportProcessStats(ctx, a.tel)
	if err != nil {
		slog.Debug("process stats unavailable", "err", err)
	}
	err = a.otel.Shutdown(ctx)
	if err != nil {
		slog.Warn("flush telemetry", "err", err)
	}
}
