package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"hellchannel/internal/display"
	"hellchannel/internal/drops"
	"hellchannel/internal/snapshot"
	"hellchannel/lib/serviceutil"

	"github.com/spf13/cobra"
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Inspects and seeds the published drop snapshot.",
}

var showJSON bool

func init() {
	snapshotShowCmd.Flags().BoolVar(&showJSON, "json", false, "Print the snapshot in its stored JSON form.")
	snapshotCmd.AddCommand(snapshotShowCmd)
	snapshotCmd.AddCommand(snapshotImportCmd)
	rootCmd.AddCommand(snapshotCmd)
}

var snapshotShowCmd = &cobra.Command{
	Use:   "show [--json]",
	Short: "Lists the drop events of the latest snapshot.",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		a, err := newApp(cmd)
		if err != nil {
			serviceutil.Fatal("failed to initialize", err)
		}
		defer a.Close()

		ctx, cancel := context.WithTimeout(cmd.Context(), a.cfg.Timeout())
		defer cancel()

		records, err := a.stores.FetchLatest(ctx)
		if err != nil {
			a.Close()
			serviceutil.Fatal("failed to read snapshot", err)
		}
		events, stats := drops.Normalize(records, a.stores.Name())
		if stats.Skipped > 0 {
			slog.Warn("skipped snapshot records without a channel", "count", stats.Skipped)
		}

		if !showJSON {
			display.Events(cmd.OutOrStdout(), events)
			return
		}
		data, err := snapshot.Encode(events)
		if err != nil {
			a.Close()
			serviceutil.Fatal("failed to encode snapshot", err)
		}
		cmd.OutOrStdout().Write(data)
	},
}

var snapshotImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Publishes a JSON file of drop records as the latest snapshot.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		a, err := newApp(cmd)
		if err != nil {
			serviceutil.Fatal("failed to initialize", err)
		}
		defer a.Close()

		events, err := importFile(args[0])
		if err != nil {
			a.Close()
			serviceutil.Fatal("failed to import", err)
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), a.cfg.PublishTimeout())
		defer cancel()

		err = a.stores.Publish(ctx, events)
		if err != nil {
			a.Close()
			serviceutil.Fatal("failed to publish snapshot", err)
		}
		slog.Info("published snapshot", "events", len(events), "stores", a.stores.Len())
	},
}

func importFile(path string) ([]drops.DropEvent, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	records, err := snapshot.Decode(path, data)
	if err != nil {
		return nil, err
	}
	events, stats := drops.Normalize(records, "import")
	if len(events) == 0 {
		return nil, fmt.Errorf("%s: none of the %d records has a channel", path, stats.Input)
	}
	if stats.Skipped > 0 {
		slog.Warn("skipped records without a channel", "count", stats.Skipped)
	}
	return events, nil
}
