package commands

import (
	"errors"
	"fmt"
	"io"
	"os"

	"hellchannel/internal/display"
	"hellchannel/internal/recommend"
	"hellchannel/lib/serviceutil"

	"github.com/spf13/cobra"
)

// exit code when neither live sources nor the snapshot had data
const exitUnavailable = 2

var (
	refresh bool
	output  string
)

func init() {
	rankCmd.Flags().BoolVar(&refresh, "refresh", false, "Scrape the sources now instead of reading the last snapshot.")
	rankCmd.Flags().StringVarP(&output, "output", "o", "table", "Output format, one of table or json.")
	rootCmd.AddCommand(rankCmd)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}

var rankCmd = &cobra.Command{
	Use:   "rank [--refresh] [--output table|json]",
	Short: "Ranks channels by the number of item drops reported on them.",
	Args:  cobra.NoArgs,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		if output != "table" && output != "json" {
			return fmt.Errorf("unknown output format '%s'", output)
		}
		return nil
	},
	Run: func(cmd *cobra.Command, args []string) {
		a, err := newApp(cmd)
		if err != nil {
			serviceutil.Fatal("failed to initialize", err)
		}

		adapters, err := a.cfg.Adapters(a.tel)
		if err != nil {
			a.Close()
			serviceutil.Fatal("failed to create source adapters", err)
		}

		coordinator := recommend.NewCoordinator(
			adapters,
			a.stores,
			a.cfg.CoordinatorOptions(),
			a.time,
			a.tel,
		)

		mode := recommend.ModeCached
		if refresh {
			mode = recommend.ModeLive
		}
		result, err := coordinator.Recommend(cmd.Context(), mode)
		unavailable := errors.Is(err, recommend.ErrUnavailable)

		out := cmd.OutOrStdout()
		switch {
		case output == "json":
			err = display.JSON(out, result)
		case unavailable:
			err = display.RenderUnavailable(out, result)
		default:
			err = display.Table(out, result, display.Options{
				Color:     isTerminal(out),
				GearWidth: 60,
			})
		}
		a.Close()
		if err != nil {
			serviceutil.Fatal("failed to write output", err)
		}
		if unavailable {
			os.Exit(exitUnavailable)
		}
	},
}
