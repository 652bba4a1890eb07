package telemetry

import (
	"context"
	"fmt"
	"os"
	"runtime"

	"github.com/shirou/gopsutil/v4/process"
)

// ReportProcessStats reports the resource usage of the current process
// through tel, commands call it once before exiting.
func ReportProcessStats(ctx context.Context, tel API) error {
	proc, err := process.NewProcessWithContext(ctx, int32(os.Getpid()))
	if err != nil {
		return fmt.Errorf("inspect process: %w", err)
	}

	memory, err := proc.MemoryInfoWithContext(ctx)
	if err != nil {
		return fmt.Errorf("read memory usage: %w", err)
	}
	times, err := proc.TimesWithContext(ctx)
	if err != nil {
		return fmt.Errorf("read cpu times: %w", err)
	}

	tel.ReportCount("process.rss_mb", int64(memory.RSS/1_000_000))
	tel.ReportCount("process.cpu_ms", int64((times.User+times.System)*1000))
	tel.ReportCount("process.goroutines", int64(runtime.NumGoroutine()))
	return nil
}
