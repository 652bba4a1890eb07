package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestScopedAPI(t *testing.T) {
	inner := NewTestAPI()
	scoped := NewScopedAPI("coordinator", inner)

	scoped.ReportBroken("adapter.fetch", "boom")
	scoped.ReportWarning("snapshot.publish")
	scoped.ReportCount("normalize.skipped", 3)

	broken := inner.Reports("broken")
	require.Len(t, broken, 1)
	require.Equal(t, "coordinator: adapter.fetch", broken[0].ID)
	require.Equal(t, []any{"boom"}, broken[0].Params)

	require.True(t, inner.HasReport("warning", "snapshot.publish"))
	require.False(t, inner.HasReport("warning", "adapter.fetch"))

	count, err := inner.Count("normalize.skipped")
	require.NoError(t, err)
	require.Equal(t, int64(3), count)

	_, err = inner.Count("missing")
	require.Error(t, err)
}

func TestSetupWithoutEndpoints(t *testing.T) {
	tel, err := Setup(context.Background(), "test:telemetry", Config{})
	require.NoError(t, err)
	require.Nil(t, tel.TracerProvider)
	require.Nil(t, tel.MeterProvider)
	require.NoError(t, tel.Shutdown(context.Background()))
}

func TestReportProcessStats(t *testing.T) {
	tel := NewTestAPI()
	err := ReportProcessStats(context.Background(), tel)
	require.NoError(t, err)

	goroutines, err := tel.Count("process.goroutines")
	require.NoError(t, err)
	require.Positive(t, goroutines)

	rss, err := tel.Count("process.rss_mb")
	require.NoError(t, err)
	require.GreaterOrEqual(t, rss, int64(0))
}
