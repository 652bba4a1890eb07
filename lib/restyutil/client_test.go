package restyutil

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"hellchannel/internal/components/telemetry"
	"hellchannel/internal/fetcherr"

	"github.com/stretchr/testify/require"
)

func TestGetClassifiesErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ok":
			w.Write([]byte("fine"))
		case "/slow":
			time.Sleep(200 * time.Millisecond)
			w.Write([]byte("late"))
		default:
			w.WriteHeader(http.StatusServiceUnavailable)
		}
	}))
	defer server.Close()

	tel := telemetry.NewTestAPI()
	client := NewClient(ClientOptions{Timeout: 50 * time.Millisecond}, tel)
	ctx := context.Background()

	res, err := Get(ctx, client.R(), "test.get", server.URL+"/ok")
	require.NoError(t, err)
	require.Equal(t, "fine", res.String())

	_, err = Get(ctx, client.R(), "test.get", server.URL+"/down")
	require.True(t, fetcherr.Is(err, fetcherr.HttpStatus))
	var fe *fetcherr.Error
	require.ErrorAs(t, err, &fe)
	require.Equal(t, http.StatusServiceUnavailable, fe.StatusCode)

	_, err = Get(ctx, client.R(), "test.get", server.URL+"/slow")
	require.True(t, fetcherr.Is(err, fetcherr.Network))

	require.True(t, tel.HasReport("debug", "resty.request"))
}

func TestGetUnreachable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	link := server.URL
	server.Close()

	client := NewClient(ClientOptions{Timeout: time.Second}, telemetry.NewTestAPI())
	_, err := Get(context.Background(), client.R(), "test.get", link)
	require.True(t, fetcherr.Is(err, fetcherr.Network))
}

func TestDumpResponses(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("x-test", "1")
		w.Write([]byte("body"))
	}))
	defer server.Close()

	dir := filepath.Join(t.TempDir(), "dump")
	client := NewClient(ClientOptions{DumpDir: dir}, telemetry.NewTestAPI())

	_, err := Get(context.Background(), client.R(), "test.get", server.URL)
	require.NoError(t, err)

	contents, err := os.ReadFile(filepath.Join(dir, "0001.txt"))
	require.NoError(t, err)
	require.Contains(t, string(contents), "X-Test: 1")
	require.Contains(t, string(contents), "body")
}
