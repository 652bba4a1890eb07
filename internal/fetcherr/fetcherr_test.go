package fetcherr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIs(t *testing.T) {
	network := New(Network, "board(a).fetch", errors.New("connection refused"))
	status := Status("board(b).fetch", 503)

	require.True(t, Is(network, Network))
	require.False(t, Is(network, HttpStatus))
	require.True(t, Is(fmt.Errorf("live: %w", status), HttpStatus))

	joined := errors.Join(network, fmt.Errorf("wrapped: %w", status))
	require.True(t, Is(joined, Network))
	require.True(t, Is(joined, HttpStatus))
	require.False(t, Is(joined, Decode))
	require.False(t, Is(nil, Network))
}

func TestErrorMessage(t *testing.T) {
	require.Equal(t, "snapshot(file).fetch-latest: http status 404", Status("snapshot(file).fetch-latest", 404).Error())
	require.Equal(
		t,
		"feed(x).fetch: decode: unexpected EOF",
		New(Decode, "feed(x).fetch", errors.New("unexpected EOF")).Error(),
	)
	require.Equal(t, ParseStructure, KindOf(fmt.Errorf("x: %w", New(ParseStructure, "op", nil))))
	require.Equal(t, Kind(0), KindOf(errors.New("plain")))
}
