package drops

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	records := []RawRecord{
		{"채널": "중천 Ch.70", "장비": "혼돈 목걸이"},
		{"채널": "   ", "장비": "버려질 장비"},
		{"channel": "마계 Ch.6", "gear": ""},
		{"장비": "채널 없음"},
		{"ch": "백해 Ch.3", "item": "보우건", "url": " https://example.com/1 ", "출처": "other"},
		// category on the record is ignored
		{"채널": "중천 Ch.63", "장비": "혼돈 반지", "카테고리": "마계"},
		{"채널": nil, "장비": "nil channel"},
	}

	events, stats := Normalize(records, "board")

	expected := []DropEvent{
		{Channel: "중천 Ch.70", Gear: "혼돈 목걸이", Category: "중천", Source: "board"},
		{Channel: "마계 Ch.6", Gear: UnidentifiedGear, Category: "마계", Source: "board"},
		{Channel: "백해 Ch.3", Gear: "보우건", Category: "백해", Source: "other", Link: "https://example.com/1"},
		{Channel: "중천 Ch.63", Gear: "혼돈 반지", Category: "중천", Source: "board"},
	}
	if diff := cmp.Diff(expected, events); diff != "" {
		t.Fatal(diff)
	}

	require.Equal(t, NormalizeStats{Input: 7, Output: 4, Skipped: 3}, stats)
	require.LessOrEqual(t, len(events), len(records))
}

func TestNormalizeFieldFallback(t *testing.T) {
	// a blank korean key falls through to the next known key
	events, _ := Normalize([]RawRecord{
		{"채널": "", "channel": "마계 Ch.2", "장비": "  ", "item": "페어리 반지"},
		{"채널": float64(70), "장비": true},
	}, "feed")

	require.Len(t, events, 2)
	require.Equal(t, "마계 Ch.2", events[0].Channel)
	require.Equal(t, "페어리 반지", events[0].Gear)
	require.Equal(t, "70", events[1].Channel)
	require.Equal(t, Uncategorized, events[1].Category)
	require.Equal(t, "true", events[1].Gear)
}

func TestNormalizeEmpty(t *testing.T) {
	events, stats := Normalize(nil, "board")
	require.NotNil(t, events)
	require.Len(t, events, 0)
	require.Equal(t, NormalizeStats{}, stats)
}
