package drops

import (
	"fmt"
	"strings"
)

// field names seen across producers, checked in order
var (
	channelFields = []string{"채널", "channel", "ch"}
	gearFields    = []string{"장비", "gear", "item", "아이템"}
	linkFields    = []string{"링크", "link", "url"}
	sourceFields  = []string{"출처", "source"}
)

// NormalizeStats describes what a Normalize call did with its input.
type NormalizeStats struct {
	Input   int
	Output  int
	Skipped int
}

// Normalize converts raw records into DropEvents.
//
// Records without a channel are skipped, a blank gear becomes
// UnidentifiedGear, and the category is always recomputed from the channel.
// The order of surviving records is preserved.
func Normalize(records []RawRecord, sourceID string) ([]DropEvent, NormalizeStats) {
	stats := NormalizeStats{Input: len(records)}
	events := make([]DropEvent, 0, len(records))

	for _, record := range records {
		channel := lookup(record, channelFields)
		if strings.TrimSpace(channel) == "" {
			stats.Skipped++
			continue
		}

		gear := lookup(record, gearFields)
		if strings.TrimSpace(gear) == "" {
			gear = UnidentifiedGear
		}

		source := lookup(record, sourceFields)
		if strings.TrimSpace(source) == "" {
			source = sourceID
		}

		events = append(events, DropEvent{
			Channel:  channel,
			Gear:     gear,
			Category: Classify(channel),
			Source:   source,
			Link:     strings.TrimSpace(lookup(record, linkFields)),
		})
	}

	stats.Output = len(events)
	return events, stats
}

// lookup returns the first non-blank value among keys.
func lookup(record RawRecord, keys []string) string {
	for _, key := range keys {
		value, ok := record[key]
		if !ok || value == nil {
			continue
		}
		str := stringify(value)
		if strings.TrimSpace(str) != "" {
			return str
		}
	}
	return ""
}

func stringify(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	case float64:
		// json numbers, ex. a channel written as 70
		if v == float64(int64(v)) {
			return fmt.Sprintf("%d", int64(v))
		}
		return fmt.Sprint(v)
	case bool, int, int64:
		return fmt.Sprint(v)
	}
	return ""
}
