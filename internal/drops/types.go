// Package drops turns reported item drops into a per-channel ranking.
//
// Everything in this package is pure: events are passed in, rankings are
// returned, nothing is retained between calls.
package drops

const (
	// UnidentifiedGear replaces a missing or blank gear name.
	UnidentifiedGear = "unidentified"
	// Uncategorized is the category of a channel that matches no keyword.
	Uncategorized = "uncategorized"
)

// DropEvent is one reported item drop in one channel.
type DropEvent struct {
	Channel  string
	Gear     string
	Category string
	Source   string
	Link     string
}

// ChannelRanking is the aggregate of every event observed for one channel.
type ChannelRanking struct {
	Channel   string
	DropCount int
	// GearList keeps duplicates in the order they were observed.
	GearList []string
	Category string
}

// RawRecord is a record as produced by a source adapter or decoded from a
// snapshot, field names differ between producers.
type RawRecord map[string]any
