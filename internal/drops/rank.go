package drops

import (
	"slices"

	"hellchannel/lib/textutil"

	"github.com/antzucaro/matchr"
)

// Rank groups events by channel and orders the groups by drop count,
// highest first. Channels with equal counts keep the order in which they
// were first seen.
//
// Channels are compared exactly: "Ch. 70" and "Ch.70" are different rows.
// Use SimilarChannels to find such pairs.
func Rank(events []DropEvent) []ChannelRanking {
	rankings := []ChannelRanking{}
	index := make(map[string]int)

	for _, event := range events {
		i, ok := index[event.Channel]
		if !ok {
			i = len(rankings)
			index[event.Channel] = i
			rankings = append(rankings, ChannelRanking{
				Channel:  event.Channel,
				Category: event.Category,
			})
		}
		rankings[i].DropCount++
		rankings[i].GearList = append(rankings[i].GearList, event.Gear)
	}

	slices.SortStableFunc(rankings, func(a, b ChannelRanking) int {
		return b.DropCount - a.DropCount
	})
	return rankings
}

// Top returns the highest ranked channel, false if there is none.
func Top(rankings []ChannelRanking) (ChannelRanking, bool) {
	if len(rankings) == 0 {
		return ChannelRanking{}, false
	}
	return rankings[0], true
}

// TotalDrops is the sum of every ranking's drop count.
func TotalDrops(rankings []ChannelRanking) int {
	total := 0
	for _, r := range rankings {
		total += r.DropCount
	}
	return total
}

// SimilarPair is two ranked channels that probably name the same channel.
type SimilarPair struct {
	Left       string
	Right      string
	Similarity float64
}

// SimilarChannels finds pairs of distinct channel labels that are identical
// once whitespace and case are ignored, or that carry the same channel number
// in the same category and have a Jaro-Winkler similarity of at least
// threshold. Pairs are returned in ranking order.
func SimilarChannels(rankings []ChannelRanking, threshold float64) []SimilarPair {
	var pairs []SimilarPair
	for i := 0; i < len(rankings); i++ {
		left := textutil.Fold(rankings[i].Channel)
		for j := i + 1; j < len(rankings); j++ {
			right := textutil.Fold(rankings[j].Channel)

			similarity := 1.0
			if left != right {
				if rankings[i].Category != rankings[j].Category ||
					textutil.Digits(left) != textutil.Digits(right) {
					continue
				}
				similarity = matchr.JaroWinkler(left, right, false)
			}
			if similarity < threshold {
				continue
			}
			pairs = append(pairs, SimilarPair{
				Left:       rankings[i].Channel,
				Right:      rankings[j].Channel,
				Similarity: similarity,
			})
		}
	}
	return pairs
}
