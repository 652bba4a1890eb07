package display

import (
	"encoding/json"
	"io"
	"time"

	"hellchannel/internal/recommend"
)

type jsonRanking struct {
	Rank      int      `json:"rank"`
	Channel   string   `json:"channel"`
	Category  string   `json:"category"`
	DropCount int      `json:"drop_count"`
	GearList  []string `json:"gear_list"`
}

type jsonSimilar struct {
	Left       string  `json:"left"`
	Right      string  `json:"right"`
	Similarity float64 `json:"similarity"`
}

type jsonResult struct {
	Available   bool          `json:"available"`
	State       string        `json:"state"`
	Origin      string        `json:"origin"`
	Stale       bool          `json:"stale"`
	GeneratedAt time.Time     `json:"generated_at"`
	Events      int           `json:"events"`
	Skipped     int           `json:"skipped"`
	Sources     []string      `json:"sources"`
	Reason      string        `json:"reason,omitempty"`
	PublishErr  string        `json:"publish_error,omitempty"`
	Rankings    []jsonRanking `json:"rankings"`
	Similar     []jsonSimilar `json:"similar,omitempty"`
}

func toJSON(result recommend.Result) jsonResult {
	out := jsonResult{
		Available:   result.Available(),
		State:       result.State.String(),
		Origin:      result.Origin.String(),
		Stale:       result.Stale,
		GeneratedAt: result.GeneratedAt,
		Events:      result.Events,
		Skipped:     result.Skipped,
		Sources:     result.Sources,
		Reason:      recommend.Describe(result),
		Rankings:    make([]jsonRanking, len(result.Rankings)),
	}
	if out.Sources == nil {
		out.Sources = []string{}
	}
	if result.PublishErr != nil {
		out.PublishErr = result.PublishErr.Error()
	}
	for i, r := range result.Rankings {
		out.Rankings[i] = jsonRanking{
			Rank:      i + 1,
			Channel:   r.Channel,
			Category:  r.Category,
			DropCount: r.DropCount,
			GearList:  r.GearList,
		}
	}
	for _, pair := range result.Similar {
		out.Similar = append(out.Similar, jsonSimilar(pair))
	}
	return out
}

// JSON writes the result, including unavailable ones, as a single JSON
// document.
func JSON(w io.Writer, result recommend.Result) error {
	encoder := json.NewEncoder(w)
	encoder.SetEscapeHTML(false)
	encoder.SetIndent("", "  ")
	return encoder.Encode(toJSON(result))
}
