package snapshot

import (
	"bytes"
	"encoding/json"
	"fmt"

	"hellchannel/internal/drops"
	"hellchannel/internal/fetcherr"
)

// record is the persisted shape of a DropEvent, field order here is the key
// order in the file.
type record struct {
	Channel  string `json:"채널"`
	Gear     string `json:"장비"`
	Category string `json:"카테고리,omitempty"`
	Source   string `json:"출처,omitempty"`
	Link     string `json:"링크,omitempty"`
}

// Encode serializes events as an indented UTF-8 JSON array with stable key
// order so consecutive snapshots diff cleanly.
func Encode(events []drops.DropEvent) ([]byte, error) {
	records := make([]record, len(events))
	for i, e := range events {
		records[i] = record{
			Channel:  e.Channel,
			Gear:     e.Gear,
			Category: e.Category,
			Source:   e.Source,
			Link:     e.Link,
		}
	}

	var buffer bytes.Buffer
	encoder := json.NewEncoder(&buffer)
	encoder.SetEscapeHTML(false)
	encoder.SetIndent("", "  ")
	err := encoder.Encode(records)
	if err != nil {
		return nil, err
	}
	return buffer.Bytes(), nil
}

// Decode parses a snapshot into raw records, the records still have to go
// through drops.Normalize. Malformed data is a Decode error and a snapshot
// without records is an Empty error.
func Decode(op string, data []byte) ([]drops.RawRecord, error) {
	var records []drops.RawRecord
	err := json.Unmarshal(data, &records)
	if err != nil {
		return nil, fetcherr.New(fetcherr.Decode, op, err)
	}
	if len(records) == 0 {
		return nil, fetcherr.New(fetcherr.Empty, op, fmt.Errorf("snapshot has no records"))
	}
	return records, nil
}
