// Package feed fetches, caches and decodes the event feed.
package feed

import (
	"encoding/json"
	"fmt"
	"time"

	"pogocal/internal/datetime"
	appLog "pogocal/internal/log"
	"pogocal/internal/model"
)

// record is one element of the feed's JSON array.
type record struct {
	EventID   string          `json:"eventID"`
	Name      string          `json:"name"`
	EventType string          `json:"eventType"`
	Heading   string          `json:"heading"`
	Link      string          `json:"link"`
	Image     string          `json:"image"`
	Start     *string         `json:"start"`
	End       *string         `json:"end"`
	ExtraData model.ExtraData `json:"extraData"`
}

// Decode parses a feed body into events with times in loc. Records without
// an ID or with unreadable times are skipped. A record ending before it
// starts is kept as a zero-length event at its start.
func Decode(body []byte, loc *time.Location) ([]model.Event, error) {
	var records []record
	if err := json.Unmarshal(body, &records); err != nil {
		return nil, fmt.Errorf("feed: decode: %w", err)
	}

	events := make([]model.Event, 0, len(records))
	for _, r := range records {
		ev, err := r.event(loc)
		if err != nil {
			appLog.Warn("feed record skipped", "id", r.EventID, "err", err)
			continue
		}
		events = append(events, ev)
	}
	return events, nil
}

func (r record) event(loc *time.Location) (model.Event, error) {
	if r.EventID == "" {
		return model.Event{}, fmt.Errorf("missing eventID")
	}
	if r.Start == nil || r.End == nil {
		return model.Event{}, fmt.Errorf("missing start or end")
	}
	start, err := datetime.Parse(*r.Start, loc)
	if err != nil {
		return model.Event{}, err
	}
	end, err := datetime.Parse(*r.End, loc)
	if err != nil {
		return model.Event{}, err
	}
	if end.Before(start) {
		appLog.Warn("feed record ends before it starts; clamping", "id", r.EventID, "start", *r.Start, "end", *r.End)
		end = start
	}
	return model.Event{
		ID:      r.EventID,
		Name:    r.Name,
		Type:    r.EventType,
		Heading: r.Heading,
		Link:    r.Link,
		Image:   r.Image,
		Start:   start,
		End:     end,
		Extra:   r.ExtraData,
	}, nil
}
