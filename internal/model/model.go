package model

import (
	"encoding/json"
	"time"

	appLog "pogocal/internal/log"
)

// Event is one scheduled in-game happening as delivered by the feed, with
// Start/End already normalized into the display timezone.
type Event struct {
	ID      string
	Name    string // raw title; may carry HTML entities and the game prefix
	Type    string // feed slug, e.g. "raid-hour"
	Heading string
	Link    string
	Image   string

	Start time.Time
	End   time.Time

	Extra ExtraData
}

// Boss is a raid boss entry in extraData.raidbattles.bosses and raid schedules.
type Boss struct {
	Name       string `json:"name"`
	Image      string `json:"image,omitempty"`
	CanBeShiny bool   `json:"canBeShiny,omitempty"`
}

// Generic mirrors extraData.generic.
type Generic struct {
	HasSpawns             bool `json:"hasSpawns"`
	HasFieldResearchTasks bool `json:"hasFieldResearchTasks"`
}

type RaidBattles struct {
	Bosses []Boss `json:"bosses"`
}

type SpotlightPokemon struct {
	Name       string `json:"name"`
	Image      string `json:"image,omitempty"`
	CanBeShiny bool   `json:"canBeShiny,omitempty"`
}

type Spotlight struct {
	Name       string             `json:"name,omitempty"`
	Image      string             `json:"image,omitempty"`
	CanBeShiny bool               `json:"canBeShiny,omitempty"`
	Bonus      string             `json:"bonus,omitempty"`
	List       []SpotlightPokemon `json:"list,omitempty"`
}

type Spawn struct {
	Name  string `json:"name"`
	Image string `json:"image,omitempty"`
}

type CommunityDay struct {
	Spawns []Spawn `json:"spawns"`
}

// RaidScheduleEntry is one day of a multi-day raid announcement embedded in a
// larger event. Date is either "Monday, November 10" or a bare weekday.
type RaidScheduleEntry struct {
	Date         string `json:"date"`
	HasRaidHour  bool   `json:"hasRaidHour"`
	RaidHourTime string `json:"raidHourTime,omitempty"`
	Bosses       []Boss `json:"bosses"`
}

// ExtraData is the open-ended bag attached to an event. Raw keeps every key
// the feed sent so nothing is lost on re-encoding; the typed fields are views
// over the shapes the calendar understands.
type ExtraData struct {
	Raw map[string]json.RawMessage

	Generic            *Generic
	RaidBattles        *RaidBattles
	Spotlight          *Spotlight
	CommunityDay       *CommunityDay
	RaidSchedule       []RaidScheduleEntry
	IsRaidHourSubEvent bool
	ParentEventID      string
}

// KeyCount is the number of top-level keys. Grouping uses it as a measure of
// how complete a record is.
func (x ExtraData) KeyCount() int {
	if x.Raw != nil {
		return len(x.Raw)
	}
	n := 0
	if x.Generic != nil {
		n++
	}
	if x.RaidBattles != nil {
		n++
	}
	if x.Spotlight != nil {
		n++
	}
	if x.CommunityDay != nil {
		n++
	}
	if len(x.RaidSchedule) > 0 {
		n++
	}
	if x.IsRaidHourSubEvent {
		n++
	}
	if x.ParentEventID != "" {
		n++
	}
	return n
}

// Bosses returns the raid bosses, if any.
func (x ExtraData) Bosses() []Boss {
	if x.RaidBattles == nil {
		return nil
	}
	return x.RaidBattles.Bosses
}

// UnmarshalJSON never fails: a bag that is not an object is dropped so the
// event itself survives.
func (x *ExtraData) UnmarshalJSON(b []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		appLog.Warn("extraData is not an object; ignored", "err", err)
		*x = ExtraData{}
		return nil
	}
	*x = ExtraData{Raw: raw}
	if raw == nil {
		return nil
	}

	// Typed views are best effort: a shape we do not expect for one key
	// must not discard the rest of the event.
	decode := func(key string, v any) bool {
		msg, ok := raw[key]
		if !ok {
			return false
		}
		return json.Unmarshal(msg, v) == nil
	}

	var g Generic
	if decode("generic", &g) {
		x.Generic = &g
	}
	var rb RaidBattles
	if decode("raidbattles", &rb) {
		x.RaidBattles = &rb
	}
	var sp Spotlight
	if decode("spotlight", &sp) {
		x.Spotlight = &sp
	}
	var cd CommunityDay
	if decode("communityday", &cd) {
		x.CommunityDay = &cd
	}
	var sched []RaidScheduleEntry
	if decode("raidSchedule", &sched) {
		x.RaidSchedule = sched
	}
	var sub bool
	if decode("isRaidHourSubEvent", &sub) {
		x.IsRaidHourSubEvent = sub
	}
	var parent string
	if decode("parentEventId", &parent) {
		x.ParentEventID = parent
	}
	return nil
}

func (x ExtraData) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(x.Raw)+4)
	for k, v := range x.Raw {
		out[k] = v
	}
	if x.Generic != nil {
		out["generic"] = x.Generic
	}
	if x.RaidBattles != nil {
		out["raidbattles"] = x.RaidBattles
	}
	if x.Spotlight != nil {
		out["spotlight"] = x.Spotlight
	}
	if x.CommunityDay != nil {
		out["communityday"] = x.CommunityDay
	}
	if len(x.RaidSchedule) > 0 {
		out["raidSchedule"] = x.RaidSchedule
	}
	if x.IsRaidHourSubEvent {
		out["isRaidHourSubEvent"] = true
	}
	if x.ParentEventID != "" {
		out["parentEventId"] = x.ParentEventID
	}
	return json.Marshal(out)
}
