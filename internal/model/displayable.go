package model

import "time"

// Displayable is what the calendar renders: either a single event or a group
// of same-type, same-time events shown through one representative.
type Displayable struct {
	// Event is the event itself, or the representative of a group.
	Event Event
	// Members holds every event of a group, representative included.
	// It is nil for a single event.
	Members []Event
	// Name is the group display name. Empty for a single event.
	Name string
}

// Single wraps one event.
func Single(ev Event) Displayable {
	return Displayable{Event: ev}
}

// Grouped wraps a representative and its members. A group of one degenerates
// to Single.
func Grouped(rep Event, members []Event, name string) Displayable {
	if len(members) <= 1 {
		return Single(rep)
	}
	return Displayable{Event: rep, Members: members, Name: name}
}

func (d Displayable) IsGrouped() bool {
	return len(d.Members) > 1
}

// Count is the number of events represented.
func (d Displayable) Count() int {
	if d.IsGrouped() {
		return len(d.Members)
	}
	return 1
}

func (d Displayable) ID() string {
	return d.Event.ID
}

func (d Displayable) Start() time.Time {
	return d.Event.Start
}

func (d Displayable) End() time.Time {
	return d.Event.End
}

// MemberIDs lists the IDs of all represented events.
func (d Displayable) MemberIDs() []string {
	if !d.IsGrouped() {
		return []string{d.Event.ID}
	}
	ids := make([]string, 0, len(d.Members))
	for _, m := range d.Members {
		ids = append(ids, m.ID)
	}
	return ids
}
