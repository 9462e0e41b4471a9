package feed

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/teambition/rrule-go"

	appLog "pogocal/internal/log"
	"pogocal/internal/model"
)

var (
	scheduleDateRe = regexp.MustCompile(`([A-Za-z]+),\s+([A-Za-z]+)\s+(\d+)`)
	weekdayOnlyRe  = regexp.MustCompile(`^([A-Za-z]+)$`)
	raidHourTimeRe = regexp.MustCompile(`(?i)(\d+):(\d+)\s*(a\.m\.|p\.m\.|am|pm)\s+to\s+(\d+):(\d+)\s*(a\.m\.|p\.m\.|am|pm)`)
)

const (
	defaultRaidHourStart = 18
	defaultRaidHourEnd   = 19
)

// rruleDays maps time.Weekday to rrule weekdays.
var rruleDays = [...]rrule.Weekday{rrule.SU, rrule.MO, rrule.TU, rrule.WE, rrule.TH, rrule.FR, rrule.SA}

var weekdayByName = map[string]time.Weekday{
	"sunday": time.Sunday, "monday": time.Monday, "tuesday": time.Tuesday,
	"wednesday": time.Wednesday, "thursday": time.Thursday, "friday": time.Friday,
	"saturday": time.Saturday,
}

// ExpandAll returns the raid hour sub-events of every event.
func ExpandAll(events []model.Event) []model.Event {
	var out []model.Event
	for _, ev := range events {
		out = append(out, ExpandRaidHours(ev)...)
	}
	return out
}

// ExpandRaidHours derives one raid hour pseudo-event per raid schedule entry
// of a general event that announces a raid hour with known bosses.
func ExpandRaidHours(parent model.Event) []model.Event {
	if parent.Type != "event" || len(parent.Extra.RaidSchedule) == 0 {
		return nil
	}

	var out []model.Event
	for _, entry := range parent.Extra.RaidSchedule {
		if !entry.HasRaidHour || len(entry.Bosses) == 0 {
			continue
		}
		day, ok := scheduleDate(entry.Date, parent.Start, parent.End)
		if !ok {
			appLog.Warn("raid schedule date unreadable", "id", parent.ID, "date", entry.Date)
			continue
		}
		sh, sm, eh, em := raidHourTime(entry.RaidHourTime)
		start := time.Date(day.Year(), day.Month(), day.Day(), sh, sm, 0, 0, day.Location())
		end := time.Date(day.Year(), day.Month(), day.Day(), eh, em, 0, 0, day.Location())
		if end.Before(start) {
			end = start
		}

		image := parent.Image
		if entry.Bosses[0].Image != "" {
			image = entry.Bosses[0].Image
		}
		bosses := make([]model.Boss, len(entry.Bosses))
		copy(bosses, entry.Bosses)

		out = append(out, model.Event{
			ID:      parent.ID + "-raid-hour-" + day.Format("2006-01-02"),
			Name:    raidHourName(bosses),
			Type:    "event",
			Heading: "Event",
			Link:    parent.Link,
			Image:   image,
			Start:   start,
			End:     end,
			Extra: model.ExtraData{
				IsRaidHourSubEvent: true,
				ParentEventID:      parent.ID,
				Generic:            &model.Generic{},
				RaidBattles:        &model.RaidBattles{Bosses: bosses},
			},
		})
	}
	return out
}

// scheduleDate resolves "Monday, November 10" in the parent's year, or a
// bare weekday to its first occurrence within a week of the parent start
// that does not fall after the parent end.
func scheduleDate(s string, parentStart, parentEnd time.Time) (time.Time, bool) {
	loc := parentStart.Location()
	s = strings.TrimSpace(s)

	if m := scheduleDateRe.FindStringSubmatch(s); m != nil {
		t, err := time.ParseInLocation("January 2 2006", m[2]+" "+m[3]+" "+strconv.Itoa(parentStart.Year()), loc)
		if err == nil {
			return t, true
		}
	}

	m := weekdayOnlyRe.FindStringSubmatch(s)
	if m == nil {
		return time.Time{}, false
	}
	wd, ok := weekdayByName[strings.ToLower(m[1])]
	if !ok {
		return time.Time{}, false
	}

	first := time.Date(parentStart.Year(), parentStart.Month(), parentStart.Day(), 0, 0, 0, 0, loc)
	until := first.AddDate(0, 0, 6)
	if parentEnd.Before(until) {
		until = parentEnd
	}
	rule, err := rrule.NewRRule(rrule.ROption{
		Freq:      rrule.DAILY,
		Dtstart:   first,
		Until:     until,
		Byweekday: []rrule.Weekday{rruleDays[wd]},
		Count:     1,
	})
	if err != nil {
		return time.Time{}, false
	}
	days := rule.All()
	if len(days) == 0 {
		return time.Time{}, false
	}
	return days[0].In(loc), true
}

// raidHourTime reads "6:00 p.m. to 7:00 p.m."; unreadable text yields the
// usual 6-7 p.m. slot.
func raidHourTime(s string) (startHour, startMin, endHour, endMin int) {
	m := raidHourTimeRe.FindStringSubmatch(s)
	if m == nil {
		return defaultRaidHourStart, 0, defaultRaidHourEnd, 0
	}
	startHour = to24h(atoi(m[1]), m[3])
	startMin = atoi(m[2])
	endHour = to24h(atoi(m[4]), m[6])
	endMin = atoi(m[5])
	return startHour, startMin, endHour, endMin
}

func to24h(h int, period string) int {
	p := strings.ToLower(period)
	switch {
	case strings.HasPrefix(p, "p") && h != 12:
		return h + 12
	case strings.HasPrefix(p, "a") && h == 12:
		return 0
	}
	return h
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

func raidHourName(bosses []model.Boss) string {
	switch len(bosses) {
	case 0:
		return "Raid Hour"
	case 1:
		return bosses[0].Name + " Raid Hour"
	case 2:
		return bosses[0].Name + " and " + bosses[1].Name + " Raid Hour"
	}
	names := make([]string, 0, len(bosses)-1)
	for _, b := range bosses[:len(bosses)-1] {
		names = append(names, b.Name)
	}
	return strings.Join(names, ", ") + ", and " + bosses[len(bosses)-1].Name + " Raid Hour"
}
