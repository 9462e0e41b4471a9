// Package group merges events that share a type and an exact time slot into
// one displayable entry.
package group

import (
	"sort"
	"strings"
	"time"
	"unicode"

	"pogocal/internal/eventname"
	"pogocal/internal/eventtype"
	"pogocal/internal/model"
)

// OverlapThreshold is the minimum token overlap for names to be considered
// variants of one another.
const OverlapThreshold = 0.6

type key struct {
	kind       string
	start, end int64
}

func keyOf(ev model.Event) key {
	kind := eventtype.RaidSubType(ev)
	if kind == "" {
		kind = ev.Type
	}
	return key{
		kind:  kind,
		start: ev.Start.Truncate(time.Minute).Unix(),
		end:   ev.End.Truncate(time.Minute).Unix(),
	}
}

// Group partitions events by type (or raid sub-type) and minute-precise
// start and end. Partitions with more than one member become a grouped
// Displayable; the rest pass through as singles. Output follows the input
// order of each partition's first member. With enabled false every event is
// returned as a single.
func Group(events []model.Event, enabled bool) []model.Displayable {
	if !enabled {
		out := make([]model.Displayable, 0, len(events))
		for _, ev := range events {
			out = append(out, model.Single(ev))
		}
		return out
	}

	var order []key
	parts := make(map[key][]model.Event)
	for _, ev := range events {
		k := keyOf(ev)
		if _, ok := parts[k]; !ok {
			order = append(order, k)
		}
		parts[k] = append(parts[k], ev)
	}

	out := make([]model.Displayable, 0, len(order))
	for _, k := range order {
		members := parts[k]
		if len(members) == 1 {
			out = append(out, model.Single(members[0]))
			continue
		}
		out = append(out, model.Grouped(Representative(members), members, SmartName(members, k.kind)))
	}
	return out
}

// Regroup groups displayables again, expanding existing groups into their
// members first. Regroup(Group(x)) yields the same representatives as
// Group(x).
func Regroup(items []model.Displayable, enabled bool) []model.Displayable {
	var events []model.Event
	for _, d := range items {
		if d.IsGrouped() {
			events = append(events, d.Members...)
			continue
		}
		events = append(events, d.Event)
	}
	return Group(events, enabled)
}

// Representative picks the member shown for a group: highest type priority,
// then the most extra data keys, then the alphabetically first formatted name.
func Representative(members []model.Event) model.Event {
	sorted := make([]model.Event, len(members))
	copy(sorted, members)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if pa, pb := eventtype.Priority(a.Type), eventtype.Priority(b.Type); pa != pb {
			return pa > pb
		}
		if ka, kb := a.Extra.KeyCount(), b.Extra.KeyCount(); ka != kb {
			return ka > kb
		}
		return eventname.Format(a.Name) < eventname.Format(b.Name)
	})
	return sorted[0]
}

// SmartName names a group. The shortest formatted name is used when it is
// contained in every other name, or when the names share enough words;
// otherwise the display name of kind (a type or raid sub-type).
func SmartName(members []model.Event, kind string) string {
	if len(members) == 0 {
		return fallbackName(kind)
	}
	names := make([]string, len(members))
	shortest := 0
	for i, m := range members {
		names[i] = eventname.Format(m.Name)
		if len([]rune(names[i])) < len([]rune(names[shortest])) {
			shortest = i
		}
	}
	short := names[shortest]
	if short == "" {
		return fallbackName(kind)
	}

	lower := strings.ToLower(short)
	contained := true
	for _, n := range names {
		if !strings.Contains(strings.ToLower(n), lower) {
			contained = false
			break
		}
	}
	if contained {
		return short
	}

	if Overlap(names) >= OverlapThreshold {
		return short
	}
	return fallbackName(kind)
}

func fallbackName(kind string) string {
	if n := eventtype.SubTypeName(kind); n != "" {
		return n
	}
	return eventtype.Lookup(kind).Name
}

// Overlap is the share of words common to every name: the size of the
// intersection of their token sets over the size of the union.
func Overlap(names []string) float64 {
	if len(names) == 0 {
		return 0
	}
	var inter, union map[string]bool
	for i, n := range names {
		toks := tokens(n)
		if i == 0 {
			inter = make(map[string]bool, len(toks))
			union = make(map[string]bool, len(toks))
			for t := range toks {
				inter[t] = true
				union[t] = true
			}
			continue
		}
		for t := range inter {
			if !toks[t] {
				delete(inter, t)
			}
		}
		for t := range toks {
			union[t] = true
		}
	}
	if len(union) == 0 {
		return 0
	}
	return float64(len(inter)) / float64(len(union))
}

func tokens(s string) map[string]bool {
	fields := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	out := make(map[string]bool, len(fields))
	for _, f := range fields {
		out[f] = true
	}
	return out
}
