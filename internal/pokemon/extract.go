package pokemon

import (
	"regexp"
	"strings"

	"pogocal/internal/eventname"
	"pogocal/internal/eventtype"
	"pogocal/internal/model"
)

// Image is one creature shown on an event. URL is empty when no sprite and
// no feed image exist.
type Image struct {
	Name string `json:"name"`
	URL  string `json:"url,omitempty"`
}

type Options struct {
	Animated bool
}

var (
	raidHourRe      = regexp.MustCompile(`(?i)^(.+?)\s+Raid\s+Hour$`)
	maxMondayRe     = regexp.MustCompile(`(?i)^Dynamax\s+(.+?)\s+during\s+Max\s+Monday$`)
	shadowRaidsRe   = regexp.MustCompile(`(?i)^Shadow\s+(.+?)\s+in\s+Shadow\s+Raids$`)
	shadowWeekendRe = regexp.MustCompile(`(?i)^Shadow\s+(.+?)\s+Raid\s+Weekend$`)
	megaRaidsRe     = regexp.MustCompile(`(?i)^Mega\s+(.+?)\s+in\s+Mega\s+Raids$`)
	starRaidsRe     = regexp.MustCompile(`(?i)^(.+?)\s+in\s+(\d+)-star\s+Raid\s+battles$`)
	raidWeekendRe   = regexp.MustCompile(`(?i)^(.+?)\s+(?:Fusion\s+)?Raid\s+Weekend$`)
	raidDayRe       = regexp.MustCompile(`(?i)^(.+?)\s+(?:Fusion\s+)?Raid\s+Day$`)
	gigantamaxRe    = regexp.MustCompile(`(?i)^Gigantamax\s+(.+?)\s+Max\s+Battle\s+Day$`)
	dynamaxRe       = regexp.MustCompile(`(?i)^Dynamax\s+(.+?)\s+Max\s+Battle\s+(?:Weekend|Day)$`)
	showcaseRe      = regexp.MustCompile(`(?i)^(.+?)\s+PokéStop\s+Showcases?$`)
	typeShowcaseRe  = regexp.MustCompile(`(?i)(?:\w+-type|\s+type)\b`)
)

type parser func(e *Extractor, ev model.Event, opts Options) []Image

// parsers is keyed by event type. Types without an entry have no creatures.
var parsers = map[string]parser{
	"raid-battles":           (*Extractor).raidBattles,
	"raid-weekend":           (*Extractor).raidBattles,
	"raid-hour":              (*Extractor).raidHour,
	"event":                  (*Extractor).raidHourSubEvent,
	"raid-day":               (*Extractor).raidDay,
	"max-mondays":            (*Extractor).maxMonday,
	"pokemon-spotlight-hour": (*Extractor).spotlight,
	"community-day":          (*Extractor).communityDay,
	"max-battles":            (*Extractor).maxBattles,
	"pokestop-showcase":      (*Extractor).showcase,
}

// Extractor derives creature names and sprite URLs from events.
type Extractor struct {
	sprites *Resolver
}

func NewExtractor(r *Resolver) *Extractor {
	if r == nil {
		r = DefaultResolver()
	}
	return &Extractor{sprites: r}
}

// Images returns the creatures featured by ev in display order. It never
// fails; events it cannot interpret yield nil.
func (e *Extractor) Images(ev model.Event, opts Options) []Image {
	p, ok := parsers[ev.Type]
	if !ok {
		return nil
	}
	return p(e, ev, opts)
}

// MultiDayImages restricts images on multi-day bars to raid events.
func (e *Extractor) MultiDayImages(ev model.Event, opts Options) []Image {
	if ev.Type != "raid-battles" && ev.Type != "raid-weekend" {
		return nil
	}
	return e.Images(ev, opts)
}

func (e *Extractor) sprite(name, suffix string, opts Options, fallback string) string {
	return e.sprites.Resolve(name, suffix, opts.Animated, fallback)
}

// named resolves each display name through ParseName. defaultSuffix applies
// to names that carry no suffix of their own.
func (e *Extractor) named(names []string, defaultSuffix string, opts Options) []Image {
	out := make([]Image, 0, len(names))
	for _, n := range names {
		p := ParseName(n)
		suffix := p.Suffix
		if suffix == "" {
			suffix = defaultSuffix
		}
		out = append(out, Image{Name: n, URL: e.sprite(p.Base, suffix, opts, "")})
	}
	return out
}

func (e *Extractor) bosses(bosses []model.Boss, opts Options) []Image {
	out := make([]Image, 0, len(bosses))
	for _, b := range bosses {
		p := ParseName(b.Name)
		out = append(out, Image{Name: b.Name, URL: e.sprite(p.Base, p.Suffix, opts, b.Image)})
	}
	return out
}

func (e *Extractor) raidBattles(ev model.Event, opts Options) []Image {
	if bosses := ev.Extra.Bosses(); len(bosses) > 0 {
		return e.bosses(bosses, opts)
	}

	subType := eventtype.RaidSubType(ev)
	name := RaidTitleName(eventname.Format(ev.Name), subType)
	if name == "" {
		return nil
	}
	defaultSuffix := ""
	if subType == eventtype.SubTypeMega {
		defaultSuffix = "-mega"
	}
	return e.named(SplitNames(name), defaultSuffix, opts)
}

// RaidTitleName pulls the creature part out of a raid battle title according
// to its raid sub-type.
func RaidTitleName(title, subType string) string {
	var res []*regexp.Regexp
	switch subType {
	case eventtype.SubTypeShadow:
		res = []*regexp.Regexp{shadowRaidsRe, shadowWeekendRe}
	case eventtype.SubTypeMega:
		res = []*regexp.Regexp{megaRaidsRe}
	case eventtype.SubTypeRaidBattles, eventtype.SubTypeRaidWeekend:
		res = []*regexp.Regexp{starRaidsRe, raidWeekendRe}
	}
	for _, re := range res {
		if m := re.FindStringSubmatch(title); m != nil {
			return strings.TrimSpace(m[1])
		}
	}
	return ""
}

func (e *Extractor) raidHour(ev model.Event, opts Options) []Image {
	m := raidHourRe.FindStringSubmatch(eventname.Format(ev.Name))
	if m == nil {
		return nil
	}
	return e.named(SplitNames(m[1]), "", opts)
}

func (e *Extractor) raidHourSubEvent(ev model.Event, opts Options) []Image {
	if !ev.Extra.IsRaidHourSubEvent {
		return nil
	}
	return e.bosses(ev.Extra.Bosses(), opts)
}

func (e *Extractor) raidDay(ev model.Event, opts Options) []Image {
	m := raidDayRe.FindStringSubmatch(eventname.Format(ev.Name))
	if m == nil {
		return nil
	}
	name := strings.TrimSpace(m[1])
	// Placeholder titles published before the boss is announced.
	if strings.EqualFold(name, "shadow") || strings.EqualFold(name, "raid") {
		return nil
	}
	p := ParseName(name)
	return []Image{{Name: name, URL: e.sprite(p.Base, p.Suffix, opts, "")}}
}

func (e *Extractor) maxMonday(ev model.Event, opts Options) []Image {
	m := maxMondayRe.FindStringSubmatch(eventname.Format(ev.Name))
	if m == nil {
		return nil
	}
	name := strings.TrimSpace(m[1])
	return []Image{{Name: name, URL: e.sprite(name, "", opts, "")}}
}

func (e *Extractor) spotlight(ev model.Event, opts Options) []Image {
	sp := ev.Extra.Spotlight
	if sp == nil {
		return nil
	}
	switch {
	case len(sp.List) > 0:
		out := make([]Image, 0, len(sp.List))
		for _, p := range sp.List {
			out = append(out, Image{Name: p.Name, URL: e.sprite(p.Name, "", opts, p.Image)})
		}
		return out
	case sp.Name != "":
		return []Image{{Name: sp.Name, URL: e.sprite(sp.Name, "", opts, sp.Image)}}
	case sp.Image != "":
		return []Image{{Name: "Spotlight Pokemon", URL: sp.Image}}
	}
	return nil
}

func (e *Extractor) communityDay(ev model.Event, opts Options) []Image {
	cd := ev.Extra.CommunityDay
	if cd == nil {
		return nil
	}
	var out []Image
	for _, s := range cd.Spawns {
		if s.Name == "" {
			continue
		}
		out = append(out, Image{Name: s.Name, URL: e.sprite(s.Name, "", opts, s.Image)})
	}
	return out
}

func (e *Extractor) maxBattles(ev model.Event, opts Options) []Image {
	title := eventname.Format(ev.Name)

	if m := gigantamaxRe.FindStringSubmatch(title); m != nil {
		name := strings.TrimSpace(m[1])
		if u, ok := e.sprites.GigantamaxURL(name); ok {
			return []Image{{Name: "Gigantamax " + name, URL: u}}
		}
	}
	if m := dynamaxRe.FindStringSubmatch(title); m != nil {
		name := strings.TrimSpace(m[1])
		return []Image{{Name: name, URL: e.sprite(name, "", opts, "")}}
	}
	if ev.Image != "" {
		return []Image{{Name: "Max Battle", URL: ev.Image}}
	}
	return nil
}

func (e *Extractor) showcase(ev model.Event, opts Options) []Image {
	m := showcaseRe.FindStringSubmatch(eventname.Format(ev.Name))
	if m == nil {
		return nil
	}
	name := strings.TrimSpace(m[1])
	if typeShowcaseRe.MatchString(name) {
		return nil
	}
	return e.named(SplitNames(name), "", opts)
}
