// Package pokemon extracts creature names from event data and resolves them
// to sprite URLs. It also carries the combat power helpers used by the event
// detail view.
package pokemon

import (
	_ "embed"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"

	appLog "pogocal/internal/log"
)

const (
	staticBaseURL     = "https://raw.githubusercontent.com/mgrann03/pokemon-resources/refs/heads/main/graphics/pogo/"
	animatedBaseURL   = "https://raw.githubusercontent.com/mgrann03/pokemon-resources/main/graphics/ani/"
	pokeMinersBaseURL = "https://raw.githubusercontent.com/PokeMiners/pogo_assets/master/Images/Pokemon/Addressable%20Assets/"
)

//go:embed tables.yaml
var embeddedTables []byte

// FormEntry lists the asset forms the secondary mirror has for one species.
// Forms are stored as they appear in file names, e.g. "fATTACK".
type FormEntry struct {
	Default string   `yaml:"default"`
	Forms   []string `yaml:"forms"`
}

// Tables is the static sprite metadata.
//
// A species absent from Forms has no secondary asset. A species present
// with a nil entry has only a base asset.
type Tables struct {
	Species  map[string]int        `yaml:"species"`
	Static   []string              `yaml:"static"`
	Animated []string              `yaml:"animated"`
	Forms    map[string]*FormEntry `yaml:"forms"`
}

// ParseTables decodes the YAML sprite tables.
func ParseTables(data []byte) (*Tables, error) {
	var t Tables
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("pokemon: decode tables: %w", err)
	}
	return &t, nil
}

var nonAlnum = regexp.MustCompile(`[^a-z0-9]`)

var stripMarks = runes.Remove(runes.In(unicode.Mn))

// Normalize lowercases a name, maps gender symbols to f/m and removes
// diacritics so "Flabébé" and "Flabebe" compare equal.
func Normalize(name string) string {
	s := strings.ToLower(name)
	s = strings.NewReplacer("♀", "f", "♂", "m").Replace(s)
	t := transform.Chain(norm.NFD, stripMarks)
	if out, _, err := transform.String(t, s); err == nil {
		s = out
	}
	return strings.TrimSpace(s)
}

// Key builds the sprite table key: the normalized name reduced to [a-z0-9]
// followed by the suffix verbatim.
func Key(name, suffix string) string {
	return nonAlnum.ReplaceAllString(Normalize(name), "") + suffix
}

// Resolver maps names to sprite URLs using the static tables.
type Resolver struct {
	ids      map[string]int
	static   map[string]struct{}
	animated map[string]struct{}
	forms    map[int]*FormEntry
	hasForms map[int]bool
}

// NewResolver indexes t.
func NewResolver(t *Tables) *Resolver {
	r := &Resolver{
		ids:      make(map[string]int, len(t.Species)),
		static:   make(map[string]struct{}, len(t.Static)),
		animated: make(map[string]struct{}, len(t.Animated)),
		forms:    make(map[int]*FormEntry, len(t.Forms)),
		hasForms: make(map[int]bool, len(t.Forms)),
	}
	for name, id := range t.Species {
		r.ids[Normalize(name)] = id
	}
	for _, k := range t.Static {
		r.static[strings.ToLower(k)] = struct{}{}
	}
	for _, k := range t.Animated {
		r.animated[strings.ToLower(k)] = struct{}{}
	}
	for k, v := range t.Forms {
		id, err := strconv.Atoi(k)
		if err != nil {
			appLog.Warn("sprite tables: skipping non-numeric form key", "key", k)
			continue
		}
		r.forms[id] = v
		r.hasForms[id] = true
	}
	return r
}

var (
	defaultOnce     sync.Once
	defaultResolver *Resolver
)

// DefaultResolver returns the resolver over the embedded tables. The tables
// are parsed on first use.
func DefaultResolver() *Resolver {
	defaultOnce.Do(func() {
		t, err := ParseTables(embeddedTables)
		if err != nil {
			appLog.Error("sprite tables unreadable; sprites disabled", err)
			t = &Tables{}
		}
		defaultResolver = NewResolver(t)
	})
	return defaultResolver
}

// ID returns the species number for a name.
func (r *Resolver) ID(name string) (int, bool) {
	id, ok := r.ids[Normalize(name)]
	return id, ok
}

// Resolve returns the best sprite URL for a species and suffix: the animated
// sprite when requested and available, then the primary static sprite, then
// the secondary mirror, then fallback. It returns "" when nothing applies.
func (r *Resolver) Resolve(name, suffix string, animated bool, fallback string) string {
	if _, ok := r.ID(name); ok {
		key := Key(name, suffix)
		if animated {
			if _, ok := r.animated[key]; ok {
				return animatedBaseURL + key + ".gif"
			}
		}
		if _, ok := r.static[key]; ok {
			return staticBaseURL + key + ".png"
		}
		if u := r.mirrorURL(name, suffix); u != "" {
			return u
		}
		if appLog.Once("sprite:" + key) {
			appLog.Debug("no sprite for creature", "name", name, "key", key)
		}
	} else if appLog.Once("sprite-name:" + Normalize(name)) {
		appLog.Debug("unknown creature name", "name", name)
	}
	return fallback
}

// mirrorURL builds the secondary mirror URL from the species number and the
// form table.
func (r *Resolver) mirrorURL(name, suffix string) string {
	id, ok := r.ID(name)
	if !ok || !r.hasForms[id] {
		return ""
	}
	entry := r.forms[id]
	form := ""
	if entry != nil {
		form = entry.Default
		if want := strings.ToUpper(strings.TrimPrefix(suffix, "-")); want != "" {
			for _, f := range entry.Forms {
				if strings.EqualFold(strings.TrimPrefix(f, "f"), want) || strings.EqualFold(f, want) {
					form = f
					break
				}
			}
		}
	}
	file := "pm" + strconv.Itoa(id)
	if form != "" {
		file += "." + form
	}
	return pokeMinersBaseURL + file + ".icon.png"
}
