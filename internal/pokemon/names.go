package pokemon

import (
	"regexp"
	"strings"
)

var (
	dualFormRe   = regexp.MustCompile(`(?i)^(.+?)\s+\((.+?)\s+&\s+(.+?)\s+forme?\)$`)
	megaXYRe     = regexp.MustCompile(`(?i)^Mega\s+(.+?)\s+([XY])$`)
	megaRe       = regexp.MustCompile(`(?i)^Mega\s+(.+)$`)
	shadowRe     = regexp.MustCompile(`(?i)^Shadow\s+(.+)$`)
	formePrefix  = regexp.MustCompile(`(?i)^(Therian|Incarnate|Origin|Altered|Sky|Land|Attack|Defense|Speed)\s+Forme?\s+(.+)$`)
	parenFormRe  = regexp.MustCompile(`(?i)^(.+?)\s+\((.+?)(?:\s+forme?)?\)$`)
	driveSuffix  = regexp.MustCompile(`(?i)\s+drive$`)
	leadingAndRe = regexp.MustCompile(`(?i)^and\s+`)
)

// Parsed is a creature name split into its base species and a sprite key
// suffix such as "-mega", "-megax" or "-origin".
type Parsed struct {
	Base   string
	Suffix string
}

// SplitNames splits a title fragment naming one or more creatures.
//
//	"Mega Latias and Mega Latios"          -> [Mega Latias, Mega Latios]
//	"A, B, and C"                          -> [A, B, C]
//	"Deoxys (Attack & Speed Forme)"        -> [Deoxys (Attack Forme), Deoxys (Speed Forme)]
func SplitNames(s string) []string {
	s = strings.TrimSpace(s)
	if m := dualFormRe.FindStringSubmatch(s); m != nil {
		base := strings.TrimSpace(m[1])
		return []string{
			base + " (" + strings.TrimSpace(m[2]) + " Forme)",
			base + " (" + strings.TrimSpace(m[3]) + " Forme)",
		}
	}

	var names []string
	parts := strings.Split(s, ",")
	switch {
	case len(parts) > 1:
		for i, part := range parts {
			part = strings.TrimSpace(leadingAndRe.ReplaceAllString(strings.TrimSpace(part), ""))
			if i == len(parts)-1 && strings.Contains(part, " and ") {
				names = append(names, splitAnd(part)...)
				continue
			}
			names = append(names, part)
		}
	case strings.Contains(s, " and "):
		names = splitAnd(s)
	default:
		names = []string{s}
	}

	out := names[:0]
	for _, n := range names {
		if n != "" {
			out = append(out, n)
		}
	}
	return out
}

func splitAnd(s string) []string {
	parts := strings.Split(s, " and ")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

// ParseName maps a display name to its base species and sprite suffix.
func ParseName(s string) Parsed {
	s = strings.TrimSpace(s)

	if m := megaXYRe.FindStringSubmatch(s); m != nil {
		suffix := "-megay"
		if strings.EqualFold(m[2], "x") {
			suffix = "-megax"
		}
		return Parsed{Base: strings.TrimSpace(m[1]), Suffix: suffix}
	}
	if m := megaRe.FindStringSubmatch(s); m != nil {
		return Parsed{Base: strings.TrimSpace(m[1]), Suffix: "-mega"}
	}
	// Shadow creatures share the regular sprite.
	if m := shadowRe.FindStringSubmatch(s); m != nil {
		return Parsed{Base: strings.TrimSpace(m[1])}
	}
	if m := formePrefix.FindStringSubmatch(s); m != nil {
		return Parsed{Base: strings.TrimSpace(m[2]), Suffix: "-" + strings.ToLower(m[1])}
	}
	if m := parenFormRe.FindStringSubmatch(s); m != nil {
		base := strings.TrimSpace(m[1])
		form := strings.ToLower(strings.TrimSpace(m[2]))
		switch {
		case strings.EqualFold(base, "deoxys") && form == "normal":
			return Parsed{Base: base}
		case strings.EqualFold(base, "genesect"):
			form = driveSuffix.ReplaceAllString(form, "")
		}
		return Parsed{Base: base, Suffix: "-" + form}
	}
	if strings.EqualFold(s, "genesect") {
		return Parsed{Base: "Genesect", Suffix: "-normal"}
	}
	return Parsed{Base: s}
}
