// Package eventname cleans raw event titles from the feed for display.
package eventname

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

var gamePrefix = regexp.MustCompile(`(?i)^pok[eé]mon\s+`)

// DecodeHTMLEntities decodes named and numeric (&#NNN; / &#xHH;) entities.
// &nbsp; becomes a plain space so titles split and compare cleanly.
func DecodeHTMLEntities(s string) string {
	if s == "" || !strings.Contains(s, "&") {
		return s
	}
	s = strings.ReplaceAll(s, "&nbsp;", " ")
	return strings.ReplaceAll(html.UnescapeString(s), "\u00a0", " ")
}

// Format decodes entities and strips a leading "Pokémon " / "Pokemon "
// prefix (case-insensitive, either accent form).
func Format(s string) string {
	if s == "" {
		return s
	}
	return gamePrefix.ReplaceAllString(DecodeHTMLEntities(s), "")
}
