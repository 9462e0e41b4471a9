package pokemon

import (
	"strings"

	appLog "pogocal/internal/log"
	"pogocal/internal/model"
)

// SpotlightBonus classifies the bonus text of a spotlight hour, e.g.
// "2× Catch Stardust" -> {Category: catch, Type: stardust}.
type SpotlightBonus struct {
	Category string `json:"category"` // catch, evolve, transfer
	Type     string `json:"type"`     // xp, stardust, candy
}

// SpotlightBonusOf returns the bonus of a spotlight hour. ok is false for
// other event types and for bonus text it does not recognize.
func SpotlightBonusOf(ev model.Event) (SpotlightBonus, bool) {
	if ev.Type != "pokemon-spotlight-hour" || ev.Extra.Spotlight == nil || ev.Extra.Spotlight.Bonus == "" {
		return SpotlightBonus{}, false
	}
	bonus := strings.ToLower(ev.Extra.Spotlight.Bonus)

	var b SpotlightBonus
	switch {
	case strings.Contains(bonus, "xp"):
		b.Type = "xp"
	case strings.Contains(bonus, "stardust"):
		b.Type = "stardust"
	case strings.Contains(bonus, "candy"):
		b.Type = "candy"
	default:
		appLog.Debug("unrecognized spotlight bonus type", "id", ev.ID, "bonus", bonus)
		return SpotlightBonus{}, false
	}

	switch {
	case strings.Contains(bonus, "catch"):
		b.Category = "catch"
	case strings.Contains(bonus, "evolution"):
		b.Category = "evolve"
	case strings.Contains(bonus, "transfer"):
		b.Category = "transfer"
	default:
		appLog.Debug("unrecognized spotlight bonus category", "id", ev.ID, "bonus", bonus)
		return SpotlightBonus{}, false
	}
	return b, true
}
