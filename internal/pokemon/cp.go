package pokemon

import (
	"math"
	"regexp"
	"strings"
)

// CP multipliers by trainer level.
const (
	CPMLevel15 = 0.51739395
	CPMLevel20 = 0.5974
	CPMLevel25 = 0.667934
	CPMLevel40 = 0.7903
	CPMLevel50 = 0.8403
)

const minCP = 10

// Stats are base stats from the species data set.
type Stats struct {
	BaseStamina int `json:"baseStamina"`
	BaseAttack  int `json:"baseAttack"`
	BaseDefense int `json:"baseDefense"`
}

// IVs are individual values, 0..15 each.
type IVs struct {
	Attack, Defense, Stamina int
}

// Perfect is the 15/15/15 spread.
var Perfect = IVs{15, 15, 15}

// CP computes combat power for base stats at a level multiplier.
func CP(s Stats, cpm float64, iv IVs) int {
	atk := float64(s.BaseAttack+iv.Attack) * cpm
	def := float64(s.BaseDefense+iv.Defense) * cpm
	sta := float64(s.BaseStamina+iv.Stamina) * cpm
	cp := int(math.Floor(atk * math.Sqrt(def) * math.Sqrt(sta) / 10))
	if cp < minCP {
		return minCP
	}
	return cp
}

// RaidCP is the perfect-IV CP of a raid catch: level 20, and level 25 when
// weather boosted.
type RaidCP struct {
	Level20 int `json:"level20"`
	Level25 int `json:"level25"`
}

func RaidCPOf(s Stats) RaidCP {
	return RaidCP{
		Level20: CP(s, CPMLevel20, Perfect),
		Level25: CP(s, CPMLevel25, Perfect),
	}
}

var nonWord = regexp.MustCompile(`\W`)

// cleanName lowercases and strips everything but [A-Za-z0-9_].
func cleanName(s string) string {
	return strings.ToLower(nonWord.ReplaceAllString(s, ""))
}
