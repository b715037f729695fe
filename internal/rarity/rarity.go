// Package rarity holds the static item classification tables: keyword to
// rarity label, and the wear tiers with their float bands.
//
// The upstream schema endpoint that used to serve rarities is gone, so the
// table is maintained locally. Lookups are longest-signal-first: the ★ marker
// and category keywords win over weapon families.
package rarity

import (
	"math/rand/v2"
	"strings"
)

// Unknown is returned when no rule matches.
const Unknown = "Unknown"

// rule pairs a name fragment with its rarity label. Ordered: earlier rules
// take precedence, so the marker and categories come before weapon families.
type rule struct {
	keyword string
	label   string
}

var rules = []rule{
	{"★", "Covert"}, // knives carry the marker
	{"Gloves", "Extraordinary"},
	{"Hand Wraps", "Extraordinary"},
	{"Knife", "Covert"},
	{"AWP", "Covert"},
	{"AK-47", "Classified"},
	{"M4A4", "Classified"},
	{"M4A1-S", "Classified"},
	{"Desert Eagle", "Restricted"},
	{"USP-S", "Restricted"},
	{"Five-SeveN", "Restricted"},
	{"P90", "Restricted"},
	{"AUG", "Restricted"},
	{"XM1014", "Restricted"},
	{"Glock-18", "Mil-Spec"},
	{"P250", "Mil-Spec"},
	{"MP9", "Mil-Spec"},
	{"MP7", "Mil-Spec"},
	{"FAMAS", "Mil-Spec"},
	{"SCAR-20", "Mil-Spec"},
	{"G3SG1", "Mil-Spec"},
	{"Nova", "Mil-Spec"},
	{"Sawed-Off", "Mil-Spec"},
	{"MAC-10", "Mil-Spec"},
	{"Tec-9", "Mil-Spec"},
	{"CZ75-Auto", "Mil-Spec"},
}

// Lookup returns the rarity label for an item name, or Unknown.
func Lookup(name string) string {
	if strings.TrimSpace(name) == "" {
		return Unknown
	}
	for _, r := range rules {
		if strings.Contains(name, r.keyword) {
			return r.label
		}
	}
	return Unknown
}

// WearTier is one condition band. Floats for the tier are uniform in
// [FloatMin, FloatMax).
type WearTier struct {
	Name     string
	FloatMin float64
	FloatMax float64
}

// Tiers are the five market conditions, best to worst.
var Tiers = []WearTier{
	{"Factory New", 0.00, 0.07},
	{"Minimal Wear", 0.07, 0.15},
	{"Field-Tested", 0.15, 0.38},
	{"Well-Worn", 0.38, 0.45},
	{"Battle-Scarred", 0.45, 1.00},
}

// RandomTier picks a uniformly random wear tier.
func RandomTier() WearTier {
	return Tiers[rand.IntN(len(Tiers))]
}

// RollFloat draws a wear float uniform within the tier's band.
func (t WearTier) RollFloat() float64 {
	return t.FloatMin + (t.FloatMax-t.FloatMin)*rand.Float64()
}

// TierByName returns the tier for a condition label.
func TierByName(name string) (WearTier, bool) {
	for _, t := range Tiers {
		if t.Name == name {
			return t, true
		}
	}
	return WearTier{}, false
}
