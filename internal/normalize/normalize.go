// Package normalize canonicalizes raw item names into the lookup key used by
// every cache and provider.
//
// Catalog imports frequently carry the ★ marker mis-encoded as a leading "?",
// and knife/glove names sometimes arrive without the marker at all even
// though those categories always carry it on the market. Normalize repairs
// both so that one item maps to one key everywhere. It is idempotent and safe
// to call redundantly at any boundary.
package normalize

import "strings"

// StarPrefix is the canonical special-item marker.
const StarPrefix = "★"

// starCategories are name fragments that always denote a ★ item.
var starCategories = []string{
	"Karambit",
	"Bayonet",
	"Knife",
	"Daggers",
	"Gloves",
	"Hand Wraps",
}

// Normalize returns the canonical lookup key for a raw item name.
func Normalize(raw string) string {
	name := strings.TrimSpace(raw)
	if name == "" {
		return ""
	}

	// Repair the "? Karambit ..." mis-encoding. A name that is nothing
	// but the mis-encoded marker repairs to the bare marker, with no
	// trailing space to strip on a second pass.
	if strings.HasPrefix(name, "?") {
		rest := strings.TrimSpace(strings.TrimLeft(name, "? "))
		if rest == "" {
			return StarPrefix
		}
		name = StarPrefix + " " + rest
	}

	// Knife and glove categories always carry the marker.
	if !strings.HasPrefix(name, StarPrefix) && isStarCategory(name) {
		name = StarPrefix + " " + name
	}

	return name
}

// Variants returns the ordered name spellings to try against providers:
// with the wear suffix, bare, and both again without the ★ marker. Some
// providers list ★ items without the marker, so the starless forms come last.
func Variants(name, wear string) []string {
	name = Normalize(name)
	bare := strings.TrimSpace(strings.TrimPrefix(name, StarPrefix))

	variants := []string{
		name + " (" + wear + ")",
		name,
	}
	if bare != name {
		variants = append(variants,
			bare+" ("+wear+")",
			bare,
		)
	}
	return variants
}

func isStarCategory(name string) bool {
	for _, cat := range starCategories {
		if strings.Contains(name, cat) {
			return true
		}
	}
	return false
}
