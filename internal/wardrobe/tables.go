// Package wardrobe holds the outfit recommendation and wear statistics
// engines. Everything here is pure computation over wardrobe snapshots; the
// callers own persistence.
package wardrobe

import (
	"maps"
	"slices"
	"strings"
)

// Categories offered to clients when adding a garment.
var Categories = []string{"Tops", "Bottoms", "Dresses", "Shoes", "Accessories"}

// Palette is the fixed set of garment colors.
var Palette = []string{
	"Black", "White", "Gray", "Navy", "Blue", "Red", "Pink", "Yellow",
	"Green", "Purple", "Brown", "Orange", "Beige", "Cream", "Gold", "Silver",
}

// Moods offered when logging an outfit.
var Moods = []string{"Happy", "Confident", "Casual", "Professional", "Cozy", "Glamorous"}

// Occasions offered when planning an outfit.
var Occasions = []string{"Casual", "Work", "Party", "Date", "Special Event", "Other"}

// Tables maps moods to colors and occasions to category tokens. Keys are
// lower-case. A Tables value must not be mutated once handed to a
// Recommender.
type Tables struct {
	MoodColors          map[string][]string
	OccasionCategories  map[string][]string
	EssentialCategories []string
}

// DefaultTables returns a fresh copy of the built-in lookup tables.
func DefaultTables() Tables {
	return NewTables(
		map[string][]string{
			"happy":        {"Yellow", "Pink", "Orange", "Bright"},
			"professional": {"Black", "Navy", "Gray", "White"},
			"casual":       {"Blue", "Green", "Brown", "Gray"},
			"glamorous":    {"Red", "Gold", "Silver", "Purple"},
			"cozy":         {"Beige", "Brown", "Gray", "Cream"},
		},
		map[string][]string{
			"work":   {"Blazer", "Blouse", "Dress Pants", "Pencil Skirt", "Dress Shoes", "Heels"},
			"casual": {"T-Shirt", "Jeans", "Sneakers", "Casual Dress", "Sandals"},
			"formal": {"Dress", "Suit", "Heels", "Formal Wear"},
			"cozy":   {"Sweater", "Hoodie", "Sweatpants", "Lounge Wear"},
		},
		[]string{"Tops", "Bottoms", "Shoes", "Accessories"},
	)
}

// NewTables copies the given maps, normalising keys to lower case.
func NewTables(moodColors, occasionCategories map[string][]string, essentials []string) Tables {
	return Tables{
		MoodColors:          copyTable(moodColors),
		OccasionCategories:  copyTable(occasionCategories),
		EssentialCategories: append([]string(nil), essentials...),
	}
}

// ColorsForMood looks up a mood case-insensitively.
func (t Tables) ColorsForMood(mood string) ([]string, bool) {
	colors, ok := t.MoodColors[normaliseKey(mood)]
	return colors, ok && len(colors) > 0
}

// CategoriesForOccasion looks up an occasion case-insensitively.
func (t Tables) CategoriesForOccasion(occasion string) ([]string, bool) {
	categories, ok := t.OccasionCategories[normaliseKey(occasion)]
	return categories, ok && len(categories) > 0
}

// KnownOccasions lists the occasion keys that restrict suggestions, sorted.
func (t Tables) KnownOccasions() []string {
	return slices.Sorted(maps.Keys(t.OccasionCategories))
}

// KnownMoods lists the mood keys that restrict suggestions, sorted.
func (t Tables) KnownMoods() []string {
	return slices.Sorted(maps.Keys(t.MoodColors))
}

// CanonicalColor returns the palette spelling of name, or false when the
// color is not part of the palette.
func CanonicalColor(name string) (string, bool) {
	trimmed := strings.TrimSpace(name)
	for _, color := range Palette {
		if strings.EqualFold(color, trimmed) {
			return color, true
		}
	}
	return "", false
}

// IsPaletteColor reports whether name belongs to the palette.
func IsPaletteColor(name string) bool {
	_, ok := CanonicalColor(name)
	return ok
}

// OccasionForHour picks the outfit-of-the-day occasion for a local hour.
func OccasionForHour(hour int) string {
	switch {
	case hour >= 6 && hour < 10:
		return "casual"
	case hour >= 10 && hour < 17:
		return "work"
	case hour >= 17 && hour < 20:
		return "casual"
	default:
		return "cozy"
	}
}

func copyTable(src map[string][]string) map[string][]string {
	out := make(map[string][]string, len(src))
	for key, values := range src {
		out[normaliseKey(key)] = append([]string(nil), values...)
	}
	return out
}

func normaliseKey(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}
