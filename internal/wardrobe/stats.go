package wardrobe

import (
	"closet/internal/entity"
	"sort"
	"strings"
	"time"
)

const (
	// TopListLimit caps the most and least worn lists.
	TopListLimit = 5
	// DefaultUnwornPeriod marks a garment as neglected.
	DefaultUnwornPeriod = 30 * 24 * time.Hour
	// DefaultColorWindow is how many recent entries feed color combinations.
	DefaultColorWindow = 50
	// DefaultRecentLimit is how many entries the recent outfits list keeps.
	DefaultRecentLimit = 5

	unknownLabel = "Unknown"
	monthLabel   = "January 2006"
)

// CategoryStat aggregates garments of one category.
type CategoryStat struct {
	Category  string `json:"category"`
	Count     int    `json:"count"`
	WearCount int64  `json:"wear_count"`
}

// MonthCount counts garments last worn in a calendar month.
type MonthCount struct {
	Year  int        `json:"year"`
	Month time.Month `json:"month"`
	Label string     `json:"label"`
	Count int        `json:"count"`
}

// ColorCombination counts outfits that used exactly this color set.
type ColorCombination struct {
	Colors []string `json:"colors"`
	Count  int      `json:"count"`
}

// MonthEntries groups diary entries by calendar month.
type MonthEntries struct {
	Year    int                    `json:"year"`
	Month   time.Month             `json:"month"`
	Label   string                 `json:"label"`
	Entries []entity.DbOutfitEntry `json:"entries"`
}

// CategoryCounts counts garments per category. Garments without a category
// are counted under "Unknown".
func CategoryCounts(items []entity.DbGarment) map[string]int {
	counts := make(map[string]int)
	for _, item := range items {
		counts[labelOrUnknown(item.Category)]++
	}
	return counts
}

// Favorites keeps the garments flagged as favorite.
func Favorites(items []entity.DbGarment) []entity.DbGarment {
	out := make([]entity.DbGarment, 0)
	for _, item := range items {
		if item.Favorite {
			out = append(out, item)
		}
	}
	return out
}

// MostWorn returns up to five garments, most worn first. Ties keep snapshot
// order.
func MostWorn(items []entity.DbGarment) []entity.DbGarment {
	sorted := append([]entity.DbGarment(nil), items...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].TimesWorn > sorted[j].TimesWorn
	})
	return truncate(sorted, TopListLimit)
}

// LeastWorn returns up to five garments, least worn first. Ties keep snapshot
// order.
func LeastWorn(items []entity.DbGarment) []entity.DbGarment {
	sorted := append([]entity.DbGarment(nil), items...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].TimesWorn < sorted[j].TimesWorn
	})
	return truncate(sorted, TopListLimit)
}

// CategoryStatistics aggregates count and wears per category, ordered by
// wear count descending then category name.
func CategoryStatistics(items []entity.DbGarment) []CategoryStat {
	index := make(map[string]int)
	stats := make([]CategoryStat, 0)
	for _, item := range items {
		category := labelOrUnknown(item.Category)
		pos, ok := index[category]
		if !ok {
			pos = len(stats)
			index[category] = pos
			stats = append(stats, CategoryStat{Category: category})
		}
		stats[pos].Count++
		stats[pos].WearCount += item.TimesWorn
	}
	sort.Slice(stats, func(i, j int) bool {
		if stats[i].WearCount != stats[j].WearCount {
			return stats[i].WearCount > stats[j].WearCount
		}
		return stats[i].Category < stats[j].Category
	})
	return stats
}

// TotalWearCount sums the wear counters.
func TotalWearCount(items []entity.DbGarment) int64 {
	var total int64
	for _, item := range items {
		total += item.TimesWorn
	}
	return total
}

// AverageWearsPerItem is 0 for an empty wardrobe.
func AverageWearsPerItem(items []entity.DbGarment) float64 {
	if len(items) == 0 {
		return 0
	}
	return float64(TotalWearCount(items)) / float64(len(items))
}

// UnwornItems returns garments never worn or last worn before now-period.
func UnwornItems(items []entity.DbGarment, now time.Time, period time.Duration) []entity.DbGarment {
	if period <= 0 {
		period = DefaultUnwornPeriod
	}
	cutoff := now.Add(-period)
	out := make([]entity.DbGarment, 0)
	for _, item := range items {
		if item.LastWornAt == nil || item.LastWornAt.Before(cutoff) {
			out = append(out, item)
		}
	}
	return out
}

// WearFrequencyByMonth counts garments by the month they were last worn, in
// loc. Months are ordered newest first.
func WearFrequencyByMonth(items []entity.DbGarment, loc *time.Location) []MonthCount {
	if loc == nil {
		loc = time.Local
	}
	type monthKey struct {
		year  int
		month time.Month
	}
	counts := make(map[monthKey]int)
	for _, item := range items {
		if item.LastWornAt == nil {
			continue
		}
		local := item.LastWornAt.In(loc)
		counts[monthKey{local.Year(), local.Month()}]++
	}

	out := make([]MonthCount, 0, len(counts))
	for key, count := range counts {
		out = append(out, MonthCount{
			Year:  key.year,
			Month: key.month,
			Label: time.Date(key.year, key.month, 1, 0, 0, 0, 0, loc).Format(monthLabel),
			Count: count,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Year != out[j].Year {
			return out[i].Year > out[j].Year
		}
		return out[i].Month > out[j].Month
	})
	return out
}

// PopularColorCombinations looks at the window most recent entries and
// counts each distinct, sorted set of at least two garment colors.
func PopularColorCombinations(entries []entity.DbOutfitEntry, window int) []ColorCombination {
	if window <= 0 {
		window = DefaultColorWindow
	}
	recent := RecentOutfits(entries, window)

	counts := make(map[string]int)
	sets := make(map[string][]string)
	for _, entry := range recent {
		colors := distinctColors(entry.Garments)
		if len(colors) < 2 {
			continue
		}
		key := strings.Join(colors, ",")
		counts[key]++
		sets[key] = colors
	}

	out := make([]ColorCombination, 0, len(counts))
	for key, count := range counts {
		out = append(out, ColorCombination{Colors: sets[key], Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return strings.Join(out[i].Colors, ",") < strings.Join(out[j].Colors, ",")
	})
	return out
}

// MoodDistribution counts diary entries per mood.
func MoodDistribution(entries []entity.DbOutfitEntry) map[string]int {
	counts := make(map[string]int)
	for _, entry := range entries {
		counts[labelOrUnknown(entry.Mood)]++
	}
	return counts
}

// RecentOutfits returns up to limit entries, newest first.
func RecentOutfits(entries []entity.DbOutfitEntry, limit int) []entity.DbOutfitEntry {
	sorted := append([]entity.DbOutfitEntry(nil), entries...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].WornAt.After(sorted[j].WornAt)
	})
	if limit > 0 && len(sorted) > limit {
		sorted = sorted[:limit]
	}
	return sorted
}

// EntriesByMonth buckets entries by the month they were worn in loc, newest
// month first and newest entry first inside a month.
func EntriesByMonth(entries []entity.DbOutfitEntry, loc *time.Location) []MonthEntries {
	if loc == nil {
		loc = time.Local
	}
	groups := make([]MonthEntries, 0)
	for _, entry := range RecentOutfits(entries, 0) {
		local := entry.WornAt.In(loc)
		last := len(groups) - 1
		if last >= 0 && groups[last].Year == local.Year() && groups[last].Month == local.Month() {
			groups[last].Entries = append(groups[last].Entries, entry)
			continue
		}
		groups = append(groups, MonthEntries{
			Year:    local.Year(),
			Month:   local.Month(),
			Label:   time.Date(local.Year(), local.Month(), 1, 0, 0, 0, 0, loc).Format(monthLabel),
			Entries: []entity.DbOutfitEntry{entry},
		})
	}
	return groups
}

func distinctColors(garments []entity.DbGarment) []string {
	seen := make(map[string]struct{}, len(garments))
	colors := make([]string, 0, len(garments))
	for _, garment := range garments {
		color := strings.TrimSpace(garment.Color)
		if color == "" {
			continue
		}
		if _, ok := seen[color]; ok {
			continue
		}
		seen[color] = struct{}{}
		colors = append(colors, color)
	}
	sort.Strings(colors)
	return colors
}

func truncate(items []entity.DbGarment, limit int) []entity.DbGarment {
	if len(items) > limit {
		return items[:limit]
	}
	return items
}

func labelOrUnknown(value string) string {
	if trimmed := strings.TrimSpace(value); trimmed != "" {
		return trimmed
	}
	return unknownLabel
}
