package wardrobe

import (
	"closet/internal/entity"
	"time"
)

// OverviewOptions tunes Overview. Zero values fall back to the defaults.
type OverviewOptions struct {
	Now          time.Time
	Location     *time.Location
	UnwornPeriod time.Duration
	ColorWindow  int
	RecentLimit  int
}

// Overview bundles every wardrobe statistic for a single snapshot.
type Overview struct {
	TotalItems          int
	CategoryCounts      map[string]int
	Favorites           []entity.DbGarment
	MostWorn            []entity.DbGarment
	LeastWorn           []entity.DbGarment
	CategoryStatistics  []CategoryStat
	TotalWearCount      int64
	AverageWearsPerItem float64
	Unworn              []entity.DbGarment
	WearFrequency       []MonthCount
	ColorCombinations   []ColorCombination
	MoodDistribution    map[string]int
	RecentOutfits       []entity.DbOutfitEntry
}

// BuildOverview computes all statistics over items and entries.
func BuildOverview(items []entity.DbGarment, entries []entity.DbOutfitEntry, opts OverviewOptions) Overview {
	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}
	recentLimit := opts.RecentLimit
	if recentLimit <= 0 {
		recentLimit = DefaultRecentLimit
	}

	return Overview{
		TotalItems:          len(items),
		CategoryCounts:      CategoryCounts(items),
		Favorites:           Favorites(items),
		MostWorn:            MostWorn(items),
		LeastWorn:           LeastWorn(items),
		CategoryStatistics:  CategoryStatistics(items),
		TotalWearCount:      TotalWearCount(items),
		AverageWearsPerItem: AverageWearsPerItem(items),
		Unworn:              UnwornItems(items, now, opts.UnwornPeriod),
		WearFrequency:       WearFrequencyByMonth(items, opts.Location),
		ColorCombinations:   PopularColorCombinations(entries, opts.ColorWindow),
		MoodDistribution:    MoodDistribution(entries),
		RecentOutfits:       RecentOutfits(entries, recentLimit),
	}
}
