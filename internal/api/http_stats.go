package api

import (
	"closet/internal/entity"
	"closet/internal/wardrobe"
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
)

type statsOverviewResponse struct {
	TotalItems          int                         `json:"total_items"`
	CategoryCounts      map[string]int              `json:"category_counts"`
	Favorites           []entity.Garment            `json:"favorites"`
	MostWorn            []entity.Garment            `json:"most_worn"`
	LeastWorn           []entity.Garment            `json:"least_worn"`
	CategoryStatistics  []wardrobe.CategoryStat     `json:"category_statistics"`
	TotalWearCount      int64                       `json:"total_wear_count"`
	AverageWearsPerItem float64                     `json:"average_wears_per_item"`
	Unworn              []entity.Garment            `json:"unworn"`
	WearFrequency       []wardrobe.MonthCount       `json:"wear_frequency"`
	ColorCombinations   []wardrobe.ColorCombination `json:"color_combinations"`
	MoodDistribution    map[string]int              `json:"mood_distribution"`
	RecentOutfits       []entity.OutfitEntry        `json:"recent_outfits"`
	Stale               bool                        `json:"stale,omitempty"`
}

type monthEntriesResponse struct {
	Label   string               `json:"label"`
	Year    int                  `json:"year"`
	Month   int                  `json:"month"`
	Entries []entity.OutfitEntry `json:"entries"`
}

// StatsOverview 返回全部统计数据
func (h *HTTPHandler) StatsOverview(c *gin.Context) {
	user := CurrentUser(c)
	if user == nil {
		Unauthorized(c, "authentication required")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	overview, stale, err := h.stats.Overview(ctx, user.ID)
	if !readResult(c, stale, err, "") {
		return
	}
	c.JSON(http.StatusOK, statsOverviewResponse{
		TotalItems:          overview.TotalItems,
		CategoryCounts:      overview.CategoryCounts,
		Favorites:           h.makeGarments(overview.Favorites),
		MostWorn:            h.makeGarments(overview.MostWorn),
		LeastWorn:           h.makeGarments(overview.LeastWorn),
		CategoryStatistics:  overview.CategoryStatistics,
		TotalWearCount:      overview.TotalWearCount,
		AverageWearsPerItem: overview.AverageWearsPerItem,
		Unworn:              h.makeGarments(overview.Unworn),
		WearFrequency:       overview.WearFrequency,
		ColorCombinations:   overview.ColorCombinations,
		MoodDistribution:    overview.MoodDistribution,
		RecentOutfits:       h.makeOutfitEntries(overview.RecentOutfits),
		Stale:               stale,
	})
}

func (h *HTTPHandler) StatsUnworn(c *gin.Context) {
	user := CurrentUser(c)
	if user == nil {
		Unauthorized(c, "authentication required")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	garments, stale, err := h.stats.Unworn(ctx, user.ID)
	if !readResult(c, stale, err, "") {
		return
	}
	c.JSON(http.StatusOK, gin.H{"garments": h.makeGarments(garments), "stale": stale})
}

func (h *HTTPHandler) StatsMonthly(c *gin.Context) {
	user := CurrentUser(c)
	if user == nil {
		Unauthorized(c, "authentication required")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	months, stale, err := h.stats.MonthlyFrequency(ctx, user.ID)
	if !readResult(c, stale, err, "") {
		return
	}
	c.JSON(http.StatusOK, gin.H{"months": months, "stale": stale})
}

func (h *HTTPHandler) StatsColors(c *gin.Context) {
	user := CurrentUser(c)
	if user == nil {
		Unauthorized(c, "authentication required")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	combinations, stale, err := h.stats.ColorCombinations(ctx, user.ID)
	if !readResult(c, stale, err, "") {
		return
	}
	c.JSON(http.StatusOK, gin.H{"combinations": combinations, "stale": stale})
}

func (h *HTTPHandler) StatsMoods(c *gin.Context) {
	user := CurrentUser(c)
	if user == nil {
		Unauthorized(c, "authentication required")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	moods, stale, err := h.stats.Moods(ctx, user.ID)
	if !readResult(c, stale, err, "") {
		return
	}
	months := make([]monthEntriesResponse, 0, len(moods.Months))
	for _, m := range moods.Months {
		months = append(months, monthEntriesResponse{
			Label:   m.Label,
			Year:    m.Year,
			Month:   int(m.Month),
			Entries: h.makeOutfitEntries(m.Entries),
		})
	}
	c.JSON(http.StatusOK, gin.H{
		"distribution": moods.Distribution,
		"months":       months,
		"stale":        stale,
	})
}
