package api

import (
	"closet/internal/entity"
	"closet/internal/wardrobe"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Options 返回客户端选择器使用的分类、颜色、心情与场合，以及推荐引擎认识的场合与心情
func (h *HTTPHandler) Options(c *gin.Context) {
	tables := h.suggestions.Tables()
	c.JSON(http.StatusOK, entity.OptionsResponse{
		Categories:          append([]string(nil), wardrobe.Categories...),
		Palette:             append([]string(nil), wardrobe.Palette...),
		Moods:               append([]string(nil), wardrobe.Moods...),
		Occasions:           append([]string(nil), wardrobe.Occasions...),
		SuggestionOccasions: tables.KnownOccasions(),
		SuggestionMoods:     tables.KnownMoods(),
	})
}
