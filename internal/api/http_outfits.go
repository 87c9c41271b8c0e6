package api

import (
	"closet/internal/entity"
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
)

// SuggestOutfit 推荐一套穿搭。衣橱不可读但有缓存时基于缓存推荐并标记 stale。
func (h *HTTPHandler) SuggestOutfit(c *gin.Context) {
	user := CurrentUser(c)
	if user == nil {
		Unauthorized(c, "authentication required")
		return
	}

	var query entity.SuggestionQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		BindError(c, err)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	suggestion, err := h.suggestions.Suggest(ctx, user.ID, query)
	if !readResult(c, suggestion.Stale, err, "") {
		return
	}
	c.JSON(http.StatusOK, entity.SuggestionResponse{
		Occasion: suggestion.Occasion,
		Mood:     suggestion.Mood,
		Garments: h.makeGarments(suggestion.Garments),
		Stale:    suggestion.Stale,
	})
}

// WearOutfit 记录一次穿着：每件衣物穿着次数加一，全部成功或全部失败。
func (h *HTTPHandler) WearOutfit(c *gin.Context) {
	user := CurrentUser(c)
	if user == nil {
		Unauthorized(c, "authentication required")
		return
	}

	var req entity.WearOutfitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BindError(c, err)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	garments, wornAt, err := h.closet.WearOutfit(ctx, user.ID, req.GarmentIDs)
	if err != nil {
		ServiceError(c, err, ErrCodeGarmentNotFound)
		return
	}
	c.JSON(http.StatusOK, entity.WearOutfitResponse{
		Garments: h.makeGarments(garments),
		WornAt:   wornAt,
	})
}
