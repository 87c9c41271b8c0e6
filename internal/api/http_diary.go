package api

import (
	"closet/internal/entity"
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

func (h *HTTPHandler) ListDiary(c *gin.Context) {
	user := CurrentUser(c)
	if user == nil {
		Unauthorized(c, "authentication required")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	history, err := h.diary.List(ctx, user.ID, strings.TrimSpace(c.Query("mood")))
	if !readResult(c, history.Stale, err, "") {
		return
	}
	c.JSON(http.StatusOK, entity.OutfitEntryListResponse{
		Entries: h.makeOutfitEntries(history.Entries),
		Stale:   history.Stale,
	})
}

func (h *HTTPHandler) GetDiaryEntry(c *gin.Context) {
	user := CurrentUser(c)
	if user == nil {
		Unauthorized(c, "authentication required")
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	entry, err := h.diary.Get(ctx, user.ID, id)
	if err != nil {
		ServiceError(c, err, ErrCodeEntryNotFound)
		return
	}
	c.JSON(http.StatusOK, entity.OutfitEntryDetailResponse{Entry: h.makeOutfitEntry(*entry)})
}

// CreateDiaryEntry 保存一条穿搭日记，所含衣物同时记为已穿着。
func (h *HTTPHandler) CreateDiaryEntry(c *gin.Context) {
	user := CurrentUser(c)
	if user == nil {
		Unauthorized(c, "authentication required")
		return
	}

	var req entity.OutfitEntryCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BindError(c, err)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*requestTimeout)
	defer cancel()

	entry, err := h.diary.Create(ctx, user.ID, req)
	if err != nil {
		ServiceError(c, err, ErrCodeGarmentNotFound)
		return
	}
	c.JSON(http.StatusCreated, entity.OutfitEntryDetailResponse{Entry: h.makeOutfitEntry(*entry)})
}

func (h *HTTPHandler) UpdateDiaryEntry(c *gin.Context) {
	user := CurrentUser(c)
	if user == nil {
		Unauthorized(c, "authentication required")
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req entity.OutfitEntryUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BindError(c, err)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	entry, err := h.diary.Update(ctx, user.ID, id, req)
	if err != nil {
		ServiceError(c, err, ErrCodeEntryNotFound)
		return
	}
	c.JSON(http.StatusOK, entity.OutfitEntryDetailResponse{Entry: h.makeOutfitEntry(*entry)})
}

func (h *HTTPHandler) DeleteDiaryEntry(c *gin.Context) {
	user := CurrentUser(c)
	if user == nil {
		Unauthorized(c, "authentication required")
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	if err := h.diary.Delete(ctx, user.ID, id); err != nil {
		ServiceError(c, err, ErrCodeEntryNotFound)
		return
	}
	c.Status(http.StatusNoContent)
}
