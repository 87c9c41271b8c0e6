package api

import (
	"closet/internal/entity"
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// requestTimeout 单次请求访问衣橱存储的超时
const requestTimeout = 10 * time.Second

// parseIDParam 解析路径中的正整数 ID，失败时写入 400 响应
func parseIDParam(c *gin.Context, name string) (uint, bool) {
	raw := strings.TrimSpace(c.Param(name))
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		InvalidID(c, name)
		return 0, false
	}
	return uint(id), true
}

func (h *HTTPHandler) ListGarments(c *gin.Context) {
	user := CurrentUser(c)
	if user == nil {
		Unauthorized(c, "authentication required")
		return
	}

	var query entity.GarmentListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		BindError(c, err)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	snapshot, err := h.closet.List(ctx, user.ID, query)
	if !readResult(c, snapshot.Stale, err, "") {
		return
	}
	c.JSON(http.StatusOK, entity.GarmentListResponse{
		Garments: h.makeGarments(snapshot.Garments),
		Stale:    snapshot.Stale,
	})
}

func (h *HTTPHandler) GetGarment(c *gin.Context) {
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

	garment, err := h.closet.Get(ctx, user.ID, id)
	if err != nil {
		ServiceError(c, err, ErrCodeGarmentNotFound)
		return
	}
	c.JSON(http.StatusOK, entity.GarmentDetailResponse{Garment: h.makeGarment(*garment)})
}

func (h *HTTPHandler) CreateGarment(c *gin.Context) {
	user := CurrentUser(c)
	if user == nil {
		Unauthorized(c, "authentication required")
		return
	}

	var req entity.GarmentCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BindError(c, err)
		return
	}

	// 图片分析与上传可能较慢
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*requestTimeout)
	defer cancel()

	garment, err := h.closet.Add(ctx, user.ID, req)
	if err != nil {
		ServiceError(c, err, ErrCodeGarmentNotFound)
		return
	}
	c.JSON(http.StatusCreated, entity.GarmentDetailResponse{Garment: h.makeGarment(*garment)})
}

func (h *HTTPHandler) UpdateGarment(c *gin.Context) {
	user := CurrentUser(c)
	if user == nil {
		Unauthorized(c, "authentication required")
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req entity.GarmentUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BindError(c, err)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	garment, err := h.closet.Update(ctx, user.ID, id, req)
	if err != nil {
		ServiceError(c, err, ErrCodeGarmentNotFound)
		return
	}
	c.JSON(http.StatusOK, entity.GarmentDetailResponse{Garment: h.makeGarment(*garment)})
}

func (h *HTTPHandler) ToggleFavorite(c *gin.Context) {
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

	garment, err := h.closet.ToggleFavorite(ctx, user.ID, id)
	if err != nil {
		ServiceError(c, err, ErrCodeGarmentNotFound)
		return
	}
	c.JSON(http.StatusOK, entity.GarmentDetailResponse{Garment: h.makeGarment(*garment)})
}

func (h *HTTPHandler) DeleteGarment(c *gin.Context) {
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

	if err := h.closet.Delete(ctx, user.ID, id); err != nil {
		ServiceError(c, err, ErrCodeGarmentNotFound)
		return
	}
	c.Status(http.StatusNoContent)
}

// ResetCloset 删除当前用户的全部衣物
func (h *HTTPHandler) ResetCloset(c *gin.Context) {
	user := CurrentUser(c)
	if user == nil {
		Unauthorized(c, "authentication required")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*requestTimeout)
	defer cancel()

	deleted, err := h.closet.Reset(ctx, user.ID)
	if err != nil {
		ServiceError(c, err, "")
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": deleted})
}
