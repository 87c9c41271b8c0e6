package api

import (
	"closet/internal/service"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func recordResponse(t *testing.T, write func(c *gin.Context)) (*httptest.ResponseRecorder, APIError) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	write(c)

	var body APIError
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	}
	return w, body
}

func TestShortcutResponses(t *testing.T) {
	tests := []struct {
		name   string
		write  func(c *gin.Context)
		status int
		code   string
	}{
		{"bad request", func(c *gin.Context) { BadRequest(c, ErrCodeInvalidRequest, "颜色无效") }, http.StatusBadRequest, ErrCodeInvalidRequest},
		{"unauthorized", func(c *gin.Context) { Unauthorized(c, "需要登录") }, http.StatusUnauthorized, ErrCodeUnauthorized},
		{"garment missing", func(c *gin.Context) { NotFound(c, ErrCodeGarmentNotFound, "衣物不存在") }, http.StatusNotFound, ErrCodeGarmentNotFound},
		{"internal", func(c *gin.Context) { InternalError(c, "服务器错误") }, http.StatusInternalServerError, ErrCodeInternalError},
		{"unavailable", func(c *gin.Context) { ServiceUnavailable(c, "服务不可用") }, http.StatusServiceUnavailable, ErrCodeServiceUnavailable},
		{"payload", InvalidPayload, http.StatusBadRequest, ErrCodeInvalidRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, body := recordResponse(t, tt.write)
			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.code, body.Code)
			assert.NotEmpty(t, body.Message)
		})
	}
}

func TestDetailResponses(t *testing.T) {
	_, body := recordResponse(t, func(c *gin.Context) { MissingField(c, "mood") })
	assert.Equal(t, ErrCodeMissingField, body.Code)
	assert.Equal(t, "mood is required", body.Message)
	assert.Equal(t, map[string]any{"field": "mood"}, body.Details)

	w, body := recordResponse(t, func(c *gin.Context) { InvalidID(c, "garment_id") })
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, ErrCodeInvalidID, body.Code)
	assert.Equal(t, map[string]any{"param": "garment_id"}, body.Details)
}

func TestServiceErrorMapping(t *testing.T) {
	tests := []struct {
		name         string
		err          error
		notFoundCode string
		status       int
		code         string
	}{
		{"garment missing", fmt.Errorf("get_garment: %w", service.ErrNotFound), ErrCodeGarmentNotFound, http.StatusNotFound, ErrCodeGarmentNotFound},
		{"generic missing", fmt.Errorf("stats: %w", service.ErrNotFound), "", http.StatusNotFound, ErrCodeNotFound},
		{"invalid input", fmt.Errorf("%w: mood is required", service.ErrInvalidInput), "", http.StatusBadRequest, ErrCodeInvalidRequest},
		{"store read", fmt.Errorf("list_garments: %w: %w", service.ErrStoreRead, errors.New("boom")), "", http.StatusServiceUnavailable, ErrCodeStoreRead},
		{"store write", fmt.Errorf("wear_outfit: %w: %w", service.ErrStoreWrite, errors.New("boom")), "", http.StatusServiceUnavailable, ErrCodeStoreWrite},
		{"deadline", fmt.Errorf("list_entries: %w", context.DeadlineExceeded), "", http.StatusServiceUnavailable, ErrCodeServiceUnavailable},
		{"unknown", errors.New("boom"), "", http.StatusInternalServerError, ErrCodeInternalError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, body := recordResponse(t, func(c *gin.Context) { ServiceError(c, tt.err, tt.notFoundCode) })
			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.code, body.Code)
		})
	}
}

func TestInvalidInputKeepsReason(t *testing.T) {
	_, body := recordResponse(t, func(c *gin.Context) {
		ServiceError(c, fmt.Errorf("%w: unknown color %q", service.ErrInvalidInput, "Chartreuse"), "")
	})
	assert.Contains(t, body.Message, "Chartreuse")
}

func TestReadResult(t *testing.T) {
	t.Run("stale snapshot is served", func(t *testing.T) {
		var ok bool
		w, _ := recordResponse(t, func(c *gin.Context) { ok = readResult(c, true, service.ErrStoreRead, "") })
		assert.True(t, ok)
		assert.Equal(t, "true", w.Header().Get(staleHeader))
		assert.Zero(t, w.Body.Len())
	})

	t.Run("cold failure writes error", func(t *testing.T) {
		var ok bool
		w, body := recordResponse(t, func(c *gin.Context) { ok = readResult(c, false, service.ErrStoreRead, "") })
		assert.False(t, ok)
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Equal(t, ErrCodeStoreRead, body.Code)
		assert.Empty(t, w.Header().Get(staleHeader))
	})

	t.Run("fresh data passes through", func(t *testing.T) {
		var ok bool
		w, _ := recordResponse(t, func(c *gin.Context) { ok = readResult(c, false, nil, "") })
		assert.True(t, ok)
		assert.Empty(t, w.Header().Get(staleHeader))
	})
}
