package api

import (
	"closet/internal/service"
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// 错误码
const (
	// 请求
	ErrCodeInvalidRequest     = "ERR_INVALID_REQUEST"
	ErrCodeMissingField       = "ERR_MISSING_FIELD"
	ErrCodeInvalidID          = "ERR_INVALID_ID"
	ErrCodeRateLimited        = "ERR_RATE_LIMITED"
	ErrCodeInternalError      = "ERR_INTERNAL_ERROR"
	ErrCodeServiceUnavailable = "ERR_SERVICE_UNAVAILABLE"

	// 账号与会话
	ErrCodeUnauthorized       = "ERR_UNAUTHORIZED"
	ErrCodeInvalidCredentials = "ERR_INVALID_CREDENTIALS"
	ErrCodeEmailExists        = "ERR_EMAIL_EXISTS"
	ErrCodeRegistrationClosed = "ERR_REGISTRATION_CLOSED"
	ErrCodeUserDisabled       = "ERR_USER_DISABLED"
	ErrCodeUserNotFound       = "ERR_USER_NOT_FOUND"
	ErrCodeSessionExpired     = "ERR_SESSION_EXPIRED"

	// 衣橱资源
	ErrCodeNotFound        = "ERR_NOT_FOUND"
	ErrCodeGarmentNotFound = "ERR_GARMENT_NOT_FOUND"
	ErrCodeEntryNotFound   = "ERR_ENTRY_NOT_FOUND"
	ErrCodeSlotNotFound    = "ERR_SLOT_NOT_FOUND"

	// 衣橱存储
	ErrCodeStoreRead  = "ERR_STORE_READ"
	ErrCodeStoreWrite = "ERR_STORE_WRITE"
)

// staleHeader 标记响应数据来自缓存快照。
const staleHeader = "X-Wardrobe-Stale"

// APIError 统一的 API 错误响应结构
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

func ErrorResponse(c *gin.Context, status int, code string, message string) {
	c.JSON(status, APIError{Code: code, Message: message})
}

func ErrorResponseWithDetails(c *gin.Context, status int, code string, message string, details any) {
	c.JSON(status, APIError{Code: code, Message: message, Details: details})
}

func BadRequest(c *gin.Context, code string, message string) {
	ErrorResponse(c, http.StatusBadRequest, code, message)
}

func Unauthorized(c *gin.Context, message string) {
	ErrorResponse(c, http.StatusUnauthorized, ErrCodeUnauthorized, message)
}

func NotFound(c *gin.Context, code string, message string) {
	ErrorResponse(c, http.StatusNotFound, code, message)
}

func InternalError(c *gin.Context, message string) {
	ErrorResponse(c, http.StatusInternalServerError, ErrCodeInternalError, message)
}

func ServiceUnavailable(c *gin.Context, message string) {
	ErrorResponse(c, http.StatusServiceUnavailable, ErrCodeServiceUnavailable, message)
}

// MissingField 缺少必填字段，details 中带字段名
func MissingField(c *gin.Context, field string) {
	ErrorResponseWithDetails(c, http.StatusBadRequest, ErrCodeMissingField, field+" is required", gin.H{"field": field})
}

func InvalidPayload(c *gin.Context) {
	ErrorResponse(c, http.StatusBadRequest, ErrCodeInvalidRequest, "invalid request payload")
}

// InvalidID 路径参数不是正整数
func InvalidID(c *gin.Context, param string) {
	ErrorResponseWithDetails(c, http.StatusBadRequest, ErrCodeInvalidID, "invalid "+param, gin.H{"param": param})
}

// serviceFailure 服务层哨兵错误到 HTTP 响应的映射
type serviceFailure struct {
	target  error
	status  int
	code    string
	message string
}

// 按顺序匹配，ErrNotFound 与 ErrInvalidInput 单独处理
var serviceFailures = []serviceFailure{
	{service.ErrStoreRead, http.StatusServiceUnavailable, ErrCodeStoreRead, "wardrobe store is unavailable"},
	{service.ErrStoreWrite, http.StatusServiceUnavailable, ErrCodeStoreWrite, "wardrobe could not be saved"},
	{context.DeadlineExceeded, http.StatusServiceUnavailable, ErrCodeServiceUnavailable, "request timed out"},
	{context.Canceled, http.StatusServiceUnavailable, ErrCodeServiceUnavailable, "request cancelled"},
}

// ServiceError 把服务层错误映射为 HTTP 响应，notFoundCode 为空时使用 ERR_NOT_FOUND。
func ServiceError(c *gin.Context, err error, notFoundCode string) {
	if errors.Is(err, service.ErrNotFound) {
		if notFoundCode == "" {
			notFoundCode = ErrCodeNotFound
		}
		NotFound(c, notFoundCode, "resource not found")
		return
	}
	if errors.Is(err, service.ErrInvalidInput) {
		BadRequest(c, ErrCodeInvalidRequest, err.Error())
		return
	}
	for _, f := range serviceFailures {
		if errors.Is(err, f.target) {
			ErrorResponse(c, f.status, f.code, f.message)
			return
		}
	}
	logrus.WithError(err).WithField("path", c.FullPath()).Error("unhandled service error")
	InternalError(c, "internal error")
}

// readResult 处理带缓存回退的读取结果。
//
// stale 为 true 时即使 err 非空也继续返回 200，并设置 X-Wardrobe-Stale 头；
// 否则 err 非空时写入错误响应并返回 false。
func readResult(c *gin.Context, stale bool, err error, notFoundCode string) bool {
	if stale {
		c.Header(staleHeader, "true")
		if err != nil {
			logrus.WithError(err).WithField("path", c.FullPath()).Warn("serving stale wardrobe snapshot")
		}
		return true
	}
	if err != nil {
		ServiceError(c, err, notFoundCode)
		return false
	}
	return true
}
