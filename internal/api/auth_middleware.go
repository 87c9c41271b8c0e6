package api

import (
	"closet/internal/auth"
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const currentUserContextKey = "current-user"

// RequestUser 当前请求的衣橱所有者
type RequestUser struct {
	ID          uint
	Email       string
	DisplayName string
}

// bearerToken 从 Authorization 头读取令牌；EventSource 无法设置请求头，GET 请求允许改用 access_token 参数。
func bearerToken(c *gin.Context) (string, string) {
	header := strings.TrimSpace(c.GetHeader("Authorization"))
	if header == "" {
		if c.Request.Method == http.MethodGet {
			if token := strings.TrimSpace(c.Query("access_token")); token != "" {
				return token, ""
			}
		}
		return "", "missing authorization header"
	}

	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", "invalid authorization header"
	}
	if token = strings.TrimSpace(token); token == "" {
		return "", "missing bearer token"
	}
	return token, ""
}

func abortAuth(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, APIError{Code: code, Message: message})
}

// AuthMiddleware 校验会话令牌并把账号写入上下文，停用账号返回 403
func (h *HTTPHandler) AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, problem := bearerToken(c)
		if problem != "" {
			abortAuth(c, http.StatusUnauthorized, ErrCodeUnauthorized, problem)
			return
		}

		claims, err := h.authManager.ParseToken(token)
		switch {
		case errors.Is(err, auth.ErrTokenExpired):
			abortAuth(c, http.StatusUnauthorized, ErrCodeSessionExpired, "session expired, please sign in again")
			return
		case err != nil:
			logrus.WithError(err).WithField("client_ip", c.ClientIP()).Warn("rejected session token")
			abortAuth(c, http.StatusUnauthorized, ErrCodeUnauthorized, "invalid session token")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()

		owner, err := h.repo.GetUserByID(ctx, claims.UserID)
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			abortAuth(c, http.StatusUnauthorized, ErrCodeUserNotFound, "user not found")
			return
		case err != nil:
			logrus.WithError(err).WithField("user_id", claims.UserID).Error("failed to load session owner")
			abortAuth(c, http.StatusServiceUnavailable, ErrCodeServiceUnavailable, "failed to verify session")
			return
		case !owner.IsActive:
			abortAuth(c, http.StatusForbidden, ErrCodeUserDisabled, "account is disabled")
			return
		}

		c.Set(currentUserContextKey, &RequestUser{
			ID:          owner.ID,
			Email:       owner.Email,
			DisplayName: owner.DisplayName,
		})
		c.Next()
	}
}

// CurrentUser 从上下文获取当前认证用户
func CurrentUser(c *gin.Context) *RequestUser {
	user, _ := c.Get(currentUserContextKey)
	requestUser, _ := user.(*RequestUser)
	return requestUser
}
