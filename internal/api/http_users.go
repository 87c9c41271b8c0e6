package api

import (
	"closet/internal/auth"
	"closet/internal/entity"
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// UpdateProfile 修改当前用户的显示名或密码
func (h *HTTPHandler) UpdateProfile(c *gin.Context) {
	requestUser := CurrentUser(c)
	if requestUser == nil {
		Unauthorized(c, "authentication required")
		return
	}

	var req entity.ProfileUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BindError(c, err)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	user, err := h.repo.GetUserByID(ctx, requestUser.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			NotFound(c, ErrCodeUserNotFound, "user not found")
			return
		}
		logrus.WithError(err).WithField("user_id", requestUser.ID).Error("failed to load user")
		InternalError(c, "failed to load profile")
		return
	}

	var updates entity.UserUpdates
	if req.DisplayName != nil {
		displayName := strings.TrimSpace(*req.DisplayName)
		updates.DisplayName = &displayName
	}
	if req.NewPassword != nil {
		if err := auth.VerifyPassword(user.PasswordHash, req.CurrentPassword); err != nil {
			ErrorResponse(c, http.StatusUnauthorized, ErrCodeInvalidCredentials, "current password is incorrect")
			return
		}
		if err := auth.ValidatePassword(*req.NewPassword); err != nil {
			BadRequest(c, ErrCodeInvalidRequest, err.Error())
			return
		}
		hash, err := auth.HashPassword(*req.NewPassword)
		if err != nil {
			logrus.WithError(err).Error("failed to hash password")
			InternalError(c, "failed to update profile")
			return
		}
		updates.PasswordHash = &hash
	}

	if updates.IsEmpty() {
		c.JSON(http.StatusOK, makeUserSummary(user))
		return
	}

	if err := h.repo.UpdateUser(ctx, user.ID, updates); err != nil {
		logrus.WithError(err).WithField("user_id", user.ID).Error("failed to update user")
		InternalError(c, "failed to update profile")
		return
	}

	updated, err := h.repo.GetUserByID(ctx, user.ID)
	if err != nil {
		logrus.WithError(err).WithField("user_id", user.ID).Error("failed to reload user")
		InternalError(c, "failed to load profile")
		return
	}
	c.JSON(http.StatusOK, makeUserSummary(updated))
}
