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

// credentials 规范化后的邮箱与密码
type credentials struct {
	email    string
	password string
}

func readCredentials(c *gin.Context, email, password string) (credentials, bool) {
	creds := credentials{
		email:    strings.ToLower(strings.TrimSpace(email)),
		password: strings.TrimSpace(password),
	}
	if creds.email == "" || creds.password == "" {
		MissingField(c, "email/password")
		return creds, false
	}
	return creds, true
}

// registrationOpen 首个账号总是允许注册，之后取决于 AllowRegistration
func (h *HTTPHandler) registrationOpen(ctx context.Context) (bool, error) {
	count, err := h.repo.CountUsers(ctx)
	if err != nil {
		return false, err
	}
	return count == 0 || h.cfg.AllowRegistration, nil
}

// issueSession 签发令牌并返回账号摘要
func (h *HTTPHandler) issueSession(c *gin.Context, status int, user *entity.DbUser) {
	token, expiresAt, err := h.authManager.GenerateToken(user)
	if err != nil {
		logrus.WithError(err).WithField("user_id", user.ID).Error("failed to sign session token")
		InternalError(c, "failed to create session")
		return
	}
	c.JSON(status, entity.AuthResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      makeUserSummary(user),
	})
}

func (h *HTTPHandler) Register(c *gin.Context) {
	var req entity.AuthRegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BindError(c, err)
		return
	}
	creds, ok := readCredentials(c, req.Email, req.Password)
	if !ok {
		return
	}
	if err := auth.ValidatePassword(creds.password); err != nil {
		BadRequest(c, ErrCodeInvalidRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	open, err := h.registrationOpen(ctx)
	if err != nil {
		logrus.WithError(err).Error("failed to count users during registration")
		ServiceUnavailable(c, "failed to process registration")
		return
	}
	if !open {
		ErrorResponse(c, http.StatusForbidden, ErrCodeRegistrationClosed, "registration disabled")
		return
	}

	hash, err := auth.HashPassword(creds.password)
	if err != nil {
		logrus.WithError(err).Error("failed to hash password")
		InternalError(c, "failed to register user")
		return
	}
	user := &entity.DbUser{
		Email:        creds.email,
		PasswordHash: hash,
		DisplayName:  req.DisplayName,
		IsActive:     true,
	}
	if err := h.repo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			ErrorResponse(c, http.StatusConflict, ErrCodeEmailExists, "email already registered")
			return
		}
		logrus.WithError(err).Error("failed to create user")
		InternalError(c, "failed to register user")
		return
	}

	logrus.WithField("user_id", user.ID).Info("wardrobe owner registered")
	h.issueSession(c, http.StatusCreated, user)
}

func (h *HTTPHandler) Login(c *gin.Context) {
	var req entity.AuthLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BindError(c, err)
		return
	}
	creds, ok := readCredentials(c, req.Email, req.Password)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	user, err := h.repo.GetUserByEmail(ctx, creds.email)
	if err == nil {
		err = auth.VerifyPassword(user.PasswordHash, creds.password)
	}
	if err != nil {
		// 不区分账号不存在与密码错误
		logrus.WithError(err).WithField("email", creds.email).Warn("login attempt failed")
		ErrorResponse(c, http.StatusUnauthorized, ErrCodeInvalidCredentials, "invalid email or password")
		return
	}
	if !user.IsActive {
		ErrorResponse(c, http.StatusForbidden, ErrCodeUserDisabled, "user is disabled")
		return
	}

	if auth.NeedsRehash(user.PasswordHash) {
		h.upgradePasswordHash(ctx, user.ID, creds.password)
	}
	h.issueSession(c, http.StatusOK, user)
}

func (h *HTTPHandler) AuthStatus(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	count, err := h.repo.CountUsers(ctx)
	if err != nil {
		logrus.WithError(err).Error("failed to count users for auth status")
		ServiceUnavailable(c, "failed to check auth status")
		return
	}
	c.JSON(http.StatusOK, entity.AuthStatusResponse{
		HasUser:          count > 0,
		RegistrationOpen: count == 0 || h.cfg.AllowRegistration,
	})
}

func (h *HTTPHandler) Me(c *gin.Context) {
	requestUser := CurrentUser(c)
	if requestUser == nil {
		Unauthorized(c, "authentication required")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	user, err := h.repo.GetUserByID(ctx, requestUser.ID)
	if err != nil {
		logrus.WithError(err).WithField("user_id", requestUser.ID).Error("failed to load user profile")
		InternalError(c, "failed to load profile")
		return
	}
	c.JSON(http.StatusOK, makeUserSummary(user))
}

// upgradePasswordHash 用当前成本重新哈希密码，失败只记录日志
func (h *HTTPHandler) upgradePasswordHash(ctx context.Context, userID uint, password string) {
	hash, err := auth.HashPassword(password)
	if err != nil {
		logrus.WithError(err).WithField("user_id", userID).Warn("failed to rehash password")
		return
	}
	if err := h.repo.UpdateUser(ctx, userID, entity.UserUpdates{PasswordHash: &hash}); err != nil {
		logrus.WithError(err).WithField("user_id", userID).Warn("failed to store rehashed password")
	}
}

func makeUserSummary(user *entity.DbUser) entity.UserSummary {
	if user == nil {
		return entity.UserSummary{}
	}
	return entity.UserSummary{
		ID:          user.ID,
		Email:       user.Email,
		DisplayName: user.DisplayName,
		IsActive:    user.IsActive,
		CreatedAt:   user.CreatedAt,
		UpdatedAt:   user.UpdatedAt,
	}
}
