package auth

import (
	"closet/internal/entity"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrTokenExpired 会话已过期，客户端需要重新登录。
	ErrTokenExpired = errors.New("session expired")
	// ErrTokenInvalid 令牌签名、签发方或格式不正确。
	ErrTokenInvalid = errors.New("invalid session token")
)

// Claims 是衣橱会话令牌携带的声明，Subject 为衣橱所有者 ID。
type Claims struct {
	UserID uint   `json:"uid"`
	Email  string `json:"email"`
	Name   string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// Manager 签发并校验会话令牌。
type Manager struct {
	secret []byte
	issuer string
	expiry time.Duration
	leeway time.Duration
	now    func() time.Time
}

// Option 调整 Manager 行为。
type Option func(*Manager)

// WithClock 替换时间来源。
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		if now != nil {
			m.now = now
		}
	}
}

// WithLeeway 允许的时钟偏差。
func WithLeeway(d time.Duration) Option {
	return func(m *Manager) {
		if d > 0 {
			m.leeway = d
		}
	}
}

// NewManager 创建会话管理器。expiry <= 0 时会话有效期为一天。
func NewManager(secret, issuer string, expiry time.Duration, opts ...Option) (*Manager, error) {
	trimmed := strings.TrimSpace(secret)
	if trimmed == "" {
		return nil, errors.New("jwt secret must not be empty")
	}
	if expiry <= 0 {
		expiry = 24 * time.Hour
	}
	issuer = strings.TrimSpace(issuer)
	if issuer == "" {
		issuer = "closet"
	}
	m := &Manager{
		secret: []byte(trimmed),
		issuer: issuer,
		expiry: expiry,
		leeway: 30 * time.Second,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// GenerateToken 为衣橱所有者签发会话令牌，返回令牌与过期时间。
func (m *Manager) GenerateToken(user *entity.DbUser) (string, time.Time, error) {
	if m == nil {
		return "", time.Time{}, errors.New("jwt manager is nil")
	}
	if user == nil || user.ID == 0 {
		return "", time.Time{}, errors.New("invalid user for token generation")
	}
	issuedAt := m.now().UTC().Truncate(time.Second)
	expiresAt := issuedAt.Add(m.expiry)

	claims := Claims{
		UserID: user.ID,
		Email:  user.Email,
		Name:   user.DisplayName,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(user.ID), 10),
			Issuer:    m.issuer,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			NotBefore: jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// ParseToken 校验令牌。过期返回 ErrTokenExpired，其余失败返回 ErrTokenInvalid。
func (m *Manager) ParseToken(tokenString string) (*Claims, error) {
	if m == nil {
		return nil, errors.New("jwt manager is nil")
	}
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(m.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(m.leeway),
		jwt.WithTimeFunc(m.now),
	)

	claims := &Claims{}
	token, err := parser.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
		return m.secret, nil
	})
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, ErrTokenExpired
	case err != nil:
		return nil, errors.Join(ErrTokenInvalid, err)
	case !token.Valid:
		return nil, ErrTokenInvalid
	}

	// uid 与 sub 必须一致
	if claims.UserID == 0 || claims.Subject != strconv.FormatUint(uint64(claims.UserID), 10) {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}
