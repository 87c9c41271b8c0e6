package auth

import (
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

const (
	// MinPasswordLength 注册和修改密码时的最短长度
	MinPasswordLength = 8
	// bcrypt 只使用前 72 字节
	maxPasswordBytes = 72
)

var (
	ErrPasswordTooShort = errors.New("password is too short")
	ErrPasswordTooLong  = errors.New("password exceeds 72 bytes")
	ErrPasswordMismatch = errors.New("password does not match")
)

var bcryptCost = bcrypt.DefaultCost

// ValidatePassword 检查新密码是否满足长度要求
func ValidatePassword(password string) error {
	trimmed := strings.TrimSpace(password)
	switch {
	case len([]rune(trimmed)) < MinPasswordLength:
		return ErrPasswordTooShort
	case len(trimmed) > maxPasswordBytes:
		return ErrPasswordTooLong
	}
	return nil
}

// HashPassword 校验并哈希密码
func HashPassword(password string) (string, error) {
	if err := ValidatePassword(password); err != nil {
		return "", err
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(strings.TrimSpace(password)), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// VerifyPassword 比对密码，不匹配时返回 ErrPasswordMismatch
func VerifyPassword(hash, candidate string) error {
	if strings.TrimSpace(hash) == "" {
		return errors.New("stored password hash is empty")
	}
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(strings.TrimSpace(candidate)))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return ErrPasswordMismatch
	}
	return err
}

// NeedsRehash 判断已存储的哈希是否低于当前成本
func NeedsRehash(hash string) bool {
	cost, err := bcrypt.Cost([]byte(hash))
	if err != nil {
		return true
	}
	return cost < bcryptCost
}
