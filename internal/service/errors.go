package service

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	// ErrNotFound 表示记录不存在或不属于当前用户。
	ErrNotFound = errors.New("not found")
	// ErrInvalidInput 表示请求参数不合法。
	ErrInvalidInput = errors.New("invalid input")
	// ErrStoreRead 表示衣橱存储读取失败。
	ErrStoreRead = errors.New("wardrobe store read failed")
	// ErrStoreWrite 表示衣橱存储写入失败，写入不会部分生效。
	ErrStoreWrite = errors.New("wardrobe store write failed")
)

func invalidInput(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

// readFailed 记录并包装读取错误，记录不存在时返回 ErrNotFound。
func (d Deps) readFailed(op string, ownerID uint, err error) error {
	return d.storeFailed(ErrStoreRead, "read", op, ownerID, err)
}

// writeFailed 记录并包装写入错误，记录不存在时返回 ErrNotFound。
func (d Deps) writeFailed(op string, ownerID uint, err error) error {
	return d.storeFailed(ErrStoreWrite, "write", op, ownerID, err)
}

func (d Deps) storeFailed(kind error, label, op string, ownerID uint, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	logrus.WithError(err).WithFields(logrus.Fields{
		"op":       op,
		"owner_id": ownerID,
	}).Errorf("wardrobe store %s failed", label)
	d.Recorder.RecordStoreFailure(op, label)
	return fmt.Errorf("%s: %w: %w", op, kind, err)
}
