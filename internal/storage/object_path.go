package storage

import (
	"fmt"
	"mime"
	"path"
	"strings"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

const objectNameAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// objectKey 是一张照片的存储位置：
//
//	[prefix/]category[/u<owner>]/yyyy/mm/name.ext
type objectKey struct {
	Prefix   string
	Category string
	OwnerID  uint
	Name     string
	Ext      string
	At       time.Time
}

func newObjectKey(prefix string, opts SaveOptions, now time.Time) objectKey {
	category := sanitizePathSegment(opts.Category)
	if category == "" {
		category = "misc"
	}
	name := sanitizeFileBase(opts.BaseName)
	if name == "" {
		name = randomObjectName(now)
	}
	return objectKey{
		Prefix:   trimPrefix(prefix),
		Category: category,
		OwnerID:  opts.OwnerID,
		Name:     name,
		Ext:      normalizeExtension(opts.Extension),
		At:       now.UTC(),
	}
}

func (k objectKey) String() string {
	parts := make([]string, 0, 6)
	if k.Prefix != "" {
		parts = append(parts, k.Prefix)
	}
	parts = append(parts, k.Category)
	if k.OwnerID != 0 {
		parts = append(parts, fmt.Sprintf("u%d", k.OwnerID))
	}
	parts = append(parts,
		fmt.Sprintf("%04d", k.At.Year()),
		fmt.Sprintf("%02d", int(k.At.Month())),
		k.Name+"."+k.Ext,
	)
	return path.Join(parts...)
}

// ContentType 按扩展名推断，未知时为 application/octet-stream。
func (k objectKey) ContentType() string {
	if typeName := mime.TypeByExtension("." + k.Ext); typeName != "" {
		return typeName
	}
	return "application/octet-stream"
}

// cleanKey 规范化调用方传入的 key，拒绝空 key 与 ".." 片段。
func cleanKey(key string) (string, error) {
	trimmed := strings.TrimLeft(strings.TrimSpace(key), "/")
	if trimmed == "" {
		return "", ErrInvalidKey
	}
	for _, segment := range strings.Split(trimmed, "/") {
		if segment == ".." {
			return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
		}
	}
	return path.Clean(trimmed), nil
}

func sanitizePathSegment(value string) string {
	value = strings.ToLower(strings.TrimSpace(value))
	var b strings.Builder
	b.Grow(len(value))
	for _, ch := range value {
		switch {
		case ch >= 'a' && ch <= 'z', ch >= '0' && ch <= '9', ch == '-', ch == '_':
			b.WriteRune(ch)
		}
	}
	return b.String()
}

func sanitizeFileBase(value string) string {
	replaced := strings.ReplaceAll(strings.TrimSpace(value), " ", "-")
	return strings.Trim(sanitizePathSegment(replaced), "-_")
}

func normalizeExtension(ext string) string {
	normalized := sanitizePathSegment(strings.TrimPrefix(strings.TrimSpace(ext), "."))
	switch normalized {
	case "":
		return "bin"
	case "jpeg":
		return "jpg"
	}
	return normalized
}

func trimPrefix(prefix string) string {
	return strings.Trim(strings.TrimSpace(prefix), "/")
}

// randomObjectName 生成小写 nanoid，熵不足时退回时间戳。
func randomObjectName(now time.Time) string {
	name, err := gonanoid.Generate(objectNameAlphabet, 16)
	if err != nil {
		return fmt.Sprintf("%d", now.UnixNano())
	}
	return name
}
