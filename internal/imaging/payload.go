package imaging

import (
	"encoding/base64"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"strings"
)

var (
	ErrEmptyPayload    = errors.New("empty image payload")
	ErrPayloadTooLarge = errors.New("image payload too large")
	ErrUnsupportedType = errors.New("unsupported image type")
)

// Payload is an uploaded photo after base64 decoding.
type Payload struct {
	Data []byte
	// Ext is derived from the sniffed content first, then the declared type.
	Ext string
}

var imageExtensions = map[string]string{
	"image/png":  "png",
	"image/jpeg": "jpg",
	"image/jpg":  "jpg",
	"image/webp": "webp",
	"image/gif":  "gif",
}

// DecodeImagePayload accepts "data:<mime>;base64,<data>" or bare base64.
// maxBytes <= 0 disables the size check.
func DecodeImagePayload(payload string, maxBytes int) (Payload, error) {
	declared, encoded := splitDataURL(strings.TrimSpace(payload))
	encoded = strings.TrimSpace(encoded)
	if encoded == "" {
		return Payload{}, ErrEmptyPayload
	}
	// 解码前按长度估算，避免为超大请求分配内存
	if maxBytes > 0 && base64.StdEncoding.DecodedLen(len(encoded)) > maxBytes+2 {
		return Payload{}, fmt.Errorf("%w: limit is %d bytes", ErrPayloadTooLarge, maxBytes)
	}

	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		// 部分客户端省略填充
		raw, rawErr := base64.RawStdEncoding.DecodeString(strings.TrimRight(encoded, "="))
		if rawErr != nil {
			return Payload{}, fmt.Errorf("decode base64: %w", err)
		}
		data = raw
	}
	if maxBytes > 0 && len(data) > maxBytes {
		return Payload{}, fmt.Errorf("%w: limit is %d bytes", ErrPayloadTooLarge, maxBytes)
	}

	ext := extensionFor(http.DetectContentType(data))
	if ext == "" {
		ext = extensionFor(declared)
	}
	if ext == "" {
		return Payload{}, fmt.Errorf("%w %q", ErrUnsupportedType, declared)
	}
	return Payload{Data: data, Ext: ext}, nil
}

func splitDataURL(value string) (mimeType, encoded string) {
	rest, ok := strings.CutPrefix(value, "data:")
	if !ok {
		return "", value
	}
	mimeType, encoded, _ = strings.Cut(rest, ";base64,")
	return mimeType, encoded
}

func extensionFor(mimeType string) string {
	if parsed, _, err := mime.ParseMediaType(mimeType); err == nil {
		mimeType = parsed
	}
	return imageExtensions[strings.ToLower(mimeType)]
}
