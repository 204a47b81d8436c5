package imagehost

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"strings"

	_ "golang.org/x/image/webp"
)

// DecodePayload accepts a data URI ("data:image/png;base64,...") or bare
// base64 and returns the decoded bytes.
func DecodePayload(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("%w: empty payload", ErrInvalidImage)
	}

	if strings.HasPrefix(s, "data:") {
		meta, data, ok := strings.Cut(s, ",")
		if !ok || !strings.HasSuffix(meta, ";base64") {
			return nil, fmt.Errorf("%w: data URI must be base64 encoded", ErrInvalidImage)
		}
		s = data
	}

	if base64.StdEncoding.DecodedLen(len(s)) > MaxPayloadBytes+3 {
		return nil, ErrPayloadTooLarge
	}

	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		// some clients strip the padding
		data, err = base64.RawStdEncoding.DecodeString(strings.TrimRight(s, "="))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidImage, err)
		}
	}

	if len(data) > MaxPayloadBytes {
		return nil, ErrPayloadTooLarge
	}

	return data, nil
}

// Inspect reports the format and pixel dimensions of an encoded jpeg, png, gif or webp image.
func Inspect(data []byte) (format string, width, height int, err error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return "", 0, 0, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return "", 0, 0, fmt.Errorf("%w: image has no pixels", ErrInvalidImage)
	}

	return format, cfg.Width, cfg.Height, nil
}
