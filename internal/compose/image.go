package compose

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var ErrEmptyImage = errors.New("uploaded image is empty")

// DecodeImage accepts raw base64 or a data URL and returns the bytes with a
// sniffed mime type.
func DecodeImage(imageBase64 string) ([]byte, string, error) {
	data := strings.TrimSpace(imageBase64)
	if i := strings.Index(data, "base64,"); i >= 0 {
		data = data[i+len("base64,"):]
	}
	if data == "" {
		return nil, "", ErrEmptyImage
	}

	raw, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		raw, err = base64.RawStdEncoding.DecodeString(strings.TrimRight(data, "="))
	}
	if err != nil {
		return nil, "", fmt.Errorf("decode uploaded image: %w", err)
	}
	if len(raw) == 0 {
		return nil, "", ErrEmptyImage
	}
	return raw, http.DetectContentType(raw), nil
}
