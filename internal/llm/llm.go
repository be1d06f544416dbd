package llm

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"strings"

	"ad-creator/internal/retry"
)

var ErrEmptyResponse = errors.New("empty response from model")

// Image is inline image data, base64 without a data-URL prefix.
type Image struct {
	Data     string
	MimeType string
}

type Request struct {
	System      string
	Prompt      string
	Images      []Image
	Temperature float64
	// JSON asks the provider for a JSON-only response when it supports that.
	JSON bool
}

// Provider is a text or vision model.
type Provider interface {
	Name() string
	Complete(ctx context.Context, req Request) (string, error)
}

type retrying struct {
	next   Provider
	policy retry.Policy
}

func WithRetry(p Provider, policy retry.Policy) Provider {
	return &retrying{next: p, policy: policy}
}

func (r *retrying) Name() string { return r.next.Name() }

func (r *retrying) Complete(ctx context.Context, req Request) (string, error) {
	return retry.DoValue(ctx, r.policy, func(ctx context.Context) (string, error) {
		return r.next.Complete(ctx, req)
	})
}

// ImageFromBase64 strips a data-URL prefix and works out the mime type,
// preferring the prefix and then sniffing the decoded bytes.
func ImageFromBase64(value string) Image {
	value = strings.TrimSpace(value)
	mime := ""
	if strings.HasPrefix(value, "data:") {
		if semi := strings.IndexByte(value, ';'); semi > len("data:") {
			mime = value[len("data:"):semi]
		}
	}
	if idx := strings.Index(value, "base64,"); idx >= 0 {
		value = value[idx+len("base64,"):]
	}

	if mime == "" {
		mime = sniffMime(value)
	}
	return Image{Data: value, MimeType: mime}
}

func sniffMime(data string) string {
	head := data
	if len(head) > 64 {
		head = head[:64]
	}
	raw, err := base64.StdEncoding.DecodeString(head[:len(head)/4*4])
	if err == nil && len(raw) > 0 {
		if m := http.DetectContentType(raw); strings.HasPrefix(m, "image/") {
			return m
		}
	}
	return "image/jpeg"
}
