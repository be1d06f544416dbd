package imagegen

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"ad-creator/internal/retry"
)

type Size string

const (
	SizeSquare    Size = "1024x1024"
	SizeLandscape Size = "1792x1024"
	SizePortrait  Size = "1024x1792"
)

var (
	ErrInvalidSize = errors.New("invalid image size")
	ErrNoImage     = errors.New("image model returned no image")
)

func ParseSize(value string) (Size, error) {
	switch s := Size(strings.ToLower(strings.TrimSpace(value))); s {
	case SizeSquare, SizeLandscape, SizePortrait:
		return s, nil
	case "square":
		return SizeSquare, nil
	case "landscape":
		return SizeLandscape, nil
	case "portrait":
		return SizePortrait, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidSize, value)
	}
}

func (s Size) Valid() bool {
	switch s {
	case SizeSquare, SizeLandscape, SizePortrait:
		return true
	}
	return false
}

func (s Size) AspectRatio() string {
	switch s {
	case SizeLandscape:
		return "16:9"
	case SizePortrait:
		return "9:16"
	default:
		return "1:1"
	}
}

type Request struct {
	Prompt      string
	Size        Size
	N           int
	Transparent bool
}

type EditRequest struct {
	Prompt        string
	Size          Size
	Image         []byte
	ImageMime     string
	Reference     []byte
	ReferenceMime string
	Temperature   float64
}

// Provider is an image model. Results are base64 without a data-URL prefix.
type Provider interface {
	Generate(ctx context.Context, req Request) ([]string, error)
	Edit(ctx context.Context, req EditRequest) (string, error)
}

type retrying struct {
	next   Provider
	policy retry.Policy
}

// Retrying wraps p so that every call is retried under policy.
func Retrying(p Provider, policy retry.Policy) Provider {
	return &retrying{next: p, policy: policy}
}

func (r *retrying) Generate(ctx context.Context, req Request) ([]string, error) {
	return retry.DoValue(ctx, r.policy, func(ctx context.Context) ([]string, error) {
		return r.next.Generate(ctx, req)
	})
}

func (r *retrying) Edit(ctx context.Context, req EditRequest) (string, error) {
	return retry.DoValue(ctx, r.policy, func(ctx context.Context) (string, error) {
		return r.next.Edit(ctx, req)
	})
}
