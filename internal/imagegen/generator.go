package imagegen

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"time"
)

type GenerateRequest struct {
	Prompt      string `json:"prompt"`
	Size        Size   `json:"size"`
	N           int    `json:"n"`
	Transparent bool   `json:"transparent"`
}

type GenerateResult struct {
	Success bool     `json:"success"`
	Images  []string `json:"images"`
	Error   string   `json:"error,omitempty"`
}

type GeneratorOptions struct {
	Provider Provider
	Logger   *slog.Logger
}

// Generator produces freeform images with no template or analysis step.
type Generator struct {
	provider Provider
	logger   *slog.Logger
}

func NewGenerator(opts GeneratorOptions) *Generator {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Generator{provider: opts.Provider, logger: logger}
}

func WithBackground(prompt string, transparent bool) string {
	prompt = strings.TrimSpace(prompt)
	if transparent {
		return prompt + " (transparent background)"
	}
	return prompt + " (white background)"
}

func clampCount(n int) int {
	if n < 1 {
		return 1
	}
	if n > 2 {
		return 2
	}
	return n
}

func (g *Generator) Generate(ctx context.Context, req GenerateRequest) GenerateResult {
	fail := func(err error) GenerateResult {
		g.logger.Error("image generation failed", "size", req.Size, "err", err)
		return GenerateResult{Success: false, Images: []string{}, Error: err.Error()}
	}

	if strings.TrimSpace(req.Prompt) == "" {
		return fail(errors.New("prompt is empty"))
	}
	if !req.Size.Valid() {
		return fail(ErrInvalidSize)
	}
	if g.provider == nil {
		return fail(errors.New("image provider is not configured"))
	}

	start := time.Now()
	images, err := g.provider.Generate(ctx, Request{
		Prompt:      WithBackground(req.Prompt, req.Transparent),
		Size:        req.Size,
		N:           clampCount(req.N),
		Transparent: req.Transparent,
	})
	if err != nil {
		return fail(err)
	}
	if len(images) == 0 {
		return fail(ErrNoImage)
	}

	g.logger.Info("images generated", "size", req.Size, "count", len(images), "dur_ms", time.Since(start).Milliseconds())
	return GenerateResult{Success: true, Images: images}
}
