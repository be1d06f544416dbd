package compose

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"ad-creator/internal/imagegen"
	"ad-creator/internal/product"
	"ad-creator/internal/templates"
)

const editTemperature = 0.1

type Analyzer interface {
	Analyze(ctx context.Context, imageBase64 string) (product.ImageAnalysis, error)
}

type EditRequest struct {
	Size        imagegen.Size `json:"size"`
	ImageBase64 string        `json:"imageBase64"`
	ProductInfo product.Info  `json:"productInfo"`
}

type EditResult struct {
	Success         bool                   `json:"success"`
	Image           string                 `json:"image,omitempty"`
	Error           string                 `json:"error,omitempty"`
	ProductAnalysis *product.ImageAnalysis `json:"productAnalysis,omitempty"`
	MergedConfig    map[string]any         `json:"mergedConfig,omitempty"`
}

type Options struct {
	Provider   imagegen.Provider
	Analyzer   Analyzer
	References *ReferenceResolver
	Logger     *slog.Logger
}

// Editor composites the uploaded product photo into a template layout.
type Editor struct {
	provider imagegen.Provider
	analyzer Analyzer
	refs     *ReferenceResolver
	logger   *slog.Logger
}

func New(opts Options) *Editor {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	refs := opts.References
	if refs == nil {
		refs = NewReferenceResolver(ReferenceOptions{Logger: logger})
	}
	return &Editor{
		provider: opts.Provider,
		analyzer: opts.Analyzer,
		refs:     refs,
		logger:   logger,
	}
}

func (e *Editor) Edit(ctx context.Context, req EditRequest) EditResult {
	start := time.Now()
	info := product.Sanitize(req.ProductInfo)

	tpl, known := templates.Lookup(info.TemplateID)
	if !known {
		tpl = templates.Default()
	}
	log := e.logger.With("template", tpl.ID, "size", req.Size)

	fail := func(err error) EditResult {
		log.Error("image edit failed", "err", err, "dur_ms", time.Since(start).Milliseconds())
		return EditResult{Success: false, Error: err.Error()}
	}

	if !req.Size.Valid() {
		return fail(fmt.Errorf("%w: %q", imagegen.ErrInvalidSize, req.Size))
	}
	if e.provider == nil {
		return fail(errors.New("image provider is not configured"))
	}
	image, imageMime, err := DecodeImage(req.ImageBase64)
	if err != nil {
		return fail(err)
	}

	info.Benefits = product.PadBenefits(info.Benefits, templates.RequiredBenefits(tpl.ID))

	var (
		analysis product.ImageAnalysis
		ref      Reference
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		analysis = e.analyze(gctx, req.ImageBase64, info, log)
		return nil
	})
	g.Go(func() error {
		r, err := e.refs.Resolve(gctx, tpl)
		if err != nil {
			return fmt.Errorf("failed to get reference image: %w", err)
		}
		ref = r
		return nil
	})
	if err := g.Wait(); err != nil {
		return fail(err)
	}

	merged := MergeConfig(analysis, tpl, info, known)
	prompt, err := BuildPrompt(PromptInput{
		Template: tpl,
		Info:     info,
		Analysis: analysis,
		Size:     req.Size,
		Merged:   merged,
	})
	if err != nil {
		return fail(err)
	}
	log.Debug("edit prompt built", "chars", len(prompt), "reference", ref.Source)

	out, err := e.provider.Edit(ctx, imagegen.EditRequest{
		Prompt:        prompt,
		Size:          req.Size,
		Image:         image,
		ImageMime:     imageMime,
		Reference:     ref.Data,
		ReferenceMime: ref.Mime,
		Temperature:   editTemperature,
	})
	if err != nil {
		return fail(err)
	}
	if out == "" {
		return fail(imagegen.ErrNoImage)
	}

	log.Info("image edited",
		"product", info.ProductName,
		"reference", ref.Source,
		"dur_ms", time.Since(start).Milliseconds(),
	)
	return EditResult{
		Success:         true,
		Image:           out,
		ProductAnalysis: &analysis,
		MergedConfig:    merged,
	}
}

func (e *Editor) analyze(ctx context.Context, imageBase64 string, info product.Info, log *slog.Logger) product.ImageAnalysis {
	if e.analyzer == nil {
		return product.FallbackAnalysis(info)
	}
	a, err := e.analyzer.Analyze(ctx, imageBase64)
	if err != nil {
		log.Warn("product analysis failed, using fallback analysis", "err", err)
		return product.FallbackAnalysis(info)
	}
	return a
}
