package extract

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"ad-creator/internal/imagegen"
	"ad-creator/internal/llm"
	"ad-creator/internal/product"
	"ad-creator/internal/templates"
	"ad-creator/internal/webfetch"
)

const defaultPageExcerpt = 8000

type Request struct {
	URL         string        `json:"url"`
	Size        imagegen.Size `json:"size,omitempty"`
	ImageBase64 string        `json:"imageBase64,omitempty"`
	TemplateID  string        `json:"templateId,omitempty"`
}

// Result never signals failure through an error: a failed extraction still
// carries a complete, usable ProductInfo.
type Result struct {
	Success     bool         `json:"success"`
	ProductInfo product.Info `json:"productInfo"`
	Error       string       `json:"error,omitempty"`
	RawResponse string       `json:"rawResponse,omitempty"`
	Source      string       `json:"source,omitempty"`
}

// PromptInput is everything a strategy may put into its prompt.
type PromptInput struct {
	URL              string
	Template         templates.Template
	Size             imagegen.Size
	ImageAnalysis    string
	PageText         string
	RequiredBenefits int
}

// Strategy is one named extraction attempt.
type Strategy struct {
	Name     string
	Provider llm.Provider
	Build    func(PromptInput) llm.Request
}

type Describer interface {
	Describe(ctx context.Context, imageBase64 string, tpl templates.Template) (string, error)
}

type PageFetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

type Options struct {
	// Strategies are tried in order until one yields valid product info.
	Strategies []Strategy
	Describer  Describer
	// Fetcher is optional. When set, page text is embedded in the prompt.
	Fetcher     PageFetcher
	PageExcerpt int
	Logger      *slog.Logger
}

type Extractor struct {
	strategies  []Strategy
	describer   Describer
	fetcher     PageFetcher
	pageExcerpt int
	logger      *slog.Logger
}

func New(opts Options) *Extractor {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	excerpt := opts.PageExcerpt
	if excerpt <= 0 {
		excerpt = defaultPageExcerpt
	}

	return &Extractor{
		strategies:  append([]Strategy(nil), opts.Strategies...),
		describer:   opts.Describer,
		fetcher:     opts.Fetcher,
		pageExcerpt: excerpt,
		logger:      logger,
	}
}

func (e *Extractor) Extract(ctx context.Context, req Request) Result {
	tpl := templates.Resolve(req.TemplateID)
	in := PromptInput{
		URL:              strings.TrimSpace(req.URL),
		Template:         tpl,
		Size:             req.Size,
		RequiredBenefits: templates.RequiredBenefits(tpl.ID),
	}

	if strings.TrimSpace(req.ImageBase64) != "" && e.describer != nil {
		analysis, err := e.describer.Describe(ctx, req.ImageBase64, tpl)
		if err != nil {
			e.logger.Warn("image description failed, extracting without it", "template", tpl.ID, "err", err)
		} else {
			in.ImageAnalysis = analysis
		}
	}

	if e.fetcher != nil && in.URL != "" {
		html, err := e.fetcher.Fetch(ctx, in.URL)
		if err != nil {
			e.logger.Warn("page fetch failed, extracting from url only", "url", in.URL, "err", err)
		} else {
			in.PageText = webfetch.Excerpt(webfetch.ExtractText(html), e.pageExcerpt)
		}
	}

	var errs []error
	for _, s := range e.strategies {
		start := time.Now()
		raw, info, err := e.attempt(ctx, s, in)
		outcome := "ok"
		if err != nil {
			outcome = "failed"
		}
		e.logger.Info("extraction attempt",
			"strategy", s.Name,
			"template", tpl.ID,
			"outcome", outcome,
			"err", err,
			"dur_ms", time.Since(start).Milliseconds(),
		)

		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", s.Name, err))
			if ctx.Err() != nil {
				break
			}
			continue
		}

		return Result{
			Success:     true,
			ProductInfo: finalize(info, tpl, in.ImageAnalysis),
			RawResponse: raw,
			Source:      s.Name,
		}
	}

	if len(errs) == 0 {
		errs = append(errs, errors.New("no extraction strategies configured"))
	}
	err := errors.Join(errs...)

	e.logger.Error("extraction failed, using default product info", "template", tpl.ID, "err", err)
	return Result{
		Success:     false,
		ProductInfo: finalize(product.DefaultInfo(), tpl, ""),
		Error:       err.Error(),
		RawResponse: err.Error(),
	}
}

func (e *Extractor) attempt(ctx context.Context, s Strategy, in PromptInput) (string, product.Info, error) {
	if s.Provider == nil || s.Build == nil {
		return "", product.Info{}, errors.New("strategy is not configured")
	}

	raw, err := s.Provider.Complete(ctx, s.Build(in))
	if err != nil {
		return "", product.Info{}, err
	}
	if strings.TrimSpace(raw) == "" {
		return "", product.Info{}, llm.ErrEmptyResponse
	}

	info, err := product.ParseInfo(raw)
	if err != nil {
		return raw, product.Info{}, err
	}
	return raw, info, nil
}

// finalize applies the invariants every extracted ProductInfo carries.
// Colors always come from the template, whatever the model said.
func finalize(info product.Info, tpl templates.Template, imageAnalysis string) product.Info {
	info.TemplateID = tpl.ID
	info.Benefits = product.PadBenefits(info.Benefits, templates.RequiredBenefits(tpl.ID))
	info.BackgroundColor = tpl.BackgroundColor
	info.TextColor = tpl.TextColor
	if imageAnalysis != "" {
		info.ProductImageAnalysis = imageAnalysis
	}
	return product.Sanitize(info)
}
