package pipeline

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"ad-creator/internal/compose"
	"ad-creator/internal/config"
	"ad-creator/internal/extract"
	"ad-creator/internal/gemini"
	"ad-creator/internal/imagegen"
	"ad-creator/internal/llm"
	"ad-creator/internal/openai"
	"ad-creator/internal/product"
	"ad-creator/internal/retry"
	"ad-creator/internal/vision"
	"ad-creator/internal/webfetch"
)

type Deps struct {
	Extractor *extract.Extractor
	Editor    *compose.Editor
	Generator *imagegen.Generator
	Fetcher   *webfetch.Fetcher
	Logger    *slog.Logger
}

// Pipeline is the single entry point both front-ends call.
type Pipeline struct {
	extractor *extract.Extractor
	editor    *compose.Editor
	generator *imagegen.Generator
	fetcher   *webfetch.Fetcher
	logger    *slog.Logger
}

func New(d Deps) *Pipeline {
	logger := d.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Pipeline{
		extractor: d.Extractor,
		editor:    d.Editor,
		generator: d.Generator,
		fetcher:   d.Fetcher,
		logger:    logger,
	}
}

// Build wires the production providers described by cfg.
func Build(cfg config.Config, httpClient *http.Client, logger *slog.Logger) (*Pipeline, error) {
	if httpClient == nil {
		return nil, errors.New("http client is nil")
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	policy := RetryPolicy(cfg, logger)

	gem := gemini.New(gemini.Options{
		APIKey:     cfg.GeminiAPIKey,
		BaseURL:    cfg.GeminiBaseURL,
		APIVersion: cfg.GeminiAPIVersion,
		HTTPClient: httpClient,
		Logger:     logger,
	})
	oai := openai.New(openai.Options{
		APIKey:     cfg.OpenAIAPIKey,
		BaseURL:    cfg.OpenAIBaseURL,
		HTTPClient: httpClient,
		Logger:     logger,
	})

	var images imagegen.Provider
	switch cfg.ImageProvider {
	case "gemini":
		images = gem.Images(cfg.GeminiImageModel)
	case "openai", "":
		images = oai.Images(cfg.OpenAIImageModel)
	default:
		return nil, errors.New("unknown image provider: " + cfg.ImageProvider)
	}
	images = imagegen.Retrying(images, policy)

	analyzer := vision.New(vision.Options{
		Provider: llm.WithRetry(gem.Text(cfg.GeminiVisionModel), policy),
		Logger:   logger,
	})

	fetcher := webfetch.New(webfetch.Options{
		HTTPClient:   httpClient,
		Logger:       logger,
		BlockPrivate: cfg.BlockPrivateFetch,
		PreferIPv4:   cfg.PreferIPv4,
	})

	var pages extract.PageFetcher
	if cfg.FetchPageContent {
		pages = fetcher
	}

	extractor := extract.New(extract.Options{
		Strategies: []extract.Strategy{
			{Name: "gemini", Provider: llm.WithRetry(gem.Text(cfg.GeminiTextModel), policy), Build: extract.PrimaryPrompt},
			{Name: "openai", Provider: llm.WithRetry(oai.Chat(cfg.OpenAITextModel), policy), Build: extract.SecondaryPrompt},
		},
		Describer: analyzer,
		Fetcher:   pages,
		Logger:    logger,
	})

	editor := compose.New(compose.Options{
		Provider: images,
		Analyzer: analyzer,
		References: compose.NewReferenceResolver(compose.ReferenceOptions{
			Fetcher:     fetcher,
			PublicDir:   cfg.PublicDir,
			FallbackURL: cfg.FallbackReferenceURL,
			Logger:      logger,
		}),
		Logger: logger,
	})

	generator := imagegen.NewGenerator(imagegen.GeneratorOptions{Provider: images, Logger: logger})

	logger.Info("pipeline ready",
		"text_model", cfg.GeminiTextModel,
		"secondary_model", cfg.OpenAITextModel,
		"image_provider", cfg.ImageProvider,
		"fetch_page_content", cfg.FetchPageContent,
	)

	return New(Deps{
		Extractor: extractor,
		Editor:    editor,
		Generator: generator,
		Fetcher:   fetcher,
		Logger:    logger,
	}), nil
}

// RetryPolicy applies to every outbound model call.
func RetryPolicy(cfg config.Config, logger *slog.Logger) retry.Policy {
	p := retry.DefaultPolicy()
	if cfg.RetryMaxAttempts > 0 {
		p.MaxAttempts = cfg.RetryMaxAttempts
	}
	if cfg.RetryBaseDelay > 0 {
		p.BaseDelay = cfg.RetryBaseDelay
	}
	if cfg.RetryMaxDelay > 0 {
		p.MaxDelay = cfg.RetryMaxDelay
	}
	p.OnRetry = func(attempt int, wait time.Duration, err error) {
		logger.Warn("retrying model call", "attempt", attempt, "wait_ms", wait.Milliseconds(), "err", err)
	}
	return p
}

func (p *Pipeline) Extract(ctx context.Context, req extract.Request) extract.Result {
	if p.extractor == nil {
		return extract.Result{Success: false, ProductInfo: product.DefaultInfo(), Error: "extractor is not configured"}
	}
	return p.extractor.Extract(ctx, req)
}

func (p *Pipeline) EditImage(ctx context.Context, req compose.EditRequest) compose.EditResult {
	if p.editor == nil {
		return compose.EditResult{Success: false, Error: "image editor is not configured"}
	}
	return p.editor.Edit(ctx, req)
}

func (p *Pipeline) Generate(ctx context.Context, req imagegen.GenerateRequest) imagegen.GenerateResult {
	if p.generator == nil {
		return imagegen.GenerateResult{Success: false, Images: []string{}, Error: "image generator is not configured"}
	}
	return p.generator.Generate(ctx, req)
}

type FetchResult struct {
	Success bool   `json:"success"`
	Content string `json:"content,omitempty"`
	Error   string `json:"error,omitempty"`
}

func (p *Pipeline) FetchWebsiteContent(ctx context.Context, url string) FetchResult {
	if p.fetcher == nil {
		return FetchResult{Success: false, Error: "fetcher is not configured"}
	}
	html, err := p.fetcher.Fetch(ctx, url)
	if err != nil {
		p.logger.Warn("website fetch failed", "url", url, "err", err)
		return FetchResult{Success: false, Error: err.Error()}
	}
	return FetchResult{Success: true, Content: html}
}

type AdRequest struct {
	URL         string        `json:"url"`
	ImageBase64 string        `json:"imageBase64"`
	TemplateID  string        `json:"templateId,omitempty"`
	Size        imagegen.Size `json:"size"`
}

type AdResult struct {
	Success bool `json:"success"`
	// Image is base64 without a data-URL prefix.
	Image           string                 `json:"image,omitempty"`
	ProductInfo     product.Info           `json:"productInfo"`
	ProductAnalysis *product.ImageAnalysis `json:"productAnalysis,omitempty"`
	Source          string                 `json:"source,omitempty"`
	ExtractionError string                 `json:"extractionError,omitempty"`
	Error           string                 `json:"error,omitempty"`
}

// CreateAd runs extraction and compositing back to back. A failed extraction
// still produces an ad from the default copy.
func (p *Pipeline) CreateAd(ctx context.Context, req AdRequest) AdResult {
	start := time.Now()
	if req.Size == "" {
		req.Size = imagegen.SizeSquare
	}

	ext := p.Extract(ctx, extract.Request{
		URL:         strings.TrimSpace(req.URL),
		Size:        req.Size,
		ImageBase64: req.ImageBase64,
		TemplateID:  req.TemplateID,
	})
	out := AdResult{ProductInfo: ext.ProductInfo, Source: ext.Source}
	if !ext.Success {
		out.ExtractionError = ext.Error
	}

	edit := p.EditImage(ctx, compose.EditRequest{
		Size:        req.Size,
		ImageBase64: req.ImageBase64,
		ProductInfo: ext.ProductInfo,
	})
	if !edit.Success {
		out.Error = edit.Error
		return out
	}

	out.Success = true
	out.Image = edit.Image
	out.ProductAnalysis = edit.ProductAnalysis
	p.logger.Info("ad created",
		"template", ext.ProductInfo.TemplateID,
		"size", req.Size,
		"source", ext.Source,
		"dur_ms", time.Since(start).Milliseconds(),
	)
	return out
}
