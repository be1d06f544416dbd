package gemini

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"ad-creator/internal/imagegen"
	"ad-creator/internal/llm"
)

type Options struct {
	APIKey     string
	BaseURL    string
	APIVersion string
	HTTPClient *http.Client
	Logger     *slog.Logger
	// ThinkingBudget is sent with text requests when positive.
	ThinkingBudget int
}

type Client struct {
	apiKey         string
	baseURL        string
	apiVersion     string
	httpClient     *http.Client
	logger         *slog.Logger
	thinkingBudget int
}

func New(opts Options) *Client {
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://generativelanguage.googleapis.com"
	}

	apiVersion := strings.TrimSpace(opts.APIVersion)
	if apiVersion == "" {
		apiVersion = "v1beta"
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &Client{
		apiKey:         opts.APIKey,
		baseURL:        baseURL,
		apiVersion:     apiVersion,
		httpClient:     opts.HTTPClient,
		logger:         logger,
		thinkingBudget: opts.ThinkingBudget,
	}
}

// TextModel serves text and vision completions for one model.
type TextModel struct {
	c     *Client
	model string
}

func (c *Client) Text(model string) *TextModel {
	return &TextModel{c: c, model: model}
}

func (m *TextModel) Name() string { return m.model }

func (m *TextModel) Complete(ctx context.Context, req llm.Request) (string, error) {
	parts := []part{{Text: strings.TrimSpace(req.Prompt)}}
	for _, img := range req.Images {
		parts = append(parts, part{InlineData: &blob{Data: img.Data, MimeType: img.MimeType}})
	}

	payload := generateContentRequest{
		Contents: []content{{Role: "user", Parts: parts}},
		GenerationConfig: generationConfig{
			Temperature: temperature(req.Temperature),
		},
	}
	if s := strings.TrimSpace(req.System); s != "" {
		payload.SystemInstruction = &content{Role: "user", Parts: []part{{Text: s}}}
	}
	if req.JSON {
		payload.GenerationConfig.ResponseMimeType = "application/json"
	}
	if m.c.thinkingBudget > 0 {
		payload.GenerationConfig.ThinkingConfig = &thinkingConfig{ThinkingBudget: m.c.thinkingBudget}
	}

	resp, err := m.c.generateContent(ctx, m.model, payload)
	if err != nil && payload.GenerationConfig.ThinkingConfig != nil && isUnknownFieldError(err, "thinkingConfig") {
		payload.GenerationConfig.ThinkingConfig = nil
		resp, err = m.c.generateContent(ctx, m.model, payload)
	}
	if err != nil {
		return "", err
	}

	if strings.TrimSpace(resp.Text) == "" {
		return "", llm.ErrEmptyResponse
	}
	return resp.Text, nil
}

// ImageModel serves image generation and compositing for one model.
type ImageModel struct {
	c     *Client
	model string
}

func (c *Client) Images(model string) *ImageModel {
	return &ImageModel{c: c, model: model}
}

func (m *ImageModel) Generate(ctx context.Context, req imagegen.Request) ([]string, error) {
	prompt := strings.TrimSpace(req.Prompt)
	if prompt == "" {
		return nil, errors.New("prompt is empty")
	}

	payload := generateContentRequest{
		Contents: []content{
			{Role: "user", Parts: []part{{Text: fmt.Sprintf("Generate a high quality image: %s", prompt)}}},
		},
		GenerationConfig: generationConfig{
			ResponseModalities: []string{"IMAGE"},
			ImageConfig:        &imageConfig{AspectRatio: req.Size.AspectRatio()},
		},
	}

	n := req.N
	if n < 1 {
		n = 1
	}

	var images []string
	for i := 0; i < n; i++ {
		resp, err := m.generateImage(ctx, payload)
		if err != nil {
			if len(images) > 0 {
				m.c.logger.Warn("gemini image generation stopped early", "got", len(images), "want", n, "err", err)
				break
			}
			return nil, err
		}
		for _, img := range resp.Images {
			images = append(images, img.Data)
		}
	}

	if len(images) == 0 {
		return nil, imagegen.ErrNoImage
	}
	if len(images) > n {
		images = images[:n]
	}
	return images, nil
}

func (m *ImageModel) Edit(ctx context.Context, req imagegen.EditRequest) (string, error) {
	if len(req.Image) == 0 {
		return "", errors.New("uploaded image is empty")
	}

	build := func(prompt string) generateContentRequest {
		parts := []part{
			{Text: strings.TrimSpace(prompt)},
			{Text: "Image #1 (uploaded product photo, composite exactly as is):"},
			{InlineData: &blob{Data: base64.StdEncoding.EncodeToString(req.Image), MimeType: mimeOr(req.ImageMime, req.Image)}},
		}
		if len(req.Reference) > 0 {
			parts = append(parts,
				part{Text: "Image #2 (reference layout and style):"},
				part{InlineData: &blob{Data: base64.StdEncoding.EncodeToString(req.Reference), MimeType: mimeOr(req.ReferenceMime, req.Reference)}},
			)
		}

		return generateContentRequest{
			Contents: []content{{Role: "user", Parts: parts}},
			GenerationConfig: generationConfig{
				Temperature:        temperature(req.Temperature),
				ResponseModalities: []string{"IMAGE", "TEXT"},
				ImageConfig:        &imageConfig{AspectRatio: req.Size.AspectRatio()},
			},
		}
	}

	resp, err := m.generateImage(ctx, build(req.Prompt))
	if err != nil {
		return "", err
	}
	if len(resp.Images) == 0 {
		m.c.logger.Warn("gemini edit returned no image, retrying with strict output rule", "model", m.model)
		retryPrompt := req.Prompt + "\n\nReturn ONLY the final edited image as inline image data. Do not write text, JSON or links."
		resp, err = m.generateImage(ctx, build(retryPrompt))
		if err != nil {
			return "", err
		}
	}
	if len(resp.Images) == 0 {
		return "", imagegen.ErrNoImage
	}
	return resp.Images[0].Data, nil
}

func (m *ImageModel) generateImage(ctx context.Context, payload generateContentRequest) (response, error) {
	resp, err := m.c.generateContent(ctx, m.model, payload)
	if err != nil && payload.GenerationConfig.ImageConfig != nil && isUnknownFieldError(err, "imageConfig") {
		payload.GenerationConfig.ImageConfig = nil
		resp, err = m.c.generateContent(ctx, m.model, payload)
	}
	return resp, err
}

func (c *Client) generateContent(ctx context.Context, model string, payload generateContentRequest) (response, error) {
	if c.httpClient == nil {
		return response{}, errors.New("http client is nil")
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return response{}, fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/%s/models/%s:generateContent", c.baseURL, c.apiVersion, model)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return response{}, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("content-type", "application/json")
	httpReq.Header.Set("x-goog-api-key", c.apiKey)

	start := time.Now()
	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return response{}, fmt.Errorf("request: %w", err)
	}
	defer httpResp.Body.Close()

	rawBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return response{}, fmt.Errorf("read response: %w", err)
	}

	c.logger.Debug("gemini call", "model", model, "status", httpResp.StatusCode, "dur_ms", time.Since(start).Milliseconds())

	if httpResp.StatusCode >= 400 {
		return response{}, &APIError{
			StatusCode: httpResp.StatusCode,
			Status:     httpResp.Status,
			Body:       strings.TrimSpace(string(rawBody)),
		}
	}

	var decoded generateContentResponse
	if err := json.Unmarshal(rawBody, &decoded); err != nil {
		return response{}, fmt.Errorf("decode response: %w", err)
	}
	if decoded.PromptFeedback != nil && decoded.PromptFeedback.BlockReason != "" {
		return response{}, fmt.Errorf("gemini blocked prompt: %s", decoded.PromptFeedback.BlockReason)
	}

	return extractParts(decoded), nil
}

func extractParts(resp generateContentResponse) response {
	if len(resp.Candidates) == 0 {
		return response{}
	}

	var out response
	var textBuilder strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		if p.Text != "" {
			textBuilder.WriteString(p.Text)
		}
		if p.InlineData != nil && p.InlineData.Data != "" && p.InlineData.MimeType != "" {
			out.Images = append(out.Images, *p.InlineData)
		}
	}
	out.Text = textBuilder.String()
	return out
}

func temperature(t float64) *float64 {
	if t <= 0 {
		return nil
	}
	return &t
}

func mimeOr(mime string, data []byte) string {
	if m := strings.TrimSpace(mime); m != "" {
		return m
	}
	if m := http.DetectContentType(data); strings.HasPrefix(m, "image/") {
		return m
	}
	return "image/png"
}

func isUnknownFieldError(err error, field string) bool {
	message := err.Error()
	return strings.Contains(message, "Unknown name") && strings.Contains(message, field)
}
