package openai

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"

	"ad-creator/internal/imagegen"
)

// ImageModel is an images API model usable as an imagegen.Provider.
type ImageModel struct {
	c     *Client
	model string
}

func (c *Client) Images(model string) *ImageModel {
	return &ImageModel{c: c, model: model}
}

func (m *ImageModel) Generate(ctx context.Context, req imagegen.Request) ([]string, error) {
	payload := imageGenerationRequest{
		Model:  m.model,
		Prompt: req.Prompt,
		N:      req.N,
		Size:   m.nativeSize(req.Size),
	}
	if m.isDallE() {
		payload.ResponseFormat = "b64_json"
	} else if req.Transparent {
		payload.Background = "transparent"
	}

	var resp imageResponse
	if err := m.c.postJSON(ctx, "/images/generations", payload, &resp); err != nil {
		return nil, err
	}

	images := make([]string, 0, len(resp.Data))
	for _, d := range resp.Data {
		if d.B64JSON != "" {
			images = append(images, d.B64JSON)
		}
	}
	if len(images) == 0 {
		return nil, imagegen.ErrNoImage
	}
	return images, nil
}

// Edit sends the uploaded product photo first and the reference layout second.
func (m *ImageModel) Edit(ctx context.Context, req imagegen.EditRequest) (string, error) {
	if len(req.Image) == 0 {
		return "", errors.New("uploaded image is empty")
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	fields := map[string]string{
		"model":  m.model,
		"prompt": req.Prompt,
		"size":   m.nativeSize(req.Size),
		"n":      "1",
	}
	if m.isDallE() {
		fields["response_format"] = "b64_json"
	}
	for _, k := range []string{"model", "prompt", "size", "n", "response_format"} {
		v, ok := fields[k]
		if !ok {
			continue
		}
		if err := w.WriteField(k, v); err != nil {
			return "", fmt.Errorf("write field %s: %w", k, err)
		}
	}

	if err := writeImage(w, "product", req.Image, req.ImageMime); err != nil {
		return "", err
	}
	if len(req.Reference) > 0 {
		if err := writeImage(w, "reference", req.Reference, req.ReferenceMime); err != nil {
			return "", err
		}
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("close multipart: %w", err)
	}

	var resp imageResponse
	if err := m.c.do(ctx, "/images/edits", w.FormDataContentType(), &buf, &resp); err != nil {
		return "", err
	}
	for _, d := range resp.Data {
		if d.B64JSON != "" {
			return d.B64JSON, nil
		}
	}
	return "", imagegen.ErrNoImage
}

func writeImage(w *multipart.Writer, name string, data []byte, mime string) error {
	mime = strings.TrimSpace(mime)
	if mime == "" {
		mime = http.DetectContentType(data)
	}

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="image[]"; filename="%s%s"`, name, extensionFor(mime)))
	h.Set("Content-Type", mime)

	part, err := w.CreatePart(h)
	if err != nil {
		return fmt.Errorf("create %s part: %w", name, err)
	}
	if _, err := part.Write(data); err != nil {
		return fmt.Errorf("write %s part: %w", name, err)
	}
	return nil
}

func extensionFor(mime string) string {
	switch mime {
	case "image/jpeg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	case "image/gif":
		return ".gif"
	default:
		return ".png"
	}
}

func (m *ImageModel) isDallE() bool {
	return strings.HasPrefix(strings.ToLower(m.model), "dall-e")
}

// nativeSize maps the landscape and portrait sizes onto what gpt-image models accept.
func (m *ImageModel) nativeSize(s imagegen.Size) string {
	if m.isDallE() {
		return string(s)
	}
	switch s {
	case imagegen.SizeLandscape:
		return "1536x1024"
	case imagegen.SizePortrait:
		return "1024x1536"
	case imagegen.SizeSquare:
		return "1024x1024"
	default:
		return "auto"
	}
}
