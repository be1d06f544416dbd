package api

import (
	"encoding/base64"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"ad-creator/internal/compose"
	"ad-creator/internal/extract"
	"ad-creator/internal/imagegen"
	"ad-creator/internal/pipeline"
	"ad-creator/internal/product"
	"ad-creator/internal/templates"
)

func (s *Server) handleTemplates(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, templates.All())
}

func (s *Server) handleTemplate(w http.ResponseWriter, r *http.Request) {
	tpl, ok := templates.Lookup(mux.Vars(r)["id"])
	if !ok {
		writeJSON(w, http.StatusNotFound, apiError{Error: "template not found"})
		return
	}
	writeJSON(w, http.StatusOK, tpl)
}

type extractBody struct {
	URL         string `json:"url"`
	Size        string `json:"size,omitempty"`
	ImageBase64 string `json:"imageBase64,omitempty"`
	TemplateID  string `json:"templateId,omitempty"`
}

func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	var body extractBody
	if err := decodeJSON(w, r, &body); err != nil {
		writeJSON(w, http.StatusBadRequest, apiError{Error: err.Error()})
		return
	}
	if strings.TrimSpace(body.URL) == "" {
		writeJSON(w, http.StatusBadRequest, apiError{Error: "url is required"})
		return
	}

	var size imagegen.Size
	if strings.TrimSpace(body.Size) != "" {
		parsed, err := imagegen.ParseSize(body.Size)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, apiError{Error: err.Error()})
			return
		}
		size = parsed
	}

	ctx, cancel := s.requestContext(r)
	defer cancel()

	// A failed extraction still carries usable default copy.
	res := s.svc.Extract(ctx, extract.Request{
		URL:         body.URL,
		Size:        size,
		ImageBase64: body.ImageBase64,
		TemplateID:  body.TemplateID,
	})
	writeJSON(w, http.StatusOK, res)
}

type editBody struct {
	Size        string       `json:"size"`
	ImageBase64 string       `json:"imageBase64"`
	ProductInfo product.Info `json:"productInfo"`
}

func (s *Server) handleEdit(w http.ResponseWriter, r *http.Request) {
	var body editBody
	if err := decodeJSON(w, r, &body); err != nil {
		writeJSON(w, http.StatusBadRequest, apiError{Error: err.Error()})
		return
	}
	size, err := imagegen.ParseSize(body.Size)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, apiError{Error: err.Error()})
		return
	}
	if strings.TrimSpace(body.ImageBase64) == "" {
		writeJSON(w, http.StatusBadRequest, apiError{Error: "imageBase64 is required"})
		return
	}

	ctx, cancel := s.requestContext(r)
	defer cancel()

	res := s.svc.EditImage(ctx, compose.EditRequest{
		Size:        size,
		ImageBase64: body.ImageBase64,
		ProductInfo: body.ProductInfo,
	})
	writeJSON(w, resultStatus(res.Success), res)
}

type generateBody struct {
	Prompt      string `json:"prompt"`
	Size        string `json:"size"`
	N           int    `json:"n"`
	Transparent bool   `json:"transparent"`
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var body generateBody
	if err := decodeJSON(w, r, &body); err != nil {
		writeJSON(w, http.StatusBadRequest, apiError{Error: err.Error()})
		return
	}
	if strings.TrimSpace(body.Prompt) == "" {
		writeJSON(w, http.StatusBadRequest, apiError{Error: "prompt is required"})
		return
	}
	size := imagegen.SizeSquare
	if strings.TrimSpace(body.Size) != "" {
		parsed, err := imagegen.ParseSize(body.Size)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, apiError{Error: err.Error()})
			return
		}
		size = parsed
	}

	ctx, cancel := s.requestContext(r)
	defer cancel()

	res := s.svc.Generate(ctx, imagegen.GenerateRequest{
		Prompt:      body.Prompt,
		Size:        size,
		N:           body.N,
		Transparent: body.Transparent,
	})
	writeJSON(w, resultStatus(res.Success), res)
}

type fetchBody struct {
	URL string `json:"url"`
}

func (s *Server) handleFetch(w http.ResponseWriter, r *http.Request) {
	var body fetchBody
	if err := decodeJSON(w, r, &body); err != nil {
		writeJSON(w, http.StatusBadRequest, apiError{Error: err.Error()})
		return
	}
	if strings.TrimSpace(body.URL) == "" {
		writeJSON(w, http.StatusBadRequest, apiError{Error: "url is required"})
		return
	}

	ctx, cancel := s.requestContext(r)
	defer cancel()

	res := s.svc.FetchWebsiteContent(ctx, body.URL)
	writeJSON(w, resultStatus(res.Success), res)
}

// handleCreateAd takes a multipart upload: image, url, templateId, size.
func (s *Server) handleCreateAd(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := r.ParseMultipartForm(maxBodyBytes); err != nil {
		writeJSON(w, http.StatusBadRequest, apiError{Error: "invalid multipart form"})
		return
	}

	imageBase64, err := readUpload(r, "image")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, apiError{Error: err.Error()})
		return
	}

	url := strings.TrimSpace(r.FormValue("url"))
	if url == "" {
		writeJSON(w, http.StatusBadRequest, apiError{Error: "url is required"})
		return
	}

	size := imagegen.SizeSquare
	if raw := strings.TrimSpace(r.FormValue("size")); raw != "" {
		parsed, err := imagegen.ParseSize(raw)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, apiError{Error: err.Error()})
			return
		}
		size = parsed
	}

	ctx, cancel := s.requestContext(r)
	defer cancel()

	res := s.svc.CreateAd(ctx, pipeline.AdRequest{
		URL:         url,
		ImageBase64: imageBase64,
		TemplateID:  strings.TrimSpace(r.FormValue("templateId")),
		Size:        size,
	})
	writeJSON(w, resultStatus(res.Success), res)
}

// readUpload returns the named file as a data URL.
func readUpload(r *http.Request, field string) (string, error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		return "", errors.New("missing " + field)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return "", errors.New("failed to read " + field)
	}
	if len(data) == 0 {
		return "", errors.New(field + " is empty")
	}

	mimeType := strings.TrimSpace(header.Header.Get("Content-Type"))
	if i := strings.IndexByte(mimeType, ';'); i >= 0 {
		mimeType = strings.TrimSpace(mimeType[:i])
	}
	if mimeType == "" || mimeType == "application/octet-stream" {
		mimeType = http.DetectContentType(data)
	}
	if !strings.HasPrefix(mimeType, "image/") {
		return "", errors.New(field + " must be an image")
	}

	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}
