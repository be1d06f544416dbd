package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"ad-creator/internal/compose"
	"ad-creator/internal/extract"
	"ad-creator/internal/imagegen"
	"ad-creator/internal/pipeline"
)

const maxBodyBytes = 25 << 20

// Service is the pipeline as seen by the HTTP layer.
type Service interface {
	Extract(ctx context.Context, req extract.Request) extract.Result
	EditImage(ctx context.Context, req compose.EditRequest) compose.EditResult
	Generate(ctx context.Context, req imagegen.GenerateRequest) imagegen.GenerateResult
	FetchWebsiteContent(ctx context.Context, url string) pipeline.FetchResult
	CreateAd(ctx context.Context, req pipeline.AdRequest) pipeline.AdResult
}

type Options struct {
	Service Service
	Logger  *slog.Logger
	// CORSOrigins defaults to any origin.
	CORSOrigins    []string
	RequestTimeout time.Duration
	// PublicDir, when set, is served under /images/.
	PublicDir string
}

type Server struct {
	svc       Service
	logger    *slog.Logger
	origins   []string
	timeout   time.Duration
	publicDir string
}

type apiError struct {
	Error string `json:"error"`
}

func New(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	timeout := opts.RequestTimeout
	if timeout <= 0 {
		timeout = 240 * time.Second
	}
	origins := opts.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return &Server{
		svc:       opts.Service,
		logger:    logger,
		origins:   origins,
		timeout:   timeout,
		publicDir: strings.TrimSpace(opts.PublicDir),
	}
}

func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/templates", s.handleTemplates).Methods(http.MethodGet)
	api.HandleFunc("/templates/{id}", s.handleTemplate).Methods(http.MethodGet)
	api.HandleFunc("/extract", s.handleExtract).Methods(http.MethodPost)
	api.HandleFunc("/edit", s.handleEdit).Methods(http.MethodPost)
	api.HandleFunc("/generate", s.handleGenerate).Methods(http.MethodPost)
	api.HandleFunc("/fetch", s.handleFetch).Methods(http.MethodPost)
	api.HandleFunc("/ads", s.handleCreateAd).Methods(http.MethodPost)

	if s.publicDir != "" {
		r.PathPrefix("/images/").Handler(http.FileServer(http.Dir(s.publicDir)))
	}

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, apiError{Error: "not found"})
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, apiError{Error: "method not allowed"})
	})

	c := cors.New(cors.Options{
		AllowedOrigins: s.origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"*"},
		ExposedHeaders: []string{requestIDHeader},
	})

	return withRequestID(withLogging(c.Handler(r), s.logger))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) requestContext(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), s.timeout)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return errors.New("request body too large")
		}
		return errors.New("invalid JSON body")
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("content-type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// resultStatus maps a discriminated result onto the response code. The body
// is always the full result.
func resultStatus(success bool) int {
	if success {
		return http.StatusOK
	}
	return http.StatusBadGateway
}
