package compose

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"ad-creator/internal/templates"
)

var ErrReferenceUnavailable = errors.New("failed to load reference image from any source")

const defaultPublicDir = "public"

type RemoteFetcher interface {
	FetchBytes(ctx context.Context, url string) ([]byte, string, error)
}

type ReferenceOptions struct {
	Fetcher RemoteFetcher
	// PublicDir holds the bundled template images, served under /images.
	PublicDir   string
	FallbackURL string
	Logger      *slog.Logger
}

type Reference struct {
	Data   []byte
	Mime   string
	Source string
}

type referenceSource struct {
	name     string
	location string
	remote   bool
}

// ReferenceResolver loads the template reference image, walking an ordered
// list of named sources until one yields bytes.
type ReferenceResolver struct {
	fetcher     RemoteFetcher
	publicDir   string
	fallbackURL string
	logger      *slog.Logger
}

func NewReferenceResolver(opts ReferenceOptions) *ReferenceResolver {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	dir := strings.TrimSpace(opts.PublicDir)
	if dir == "" {
		dir = defaultPublicDir
	}
	return &ReferenceResolver{
		fetcher:     opts.Fetcher,
		publicDir:   dir,
		fallbackURL: strings.TrimSpace(opts.FallbackURL),
		logger:      logger,
	}
}

func (r *ReferenceResolver) Resolve(ctx context.Context, tpl templates.Template) (Reference, error) {
	var errs []error
	for _, src := range r.sources(tpl) {
		if err := ctx.Err(); err != nil {
			return Reference{}, err
		}

		start := time.Now()
		data, mime, err := r.load(ctx, src)
		outcome := "ok"
		if err != nil {
			outcome = "failed"
		}
		r.logger.Info("reference attempt",
			"template", tpl.ID,
			"source", src.name,
			"location", src.location,
			"outcome", outcome,
			"err", err,
			"dur_ms", time.Since(start).Milliseconds(),
		)

		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", src.name, err))
			continue
		}
		return Reference{Data: data, Mime: mime, Source: src.name}, nil
	}

	return Reference{}, fmt.Errorf("%w: %w", ErrReferenceUnavailable, errors.Join(errs...))
}

// sources lists every place the reference may come from, in order, each
// location at most once.
func (r *ReferenceResolver) sources(tpl templates.Template) []referenceSource {
	var out []referenceSource
	seen := map[string]bool{}
	add := func(name, location string, remote bool) {
		if location == "" || seen[location] {
			return
		}
		seen[location] = true
		out = append(out, referenceSource{name: name, location: location, remote: remote})
	}

	ref := strings.TrimSpace(tpl.ReferenceImage)
	if templates.IsRemote(ref) {
		add("remote", ref, true)
		if tpl.ID == templates.DefaultID {
			add("fallback-remote", r.fallbackURL, true)
		}
	} else {
		if ref == "" {
			ref = "/images/reference-image.png"
		}
		add("public", r.publicPath(ref), false)
	}

	add("fallback-path", r.publicPath(fallbackPath(tpl)), false)
	add("last-resort-remote", r.fallbackURL, true)
	return out
}

func fallbackPath(tpl templates.Template) string {
	if tpl.ID == templates.DefaultID {
		return "images/template-adcreator.png"
	}
	if name := path.Base(strings.TrimSpace(tpl.ImageSrc)); name != "" && name != "." && name != "/" {
		return "images/" + name
	}
	return "images/reference-image.png"
}

func (r *ReferenceResolver) publicPath(rel string) string {
	clean := path.Clean("/" + strings.TrimSpace(rel))
	return filepath.Join(r.publicDir, filepath.FromSlash(clean))
}

func (r *ReferenceResolver) load(ctx context.Context, src referenceSource) ([]byte, string, error) {
	if src.remote {
		if r.fetcher == nil {
			return nil, "", errors.New("no remote fetcher configured")
		}
		data, contentType, err := r.fetcher.FetchBytes(ctx, src.location)
		if err != nil {
			return nil, "", err
		}
		if len(data) == 0 {
			return nil, "", errors.New("empty image body")
		}
		if !strings.HasPrefix(contentType, "image/") {
			contentType = http.DetectContentType(data)
		}
		return data, contentType, nil
	}

	data, err := os.ReadFile(src.location)
	if err != nil {
		return nil, "", err
	}
	if len(data) == 0 {
		return nil, "", errors.New("empty image file")
	}
	return data, http.DetectContentType(data), nil
}
