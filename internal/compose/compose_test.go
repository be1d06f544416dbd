package compose

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ad-creator/internal/imagegen"
	"ad-creator/internal/product"
	"ad-creator/internal/templates"
	"ad-creator/internal/webfetch"
)

var pngBytes = append([]byte("\x89PNG\r\n\x1a\n"), make([]byte, 32)...)

type fakeImages struct {
	mu    sync.Mutex
	out   string
	err   error
	edits []imagegen.EditRequest
}

func (f *fakeImages) Generate(ctx context.Context, req imagegen.Request) ([]string, error) {
	return nil, errors.New("not used")
}

func (f *fakeImages) Edit(ctx context.Context, req imagegen.EditRequest) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.edits = append(f.edits, req)
	return f.out, f.err
}

type fakeAnalyzer struct {
	analysis product.ImageAnalysis
	err      error
}

func (f *fakeAnalyzer) Analyze(ctx context.Context, imageBase64 string) (product.ImageAnalysis, error) {
	return f.analysis, f.err
}

type fakeRemote struct {
	mu    sync.Mutex
	ok    map[string]bool
	calls []string
}

func (f *fakeRemote) FetchBytes(ctx context.Context, url string) ([]byte, string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, url)
	if f.ok[url] {
		return pngBytes, "image/png", nil
	}
	return nil, "", &webfetch.StatusError{StatusCode: http.StatusNotFound, Status: "404 Not Found", URL: url}
}

func blackBottle() product.ImageAnalysis {
	return product.ImageAnalysis{
		ProductType:     "supplement bottle",
		ExactColors:     []string{"jet black", "white"},
		FullDescription: "A jet black plastic supplement bottle with a white label.",
		VisualAppearance: product.VisualAppearance{
			MainColor:       "jet black",
			SecondaryColors: []string{"white"},
			Finish:          "matte",
			ColorHexCodes:   map[string]string{"body": "#0A0A0A", "label": "#FFFFFF"},
		},
		DetailedParts: map[string]product.Part{
			"cap": {Description: "Screw cap", ExactColors: []string{"jet black"}},
		},
		ColorProfile: product.ColorProfile{
			DominantColors: []product.DominantColor{{Name: "jet black", HexCode: "#0A0A0A", Percentage: 85}},
		},
	}.Normalize()
}

func bottleInfo(templateID string) product.Info {
	return product.Info{
		ProductName:        "Night Recovery",
		ProductDescription: "Sleep support capsules",
		BrandName:          "Lumen",
		Benefits:           []product.Benefit{{Name: "Sleep", Description: "Fall asleep faster"}},
		TemplateID:         templateID,
	}
}

func TestSafeZoneFor(t *testing.T) {
	cases := []struct {
		size                     imagegen.Size
		top, bottom, left, right int
		descriptor               string
	}{
		{imagegen.SizeSquare, 80, 80, 80, 80, "square (1:1)"},
		{imagegen.SizeLandscape, 80, 80, 100, 100, "landscape (16:9)"},
		{imagegen.SizePortrait, 120, 120, 60, 60, "portrait (9:16)"},
	}
	for _, tc := range cases {
		t.Run(string(tc.size), func(t *testing.T) {
			z := SafeZoneFor(tc.size)
			assert.Equal(t, []int{tc.top, tc.bottom, tc.left, tc.right}, []int{z.Top, z.Bottom, z.Left, z.Right})
			assert.Contains(t, z.Descriptor, tc.descriptor)
		})
	}
	assert.Contains(t, SafeZoneFor(imagegen.SizePortrait).String(), "- Top margin: 120px from top edge")
}

func TestColorInstructions(t *testing.T) {
	out := ColorInstructions(blackBottle())
	assert.True(t, strings.HasPrefix(out, "CRITICAL COLOR PRESERVATION REQUIREMENTS:"))
	assert.Contains(t, out, "The product's main color is jet black.")
	assert.Contains(t, out, "Secondary colors include white.")
	assert.Contains(t, out, "- body: #0A0A0A\n- label: #FFFFFF\n")
	assert.Contains(t, out, "- jet black (#0A0A0A): approximately 85% of the product")
	assert.Contains(t, out, "- cap: jet black")
	assert.Contains(t, out, product.DefaultColorAccuracy)
	assert.Contains(t, out, "ABSOLUTELY CRITICAL")
}

func TestPartDescriptions(t *testing.T) {
	assert.Empty(t, PartDescriptions(product.ImageAnalysis{}))

	out := PartDescriptions(blackBottle())
	assert.Contains(t, out, "CRITICAL PRODUCT PART DETAILS:")
	assert.Contains(t, out, "CAP:\n- Description: Screw cap\n- Colors: jet black\n")
	assert.Contains(t, out, "- Position: unknown")

	details := ProductDetails(blackBottle())
	assert.Contains(t, details, "COMPREHENSIVE PRODUCT DETAILS:")
	assert.Contains(t, details, "CAP:")
	assert.Contains(t, details, "- Finish: matte")
	assert.NotContains(t, details, "Transparency")
}

func TestMergeConfig(t *testing.T) {
	tpl, ok := templates.Lookup("mushroom-coffee")
	require.True(t, ok)
	info := bottleInfo(tpl.ID)

	merged := MergeConfig(blackBottle(), tpl, info, true)
	p, ok := merged["placement"].(*templates.Placement)
	require.True(t, ok)
	assert.Equal(t, "right-center", p.Position)
	assert.Equal(t, 5, p.Rotation)

	prod := merged["product"].(map[string]any)
	assert.Equal(t, "Night Recovery", prod["info"].(map[string]any)["name"])
	assert.Equal(t, "Lumen", prod["info"].(map[string]any)["brand"])

	_, has := tpl.Config["product"]
	assert.False(t, has, "template config must not be mutated")

	unknown := MergeConfig(blackBottle(), templates.Default(), info, false)
	assert.NotContains(t, unknown, "placement")
}

func TestDecodeImage(t *testing.T) {
	enc := base64.StdEncoding.EncodeToString(pngBytes)

	raw, mime, err := DecodeImage("data:image/png;base64," + enc)
	require.NoError(t, err)
	assert.Equal(t, pngBytes, raw)
	assert.Equal(t, "image/png", mime)

	raw, _, err = DecodeImage(strings.TrimRight(enc, "="))
	require.NoError(t, err)
	assert.Equal(t, pngBytes, raw)

	_, _, err = DecodeImage("data:image/png;base64,")
	assert.ErrorIs(t, err, ErrEmptyImage)

	_, _, err = DecodeImage("!!not base64!!")
	assert.Error(t, err)
}

func TestReferenceSourcesOrder(t *testing.T) {
	r := NewReferenceResolver(ReferenceOptions{PublicDir: "/srv/public", FallbackURL: "https://cdn.example/fallback.png"})

	names := func(srcs []referenceSource) []string {
		var out []string
		for _, s := range srcs {
			out = append(out, s.name+"="+s.location)
		}
		return out
	}

	def := templates.Default()
	assert.Equal(t, []string{
		"remote=" + def.ReferenceImage,
		"fallback-remote=https://cdn.example/fallback.png",
		"fallback-path=" + filepath.Join("/srv/public", "images", "template-adcreator.png"),
	}, names(r.sources(def)))

	beauty, _ := templates.Lookup("beauty-products")
	assert.Equal(t, []string{
		"public=" + filepath.Join("/srv/public", "images", "template-beauty.png"),
		"last-resort-remote=https://cdn.example/fallback.png",
	}, names(r.sources(beauty)))

	nucao, _ := templates.Lookup("nucao-chocolate")
	got := names(r.sources(nucao))
	require.Len(t, got, 3)
	assert.Equal(t, "remote="+nucao.ReferenceImage, got[0])
	assert.Equal(t, "fallback-path="+filepath.Join("/srv/public", "images", "1-OJ4kVNC4BVGZFm7FcGlrj51ZGSanSy.png"), got[1])
	assert.Equal(t, "last-resort-remote=https://cdn.example/fallback.png", got[2])
}

func TestReferenceResolverFallsBackToLocalFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "images"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "images", "template-adcreator.png"), pngBytes, 0o644))

	remote := &fakeRemote{}
	r := NewReferenceResolver(ReferenceOptions{Fetcher: remote, PublicDir: dir, FallbackURL: "https://cdn.example/fallback.png"})

	ref, err := r.Resolve(context.Background(), templates.Default())
	require.NoError(t, err)
	assert.Equal(t, "fallback-path", ref.Source)
	assert.Equal(t, "image/png", ref.Mime)
	assert.Equal(t, []string{templates.Default().ReferenceImage, "https://cdn.example/fallback.png"}, remote.calls)
}

func TestReferenceResolverExhausted(t *testing.T) {
	remote := &fakeRemote{}
	r := NewReferenceResolver(ReferenceOptions{Fetcher: remote, PublicDir: t.TempDir(), FallbackURL: "https://cdn.example/fallback.png"})

	tpl, _ := templates.Lookup("health-supplements")
	_, err := r.Resolve(context.Background(), tpl)
	require.ErrorIs(t, err, ErrReferenceUnavailable)
	assert.Len(t, remote.calls, 1, "each source is tried once")
}

func TestReferenceResolverOverHTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/ok.png" {
			http.NotFound(w, r)
			return
		}
		assert.Equal(t, webfetch.ImageUserAgent, r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(pngBytes)
	}))
	defer srv.Close()

	r := NewReferenceResolver(ReferenceOptions{
		Fetcher:     webfetch.New(webfetch.Options{HTTPClient: srv.Client()}),
		PublicDir:   t.TempDir(),
		FallbackURL: srv.URL + "/ok.png",
	})
	tpl := templates.Default()
	tpl.ReferenceImage = srv.URL + "/missing.png"

	ref, err := r.Resolve(context.Background(), tpl)
	require.NoError(t, err)
	assert.Equal(t, "fallback-remote", ref.Source)
	assert.Equal(t, pngBytes, ref.Data)
}

func TestReferenceResolverSkipsOversizedImage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		if r.URL.Path == "/huge.png" {
			_, _ = w.Write(append(append([]byte(nil), pngBytes...), make([]byte, 256)...))
			return
		}
		_, _ = w.Write(pngBytes)
	}))
	defer srv.Close()

	r := NewReferenceResolver(ReferenceOptions{
		Fetcher: webfetch.New(webfetch.Options{
			HTTPClient:    srv.Client(),
			MaxImageBytes: int64(len(pngBytes)),
		}),
		PublicDir:   t.TempDir(),
		FallbackURL: srv.URL + "/ok.png",
	})
	tpl := templates.Default()
	tpl.ReferenceImage = srv.URL + "/huge.png"

	ref, err := r.Resolve(context.Background(), tpl)
	require.NoError(t, err)
	assert.Equal(t, "fallback-remote", ref.Source)
	assert.Equal(t, pngBytes, ref.Data)
}

func TestEditBlackBottleEndToEnd(t *testing.T) {
	images := &fakeImages{out: "RESULT"}
	remote := &fakeRemote{ok: map[string]bool{}}
	tpl, _ := templates.Lookup("agemate-longevity")
	remote.ok[tpl.ReferenceImage] = true

	ed := New(Options{
		Provider:   images,
		Analyzer:   &fakeAnalyzer{analysis: blackBottle()},
		References: NewReferenceResolver(ReferenceOptions{Fetcher: remote, PublicDir: t.TempDir()}),
	})

	info := bottleInfo(tpl.ID)
	info.ProductName = "Amazon's Choice Night Recovery"
	res := ed.Edit(context.Background(), EditRequest{
		Size:        imagegen.SizePortrait,
		ImageBase64: "data:image/png;base64," + base64.StdEncoding.EncodeToString(pngBytes),
		ProductInfo: info,
	})

	require.True(t, res.Success, res.Error)
	assert.Equal(t, "RESULT", res.Image)
	require.NotNil(t, res.ProductAnalysis)
	assert.Equal(t, "jet black", res.ProductAnalysis.VisualAppearance.MainColor)
	assert.Contains(t, res.MergedConfig, "placement")

	require.Len(t, images.edits, 1)
	call := images.edits[0]
	assert.Equal(t, imagegen.SizePortrait, call.Size)
	assert.Equal(t, 0.1, call.Temperature)
	assert.Equal(t, pngBytes, call.Image)
	assert.Equal(t, "image/png", call.ImageMime)
	assert.Equal(t, pngBytes, call.Reference)

	prompt := call.Prompt
	assert.Contains(t, prompt, "Night Recovery by Lumen")
	assert.NotContains(t, prompt, "Amazon's Choice")
	assert.Contains(t, prompt, "If the product is black, it MUST remain BLACK")
	assert.Contains(t, prompt, "(jet black, white)")
	assert.Contains(t, prompt, "portrait (9:16) aspect ratio with more vertical space")
	assert.Contains(t, prompt, "- Top margin: 120px from top edge")
	assert.Contains(t, prompt, "BACKGROUND COLOR: The background MUST be the exact color specified for this template (#6B46C1).")
	assert.Contains(t, prompt, "MERGED CONFIGURATION JSON: {")
	assert.Contains(t, prompt, `"hand":true`)
}

func TestEditFallsBackWhenAnalysisFails(t *testing.T) {
	images := &fakeImages{out: "OK"}
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "images"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "images", "template-wellness.png"), pngBytes, 0o644))

	ed := New(Options{
		Provider:   images,
		Analyzer:   &fakeAnalyzer{err: errors.New("vision quota")},
		References: NewReferenceResolver(ReferenceOptions{PublicDir: dir}),
	})

	res := ed.Edit(context.Background(), EditRequest{
		Size:        imagegen.SizeSquare,
		ImageBase64: base64.StdEncoding.EncodeToString(pngBytes),
		ProductInfo: bottleInfo("wellness-products"),
	})
	require.True(t, res.Success, res.Error)
	assert.Equal(t, "Unknown product", res.ProductAnalysis.ProductType)
	assert.Equal(t, "Sleep support capsules", res.ProductAnalysis.FullDescription)

	benefits := res.MergedConfig["product"].(map[string]any)["info"].(map[string]any)["benefits"].([]product.Benefit)
	assert.Len(t, benefits, 8)
	assert.Contains(t, images.edits[0].Prompt, benefits[7].Name)
}

func TestEditFailures(t *testing.T) {
	valid := base64.StdEncoding.EncodeToString(pngBytes)
	empty := NewReferenceResolver(ReferenceOptions{Fetcher: &fakeRemote{}, PublicDir: t.TempDir()})

	cases := []struct {
		name    string
		editor  *Editor
		req     EditRequest
		wantErr string
	}{
		{
			name:    "bad size",
			editor:  New(Options{Provider: &fakeImages{out: "x"}, References: empty}),
			req:     EditRequest{Size: "512x512", ImageBase64: valid},
			wantErr: "invalid image size",
		},
		{
			name:    "no image",
			editor:  New(Options{Provider: &fakeImages{out: "x"}, References: empty}),
			req:     EditRequest{Size: imagegen.SizeSquare},
			wantErr: ErrEmptyImage.Error(),
		},
		{
			name:    "no reference",
			editor:  New(Options{Provider: &fakeImages{out: "x"}, References: empty}),
			req:     EditRequest{Size: imagegen.SizeSquare, ImageBase64: valid},
			wantErr: "failed to get reference image",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := tc.editor.Edit(context.Background(), tc.req)
			assert.False(t, res.Success)
			assert.Empty(t, res.Image)
			assert.Contains(t, res.Error, tc.wantErr)
		})
	}

	remote := &fakeRemote{ok: map[string]bool{templates.Default().ReferenceImage: true}}
	ed := New(Options{
		Provider:   &fakeImages{err: errors.New("upstream 500")},
		References: NewReferenceResolver(ReferenceOptions{Fetcher: remote}),
	})
	res := ed.Edit(context.Background(), EditRequest{Size: imagegen.SizeSquare, ImageBase64: valid, ProductInfo: bottleInfo("")})
	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "upstream 500")
}
