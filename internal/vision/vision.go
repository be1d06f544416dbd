package vision

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"ad-creator/internal/llm"
	"ad-creator/internal/product"
	"ad-creator/internal/templates"
)

var ErrNoImage = errors.New("no product image supplied")

type Options struct {
	Provider llm.Provider
	Logger   *slog.Logger
}

// Analyzer describes uploaded product photos with a vision model.
type Analyzer struct {
	provider llm.Provider
	logger   *slog.Logger
}

func New(opts Options) *Analyzer {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Analyzer{provider: opts.Provider, logger: logger}
}

// Describe returns a short free-text description steered by the template's
// focus points. It feeds the extraction prompt.
func (a *Analyzer) Describe(ctx context.Context, imageBase64 string, tpl templates.Template) (string, error) {
	img, err := a.image(imageBase64)
	if err != nil {
		return "", err
	}

	start := time.Now()
	text, err := a.provider.Complete(ctx, llm.Request{
		Prompt:      describePrompt(tpl.Focus),
		Images:      []llm.Image{img},
		Temperature: 0.1,
	})
	if err != nil {
		return "", fmt.Errorf("describe product image: %w", err)
	}

	text = strings.TrimSpace(text)
	a.logger.Info("image described", "template", tpl.ID, "model", a.provider.Name(), "chars", len(text), "dur_ms", time.Since(start).Milliseconds())
	return text, nil
}

// Analyze returns the structured analysis used by the compositor. Every
// field of the result is populated.
func (a *Analyzer) Analyze(ctx context.Context, imageBase64 string) (product.ImageAnalysis, error) {
	img, err := a.image(imageBase64)
	if err != nil {
		return product.ImageAnalysis{}, err
	}

	start := time.Now()
	text, err := a.provider.Complete(ctx, llm.Request{
		Prompt:      analyzePrompt,
		Images:      []llm.Image{img},
		Temperature: 0.1,
		JSON:        true,
	})
	if err != nil {
		return product.ImageAnalysis{}, fmt.Errorf("analyze product image: %w", err)
	}

	var analysis product.ImageAnalysis
	if err := json.Unmarshal([]byte(product.ExtractJSON(text)), &analysis); err != nil {
		return product.ImageAnalysis{}, fmt.Errorf("decode product analysis: %w", err)
	}

	analysis = analysis.Normalize()
	a.logger.Info("image analyzed",
		"model", a.provider.Name(),
		"product_type", analysis.ProductType,
		"main_color", analysis.VisualAppearance.MainColor,
		"parts", len(analysis.DetailedParts),
		"dur_ms", time.Since(start).Milliseconds(),
	)
	return analysis, nil
}

func (a *Analyzer) image(imageBase64 string) (llm.Image, error) {
	if a.provider == nil {
		return llm.Image{}, errors.New("vision provider is not configured")
	}
	img := llm.ImageFromBase64(imageBase64)
	if img.Data == "" {
		return llm.Image{}, ErrNoImage
	}
	return img, nil
}

func describePrompt(focus templates.Focus) string {
	var b strings.Builder
	b.WriteString("Analyze this product image and provide an EXTREMELY PRECISE and DETAILED description.\n\n")

	if focus.Subject != "" && len(focus.Points) > 0 {
		b.WriteString("This appears to be " + focus.Subject + ". Focus on:\n")
		for _, p := range focus.Points {
			b.WriteString("- " + p + "\n")
		}
		b.WriteString("\n")
	}

	b.WriteString(`Focus on:
1. Product type and category (be very specific)
2. EXACT COLOR (be extremely precise - exact shade like "jet black", "navy blue", "forest green", etc.)
3. Material and texture (leather, plastic, metal, fabric, glass, etc.)
4. Shape, dimensions, and proportions
5. All visible text, logos, and branding elements
6. Unique design features and distinguishing characteristics
7. Any visible details like packaging, labels, ingredients list

Start your description with the product type and its EXACT color.
Be extremely precise about colors - use specific color names, not general terms.

Your description must be HIGHLY ACCURATE and DETAILED, as it will be used to create a perfect representation of this product.
Keep your description under 200 words, focusing only on what's clearly visible.

IMPORTANT: This analysis will be used to generate a product advertisement, so focus on marketable features and visual elements that would be important in an ad.

DO NOT identify the product as an Amazon brand unless you can clearly see "Amazon" or "Amazon Basics" text on the product itself.
`)
	return b.String()
}

const analyzePrompt = `Analyze this product image with extreme precision. The result will be used to composite the real product into an advertisement without altering it, so colors and parts must be described exactly.

Return ONLY a JSON object with this shape:
{
  "productType": "specific product type",
  "exactColors": ["exact shade names, e.g. jet black, navy blue"],
  "materials": ["plastic", "glass", "..."],
  "shape": "overall shape",
  "dimensions": "apparent proportions",
  "brandingElements": ["visible text, logos"],
  "uniqueFeatures": ["distinguishing features"],
  "packaging": "packaging description",
  "fullDescription": "2-4 sentence description starting with product type and exact color",
  "marketingHighlights": ["marketable visual features"],
  "visualAppearance": {
    "mainColor": "exact main color",
    "secondaryColors": ["..."],
    "texture": "...",
    "finish": "matte, glossy, satin, ...",
    "transparency": "only if any part is transparent",
    "patterns": ["only if patterns are present"],
    "colorHexCodes": {"part or color name": "#RRGGBB"}
  },
  "productDetails": {"category": "...", "subcategory": "...", "intendedUse": "..."},
  "visualElements": {"designFeatures": ["..."]},
  "detailedParts": {
    "partKey": {
      "name": "Part name",
      "description": "...",
      "exactColors": ["..."],
      "texture": "...",
      "shape": "...",
      "details": ["..."],
      "position": "where on the product"
    }
  },
  "colorProfile": {
    "dominantColors": [{"name": "...", "hexCode": "#RRGGBB", "percentage": 60}],
    "colorRelationships": "how the colors relate",
    "colorAccuracy": "statement about preserving these colors"
  },
  "preciseDetails": {
    "edges": "...",
    "highlights": "...",
    "shadows": "...",
    "reflections": "...",
    "transparentAreas": ["..."]
  }
}

Use "unknown" for anything that is not visible. Do not identify the product as an Amazon brand unless "Amazon" is clearly printed on it.`
