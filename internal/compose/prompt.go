package compose

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"ad-creator/internal/imagegen"
	"ad-creator/internal/product"
	"ad-creator/internal/templates"
)

// SafeZone is the text margin, in pixels, for an output size.
type SafeZone struct {
	Top, Bottom, Left, Right int
	Descriptor               string
}

func SafeZoneFor(size imagegen.Size) SafeZone {
	switch size {
	case imagegen.SizeLandscape:
		return SafeZone{Top: 80, Bottom: 80, Left: 100, Right: 100, Descriptor: "landscape (16:9) aspect ratio with more horizontal space"}
	case imagegen.SizePortrait:
		return SafeZone{Top: 120, Bottom: 120, Left: 60, Right: 60, Descriptor: "portrait (9:16) aspect ratio with more vertical space"}
	default:
		return SafeZone{Top: 80, Bottom: 80, Left: 80, Right: 80, Descriptor: "square (1:1) aspect ratio"}
	}
}

func (z SafeZone) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "- Top margin: %dpx from top edge\n", z.Top)
	fmt.Fprintf(&b, "- Bottom margin: %dpx from bottom edge\n", z.Bottom)
	fmt.Fprintf(&b, "- Left margin: %dpx from left edge\n", z.Left)
	fmt.Fprintf(&b, "- Right margin: %dpx from right edge\n", z.Right)
	b.WriteString("- Text must stay within these boundaries to avoid being cut off\n")
	return b.String()
}

// MergeConfig deep-copies the template config and adds the product under
// "product". Placement is only attached for registered templates.
func MergeConfig(analysis product.ImageAnalysis, tpl templates.Template, info product.Info, known bool) map[string]any {
	merged := templates.CloneConfig(tpl.Config)
	merged["product"] = map[string]any{
		"analysis": analysis,
		"info": map[string]any{
			"name":        info.ProductName,
			"brand":       info.BrandName,
			"description": info.ProductDescription,
			"benefits":    info.Benefits,
			"headline":    info.Headline,
			"disclaimer":  info.Disclaimer,
		},
	}
	if known && tpl.Placement != nil {
		p := *tpl.Placement
		merged["placement"] = &p
	}
	return merged
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func ColorInstructions(a product.ImageAnalysis) string {
	var b strings.Builder
	b.WriteString("CRITICAL COLOR PRESERVATION REQUIREMENTS:\n\n")
	fmt.Fprintf(&b, "The product's main color is %s. ", a.VisualAppearance.MainColor)

	if len(a.VisualAppearance.SecondaryColors) > 0 {
		fmt.Fprintf(&b, "Secondary colors include %s. ", strings.Join(a.VisualAppearance.SecondaryColors, ", "))
	}

	if codes := a.VisualAppearance.ColorHexCodes; len(codes) > 0 {
		b.WriteString("The exact color hex codes are:\n")
		for _, name := range sortedKeys(codes) {
			fmt.Fprintf(&b, "- %s: %s\n", name, codes[name])
		}
	}

	if len(a.ColorProfile.DominantColors) > 0 {
		b.WriteString("\nDominant colors with precise specifications:\n")
		for _, c := range a.ColorProfile.DominantColors {
			fmt.Fprintf(&b, "- %s (%s): approximately %s%% of the product\n", c.Name, c.HexCode, c.Percentage)
		}
	}

	if len(a.DetailedParts) > 0 {
		var lines []string
		for _, key := range sortedKeys(a.DetailedParts) {
			part := a.DetailedParts[key]
			if len(part.ExactColors) == 0 {
				continue
			}
			lines = append(lines, fmt.Sprintf("- %s: %s\n", partName(key, part, false), strings.Join(part.ExactColors, ", ")))
		}
		if len(lines) > 0 {
			b.WriteString("\nCritical color details for specific parts:\n")
			b.WriteString(strings.Join(lines, ""))
		}
	}

	if rel := strings.TrimSpace(a.ColorProfile.ColorRelationships); rel != "" {
		b.WriteString("\n" + rel + "\n")
	}
	if acc := strings.TrimSpace(a.ColorProfile.ColorAccuracy); acc != "" {
		b.WriteString("\n" + acc + "\n")
	}

	b.WriteString(`
ABSOLUTELY CRITICAL: You MUST preserve these EXACT colors in the generated image.
Do not lighten, darken, or change the colors in ANY way. The product's colors must be
IDENTICAL to the original image, especially for distinctive features like a penguin's
orange beak, which must remain EXACTLY orange, not yellow or any other color.
`)
	return b.String()
}

func partName(key string, p product.Part, upper bool) string {
	if strings.TrimSpace(p.Name) != "" {
		return p.Name
	}
	if upper {
		return strings.ToUpper(key)
	}
	return key
}

// PartDescriptions is empty when the analysis has no detailed parts.
func PartDescriptions(a product.ImageAnalysis) string {
	if len(a.DetailedParts) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("CRITICAL PRODUCT PART DETAILS:\n\n")
	for _, key := range sortedKeys(a.DetailedParts) {
		p := a.DetailedParts[key]
		b.WriteString(partName(key, p, true) + ":\n")
		fmt.Fprintf(&b, "- Description: %s\n", p.Description)
		if len(p.ExactColors) > 0 {
			fmt.Fprintf(&b, "- Colors: %s\n", strings.Join(p.ExactColors, ", "))
		}
		fmt.Fprintf(&b, "- Texture: %s\n", p.Texture)
		fmt.Fprintf(&b, "- Shape: %s\n", p.Shape)
		if len(p.Details) > 0 {
			fmt.Fprintf(&b, "- Details: %s\n", strings.Join(p.Details, ", "))
		}
		fmt.Fprintf(&b, "- Position: %s\n\n", p.Position)
	}
	return b.String()
}

func ProductDetails(a product.ImageAnalysis) string {
	va, pd := a.VisualAppearance, a.PreciseDetails

	var b strings.Builder
	b.WriteString("COMPREHENSIVE PRODUCT DETAILS:\n\n")
	b.WriteString(a.FullDescription + "\n\n")
	if parts := PartDescriptions(a); parts != "" {
		b.WriteString(parts)
	}

	b.WriteString("VISUAL APPEARANCE:\n")
	fmt.Fprintf(&b, "- Main Color: %s\n", va.MainColor)
	fmt.Fprintf(&b, "- Secondary Colors: %s\n", strings.Join(va.SecondaryColors, ", "))
	fmt.Fprintf(&b, "- Texture: %s\n", va.Texture)
	fmt.Fprintf(&b, "- Finish: %s\n", va.Finish)
	if va.Transparency != "" {
		fmt.Fprintf(&b, "- Transparency: %s\n", va.Transparency)
	}
	if len(va.Patterns) > 0 {
		fmt.Fprintf(&b, "- Patterns: %s\n", strings.Join(va.Patterns, ", "))
	}

	b.WriteString("\nPRECISE DETAILS:\n")
	fmt.Fprintf(&b, "- Edges: %s\n", pd.Edges)
	fmt.Fprintf(&b, "- Highlights: %s\n", pd.Highlights)
	fmt.Fprintf(&b, "- Shadows: %s\n", pd.Shadows)
	fmt.Fprintf(&b, "- Reflections: %s\n", pd.Reflections)
	if len(pd.TransparentAreas) > 0 {
		fmt.Fprintf(&b, "- Transparent Areas: %s\n", strings.Join(pd.TransparentAreas, ", "))
	}
	return b.String()
}

func preservation(a product.ImageAnalysis) string {
	colors := strings.Join(a.ExactColors, ", ")
	return `CRITICAL PRODUCT PRESERVATION REQUIREMENTS:

1. The product in the final image MUST be EXACTLY the same as the uploaded product image.
2. DO NOT modify, stylize, or redraw the product in any way.
3. PRESERVE ALL COLORS EXACTLY as they appear in the original product image.
4. Maintain all branding, packaging details, text, and design elements from the original product.
5. If the product is black, it MUST remain BLACK in the final image, not gray or any other color.
6. If the product has specific colors (` + colors + `), those EXACT colors must be preserved.
7. Do NOT substitute with a similar product or create a new version.
8. The product should be clearly visible and the main focus of the image.
9. IMPORTANT: Use the EXACT uploaded product image - do not recreate or redraw it.

IMPORTANT: This is a PHOTOREALISTIC advertisement. The product must look EXACTLY like the real product that was uploaded, not an illustration or stylized version.

CRITICAL IMAGE INTEGRATION INSTRUCTIONS:

1. PRESERVE THE ORIGINAL PRODUCT IMAGE: The uploaded product image must be preserved exactly as it is. Do not redraw, recreate, or modify it in any way.
2. COMPOSITE, DON'T RECREATE: Composite the original product image into the advertisement - do not attempt to recreate the product.
3. MAINTAIN EXACT COLORS: The product's colors must remain exactly as they appear in the uploaded image.
4. PRESERVE ALL DETAILS: All details, textures, text, and branding on the product must be preserved exactly.
5. PROPER INTEGRATION: Integrate the product image naturally into the scene with appropriate lighting and shadows, but do not alter the product itself.

This is CRITICAL: The final advertisement must use the actual uploaded product image, not a recreation or stylized version of it.
`
}

type PromptInput struct {
	Template templates.Template
	Info     product.Info
	Analysis product.ImageAnalysis
	Size     imagegen.Size
	Merged   map[string]any
}

// BuildPrompt renders the full compositing prompt. Info.Benefits must already
// be padded to the template minimum.
func BuildPrompt(in PromptInput) (string, error) {
	layout := in.Template.Layout
	if layout == nil {
		layout = templates.Default().Layout
	}

	body := layout(templates.LayoutInput{
		Info:              in.Info,
		ProductDetails:    ProductDetails(in.Analysis),
		ColorInstructions: ColorInstructions(in.Analysis),
		Preservation:      preservation(in.Analysis),
	})

	merged, err := json.Marshal(in.Merged)
	if err != nil {
		return "", fmt.Errorf("encode merged config: %w", err)
	}

	zone := SafeZoneFor(in.Size)
	colors := strings.Join(in.Analysis.ExactColors, ", ")

	var b strings.Builder
	b.WriteString(strings.TrimSpace(body) + "\n\n")
	fmt.Fprintf(&b, "TEXT BOUNDARIES: All text must stay within these safe boundaries for the %s:\n", zone.Descriptor)
	b.WriteString(zone.String() + "\n")
	b.WriteString("TEXT FITTING: Ensure ALL text fits completely within the boundaries without being cut off. Adjust font sizes as needed to ensure everything is readable and fully visible.\n\n")
	b.WriteString("CRITICAL COLOR ACCURACY REQUIREMENTS:\n")
	b.WriteString("- The product MUST maintain its EXACT original colors from the uploaded image.\n")
	b.WriteString("- If the product is black, it MUST remain BLACK in the final image, not gray or any other color.\n")
	fmt.Fprintf(&b, "- If the product has specific colors (%s), those EXACT colors must be preserved.\n", colors)
	b.WriteString("- Do NOT lighten dark colors or darken light colors on the product.\n")
	b.WriteString("- Do NOT apply any filters, effects, or adjustments that would alter the product's colors.\n")
	b.WriteString("- The product should look IDENTICAL in color to the uploaded image.\n\n")
	fmt.Fprintf(&b, "BACKGROUND COLOR: The background MUST be the exact color specified for this template (%s).\n\n", in.Template.BackgroundColor)
	b.WriteString("PRODUCT ACCURACY: This is the most critical requirement - the product in the final image must be EXACTLY the same as the uploaded product image with no alterations to its appearance. Do not create a generic version or substitute with a similar product. Preserve ALL details, colors, text, packaging, and branding from the original uploaded product image.\n\n")
	b.WriteString("IMPORTANT FINAL CHECK: Before finalizing the image, verify that:\n")
	b.WriteString("1. The product shown is EXACTLY the same as the uploaded product image\n")
	b.WriteString("2. No details of the original product have been changed or simplified\n")
	b.WriteString("3. The product's colors match the original EXACTLY - this is CRITICAL\n")
	b.WriteString("4. All text and branding on the product is preserved\n")
	b.WriteString("5. The product is not a generic or similar version but the exact uploaded product\n\n")
	b.WriteString("FINAL COLOR CHECK: As a final step, compare the colors of the product in your generated image with the colors of the uploaded product. If there is ANY difference in color, adjust your generation to match the original colors EXACTLY.\n\n")
	b.WriteString("MERGED CONFIGURATION JSON: " + string(merged))
	return b.String(), nil
}
