package product

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

const unknown = "unknown"

const DefaultColorAccuracy = "Colors must be preserved exactly as they appear in the original image."

// ImageAnalysis is the structured description of an uploaded product photo.
type ImageAnalysis struct {
	ProductType         string           `json:"productType"`
	ExactColors         StringList       `json:"exactColors"`
	Materials           StringList       `json:"materials"`
	Shape               string           `json:"shape"`
	Dimensions          string           `json:"dimensions"`
	BrandingElements    StringList       `json:"brandingElements"`
	UniqueFeatures      StringList       `json:"uniqueFeatures"`
	Packaging           string           `json:"packaging"`
	FullDescription     string           `json:"fullDescription"`
	MarketingHighlights StringList       `json:"marketingHighlights"`
	VisualAppearance    VisualAppearance `json:"visualAppearance"`
	ProductDetails      ProductDetails   `json:"productDetails"`
	VisualElements      VisualElements   `json:"visualElements"`
	DetailedParts       map[string]Part  `json:"detailedParts"`
	ColorProfile        ColorProfile     `json:"colorProfile"`
	PreciseDetails      PreciseDetails   `json:"preciseDetails"`
}

type VisualAppearance struct {
	MainColor       string            `json:"mainColor"`
	SecondaryColors StringList        `json:"secondaryColors"`
	Texture         string            `json:"texture"`
	Finish          string            `json:"finish"`
	Transparency    string            `json:"transparency,omitempty"`
	Patterns        StringList        `json:"patterns,omitempty"`
	ColorHexCodes   map[string]string `json:"colorHexCodes,omitempty"`
}

type ProductDetails struct {
	Category    string `json:"category"`
	Subcategory string `json:"subcategory"`
	IntendedUse string `json:"intendedUse"`
}

type VisualElements struct {
	DesignFeatures StringList `json:"designFeatures"`
}

type Part struct {
	Name        string     `json:"name"`
	Description string     `json:"description"`
	ExactColors StringList `json:"exactColors"`
	Texture     string     `json:"texture"`
	Shape       string     `json:"shape"`
	Details     StringList `json:"details"`
	Position    string     `json:"position"`
}

type ColorProfile struct {
	DominantColors     []DominantColor `json:"dominantColors"`
	ColorRelationships string          `json:"colorRelationships"`
	ColorAccuracy      string          `json:"colorAccuracy"`
}

type DominantColor struct {
	Name       string  `json:"name"`
	HexCode    string  `json:"hexCode"`
	Percentage Percent `json:"percentage"`
}

// StringList decodes from a JSON array or from a single string, which
// vision models sometimes return for one-element lists.
type StringList []string

func (l *StringList) UnmarshalJSON(data []byte) error {
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*l = list
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if s = strings.TrimSpace(s); s == "" {
			*l = StringList{}
		} else {
			*l = StringList{s}
		}
		return nil
	}

	var mixed []any
	if err := json.Unmarshal(data, &mixed); err != nil {
		return fmt.Errorf("string list: %w", err)
	}
	out := make(StringList, 0, len(mixed))
	for _, v := range mixed {
		switch v := v.(type) {
		case nil:
		case string:
			out = append(out, v)
		case float64, bool:
			out = append(out, fmt.Sprint(v))
		default:
			return fmt.Errorf("string list: unsupported element %T", v)
		}
	}
	*l = out
	return nil
}

// Percent decodes from a JSON number or from strings such as "40%".
type Percent float64

func (p *Percent) UnmarshalJSON(data []byte) error {
	var f float64
	if err := json.Unmarshal(data, &f); err == nil {
		*p = Percent(f)
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("percentage: %w", err)
	}
	s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "%"))
	if s == "" {
		*p = 0
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("percentage %q: %w", s, err)
	}
	*p = Percent(f)
	return nil
}

func (p Percent) String() string {
	return strconv.FormatFloat(float64(p), 'f', -1, 64)
}

type PreciseDetails struct {
	Edges            string     `json:"edges"`
	Highlights       string     `json:"highlights"`
	Shadows          string     `json:"shadows"`
	Reflections      string     `json:"reflections"`
	TransparentAreas StringList `json:"transparentAreas"`
}

// Normalize fills every field the vision model left out so that prompt
// builders never see empty values.
func (a ImageAnalysis) Normalize() ImageAnalysis {
	orUnknown := func(s *string) {
		if strings.TrimSpace(*s) == "" {
			*s = unknown
		}
	}
	orEmpty := func(s *StringList) {
		if *s == nil {
			*s = StringList{}
		}
	}

	orUnknown(&a.ProductType)
	orUnknown(&a.Shape)
	orUnknown(&a.Dimensions)
	orUnknown(&a.Packaging)
	if len(a.ExactColors) == 0 {
		a.ExactColors = []string{unknown}
	}
	if len(a.Materials) == 0 {
		a.Materials = []string{unknown}
	}
	orEmpty(&a.BrandingElements)
	orEmpty(&a.UniqueFeatures)
	orEmpty(&a.MarketingHighlights)
	if strings.TrimSpace(a.FullDescription) == "" {
		a.FullDescription = "No description available"
	}

	orUnknown(&a.VisualAppearance.MainColor)
	orUnknown(&a.VisualAppearance.Texture)
	orUnknown(&a.VisualAppearance.Finish)
	orEmpty(&a.VisualAppearance.SecondaryColors)

	orUnknown(&a.ProductDetails.Category)
	orUnknown(&a.ProductDetails.Subcategory)
	orUnknown(&a.ProductDetails.IntendedUse)
	orEmpty(&a.VisualElements.DesignFeatures)

	parts := make(map[string]Part, len(a.DetailedParts))
	for key, part := range a.DetailedParts {
		orEmpty(&part.ExactColors)
		orEmpty(&part.Details)
		orUnknown(&part.Texture)
		orUnknown(&part.Shape)
		orUnknown(&part.Position)
		parts[key] = part
	}
	a.DetailedParts = parts

	if a.ColorProfile.DominantColors == nil {
		a.ColorProfile.DominantColors = []DominantColor{}
	}
	orUnknown(&a.ColorProfile.ColorRelationships)
	if strings.TrimSpace(a.ColorProfile.ColorAccuracy) == "" {
		a.ColorProfile.ColorAccuracy = DefaultColorAccuracy
	}

	orUnknown(&a.PreciseDetails.Edges)
	orUnknown(&a.PreciseDetails.Highlights)
	orUnknown(&a.PreciseDetails.Shadows)
	orUnknown(&a.PreciseDetails.Reflections)
	orEmpty(&a.PreciseDetails.TransparentAreas)

	return a
}

// FallbackAnalysis stands in for the vision model when it cannot be reached.
func FallbackAnalysis(info Info) ImageAnalysis {
	highlights := make([]string, 0, len(info.Benefits))
	for _, b := range info.Benefits {
		highlights = append(highlights, fmt.Sprintf("%s: %s", b.Name, b.Description))
	}

	return ImageAnalysis{
		ProductType:         "Unknown product",
		ExactColors:         []string{unknown},
		Materials:           []string{unknown},
		Shape:               "Unknown shape",
		Dimensions:          "Unknown dimensions",
		Packaging:           "Unknown packaging",
		FullDescription:     info.ProductDescription,
		MarketingHighlights: highlights,
	}.Normalize()
}
