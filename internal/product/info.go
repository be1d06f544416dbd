package product

import (
	"encoding/json"
	"strings"
)

type Benefit struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// UnmarshalJSON accepts either {"name","description"} or a bare string.
func (b *Benefit) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*b = Benefit{Name: strings.TrimSpace(s)}
		return nil
	}

	type plain Benefit
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*b = Benefit(p)
	return nil
}

type Info struct {
	ProductName           string    `json:"productName"`
	ProductDescription    string    `json:"productDescription"`
	BrandName             string    `json:"brandName"`
	Benefits              []Benefit `json:"benefits"`
	Disclaimer            string    `json:"disclaimer,omitempty"`
	BackgroundColor       string    `json:"backgroundColor,omitempty"`
	TextColor             string    `json:"textColor,omitempty"`
	Headline              string    `json:"headline,omitempty"`
	ProductImageAnalysis  string    `json:"productImageAnalysis,omitempty"`
	TemplateID            string    `json:"templateId,omitempty"`
	PreserveUploadedImage bool      `json:"preserveUploadedImage"`
}

func DefaultBenefits() []Benefit {
	return []Benefit{
		{Name: "Hyaluronic Acid", Description: "Deeply hydrates and plumps skin"},
		{Name: "Vitamin C", Description: "Brightens and evens skin tone"},
		{Name: "Retinol", Description: "Reduces fine lines and wrinkles"},
		{Name: "Niacinamide", Description: "Minimizes pores and improves texture"},
	}
}

// DefaultInfo is the degraded result used when every extraction strategy fails.
func DefaultInfo() Info {
	return Info{
		ProductName:           "Advanced Skincare Solution",
		ProductDescription:    "Premium skincare product for radiant, healthy skin",
		BrandName:             "BeautyEssentials",
		Benefits:              DefaultBenefits(),
		Disclaimer:            "*Results may vary. Consult with a dermatologist.",
		BackgroundColor:       "#0047AB",
		TextColor:             "#FFFFFF",
		Headline:              "TRANSFORM YOUR SKIN WITH PROVEN INGREDIENTS",
		PreserveUploadedImage: true,
	}
}

// PadBenefits extends benefits cyclically from the default set until it holds n entries.
func PadBenefits(benefits []Benefit, n int) []Benefit {
	out := make([]Benefit, len(benefits), max(len(benefits), n))
	copy(out, benefits)

	defaults := DefaultBenefits()
	for len(out) < n {
		out = append(out, defaults[len(out)%len(defaults)])
	}
	return out
}

func (i Info) Clone() Info {
	out := i
	out.Benefits = append([]Benefit(nil), i.Benefits...)
	return out
}
