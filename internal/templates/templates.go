package templates

import (
	"embed"
	"encoding/json"
	"fmt"
	"strings"

	"ad-creator/internal/product"
)

const DefaultID = "product-showcase"

//go:embed configs/*.json
var configFS embed.FS

type Placement struct {
	Position                string  `json:"position"`
	Scale                   float64 `json:"scale"`
	Rotation                int     `json:"rotation"`
	Hand                    bool    `json:"hand,omitempty"`
	PreserveOriginalImage   bool    `json:"preserveOriginalImage"`
	UseUploadedProductImage bool    `json:"useUploadedProductImage"`
}

// Focus steers the free-text image analysis toward template-relevant details.
type Focus struct {
	Subject string
	Points  []string
}

// Copy steers the extraction prompt toward the copy the layout needs.
type Copy struct {
	Style  string
	Points []string
}

type LayoutInput struct {
	Info              product.Info
	ProductDetails    string
	ColorInstructions string
	Preservation      string
}

// LayoutFunc renders the template-specific part of the compositing prompt.
type LayoutFunc func(LayoutInput) string

type Template struct {
	ID              string         `json:"id"`
	Title           string         `json:"title"`
	ImageSrc        string         `json:"imageSrc"`
	Description     string         `json:"description"`
	BackgroundColor string         `json:"backgroundColor"`
	TextColor       string         `json:"textColor"`
	ReferenceImage  string         `json:"referenceImage"`
	Category        string         `json:"category,omitempty"`
	Config          map[string]any `json:"config"`

	Placement        *Placement `json:"-"`
	RequiredBenefits int        `json:"requiredBenefits"`
	Focus            Focus      `json:"-"`
	Copy             Copy       `json:"-"`
	Layout           LayoutFunc `json:"-"`
}

var (
	registry = mustLoad(builtins())
	index    = indexByID(registry)
)

func mustLoad(list []Template) []Template {
	for i := range list {
		raw, err := configFS.ReadFile("configs/" + list[i].ID + ".json")
		if err != nil {
			panic(fmt.Sprintf("templates: config for %s: %v", list[i].ID, err))
		}
		var cfg map[string]any
		if err := json.Unmarshal(raw, &cfg); err != nil {
			panic(fmt.Sprintf("templates: decode config for %s: %v", list[i].ID, err))
		}
		list[i].Config = cfg
	}
	return list
}

func indexByID(list []Template) map[string]int {
	out := make(map[string]int, len(list))
	for i, t := range list {
		if _, dup := out[t.ID]; dup {
			panic("templates: duplicate id " + t.ID)
		}
		out[t.ID] = i
	}
	return out
}

// Lookup returns the registered template with the given id.
func Lookup(id string) (Template, bool) {
	i, ok := index[strings.TrimSpace(id)]
	if !ok {
		return Template{}, false
	}
	return registry[i].clone(), true
}

// Resolve never fails: unknown and empty ids map to the default template.
func Resolve(id string) Template {
	if t, ok := Lookup(id); ok {
		return t
	}
	return Default()
}

func Default() Template {
	return registry[index[DefaultID]].clone()
}

func All() []Template {
	out := make([]Template, len(registry))
	for i, t := range registry {
		out[i] = t.clone()
	}
	return out
}

// RequiredBenefits is the minimum benefit count the layout for id consumes.
func RequiredBenefits(id string) int {
	if t, ok := Lookup(id); ok && t.RequiredBenefits > 0 {
		return t.RequiredBenefits
	}
	return 4
}

func IsRemote(ref string) bool {
	ref = strings.ToLower(strings.TrimSpace(ref))
	return strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://")
}

func (t Template) clone() Template {
	out := t
	out.Config = CloneConfig(t.Config)
	if t.Placement != nil {
		p := *t.Placement
		out.Placement = &p
	}
	out.Focus.Points = append([]string(nil), t.Focus.Points...)
	out.Copy.Points = append([]string(nil), t.Copy.Points...)
	return out
}

// CloneConfig deep-copies a decoded JSON object.
func CloneConfig(cfg map[string]any) map[string]any {
	if cfg == nil {
		return map[string]any{}
	}
	return cloneValue(cfg).(map[string]any)
}

func cloneValue(v any) any {
	switch x := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, val := range x {
			out[k] = cloneValue(val)
		}
		return out
	case []any:
		out := make([]any, len(x))
		for i, val := range x {
			out[i] = cloneValue(val)
		}
		return out
	default:
		return v
	}
}
