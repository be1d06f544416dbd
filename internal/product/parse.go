package product

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
)

var ErrInvalidInfo = errors.New("invalid product info structure")

var infoSchema = openapi3.NewObjectSchema().
	WithProperties(map[string]*openapi3.Schema{
		"productName": openapi3.NewStringSchema(),
		"brandName":   openapi3.NewStringSchema(),
		"benefits":    openapi3.NewArraySchema(),
	}).
	WithRequired([]string{"productName", "brandName", "benefits"})

// ExtractJSON locates a JSON object in a model response. It prefers a
// ```json fence, then any fence, then the outermost brace span, and falls
// back to the trimmed input.
func ExtractJSON(text string) string {
	if strings.TrimSpace(text) == "" {
		return "{}"
	}

	if start := strings.Index(text, "```json"); start >= 0 {
		start += len("```json")
		if end := strings.Index(text[start:], "```"); end > 0 {
			return strings.TrimSpace(text[start : start+end])
		}
	}

	if start := strings.Index(text, "```"); start >= 0 {
		start += len("```")
		if end := strings.Index(text[start:], "```"); end > 0 {
			return dropFenceLanguage(strings.TrimSpace(text[start : start+end]))
		}
	}

	first := strings.Index(text, "{")
	last := strings.LastIndex(text, "}")
	if first >= 0 && last > first {
		return text[first : last+1]
	}

	return strings.TrimSpace(text)
}

// ParseInfo extracts, validates and decodes a ProductInfo object from raw model text.
func ParseInfo(text string) (Info, error) {
	raw := ExtractJSON(text)

	var doc any
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return Info{}, fmt.Errorf("parse json: %w", err)
	}
	if err := infoSchema.VisitJSON(doc); err != nil {
		return Info{}, fmt.Errorf("%w: %v", ErrInvalidInfo, err)
	}

	var info Info
	if err := json.Unmarshal([]byte(raw), &info); err != nil {
		return Info{}, fmt.Errorf("decode product info: %w", err)
	}
	return info, nil
}

func dropFenceLanguage(block string) string {
	if strings.HasPrefix(block, "{") || strings.HasPrefix(block, "[") {
		return block
	}
	if nl := strings.IndexByte(block, '\n'); nl > 0 && !strings.ContainsAny(block[:nl], " {") {
		return strings.TrimSpace(block[nl+1:])
	}
	return block
}
