package handlers

import (
	"fmt"
	"net/url"
	"strings"

	"ad-creator/internal/imagegen"
)

// extractURL returns the first product page link in text. Bare hosts with
// a "www." prefix are accepted and given an https scheme.
func extractURL(text string) string {
	for _, field := range strings.Fields(text) {
		candidate := strings.Trim(field, "<>()[]{}\"'.,;!")
		lower := strings.ToLower(candidate)

		switch {
		case strings.HasPrefix(lower, "http://"), strings.HasPrefix(lower, "https://"):
		case strings.HasPrefix(lower, "www."):
			candidate = "https://" + candidate
		default:
			continue
		}

		u, err := url.Parse(candidate)
		if err != nil || u.Host == "" || !strings.Contains(u.Host, ".") {
			continue
		}
		return candidate
	}
	return ""
}

func describeSize(s imagegen.Size) string {
	switch s {
	case imagegen.SizeLandscape:
		return "landscape " + string(s)
	case imagegen.SizePortrait:
		return "portrait " + string(s)
	default:
		return "square " + string(imagegen.SizeSquare)
	}
}

// shortID is what /history shows and what /delete accepts.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func adCaption(productName, brandName, templateTitle string, usedDefaults bool) string {
	var b strings.Builder
	name := strings.TrimSpace(productName)
	if brand := strings.TrimSpace(brandName); brand != "" {
		name = fmt.Sprintf("%s by %s", name, brand)
	}
	b.WriteString(name)
	if templateTitle != "" {
		b.WriteString("\nTemplate: ")
		b.WriteString(templateTitle)
	}
	if usedDefaults {
		b.WriteString("\nThe page could not be read, so default copy was used.")
	}
	return b.String()
}
