package webfetch

import "strings"

var strippedBlocks = []string{"script", "style", "noscript", "svg", "nav", "footer", "header"}

// ExtractText turns page HTML into whitespace-collapsed visible text.
// It is not a parser; it is good enough to give a model the page copy.
func ExtractText(html string) string {
	result := html
	for _, tag := range strippedBlocks {
		for {
			lower := strings.ToLower(result)
			open := strings.Index(lower, "<"+tag)
			if open == -1 {
				break
			}
			closeTag := "</" + tag + ">"
			end := strings.Index(lower[open:], closeTag)
			if end == -1 {
				result = result[:open]
				break
			}
			result = result[:open] + " " + result[open+end+len(closeTag):]
		}
	}

	var text strings.Builder
	inTag := false
	for _, ch := range result {
		switch {
		case ch == '<':
			inTag = true
		case ch == '>':
			inTag = false
			text.WriteRune(' ')
		case !inTag:
			text.WriteRune(ch)
		}
	}

	var lines []string
	for _, line := range strings.Split(text.String(), "\n") {
		if trimmed := strings.Join(strings.Fields(line), " "); trimmed != "" {
			lines = append(lines, trimmed)
		}
	}
	return decodeEntities(strings.Join(lines, "\n"))
}

var entities = strings.NewReplacer(
	"&amp;", "&",
	"&nbsp;", " ",
	"&quot;", `"`,
	"&#39;", "'",
	"&apos;", "'",
	"&lt;", "<",
	"&gt;", ">",
)

func decodeEntities(s string) string {
	return entities.Replace(s)
}

// Excerpt trims text to at most n bytes on a rune boundary.
func Excerpt(text string, n int) string {
	if n <= 0 || len(text) <= n {
		return text
	}
	cut := n
	for cut > 0 && !isRuneStart(text[cut]) {
		cut--
	}
	return text[:cut] + "…"
}

func isRuneStart(b byte) bool {
	return b&0xC0 != 0x80
}
