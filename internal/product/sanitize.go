package product

import (
	"regexp"
	"strings"
)

// Longest first so "Amazon's Choice" is not reduced to "'s Choice".
var marketplacePhrases = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bamazon['’]s\s+choice\b`),
	regexp.MustCompile(`(?i)\bamazon\s+basics\b`),
	regexp.MustCompile(`(?i)\bamazon\s+brand\b`),
	regexp.MustCompile(`(?i)\bamazon\b`),
}

var (
	byMarketplace = regexp.MustCompile(`(?i)\bby\s+amazon\b`)
	byClause      = regexp.MustCompile(`(?i)\bby\b`)
)

// IsMarketplaceBrand reports whether brand genuinely is the marketplace itself.
func IsMarketplaceBrand(brand string) bool {
	b := strings.TrimSpace(brand)
	if strings.EqualFold(b, "Amazon") || strings.EqualFold(b, "Amazon Basics") {
		return true
	}
	return byMarketplace.MatchString(b)
}

func containsMarketplacePhrase(s string) bool {
	for _, re := range marketplacePhrases {
		if re.MatchString(s) {
			return true
		}
	}
	return false
}

func stripMarketplacePhrases(s string) string {
	for _, re := range marketplacePhrases {
		s = re.ReplaceAllString(s, "")
	}
	return tidy(s)
}

func tidy(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	return strings.Trim(s, " -–—|:,;/")
}

// Sanitize removes marketplace labels that leaked into the product copy and
// forces PreserveUploadedImage. It is a no-op on the copy when the brand is
// the marketplace itself.
func Sanitize(info Info) Info {
	out := info.Clone()
	out.PreserveUploadedImage = true

	if IsMarketplaceBrand(out.BrandName) {
		return out
	}

	if containsMarketplacePhrase(out.ProductName) {
		out.ProductName = stripMarketplacePhrases(out.ProductName)
	}
	if out.Headline != "" && containsMarketplacePhrase(out.Headline) {
		out.Headline = stripMarketplacePhrases(out.Headline)
	}

	if containsMarketplacePhrase(out.BrandName) {
		brand := out.BrandName
		if loc := byClause.FindStringIndex(brand); loc != nil {
			brand = brand[loc[1]:]
		}
		brand = stripMarketplacePhrases(brand)
		if brand == "" {
			brand = "Brand"
		}
		out.BrandName = brand
	}

	return out
}
