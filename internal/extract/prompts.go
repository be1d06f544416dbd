package extract

import (
	"fmt"
	"strings"

	"ad-creator/internal/imagegen"
	"ad-creator/internal/llm"
	"ad-creator/internal/templates"
)

const productNameRules = `CRITICAL INSTRUCTIONS FOR PRODUCT NAME EXTRACTION:
1. Extract the EXACT product name from the page title or product description
2. DO NOT include phrases like "Amazon brand", "Amazon's Choice", or "Amazon Basics" in the product name UNLESS the product is actually made by Amazon
3. If the URL is from Amazon or another marketplace, look for the actual manufacturer's brand name
4. Remove any marketplace-specific prefixes or suffixes from the product name
5. The product name should be concise, accurate, and reflect what the product actually is`

const nameGuidelines = `PRODUCT NAME EXTRACTION GUIDELINES:
1. For Amazon URLs: Look for the product title in the page, ignoring phrases like "Amazon's Choice" or "Amazon brand"
2. For other e-commerce sites: Extract the main product title, ignoring site-specific labels
3. The product name should be the actual name that appears on the product packaging
4. Remove any promotional text or badges from the product name`

// PrimaryPrompt is a single prompt carrying the URL, page text, image
// description and template copy guidance.
func PrimaryPrompt(in PromptInput) llm.Request {
	var b strings.Builder
	fmt.Fprintf(&b, "Extract product information from this URL: %s\n", in.URL)

	if in.PageText != "" {
		b.WriteString("\nThe page's visible text is:\n\"\"\"\n" + in.PageText + "\n\"\"\"\n")
	}
	if in.ImageAnalysis != "" {
		b.WriteString("\nI've also analyzed the product image and found: " + in.ImageAnalysis + "\n\nUse this information to enhance your extraction.\n")
	}

	b.WriteString("\n" + copyGuidance(in.Template) + "\n")
	b.WriteString(productNameRules + "\n\n")

	b.WriteString("Return a JSON object with these fields:\n")
	b.WriteString("- productName: The name of the product (keep it concise, extract the EXACT product name without marketplace phrases)\n")
	b.WriteString("- productDescription: A brief description of the product (under 15 words)\n")
	b.WriteString("- brandName: The name of the brand (the actual manufacturer, not the marketplace)\n")
	fmt.Fprintf(&b, "- benefits: An array of %d objects, each with \"name\" and \"description\" for key ingredients or benefits\n", in.RequiredBenefits)
	b.WriteString("  * Keep benefit names very short (1-2 words)\n")
	b.WriteString("  * Keep benefit descriptions very concise (under 6 words each)\n")
	b.WriteString("- disclaimer: Any disclaimer text (optional, keep it under 10 words)\n")
	b.WriteString("- headline: A catchy headline for an advertisement (keep it under 30 characters)\n")
	b.WriteString("- preserveUploadedImage: true (this is required to ensure the original product image is used)\n\n")

	if g := aspectGuidance(in.Size); g != "" {
		b.WriteString(g + "\n\n")
	}

	b.WriteString("If you can't find specific information, use reasonable defaults based on the product image analysis.\n\n")
	b.WriteString("IMPORTANT: Return ONLY the raw JSON with no markdown formatting, code blocks, or additional text.\n")
	b.WriteString("All text must be concise to ensure it fits properly in the advertisement without being cut off.\n\n")
	b.WriteString("CRITICAL: The actual product image will be provided separately, so focus on extracting accurate text information only.\n\n")
	b.WriteString(nameGuidelines)

	return llm.Request{Prompt: b.String(), Temperature: 0.2}
}

// SecondaryPrompt is an independent system and user prompt pair with the
// same JSON field contract as PrimaryPrompt.
func SecondaryPrompt(in PromptInput) llm.Request {
	title := in.Template.Title

	var sys strings.Builder
	sys.WriteString("You are a product information extraction assistant. Your task is to extract product details from a website URL.\n")
	sys.WriteString("You will return ONLY a valid JSON object with no markdown formatting or additional text.\n\n")
	fmt.Fprintf(&sys, "The extracted information will be used to create an advertisement in the %q style.\n\n", title)
	sys.WriteString("IMPORTANT: Your extracted information will ONLY be used for text elements in the ad. The actual product image will be provided separately, so focus on extracting accurate text information only.\n\n")
	sys.WriteString(productNameRules)

	var user strings.Builder
	fmt.Fprintf(&user, "Extract product information from this URL: %s\n", in.URL)
	if in.PageText != "" {
		user.WriteString("\nPage text:\n\"\"\"\n" + in.PageText + "\n\"\"\"\n")
	}
	if in.ImageAnalysis != "" {
		user.WriteString("\nProduct photo description: " + in.ImageAnalysis + "\n")
	}
	user.WriteString("\n" + copyGuidance(in.Template) + "\n")
	user.WriteString("Return a JSON object with these fields:\n")
	user.WriteString("- productName: The name of the product (extract the EXACT product name, not including marketplace phrases like \"Amazon's Choice\")\n")
	user.WriteString("- productDescription: A brief description of the product\n")
	user.WriteString("- brandName: The name of the brand (the actual manufacturer, not the marketplace)\n")
	fmt.Fprintf(&user, "- benefits: An array of %d objects, each with \"name\" and \"description\" for key ingredients or benefits\n", in.RequiredBenefits)
	user.WriteString("- disclaimer: Any disclaimer text (optional)\n")
	user.WriteString("- headline: A catchy headline for an advertisement\n")
	user.WriteString("- preserveUploadedImage: true (this is required to ensure the original product image is used)\n\n")
	fmt.Fprintf(&user, "If you can't find specific information, use reasonable defaults that would work well with the %q template.\n\n", title)
	user.WriteString("IMPORTANT: Return ONLY the raw JSON with no markdown formatting, code blocks, or additional text.\n\n")
	user.WriteString(nameGuidelines)

	return llm.Request{System: sys.String(), Prompt: user.String(), Temperature: 0.2, JSON: true}
}

func copyGuidance(tpl templates.Template) string {
	var b strings.Builder
	b.WriteString("This is for " + tpl.Copy.Style + ".\n")
	for _, p := range tpl.Copy.Points {
		b.WriteString("- " + p + "\n")
	}
	return b.String()
}

func aspectGuidance(size imagegen.Size) string {
	switch size {
	case imagegen.SizeSquare:
		return "The text should be optimized for a square (1:1) aspect ratio."
	case imagegen.SizeLandscape:
		return "The text should be optimized for a landscape (16:9) aspect ratio with more horizontal space."
	case imagegen.SizePortrait:
		return "The text should be optimized for a portrait (9:16) aspect ratio with more vertical space."
	}
	return ""
}
