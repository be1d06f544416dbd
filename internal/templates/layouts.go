package templates

import (
	"fmt"
	"strings"

	"ad-creator/internal/product"
)

func headline(info product.Info, fallback string) string {
	if h := strings.TrimSpace(info.Headline); h != "" {
		return h
	}
	return fallback
}

func benefit(info product.Info, i int) product.Benefit {
	if i < len(info.Benefits) {
		return info.Benefits[i]
	}
	defaults := product.DefaultBenefits()
	return defaults[i%len(defaults)]
}

func productLine(info product.Info) string {
	return fmt.Sprintf("%s by %s", info.ProductName, info.BrandName)
}

func writeAnalysis(b *strings.Builder, in LayoutInput) {
	b.WriteString("\n")
	b.WriteString(strings.TrimSpace(in.ProductDetails) + "\n\n")
	b.WriteString(strings.TrimSpace(in.ColorInstructions) + "\n\n")
}

func writeBullets(b *strings.Builder, indent string, lines []string) {
	for _, line := range lines {
		b.WriteString(indent + "* " + line + "\n")
	}
}

func writeClosing(b *strings.Builder, in LayoutInput, style string) {
	b.WriteString("\n" + style + "\n\n")
	b.WriteString(strings.TrimSpace(in.Preservation) + "\n")
}

func showcaseLayout(in LayoutInput) string {
	info := in.Info
	var b strings.Builder
	b.WriteString("Create a professional product advertisement image with the following specifications:\n\n")
	b.WriteString(fmt.Sprintf("1. PRODUCT: Replace the white Curology bottle in the reference image with the uploaded product (%s).\n", productLine(info)))
	writeAnalysis(&b, in)
	b.WriteString("2. EXACT COLOR PRESERVATION: Maintain the EXACT color of the uploaded product. Do not lighten dark colors or darken light colors. The product should look identical in color to the uploaded image.\n\n")
	b.WriteString("3. HAND: Show a realistic human hand holding the product, matching the hand position in the reference image but naturally adjusted to hold this specific product.\n\n")
	b.WriteString("4. BACKGROUND: Use EXACTLY the same royal blue background color (#0047AB) as in the reference image. Do not change or lighten this background color.\n\n")
	b.WriteString("5. TEXT LAYOUT:\n")
	b.WriteString(fmt.Sprintf("   - Main headline (centered top): %q\n", headline(info, strings.ToUpper(info.BrandName)+" THAT WORKS")))
	b.WriteString("   - Benefits listed on the right side with small icons:\n")
	for i := 0; i < 4; i++ {
		bf := benefit(info, i)
		writeBullets(&b, "     ", []string{bf.Name + ": " + bf.Description})
	}
	if d := strings.TrimSpace(info.Disclaimer); d != "" {
		b.WriteString(fmt.Sprintf("   - Small disclaimer text at bottom: %q\n", d))
	}
	writeClosing(&b, in, "6. STYLE: Create a clean, professional advertisement with proper lighting and shadows. The final result should look like a high-quality product advertisement.")
	return b.String()
}

func beautyLayout(in LayoutInput) string {
	info := in.Info
	var b strings.Builder
	b.WriteString("Create a beauty product advertisement with the following specifications:\n\n")
	b.WriteString(fmt.Sprintf("1. PRODUCT: Place the uploaded product (%s) in the center of the image.\n", productLine(info)))
	writeAnalysis(&b, in)
	b.WriteString("2. BACKGROUND: Use a light purple background (#E6C0E9) with subtle wavy yellow lines in the corners.\n\n")
	b.WriteString("3. TEXT LAYOUT:\n")
	b.WriteString(fmt.Sprintf("   - Main headline (centered top): %q\n", headline(info, strings.ToUpper(info.ProductName))))
	b.WriteString("   - 5-star rating displayed below the headline\n")
	b.WriteString("   - Benefits displayed as rounded white pills/buttons around the product:\n")
	for i := 0; i < 3; i++ {
		writeBullets(&b, "     ", []string{benefit(info, i).Name})
	}
	b.WriteString(`   - "best seller" badge in a yellow circle at the bottom right` + "\n")
	writeClosing(&b, in, "4. STYLE: Create a clean, modern advertisement with a playful, approachable feel. The final result should look like a high-quality beauty product advertisement.")
	return b.String()
}

func healthLayout(in LayoutInput) string {
	info := in.Info
	var b strings.Builder
	b.WriteString("Create a health supplement advertisement with the following specifications:\n\n")
	b.WriteString(fmt.Sprintf("1. PRODUCT: Place the uploaded product (%s) on the right side of the image.\n", productLine(info)))
	writeAnalysis(&b, in)
	b.WriteString("2. BACKGROUND: Use a clean white background.\n\n")
	b.WriteString("3. TEXT LAYOUT:\n")
	b.WriteString(fmt.Sprintf("   - Main headline (top): %q\n", headline(info, info.ProductName+" benefits")))
	b.WriteString("   - Benefits listed on the left side with small icons:\n")
	for i := 0; i < 4; i++ {
		bf := benefit(info, i)
		writeBullets(&b, "     ", []string{bf.Name + ": " + bf.Description})
	}
	b.WriteString(`   - "Just add water and shake" text at the bottom in a black box` + "\n")
	writeClosing(&b, in, "4. STYLE: Create a clean, minimal advertisement with clear typography. The final result should look like a high-quality health supplement advertisement.")
	return b.String()
}

func wellnessLayout(in LayoutInput) string {
	info := in.Info
	var b strings.Builder
	b.WriteString("Create a wellness product advertisement with the following specifications:\n\n")
	b.WriteString(fmt.Sprintf("1. PRODUCT: Place the uploaded product (%s) in the center of the image, slightly tilted.\n", productLine(info)))
	writeAnalysis(&b, in)
	b.WriteString("2. BACKGROUND: Use a green background (#8BC34A) with a subtle gradient.\n\n")
	b.WriteString("3. TEXT LAYOUT:\n")
	b.WriteString(fmt.Sprintf("   - Main headline (top): %q\n", headline(info, "SAY NO TO "+strings.ToUpper(info.ProductName))))
	b.WriteString("   - Many benefits arranged around the product:\n")
	for i := 0; i < 8; i++ {
		writeBullets(&b, "     ", []string{benefit(info, i).Name})
	}
	b.WriteString(`   - "FREE SHIPPING + FREE STIRRING SPOON" text at the bottom in a dark green box` + "\n")
	writeClosing(&b, in, "4. STYLE: Create a vibrant, benefit-focused advertisement. The final result should look like a high-quality wellness product advertisement.")
	return b.String()
}

func nucaoLayout(in LayoutInput) string {
	info := in.Info
	var b strings.Builder
	b.WriteString("Create a chocolate bar advertisement with the following specifications:\n\n")
	b.WriteString(fmt.Sprintf("1. PRODUCT: Place the uploaded product (%s) in the center of the image. This is a chocolate bar product.\n", productLine(info)))
	writeAnalysis(&b, in)
	b.WriteString("2. BACKGROUND: Use a vibrant orange background (#F9A826).\n\n")
	b.WriteString("3. TEXT LAYOUT:\n")
	b.WriteString(fmt.Sprintf("   - Main headline (top): %q\n", headline(info, "Now in Sainsbury's Springfield.")))
	b.WriteString("   - Benefits with arrows pointing to the product:\n")
	writeBullets(&b, "     ", []string{
		`"Home compostable wrapper." (top-left)`,
		`"65% less sugar." (top-right)`,
		`"You buy a bar. We plant a tree." (bottom-left)`,
	})
	b.WriteString(`   - "Try it now!" call-to-action in a circular badge (bottom-right)` + "\n")
	writeClosing(&b, in, "4. STYLE: Create a vibrant, energetic advertisement that highlights the eco-friendly aspects of the product. The final result should look like a high-quality chocolate bar advertisement.")
	return b.String()
}

func agemateLayout(in LayoutInput) string {
	info := in.Info
	var b strings.Builder
	b.WriteString("Create a longevity supplement advertisement with the following specifications:\n\n")
	b.WriteString(fmt.Sprintf("1. PRODUCT: Place the uploaded product (%s) being held by a hand in the center of the image. This is a health/longevity supplement product.\n", productLine(info)))
	writeAnalysis(&b, in)
	b.WriteString("2. BACKGROUND: Use a light gray gradient background (#EDF2F7 to #E2E8F0).\n\n")
	b.WriteString("3. TEXT LAYOUT:\n")
	b.WriteString(fmt.Sprintf("   - Main headline (top): %q with the word \"you\" highlighted in purple (#6B46C1)\n", headline(info, "Feel like you again.")))
	writeClosing(&b, in, "4. STYLE: Create a minimal, elegant advertisement that focuses on the premium nature of the product. The final result should look like a high-quality supplement advertisement.")
	return b.String()
}

func hydrationLayout(in LayoutInput) string {
	info := in.Info
	var b strings.Builder
	b.WriteString("Create a hydration product comparison advertisement with the following specifications:\n\n")
	b.WriteString("1. LAYOUT: Split the image into two sections:\n")
	b.WriteString("   - Top section: Light mint green background (#DCFCE7) with Waterboy Athletic Recovery product\n")
	b.WriteString("   - Bottom section: Light gray background (#F5F5F5) with Liquid IV Hydration Multiplier product\n")
	writeAnalysis(&b, in)
	b.WriteString("2. TEXT LAYOUT:\n")
	b.WriteString(fmt.Sprintf("   - Main headline (top): %q\n", headline(info, "GET THE MOIST OUT YOUR WORKOUT WITH WATERBOY")))
	b.WriteString("   - Top section comparison data:\n")
	writeBullets(&b, "     ", []string{
		`"PER STICK OF WATERBOY ATHLETIC RECOVERY:"`,
		`"ELECTROLYTES: 1,899 MG"`,
		`"SUGAR: 0 GRAMS"`,
		`"CALORIES: 10 CAL"`,
		`"VITAMIN B-12: 1,000% DAILY VALUE"`,
		`"VITAMIN C: 100% DAILY VALUE"`,
		`"L-GLUTAMINE: ✓"`,
	})
	b.WriteString("   - Bottom section comparison data:\n")
	writeBullets(&b, "     ", []string{
		`"PER STICK OF LIQUID IV HYDRATION MULTIPLIER:"`,
		`"ELECTROLYTES: 870 MG"`,
		`"SUGAR: 11 GRAMS"`,
		`"CALORIES: 45 CAL"`,
		`"VITAMIN B-12: 280% DAILY VALUE"`,
		`"VITAMIN C: 80% DAILY VALUE"`,
		`"L-GLUTAMINE: ✗"`,
	})
	writeClosing(&b, in, "3. STYLE: Create a clean, comparative advertisement that clearly shows the benefits of Waterboy over Liquid IV. The final result should look like a high-quality product comparison.")
	return b.String()
}

func mushroomLayout(in LayoutInput) string {
	info := in.Info
	var b strings.Builder
	b.WriteString("Create a mushroom coffee infographic with the following specifications:\n\n")
	b.WriteString("1. CENTRAL ELEMENT: Place a cup of mushroom coffee in the center of the image, with the uploaded product visible next to it.\n")
	writeAnalysis(&b, in)
	b.WriteString("2. BACKGROUND: Use a clean white background.\n\n")
	b.WriteString("3. TEXT LAYOUT:\n")
	b.WriteString(`   - Brand name at top: "@ryzesuperfoods"` + "\n")
	b.WriteString(fmt.Sprintf("   - Main headline: %q\n", headline(info, "WHY YOU NEED MUSHROOM COFFEE")))
	b.WriteString("   - Benefits arranged around the coffee cup with icons:\n")
	writeBullets(&b, "     ", []string{
		`"Low acidity" (top-left, with person giving thumbs up)`,
		`"No jitters" (top-right, with person raising hands)`,
		`"Less caffeine" (bottom-left, with person making OK sign)`,
		`"No brain fog" (bottom-right, with person having lightbulb thought)`,
		`"Balanced digestion" (bottom-center, with person making OK sign)`,
	})
	b.WriteString(`   - "RYZE" logo at the bottom` + "\n")
	writeClosing(&b, in, "4. STYLE: Create a clean, informative infographic that clearly explains the benefits of mushroom coffee. The final result should look like a high-quality social media post.")
	return b.String()
}
