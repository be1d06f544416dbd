package templates

const blobHost = "https://hebbkx1anhila5yf.public.blob.vercel-storage.com/"

func placed(position string, scale float64, rotation int) *Placement {
	return &Placement{
		Position:                position,
		Scale:                   scale,
		Rotation:                rotation,
		PreserveOriginalImage:   true,
		UseUploadedProductImage: true,
	}
}

func builtins() []Template {
	agemate := placed("center", 0.7, 0)
	agemate.Hand = true

	return []Template{
		{
			ID:               DefaultID,
			Title:            "Product Showcase",
			ImageSrc:         blobHost + "1-Wu3DAYco1jsT3Qjz9Bidxj761bkJae.png",
			Description:      "Highlight your product with benefits",
			BackgroundColor:  "#0047AB",
			TextColor:        "#FFFFFF",
			ReferenceImage:   blobHost + "1-Wu3DAYco1jsT3Qjz9Bidxj761bkJae.png",
			Category:         "Product",
			Placement:        placed("center", 0.7, 0),
			RequiredBenefits: 4,
			Copy: Copy{
				Style: "a product showcase ad with a royal blue background",
				Points: []string{
					"The headline should be in all caps and focus on the brand and effectiveness",
					"Include 4 key benefits with short descriptions",
					"Consider adding a disclaimer if relevant",
					"Focus on the product's main selling points and unique features",
				},
			},
			Layout: showcaseLayout,
		},
		{
			ID:               "beauty-products",
			Title:            "Beauty Products",
			ImageSrc:         "/images/template-beauty.png",
			Description:      "Perfect for hair and skincare",
			BackgroundColor:  "#E6C0E9",
			TextColor:        "#000000",
			ReferenceImage:   "/images/template-beauty.png",
			Category:         "Beauty",
			Placement:        placed("center", 0.7, 0),
			RequiredBenefits: 4,
			Copy: Copy{
				Style: "a beauty product ad with a pastel background",
				Points: []string{
					"The headline should be catchy and focus on the product's main benefit",
					"Include 3 key benefits that would look good in rounded boxes",
					`Consider adding a "best seller" or similar badge text`,
					"Focus on skin benefits, ingredients, or visible results",
				},
			},
			Layout: beautyLayout,
		},
		{
			ID:               "health-supplements",
			Title:            "Health Supplements",
			ImageSrc:         "/images/template-health.png",
			Description:      "Showcase health benefits",
			BackgroundColor:  "#FFFFFF",
			TextColor:        "#000000",
			ReferenceImage:   "/images/template-health.png",
			Category:         "Health",
			Placement:        placed("right", 0.6, 0),
			RequiredBenefits: 4,
			Copy: Copy{
				Style: "a health supplement ad with a clean, minimal style",
				Points: []string{
					"The headline should mention health benefits and possibly price per serving",
					"Include 4 key benefits with potential icons (Calcium, Vitamin C, Zinc, Vitamin D, etc.)",
					`Consider adding a call-to-action like "Just add water and shake"`,
					"Focus on nutritional benefits and health improvements",
				},
			},
			Layout: healthLayout,
		},
		{
			ID:               "wellness-products",
			Title:            "Wellness Products",
			ImageSrc:         "/images/template-wellness.png",
			Description:      "Highlight natural ingredients",
			BackgroundColor:  "#8BC34A",
			TextColor:        "#333333",
			ReferenceImage:   "/images/template-wellness.png",
			Category:         "Wellness",
			Placement:        placed("center", 0.7, 10),
			RequiredBenefits: 8,
			Copy: Copy{
				Style: "a wellness product ad with a green background and many benefits listed",
				Points: []string{
					`The headline should be bold and direct (e.g., "SAY NO TO BLOATING")`,
					"Include 8 different benefits positioned around the product",
					`Consider adding a call-to-action like "FREE SHIPPING + FREE STIRRING SPOON"`,
					"Focus on natural ingredients and holistic wellness benefits",
				},
			},
			Layout: wellnessLayout,
		},
		{
			ID:               "nucao-chocolate",
			Title:            "Nu+cao Chocolate",
			ImageSrc:         blobHost + "1-OJ4kVNC4BVGZFm7FcGlrj51ZGSanSy.png",
			Description:      "Eco-friendly chocolate bars",
			BackgroundColor:  "#F9A826",
			TextColor:        "#FFFFFF",
			ReferenceImage:   blobHost + "1-OJ4kVNC4BVGZFm7FcGlrj51ZGSanSy.png",
			Category:         "Food",
			Placement:        placed("center", 0.8, 0),
			RequiredBenefits: 4,
			Focus: Focus{
				Subject: "a chocolate product",
				Points: []string{
					"Exact packaging color and design",
					"Any visible ingredients (nuts, cocoa, etc.)",
					"Eco-friendly packaging features",
					"Nutritional claims visible on packaging",
				},
			},
			Copy: Copy{
				Style: "a chocolate bar ad with an orange background",
				Points: []string{
					`The headline should mention availability (e.g., "Now in Sainsbury's")`,
					`Include 3 key benefits like "Home compostable wrapper", "65% less sugar", etc.`,
					`Consider adding a call-to-action like "Try it now!"`,
					"Focus on eco-friendly aspects and sustainability features",
				},
			},
			Layout: nucaoLayout,
		},
		{
			ID:               "agemate-longevity",
			Title:            "AgeMate Longevity",
			ImageSrc:         blobHost + "2-MJOjI8SA2s5rsCSKxjdXke8b27jx0y.png",
			Description:      "Daily longevity supplements",
			BackgroundColor:  "#6B46C1",
			TextColor:        "#FFFFFF",
			ReferenceImage:   blobHost + "2-MJOjI8SA2s5rsCSKxjdXke8b27jx0y.png",
			Category:         "Health",
			Placement:        agemate,
			RequiredBenefits: 4,
			Focus: Focus{
				Subject: "a health/longevity supplement",
				Points: []string{
					"Container type (jar, bottle, etc.)",
					"Product form (powder, capsules, etc.)",
					"Premium/luxury aspects of packaging",
					"Any visible health claims or ingredients",
				},
			},
			Copy: Copy{
				Style: "a longevity supplement ad with a light gradient background",
				Points: []string{
					`The headline should be simple and impactful (e.g., "Feel like you again")`,
					"Focus on the product's premium appearance and health benefits",
					"No need for multiple benefit points, just a clean presentation",
					"Emphasize longevity, anti-aging, or wellness aspects",
				},
			},
			Layout: agemateLayout,
		},
		{
			ID:               "hydration-products",
			Title:            "Hydration Products",
			ImageSrc:         blobHost + "3-RoGyehSjEJp4YujqB3mXPGAwyHKtTl.png",
			Description:      "Athletic recovery drinks",
			BackgroundColor:  "#4ECDC4",
			TextColor:        "#333333",
			ReferenceImage:   blobHost + "3-RoGyehSjEJp4YujqB3mXPGAwyHKtTl.png",
			Category:         "Fitness",
			Placement:        placed("top-section", 0.5, 0),
			RequiredBenefits: 4,
			Focus: Focus{
				Subject: "a hydration/sports product",
				Points: []string{
					"Product format (packet, bottle, stick, etc.)",
					"Key electrolyte or hydration claims",
					"Athletic/sports positioning elements",
					"Any visible nutritional information",
				},
			},
			Copy: Copy{
				Style: "a hydration product comparison ad",
				Points: []string{
					"The headline should be bold and direct about hydration",
					"Include comparison points between two products (Waterboy vs. Liquid IV)",
					"Focus on electrolytes, sugar content, calories, and vitamins",
					"Highlight athletic performance and recovery benefits",
				},
			},
			Layout: hydrationLayout,
		},
		{
			ID:               "mushroom-coffee",
			Title:            "Mushroom Coffee",
			ImageSrc:         blobHost + "4-lApDDPtxXfCkiZq1N3WGH7u9F9HAZu.png",
			Description:      "Healthier coffee alternative",
			BackgroundColor:  "#FFFFFF",
			TextColor:        "#000000",
			ReferenceImage:   blobHost + "4-lApDDPtxXfCkiZq1N3WGH7u9F9HAZu.png",
			Category:         "Wellness",
			Placement:        placed("right-center", 0.6, 5),
			RequiredBenefits: 8,
			Focus: Focus{
				Subject: "a coffee alternative or mushroom coffee",
				Points: []string{
					"Product format (ground coffee, instant, etc.)",
					"Mushroom varieties visible on packaging",
					"Health benefits mentioned on packaging",
					"Brewing instructions if visible",
				},
			},
			Copy: Copy{
				Style: "a mushroom coffee infographic",
				Points: []string{
					"The headline should explain why someone needs mushroom coffee",
					`Include 5 benefits like "Low acidity", "No jitters", "Less caffeine", etc.`,
					"Arrange benefits around a central coffee cup image",
					"Focus on health benefits compared to regular coffee",
				},
			},
			Layout: mushroomLayout,
		},
	}
}
