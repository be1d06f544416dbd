package templates

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ad-creator/internal/product"
)

func TestRegistryIDsUniqueAndComplete(t *testing.T) {
	all := All()
	require.Len(t, all, 8)

	seen := map[string]bool{}
	for _, tpl := range all {
		assert.False(t, seen[tpl.ID], "duplicate %s", tpl.ID)
		seen[tpl.ID] = true

		assert.NotEmpty(t, tpl.Title)
		assert.NotEmpty(t, tpl.ReferenceImage)
		assert.NotNil(t, tpl.Layout, tpl.ID)
		require.NotNil(t, tpl.Placement, tpl.ID)
		assert.True(t, tpl.Placement.PreserveOriginalImage)
		assert.True(t, tpl.Placement.UseUploadedProductImage)
		assert.Equal(t, tpl.ID, tpl.Config["templateType"])
		assert.Equal(t, tpl.BackgroundColor, tpl.Config["backgroundColor"])
		assert.Equal(t, tpl.TextColor, tpl.Config["textColor"])
	}
	assert.Equal(t, DefaultID, all[0].ID)
}

func TestResolveFallsBackToDefault(t *testing.T) {
	for _, id := range []string{"", "nope", "PRODUCT-SHOWCASE", "beauty"} {
		tpl := Resolve(id)
		assert.Equal(t, DefaultID, tpl.ID, id)
		assert.Equal(t, DefaultID, Resolve(tpl.ID).ID)
	}

	tpl := Resolve(" health-supplements ")
	assert.Equal(t, "health-supplements", tpl.ID)
	assert.Equal(t, "#FFFFFF", tpl.BackgroundColor)
	assert.Equal(t, "#000000", tpl.TextColor)
}

func TestRequiredBenefits(t *testing.T) {
	assert.Equal(t, 8, RequiredBenefits("wellness-products"))
	assert.Equal(t, 8, RequiredBenefits("mushroom-coffee"))
	assert.Equal(t, 4, RequiredBenefits("health-supplements"))
	assert.Equal(t, 4, RequiredBenefits(DefaultID))
	assert.Equal(t, 4, RequiredBenefits("unknown-template"))
}

func TestLookupReturnsCopies(t *testing.T) {
	a, ok := Lookup("nucao-chocolate")
	require.True(t, ok)
	a.Config["backgroundColor"] = "#000000"
	a.Config["ad_config"].(map[string]any)["subject"] = "mutated"
	a.Placement.Scale = 99

	b, _ := Lookup("nucao-chocolate")
	assert.Equal(t, "#F9A826", b.Config["backgroundColor"])
	assert.NotEqual(t, "mutated", b.Config["ad_config"].(map[string]any)["subject"])
	assert.Equal(t, 0.8, b.Placement.Scale)
}

func TestPlacements(t *testing.T) {
	cases := map[string]Placement{
		DefaultID:            {Position: "center", Scale: 0.7},
		"nucao-chocolate":    {Position: "center", Scale: 0.8},
		"agemate-longevity":  {Position: "center", Scale: 0.7, Hand: true},
		"hydration-products": {Position: "top-section", Scale: 0.5},
		"mushroom-coffee":    {Position: "right-center", Scale: 0.6, Rotation: 5},
		"beauty-products":    {Position: "center", Scale: 0.7},
		"health-supplements": {Position: "right", Scale: 0.6},
		"wellness-products":  {Position: "center", Scale: 0.7, Rotation: 10},
	}
	for id, want := range cases {
		tpl, ok := Lookup(id)
		require.True(t, ok, id)
		want.PreserveOriginalImage = true
		want.UseUploadedProductImage = true
		assert.Equal(t, want, *tpl.Placement, id)
	}
}

func TestCloneConfigDeep(t *testing.T) {
	src := map[string]any{"a": []any{map[string]any{"b": "c"}}}
	dst := CloneConfig(src)
	dst["a"].([]any)[0].(map[string]any)["b"] = "x"
	assert.Equal(t, "c", src["a"].([]any)[0].(map[string]any)["b"])
	assert.NotNil(t, CloneConfig(nil))
}

func TestLayoutsUseHeadlineFallbacks(t *testing.T) {
	info := product.Info{ProductName: "Gut Fix", BrandName: "Bloom", Benefits: product.PadBenefits(nil, 8)}
	in := LayoutInput{Info: info, ProductDetails: "DETAILS", ColorInstructions: "COLORS", Preservation: "PRESERVE"}

	cases := map[string]string{
		DefaultID:            `"BLOOM THAT WORKS"`,
		"beauty-products":    `"GUT FIX"`,
		"health-supplements": `"Gut Fix benefits"`,
		"wellness-products":  `"SAY NO TO GUT FIX"`,
		"nucao-chocolate":    `"Now in Sainsbury's Springfield."`,
		"agemate-longevity":  `"Feel like you again."`,
		"hydration-products": `"GET THE MOIST OUT YOUR WORKOUT WITH WATERBOY"`,
		"mushroom-coffee":    `"WHY YOU NEED MUSHROOM COFFEE"`,
	}
	for id, want := range cases {
		tpl, _ := Lookup(id)
		out := tpl.Layout(in)
		assert.Contains(t, out, want, id)
		assert.Contains(t, out, "DETAILS", id)
		assert.Contains(t, out, "COLORS", id)
		assert.True(t, strings.HasSuffix(strings.TrimSpace(out), "PRESERVE"), id)
	}

	in.Info.Headline = "CUSTOM LINE"
	assert.Contains(t, Default().Layout(in), `"CUSTOM LINE"`)
}

func TestLayoutToleratesShortBenefits(t *testing.T) {
	tpl, _ := Lookup("wellness-products")
	out := tpl.Layout(LayoutInput{Info: product.Info{ProductName: "X", BrandName: "Y"}})
	assert.Contains(t, out, "Hyaluronic Acid")
}

func TestIsRemote(t *testing.T) {
	assert.True(t, IsRemote("https://x/y.png"))
	assert.True(t, IsRemote("HTTP://x"))
	assert.False(t, IsRemote("/images/a.png"))
	assert.False(t, IsRemote(""))
}
