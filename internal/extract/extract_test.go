package extract

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ad-creator/internal/imagegen"
	"ad-creator/internal/llm"
	"ad-creator/internal/product"
	"ad-creator/internal/templates"
)

type fakeModel struct {
	name  string
	reply string
	err   error
	calls int
	last  llm.Request
}

func (f *fakeModel) Name() string { return f.name }

func (f *fakeModel) Complete(ctx context.Context, req llm.Request) (string, error) {
	f.calls++
	f.last = req
	return f.reply, f.err
}

type fakeDescriber struct {
	text string
	err  error
	tpl  string
}

func (f *fakeDescriber) Describe(ctx context.Context, imageBase64 string, tpl templates.Template) (string, error) {
	f.tpl = tpl.ID
	return f.text, f.err
}

type fakeFetcher struct {
	html string
	err  error
	url  string
}

func (f *fakeFetcher) Fetch(ctx context.Context, url string) (string, error) {
	f.url = url
	return f.html, f.err
}

const widgetJSON = `{
	"productName": "Daily Multivitamin",
	"productDescription": "Complete daily nutrition",
	"brandName": "VitaCo",
	"benefits": [{"name": "Energy", "description": "All day"}, {"name": "Immunity", "description": "Stronger defenses"}],
	"backgroundColor": "#123456",
	"textColor": "#ABCDEF",
	"headline": "FEEL BETTER DAILY"
}`

func newExtractor(primary, secondary *fakeModel, d Describer, f PageFetcher) *Extractor {
	return New(Options{
		Strategies: []Strategy{
			{Name: "gemini", Provider: primary, Build: PrimaryPrompt},
			{Name: "openai", Provider: secondary, Build: SecondaryPrompt},
		},
		Describer: d,
		Fetcher:   f,
	})
}

func TestExtractPrimarySucceeds(t *testing.T) {
	primary := &fakeModel{name: "g", reply: "```json\n" + widgetJSON + "\n```"}
	secondary := &fakeModel{name: "o"}
	desc := &fakeDescriber{text: "Black plastic bottle with white label."}

	res := newExtractor(primary, secondary, desc, nil).Extract(context.Background(), Request{
		URL:         "https://example.com/widget",
		Size:        imagegen.SizeSquare,
		ImageBase64: "data:image/jpeg;base64,QUJD",
		TemplateID:  "health-supplements",
	})

	require.True(t, res.Success)
	assert.Equal(t, "gemini", res.Source)
	assert.Empty(t, res.Error)
	assert.Equal(t, 0, secondary.calls)

	info := res.ProductInfo
	assert.Equal(t, "Daily Multivitamin", info.ProductName)
	assert.Equal(t, "health-supplements", info.TemplateID)
	assert.Equal(t, "#FFFFFF", info.BackgroundColor)
	assert.Equal(t, "#000000", info.TextColor)
	assert.Len(t, info.Benefits, 4)
	assert.Equal(t, "Energy", info.Benefits[0].Name)
	assert.Equal(t, product.DefaultBenefits()[2], info.Benefits[2])
	assert.True(t, info.PreserveUploadedImage)
	assert.Equal(t, "Black plastic bottle with white label.", info.ProductImageAnalysis)

	assert.Equal(t, "health-supplements", desc.tpl)
	assert.Contains(t, primary.last.Prompt, "https://example.com/widget")
	assert.Contains(t, primary.last.Prompt, "Black plastic bottle with white label.")
	assert.Contains(t, primary.last.Prompt, "Just add water and shake")
	assert.Contains(t, primary.last.Prompt, "square (1:1)")
	assert.Contains(t, primary.last.Prompt, "An array of 4 objects")
	assert.NotContains(t, primary.last.Prompt, "backgroundColor")
	assert.Equal(t, 0.2, primary.last.Temperature)
}

func TestExtractFallsBackToSecondary(t *testing.T) {
	cases := map[string]*fakeModel{
		"transport error":   {name: "g", err: errors.New("dial tcp: timeout")},
		"empty response":    {name: "g", reply: "   "},
		"not json":          {name: "g", reply: "I cannot browse the web."},
		"schema validation": {name: "g", reply: `{"productName": "X", "benefits": "none"}`},
	}

	for name, primary := range cases {
		t.Run(name, func(t *testing.T) {
			secondary := &fakeModel{name: "o", reply: widgetJSON}
			res := newExtractor(primary, secondary, nil, nil).Extract(context.Background(), Request{
				URL: "example.com/widget", TemplateID: "mushroom-coffee",
			})

			require.True(t, res.Success)
			assert.Equal(t, "openai", res.Source)
			assert.Equal(t, 1, secondary.calls)
			assert.Len(t, res.ProductInfo.Benefits, 8)
			assert.Equal(t, "#FFFFFF", res.ProductInfo.BackgroundColor)
			assert.NotEmpty(t, secondary.last.System)
			assert.True(t, secondary.last.JSON)
			assert.Contains(t, secondary.last.System, `"Mushroom Coffee"`)
		})
	}
}

func TestExtractTotalFailureReturnsDefault(t *testing.T) {
	primary := &fakeModel{name: "g", err: errors.New("gemini down")}
	secondary := &fakeModel{name: "o", err: errors.New("openai down")}
	desc := &fakeDescriber{err: errors.New("vision down")}

	res := newExtractor(primary, secondary, desc, nil).Extract(context.Background(), Request{
		URL: "https://example.com/widget", ImageBase64: "QUJD", TemplateID: "wellness-products",
	})

	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "gemini down")
	assert.Contains(t, res.Error, "openai down")

	info := res.ProductInfo
	assert.Equal(t, product.DefaultInfo().ProductName, info.ProductName)
	assert.Equal(t, "wellness-products", info.TemplateID)
	assert.True(t, info.PreserveUploadedImage)
	assert.Len(t, info.Benefits, 8)
	assert.Equal(t, "#8BC34A", info.BackgroundColor)
	assert.Empty(t, info.ProductImageAnalysis)
}

func TestExtractWithoutStrategies(t *testing.T) {
	res := New(Options{}).Extract(context.Background(), Request{URL: "x"})
	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "no extraction strategies")
	assert.Equal(t, templates.DefaultID, res.ProductInfo.TemplateID)
}

func TestExtractUnknownTemplateUsesDefault(t *testing.T) {
	primary := &fakeModel{name: "g", reply: `{"productName":"P","brandName":"B","benefits":[]}`}
	res := newExtractor(primary, &fakeModel{}, nil, nil).Extract(context.Background(), Request{
		URL: "https://example.com", TemplateID: "no-such-template",
	})
	require.True(t, res.Success)
	assert.Equal(t, templates.DefaultID, res.ProductInfo.TemplateID)
	assert.Equal(t, "#0047AB", res.ProductInfo.BackgroundColor)
	assert.Equal(t, "#FFFFFF", res.ProductInfo.TextColor)
	assert.Len(t, res.ProductInfo.Benefits, 4)
}

func TestExtractSanitizesMarketplaceNames(t *testing.T) {
	primary := &fakeModel{name: "g", reply: `{"productName":"Amazon's Choice Widget","brandName":"Generic Co","benefits":[],"headline":"Amazon's Choice pick"}`}
	res := newExtractor(primary, &fakeModel{}, nil, nil).Extract(context.Background(), Request{URL: "https://amazon.com/dp/1"})
	require.True(t, res.Success)
	assert.Equal(t, "Widget", res.ProductInfo.ProductName)
	assert.Equal(t, "Generic Co", res.ProductInfo.BrandName)
	assert.Equal(t, "pick", res.ProductInfo.Headline)
}

func TestExtractEmbedsPageText(t *testing.T) {
	fetcher := &fakeFetcher{html: "<html><script>x()</script><h1>Super Widget 3000</h1></html>"}
	primary := &fakeModel{name: "g", reply: widgetJSON}
	res := newExtractor(primary, &fakeModel{}, nil, fetcher).Extract(context.Background(), Request{URL: " https://example.com/w "})
	require.True(t, res.Success)
	assert.Equal(t, "https://example.com/w", fetcher.url)
	assert.Contains(t, primary.last.Prompt, "Super Widget 3000")
	assert.NotContains(t, primary.last.Prompt, "x()")

	failing := &fakeFetcher{err: errors.New("403 Forbidden")}
	primary = &fakeModel{name: "g", reply: widgetJSON}
	res = newExtractor(primary, &fakeModel{}, nil, failing).Extract(context.Background(), Request{URL: "https://example.com/w"})
	require.True(t, res.Success)
	assert.NotContains(t, primary.last.Prompt, "visible text")
}

func TestPromptsRequestEightBenefits(t *testing.T) {
	tpl, _ := templates.Lookup("wellness-products")
	in := PromptInput{URL: "u", Template: tpl, RequiredBenefits: 8, Size: imagegen.SizePortrait}

	p := PrimaryPrompt(in)
	assert.Contains(t, p.Prompt, "An array of 8 objects")
	assert.Contains(t, p.Prompt, "portrait (9:16)")
	assert.Contains(t, p.Prompt, "SAY NO TO BLOATING")
	assert.Empty(t, p.System)

	s := SecondaryPrompt(in)
	assert.Contains(t, s.Prompt, "An array of 8 objects")
	assert.True(t, strings.Contains(s.System, "Wellness Products"))
}
