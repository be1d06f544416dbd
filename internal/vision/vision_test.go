package vision

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ad-creator/internal/llm"
	"ad-creator/internal/product"
	"ad-creator/internal/templates"
)

type scripted struct {
	reply string
	err   error
	last  llm.Request
}

func (s *scripted) Name() string { return "scripted" }

func (s *scripted) Complete(ctx context.Context, req llm.Request) (string, error) {
	s.last = req
	return s.reply, s.err
}

func TestDescribeUsesTemplateFocus(t *testing.T) {
	p := &scripted{reply: "  Jet black plastic bottle.  "}
	a := New(Options{Provider: p})

	tpl, _ := templates.Lookup("nucao-chocolate")
	out, err := a.Describe(context.Background(), "data:image/png;base64,QUJDRA==", tpl)
	require.NoError(t, err)
	assert.Equal(t, "Jet black plastic bottle.", out)

	assert.Contains(t, p.last.Prompt, "This appears to be a chocolate product. Focus on:")
	assert.Contains(t, p.last.Prompt, "- Eco-friendly packaging features")
	assert.Equal(t, 0.1, p.last.Temperature)
	require.Len(t, p.last.Images, 1)
	assert.Equal(t, "QUJDRA==", p.last.Images[0].Data)
	assert.Equal(t, "image/png", p.last.Images[0].MimeType)
	assert.False(t, p.last.JSON)

	_, err = a.Describe(context.Background(), "QUJDRA==", templates.Default())
	require.NoError(t, err)
	assert.NotContains(t, p.last.Prompt, "This appears to be")
}

func TestDescribeErrors(t *testing.T) {
	a := New(Options{Provider: &scripted{err: errors.New("quota")}})
	_, err := a.Describe(context.Background(), "QUJD", templates.Default())
	assert.ErrorContains(t, err, "quota")

	_, err = a.Describe(context.Background(), "", templates.Default())
	assert.ErrorIs(t, err, ErrNoImage)

	_, err = New(Options{}).Describe(context.Background(), "QUJD", templates.Default())
	assert.Error(t, err)
}

func TestAnalyzeParsesAndNormalizes(t *testing.T) {
	p := &scripted{reply: "```json\n" + `{
		"productType": "supplement bottle",
		"exactColors": ["black"],
		"visualAppearance": {"mainColor": "black", "finish": "matte"},
		"colorProfile": {"dominantColors": [{"name": "black", "hexCode": "#000000", "percentage": 90}]}
	}` + "\n```"}
	a := New(Options{Provider: p})

	got, err := a.Analyze(context.Background(), "QUJD")
	require.NoError(t, err)
	assert.True(t, p.last.JSON)
	assert.Equal(t, "black", got.VisualAppearance.MainColor)
	assert.Equal(t, "matte", got.VisualAppearance.Finish)
	assert.Equal(t, "unknown", got.VisualAppearance.Texture)
	assert.Equal(t, "unknown", got.Shape)
	assert.NotNil(t, got.DetailedParts)
	require.Len(t, got.ColorProfile.DominantColors, 1)
}

func TestAnalyzeAcceptsStringForList(t *testing.T) {
	p := &scripted{reply: `{
		"productType": "bottle",
		"exactColors": ["jet black"],
		"materials": "plastic",
		"uniqueFeatures": null,
		"visualAppearance": {"mainColor": "jet black", "secondaryColors": "white", "patterns": ["stripes", 3]},
		"detailedParts": {"cap": {"exactColors": "jet black", "details": ""}},
		"preciseDetails": {"transparentAreas": "window"}
	}`}
	a := New(Options{Provider: p})

	got, err := a.Analyze(context.Background(), "QUJD")
	require.NoError(t, err)
	assert.Equal(t, "jet black", got.VisualAppearance.MainColor)
	assert.Equal(t, product.StringList{"jet black"}, got.ExactColors)
	assert.Equal(t, product.StringList{"plastic"}, got.Materials)
	assert.Equal(t, product.StringList{}, got.UniqueFeatures)
	assert.Equal(t, product.StringList{"white"}, got.VisualAppearance.SecondaryColors)
	assert.Equal(t, product.StringList{"stripes", "3"}, got.VisualAppearance.Patterns)
	assert.Equal(t, product.StringList{"jet black"}, got.DetailedParts["cap"].ExactColors)
	assert.Empty(t, got.DetailedParts["cap"].Details)
	assert.Equal(t, product.StringList{"window"}, got.PreciseDetails.TransparentAreas)
}

func TestAnalyzeRejectsGarbage(t *testing.T) {
	a := New(Options{Provider: &scripted{reply: "I can't see an image."}})
	_, err := a.Analyze(context.Background(), "QUJD")
	assert.ErrorContains(t, err, "decode product analysis")
}
