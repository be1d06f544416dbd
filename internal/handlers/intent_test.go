package handlers

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"ad-creator/internal/imagegen"
)

func TestExtractURL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"https://shop.example/p?id=1", "https://shop.example/p?id=1"},
		{"look: (http://shop.example/item).", "http://shop.example/item"},
		{"www.shop.example/item", "https://www.shop.example/item"},
		{"HTTPS://Shop.example", "HTTPS://Shop.example"},
		{"no link here", ""},
		{"https://localhost", ""},
		{"shop.example/item", ""},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, extractURL(tt.in))
		})
	}
}

func TestDescribeSizeAndCaption(t *testing.T) {
	assert.Equal(t, "square 1024x1024", describeSize(""))
	assert.Equal(t, "portrait 1024x1792", describeSize(imagegen.SizePortrait))

	assert.Equal(t, "Widget\nTemplate: Beauty Products", adCaption("Widget", " ", "Beauty Products", false))
	assert.Equal(t, "12345678", shortID("12345678-aaaa"))
	assert.Equal(t, "abc", shortID("abc"))
	assert.Equal(t, "an ad", plural(1, "ad"))
	assert.Equal(t, "3 ads", plural(3, "ad"))
}
