package skin

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/VMConsole/internal/domain/catalog"
)

func render(t *testing.T, osID, target string, downloads bool) *goquery.Document {
	t.Helper()

	os, ok := catalog.Default().Lookup(osID)
	require.True(t, ok)

	html, err := NewRenderer(downloads).Render(os, target)
	require.NoError(t, err)

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc
}

func TestRenderWindows11(t *testing.T) {
	doc := render(t, "windows11", "https://example.com/path?q=1", true)

	assert.Equal(t, "Virtual Browser - Windows 11 - example.com", doc.Find("title").Text())
	assert.Equal(t, "windows11", doc.Find("body").AttrOr("data-os", ""))
	assert.Equal(t, "Windows 11 Browser", doc.Find(".os-taskbar .os-name").Text())
	assert.Equal(t, "⊞", strings.TrimSpace(doc.Find(".start-button").Text()))

	addr := doc.Find("input.address-bar")
	assert.Equal(t, "https://example.com/path?q=1", addr.AttrOr("value", ""))
	_, readonly := addr.Attr("readonly")
	assert.True(t, readonly)

	frame := doc.Find("iframe.browser-content")
	require.Equal(t, 1, frame.Length())
	assert.Equal(t, "https://example.com/path?q=1", frame.AttrOr("src", ""))
	assert.Equal(t, Sandbox(true), frame.AttrOr("sandbox", ""))

	assert.Contains(t, doc.Find("style").Text(), "linear-gradient(135deg, #0078d4, #106ebe)")
}

func TestRenderAndroidUsesMaterialChrome(t *testing.T) {
	doc := render(t, "android", "https://m.google.com", false)

	assert.Equal(t, "◉", strings.TrimSpace(doc.Find(".start-button").Text()))
	style := doc.Find("style").Text()
	assert.Contains(t, style, "Roboto, sans-serif")
	assert.Contains(t, style, "height: 56px")
	assert.Equal(t, BaseSandbox, doc.Find("iframe").AttrOr("sandbox", ""))
}

func TestRenderEscapesHostileURL(t *testing.T) {
	doc := render(t, "windows10", `javascript:alert("x")`, true)

	src := doc.Find("iframe").AttrOr("src", "")
	assert.NotContains(t, src, "javascript:")
}

func TestRenderEscapesMarkupInName(t *testing.T) {
	os, _ := catalog.Default().Lookup("windows10")
	os.Name = `<b>Win</b>`

	html, err := NewRenderer(true).Render(os, "https://example.com")
	require.NoError(t, err)

	assert.NotContains(t, html, "<b>Win</b>")
	assert.Contains(t, html, "&lt;b&gt;Win&lt;/b&gt; Browser")
}

func TestThemeFor(t *testing.T) {
	assert.Equal(t, "⊞", ThemeFor("windows10").StartGlyph)
	assert.Equal(t, "⊞", ThemeFor("unknown").StartGlyph)
	assert.Equal(t, "◉", ThemeFor("android").StartGlyph)
	assert.NotEqual(t, ThemeFor("windows10").Background, ThemeFor("windows11").Background)
}

func TestSiteLabel(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"https://www.google.com", "google.com"},
		{"https://news.bbc.co.uk/world", "bbc.co.uk"},
		{"http://localhost:8080", "localhost"},
		{"not a url", "not a url"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, SiteLabel(tt.in))
		})
	}
}
