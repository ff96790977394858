package digest

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const page = `<!DOCTYPE html>
<html><head><title>Shop</title><script>var secret = 1;</script></head>
<body>
  <nav><a href="/home">Home</a><a href="/cart">Cart</a></nav>
  <h1>Welcome</h1>
  <p>Find <b>great</b> deals.</p>
  <form id="search">
    <input type="hidden" name="csrf" value="x">
    <input type="text" name="q" placeholder="Search products">
    <button type="submit">Go</button>
  </form>
  <div><button id="buy-now">Buy now</button></div>
  <div><div><a href="https://other.example/help" aria-label="Help center">?</a></div></div>
  <table><tr><th>Item</th><th>Price</th></tr><tr><td>Mug</td><td>$5</td></tr></table>
</body></html>`

func TestExtractElements(t *testing.T) {
	els, err := ExtractElements(page, 0)
	require.NoError(t, err)

	var sels []string
	for _, e := range els {
		sels = append(sels, e.Selector)
	}
	assert.Equal(t, []string{
		"html > body:nth-of-type(1) > nav:nth-of-type(1) > a:nth-of-type(1)",
		"html > body:nth-of-type(1) > nav:nth-of-type(1) > a:nth-of-type(2)",
		`input[name="q"]`,
		"#search > button:nth-of-type(1)",
		"#buy-now",
		"html > body:nth-of-type(1) > div:nth-of-type(2) > div:nth-of-type(1) > a:nth-of-type(1)",
	}, sels)

	assert.Equal(t, "Home", els[0].Label)
	assert.Equal(t, "/home", els[0].Href)
	assert.Equal(t, "Search products", els[2].Label)
	assert.Equal(t, "text", els[2].Type)
	assert.Equal(t, "submit", els[3].Type)
	assert.Equal(t, "Help center", els[5].Label)
}

func TestSelectorsFindTheirElement(t *testing.T) {
	els, err := ExtractElements(page, 0)
	require.NoError(t, err)
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	require.NoError(t, err)

	for _, e := range els {
		found := doc.Find(e.Selector)
		assert.Equal(t, 1, found.Length(), "selector %q", e.Selector)
		assert.Equal(t, e.Tag, goquery.NodeName(found), "selector %q", e.Selector)
	}
}

func TestExtractElementsLimit(t *testing.T) {
	els, err := ExtractElements(page, 2)
	require.NoError(t, err)
	assert.Len(t, els, 2)
}

func TestIDSelectorEscaping(t *testing.T) {
	assert.Equal(t, "#main", idSelector("main"))
	assert.Equal(t, `[id="1st"]`, idSelector("1st"))
	assert.Equal(t, `[id="a\"b"]`, idSelector(`a"b`))
}

func TestMarkdown(t *testing.T) {
	md, err := Markdown(page, "https://shop.example")
	require.NoError(t, err)

	assert.Contains(t, md, "# Welcome")
	assert.Contains(t, md, "**great**")
	assert.Contains(t, md, "https://shop.example/cart")
	assert.Contains(t, md, "Mug")
	assert.NotContains(t, md, "secret")
}

func TestBuild(t *testing.T) {
	d, err := Build(page, "https://shop.example", Options{})
	require.NoError(t, err)
	assert.Equal(t, "https://shop.example", d.URL)
	assert.NotEmpty(t, d.Elements)
	assert.False(t, d.Truncated)
	assert.Greater(t, d.Tokens, 0)

	s := d.String()
	assert.Contains(t, s, "Interactive elements")
	assert.Contains(t, s, `#buy-now: button "Buy now"`)
	assert.Contains(t, s, "Page content:")
}

func TestBuildEmpty(t *testing.T) {
	d, err := Build("  ", "about:blank", Options{})
	require.NoError(t, err)
	assert.Empty(t, d.Markdown)
	assert.Empty(t, d.Elements)
	assert.Equal(t, "", d.String())
}

func TestBuildTruncates(t *testing.T) {
	long := "<html><body><p>" + strings.Repeat("lorem ipsum dolor sit amet ", 500) + "</p></body></html>"
	d, err := Build(long, "", Options{TokenBudget: 20})
	require.NoError(t, err)
	assert.True(t, d.Truncated)
	assert.LessOrEqual(t, d.Tokens, 25)
	assert.Contains(t, d.String(), "[truncated]")
}

func TestEstimateFast(t *testing.T) {
	assert.Equal(t, 0, EstimateFast("   "))
	assert.Equal(t, 1, EstimateFast("hi"))
	assert.Equal(t, 3, EstimateFast("a b c"))
	assert.Equal(t, 4, EstimateFast(strings.Repeat("x", 16)))
}

func TestTruncateToTokens(t *testing.T) {
	out, cut := TruncateToTokens("short", 100)
	assert.Equal(t, "short", out)
	assert.False(t, cut)

	out, cut = TruncateToTokens("anything", 0)
	assert.Equal(t, "anything", out)
	assert.False(t, cut)
}
