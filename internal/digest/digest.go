// Package digest renders a page's HTML as token-budgeted markdown plus a
// list of interactive elements, sized for a language-model prompt.
package digest

import (
	"fmt"
	"strings"
	"sync"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"github.com/microcosm-cc/bluemonday"
)

// Default limits.
const (
	DefaultTokenBudget = 1500
	DefaultMaxElements = 40
)

// Digest is the prompt-sized view of one page.
type Digest struct {
	URL       string
	Markdown  string
	Elements  []Element
	Tokens    int
	Truncated bool
}

// Options bound the size of a Digest.
type Options struct {
	TokenBudget int
	MaxElements int
}

var (
	policyOnce sync.Once
	policy     *bluemonday.Policy

	mdConverter = converter.NewConverter(
		converter.WithPlugins(
			base.NewBasePlugin(),
			commonmark.NewCommonmarkPlugin(),
			table.NewTablePlugin(),
		),
	)
)

func sanitizer() *bluemonday.Policy {
	policyOnce.Do(func() {
		policy = bluemonday.UGCPolicy()
	})
	return policy
}

// Build digests html loaded from pageURL.
func Build(html, pageURL string, opts Options) (*Digest, error) {
	if opts.TokenBudget <= 0 {
		opts.TokenBudget = DefaultTokenBudget
	}
	if opts.MaxElements <= 0 {
		opts.MaxElements = DefaultMaxElements
	}

	d := &Digest{URL: pageURL}
	if strings.TrimSpace(html) == "" {
		return d, nil
	}

	// Elements come from the raw page; the sanitizer drops form controls.
	elements, err := ExtractElements(html, opts.MaxElements)
	if err != nil {
		return nil, fmt.Errorf("extract elements: %w", err)
	}
	d.Elements = elements

	md, err := Markdown(html, pageURL)
	if err != nil {
		return nil, err
	}
	d.Markdown, d.Truncated = TruncateToTokens(md, opts.TokenBudget)
	d.Tokens = CountTokens(d.Markdown)
	return d, nil
}

// Markdown sanitizes html and converts it to markdown. Relative links are
// resolved against pageURL.
func Markdown(html, pageURL string) (string, error) {
	clean := sanitizer().Sanitize(html)
	var opts []converter.ConvertOptionFunc
	if pageURL != "" {
		opts = append(opts, converter.WithDomain(pageURL))
	}
	md, err := mdConverter.ConvertString(clean, opts...)
	if err != nil {
		return "", fmt.Errorf("convert markdown: %w", err)
	}
	return strings.TrimSpace(md), nil
}

// String renders the digest as a prompt section.
func (d *Digest) String() string {
	var b strings.Builder
	if len(d.Elements) > 0 {
		b.WriteString("Interactive elements (selector: description):\n")
		for _, el := range d.Elements {
			b.WriteString("- ")
			b.WriteString(el.String())
			b.WriteByte('\n')
		}
		b.WriteByte('\n')
	}
	if d.Markdown != "" {
		b.WriteString("Page content:\n")
		b.WriteString(d.Markdown)
		if d.Truncated {
			b.WriteString("\n[truncated]")
		}
		b.WriteByte('\n')
	}
	return b.String()
}
