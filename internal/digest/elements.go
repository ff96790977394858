package digest

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const interactiveSelector = "a[href], button, input, select, textarea, [role=button]"

const maxLabelRunes = 80

// Element is one interactive control on the page.
type Element struct {
	Tag      string
	Type     string
	Selector string
	Label    string
	Href     string
}

func (e Element) String() string {
	kind := e.Tag
	if e.Type != "" {
		kind += "[" + e.Type + "]"
	}
	s := fmt.Sprintf("%s: %s", e.Selector, kind)
	if e.Label != "" {
		s += " " + fmt.Sprintf("%q", e.Label)
	}
	if e.Href != "" {
		s += " -> " + e.Href
	}
	return s
}

var plainIdent = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_-]*$`)

// ExtractElements returns up to max interactive elements in document order,
// each with a CSS selector that finds it again.
func ExtractElements(html string, max int) ([]Element, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, err
	}

	var out []Element
	seen := make(map[string]bool)
	doc.Find(interactiveSelector).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if max > 0 && len(out) >= max {
			return false
		}
		tag := goquery.NodeName(s)
		typ := strings.ToLower(s.AttrOr("type", ""))
		if tag == "input" && typ == "hidden" {
			return true
		}
		if _, hidden := s.Attr("hidden"); hidden {
			return true
		}

		sel := selectorFor(s)
		if seen[sel] {
			return true
		}
		seen[sel] = true

		el := Element{
			Tag:      tag,
			Selector: sel,
			Label:    label(s),
		}
		if tag == "input" || tag == "button" {
			el.Type = typ
		}
		if tag == "a" {
			el.Href = s.AttrOr("href", "")
		}
		out = append(out, el)
		return true
	})
	return out, nil
}

// selectorFor prefers #id, then tag[name="..."], then an nth-of-type path
// anchored at the nearest ancestor with an id.
func selectorFor(s *goquery.Selection) string {
	tag := goquery.NodeName(s)
	if id := s.AttrOr("id", ""); id != "" {
		return idSelector(id)
	}
	if name := s.AttrOr("name", ""); name != "" {
		return fmt.Sprintf(`%s[name="%s"]`, tag, escapeAttr(name))
	}

	var parts []string
	for cur := s; cur.Length() > 0; cur = cur.Parent() {
		node := goquery.NodeName(cur)
		if node == "#document" || node == "" {
			break
		}
		if node == "html" {
			parts = append(parts, "html")
			break
		}
		if id := cur.AttrOr("id", ""); id != "" && cur.Get(0) != s.Get(0) {
			parts = append(parts, idSelector(id))
			break
		}
		k := cur.PrevAllFiltered(node).Length() + 1
		parts = append(parts, fmt.Sprintf("%s:nth-of-type(%d)", node, k))
	}
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	return strings.Join(parts, " > ")
}

func idSelector(id string) string {
	if plainIdent.MatchString(id) {
		return "#" + id
	}
	return fmt.Sprintf(`[id="%s"]`, escapeAttr(id))
}

func escapeAttr(v string) string {
	return strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(v)
}

func label(s *goquery.Selection) string {
	candidates := []string{
		s.AttrOr("aria-label", ""),
		strings.Join(strings.Fields(s.Text()), " "),
		s.AttrOr("placeholder", ""),
		s.AttrOr("title", ""),
		s.AttrOr("alt", ""),
	}
	if goquery.NodeName(s) == "input" {
		candidates = append(candidates, s.AttrOr("value", ""))
	}
	candidates = append(candidates, s.AttrOr("name", ""))
	for _, c := range candidates {
		if c = strings.TrimSpace(c); c != "" {
			r := []rune(c)
			if len(r) > maxLabelRunes {
				return string(r[:maxLabelRunes]) + "…"
			}
			return c
		}
	}
	return ""
}
