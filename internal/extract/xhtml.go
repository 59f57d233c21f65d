package extract

import (
	"bytes"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html"
)

// tagConversions maps HTML5 tags that XHTML 1.1 lacks to their replacements.
var tagConversions = map[string]string{
	"article":    "div",
	"section":    "div",
	"aside":      "div",
	"nav":        "div",
	"header":     "div",
	"footer":     "div",
	"main":       "div",
	"figure":     "div",
	"figcaption": "p",
	"details":    "div",
	"summary":    "p",
	"mark":       "span",
	"time":       "span",
	"picture":    "span",
}

// forbiddenAttrs lists attributes that should be removed from all elements.
var forbiddenAttrs = map[string]bool{
	"contenteditable": true,
	"draggable":       true,
	"hidden":          true,
	"spellcheck":      true,
	"translate":       true,
	"target":          true,
	"loading":         true,
	"decoding":        true,
	"srcset":          true,
	"sizes":           true,
	"referrerpolicy":  true,
}

func newPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowElements("article", "section", "div", "p", "span", "br", "h1", "h2", "h3", "h4", "h5", "h6",
		"ul", "ol", "li", "blockquote", "pre", "code", "b", "strong", "i", "em", "u", "a",
		"figure", "figcaption", "table", "thead", "tbody", "tr", "th", "td", "hr", "sup", "sub")
	p.AllowAttrs("href").OnElements("a")
	return p
}

// TransformHTML rewrites HTML5 tags to XHTML 1.1 equivalents, keeping the
// original tag name as a class, and removes forbidden and data-* attributes.
func TransformHTML(sel *goquery.Selection) {
	for origTag, newTag := range tagConversions {
		sel.Find(origTag).Each(func(i int, s *goquery.Selection) {
			existingClass, _ := s.Attr("class")
			if existingClass != "" {
				s.SetAttr("class", existingClass+" "+origTag)
			} else {
				s.SetAttr("class", origTag)
			}
			s.Get(0).Data = newTag
		})
	}

	sel.Find("*").Each(func(i int, s *goquery.Selection) {
		node := s.Get(0)
		var toRemove []string
		for _, attr := range node.Attr {
			if forbiddenAttrs[attr.Key] || strings.HasPrefix(attr.Key, "data-") {
				toRemove = append(toRemove, attr.Key)
			}
		}
		for _, key := range toRemove {
			s.RemoveAttr(key)
		}
	})
}

// resolveLinks makes every a[href] absolute against base. Fragment-only links
// point into the original page and are unwrapped.
func resolveLinks(sel *goquery.Selection, base *url.URL) {
	sel.Find("a[href]").Each(func(i int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		href = strings.TrimSpace(href)
		if href == "" || strings.HasPrefix(href, "#") {
			s.Contents().Unwrap()
			s.Remove()
			return
		}
		if base == nil {
			return
		}
		ref, err := url.Parse(href)
		if err != nil {
			s.RemoveAttr("href")
			return
		}
		s.SetAttr("href", base.ResolveReference(ref).String())
	})
}

// ToXHTML sanitises an HTML fragment and re-renders it so it is well-formed
// XML suitable for embedding in an XHTML 1.1 chapter. Images are dropped
// because remote resources cannot be referenced from the package.
func ToXHTML(fragment string, base *url.URL) (string, error) {
	cleaned := newPolicy().Sanitize(fragment)

	doc, err := goquery.NewDocumentFromReader(strings.NewReader("<html><body>" + cleaned + "</body></html>"))
	if err != nil {
		return "", fmt.Errorf("parse content: %w", err)
	}
	body := doc.Find("body")
	body.Find("img").Remove()
	TransformHTML(body)
	resolveLinks(body, base)

	var buf bytes.Buffer
	for n := body.Get(0).FirstChild; n != nil; n = n.NextSibling {
		if err := html.Render(&buf, n); err != nil {
			return "", fmt.Errorf("render content: %w", err)
		}
	}
	return stripInvalidXML(strings.TrimSpace(buf.String())), nil
}

// stripInvalidXML drops runes outside the XML 1.0 Char production.
func stripInvalidXML(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r == 0x9 || r == 0xA || r == 0xD:
			return r
		case r >= 0x20 && r <= 0xD7FF:
			return r
		case r >= 0xE000 && r <= 0xFFFD:
			return r
		case r >= 0x10000 && r <= 0x10FFFF:
			return r
		}
		return -1
	}, s)
}
