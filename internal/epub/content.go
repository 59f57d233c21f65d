package epub

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// LoadChapter parses a chapter document and recovers the article title,
// source site and URL from its metadata block.
func LoadChapter(path string, content []byte) (*Chapter, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("failed to parse XHTML: %w", err)
	}

	ch := &Chapter{
		Path:  path,
		Label: strings.TrimSpace(doc.Find("p.chapter-number").First().Text()),
		Title: strings.TrimSpace(doc.Find("h1").First().Text()),
	}

	meta := doc.Find("div.article-meta")
	source := meta.Find("p.source").First()
	source.Find("strong").Remove()
	ch.SiteName = strings.TrimSpace(source.Text())
	if href, ok := meta.Find("p.url a").First().Attr("href"); ok {
		ch.URL = strings.TrimSpace(href)
	}

	return ch, nil
}
