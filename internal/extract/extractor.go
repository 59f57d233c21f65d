package extract

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"unicode/utf8"

	"codeberg.org/readeck/go-readability/v2"
	"github.com/PuerkitoBio/goquery"

	"github.com/yuanying/linkpub/internal/article"
)

const (
	DefaultMinContentLength = 100
	excerptLength           = 200
)

// Extractor turns fetched pages into articles.
type Extractor struct {
	fetcher          *Fetcher
	minContentLength int
	logger           *slog.Logger
}

// NewExtractor creates an extractor. minContentLength is measured in runes of
// extracted plain text; zero disables the check.
func NewExtractor(fetcher *Fetcher, minContentLength int, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	if minContentLength < 0 {
		minContentLength = 0
	}
	return &Extractor{
		fetcher:          fetcher,
		minContentLength: minContentLength,
		logger:           logger,
	}
}

// Fetcher returns the underlying fetcher.
func (e *Extractor) Fetcher() *Fetcher {
	return e.fetcher
}

// Extract downloads rawURL and returns its readable article. The returned
// article keeps rawURL as its URL even when the server redirected.
func (e *Extractor) Extract(ctx context.Context, rawURL string) (article.Article, error) {
	e.logger.Info("fetching article", "url", rawURL)

	page, err := e.fetcher.Fetch(ctx, rawURL)
	if err != nil {
		return article.Article{}, err
	}

	a, err := e.Parse(page.URL, page.Body)
	if err != nil {
		return article.Article{}, fmt.Errorf("%s: %w", rawURL, err)
	}
	a.URL = strings.TrimSpace(rawURL)

	e.logger.Info("article extracted", "url", a.URL, "title", a.Title, "words", a.WordCount)
	return a, nil
}

// Parse extracts an article from an already downloaded UTF-8 HTML document.
func (e *Extractor) Parse(pageURL *url.URL, body []byte) (article.Article, error) {
	meta, err := readMeta(body, pageURL)
	if err != nil {
		return article.Article{}, err
	}

	parsed, err := readability.FromReader(bytes.NewReader(body), pageURL)
	if err != nil {
		return article.Article{}, fmt.Errorf("readability: %w", err)
	}

	var textBuf strings.Builder
	if err := parsed.RenderText(&textBuf); err != nil {
		return article.Article{}, fmt.Errorf("render text: %w", err)
	}
	text := strings.TrimSpace(textBuf.String())
	if utf8.RuneCountInString(text) < e.minContentLength {
		return article.Article{}, fmt.Errorf("%w: %d characters", ErrTooShort, utf8.RuneCountInString(text))
	}

	var htmlBuf strings.Builder
	if err := parsed.RenderHTML(&htmlBuf); err != nil {
		return article.Article{}, fmt.Errorf("render html: %w", err)
	}
	content, err := ToXHTML(htmlBuf.String(), pageURL)
	if err != nil {
		return article.Article{}, err
	}

	a := article.Article{
		Title:     meta.title,
		Content:   content,
		Excerpt:   meta.description,
		SiteName:  meta.siteName,
		WordCount: len(strings.Fields(text)),
		Byline:    meta.author,
		ImageURL:  meta.image,
	}
	if pageURL != nil {
		a.URL = pageURL.String()
	}
	if a.Title == "" {
		a.Title = article.DefaultTitle
	}
	if a.SiteName == "" && pageURL != nil {
		a.SiteName = pageURL.Hostname()
	}
	if a.Excerpt == "" {
		a.Excerpt = truncateRunes(strings.Join(strings.Fields(text), " "), excerptLength)
	}
	return a, nil
}

type pageMeta struct {
	title       string
	siteName    string
	description string
	author      string
	image       string
}

func readMeta(body []byte, base *url.URL) (pageMeta, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return pageMeta{}, fmt.Errorf("parse page: %w", err)
	}

	m := pageMeta{
		title: firstNonEmpty(
			metaContent(doc, "property", "og:title"),
			metaContent(doc, "name", "twitter:title"),
			doc.Find("head title").First().Text(),
			doc.Find("h1").First().Text(),
		),
		siteName: firstNonEmpty(
			metaContent(doc, "property", "og:site_name"),
			metaContent(doc, "name", "application-name"),
		),
		description: firstNonEmpty(
			metaContent(doc, "property", "og:description"),
			metaContent(doc, "name", "description"),
			metaContent(doc, "name", "twitter:description"),
		),
		author: firstNonEmpty(
			metaContent(doc, "name", "author"),
			metaContent(doc, "property", "article:author"),
		),
	}
	if img := firstNonEmpty(
		metaContent(doc, "property", "og:image"),
		metaContent(doc, "name", "twitter:image"),
	); img != "" {
		m.image = resolveURL(base, img)
	}
	m.title = stripInvalidXML(m.title)
	m.siteName = stripInvalidXML(m.siteName)
	m.description = stripInvalidXML(m.description)
	m.author = stripInvalidXML(m.author)
	return m, nil
}

func metaContent(doc *goquery.Document, attr, value string) string {
	content, _ := doc.Find(fmt.Sprintf(`meta[%s=%q]`, attr, value)).First().Attr("content")
	return content
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.Join(strings.Fields(v), " "); v != "" {
			return v
		}
	}
	return ""
}

func resolveURL(base *url.URL, ref string) string {
	u, err := url.Parse(ref)
	if err != nil {
		return ""
	}
	if base == nil {
		return u.String()
	}
	return base.ResolveReference(u).String()
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return strings.TrimSpace(string(runes[:n])) + "…"
}
