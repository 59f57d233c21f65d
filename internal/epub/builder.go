package epub

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/yuanying/linkpub/internal/article"
)

// File paths inside the container.
const (
	MimetypePath  = "mimetype"
	ContainerPath = "META-INF/container.xml"
	OPFPath       = "OEBPS/content.opf"
	NCXPath       = "OEBPS/toc.ncx"
	CoverPagePath = "OEBPS/cover.html"
	TOCPagePath   = "OEBPS/toc.html"
	CoverImgPath  = "OEBPS/images/cover.jpg"

	Mimetype = "application/epub+zip"

	wordsPerPage = 250
)

// Variant selects the book layout.
type Variant int

const (
	// VariantPlain emits chapters only; toc.ncx is the sole table of contents.
	VariantPlain Variant = iota
	// VariantCover prepends a cover page and an in-book TOC page.
	VariantCover
)

func (v Variant) String() string {
	switch v {
	case VariantCover:
		return "cover"
	default:
		return "plain"
	}
}

// ParseVariant maps "plain" or "cover" to a Variant. An empty string is plain.
func ParseVariant(s string) (Variant, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "plain":
		return VariantPlain, nil
	case "cover", "with-cover":
		return VariantCover, nil
	default:
		return VariantPlain, fmt.Errorf("%w: unknown variant %q (want plain or cover)", ErrValidation, s)
	}
}

// CoverImage is a prepared JPEG shown on the cover page.
type CoverImage struct {
	Data []byte
}

// Options controls a single build.
type Options struct {
	Variant Variant
	// CoverImage is only used by VariantCover.
	CoverImage *CoverImage
	// Now and NewID default to time.Now and article.NewIdentifier.
	Now   func() time.Time
	NewID func() string
}

// ChapterPath returns the archive path of the n-th chapter (1-based).
func ChapterPath(n int) string {
	return fmt.Sprintf("OEBPS/chapter%d.html", n)
}

// Build assembles the named files of an EPUB for the collection. It fails
// with a ValidationError before producing anything when the collection is
// empty, and with an EncodingError when a string cannot be embedded in XML.
func Build(c article.Collection, opts Options) (*Package, error) {
	if err := validate(c); err != nil {
		return nil, err
	}
	if err := checkEncoding(c); err != nil {
		return nil, err
	}

	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}
	newID := article.NewIdentifier
	if opts.NewID != nil {
		newID = opts.NewID
	}

	doc := &document{
		collection: c,
		variant:    opts.Variant,
		identifier: newID(),
		builtAt:    now().UTC(),
	}
	if opts.Variant == VariantCover && opts.CoverImage != nil && len(opts.CoverImage.Data) > 0 {
		doc.coverImage = opts.CoverImage.Data
	}

	return doc.render(), nil
}

// BuildEPUB builds and packages the collection into EPUB bytes.
func BuildEPUB(c article.Collection, opts Options) ([]byte, error) {
	pkg, err := Build(c, opts)
	if err != nil {
		return nil, err
	}
	return Pack(pkg)
}

func validate(c article.Collection) error {
	verr := &ValidationError{}
	if len(c.Articles) == 0 {
		verr.Add("articles", "collection has no articles")
		return verr
	}
	for i, a := range c.Articles {
		if strings.TrimSpace(a.Content) == "" {
			verr.Add(fmt.Sprintf("articles[%d].content", i), "content is empty")
		}
	}
	if verr.HasAny() {
		return verr
	}
	return nil
}

var (
	errInvalidUTF8 = errors.New("invalid UTF-8")
	errIllegalChar = errors.New("character not allowed in XML")
)

func checkEncoding(c article.Collection) error {
	fields := []struct {
		name, value string
	}{
		{"title", c.Title},
		{"author", c.Author},
		{"description", c.Summary},
	}
	for _, f := range fields {
		if err := checkXMLText(f.value); err != nil {
			return &EncodingError{Field: f.name, Err: err}
		}
	}
	for i, a := range c.Articles {
		articleFields := []struct {
			name, value string
		}{
			{"title", a.Title},
			{"siteName", a.SiteName},
			{"url", a.URL},
			{"excerpt", a.Excerpt},
			{"content", a.Content},
		}
		for _, f := range articleFields {
			if err := checkXMLText(f.value); err != nil {
				return &EncodingError{Field: fmt.Sprintf("articles[%d].%s", i, f.name), Err: err}
			}
		}
	}
	return nil
}

// checkXMLText rejects invalid UTF-8 and code points outside the XML 1.0
// Char production.
func checkXMLText(s string) error {
	if !utf8.ValidString(s) {
		return errInvalidUTF8
	}
	for i, r := range s {
		if !isXMLChar(r) {
			return fmt.Errorf("%w: U+%04X at byte %d", errIllegalChar, r, i)
		}
	}
	return nil
}

func isXMLChar(r rune) bool {
	switch {
	case r == 0x9 || r == 0xA || r == 0xD:
		return true
	case r >= 0x20 && r <= 0xD7FF:
		return true
	case r >= 0xE000 && r <= 0xFFFD:
		return true
	case r >= 0x10000 && r <= 0x10FFFF:
		return true
	}
	return false
}

// estimatedPages is advisory only: ceil(totalWords / 250).
func estimatedPages(totalWords int) int {
	if totalWords <= 0 {
		return 0
	}
	return (totalWords + wordsPerPage - 1) / wordsPerPage
}
