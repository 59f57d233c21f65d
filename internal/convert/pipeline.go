// Package convert ties extraction, cover preparation, EPUB building and the
// library together.
package convert

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/yuanying/linkpub/internal/article"
	"github.com/yuanying/linkpub/internal/coverart"
	"github.com/yuanying/linkpub/internal/epub"
	"github.com/yuanying/linkpub/internal/extract"
	"github.com/yuanying/linkpub/internal/library"
)

const DefaultMaxArticles = 50

var (
	ErrNoURLs          = errors.New("at least one URL is required")
	ErrTooManyArticles = errors.New("too many articles")
	ErrLibraryDisabled = errors.New("library is not configured")
)

// Options holds per-request overrides.
type Options struct {
	Title       string
	Author      string
	Description string
	Variant     epub.Variant
	// CoverImage is raw image data (any supported format) for the cover
	// variant. When empty the first article's lead image is tried.
	CoverImage []byte
}

// Config wires a Pipeline.
type Config struct {
	Extractor     *extract.Extractor
	Covers        *coverart.Optimizer
	Library       *library.Store
	DefaultAuthor string
	MaxArticles   int
	Logger        *slog.Logger
	Now           func() time.Time
}

// Pipeline orchestrates URL to EPUB conversion.
type Pipeline struct {
	extractor     *extract.Extractor
	covers        *coverart.Optimizer
	library       *library.Store
	defaultAuthor string
	maxArticles   int
	logger        *slog.Logger
	now           func() time.Time
}

// Result is a finished book.
type Result struct {
	Collection article.Collection
	Variant    epub.Variant
	Data       []byte
	Failures   []extract.Failure
}

// Filename is the suggested download name.
func (r *Result) Filename() string {
	return article.SanitizeFilename(r.Collection.ResolvedTitle()) + ".epub"
}

func NewPipeline(cfg Config) *Pipeline {
	p := &Pipeline{
		extractor:     cfg.Extractor,
		covers:        cfg.Covers,
		library:       cfg.Library,
		defaultAuthor: cfg.DefaultAuthor,
		maxArticles:   cfg.MaxArticles,
		logger:        cfg.Logger,
		now:           cfg.Now,
	}
	if p.covers == nil {
		p.covers = coverart.NewOptimizer(0, 0)
	}
	if p.defaultAuthor == "" {
		p.defaultAuthor = article.DefaultAuthor
	}
	if p.maxArticles <= 0 {
		p.maxArticles = DefaultMaxArticles
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	if p.now == nil {
		p.now = time.Now
	}
	return p
}

// Extractor returns the extractor used for fetching articles.
func (p *Pipeline) Extractor() *extract.Extractor {
	return p.extractor
}

// Library returns the configured library, or nil.
func (p *Pipeline) Library() *library.Store {
	return p.library
}

// CheckCount enforces the per-book article limit.
func (p *Pipeline) CheckCount(n int) error {
	if n == 0 {
		return ErrNoURLs
	}
	if n > p.maxArticles {
		return fmt.Errorf("%w: %d (limit %d)", ErrTooManyArticles, n, p.maxArticles)
	}
	return nil
}

// Convert fetches urls and builds one book from the articles that could be
// extracted. A single URL becomes a single-article book titled after it.
func (p *Pipeline) Convert(ctx context.Context, urls []string, opts Options) (*Result, error) {
	if err := p.CheckCount(len(urls)); err != nil {
		return nil, err
	}

	c, failures, err := p.extractor.Gather(ctx, urls)
	if err != nil {
		return &Result{Failures: failures}, err
	}
	if c.Len() == 1 && len(urls) == 1 {
		*c = article.Single(c.Articles[0], "")
	}

	res, err := p.Build(ctx, *c, opts)
	if err != nil {
		return nil, err
	}
	res.Failures = failures
	return res, nil
}

// Build packages an already extracted collection.
func (p *Pipeline) Build(ctx context.Context, c article.Collection, opts Options) (*Result, error) {
	if err := p.CheckCount(c.Len()); err != nil {
		return nil, err
	}
	c = p.applyOverrides(c, opts)

	buildOpts := epub.Options{Variant: opts.Variant, Now: p.now}
	if opts.Variant == epub.VariantCover {
		buildOpts.CoverImage = p.coverImage(ctx, c, opts.CoverImage)
	}

	data, err := epub.BuildEPUB(c, buildOpts)
	if err != nil {
		return nil, err
	}

	p.logger.Info("epub built",
		"title", c.ResolvedTitle(),
		"articles", c.Len(),
		"variant", opts.Variant.String(),
		"bytes", len(data))

	return &Result{Collection: c, Variant: opts.Variant, Data: data}, nil
}

// Save stores a result in user's library.
func (p *Pipeline) Save(user string, res *Result) (library.Entry, error) {
	if p.library == nil {
		return library.Entry{}, ErrLibraryDisabled
	}
	return p.library.Save(user, res.Collection, res.Variant.String(), res.Data)
}

func (p *Pipeline) applyOverrides(c article.Collection, opts Options) article.Collection {
	c.Articles = append([]article.Article(nil), c.Articles...)
	if title := strings.TrimSpace(opts.Title); title != "" {
		c.Title = title
		if len(c.Articles) == 1 {
			c.Articles[0].Title = title
		}
	}
	if author := strings.TrimSpace(opts.Author); author != "" {
		c.Author = author
	}
	if strings.TrimSpace(c.Author) == "" {
		c.Author = p.defaultAuthor
	}
	if desc := strings.TrimSpace(opts.Description); desc != "" {
		c.Summary = desc
	}
	return c
}

// coverImage prepares explicit cover data, falling back to the first article
// lead image. Failures only drop the image; the cover page is still built.
func (p *Pipeline) coverImage(ctx context.Context, c article.Collection, explicit []byte) *epub.CoverImage {
	raw := explicit
	if len(raw) == 0 {
		raw = p.fetchLeadImage(ctx, c)
	}
	if len(raw) == 0 {
		return nil
	}
	data, err := p.covers.Prepare(raw)
	if err != nil {
		p.logger.Warn("cover image skipped", "error", err)
		return nil
	}
	return &epub.CoverImage{Data: data}
}

func (p *Pipeline) fetchLeadImage(ctx context.Context, c article.Collection) []byte {
	if p.extractor == nil {
		return nil
	}
	for _, a := range c.Articles {
		if a.ImageURL == "" {
			continue
		}
		data, err := p.extractor.Fetcher().FetchBytes(ctx, a.ImageURL)
		if err != nil {
			p.logger.Debug("lead image unavailable", "url", a.ImageURL, "error", err)
			continue
		}
		return data
	}
	return nil
}
