// Package bookmarks imports saved links from a bookmark service's RSS or
// Atom feed.
package bookmarks

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/yuanying/linkpub/internal/extract"
)

const DefaultLimit = 50

var ErrFeed = errors.New("failed to read bookmark feed")

// Bookmark is a saved link.
type Bookmark struct {
	Title string    `json:"title"`
	URL   string    `json:"url"`
	Added time.Time `json:"added,omitzero"`
	Tags  []string  `json:"tags,omitempty"`
}

// Source reads bookmark feeds.
type Source struct {
	parser *gofeed.Parser
	limit  int
	logger *slog.Logger
}

func NewSource(client *http.Client, limit int, logger *slog.Logger) *Source {
	fp := gofeed.NewParser()
	if client != nil {
		fp.Client = client
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Source{parser: fp, limit: limit, logger: logger}
}

// List fetches feedURL and returns its bookmarks, newest feed order kept.
func (s *Source) List(ctx context.Context, feedURL string) ([]Bookmark, error) {
	u, err := extract.ParseURL(feedURL)
	if err != nil {
		return nil, err
	}
	feed, err := s.parser.ParseURLWithContext(u.String(), ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFeed, err)
	}
	items := FromFeed(feed, s.limit)
	s.logger.Info("bookmark feed read", "feed", u.String(), "title", feed.Title, "bookmarks", len(items))
	return items, nil
}

// Parse reads a feed document that has already been downloaded.
func (s *Source) Parse(body string) ([]Bookmark, error) {
	feed, err := s.parser.ParseString(body)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFeed, err)
	}
	return FromFeed(feed, s.limit), nil
}

// FromFeed converts feed items into bookmarks. Items without an http(s) link
// and repeated links are skipped. limit <= 0 means no limit.
func FromFeed(feed *gofeed.Feed, limit int) []Bookmark {
	seen := make(map[string]bool)
	var out []Bookmark
	for _, item := range feed.Items {
		if limit > 0 && len(out) >= limit {
			break
		}
		link := strings.TrimSpace(item.Link)
		if link == "" && len(item.Links) > 0 {
			link = strings.TrimSpace(item.Links[0])
		}
		if _, err := extract.ParseURL(link); err != nil || seen[link] {
			continue
		}
		seen[link] = true

		b := Bookmark{
			Title: strings.TrimSpace(item.Title),
			URL:   link,
			Tags:  item.Categories,
		}
		if b.Title == "" {
			b.Title = link
		}
		switch {
		case item.PublishedParsed != nil:
			b.Added = item.PublishedParsed.UTC()
		case item.UpdatedParsed != nil:
			b.Added = item.UpdatedParsed.UTC()
		}
		out = append(out, b)
	}
	return out
}

// URLs returns the links of bs in order.
func URLs(bs []Bookmark) []string {
	urls := make([]string, len(bs))
	for i, b := range bs {
		urls[i] = b.URL
	}
	return urls
}
