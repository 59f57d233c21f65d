package article

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// DefaultTitle is used when an article arrives without a title.
	DefaultTitle = "Untitled Article"
	// DefaultSiteName is used when neither site metadata nor a hostname is known.
	DefaultSiteName = "unknown"
	// DefaultCollectionTitle is used for collections built without a title.
	DefaultCollectionTitle = "Article Collection"
	// DefaultAuthor is the creator recorded when none is supplied.
	DefaultAuthor = "LinkPub"
)

var (
	ErrDuplicateURL = errors.New("article already in collection")
	ErrOutOfRange   = errors.New("article index out of range")
)

// Article is one converted source document.
type Article struct {
	Title     string `json:"title"`
	Content   string `json:"content"` // sanitised HTML fragment, embedded verbatim
	Excerpt   string `json:"excerpt,omitempty"`
	SiteName  string `json:"siteName"`
	URL       string `json:"url"`
	WordCount int    `json:"wordCount,omitempty"`
	Byline    string `json:"byline,omitempty"`
	ImageURL  string `json:"imageUrl,omitempty"` // lead image, used for cover art
}

// ResolvedTitle returns the title with the "Untitled Article" fallback applied.
func (a Article) ResolvedTitle() string {
	if t := strings.TrimSpace(a.Title); t != "" {
		return t
	}
	return DefaultTitle
}

// ResolvedSiteName returns the site name with the "unknown" fallback applied.
func (a Article) ResolvedSiteName() string {
	if s := strings.TrimSpace(a.SiteName); s != "" {
		return s
	}
	return DefaultSiteName
}

// Collection is an ordered sequence of articles plus book metadata.
// Order determines chapter numbering, spine order and NCX playOrder.
type Collection struct {
	Title    string    `json:"title"`
	Author   string    `json:"author"`
	Summary  string    `json:"description,omitempty"` // user supplied; see Description
	Articles []Article `json:"articles"`
}

// Single wraps one article as a one-article collection. The article title
// becomes the book title and the excerpt its description.
func Single(a Article, author string) Collection {
	return Collection{
		Title:    a.ResolvedTitle(),
		Author:   author,
		Summary:  strings.TrimSpace(a.Excerpt),
		Articles: []Article{a},
	}
}

// ResolvedTitle returns the collection title or "Article Collection".
func (c Collection) ResolvedTitle() string {
	if t := strings.TrimSpace(c.Title); t != "" {
		return t
	}
	return DefaultCollectionTitle
}

// ResolvedAuthor returns the author or "LinkPub".
func (c Collection) ResolvedAuthor() string {
	if a := strings.TrimSpace(c.Author); a != "" {
		return a
	}
	return DefaultAuthor
}

// Description returns the user supplied summary, or one "{n}. {title}" line
// per article when none was given.
func (c Collection) Description() string {
	if s := strings.TrimSpace(c.Summary); s != "" {
		return s
	}
	lines := make([]string, len(c.Articles))
	for i, a := range c.Articles {
		lines[i] = fmt.Sprintf("%d. %s", i+1, a.ResolvedTitle())
	}
	return strings.Join(lines, "\n")
}

// Len reports the number of articles.
func (c Collection) Len() int {
	return len(c.Articles)
}

// Add appends an article. URLs are compared as exact strings, so
// "https://a/x" and "https://a/x/" are distinct.
func (c *Collection) Add(a Article) error {
	if c.Contains(a.URL) {
		return fmt.Errorf("%w: %s", ErrDuplicateURL, a.URL)
	}
	c.Articles = append(c.Articles, a)
	return nil
}

// Contains reports whether an article with exactly this URL is present.
func (c Collection) Contains(url string) bool {
	if url == "" {
		return false
	}
	for _, a := range c.Articles {
		if a.URL == url {
			return true
		}
	}
	return false
}

// Remove deletes the article at index i.
func (c *Collection) Remove(i int) (Article, error) {
	if i < 0 || i >= len(c.Articles) {
		return Article{}, fmt.Errorf("%w: %d", ErrOutOfRange, i)
	}
	removed := c.Articles[i]
	c.Articles = append(c.Articles[:i], c.Articles[i+1:]...)
	return removed, nil
}

// Move relocates the article at index from to index to, shifting the
// articles in between.
func (c *Collection) Move(from, to int) error {
	n := len(c.Articles)
	if from < 0 || from >= n {
		return fmt.Errorf("%w: from=%d", ErrOutOfRange, from)
	}
	if to < 0 || to >= n {
		return fmt.Errorf("%w: to=%d", ErrOutOfRange, to)
	}
	if from == to {
		return nil
	}
	moved := c.Articles[from]
	if from < to {
		copy(c.Articles[from:to], c.Articles[from+1:to+1])
	} else {
		copy(c.Articles[to+1:from+1], c.Articles[to:from])
	}
	c.Articles[to] = moved
	return nil
}

// TotalWords sums the word counts of all articles.
func (c Collection) TotalWords() int {
	total := 0
	for _, a := range c.Articles {
		if a.WordCount > 0 {
			total += a.WordCount
		}
	}
	return total
}
