package article

import (
	"errors"
	"testing"
)

func titles(c Collection) []string {
	out := make([]string, len(c.Articles))
	for i, a := range c.Articles {
		out[i] = a.Title
	}
	return out
}

func sampleCollection() Collection {
	return Collection{
		Articles: []Article{
			{Title: "A", URL: "https://example.com/a"},
			{Title: "B", URL: "https://example.com/b"},
			{Title: "C", URL: "https://example.com/c"},
			{Title: "D", URL: "https://example.com/d"},
		},
	}
}

func TestArticleFallbacks(t *testing.T) {
	var a Article
	if got := a.ResolvedTitle(); got != "Untitled Article" {
		t.Errorf("ResolvedTitle() = %q", got)
	}
	if got := a.ResolvedSiteName(); got != "unknown" {
		t.Errorf("ResolvedSiteName() = %q", got)
	}

	a = Article{Title: "  Real  ", SiteName: "Example"}
	if got := a.ResolvedTitle(); got != "Real" {
		t.Errorf("ResolvedTitle() = %q, want %q", got, "Real")
	}
	if got := a.ResolvedSiteName(); got != "Example" {
		t.Errorf("ResolvedSiteName() = %q", got)
	}
}

func TestCollectionDefaults(t *testing.T) {
	c := Collection{Articles: []Article{{Title: "First"}, {}}}
	if got := c.ResolvedTitle(); got != "Article Collection" {
		t.Errorf("ResolvedTitle() = %q", got)
	}
	if got := c.ResolvedAuthor(); got != "LinkPub" {
		t.Errorf("ResolvedAuthor() = %q", got)
	}
	want := "1. First\n2. Untitled Article"
	if got := c.Description(); got != want {
		t.Errorf("Description() = %q, want %q", got, want)
	}

	c.Summary = "My picks"
	if got := c.Description(); got != "My picks" {
		t.Errorf("Description() = %q, want user summary", got)
	}
}

func TestSingle(t *testing.T) {
	a := Article{Title: "Solo", Excerpt: " short ", URL: "https://example.com"}
	c := Single(a, "")
	if c.Title != "Solo" || c.Summary != "short" || c.Len() != 1 {
		t.Fatalf("Single() = %+v", c)
	}
	if c.ResolvedAuthor() != DefaultAuthor {
		t.Errorf("ResolvedAuthor() = %q", c.ResolvedAuthor())
	}
}

func TestCollectionAdd_RejectsExactDuplicate(t *testing.T) {
	var c Collection
	if err := c.Add(Article{URL: "https://example.com/x"}); err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	err := c.Add(Article{URL: "https://example.com/x"})
	if !errors.Is(err, ErrDuplicateURL) {
		t.Fatalf("Add() duplicate error = %v, want ErrDuplicateURL", err)
	}
	// trailing slash is a different string and therefore accepted
	if err := c.Add(Article{URL: "https://example.com/x/"}); err != nil {
		t.Fatalf("Add() trailing slash error = %v", err)
	}
	if c.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", c.Len())
	}
}

func TestCollectionMove(t *testing.T) {
	tests := []struct {
		name     string
		from, to int
		want     []string
	}{
		{name: "forward", from: 0, to: 2, want: []string{"B", "C", "A", "D"}},
		{name: "backward", from: 3, to: 1, want: []string{"A", "D", "B", "C"}},
		{name: "same", from: 2, to: 2, want: []string{"A", "B", "C", "D"}},
		{name: "to end", from: 0, to: 3, want: []string{"B", "C", "D", "A"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := sampleCollection()
			if err := c.Move(tt.from, tt.to); err != nil {
				t.Fatalf("Move() error = %v", err)
			}
			got := titles(c)
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Fatalf("Move(%d,%d) = %v, want %v", tt.from, tt.to, got, tt.want)
				}
			}
		})
	}

	c := sampleCollection()
	if err := c.Move(0, 4); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("Move() out of range error = %v", err)
	}
	if err := c.Move(-1, 0); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("Move() negative error = %v", err)
	}
}

func TestCollectionRemove(t *testing.T) {
	c := sampleCollection()
	removed, err := c.Remove(1)
	if err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if removed.Title != "B" {
		t.Errorf("removed = %q, want B", removed.Title)
	}
	got := titles(c)
	if len(got) != 3 || got[0] != "A" || got[1] != "C" || got[2] != "D" {
		t.Errorf("after Remove = %v", got)
	}
	if _, err := c.Remove(3); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("Remove() out of range error = %v", err)
	}
}

func TestTotalWords(t *testing.T) {
	c := Collection{Articles: []Article{{WordCount: 100}, {}, {WordCount: 151}}}
	if got := c.TotalWords(); got != 251 {
		t.Errorf("TotalWords() = %d, want 251", got)
	}
}
