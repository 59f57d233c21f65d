package bookmarks

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
)

const rssFeed = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>My Bookmarks</title>
    <link>https://bookmarks.example.com/</link>
    <item>
      <title>Go Concurrency Patterns</title>
      <link>https://go.dev/blog/pipelines</link>
      <pubDate>Mon, 02 Mar 2026 10:00:00 GMT</pubDate>
      <category>go</category>
    </item>
    <item>
      <title>Duplicate</title>
      <link>https://go.dev/blog/pipelines</link>
    </item>
    <item>
      <title>Not a web link</title>
      <link>mailto:someone@example.com</link>
    </item>
    <item>
      <link>https://example.com/untitled</link>
    </item>
  </channel>
</rss>`

const atomFeed = `<?xml version="1.0" encoding="utf-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <title>Saved</title>
  <entry>
    <title>First</title>
    <link href="https://example.com/1"/>
    <updated>2026-01-05T08:00:00Z</updated>
  </entry>
  <entry>
    <title>Second</title>
    <link href="https://example.com/2"/>
  </entry>
</feed>`

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestParse_RSS(t *testing.T) {
	s := NewSource(nil, 0, testLogger())
	got, err := s.Parse(rssFeed)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2: %+v", len(got), got)
	}
	if got[0].Title != "Go Concurrency Patterns" || got[0].URL != "https://go.dev/blog/pipelines" {
		t.Errorf("got[0] = %+v", got[0])
	}
	if got[0].Added.IsZero() || got[0].Added.Year() != 2026 {
		t.Errorf("Added = %v", got[0].Added)
	}
	if len(got[0].Tags) != 1 || got[0].Tags[0] != "go" {
		t.Errorf("Tags = %v", got[0].Tags)
	}
	if got[1].Title != "https://example.com/untitled" {
		t.Errorf("untitled item title = %q, want its URL", got[1].Title)
	}
}

func TestParse_AtomWithLimit(t *testing.T) {
	s := NewSource(nil, 1, testLogger())
	got, err := s.Parse(atomFeed)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(got) != 1 || got[0].URL != "https://example.com/1" {
		t.Fatalf("got = %+v", got)
	}
	if got[0].Added.Month() != 1 {
		t.Errorf("Added = %v, want updated date", got[0].Added)
	}
}

func TestParse_Invalid(t *testing.T) {
	s := NewSource(nil, 0, testLogger())
	if _, err := s.Parse("this is not a feed"); !errors.Is(err, ErrFeed) {
		t.Fatalf("Parse() error = %v, want ErrFeed", err)
	}
}

func TestList_FetchesFeed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/atom+xml")
		_, _ = w.Write([]byte(atomFeed))
	}))
	defer srv.Close()

	s := NewSource(srv.Client(), 0, testLogger())
	got, err := s.List(context.Background(), srv.URL+"/feed")
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	urls := URLs(got)
	if len(urls) != 2 || urls[1] != "https://example.com/2" {
		t.Errorf("URLs() = %v", urls)
	}
}

func TestList_RejectsBadURL(t *testing.T) {
	s := NewSource(nil, 0, testLogger())
	if _, err := s.List(context.Background(), "file:///etc/passwd"); err == nil {
		t.Fatal("List() error = nil for non-http URL")
	}
}
