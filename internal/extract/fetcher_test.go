package extract

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestParseURL(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{name: "https", input: "https://example.com/post"},
		{name: "http with spaces", input: "  http://example.com/a?b=c  "},
		{name: "ftp", input: "ftp://example.com/file", wantErr: true},
		{name: "relative", input: "/just/a/path", wantErr: true},
		{name: "empty", input: "", wantErr: true},
		{name: "no host", input: "https:///path", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseURL(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidURL) {
					t.Fatalf("ParseURL(%q) error = %v, want ErrInvalidURL", tt.input, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseURL(%q) error = %v", tt.input, err)
			}
		})
	}
}

func TestFetch_UserAgentFallback(t *testing.T) {
	var attempts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		if r.UserAgent() != "Good/1.0" {
			http.Error(w, "blocked", http.StatusForbidden)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte("<html><body>ok</body></html>"))
	}))
	defer srv.Close()

	f := NewFetcher(FetcherOptions{
		UserAgents: []string{"Bad/1.0", "Worse/1.0", "Good/1.0", "Unused/1.0"},
		Logger:     discardLogger(),
	})
	page, err := f.Fetch(context.Background(), srv.URL+"/post")
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if got := attempts.Load(); got != 3 {
		t.Errorf("attempts = %d, want 3", got)
	}
	if !strings.Contains(string(page.Body), "ok") {
		t.Errorf("Body = %q", page.Body)
	}
	if page.URL.Path != "/post" {
		t.Errorf("URL = %s", page.URL)
	}
}

func TestFetch_AllAgentsFail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	f := NewFetcher(FetcherOptions{UserAgents: []string{"A", "B"}, Logger: discardLogger()})
	_, err := f.Fetch(context.Background(), srv.URL)
	if !errors.Is(err, ErrFetch) {
		t.Fatalf("Fetch() error = %v, want ErrFetch", err)
	}
	var statusErr *StatusError
	if !errors.As(err, &statusErr) || statusErr.Status != http.StatusNotFound {
		t.Fatalf("Fetch() error = %v, want StatusError 404", err)
	}
}

func TestFetch_BodyLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(strings.Repeat("x", 4096)))
	}))
	defer srv.Close()

	f := NewFetcher(FetcherOptions{MaxBodyBytes: 1024, UserAgents: []string{"A", "B"}, Logger: discardLogger()})
	_, err := f.Fetch(context.Background(), srv.URL)
	if !errors.Is(err, ErrBodyTooBig) {
		t.Fatalf("Fetch() error = %v, want ErrBodyTooBig", err)
	}
}

func TestFetch_DecodesCharset(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=iso-8859-1")
		_, _ = w.Write([]byte("<html><body>caf\xe9</body></html>"))
	}))
	defer srv.Close()

	f := NewFetcher(FetcherOptions{Logger: discardLogger()})
	page, err := f.Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if !strings.Contains(string(page.Body), "café") {
		t.Errorf("Body = %q, want decoded café", page.Body)
	}
}

func TestFetch_RejectsNonHTML(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/pdf")
		_, _ = w.Write([]byte("%PDF-1.4"))
	}))
	defer srv.Close()

	f := NewFetcher(FetcherOptions{Logger: discardLogger()})
	if _, err := f.Fetch(context.Background(), srv.URL); !errors.Is(err, ErrUnsupported) {
		t.Fatalf("Fetch() error = %v, want ErrUnsupported", err)
	}
}

func TestFetch_RespectsRobots(t *testing.T) {
	var robotsHits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			robotsHits.Add(1)
			_, _ = w.Write([]byte("User-agent: *\nDisallow: /private\n"))
			return
		}
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<html><body>public</body></html>"))
	}))
	defer srv.Close()

	f := NewFetcher(FetcherOptions{RespectRobots: true, Logger: discardLogger()})
	if _, err := f.Fetch(context.Background(), srv.URL+"/private/post"); !errors.Is(err, ErrDisallowed) {
		t.Fatalf("Fetch(private) error = %v, want ErrDisallowed", err)
	}
	if _, err := f.Fetch(context.Background(), srv.URL+"/public/post"); err != nil {
		t.Fatalf("Fetch(public) error = %v", err)
	}
	if got := robotsHits.Load(); got != 1 {
		t.Errorf("robots.txt fetched %d times, want 1", got)
	}
}

func TestFetchBytes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write([]byte{0x89, 'P', 'N', 'G'})
	}))
	defer srv.Close()

	f := NewFetcher(FetcherOptions{Logger: discardLogger()})
	data, err := f.FetchBytes(context.Background(), srv.URL+"/img.png")
	if err != nil {
		t.Fatalf("FetchBytes() error = %v", err)
	}
	if len(data) != 4 || data[0] != 0x89 {
		t.Errorf("FetchBytes() = %v", data)
	}
}

func TestFetch_ContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("late"))
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	f := NewFetcher(FetcherOptions{UserAgents: []string{"A", "B"}, Logger: discardLogger()})
	if _, err := f.Fetch(ctx, srv.URL); !errors.Is(err, context.Canceled) {
		t.Fatalf("Fetch() error = %v, want context.Canceled", err)
	}
}

func TestRobotsCache_ConcurrentMissesShareOneFetch(t *testing.T) {
	var robotsHits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		robotsHits.Add(1)
		time.Sleep(50 * time.Millisecond)
		_, _ = w.Write([]byte("User-agent: LinkPub\nDisallow: /drafts\n"))
	}))
	defer srv.Close()

	f := NewFetcher(FetcherOptions{RespectRobots: true, Logger: discardLogger()})
	u, err := url.Parse(srv.URL + "/drafts/1")
	if err != nil {
		t.Fatal(err)
	}

	var wg sync.WaitGroup
	results := make([]bool, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			allowed, err := f.robots.allowed(context.Background(), f, u)
			if err != nil {
				t.Errorf("allowed() error = %v", err)
			}
			results[i] = allowed
		}(i)
	}
	wg.Wait()

	for i, allowed := range results {
		if allowed {
			t.Errorf("results[%d] = allowed, want disallowed", i)
		}
	}
	if got := robotsHits.Load(); got != 1 {
		t.Errorf("robots.txt fetched %d times, want 1", got)
	}
}
