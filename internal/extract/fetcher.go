package extract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/html/charset"
)

const (
	defaultTimeout      = 30 * time.Second
	defaultMaxBodyBytes = 10 << 20
	defaultUserAgent    = "LinkPub/1.0"
)

// FetcherOptions configures a Fetcher. Zero values fall back to defaults.
type FetcherOptions struct {
	Timeout       time.Duration
	Delay         time.Duration
	UserAgents    []string
	MaxBodyBytes  int64
	RespectRobots bool
	Client        *http.Client
	Logger        *slog.Logger
}

// Page is a downloaded document decoded to UTF-8.
type Page struct {
	URL         *url.URL
	ContentType string
	Body        []byte
}

// Fetcher downloads article pages.
type Fetcher struct {
	client        *http.Client
	userAgents    []string
	maxBodyBytes  int64
	respectRobots bool
	limiter       *HostLimiter
	robots        *robotsCache
	logger        *slog.Logger
}

func NewFetcher(opts FetcherOptions) *Fetcher {
	client := opts.Client
	if client == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		client = &http.Client{Timeout: timeout}
	}
	agents := opts.UserAgents
	if len(agents) == 0 {
		agents = []string{defaultUserAgent}
	}
	maxBody := opts.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = defaultMaxBodyBytes
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Fetcher{
		client:        client,
		userAgents:    agents,
		maxBodyBytes:  maxBody,
		respectRobots: opts.RespectRobots,
		limiter:       NewHostLimiter(opts.Delay),
		robots:        newRobotsCache(),
		logger:        logger,
	}
}

// ParseURL accepts absolute http and https URLs only.
func ParseURL(rawURL string) (*url.URL, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("%w: scheme must be http or https: %q", ErrInvalidURL, rawURL)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("%w: missing host: %q", ErrInvalidURL, rawURL)
	}
	return u, nil
}

// Fetch downloads an HTML page. Each configured user agent is tried in order
// until one yields a 2xx response.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*Page, error) {
	u, err := ParseURL(rawURL)
	if err != nil {
		return nil, err
	}

	if f.respectRobots {
		allowed, err := f.robots.allowed(ctx, f, u)
		if err != nil {
			f.logger.Debug("robots.txt unavailable", "host", u.Host, "error", err)
		}
		if !allowed {
			return nil, fmt.Errorf("%w: %s", ErrDisallowed, u)
		}
	}

	var lastErr error
	for i, ua := range f.userAgents {
		if err := f.limiter.Wait(ctx, u.String()); err != nil {
			return nil, err
		}

		page, err := f.get(ctx, u, ua)
		if err == nil {
			if i > 0 {
				f.logger.Info("fetched with fallback user agent", "url", u.String(), "attempt", i+1)
			}
			return f.decode(page)
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if errors.Is(err, ErrBodyTooBig) {
			return nil, fmt.Errorf("%w: %w", ErrFetch, err)
		}
		f.logger.Debug("fetch attempt failed", "url", u.String(), "attempt", i+1, "error", err)
		lastErr = err
	}

	return nil, fmt.Errorf("%w: %s after %d attempts: %w", ErrFetch, u, len(f.userAgents), lastErr)
}

// FetchBytes downloads a resource (for example a cover image) without any
// content decoding, using the first user agent only.
func (f *Fetcher) FetchBytes(ctx context.Context, rawURL string) ([]byte, error) {
	u, err := ParseURL(rawURL)
	if err != nil {
		return nil, err
	}
	if err := f.limiter.Wait(ctx, u.String()); err != nil {
		return nil, err
	}
	page, err := f.get(ctx, u, f.userAgents[0])
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetch, err)
	}
	return page.Body, nil
}

func (f *Fetcher) get(ctx context.Context, u *url.URL, userAgent string) (*Page, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{URL: u.String(), Status: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBodyBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if int64(len(body)) > f.maxBodyBytes {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrBodyTooBig, f.maxBodyBytes)
	}

	final := u
	if resp.Request != nil && resp.Request.URL != nil {
		final = resp.Request.URL
	}
	return &Page{
		URL:         final,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        body,
	}, nil
}

// decode converts the page body to UTF-8 using the Content-Type header and
// any <meta charset> declaration.
func (f *Fetcher) decode(page *Page) (*Page, error) {
	if page.ContentType != "" {
		mediaType, _, err := mime.ParseMediaType(page.ContentType)
		if err == nil && !isHTMLMediaType(mediaType) {
			return nil, fmt.Errorf("%w: %s", ErrUnsupported, mediaType)
		}
	}
	r, err := charset.NewReader(bytes.NewReader(page.Body), page.ContentType)
	if err != nil {
		return nil, fmt.Errorf("charset: %w", err)
	}
	decoded, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("charset: %w", err)
	}
	page.Body = decoded
	return page, nil
}

func isHTMLMediaType(mediaType string) bool {
	switch mediaType {
	case "text/html", "application/xhtml+xml", "text/plain", "application/xml", "text/xml":
		return true
	}
	return false
}
