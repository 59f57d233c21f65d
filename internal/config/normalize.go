package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeFetch()
	c.normalizeEPUB()
	c.normalizeAuth()
	c.normalizeBookmarks()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	if value, ok := os.LookupEnv("LINKPUB_DATA_DIR"); ok && strings.TrimSpace(value) != "" {
		c.Paths.DataDir = value
	}
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	var err error
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.StaticDir) != "" {
		if c.Paths.StaticDir, err = expandPath(c.Paths.StaticDir); err != nil {
			return fmt.Errorf("paths.static_dir: %w", err)
		}
	}
	c.Paths.Listen = strings.TrimSpace(c.Paths.Listen)
	if c.Paths.Listen == "" {
		c.Paths.Listen = defaultListen
	}
	return nil
}

func (c *Config) normalizeFetch() {
	if c.Fetch.TimeoutSeconds <= 0 {
		c.Fetch.TimeoutSeconds = defaultFetchTimeout
	}
	if c.Fetch.DelayMillis < 0 {
		c.Fetch.DelayMillis = 0
	}
	agents := make([]string, 0, len(c.Fetch.UserAgents))
	for _, ua := range c.Fetch.UserAgents {
		if ua = strings.TrimSpace(ua); ua != "" {
			agents = append(agents, ua)
		}
	}
	if len(agents) == 0 {
		agents = append(agents, defaultUserAgents...)
	}
	c.Fetch.UserAgents = agents
	if c.Fetch.MinContentLength < 0 {
		c.Fetch.MinContentLength = 0
	}
	if c.Fetch.MaxBodyBytes <= 0 {
		c.Fetch.MaxBodyBytes = defaultMaxBodyBytes
	}
	if c.Fetch.MaxArticles <= 0 {
		c.Fetch.MaxArticles = defaultMaxArticles
	}
}

func (c *Config) normalizeEPUB() {
	c.EPUB.DefaultAuthor = strings.TrimSpace(c.EPUB.DefaultAuthor)
	if c.EPUB.DefaultAuthor == "" {
		c.EPUB.DefaultAuthor = defaultAuthor
	}
	c.EPUB.DefaultVariant = strings.ToLower(strings.TrimSpace(c.EPUB.DefaultVariant))
	if c.EPUB.DefaultVariant == "" {
		c.EPUB.DefaultVariant = defaultVariant
	}
	if c.EPUB.CoverMaxWidth <= 0 {
		c.EPUB.CoverMaxWidth = defaultCoverMaxWidth
	}
	if c.EPUB.CoverJPEGQuality <= 0 {
		c.EPUB.CoverJPEGQuality = defaultCoverJPEGQuality
	}
}

func (c *Config) normalizeAuth() {
	if value, ok := os.LookupEnv("LINKPUB_JWT_SECRET"); ok && value != "" {
		c.Auth.JWTSecret = value
	}
	if c.Auth.TokenTTLHours <= 0 {
		c.Auth.TokenTTLHours = defaultTokenTTLHours
	}
}

func (c *Config) normalizeBookmarks() {
	c.Bookmarks.FeedURL = strings.TrimSpace(c.Bookmarks.FeedURL)
	if c.Bookmarks.Limit <= 0 {
		c.Bookmarks.Limit = defaultBookmarkLimit
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
