package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains storage locations and the HTTP bind address.
type Paths struct {
	DataDir   string `toml:"data_dir"`
	Listen    string `toml:"listen"`
	StaticDir string `toml:"static_dir"`
}

// Fetch controls how article pages are downloaded.
type Fetch struct {
	TimeoutSeconds   int      `toml:"timeout_seconds"`
	DelayMillis      int      `toml:"delay_ms"`
	UserAgents       []string `toml:"user_agents"`
	RespectRobots    bool     `toml:"respect_robots"`
	MinContentLength int      `toml:"min_content_length"`
	MaxBodyBytes     int64    `toml:"max_body_bytes"`
	MaxArticles      int      `toml:"max_articles"`
}

// EPUB contains book generation defaults.
type EPUB struct {
	DefaultAuthor    string `toml:"default_author"`
	DefaultVariant   string `toml:"default_variant"`
	CoverMaxWidth    int    `toml:"cover_max_width"`
	CoverJPEGQuality int    `toml:"cover_jpeg_quality"`
}

// Auth contains session token and registration settings.
type Auth struct {
	JWTSecret         string `toml:"jwt_secret"`
	TokenTTLHours     int    `toml:"token_ttl_hours"`
	AllowRegistration bool   `toml:"allow_registration"`
	CookieSecure      bool   `toml:"cookie_secure"`
}

// Bookmarks points at an RSS/Atom feed of saved links.
type Bookmarks struct {
	FeedURL string `toml:"feed_url"`
	Limit   int    `toml:"limit"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for LinkPub.
//
// Configuration sections by subsystem:
//   - Paths: data directory, listen address, static front end
//   - Fetch: article download behaviour
//   - EPUB: book generation defaults
//   - Auth: JWT sessions and registration
//   - Bookmarks: bookmark feed import
//   - Logging: log format and level
type Config struct {
	Paths     Paths     `toml:"paths"`
	Fetch     Fetch     `toml:"fetch"`
	EPUB      EPUB      `toml:"epub"`
	Auth      Auth      `toml:"auth"`
	Bookmarks Bookmarks `toml:"bookmarks"`
	Logging   Logging   `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/linkpub/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and environment overrides applied.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("linkpub.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the data and library directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.DataDir, c.LibraryDir()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// LibraryDir is the root of the per-user EPUB libraries.
func (c *Config) LibraryDir() string {
	return filepath.Join(c.Paths.DataDir, "library")
}

// UsersFile is the JSON file holding registered accounts.
func (c *Config) UsersFile() string {
	return filepath.Join(c.Paths.DataDir, "users.json")
}

// FetchTimeout returns the per-request download timeout.
func (c *Config) FetchTimeout() time.Duration {
	return time.Duration(c.Fetch.TimeoutSeconds) * time.Second
}

// FetchDelay returns the pause between consecutive fetches.
func (c *Config) FetchDelay() time.Duration {
	return time.Duration(c.Fetch.DelayMillis) * time.Millisecond
}

// TokenTTL returns the lifetime of issued session tokens.
func (c *Config) TokenTTL() time.Duration {
	return time.Duration(c.Auth.TokenTTLHours) * time.Hour
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o600); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
