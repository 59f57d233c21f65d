package config

const (
	defaultDataDir           = "~/.local/share/linkpub"
	defaultListen            = "127.0.0.1:3000"
	defaultFetchTimeout      = 30
	defaultFetchDelayMillis  = 1000
	defaultMinContentLength  = 100
	defaultMaxBodyBytes      = 10 << 20
	defaultMaxArticles       = 50
	defaultAuthor            = "LinkPub"
	defaultVariant           = "plain"
	defaultCoverMaxWidth     = 600
	defaultCoverJPEGQuality  = 90
	defaultTokenTTLHours     = 24 * 7
	defaultAllowRegistration = true
	defaultBookmarkLimit     = 50
	defaultLogFormat         = "auto"
	defaultLogLevel          = "info"
)

// defaultUserAgents are tried in order until a fetch succeeds.
var defaultUserAgents = []string{
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:125.0) Gecko/20100101 Firefox/125.0",
	"Mozilla/5.0 (iPhone; CPU iPhone OS 17_4 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.4 Mobile/15E148 Safari/604.1",
	"LinkPub/1.0 (+https://github.com/yuanying/linkpub)",
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			Listen:  defaultListen,
		},
		Fetch: Fetch{
			TimeoutSeconds:   defaultFetchTimeout,
			DelayMillis:      defaultFetchDelayMillis,
			UserAgents:       append([]string(nil), defaultUserAgents...),
			RespectRobots:    false,
			MinContentLength: defaultMinContentLength,
			MaxBodyBytes:     defaultMaxBodyBytes,
			MaxArticles:      defaultMaxArticles,
		},
		EPUB: EPUB{
			DefaultAuthor:    defaultAuthor,
			DefaultVariant:   defaultVariant,
			CoverMaxWidth:    defaultCoverMaxWidth,
			CoverJPEGQuality: defaultCoverJPEGQuality,
		},
		Auth: Auth{
			TokenTTLHours:     defaultTokenTTLHours,
			AllowRegistration: defaultAllowRegistration,
		},
		Bookmarks: Bookmarks{
			Limit: defaultBookmarkLimit,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
