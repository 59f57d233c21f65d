package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/yuanying/linkpub/internal/config"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "linkpub",
		Short: "Turn web articles into EPUB books",
		Long: `linkpub fetches web articles, extracts their readable content and
packages them as EPUB 2 books for e-readers.

Run "linkpub convert URL..." for a one-off book or "linkpub serve" to start
the HTTP API with accounts, a per-user library and bookmark import.`,
		SilenceUsage: true,
	}

	pf := root.PersistentFlags()
	pf.String("config", "", "Config file path (default: ~/.config/linkpub/config.toml)")
	pf.String("log-level", "", "Log level: debug, info, warn, error (default: from config)")
	pf.String("log-format", "", "Log format: text, json, auto (default: from config)")
	pf.BoolP("verbose", "v", false, "Enable debug logging")

	root.AddCommand(
		newConvertCmd(),
		newServeCmd(),
		newLibraryCmd(),
		newUserCmd(),
		newBookmarksCmd(),
		newConfigCmd(),
		newInspectCmd(),
	)
	return root
}

// globalOptions are the persistent flags shared by every subcommand.
type globalOptions struct {
	ConfigPath string
	LogLevel   string
	LogFormat  string
	Verbose    bool
}

func readGlobalOptions(cmd *cobra.Command) (globalOptions, error) {
	flags := cmd.Flags()
	configPath, _ := flags.GetString("config")
	level, _ := flags.GetString("log-level")
	format, _ := flags.GetString("log-format")
	verbose, _ := flags.GetBool("verbose")

	level = strings.ToLower(strings.TrimSpace(level))
	if level != "" {
		if _, ok := parseLevel(level); !ok {
			return globalOptions{}, fmt.Errorf("invalid --log-level %q (want debug, info, warn or error)", level)
		}
	}
	format = strings.ToLower(strings.TrimSpace(format))
	if format != "" && !validFormat(format) {
		return globalOptions{}, fmt.Errorf("invalid --log-format %q (want text, json or auto)", format)
	}

	return globalOptions{
		ConfigPath: configPath,
		LogLevel:   level,
		LogFormat:  format,
		Verbose:    verbose,
	}, nil
}

// loadConfig reads the configuration and builds the logger, letting
// command-line flags override the [logging] table.
func loadConfig(cmd *cobra.Command) (*config.Config, *slog.Logger, error) {
	opts, err := readGlobalOptions(cmd)
	if err != nil {
		return nil, nil, err
	}
	cfg, path, exists, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, nil, err
	}

	level := cfg.Logging.Level
	if opts.LogLevel != "" {
		level = opts.LogLevel
	}
	if opts.Verbose {
		level = "debug"
	}
	format := cfg.Logging.Format
	if opts.LogFormat != "" {
		format = opts.LogFormat
	}

	logger := buildLogger(cmd.ErrOrStderr(), level, format)
	if exists {
		logger.Debug("config loaded", "path", path)
	} else {
		logger.Debug("no config file, using defaults", "path", path)
	}
	return cfg, logger, nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
