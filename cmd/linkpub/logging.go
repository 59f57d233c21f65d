package main

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
)

func parseLevel(level string) (slog.Level, bool) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, true
	case "info", "":
		return slog.LevelInfo, true
	case "warn", "warning":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	default:
		return slog.LevelInfo, false
	}
}

func validFormat(format string) bool {
	switch format {
	case "text", "json", "auto":
		return true
	}
	return false
}

// buildLogger returns a slog logger writing to w. "auto" picks text when w is
// a terminal and JSON otherwise.
func buildLogger(w io.Writer, level, format string) *slog.Logger {
	lvl, _ := parseLevel(level)
	handlerOpts := &slog.HandlerOptions{Level: lvl}

	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json":
		return slog.New(slog.NewJSONHandler(w, handlerOpts))
	case "text":
		return slog.New(slog.NewTextHandler(w, handlerOpts))
	default:
		if isTerminal(w) {
			return slog.New(slog.NewTextHandler(w, handlerOpts))
		}
		return slog.New(slog.NewJSONHandler(w, handlerOpts))
	}
}

func isTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
