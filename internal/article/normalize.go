package article

import (
	"regexp"
	"strings"

	"github.com/google/uuid"
)

const (
	maxFilenameLength = 50
	// FallbackFilename replaces titles that sanitise to nothing.
	FallbackFilename = "untitled"
)

var (
	filenameDisallowedRe = regexp.MustCompile(`[^A-Za-z0-9 _-]`)
	whitespaceRunRe      = regexp.MustCompile(`\s+`)
)

// xmlEscaper replaces the five XML special characters. Ampersand comes first
// so already produced entities are never escaped twice.
var xmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&apos;",
)

// EscapeXML makes text safe for XML character data and attribute values.
func EscapeXML(text string) string {
	if text == "" {
		return ""
	}
	return xmlEscaper.Replace(text)
}

// SanitizeFilename turns a title into a filesystem-safe base name: characters
// outside [A-Za-z0-9 _-] are dropped, whitespace runs become a single
// underscore and the result is cut to 50 characters. Only an empty result
// falls back to FallbackFilename.
func SanitizeFilename(title string) string {
	name := filenameDisallowedRe.ReplaceAllString(title, "")
	name = whitespaceRunRe.ReplaceAllString(name, "_")
	if len(name) > maxFilenameLength {
		name = name[:maxFilenameLength]
	}
	if name == "" {
		return FallbackFilename
	}
	return name
}

// NewIdentifier returns a random UUID v4 string for dc:identifier.
func NewIdentifier() string {
	return uuid.NewString()
}
