// Package config loads, normalizes, and validates LinkPub configuration.
//
// It supplies defaults, expands user paths (including tilde shortcuts), reads
// TOML files, and honours environment overrides such as LINKPUB_DATA_DIR and
// LINKPUB_JWT_SECRET. Both the CLI and the HTTP server obtain their settings
// through this package.
package config
