package config

import (
	"errors"
	"fmt"
)

const minJWTSecretLength = 16

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateEPUB(); err != nil {
		return err
	}
	if err := c.validateFetch(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

// ValidateServer adds the checks that only matter when serving the HTTP API.
func (c *Config) ValidateServer() error {
	if c.Auth.JWTSecret == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = "~/.config/linkpub/config.toml"
		}
		return fmt.Errorf("auth.jwt_secret is required. Set LINKPUB_JWT_SECRET env var or edit %s (create with 'linkpub config init')", defaultPath)
	}
	if len(c.Auth.JWTSecret) < minJWTSecretLength {
		return fmt.Errorf("auth.jwt_secret must be at least %d characters", minJWTSecretLength)
	}
	return nil
}

func (c *Config) validateEPUB() error {
	switch c.EPUB.DefaultVariant {
	case "plain", "cover", "with-cover":
	default:
		return fmt.Errorf("epub.default_variant must be plain or cover, got %q", c.EPUB.DefaultVariant)
	}
	if c.EPUB.CoverJPEGQuality > 100 {
		return errors.New("epub.cover_jpeg_quality must be between 1 and 100")
	}
	return nil
}

func (c *Config) validateFetch() error {
	if c.Fetch.MaxBodyBytes < 1024 {
		return errors.New("fetch.max_body_bytes must be at least 1024")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "text", "json", "auto":
	default:
		return fmt.Errorf("logging.format must be text, json or auto, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn or error, got %q", c.Logging.Level)
	}
	return nil
}
