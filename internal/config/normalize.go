package config

import (
	"fmt"
	"os"
	"strings"

	"subfetch/internal/textutil"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeSubtitles()
	c.normalizeCatalog()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeSubtitles() {
	if value, ok := os.LookupEnv("SUBFETCH_LANGUAGE"); ok && strings.TrimSpace(value) != "" {
		c.Subtitles.Language = value
	}
	c.Subtitles.Language = strings.ToLower(strings.TrimSpace(c.Subtitles.Language))
	if c.Subtitles.Language == "" {
		c.Subtitles.Language = defaultLanguage
	}
	c.Subtitles.Subfolder = textutil.SanitizePathSegment(c.Subtitles.Subfolder)
	c.Subtitles.VideoExtensions = normalizeExtensions(c.Subtitles.VideoExtensions, defaultVideoExtensions)
	c.Subtitles.SubtitleExtensions = normalizeExtensions(c.Subtitles.SubtitleExtensions, defaultSubtitleExtensions)
}

func (c *Config) normalizeCatalog() {
	c.Catalog.Endpoint = strings.TrimSpace(c.Catalog.Endpoint)
	if c.Catalog.Endpoint == "" {
		c.Catalog.Endpoint = defaultCatalogEndpoint
	}
	c.Catalog.UserAgent = strings.TrimSpace(c.Catalog.UserAgent)
	if c.Catalog.UserAgent == "" {
		c.Catalog.UserAgent = defaultCatalogUserAgent
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

// normalizeExtensions lowercases, adds a leading dot, and drops duplicates.
// An empty list falls back to the defaults.
func normalizeExtensions(values, fallback []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, value := range values {
		ext := strings.ToLower(strings.TrimSpace(value))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		if _, ok := seen[ext]; ok {
			continue
		}
		seen[ext] = struct{}{}
		out = append(out, ext)
	}
	if len(out) == 0 {
		return append([]string(nil), fallback...)
	}
	return out
}
