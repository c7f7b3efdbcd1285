package config

import (
	"errors"
	"fmt"
	"slices"
)

var (
	validLogFormats = []string{"console", "json"}
	validLogLevels  = []string{"debug", "info", "warn", "error"}
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateSubtitles(); err != nil {
		return err
	}
	if err := c.validateCatalog(); err != nil {
		return err
	}
	if err := c.validatePipeline(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateSubtitles() error {
	if !isLanguageCode(c.Subtitles.Language) {
		return fmt.Errorf("subtitles.language must be a 3-letter code, got %q", c.Subtitles.Language)
	}
	if c.Subtitles.Cutoff < 0 || c.Subtitles.Cutoff > 1 {
		return errors.New("subtitles.cutoff must be between 0 and 1")
	}
	return nil
}

func (c *Config) validateCatalog() error {
	if c.Catalog.LoginAttempts < 1 {
		return errors.New("catalog.login_attempts must be at least 1")
	}
	if c.Catalog.QueryAttempts < 1 {
		return errors.New("catalog.query_attempts must be at least 1")
	}
	if c.Catalog.RetryDelaySeconds < 0 {
		return errors.New("catalog.retry_delay_seconds must be >= 0")
	}
	if c.Catalog.RequestTimeoutSeconds <= 0 {
		return errors.New("catalog.request_timeout_seconds must be positive")
	}
	if c.Catalog.MinIntervalMillis < 0 {
		return errors.New("catalog.min_interval_ms must be >= 0")
	}
	return nil
}

func (c *Config) validatePipeline() error {
	if c.Pipeline.Workers < 1 {
		return errors.New("pipeline.workers must be at least 1")
	}
	return nil
}

func (c *Config) validateLogging() error {
	if !slices.Contains(validLogFormats, c.Logging.Format) {
		return fmt.Errorf("logging.format must be one of %v, got %q", validLogFormats, c.Logging.Format)
	}
	if !slices.Contains(validLogLevels, c.Logging.Level) {
		return fmt.Errorf("logging.level must be one of %v, got %q", validLogLevels, c.Logging.Level)
	}
	if c.Logging.File && c.Paths.LogDir == "" {
		return errors.New("logging.file requires paths.log_dir")
	}
	if c.Logging.MaxSizeMB < 0 || c.Logging.MaxBackups < 0 {
		return errors.New("logging.max_size_mb and logging.max_backups must be >= 0")
	}
	return nil
}

func isLanguageCode(code string) bool {
	if len(code) != 3 {
		return false
	}
	for _, r := range code {
		if r < 'a' || r > 'z' {
			return false
		}
	}
	return true
}
