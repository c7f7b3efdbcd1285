package testsupport

import (
	"path/filepath"
	"testing"

	"subfetch/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// Catalog retries run without delay and without request spacing.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.DataDir = filepath.Join(base, "data")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Catalog.RetryDelaySeconds = 0
	cfgVal.Catalog.MinIntervalMillis = 0

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	if err := builder.cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}
	return builder.cfg
}

// WithCatalogEndpoint points the catalog client at a test server.
func WithCatalogEndpoint(url string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Catalog.Endpoint = url
	}
}

// WithSubfolder sets the destination subfolder.
func WithSubfolder(name string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Subtitles.Subfolder = name
	}
}

// BaseDir returns the temp directory backing the config, for placing fixtures.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.DataDir)
}
