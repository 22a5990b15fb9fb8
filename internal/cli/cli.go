// Package cli implements the beeswarm command-line interface.
//
// # Commands
//
//   - layout: resolve a swarm layout from a dataset and write it as JSON
//   - render: render a dataset or a saved layout to SVG, PNG or JSON
//   - inspect: browse the resolved lanes interactively
//   - serve: run the HTTP API
//   - cache: manage the local layout and artifact cache
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging, which includes
// the per-iteration shrink notices of the shrink overflow policy.
package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/beeswarm/pkg/cache"
	"github.com/matzehuels/beeswarm/pkg/config"
	"github.com/matzehuels/beeswarm/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "beeswarm"

	envRedisURL = "BEESWARM_REDIS_URL"
	envMongoURI = "BEESWARM_MONGO_URI"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
	verbose    bool
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner backed by the local file cache.
func (c *CLI) newRunner(noCache bool) (*pipeline.Runner, error) {
	cc, err := newCache(noCache)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(cache.Instrument(cc), nil, c.Logger), nil
}

func newCache(noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	dir, err := cacheDir()
	if err != nil {
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// serverCache picks the shared Redis cache when BEESWARM_REDIS_URL is set and
// the local file cache otherwise. Redis keys are scoped so the instance can be
// shared with other applications.
func serverCache(ctx context.Context) (cache.Cache, cache.Keyer, error) {
	if url := os.Getenv(envRedisURL); url != "" {
		rc, err := cache.NewRedisCache(ctx, url)
		if err != nil {
			return nil, nil, err
		}
		return rc, cache.NewScopedKeyer(nil, appName+":"), nil
	}
	fc, err := newCache(false)
	return fc, nil, err
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/beeswarm/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// =============================================================================
// Options Helpers
// =============================================================================

// prepareOptions layers the --config file beneath the explicit flags, attaches
// the logger and fills in defaults.
func (c *CLI) prepareOptions(opts *pipeline.Options) error {
	if err := c.applyConfig(opts); err != nil {
		return err
	}
	opts.Logger = c.Logger
	return opts.ValidateAndSetDefaults()
}

func (c *CLI) applyConfig(opts *pipeline.Options) error {
	if c.configPath == "" {
		return nil
	}
	f, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	f.Apply(opts)
	c.Logger.Debug("applied config", "path", c.configPath)
	return nil
}

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	for i, p := range parts {
		parts[i] = strings.ToLower(strings.TrimSpace(p))
	}
	return parts
}
