// Package cache stores computed layouts and rendered artifacts.
//
// # Overview
//
// The pipeline caches two stages:
//
//  1. Layout: the resolved [plot.Layout] for a dataset and its layout options
//  2. Artifact: rendered bytes for a layout and its render options
//
// Keys are content hashes, so a changed dataset or option produces a new key
// and stale entries simply expire.
//
// # Backends
//
//   - [FileCache]: one JSON file per entry under a directory, for the CLI
//   - [RedisCache]: a shared Redis instance, for the HTTP server
//   - [NullCache]: stores nothing, for --no-cache and tests
//
// [Instrument] wraps any backend and reports hits, misses and writes to the
// registered observability hooks.
//
// [plot.Layout]: github.com/matzehuels/beeswarm/pkg/plot.Layout
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value store with per-entry expiry.
type Cache interface {
	// Get returns the value for key. A missing or expired entry is a miss,
	// not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Entry lifetimes.
const (
	TTLLayout   = 7 * 24 * time.Hour
	TTLArtifact = 30 * 24 * time.Hour
)
