package permkit

import (
	"errors"
	"strings"
	"time"
)

// Config carries all tunables for an [Engine]. Zero value is not usable;
// start from [DefaultConfig] and override.
//
// Config instances are intended to be configured during initialization and
// then treated as immutable.
type Config struct {
	Resolution ResolutionConfig
	Cache      CacheConfig
	Audit      AuditConfig
	Metrics    MetricsConfig
}

/*
====================================
RESOLUTION CONFIG
====================================
*/

// ResolutionConfig controls how unresolvable references are handled.
type ResolutionConfig struct {
	// Strict makes [Engine.Mask] report resolution misses through metrics
	// and audit. It never changes the returned mask value; callers that
	// need hard failures use [Engine.MaskStrict].
	Strict bool
}

/*
====================================
CACHE CONFIG
====================================
*/

// CacheConfig controls the optional Redis-backed computed-mask cache. The
// cache is wired only when both Enabled is set and a Redis client is supplied
// via [Builder.WithRedis].
type CacheConfig struct {
	Enabled   bool
	KeyPrefix string
	TTL       time.Duration
	// MaxRefsPerKey caps how many references a single cache key may cover.
	// Longer reference lists are computed directly; hashing them buys less
	// than the Redis round-trip costs.
	MaxRefsPerKey int
}

/*
====================================
AUDIT CONFIG
====================================
*/

// AuditConfig controls the async audit dispatcher.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	// DropIfFull makes Emit non-blocking: events beyond the buffer are
	// counted as dropped instead of applying backpressure to callers.
	DropIfFull bool
}

/*
====================================
METRICS CONFIG
====================================
*/

// MetricsConfig controls the atomic counter metrics.
type MetricsConfig struct {
	Enabled bool
}

// DefaultConfig returns the baseline configuration: lenient resolution,
// cache and audit disabled, metrics enabled.
func DefaultConfig() Config {
	return Config{
		Cache: CacheConfig{
			KeyPrefix:     "pk",
			TTL:           5 * time.Minute,
			MaxRefsPerKey: 32,
		},
		Audit: AuditConfig{
			BufferSize: 256,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}
}

func validateConfig(cfg Config) error {
	if cfg.Cache.Enabled {
		if strings.TrimSpace(cfg.Cache.KeyPrefix) == "" {
			return errors.New("cache key prefix cannot be empty")
		}
		if strings.ContainsAny(cfg.Cache.KeyPrefix, ": ") {
			return errors.New("cache key prefix cannot contain ':' or spaces")
		}
		if cfg.Cache.TTL <= 0 {
			return errors.New("cache TTL must be positive")
		}
		if cfg.Cache.MaxRefsPerKey <= 0 {
			return errors.New("cache MaxRefsPerKey must be positive")
		}
	}
	if cfg.Audit.Enabled && cfg.Audit.BufferSize <= 0 {
		return errors.New("audit buffer size must be positive")
	}
	return nil
}
