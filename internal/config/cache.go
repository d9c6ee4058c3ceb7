package config

import (
	"strings"
	"time"
)

// CacheConfig controls the Redis response cache used for availability
// lookups.  Only GET responses up to MaxBodyBytes are stored.
type CacheConfig struct {
	Enabled      bool
	TTL          time.Duration
	Prefix       string
	MaxBodyBytes int
}

func LoadCacheConfig() CacheConfig {
	return CacheConfig{
		Enabled:      envBool("CACHE_ENABLED", true),
		TTL:          envDur("CACHE_TTL", 30*time.Second),
		Prefix:       envStr("CACHE_PREFIX", "cache"),
		MaxBodyBytes: envInt("CACHE_MAX_BODY_BYTES", 1<<20),
	}
}

// IdempotencyConfig controls replay of reservation creation requests that
// carry an Idempotency-Key header.
type IdempotencyConfig struct {
	Enabled bool
	Header  string
	TTL     time.Duration
	Prefix  string
	// Methods guarded by the middleware, upper-cased.
	Methods []string
}

func LoadIdempotencyConfig() IdempotencyConfig {
	methods := envList("IDEMPOTENCY_METHODS", "POST")
	for i, m := range methods {
		methods[i] = strings.ToUpper(m)
	}
	return IdempotencyConfig{
		Enabled: envBool("IDEMPOTENCY_ENABLED", true),
		Header:  envStr("IDEMPOTENCY_HEADER", "Idempotency-Key"),
		TTL:     envDur("IDEMPOTENCY_TTL", 24*time.Hour),
		Prefix:  envStr("IDEMPOTENCY_PREFIX", "idem"),
		Methods: methods,
	}
}
