package config

import "time"

// CacheConfig controls the Redis response cache in front of the public menu
// endpoint.  The menu is read-heavy and changes only when an admin edits it,
// so a short TTL keeps guests fast without serving stale prices for long.
type CacheConfig struct {
	Enabled      bool
	TTL          time.Duration
	KeyStrategy  string // "route" or "route_query"
	Prefix       string
	MaxBodyBytes int
	Methods      map[string]bool
}

// LoadCacheConfig reads MENU_CACHE_* environment variables.  Only GET is
// ever cached; the defaults suit a menu page that must reflect edits within
// a minute.
func LoadCacheConfig() CacheConfig {
	ttl := time.Duration(intOr("MENU_CACHE_TTL_SEC", 60)) * time.Second
	if ttl <= 0 {
		ttl = 60 * time.Second
	}
	maxBody := intOr("MENU_CACHE_MAX_BODY_BYTES", 1<<20)
	if maxBody < 0 {
		maxBody = 0
	}
	return CacheConfig{
		Enabled:      boolOr("MENU_CACHE_ENABLED", true),
		TTL:          ttl,
		KeyStrategy:  getenv("MENU_CACHE_KEY_STRATEGY", "route_query"),
		Prefix:       getenv("MENU_CACHE_PREFIX", "menu"),
		MaxBodyBytes: maxBody,
		Methods:      map[string]bool{"GET": true},
	}
}
