package config

import "time"

// RateLimitConfig tunes the token bucket guarding the /v1/auth endpoints.
// Those routes do bcrypt work and send mail, so the defaults are tight:
// a burst of 10 attempts per client, refilling 5 every 30 seconds.
type RateLimitConfig struct {
	Enabled        bool
	Capacity       int
	RefillTokens   int
	RefillInterval time.Duration
	TTL            time.Duration // idle bucket expiry in Redis
	KeyStrategy    string        // "ip", "ip_route" or "user"
	Prefix         string
	Debug          bool
}

// LoadRateLimitConfig reads AUTH_RATE_* environment variables, clamping
// nonsense values back to the defaults.
func LoadRateLimitConfig() RateLimitConfig {
	cfg := RateLimitConfig{
		Enabled:        boolOr("AUTH_RATE_ENABLED", true),
		Capacity:       intOr("AUTH_RATE_CAPACITY", 10),
		RefillTokens:   intOr("AUTH_RATE_REFILL_TOKENS", 5),
		RefillInterval: time.Duration(intOr("AUTH_RATE_REFILL_SEC", 30)) * time.Second,
		TTL:            time.Duration(intOr("AUTH_RATE_TTL_SEC", 3600)) * time.Second,
		KeyStrategy:    getenv("AUTH_RATE_KEY_STRATEGY", "ip"),
		Prefix:         getenv("AUTH_RATE_PREFIX", "authrl"),
		Debug:          boolOr("AUTH_RATE_DEBUG", false),
	}
	if cfg.Capacity < 1 {
		cfg.Capacity = 10
	}
	if cfg.RefillTokens < 1 {
		cfg.RefillTokens = 5
	}
	if cfg.RefillInterval <= 0 {
		cfg.RefillInterval = 30 * time.Second
	}
	if cfg.TTL <= 0 {
		cfg.TTL = time.Hour
	}
	return cfg
}
