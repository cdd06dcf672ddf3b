package ratelimit

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// EndpointConfig is a throttling rule for one endpoint. A Path ending in
// "/" matches every longer path under that prefix. Burst is the bucket
// capacity and falls back to Limit when zero.
type EndpointConfig struct {
	Path   string
	Method string
	Limit  int
	Window time.Duration
	Burst  int
}

// LoadConfig assembles the limiter configuration from RATE_LIMIT_*
// environment variables, with the built-in endpoint rules attached.
func LoadConfig() *Config {
	return &Config{
		Enabled:         envBool("RATE_LIMIT_ENABLED", true),
		DefaultLimit:    envInt("RATE_LIMIT_DEFAULT_LIMIT", 1000),
		DefaultWindow:   envDuration("RATE_LIMIT_DEFAULT_WINDOW", time.Minute),
		CleanupInterval: envDuration("RATE_LIMIT_CLEANUP_INTERVAL", 5*time.Minute),
		Whitelist:       splitIPs(os.Getenv("RATE_LIMIT_WHITELIST")),
		Blacklist:       splitIPs(os.Getenv("RATE_LIMIT_BLACKLIST")),
		EndpointConfigs: DefaultEndpointConfigs(),
	}
}

// DefaultEndpointConfigs returns the built-in per-endpoint rules. Full
// pipeline runs get the tightest allowance, single NIM proxies a
// moderate one, and token issue stays slow as a brute-force guard.
// Reads fall under the default allowance; health and metrics are exempt
// in the matcher.
func DefaultEndpointConfigs() []EndpointConfig {
	return []EndpointConfig{
		{Path: "/run", Method: "POST", Limit: 10, Window: time.Hour, Burst: 2},
		{Path: "/run/stream", Method: "POST", Limit: 10, Window: time.Hour, Burst: 2},

		{Path: "/molecules/generate", Method: "POST", Limit: 60, Window: time.Hour, Burst: 5},
		{Path: "/structures/predict", Method: "POST", Limit: 60, Window: time.Hour, Burst: 5},
		{Path: "/chat", Method: "POST", Limit: 120, Window: time.Hour, Burst: 10},

		{Path: "/auth/token", Method: "POST", Limit: 10, Window: time.Minute, Burst: 5},
	}
}

func envInt(key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}

func envBool(key string, fallback bool) bool {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return fallback
	}
	return v
}

func envDuration(key string, fallback time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}
	return d
}

// splitIPs turns a comma-separated address list into a lookup set.
func splitIPs(list string) map[string]bool {
	set := make(map[string]bool)
	for _, ip := range strings.Split(list, ",") {
		if ip = strings.TrimSpace(ip); ip != "" {
			set[ip] = true
		}
	}
	return set
}
