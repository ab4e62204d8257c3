package ratelimit

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// EndpointConfig represents rate limiting configuration for a specific endpoint.
type EndpointConfig struct {
	Path   string        // Endpoint path pattern (supports prefix matching)
	Method string        // HTTP method (GET, POST, etc.)
	Limit  int           // Maximum requests per window
	Window time.Duration // Time window
	Burst  int           // Burst capacity (defaults to Limit if 0)
}

// LoadConfig loads rate limiting configuration from environment variables.
func LoadConfig() *Config {
	enabled := getEnvBool("RATE_LIMIT_ENABLED", true)
	if !enabled {
		return &Config{
			Enabled: false,
		}
	}

	defaultLimit := getEnvInt("RATE_LIMIT_DEFAULT_LIMIT", 1000)
	defaultWindow := getEnvDuration("RATE_LIMIT_DEFAULT_WINDOW", time.Minute)
	cleanupInterval := getEnvDuration("RATE_LIMIT_CLEANUP_INTERVAL", 5*time.Minute)
	analyzePerHour := getEnvInt("RATE_LIMIT_ANALYZE_PER_HOUR", DefaultAnalyzePerHour)

	whitelist := parseIPList(getEnvString("RATE_LIMIT_WHITELIST", ""))
	blacklist := parseIPList(getEnvString("RATE_LIMIT_BLACKLIST", ""))

	return &Config{
		Enabled:         enabled,
		DefaultLimit:    defaultLimit,
		DefaultWindow:   defaultWindow,
		CleanupInterval: cleanupInterval,
		Whitelist:       whitelist,
		Blacklist:       blacklist,
		EndpointConfigs: endpointConfigs(analyzePerHour),
	}
}

// DefaultAnalyzePerHour is the per-client hourly budget for AI-backed endpoints.
const DefaultAnalyzePerHour = 30

// DefaultEndpointConfigs returns the default endpoint-specific configurations.
func DefaultEndpointConfigs() []EndpointConfig {
	return endpointConfigs(DefaultAnalyzePerHour)
}

func endpointConfigs(analyzePerHour int) []EndpointConfig {
	return []EndpointConfig{
		// Tier 1: AI calls (strictest limits); each request makes two model calls
		{Path: "/analyze", Method: "POST", Limit: analyzePerHour, Window: time.Hour, Burst: 3},
		{Path: "/analyze/stream", Method: "POST", Limit: analyzePerHour, Window: time.Hour, Burst: 3},

		// Tier 2: Outbound fetches and uploads
		{Path: "/jobs/fetch", Method: "POST", Limit: 60, Window: time.Hour, Burst: 5},
		{Path: "/session/cv/upload", Method: "POST", Limit: 30, Window: time.Minute, Burst: 5},

		// Tier 3: Session writes
		{Path: "/sessions", Method: "POST", Limit: 30, Window: time.Minute, Burst: 10},
		{Path: "/session/", Method: "PUT", Limit: 100, Window: time.Minute, Burst: 10},

		// Tier 4: Reads - handled by default limit
		// Health checks and preflights are unlimited; see MatchEndpoint
	}
}

// getEnvString gets an environment variable as a string with a default value.
func getEnvString(key string, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt gets an environment variable as an integer with a default value.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvBool gets an environment variable as a boolean with a default value.
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// getEnvDuration gets an environment variable as a duration with a default value.
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// parseIPList parses a comma-separated list of IP addresses into a map.
func parseIPList(list string) map[string]bool {
	result := make(map[string]bool)
	if list == "" {
		return result
	}

	ips := strings.Split(list, ",")
	for _, ip := range ips {
		ip = strings.TrimSpace(ip)
		if ip != "" {
			result[ip] = true
		}
	}

	return result
}

