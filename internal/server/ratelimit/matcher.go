package ratelimit

import (
	"net/http"
	"strings"
)

// unlimited is returned for requests that never consume tokens.
var unlimited = EndpointConfig{}

// MatchEndpoint picks the configuration for a request.
// An exact path wins; otherwise the longest configured prefix ending in "/" is used.
// Health checks and CORS preflights are unlimited. Returns nil when nothing matches.
func MatchEndpoint(path string, method string, configs []EndpointConfig) *EndpointConfig {
	if method == http.MethodOptions || (path == "/health" && method == http.MethodGet) {
		u := unlimited
		return &u
	}

	var best *EndpointConfig
	for i := range configs {
		c := &configs[i]
		if c.Method != method {
			continue
		}
		if c.Path == path {
			return c
		}
		if strings.HasSuffix(c.Path, "/") && strings.HasPrefix(path, c.Path) {
			if best == nil || len(c.Path) > len(best.Path) {
				best = c
			}
		}
	}
	return best
}
