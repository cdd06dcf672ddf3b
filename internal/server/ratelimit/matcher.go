package ratelimit

import "strings"

// unlimited marks endpoints exempt from throttling.
var unlimited = EndpointConfig{}

// MatchEndpoint finds the rule covering a path and method. Exact path
// matches win; rules whose path ends in "/" match any longer path under
// that prefix. Health probes and Prometheus scrapes are always exempt.
// Returns nil when only the default allowance applies.
func MatchEndpoint(path string, method string, configs []EndpointConfig) *EndpointConfig {
	if method == "GET" && (path == "/health" || path == "/metrics") {
		return &unlimited
	}

	for i := range configs {
		if configs[i].Method == method && configs[i].Path == path {
			return &configs[i]
		}
	}

	for i := range configs {
		if configs[i].Method != method || !strings.HasSuffix(configs[i].Path, "/") {
			continue
		}
		if strings.HasPrefix(path, configs[i].Path) {
			return &configs[i]
		}
	}

	return nil
}
