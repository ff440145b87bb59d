package mw

import (
	"net/http"
	"strings"

	"github.com/MrSnakeDoc/mrunner/internal/logger"
)

// EnforceHost allows requests only if r.Host matches one of the allowed hosts.
// It keeps pages served from other origins from reaching the loopback API
// through DNS rebinding. Patterns like "*.example.com" are supported.
// If allowedHosts is empty, it acts as a passthrough.
func EnforceHost(allowedHosts []string, log logger.Logger) func(http.Handler) http.Handler {
	if len(allowedHosts) == 0 {
		log.Debug("EnforceHost: empty allowedHosts, passthrough mode")
		return func(next http.Handler) http.Handler { return next }
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			for _, pattern := range allowedHosts {
				if matchHost(r.Host, pattern) {
					next.ServeHTTP(w, r)
					return
				}
			}

			log.Debug("EnforceHost: rejected", logger.String("host", r.Host))
			w.WriteHeader(http.StatusMisdirectedRequest)
		})
	}
}

// matchHost compares case-insensitively. A pattern without a port matches
// the host on any port.
func matchHost(host, pattern string) bool {
	host, pattern = strings.ToLower(host), strings.ToLower(pattern)
	if host == pattern {
		return true
	}
	if !hasPort(pattern) {
		if hasPort(host) {
			host = host[:strings.LastIndexByte(host, ':')]
		}
		if host == pattern {
			return true
		}
	}

	// Wildcard match: *.example.com matches sub.example.com
	if strings.HasPrefix(pattern, "*.") {
		return strings.HasSuffix(host, pattern[1:])
	}
	return false
}

func hasPort(host string) bool {
	return strings.LastIndexByte(host, ':') > strings.LastIndexByte(host, ']') &&
		(strings.HasPrefix(host, "[") || strings.Count(host, ":") == 1)
}
