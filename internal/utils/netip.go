package utils

import (
	"net"
	"net/http"
	"net/netip"
	"strings"
)

// hostOnly strips the port and IPv6 brackets: "ip:port", "[v6]:port",
// "[v6]" and "ip" all yield the bare address.
func hostOnly(s string) string {
	s = strings.TrimSpace(s)
	if h, _, err := net.SplitHostPort(s); err == nil {
		return h
	}
	return strings.TrimSuffix(strings.TrimPrefix(s, "["), "]")
}

// ClientIP resolves the client IP. The launcher API is loopback only, so
// forwarding headers count only with trustProxy (left-most X-Forwarded-For
// entry first, then X-Real-IP). Otherwise RemoteAddr is used.
func ClientIP(r *http.Request, trustProxy bool) string {
	if trustProxy {
		xff, _, _ := strings.Cut(r.Header.Get("X-Forwarded-For"), ",")
		if ip := hostOnly(xff); ip != "" {
			return ip
		}
		if ip := hostOnly(r.Header.Get("X-Real-IP")); ip != "" {
			return ip
		}
	}
	return hostOnly(r.RemoteAddr)
}

// IPMatcher matches addresses against a list of single IPs and prefixes.
// A single IP is stored as its full-length prefix.
type IPMatcher struct {
	prefixes []netip.Prefix
	invalid  []string
}

// NewIPMatcher parses list. Entries that are neither an IP nor a CIDR are
// kept aside, see Invalid.
func NewIPMatcher(list []string) *IPMatcher {
	m := &IPMatcher{}
	for _, raw := range list {
		s := strings.TrimSpace(raw)
		if s == "" {
			continue
		}
		if p, err := netip.ParsePrefix(s); err == nil {
			m.prefixes = append(m.prefixes, p.Masked())
			continue
		}
		if a, err := netip.ParseAddr(s); err == nil {
			a = a.Unmap()
			m.prefixes = append(m.prefixes, netip.PrefixFrom(a, a.BitLen()))
			continue
		}
		m.invalid = append(m.invalid, s)
	}
	return m
}

// Invalid returns the entries NewIPMatcher could not parse.
func (m *IPMatcher) Invalid() []string {
	return m.invalid
}

func (m *IPMatcher) IsEmpty() bool {
	return len(m.prefixes) == 0
}

// Allow reports whether ip is covered. IPv4-mapped IPv6 addresses match
// their IPv4 entries; zones are ignored.
func (m *IPMatcher) Allow(ip string) bool {
	a, err := netip.ParseAddr(hostOnly(ip))
	if err != nil {
		return false
	}
	a = a.Unmap().WithZone("")
	for _, p := range m.prefixes {
		if p.Contains(a) {
			return true
		}
	}
	return false
}
