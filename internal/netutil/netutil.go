package netutil

import (
	"net/netip"
	"strings"
)

const MaxUserAgentLength = 512

// NormalizeIP reduces a remote address that may carry a port or zone
// ("192.0.2.4:1234", "[2001:db8::1]:443", "fe80::1%eth0") to its
// canonical IP form. Unparseable input comes back trimmed but otherwise
// untouched so the audit row still records something.
func NormalizeIP(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return raw
	}
	if ap, err := netip.ParseAddrPort(raw); err == nil {
		return ap.Addr().WithZone("").String()
	}
	if addr, err := netip.ParseAddr(raw); err == nil {
		return addr.WithZone("").String()
	}
	// Bracketed IPv6 with a junk port segment.
	if strings.HasPrefix(raw, "[") {
		if end := strings.LastIndex(raw, "]"); end > 0 {
			if addr, err := netip.ParseAddr(raw[1:end]); err == nil {
				return addr.WithZone("").String()
			}
		}
	}
	if i := strings.LastIndex(raw, ":"); i > 0 {
		if addr, err := netip.ParseAddr(raw[:i]); err == nil {
			return addr.WithZone("").String()
		}
	}
	return raw
}

// TruncateUserAgent caps the stored user agent at MaxUserAgentLength
// runes without splitting a multi-byte character.
func TruncateUserAgent(ua string) string {
	count := 0
	for i := range ua {
		if count == MaxUserAgentLength {
			return ua[:i]
		}
		count++
	}
	return ua
}
