package detector

import "strings"

// Sentinels recorded when the client gave us nothing usable.
const (
	UnknownIP        = "unknown"
	UnknownUserAgent = "unknown"
)

// DetectBrowser classifies a user agent with ordered substring rules,
// first match wins. Edge user agents that also advertise "chrome" are
// counted as Chrome on purpose; dashboards depend on the stable ordering.
func DetectBrowser(userAgent string) string {
	ua := strings.ToLower(userAgent)

	switch {
	case strings.Contains(ua, "chrome"):
		return "Chrome"
	case strings.Contains(ua, "firefox"):
		return "Firefox"
	case strings.Contains(ua, "safari"):
		return "Safari"
	case strings.Contains(ua, "edge"):
		return "Edge"
	default:
		return "Other"
	}
}

// GetClientIP resolves the caller's address, preferring proxy headers over
// the raw remote address.
func GetClientIP(remoteAddr, xForwardedFor, xRealIP string) string {
	if xForwardedFor != "" {
		ips := strings.Split(xForwardedFor, ",")
		if len(ips) > 0 && strings.TrimSpace(ips[0]) != "" {
			return strings.TrimSpace(ips[0])
		}
	}

	if xRealIP != "" {
		return xRealIP
	}

	if idx := strings.LastIndex(remoteAddr, ":"); idx != -1 {
		remoteAddr = remoteAddr[:idx]
	}

	if remoteAddr == "" {
		return UnknownIP
	}

	return remoteAddr
}
