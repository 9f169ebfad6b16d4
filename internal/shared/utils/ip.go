package utils

import (
	"net"
	"strings"

	"github.com/gin-gonic/gin"
)

// ExtractClientIP resolves the client address, preferring proxy headers
// over the raw remote address. The result feeds the payment gateway's
// vnp_IpAddr parameter, which expects IPv4.
func ExtractClientIP(c *gin.Context) string {
	// X-Forwarded-For may carry a chain; the first entry is the client
	if xff := c.GetHeader("X-Forwarded-For"); xff != "" {
		parts := strings.Split(xff, ",")
		ip := strings.TrimSpace(parts[0])
		if net.ParseIP(ip) != nil {
			return normalizeIP(ip)
		}
	}

	if xri := c.GetHeader("X-Real-IP"); xri != "" {
		if net.ParseIP(xri) != nil {
			return normalizeIP(xri)
		}
	}

	ip, _, err := net.SplitHostPort(c.Request.RemoteAddr)
	if err != nil {
		ip = c.Request.RemoteAddr
	}
	return normalizeIP(ip)
}

// normalizeIP maps the IPv6 loopback to IPv4, which the gateway requires
func normalizeIP(ip string) string {
	if ip == "::1" {
		return "127.0.0.1"
	}
	return ip
}

// IsPrivateIP reports whether the address belongs to a private range
func IsPrivateIP(ip string) bool {
	parsed := net.ParseIP(ip)
	if parsed == nil {
		return false
	}
	return parsed.IsPrivate() || parsed.IsLoopback()
}
