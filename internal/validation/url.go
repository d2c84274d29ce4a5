package validation

import (
	"fmt"
	"net"
	"net/url"
	"strings"
	"unicode"
)

// LinkValidator checks URLs before they are handed to an external opener or
// fetched for article content.
type LinkValidator struct {
	// AllowLocalhost permits loopback hosts, used for local development
	AllowLocalhost bool
	// AllowPrivateIPs permits RFC 1918 and link-local addresses
	AllowPrivateIPs bool
	// MaxLength is the maximum allowed URL length
	MaxLength int
}

// NewLinkValidator creates a validator with secure defaults
func NewLinkValidator() *LinkValidator {
	return &LinkValidator{
		AllowLocalhost:  false,
		AllowPrivateIPs: false,
		MaxLength:       2048,
	}
}

// NewPermissiveLinkValidator allows loopback and private addresses.
func NewPermissiveLinkValidator() *LinkValidator {
	return &LinkValidator{
		AllowLocalhost:  true,
		AllowPrivateIPs: true,
		MaxLength:       2048,
	}
}

// Validate returns the normalized form of a story link. Only absolute
// http and https URLs are accepted; nothing is prefixed or guessed.
func (v *LinkValidator) Validate(input string) (string, error) {
	input = strings.TrimSpace(input)

	if input == "" {
		return "", fmt.Errorf("URL cannot be empty")
	}
	if len(input) > v.MaxLength {
		return "", fmt.Errorf("URL too long (max %d characters)", v.MaxLength)
	}
	if strings.IndexFunc(input, unicode.IsControl) >= 0 {
		return "", fmt.Errorf("URL contains control characters")
	}
	if strings.ContainsAny(input, "<>\"'` ") {
		return "", fmt.Errorf("URL contains invalid characters")
	}

	u, err := url.Parse(input)
	if err != nil {
		return "", fmt.Errorf("invalid URL format: %w", err)
	}

	switch strings.ToLower(u.Scheme) {
	case "http", "https":
	case "":
		return "", fmt.Errorf("URL must be absolute")
	default:
		return "", fmt.Errorf("URL scheme %q not allowed", u.Scheme)
	}

	if u.Host == "" {
		return "", fmt.Errorf("URL must have a valid hostname")
	}
	if u.User != nil {
		return "", fmt.Errorf("URL must not carry credentials")
	}

	if err := v.validateHost(u.Hostname()); err != nil {
		return "", err
	}

	if strings.Contains(strings.ToLower(u.RawQuery), "javascript:") {
		return "", fmt.Errorf("suspicious query parameters detected")
	}

	return u.String(), nil
}

func (v *LinkValidator) validateHost(hostname string) error {
	if hostname == "" {
		return fmt.Errorf("URL must have a valid hostname")
	}

	if !v.AllowLocalhost && isLocalhost(hostname) {
		return fmt.Errorf("localhost URLs are not permitted")
	}

	if !v.AllowPrivateIPs {
		if ip := net.ParseIP(hostname); ip != nil && isPrivateIP(ip) {
			return fmt.Errorf("private IP addresses are not permitted")
		}
	}

	if ip := net.ParseIP(hostname); ip != nil && ip.IsUnspecified() {
		return fmt.Errorf("unspecified address is not a valid host")
	}

	return nil
}

func isLocalhost(hostname string) bool {
	hostname = strings.ToLower(hostname)
	if hostname == "localhost" || strings.HasSuffix(hostname, ".localhost") {
		return true
	}
	ip := net.ParseIP(hostname)
	return ip != nil && ip.IsLoopback()
}

func isPrivateIP(ip net.IP) bool {
	return ip.IsPrivate() || ip.IsLinkLocalUnicast() || ip.IsLoopback()
}
