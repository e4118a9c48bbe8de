package validation

import (
	"errors"
	"net/netip"
	"strings"
)

var (
	ErrIPEmpty   = errors.New("IP address cannot be empty")
	ErrIPInvalid = errors.New("not a valid IPv4 or IPv6 address")
)

// IsValidIP reports whether text is a syntactically valid IPv4 or IPv6
// address. Surrounding whitespace is ignored.
func IsValidIP(text string) bool {
	_, err := parseIP(text)
	return err == nil
}

// CanonicalIP returns the one textual form of the address in text. IPv6
// addresses are formatted per RFC 5952, so "2606:4700:4700:0:0:0:0:1111" and
// "2606:4700:4700::1111" both yield the latter.
func CanonicalIP(text string) (string, error) {
	addr, err := parseIP(text)
	if err != nil {
		return "", err
	}
	return addr.String(), nil
}

func parseIP(text string) (netip.Addr, error) {
	value := strings.TrimSpace(text)
	if value == "" {
		return netip.Addr{}, ErrIPEmpty
	}
	addr, err := netip.ParseAddr(value)
	if err != nil {
		return netip.Addr{}, ErrIPInvalid
	}
	return addr, nil
}

// IsIPv4 reports whether text is a plain IPv4 address.
func IsIPv4(text string) bool {
	addr, err := parseIP(text)
	return err == nil && addr.Is4()
}
