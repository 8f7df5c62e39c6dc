package common

import (
	"encoding/base64"
	"fmt"
	"strings"
	"unicode"
)

// NormalizeBase64 converts URL-safe base64 to the standard alphabet and strips
// whitespace and padding.
// Example: NormalizeBase64("AQ-_\n") = "AQ+/"
func NormalizeBase64(s string) string {
	s = strings.Map(func(r rune) rune {
		switch {
		case r == '-':
			return '+'
		case r == '_':
			return '/'
		case unicode.IsSpace(r):
			return -1
		}
		return r
	}, s)
	return strings.TrimRight(s, "=")
}

// DecodeCredentialID decodes a credential id stored in either base64 alphabet,
// with or without padding.
func DecodeCredentialID(id string) ([]byte, error) {
	normalized := NormalizeBase64(id)
	if normalized == "" {
		return nil, fmt.Errorf("empty credential id")
	}
	raw, err := base64.RawStdEncoding.DecodeString(normalized)
	if err != nil {
		return nil, fmt.Errorf("invalid credential id: %w", err)
	}
	return raw, nil
}

// EncodeCredentialID returns the URL-safe unpadded form authenticators report.
func EncodeCredentialID(raw []byte) string {
	return base64.RawURLEncoding.EncodeToString(raw)
}

// ShortAddress abbreviates an address for logs: 0x1234…abcd
func ShortAddress(address string) string {
	if len(address) <= 12 {
		return address
	}
	return address[:6] + "…" + address[len(address)-4:]
}
