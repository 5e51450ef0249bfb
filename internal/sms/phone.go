// Package sms provides the outbound text-message channel: phone number
// normalization and a batched gateway client.
package sms

import (
	"fmt"
	"strings"
)

// NormalizePhone converts a Philippine phone number in any common format to
// international +63 form. Numbers that cannot be normalized exclude their
// recipient from a batch but never fail it.
func NormalizePhone(raw string) (string, error) {
	if raw == "" {
		return "", fmt.Errorf("empty phone number")
	}

	var b strings.Builder
	for i, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		} else if r == '+' && i == 0 {
			b.WriteRune(r)
		}
	}
	cleaned := b.String()

	switch {
	case strings.HasPrefix(cleaned, "+"):
		return cleaned, nil
	case strings.HasPrefix(cleaned, "0"):
		return "+63" + cleaned[1:], nil
	case strings.HasPrefix(cleaned, "63"):
		return "+" + cleaned, nil
	case len(cleaned) == 10 && strings.HasPrefix(cleaned, "9"):
		return "+63" + cleaned, nil
	case len(cleaned) >= 10:
		return "+63" + cleaned, nil
	}
	return "", fmt.Errorf("unrecognized phone number format: %q", raw)
}
