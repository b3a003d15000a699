package validation

import (
	"fmt"
	"net/mail"
	"strings"
)

// NormalizeEmail trims and lowercases an address so allow-list checks are case-insensitive
func NormalizeEmail(email string) string {
	return strings.TrimSpace(strings.ToLower(email))
}

// ValidateEmail validates email format and length
// Uses Go's built-in net/mail parser which follows RFC 5322
func ValidateEmail(email string) error {
	if email == "" {
		return invalid("email address is required")
	}

	// RFC 5321: total max 254 characters
	if len(email) > 254 {
		return invalid("email address is too long (max 254 characters)")
	}

	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return invalid("invalid email address format: %q", email)
	}

	return nil
}

// ValidateRecipients normalizes, validates and de-duplicates a recipient list
func ValidateRecipients(emails []string, max int) ([]string, error) {
	if len(emails) > max {
		return nil, invalid("too many recipients (max %d)", max)
	}

	seen := make(map[string]bool, len(emails))
	out := make([]string, 0, len(emails))
	for _, e := range emails {
		e = NormalizeEmail(e)
		err := ValidateEmail(e)
		if err != nil {
			return nil, fmt.Errorf("recipient: %w", err)
		}
		if seen[e] {
			continue
		}
		seen[e] = true
		out = append(out, e)
	}

	return out, nil
}
