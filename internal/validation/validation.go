// Package validation checks user-supplied identifiers before they reach
// the store or the gateway.
package validation

import (
	"fmt"
	"strings"
	"unicode"
)

const (
	minPhoneNumberLength = 7
	maxPhoneNumberLength = 20
)

// ValidatePhoneNumber validates phone number format and length. Accepts a
// leading "+" and WhatsApp chat ID suffixes.
func ValidatePhoneNumber(phone string) error {
	if phone == "" {
		return fmt.Errorf("phone number cannot be empty")
	}

	cleaned := strings.TrimPrefix(phone, "+")
	cleaned = strings.TrimSuffix(cleaned, "@c.us")
	cleaned = strings.TrimSuffix(cleaned, "@g.us")

	if len(cleaned) < minPhoneNumberLength {
		return fmt.Errorf("phone number must be at least %d digits", minPhoneNumberLength)
	}
	if len(cleaned) > maxPhoneNumberLength {
		return fmt.Errorf("phone number too long (max %d digits)", maxPhoneNumberLength)
	}

	for _, r := range cleaned {
		if !unicode.IsDigit(r) {
			return fmt.Errorf("phone number must contain only digits")
		}
	}

	return nil
}

// ValidateSessionName validates a gateway session name.
func ValidateSessionName(session string) error {
	if session == "" {
		return fmt.Errorf("session name cannot be empty")
	}
	if len(session) > 64 {
		return fmt.Errorf("session name too long (max 64 characters)")
	}
	for _, r := range session {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '-' && r != '_' {
			return fmt.Errorf("session name may contain only letters, digits, '-' and '_'")
		}
	}
	return nil
}
