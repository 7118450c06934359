// Package privacy masks client identifiers before they reach logs.
package privacy

import "strings"

const visibleDigits = 4

// MaskPhoneNumber hides all but the last 4 digits of a phone number.
// "+6281234567890" -> "+**********7890".
func MaskPhoneNumber(phone string) string {
	if phone == "" {
		return ""
	}

	prefix := ""
	digits := phone
	if strings.HasPrefix(phone, "+") {
		prefix = "+"
		digits = phone[1:]
	}

	if len(digits) <= visibleDigits {
		return prefix + strings.Repeat("*", len(digits))
	}
	return prefix + strings.Repeat("*", len(digits)-visibleDigits) + digits[len(digits)-visibleDigits:]
}

// MaskChatID hides the number part of a WhatsApp chat ID while keeping
// the domain suffix. "6281234567890@c.us" -> "*********7890@c.us".
func MaskChatID(chatID string) string {
	if chatID == "" {
		return ""
	}

	at := strings.IndexByte(chatID, '@')
	if at < 0 {
		return MaskPhoneNumber(chatID)
	}
	return MaskPhoneNumber(chatID[:at]) + chatID[at:]
}
