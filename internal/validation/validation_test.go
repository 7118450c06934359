package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidatePhoneNumber(t *testing.T) {
	tests := []struct {
		name    string
		phone   string
		wantErr bool
	}{
		{"empty", "", true},
		{"plain", "6281234567890", false},
		{"with plus", "+6281234567890", false},
		{"chat id suffix", "6281234567890@c.us", false},
		{"group suffix", "123456789@g.us", false},
		{"too short", "12345", true},
		{"too long", strings.Repeat("9", 21), true},
		{"letters", "62812abc890", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePhoneNumber(tt.phone)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateSessionName(t *testing.T) {
	assert.NoError(t, ValidateSessionName("billing-1"))
	assert.NoError(t, ValidateSessionName("warnet_utama"))
	assert.Error(t, ValidateSessionName(""))
	assert.Error(t, ValidateSessionName("bad session"))
	assert.Error(t, ValidateSessionName(strings.Repeat("a", 65)))
}
