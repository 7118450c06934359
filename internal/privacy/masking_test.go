package privacy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMaskPhoneNumber(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"+6281234567890", "+*********7890"},
		{"6281234567890", "*********7890"},
		{"123", "***"},
		{"+12", "+**"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, MaskPhoneNumber(tt.in), tt.in)
	}
}

func TestMaskChatID(t *testing.T) {
	assert.Equal(t, "*********7890@c.us", MaskChatID("6281234567890@c.us"))
	assert.Equal(t, "****5678@g.us", MaskChatID("12345678@g.us"))
	assert.Equal(t, "*********7890", MaskChatID("6281234567890"))
	assert.Equal(t, "", MaskChatID(""))
}
