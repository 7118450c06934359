package service

import (
	"testing"
	"time"

	"invoicewa/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestRenderMessage(t *testing.T) {
	due := time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)
	client := &models.Client{ID: 1, Name: "Budi", PhoneNumber: "6281234567890"}
	invoice := &models.Invoice{ID: 1, ClientID: 1, Amount: 150000, DueDate: &due}

	tests := []struct {
		name     string
		text     string
		invoice  *models.Invoice
		expected string
	}{
		{
			name:     "all tokens",
			text:     "Hi {{name}}, pay {{amount}} by {{due_date}}",
			invoice:  invoice,
			expected: "Hi Budi, pay 150.000 by 15 Januari 2025",
		},
		{
			name:     "month token",
			text:     "Tagihan bulan {{bulan}}",
			invoice:  invoice,
			expected: "Tagihan bulan Januari 2025",
		},
		{
			name:     "no invoice uses defaults",
			text:     "{{name}}: {{amount}} due {{due_date}} ({{bulan}})",
			invoice:  nil,
			expected: "Budi: 0 due N/A (N/A)",
		},
		{
			name:     "invoice without due date",
			text:     "pay {{amount}} by {{due_date}}",
			invoice:  &models.Invoice{ID: 2, ClientID: 1, Amount: 75500.4},
			expected: "pay 75.500 by N/A",
		},
		{
			name:     "month defaults without due date",
			text:     "bulan {{bulan}}",
			invoice:  &models.Invoice{ID: 3, ClientID: 1, Amount: 50000},
			expected: "bulan N/A",
		},
		{
			name:     "no tokens leaves text unchanged",
			text:     "Selamat pagi semua",
			invoice:  invoice,
			expected: "Selamat pagi semua",
		},
		{
			name:     "empty text",
			text:     "",
			invoice:  invoice,
			expected: "",
		},
		{
			name:     "repeated token",
			text:     "{{name}} {{name}}",
			invoice:  invoice,
			expected: "Budi Budi",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RenderMessage(tt.text, client, tt.invoice)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestRenderMessageNoReExpansion(t *testing.T) {
	client := &models.Client{ID: 1, Name: "{{amount}}"}

	// A token produced by a replacement is not expanded again.
	got := RenderMessage("{{name}}", client, nil)
	assert.Equal(t, "{{amount}}", got)
}
