package service

import (
	"strings"

	"invoicewa/internal/locale"
	"invoicewa/internal/models"
)

const (
	tokenName    = "{{name}}"
	tokenAmount  = "{{amount}}"
	tokenDueDate = "{{due_date}}"
	tokenMonth   = "{{bulan}}"

	missingAmount  = "0"
	missingDueDate = "N/A"
)

// RenderMessage substitutes the recipient tokens in text. Amount, due date
// and month all derive from the recipient's latest invoice and fall back to
// "0" / "N/A" without one. Substitution is a single left-to-right pass, so
// token-shaped strings produced by one replacement are never re-expanded.
func RenderMessage(text string, client *models.Client, invoice *models.Invoice) string {
	amount := missingAmount
	dueDate := missingDueDate
	month := missingDueDate
	if invoice != nil {
		amount = locale.FormatAmount(invoice.Amount)
		if invoice.DueDate != nil {
			dueDate = locale.FormatDate(*invoice.DueDate)
			month = locale.FormatMonthYear(*invoice.DueDate)
		}
	}

	replacer := strings.NewReplacer(
		tokenName, client.DisplayName(),
		tokenAmount, amount,
		tokenDueDate, dueDate,
		tokenMonth, month,
	)
	return replacer.Replace(text)
}
