package database

import (
	"context"
	"database/sql"
	"fmt"

	"invoicewa/internal/models"
)

// SaveMessage appends a delivery record. Records are never updated.
func (d *Database) SaveMessage(ctx context.Context, record *models.MessageRecord) error {
	encryptedText, err := d.encryptor.EncryptIfEnabled(record.Text)
	if err != nil {
		return fmt.Errorf("failed to encrypt message text: %w", err)
	}

	var templateID sql.NullInt64
	if record.TemplateID != nil {
		templateID = sql.NullInt64{Int64: *record.TemplateID, Valid: true}
	}

	return retryableDBOperation(ctx, func() error {
		res, err := d.db.ExecContext(ctx, insertMessageQuery,
			record.ScheduleID, record.DeviceID, record.ClientID,
			templateID, encryptedText, string(record.Status))
		if err != nil {
			return fmt.Errorf("failed to insert message record: %w", err)
		}
		record.ID, err = res.LastInsertId()
		return err
	}, "save message record")
}

// ListMessages returns message records, newest first.
func (d *Database) ListMessages(ctx context.Context, limit, offset int) ([]models.MessageRecord, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := d.db.QueryContext(ctx, selectMessagesQuery, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list message records: %w", err)
	}
	defer rows.Close()

	var records []models.MessageRecord
	for rows.Next() {
		var rec models.MessageRecord
		var templateID sql.NullInt64
		var encryptedText, status string

		if err := rows.Scan(&rec.ID, &rec.ScheduleID, &rec.DeviceID, &rec.ClientID,
			&templateID, &encryptedText, &status, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan message record: %w", err)
		}

		rec.Text, err = d.encryptor.DecryptIfEnabled(encryptedText)
		if err != nil {
			return nil, fmt.Errorf("failed to decrypt message text: %w", err)
		}
		rec.Status = models.DeliveryStatus(status)
		if templateID.Valid {
			rec.TemplateID = &templateID.Int64
		}

		records = append(records, rec)
	}
	return records, rows.Err()
}

// CleanupOldMessages removes message records older than retentionDays.
func (d *Database) CleanupOldMessages(ctx context.Context, retentionDays int) error {
	_, err := d.db.ExecContext(ctx, deleteOldMessagesQuery, retentionDays)
	if err != nil {
		return fmt.Errorf("failed to cleanup old message records: %w", err)
	}
	return nil
}
