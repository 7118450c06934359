package database

// Schedule queries
const (
	insertScheduleQuery = `
		INSERT INTO schedules (name, body, template_id, device_id, frequency, next_run)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	selectScheduleQuery = `
		SELECT id, name, body, template_id, device_id, frequency, next_run, created_at, updated_at
		FROM schedules
		WHERE id = ?
	`

	selectSchedulesQuery = `
		SELECT id, name, body, template_id, device_id, frequency, next_run, created_at, updated_at
		FROM schedules
		ORDER BY id
	`

	selectDueSchedulesQuery = `
		SELECT id, name, body, template_id, device_id, frequency, next_run, created_at, updated_at
		FROM schedules
		WHERE next_run <= ?
		ORDER BY next_run
	`

	updateScheduleNextRunQuery = `
		UPDATE schedules
		SET next_run = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`

	deleteScheduleQuery = `DELETE FROM schedules WHERE id = ?`

	insertScheduleRecipientQuery = `
		INSERT OR IGNORE INTO schedule_recipients (schedule_id, client_id) VALUES (?, ?)
	`

	deleteScheduleRecipientsQuery = `DELETE FROM schedule_recipients WHERE schedule_id = ?`

	selectScheduleRecipientsQuery = `
		SELECT c.id, c.name, c.phone_number, c.created_at, c.updated_at
		FROM clients c
		JOIN schedule_recipients sr ON sr.client_id = c.id
		WHERE sr.schedule_id = ?
		ORDER BY c.id
	`
)

// Client queries
const (
	insertClientQuery = `INSERT INTO clients (name, phone_number) VALUES (?, ?)`

	selectClientQuery = `
		SELECT id, name, phone_number, created_at, updated_at
		FROM clients
		WHERE id = ?
	`

	selectClientsQuery = `
		SELECT id, name, phone_number, created_at, updated_at
		FROM clients
		ORDER BY id
	`
)

// Invoice queries
const (
	insertInvoiceQuery = `
		INSERT INTO invoices (client_id, number, amount, due_date) VALUES (?, ?, ?, ?)
	`

	// Latest first; ties on created_at break toward the highest id.
	selectLatestInvoiceByClientQuery = `
		SELECT id, client_id, number, amount, due_date, created_at
		FROM invoices
		WHERE client_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT 1
	`
)

// Device and template queries
const (
	insertDeviceQuery = `INSERT INTO devices (name, session) VALUES (?, ?)`

	selectDeviceQuery = `SELECT id, name, session, created_at FROM devices WHERE id = ?`

	selectDevicesQuery = `SELECT id, name, session, created_at FROM devices ORDER BY id`

	insertTemplateQuery = `INSERT INTO message_templates (name, body) VALUES (?, ?)`

	selectTemplateQuery = `SELECT id, name, body, created_at FROM message_templates WHERE id = ?`
)

// Message record queries
const (
	insertMessageQuery = `
		INSERT INTO messages (schedule_id, device_id, client_id, template_id, text, status)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	selectMessagesQuery = `
		SELECT id, schedule_id, device_id, client_id, template_id, text, status, created_at
		FROM messages
		ORDER BY id DESC
		LIMIT ? OFFSET ?
	`

	deleteOldMessagesQuery = `
		DELETE FROM messages
		WHERE created_at < datetime('now', '-' || ? || ' days')
	`
)
