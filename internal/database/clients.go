package database

import (
	"context"
	"database/sql"
	"fmt"

	"invoicewa/internal/models"
)

// CreateClient inserts a client, encrypting the phone number when
// at-rest encryption is enabled.
func (d *Database) CreateClient(ctx context.Context, client *models.Client) error {
	encryptedPhone, err := d.encryptor.EncryptIfEnabled(client.PhoneNumber)
	if err != nil {
		return fmt.Errorf("failed to encrypt phone number: %w", err)
	}

	return retryableDBOperation(ctx, func() error {
		res, err := d.db.ExecContext(ctx, insertClientQuery, client.Name, encryptedPhone)
		if err != nil {
			return fmt.Errorf("failed to insert client: %w", err)
		}
		client.ID, err = res.LastInsertId()
		return err
	}, "create client")
}

func (d *Database) GetClient(ctx context.Context, id int64) (*models.Client, error) {
	var c models.Client
	var encryptedPhone string

	err := d.db.QueryRowContext(ctx, selectClientQuery, id).Scan(
		&c.ID, &c.Name, &encryptedPhone, &c.CreatedAt, &c.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get client: %w", err)
	}

	c.PhoneNumber, err = d.encryptor.DecryptIfEnabled(encryptedPhone)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt phone number: %w", err)
	}

	return &c, nil
}

func (d *Database) ListClients(ctx context.Context) ([]models.Client, error) {
	rows, err := d.db.QueryContext(ctx, selectClientsQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to list clients: %w", err)
	}
	defer rows.Close()

	var clients []models.Client
	for rows.Next() {
		var c models.Client
		var encryptedPhone string
		if err := rows.Scan(&c.ID, &c.Name, &encryptedPhone, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan client: %w", err)
		}
		c.PhoneNumber, err = d.encryptor.DecryptIfEnabled(encryptedPhone)
		if err != nil {
			return nil, fmt.Errorf("failed to decrypt phone number: %w", err)
		}
		clients = append(clients, c)
	}
	return clients, rows.Err()
}

// CreateInvoice inserts an invoice for a client.
func (d *Database) CreateInvoice(ctx context.Context, invoice *models.Invoice) error {
	var dueDate sql.NullTime
	if invoice.DueDate != nil {
		dueDate = sql.NullTime{Time: *invoice.DueDate, Valid: true}
	}

	return retryableDBOperation(ctx, func() error {
		res, err := d.db.ExecContext(ctx, insertInvoiceQuery,
			invoice.ClientID, invoice.Number, invoice.Amount, dueDate)
		if err != nil {
			return fmt.Errorf("failed to insert invoice: %w", err)
		}
		invoice.ID, err = res.LastInsertId()
		return err
	}, "create invoice")
}

// GetLatestInvoiceByClient returns the client's most recently created
// invoice, or nil when the client has none. Creation-time ties break
// toward the highest id.
func (d *Database) GetLatestInvoiceByClient(ctx context.Context, clientID int64) (*models.Invoice, error) {
	var inv models.Invoice
	var dueDate sql.NullTime

	err := d.db.QueryRowContext(ctx, selectLatestInvoiceByClientQuery, clientID).Scan(
		&inv.ID, &inv.ClientID, &inv.Number, &inv.Amount, &dueDate, &inv.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest invoice: %w", err)
	}

	if dueDate.Valid {
		inv.DueDate = &dueDate.Time
	}

	return &inv, nil
}

// CreateDevice registers a gateway session.
func (d *Database) CreateDevice(ctx context.Context, device *models.Device) error {
	return retryableDBOperation(ctx, func() error {
		res, err := d.db.ExecContext(ctx, insertDeviceQuery, device.Name, device.Session)
		if err != nil {
			return fmt.Errorf("failed to insert device: %w", err)
		}
		device.ID, err = res.LastInsertId()
		return err
	}, "create device")
}

func (d *Database) GetDevice(ctx context.Context, id int64) (*models.Device, error) {
	var dev models.Device
	err := d.db.QueryRowContext(ctx, selectDeviceQuery, id).Scan(
		&dev.ID, &dev.Name, &dev.Session, &dev.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get device: %w", err)
	}
	return &dev, nil
}

func (d *Database) ListDevices(ctx context.Context) ([]models.Device, error) {
	rows, err := d.db.QueryContext(ctx, selectDevicesQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to list devices: %w", err)
	}
	defer rows.Close()

	var devices []models.Device
	for rows.Next() {
		var dev models.Device
		if err := rows.Scan(&dev.ID, &dev.Name, &dev.Session, &dev.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan device: %w", err)
		}
		devices = append(devices, dev)
	}
	return devices, rows.Err()
}

// CreateTemplate inserts a message template.
func (d *Database) CreateTemplate(ctx context.Context, template *models.MessageTemplate) error {
	return retryableDBOperation(ctx, func() error {
		res, err := d.db.ExecContext(ctx, insertTemplateQuery, template.Name, template.Body)
		if err != nil {
			return fmt.Errorf("failed to insert template: %w", err)
		}
		template.ID, err = res.LastInsertId()
		return err
	}, "create template")
}

func (d *Database) GetTemplate(ctx context.Context, id int64) (*models.MessageTemplate, error) {
	var tpl models.MessageTemplate
	err := d.db.QueryRowContext(ctx, selectTemplateQuery, id).Scan(
		&tpl.ID, &tpl.Name, &tpl.Body, &tpl.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get template: %w", err)
	}
	return &tpl, nil
}
