package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"invoicewa/internal/models"
)

// CreateSchedule inserts a schedule and its recipient set.
func (d *Database) CreateSchedule(ctx context.Context, schedule *models.Schedule, recipientIDs []int64) error {
	return retryableDBOperation(ctx, func() error {
		tx, err := d.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("failed to begin transaction: %w", err)
		}
		defer tx.Rollback()

		var templateID sql.NullInt64
		if schedule.TemplateID != nil {
			templateID = sql.NullInt64{Int64: *schedule.TemplateID, Valid: true}
		}

		res, err := tx.ExecContext(ctx, insertScheduleQuery,
			schedule.Name, schedule.Body, templateID, schedule.DeviceID,
			string(schedule.Frequency), schedule.NextRun)
		if err != nil {
			return fmt.Errorf("failed to insert schedule: %w", err)
		}

		id, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to get schedule id: %w", err)
		}
		schedule.ID = id

		for _, clientID := range recipientIDs {
			if _, err := tx.ExecContext(ctx, insertScheduleRecipientQuery, id, clientID); err != nil {
				return fmt.Errorf("failed to insert schedule recipient: %w", err)
			}
		}

		return tx.Commit()
	}, "create schedule")
}

// GetSchedule loads a schedule with recipients, device and template
// prefetched, ready for dispatch.
func (d *Database) GetSchedule(ctx context.Context, id int64) (*models.Schedule, error) {
	row := d.db.QueryRowContext(ctx, selectScheduleQuery, id)

	schedule, err := scanSchedule(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get schedule: %w", err)
	}

	if err := d.prefetchAssociations(ctx, schedule); err != nil {
		return nil, err
	}

	return schedule, nil
}

// ListSchedules returns all schedules without association prefetch.
func (d *Database) ListSchedules(ctx context.Context) ([]models.Schedule, error) {
	rows, err := d.db.QueryContext(ctx, selectSchedulesQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to list schedules: %w", err)
	}
	defer rows.Close()

	return collectSchedules(rows)
}

// GetDueSchedules returns schedules whose next run is at or before now,
// each fully prefetched for dispatch.
func (d *Database) GetDueSchedules(ctx context.Context, now time.Time) ([]models.Schedule, error) {
	rows, err := d.db.QueryContext(ctx, selectDueSchedulesQuery, now)
	if err != nil {
		return nil, fmt.Errorf("failed to query due schedules: %w", err)
	}
	defer rows.Close()

	schedules, err := collectSchedules(rows)
	if err != nil {
		return nil, err
	}

	for i := range schedules {
		if err := d.prefetchAssociations(ctx, &schedules[i]); err != nil {
			return nil, err
		}
	}

	return schedules, nil
}

// UpdateScheduleNextRun advances the schedule's next-run timestamp. This
// is the only schedule mutation the dispatcher performs.
func (d *Database) UpdateScheduleNextRun(ctx context.Context, id int64, nextRun time.Time) error {
	return retryableDBOperation(ctx, func() error {
		result, err := d.db.ExecContext(ctx, updateScheduleNextRunQuery, nextRun, id)
		if err != nil {
			return fmt.Errorf("failed to update next run: %w", err)
		}

		rows, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get affected rows: %w", err)
		}
		if rows == 0 {
			return fmt.Errorf("no schedule found with id %d", id)
		}
		return nil
	}, "update schedule next run")
}

// DeleteSchedule removes a schedule and its recipient links.
func (d *Database) DeleteSchedule(ctx context.Context, id int64) error {
	return retryableDBOperation(ctx, func() error {
		tx, err := d.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("failed to begin transaction: %w", err)
		}
		defer tx.Rollback()

		if _, err := tx.ExecContext(ctx, deleteScheduleRecipientsQuery, id); err != nil {
			return fmt.Errorf("failed to delete schedule recipients: %w", err)
		}
		if _, err := tx.ExecContext(ctx, deleteScheduleQuery, id); err != nil {
			return fmt.Errorf("failed to delete schedule: %w", err)
		}

		return tx.Commit()
	}, "delete schedule")
}

func (d *Database) prefetchAssociations(ctx context.Context, schedule *models.Schedule) error {
	recipients, err := d.getScheduleRecipients(ctx, schedule.ID)
	if err != nil {
		return err
	}
	schedule.Recipients = recipients

	device, err := d.GetDevice(ctx, schedule.DeviceID)
	if err != nil {
		return err
	}
	schedule.Device = device

	if schedule.TemplateID != nil {
		template, err := d.GetTemplate(ctx, *schedule.TemplateID)
		if err != nil {
			return err
		}
		schedule.Template = template
	}

	return nil
}

func (d *Database) getScheduleRecipients(ctx context.Context, scheduleID int64) ([]models.Client, error) {
	rows, err := d.db.QueryContext(ctx, selectScheduleRecipientsQuery, scheduleID)
	if err != nil {
		return nil, fmt.Errorf("failed to query schedule recipients: %w", err)
	}
	defer rows.Close()

	var clients []models.Client
	for rows.Next() {
		var c models.Client
		var encryptedPhone string
		if err := rows.Scan(&c.ID, &c.Name, &encryptedPhone, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan recipient: %w", err)
		}
		c.PhoneNumber, err = d.encryptor.DecryptIfEnabled(encryptedPhone)
		if err != nil {
			return nil, fmt.Errorf("failed to decrypt phone number: %w", err)
		}
		clients = append(clients, c)
	}
	return clients, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSchedule(row rowScanner) (*models.Schedule, error) {
	var s models.Schedule
	var templateID sql.NullInt64
	var frequency string

	err := row.Scan(&s.ID, &s.Name, &s.Body, &templateID, &s.DeviceID,
		&frequency, &s.NextRun, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}

	s.Frequency = models.Frequency(frequency)
	if templateID.Valid {
		s.TemplateID = &templateID.Int64
	}

	return &s, nil
}

func collectSchedules(rows *sql.Rows) ([]models.Schedule, error) {
	var schedules []models.Schedule
	for rows.Next() {
		s, err := scanSchedule(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan schedule: %w", err)
		}
		schedules = append(schedules, *s)
	}
	return schedules, rows.Err()
}
