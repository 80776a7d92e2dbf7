package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-timesheet/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-timesheet/internal/pkg/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	pgUniqueViolation = "23505"
	pgCheckViolation  = "23514"
)

const timeEntryColumns = `
	id, employee_id, date, clock_in, clock_out, status, breaks,
	location, work_type, gps_location, version, created_at, updated_at
`

type timeEntryRepository struct {
	db *database.DB
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTimeEntry(row rowScanner) (attendance.TimeEntry, error) {
	var entry attendance.TimeEntry
	var breaks []attendance.Break
	err := row.Scan(
		&entry.ID, &entry.EmployeeID, &entry.Date, &entry.ClockIn, &entry.ClockOut, &entry.Status, &breaks,
		&entry.Location, &entry.WorkType, &entry.GPSLocation, &entry.Version, &entry.CreatedAt, &entry.UpdatedAt,
	)
	if err != nil {
		return attendance.TimeEntry{}, err
	}
	if len(breaks) > 0 {
		entry.Breaks = breaks
	}
	return entry, nil
}

// translateError maps constraint violations onto domain errors
func translateError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return fmt.Errorf("%w: %s", attendance.ErrConcurrentUpdate, pgErr.ConstraintName)
		case pgCheckViolation:
			return fmt.Errorf("%w: %s", attendance.ErrInvalidInterval, pgErr.ConstraintName)
		}
	}
	return err
}

func breaksParam(breaks []attendance.Break) []attendance.Break {
	if breaks == nil {
		return []attendance.Break{}
	}
	return breaks
}

// FindEntry implements attendance.TimeEntryRepository.
func (r *timeEntryRepository) FindEntry(ctx context.Context, employeeID string, date time.Time) (*attendance.TimeEntry, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + timeEntryColumns + `
		FROM time_entries
		WHERE employee_id = $1 AND date = $2
		LIMIT 1
	`

	entry, err := scanTimeEntry(q.QueryRow(ctx, query, employeeID, date))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find time entry: %w", err)
	}

	return &entry, nil
}

// GetEntry implements attendance.TimeEntryRepository.
func (r *timeEntryRepository) GetEntry(ctx context.Context, id string) (attendance.TimeEntry, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + timeEntryColumns + ` FROM time_entries WHERE id = $1`

	entry, err := scanTimeEntry(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.TimeEntry{}, attendance.ErrEntryNotFound
		}
		return attendance.TimeEntry{}, fmt.Errorf("failed to get time entry: %w", err)
	}

	return entry, nil
}

// CreateEntry implements attendance.TimeEntryRepository.
func (r *timeEntryRepository) CreateEntry(ctx context.Context, entry attendance.TimeEntry) (attendance.TimeEntry, error) {
	q := GetQuerier(ctx, r.db)

	id, err := uuid.NewV7()
	if err != nil {
		return attendance.TimeEntry{}, fmt.Errorf("failed to generate time entry id: %w", err)
	}

	query := `
		INSERT INTO time_entries (
			id, employee_id, date, clock_in, clock_out, status, breaks,
			location, work_type, gps_location, version
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, 1
		) RETURNING ` + timeEntryColumns

	saved, err := scanTimeEntry(q.QueryRow(ctx, query,
		id.String(),
		entry.EmployeeID,
		entry.Date,
		entry.ClockIn,
		entry.ClockOut,
		entry.DeriveStatus(),
		breaksParam(entry.Breaks),
		entry.Location,
		entry.WorkType,
		entry.GPSLocation,
	))
	if err != nil {
		return attendance.TimeEntry{}, fmt.Errorf("failed to create time entry: %w", translateError(err))
	}

	return saved, nil
}

// UpdateEntry implements attendance.TimeEntryRepository.
func (r *timeEntryRepository) UpdateEntry(ctx context.Context, entry attendance.TimeEntry) (attendance.TimeEntry, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE time_entries SET
			date = $2,
			clock_in = $3,
			clock_out = $4,
			status = $5,
			breaks = $6,
			location = $7,
			work_type = $8,
			gps_location = $9,
			version = version + 1,
			updated_at = now()
		WHERE id = $1 AND version = $10
		RETURNING ` + timeEntryColumns

	saved, err := scanTimeEntry(q.QueryRow(ctx, query,
		entry.ID,
		entry.Date,
		entry.ClockIn,
		entry.ClockOut,
		entry.DeriveStatus(),
		breaksParam(entry.Breaks),
		entry.Location,
		entry.WorkType,
		entry.GPSLocation,
		entry.Version,
	))
	if err == nil {
		return saved, nil
	}

	if !errors.Is(err, pgx.ErrNoRows) {
		return attendance.TimeEntry{}, fmt.Errorf("failed to update time entry: %w", translateError(err))
	}

	var exists bool
	if err := q.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM time_entries WHERE id = $1)`, entry.ID).Scan(&exists); err != nil {
		return attendance.TimeEntry{}, fmt.Errorf("failed to check time entry: %w", err)
	}
	if !exists {
		return attendance.TimeEntry{}, attendance.ErrEntryNotFound
	}
	return attendance.TimeEntry{}, fmt.Errorf("%w: version %d is stale", attendance.ErrConcurrentUpdate, entry.Version)
}

// DeleteEntry implements attendance.TimeEntryRepository.
func (r *timeEntryRepository) DeleteEntry(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)

	result, err := q.Exec(ctx, `DELETE FROM time_entries WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete time entry: %w", err)
	}

	if result.RowsAffected() == 0 {
		return attendance.ErrEntryNotFound
	}

	return nil
}

// ListEntries implements attendance.TimeEntryRepository.
func (r *timeEntryRepository) ListEntries(ctx context.Context, employeeID string, start, end time.Time) ([]attendance.TimeEntry, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + timeEntryColumns + `
		FROM time_entries
		WHERE employee_id = $1 AND date BETWEEN $2 AND $3
		ORDER BY date ASC
	`

	return r.list(ctx, q, query, employeeID, start, end)
}

// ListOpenEntries implements attendance.TimeEntryRepository.
func (r *timeEntryRepository) ListOpenEntries(ctx context.Context, before time.Time) ([]attendance.TimeEntry, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + timeEntryColumns + `
		FROM time_entries
		WHERE date < $1 AND clock_in IS NOT NULL AND clock_out IS NULL
		ORDER BY date ASC, employee_id ASC
	`

	return r.list(ctx, q, query, before)
}

func (r *timeEntryRepository) list(ctx context.Context, q database.Querier, query string, args ...any) ([]attendance.TimeEntry, error) {
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list time entries: %w", err)
	}
	defer rows.Close()

	var entries []attendance.TimeEntry
	for rows.Next() {
		entry, err := scanTimeEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan time entry: %w", err)
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating time entries: %w", err)
	}

	return entries, nil
}

func NewTimeEntryRepository(db *database.DB) attendance.TimeEntryRepository {
	return &timeEntryRepository{db: db}
}
