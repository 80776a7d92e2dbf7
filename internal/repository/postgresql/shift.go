package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-timesheet/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-timesheet/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type shiftRepository struct {
	db *database.DB
}

// ExpectedHours implements attendance.ShiftRepository.
func (s *shiftRepository) ExpectedHours(ctx context.Context, employeeID string, date time.Time) (float64, bool, error) {
	q := GetQuerier(ctx, s.db)

	// overnight shifts end on the next day
	query := `
		SELECT
			(EXTRACT(EPOCH FROM (
				CASE WHEN end_time > start_time
					THEN end_time - start_time
					ELSE end_time - start_time + INTERVAL '24 hours'
				END
			)) / 3600.0) - (break_minutes / 60.0)
		FROM shift_assignments
		WHERE employee_id = $1 AND date = $2
		LIMIT 1
	`

	var hours float64
	err := q.QueryRow(ctx, query, employeeID, date).Scan(&hours)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("failed to get shift hours: %w", err)
	}

	if hours < 0 {
		hours = 0
	}
	return hours, true, nil
}

// ResetAssignmentStatus implements attendance.ShiftRepository.
func (s *shiftRepository) ResetAssignmentStatus(ctx context.Context, employeeID string, date time.Time) error {
	q := GetQuerier(ctx, s.db)

	query := `
		UPDATE shift_assignments
		SET status = 'scheduled'
		WHERE employee_id = $1 AND date = $2
	`

	if _, err := q.Exec(ctx, query, employeeID, date); err != nil {
		return fmt.Errorf("failed to reset shift assignment: %w", err)
	}

	return nil
}

func NewShiftRepository(db *database.DB) attendance.ShiftRepository {
	return &shiftRepository{db: db}
}
