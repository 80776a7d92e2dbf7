package sqlite

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-timesheet/internal/domain/attendance"
	"gorm.io/gorm"
)

const shiftStatusScheduled = "scheduled"

type shiftAssignmentModel struct {
	ID           string `gorm:"primaryKey"`
	EmployeeID   string `gorm:"not null;uniqueIndex:idx_shift_assignments_employee_date"`
	Date         string `gorm:"not null;uniqueIndex:idx_shift_assignments_employee_date"`
	StartTime    string `gorm:"not null"` // HH:MM
	EndTime      string `gorm:"not null"` // HH:MM
	BreakMinutes int
	Status       string `gorm:"not null;default:scheduled"`
}

func (shiftAssignmentModel) TableName() string {
	return "shift_assignments"
}

// hours returns the scheduled working time, treating an end before the start as overnight.
func (m shiftAssignmentModel) hours() (float64, error) {
	start, err := time.Parse("15:04", m.StartTime)
	if err != nil {
		return 0, fmt.Errorf("invalid shift start %q: %w", m.StartTime, err)
	}
	end, err := time.Parse("15:04", m.EndTime)
	if err != nil {
		return 0, fmt.Errorf("invalid shift end %q: %w", m.EndTime, err)
	}
	if !end.After(start) {
		end = end.Add(24 * time.Hour)
	}

	hours := end.Sub(start).Hours() - float64(m.BreakMinutes)/60
	if hours < 0 {
		return 0, nil
	}
	return hours, nil
}

type shiftRepository struct {
	db *gorm.DB
}

// ExpectedHours implements attendance.ShiftRepository.
func (s *shiftRepository) ExpectedHours(ctx context.Context, employeeID string, date time.Time) (float64, bool, error) {
	var m shiftAssignmentModel
	err := s.db.WithContext(ctx).
		Where("employee_id = ? AND date = ?", employeeID, date.Format(attendance.DateLayout)).
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("failed to get shift assignment: %w", err)
	}

	hours, err := m.hours()
	if err != nil {
		return 0, false, err
	}
	return hours, true, nil
}

// ResetAssignmentStatus implements attendance.ShiftRepository.
func (s *shiftRepository) ResetAssignmentStatus(ctx context.Context, employeeID string, date time.Time) error {
	err := s.db.WithContext(ctx).
		Model(&shiftAssignmentModel{}).
		Where("employee_id = ? AND date = ?", employeeID, date.Format(attendance.DateLayout)).
		Update("status", shiftStatusScheduled).Error
	if err != nil {
		return fmt.Errorf("failed to reset shift assignment: %w", err)
	}
	return nil
}

func NewShiftRepository(db *gorm.DB) attendance.ShiftRepository {
	return &shiftRepository{db: db}
}
