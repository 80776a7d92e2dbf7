// Package sqlite stores time entries in an embedded SQLite database through gorm.
package sqlite

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-timesheet/internal/domain/attendance"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type timeEntryModel struct {
	ID          string                  `gorm:"primaryKey"`
	EmployeeID  string                  `gorm:"not null;uniqueIndex:idx_time_entries_employee_date"`
	Date        string                  `gorm:"not null;uniqueIndex:idx_time_entries_employee_date;index:idx_time_entries_date"`
	ClockIn     *time.Time
	ClockOut    *time.Time
	Status      string                  `gorm:"not null"`
	Breaks      []attendance.Break      `gorm:"serializer:json"`
	Location    string
	WorkType    string
	GPSLocation *attendance.GPSLocation `gorm:"serializer:json"`
	Version     int                     `gorm:"not null"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (timeEntryModel) TableName() string {
	return "time_entries"
}

func toModel(entry attendance.TimeEntry) timeEntryModel {
	return timeEntryModel{
		ID:          entry.ID,
		EmployeeID:  entry.EmployeeID,
		Date:        entry.Date.Format(attendance.DateLayout),
		ClockIn:     utcPtr(entry.ClockIn),
		ClockOut:    utcPtr(entry.ClockOut),
		Status:      string(entry.DeriveStatus()),
		Breaks:      entry.Breaks,
		Location:    entry.Location,
		WorkType:    entry.WorkType,
		GPSLocation: entry.GPSLocation,
		Version:     entry.Version,
		CreatedAt:   entry.CreatedAt,
		UpdatedAt:   entry.UpdatedAt,
	}
}

func (m timeEntryModel) toEntity() (attendance.TimeEntry, error) {
	date, err := time.Parse(attendance.DateLayout, m.Date)
	if err != nil {
		return attendance.TimeEntry{}, fmt.Errorf("invalid stored date %q: %w", m.Date, err)
	}

	entry := attendance.TimeEntry{
		ID:          m.ID,
		EmployeeID:  m.EmployeeID,
		Date:        date,
		ClockIn:     utcPtr(m.ClockIn),
		ClockOut:    utcPtr(m.ClockOut),
		Status:      attendance.Status(m.Status),
		Location:    m.Location,
		WorkType:    m.WorkType,
		GPSLocation: m.GPSLocation,
		Version:     m.Version,
		CreatedAt:   m.CreatedAt.UTC(),
		UpdatedAt:   m.UpdatedAt.UTC(),
	}
	if len(m.Breaks) > 0 {
		entry.Breaks = m.Breaks
	}
	return entry, nil
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}

type timeEntryRepository struct {
	db *gorm.DB
}

// FindEntry implements attendance.TimeEntryRepository.
func (r *timeEntryRepository) FindEntry(ctx context.Context, employeeID string, date time.Time) (*attendance.TimeEntry, error) {
	var m timeEntryModel
	err := r.db.WithContext(ctx).
		Where("employee_id = ? AND date = ?", employeeID, date.Format(attendance.DateLayout)).
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find time entry: %w", err)
	}

	entry, err := m.toEntity()
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// GetEntry implements attendance.TimeEntryRepository.
func (r *timeEntryRepository) GetEntry(ctx context.Context, id string) (attendance.TimeEntry, error) {
	var m timeEntryModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return attendance.TimeEntry{}, attendance.ErrEntryNotFound
		}
		return attendance.TimeEntry{}, fmt.Errorf("failed to get time entry: %w", err)
	}
	return m.toEntity()
}

// CreateEntry implements attendance.TimeEntryRepository.
func (r *timeEntryRepository) CreateEntry(ctx context.Context, entry attendance.TimeEntry) (attendance.TimeEntry, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return attendance.TimeEntry{}, fmt.Errorf("failed to generate time entry id: %w", err)
	}

	m := toModel(entry)
	m.ID = id.String()
	m.Version = 1

	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return attendance.TimeEntry{}, fmt.Errorf("%w: entry for %s on %s exists", attendance.ErrConcurrentUpdate, m.EmployeeID, m.Date)
		}
		return attendance.TimeEntry{}, fmt.Errorf("failed to create time entry: %w", err)
	}

	return m.toEntity()
}

// UpdateEntry implements attendance.TimeEntryRepository.
func (r *timeEntryRepository) UpdateEntry(ctx context.Context, entry attendance.TimeEntry) (attendance.TimeEntry, error) {
	m := toModel(entry)
	m.Version = entry.Version + 1

	res := r.db.WithContext(ctx).
		Model(&m).
		Where("version = ?", entry.Version).
		Select("*").
		Omit("id", "created_at").
		Updates(&m)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			return attendance.TimeEntry{}, fmt.Errorf("%w: entry for %s on %s exists", attendance.ErrConcurrentUpdate, m.EmployeeID, m.Date)
		}
		return attendance.TimeEntry{}, fmt.Errorf("failed to update time entry: %w", res.Error)
	}

	if res.RowsAffected == 0 {
		var count int64
		if err := r.db.WithContext(ctx).Model(&timeEntryModel{}).Where("id = ?", entry.ID).Count(&count).Error; err != nil {
			return attendance.TimeEntry{}, fmt.Errorf("failed to check time entry: %w", err)
		}
		if count == 0 {
			return attendance.TimeEntry{}, attendance.ErrEntryNotFound
		}
		return attendance.TimeEntry{}, fmt.Errorf("%w: version %d is stale", attendance.ErrConcurrentUpdate, entry.Version)
	}

	return r.GetEntry(ctx, entry.ID)
}

// DeleteEntry implements attendance.TimeEntryRepository.
func (r *timeEntryRepository) DeleteEntry(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&timeEntryModel{})
	if res.Error != nil {
		return fmt.Errorf("failed to delete time entry: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return attendance.ErrEntryNotFound
	}
	return nil
}

// ListEntries implements attendance.TimeEntryRepository.
func (r *timeEntryRepository) ListEntries(ctx context.Context, employeeID string, start, end time.Time) ([]attendance.TimeEntry, error) {
	var models []timeEntryModel
	err := r.db.WithContext(ctx).
		Where("employee_id = ? AND date BETWEEN ? AND ?", employeeID, start.Format(attendance.DateLayout), end.Format(attendance.DateLayout)).
		Order("date ASC").
		Find(&models).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list time entries: %w", err)
	}
	return toEntities(models)
}

// ListOpenEntries implements attendance.TimeEntryRepository.
func (r *timeEntryRepository) ListOpenEntries(ctx context.Context, before time.Time) ([]attendance.TimeEntry, error) {
	var models []timeEntryModel
	err := r.db.WithContext(ctx).
		Where("date < ? AND clock_in IS NOT NULL AND clock_out IS NULL", before.Format(attendance.DateLayout)).
		Order("date ASC, employee_id ASC").
		Find(&models).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list open time entries: %w", err)
	}
	return toEntities(models)
}

func toEntities(models []timeEntryModel) ([]attendance.TimeEntry, error) {
	entries := make([]attendance.TimeEntry, 0, len(models))
	for _, m := range models {
		entry, err := m.toEntity()
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// Migrate creates or updates the tables used by the SQLite store
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&timeEntryModel{}, &shiftAssignmentModel{}); err != nil {
		return fmt.Errorf("failed to migrate SQLite schema: %w", err)
	}
	return nil
}

func NewTimeEntryRepository(db *gorm.DB) attendance.TimeEntryRepository {
	return &timeEntryRepository{db: db}
}
