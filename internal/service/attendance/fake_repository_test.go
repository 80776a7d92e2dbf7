package attendance

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/cmlabs-hris/hris-timesheet/internal/domain/attendance"
	"github.com/google/uuid"
)

type memoryRepository struct {
	mu      sync.Mutex
	entries map[string]attendance.TimeEntry
	failErr error
	// beforeWrite runs while a write is in flight; tests use it to interleave calls
	beforeWrite func()
}

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{entries: make(map[string]attendance.TimeEntry)}
}

func (r *memoryRepository) FindEntry(_ context.Context, employeeID string, date time.Time) (*attendance.TimeEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failErr != nil {
		return nil, r.failErr
	}
	for _, e := range r.entries {
		if e.EmployeeID == employeeID && e.Date.Equal(date) {
			c := e.Clone()
			return &c, nil
		}
	}
	return nil, nil
}

func (r *memoryRepository) GetEntry(_ context.Context, id string) (attendance.TimeEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[id]
	if !ok {
		return attendance.TimeEntry{}, attendance.ErrEntryNotFound
	}
	return e.Clone(), nil
}

func (r *memoryRepository) CreateEntry(_ context.Context, entry attendance.TimeEntry) (attendance.TimeEntry, error) {
	if r.beforeWrite != nil {
		r.beforeWrite()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failErr != nil {
		return attendance.TimeEntry{}, r.failErr
	}
	for _, e := range r.entries {
		if e.EmployeeID == entry.EmployeeID && e.Date.Equal(entry.Date) {
			return attendance.TimeEntry{}, attendance.ErrConcurrentUpdate
		}
	}
	id, err := uuid.NewV7()
	if err != nil {
		return attendance.TimeEntry{}, err
	}
	entry = entry.Clone()
	entry.ID = id.String()
	entry.Version = 1
	entry.CreatedAt = time.Now().UTC()
	entry.UpdatedAt = entry.CreatedAt
	r.entries[entry.ID] = entry
	return entry.Clone(), nil
}

func (r *memoryRepository) UpdateEntry(_ context.Context, entry attendance.TimeEntry) (attendance.TimeEntry, error) {
	if r.beforeWrite != nil {
		r.beforeWrite()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failErr != nil {
		return attendance.TimeEntry{}, r.failErr
	}
	stored, ok := r.entries[entry.ID]
	if !ok {
		return attendance.TimeEntry{}, attendance.ErrEntryNotFound
	}
	if stored.Version != entry.Version {
		return attendance.TimeEntry{}, attendance.ErrConcurrentUpdate
	}
	entry = entry.Clone()
	entry.Version++
	entry.UpdatedAt = time.Now().UTC()
	r.entries[entry.ID] = entry
	return entry.Clone(), nil
}

func (r *memoryRepository) DeleteEntry(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.entries[id]; !ok {
		return attendance.ErrEntryNotFound
	}
	delete(r.entries, id)
	return nil
}

func (r *memoryRepository) ListEntries(_ context.Context, employeeID string, start, end time.Time) ([]attendance.TimeEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failErr != nil {
		return nil, r.failErr
	}
	var out []attendance.TimeEntry
	for _, e := range r.entries {
		if e.EmployeeID == employeeID && !e.Date.Before(start) && !e.Date.After(end) {
			out = append(out, e.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (r *memoryRepository) ListOpenEntries(_ context.Context, before time.Time) ([]attendance.TimeEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []attendance.TimeEntry
	for _, e := range r.entries {
		if e.Date.Before(before) && e.ClockIn != nil && e.ClockOut == nil {
			out = append(out, e.Clone())
		}
	}
	return out, nil
}

func (r *memoryRepository) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

type stubShiftRepository struct {
	mu     sync.Mutex
	hours  map[string]float64
	err    error
	resets []string
}

func (s *stubShiftRepository) ExpectedHours(_ context.Context, employeeID string, date time.Time) (float64, bool, error) {
	if s.err != nil {
		return 0, false, s.err
	}
	h, ok := s.hours[employeeID+"|"+date.Format(attendance.DateLayout)]
	return h, ok, nil
}

func (s *stubShiftRepository) ResetAssignmentStatus(_ context.Context, employeeID string, date time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resets = append(s.resets, employeeID+"|"+date.Format(attendance.DateLayout))
	return nil
}

var errDatabaseDown = errors.New("connection refused")
