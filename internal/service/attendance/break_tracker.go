package attendance

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/cmlabs-hris/hris-timesheet/internal/domain/attendance"
)

// BreakTracker manages the break intervals of a single time entry.
// Breaks are kept in chronological start order and never overlap.
type BreakTracker struct {
	breaks []attendance.Break
}

func NewBreakTracker(breaks []attendance.Break) *BreakTracker {
	copied := make([]attendance.Break, len(breaks))
	copy(copied, breaks)
	sort.SliceStable(copied, func(i, j int) bool {
		return copied[i].StartTime.Before(copied[j].StartTime)
	})
	return &BreakTracker{breaks: copied}
}

// Open returns the break that has not been closed yet.
func (t *BreakTracker) Open() (attendance.Break, bool) {
	for _, b := range t.breaks {
		if b.IsOpen() {
			return b, true
		}
	}
	return attendance.Break{}, false
}

// Start opens a new break at the given instant.
func (t *BreakTracker) Start(at time.Time) error {
	if _, open := t.Open(); open {
		return fmt.Errorf("%w: a break is already open", attendance.ErrNoActiveSession)
	}

	if n := len(t.breaks); n > 0 {
		last := t.breaks[n-1]
		if last.EndTime != nil && at.Before(*last.EndTime) {
			return fmt.Errorf("%w: break cannot start before the previous break ended", attendance.ErrInvalidInterval)
		}
	}

	t.breaks = append(t.breaks, attendance.Break{StartTime: at})
	return nil
}

// End closes the open break and records its duration in whole minutes.
func (t *BreakTracker) End(at time.Time) error {
	for i := range t.breaks {
		if !t.breaks[i].IsOpen() {
			continue
		}
		if at.Before(t.breaks[i].StartTime) {
			return fmt.Errorf("%w: break cannot end before it started", attendance.ErrInvalidInterval)
		}
		end := at
		t.breaks[i].EndTime = &end
		t.breaks[i].DurationMinutes = durationMinutes(t.breaks[i].StartTime, end)
		return nil
	}
	return fmt.Errorf("%w: no open break", attendance.ErrNoActiveSession)
}

// MinutesWithin sums the exact overlap of each break with [start, end].
// An open break runs until end.
func (t *BreakTracker) MinutesWithin(start, end time.Time) float64 {
	var total float64
	for _, b := range t.breaks {
		from, to := b.StartTime, end
		if from.Before(start) {
			from = start
		}
		if b.EndTime != nil && b.EndTime.Before(to) {
			to = *b.EndTime
		}
		if to.After(from) {
			total += to.Sub(from).Minutes()
		}
	}
	return total
}

// Clip trims every break to [start, end] and drops breaks lying wholly
// outside it. With a non-nil end an open break is closed at end.
func (t *BreakTracker) Clip(start time.Time, end *time.Time) {
	kept := t.breaks[:0]
	for _, b := range t.breaks {
		if end != nil && b.StartTime.After(*end) {
			continue
		}
		if b.EndTime != nil && b.EndTime.Before(start) {
			continue
		}

		if b.StartTime.Before(start) {
			b.StartTime = start
		}
		if end != nil && (b.EndTime == nil || b.EndTime.After(*end)) {
			e := *end
			b.EndTime = &e
		}
		if b.EndTime != nil {
			b.DurationMinutes = durationMinutes(b.StartTime, *b.EndTime)
		}
		kept = append(kept, b)
	}
	t.breaks = kept
}

// Breaks returns a copy of the tracked breaks.
func (t *BreakTracker) Breaks() []attendance.Break {
	if len(t.breaks) == 0 {
		return nil
	}
	out := make([]attendance.Break, len(t.breaks))
	copy(out, t.breaks)
	return out
}

func durationMinutes(start, end time.Time) int {
	if !end.After(start) {
		return 0
	}
	return int(math.Round(end.Sub(start).Minutes()))
}
