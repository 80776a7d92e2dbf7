package cron

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/hris-timesheet/internal/domain/attendance"
)

type AttendanceJobs struct {
	attendanceService attendance.AttendanceService
	interval          time.Duration
}

func NewAttendanceJobs(attendanceService attendance.AttendanceService, interval time.Duration) *AttendanceJobs {
	if interval <= 0 {
		interval = time.Hour
	}
	return &AttendanceJobs{
		attendanceService: attendanceService,
		interval:          interval,
	}
}

func (j *AttendanceJobs) RegisterJobs(scheduler *Scheduler) error {
	return scheduler.AddJob(Job{
		Name:     "auto_close_stale_entries",
		Interval: j.interval,
		Timeout:  j.interval,
		Fn:       j.AutoCloseStaleEntries,
	})
}

// AutoCloseStaleEntries clocks out entries still open from a previous day
func (j *AttendanceJobs) AutoCloseStaleEntries(ctx context.Context) error {
	slog.Info("Cron: Starting auto-close stale entries job")

	closed, err := j.attendanceService.AutoCloseStaleEntries(ctx)
	if err != nil {
		return fmt.Errorf("failed to auto close stale entries: %w", err)
	}

	if closed == 0 {
		slog.Info("Cron: No stale entries found")
		return nil
	}

	slog.Info("Cron: Auto-closed stale entries", "count", closed)
	return nil
}
