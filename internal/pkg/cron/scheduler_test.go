package cron

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-timesheet/internal/domain/attendance"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

// TestMain provides goleak verification to detect goroutine leaks
func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestScheduler_RunsImmediatelyAndOnTick(t *testing.T) {
	s := NewScheduler()

	var runs atomic.Int32
	require.NoError(t, s.AddJob(Job{
		Name:     "count",
		Interval: 10 * time.Millisecond,
		Fn: func(ctx context.Context) error {
			runs.Add(1)
			return nil
		},
	}))

	s.Start(context.Background())
	assert.Eventually(t, func() bool { return runs.Load() >= 3 }, time.Second, 5*time.Millisecond)
	s.Stop()

	after := runs.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, after, runs.Load(), "no runs after Stop")
}

func TestScheduler_StopIsIdempotent(t *testing.T) {
	s := NewScheduler()
	s.Stop()

	require.NoError(t, s.AddJob(Job{Name: "noop", Interval: time.Hour, Fn: func(context.Context) error { return nil }}))
	s.Start(context.Background())
	s.Stop()
	s.Stop()
}

func TestScheduler_ParentContextStopsJobs(t *testing.T) {
	s := NewScheduler()
	ctx, cancel := context.WithCancel(context.Background())

	started := make(chan struct{})
	require.NoError(t, s.AddJob(Job{
		Name:     "wait",
		Interval: time.Hour,
		Fn: func(ctx context.Context) error {
			close(started)
			<-ctx.Done()
			return ctx.Err()
		},
	}))

	s.Start(ctx)
	<-started
	cancel()
	s.Stop()
}

func TestScheduler_AddJobValidation(t *testing.T) {
	s := NewScheduler()
	assert.Error(t, s.AddJob(Job{Name: "no interval", Fn: func(context.Context) error { return nil }}))
	assert.Error(t, s.AddJob(Job{Name: "no fn", Interval: time.Second}))
}

func TestScheduler_RunOnceSurvivesFailures(t *testing.T) {
	s := NewScheduler()

	var second atomic.Bool
	require.NoError(t, s.AddJob(Job{Name: "fails", Interval: time.Hour, Fn: func(context.Context) error { return errors.New("boom") }}))
	require.NoError(t, s.AddJob(Job{Name: "panics", Interval: time.Hour, Fn: func(context.Context) error { panic("boom") }}))
	require.NoError(t, s.AddJob(Job{Name: "ok", Interval: time.Hour, Fn: func(context.Context) error {
		second.Store(true)
		return nil
	}}))

	assert.NotPanics(t, func() { s.RunOnce(context.Background()) })
	assert.True(t, second.Load())
}

func TestScheduler_JobTimeout(t *testing.T) {
	err := runSafely(context.Background(), Job{
		Name:    "slow",
		Timeout: 10 * time.Millisecond,
		Fn: func(ctx context.Context) error {
			<-ctx.Done()
			return ctx.Err()
		},
	})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

type autoCloseService struct {
	attendance.AttendanceService
	closed int
	err    error
	calls  atomic.Int32
}

func (s *autoCloseService) AutoCloseStaleEntries(context.Context) (int, error) {
	s.calls.Add(1)
	return s.closed, s.err
}

func TestAttendanceJobs(t *testing.T) {
	svc := &autoCloseService{closed: 2}
	jobs := NewAttendanceJobs(svc, time.Hour)

	s := NewScheduler()
	require.NoError(t, jobs.RegisterJobs(s))
	s.RunOnce(context.Background())
	assert.Equal(t, int32(1), svc.calls.Load())

	svc.err = attendance.ErrStoreUnavailable
	err := jobs.AutoCloseStaleEntries(context.Background())
	assert.ErrorIs(t, err, attendance.ErrStoreUnavailable)
}
