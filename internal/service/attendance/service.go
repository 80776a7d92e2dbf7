package attendance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/hris-timesheet/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-timesheet/internal/observability/metrics"
	"github.com/cmlabs-hris/hris-timesheet/internal/pkg/validator"
	"github.com/jonboulle/clockwork"
	"github.com/patrickmn/go-cache"
)

// Options configures the attendance service.
type Options struct {
	Location             *time.Location
	DefaultExpectedHours float64
	CacheTTL             time.Duration
}

type AttendanceServiceImpl struct {
	attendance.TimeEntryRepository
	attendance.ShiftRepository
	clock   clockwork.Clock
	metrics *metrics.AttendanceMetrics

	loc                  *time.Location
	defaultExpectedHours float64

	hours    *HoursCalculator
	timeline *TimelineCalculator
	weekly   *WeeklyAggregator
	guard    *transitionGuard

	weeklyCache *cache.Cache
}

// ClockIn implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) ClockIn(ctx context.Context, req attendance.ClockInRequest) (attendance.TimeEntryResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.TimeEntryResponse{}, err
	}

	return s.transition(ctx, req.EmployeeID, attendance.ActionClockIn, func(entry *attendance.TimeEntry) {
		entry.Location = req.Location
		entry.WorkType = req.WorkType
		entry.GPSLocation = nil
		if req.GPSLocation != nil {
			entry.GPSLocation = &attendance.GPSLocation{
				Latitude:  req.GPSLocation.Latitude,
				Longitude: req.GPSLocation.Longitude,
				Accuracy:  req.GPSLocation.Accuracy,
			}
		}
	})
}

// StartBreak implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) StartBreak(ctx context.Context, employeeID string) (attendance.TimeEntryResponse, error) {
	return s.transition(ctx, employeeID, attendance.ActionStartBreak, nil)
}

// ResumeWork implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) ResumeWork(ctx context.Context, employeeID string) (attendance.TimeEntryResponse, error) {
	return s.transition(ctx, employeeID, attendance.ActionResumeWork, nil)
}

// ClockOut implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) ClockOut(ctx context.Context, employeeID string) (attendance.TimeEntryResponse, error) {
	return s.transition(ctx, employeeID, attendance.ActionClockOut, nil)
}

// transition applies a clock action to today's entry and persists it.
func (s *AttendanceServiceImpl) transition(
	ctx context.Context,
	employeeID string,
	action attendance.Action,
	prepare func(entry *attendance.TimeEntry),
) (attendance.TimeEntryResponse, error) {
	if validator.IsEmpty(employeeID) {
		return attendance.TimeEntryResponse{}, validator.ValidationErrors{{
			Field:   "employee_id",
			Message: "employee_id is required",
		}}
	}

	started := time.Now()
	now := s.now()
	date := attendance.DateOf(now, s.loc)

	result := metrics.ResultSuccess
	defer func() {
		s.metrics.RecordTransition(string(action), result, time.Since(started).Seconds())
	}()

	release, err := s.guard.acquire(employeeID, date)
	if err != nil {
		result = metrics.ResultConflict
		return attendance.TimeEntryResponse{}, err
	}
	defer release()

	current, err := s.TimeEntryRepository.FindEntry(ctx, employeeID, date)
	if err != nil {
		result = metrics.ResultError
		return attendance.TimeEntryResponse{}, s.storeError("find_entry", err)
	}

	base := attendance.TimeEntry{EmployeeID: employeeID, Date: date}
	if current != nil {
		base = *current
	}

	next, err := Transition(base, action, now)
	if err != nil {
		result = metrics.ResultRejected
		slog.Info("Clock action rejected", "employee_id", employeeID, "action", action, "status", base.DeriveStatus(), "error", err)
		return attendance.TimeEntryResponse{}, err
	}

	if prepare != nil {
		prepare(&next)
	}

	saved, err := s.save(ctx, current == nil, next)
	if err != nil {
		result = metrics.ResultError
		if errors.Is(err, attendance.ErrConcurrentUpdate) || errors.Is(err, attendance.ErrEntryNotFound) {
			result = metrics.ResultConflict
		}
		return attendance.TimeEntryResponse{}, err
	}

	s.invalidateWeek(employeeID, saved.Date)

	expected := s.expectedHours(ctx, employeeID, saved.Date)
	return mapEntryToResponse(saved, s.hours.Calculate(saved, expected, now), s.loc), nil
}

// GetStatus implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) GetStatus(ctx context.Context, employeeID string) (attendance.StatusResponse, error) {
	now := s.now()
	date := attendance.DateOf(now, s.loc)

	entry, err := s.TimeEntryRepository.FindEntry(ctx, employeeID, date)
	if err != nil {
		return attendance.StatusResponse{}, s.storeError("find_entry", err)
	}

	status := attendance.StatusNotClockedIn
	resp := attendance.StatusResponse{Date: date.Format(attendance.DateLayout)}
	if entry != nil {
		status = entry.DeriveStatus()
		mapped := mapEntryToResponse(*entry, s.hours.Calculate(*entry, s.expectedHours(ctx, employeeID, date), now), s.loc)
		resp.Entry = &mapped
	}

	resp.Status = status
	resp.CanClockIn = status == attendance.StatusNotClockedIn || status == attendance.StatusClockedOut
	resp.CanStartBreak = status == attendance.StatusClockedIn
	resp.CanResumeWork = status == attendance.StatusOnBreak
	resp.CanClockOut = status == attendance.StatusClockedIn || status == attendance.StatusOnBreak

	switch status {
	case attendance.StatusClockedIn:
		resp.Message = "You are clocked in"
	case attendance.StatusOnBreak:
		resp.Message = "You are on a break"
	case attendance.StatusClockedOut:
		resp.Message = "You have clocked out for today"
	default:
		resp.Message = "You have not clocked in today"
	}

	return resp, nil
}

// GetWeeklyTimesheet implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) GetWeeklyTimesheet(ctx context.Context, employeeID string, weekStart string) (attendance.WeeklyTimesheetResponse, error) {
	now := s.now()
	today := attendance.DateOf(now, s.loc)

	reference := today
	if weekStart != "" {
		parsed, ok := validator.IsValidDate(weekStart)
		if !ok {
			return attendance.WeeklyTimesheetResponse{}, validator.ValidationErrors{{
				Field:   "week_start",
				Message: "week_start must be in YYYY-MM-DD format",
			}}
		}
		reference = parsed
	}

	start := attendance.WeekStart(reference)
	key := weeklyCacheKey(employeeID, start)
	if cached, found := s.weeklyCache.Get(key); found {
		s.metrics.RecordWeeklyCache(true)
		return cached.(attendance.WeeklyTimesheetResponse), nil
	}
	s.metrics.RecordWeeklyCache(false)

	entries, err := s.TimeEntryRepository.ListEntries(ctx, employeeID, start, start.AddDate(0, 0, 6))
	if err != nil {
		return attendance.WeeklyTimesheetResponse{}, s.storeError("list_entries", err)
	}

	expected := make(map[string]float64, 7)
	for i := 0; i < 7; i++ {
		day := start.AddDate(0, 0, i)
		expected[day.Format(attendance.DateLayout)] = s.expectedHours(ctx, employeeID, day)
	}

	sheet := s.weekly.Aggregate(WeekInput{
		Reference: start,
		Entries:   entries,
		Today:     today,
		Now:       now,
		ExpectedHours: func(date time.Time) float64 {
			return expected[date.Format(attendance.DateLayout)]
		},
	})

	resp := mapWeeklyToResponse(employeeID, sheet, s.loc)
	s.weeklyCache.Set(key, resp, cache.DefaultExpiration)
	return resp, nil
}

// GetTimeline implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) GetTimeline(ctx context.Context, employeeID string, date string) (attendance.TimelineResponse, error) {
	now := s.now()
	day := attendance.DateOf(now, s.loc)
	if date != "" {
		parsed, ok := validator.IsValidDate(date)
		if !ok {
			return attendance.TimelineResponse{}, validator.ValidationErrors{{
				Field:   "date",
				Message: "date must be in YYYY-MM-DD format",
			}}
		}
		day = parsed
	}

	entry, err := s.TimeEntryRepository.FindEntry(ctx, employeeID, day)
	if err != nil {
		return attendance.TimelineResponse{}, s.storeError("find_entry", err)
	}

	resp := attendance.TimelineResponse{
		Date:     day.Format(attendance.DateLayout),
		Segments: []attendance.SegmentResponse{},
	}
	if entry == nil || entry.ClockIn == nil {
		resp.Absent = true
		return resp, nil
	}

	resp.Segments = mapSegmentsToResponse(s.timeline.ForEntry(*entry, now), s.loc)
	return resp, nil
}

// ManualEdit implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) ManualEdit(ctx context.Context, req attendance.ManualEditRequest) (attendance.TimeEntryResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.TimeEntryResponse{}, err
	}

	date, _ := validator.IsValidDate(req.Date)
	target := date
	if req.NewDate != nil {
		target, _ = validator.IsValidDate(*req.NewDate)
	}

	release, err := s.guard.acquire(req.EmployeeID, date)
	if err != nil {
		return attendance.TimeEntryResponse{}, err
	}
	defer release()

	if !target.Equal(date) {
		releaseTarget, err := s.guard.acquire(req.EmployeeID, target)
		if err != nil {
			return attendance.TimeEntryResponse{}, err
		}
		defer releaseTarget()

		existing, err := s.TimeEntryRepository.FindEntry(ctx, req.EmployeeID, target)
		if err != nil {
			return attendance.TimeEntryResponse{}, s.storeError("find_entry", err)
		}
		if existing != nil {
			return attendance.TimeEntryResponse{}, attendance.ErrEntryAlreadyExists
		}
	}

	current, err := s.TimeEntryRepository.FindEntry(ctx, req.EmployeeID, date)
	if err != nil {
		return attendance.TimeEntryResponse{}, s.storeError("find_entry", err)
	}

	base := attendance.TimeEntry{EmployeeID: req.EmployeeID, Date: date}
	if current != nil {
		base = *current
	}
	if !target.Equal(date) {
		base = shiftEntry(base, target.Sub(date))
	}

	edit := ManualEdit{Date: &target}
	if req.ClockInTime != nil {
		t, err := parseClockValue(*req.ClockInTime, target, s.loc)
		if err != nil {
			return attendance.TimeEntryResponse{}, err
		}
		edit.ClockIn = &t
	}
	if req.ClockOutTime != nil {
		t, err := parseClockValue(*req.ClockOutTime, target, s.loc)
		if err != nil {
			return attendance.TimeEntryResponse{}, err
		}
		edit.ClockOut = &t
	}

	next, err := ApplyManualEdit(base, edit)
	if err != nil {
		return attendance.TimeEntryResponse{}, err
	}

	saved, err := s.save(ctx, current == nil, next)
	if err != nil {
		return attendance.TimeEntryResponse{}, err
	}

	s.invalidateWeek(req.EmployeeID, date)
	s.invalidateWeek(req.EmployeeID, target)

	slog.Info("Time entry edited manually", "entry_id", saved.ID, "employee_id", saved.EmployeeID, "date", saved.Date.Format(attendance.DateLayout))

	now := s.now()
	return mapEntryToResponse(saved, s.hours.Calculate(saved, s.expectedHours(ctx, saved.EmployeeID, saved.Date), now), s.loc), nil
}

// DeleteEntry implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) DeleteEntry(ctx context.Context, id string) error {
	entry, err := s.TimeEntryRepository.GetEntry(ctx, id)
	if err != nil {
		return s.storeError("get_entry", err)
	}

	release, err := s.guard.acquire(entry.EmployeeID, entry.Date)
	if err != nil {
		return err
	}
	defer release()

	if err := s.TimeEntryRepository.DeleteEntry(ctx, id); err != nil {
		return s.storeError("delete_entry", err)
	}

	s.invalidateWeek(entry.EmployeeID, entry.Date)

	if s.ShiftRepository != nil {
		if err := s.ShiftRepository.ResetAssignmentStatus(ctx, entry.EmployeeID, entry.Date); err != nil {
			slog.Error("Failed to reset shift assignment after delete", "entry_id", id, "employee_id", entry.EmployeeID, "error", err)
		}
	}

	return nil
}

// AutoCloseStaleEntries implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) AutoCloseStaleEntries(ctx context.Context) (int, error) {
	today := attendance.DateOf(s.now(), s.loc)

	entries, err := s.TimeEntryRepository.ListOpenEntries(ctx, today)
	if err != nil {
		return 0, s.storeError("list_open_entries", err)
	}

	closed := 0
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return closed, err
		}

		release, err := s.guard.acquire(entry.EmployeeID, entry.Date)
		if err != nil {
			continue
		}

		next, err := CloseStale(entry, s.expectedHours(ctx, entry.EmployeeID, entry.Date), s.loc)
		if err == nil {
			_, err = s.save(ctx, false, next)
		}
		release()

		if err != nil {
			slog.Warn("Failed to auto close entry", "entry_id", entry.ID, "employee_id", entry.EmployeeID, "error", err)
			continue
		}

		s.invalidateWeek(entry.EmployeeID, entry.Date)
		closed++
	}

	s.metrics.RecordAutoClosed(closed)
	return closed, nil
}

func (s *AttendanceServiceImpl) save(ctx context.Context, create bool, entry attendance.TimeEntry) (attendance.TimeEntry, error) {
	if create {
		saved, err := s.TimeEntryRepository.CreateEntry(ctx, entry)
		if err != nil {
			return attendance.TimeEntry{}, s.storeError("create_entry", err)
		}
		return saved, nil
	}

	saved, err := s.TimeEntryRepository.UpdateEntry(ctx, entry)
	if err != nil {
		return attendance.TimeEntry{}, s.storeError("update_entry", err)
	}
	return saved, nil
}

// storeError passes domain errors through and wraps everything else as ErrStoreUnavailable.
func (s *AttendanceServiceImpl) storeError(operation string, err error) error {
	if errors.Is(err, attendance.ErrEntryNotFound) || errors.Is(err, attendance.ErrConcurrentUpdate) {
		return err
	}
	s.metrics.RecordStoreError(operation)
	slog.Error("Time entry store failed", "operation", operation, "error", err)
	return fmt.Errorf("%w: %s: %w", attendance.ErrStoreUnavailable, operation, err)
}

func (s *AttendanceServiceImpl) expectedHours(ctx context.Context, employeeID string, date time.Time) float64 {
	if s.ShiftRepository == nil {
		return s.defaultExpectedHours
	}

	hours, ok, err := s.ShiftRepository.ExpectedHours(ctx, employeeID, date)
	if err != nil {
		slog.Warn("Failed to load shift, using default expected hours", "employee_id", employeeID, "date", date.Format(attendance.DateLayout), "error", err)
		return s.defaultExpectedHours
	}
	if !ok {
		return s.defaultExpectedHours
	}
	return hours
}

func (s *AttendanceServiceImpl) invalidateWeek(employeeID string, date time.Time) {
	s.weeklyCache.Delete(weeklyCacheKey(employeeID, attendance.WeekStart(date)))
}

func weeklyCacheKey(employeeID string, weekStart time.Time) string {
	return employeeID + "|" + weekStart.Format(attendance.DateLayout)
}

// parseClockValue resolves HH:MM[:SS] on date in loc, or an RFC3339 timestamp.
func parseClockValue(value string, date time.Time, loc *time.Location) (time.Time, error) {
	if t, ok := validator.IsValidClockTime(value); ok {
		return time.Date(date.Year(), date.Month(), date.Day(), t.Hour(), t.Minute(), t.Second(), 0, loc).UTC(), nil
	}
	if t, ok := validator.IsValidDateTime(value); ok {
		return t.UTC(), nil
	}
	return time.Time{}, validator.ValidationErrors{{
		Field:   "clock_time",
		Message: fmt.Sprintf("invalid clock value %q", value),
	}}
}

// shiftEntry moves every instant of entry by d.
func shiftEntry(entry attendance.TimeEntry, d time.Duration) attendance.TimeEntry {
	shifted := entry.Clone()
	if shifted.ClockIn != nil {
		t := shifted.ClockIn.Add(d)
		shifted.ClockIn = &t
	}
	if shifted.ClockOut != nil {
		t := shifted.ClockOut.Add(d)
		shifted.ClockOut = &t
	}
	for i := range shifted.Breaks {
		shifted.Breaks[i].StartTime = shifted.Breaks[i].StartTime.Add(d)
		if shifted.Breaks[i].EndTime != nil {
			t := shifted.Breaks[i].EndTime.Add(d)
			shifted.Breaks[i].EndTime = &t
		}
	}
	return shifted
}

// timeToString formats an instant in the display zone.
func timeToString(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(time.RFC3339)
}

func timePtrToString(t *time.Time, loc *time.Location) *string {
	if t == nil {
		return nil
	}
	formatted := timeToString(*t, loc)
	return &formatted
}

func mapEntryToResponse(entry attendance.TimeEntry, hours attendance.Hours, loc *time.Location) attendance.TimeEntryResponse {
	breaks := make([]attendance.BreakResponse, 0, len(entry.Breaks))
	for _, b := range entry.Breaks {
		breaks = append(breaks, attendance.BreakResponse{
			StartTime:       timeToString(b.StartTime, loc),
			EndTime:         timePtrToString(b.EndTime, loc),
			DurationMinutes: b.DurationMinutes,
		})
	}

	return attendance.TimeEntryResponse{
		ID:                 entry.ID,
		EmployeeID:         entry.EmployeeID,
		Date:               entry.Date.Format(attendance.DateLayout),
		ClockInTime:        timePtrToString(entry.ClockIn, loc),
		ClockOutTime:       timePtrToString(entry.ClockOut, loc),
		Status:             entry.DeriveStatus(),
		Breaks:             breaks,
		Location:           entry.Location,
		WorkType:           entry.WorkType,
		GPSLocation:        entry.GPSLocation,
		HoursWorked:        RoundHours(hours.HoursWorked),
		HoursWorkedDisplay: FormatHours(hours.HoursWorked),
		ExpectedHours:      RoundHours(hours.ExpectedHours),
		Overtime:           RoundHours(hours.Overtime),
		NegativeHours:      RoundHours(hours.NegativeHours),
		Variance:           RoundHours(hours.Variance),
		IsFinal:            hours.Final,
		CreatedAt:          timeToString(entry.CreatedAt, loc),
		UpdatedAt:          timeToString(entry.UpdatedAt, loc),
	}
}

func mapSegmentsToResponse(segments []attendance.Segment, loc *time.Location) []attendance.SegmentResponse {
	resp := make([]attendance.SegmentResponse, 0, len(segments))
	for _, seg := range segments {
		resp = append(resp, attendance.SegmentResponse{
			Type:      seg.Type,
			Left:      RoundHours(seg.Left),
			Width:     RoundHours(seg.Width),
			Color:     seg.Color,
			Label:     seg.Label,
			StartTime: seg.Start.In(loc).Format("15:04"),
			EndTime:   seg.End.In(loc).Format("15:04"),
		})
	}
	return resp
}

func mapWeeklyToResponse(employeeID string, sheet attendance.WeeklyTimesheet, loc *time.Location) attendance.WeeklyTimesheetResponse {
	days := make([]attendance.DayEntryResponse, 0, len(sheet.Days))
	for _, day := range sheet.Days {
		row := attendance.DayEntryResponse{
			Date:               day.Date.Format(attendance.DateLayout),
			DayName:            day.Date.Weekday().String(),
			Classification:     day.Classification,
			IsToday:            day.IsToday,
			IsWeekend:          day.IsWeekend,
			HoursWorked:        RoundHours(day.Hours.HoursWorked),
			HoursWorkedDisplay: FormatHours(day.Hours.HoursWorked),
			Overtime:           RoundHours(day.Hours.Overtime),
			NegativeHours:      RoundHours(day.Hours.NegativeHours),
			Segments:           mapSegmentsToResponse(day.Segments, loc),
		}
		if day.Entry != nil {
			entry := mapEntryToResponse(*day.Entry, day.Hours, loc)
			row.Entry = &entry
		}
		days = append(days, row)
	}

	return attendance.WeeklyTimesheetResponse{
		EmployeeID: employeeID,
		WeekStart:  sheet.WeekStart.Format(attendance.DateLayout),
		WeekEnd:    sheet.WeekEnd.Format(attendance.DateLayout),
		Entries:    days,
		Statistics: attendance.WeeklyStatisticsResponse{
			TotalHoursWorked:        RoundHours(sheet.Statistics.TotalHoursWorked),
			TotalHoursWorkedDisplay: FormatHours(sheet.Statistics.TotalHoursWorked),
			TotalOvertime:           RoundHours(sheet.Statistics.TotalOvertime),
			TotalNegativeHours:      RoundHours(sheet.Statistics.TotalNegativeHours),
		},
	}
}

// now is the service clock in UTC; stored instants are always UTC.
func (s *AttendanceServiceImpl) now() time.Time {
	return s.clock.Now().UTC()
}

func NewAttendanceService(
	entryRepo attendance.TimeEntryRepository,
	shiftRepo attendance.ShiftRepository,
	clk clockwork.Clock,
	m *metrics.AttendanceMetrics,
	opts Options,
) attendance.AttendanceService {
	if clk == nil {
		clk = clockwork.NewRealClock()
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.DefaultExpectedHours <= 0 {
		opts.DefaultExpectedHours = attendance.DefaultExpectedHours
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = 15 * time.Second
	}

	hours := NewHoursCalculator()
	timeline := NewTimelineCalculator(opts.Location)

	return &AttendanceServiceImpl{
		TimeEntryRepository:  entryRepo,
		ShiftRepository:      shiftRepo,
		clock:                clk,
		metrics:              m,
		loc:                  opts.Location,
		defaultExpectedHours: opts.DefaultExpectedHours,
		hours:                hours,
		timeline:             timeline,
		weekly:               NewWeeklyAggregator(hours, timeline),
		guard:                newTransitionGuard(),
		weeklyCache:          cache.New(opts.CacheTTL, opts.CacheTTL*2),
	}
}
