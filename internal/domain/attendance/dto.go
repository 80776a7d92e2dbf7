package attendance

import (
	"github.com/cmlabs-hris/hris-timesheet/internal/pkg/validator"
)

// ========================================
// CLOCK ACTION DTOs
// ========================================

type ClockInRequest struct {
	EmployeeID  string              `json:"-"`
	Location    string              `json:"location"`
	WorkType    string              `json:"work_type"`
	GPSLocation *GPSLocationRequest `json:"gps_location,omitempty"`
}

type GPSLocationRequest struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Accuracy  float64 `json:"accuracy"`
}

func (r *ClockInRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_id",
			Message: "employee_id is required",
		})
	}

	if len(r.Location) > 255 {
		errs = append(errs, validator.ValidationError{
			Field:   "location",
			Message: "location must not exceed 255 characters",
		})
	}

	if len(r.WorkType) > 50 {
		errs = append(errs, validator.ValidationError{
			Field:   "work_type",
			Message: "work_type must not exceed 50 characters",
		})
	}

	if r.GPSLocation != nil {
		if r.GPSLocation.Latitude < -90 || r.GPSLocation.Latitude > 90 {
			errs = append(errs, validator.ValidationError{
				Field:   "gps_location.latitude",
				Message: "latitude must be between -90 and 90",
			})
		}
		if r.GPSLocation.Longitude < -180 || r.GPSLocation.Longitude > 180 {
			errs = append(errs, validator.ValidationError{
				Field:   "gps_location.longitude",
				Message: "longitude must be between -180 and 180",
			})
		}
		if r.GPSLocation.Accuracy < 0 {
			errs = append(errs, validator.ValidationError{
				Field:   "gps_location.accuracy",
				Message: "accuracy must not be negative",
			})
		}
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// ManualEditRequest lets a manager fix an entry, e.g. a forgotten clock out.
// Clock times accept HH:MM, HH:MM:SS (on the entry date, configured zone) or RFC3339.
type ManualEditRequest struct {
	EmployeeID   string  `json:"employee_id"`
	Date         string  `json:"date"`               // YYYY-MM-DD
	NewDate      *string `json:"new_date,omitempty"` // YYYY-MM-DD
	ClockInTime  *string `json:"clock_in_time,omitempty"`
	ClockOutTime *string `json:"clock_out_time,omitempty"`
}

func (r *ManualEditRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_id",
			Message: "employee_id is required",
		})
	}

	if _, valid := validator.IsValidDate(r.Date); !valid {
		errs = append(errs, validator.ValidationError{
			Field:   "date",
			Message: "date must be in YYYY-MM-DD format",
		})
	}

	if r.NewDate != nil {
		if _, valid := validator.IsValidDate(*r.NewDate); !valid {
			errs = append(errs, validator.ValidationError{
				Field:   "new_date",
				Message: "new_date must be in YYYY-MM-DD format",
			})
		}
	}

	if r.ClockInTime != nil && !validator.IsValidClockValue(*r.ClockInTime) {
		errs = append(errs, validator.ValidationError{
			Field:   "clock_in_time",
			Message: "clock_in_time must be HH:MM, HH:MM:SS or an RFC3339 timestamp",
		})
	}

	if r.ClockOutTime != nil && !validator.IsValidClockValue(*r.ClockOutTime) {
		errs = append(errs, validator.ValidationError{
			Field:   "clock_out_time",
			Message: "clock_out_time must be HH:MM, HH:MM:SS or an RFC3339 timestamp",
		})
	}

	if r.NewDate == nil && r.ClockInTime == nil && r.ClockOutTime == nil {
		errs = append(errs, validator.ValidationError{
			Field:   "clock_in_time",
			Message: "at least one of new_date, clock_in_time or clock_out_time is required",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// ========================================
// RESPONSE DTOs
// ========================================

type BreakResponse struct {
	StartTime       string  `json:"start_time"`
	EndTime         *string `json:"end_time,omitempty"`
	DurationMinutes int     `json:"duration_minutes"`
}

type TimeEntryResponse struct {
	ID                 string          `json:"id"`
	EmployeeID         string          `json:"employee_id"`
	Date               string          `json:"date"`
	ClockInTime        *string         `json:"clock_in_time,omitempty"`
	ClockOutTime       *string         `json:"clock_out_time,omitempty"`
	Status             Status          `json:"status"`
	Breaks             []BreakResponse `json:"breaks"`
	Location           string          `json:"location,omitempty"`
	WorkType           string          `json:"work_type,omitempty"`
	GPSLocation        *GPSLocation    `json:"gps_location,omitempty"`
	HoursWorked        float64         `json:"hours_worked"`
	HoursWorkedDisplay string          `json:"hours_worked_display"`
	ExpectedHours      float64         `json:"expected_hours"`
	Overtime           float64         `json:"overtime"`
	NegativeHours      float64         `json:"negative_hours"`
	Variance           float64         `json:"variance"`
	IsFinal            bool            `json:"is_final"`
	CreatedAt          string          `json:"created_at"`
	UpdatedAt          string          `json:"updated_at"`
}

type StatusResponse struct {
	Date          string             `json:"date"`
	Status        Status             `json:"status"`
	Entry         *TimeEntryResponse `json:"entry,omitempty"`
	CanClockIn    bool               `json:"can_clock_in"`
	CanStartBreak bool               `json:"can_start_break"`
	CanResumeWork bool               `json:"can_resume_work"`
	CanClockOut   bool               `json:"can_clock_out"`
	Message       string             `json:"message"`
}

type SegmentResponse struct {
	Type      SegmentType `json:"type"`
	Left      float64     `json:"left"`
	Width     float64     `json:"width"`
	Color     string      `json:"color"`
	Label     string      `json:"label,omitempty"`
	StartTime string      `json:"start_time"`
	EndTime   string      `json:"end_time"`
}

type TimelineResponse struct {
	Date     string            `json:"date"`
	Absent   bool              `json:"absent"`
	Segments []SegmentResponse `json:"segments"`
}

type DayEntryResponse struct {
	Date               string             `json:"date"`
	DayName            string             `json:"day_name"`
	Classification     DayClassification  `json:"classification"`
	IsToday            bool               `json:"is_today"`
	IsWeekend          bool               `json:"is_weekend"`
	Entry              *TimeEntryResponse `json:"entry,omitempty"`
	HoursWorked        float64            `json:"hours_worked"`
	HoursWorkedDisplay string             `json:"hours_worked_display"`
	Overtime           float64            `json:"overtime"`
	NegativeHours      float64            `json:"negative_hours"`
	Segments           []SegmentResponse  `json:"segments"`
}

type WeeklyStatisticsResponse struct {
	TotalHoursWorked        float64 `json:"total_hours_worked"`
	TotalHoursWorkedDisplay string  `json:"total_hours_worked_display"`
	TotalOvertime           float64 `json:"total_overtime"`
	TotalNegativeHours      float64 `json:"total_negative_hours"`
}

type WeeklyTimesheetResponse struct {
	EmployeeID string                   `json:"employee_id"`
	WeekStart  string                   `json:"week_start"`
	WeekEnd    string                   `json:"week_end"`
	Entries    []DayEntryResponse       `json:"entries"`
	Statistics WeeklyStatisticsResponse `json:"statistics"`
}
