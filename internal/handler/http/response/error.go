package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/hris-timesheet/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-timesheet/internal/domain/user"
	"github.com/cmlabs-hris/hris-timesheet/internal/pkg/jwt"
	"github.com/cmlabs-hris/hris-timesheet/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Auth errors
	case errors.Is(err, jwt.ErrInvalidToken):
		Unauthorized(w, err.Error())
	case errors.Is(err, user.ErrEmployeeIDRequired):
		Forbidden(w, "Employee ID not found in token")
	case errors.Is(err, user.ErrInsufficientPermissions):
		Forbidden(w, err.Error())

	// Attendance domain errors
	case errors.Is(err, attendance.ErrAlreadyClockedIn):
		Conflict(w, "You have already clocked in today")
	case errors.Is(err, attendance.ErrNoActiveSession):
		Conflict(w, err.Error())
	case errors.Is(err, attendance.ErrTransitionInProgress):
		Conflict(w, "Another action for this entry is in progress, please retry")
	case errors.Is(err, attendance.ErrConcurrentUpdate):
		Conflict(w, "Time entry was modified concurrently, please retry")
	case errors.Is(err, attendance.ErrEntryAlreadyExists):
		Conflict(w, "A time entry already exists for this date")
	case errors.Is(err, attendance.ErrInvalidInterval):
		UnprocessableEntity(w, err.Error())
	case errors.Is(err, attendance.ErrEntryNotFound):
		NotFound(w, "Time entry not found")
	case errors.Is(err, attendance.ErrStoreUnavailable):
		slog.Error("Time entry store unavailable", "error", err)
		ServiceUnavailable(w, "Time entry store is unavailable, please retry later")

	// Default
	default:
		slog.Error("Unhandled error", "error", err)
		InternalServerError(w, "An unexpected error occurred")
	}
}
