package http

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/hris-timesheet/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-timesheet/internal/domain/user"
	"github.com/cmlabs-hris/hris-timesheet/internal/handler/http/middleware"
	"github.com/cmlabs-hris/hris-timesheet/internal/handler/http/response"
	"github.com/cmlabs-hris/hris-timesheet/internal/pkg/validator"
	"github.com/go-chi/chi/v5"
)

type AttendanceHandler interface {
	GetStatus(w http.ResponseWriter, r *http.Request)
	ClockIn(w http.ResponseWriter, r *http.Request)
	StartBreak(w http.ResponseWriter, r *http.Request)
	ResumeWork(w http.ResponseWriter, r *http.Request)
	ClockOut(w http.ResponseWriter, r *http.Request)
	GetMyWeekly(w http.ResponseWriter, r *http.Request)
	GetTimeline(w http.ResponseWriter, r *http.Request)
	GetEmployeeWeekly(w http.ResponseWriter, r *http.Request)
	ManualEdit(w http.ResponseWriter, r *http.Request)
	Delete(w http.ResponseWriter, r *http.Request)
}

type attendanceHandlerImpl struct {
	attendanceService attendance.AttendanceService
}

func NewAttendanceHandler(attendanceService attendance.AttendanceService) AttendanceHandler {
	return &attendanceHandlerImpl{
		attendanceService: attendanceService,
	}
}

// employeeID reads the caller's employee_id claim, writing the error response when absent.
func employeeID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id, ok := middleware.EmployeeID(r)
	if !ok {
		slog.Error("employee_id not found in JWT claims")
		response.HandleError(w, user.ErrEmployeeIDRequired)
		return "", false
	}
	return id, true
}

// GetStatus implements AttendanceHandler.
func (h *attendanceHandlerImpl) GetStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := employeeID(w, r)
	if !ok {
		return
	}

	result, err := h.attendanceService.GetStatus(r.Context(), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// ClockIn implements AttendanceHandler.
func (h *attendanceHandlerImpl) ClockIn(w http.ResponseWriter, r *http.Request) {
	id, ok := employeeID(w, r)
	if !ok {
		return
	}

	// The body is optional: location details only
	var req attendance.ClockInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		slog.Error("Failed to decode clock in request", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.EmployeeID = id

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.attendanceService.ClockIn(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Clock in successful", result)
}

// StartBreak implements AttendanceHandler.
func (h *attendanceHandlerImpl) StartBreak(w http.ResponseWriter, r *http.Request) {
	id, ok := employeeID(w, r)
	if !ok {
		return
	}

	result, err := h.attendanceService.StartBreak(r.Context(), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Break started", result)
}

// ResumeWork implements AttendanceHandler.
func (h *attendanceHandlerImpl) ResumeWork(w http.ResponseWriter, r *http.Request) {
	id, ok := employeeID(w, r)
	if !ok {
		return
	}

	result, err := h.attendanceService.ResumeWork(r.Context(), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Work resumed", result)
}

// ClockOut implements AttendanceHandler.
func (h *attendanceHandlerImpl) ClockOut(w http.ResponseWriter, r *http.Request) {
	id, ok := employeeID(w, r)
	if !ok {
		return
	}

	result, err := h.attendanceService.ClockOut(r.Context(), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Clock out successful", result)
}

// GetMyWeekly implements AttendanceHandler.
func (h *attendanceHandlerImpl) GetMyWeekly(w http.ResponseWriter, r *http.Request) {
	id, ok := employeeID(w, r)
	if !ok {
		return
	}

	result, err := h.attendanceService.GetWeeklyTimesheet(r.Context(), id, r.URL.Query().Get("week_start"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// GetTimeline implements AttendanceHandler.
func (h *attendanceHandlerImpl) GetTimeline(w http.ResponseWriter, r *http.Request) {
	id, ok := employeeID(w, r)
	if !ok {
		return
	}

	result, err := h.attendanceService.GetTimeline(r.Context(), id, r.URL.Query().Get("date"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// GetEmployeeWeekly implements AttendanceHandler.
func (h *attendanceHandlerImpl) GetEmployeeWeekly(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "employeeID")
	if validator.IsEmpty(id) {
		response.BadRequest(w, "employeeID is required", nil)
		return
	}

	result, err := h.attendanceService.GetWeeklyTimesheet(r.Context(), id, r.URL.Query().Get("week_start"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// ManualEdit implements AttendanceHandler.
func (h *attendanceHandlerImpl) ManualEdit(w http.ResponseWriter, r *http.Request) {
	var req attendance.ManualEditRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Failed to decode manual edit request", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.attendanceService.ManualEdit(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Time entry updated", result)
}

// Delete implements AttendanceHandler.
func (h *attendanceHandlerImpl) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !validator.IsValidUUID(id) {
		response.BadRequest(w, "Invalid time entry ID", nil)
		return
	}

	if err := h.attendanceService.DeleteEntry(r.Context(), id); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Time entry deleted", nil)
}
