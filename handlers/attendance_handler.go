package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/ArslanJaveed/idid/attendance"
	"github.com/ArslanJaveed/idid/database"
	"github.com/ArslanJaveed/idid/middlewares"
	"github.com/ArslanJaveed/idid/models"
)

type AttendanceHandler struct {
	Engine *attendance.Engine
}

func NewAttendanceHandler(en *attendance.Engine) *AttendanceHandler {
	return &AttendanceHandler{Engine: en}
}

type checkInReq struct {
	Tasks []struct {
		Description string `json:"description" validate:"required,max=500"`
	} `json:"tasks" validate:"omitempty,dive"`
}

// POST /employee/check-in
func (h *AttendanceHandler) CheckIn(c echo.Context) error {
	employee := middlewares.Principal(c).Employee

	var req checkInReq
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	var company models.Company
	if err := database.DB.First(&company, employee.CompanyID).Error; err != nil {
		return httpError(http.StatusInternalServerError, "COMPANY_LOOKUP_FAILED")
	}

	descriptions := make([]string, 0, len(req.Tasks))
	for _, t := range req.Tasks {
		descriptions = append(descriptions, t.Description)
	}

	rec, err := h.Engine.CheckIn(employee, &company, descriptions)
	if err != nil {
		if errors.Is(err, attendance.ErrAlreadyCheckedIn) {
			return httpError(http.StatusConflict, "ALREADY_CHECKED_IN")
		}
		return httpError(http.StatusInternalServerError, "CHECK_IN_FAILED")
	}

	msg := "Checked in successfully."
	if rec.IsAbsent {
		msg = "Checked in late. You are marked as absent for today."
	}
	return c.JSON(http.StatusCreated, map[string]any{
		"message":    msg,
		"attendance": rec,
		"is_absent":  rec.IsAbsent,
	})
}

type checkOutReq struct {
	// JSON object keys arrive as strings; "12": true means task 12 is done.
	TaskStatuses map[string]bool `json:"task_statuses" validate:"required"`
}

// POST /employee/check-out
func (h *AttendanceHandler) CheckOut(c echo.Context) error {
	employee := middlewares.Principal(c).Employee

	var req checkOutReq
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	statuses := make(map[uint]bool, len(req.TaskStatuses))
	for key, done := range req.TaskStatuses {
		id, err := strconv.ParseUint(key, 10, 64)
		if err != nil {
			return echo.NewHTTPError(http.StatusUnprocessableEntity,
				map[string]any{"errors": map[string]string{"task_statuses": "Keys must be task ids."}})
		}
		statuses[uint(id)] = done
	}

	rec, err := h.Engine.CheckOut(employee, statuses)
	if err != nil {
		if errors.Is(err, attendance.ErrNotCheckedIn) {
			return httpError(http.StatusBadRequest, "NOT_CHECKED_IN")
		}
		return httpError(http.StatusInternalServerError, "CHECK_OUT_FAILED")
	}

	return c.JSON(http.StatusOK, map[string]any{
		"message":    "Checked out successfully. Tasks updated.",
		"attendance": rec,
	})
}

// GET /employee/today-status
func (h *AttendanceHandler) TodayStatus(c echo.Context) error {
	employee := middlewares.Principal(c).Employee

	rec, err := h.Engine.GetToday(employee)
	if err != nil {
		if errors.Is(err, attendance.ErrNotFound) {
			return c.JSON(http.StatusOK, map[string]any{
				"today_attendance": nil,
				"status":           "not_checked_in",
			})
		}
		return httpError(http.StatusInternalServerError, "STATUS_LOOKUP_FAILED")
	}

	return c.JSON(http.StatusOK, map[string]any{
		"today_attendance": rec,
		"status":           rec.Status,
	})
}

// GET /employee/attendance-history?start_date=&end_date=
func (h *AttendanceHandler) History(c echo.Context) error {
	employee := middlewares.Principal(c).Employee

	rows, err := h.Engine.History(employee, c.QueryParam("start_date"), c.QueryParam("end_date"))
	if err != nil {
		return httpError(http.StatusInternalServerError, "HISTORY_FAILED")
	}
	return c.JSON(http.StatusOK, map[string]any{"attendance_history": rows})
}

// GET /company/employees/:id/attendance-history
// Admin view of one employee's history; cross-tenant ids read as missing.
func (h *AttendanceHandler) HistoryForEmployee(c echo.Context) error {
	company := middlewares.Principal(c).Company

	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	rows, err := h.Engine.HistoryForEmployee(company, id, c.QueryParam("start_date"), c.QueryParam("end_date"))
	if err != nil {
		if errors.Is(err, attendance.ErrNotFound) {
			return httpError(http.StatusNotFound, "EMPLOYEE_NOT_FOUND")
		}
		return httpError(http.StatusInternalServerError, "HISTORY_FAILED")
	}
	return c.JSON(http.StatusOK, map[string]any{"attendance_history": rows})
}
