package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/ArslanJaveed/idid/middlewares"
	"github.com/ArslanJaveed/idid/report"
)

type ReportHandler struct {
	Reader *report.Reader
}

func NewReportHandler(r *report.Reader) *ReportHandler {
	return &ReportHandler{Reader: r}
}

// GET /company/reports/daily?date=YYYY-MM-DD
// Defaults to yesterday, matching the scheduled report.
func (h *ReportHandler) Daily(c echo.Context) error {
	company := middlewares.Principal(c).Company

	date := c.QueryParam("date")
	if date == "" {
		date = time.Now().AddDate(0, 0, -1).Format("2006-01-02")
	} else if _, err := time.Parse("2006-01-02", date); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity,
			map[string]any{"errors": map[string]string{"date": "Must be YYYY-MM-DD."}})
	}

	rep, err := h.Reader.BuildDailyReport(company.ID, date)
	if err != nil {
		if errors.Is(err, report.ErrCompanyNotFound) {
			return httpError(http.StatusNotFound, "COMPANY_NOT_FOUND")
		}
		return httpError(http.StatusInternalServerError, "REPORT_FAILED")
	}

	return c.JSON(http.StatusOK, map[string]any{"report": rep})
}
