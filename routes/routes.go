package routes

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ArslanJaveed/idid/attendance"
	"github.com/ArslanJaveed/idid/auth"
	"github.com/ArslanJaveed/idid/config"
	"github.com/ArslanJaveed/idid/database"
	"github.com/ArslanJaveed/idid/handlers"
	"github.com/ArslanJaveed/idid/mailer"
	"github.com/ArslanJaveed/idid/middlewares"
	"github.com/ArslanJaveed/idid/report"
)

// Register wires all HTTP routes.
func Register(e *echo.Echo, cfg *config.Config) {
	svc := auth.NewService(database.DB)
	engine := attendance.NewEngine(database.DB)
	reader := report.NewReader(database.DB)
	var mail mailer.Mailer = mailer.LogMailer{}

	companyAuth := handlers.NewCompanyAuthHandler(svc, mail)
	employeeAuth := handlers.NewEmployeeAuthHandler(svc, mail)
	emp := handlers.NewEmployeeHandler(mail, cfg)
	role := handlers.NewRoleHandler()
	att := handlers.NewAttendanceHandler(engine)
	task := handlers.NewTaskHandler(engine)
	rep := handlers.NewReportHandler(reader)

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	// ===== Public: company registration wizard =====
	e.POST("/company/register", companyAuth.Register)
	e.POST("/company/verify-otp", companyAuth.VerifyOTP)
	e.POST("/company/set-password-code", companyAuth.SetPasswordAndCode)
	e.POST("/company/login", companyAuth.Login)

	// ===== Public: employee invite wizard =====
	e.POST("/employee/verify-invite", employeeAuth.VerifyInvite)
	e.POST("/employee/complete-profile", employeeAuth.CompleteProfile)
	e.POST("/employee/set-password-verify-email", employeeAuth.SetPasswordAndSendOTP)
	e.POST("/employee/verify-otp", employeeAuth.VerifyOTP)
	e.POST("/employee/login", employeeAuth.Login)

	authMW := middlewares.RequireAuth(svc)

	// ===== Either principal kind =====
	e.GET("/user", handlers.CurrentUser, authMW)

	// ===== Company admin =====
	company := e.Group("/company", authMW, middlewares.RequireCompany())
	company.POST("/logout", companyAuth.Logout)
	company.PUT("/settings", companyAuth.UpdateSettings)

	company.POST("/employees/add", emp.Add)
	company.GET("/employees", emp.List)
	company.GET("/employees/:id", emp.Show)
	company.PUT("/employees/:id", emp.Update)
	company.DELETE("/employees/:id", emp.Delete)
	company.GET("/employees/:id/attendance-history", att.HistoryForEmployee)

	company.GET("/roles", role.List)
	company.POST("/roles", role.Create)
	company.GET("/roles/:id", role.Show)
	company.PUT("/roles/:id", role.Update)
	company.DELETE("/roles/:id", role.Delete)

	company.GET("/reports/daily", rep.Daily)

	// ===== Employee =====
	employee := e.Group("/employee", authMW, middlewares.RequireEmployee())
	employee.POST("/logout", employeeAuth.Logout)

	employee.POST("/check-in", att.CheckIn)
	employee.POST("/check-out", att.CheckOut)
	employee.GET("/today-status", att.TodayStatus)
	employee.GET("/attendance-history", att.History)

	employee.POST("/tasks/add", task.Add)
	employee.PUT("/tasks/:id/status", task.UpdateStatus)
	employee.GET("/tasks/today", task.Today)
	employee.GET("/tasks/history/:attendance_id", task.Historical)
}
