package handlers

import (
	"crypto/rand"
	"errors"
	"fmt"
	"log"
	"math/big"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/ArslanJaveed/idid/config"
	"github.com/ArslanJaveed/idid/database"
	"github.com/ArslanJaveed/idid/mailer"
	"github.com/ArslanJaveed/idid/middlewares"
	"github.com/ArslanJaveed/idid/models"
)

type EmployeeHandler struct {
	Mail mailer.Mailer
	Cfg  *config.Config
}

func NewEmployeeHandler(m mailer.Mailer, cfg *config.Config) *EmployeeHandler {
	return &EmployeeHandler{Mail: m, Cfg: cfg}
}

const codeSuffixAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

func randomCodeSuffix() (string, error) {
	b := make([]byte, 6)
	for i := range b {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(codeSuffixAlphabet))))
		if err != nil {
			return "", err
		}
		b[i] = codeSuffixAlphabet[n.Int64()]
	}
	return string(b), nil
}

// newEmployeeCode derives a tenant-scoped code "CODE-XXXXXX", retrying on
// the rare suffix collision within the company.
func newEmployeeCode(company *models.Company) (string, error) {
	for {
		suffix, err := randomCodeSuffix()
		if err != nil {
			return "", err
		}
		code := fmt.Sprintf("%s-%s", *company.CompanyCode, suffix)
		var n int64
		if err := database.DB.Model(&models.Employee{}).
			Where("company_id = ? AND employee_code = ?", company.ID, code).
			Count(&n).Error; err != nil {
			return "", err
		}
		if n == 0 {
			return code, nil
		}
	}
}

type addEmployeeReq struct {
	Name   string `json:"name" validate:"required,max=255"`
	CNIC   string `json:"cnic" validate:"required,max=20"`
	Email  string `json:"email" validate:"required,email,max=255"`
	RoleID uint   `json:"role_id" validate:"required"`
}

// POST /company/employees/add
// Creates the employee in pending_invite and mails the one-time invite link.
// A failed send rolls the employee back, exactly like a failed insert.
func (h *EmployeeHandler) Add(c echo.Context) error {
	company := middlewares.Principal(c).Company

	var req addEmployeeReq
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	var role models.Role
	if err := database.DB.Where("id = ? AND company_id = ?", req.RoleID, company.ID).
		First(&role).Error; err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity,
			map[string]any{"errors": map[string]string{"role_id": "The selected role does not belong to your company."}})
	}

	code, err := newEmployeeCode(company)
	if err != nil {
		return httpError(http.StatusInternalServerError, "CODE_GENERATION_FAILED")
	}
	inviteToken := uuid.NewString()

	employee := models.Employee{
		CompanyID:    company.ID,
		RoleID:       role.ID,
		EmployeeCode: code,
		Name:         req.Name,
		CNIC:         strings.TrimSpace(req.CNIC),
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		Status:       models.EmployeePendingInvite,
		InviteToken:  &inviteToken,
	}
	if err := database.DB.Create(&employee).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return httpError(http.StatusConflict, "EMPLOYEE_EXISTS")
		}
		return httpError(http.StatusInternalServerError, "CREATE_FAILED")
	}

	inviteLink := fmt.Sprintf("%s/employee/register?employee_id=%d&token=%s",
		h.Cfg.FrontendURL, employee.ID, inviteToken)

	if err := h.Mail.SendInvite(employee.Email, employee.Name, company.CompanyName, code, inviteLink); err != nil {
		if derr := database.DB.Delete(&employee).Error; derr != nil {
			log.Printf("employee %d: rollback after failed invite send: %v", employee.ID, derr)
		}
		return httpError(http.StatusBadGateway, "INVITE_DELIVERY_FAILED")
	}

	return c.JSON(http.StatusCreated, map[string]any{
		"message":     "Employee added and invitation sent.",
		"employee":    employee,
		"invite_link": inviteLink,
	})
}

// GET /company/employees?status=
func (h *EmployeeHandler) List(c echo.Context) error {
	company := middlewares.Principal(c).Company

	tx := database.DB.Preload("Role").Where("company_id = ?", company.ID)
	if status := models.EmployeeStatus(c.QueryParam("status")); status != "" {
		switch status {
		case models.EmployeePendingInvite, models.EmployeeInvited, models.EmployeeActive, models.EmployeeInactive:
			tx = tx.Where("status = ?", status)
		default:
			return httpError(http.StatusBadRequest, "INVALID_STATUS")
		}
	}

	var employees []models.Employee
	if err := tx.Order("id ASC").Find(&employees).Error; err != nil {
		return httpError(http.StatusInternalServerError, "LIST_FAILED")
	}
	return c.JSON(http.StatusOK, map[string]any{"employees": employees})
}

// GET /company/employees/:id
func (h *EmployeeHandler) Show(c echo.Context) error {
	employee, err := h.ownedEmployee(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{"employee": employee})
}

type updateEmployeeReq struct {
	Name     *string                `json:"name" validate:"omitempty,max=255"`
	CNIC     *string                `json:"cnic" validate:"omitempty,max=20"`
	Email    *string                `json:"email" validate:"omitempty,email,max=255"`
	RoleID   *uint                  `json:"role_id"`
	Status   *models.EmployeeStatus `json:"status" validate:"omitempty,oneof=pending_invite invited active inactive"`
	ImageURL *string                `json:"profile_image_url" validate:"omitempty,url,max=2048"`
}

// PUT /company/employees/:id
func (h *EmployeeHandler) Update(c echo.Context) error {
	company := middlewares.Principal(c).Company
	employee, err := h.ownedEmployee(c)
	if err != nil {
		return err
	}

	var req updateEmployeeReq
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	updates := map[string]any{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.CNIC != nil {
		updates["cnic"] = strings.TrimSpace(*req.CNIC)
	}
	if req.Email != nil {
		updates["email"] = strings.ToLower(strings.TrimSpace(*req.Email))
	}
	if req.RoleID != nil {
		var role models.Role
		if err := database.DB.Where("id = ? AND company_id = ?", *req.RoleID, company.ID).
			First(&role).Error; err != nil {
			return echo.NewHTTPError(http.StatusUnprocessableEntity,
				map[string]any{"errors": map[string]string{"role_id": "The selected role does not belong to your company."}})
		}
		updates["role_id"] = role.ID
	}
	if req.Status != nil {
		updates["status"] = *req.Status
	}
	if req.ImageURL != nil {
		updates["image_url"] = *req.ImageURL
	}

	if len(updates) > 0 {
		if err := database.DB.Model(employee).Updates(updates).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return httpError(http.StatusConflict, "EMPLOYEE_EXISTS")
			}
			return httpError(http.StatusInternalServerError, "UPDATE_FAILED")
		}
	}

	if err := database.DB.Preload("Role").First(employee, employee.ID).Error; err != nil {
		return httpError(http.StatusInternalServerError, "UPDATE_FAILED")
	}
	return c.JSON(http.StatusOK, map[string]any{
		"message":  "Employee updated.",
		"employee": employee,
	})
}

// DELETE /company/employees/:id
// Cascades the employee's attendance records and tasks.
func (h *EmployeeHandler) Delete(c echo.Context) error {
	employee, err := h.ownedEmployee(c)
	if err != nil {
		return err
	}

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		var recs []models.Attendance
		if err := tx.Where("employee_id = ?", employee.ID).Find(&recs).Error; err != nil {
			return err
		}
		if err := tx.Where("employee_id = ?", employee.ID).Delete(&models.Task{}).Error; err != nil {
			return err
		}
		if err := tx.Where("employee_id = ?", employee.ID).Delete(&models.Attendance{}).Error; err != nil {
			return err
		}
		if err := tx.Where("principal_kind = ? AND principal_id = ?",
			models.KindEmployee, employee.ID).Delete(&models.SessionToken{}).Error; err != nil {
			return err
		}
		return tx.Delete(employee).Error
	})
	if err != nil {
		return httpError(http.StatusInternalServerError, "DELETE_FAILED")
	}

	return c.JSON(http.StatusOK, map[string]any{"message": "Employee deleted."})
}

// ownedEmployee loads the :id employee and hides cross-tenant ids behind a
// 404 rather than a 403.
func (h *EmployeeHandler) ownedEmployee(c echo.Context) (*models.Employee, error) {
	company := middlewares.Principal(c).Company
	id, err := pathID(c, "id")
	if err != nil {
		return nil, err
	}

	var employee models.Employee
	if err := database.DB.Preload("Role").First(&employee, id).Error; err != nil {
		return nil, httpError(http.StatusNotFound, "EMPLOYEE_NOT_FOUND")
	}
	if employee.CompanyID != company.ID {
		return nil, httpError(http.StatusNotFound, "EMPLOYEE_NOT_FOUND")
	}
	return &employee, nil
}
