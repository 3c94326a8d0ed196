package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/ArslanJaveed/idid/database"
	"github.com/ArslanJaveed/idid/middlewares"
	"github.com/ArslanJaveed/idid/models"
)

type RoleHandler struct{}

func NewRoleHandler() *RoleHandler { return &RoleHandler{} }

type roleReq struct {
	RoleName    string `json:"role_name" validate:"required,max=255"`
	Description string `json:"description"`
}

// GET /company/roles
func (h *RoleHandler) List(c echo.Context) error {
	company := middlewares.Principal(c).Company

	var roles []models.Role
	if err := database.DB.Where("company_id = ?", company.ID).
		Order("id ASC").Find(&roles).Error; err != nil {
		return httpError(http.StatusInternalServerError, "LIST_FAILED")
	}
	return c.JSON(http.StatusOK, map[string]any{"roles": roles})
}

// POST /company/roles
func (h *RoleHandler) Create(c echo.Context) error {
	company := middlewares.Principal(c).Company

	var req roleReq
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	role := models.Role{
		CompanyID:   company.ID,
		RoleName:    req.RoleName,
		Description: req.Description,
	}
	if err := database.DB.Create(&role).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return httpError(http.StatusConflict, "ROLE_NAME_EXISTS")
		}
		return httpError(http.StatusInternalServerError, "CREATE_FAILED")
	}

	return c.JSON(http.StatusCreated, map[string]any{
		"message": "Role created.",
		"role":    role,
	})
}

// GET /company/roles/:id
func (h *RoleHandler) Show(c echo.Context) error {
	role, err := h.ownedRole(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{"role": role})
}

// PUT /company/roles/:id
func (h *RoleHandler) Update(c echo.Context) error {
	role, err := h.ownedRole(c)
	if err != nil {
		return err
	}

	var req roleReq
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	err = database.DB.Model(role).Updates(map[string]any{
		"role_name":   req.RoleName,
		"description": req.Description,
	}).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return httpError(http.StatusConflict, "ROLE_NAME_EXISTS")
		}
		return httpError(http.StatusInternalServerError, "UPDATE_FAILED")
	}

	return c.JSON(http.StatusOK, map[string]any{
		"message": "Role updated.",
		"role":    role,
	})
}

// DELETE /company/roles/:id
// Refused while any employee still references the role.
func (h *RoleHandler) Delete(c echo.Context) error {
	role, err := h.ownedRole(c)
	if err != nil {
		return err
	}

	var n int64
	if err := database.DB.Model(&models.Employee{}).
		Where("role_id = ?", role.ID).Count(&n).Error; err != nil {
		return httpError(http.StatusInternalServerError, "DELETE_FAILED")
	}
	if n > 0 {
		return httpError(http.StatusConflict, "ROLE_IN_USE")
	}

	if err := database.DB.Delete(role).Error; err != nil {
		return httpError(http.StatusInternalServerError, "DELETE_FAILED")
	}
	return c.JSON(http.StatusOK, map[string]any{"message": "Role deleted."})
}

func (h *RoleHandler) ownedRole(c echo.Context) (*models.Role, error) {
	company := middlewares.Principal(c).Company
	id, err := pathID(c, "id")
	if err != nil {
		return nil, err
	}

	var role models.Role
	if err := database.DB.First(&role, id).Error; err != nil {
		return nil, httpError(http.StatusNotFound, "ROLE_NOT_FOUND")
	}
	if role.CompanyID != company.ID {
		return nil, httpError(http.StatusNotFound, "ROLE_NOT_FOUND")
	}
	return &role, nil
}
