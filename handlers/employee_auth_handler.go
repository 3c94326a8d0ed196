package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"

	"github.com/ArslanJaveed/idid/auth"
	"github.com/ArslanJaveed/idid/database"
	"github.com/ArslanJaveed/idid/mailer"
	"github.com/ArslanJaveed/idid/middlewares"
	"github.com/ArslanJaveed/idid/models"
)

type EmployeeAuthHandler struct {
	Auth *auth.Service
	Mail mailer.Mailer
}

func NewEmployeeAuthHandler(svc *auth.Service, m mailer.Mailer) *EmployeeAuthHandler {
	return &EmployeeAuthHandler{Auth: svc, Mail: m}
}

type verifyInviteReq struct {
	EmployeeID uint   `json:"employee_id" validate:"required"`
	Token      string `json:"token" validate:"required"`
}

// POST /employee/verify-invite
// First step after the employee clicks the invite link.
func (h *EmployeeAuthHandler) VerifyInvite(c echo.Context) error {
	var req verifyInviteReq
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	employee, err := h.Auth.ConsumeInvite(req.EmployeeID, req.Token)
	if err != nil {
		return httpError(http.StatusBadRequest, "INVALID_INVITE")
	}

	return c.JSON(http.StatusOK, map[string]any{
		"message":  "Invitation verified. Complete your profile.",
		"employee": employee,
	})
}

type completeProfileReq struct {
	EmployeeID   uint    `json:"employee_id" validate:"required"`
	Name         string  `json:"name" validate:"required,max=255"`
	EmployeeCode string  `json:"employee_code" validate:"required,max=20"`
	ImageURL     *string `json:"profile_image_url" validate:"omitempty,url,max=2048"`
}

// POST /employee/complete-profile
// The employee confirms the code their company assigned and accepts
// enrolment; the invite token is cleared here, making the link single-use.
func (h *EmployeeAuthHandler) CompleteProfile(c echo.Context) error {
	var req completeProfileReq
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	var employee models.Employee
	if err := database.DB.First(&employee, req.EmployeeID).Error; err != nil {
		return httpError(http.StatusNotFound, "EMPLOYEE_NOT_FOUND")
	}
	if employee.Status != models.EmployeeInvited {
		return httpError(http.StatusForbidden, "INVALID_STATUS")
	}
	if employee.EmployeeCode != req.EmployeeCode {
		return httpError(http.StatusBadRequest, "EMPLOYEE_CODE_MISMATCH")
	}

	updates := map[string]any{
		"name":               req.Name,
		"enrolment_accepted": true,
		"status":             models.EmployeeActive,
		"invite_token":       nil,
	}
	if req.ImageURL != nil {
		updates["image_url"] = *req.ImageURL
	}
	if err := database.DB.Model(&employee).Updates(updates).Error; err != nil {
		return httpError(http.StatusInternalServerError, "UPDATE_FAILED")
	}

	return c.JSON(http.StatusOK, map[string]any{
		"message":  "Profile completed. Set your password next.",
		"employee": employee,
	})
}

type setPasswordReq struct {
	EmployeeID           uint   `json:"employee_id" validate:"required"`
	Password             string `json:"password" validate:"required,min=8"`
	PasswordConfirmation string `json:"password_confirmation" validate:"required,eqfield=Password"`
}

// POST /employee/set-password-verify-email
// Stores the password and mails the email-verification OTP.
func (h *EmployeeAuthHandler) SetPasswordAndSendOTP(c echo.Context) error {
	var req setPasswordReq
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	var employee models.Employee
	if err := database.DB.First(&employee, req.EmployeeID).Error; err != nil {
		return httpError(http.StatusNotFound, "EMPLOYEE_NOT_FOUND")
	}
	if employee.Status != models.EmployeeActive || employee.IsEmailVerified {
		return httpError(http.StatusForbidden, "INVALID_STATUS")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return httpError(http.StatusInternalServerError, "HASH_FAILED")
	}
	code, err := h.Auth.IssueOTP(&employee.Verification)
	if err != nil {
		return httpError(http.StatusInternalServerError, "OTP_GENERATION_FAILED")
	}

	if err := database.DB.Model(&employee).Updates(map[string]any{
		"password":       string(hash),
		"otp_code":       employee.OTPCode,
		"otp_expires_at": employee.OTPExpiresAt,
	}).Error; err != nil {
		return httpError(http.StatusInternalServerError, "UPDATE_FAILED")
	}

	if err := h.Mail.SendOTP(employee.Email, code); err != nil {
		return c.JSON(http.StatusBadGateway, map[string]any{
			"error":       "OTP_DELIVERY_FAILED",
			"employee_id": employee.ID,
		})
	}

	return c.JSON(http.StatusOK, map[string]any{
		"message":     "Password set. An OTP has been sent for email verification.",
		"employee_id": employee.ID,
	})
}

type employeeVerifyOTPReq struct {
	EmployeeID uint   `json:"employee_id" validate:"required"`
	OTPCode    string `json:"otp_code" validate:"required,len=6"`
}

// POST /employee/verify-otp
func (h *EmployeeAuthHandler) VerifyOTP(c echo.Context) error {
	var req employeeVerifyOTPReq
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	var employee models.Employee
	if err := database.DB.First(&employee, req.EmployeeID).Error; err != nil {
		return httpError(http.StatusBadRequest, "INVALID_OTP")
	}

	if err := h.Auth.VerifyOTP(&employee.Verification, req.OTPCode); err != nil {
		if errors.Is(err, auth.ErrOTPExpired) {
			return httpError(http.StatusBadRequest, "OTP_EXPIRED")
		}
		return httpError(http.StatusBadRequest, "INVALID_OTP")
	}

	if err := database.DB.Model(&employee).Updates(map[string]any{
		"is_email_verified": true,
		"otp_code":          nil,
		"otp_expires_at":    nil,
	}).Error; err != nil {
		return httpError(http.StatusInternalServerError, "VERIFY_FAILED")
	}

	return c.JSON(http.StatusOK, map[string]any{"message": "Email verified. You can now log in."})
}

// POST /employee/login
func (h *EmployeeAuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	p, err := h.Auth.ResolveByCredentials(strings.ToLower(strings.TrimSpace(req.Email)), req.Password)
	if err != nil || p.Kind != models.KindEmployee {
		return httpError(http.StatusUnauthorized, "INVALID_CREDENTIALS")
	}
	employee := p.Employee
	if !employee.IsEmailVerified {
		return httpError(http.StatusForbidden, "EMAIL_NOT_VERIFIED")
	}
	if employee.Status != models.EmployeeActive {
		return httpError(http.StatusForbidden, "ACCOUNT_NOT_ACTIVE")
	}

	token, err := h.Auth.IssueSession(p)
	if err != nil {
		return httpError(http.StatusInternalServerError, "TOKEN_ISSUE_FAILED")
	}

	return c.JSON(http.StatusOK, map[string]any{
		"message":  "Login successful.",
		"employee": employee,
		"token":    token,
	})
}

// POST /employee/logout
func (h *EmployeeAuthHandler) Logout(c echo.Context) error {
	if err := h.Auth.RevokeSession(middlewares.Token(c)); err != nil {
		return httpError(http.StatusInternalServerError, "LOGOUT_FAILED")
	}
	return c.JSON(http.StatusOK, map[string]any{"message": "Logged out."})
}
