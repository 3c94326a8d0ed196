package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/ArslanJaveed/idid/auth"
	"github.com/ArslanJaveed/idid/database"
	"github.com/ArslanJaveed/idid/mailer"
	"github.com/ArslanJaveed/idid/middlewares"
	"github.com/ArslanJaveed/idid/models"
)

type CompanyAuthHandler struct {
	Auth *auth.Service
	Mail mailer.Mailer
}

func NewCompanyAuthHandler(svc *auth.Service, m mailer.Mailer) *CompanyAuthHandler {
	return &CompanyAuthHandler{Auth: svc, Mail: m}
}

type companyRegisterReq struct {
	Email         string  `json:"email" validate:"required,email,max=255"`
	CompanyName   string  `json:"company_name" validate:"required,max=255"`
	CompanyType   string  `json:"company_type" validate:"required,max=255"`
	CustomType    *string `json:"custom_company_type" validate:"omitempty,max=255"`
	Country       string  `json:"country" validate:"required,max=100"`
	City          string  `json:"city" validate:"required,max=100"`
	Address       string  `json:"address" validate:"required"`
	TermsAccepted bool    `json:"terms_accepted" validate:"required"`
}

// POST /company/register
// Creates the tenant in an unverified state and mails the verification OTP.
func (h *CompanyAuthHandler) Register(c echo.Context) error {
	var req companyRegisterReq
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	if req.CompanyType == "Other" && (req.CustomType == nil || strings.TrimSpace(*req.CustomType) == "") {
		return echo.NewHTTPError(http.StatusUnprocessableEntity,
			map[string]any{"errors": map[string]string{"custom_company_type": "This field is required."}})
	}

	company := models.Company{
		Email:         strings.ToLower(strings.TrimSpace(req.Email)),
		CompanyName:   req.CompanyName,
		CompanyType:   req.CompanyType,
		Country:       req.Country,
		City:          req.City,
		Address:       req.Address,
		TermsAccepted: req.TermsAccepted,
	}
	if req.CompanyType == "Other" {
		company.CustomType = req.CustomType
	}

	code, err := h.Auth.IssueOTP(&company.Verification)
	if err != nil {
		return httpError(http.StatusInternalServerError, "OTP_GENERATION_FAILED")
	}

	if err := database.DB.Create(&company).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return httpError(http.StatusConflict, "EMAIL_EXISTS")
		}
		return httpError(http.StatusInternalServerError, "REGISTRATION_FAILED")
	}

	if err := h.Mail.SendOTP(company.Email, code); err != nil {
		// Registration stands; the caller retries the notification step.
		return c.JSON(http.StatusBadGateway, map[string]any{
			"error":      "OTP_DELIVERY_FAILED",
			"company_id": company.ID,
		})
	}

	return c.JSON(http.StatusCreated, map[string]any{
		"message":    "Company registered. An OTP has been sent for verification.",
		"company_id": company.ID,
	})
}

type companyVerifyOTPReq struct {
	CompanyID uint   `json:"company_id" validate:"required"`
	OTPCode   string `json:"otp_code" validate:"required,len=6"`
}

// POST /company/verify-otp
func (h *CompanyAuthHandler) VerifyOTP(c echo.Context) error {
	var req companyVerifyOTPReq
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	var company models.Company
	if err := database.DB.First(&company, req.CompanyID).Error; err != nil {
		return httpError(http.StatusBadRequest, "INVALID_OTP")
	}

	if err := h.Auth.VerifyOTP(&company.Verification, req.OTPCode); err != nil {
		if errors.Is(err, auth.ErrOTPExpired) {
			return httpError(http.StatusBadRequest, "OTP_EXPIRED")
		}
		return httpError(http.StatusBadRequest, "INVALID_OTP")
	}

	if err := database.DB.Model(&company).Updates(map[string]any{
		"is_email_verified": true,
		"otp_code":          nil,
		"otp_expires_at":    nil,
	}).Error; err != nil {
		return httpError(http.StatusInternalServerError, "VERIFY_FAILED")
	}

	return c.JSON(http.StatusOK, map[string]any{"message": "Email verified. Set your password and company code."})
}

type companySetupReq struct {
	CompanyID            uint   `json:"company_id" validate:"required"`
	Password             string `json:"password" validate:"required,min=8"`
	PasswordConfirmation string `json:"password_confirmation" validate:"required,eqfield=Password"`
	CompanyCode          string `json:"company_code" validate:"required,len=4"`
}

// POST /company/set-password-code
// Final wizard step: only allowed once the email is verified.
func (h *CompanyAuthHandler) SetPasswordAndCode(c echo.Context) error {
	var req companySetupReq
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	var company models.Company
	if err := database.DB.First(&company, req.CompanyID).Error; err != nil {
		return httpError(http.StatusNotFound, "COMPANY_NOT_FOUND")
	}
	if !company.IsEmailVerified {
		return httpError(http.StatusForbidden, "EMAIL_NOT_VERIFIED")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return httpError(http.StatusInternalServerError, "HASH_FAILED")
	}
	code := strings.ToUpper(req.CompanyCode)

	err = database.DB.Model(&company).Updates(map[string]any{
		"password":     string(hash),
		"company_code": code,
	}).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return httpError(http.StatusConflict, "COMPANY_CODE_TAKEN")
		}
		return httpError(http.StatusInternalServerError, "SETUP_FAILED")
	}

	return c.JSON(http.StatusOK, map[string]any{"message": "Password and company code set."})
}

type loginReq struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// POST /company/login
func (h *CompanyAuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	p, err := h.Auth.ResolveByCredentials(strings.ToLower(strings.TrimSpace(req.Email)), req.Password)
	if err != nil || p.Kind != models.KindCompany {
		return httpError(http.StatusUnauthorized, "INVALID_CREDENTIALS")
	}
	company := p.Company
	if !company.IsEmailVerified {
		return httpError(http.StatusForbidden, "EMAIL_NOT_VERIFIED")
	}
	if !company.SetupComplete() {
		return httpError(http.StatusForbidden, "SETUP_INCOMPLETE")
	}

	token, err := h.Auth.IssueSession(p)
	if err != nil {
		return httpError(http.StatusInternalServerError, "TOKEN_ISSUE_FAILED")
	}

	return c.JSON(http.StatusOK, map[string]any{
		"message": "Login successful.",
		"company": company,
		"token":   token,
	})
}

// POST /company/logout
func (h *CompanyAuthHandler) Logout(c echo.Context) error {
	if err := h.Auth.RevokeSession(middlewares.Token(c)); err != nil {
		return httpError(http.StatusInternalServerError, "LOGOUT_FAILED")
	}
	return c.JSON(http.StatusOK, map[string]any{"message": "Logged out."})
}

type companySettingsReq struct {
	DefaultCheckInTime  *string `json:"default_check_in_time" validate:"omitempty,len=8"`
	DefaultCheckOutTime *string `json:"default_check_out_time" validate:"omitempty,len=8"`
	LateGraceMinutes    *int    `json:"late_check_in_grace_period_minutes" validate:"omitempty,gte=0"`
	CompanyName         *string `json:"company_name" validate:"omitempty,max=255"`
	CompanyType         *string `json:"company_type" validate:"omitempty,max=255"`
	CustomType          *string `json:"custom_company_type" validate:"omitempty,max=255"`
	Country             *string `json:"country" validate:"omitempty,max=100"`
	City                *string `json:"city" validate:"omitempty,max=100"`
	Address             *string `json:"address" validate:"omitempty"`
	ImageURL            *string `json:"company_image_url" validate:"omitempty,url,max=2048"`
}

// PUT /company/settings
// Partial update: only keys present in the body change.
func (h *CompanyAuthHandler) UpdateSettings(c echo.Context) error {
	company := middlewares.Principal(c).Company

	var req companySettingsReq
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	updates := map[string]any{}
	if req.DefaultCheckInTime != nil {
		if _, err := parseWallClock(*req.DefaultCheckInTime); err != nil {
			return echo.NewHTTPError(http.StatusUnprocessableEntity,
				map[string]any{"errors": map[string]string{"default_check_in_time": "Must be HH:MM:SS."}})
		}
		updates["default_check_in_time"] = *req.DefaultCheckInTime
	}
	if req.DefaultCheckOutTime != nil {
		if _, err := parseWallClock(*req.DefaultCheckOutTime); err != nil {
			return echo.NewHTTPError(http.StatusUnprocessableEntity,
				map[string]any{"errors": map[string]string{"default_check_out_time": "Must be HH:MM:SS."}})
		}
		updates["default_check_out_time"] = *req.DefaultCheckOutTime
	}
	if req.LateGraceMinutes != nil {
		updates["late_grace_minutes"] = *req.LateGraceMinutes
	}
	if req.CompanyName != nil {
		updates["company_name"] = *req.CompanyName
	}
	if req.CompanyType != nil {
		updates["company_type"] = *req.CompanyType
		if *req.CompanyType != "Other" {
			updates["custom_type"] = nil
		} else if req.CustomType != nil {
			updates["custom_type"] = *req.CustomType
		}
	}
	if req.Country != nil {
		updates["country"] = *req.Country
	}
	if req.City != nil {
		updates["city"] = *req.City
	}
	if req.Address != nil {
		updates["address"] = *req.Address
	}
	if req.ImageURL != nil {
		updates["image_url"] = *req.ImageURL
	}

	if len(updates) > 0 {
		if err := database.DB.Model(company).Updates(updates).Error; err != nil {
			return httpError(http.StatusInternalServerError, "UPDATE_FAILED")
		}
	}

	return c.JSON(http.StatusOK, map[string]any{
		"message": "Company settings updated.",
		"company": company,
	})
}
