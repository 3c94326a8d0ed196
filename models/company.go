package models

import "time"

// Verification holds the email-OTP state shared by both account kinds.
// The code is a short-lived human-entered value, not a cryptographic secret.
type Verification struct {
	IsEmailVerified bool       `json:"is_email_verified" gorm:"default:false;not null"`
	OTPCode         *string    `json:"-" gorm:"size:6"`
	OTPExpiresAt    *time.Time `json:"-"`
}

type Company struct {
	ID            uint    `json:"id" gorm:"primaryKey"`
	Email         string  `json:"email" gorm:"uniqueIndex;size:255;not null"`
	Password      string  `json:"-" gorm:"size:255"` // bcrypt hash, empty until setup completes
	CompanyName   string  `json:"company_name" gorm:"size:255;not null"`
	CompanyType   string  `json:"company_type" gorm:"size:255;not null"`
	CustomType    *string `json:"custom_company_type,omitempty" gorm:"size:255"`
	Country       string  `json:"country" gorm:"size:100;not null"`
	City          string  `json:"city" gorm:"size:100;not null"`
	Address       string  `json:"address" gorm:"type:text;not null"`
	TermsAccepted bool    `json:"terms_accepted" gorm:"default:false;not null"`

	Verification `json:"verification" gorm:"embedded"`

	// Assigned after email verification; uppercase, unique across tenants.
	CompanyCode *string `json:"company_code,omitempty" gorm:"size:4;uniqueIndex"`

	ImageURL *string `json:"company_image_url,omitempty" gorm:"size:2048"`

	// Wall-clock "HH:MM:SS"; nil means no late classification for this tenant.
	DefaultCheckInTime  *string `json:"default_check_in_time,omitempty" gorm:"size:8"`
	DefaultCheckOutTime *string `json:"default_check_out_time,omitempty" gorm:"size:8"`
	LateGraceMinutes    int     `json:"late_check_in_grace_period_minutes" gorm:"default:0;not null"`

	Roles     []Role     `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	Employees []Employee `json:"-" gorm:"constraint:OnDelete:CASCADE"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SetupComplete reports whether the registration wizard finished: email
// verified, password set and company code assigned.
func (c *Company) SetupComplete() bool {
	return c.IsEmailVerified && c.Password != "" && c.CompanyCode != nil && *c.CompanyCode != ""
}
