package models

import "time"

type EmployeeStatus string

const (
	EmployeePendingInvite EmployeeStatus = "pending_invite"
	EmployeeInvited       EmployeeStatus = "invited"
	EmployeeActive        EmployeeStatus = "active"
	EmployeeInactive      EmployeeStatus = "inactive"
)

type Employee struct {
	ID        uint `json:"id" gorm:"primaryKey"`
	CompanyID uint `json:"company_id" gorm:"not null;uniqueIndex:idx_employees_company_code"`
	RoleID    uint `json:"role_id" gorm:"not null"`

	// Tenant-scoped code handed to the employee, "CODE-XXXXXX".
	EmployeeCode string `json:"employee_code" gorm:"size:20;not null;uniqueIndex:idx_employees_company_code"`

	Name     string  `json:"name" gorm:"size:255;not null"`
	CNIC     string  `json:"cnic" gorm:"size:20;not null;uniqueIndex"`
	Email    string  `json:"email" gorm:"size:255;not null;uniqueIndex"`
	Password *string `json:"-" gorm:"size:255"` // nil until the employee sets one

	Status EmployeeStatus `json:"status" gorm:"size:20;default:pending_invite;not null"`

	Verification `json:"verification" gorm:"embedded"`

	EnrolmentAccepted bool    `json:"enrolment_accepted" gorm:"default:false;not null"`
	InviteToken       *string `json:"-" gorm:"size:64"`
	ImageURL          *string `json:"profile_image_url,omitempty" gorm:"size:2048"`

	Role        Role         `json:"role,omitempty" gorm:"constraint:OnDelete:RESTRICT"`
	Attendances []Attendance `json:"-" gorm:"constraint:OnDelete:CASCADE"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
