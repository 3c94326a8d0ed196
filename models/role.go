package models

import "time"

type Role struct {
	ID          uint   `json:"id" gorm:"primaryKey"`
	CompanyID   uint   `json:"company_id" gorm:"not null;uniqueIndex:idx_roles_company_name"`
	RoleName    string `json:"role_name" gorm:"size:255;not null;uniqueIndex:idx_roles_company_name"`
	Description string `json:"description" gorm:"type:text"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
