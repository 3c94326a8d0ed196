package models

import "time"

type AttendanceStatus string

const (
	AttendanceCheckedIn  AttendanceStatus = "checked_in"
	AttendanceCheckedOut AttendanceStatus = "checked_out"
)

// Attendance is the daily record for one employee. At most one row exists per
// (employee, date); the composite unique index is what makes concurrent
// check-ins race safely.
type Attendance struct {
	ID         uint `json:"id" gorm:"primaryKey"`
	EmployeeID uint `json:"employee_id" gorm:"not null;uniqueIndex:idx_attendance_employee_date"`
	CompanyID  uint `json:"company_id" gorm:"index;not null"`

	Date         string     `json:"date" gorm:"size:10;not null;uniqueIndex:idx_attendance_employee_date"` // YYYY-MM-DD
	CheckInTime  time.Time  `json:"check_in_time" gorm:"not null"`
	CheckOutTime *time.Time `json:"check_out_time"`

	// Late-beyond-grace classification, fixed at check-in.
	IsAbsent bool             `json:"is_absent" gorm:"default:false;not null"`
	Status   AttendanceStatus `json:"status" gorm:"size:20;default:checked_in;not null"`

	Tasks []Task `json:"tasks" gorm:"constraint:OnDelete:CASCADE"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Open reports whether the record is still awaiting check-out.
func (a *Attendance) Open() bool { return a.Status == AttendanceCheckedIn }
