package models

import "time"

type TaskStatus string

const (
	TaskPending    TaskStatus = "pending"
	TaskCompleted  TaskStatus = "completed"
	TaskIncomplete TaskStatus = "incomplete"
)

// ValidTaskStatus reports whether s is one of the three known task states.
func ValidTaskStatus(s TaskStatus) bool {
	switch s {
	case TaskPending, TaskCompleted, TaskIncomplete:
		return true
	}
	return false
}

type Task struct {
	ID           uint `json:"id" gorm:"primaryKey"`
	AttendanceID uint `json:"attendance_id" gorm:"index;not null"`
	// Denormalized owner for direct ownership checks without joining.
	EmployeeID uint `json:"employee_id" gorm:"index;not null"`

	Description string     `json:"description" gorm:"type:text;not null"`
	Status      TaskStatus `json:"status" gorm:"size:20;default:pending;not null"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
