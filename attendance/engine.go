// Package attendance owns the daily attendance record lifecycle: check-in
// with late classification, task attachment, and check-out with per-task
// reconciliation.
package attendance

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/ArslanJaveed/idid/models"
)

var (
	ErrAlreadyCheckedIn = errors.New("already checked in for today")
	ErrNotCheckedIn     = errors.New("not checked in for today")
	ErrNotFound         = errors.New("not found")
	ErrBadTaskStatus    = errors.New("unknown task status")
)

const dateLayout = "2006-01-02"

// Engine runs the per-day state machine NoRecord -> CheckedIn -> CheckedOut.
// The clock is a field so tests can pin "now".
type Engine struct {
	DB  *gorm.DB
	Now func() time.Time
}

func NewEngine(db *gorm.DB) *Engine {
	return &Engine{DB: db, Now: time.Now}
}

func (en *Engine) today() string {
	return en.Now().Format(dateLayout)
}

// lateDeadline builds today's cut-off from the company's wall-clock default
// check-in time plus its grace period. Returns ok=false when the company has
// no configured default, in which case nobody is ever late.
func lateDeadline(c *models.Company, now time.Time) (time.Time, bool) {
	if c.DefaultCheckInTime == nil || *c.DefaultCheckInTime == "" {
		return time.Time{}, false
	}
	parsed, err := parseWallClock(*c.DefaultCheckInTime)
	if err != nil {
		return time.Time{}, false
	}
	deadline := time.Date(now.Year(), now.Month(), now.Day(),
		parsed.Hour(), parsed.Minute(), parsed.Second(), 0, now.Location())
	return deadline.Add(time.Duration(c.LateGraceMinutes) * time.Minute), true
}

func parseWallClock(s string) (time.Time, error) {
	for _, layout := range []string{"15:04:05", "15:04"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("bad wall-clock value %q", s)
}

// CheckIn opens today's record for the employee and attaches one pending
// task per non-empty description, atomically. A second check-in while
// today's record exists is rejected: explicitly when the record is still
// open, via the (employee, date) unique index otherwise — either way exactly
// one record per day survives a race.
func (en *Engine) CheckIn(e *models.Employee, company *models.Company, descriptions []string) (*models.Attendance, error) {
	today := en.today()

	var existing models.Attendance
	err := en.DB.Where("employee_id = ? AND date = ?", e.ID, today).First(&existing).Error
	if err == nil && existing.Open() {
		return nil, ErrAlreadyCheckedIn
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	now := en.Now()
	isAbsent := false
	if deadline, ok := lateDeadline(company, now); ok && now.After(deadline) {
		isAbsent = true
	}

	rec := models.Attendance{
		EmployeeID:  e.ID,
		CompanyID:   e.CompanyID,
		Date:        today,
		CheckInTime: now,
		IsAbsent:    isAbsent,
		Status:      models.AttendanceCheckedIn,
	}
	for _, d := range descriptions {
		d = strings.TrimSpace(d)
		if d == "" {
			continue
		}
		rec.Tasks = append(rec.Tasks, models.Task{
			EmployeeID:  e.ID,
			Description: d,
			Status:      models.TaskPending,
		})
	}

	if err := en.DB.Create(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrAlreadyCheckedIn
		}
		return nil, err
	}
	return &rec, nil
}

// AddTask appends one pending task to today's open record. The employee must
// be checked in to log tasks.
func (en *Engine) AddTask(e *models.Employee, description string) (*models.Task, error) {
	rec, err := en.openToday(e)
	if err != nil {
		return nil, err
	}
	task := models.Task{
		AttendanceID: rec.ID,
		EmployeeID:   e.ID,
		Description:  description,
		Status:       models.TaskPending,
	}
	if err := en.DB.Create(&task).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

// UpdateTaskStatus sets the status of one task owned by the employee. This
// checks ownership only, not whether the parent record is still open: edits
// after check-out are allowed on purpose (inherited behavior, kept until a
// product decision says otherwise).
func (en *Engine) UpdateTaskStatus(e *models.Employee, taskID uint, status models.TaskStatus) (*models.Task, error) {
	if !models.ValidTaskStatus(status) {
		return nil, ErrBadTaskStatus
	}
	var task models.Task
	if err := en.DB.First(&task, taskID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if task.EmployeeID != e.ID {
		// Hidden rather than forbidden: don't confirm the task exists.
		return nil, ErrNotFound
	}
	if err := en.DB.Model(&task).Update("status", status).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

// CheckOut closes today's open record. Every task under the record is forced
// to a terminal status: present-and-truthy in statuses -> completed, present
// and falsy -> incomplete, absent from the map -> incomplete. Unacknowledged
// work is never left pending.
func (en *Engine) CheckOut(e *models.Employee, statuses map[uint]bool) (*models.Attendance, error) {
	rec, err := en.openToday(e)
	if err != nil {
		return nil, err
	}

	now := en.Now()
	err = en.DB.Transaction(func(tx *gorm.DB) error {
		var tasks []models.Task
		if err := tx.Where("attendance_id = ?", rec.ID).Find(&tasks).Error; err != nil {
			return err
		}
		for i := range tasks {
			next := models.TaskIncomplete
			if done, ok := statuses[tasks[i].ID]; ok && done {
				next = models.TaskCompleted
			}
			if err := tx.Model(&tasks[i]).Update("status", next).Error; err != nil {
				return err
			}
		}
		return tx.Model(rec).Updates(map[string]any{
			"check_out_time": now,
			"status":         models.AttendanceCheckedOut,
		}).Error
	})
	if err != nil {
		return nil, err
	}

	return en.loadRecord(rec.ID)
}

// GetToday returns today's record with tasks, or ErrNotFound when the
// employee has not checked in.
func (en *Engine) GetToday(e *models.Employee) (*models.Attendance, error) {
	var rec models.Attendance
	err := en.DB.Preload("Tasks").
		Where("employee_id = ? AND date = ?", e.ID, en.today()).
		First(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &rec, nil
}

// History returns the employee's own records, newest first, optionally
// bounded by inclusive YYYY-MM-DD dates.
func (en *Engine) History(e *models.Employee, startDate, endDate string) ([]models.Attendance, error) {
	return en.history(e.ID, startDate, endDate)
}

// HistoryForEmployee is the admin variant: the target employee must belong
// to the calling company. Cross-tenant ids come back as ErrNotFound so the
// caller learns nothing about other tenants' employees.
func (en *Engine) HistoryForEmployee(company *models.Company, employeeID uint, startDate, endDate string) ([]models.Attendance, error) {
	var e models.Employee
	if err := en.DB.First(&e, employeeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if e.CompanyID != company.ID {
		return nil, ErrNotFound
	}
	return en.history(e.ID, startDate, endDate)
}

// TodayTasks lists the tasks attached to today's record, open or closed.
func (en *Engine) TodayTasks(e *models.Employee) ([]models.Task, error) {
	rec, err := en.GetToday(e)
	if err != nil {
		return nil, err
	}
	return rec.Tasks, nil
}

// TasksForRecord returns the tasks of one historical record owned by the
// employee.
func (en *Engine) TasksForRecord(e *models.Employee, attendanceID uint) ([]models.Task, error) {
	var rec models.Attendance
	if err := en.DB.First(&rec, attendanceID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if rec.EmployeeID != e.ID {
		return nil, ErrNotFound
	}
	var tasks []models.Task
	if err := en.DB.Where("attendance_id = ?", rec.ID).Order("id ASC").Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

func (en *Engine) openToday(e *models.Employee) (*models.Attendance, error) {
	var rec models.Attendance
	err := en.DB.Where("employee_id = ? AND date = ? AND status = ?",
		e.ID, en.today(), models.AttendanceCheckedIn).First(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotCheckedIn
		}
		return nil, err
	}
	return &rec, nil
}

func (en *Engine) history(employeeID uint, startDate, endDate string) ([]models.Attendance, error) {
	tx := en.DB.Preload("Tasks").Where("employee_id = ?", employeeID)
	if startDate != "" {
		tx = tx.Where("date >= ?", startDate)
	}
	if endDate != "" {
		tx = tx.Where("date <= ?", endDate)
	}
	var rows []models.Attendance
	if err := tx.Order("date DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (en *Engine) loadRecord(id uint) (*models.Attendance, error) {
	var rec models.Attendance
	if err := en.DB.Preload("Tasks").First(&rec, id).Error; err != nil {
		return nil, err
	}
	return &rec, nil
}
