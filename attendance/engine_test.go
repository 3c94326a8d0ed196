package attendance_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/ArslanJaveed/idid/attendance"
	"github.com/ArslanJaveed/idid/database"
	"github.com/ArslanJaveed/idid/models"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, database.Migrate(db))
	return db
}

type fixture struct {
	db       *gorm.DB
	engine   *attendance.Engine
	company  *models.Company
	employee *models.Employee
}

// newFixture seeds one company and one active employee. checkInTime may be
// empty for tenants without a late policy.
func newFixture(t *testing.T, checkInTime string, graceMinutes int) *fixture {
	t.Helper()
	db := setupDB(t)

	code := "ACME"
	company := &models.Company{
		Email:            "admin@acme.test",
		Password:         "x",
		CompanyName:      "Acme Ltd",
		CompanyType:      "Software",
		Country:          "PK",
		City:             "Lahore",
		Address:          "1 Main St",
		CompanyCode:      &code,
		LateGraceMinutes: graceMinutes,
		Verification:     models.Verification{IsEmailVerified: true},
	}
	if checkInTime != "" {
		company.DefaultCheckInTime = &checkInTime
	}
	require.NoError(t, db.Create(company).Error)

	role := &models.Role{CompanyID: company.ID, RoleName: "Engineer"}
	require.NoError(t, db.Create(role).Error)

	employee := seedEmployee(t, db, company, role, "dana@acme.test")

	return &fixture{
		db:       db,
		engine:   attendance.NewEngine(db),
		company:  company,
		employee: employee,
	}
}

func seedEmployee(t *testing.T, db *gorm.DB, c *models.Company, r *models.Role, email string) *models.Employee {
	t.Helper()
	e := &models.Employee{
		CompanyID:    c.ID,
		RoleID:       r.ID,
		EmployeeCode: "ACME-" + email,
		Name:         "Dana",
		CNIC:         "cnic-" + email,
		Email:        email,
		Status:       models.EmployeeActive,
		Verification: models.Verification{IsEmailVerified: true},
	}
	require.NoError(t, db.Create(e).Error)
	return e
}

func pin(en *attendance.Engine, at time.Time) {
	en.Now = func() time.Time { return at }
}

func day(hour, min int) time.Time {
	return time.Date(2025, 3, 10, hour, min, 0, 0, time.UTC)
}

func TestCheckIn_CreatesRecordWithTasks(t *testing.T) {
	fx := newFixture(t, "", 0)
	pin(fx.engine, day(9, 0))

	rec, err := fx.engine.CheckIn(fx.employee, fx.company, []string{"Write report", "  ", "Review PRs"})
	require.NoError(t, err)

	assert.Equal(t, "2025-03-10", rec.Date)
	assert.Equal(t, models.AttendanceCheckedIn, rec.Status)
	assert.False(t, rec.IsAbsent)
	assert.Nil(t, rec.CheckOutTime)

	// Blank descriptions are skipped; the rest default to pending.
	require.Len(t, rec.Tasks, 2)
	for _, task := range rec.Tasks {
		assert.Equal(t, models.TaskPending, task.Status)
		assert.Equal(t, fx.employee.ID, task.EmployeeID)
	}
}

func TestCheckIn_LateClassification(t *testing.T) {
	cases := []struct {
		name     string
		at       time.Time
		isAbsent bool
	}{
		{"within default time", day(8, 59), false},
		{"inside grace", day(9, 5), false},
		{"exactly at deadline", day(9, 10), false},
		{"past grace", day(9, 11), true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			fx := newFixture(t, "09:00:00", 10)
			pin(fx.engine, tc.at)

			rec, err := fx.engine.CheckIn(fx.employee, fx.company, nil)
			require.NoError(t, err)
			assert.Equal(t, tc.isAbsent, rec.IsAbsent)
		})
	}
}

func TestCheckIn_NoDefaultTimeNeverLate(t *testing.T) {
	fx := newFixture(t, "", 0)
	pin(fx.engine, day(23, 50))

	rec, err := fx.engine.CheckIn(fx.employee, fx.company, nil)
	require.NoError(t, err)
	assert.False(t, rec.IsAbsent)
}

func TestCheckIn_LateFlagIsNotRecomputed(t *testing.T) {
	fx := newFixture(t, "09:00:00", 0)
	pin(fx.engine, day(10, 0))

	rec, err := fx.engine.CheckIn(fx.employee, fx.company, nil)
	require.NoError(t, err)
	require.True(t, rec.IsAbsent)

	_, err = fx.engine.CheckOut(fx.employee, nil)
	require.NoError(t, err)

	got, err := fx.engine.GetToday(fx.employee)
	require.NoError(t, err)
	assert.True(t, got.IsAbsent)
}

func TestCheckIn_SecondSameDayConflicts(t *testing.T) {
	fx := newFixture(t, "", 0)
	pin(fx.engine, day(9, 0))

	_, err := fx.engine.CheckIn(fx.employee, fx.company, nil)
	require.NoError(t, err)

	// While the first record is open.
	_, err = fx.engine.CheckIn(fx.employee, fx.company, nil)
	assert.ErrorIs(t, err, attendance.ErrAlreadyCheckedIn)

	// After check-out the unique (employee, date) index still holds the
	// one-record-per-day invariant.
	_, err = fx.engine.CheckOut(fx.employee, nil)
	require.NoError(t, err)

	_, err = fx.engine.CheckIn(fx.employee, fx.company, nil)
	assert.ErrorIs(t, err, attendance.ErrAlreadyCheckedIn)

	var n int64
	require.NoError(t, fx.db.Model(&models.Attendance{}).Count(&n).Error)
	assert.EqualValues(t, 1, n)
}

func TestCheckIn_NewDayStartsFresh(t *testing.T) {
	fx := newFixture(t, "", 0)
	pin(fx.engine, day(9, 0))

	_, err := fx.engine.CheckIn(fx.employee, fx.company, nil)
	require.NoError(t, err)
	_, err = fx.engine.CheckOut(fx.employee, nil)
	require.NoError(t, err)

	pin(fx.engine, day(9, 0).AddDate(0, 0, 1))
	rec, err := fx.engine.CheckIn(fx.employee, fx.company, nil)
	require.NoError(t, err)
	assert.Equal(t, "2025-03-11", rec.Date)
}

func TestAddTask_RequiresOpenRecord(t *testing.T) {
	fx := newFixture(t, "", 0)
	pin(fx.engine, day(9, 0))

	_, err := fx.engine.AddTask(fx.employee, "before check-in")
	assert.ErrorIs(t, err, attendance.ErrNotCheckedIn)

	_, err = fx.engine.CheckIn(fx.employee, fx.company, nil)
	require.NoError(t, err)

	task, err := fx.engine.AddTask(fx.employee, "while open")
	require.NoError(t, err)
	assert.Equal(t, models.TaskPending, task.Status)

	_, err = fx.engine.CheckOut(fx.employee, nil)
	require.NoError(t, err)

	_, err = fx.engine.AddTask(fx.employee, "after close")
	assert.ErrorIs(t, err, attendance.ErrNotCheckedIn)
}

func TestUpdateTaskStatus(t *testing.T) {
	fx := newFixture(t, "", 0)
	pin(fx.engine, day(9, 0))

	rec, err := fx.engine.CheckIn(fx.employee, fx.company, []string{"Task A"})
	require.NoError(t, err)
	taskID := rec.Tasks[0].ID

	task, err := fx.engine.UpdateTaskStatus(fx.employee, taskID, models.TaskCompleted)
	require.NoError(t, err)
	assert.Equal(t, models.TaskCompleted, task.Status)

	_, err = fx.engine.UpdateTaskStatus(fx.employee, taskID, "done")
	assert.ErrorIs(t, err, attendance.ErrBadTaskStatus)

	_, err = fx.engine.UpdateTaskStatus(fx.employee, 9999, models.TaskCompleted)
	assert.ErrorIs(t, err, attendance.ErrNotFound)

	t.Run("someone else's task reads as missing", func(t *testing.T) {
		other := seedEmployee(t, fx.db, fx.company, &models.Role{ID: fx.employee.RoleID}, "omar@acme.test")
		_, err := fx.engine.UpdateTaskStatus(other, taskID, models.TaskCompleted)
		assert.ErrorIs(t, err, attendance.ErrNotFound)
	})

	t.Run("edits after close are allowed", func(t *testing.T) {
		_, err := fx.engine.CheckOut(fx.employee, map[uint]bool{taskID: true})
		require.NoError(t, err)

		task, err := fx.engine.UpdateTaskStatus(fx.employee, taskID, models.TaskIncomplete)
		require.NoError(t, err)
		assert.Equal(t, models.TaskIncomplete, task.Status)
	})
}

func TestCheckOut_TaskReconciliation(t *testing.T) {
	fx := newFixture(t, "", 0)
	pin(fx.engine, day(9, 0))

	rec, err := fx.engine.CheckIn(fx.employee, fx.company, []string{"A", "B", "C"})
	require.NoError(t, err)
	require.Len(t, rec.Tasks, 3)

	byDesc := map[string]uint{}
	for _, task := range rec.Tasks {
		byDesc[task.Description] = task.ID
	}

	pin(fx.engine, day(17, 30))
	// A acknowledged done, B acknowledged not done, C left out entirely.
	closed, err := fx.engine.CheckOut(fx.employee, map[uint]bool{
		byDesc["A"]: true,
		byDesc["B"]: false,
	})
	require.NoError(t, err)

	assert.Equal(t, models.AttendanceCheckedOut, closed.Status)
	require.NotNil(t, closed.CheckOutTime)
	assert.Equal(t, day(17, 30), closed.CheckOutTime.UTC())

	got := map[string]models.TaskStatus{}
	for _, task := range closed.Tasks {
		got[task.Description] = task.Status
	}
	assert.Equal(t, models.TaskCompleted, got["A"])
	assert.Equal(t, models.TaskIncomplete, got["B"])
	// Absent from the map means incomplete, never pending.
	assert.Equal(t, models.TaskIncomplete, got["C"])
}

func TestCheckOut_WithoutOpenRecord(t *testing.T) {
	fx := newFixture(t, "", 0)
	pin(fx.engine, day(9, 0))

	_, err := fx.engine.CheckOut(fx.employee, nil)
	assert.ErrorIs(t, err, attendance.ErrNotCheckedIn)

	_, err = fx.engine.CheckIn(fx.employee, fx.company, nil)
	require.NoError(t, err)
	_, err = fx.engine.CheckOut(fx.employee, nil)
	require.NoError(t, err)

	// Already closed.
	_, err = fx.engine.CheckOut(fx.employee, nil)
	assert.ErrorIs(t, err, attendance.ErrNotCheckedIn)
}

func TestGetTodayAndTasks(t *testing.T) {
	fx := newFixture(t, "", 0)
	pin(fx.engine, day(9, 0))

	_, err := fx.engine.GetToday(fx.employee)
	assert.ErrorIs(t, err, attendance.ErrNotFound)

	_, err = fx.engine.TodayTasks(fx.employee)
	assert.ErrorIs(t, err, attendance.ErrNotFound)

	rec, err := fx.engine.CheckIn(fx.employee, fx.company, []string{"A"})
	require.NoError(t, err)

	today, err := fx.engine.GetToday(fx.employee)
	require.NoError(t, err)
	assert.Equal(t, rec.ID, today.ID)
	assert.Len(t, today.Tasks, 1)

	tasks, err := fx.engine.TodayTasks(fx.employee)
	require.NoError(t, err)
	assert.Len(t, tasks, 1)

	t.Run("historical tasks are owner-scoped", func(t *testing.T) {
		got, err := fx.engine.TasksForRecord(fx.employee, rec.ID)
		require.NoError(t, err)
		assert.Len(t, got, 1)

		other := seedEmployee(t, fx.db, fx.company, &models.Role{ID: fx.employee.RoleID}, "omar@acme.test")
		_, err = fx.engine.TasksForRecord(other, rec.ID)
		assert.ErrorIs(t, err, attendance.ErrNotFound)
	})
}

func TestHistory_DateRange(t *testing.T) {
	fx := newFixture(t, "", 0)

	for i := 0; i < 3; i++ {
		pin(fx.engine, day(9, 0).AddDate(0, 0, i))
		_, err := fx.engine.CheckIn(fx.employee, fx.company, nil)
		require.NoError(t, err)
		_, err = fx.engine.CheckOut(fx.employee, nil)
		require.NoError(t, err)
	}

	all, err := fx.engine.History(fx.employee, "", "")
	require.NoError(t, err)
	require.Len(t, all, 3)
	// Newest first.
	assert.Equal(t, "2025-03-12", all[0].Date)

	bounded, err := fx.engine.History(fx.employee, "2025-03-11", "2025-03-11")
	require.NoError(t, err)
	require.Len(t, bounded, 1)
	assert.Equal(t, "2025-03-11", bounded[0].Date)
}

func TestHistoryForEmployee_TenantIsolation(t *testing.T) {
	fx := newFixture(t, "", 0)
	pin(fx.engine, day(9, 0))

	_, err := fx.engine.CheckIn(fx.employee, fx.company, nil)
	require.NoError(t, err)

	rows, err := fx.engine.HistoryForEmployee(fx.company, fx.employee.ID, "", "")
	require.NoError(t, err)
	assert.Len(t, rows, 1)

	// A different tenant asking about this employee learns nothing, not
	// even that the id exists.
	otherCode := "OTHR"
	other := &models.Company{
		Email:        "admin@other.test",
		Password:     "x",
		CompanyName:  "Other Ltd",
		CompanyType:  "Software",
		Country:      "PK",
		City:         "Karachi",
		Address:      "2 Side St",
		CompanyCode:  &otherCode,
		Verification: models.Verification{IsEmailVerified: true},
	}
	require.NoError(t, fx.db.Create(other).Error)

	_, err = fx.engine.HistoryForEmployee(other, fx.employee.ID, "", "")
	assert.ErrorIs(t, err, attendance.ErrNotFound)

	_, err = fx.engine.HistoryForEmployee(fx.company, 9999, "", "")
	assert.ErrorIs(t, err, attendance.ErrNotFound)
}

func TestCheckIn_ManyEmployeesSameDay(t *testing.T) {
	fx := newFixture(t, "", 0)
	pin(fx.engine, day(9, 0))

	role := &models.Role{CompanyID: fx.company.ID, RoleName: "Support"}
	require.NoError(t, fx.db.Create(role).Error)

	for i := 0; i < 5; i++ {
		e := seedEmployee(t, fx.db, fx.company, role, fmt.Sprintf("e%d@acme.test", i))
		_, err := fx.engine.CheckIn(e, fx.company, nil)
		require.NoError(t, err)
	}

	var n int64
	require.NoError(t, fx.db.Model(&models.Attendance{}).Where("date = ?", "2025-03-10").Count(&n).Error)
	assert.EqualValues(t, 5, n)
}
