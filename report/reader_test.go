package report_test

import (
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/ArslanJaveed/idid/database"
	"github.com/ArslanJaveed/idid/models"
	"github.com/ArslanJaveed/idid/report"
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

func TestBuildDailyReport(t *testing.T) {
	db := setupDB(t)
	reader := report.NewReader(db)

	code := "ACME"
	company := &models.Company{
		Email:        "admin@acme.test",
		Password:     "x",
		CompanyName:  "Acme Ltd",
		CompanyType:  "Software",
		Country:      "PK",
		City:         "Lahore",
		Address:      "1 Main St",
		CompanyCode:  &code,
		Verification: models.Verification{IsEmailVerified: true},
	}
	require.NoError(t, db.Create(company).Error)

	role := &models.Role{CompanyID: company.ID, RoleName: "Engineer"}
	require.NoError(t, db.Create(role).Error)

	mkEmployee := func(name, email string) *models.Employee {
		e := &models.Employee{
			CompanyID:    company.ID,
			RoleID:       role.ID,
			EmployeeCode: "ACME-" + email,
			Name:         name,
			CNIC:         "cnic-" + email,
			Email:        email,
			Status:       models.EmployeeActive,
		}
		require.NoError(t, db.Create(e).Error)
		return e
	}

	const date = "2025-03-10"
	checkIn := time.Date(2025, 3, 10, 9, 2, 0, 0, time.UTC)
	checkOut := time.Date(2025, 3, 10, 17, 30, 0, 0, time.UTC)

	// Full day with a reconciled task list.
	present := mkEmployee("Dana", "dana@acme.test")
	rec := &models.Attendance{
		EmployeeID:   present.ID,
		CompanyID:    company.ID,
		Date:         date,
		CheckInTime:  checkIn,
		CheckOutTime: &checkOut,
		Status:       models.AttendanceCheckedOut,
		Tasks: []models.Task{
			{EmployeeID: present.ID, Description: "Ship v2", Status: models.TaskCompleted},
			{EmployeeID: present.ID, Description: "Write docs", Status: models.TaskIncomplete},
		},
	}
	require.NoError(t, db.Create(rec).Error)

	// Checked in past the grace period, never checked out.
	late := mkEmployee("Omar", "omar@acme.test")
	lateIn := time.Date(2025, 3, 10, 11, 45, 0, 0, time.UTC)
	require.NoError(t, db.Create(&models.Attendance{
		EmployeeID:  late.ID,
		CompanyID:   company.ID,
		Date:        date,
		CheckInTime: lateIn,
		IsAbsent:    true,
		Status:      models.AttendanceCheckedIn,
	}).Error)

	// Never checked in at all.
	mkEmployee("Sara", "sara@acme.test")

	// Still open, on time.
	open := mkEmployee("Bilal", "bilal@acme.test")
	require.NoError(t, db.Create(&models.Attendance{
		EmployeeID:  open.ID,
		CompanyID:   company.ID,
		Date:        date,
		CheckInTime: checkIn,
		Status:      models.AttendanceCheckedIn,
	}).Error)

	rep, err := reader.BuildDailyReport(company.ID, date)
	require.NoError(t, err)

	assert.Equal(t, "Acme Ltd", rep.CompanyName)
	assert.Equal(t, "admin@acme.test", rep.CompanyEmail)
	assert.Equal(t, date, rep.Date)
	assert.Equal(t, 2, rep.TotalPresent)
	assert.Equal(t, 2, rep.TotalAbsent)
	require.Len(t, rep.Rows, 4)

	byName := map[string]report.Row{}
	for _, row := range rep.Rows {
		byName[row.EmployeeName] = row
	}

	dana := byName["Dana"]
	assert.Equal(t, "Present", dana.Status)
	assert.Equal(t, "09:02:00", dana.CheckInTime)
	assert.Equal(t, "17:30:00", dana.CheckOutTime)
	assert.Equal(t, "Engineer", dana.RoleName)
	require.Len(t, dana.Tasks, 2)
	taskStatus := map[string]models.TaskStatus{}
	for _, task := range dana.Tasks {
		taskStatus[task.Description] = task.Status
	}
	assert.Equal(t, models.TaskCompleted, taskStatus["Ship v2"])
	assert.Equal(t, models.TaskIncomplete, taskStatus["Write docs"])

	omar := byName["Omar"]
	assert.Equal(t, "Absent (Late Check-in)", omar.Status)
	assert.Equal(t, "11:45:00", omar.CheckInTime)
	assert.Equal(t, "N/A", omar.CheckOutTime)

	sara := byName["Sara"]
	assert.Equal(t, "Absent (No Check-in)", sara.Status)
	assert.Equal(t, "N/A", sara.CheckInTime)
	assert.Equal(t, "N/A", sara.CheckOutTime)
	assert.Empty(t, sara.Tasks)

	bilal := byName["Bilal"]
	assert.Equal(t, "Checked In (No Checkout)", bilal.Status)
}

func TestBuildDailyReport_OtherDayInvisible(t *testing.T) {
	db := setupDB(t)
	reader := report.NewReader(db)

	code := "ACME"
	company := &models.Company{
		Email:       "admin@acme.test",
		Password:    "x",
		CompanyName: "Acme Ltd",
		CompanyType: "Software",
		Country:     "PK",
		City:        "Lahore",
		Address:     "1 Main St",
		CompanyCode: &code,
	}
	require.NoError(t, db.Create(company).Error)
	role := &models.Role{CompanyID: company.ID, RoleName: "Engineer"}
	require.NoError(t, db.Create(role).Error)

	e := &models.Employee{
		CompanyID:    company.ID,
		RoleID:       role.ID,
		EmployeeCode: "ACME-AAA111",
		Name:         "Dana",
		CNIC:         "35202-0000000-1",
		Email:        "dana@acme.test",
		Status:       models.EmployeeActive,
	}
	require.NoError(t, db.Create(e).Error)
	require.NoError(t, db.Create(&models.Attendance{
		EmployeeID:  e.ID,
		CompanyID:   company.ID,
		Date:        "2025-03-09",
		CheckInTime: time.Date(2025, 3, 9, 9, 0, 0, 0, time.UTC),
		Status:      models.AttendanceCheckedOut,
	}).Error)

	rep, err := reader.BuildDailyReport(company.ID, "2025-03-10")
	require.NoError(t, err)
	require.Len(t, rep.Rows, 1)
	assert.Equal(t, "Absent (No Check-in)", rep.Rows[0].Status)
	assert.Equal(t, 1, rep.TotalAbsent)
	assert.Equal(t, 0, rep.TotalPresent)
}

func TestBuildDailyReport_UnknownCompany(t *testing.T) {
	db := setupDB(t)
	reader := report.NewReader(db)

	_, err := reader.BuildDailyReport(42, "2025-03-10")
	assert.ErrorIs(t, err, report.ErrCompanyNotFound)
}
