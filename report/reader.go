// Package report builds read-only daily attendance summaries per company,
// consumed by the admin endpoint and the scheduled report sender.
package report

import (
	"errors"

	"gorm.io/gorm"

	"github.com/ArslanJaveed/idid/models"
)

var ErrCompanyNotFound = errors.New("company not found")

const timeLayout = "15:04:05"

type TaskRow struct {
	Description string            `json:"description"`
	Status      models.TaskStatus `json:"status"`
}

type Row struct {
	EmployeeName string    `json:"employee_name"`
	EmployeeCode string    `json:"employee_code"`
	RoleName     string    `json:"role"`
	Status       string    `json:"status"`
	CheckInTime  string    `json:"check_in_time"`
	CheckOutTime string    `json:"check_out_time"`
	Tasks        []TaskRow `json:"tasks"`
}

type DailyReport struct {
	CompanyName  string `json:"company_name"`
	CompanyEmail string `json:"-"`
	Date         string `json:"date"`
	TotalPresent int    `json:"total_present"`
	TotalAbsent  int    `json:"total_absent"`
	Rows         []Row  `json:"rows"`
}

type Reader struct {
	DB *gorm.DB
}

func NewReader(db *gorm.DB) *Reader {
	return &Reader{DB: db}
}

// BuildDailyReport produces one row per employee of the company for the
// given YYYY-MM-DD date. An employee with no record that day is reported as
// absent with no check-in.
func (r *Reader) BuildDailyReport(companyID uint, date string) (*DailyReport, error) {
	var company models.Company
	if err := r.DB.First(&company, companyID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCompanyNotFound
		}
		return nil, err
	}

	var employees []models.Employee
	if err := r.DB.Preload("Role").Where("company_id = ?", company.ID).
		Order("id ASC").Find(&employees).Error; err != nil {
		return nil, err
	}

	rep := &DailyReport{
		CompanyName:  company.CompanyName,
		CompanyEmail: company.Email,
		Date:         date,
		Rows:         make([]Row, 0, len(employees)),
	}

	for i := range employees {
		e := &employees[i]
		row := Row{
			EmployeeName: e.Name,
			EmployeeCode: e.EmployeeCode,
			RoleName:     e.Role.RoleName,
			CheckInTime:  "N/A",
			CheckOutTime: "N/A",
			Tasks:        []TaskRow{},
		}

		var rec models.Attendance
		err := r.DB.Preload("Tasks").
			Where("employee_id = ? AND date = ?", e.ID, date).First(&rec).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			row.Status = "Absent (No Check-in)"
			rep.TotalAbsent++
		case err != nil:
			return nil, err
		default:
			row.CheckInTime = rec.CheckInTime.Format(timeLayout)
			if rec.CheckOutTime != nil {
				row.CheckOutTime = rec.CheckOutTime.Format(timeLayout)
			}
			switch {
			case rec.IsAbsent:
				row.Status = "Absent (Late Check-in)"
				rep.TotalAbsent++
			case rec.Status == models.AttendanceCheckedOut:
				row.Status = "Present"
				rep.TotalPresent++
			default:
				row.Status = "Checked In (No Checkout)"
				rep.TotalPresent++
			}
			for _, t := range rec.Tasks {
				row.Tasks = append(row.Tasks, TaskRow{Description: t.Description, Status: t.Status})
			}
		}
		rep.Rows = append(rep.Rows, row)
	}
	return rep, nil
}
