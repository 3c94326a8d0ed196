package auth

import (
	"crypto/subtle"
	"errors"

	"gorm.io/gorm"

	"github.com/ArslanJaveed/idid/models"
)

// ConsumeInvite validates a one-time invite token for an employee still in
// pending_invite and moves them to invited, marking the link as opened. The
// token itself stays on the record until profile completion clears it, so a
// re-click of the same link after this point is rejected by the status check.
func (s *Service) ConsumeInvite(employeeID uint, token string) (*models.Employee, error) {
	var e models.Employee
	if err := s.DB.First(&e, employeeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInviteInvalid
		}
		return nil, err
	}

	if e.Status != models.EmployeePendingInvite || e.InviteToken == nil {
		return nil, ErrInviteInvalid
	}
	if subtle.ConstantTimeCompare([]byte(*e.InviteToken), []byte(token)) != 1 {
		return nil, ErrInviteInvalid
	}

	e.Status = models.EmployeeInvited
	if err := s.DB.Model(&e).Update("status", models.EmployeeInvited).Error; err != nil {
		return nil, err
	}
	return &e, nil
}
