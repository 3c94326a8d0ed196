package auth

import (
	"errors"

	"github.com/ArslanJaveed/idid/models"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNotFound           = errors.New("not found")
	ErrForbidden          = errors.New("forbidden")
	ErrOTPInvalid         = errors.New("invalid otp")
	ErrOTPExpired         = errors.New("expired otp")
	ErrInviteInvalid      = errors.New("invalid invite")
)

// Principal is the tagged union produced by the resolver: exactly one of
// Company or Employee is set, and Kind says which.
type Principal struct {
	Kind     models.PrincipalKind
	Company  *models.Company
	Employee *models.Employee
}

func CompanyPrincipal(c *models.Company) *Principal {
	return &Principal{Kind: models.KindCompany, Company: c}
}

func EmployeePrincipal(e *models.Employee) *Principal {
	return &Principal{Kind: models.KindEmployee, Employee: e}
}

func (p *Principal) ID() uint {
	if p.Kind == models.KindCompany {
		return p.Company.ID
	}
	return p.Employee.ID
}

func (p *Principal) Email() string {
	if p.Kind == models.KindCompany {
		return p.Company.Email
	}
	return p.Employee.Email
}

// RequireKind is the capability gate: an operation declared for kind k only
// proceeds when the resolved principal is of that kind. Pure, no I/O.
func RequireKind(p *Principal, k models.PrincipalKind) error {
	if p == nil || p.Kind != k {
		return ErrForbidden
	}
	return nil
}
