package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/ArslanJaveed/idid/models"
)

// dummyHash keeps credential lookups roughly constant-time when no account
// matches the identifier: we still burn one bcrypt comparison.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("valid-looking-password"), bcrypt.DefaultCost)

// Service owns credential and session state for both account kinds.
type Service struct {
	DB  *gorm.DB
	Now func() time.Time
}

func NewService(db *gorm.DB) *Service {
	return &Service{DB: db, Now: time.Now}
}

func hashToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

func newToken() (string, error) {
	buf := make([]byte, 20)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// ResolveByToken maps a bearer token to the account that owns it. The token
// table is disjoint by construction (each row is created against one kind),
// so the row's kind discriminant is authoritative.
func (s *Service) ResolveByToken(raw string) (*Principal, error) {
	if raw == "" {
		return nil, ErrNotFound
	}

	var st models.SessionToken
	if err := s.DB.Where("token_hash = ?", hashToken(raw)).First(&st).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	switch st.PrincipalKind {
	case models.KindCompany:
		var c models.Company
		if err := s.DB.First(&c, st.PrincipalID).Error; err != nil {
			return nil, ErrNotFound
		}
		return CompanyPrincipal(&c), nil
	case models.KindEmployee:
		var e models.Employee
		if err := s.DB.Preload("Role").First(&e, st.PrincipalID).Error; err != nil {
			return nil, ErrNotFound
		}
		return EmployeePrincipal(&e), nil
	}
	return nil, ErrNotFound
}

// ResolveByCredentials looks the email up in the companies table first, then
// in employees. The two tables are independent email namespaces; when the
// same address exists in both, the company wins — that ordering is inherited
// behavior, not a security decision. Both "unknown email" and "wrong
// password" collapse into ErrInvalidCredentials.
func (s *Service) ResolveByCredentials(email, password string) (*Principal, error) {
	var c models.Company
	err := s.DB.Where("email = ?", email).First(&c).Error
	if err == nil {
		if bcrypt.CompareHashAndPassword([]byte(c.Password), []byte(password)) != nil {
			return nil, ErrInvalidCredentials
		}
		return CompanyPrincipal(&c), nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	var e models.Employee
	err = s.DB.Preload("Role").Where("email = ?", email).First(&e).Error
	if err == nil {
		if e.Password == nil {
			return nil, ErrInvalidCredentials
		}
		if bcrypt.CompareHashAndPassword([]byte(*e.Password), []byte(password)) != nil {
			return nil, ErrInvalidCredentials
		}
		return EmployeePrincipal(&e), nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
	return nil, ErrInvalidCredentials
}

// IssueSession revokes every existing token for the principal and issues one
// new token, in a single transaction. One active session per account is a
// deliberate policy; the unique (principal_kind, principal_id) index is what
// holds it against concurrent logins. Under READ COMMITTED, two logins can
// both see an empty delete and race their inserts; the loser hits the index
// and retries against the winner's committed row.
func (s *Service) IssueSession(p *Principal) (string, error) {
	raw, err := newToken()
	if err != nil {
		return "", err
	}

	for attempt := 0; ; attempt++ {
		err = s.DB.Transaction(func(tx *gorm.DB) error {
			if err := tx.Where("principal_kind = ? AND principal_id = ?", p.Kind, p.ID()).
				Delete(&models.SessionToken{}).Error; err != nil {
				return err
			}
			return tx.Create(&models.SessionToken{
				PrincipalKind: p.Kind,
				PrincipalID:   p.ID(),
				TokenHash:     hashToken(raw),
			}).Error
		})
		if err == nil {
			return raw, nil
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) || attempt >= 2 {
			return "", err
		}
	}
}

// RevokeSession deletes the token if it exists; revoking an already-revoked
// token is a no-op.
func (s *Service) RevokeSession(raw string) error {
	return s.DB.Where("token_hash = ?", hashToken(raw)).Delete(&models.SessionToken{}).Error
}
