package models

import "time"

type PrincipalKind string

const (
	KindCompany  PrincipalKind = "company"
	KindEmployee PrincipalKind = "employee"
)

// SessionToken is an opaque bearer credential bound to exactly one account.
// Only the SHA-256 of the issued token is stored; the plaintext is returned
// to the client once at login and never persisted. The unique index over
// (principal_kind, principal_id) caps the table at one live row per account,
// even when two logins race.
type SessionToken struct {
	ID            uint          `json:"id" gorm:"primaryKey"`
	PrincipalKind PrincipalKind `json:"principal_kind" gorm:"size:20;not null;uniqueIndex:idx_session_principal"`
	PrincipalID   uint          `json:"principal_id" gorm:"not null;uniqueIndex:idx_session_principal"`
	TokenHash     string        `json:"-" gorm:"size:64;not null;uniqueIndex"`

	CreatedAt time.Time `json:"created_at"`
}
