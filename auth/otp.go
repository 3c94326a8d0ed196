package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"math/big"
	"time"

	"github.com/ArslanJaveed/idid/models"
)

const (
	otpAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	otpLength   = 6
	otpTTL      = 10 * time.Minute
)

func generateOTP() (string, error) {
	code := make([]byte, otpLength)
	for i := range code {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(otpAlphabet))))
		if err != nil {
			return "", err
		}
		code[i] = otpAlphabet[n.Int64()]
	}
	return string(code), nil
}

// IssueOTP assigns a fresh 6-character code with a 10-minute expiry,
// overwriting any prior unconsumed code. The caller persists the model and
// delivers the code.
func (s *Service) IssueOTP(v *models.Verification) (string, error) {
	code, err := generateOTP()
	if err != nil {
		return "", err
	}
	expires := s.Now().Add(otpTTL)
	v.OTPCode = &code
	v.OTPExpiresAt = &expires
	return code, nil
}

// VerifyOTP checks the submitted code against the stored one. On success the
// code is cleared and the email marked verified; the caller persists the
// model. Comparison is constant-time.
func (s *Service) VerifyOTP(v *models.Verification, code string) error {
	if v.OTPCode == nil || v.OTPExpiresAt == nil {
		return ErrOTPInvalid
	}
	if s.Now().After(*v.OTPExpiresAt) {
		return ErrOTPExpired
	}
	if subtle.ConstantTimeCompare([]byte(*v.OTPCode), []byte(code)) != 1 {
		return ErrOTPInvalid
	}
	v.OTPCode = nil
	v.OTPExpiresAt = nil
	v.IsEmailVerified = true
	return nil
}
