// Package mailer defines the outbound notification contract. Delivery is an
// external collaborator; the default implementation just logs, and handlers
// surface a failed send as its own outcome instead of rolling state back
// (except where the caller decides otherwise).
package mailer

import (
	"log"

	"github.com/ArslanJaveed/idid/report"
)

type Mailer interface {
	SendOTP(email, code string) error
	SendInvite(email, employeeName, companyName, employeeCode, inviteLink string) error
	SendDailyReport(email string, rep *report.DailyReport) error
}

type LogMailer struct{}

func (LogMailer) SendOTP(email, code string) error {
	log.Printf("[mail] otp to %s: %s", email, code)
	return nil
}

func (LogMailer) SendInvite(email, employeeName, companyName, employeeCode, inviteLink string) error {
	log.Printf("[mail] invite to %s (%s at %s, code %s): %s",
		email, employeeName, companyName, employeeCode, inviteLink)
	return nil
}

func (LogMailer) SendDailyReport(email string, rep *report.DailyReport) error {
	log.Printf("[mail] daily report for %s to %s: %d present, %d absent",
		rep.Date, email, rep.TotalPresent, rep.TotalAbsent)
	return nil
}
