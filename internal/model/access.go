package model

import (
	"fmt"
	"time"
)

// Access decision statuses and the indicator colors the door display uses.
const (
	AccessAuthorized = "AUTORIZADO"
	AccessDenied     = "DENEGADO"

	ColorOK      = "verde"
	ColorWarning = "amarillo"
	ColorDenied  = "rojo"
)

// Days before expiry at which the door display switches to the warning color.
const nearExpiryDays = 3

// AccessEntry is the denormalized snapshot stored per access attempt.
type AccessEntry struct {
	ID         uint64
	Name       string
	DNI        string
	Role       string
	Method     string
	Result     string
	Authorized bool
	At         time.Time
}

// AccessDecision is the outcome of evaluating one QR scan.
type AccessDecision struct {
	Status  string
	Message string
	Name    string
	Role    string
	Color   string
}

// EvaluateAccess decides whether a roster member may enter today. Staff
// always enter. Members enter while the membership has not expired; inside
// the last three days the color flips to the warning shade so front desk
// can prompt a renewal.
func EvaluateAccess(u *User, today time.Time) AccessDecision {
	dec := AccessDecision{Name: u.FullName, Role: u.ProfileName}
	if u.IsStaff() {
		dec.Status = AccessAuthorized
		dec.Message = "Acceso autorizado"
		dec.Color = ColorOK
		return dec
	}
	if u.ExpiresAt == nil || dateOnly(*u.ExpiresAt).Before(dateOnly(today)) {
		dec.Status = AccessDenied
		dec.Color = ColorDenied
		if u.ExpiresAt != nil {
			dec.Message = fmt.Sprintf("Membresía vencida el %s", u.ExpiresAt.Format("2006-01-02"))
		} else {
			dec.Message = "Membresía vencida"
		}
		return dec
	}
	dec.Status = AccessAuthorized
	dec.Message = "Acceso autorizado"
	dec.Color = ColorOK
	if left := int(dateOnly(*u.ExpiresAt).Sub(dateOnly(today)).Hours() / 24); left <= nearExpiryDays {
		dec.Color = ColorWarning
		dec.Message = fmt.Sprintf("Acceso autorizado, vence el %s", u.ExpiresAt.Format("2006-01-02"))
	}
	return dec
}
