package model

import "time"

// Role names as stored in the perfiles table.
const (
	RoleMember = "Alumno"
	RoleCoach  = "Profesor"
	RoleAdmin  = "Administrativo"
)

// Account status labels. estado_cuenta is a display value derived from
// fecha_vencimiento; it is recomputed on read and after payments, never
// treated as authoritative.
const (
	StatusCurrent = "Al día"
	StatusExpired = "Vencido"
)

// User represents a row of the usuarios table: members and staff share the
// table and are told apart by their profile. Optional columns are pointers
// so NULL survives round trips.
type User struct {
	ID             uint64
	DNI            string
	PasswordHash   string
	FullName       string
	Email          *string
	ProfileID      *uint64
	ProfileName    string // joined from perfiles
	PlanID         *uint64
	PlanName       *string // joined from planes
	AccountStatus  string
	LastRenewal    *time.Time
	ExpiresAt      *time.Time
	ClassesLeft    *int
	Specialty      *string
	Weight         *float64
	Height         *float64
	BMI            *float64
	BirthDate      *time.Time
	MedicalCert    bool
	MedicalCertAt  *time.Time
	CreatedAt      time.Time
}

// IsStaff reports whether the user's profile grants unconditional door access.
func (u *User) IsStaff() bool {
	return u.ProfileName == RoleCoach || u.ProfileName == RoleAdmin
}

// ComputedStatus derives the account status from the expiry date. A user
// with no expiry on record is treated as expired so front desk is forced to
// register a payment before granting access.
func (u *User) ComputedStatus(today time.Time) string {
	if u.ExpiresAt == nil {
		return StatusExpired
	}
	if dateOnly(*u.ExpiresAt).Before(dateOnly(today)) {
		return StatusExpired
	}
	return StatusCurrent
}

// Age returns full years since birth date, or nil when unknown.
func (u *User) Age(today time.Time) *int {
	if u.BirthDate == nil {
		return nil
	}
	b := *u.BirthDate
	years := today.Year() - b.Year()
	if today.Month() < b.Month() || (today.Month() == b.Month() && today.Day() < b.Day()) {
		years--
	}
	return &years
}

// NextExpiry computes the membership expiry after a renewal. Unused days
// stack while the membership is still current; once lapsed the clock
// restarts from today.
func NextExpiry(today time.Time, current *time.Time, durationDays int) time.Time {
	if durationDays <= 0 {
		durationDays = 30
	}
	base := dateOnly(today)
	if current != nil && dateOnly(*current).After(base) {
		base = dateOnly(*current)
	}
	return base.AddDate(0, 0, durationDays)
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
