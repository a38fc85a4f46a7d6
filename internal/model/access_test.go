package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEvaluateAccessStaffAlwaysEnters(t *testing.T) {
	today := date(2025, 3, 10)
	for _, role := range []string{RoleCoach, RoleAdmin} {
		u := User{FullName: "Carla Gomez", ProfileName: role}
		dec := EvaluateAccess(&u, today)
		assert.Equal(t, AccessAuthorized, dec.Status, role)
		assert.Equal(t, ColorOK, dec.Color, role)
		assert.Equal(t, "Carla Gomez", dec.Name)
	}
}

func TestEvaluateAccessMemberCurrent(t *testing.T) {
	today := date(2025, 3, 10)
	exp := date(2025, 4, 1)
	u := User{FullName: "Juan Perez", ProfileName: RoleMember, ExpiresAt: &exp}

	dec := EvaluateAccess(&u, today)
	assert.Equal(t, AccessAuthorized, dec.Status)
	assert.Equal(t, ColorOK, dec.Color)
	assert.Equal(t, "Acceso autorizado", dec.Message)
}

func TestEvaluateAccessNearExpiryWarns(t *testing.T) {
	today := date(2025, 3, 10)
	exp := date(2025, 3, 12) // two days left
	u := User{FullName: "Juan Perez", ProfileName: RoleMember, ExpiresAt: &exp}

	dec := EvaluateAccess(&u, today)
	assert.Equal(t, AccessAuthorized, dec.Status, "still authorized inside the warning window")
	assert.Equal(t, ColorWarning, dec.Color)
	assert.Equal(t, "Acceso autorizado, vence el 2025-03-12", dec.Message)
}

func TestEvaluateAccessExpiryDayStillEnters(t *testing.T) {
	today := date(2025, 3, 10)
	exp := date(2025, 3, 10)
	u := User{ProfileName: RoleMember, ExpiresAt: &exp}

	dec := EvaluateAccess(&u, today)
	assert.Equal(t, AccessAuthorized, dec.Status)
	assert.Equal(t, ColorWarning, dec.Color)
}

func TestEvaluateAccessExpiredDenied(t *testing.T) {
	today := date(2025, 3, 10)
	exp := date(2025, 3, 9)
	u := User{ProfileName: RoleMember, ExpiresAt: &exp}

	dec := EvaluateAccess(&u, today)
	assert.Equal(t, AccessDenied, dec.Status)
	assert.Equal(t, ColorDenied, dec.Color)
	assert.Equal(t, "Membresía vencida el 2025-03-09", dec.Message)
}

func TestEvaluateAccessNoExpiryDenied(t *testing.T) {
	u := User{ProfileName: RoleMember}
	dec := EvaluateAccess(&u, date(2025, 3, 10))
	assert.Equal(t, AccessDenied, dec.Status)
	assert.Equal(t, "Membresía vencida", dec.Message)
}
