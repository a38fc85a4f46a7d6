package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestNextExpiryStacksWhileCurrent(t *testing.T) {
	today := date(2025, 3, 10)
	current := date(2025, 3, 20) // ten unused days left

	got := NextExpiry(today, &current, 30)
	assert.Equal(t, date(2025, 4, 19), got, "unused days must carry over")
}

func TestNextExpiryRestartsWhenLapsed(t *testing.T) {
	today := date(2025, 3, 10)
	lapsed := date(2025, 2, 1)

	got := NextExpiry(today, &lapsed, 30)
	assert.Equal(t, date(2025, 4, 9), got, "lapsed membership restarts from today")
}

func TestNextExpiryNoPreviousExpiry(t *testing.T) {
	today := date(2025, 3, 10)

	got := NextExpiry(today, nil, 90)
	assert.Equal(t, date(2025, 6, 8), got)
}

func TestNextExpiryDefaultsToThirtyDays(t *testing.T) {
	today := date(2025, 3, 10)

	got := NextExpiry(today, nil, 0)
	assert.Equal(t, date(2025, 4, 9), got)
}

func TestComputedStatus(t *testing.T) {
	today := date(2025, 3, 10)

	u := User{}
	assert.Equal(t, StatusExpired, u.ComputedStatus(today), "no expiry on record means expired")

	past := date(2025, 3, 9)
	u.ExpiresAt = &past
	assert.Equal(t, StatusExpired, u.ComputedStatus(today))

	sameDay := date(2025, 3, 10)
	u.ExpiresAt = &sameDay
	assert.Equal(t, StatusCurrent, u.ComputedStatus(today), "expiry day itself still counts")

	future := date(2025, 4, 1)
	u.ExpiresAt = &future
	assert.Equal(t, StatusCurrent, u.ComputedStatus(today))
}

func TestAge(t *testing.T) {
	today := date(2025, 6, 15)

	u := User{}
	assert.Nil(t, u.Age(today))

	b := date(1990, 6, 15)
	u.BirthDate = &b
	assert.Equal(t, 35, *u.Age(today), "birthday today counts the full year")

	b = date(1990, 6, 16)
	u.BirthDate = &b
	assert.Equal(t, 34, *u.Age(today), "birthday tomorrow does not")
}

func TestIsStaff(t *testing.T) {
	assert.False(t, (&User{ProfileName: RoleMember}).IsStaff())
	assert.True(t, (&User{ProfileName: RoleCoach}).IsStaff())
	assert.True(t, (&User{ProfileName: RoleAdmin}).IsStaff())
}
