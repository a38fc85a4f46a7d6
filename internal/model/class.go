package model

import "time"

// Class is a recurring group class. Occurrences list every weekly
// (day, time) pair at which it runs; horario is a float hour so 18.5 means
// 18:30.
type Class struct {
	ID          uint64
	Name        string
	Coach       string
	Color       string
	MaxCapacity int
	Occurrences []Occurrence
}

// Occurrence is one weekly (day, time) recurrence of a class.
type Occurrence struct {
	ID      uint64
	ClassID uint64
	Day     string
	Hour    float64
}

// Booking reserves a spot in one occurrence of a class for a member.
type Booking struct {
	ID      uint64
	UserID  uint64
	ClassID uint64
	Day     string
	Hour    float64
	Date    time.Time
}
