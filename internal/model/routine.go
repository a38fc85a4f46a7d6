package model

import "time"

// MuscleGroup is a library tag for exercises.
type MuscleGroup struct {
	ID   uint64
	Name string
}

// Exercise is a library exercise referenced by routine entries.
type Exercise struct {
	ID              uint64
	Name            string
	MuscleGroupID   *uint64
	MuscleGroupName *string // joined from grupos_musculares
}

// RoutinePlan is a member's workout program. At most one plan per member is
// active; activating a new one deactivates the rest.
type RoutinePlan struct {
	ID          uint64
	UserID      uint64
	Name        string
	Description *string
	Goal        *string
	CreatedAt   time.Time
	ExpiresAt   *time.Time
	Active      bool
	Days        []RoutineDay
}

// RoutineDay groups the exercises of one training day.
type RoutineDay struct {
	ID        uint64
	PlanID    uint64
	Name      string
	Order     int
	Exercises []RoutineExercise
}

// RoutineExercise places a library exercise inside a day.
type RoutineExercise struct {
	ID           uint64
	DayID        uint64
	ExerciseID   uint64
	ExerciseName string // joined from ejercicios
	Order        int
	Sets         []ExerciseSet
}

// ExerciseSet is one prescribed set of a routine exercise.
type ExerciseSet struct {
	ID       uint64
	Number   int
	Reps     int
	Weight   float64
	RestSecs int
}
