package training

import (
	"errors"
	"time"
)

var (
	// ErrNotFound is returned when an entry does not exist.
	ErrNotFound = errors.New("entry not found")
	// ErrInvalidEntry is returned when logged values fail sanitization.
	ErrInvalidEntry = errors.New("invalid entry")
	// ErrInvalidImport is returned when an export file cannot be parsed.
	ErrInvalidImport = errors.New("invalid import file")
)

// EntryInput is a set as the lifter logs it.
type EntryInput struct {
	ExerciseName  string    `json:"exerciseName"            validate:"required,max=127"`
	Date          time.Time `json:"date"                    validate:"required"`
	WeightKg      float64   `json:"weightKg"                validate:"gt=0,lte=1000"`
	Reps          int       `json:"reps"                    validate:"gt=0,lte=100"`
	SetsLogged    *int      `json:"setsLogged,omitempty"    validate:"omitempty,gt=0,lte=50"`
	RepsInReserve *int      `json:"repsInReserve,omitempty" validate:"omitempty,gte=0,lte=10"`
}

// EntryUpdate edits the values of a logged entry. Nil fields are left unchanged.
type EntryUpdate struct {
	Date     *time.Time `json:"date,omitempty"`
	WeightKg *float64   `json:"weightKg,omitempty" validate:"omitempty,gt=0,lte=1000"`
	Reps     *int       `json:"reps,omitempty"     validate:"omitempty,gt=0,lte=100"`
}

// ExerciseSummary describes one exercise that has logged entries.
type ExerciseSummary struct {
	Name          string    `json:"name"`
	EntryCount    int       `json:"entryCount"`
	ExcludedCount int       `json:"excludedCount"`
	LastDate      time.Time `json:"lastDate"`
}

// ImportResult counts what an import did.
type ImportResult struct {
	Sessions int `json:"sessions"`
	Entries  int `json:"entries"`
	// Skipped counts working sets that carried no usable load.
	Skipped int `json:"skipped"`
}

const (
	sourceManual = "manual"
	sourceAlpha  = "alpha"
)
