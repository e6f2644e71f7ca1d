package domain

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrInvalidEntry = errors.New("invalid habit entry data")
)

// Progress is the per-day status of a habit.
type Progress string

const (
	ProgressNotStarted Progress = "not_started"
	ProgressPartial    Progress = "partial"
	ProgressCompleted  Progress = "completed"
	ProgressSkipped    Progress = "skipped"
)

// ParseProgress accepts the backend spellings of a progress value.
func ParseProgress(s string) (Progress, bool) {
	p := Progress(strings.ToLower(strings.TrimSpace(s)))
	switch p {
	case ProgressNotStarted, ProgressPartial, ProgressCompleted, ProgressSkipped:
		return p, true
	}
	return "", false
}

func (p Progress) Valid() bool {
	_, ok := ParseProgress(string(p))
	return ok
}

// Tracked reports whether the status counts as an actual entry for the day.
func (p Progress) Tracked() bool {
	return p != ProgressNotStarted && p.Valid()
}

// Advance returns the status that follows p when the user taps a habit-day.
// The cycle is not_started -> completed -> skipped -> partial -> not_started.
// Anything unrecognised is treated as not_started.
func (p Progress) Advance() Progress {
	current, ok := ParseProgress(string(p))
	if !ok {
		current = ProgressNotStarted
	}

	switch current {
	case ProgressNotStarted:
		return ProgressCompleted
	case ProgressCompleted:
		return ProgressSkipped
	case ProgressSkipped:
		return ProgressPartial
	default:
		return ProgressNotStarted
	}
}

// HabitEntry is one (habit, day) record as the backend returns it after a write.
type HabitEntry struct {
	ID        string    `json:"id" db:"id"`
	HabitID   string    `json:"habit_id" db:"habit_id"`
	UserID    string    `json:"user_id" db:"user_id"`
	Date      time.Time `json:"date" db:"entry_date"`
	Progress  Progress  `json:"progress" db:"progress"`
	Notes     string    `json:"notes" db:"notes"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

func NewHabitEntry(habitID, userID string, date time.Time, progress Progress) *HabitEntry {
	return &HabitEntry{
		HabitID:  habitID,
		UserID:   userID,
		Date:     time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC),
		Progress: progress,
	}
}

func (e *HabitEntry) Validate() error {
	if strings.TrimSpace(e.HabitID) == "" {
		return errors.New("habit_id is required")
	}
	if strings.TrimSpace(e.UserID) == "" {
		return errors.New("user_id is required")
	}
	if e.Date.IsZero() {
		return errors.New("date is required")
	}
	if !e.Progress.Valid() {
		return ErrInvalidEntry
	}
	return nil
}

// EntryQuery selects the entries of one user inside an inclusive day range.
type EntryQuery struct {
	UserID    string
	StartDate time.Time
	EndDate   time.Time
}

// EntryPatch carries the fields of an entry update; nil fields are left alone.
type EntryPatch struct {
	Progress *Progress `json:"progress,omitempty"`
	Notes    *string   `json:"notes,omitempty"`
}
