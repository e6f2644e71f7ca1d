package domain

import (
	"context"
	"errors"
)

var (
	ErrHabitNotFound     = errors.New("habit not found")
	ErrEntryNotFound     = errors.New("habit entry not found")
	ErrEntryConflict     = errors.New("habit entry version conflict")
	ErrEntryWithoutID    = errors.New("habit entry has no id and cannot be updated")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrSourceUnavailable = errors.New("habit source unavailable")
	ErrStaleFetch        = errors.New("fetch superseded by a newer range")
	ErrWriteFailed       = errors.New("failed to save habit status")
)

// HabitSource is everything the calendar core needs from the backend.
// Implementations talk to the REST API or straight to the backend database;
// the core never implements these operations itself.
type HabitSource interface {
	// FetchHabits returns every habit owned by the user, with whatever
	// entries the backend chose to embed.
	FetchHabits(ctx context.Context, userID string) ([]*Habit, error)

	// FetchHabitEntries returns the user's entries inside the inclusive day range.
	FetchHabitEntries(ctx context.Context, query EntryQuery) (RawEntries, error)

	CreateHabitEntry(ctx context.Context, entry *HabitEntry) (*HabitEntry, error)

	// UpdateHabitEntry applies the non-nil fields of patch to the entry.
	UpdateHabitEntry(ctx context.Context, id string, patch EntryPatch) (*HabitEntry, error)

	DeleteHabitEntry(ctx context.Context, id string) error
}
