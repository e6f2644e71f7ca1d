package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/comitanigiacomo/habit-league/internal/core/calendar"
	"github.com/comitanigiacomo/habit-league/internal/core/domain"
)

var _ domain.HabitSource = (*InMemorySource)(nil)

// InMemorySource is an ephemeral HabitSource. It backs the demo mode of the
// CLI and stands in for the backend in tests.
type InMemorySource struct {
	mu      sync.RWMutex
	habits  map[string]*domain.Habit
	entries map[string]*domain.HabitEntry
	now     func() time.Time
}

func NewInMemorySource() *InMemorySource {
	return &InMemorySource{
		habits:  make(map[string]*domain.Habit),
		entries: make(map[string]*domain.HabitEntry),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func (s *InMemorySource) AddHabit(h *domain.Habit) {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *h
	s.habits[h.ID] = &copied
}

func (s *InMemorySource) FetchHabits(ctx context.Context, userID string) ([]*domain.Habit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	habits := make([]*domain.Habit, 0)
	for _, h := range s.habits {
		if h.UserID == userID {
			copied := *h
			habits = append(habits, &copied)
		}
	}

	sort.Slice(habits, func(i, j int) bool {
		return habits[i].ID < habits[j].ID
	})

	return habits, nil
}

func (s *InMemorySource) FetchHabitEntries(ctx context.Context, q domain.EntryQuery) (domain.RawEntries, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r := calendar.Range{Start: calendar.Day(q.StartDate), End: calendar.Day(q.EndDate)}

	var entries []*domain.HabitEntry
	for _, e := range s.entries {
		if e.UserID == q.UserID && r.Contains(e.Date) {
			copied := *e
			entries = append(entries, &copied)
		}
	}

	sort.Slice(entries, func(i, j int) bool {
		if !entries[i].Date.Equal(entries[j].Date) {
			return entries[i].Date.Before(entries[j].Date)
		}
		return entries[i].ID < entries[j].ID
	})

	return domain.NewRawEntries(entries...), nil
}

func (s *InMemorySource) CreateHabitEntry(ctx context.Context, entry *domain.HabitEntry) (*domain.HabitEntry, error) {
	if err := entry.Validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.habits[entry.HabitID]; !ok {
		return nil, domain.ErrHabitNotFound
	}
	key := calendar.DateKey(entry.Date)
	for _, e := range s.entries {
		if e.HabitID == entry.HabitID && calendar.DateKey(e.Date) == key {
			return nil, domain.ErrEntryConflict
		}
	}

	created := *entry
	if created.ID == "" {
		created.ID = uuid.NewString()
	}
	created.Date = calendar.Day(created.Date)
	created.UpdatedAt = s.now()
	s.entries[created.ID] = &created

	out := created
	return &out, nil
}

func (s *InMemorySource) UpdateHabitEntry(ctx context.Context, id string, patch domain.EntryPatch) (*domain.HabitEntry, error) {
	if patch.Progress != nil && !patch.Progress.Valid() {
		return nil, domain.ErrInvalidEntry
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[id]
	if !ok {
		return nil, domain.ErrEntryNotFound
	}
	if patch.Progress != nil {
		e.Progress = *patch.Progress
	}
	if patch.Notes != nil {
		e.Notes = *patch.Notes
	}
	e.UpdatedAt = s.now()

	out := *e
	return &out, nil
}

func (s *InMemorySource) DeleteHabitEntry(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entries[id]; !ok {
		return domain.ErrEntryNotFound
	}
	delete(s.entries, id)
	return nil
}
