package services_test

import (
	"context"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/comitanigiacomo/habit-league/internal/core/domain"
	"github.com/comitanigiacomo/habit-league/internal/platform/clock"
)

// Friday 15 March 2024.
var testNow = clock.Fixed(time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC))

func day(d int) time.Time {
	return time.Date(2024, 3, d, 0, 0, 0, 0, time.UTC)
}

type MockSource struct {
	mock.Mock
}

func (m *MockSource) FetchHabits(ctx context.Context, userID string) ([]*domain.Habit, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Habit), args.Error(1)
}

func (m *MockSource) FetchHabitEntries(ctx context.Context, q domain.EntryQuery) (domain.RawEntries, error) {
	args := m.Called(ctx, q)
	return args.Get(0).(domain.RawEntries), args.Error(1)
}

func (m *MockSource) CreateHabitEntry(ctx context.Context, e *domain.HabitEntry) (*domain.HabitEntry, error) {
	args := m.Called(ctx, e)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.HabitEntry), args.Error(1)
}

func (m *MockSource) UpdateHabitEntry(ctx context.Context, id string, patch domain.EntryPatch) (*domain.HabitEntry, error) {
	args := m.Called(ctx, id, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.HabitEntry), args.Error(1)
}

func (m *MockSource) DeleteHabitEntry(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

// steppingClock is a clock the test moves by hand.
type steppingClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *steppingClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *steppingClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}
