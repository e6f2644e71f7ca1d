package repository

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/comitanigiacomo/habit-league/internal/core/domain"
)

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

func setupTestRedis(t *testing.T) *redis.Client {
	_ = godotenv.Load("../../../.env")

	addr := os.Getenv("HABIT_LEAGUE_REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: os.Getenv("HABIT_LEAGUE_REDIS_PASSWORD"),
		DB:       1,
	})

	ctx := context.Background()
	if err := rdb.Ping(ctx).Err(); err != nil {
		t.Skipf("Skipping integration test (Redis down): %v", err)
	}

	rdb.FlushDB(ctx)
	return rdb
}

func TestCachedHabitSource_Integration(t *testing.T) {
	rdb := setupTestRedis(t)
	defer rdb.Close()

	ctx := context.Background()
	habits := []*domain.Habit{{ID: "h1", UserID: "u1", Name: "Read", Frequency: domain.FrequencyDaily}}

	t.Run("Success: second fetch is served from cache", func(t *testing.T) {
		rdb.FlushDB(ctx)
		next := new(MockSource)
		next.On("FetchHabits", mock.Anything, "u1").Return(habits, nil).Once()

		src := NewCachedHabitSource(next, rdb, time.Minute)

		first, err := src.FetchHabits(ctx, "u1")
		require.NoError(t, err)
		second, err := src.FetchHabits(ctx, "u1")
		require.NoError(t, err)

		assert.Equal(t, first[0].Name, second[0].Name)
		next.AssertNumberOfCalls(t, "FetchHabits", 1)
	})

	t.Run("Success: entry write invalidates the user's habits", func(t *testing.T) {
		rdb.FlushDB(ctx)
		next := new(MockSource)
		next.On("FetchHabits", mock.Anything, "u1").Return(habits, nil).Twice()
		entry := domain.NewHabitEntry("h1", "u1", time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), domain.ProgressCompleted)
		next.On("CreateHabitEntry", mock.Anything, entry).Return(entry, nil).Once()

		src := NewCachedHabitSource(next, rdb, time.Minute)

		_, err := src.FetchHabits(ctx, "u1")
		require.NoError(t, err)
		_, err = src.CreateHabitEntry(ctx, entry)
		require.NoError(t, err)
		_, err = src.FetchHabits(ctx, "u1")
		require.NoError(t, err)

		next.AssertExpectations(t)
	})

	t.Run("Success: corrupted cache entry falls back to source", func(t *testing.T) {
		rdb.FlushDB(ctx)
		require.NoError(t, rdb.Set(ctx, "habitleague:habits:u1", "{not json", time.Minute).Err())

		next := new(MockSource)
		next.On("FetchHabits", mock.Anything, "u1").Return(habits, nil).Once()

		src := NewCachedHabitSource(next, rdb, time.Minute)
		got, err := src.FetchHabits(ctx, "u1")
		require.NoError(t, err)
		assert.Len(t, got, 1)
	})
}
