package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/comitanigiacomo/habit-league/internal/core/domain"
	"github.com/comitanigiacomo/habit-league/internal/core/services"
)

func TestSessionRegistry(t *testing.T) {
	setup := func() (*services.SessionRegistry, *steppingClock, *[]domain.Session) {
		clk := &steppingClock{now: time.Time(testNow)}
		var built []domain.Session
		factory := func(s domain.Session) domain.HabitSource {
			built = append(built, s)
			src := new(MockSource)
			src.On("FetchHabits", mock.Anything, s.UserID).Return([]*domain.Habit{}, nil)
			src.On("FetchHabitEntries", mock.Anything, mock.Anything).Return(domain.RawEntries{}, nil)
			return src
		}
		return services.NewSessionRegistry(factory, newCalendarService(), clk), clk, &built
	}

	t.Run("Success: same session reuses the controller", func(t *testing.T) {
		reg, _, built := setup()

		first := reg.Get(domain.Session{UserID: "u1", Token: "a"})
		second := reg.Get(domain.Session{UserID: "u1", Token: "a"})

		assert.Same(t, first, second)
		assert.Len(t, *built, 1)
		assert.Equal(t, 1, reg.Len())
	})

	t.Run("Success: a new token replaces the controller", func(t *testing.T) {
		reg, _, built := setup()

		first := reg.Get(domain.Session{UserID: "u1", Token: "a"})
		second := reg.Get(domain.Session{UserID: "u1", Token: "b"})

		assert.NotSame(t, first, second)
		assert.Equal(t, "b", second.Session().Token)
		assert.Len(t, *built, 2)
		assert.Equal(t, 1, reg.Len())

		got, ok := reg.Lookup("u1")
		require.True(t, ok)
		assert.Same(t, second, got)
	})

	t.Run("Success: user ids are sorted", func(t *testing.T) {
		reg, _, _ := setup()
		for _, id := range []string{"carol", "alice", "bob"} {
			reg.Get(domain.Session{UserID: id})
		}
		assert.Equal(t, []string{"alice", "bob", "carol"}, reg.UserIDs())
	})

	t.Run("Success: idle sessions are evicted", func(t *testing.T) {
		reg, clk, _ := setup()

		reg.Get(domain.Session{UserID: "idle"})
		clk.Advance(2 * time.Hour)
		reg.Get(domain.Session{UserID: "fresh"})

		assert.Equal(t, 0, reg.EvictIdle(0))
		assert.Equal(t, 1, reg.EvictIdle(time.Hour))
		assert.Equal(t, []string{"fresh"}, reg.UserIDs())
	})

	t.Run("Success: refresh touches only live sessions", func(t *testing.T) {
		reg, _, _ := setup()
		ctrl := reg.Get(domain.Session{UserID: "u1"})

		require.NoError(t, reg.RefreshSession(context.Background(), "u1"))
		assert.Equal(t, services.StateReady, ctrl.View().State)

		assert.NoError(t, reg.RefreshSession(context.Background(), "ghost"))
		assert.Equal(t, 1, reg.Len())
	})
}
