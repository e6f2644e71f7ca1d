package services

import (
	"context"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/comitanigiacomo/habit-league/internal/core/domain"
	"github.com/comitanigiacomo/habit-league/internal/platform/clock"
)

// SourceFactory builds the HabitSource used for one session, typically an
// API client carrying that session's token.
type SourceFactory func(session domain.Session) domain.HabitSource

type SessionRegistry struct {
	mu          sync.Mutex
	controllers map[string]*CalendarController
	factory     SourceFactory
	calendar    *CalendarService
	clock       clock.Clock
}

func NewSessionRegistry(factory SourceFactory, cal *CalendarService, clk clock.Clock) *SessionRegistry {
	return &SessionRegistry{
		controllers: make(map[string]*CalendarController),
		factory:     factory,
		calendar:    cal,
		clock:       clk,
	}
}

// Get returns the controller for the session's user, creating it on first
// use. A different token for a known user replaces the old controller so
// that no request runs with stale credentials.
func (r *SessionRegistry) Get(session domain.Session) *CalendarController {
	r.mu.Lock()
	defer r.mu.Unlock()

	if ctrl, ok := r.controllers[session.UserID]; ok {
		if ctrl.Session().Token == session.Token {
			return ctrl
		}
		ctrl.Close()
	}

	ctrl := NewCalendarController(session, r.factory(session), r.calendar, r.clock)
	r.controllers[session.UserID] = ctrl
	return ctrl
}

func (r *SessionRegistry) Lookup(userID string) (*CalendarController, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ctrl, ok := r.controllers[userID]
	return ctrl, ok
}

func (r *SessionRegistry) UserIDs() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	ids := make([]string, 0, len(r.controllers))
	for id := range r.controllers {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (r *SessionRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.controllers)
}

// RefreshSession refetches the visible range of a live session. Unknown users
// are ignored.
func (r *SessionRegistry) RefreshSession(ctx context.Context, userID string) error {
	ctrl, ok := r.Lookup(userID)
	if !ok {
		return nil
	}
	return ctrl.Refresh(ctx)
}

// EvictIdle drops every session unused for longer than ttl and returns how
// many were removed.
func (r *SessionRegistry) EvictIdle(ttl time.Duration) int {
	if ttl <= 0 {
		return 0
	}
	cutoff := r.clock.Now().Add(-ttl)

	r.mu.Lock()
	defer r.mu.Unlock()

	evicted := 0
	for id, ctrl := range r.controllers {
		if ctrl.IdleSince().Before(cutoff) {
			ctrl.Close()
			delete(r.controllers, id)
			evicted++
		}
	}
	if evicted > 0 {
		log.Printf("[REGISTRY] Evicted %d idle sessions", evicted)
	}
	return evicted
}
