package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/comitanigiacomo/habit-league/internal/core/domain"
)

var _ domain.HabitSource = (*CachedHabitSource)(nil)

const DefaultHabitTTL = 30 * time.Second

// CachedHabitSource keeps each user's habit list in Redis for a short TTL.
// Entries are never cached; every entry write passes straight through and
// drops the user's cached habits, since habits may embed entries.
type CachedHabitSource struct {
	next  domain.HabitSource
	cache *redis.Client
	ttl   time.Duration
}

func NewCachedHabitSource(next domain.HabitSource, cache *redis.Client, ttl time.Duration) *CachedHabitSource {
	if ttl <= 0 {
		ttl = DefaultHabitTTL
	}
	return &CachedHabitSource{
		next:  next,
		cache: cache,
		ttl:   ttl,
	}
}

func (s *CachedHabitSource) cacheKey(userID string) string {
	return fmt.Sprintf("habitleague:habits:%s", userID)
}

func (s *CachedHabitSource) invalidate(ctx context.Context, userID string) {
	if userID == "" {
		return
	}
	if err := s.cache.Del(ctx, s.cacheKey(userID)).Err(); err != nil {
		log.Printf("[CACHE] Failed to invalidate for user %s: %v", userID, err)
	}
}

func (s *CachedHabitSource) FetchHabits(ctx context.Context, userID string) ([]*domain.Habit, error) {
	key := s.cacheKey(userID)

	val, err := s.cache.Get(ctx, key).Bytes()
	if err == nil {
		var habits []*domain.Habit
		if err := json.Unmarshal(val, &habits); err == nil {
			return habits, nil
		}

		log.Printf("[CACHE] Corrupted data for user %s, cleaning up key", userID)
		s.cache.Del(ctx, key)
	} else if !errors.Is(err, redis.Nil) {
		log.Printf("[CACHE] Redis read error: %v", err)
	}

	habits, err := s.next.FetchHabits(ctx, userID)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(habits); err == nil {
		if setErr := s.cache.Set(ctx, key, data, s.ttl).Err(); setErr != nil {
			log.Printf("[CACHE] Redis set error: %v", setErr)
		}
	}

	return habits, nil
}

func (s *CachedHabitSource) FetchHabitEntries(ctx context.Context, q domain.EntryQuery) (domain.RawEntries, error) {
	return s.next.FetchHabitEntries(ctx, q)
}

func (s *CachedHabitSource) CreateHabitEntry(ctx context.Context, entry *domain.HabitEntry) (*domain.HabitEntry, error) {
	created, err := s.next.CreateHabitEntry(ctx, entry)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, entry.UserID)
	return created, nil
}

func (s *CachedHabitSource) UpdateHabitEntry(ctx context.Context, id string, patch domain.EntryPatch) (*domain.HabitEntry, error) {
	updated, err := s.next.UpdateHabitEntry(ctx, id, patch)
	if err != nil {
		return nil, err
	}
	if updated != nil {
		s.invalidate(ctx, updated.UserID)
	}
	return updated, nil
}

// DeleteHabitEntry cannot tell whose entry it removed, so the cached habit
// lists simply age out within the TTL.
func (s *CachedHabitSource) DeleteHabitEntry(ctx context.Context, id string) error {
	return s.next.DeleteHabitEntry(ctx, id)
}
