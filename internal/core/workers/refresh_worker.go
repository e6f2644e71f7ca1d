package workers

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/comitanigiacomo/habit-league/internal/core/domain"
)

// SessionStore is the part of the session registry the worker drives.
type SessionStore interface {
	UserIDs() []string
	RefreshSession(ctx context.Context, userID string) error
	EvictIdle(ttl time.Duration) int
}

type RefreshJob struct {
	UserID string
}

// RefreshWorker keeps live calendar sessions warm. Jobs go through a bounded
// queue; when it is full new jobs are dropped rather than blocking callers.
type RefreshWorker struct {
	store      SessionStore
	jobs       chan RefreshJob
	schedule   string
	sessionTTL time.Duration
	timeout    time.Duration
	cron       *cron.Cron
}

func NewRefreshWorker(store SessionStore, schedule string, sessionTTL time.Duration) *RefreshWorker {
	return &RefreshWorker{
		store:      store,
		jobs:       make(chan RefreshJob, 100),
		schedule:   schedule,
		sessionTTL: sessionTTL,
		timeout:    15 * time.Second,
	}
}

// Start launches the job loop and, when a schedule is configured, the cron
// trigger. Both stop when ctx is cancelled.
func (w *RefreshWorker) Start(ctx context.Context) error {
	if w.schedule != "" {
		c := cron.New()
		if _, err := c.AddFunc(w.schedule, w.Tick); err != nil {
			return err
		}
		w.cron = c
		c.Start()
	}

	go func() {
		log.Println("[WORKER] Refresh worker started in background...")
		for {
			select {
			case job := <-w.jobs:
				w.processJob(ctx, job)
			case <-ctx.Done():
				if w.cron != nil {
					<-w.cron.Stop().Done()
				}
				log.Println("[WORKER] Refresh worker shutting down...")
				return
			}
		}
	}()

	return nil
}

// Tick evicts idle sessions and queues a refresh for every remaining one.
func (w *RefreshWorker) Tick() {
	w.store.EvictIdle(w.sessionTTL)
	for _, id := range w.store.UserIDs() {
		w.Enqueue(id)
	}
}

// Enqueue reports whether the job was accepted.
func (w *RefreshWorker) Enqueue(userID string) bool {
	select {
	case w.jobs <- RefreshJob{UserID: userID}:
		return true
	default:
		log.Printf("[WORKER] Queue full! Dropping refresh for user %s", userID)
		return false
	}
}

func (w *RefreshWorker) processJob(ctx context.Context, job RefreshJob) {
	jobCtx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()

	err := w.store.RefreshSession(jobCtx, job.UserID)
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrStaleFetch):
		// a user-driven navigation overtook this refresh
	default:
		log.Printf("[WORKER] Refresh failed for user %s: %v", job.UserID, err)
	}
}
