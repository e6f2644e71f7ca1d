package commands

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"

	"github.com/comitanigiacomo/habit-league/internal/adapters/api"
	"github.com/comitanigiacomo/habit-league/internal/adapters/cache"
	"github.com/comitanigiacomo/habit-league/internal/adapters/handler/http/middleware"
	"github.com/comitanigiacomo/habit-league/internal/adapters/repository"
	"github.com/comitanigiacomo/habit-league/internal/config"
	"github.com/comitanigiacomo/habit-league/internal/core/calendar"
	"github.com/comitanigiacomo/habit-league/internal/core/domain"
	"github.com/comitanigiacomo/habit-league/internal/core/services"
	"github.com/comitanigiacomo/habit-league/internal/platform/clock"
)

const demoUserID = "demo"

// environment is everything a command needs, built once from the config.
type environment struct {
	cfg      *config.Config
	clock    clock.Clock
	engine   calendar.Engine
	expander calendar.Expander
	calendar *services.CalendarService
	sources  services.SourceFactory

	db  *sqlx.DB
	rdb *redis.Client
}

func newEnvironment(cfg *config.Config) (*environment, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	env := &environment{
		cfg:      cfg,
		clock:    clock.SystemClock{Location: loc},
		engine:   calendar.NewEngine(cfg.WeekStartDay()),
		expander: calendar.NewExpander(),
	}
	env.calendar = services.NewCalendarService(env.engine, env.expander)

	var base services.SourceFactory
	switch cfg.Source {
	case config.SourcePostgres:
		db, err := repository.Connect(cfg.Database.Driver, cfg.Database.URL)
		if err != nil {
			return nil, fmt.Errorf("connect to database: %w", err)
		}
		env.db = db
		pg := repository.NewPostgresSource(db, cfg.Database.Schema)
		base = func(domain.Session) domain.HabitSource { return pg }

	case config.SourceMemory:
		mem := repository.NewInMemorySource()
		base = func(s domain.Session) domain.HabitSource {
			seedDemo(mem, s.UserID, env.clock.Now())
			return mem
		}

	default:
		client := api.NewClient(cfg.API.BaseURL, api.WithHTTPClient(&http.Client{Timeout: cfg.APITimeout()}))
		base = func(s domain.Session) domain.HabitSource { return client.WithSession(s) }
	}

	if cfg.Redis.Addr != "" {
		rdb, err := cache.NewRedisClient(cache.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			log.Printf("[CACHE] Redis unavailable, continuing without cache: %v", err)
		} else {
			env.rdb = rdb
			ttl := cfg.HabitTTL()
			inner := base
			base = func(s domain.Session) domain.HabitSource {
				return repository.NewCachedHabitSource(inner(s), rdb, ttl)
			}
		}
	}

	env.sources = base
	return env, nil
}

// session is the identity the CLI acts as. Memory mode falls back to the
// demo user so it works with an empty config.
func (e *environment) session() (domain.Session, error) {
	s := domain.Session{UserID: e.cfg.API.UserID, Token: e.cfg.API.Token}
	if s.UserID == "" && e.cfg.Source == config.SourceMemory {
		s.UserID = demoUserID
	}
	if s.UserID == "" {
		return domain.Session{}, errors.New("api.user_id is not set (config file or HABIT_LEAGUE_API_USER_ID)")
	}
	return s, nil
}

func (e *environment) controller() (*services.CalendarController, error) {
	s, err := e.session()
	if err != nil {
		return nil, err
	}
	return services.NewCalendarController(s, e.sources(s), e.calendar, e.clock), nil
}

func (e *environment) rateLimits() middleware.RateLimits {
	window := e.cfg.RateWindow()
	return middleware.RateLimits{
		Read:  middleware.RateBudget{Name: "read", Limit: e.cfg.RateLimit.Requests, Window: window},
		Write: middleware.RateBudget{Name: "write", Limit: e.cfg.RateLimit.Writes, Window: window},
	}
}

func (e *environment) Close() {
	if e.db != nil {
		e.db.Close()
	}
	if e.rdb != nil {
		e.rdb.Close()
	}
}

// seedDemo gives a user of the in-memory source a few habits and a week of
// history the first time it is seen.
func seedDemo(src *repository.InMemorySource, userID string, now time.Time) {
	ctx := context.Background()
	if habits, _ := src.FetchHabits(ctx, userID); len(habits) > 0 {
		return
	}

	habits := []*domain.Habit{
		{ID: userID + "-read", UserID: userID, Name: "Read 20 pages", Frequency: domain.FrequencyDaily, Color: "#22C55E", Category: "mind"},
		{ID: userID + "-run", UserID: userID, Name: "Run", Frequency: domain.FrequencyWeekly, Weekdays: []int{1, 3, 5}, Color: "#3B82F6", Category: "health"},
		{ID: userID + "-stretch", UserID: userID, Name: "Stretch", Frequency: domain.FrequencyDaily, Color: "#F59E0B", Category: "health"},
		{ID: userID + "-budget", UserID: userID, Name: "Review budget", Frequency: domain.FrequencyMonthly, Color: "#A855F7", Category: "money"},
	}
	for _, h := range habits {
		src.AddHabit(h)
	}

	today := calendar.Day(now)
	history := []domain.Progress{
		domain.ProgressCompleted,
		domain.ProgressCompleted,
		domain.ProgressSkipped,
		domain.ProgressCompleted,
		domain.ProgressPartial,
		domain.ProgressCompleted,
	}
	for i, p := range history {
		date := today.AddDate(0, 0, -(len(history) - i))
		_, _ = src.CreateHabitEntry(ctx, domain.NewHabitEntry(habits[0].ID, userID, date, p))
		if i%2 == 0 {
			_, _ = src.CreateHabitEntry(ctx, domain.NewHabitEntry(habits[2].ID, userID, date, domain.ProgressCompleted))
		}
	}
}
