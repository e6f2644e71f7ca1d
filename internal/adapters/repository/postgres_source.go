package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/comitanigiacomo/habit-league/internal/core/domain"
)

var _ domain.HabitSource = (*PostgresSource)(nil)

// PostgresSource reads and writes the Habit League backend's own tables. It
// is meant for deployments that sit next to the backend database; it owns no
// schema of its own.
type PostgresSource struct {
	db      *sqlx.DB
	habits  string
	entries string
}

// NewPostgresSource binds to the backend tables inside schema, "public" when
// empty.
func NewPostgresSource(db *sqlx.DB, schema string) *PostgresSource {
	if strings.TrimSpace(schema) == "" {
		schema = "public"
	}
	q := pq.QuoteIdentifier(schema)
	return &PostgresSource{
		db:      db,
		habits:  q + ".habits",
		entries: q + ".habit_entries",
	}
}

// Connect opens the pool with the given driver ("pgx" or "postgres").
func Connect(driver, dsn string) (*sqlx.DB, error) {
	if driver == "" {
		driver = "pgx"
	}
	db, err := sqlx.Connect(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(5 * time.Minute)

	return db, nil
}

type habitRow struct {
	ID          string         `db:"id"`
	UserID      string         `db:"user_id"`
	Name        string         `db:"name"`
	Description sql.NullString `db:"description"`
	Frequency   string         `db:"frequency"`
	Color       sql.NullString `db:"color"`
	Category    sql.NullString `db:"category"`
	Weekdays    []byte         `db:"weekdays"`
}

func (r habitRow) toDomain() (*domain.Habit, error) {
	h := &domain.Habit{
		ID:          r.ID,
		UserID:      r.UserID,
		Name:        r.Name,
		Description: r.Description.String,
		Frequency:   domain.Frequency(strings.ToLower(r.Frequency)),
		Color:       r.Color.String,
		Category:    r.Category.String,
		Entries:     domain.RawEntries{Shape: domain.ShapeArray},
	}

	if len(r.Weekdays) > 0 {
		if err := json.Unmarshal(r.Weekdays, &h.Weekdays); err != nil {
			return nil, fmt.Errorf("failed to unmarshal weekdays: %w", err)
		}
	}

	return h, nil
}

func (s *PostgresSource) FetchHabits(ctx context.Context, userID string) ([]*domain.Habit, error) {
	query := fmt.Sprintf(`
        SELECT id, user_id, name, description, frequency, color, category, weekdays
        FROM %s
        WHERE user_id = $1 AND deleted_at IS NULL
        ORDER BY created_at ASC, id ASC`, s.habits)

	var rows []habitRow
	if err := s.db.SelectContext(ctx, &rows, query, userID); err != nil {
		return nil, fmt.Errorf("query error: %w", classify(err))
	}

	habits := make([]*domain.Habit, 0, len(rows))
	for _, row := range rows {
		h, err := row.toDomain()
		if err != nil {
			return nil, fmt.Errorf("row scan error: %w", err)
		}
		habits = append(habits, h)
	}

	return habits, nil
}

func (s *PostgresSource) FetchHabitEntries(ctx context.Context, q domain.EntryQuery) (domain.RawEntries, error) {
	query := fmt.Sprintf(`
        SELECT id, habit_id, user_id, entry_date, progress, COALESCE(notes, '') AS notes, updated_at
        FROM %s
        WHERE user_id = $1
          AND entry_date >= $2
          AND entry_date <= $3
          AND deleted_at IS NULL
        ORDER BY entry_date ASC, updated_at ASC`, s.entries)

	entries := []*domain.HabitEntry{}
	if err := s.db.SelectContext(ctx, &entries, query, q.UserID, q.StartDate, q.EndDate); err != nil {
		return domain.RawEntries{}, fmt.Errorf("query error: %w", classify(err))
	}

	return domain.NewRawEntries(entries...), nil
}

func (s *PostgresSource) CreateHabitEntry(ctx context.Context, entry *domain.HabitEntry) (*domain.HabitEntry, error) {
	if err := entry.Validate(); err != nil {
		return nil, err
	}

	created := *entry
	if created.ID == "" {
		created.ID = uuid.NewString()
	}

	query := fmt.Sprintf(`
        INSERT INTO %s (id, habit_id, user_id, entry_date, progress, notes, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
        RETURNING updated_at`, s.entries)

	err := s.db.QueryRowxContext(ctx, query,
		created.ID, created.HabitID, created.UserID, created.Date, created.Progress, created.Notes,
	).Scan(&created.UpdatedAt)
	if err != nil {
		return nil, classify(err)
	}

	return &created, nil
}

func (s *PostgresSource) UpdateHabitEntry(ctx context.Context, id string, patch domain.EntryPatch) (*domain.HabitEntry, error) {
	if patch.Progress != nil && !patch.Progress.Valid() {
		return nil, domain.ErrInvalidEntry
	}

	var progress, notes sql.NullString
	if patch.Progress != nil {
		progress = sql.NullString{String: string(*patch.Progress), Valid: true}
	}
	if patch.Notes != nil {
		notes = sql.NullString{String: *patch.Notes, Valid: true}
	}

	query := fmt.Sprintf(`
        UPDATE %s
        SET progress = COALESCE($1, progress),
            notes = COALESCE($2, notes),
            updated_at = NOW()
        WHERE id = $3 AND deleted_at IS NULL
        RETURNING id, habit_id, user_id, entry_date, progress, COALESCE(notes, '') AS notes, updated_at`, s.entries)

	var updated domain.HabitEntry
	if err := s.db.GetContext(ctx, &updated, query, progress, notes, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrEntryNotFound
		}
		return nil, classify(err)
	}

	return &updated, nil
}

// DeleteHabitEntry soft-deletes, the way the backend itself removes entries.
func (s *PostgresSource) DeleteHabitEntry(ctx context.Context, id string) error {
	query := fmt.Sprintf(`
        UPDATE %s
        SET deleted_at = NOW(), updated_at = NOW()
        WHERE id = $1 AND deleted_at IS NULL`, s.entries)

	res, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		return classify(err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrEntryNotFound
	}

	return nil
}

// classify maps Postgres error codes from either driver onto domain errors.
func classify(err error) error {
	code := ""

	var pqErr *pq.Error
	var pgErr *pgconn.PgError
	switch {
	case errors.As(err, &pqErr):
		code = string(pqErr.Code)
	case errors.As(err, &pgErr):
		code = pgErr.Code
	}

	switch code {
	case "23503":
		return fmt.Errorf("%w: referenced habit or user does not exist", domain.ErrHabitNotFound)
	case "23505":
		return domain.ErrEntryConflict
	case "08000", "08003", "08006", "57P01":
		return fmt.Errorf("%w: %v", domain.ErrSourceUnavailable, err)
	}
	return err
}
