// Package api is the HabitSource that talks to the Habit League REST backend.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/comitanigiacomo/habit-league/internal/core/calendar"
	"github.com/comitanigiacomo/habit-league/internal/core/domain"
)

var _ domain.HabitSource = (*Client)(nil)

const (
	defaultTimeout = 10 * time.Second
	maxAttempts    = 3
	maxBodyBytes   = 4 << 20
)

type Client struct {
	baseURL    string
	token      string
	userID     string
	httpClient *http.Client
	backoff    time.Duration
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithBackoff sets the wait before the first retry; it doubles per attempt.
func WithBackoff(d time.Duration) Option {
	return func(c *Client) { c.backoff = d }
}

func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
		backoff:    200 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// WithSession returns a copy of the client that authenticates as session.
func (c *Client) WithSession(session domain.Session) *Client {
	copied := *c
	copied.token = session.Token
	copied.userID = session.UserID
	return &copied
}

func (c *Client) FetchHabits(ctx context.Context, userID string) ([]*domain.Habit, error) {
	q := url.Values{}
	q.Set("user_id", userID)

	body, err := c.do(ctx, http.MethodGet, "/api/v1/habits?"+q.Encode(), nil, domain.ErrHabitNotFound)
	if err != nil {
		return nil, err
	}

	var habits []*domain.Habit
	if err := json.Unmarshal(unwrap(body, "habits"), &habits); err != nil {
		return nil, fmt.Errorf("decode habits: %w", err)
	}
	if habits == nil {
		habits = []*domain.Habit{}
	}
	return habits, nil
}

func (c *Client) FetchHabitEntries(ctx context.Context, query domain.EntryQuery) (domain.RawEntries, error) {
	q := url.Values{}
	q.Set("user_id", query.UserID)
	q.Set("start_date", calendar.DateKey(query.StartDate))
	q.Set("end_date", calendar.DateKey(query.EndDate))

	body, err := c.do(ctx, http.MethodGet, "/api/v1/habit-entries?"+q.Encode(), nil, domain.ErrEntryNotFound)
	if err != nil {
		return domain.RawEntries{}, err
	}

	var entries domain.RawEntries
	if err := json.Unmarshal(unwrap(body, "entries"), &entries); err != nil {
		return domain.RawEntries{}, fmt.Errorf("decode entries: %w", err)
	}
	return entries, nil
}

type entryPayload struct {
	HabitID  string          `json:"habit_id"`
	UserID   string          `json:"user_id"`
	Date     string          `json:"date"`
	Progress domain.Progress `json:"progress"`
	Notes    string          `json:"notes,omitempty"`
}

func (c *Client) CreateHabitEntry(ctx context.Context, entry *domain.HabitEntry) (*domain.HabitEntry, error) {
	payload := entryPayload{
		HabitID:  entry.HabitID,
		UserID:   entry.UserID,
		Date:     calendar.DateKey(entry.Date),
		Progress: entry.Progress,
		Notes:    entry.Notes,
	}

	body, err := c.do(ctx, http.MethodPost, "/api/v1/habit-entries", payload, domain.ErrHabitNotFound)
	if err != nil {
		return nil, err
	}
	return decodeEntry(body, entry)
}

func (c *Client) UpdateHabitEntry(ctx context.Context, id string, patch domain.EntryPatch) (*domain.HabitEntry, error) {
	body, err := c.do(ctx, http.MethodPatch, "/api/v1/habit-entries/"+url.PathEscape(id), patch, domain.ErrEntryNotFound)
	if err != nil {
		return nil, err
	}

	fallback := &domain.HabitEntry{ID: id, UserID: c.userID}
	if patch.Progress != nil {
		fallback.Progress = *patch.Progress
	}
	return decodeEntry(body, fallback)
}

func (c *Client) DeleteHabitEntry(ctx context.Context, id string) error {
	_, err := c.do(ctx, http.MethodDelete, "/api/v1/habit-entries/"+url.PathEscape(id), nil, domain.ErrEntryNotFound)
	return err
}

// decodeEntry reads the entry the backend echoes after a write. Backends that
// answer 204 or with an unrecognised body get the fallback.
func decodeEntry(body []byte, fallback *domain.HabitEntry) (*domain.HabitEntry, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return fallback, nil
	}

	var raw domain.RawEntry
	if err := json.Unmarshal(unwrap(body, "entry"), &raw); err != nil {
		return fallback, nil
	}

	out := *fallback
	if raw.ID != "" {
		out.ID = raw.ID.String()
	}
	if raw.HabitID != "" {
		out.HabitID = raw.HabitID.String()
	}
	if d, err := calendar.ParseDateKey(raw.Date); err == nil {
		out.Date = d
	}
	if p, ok := domain.ParseProgress(raw.Progress); ok {
		out.Progress = p
	}
	if raw.Notes != "" {
		out.Notes = raw.Notes
	}
	if raw.UpdatedAt != nil {
		out.UpdatedAt = *raw.UpdatedAt
	}
	return &out, nil
}

// unwrap strips a {"data": ...} or {"<name>": ...} envelope when the body is
// an object holding exactly that one key.
func unwrap(body []byte, name string) []byte {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return trimmed
	}

	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &envelope); err != nil || len(envelope) != 1 {
		return trimmed
	}
	for _, key := range []string{"data", name} {
		if inner, ok := envelope[key]; ok {
			return inner
		}
	}
	return trimmed
}

// do sends one request. Only GETs are retried, on network errors and 5xx
// answers, with a doubling backoff. notFound is what a 404 maps to.
func (c *Client) do(ctx context.Context, method, path string, payload any, notFound error) ([]byte, error) {
	var encoded []byte
	if payload != nil {
		var err error
		encoded, err = json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
	}

	attempts := 1
	if method == http.MethodGet {
		attempts = maxAttempts
	}

	wait := c.backoff
	var lastErr error

	for attempt := 1; attempt <= attempts; attempt++ {
		body, retry, err := c.send(ctx, method, path, encoded, notFound)
		if err == nil {
			return body, nil
		}
		lastErr = err
		if !retry || attempt == attempts {
			break
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(wait):
		}
		wait *= 2
	}

	return nil, lastErr
}

func (c *Client) send(ctx context.Context, method, path string, payload []byte, notFound error) ([]byte, bool, error) {
	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, false, err
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if c.userID != "" {
		req.Header.Set("X-User-ID", c.userID)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, false, ctx.Err()
		}
		return nil, true, fmt.Errorf("%w: %v", domain.ErrSourceUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, true, fmt.Errorf("%w: read body: %v", domain.ErrSourceUnavailable, err)
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return body, false, nil
	}

	statusErr := &StatusError{Method: method, Path: path, Code: resp.StatusCode, Message: errorMessage(body)}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, false, fmt.Errorf("%w: %w", domain.ErrUnauthorized, statusErr)
	case resp.StatusCode == http.StatusNotFound:
		return nil, false, fmt.Errorf("%w: %w", notFound, statusErr)
	case resp.StatusCode == http.StatusConflict:
		return nil, false, fmt.Errorf("%w: %w", domain.ErrEntryConflict, statusErr)
	case resp.StatusCode >= 500:
		return nil, true, fmt.Errorf("%w: %w", domain.ErrSourceUnavailable, statusErr)
	default:
		return nil, false, statusErr
	}
}

// StatusError is a non-2xx answer from the backend.
type StatusError struct {
	Method  string
	Path    string
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s %s: status %d", e.Method, e.Path, e.Code)
	}
	return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.Path, e.Code, e.Message)
}

func errorMessage(body []byte) string {
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if payload.Error != "" {
			return payload.Error
		}
		if payload.Message != "" {
			return payload.Message
		}
	}
	return strings.TrimSpace(string(body))
}
