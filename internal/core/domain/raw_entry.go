package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// FlexID is an identifier the backend sends either as a JSON string or a number.
type FlexID string

func (id *FlexID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		*id = ""
		return nil
	}

	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = FlexID(strings.TrimSpace(s))
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("id must be a string or number: %w", err)
	}
	*id = FlexID(n.String())
	return nil
}

func (id FlexID) String() string {
	return string(id)
}

// RawEntry is an entry record as it arrives from any source, before
// normalization. Date stays a string so that unparseable dates can be
// dropped by the aggregator instead of failing the whole payload.
type RawEntry struct {
	ID        FlexID     `json:"id,omitempty"`
	HabitID   FlexID     `json:"habit_id,omitempty"`
	Date      string     `json:"date,omitempty"`
	Progress  string     `json:"progress,omitempty"`
	Completed *bool      `json:"completed,omitempty"`
	Notes     string     `json:"notes,omitempty"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

func (e *RawEntry) UnmarshalJSON(b []byte) error {
	type plain RawEntry
	var aux struct {
		plain
		EntryDate      string          `json:"entry_date"`
		CompletionDate string          `json:"completion_date"`
		Completed      json.RawMessage `json:"completed"`
		UpdatedAt      string          `json:"updated_at"`
	}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}

	*e = RawEntry(aux.plain)

	if e.Date == "" {
		e.Date = aux.EntryDate
	}
	if e.Date == "" {
		e.Date = aux.CompletionDate
	}

	e.Completed = parseLooseBool(aux.Completed)
	e.UpdatedAt = parseLooseTime(aux.UpdatedAt)

	return nil
}

// FromHabitEntry converts a typed entry back into the raw form.
func FromHabitEntry(entry *HabitEntry) RawEntry {
	raw := RawEntry{
		ID:       FlexID(entry.ID),
		HabitID:  FlexID(entry.HabitID),
		Date:     entry.Date.Format("2006-01-02"),
		Progress: string(entry.Progress),
		Notes:    entry.Notes,
	}
	if !entry.UpdatedAt.IsZero() {
		updated := entry.UpdatedAt
		raw.UpdatedAt = &updated
	}
	return raw
}

func parseLooseBool(raw json.RawMessage) *bool {
	v := strings.Trim(strings.ToLower(strings.TrimSpace(string(raw))), `"`)

	var b bool
	switch v {
	case "true", "1", "yes":
		b = true
	case "false", "0", "no":
		b = false
	default:
		return nil
	}
	return &b
}

func parseLooseTime(v string) *time.Time {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}

	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, v); err == nil {
			return &t
		}
	}
	return nil
}

type EntryShape string

const (
	ShapeArray EntryShape = "array"
	ShapeMap   EntryShape = "map"
)

// RawEntries is the tagged union of the two payload shapes the backend uses
// for entries: a JSON array of entry objects, or a JSON object keyed by date
// whose values are entry objects, bare progress strings, or booleans.
// Items keeps input order in both cases.
type RawEntries struct {
	Shape EntryShape
	Items []RawEntry

	// Skipped counts records that could not be decoded at all.
	Skipped int
}

func NewRawEntries(entries ...*HabitEntry) RawEntries {
	out := RawEntries{Shape: ShapeArray, Items: make([]RawEntry, 0, len(entries))}
	for _, e := range entries {
		if e == nil {
			continue
		}
		out.Items = append(out.Items, FromHabitEntry(e))
	}
	return out
}

func (r RawEntries) Len() int {
	return len(r.Items)
}

func (r *RawEntries) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	*r = RawEntries{Shape: ShapeArray}

	if len(b) == 0 || string(b) == "null" {
		return nil
	}

	switch b[0] {
	case '[':
		return r.decodeArray(b)
	case '{':
		r.Shape = ShapeMap
		return r.decodeMap(b)
	default:
		return fmt.Errorf("entries must be an array or an object keyed by date, got %q", b[0])
	}
}

func (r *RawEntries) decodeArray(b []byte) error {
	var elems []json.RawMessage
	if err := json.Unmarshal(b, &elems); err != nil {
		return err
	}

	for _, elem := range elems {
		var item RawEntry
		if err := json.Unmarshal(elem, &item); err != nil {
			r.Skipped++
			continue
		}
		r.Items = append(r.Items, item)
	}
	return nil
}

func (r *RawEntries) decodeMap(b []byte) error {
	dec := json.NewDecoder(bytes.NewReader(b))

	if _, err := dec.Token(); err != nil {
		return err
	}

	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("unexpected object key %v", keyTok)
		}

		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return err
		}

		item, ok := decodeMapValue(key, value)
		if !ok {
			r.Skipped++
			continue
		}
		r.Items = append(r.Items, item)
	}

	_, err := dec.Token()
	return err
}

func decodeMapValue(key string, value json.RawMessage) (RawEntry, bool) {
	value = bytes.TrimSpace(value)
	if len(value) == 0 {
		return RawEntry{}, false
	}

	switch value[0] {
	case '"':
		var progress string
		if err := json.Unmarshal(value, &progress); err != nil {
			return RawEntry{}, false
		}
		return RawEntry{Date: key, Progress: progress}, true

	case 't', 'f':
		completed := parseLooseBool(value)
		if completed == nil {
			return RawEntry{}, false
		}
		return RawEntry{Date: key, Completed: completed}, true

	case '{':
		var item RawEntry
		if err := json.Unmarshal(value, &item); err != nil {
			return RawEntry{}, false
		}
		if item.Date == "" {
			item.Date = key
		}
		return item, true
	}

	return RawEntry{}, false
}

func (r RawEntries) MarshalJSON() ([]byte, error) {
	if r.Shape != ShapeMap {
		items := r.Items
		if items == nil {
			items = []RawEntry{}
		}
		return json.Marshal(items)
	}

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, item := range r.Items {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(item.Date)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(item)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
