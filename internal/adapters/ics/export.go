// Package ics renders habit due dates as an iCalendar feed.
package ics

import (
	"fmt"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"

	"github.com/comitanigiacomo/habit-league/internal/core/aggregate"
	"github.com/comitanigiacomo/habit-league/internal/core/calendar"
	"github.com/comitanigiacomo/habit-league/internal/core/domain"
)

const productID = "-//Habit League//Calendar//EN"

type Exporter struct {
	expander calendar.Expander
}

func NewExporter(expander calendar.Expander) *Exporter {
	return &Exporter{expander: expander}
}

// Export emits one all-day event per habit and due date in [start, end].
// Each event carries the day's status from entries, not_started when absent.
// stamp is written as DTSTAMP so the output is reproducible.
func (e *Exporter) Export(habits []*domain.Habit, entries domain.RawEntries, start, end, stamp time.Time) string {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(productID)
	cal.SetXWRCalName("Habit League")

	for _, h := range habits {
		if h == nil {
			continue
		}
		statuses := aggregate.Normalize(h, h.Entries, entries)

		for _, due := range e.expander.DueDates(h, start, end) {
			key := calendar.DateKey(due)
			status := domain.ProgressNotStarted
			if st, ok := statuses[key]; ok {
				status = st.Status
			}

			ev := cal.AddEvent(fmt.Sprintf("%s-%s@habitleague", h.ID, key))
			ev.SetDtStampTime(stamp.UTC())
			ev.SetAllDayStartAt(due)
			ev.SetAllDayEndAt(due.AddDate(0, 0, 1))
			ev.SetSummary(h.Name)
			ev.SetDescription(describe(h, status))
			ev.SetProperty(ical.ComponentPropertyColor, h.ColorHint())
			if h.Category != "" {
				ev.SetProperty(ical.ComponentPropertyCategories, h.Category)
			}
			if status == domain.ProgressCompleted {
				ev.SetProperty(ical.ComponentPropertyStatus, "CONFIRMED")
			}
		}
	}

	return cal.Serialize()
}

func describe(h *domain.Habit, status domain.Progress) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Frequency: %s\nStatus: %s", h.Frequency, strings.ReplaceAll(string(status), "_", " "))
	if h.Description != "" {
		fmt.Fprintf(&b, "\n%s", h.Description)
	}
	return b.String()
}
