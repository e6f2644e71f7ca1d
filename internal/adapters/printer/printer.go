// Package printer renders calendar views and stats in the terminal.
package printer

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"

	"github.com/comitanigiacomo/habit-league/internal/core/domain"
	"github.com/comitanigiacomo/habit-league/internal/core/services"
)

type Printer struct {
	Out       io.Writer
	MaxPerDay int
	JSON      bool
}

func New(out io.Writer, maxPerDay int) *Printer {
	if out == nil {
		out = color.Output
	}
	return &Printer{Out: out, MaxPerDay: maxPerDay}
}

var (
	titleStyle    = color.New(color.Bold, color.Underline)
	faintStyle    = color.New(color.Faint)
	todayStyle    = color.New(color.Bold, color.FgHiWhite)
	selectedStyle = color.New(color.Underline, color.Bold)
	errorStyle    = color.New(color.FgRed)
)

func glyph(p domain.Progress) (string, *color.Color) {
	switch p {
	case domain.ProgressCompleted:
		return "✓", color.New(color.FgGreen)
	case domain.ProgressPartial:
		return "◐", color.New(color.FgYellow)
	case domain.ProgressSkipped:
		return "–", color.New(color.Faint)
	default:
		return "○", color.New()
	}
}

// Calendar prints the grid of the view followed by the habits of every day
// in the current period.
func (p *Printer) Calendar(view services.CalendarView) error {
	if p.JSON {
		return p.writeJSON(view)
	}

	nav := view.Navigation
	_, _ = titleStyle.Fprintln(p.Out, title(nav))

	if view.State == services.StateError && view.Error != "" {
		_, _ = errorStyle.Fprintf(p.Out, "could not refresh: %s\n", view.Error)
	}

	if nav.ViewMode != domain.ViewDay {
		p.grid(view.Days)
		_, _ = fmt.Fprintln(p.Out)
	}

	for _, day := range view.Days {
		if !day.InCurrentPeriod {
			continue
		}
		p.dayDetail(day)
	}
	return nil
}

func title(nav domain.NavigationState) string {
	switch nav.ViewMode {
	case domain.ViewDay:
		return nav.SelectedDate.Format("Monday, 2 January 2006")
	case domain.ViewWeek:
		return fmt.Sprintf("Week of %s", nav.VisibleRangeStart.Format("2 Jan 2006"))
	default:
		return nav.SelectedDate.Format("January 2006")
	}
}

func (p *Printer) grid(days []domain.CalendarDay) {
	for i, day := range days {
		if i < 7 {
			_, _ = faintStyle.Fprintf(p.Out, "%-5s", day.Date.Weekday().String()[:2])
			if i == 6 || i == len(days)-1 {
				_, _ = fmt.Fprintln(p.Out)
			}
		}
	}

	for i, day := range days {
		style := color.New()
		switch {
		case day.IsSelected:
			style = selectedStyle
		case day.IsToday:
			style = todayStyle
		case !day.InCurrentPeriod:
			style = faintStyle
		}
		_, _ = style.Fprintf(p.Out, "%2d", day.Date.Day())
		_, _ = fmt.Fprintf(p.Out, "%-3s", rateMark(day))

		if (i+1)%7 == 0 {
			_, _ = fmt.Fprintln(p.Out)
		}
	}
}

func rateMark(day domain.CalendarDay) string {
	switch {
	case day.CompletionRate >= 100:
		return "●"
	case day.CompletionRate > 0:
		return "◐"
	default:
		return ""
	}
}

func (p *Printer) dayDetail(day domain.CalendarDay) {
	marker := "  "
	if day.IsToday {
		marker = "> "
	}

	header := fmt.Sprintf("%s%s  %3d%%", marker, day.Date.Format("Mon 02 Jan"), day.CompletionRate)
	if day.IsSelected {
		_, _ = selectedStyle.Fprintln(p.Out, header)
	} else {
		_, _ = fmt.Fprintln(p.Out, header)
	}

	visible, hidden := day.Visible(p.MaxPerDay)
	for _, h := range visible {
		g, style := glyph(h.Status)
		_, _ = style.Fprintf(p.Out, "    %s ", g)
		name := h.HabitName
		if !h.Due {
			_, _ = faintStyle.Fprintln(p.Out, name)
			continue
		}
		_, _ = fmt.Fprintln(p.Out, name)
	}
	if hidden > 0 {
		_, _ = faintStyle.Fprintf(p.Out, "    +%d more\n", hidden)
	}
}

// Stats prints one row per habit.
func (p *Printer) Stats(stats *domain.RangeStats) error {
	if p.JSON {
		return p.writeJSON(stats)
	}

	_, _ = titleStyle.Fprintf(p.Out, "%s → %s\n", stats.StartDate, stats.EndDate)

	tbl := uitable.New()
	tbl.MaxColWidth = 40
	tbl.AddRow("HABIT", "FREQUENCY", "RATE", "DONE", "TRACKED", "DUE", "STREAK", "BEST", "DAYS")
	for _, h := range stats.HabitStats {
		tbl.AddRow(
			h.HabitName,
			string(h.Frequency),
			fmt.Sprintf("%d%%", h.CompletionRate),
			h.DaysCompleted,
			h.DaysTracked,
			h.DueDays,
			h.CurrentStreak,
			h.LongestStreak,
			strip(h.DailyStatus),
		)
	}
	_, _ = fmt.Fprintln(p.Out, tbl)
	_, _ = fmt.Fprintf(p.Out, "\n%d habits, overall %d%%\n", stats.TotalHabits, stats.OverallRate)
	return nil
}

// Advanced reports the status a habit moved to.
func (p *Printer) Advanced(habitID, date string, status domain.Progress) error {
	if p.JSON {
		return p.writeJSON(map[string]string{"habit_id": habitID, "date": date, "status": string(status)})
	}

	g, style := glyph(status)
	_, _ = style.Fprintf(p.Out, "%s ", g)
	_, err := fmt.Fprintf(p.Out, "%s on %s: %s\n", habitID, date, strings.ReplaceAll(string(status), "_", " "))
	return err
}

// strip renders a daily status list as one glyph per day.
func strip(statuses []string) string {
	var b strings.Builder
	for _, s := range statuses {
		p, _ := domain.ParseProgress(s)
		g, _ := glyph(p)
		b.WriteString(g)
	}
	return b.String()
}

func (p *Printer) writeJSON(v any) error {
	enc := json.NewEncoder(p.Out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// HandleError also reports err on Out as JSON when JSON output is on. The
// error is always returned so the command still exits non-zero.
func (p *Printer) HandleError(err error) error {
	if p.JSON && err != nil {
		_ = p.writeJSON(map[string]string{"error": err.Error()})
	}
	return err
}
