package http

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/comitanigiacomo/habit-league/internal/adapters/handler/http/middleware"
	"github.com/comitanigiacomo/habit-league/internal/adapters/ics"
	"github.com/comitanigiacomo/habit-league/internal/core/calendar"
	"github.com/comitanigiacomo/habit-league/internal/core/domain"
	"github.com/comitanigiacomo/habit-league/internal/core/services"
	"github.com/comitanigiacomo/habit-league/internal/platform/clock"
)

type ICSHandler struct {
	sources  services.SourceFactory
	exporter *ics.Exporter
	clock    clock.Clock
}

func NewICSHandler(sources services.SourceFactory, exporter *ics.Exporter, clk clock.Clock) *ICSHandler {
	return &ICSHandler{sources: sources, exporter: exporter, clock: clk}
}

func (h *ICSHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/calendar.ics", h.Export)
}

// Export godoc
// @Summary      Due dates as an iCalendar feed
// @Description  Defaults to the current month.
// @Tags         calendar
// @Produce      text/calendar
// @Param        start_date  query  string  false  "YYYY-MM-DD"
// @Param        end_date    query  string  false  "YYYY-MM-DD"
// @Success      200  {string}  string
// @Failure      400  {object}  map[string]string
// @Router       /calendar.ics [get]
func (h *ICSHandler) Export(c *gin.Context) {
	session, ok := middleware.GetSession(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	now := h.clock.Now()
	today := calendar.Day(now)
	startDate, endDate, ok := parseDateRange(c, today.AddDate(0, 1, -today.Day()), func(end time.Time) time.Time {
		return calendar.FirstOfMonth(end)
	})
	if !ok {
		return
	}

	ctx := c.Request.Context()
	source := h.sources(session)

	habits, err := source.FetchHabits(ctx, session.UserID)
	if err != nil {
		handleError(c, err)
		return
	}
	entries, err := source.FetchHabitEntries(ctx, domain.EntryQuery{UserID: session.UserID, StartDate: startDate, EndDate: endDate})
	if err != nil {
		handleError(c, err)
		return
	}

	body := h.exporter.Export(habits, entries, startDate, endDate, now)

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="habitleague-%s.ics"`, calendar.DateKey(startDate)))
	c.Data(http.StatusOK, "text/calendar; charset=utf-8", []byte(body))
}
