package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/comitanigiacomo/habit-league/internal/adapters/handler/http/middleware"
	"github.com/comitanigiacomo/habit-league/internal/core/calendar"
	"github.com/comitanigiacomo/habit-league/internal/core/domain"
	"github.com/comitanigiacomo/habit-league/internal/core/services"
	"github.com/comitanigiacomo/habit-league/internal/platform/clock"
)

const maxDaysRange = 366

type StatsHandler struct {
	sources  services.SourceFactory
	expander calendar.Expander
	clock    clock.Clock
}

func NewStatsHandler(sources services.SourceFactory, expander calendar.Expander, clk clock.Clock) *StatsHandler {
	return &StatsHandler{sources: sources, expander: expander, clock: clk}
}

func (h *StatsHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/stats/range", h.GetRangeStats)
}

// GetRangeStats godoc
// @Summary      Per-habit statistics over a day range
// @Description  Defaults to the seven days ending today. Ranges are capped at 366 days.
// @Tags         stats
// @Produce      json
// @Param        start_date  query  string  false  "YYYY-MM-DD"
// @Param        end_date    query  string  false  "YYYY-MM-DD"
// @Success      200  {object}  domain.RangeStats
// @Failure      400  {object}  map[string]string
// @Router       /stats/range [get]
func (h *StatsHandler) GetRangeStats(c *gin.Context) {
	session, ok := middleware.GetSession(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	startDate, endDate, ok := h.parseRange(c, 6)
	if !ok {
		return
	}

	svc := services.NewStatsService(h.sources(session), h.expander, h.clock)
	stats, err := svc.GetRangeStats(c.Request.Context(), domain.StatsInput{
		Session:   session,
		StartDate: startDate,
		EndDate:   endDate,
	})
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

// parseRange reads start_date and end_date. A missing end is today and a
// missing start lies defaultSpan days before the end.
func (h *StatsHandler) parseRange(c *gin.Context, defaultSpan int) (time.Time, time.Time, bool) {
	return parseDateRange(c, calendar.Day(h.clock.Now()), func(end time.Time) time.Time {
		return end.AddDate(0, 0, -defaultSpan)
	})
}

func parseDateRange(c *gin.Context, today time.Time, defaultStart func(end time.Time) time.Time) (time.Time, time.Time, bool) {
	var startDate, endDate time.Time
	var err error

	if s := c.Query("end_date"); s == "" {
		endDate = today
	} else if endDate, err = calendar.ParseDateKey(s); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid end_date format, expected YYYY-MM-DD"})
		return time.Time{}, time.Time{}, false
	}

	if s := c.Query("start_date"); s == "" {
		startDate = defaultStart(endDate)
	} else if startDate, err = calendar.ParseDateKey(s); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid start_date format, expected YYYY-MM-DD"})
		return time.Time{}, time.Time{}, false
	}

	if startDate.After(endDate) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "start_date cannot be after end_date"})
		return time.Time{}, time.Time{}, false
	}

	if (calendar.Range{Start: startDate, End: endDate}).Days() > maxDaysRange {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date range too large, max 1 year allowed"})
		return time.Time{}, time.Time{}, false
	}

	return startDate, endDate, true
}
