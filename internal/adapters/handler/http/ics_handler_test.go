package http_test

import (
	"net/http"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	adapterHTTP "github.com/comitanigiacomo/habit-league/internal/adapters/handler/http"
	"github.com/comitanigiacomo/habit-league/internal/adapters/handler/http/middleware"
	"github.com/comitanigiacomo/habit-league/internal/adapters/ics"
	"github.com/comitanigiacomo/habit-league/internal/core/calendar"
	"github.com/comitanigiacomo/habit-league/internal/core/domain"
)

func setupICSRouter(src *faultySource) *gin.Engine {
	gin.SetMode(gin.TestMode)

	factory := func(domain.Session) domain.HabitSource { return src }
	handler := adapterHTTP.NewICSHandler(factory, ics.NewExporter(calendar.NewExpander()), testNow)

	r := gin.New()
	api := r.Group("/api/v1")
	api.Use(middleware.SessionMiddleware())
	handler.RegisterRoutes(api)
	return r
}

func TestICSHandler_Export(t *testing.T) {
	t.Run("Success: current month by default", func(t *testing.T) {
		src := newTestSource()
		seedEntries(t, src, "h2", domain.ProgressCompleted, 4)
		router := setupICSRouter(src)

		w := perform(router, "GET", "/api/v1/calendar.ics", "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Header().Get("Content-Type"), "text/calendar")
		assert.Contains(t, w.Header().Get("Content-Disposition"), "habitleague-2024-03-01.ics")

		body := w.Body.String()
		assert.Contains(t, body, "BEGIN:VCALENDAR")
		assert.Contains(t, body, "UID:h2-2024-03-04@habitleague")
		assert.Contains(t, body, "UID:h3-2024-03-01@habitleague")
		assert.Contains(t, body, "STATUS:CONFIRMED")
		// 31 daily, 4 Mondays, 1 monthly.
		assert.Equal(t, 36, strings.Count(body, "BEGIN:VEVENT"))
	})

	t.Run("Success: explicit range", func(t *testing.T) {
		router := setupICSRouter(newTestSource())

		w := perform(router, "GET", "/api/v1/calendar.ics?start_date=2024-03-11&end_date=2024-03-11", "")
		require.Equal(t, http.StatusOK, w.Code)
		// Daily, Monday weekly, and the clipped monthly date.
		assert.Equal(t, 3, strings.Count(w.Body.String(), "BEGIN:VEVENT"))
	})

	t.Run("Fail: inverted range", func(t *testing.T) {
		router := setupICSRouter(newTestSource())
		w := perform(router, "GET", "/api/v1/calendar.ics?start_date=2024-03-11&end_date=2024-03-01", "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Fail: backend down", func(t *testing.T) {
		src := newTestSource()
		src.fetchErr = domain.ErrUnauthorized
		router := setupICSRouter(src)

		w := perform(router, "GET", "/api/v1/calendar.ics", "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}
