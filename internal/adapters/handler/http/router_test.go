package http_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	adapterHTTP "github.com/comitanigiacomo/habit-league/internal/adapters/handler/http"
	"github.com/comitanigiacomo/habit-league/internal/adapters/ics"
	"github.com/comitanigiacomo/habit-league/internal/core/calendar"
	"github.com/comitanigiacomo/habit-league/internal/core/domain"
	"github.com/comitanigiacomo/habit-league/internal/core/services"
)

func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)

	src := newTestSource()
	factory := func(domain.Session) domain.HabitSource { return src }
	expander := calendar.NewExpander()
	registry := services.NewSessionRegistry(factory, services.NewCalendarService(calendar.NewEngine(time.Sunday), expander), testNow)

	return adapterHTTP.NewRouter(adapterHTTP.RouterDependencies{
		CalendarHandler: adapterHTTP.NewCalendarHandler(registry),
		StatsHandler:    adapterHTTP.NewStatsHandler(factory, expander, testNow),
		ICSHandler:      adapterHTTP.NewICSHandler(factory, ics.NewExporter(expander), testNow),
		Registry:        registry,
		SourceKind:      "memory",
		StartTime:       time.Now(),
	})
}

func TestRouter(t *testing.T) {
	router := newTestRouter()

	t.Run("Success: health without database or redis", func(t *testing.T) {
		req, _ := http.NewRequest("GET", "/health", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)

		var body map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, "ok", body["status"])
		assert.Equal(t, "memory", body["source"])
		assert.NotContains(t, body, "database")
		assert.NotContains(t, body, "redis")
	})

	t.Run("Success: sessions are counted", func(t *testing.T) {
		w := perform(router, "GET", "/api/v1/calendar", "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

		req, _ := http.NewRequest("GET", "/health", nil)
		w = httptest.NewRecorder()
		router.ServeHTTP(w, req)

		var body map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.EqualValues(t, 1, body["sessions"])
	})

	t.Run("Success: CORS preflight", func(t *testing.T) {
		req, _ := http.NewRequest("OPTIONS", "/api/v1/calendar", nil)
		req.Header.Set("Origin", "http://localhost:5173")
		req.Header.Set("Access-Control-Request-Method", "POST")
		req.Header.Set("Access-Control-Request-Headers", "X-User-ID")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("Fail: api requires a session", func(t *testing.T) {
		req, _ := http.NewRequest("GET", "/api/v1/stats/range", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}
