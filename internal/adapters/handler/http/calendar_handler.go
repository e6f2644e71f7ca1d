package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/comitanigiacomo/habit-league/internal/adapters/handler/http/middleware"
	"github.com/comitanigiacomo/habit-league/internal/core/calendar"
	"github.com/comitanigiacomo/habit-league/internal/core/domain"
	"github.com/comitanigiacomo/habit-league/internal/core/services"
)

type CalendarHandler struct {
	registry *services.SessionRegistry
}

func NewCalendarHandler(registry *services.SessionRegistry) *CalendarHandler {
	return &CalendarHandler{registry: registry}
}

type selectDateRequest struct {
	Date string `json:"date" binding:"required" example:"2024-03-15"`
}

type viewModeRequest struct {
	ViewMode string `json:"view_mode" binding:"required" example:"week"`
}

type navigateRequest struct {
	Direction string `json:"direction" binding:"required" example:"next"`
}

type advanceRequest struct {
	Date string `json:"date" binding:"required" example:"2024-03-15"`
}

type dayResponse struct {
	domain.CalendarDay
	HiddenCount int `json:"hidden_count"`
}

type calendarResponse struct {
	Navigation domain.NavigationState `json:"navigation"`
	State      services.LoadState     `json:"state"`
	Error      string                 `json:"error,omitempty"`
	Days       []dayResponse          `json:"days"`
}

type advanceResponse struct {
	HabitID string           `json:"habit_id"`
	Date    string           `json:"date"`
	Status  domain.Progress  `json:"status"`
	View    calendarResponse `json:"view"`
}

func (h *CalendarHandler) RegisterRoutes(router *gin.RouterGroup) {
	cal := router.Group("/calendar")
	{
		cal.GET("", h.Get)
		cal.POST("/select", h.SelectDate)
		cal.POST("/view", h.ChangeViewMode)
		cal.POST("/today", h.GoToToday)
		cal.POST("/navigate", h.Navigate)
		cal.POST("/habits/:id/advance", h.AdvanceHabitStatus)
	}
}

func (h *CalendarHandler) controller(c *gin.Context) (*services.CalendarController, bool) {
	session, ok := middleware.GetSession(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return nil, false
	}
	return h.registry.Get(session), true
}

// Get godoc
// @Summary      Current calendar view
// @Description  Optionally jumps to a date and view mode first. max_per_day only fills hidden_count.
// @Tags         calendar
// @Produce      json
// @Param        date         query  string  false  "Selected date (YYYY-MM-DD)"
// @Param        view         query  string  false  "day, week or month"
// @Param        max_per_day  query  int     false  "Habits shown per day before +N more"
// @Success      200  {object}  calendarResponse
// @Failure      400  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Router       /calendar [get]
func (h *CalendarHandler) Get(c *gin.Context) {
	ctrl, ok := h.controller(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	maxPerDay, err := parseMaxPerDay(c.Query("max_per_day"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var navErr error
	touched := false

	if v := c.Query("view"); v != "" {
		mode, err := domain.ParseViewMode(v)
		if err != nil {
			handleError(c, err)
			return
		}
		navErr = ctrl.ChangeViewMode(ctx, mode)
		touched = true
	}

	if d := c.Query("date"); d != "" {
		date, err := calendar.ParseDateKey(d)
		if err != nil {
			handleError(c, domain.ErrInvalidDate)
			return
		}
		navErr = errors.Join(navErr, ctrl.SelectDate(ctx, date))
		touched = true
	}

	if !touched && ctrl.State() != services.StateReady {
		navErr = ctrl.Refresh(ctx)
	}

	h.respond(c, ctrl, navErr, maxPerDay)
}

// SelectDate godoc
// @Summary  Select a date
// @Tags     calendar
// @Accept   json
// @Produce  json
// @Param    body  body  selectDateRequest  true  "Date to select"
// @Success  200  {object}  calendarResponse
// @Failure  400  {object}  map[string]string
// @Router   /calendar/select [post]
func (h *CalendarHandler) SelectDate(c *gin.Context) {
	var req selectDateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}
	date, err := calendar.ParseDateKey(req.Date)
	if err != nil {
		handleError(c, domain.ErrInvalidDate)
		return
	}

	ctrl, ok := h.controller(c)
	if !ok {
		return
	}
	h.respond(c, ctrl, ctrl.SelectDate(c.Request.Context(), date), 0)
}

// ChangeViewMode godoc
// @Summary      Switch view mode
// @Description  Switching to another mode resets the selection to today.
// @Tags         calendar
// @Accept       json
// @Produce      json
// @Param        body  body  viewModeRequest  true  "day, week or month"
// @Success      200  {object}  calendarResponse
// @Failure      400  {object}  map[string]string
// @Router       /calendar/view [post]
func (h *CalendarHandler) ChangeViewMode(c *gin.Context) {
	var req viewModeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}
	mode, err := domain.ParseViewMode(req.ViewMode)
	if err != nil {
		handleError(c, err)
		return
	}

	ctrl, ok := h.controller(c)
	if !ok {
		return
	}
	h.respond(c, ctrl, ctrl.ChangeViewMode(c.Request.Context(), mode), 0)
}

// GoToToday godoc
// @Summary  Jump to today
// @Tags     calendar
// @Produce  json
// @Success  200  {object}  calendarResponse
// @Router   /calendar/today [post]
func (h *CalendarHandler) GoToToday(c *gin.Context) {
	ctrl, ok := h.controller(c)
	if !ok {
		return
	}
	h.respond(c, ctrl, ctrl.GoToToday(c.Request.Context()), 0)
}

// Navigate godoc
// @Summary  Move one period back or forward
// @Tags     calendar
// @Accept   json
// @Produce  json
// @Param    body  body  navigateRequest  true  "prev or next"
// @Success  200  {object}  calendarResponse
// @Failure  400  {object}  map[string]string
// @Router   /calendar/navigate [post]
func (h *CalendarHandler) Navigate(c *gin.Context) {
	var req navigateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}
	dir, err := domain.ParseDirection(req.Direction)
	if err != nil {
		handleError(c, err)
		return
	}

	ctrl, ok := h.controller(c)
	if !ok {
		return
	}
	h.respond(c, ctrl, ctrl.Navigate(c.Request.Context(), dir), 0)
}

// AdvanceHabitStatus godoc
// @Summary      Advance a habit's status for a day
// @Description  not_started, completed, skipped, partial, then back to not_started. Answers 502 when the backend write fails and 409 when the day's entry has no id.
// @Tags         calendar
// @Accept       json
// @Produce      json
// @Param        id    path  string          true  "Habit ID"
// @Param        body  body  advanceRequest  true  "Day to advance"
// @Success      200  {object}  advanceResponse
// @Failure      400  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Failure      409  {object}  map[string]string
// @Failure      502  {object}  map[string]string
// @Router       /calendar/habits/{id}/advance [post]
func (h *CalendarHandler) AdvanceHabitStatus(c *gin.Context) {
	var req advanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}
	date, err := calendar.ParseDateKey(req.Date)
	if err != nil {
		handleError(c, domain.ErrInvalidDate)
		return
	}

	ctrl, ok := h.controller(c)
	if !ok {
		return
	}

	habitID := c.Param("id")
	next, err := ctrl.AdvanceHabitStatus(c.Request.Context(), habitID, date)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, advanceResponse{
		HabitID: habitID,
		Date:    calendar.DateKey(date),
		Status:  next,
		View:    toResponse(ctrl.View(), 0),
	})
}

// respond renders the controller's view. A failed fetch is not an HTTP
// error: the view carries the error state and the last good data. Bad
// credentials are the exception, since no retry will fix them.
func (h *CalendarHandler) respond(c *gin.Context, ctrl *services.CalendarController, err error, maxPerDay int) {
	switch {
	case errors.Is(err, domain.ErrUnauthorized),
		errors.Is(err, domain.ErrInvalidDate),
		errors.Is(err, domain.ErrInvalidViewMode),
		errors.Is(err, domain.ErrInvalidDirection):
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, toResponse(ctrl.View(), maxPerDay))
}

func toResponse(view services.CalendarView, maxPerDay int) calendarResponse {
	days := make([]dayResponse, 0, len(view.Days))
	for _, d := range view.Days {
		_, hidden := d.Visible(maxPerDay)
		days = append(days, dayResponse{CalendarDay: d, HiddenCount: hidden})
	}

	return calendarResponse{
		Navigation: view.Navigation,
		State:      view.State,
		Error:      view.Error,
		Days:       days,
	}
}

func parseMaxPerDay(v string) (int, error) {
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, errors.New("max_per_day must be a non-negative integer")
	}
	return n, nil
}
