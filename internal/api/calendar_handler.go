package api

import (
	"net/http"

	"alcyxob/coaching-api/internal/calendar"
	"alcyxob/coaching-api/internal/service"

	"github.com/gin-gonic/gin"
)

// CalendarHandler serves calendar events and the per-role dashboards.
type CalendarHandler struct {
	calendarService  service.CalendarService
	dashboardService service.DashboardService
}

func NewCalendarHandler(calendarService service.CalendarService, dashboardService service.DashboardService) *CalendarHandler {
	return &CalendarHandler{calendarService: calendarService, dashboardService: dashboardService}
}

// GetEvents godoc
// @Summary Calendar events for the caller's plans
// @Description One all-day event per plan and one per dated session.
// @Tags Calendar
// @Produce json
// @Param from query string false "Range start, yyyy-MM-dd"
// @Param to query string false "Range end, yyyy-MM-dd"
// @Success 200 {array} calendar.Event
// @Failure 400 {object} gin.H
// @Router /calendar/events [get]
func (h *CalendarHandler) GetEvents(c *gin.Context) {
	caller, ok := getCaller(c)
	if !ok {
		return
	}
	from, err := parseDate(c.Query("from"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid from: "+err.Error())
		return
	}
	to, err := parseDate(c.Query("to"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid to: "+err.Error())
		return
	}

	events, err := h.calendarService.Events(c.Request.Context(), caller, calendar.Range{From: from, To: to})
	if err != nil {
		respondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, events)
}

// AthleteDashboard godoc
// @Summary Dashboard of the authenticated athlete
// @Tags Dashboard
// @Produce json
// @Success 200 {object} progress.AthleteDashboard
// @Router /dashboard/athlete [get]
func (h *CalendarHandler) AthleteDashboard(c *gin.Context) {
	caller, ok := getCaller(c)
	if !ok {
		return
	}
	dashboard, err := h.dashboardService.Athlete(c.Request.Context(), caller.ID)
	if err != nil {
		respondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dashboard)
}

// CoachDashboard godoc
// @Summary Dashboard of the authenticated coach
// @Tags Dashboard
// @Produce json
// @Success 200 {object} progress.CoachDashboard
// @Router /dashboard/coach [get]
func (h *CalendarHandler) CoachDashboard(c *gin.Context) {
	caller, ok := getCaller(c)
	if !ok {
		return
	}
	dashboard, err := h.dashboardService.Coach(c.Request.Context(), caller.ID)
	if err != nil {
		respondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dashboard)
}
