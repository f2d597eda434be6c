package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/comitanigiacomo/kanso-calendar/internal/core/domain"
	"github.com/comitanigiacomo/kanso-calendar/internal/core/services"
)

type CalendarHandler struct {
	svc        *services.CalendarService
	views      *services.CalendarViewService
	defaultLoc *time.Location
}

func NewCalendarHandler(svc *services.CalendarService, views *services.CalendarViewService, defaultLoc *time.Location) *CalendarHandler {
	return &CalendarHandler{
		svc:        svc,
		views:      views,
		defaultLoc: defaultLoc,
	}
}

type createCalendarRequest struct {
	Name  string `json:"name" binding:"required"`
	Color string `json:"color"`
}

type updateCalendarRequest struct {
	Name    string `json:"name"`
	Color   string `json:"color"`
	Version int    `json:"version"`
}

func (h *CalendarHandler) RegisterRoutes(router *gin.RouterGroup) {
	calendars := router.Group("/calendars")
	{
		calendars.POST("", h.Create)
		calendars.GET("", h.List)
		calendars.GET("/:id", h.Get)
		calendars.PUT("/:id", h.Update)
		calendars.DELETE("/:id", h.Delete)
		calendars.GET("/:id/month", h.Month)
	}
}

// Create godoc
// @Summary  Create a calendar
// @Tags     calendars
// @Security BearerAuth
// @Param    body body createCalendarRequest true "Calendar"
// @Success  201 {object} domain.Calendar
// @Router   /calendars [post]
func (h *CalendarHandler) Create(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req createCalendarRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	cal, err := h.svc.Create(c.Request.Context(), services.CreateCalendarInput{
		UserID: userID,
		Name:   req.Name,
		Color:  req.Color,
	})
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, cal)
}

// List godoc
// @Summary  List the caller's calendars
// @Tags     calendars
// @Security BearerAuth
// @Success  200 {array} domain.Calendar
// @Router   /calendars [get]
func (h *CalendarHandler) List(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	list, err := h.svc.List(c.Request.Context(), userID)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, list)
}

func (h *CalendarHandler) Get(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	cal, err := h.svc.Get(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, cal)
}

// Update godoc
// @Summary  Rename or recolor a calendar
// @Tags     calendars
// @Security BearerAuth
// @Param    id   path string                true "Calendar ID"
// @Param    body body updateCalendarRequest true "Changes"
// @Success  200 {object} domain.Calendar
// @Failure  409 {object} map[string]string
// @Router   /calendars/{id} [put]
func (h *CalendarHandler) Update(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req updateCalendarRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	cal, err := h.svc.Update(c.Request.Context(), services.UpdateCalendarInput{
		ID:      c.Param("id"),
		UserID:  userID,
		Name:    req.Name,
		Color:   req.Color,
		Version: req.Version,
	})
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, cal)
}

func (h *CalendarHandler) Delete(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	if err := h.svc.Delete(c.Request.Context(), c.Param("id"), userID); err != nil {
		handleError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// Month godoc
// @Summary  Month grid of a calendar with per-habit stats
// @Tags     calendars
// @Security BearerAuth
// @Param    id    path  string true  "Calendar ID"
// @Param    month query string false "YYYY-MM, defaults to the current month"
// @Param    tz    query string false "IANA time zone"
// @Success  200 {object} domain.MonthView
// @Router   /calendars/{id}/month [get]
func (h *CalendarHandler) Month(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	loc, ok := requestLocation(c, h.defaultLoc)
	if !ok {
		return
	}

	in := domain.MonthInput{
		UserID:     userID,
		CalendarID: c.Param("id"),
		Location:   loc,
		Locale:     requestLocale(c),
	}

	if raw := c.Query("month"); raw != "" {
		m, err := time.Parse("2006-01", raw)
		if err != nil {
			badRequest(c, "invalid month format, expected YYYY-MM", nil)
			return
		}
		in.Year, in.Month = m.Year(), m.Month()
	}

	view, err := h.views.Month(c.Request.Context(), in)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}
