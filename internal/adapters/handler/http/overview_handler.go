package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/comitanigiacomo/kanso-calendar/internal/core/domain"
	"github.com/comitanigiacomo/kanso-calendar/internal/core/services"
	"github.com/comitanigiacomo/kanso-calendar/internal/metrics"
)

type OverviewHandler struct {
	svc        *services.OverviewService
	defaultLoc *time.Location
}

func NewOverviewHandler(svc *services.OverviewService, defaultLoc *time.Location) *OverviewHandler {
	return &OverviewHandler{svc: svc, defaultLoc: defaultLoc}
}

func (h *OverviewHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/overview", h.Yearly)
}

// Yearly godoc
// @Summary  Yearly contribution heat map
// @Tags     overview
// @Security BearerAuth
// @Param    tz          query  string false "IANA time zone"
// @Param    calendar_id query  string false "Only count this calendar"
// @Param    habit_id    query  string false "Only count this habit"
// @Param    lang        query  string false "Locale, overrides Accept-Language"
// @Success  200 {object} domain.Heatmap
// @Failure  400 {object} map[string]string
// @Router   /overview [get]
func (h *OverviewHandler) Yearly(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	loc, ok := requestLocation(c, h.defaultLoc)
	if !ok {
		return
	}

	heatmap, err := h.svc.Yearly(c.Request.Context(), domain.OverviewInput{
		UserID:     userID,
		CalendarID: c.Query("calendar_id"),
		HabitID:    c.Query("habit_id"),
		Location:   loc,
		Locale:     requestLocale(c),
	})
	if err != nil {
		handleError(c, err)
		return
	}

	metrics.OverviewBuilds.Inc()
	c.JSON(http.StatusOK, heatmap)
}
