package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/comitanigiacomo/kanso-calendar/internal/core/domain"
	"github.com/comitanigiacomo/kanso-calendar/internal/core/services"
)

const defaultCompletionRange = 30 * 24 * time.Hour

type CompletionHandler struct {
	svc        *services.CompletionService
	defaultLoc *time.Location
}

func NewCompletionHandler(svc *services.CompletionService, defaultLoc *time.Location) *CompletionHandler {
	return &CompletionHandler{
		svc:        svc,
		defaultLoc: defaultLoc,
	}
}

type toggleRequest struct {
	Date string `json:"date" binding:"required"`
	TZ   string `json:"tz"`
}

type createCompletionRequest struct {
	CompletedAt time.Time `json:"completed_at" binding:"required"`
	Notes       string    `json:"notes"`
}

func (h *CompletionHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/habits/:id/completions/toggle", h.Toggle)
	router.POST("/habits/:id/completions", h.Create)
	router.GET("/habits/:id/completions", h.ListByHabit)

	completions := router.Group("/completions")
	{
		completions.GET("/sync", h.Sync)
		completions.DELETE("/:id", h.Delete)
	}
}

// Toggle godoc
// @Summary  Mark or unmark a habit as done on a local date
// @Tags     completions
// @Security BearerAuth
// @Param    id   path string        true "Habit ID"
// @Param    body body toggleRequest true "Local date and time zone"
// @Success  200 {object} services.ToggleResult
// @Router   /habits/{id}/completions/toggle [post]
func (h *CompletionHandler) Toggle(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req toggleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body", err)
		return
	}

	day, err := domain.ParseDayKey(req.Date)
	if err != nil {
		badRequest(c, "invalid date, expected YYYY-MM-DD", nil)
		return
	}

	loc := h.defaultLoc
	if req.TZ != "" {
		if loc, err = time.LoadLocation(req.TZ); err != nil {
			badRequest(c, "invalid tz, expected an IANA zone name", nil)
			return
		}
	}

	result, err := h.svc.Toggle(c.Request.Context(), services.ToggleInput{
		HabitID:  c.Param("id"),
		UserID:   userID,
		Date:     day,
		Location: loc,
	})
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *CompletionHandler) Create(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req createCompletionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body", err)
		return
	}

	completion, err := h.svc.Create(c.Request.Context(), services.CreateCompletionInput{
		HabitID:     c.Param("id"),
		UserID:      userID,
		CompletedAt: req.CompletedAt,
		Notes:       req.Notes,
	})
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, completion)
}

func (h *CompletionHandler) Delete(c *gin.Context) {
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

// ListByHabit godoc
// @Summary  Completions of a habit in [from, to)
// @Tags     completions
// @Security BearerAuth
// @Param    id   path  string true  "Habit ID"
// @Param    from query string false "RFC3339, defaults to 30 days ago"
// @Param    to   query string false "RFC3339, defaults to now"
// @Success  200 {array} domain.Completion
// @Router   /habits/{id}/completions [get]
func (h *CompletionHandler) ListByHabit(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	to, ok := parseSince(c, "to")
	if !ok {
		return
	}
	if to.IsZero() {
		to = time.Now().UTC()
	}

	from, ok := parseSince(c, "from")
	if !ok {
		return
	}
	if from.IsZero() {
		from = to.Add(-defaultCompletionRange)
	}

	if from.After(to) {
		badRequest(c, "from cannot be after to", nil)
		return
	}

	list, err := h.svc.ListByHabit(c.Request.Context(), c.Param("id"), userID, from, to)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, list)
}

func (h *CompletionHandler) Sync(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	since, ok := parseSince(c, "since")
	if !ok {
		return
	}

	changes, err := h.svc.GetDelta(c.Request.Context(), userID, since)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"changes":   changes,
		"timestamp": time.Now().UTC(),
	})
}
