package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/comitanigiacomo/kanso-calendar/internal/adapters/handler/http/middleware"
	"github.com/comitanigiacomo/kanso-calendar/internal/core/domain"
)

var validationErrors = []error{
	domain.ErrInvalidEmail,
	domain.ErrPasswordTooShort,
	domain.ErrInvalidUserID,
	domain.ErrCalendarNameEmpty,
	domain.ErrCalendarNameTooLong,
	domain.ErrInvalidColor,
	domain.ErrHabitNameEmpty,
	domain.ErrHabitNameTooLong,
	domain.ErrHabitDescTooLong,
	domain.ErrInvalidWeekdays,
	domain.ErrInvalidSortOrder,
	domain.ErrHabitArchived,
	domain.ErrInvalidCalendarID,
	domain.ErrInvalidCompletion,
	domain.ErrFutureCompletion,
	domain.ErrNotesTooLong,
}

func isValidation(err error) bool {
	for _, target := range validationErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})

	case errors.Is(err, domain.ErrUnauthorized):
		c.JSON(http.StatusForbidden, gin.H{"error": "unauthorized access"})

	case errors.Is(err, domain.ErrUserNotFound),
		errors.Is(err, domain.ErrCalendarNotFound),
		errors.Is(err, domain.ErrHabitNotFound),
		errors.Is(err, domain.ErrCompletionNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})

	case errors.Is(err, domain.ErrEmailAlreadyExists):
		c.JSON(http.StatusConflict, gin.H{"error": "email already exists"})

	case errors.Is(err, domain.ErrCalendarConflict),
		errors.Is(err, domain.ErrHabitConflict),
		errors.Is(err, domain.ErrCompletionConflict):
		c.JSON(http.StatusConflict, gin.H{
			"error":   "version conflict",
			"message": "data has been modified elsewhere, please sync",
		})

	case isValidation(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

func badRequest(c *gin.Context, msg string, err error) {
	body := gin.H{"error": msg}
	if err != nil {
		body["details"] = err.Error()
	}
	c.JSON(http.StatusBadRequest, body)
}

func currentUser(c *gin.Context) (string, bool) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "user context missing"})
	}
	return userID, ok
}

// requestLocation resolves the tz query parameter, falling back to the server default.
func requestLocation(c *gin.Context, fallback *time.Location) (*time.Location, bool) {
	tz := c.Query("tz")
	if tz == "" {
		if fallback == nil {
			fallback = time.UTC
		}
		return fallback, true
	}

	loc, err := time.LoadLocation(tz)
	if err != nil {
		badRequest(c, "invalid tz, expected an IANA zone name", nil)
		return nil, false
	}
	return loc, true
}

// requestLocale prefers an explicit lang query over Accept-Language.
func requestLocale(c *gin.Context) string {
	if lang := c.Query("lang"); lang != "" {
		return lang
	}
	return c.GetHeader("Accept-Language")
}

// parseSince reads an optional RFC3339 query parameter.
func parseSince(c *gin.Context, name string) (time.Time, bool) {
	raw := c.Query(name)
	if raw == "" {
		return time.Time{}, true
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		badRequest(c, "invalid "+name+" format, use RFC3339", nil)
		return time.Time{}, false
	}
	return t, true
}
