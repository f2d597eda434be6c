package http_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	adapterHTTP "github.com/comitanigiacomo/kanso-calendar/internal/adapters/handler/http"
	"github.com/comitanigiacomo/kanso-calendar/internal/adapters/handler/http/middleware"
	"github.com/comitanigiacomo/kanso-calendar/internal/adapters/repository"
	"github.com/comitanigiacomo/kanso-calendar/internal/core/services"
	"github.com/comitanigiacomo/kanso-calendar/internal/i18n"
)

const (
	testUser   = "user-1"
	otherUser  = "user-2"
	userHeader = "X-Test-User"
)

// fixedNow is a Friday; the yearly window runs 2023-03-15..2024-03-15.
var fixedNow = time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)

type testEnv struct {
	router *gin.Engine
	store  *repository.MemoryStore
}

// newTestEnv wires every handler over the in-memory store. The caller is testUser
// unless the request carries X-Test-User.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := repository.NewMemoryStore()
	catalog := i18n.MustLoad(i18n.DefaultLocale)
	clock := func() time.Time { return fixedNow }

	tokens := services.NewTokenService("handler-test-secret-key", "kanso-test", time.Hour, store.Users)
	calendars := services.NewCalendarService(store.Calendars, nil)
	habits := services.NewHabitService(store.Habits, store.Calendars, nil)
	completions := services.NewCompletionService(store.Completions, store.Habits, nil).WithClock(clock)
	overview := services.NewOverviewService(store.Completions, nil, catalog).WithClock(clock)
	views := services.NewCalendarViewService(store.Calendars, store.Habits, store.Completions, catalog).WithClock(clock)

	r := gin.New()
	api := r.Group("/api/v1")
	adapterHTTP.NewAuthHandler(services.NewAuthService(store.Users, tokens), tokens.TTL()).RegisterRoutes(api)

	protected := api.Group("")
	protected.Use(func(c *gin.Context) {
		userID := c.GetHeader(userHeader)
		if userID == "" {
			userID = testUser
		}
		c.Set(middleware.ContextUserIDKey, userID)
		c.Next()
	})
	adapterHTTP.NewCalendarHandler(calendars, views, time.UTC).RegisterRoutes(protected)
	adapterHTTP.NewHabitHandler(habits).RegisterRoutes(protected)
	adapterHTTP.NewCompletionHandler(completions, time.UTC).RegisterRoutes(protected)
	adapterHTTP.NewOverviewHandler(overview, time.UTC).RegisterRoutes(protected)

	return &testEnv{router: r, store: store}
}

func (e *testEnv) do(t *testing.T, method, path string, body any, headers ...string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else {
			require.NoError(t, json.NewEncoder(&buf).Encode(body))
		}
	}

	req, err := http.NewRequest(method, path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

type syncResponse[T any] struct {
	Changes   []T       `json:"changes"`
	Timestamp time.Time `json:"timestamp"`
}

func (e *testEnv) createCalendar(t *testing.T, name string) string {
	t.Helper()
	w := e.do(t, http.MethodPost, "/api/v1/calendars", map[string]string{"name": name})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode[map[string]any](t, w)["id"].(string)
}

func (e *testEnv) createHabit(t *testing.T, calendarID, name string, weekdays ...int) string {
	t.Helper()
	w := e.do(t, http.MethodPost, "/api/v1/calendars/"+calendarID+"/habits", map[string]any{
		"name":     name,
		"weekdays": weekdays,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode[map[string]any](t, w)["id"].(string)
}

func (e *testEnv) toggle(t *testing.T, habitID, date, tz string) *httptest.ResponseRecorder {
	t.Helper()
	return e.do(t, http.MethodPost, "/api/v1/habits/"+habitID+"/completions/toggle", map[string]string{
		"date": date,
		"tz":   tz,
	})
}
