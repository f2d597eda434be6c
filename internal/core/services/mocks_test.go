package services_test

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/comitanigiacomo/kanso-calendar/internal/core/domain"
	"github.com/comitanigiacomo/kanso-calendar/internal/core/services"
)

func ptr[T any](v T) *T {
	return &v
}

type MockCalendarRepo struct {
	store         map[string]*domain.Calendar
	simulateError error
}

func NewMockCalendarRepo() *MockCalendarRepo {
	return &MockCalendarRepo{store: make(map[string]*domain.Calendar)}
}

func (m *MockCalendarRepo) Create(ctx context.Context, cal *domain.Calendar) error {
	if m.simulateError != nil {
		return m.simulateError
	}
	clone := *cal
	m.store[cal.ID] = &clone
	return nil
}

func (m *MockCalendarRepo) GetByID(ctx context.Context, id string) (*domain.Calendar, error) {
	if m.simulateError != nil {
		return nil, m.simulateError
	}
	c, ok := m.store[id]
	if !ok || c.DeletedAt != nil {
		return nil, domain.ErrCalendarNotFound
	}
	clone := *c
	return &clone, nil
}

func (m *MockCalendarRepo) ListByUserID(ctx context.Context, userID string) ([]*domain.Calendar, error) {
	list := []*domain.Calendar{}
	for _, c := range m.store {
		if c.UserID == userID && c.DeletedAt == nil {
			clone := *c
			list = append(list, &clone)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].CreatedAt.Before(list[j].CreatedAt) })
	return list, nil
}

func (m *MockCalendarRepo) Update(ctx context.Context, cal *domain.Calendar) error {
	if m.simulateError != nil {
		return m.simulateError
	}
	current, ok := m.store[cal.ID]
	if !ok {
		return domain.ErrCalendarNotFound
	}
	if current.Version != cal.Version {
		return domain.ErrCalendarConflict
	}
	cal.Version++
	clone := *cal
	m.store[cal.ID] = &clone
	return nil
}

func (m *MockCalendarRepo) Delete(ctx context.Context, id string) error {
	c, ok := m.store[id]
	if !ok {
		return domain.ErrCalendarNotFound
	}
	now := time.Now().UTC()
	c.DeletedAt = &now
	return nil
}

type MockHabitRepo struct {
	store         map[string]*domain.Habit
	simulateError error
}

func NewMockHabitRepo() *MockHabitRepo {
	return &MockHabitRepo{store: make(map[string]*domain.Habit)}
}

func (m *MockHabitRepo) Create(ctx context.Context, habit *domain.Habit) error {
	if m.simulateError != nil {
		return m.simulateError
	}
	clone := *habit
	m.store[habit.ID] = &clone
	return nil
}

func (m *MockHabitRepo) GetByID(ctx context.Context, id string) (*domain.Habit, error) {
	if m.simulateError != nil {
		return nil, m.simulateError
	}
	h, ok := m.store[id]
	if !ok || h.DeletedAt != nil {
		return nil, domain.ErrHabitNotFound
	}
	clone := *h
	return &clone, nil
}

func (m *MockHabitRepo) ListByCalendarID(ctx context.Context, calendarID string) ([]*domain.Habit, error) {
	if m.simulateError != nil {
		return nil, m.simulateError
	}
	list := []*domain.Habit{}
	for _, h := range m.store {
		if h.CalendarID == calendarID && h.DeletedAt == nil {
			clone := *h
			list = append(list, &clone)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].SortOrder < list[j].SortOrder })
	return list, nil
}

func (m *MockHabitRepo) Update(ctx context.Context, habit *domain.Habit) error {
	if m.simulateError != nil {
		return m.simulateError
	}
	current, ok := m.store[habit.ID]
	if !ok {
		return domain.ErrHabitNotFound
	}
	if current.Version != habit.Version {
		return domain.ErrHabitConflict
	}
	habit.Version++
	clone := *habit
	m.store[habit.ID] = &clone
	return nil
}

func (m *MockHabitRepo) Delete(ctx context.Context, id string) error {
	h, ok := m.store[id]
	if !ok {
		return domain.ErrHabitNotFound
	}
	now := time.Now().UTC()
	h.DeletedAt = &now
	h.Version++
	return nil
}

func (m *MockHabitRepo) GetChanges(ctx context.Context, userID string, since time.Time) ([]*domain.Habit, error) {
	list := []*domain.Habit{}
	for _, h := range m.store {
		if h.UserID == userID && h.UpdatedAt.After(since) {
			clone := *h
			list = append(list, &clone)
		}
	}
	return list, nil
}

type MockCompletionRepo struct {
	store         map[string]*domain.Completion
	simulateError error
	listCalls     int
}

func NewMockCompletionRepo() *MockCompletionRepo {
	return &MockCompletionRepo{store: make(map[string]*domain.Completion)}
}

func (m *MockCompletionRepo) Create(ctx context.Context, c *domain.Completion) error {
	if m.simulateError != nil {
		return m.simulateError
	}
	clone := *c
	m.store[c.ID] = &clone
	return nil
}

func (m *MockCompletionRepo) GetByID(ctx context.Context, id string) (*domain.Completion, error) {
	c, ok := m.store[id]
	if !ok || c.DeletedAt != nil {
		return nil, domain.ErrCompletionNotFound
	}
	clone := *c
	return &clone, nil
}

func (m *MockCompletionRepo) Delete(ctx context.Context, id string, userID string) error {
	c, ok := m.store[id]
	if !ok || c.UserID != userID || c.DeletedAt != nil {
		return domain.ErrCompletionNotFound
	}
	now := time.Now().UTC()
	c.DeletedAt = &now
	return nil
}

func (m *MockCompletionRepo) list(match func(*domain.Completion) bool, from, to time.Time) ([]*domain.Completion, error) {
	m.listCalls++
	if m.simulateError != nil {
		return nil, m.simulateError
	}
	out := []*domain.Completion{}
	for _, c := range m.store {
		if c.DeletedAt != nil || !match(c) {
			continue
		}
		if c.CompletedAt.Before(from) || !c.CompletedAt.Before(to) {
			continue
		}
		clone := *c
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CompletedAt.Before(out[j].CompletedAt) })
	return out, nil
}

func (m *MockCompletionRepo) ListByHabitID(ctx context.Context, habitID string, from, to time.Time) ([]*domain.Completion, error) {
	return m.list(func(c *domain.Completion) bool { return c.HabitID == habitID }, from, to)
}

func (m *MockCompletionRepo) ListByUserID(ctx context.Context, userID string, from, to time.Time) ([]*domain.Completion, error) {
	return m.list(func(c *domain.Completion) bool { return c.UserID == userID }, from, to)
}

func (m *MockCompletionRepo) ListByCalendarID(ctx context.Context, calendarID string, from, to time.Time) ([]*domain.Completion, error) {
	return m.list(func(c *domain.Completion) bool { return c.CalendarID == calendarID }, from, to)
}

func (m *MockCompletionRepo) GetChanges(ctx context.Context, userID string, since time.Time) ([]*domain.Completion, error) {
	out := []*domain.Completion{}
	for _, c := range m.store {
		if c.UserID == userID && c.UpdatedAt.After(since) {
			clone := *c
			out = append(out, &clone)
		}
	}
	return out, nil
}

// put stores a completion at an explicit instant, bypassing the services.
func (m *MockCompletionRepo) put(habit *domain.Habit, at time.Time) *domain.Completion {
	c, err := domain.NewCompletion(habit, at, "")
	if err != nil {
		panic(err)
	}
	m.store[c.ID] = c
	return c
}

type recordingNotifier struct {
	mu    sync.Mutex
	users []string
}

func (n *recordingNotifier) CompletionsChanged(ctx context.Context, userID string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.users = append(n.users, userID)
}

func (n *recordingNotifier) calls() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.users...)
}

type fakeCountCache struct {
	entries     map[services.CountKey]domain.CompletionCount
	gens        map[string]int64
	invalidated []string
	gets        int
}

func newFakeCountCache() *fakeCountCache {
	return &fakeCountCache{
		entries: make(map[services.CountKey]domain.CompletionCount),
		gens:    make(map[string]int64),
	}
}

func (f *fakeCountCache) Generation(ctx context.Context, userID string) int64 {
	return f.gens[userID]
}

func (f *fakeCountCache) Get(ctx context.Context, key services.CountKey) (domain.CompletionCount, bool) {
	f.gets++
	c, ok := f.entries[key]
	return c, ok
}

func (f *fakeCountCache) Set(ctx context.Context, key services.CountKey, counts domain.CompletionCount) {
	f.entries[key] = counts
}

func (f *fakeCountCache) Invalidate(ctx context.Context, userID string) {
	f.invalidated = append(f.invalidated, userID)
	f.gens[userID]++
	for k := range f.entries {
		if k.UserID == userID {
			delete(f.entries, k)
		}
	}
}

type recordingWarmer struct {
	users []string
}

func (w *recordingWarmer) Enqueue(userID string) {
	w.users = append(w.users, userID)
}
