package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/comitanigiacomo/kanso-calendar/internal/core/domain"
)

// memoryState backs every in-memory repository so cascading deletes see one consistent view.
type memoryState struct {
	mu sync.RWMutex

	users       map[string]*domain.User
	calendars   map[string]*domain.Calendar
	habits      map[string]*domain.Habit
	completions map[string]*domain.Completion
}

// MemoryStore groups the in-memory repositories used by STORAGE_DRIVER=memory and the e2e tests.
type MemoryStore struct {
	Users       *InMemoryUserRepository
	Calendars   *InMemoryCalendarRepository
	Habits      *InMemoryHabitRepository
	Completions *InMemoryCompletionRepository
}

func NewMemoryStore() *MemoryStore {
	s := &memoryState{
		users:       make(map[string]*domain.User),
		calendars:   make(map[string]*domain.Calendar),
		habits:      make(map[string]*domain.Habit),
		completions: make(map[string]*domain.Completion),
	}
	return &MemoryStore{
		Users:       &InMemoryUserRepository{s: s},
		Calendars:   &InMemoryCalendarRepository{s: s},
		Habits:      &InMemoryHabitRepository{s: s},
		Completions: &InMemoryCompletionRepository{s: s},
	}
}

func now() time.Time {
	return time.Now().UTC()
}

func cloneHabit(h *domain.Habit) *domain.Habit {
	cp := *h
	if h.Weekdays != nil {
		cp.Weekdays = append([]int(nil), h.Weekdays...)
	}
	return &cp
}

// tombstone marks a row deleted the same way the postgres repositories do.
func tombstone(version *int, updatedAt *time.Time, deletedAt **time.Time, at time.Time) {
	*version++
	*updatedAt = at
	*deletedAt = &at
}

type InMemoryUserRepository struct {
	s *memoryState
}

func (r *InMemoryUserRepository) Create(ctx context.Context, user *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, u := range r.s.users {
		if u.Email == user.Email {
			return domain.ErrEmailAlreadyExists
		}
	}
	cp := *user
	r.s.users[user.ID] = &cp
	return nil
}

func (r *InMemoryUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, u := range r.s.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *InMemoryUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	u, ok := r.s.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

type InMemoryCalendarRepository struct {
	s *memoryState
}

func (r *InMemoryCalendarRepository) Create(ctx context.Context, cal *domain.Calendar) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	cal.Version = 1
	cp := *cal
	r.s.calendars[cal.ID] = &cp
	return nil
}

func (r *InMemoryCalendarRepository) GetByID(ctx context.Context, id string) (*domain.Calendar, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	cal, ok := r.s.calendars[id]
	if !ok || cal.DeletedAt != nil {
		return nil, domain.ErrCalendarNotFound
	}
	cp := *cal
	return &cp, nil
}

func (r *InMemoryCalendarRepository) ListByUserID(ctx context.Context, userID string) ([]*domain.Calendar, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	calendars := []*domain.Calendar{}
	for _, cal := range r.s.calendars {
		if cal.UserID == userID && cal.DeletedAt == nil {
			cp := *cal
			calendars = append(calendars, &cp)
		}
	}

	sort.Slice(calendars, func(i, j int) bool {
		return calendars[i].CreatedAt.Before(calendars[j].CreatedAt)
	})

	return calendars, nil
}

func (r *InMemoryCalendarRepository) Update(ctx context.Context, cal *domain.Calendar) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stored, ok := r.s.calendars[cal.ID]
	if !ok || stored.DeletedAt != nil {
		return domain.ErrCalendarNotFound
	}
	if stored.Version != cal.Version {
		return domain.ErrCalendarConflict
	}

	cal.Version++
	cal.UpdatedAt = now()
	cp := *cal
	r.s.calendars[cal.ID] = &cp
	return nil
}

func (r *InMemoryCalendarRepository) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	cal, ok := r.s.calendars[id]
	if !ok || cal.DeletedAt != nil {
		return domain.ErrCalendarNotFound
	}

	at := now()
	tombstone(&cal.Version, &cal.UpdatedAt, &cal.DeletedAt, at)
	for _, h := range r.s.habits {
		if h.CalendarID == id && h.DeletedAt == nil {
			tombstone(&h.Version, &h.UpdatedAt, &h.DeletedAt, at)
		}
	}
	for _, c := range r.s.completions {
		if c.CalendarID == id && c.DeletedAt == nil {
			tombstone(&c.Version, &c.UpdatedAt, &c.DeletedAt, at)
		}
	}
	return nil
}

type InMemoryHabitRepository struct {
	s *memoryState
}

func (r *InMemoryHabitRepository) Create(ctx context.Context, habit *domain.Habit) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	habit.Version = 1
	r.s.habits[habit.ID] = cloneHabit(habit)
	return nil
}

func (r *InMemoryHabitRepository) GetByID(ctx context.Context, id string) (*domain.Habit, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	habit, ok := r.s.habits[id]
	if !ok || habit.DeletedAt != nil {
		return nil, domain.ErrHabitNotFound
	}
	return cloneHabit(habit), nil
}

func (r *InMemoryHabitRepository) ListByCalendarID(ctx context.Context, calendarID string) ([]*domain.Habit, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	habits := []*domain.Habit{}
	for _, h := range r.s.habits {
		if h.CalendarID == calendarID && h.DeletedAt == nil {
			habits = append(habits, cloneHabit(h))
		}
	}

	sort.Slice(habits, func(i, j int) bool {
		if habits[i].SortOrder != habits[j].SortOrder {
			return habits[i].SortOrder < habits[j].SortOrder
		}
		return habits[i].CreatedAt.Before(habits[j].CreatedAt)
	})

	return habits, nil
}

func (r *InMemoryHabitRepository) Update(ctx context.Context, habit *domain.Habit) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stored, ok := r.s.habits[habit.ID]
	if !ok || stored.DeletedAt != nil {
		return domain.ErrHabitNotFound
	}
	if stored.Version != habit.Version {
		return domain.ErrHabitConflict
	}

	habit.Version++
	habit.UpdatedAt = now()
	r.s.habits[habit.ID] = cloneHabit(habit)
	return nil
}

func (r *InMemoryHabitRepository) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	habit, ok := r.s.habits[id]
	if !ok || habit.DeletedAt != nil {
		return domain.ErrHabitNotFound
	}

	at := now()
	tombstone(&habit.Version, &habit.UpdatedAt, &habit.DeletedAt, at)
	for _, c := range r.s.completions {
		if c.HabitID == id && c.DeletedAt == nil {
			tombstone(&c.Version, &c.UpdatedAt, &c.DeletedAt, at)
		}
	}
	return nil
}

func (r *InMemoryHabitRepository) GetChanges(ctx context.Context, userID string, since time.Time) ([]*domain.Habit, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	habits := []*domain.Habit{}
	for _, h := range r.s.habits {
		if h.UserID == userID && h.UpdatedAt.After(since) {
			habits = append(habits, cloneHabit(h))
		}
	}

	sort.Slice(habits, func(i, j int) bool {
		return habits[i].UpdatedAt.Before(habits[j].UpdatedAt)
	})
	return habits, nil
}

type InMemoryCompletionRepository struct {
	s *memoryState
}

func (r *InMemoryCompletionRepository) Create(ctx context.Context, c *domain.Completion) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, exists := r.s.completions[c.ID]; exists {
		return domain.ErrCompletionConflict
	}
	cp := *c
	r.s.completions[c.ID] = &cp
	return nil
}

func (r *InMemoryCompletionRepository) GetByID(ctx context.Context, id string) (*domain.Completion, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	c, ok := r.s.completions[id]
	if !ok || c.DeletedAt != nil {
		return nil, domain.ErrCompletionNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *InMemoryCompletionRepository) Delete(ctx context.Context, id string, userID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	c, ok := r.s.completions[id]
	if !ok || c.DeletedAt != nil || c.UserID != userID {
		return domain.ErrCompletionNotFound
	}
	tombstone(&c.Version, &c.UpdatedAt, &c.DeletedAt, now())
	return nil
}

func (r *InMemoryCompletionRepository) ListByHabitID(ctx context.Context, habitID string, from, to time.Time) ([]*domain.Completion, error) {
	return r.listRange(from, to, func(c *domain.Completion) bool { return c.HabitID == habitID }), nil
}

func (r *InMemoryCompletionRepository) ListByUserID(ctx context.Context, userID string, from, to time.Time) ([]*domain.Completion, error) {
	return r.listRange(from, to, func(c *domain.Completion) bool { return c.UserID == userID }), nil
}

func (r *InMemoryCompletionRepository) ListByCalendarID(ctx context.Context, calendarID string, from, to time.Time) ([]*domain.Completion, error) {
	return r.listRange(from, to, func(c *domain.Completion) bool { return c.CalendarID == calendarID }), nil
}

func (r *InMemoryCompletionRepository) listRange(from, to time.Time, match func(*domain.Completion) bool) []*domain.Completion {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := []*domain.Completion{}
	for _, c := range r.s.completions {
		if c.DeletedAt != nil || !match(c) {
			continue
		}
		if c.CompletedAt.Before(from) || !c.CompletedAt.Before(to) {
			continue
		}
		cp := *c
		out = append(out, &cp)
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].CompletedAt.Before(out[j].CompletedAt)
	})
	return out
}

func (r *InMemoryCompletionRepository) GetChanges(ctx context.Context, userID string, since time.Time) ([]*domain.Completion, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := []*domain.Completion{}
	for _, c := range r.s.completions {
		if c.UserID == userID && c.UpdatedAt.After(since) {
			cp := *c
			out = append(out, &cp)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].UpdatedAt.Before(out[j].UpdatedAt)
	})
	return out, nil
}
