package services

import (
	"context"
	"time"

	"github.com/comitanigiacomo/kanso-calendar/internal/core/domain"
)

// toggledHour is the local hour at which a toggled day is recorded.
const toggledHour = 12

type CompletionService struct {
	repo     domain.CompletionRepository
	habits   domain.HabitRepository
	notifier ChangeNotifier
	now      func() time.Time
}

func NewCompletionService(repo domain.CompletionRepository, habits domain.HabitRepository, notifier ChangeNotifier) *CompletionService {
	return &CompletionService{
		repo:     repo,
		habits:   habits,
		notifier: orNoop(notifier),
		now:      time.Now,
	}
}

// WithClock replaces the wall clock, mainly for tests.
func (s *CompletionService) WithClock(now func() time.Time) *CompletionService {
	s.now = now
	return s
}

type ToggleInput struct {
	HabitID  string
	UserID   string
	Date     domain.DayKey
	Location *time.Location
}

type ToggleResult struct {
	Completed  bool               `json:"completed"`
	Completion *domain.Completion `json:"completion,omitempty"`
}

type CreateCompletionInput struct {
	HabitID     string
	UserID      string
	CompletedAt time.Time
	Notes       string
}

func (s *CompletionService) ownedHabit(ctx context.Context, habitID, userID string) (*domain.Habit, error) {
	habit, err := s.habits.GetByID(ctx, habitID)
	if err != nil {
		return nil, err
	}
	if habit.UserID != userID {
		return nil, domain.ErrUnauthorized
	}
	return habit, nil
}

// Toggle flips the done state of a habit on a local date.
func (s *CompletionService) Toggle(ctx context.Context, input ToggleInput) (*ToggleResult, error) {
	habit, err := s.ownedHabit(ctx, input.HabitID, input.UserID)
	if err != nil {
		return nil, err
	}
	if habit.ArchivedAt != nil {
		return nil, domain.ErrHabitArchived
	}

	if input.Date > domain.DayKeyOf(s.now(), input.Location) {
		return nil, domain.ErrFutureCompletion
	}

	from, to := input.Date.Span(input.Location)
	existing, err := s.repo.ListByHabitID(ctx, habit.ID, from, to)
	if err != nil {
		return nil, err
	}

	if len(existing) > 0 {
		for _, c := range existing {
			if err := s.repo.Delete(ctx, c.ID, input.UserID); err != nil {
				return nil, err
			}
		}
		s.notifier.CompletionsChanged(ctx, input.UserID)
		return &ToggleResult{Completed: false}, nil
	}

	c, err := domain.NewCompletion(habit, input.Date.At(toggledHour, input.Location), "")
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}

	s.notifier.CompletionsChanged(ctx, input.UserID)
	return &ToggleResult{Completed: true, Completion: c}, nil
}

func (s *CompletionService) Create(ctx context.Context, input CreateCompletionInput) (*domain.Completion, error) {
	habit, err := s.ownedHabit(ctx, input.HabitID, input.UserID)
	if err != nil {
		return nil, err
	}
	if habit.ArchivedAt != nil {
		return nil, domain.ErrHabitArchived
	}
	if input.CompletedAt.After(s.now()) {
		return nil, domain.ErrFutureCompletion
	}

	c, err := domain.NewCompletion(habit, input.CompletedAt, input.Notes)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}

	s.notifier.CompletionsChanged(ctx, input.UserID)
	return c, nil
}

func (s *CompletionService) Delete(ctx context.Context, id, userID string) error {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if c.UserID != userID {
		return domain.ErrUnauthorized
	}

	if err := s.repo.Delete(ctx, id, userID); err != nil {
		return err
	}

	s.notifier.CompletionsChanged(ctx, userID)
	return nil
}

func (s *CompletionService) ListByHabit(ctx context.Context, habitID, userID string, from, to time.Time) ([]*domain.Completion, error) {
	if _, err := s.ownedHabit(ctx, habitID, userID); err != nil {
		return nil, err
	}
	return s.repo.ListByHabitID(ctx, habitID, from, to)
}

func (s *CompletionService) GetDelta(ctx context.Context, userID string, since time.Time) ([]*domain.Completion, error) {
	return s.repo.GetChanges(ctx, userID, since)
}
