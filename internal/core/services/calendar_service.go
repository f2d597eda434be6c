package services

import (
	"context"
	"fmt"

	"github.com/comitanigiacomo/kanso-calendar/internal/core/domain"
)

// ChangeNotifier is told, before the write returns, that the completions
// visible to a user may have changed.
type ChangeNotifier interface {
	CompletionsChanged(ctx context.Context, userID string)
}

type noopNotifier struct{}

func (noopNotifier) CompletionsChanged(context.Context, string) {}

func orNoop(n ChangeNotifier) ChangeNotifier {
	if n == nil {
		return noopNotifier{}
	}
	return n
}

type CalendarService struct {
	repo     domain.CalendarRepository
	notifier ChangeNotifier
}

func NewCalendarService(repo domain.CalendarRepository, notifier ChangeNotifier) *CalendarService {
	return &CalendarService{
		repo:     repo,
		notifier: orNoop(notifier),
	}
}

type CreateCalendarInput struct {
	UserID string
	Name   string
	Color  string
}

type UpdateCalendarInput struct {
	ID      string
	UserID  string
	Name    string
	Color   string
	Version int
}

func mergeString(newVal, oldVal string) string {
	if newVal == "" {
		return oldVal
	}
	return newVal
}

func (s *CalendarService) Create(ctx context.Context, input CreateCalendarInput) (*domain.Calendar, error) {
	cal, err := domain.NewCalendar(input.UserID, input.Name, input.Color)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, cal); err != nil {
		return nil, err
	}
	return cal, nil
}

func (s *CalendarService) List(ctx context.Context, userID string) ([]*domain.Calendar, error) {
	return s.repo.ListByUserID(ctx, userID)
}

// Get hides calendars owned by someone else behind ErrCalendarNotFound.
func (s *CalendarService) Get(ctx context.Context, id, userID string) (*domain.Calendar, error) {
	cal, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if cal.UserID != userID {
		return nil, domain.ErrCalendarNotFound
	}
	return cal, nil
}

func (s *CalendarService) Update(ctx context.Context, input UpdateCalendarInput) (*domain.Calendar, error) {
	cal, err := s.Get(ctx, input.ID, input.UserID)
	if err != nil {
		return nil, err
	}

	if input.Version > 0 && cal.Version != input.Version {
		return nil, fmt.Errorf("%w: client v%d vs server v%d", domain.ErrCalendarConflict, input.Version, cal.Version)
	}

	if err := cal.Update(mergeString(input.Name, cal.Name), mergeString(input.Color, cal.Color)); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, cal); err != nil {
		return nil, err
	}
	return cal, nil
}

func (s *CalendarService) Delete(ctx context.Context, id, userID string) error {
	if _, err := s.Get(ctx, id, userID); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.notifier.CompletionsChanged(ctx, userID)
	return nil
}
