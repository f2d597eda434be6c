package services

import (
	"context"
	"fmt"
	"time"

	"github.com/comitanigiacomo/kanso-calendar/internal/core/domain"
)

type HabitService struct {
	repo      domain.HabitRepository
	calendars domain.CalendarRepository
	notifier  ChangeNotifier
}

func NewHabitService(repo domain.HabitRepository, calendars domain.CalendarRepository, notifier ChangeNotifier) *HabitService {
	return &HabitService{
		repo:      repo,
		calendars: calendars,
		notifier:  orNoop(notifier),
	}
}

type CreateHabitInput struct {
	UserID      string
	CalendarID  string
	Name        string
	Description string
	Color       string
	Icon        string
	Weekdays    []int
}

type UpdateHabitInput struct {
	ID          string
	UserID      string
	Name        string
	Description string
	Color       string
	Icon        string
	Weekdays    []int
	SortOrder   *int
	Version     int
}

func (s *HabitService) ownedCalendar(ctx context.Context, calendarID, userID string) (*domain.Calendar, error) {
	cal, err := s.calendars.GetByID(ctx, calendarID)
	if err != nil {
		return nil, err
	}
	if cal.UserID != userID {
		return nil, domain.ErrCalendarNotFound
	}
	return cal, nil
}

func (s *HabitService) Create(ctx context.Context, input CreateHabitInput) (*domain.Habit, error) {
	if _, err := s.ownedCalendar(ctx, input.CalendarID, input.UserID); err != nil {
		return nil, err
	}

	habit, err := domain.NewHabit(input.UserID, input.CalendarID, domain.HabitFields{
		Name:        input.Name,
		Description: input.Description,
		Color:       input.Color,
		Icon:        input.Icon,
		Weekdays:    input.Weekdays,
	})
	if err != nil {
		return nil, err
	}

	existing, err := s.repo.ListByCalendarID(ctx, input.CalendarID)
	if err != nil {
		return nil, err
	}
	habit.SortOrder = len(existing)

	if err := s.repo.Create(ctx, habit); err != nil {
		return nil, err
	}
	return habit, nil
}

func (s *HabitService) ListByCalendar(ctx context.Context, calendarID, userID string) ([]*domain.Habit, error) {
	if _, err := s.ownedCalendar(ctx, calendarID, userID); err != nil {
		return nil, err
	}
	return s.repo.ListByCalendarID(ctx, calendarID)
}

// Get hides habits owned by someone else behind ErrHabitNotFound.
func (s *HabitService) Get(ctx context.Context, id, userID string) (*domain.Habit, error) {
	habit, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if habit.UserID != userID {
		return nil, domain.ErrHabitNotFound
	}
	return habit, nil
}

func (s *HabitService) Update(ctx context.Context, input UpdateHabitInput) (*domain.Habit, error) {
	habit, err := s.Get(ctx, input.ID, input.UserID)
	if err != nil {
		return nil, err
	}

	if input.Version > 0 && habit.Version != input.Version {
		return nil, fmt.Errorf("%w: client v%d vs server v%d", domain.ErrHabitConflict, input.Version, habit.Version)
	}

	fields := habit.Fields()
	fields.Name = mergeString(input.Name, fields.Name)
	fields.Description = mergeString(input.Description, fields.Description)
	fields.Color = mergeString(input.Color, fields.Color)
	fields.Icon = mergeString(input.Icon, fields.Icon)
	if input.Weekdays != nil {
		fields.Weekdays = input.Weekdays
	}

	if err := habit.Update(fields); err != nil {
		return nil, err
	}

	if input.SortOrder != nil {
		if err := habit.ChangePosition(*input.SortOrder); err != nil {
			return nil, err
		}
	}

	if err := s.repo.Update(ctx, habit); err != nil {
		return nil, err
	}
	return habit, nil
}

func (s *HabitService) SetArchived(ctx context.Context, id, userID string, archived bool) (*domain.Habit, error) {
	habit, err := s.Get(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	if archived {
		habit.Archive()
	} else {
		habit.Restore()
	}

	if err := s.repo.Update(ctx, habit); err != nil {
		return nil, err
	}
	return habit, nil
}

func (s *HabitService) Delete(ctx context.Context, id, userID string) error {
	if _, err := s.Get(ctx, id, userID); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.notifier.CompletionsChanged(ctx, userID)
	return nil
}

func (s *HabitService) GetDelta(ctx context.Context, userID string, lastSync time.Time) ([]*domain.Habit, error) {
	return s.repo.GetChanges(ctx, userID, lastSync)
}
