package domain

import (
	"context"
	"errors"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

var (
	ErrHabitNotFound     = errors.New("habit not found")
	ErrHabitConflict     = errors.New("habit version conflict")
	ErrHabitNameEmpty    = errors.New("habit name cannot be empty")
	ErrHabitNameTooLong  = errors.New("habit name is too long (max 100 chars)")
	ErrHabitDescTooLong  = errors.New("habit description is too long (max 500 chars)")
	ErrInvalidWeekdays   = errors.New("invalid weekdays (must be 0-6)")
	ErrInvalidSortOrder  = errors.New("sort order cannot be negative")
	ErrHabitArchived     = errors.New("cannot update an archived habit")
	ErrInvalidCalendarID = errors.New("invalid calendar id")
)

const (
	DefaultIcon     = "default_icon"
	MaxHabitName    = 100
	MaxHabitDesc    = 500
	weekdaySunday   = 0
	weekdaySaturday = 6
)

type Habit struct {
	ID          string     `json:"id" db:"id"`
	CalendarID  string     `json:"calendar_id" db:"calendar_id"`
	UserID      string     `json:"user_id" db:"user_id"`
	Name        string     `json:"name" db:"name"`
	Description string     `json:"description,omitempty" db:"description"`
	Color       string     `json:"color" db:"color"`
	Icon        string     `json:"icon" db:"icon"`
	SortOrder   int        `json:"sort_order" db:"sort_order"`
	Weekdays    []int      `json:"weekdays,omitempty" db:"-"`
	Version     int        `json:"version" db:"version"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
	ArchivedAt  *time.Time `json:"archived_at,omitempty" db:"archived_at"`
	DeletedAt   *time.Time `json:"deleted_at,omitempty" db:"deleted_at"`
}

type HabitRepository interface {
	Create(ctx context.Context, habit *Habit) error
	GetByID(ctx context.Context, id string) (*Habit, error)
	ListByCalendarID(ctx context.Context, calendarID string) ([]*Habit, error)

	// Update must reject stale versions with ErrHabitConflict.
	Update(ctx context.Context, habit *Habit) error

	// Delete soft-deletes the habit and its completions.
	Delete(ctx context.Context, id string) error

	// GetChanges returns habits touched after since, deletions included.
	GetChanges(ctx context.Context, userID string, since time.Time) ([]*Habit, error)
}

// HabitFields carries the user-editable attributes of a habit.
type HabitFields struct {
	Name        string
	Description string
	Color       string
	Icon        string
	Weekdays    []int
}

func normalizeWeekdays(days []int) []int {
	if len(days) == 0 {
		return nil
	}
	out := slices.Clone(days)
	slices.Sort(out)
	return slices.Compact(out)
}

func (f HabitFields) validate() (HabitFields, error) {
	f.Name = strings.TrimSpace(f.Name)
	f.Description = strings.TrimSpace(f.Description)

	if f.Name == "" {
		return f, ErrHabitNameEmpty
	}
	if utf8.RuneCountInString(f.Name) > MaxHabitName {
		return f, ErrHabitNameTooLong
	}
	if utf8.RuneCountInString(f.Description) > MaxHabitDesc {
		return f, ErrHabitDescTooLong
	}
	if f.Color != "" && !colorRegex.MatchString(f.Color) {
		return f, ErrInvalidColor
	}
	for _, d := range f.Weekdays {
		if d < weekdaySunday || d > weekdaySaturday {
			return f, ErrInvalidWeekdays
		}
	}

	if f.Icon == "" {
		f.Icon = DefaultIcon
	}
	f.Weekdays = normalizeWeekdays(f.Weekdays)
	return f, nil
}

func NewHabit(userID, calendarID string, fields HabitFields) (*Habit, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrInvalidUserID
	}
	if strings.TrimSpace(calendarID) == "" {
		return nil, ErrInvalidCalendarID
	}

	clean, err := fields.validate()
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	return &Habit{
		ID:          uuid.NewString(),
		CalendarID:  calendarID,
		UserID:      userID,
		Name:        clean.Name,
		Description: clean.Description,
		Color:       clean.Color,
		Icon:        clean.Icon,
		Weekdays:    clean.Weekdays,
		Version:     1,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// Fields returns the current editable attributes, useful as a merge base.
func (h *Habit) Fields() HabitFields {
	return HabitFields{
		Name:        h.Name,
		Description: h.Description,
		Color:       h.Color,
		Icon:        h.Icon,
		Weekdays:    h.Weekdays,
	}
}

func (h *Habit) Update(fields HabitFields) error {
	if h.ArchivedAt != nil {
		return ErrHabitArchived
	}

	clean, err := fields.validate()
	if err != nil {
		return err
	}

	h.Name = clean.Name
	h.Description = clean.Description
	h.Color = clean.Color
	h.Icon = clean.Icon
	h.Weekdays = clean.Weekdays
	h.UpdatedAt = time.Now().UTC()
	return nil
}

func (h *Habit) ChangePosition(order int) error {
	if h.ArchivedAt != nil {
		return ErrHabitArchived
	}
	if order < 0 {
		return ErrInvalidSortOrder
	}

	h.SortOrder = order
	h.UpdatedAt = time.Now().UTC()
	return nil
}

func (h *Habit) Archive() {
	if h.ArchivedAt != nil {
		return
	}

	now := time.Now().UTC()
	h.ArchivedAt = &now
	h.UpdatedAt = now
}

func (h *Habit) Restore() {
	if h.ArchivedAt == nil {
		return
	}
	h.ArchivedAt = nil
	h.UpdatedAt = time.Now().UTC()
}

// ScheduledOn reports whether the habit is planned for the given weekday.
// An empty weekday list means every day.
func (h *Habit) ScheduledOn(day time.Weekday) bool {
	if len(h.Weekdays) == 0 {
		return true
	}
	return slices.Contains(h.Weekdays, int(day))
}
