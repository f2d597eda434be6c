package domain

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

var (
	ErrCompletionNotFound = errors.New("completion not found")
	ErrCompletionConflict = errors.New("completion already recorded")
	ErrInvalidCompletion  = errors.New("invalid completion data")
	ErrFutureCompletion   = errors.New("cannot complete a habit in the future")
	ErrNotesTooLong       = errors.New("notes are too long (max 500 chars)")
)

const MaxNotesLen = 500

type Completion struct {
	ID         string `json:"id" db:"id"`
	HabitID    string `json:"habit_id" db:"habit_id"`
	CalendarID string `json:"calendar_id" db:"calendar_id"`
	UserID     string `json:"user_id" db:"user_id"`

	CompletedAt time.Time `json:"completed_at" db:"completed_at"`
	Notes       string    `json:"notes" db:"notes"`

	Version   int        `json:"version" db:"version"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" db:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty" db:"deleted_at"`
}

type CompletionRepository interface {
	Create(ctx context.Context, c *Completion) error
	GetByID(ctx context.Context, id string) (*Completion, error)

	// Delete soft-deletes a completion owned by userID.
	Delete(ctx context.Context, id string, userID string) error

	// ListByHabitID returns active completions with from <= completed_at < to.
	ListByHabitID(ctx context.Context, habitID string, from, to time.Time) ([]*Completion, error)

	// ListByUserID returns active completions with from <= completed_at < to, across all calendars.
	ListByUserID(ctx context.Context, userID string, from, to time.Time) ([]*Completion, error)

	// ListByCalendarID returns active completions with from <= completed_at < to.
	ListByCalendarID(ctx context.Context, calendarID string, from, to time.Time) ([]*Completion, error)

	GetChanges(ctx context.Context, userID string, since time.Time) ([]*Completion, error)
}

func NewCompletion(habit *Habit, completedAt time.Time, notes string) (*Completion, error) {
	if habit == nil {
		return nil, ErrInvalidCompletion
	}

	c := &Completion{
		ID:          uuid.NewString(),
		HabitID:     habit.ID,
		CalendarID:  habit.CalendarID,
		UserID:      habit.UserID,
		CompletedAt: completedAt.UTC(),
		Notes:       strings.TrimSpace(notes),
		Version:     1,
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	c.CreatedAt = now
	c.UpdatedAt = now
	return c, nil
}

func (c *Completion) Validate() error {
	if strings.TrimSpace(c.HabitID) == "" || strings.TrimSpace(c.UserID) == "" {
		return ErrInvalidCompletion
	}
	if c.CompletedAt.IsZero() {
		return ErrInvalidCompletion
	}
	if utf8.RuneCountInString(c.Notes) > MaxNotesLen {
		return ErrNotesTooLong
	}
	return nil
}

func (c *Completion) HabitRef() string {
	return c.HabitID
}

func (c *Completion) CompletedInstant() time.Time {
	return c.CompletedAt
}
