package domain

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

var (
	ErrCalendarNotFound    = errors.New("calendar not found")
	ErrCalendarConflict    = errors.New("calendar version conflict")
	ErrCalendarNameEmpty   = errors.New("calendar name cannot be empty")
	ErrCalendarNameTooLong = errors.New("calendar name is too long (max 50 chars)")
	ErrInvalidUserID       = errors.New("invalid user id")
	ErrInvalidColor        = errors.New("invalid color format (must be #RRGGBB)")
)

const MaxCalendarNameLen = 50

var colorRegex = regexp.MustCompile(`^#([A-Fa-f0-9]{6}|[A-Fa-f0-9]{3})$`)

type Calendar struct {
	ID        string     `json:"id" db:"id"`
	UserID    string     `json:"user_id" db:"user_id"`
	Name      string     `json:"name" db:"name"`
	Color     string     `json:"color" db:"color"`
	Version   int        `json:"version" db:"version"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" db:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty" db:"deleted_at"`
}

type CalendarRepository interface {
	Create(ctx context.Context, cal *Calendar) error
	GetByID(ctx context.Context, id string) (*Calendar, error)
	ListByUserID(ctx context.Context, userID string) ([]*Calendar, error)

	// Update must reject stale versions with ErrCalendarConflict.
	Update(ctx context.Context, cal *Calendar) error

	// Delete soft-deletes the calendar together with its habits and their completions.
	Delete(ctx context.Context, id string) error
}

func validateCalendar(name, color string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrCalendarNameEmpty
	}
	if utf8.RuneCountInString(name) > MaxCalendarNameLen {
		return "", ErrCalendarNameTooLong
	}
	if color != "" && !colorRegex.MatchString(color) {
		return "", ErrInvalidColor
	}
	return name, nil
}

func NewCalendar(userID, name, color string) (*Calendar, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrInvalidUserID
	}

	cleanName, err := validateCalendar(name, color)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	return &Calendar{
		ID:        uuid.NewString(),
		UserID:    userID,
		Name:      cleanName,
		Color:     color,
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func (c *Calendar) Update(name, color string) error {
	cleanName, err := validateCalendar(name, color)
	if err != nil {
		return err
	}

	c.Name = cleanName
	c.Color = color
	c.UpdatedAt = time.Now().UTC()
	return nil
}
