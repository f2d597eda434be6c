package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/comitanigiacomo/kanso-calendar/internal/core/domain"
)

var _ domain.CompletionRepository = (*PostgresCompletionRepository)(nil)

const completionColumns = `
	id, habit_id, calendar_id, user_id, completed_at, notes,
	version, created_at, updated_at, deleted_at`

type PostgresCompletionRepository struct {
	db *sqlx.DB
}

func NewPostgresCompletionRepository(db *sqlx.DB) *PostgresCompletionRepository {
	return &PostgresCompletionRepository{db: db}
}

func (r *PostgresCompletionRepository) Create(ctx context.Context, c *domain.Completion) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}

	query := `
		INSERT INTO completions (` + completionColumns + `)
		VALUES (
			:id, :habit_id, :calendar_id, :user_id, :completed_at, :notes,
			:version, :created_at, :updated_at, :deleted_at
		)`

	if _, err := r.db.NamedExecContext(ctx, query, c); err != nil {
		switch pgCode(err) {
		case codeForeignKeyViolation:
			return fmt.Errorf("%w: habit %s", ErrReferenceMissing, c.HabitID)
		case codeUniqueViolation:
			return domain.ErrCompletionConflict
		}
		return fmt.Errorf("failed to insert completion: %w", err)
	}
	return nil
}

func (r *PostgresCompletionRepository) GetByID(ctx context.Context, id string) (*domain.Completion, error) {
	query := `SELECT ` + completionColumns + ` FROM completions WHERE id = $1 AND deleted_at IS NULL`

	var c domain.Completion
	if err := r.db.GetContext(ctx, &c, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrCompletionNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (r *PostgresCompletionRepository) Delete(ctx context.Context, id string, userID string) error {
	query := `
		UPDATE completions
		SET deleted_at = NOW(), updated_at = NOW(), version = version + 1
		WHERE id = $1
		  AND user_id = $2
		  AND deleted_at IS NULL`

	result, err := r.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrCompletionNotFound
	}
	return nil
}

func (r *PostgresCompletionRepository) ListByHabitID(ctx context.Context, habitID string, from, to time.Time) ([]*domain.Completion, error) {
	return r.listRange(ctx, "habit_id", habitID, from, to)
}

func (r *PostgresCompletionRepository) ListByUserID(ctx context.Context, userID string, from, to time.Time) ([]*domain.Completion, error) {
	return r.listRange(ctx, "user_id", userID, from, to)
}

func (r *PostgresCompletionRepository) ListByCalendarID(ctx context.Context, calendarID string, from, to time.Time) ([]*domain.Completion, error) {
	return r.listRange(ctx, "calendar_id", calendarID, from, to)
}

func (r *PostgresCompletionRepository) listRange(ctx context.Context, column, id string, from, to time.Time) ([]*domain.Completion, error) {
	query := fmt.Sprintf(`
		SELECT `+completionColumns+` FROM completions
		WHERE %s = $1
		  AND completed_at >= $2
		  AND completed_at < $3
		  AND deleted_at IS NULL
		ORDER BY completed_at ASC`, column)

	completions := []*domain.Completion{}
	if err := r.db.SelectContext(ctx, &completions, query, id, from, to); err != nil {
		return nil, fmt.Errorf("range query by %s failed: %w", column, err)
	}
	return completions, nil
}

func (r *PostgresCompletionRepository) GetChanges(ctx context.Context, userID string, since time.Time) ([]*domain.Completion, error) {
	query := `
		SELECT ` + completionColumns + ` FROM completions
		WHERE user_id = $1
		  AND updated_at > $2
		ORDER BY updated_at ASC`

	completions := []*domain.Completion{}
	if err := r.db.SelectContext(ctx, &completions, query, userID, since); err != nil {
		return nil, err
	}
	return completions, nil
}
