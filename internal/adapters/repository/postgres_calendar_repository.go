package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/comitanigiacomo/kanso-calendar/internal/core/domain"
)

var _ domain.CalendarRepository = (*PostgresCalendarRepository)(nil)

const calendarColumns = `id, user_id, name, color, version, created_at, updated_at, deleted_at`

type PostgresCalendarRepository struct {
	db *sqlx.DB
}

func NewPostgresCalendarRepository(db *sqlx.DB) *PostgresCalendarRepository {
	return &PostgresCalendarRepository{db: db}
}

func (r *PostgresCalendarRepository) Create(ctx context.Context, cal *domain.Calendar) error {
	query := `
		INSERT INTO calendars (` + calendarColumns + `)
		VALUES (:id, :user_id, :name, :color, 1, :created_at, :updated_at, NULL)`

	if _, err := r.db.NamedExecContext(ctx, query, cal); err != nil {
		if pgCode(err) == codeForeignKeyViolation {
			return fmt.Errorf("%w: user %s", ErrReferenceMissing, cal.UserID)
		}
		return fmt.Errorf("failed to insert calendar: %w", err)
	}

	cal.Version = 1
	return nil
}

func (r *PostgresCalendarRepository) GetByID(ctx context.Context, id string) (*domain.Calendar, error) {
	query := `SELECT ` + calendarColumns + ` FROM calendars WHERE id = $1 AND deleted_at IS NULL`

	var cal domain.Calendar
	if err := r.db.GetContext(ctx, &cal, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrCalendarNotFound
		}
		return nil, fmt.Errorf("database scan error: %w", err)
	}
	return &cal, nil
}

func (r *PostgresCalendarRepository) ListByUserID(ctx context.Context, userID string) ([]*domain.Calendar, error) {
	query := `
		SELECT ` + calendarColumns + ` FROM calendars
		WHERE user_id = $1 AND deleted_at IS NULL
		ORDER BY created_at ASC`

	calendars := []*domain.Calendar{}
	if err := r.db.SelectContext(ctx, &calendars, query, userID); err != nil {
		return nil, fmt.Errorf("query error: %w", err)
	}
	return calendars, nil
}

func (r *PostgresCalendarRepository) Update(ctx context.Context, cal *domain.Calendar) error {
	query := `
		UPDATE calendars SET
			name = $1, color = $2,
			updated_at = NOW(), version = version + 1
		WHERE id = $3 AND version = $4 AND deleted_at IS NULL
		RETURNING version, updated_at`

	var newVersion int
	var newUpdatedAt time.Time

	err := r.db.QueryRowContext(ctx, query, cal.Name, cal.Color, cal.ID, cal.Version).Scan(&newVersion, &newUpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			var count int
			if checkErr := r.db.GetContext(ctx, &count, `SELECT count(*) FROM calendars WHERE id = $1 AND deleted_at IS NULL`, cal.ID); checkErr != nil {
				return fmt.Errorf("existence check failed: %w", checkErr)
			}
			if count == 0 {
				return domain.ErrCalendarNotFound
			}
			return domain.ErrCalendarConflict
		}
		return fmt.Errorf("update query failed: %w", err)
	}

	cal.Version = newVersion
	cal.UpdatedAt = newUpdatedAt
	return nil
}

// Delete tombstones the calendar, its habits and their completions in one transaction
// so sync clients see all three deletions together.
func (r *PostgresCalendarRepository) Delete(ctx context.Context, id string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE calendars
		SET deleted_at = NOW(), updated_at = NOW(), version = version + 1
		WHERE id = $1 AND deleted_at IS NULL`, id)
	if err != nil {
		return fmt.Errorf("delete query failed: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrCalendarNotFound
	}

	if err := cascadeSoftDelete(ctx, tx, "calendar_id", id); err != nil {
		return err
	}

	return tx.Commit()
}

// cascadeSoftDelete tombstones the habits and completions whose column matches id.
func cascadeSoftDelete(ctx context.Context, tx *sqlx.Tx, column, id string) error {
	if column == "calendar_id" {
		if _, err := tx.ExecContext(ctx, `
			UPDATE habits
			SET deleted_at = NOW(), updated_at = NOW(), version = version + 1
			WHERE calendar_id = $1 AND deleted_at IS NULL`, id); err != nil {
			return fmt.Errorf("habit cascade failed: %w", err)
		}
	}

	query := fmt.Sprintf(`
		UPDATE completions
		SET deleted_at = NOW(), updated_at = NOW(), version = version + 1
		WHERE %s = $1 AND deleted_at IS NULL`, column)
	if _, err := tx.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("completion cascade failed: %w", err)
	}
	return nil
}
