package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/comitanigiacomo/kanso-calendar/internal/core/domain"
)

var _ domain.CalendarRepository = (*CachedCalendarRepository)(nil)

const calendarListTTL = 30 * time.Minute

// CachedCalendarRepository keeps each user's calendar list in redis and drops it on every write.
type CachedCalendarRepository struct {
	next  domain.CalendarRepository
	cache *redis.Client
	log   *zap.Logger
}

func NewCachedCalendarRepository(next domain.CalendarRepository, cache *redis.Client, log *zap.Logger) *CachedCalendarRepository {
	if log == nil {
		log = zap.NewNop()
	}
	return &CachedCalendarRepository{
		next:  next,
		cache: cache,
		log:   log.Named("calendar_cache"),
	}
}

func (r *CachedCalendarRepository) cacheKey(userID string) string {
	return fmt.Sprintf("calendars:%s", userID)
}

func (r *CachedCalendarRepository) invalidate(ctx context.Context, userID string) {
	if err := r.cache.Del(ctx, r.cacheKey(userID)).Err(); err != nil {
		r.log.Warn("failed to invalidate", zap.String("user_id", userID), zap.Error(err))
	}
}

func (r *CachedCalendarRepository) ListByUserID(ctx context.Context, userID string) ([]*domain.Calendar, error) {
	key := r.cacheKey(userID)

	val, err := r.cache.Get(ctx, key).Bytes()
	if err == nil {
		var calendars []*domain.Calendar
		if err := json.Unmarshal(val, &calendars); err == nil {
			return calendars, nil
		}

		r.log.Warn("corrupted data, cleaning up key", zap.String("user_id", userID))
		r.cache.Del(ctx, key)
	} else if !errors.Is(err, redis.Nil) {
		r.log.Warn("redis read error", zap.Error(err))
	}

	calendars, err := r.next.ListByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(calendars); err == nil {
		if setErr := r.cache.Set(ctx, key, data, calendarListTTL).Err(); setErr != nil {
			r.log.Warn("redis set error", zap.Error(setErr))
		}
	}

	return calendars, nil
}

func (r *CachedCalendarRepository) GetByID(ctx context.Context, id string) (*domain.Calendar, error) {
	return r.next.GetByID(ctx, id)
}

func (r *CachedCalendarRepository) Create(ctx context.Context, cal *domain.Calendar) error {
	if err := r.next.Create(ctx, cal); err != nil {
		return err
	}
	r.invalidate(ctx, cal.UserID)
	return nil
}

func (r *CachedCalendarRepository) Update(ctx context.Context, cal *domain.Calendar) error {
	if err := r.next.Update(ctx, cal); err != nil {
		return err
	}
	r.invalidate(ctx, cal.UserID)
	return nil
}

func (r *CachedCalendarRepository) Delete(ctx context.Context, id string) error {
	cal, err := r.next.GetByID(ctx, id)
	if err == nil && cal != nil {
		defer r.invalidate(ctx, cal.UserID)
	}

	return r.next.Delete(ctx, id)
}
