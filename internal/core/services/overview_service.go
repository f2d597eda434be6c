package services

import (
	"context"
	"fmt"
	"time"

	"github.com/comitanigiacomo/kanso-calendar/internal/core/domain"
	"github.com/comitanigiacomo/kanso-calendar/internal/i18n"
)

// CountKey identifies a cached, unscoped yearly count map. Generation is the
// user's invalidation counter read before the counts were computed, so a
// write racing with a slow reader leaves the reader's entry unreachable.
type CountKey struct {
	UserID     string
	Timezone   string
	EndDate    domain.DayKey
	Generation int64
}

type CountCache interface {
	Generation(ctx context.Context, userID string) int64
	Get(ctx context.Context, key CountKey) (domain.CompletionCount, bool)
	Set(ctx context.Context, key CountKey, counts domain.CompletionCount)

	// Invalidate bumps the user's generation and drops every entry.
	Invalidate(ctx context.Context, userID string)
}

// Warmer schedules a background recomputation of a user's counts.
type Warmer interface {
	Enqueue(userID string)
}

type OverviewService struct {
	completions domain.CompletionRepository
	cache       CountCache
	warmer      Warmer
	catalog     *i18n.Catalog
	now         func() time.Time
}

var _ ChangeNotifier = (*OverviewService)(nil)

// NewOverviewService accepts a nil cache.
func NewOverviewService(completions domain.CompletionRepository, cache CountCache, catalog *i18n.Catalog) *OverviewService {
	return &OverviewService{
		completions: completions,
		cache:       cache,
		catalog:     catalog,
		now:         time.Now,
	}
}

func (s *OverviewService) WithClock(now func() time.Time) *OverviewService {
	s.now = now
	return s
}

func (s *OverviewService) WithWarmer(w Warmer) *OverviewService {
	s.warmer = w
	return s
}

// Yearly builds the heat map for the year ending today in the input location.
func (s *OverviewService) Yearly(ctx context.Context, in domain.OverviewInput) (*domain.Heatmap, error) {
	loc := in.Location
	if loc == nil {
		loc = time.UTC
	}

	skel := domain.ComputeCalendarSkeleton(s.now(), loc)

	counts, err := s.counts(ctx, in, skel.Window, loc)
	if err != nil {
		return nil, err
	}

	return assembleHeatmap(skel, counts, s.catalog.Match(in.Locale)), nil
}

// CompletionsChanged drops the user's cached counts before returning and
// queues a warm-up.
func (s *OverviewService) CompletionsChanged(ctx context.Context, userID string) {
	if s.cache == nil {
		return
	}
	s.cache.Invalidate(ctx, userID)
	if s.warmer != nil {
		s.warmer.Enqueue(userID)
	}
}

// Refresh warms the user's UTC entry.
func (s *OverviewService) Refresh(ctx context.Context, userID string) error {
	if s.cache == nil {
		return nil
	}
	_, err := s.counts(ctx, domain.OverviewInput{UserID: userID}, domain.YearWindow(s.now(), time.UTC), time.UTC)
	return err
}

func (s *OverviewService) counts(ctx context.Context, in domain.OverviewInput, w domain.Window, loc *time.Location) (domain.CompletionCount, error) {
	cacheable := s.cache != nil && !in.Scoped()
	key := CountKey{
		UserID:   in.UserID,
		Timezone: loc.String(),
		EndDate:  domain.DayKey(w.End.Format(domain.DayKeyLayout)),
	}

	if cacheable {
		key.Generation = s.cache.Generation(ctx, in.UserID)
		if counts, ok := s.cache.Get(ctx, key); ok {
			return counts, nil
		}
	}

	from, to := w.Bounds(loc)
	list, err := s.completions.ListByUserID(ctx, in.UserID, from, to)
	if err != nil {
		return nil, fmt.Errorf("overview: list completions: %w", err)
	}

	if in.Scoped() {
		list = filterCompletions(list, in.CalendarID, in.HabitID)
	}

	counts := domain.ComputeCompletionCounts(list, loc)

	if cacheable {
		s.cache.Set(ctx, key, counts)
	}
	return counts, nil
}

func filterCompletions(list []*domain.Completion, calendarID, habitID string) []*domain.Completion {
	out := list[:0:0]
	for _, c := range list {
		if calendarID != "" && c.CalendarID != calendarID {
			continue
		}
		if habitID != "" && c.HabitID != habitID {
			continue
		}
		out = append(out, c)
	}
	return out
}

func assembleHeatmap(skel domain.CalendarSkeleton, counts domain.CompletionCount, locale *i18n.Locale) *domain.Heatmap {
	weeks := make([][7]*domain.HeatmapCell, len(skel.Weeks))
	for i, week := range skel.Weeks {
		for slot, day := range week {
			if day.IsZero() {
				continue
			}
			n := counts[day]
			weeks[i][slot] = &domain.HeatmapCell{
				Date:    day,
				Count:   n,
				Bucket:  domain.ColorBucketFor(n),
				Tooltip: locale.Tooltip(day.Date(), n),
			}
		}
	}

	labels := make([]domain.MonthLabel, len(skel.MonthLabels))
	for i, m := range skel.MonthLabels {
		m.Label = locale.ShortMonth(m.Month)
		labels[i] = m
	}

	total := domain.TotalCompletions(counts)

	return &domain.Heatmap{
		StartDate:     skel.Window.Start.Format(domain.DayKeyLayout),
		EndDate:       skel.Window.End.Format(domain.DayKeyLayout),
		Total:         total,
		Summary:       locale.Summary(total),
		Locale:        locale.Tag,
		MonthLabels:   labels,
		WeekdayLabels: locale.Weekdays(),
		Weeks:         weeks,
	}
}
