package services

import (
	"context"
	"time"

	"github.com/comitanigiacomo/kanso-calendar/internal/core/domain"
	"github.com/comitanigiacomo/kanso-calendar/internal/i18n"
)

type CalendarViewService struct {
	calendars   domain.CalendarRepository
	habits      domain.HabitRepository
	completions domain.CompletionRepository
	catalog     *i18n.Catalog
	now         func() time.Time
}

func NewCalendarViewService(calendars domain.CalendarRepository, habits domain.HabitRepository, completions domain.CompletionRepository, catalog *i18n.Catalog) *CalendarViewService {
	return &CalendarViewService{
		calendars:   calendars,
		habits:      habits,
		completions: completions,
		catalog:     catalog,
		now:         time.Now,
	}
}

func (s *CalendarViewService) WithClock(now func() time.Time) *CalendarViewService {
	s.now = now
	return s
}

// Month lays out a Sunday-first grid covering the requested month. Leading and
// trailing days from neighbouring months are included with InMonth=false.
func (s *CalendarViewService) Month(ctx context.Context, in domain.MonthInput) (*domain.MonthView, error) {
	cal, err := s.calendars.GetByID(ctx, in.CalendarID)
	if err != nil {
		return nil, err
	}
	if cal.UserID != in.UserID {
		return nil, domain.ErrCalendarNotFound
	}

	loc := in.Location
	if loc == nil {
		loc = time.UTC
	}
	today := domain.DayKeyOf(s.now(), loc)

	year, month := in.Year, in.Month
	if year == 0 {
		t := today.Date()
		year, month = t.Year(), t.Month()
	}

	monthStart := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	monthEnd := monthStart.AddDate(0, 1, -1)
	gridStart := monthStart.AddDate(0, 0, -int(monthStart.Weekday()))
	gridEnd := monthEnd.AddDate(0, 0, 6-int(monthEnd.Weekday()))

	habits, err := s.habits.ListByCalendarID(ctx, cal.ID)
	if err != nil {
		return nil, err
	}

	from, to := domain.Window{Start: gridStart, End: gridEnd}.Bounds(loc)
	completions, err := s.completions.ListByCalendarID(ctx, cal.ID, from, to)
	if err != nil {
		return nil, err
	}

	done := make(map[domain.DayKey]map[string]bool)
	for _, c := range completions {
		key := domain.DayKeyOf(c.CompletedAt, loc)
		if done[key] == nil {
			done[key] = make(map[string]bool)
		}
		done[key][c.HabitID] = true
	}

	stats := make([]domain.HabitMonthStat, len(habits))
	scheduledDone := make([]int, len(habits))
	for i, h := range habits {
		stats[i] = domain.HabitMonthStat{
			HabitID:   h.ID,
			HabitName: h.Name,
			Color:     h.Color,
			Icon:      h.Icon,
		}
	}

	view := &domain.MonthView{
		CalendarID: cal.ID,
		Month:      monthStart.Format("2006-01"),
		Title:      s.catalog.Match(in.Locale).MonthTitle(year, month),
	}

	var week [7]domain.MonthDay
	for d := gridStart; !d.After(gridEnd); d = d.AddDate(0, 0, 1) {
		key := domain.DayKey(d.Format(domain.DayKeyLayout))
		inMonth := d.Month() == month
		future := key > today

		day := domain.MonthDay{
			Date:              key,
			Day:               d.Day(),
			InMonth:           inMonth,
			IsToday:           key == today,
			IsFuture:          future,
			CompletedHabitIDs: make([]string, 0),
		}

		for i, h := range habits {
			completed := done[key][h.ID]
			if completed {
				day.CompletedHabitIDs = append(day.CompletedHabitIDs, h.ID)
			}
			if !inMonth || future {
				continue
			}
			if completed {
				stats[i].DaysCompleted++
			}
			if h.ScheduledOn(d.Weekday()) {
				stats[i].DaysScheduled++
				if completed {
					scheduledDone[i]++
				}
			}
		}

		week[d.Weekday()] = day
		if d.Weekday() == time.Saturday {
			view.Weeks = append(view.Weeks, week)
			week = [7]domain.MonthDay{}
		}
	}

	for i := range stats {
		if stats[i].DaysScheduled > 0 {
			stats[i].CompletionRate = float64(scheduledDone[i]) / float64(stats[i].DaysScheduled) * 100
		}
	}
	view.Habits = stats

	return view, nil
}
