package domain

import (
	"encoding/json"
	"fmt"
	"iter"
	"time"
)

const DayKeyLayout = "2006-01-02"

// DayKey is a civil date (YYYY-MM-DD) used to bucket completions.
// The zero value marks an empty grid slot.
type DayKey string

// DayKeyOf truncates t to its calendar date in loc.
func DayKeyOf(t time.Time, loc *time.Location) DayKey {
	return DayKey(civilDate(t, loc).Format(DayKeyLayout))
}

// ParseDayKey accepts only canonical YYYY-MM-DD keys that name a real date.
func ParseDayKey(s string) (DayKey, error) {
	t, err := time.Parse(DayKeyLayout, s)
	if err != nil {
		return "", fmt.Errorf("invalid date %q: %w", s, err)
	}
	return DayKey(t.Format(DayKeyLayout)), nil
}

// Date returns the key as midnight UTC.
func (k DayKey) Date() time.Time {
	t, _ := time.Parse(DayKeyLayout, string(k))
	return t
}

func (k DayKey) IsZero() bool {
	return k == ""
}

// At returns the instant hour:00 of the key's date in loc.
func (k DayKey) At(hour int, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	d := k.Date()
	return time.Date(d.Year(), d.Month(), d.Day(), hour, 0, 0, 0, loc)
}

// Span returns the half-open instant range covering the key's date in loc.
func (k DayKey) Span(loc *time.Location) (from, to time.Time) {
	from = k.At(0, loc)
	next := k.Date().AddDate(0, 0, 1)
	to = DayKey(next.Format(DayKeyLayout)).At(0, loc)
	return from, to
}

// civilDate maps t to midnight UTC of its calendar date in loc.
// Day arithmetic on the result never crosses a DST transition.
func civilDate(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	local := t.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC)
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// Window is the closed range of civil dates covered by the yearly grid.
type Window struct {
	Start time.Time
	End   time.Time
}

// YearWindow returns [today - 1 year, today] where today is now's date in loc.
// A 29 February end date starts the window on 28 February.
func YearWindow(now time.Time, loc *time.Location) Window {
	end := civilDate(now, loc)

	year := end.Year() - 1
	day := end.Day()
	if last := daysIn(year, end.Month()); day > last {
		day = last
	}

	return Window{
		Start: time.Date(year, end.Month(), day, 0, 0, 0, 0, time.UTC),
		End:   end,
	}
}

// Days yields every date of the window in order. Each call restarts from Start.
func (w Window) Days() iter.Seq[DayKey] {
	return func(yield func(DayKey) bool) {
		for d := w.Start; !d.After(w.End); d = d.AddDate(0, 0, 1) {
			if !yield(DayKey(d.Format(DayKeyLayout))) {
				return
			}
		}
	}
}

// Len counts the days in the window, both ends included.
func (w Window) Len() int {
	return int(w.End.Sub(w.Start).Hours()/24) + 1
}

func (w Window) Contains(k DayKey) bool {
	d := k.Date()
	return !d.Before(w.Start) && !d.After(w.End)
}

// Bounds returns the half-open instant range [Start 00:00, End+1 00:00) in loc.
func (w Window) Bounds(loc *time.Location) (from, to time.Time) {
	if loc == nil {
		loc = time.UTC
	}
	from = time.Date(w.Start.Year(), w.Start.Month(), w.Start.Day(), 0, 0, 0, 0, loc)
	next := w.End.AddDate(0, 0, 1)
	to = time.Date(next.Year(), next.Month(), next.Day(), 0, 0, 0, 0, loc)
	return from, to
}

// Week holds seven slots, Sunday first. Empty slots are padding.
type Week [7]DayKey

func (w Week) MarshalJSON() ([]byte, error) {
	out := make([]*string, len(w))
	for i, k := range w {
		if k.IsZero() {
			continue
		}
		s := string(k)
		out[i] = &s
	}
	return json.Marshal(out)
}

type MonthLabel struct {
	Key   string     `json:"key"`
	Label string     `json:"label"`
	Month time.Month `json:"-"`
	Year  int        `json:"-"`
}

const MonthLabelCount = 13

type CalendarSkeleton struct {
	Window      Window
	Weeks       []Week
	MonthLabels []MonthLabel
}

// ComputeCalendarSkeleton lays out the year ending on now's date in loc.
func ComputeCalendarSkeleton(now time.Time, loc *time.Location) CalendarSkeleton {
	return BuildSkeleton(YearWindow(now, loc))
}

// BuildSkeleton lays out w as Sunday-first weeks with its month labels.
func BuildSkeleton(w Window) CalendarSkeleton {
	return CalendarSkeleton{
		Window:      w,
		Weeks:       buildWeeks(w),
		MonthLabels: buildMonthLabels(w.Start),
	}
}

func buildWeeks(w Window) []Week {
	weeks := make([]Week, 0, (w.Len()+13)/7)

	var current Week
	slot := int(w.Start.Weekday())

	for day := range w.Days() {
		current[slot] = day
		slot++
		if slot == len(current) {
			weeks = append(weeks, current)
			current = Week{}
			slot = 0
		}
	}

	if slot > 0 {
		weeks = append(weeks, current)
	}

	return weeks
}

func buildMonthLabels(start time.Time) []MonthLabel {
	labels := make([]MonthLabel, 0, MonthLabelCount)
	for i := 0; i < MonthLabelCount; i++ {
		m := time.Date(start.Year(), start.Month()+time.Month(i), 1, 0, 0, 0, 0, time.UTC)
		labels = append(labels, MonthLabel{
			Key:   m.Format("2006-01"),
			Label: m.Format("Jan"),
			Month: m.Month(),
			Year:  m.Year(),
		})
	}
	return labels
}

// CompletionEvent is anything recorded as done at an instant.
type CompletionEvent interface {
	HabitRef() string
	CompletedInstant() time.Time
}

// CompletionCount maps a day to the number of completions on it. Missing keys are zero.
type CompletionCount map[DayKey]int

func ComputeCompletionCounts[E CompletionEvent](events []E, loc *time.Location) CompletionCount {
	counts := make(CompletionCount)
	for _, e := range events {
		counts[DayKeyOf(e.CompletedInstant(), loc)]++
	}
	return counts
}

func TotalCompletions(counts CompletionCount) int {
	total := 0
	for _, n := range counts {
		total += n
	}
	return total
}

type ColorBucket int

const (
	BucketEmpty ColorBucket = iota
	BucketLow
	BucketMedium
	BucketHigh
	BucketMax
)

var bucketNames = [...]string{"empty", "low", "medium", "high", "max"}

func ColorBucketFor(count int) ColorBucket {
	switch {
	case count <= 0:
		return BucketEmpty
	case count <= 2:
		return BucketLow
	case count <= 5:
		return BucketMedium
	case count <= 10:
		return BucketHigh
	default:
		return BucketMax
	}
}

func (b ColorBucket) String() string {
	if b < BucketEmpty || b > BucketMax {
		return fmt.Sprintf("ColorBucket(%d)", int(b))
	}
	return bucketNames[b]
}

func (b ColorBucket) MarshalText() ([]byte, error) {
	return []byte(b.String()), nil
}

func (b *ColorBucket) UnmarshalText(text []byte) error {
	for i, name := range bucketNames {
		if name == string(text) {
			*b = ColorBucket(i)
			return nil
		}
	}
	return fmt.Errorf("unknown color bucket %q", text)
}
