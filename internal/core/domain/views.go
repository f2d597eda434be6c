package domain

import "time"

type HeatmapCell struct {
	Date    DayKey      `json:"date"`
	Count   int         `json:"count"`
	Bucket  ColorBucket `json:"bucket"`
	Tooltip string      `json:"tooltip"`
}

type Heatmap struct {
	StartDate     string            `json:"start_date"`
	EndDate       string            `json:"end_date"`
	Total         int               `json:"total"`
	Summary       string            `json:"summary"`
	Locale        string            `json:"locale"`
	MonthLabels   []MonthLabel      `json:"month_labels"`
	WeekdayLabels []string          `json:"weekday_labels"`
	Weeks         [][7]*HeatmapCell `json:"weeks"`
}

type OverviewInput struct {
	UserID     string
	CalendarID string
	HabitID    string
	Location   *time.Location
	Locale     string
}

// Scoped reports whether the overview is restricted to a calendar or habit.
func (in OverviewInput) Scoped() bool {
	return in.CalendarID != "" || in.HabitID != ""
}

type MonthDay struct {
	Date              DayKey   `json:"date"`
	Day               int      `json:"day"`
	InMonth           bool     `json:"in_month"`
	IsToday           bool     `json:"is_today"`
	IsFuture          bool     `json:"is_future"`
	CompletedHabitIDs []string `json:"completed_habit_ids"`
}

type HabitMonthStat struct {
	HabitID        string  `json:"habit_id"`
	HabitName      string  `json:"habit_name"`
	Color          string  `json:"color"`
	Icon           string  `json:"icon"`
	DaysCompleted  int     `json:"days_completed"`
	DaysScheduled  int     `json:"days_scheduled"`
	CompletionRate float64 `json:"completion_rate"`
}

type MonthView struct {
	CalendarID string           `json:"calendar_id"`
	Month      string           `json:"month"`
	Title      string           `json:"title"`
	Weeks      [][7]MonthDay    `json:"weeks"`
	Habits     []HabitMonthStat `json:"habits"`
}

type MonthInput struct {
	UserID     string
	CalendarID string
	Year       int
	Month      time.Month
	Location   *time.Location
	Locale     string
}
