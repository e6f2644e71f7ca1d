package domain

import "time"

type RangeStats struct {
	StartDate   string      `json:"start_date"`
	EndDate     string      `json:"end_date"`
	TotalHabits int         `json:"total_habits"`
	OverallRate int         `json:"overall_completion_rate"`
	HabitStats  []HabitStat `json:"habits"`
}

type HabitStat struct {
	HabitID        string    `json:"habit_id"`
	HabitName      string    `json:"habit_name"`
	Color          string    `json:"color"`
	Frequency      Frequency `json:"frequency"`
	CompletionRate int       `json:"completion_rate"`
	DaysCompleted  int       `json:"days_completed"`
	DaysTracked    int       `json:"days_tracked"`
	DueDays        int       `json:"due_days"`
	CurrentStreak  int       `json:"current_streak"`
	LongestStreak  int       `json:"longest_streak"`
	DailyStatus    []string  `json:"daily_status"`
}

type StatsInput struct {
	Session   Session
	StartDate time.Time
	EndDate   time.Time
}
