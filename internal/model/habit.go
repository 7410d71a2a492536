package model

// Habit 是 Domain API 返回的习惯，completed 表示当天是否已完成
type Habit struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Description   string   `json:"description,omitempty"`
	Category      string   `json:"category,omitempty"`
	Completed     bool     `json:"completed"`
	CurrentStreak int      `json:"currentStreak,omitempty"`
	BestStreak    int      `json:"bestStreak,omitempty"`
	Frequency     string   `json:"frequency,omitempty"` // daily / weekly / weekdays / weekends / monthly
	DaysOfWeek    []string `json:"daysOfWeek,omitempty"`
	PreferredTime string   `json:"preferredTime,omitempty"`
}

// HabitName 供模糊匹配使用
func HabitName(h Habit) string { return h.Name }

// HabitCompletion POST /api/habits/agent 的请求体
type HabitCompletion struct {
	HabitID   string  `json:"habitId"`
	Date      string  `json:"date"` // YYYY-MM-DD
	Completed bool    `json:"completed"`
	Note      *string `json:"note"`
	Rating    *int    `json:"rating"`
}

// NewHabit POST /api/habits 的请求体
type NewHabit struct {
	Name      string `json:"name"`
	Frequency string `json:"frequency"`
}
