package domain

// Read models returned by the analytics and insight services. These are
// plain data results; handlers serialize them as-is.

type TimelinePoint struct {
	Date        string `json:"date"`
	Completions int    `json:"completions"`
}

type TopHabit struct {
	HabitID     string  `json:"habit_id"`
	Name        string  `json:"name"`
	Icon        string  `json:"icon"`
	Rate        float64 `json:"rate"`
	Completions int     `json:"completions"`
}

type OverallStats struct {
	TotalHabits      int             `json:"total_habits"`
	TotalCompletions int             `json:"total_completions"`
	SuccessRate      float64         `json:"success_rate"`
	ActiveStreaks    int             `json:"active_streaks"`
	TopHabits        []TopHabit      `json:"top_habits"`
	Timeline         []TimelinePoint `json:"timeline"`
}

type HabitAnalytics struct {
	HabitID            string           `json:"habit_id"`
	CompletionRate     float64          `json:"completion_rate"`
	TotalCompletions   int              `json:"total_completions"`
	BestDay            string           `json:"best_day,omitempty"`
	DifficultyFeedback map[string]int   `json:"difficulty_feedback"`
	CurrentStreak      int              `json:"current_streak"`
	LongestStreak      int              `json:"longest_streak"`
	Timeline           []HabitDayRecord `json:"timeline"`
}

type HabitDayRecord struct {
	Date      string `json:"date"`
	Completed bool   `json:"completed"`
	Mood      string `json:"mood,omitempty"`
	Forgiven  bool   `json:"forgiven,omitempty"`
}

// PatternReport is the output of the pattern detector over a trailing
// 30-day window of completed logs.
type PatternReport struct {
	BestDay         string         `json:"best_day,omitempty"`
	BestTime        string         `json:"best_time,omitempty"`
	DayBreakdown    map[string]int `json:"day_breakdown"`
	MoodCorrelation map[string]int `json:"mood_correlation"`
}

// BestTimeResult pairs the winning time slot with its success rate percent.
// Slot is empty when no log carried a completion timestamp.
type BestTimeResult struct {
	BestTime    string  `json:"best_time,omitempty"`
	SuccessRate float64 `json:"success_rate"`
}
