package services

import (
	"context"
	"errors"
	"math"
	"sort"
	"time"

	"github.com/ashu2906-design/habit-flow/internal/core/domain"
)

// AnalyticsService builds read-only aggregates over the log store. Nothing
// here mutates state.
type AnalyticsService struct {
	habits  domain.HabitRepository
	logs    domain.HabitLogRepository
	streaks domain.StreakRepository
	clock   domain.Clock
}

func NewAnalyticsService(
	habits domain.HabitRepository,
	logs domain.HabitLogRepository,
	streaks domain.StreakRepository,
	clock domain.Clock,
) *AnalyticsService {
	return &AnalyticsService{
		habits:  habits,
		logs:    logs,
		streaks: streaks,
		clock:   clock,
	}
}

// GetOverallStats summarizes a user's trailing N days across all active
// habits: totals, success rate, top habits by completion rate, and a per-day
// completion timeline.
func (s *AnalyticsService) GetOverallStats(ctx context.Context, userID string, days int) (*domain.OverallStats, error) {
	if days <= 0 {
		days = 30
	}
	since := domain.StartOfDay(s.clock.Now()).AddDate(0, 0, -days)

	habits, err := s.habits.ListActiveByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	logs, err := s.logs.ListByUserSince(ctx, userID, since)
	if err != nil {
		return nil, err
	}

	activeStreaks, err := s.streaks.ListActiveByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	type habitTally struct {
		total     int
		completed int
	}
	tallies := make(map[string]*habitTally, len(habits))
	for _, h := range habits {
		tallies[h.ID] = &habitTally{}
	}

	timeline := make(map[string]int)
	totalCompletions := 0
	totalLogs := 0

	for _, l := range logs {
		t, ok := tallies[l.HabitID]
		if !ok {
			continue
		}
		t.total++
		totalLogs++
		if l.Completed {
			t.completed++
			totalCompletions++
			timeline[l.Date.Format("2006-01-02")]++
		}
	}

	successRate := 0.0
	if totalLogs > 0 {
		successRate = math.Round(float64(totalCompletions) / float64(totalLogs) * 100)
	}

	topHabits := make([]domain.TopHabit, 0, len(habits))
	for _, h := range habits {
		t := tallies[h.ID]
		if t.total == 0 {
			continue
		}
		topHabits = append(topHabits, domain.TopHabit{
			HabitID:     h.ID,
			Name:        h.Name,
			Icon:        h.Icon,
			Rate:        math.Round(float64(t.completed) / float64(t.total) * 100),
			Completions: t.completed,
		})
	}
	sort.Slice(topHabits, func(i, j int) bool {
		if topHabits[i].Rate != topHabits[j].Rate {
			return topHabits[i].Rate > topHabits[j].Rate
		}
		return topHabits[i].Completions > topHabits[j].Completions
	})
	if len(topHabits) > 5 {
		topHabits = topHabits[:5]
	}

	points := make([]domain.TimelinePoint, 0, len(timeline))
	for date, count := range timeline {
		points = append(points, domain.TimelinePoint{Date: date, Completions: count})
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Date < points[j].Date })

	return &domain.OverallStats{
		TotalHabits:      len(habits),
		TotalCompletions: totalCompletions,
		SuccessRate:      successRate,
		ActiveStreaks:    len(activeStreaks),
		TopHabits:        topHabits,
		Timeline:         points,
	}, nil
}

// GetHabitAnalytics builds the detail view for one habit over the trailing
// N days: rate, best weekday, feedback distribution, streaks, and a day-by-day
// timeline.
func (s *AnalyticsService) GetHabitAnalytics(ctx context.Context, userID, habitID string, days int) (*domain.HabitAnalytics, error) {
	habit, err := s.habits.GetByID(ctx, habitID)
	if err != nil {
		return nil, err
	}
	if habit.UserID != userID {
		return nil, domain.ErrHabitNotFound
	}

	if days <= 0 {
		days = 30
	}
	since := domain.StartOfDay(s.clock.Now()).AddDate(0, 0, -days)

	logs, err := s.logs.ListByHabitSince(ctx, userID, habitID, since)
	if err != nil {
		return nil, err
	}

	sort.Slice(logs, func(i, j int) bool { return logs[i].Date.Before(logs[j].Date) })

	completed := 0
	dayCounts := make(map[string]int)
	feedback := make(map[string]int)
	timeline := make([]domain.HabitDayRecord, 0, len(logs))

	for _, l := range logs {
		if l.Completed {
			completed++
			dayCounts[domain.DayName(l.Date)]++
		}
		if l.DifficultyFeedback != "" {
			feedback[l.DifficultyFeedback]++
		}
		timeline = append(timeline, domain.HabitDayRecord{
			Date:      l.Date.Format("2006-01-02"),
			Completed: l.Completed,
			Mood:      l.Mood,
			Forgiven:  l.Forgiven,
		})
	}

	rate := 0.0
	if len(logs) > 0 {
		rate = math.Round(float64(completed) / float64(len(logs)) * 100)
	}

	bestDay := ""
	best := 0
	for _, day := range domain.DaysOfWeek {
		if dayCounts[day] > best {
			best = dayCounts[day]
			bestDay = day
		}
	}

	analytics := &domain.HabitAnalytics{
		HabitID:            habitID,
		CompletionRate:     rate,
		TotalCompletions:   completed,
		BestDay:            bestDay,
		DifficultyFeedback: feedback,
		Timeline:           timeline,
	}

	streak, err := s.streaks.GetByUserAndHabit(ctx, userID, habitID)
	if err == nil {
		analytics.CurrentStreak = streak.CurrentStreak
		analytics.LongestStreak = streak.LongestStreak
	} else if !errors.Is(err, domain.ErrStreakNotFound) {
		return nil, err
	}

	return analytics, nil
}

// HeatmapCell is one calendar day with a 0-4 intensity bucket, in the style
// of a contribution graph.
type HeatmapCell struct {
	Date      string `json:"date"`
	Count     int    `json:"count"`
	Intensity int    `json:"intensity"`
}

// GetHeatmap returns per-day completion counts across all habits for the
// trailing year. Intensity buckets: 0 none, then quartiles of the observed
// maximum.
func (s *AnalyticsService) GetHeatmap(ctx context.Context, userID string) ([]HeatmapCell, error) {
	since := domain.StartOfDay(s.clock.Now()).AddDate(-1, 0, 0)

	logs, err := s.logs.ListByUserSince(ctx, userID, since)
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int)
	maxCount := 0
	for _, l := range logs {
		if !l.Completed {
			continue
		}
		key := l.Date.Format("2006-01-02")
		counts[key]++
		if counts[key] > maxCount {
			maxCount = counts[key]
		}
	}

	cells := make([]HeatmapCell, 0, len(counts))
	for date, count := range counts {
		intensity := 0
		if maxCount > 0 {
			intensity = int(math.Ceil(float64(count) / float64(maxCount) * 4))
		}
		cells = append(cells, HeatmapCell{Date: date, Count: count, Intensity: intensity})
	}
	sort.Slice(cells, func(i, j int) bool { return cells[i].Date < cells[j].Date })

	return cells, nil
}

// HabitComparison is one habit's slice of the comparison view.
type HabitComparison struct {
	HabitID        string  `json:"habit_id"`
	Name           string  `json:"name"`
	CompletionRate float64 `json:"completion_rate"`
	CurrentStreak  int     `json:"current_streak"`
	Completions    int     `json:"completions"`
}

// CompareHabits ranks the user's active habits by completion rate over the
// trailing N days.
func (s *AnalyticsService) CompareHabits(ctx context.Context, userID string, days int) ([]HabitComparison, error) {
	if days <= 0 {
		days = 30
	}
	since := domain.StartOfDay(s.clock.Now()).AddDate(0, 0, -days)

	habits, err := s.habits.ListActiveByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	logs, err := s.logs.ListByUserSince(ctx, userID, since)
	if err != nil {
		return nil, err
	}

	type tally struct {
		total     int
		completed int
	}
	tallies := make(map[string]*tally, len(habits))
	for _, h := range habits {
		tallies[h.ID] = &tally{}
	}
	for _, l := range logs {
		if t, ok := tallies[l.HabitID]; ok {
			t.total++
			if l.Completed {
				t.completed++
			}
		}
	}

	comparisons := make([]HabitComparison, 0, len(habits))
	for _, h := range habits {
		t := tallies[h.ID]
		rate := 0.0
		if t.total > 0 {
			rate = math.Round(float64(t.completed) / float64(t.total) * 100)
		}
		comparisons = append(comparisons, HabitComparison{
			HabitID:        h.ID,
			Name:           h.Name,
			CompletionRate: rate,
			CurrentStreak:  h.Stats.CurrentStreak,
			Completions:    t.completed,
		})
	}
	sort.Slice(comparisons, func(i, j int) bool {
		return comparisons[i].CompletionRate > comparisons[j].CompletionRate
	})

	return comparisons, nil
}

// WeekdayWeekendSplit contrasts weekday and weekend completion rates.
type WeekdayWeekendSplit struct {
	WeekdayRate float64 `json:"weekday_rate"`
	WeekendRate float64 `json:"weekend_rate"`
}

// GetWeekdayWeekendSplit computes the split over the trailing 30 days.
func (s *AnalyticsService) GetWeekdayWeekendSplit(ctx context.Context, userID string) (*WeekdayWeekendSplit, error) {
	since := domain.StartOfDay(s.clock.Now()).AddDate(0, 0, -30)

	logs, err := s.logs.ListByUserSince(ctx, userID, since)
	if err != nil {
		return nil, err
	}

	var wdTotal, wdDone, weTotal, weDone int
	for _, l := range logs {
		wd := l.Date.UTC().Weekday()
		weekend := wd == time.Saturday || wd == time.Sunday
		if weekend {
			weTotal++
			if l.Completed {
				weDone++
			}
		} else {
			wdTotal++
			if l.Completed {
				wdDone++
			}
		}
	}

	split := &WeekdayWeekendSplit{}
	if wdTotal > 0 {
		split.WeekdayRate = math.Round(float64(wdDone) / float64(wdTotal) * 100)
	}
	if weTotal > 0 {
		split.WeekendRate = math.Round(float64(weDone) / float64(weTotal) * 100)
	}
	return split, nil
}
