package services

import (
	"context"
	"fmt"
	"math"

	"github.com/ashu2906-design/habit-flow/internal/core/domain"
)

// Thresholds for the weekly insight generation, in percent.
const (
	achievementThreshold = 85.0
	warningThreshold     = 40.0
	patternThreshold     = 70.0

	shortInsightTTLDays = 7
	longInsightTTLDays  = 14
)

// InsightService scans trailing windows of completion logs and turns them
// into insight records and pattern reports.
type InsightService struct {
	habits   domain.HabitRepository
	logs     domain.HabitLogRepository
	insights domain.InsightRepository
	clock    domain.Clock
}

func NewInsightService(
	habits domain.HabitRepository,
	logs domain.HabitLogRepository,
	insights domain.InsightRepository,
	clock domain.Clock,
) *InsightService {
	return &InsightService{
		habits:   habits,
		logs:     logs,
		insights: insights,
		clock:    clock,
	}
}

// GenerateWeeklyInsights builds the user's insight batch from the trailing
// 7 days of logs. Nothing is persisted; callers decide what to do with the
// batch.
//
// Per habit: >=85% success emits an achievement, <40% a warning (a habit with
// no logs at all counts as 0%), and a dominant completion time slot above 70%
// emits a pattern. One user-level tip names the best day of the week over the
// trailing 30 days.
func (s *InsightService) GenerateWeeklyInsights(ctx context.Context, userID string) ([]*domain.Insight, error) {
	now := s.clock.Now()
	weekAgo := domain.StartOfDay(now).AddDate(0, 0, -7)

	habits, err := s.habits.ListActiveByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	logs, err := s.logs.ListByUserSince(ctx, userID, weekAgo)
	if err != nil {
		return nil, err
	}

	logsByHabit := make(map[string][]*domain.HabitLog)
	for _, l := range logs {
		logsByHabit[l.HabitID] = append(logsByHabit[l.HabitID], l)
	}

	var insights []*domain.Insight

	for _, habit := range habits {
		habitLogs := logsByHabit[habit.ID]

		var completedLogs []*domain.HabitLog
		for _, l := range habitLogs {
			if l.Completed {
				completedLogs = append(completedLogs, l)
			}
		}

		successRate := 0.0
		if len(habitLogs) > 0 {
			successRate = float64(len(completedLogs)) / float64(len(habitLogs)) * 100
		}

		if successRate >= achievementThreshold {
			insight, err := domain.NewInsight(
				userID, habit.ID, domain.InsightAchievement,
				fmt.Sprintf("Great week for %s!", habit.Name),
				fmt.Sprintf("You completed %s %d%% of the time this week. Keep it up!", habit.Name, int(math.Round(successRate))),
				domain.PriorityLow, now, shortInsightTTLDays,
			)
			if err != nil {
				return nil, err
			}
			insights = append(insights, insight)
		} else if successRate < warningThreshold {
			insight, err := domain.NewInsight(
				userID, habit.ID, domain.InsightWarning,
				fmt.Sprintf("%s needs attention", habit.Name),
				fmt.Sprintf("Your completion rate for %s was only %d%% this week. Would you like some help?", habit.Name, int(math.Round(successRate))),
				domain.PriorityHigh, now, shortInsightTTLDays,
			)
			if err != nil {
				return nil, err
			}
			insights = append(insights, insight)
		}

		bestTime := DetectBestTime(completedLogs)
		if bestTime.BestTime != "" && bestTime.SuccessRate > patternThreshold {
			insight, err := domain.NewInsight(
				userID, habit.ID, domain.InsightPattern,
				"Best time detected",
				fmt.Sprintf("You're most successful with %s in the %s", habit.Name, bestTime.BestTime),
				domain.PriorityMedium, now, longInsightTTLDays,
			)
			if err != nil {
				return nil, err
			}
			insight.Pattern = &domain.PatternPayload{
				BestTime:    bestTime.BestTime,
				SuccessRate: bestTime.SuccessRate,
			}
			insights = append(insights, insight)
		}
	}

	pattern, err := s.DetectPatterns(ctx, userID, "")
	if err != nil {
		return nil, err
	}
	if pattern.BestDay != "" {
		insight, err := domain.NewInsight(
			userID, "", domain.InsightTip,
			"Your best day is "+pattern.BestDay,
			fmt.Sprintf("You tend to complete more habits on %s. Consider scheduling important habits for this day.", pattern.BestDay),
			domain.PriorityMedium, now, longInsightTTLDays,
		)
		if err != nil {
			return nil, err
		}
		insights = append(insights, insight)
	}

	return insights, nil
}

// GenerateAndStore runs the weekly generation and persists any results.
func (s *InsightService) GenerateAndStore(ctx context.Context, userID string) ([]*domain.Insight, error) {
	insights, err := s.GenerateWeeklyInsights(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(insights) == 0 {
		return nil, nil
	}
	if err := s.insights.CreateBatch(ctx, insights); err != nil {
		return nil, fmt.Errorf("insight service: failed to store insights: %w", err)
	}
	return insights, nil
}

// DetectPatterns aggregates the trailing 30 days of completed logs, for the
// whole user or scoped to one habit when habitID is non-empty.
func (s *InsightService) DetectPatterns(ctx context.Context, userID, habitID string) (*domain.PatternReport, error) {
	thirtyDaysAgo := domain.StartOfDay(s.clock.Now()).AddDate(0, 0, -30)

	var logs []*domain.HabitLog
	var err error
	if habitID == "" {
		logs, err = s.logs.ListByUserSince(ctx, userID, thirtyDaysAgo)
	} else {
		logs, err = s.logs.ListByHabitSince(ctx, userID, habitID, thirtyDaysAgo)
	}
	if err != nil {
		return nil, err
	}

	var completed []*domain.HabitLog
	for _, l := range logs {
		if l.Completed {
			completed = append(completed, l)
		}
	}

	dayBreakdown := make(map[string]int, len(domain.DaysOfWeek))
	for _, day := range domain.DaysOfWeek {
		dayBreakdown[day] = 0
	}
	for _, l := range completed {
		dayBreakdown[domain.DayName(l.Date)]++
	}

	// Iterate the Monday-first table so ties resolve to the earlier day.
	bestDay := ""
	maxCompletions := 0
	for _, day := range domain.DaysOfWeek {
		if dayBreakdown[day] > maxCompletions {
			maxCompletions = dayBreakdown[day]
			bestDay = day
		}
	}

	moodCorrelation := make(map[string]int)
	for _, l := range completed {
		if l.Mood != "" {
			moodCorrelation[l.Mood]++
		}
	}

	return &domain.PatternReport{
		BestDay:         bestDay,
		BestTime:        DetectBestTime(completed).BestTime,
		DayBreakdown:    dayBreakdown,
		MoodCorrelation: moodCorrelation,
	}, nil
}

// DetectBestTime buckets logs by completion hour into the four fixed slots
// and returns the slot with the strictly highest success rate. Slots are
// compared in fixed enumeration order, so the first slot wins ties. Logs
// without a completion timestamp are skipped; the result is empty when none
// carry one.
func DetectBestTime(logs []*domain.HabitLog) domain.BestTimeResult {
	type bucket struct {
		count     int
		completed int
	}

	buckets := make(map[string]*bucket, len(domain.TimeSlots))
	for _, slot := range domain.TimeSlots {
		buckets[slot] = &bucket{}
	}

	for _, l := range logs {
		if l.CompletedAt == nil {
			continue
		}
		b := buckets[domain.TimeSlotForHour(l.CompletedAt.UTC().Hour())]
		b.count++
		if l.Completed {
			b.completed++
		}
	}

	var bestSlot string
	var highestRate float64
	for _, slot := range domain.TimeSlots {
		b := buckets[slot]
		if b.count == 0 {
			continue
		}
		rate := float64(b.completed) / float64(b.count) * 100
		if rate > highestRate {
			highestRate = rate
			bestSlot = slot
		}
	}

	return domain.BestTimeResult{BestTime: bestSlot, SuccessRate: highestRate}
}

type TimeSuggestion struct {
	SuggestedTime string `json:"suggested_time,omitempty"`
	Reason        string `json:"reason"`
	Confidence    string `json:"confidence"`
}

// SuggestBestTime recommends a completion slot for one habit from its
// trailing 30 days of completed logs.
func (s *InsightService) SuggestBestTime(ctx context.Context, userID, habitID string) (*TimeSuggestion, error) {
	thirtyDaysAgo := domain.StartOfDay(s.clock.Now()).AddDate(0, 0, -30)

	logs, err := s.logs.ListByHabitSince(ctx, userID, habitID, thirtyDaysAgo)
	if err != nil {
		return nil, err
	}

	var completed []*domain.HabitLog
	for _, l := range logs {
		if l.Completed {
			completed = append(completed, l)
		}
	}

	result := DetectBestTime(completed)

	var confidence string
	switch {
	case result.SuccessRate > 70:
		confidence = "high"
	case result.SuccessRate > 50:
		confidence = "medium"
	default:
		confidence = "low"
	}

	return &TimeSuggestion{
		SuggestedTime: result.BestTime,
		Reason:        fmt.Sprintf("You have a %d%% success rate in the %s", int(math.Round(result.SuccessRate)), result.BestTime),
		Confidence:    confidence,
	}, nil
}

func (s *InsightService) ListForUser(ctx context.Context, userID string, unreadOnly bool) ([]*domain.Insight, error) {
	return s.insights.ListByUserID(ctx, userID, unreadOnly)
}

func (s *InsightService) MarkRead(ctx context.Context, id, userID string) error {
	return s.insights.MarkRead(ctx, id, userID)
}

// PurgeExpired drops insights past their expiry. Run by the weekly sweep.
func (s *InsightService) PurgeExpired(ctx context.Context) (int, error) {
	return s.insights.DeleteExpired(ctx, s.clock.Now())
}
