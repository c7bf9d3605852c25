package services

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/ashu2906-design/habit-flow/internal/core/domain"
)

const (
	stepUpThreshold   = 90.0
	stepDownThreshold = 40.0

	// minLogsForAdjustment is the minimum history inside the trailing two
	// weeks before a recommendation is made.
	minLogsForAdjustment = 7

	feedbackWindow = 30
)

// DifficultyService observes recent success rates and recommends difficulty
// changes. It only recommends; ApplyAdjustment performs the write.
type DifficultyService struct {
	habits domain.HabitRepository
	logs   domain.HabitLogRepository
	clock  domain.Clock
}

func NewDifficultyService(habits domain.HabitRepository, logs domain.HabitLogRepository, clock domain.Clock) *DifficultyService {
	return &DifficultyService{
		habits: habits,
		logs:   logs,
		clock:  clock,
	}
}

type DifficultyAdjustment struct {
	ShouldAdjust      bool    `json:"should_adjust"`
	CurrentDifficulty string  `json:"current_difficulty,omitempty"`
	NewDifficulty     string  `json:"new_difficulty,omitempty"`
	SuccessRate       float64 `json:"success_rate,omitempty"`
	Message           string  `json:"message,omitempty"`
	Reason            string  `json:"reason,omitempty"`
}

// AdjustDifficulty recommends stepping the habit's difficulty up or down
// based on the trailing 14 days. Habits that have not opted in, or with
// fewer than 7 logged days, get a no-suggestion result rather than an error.
func (s *DifficultyService) AdjustDifficulty(ctx context.Context, userID, habitID string) (*DifficultyAdjustment, error) {
	habit, err := s.habits.GetByID(ctx, habitID)
	if err != nil {
		return nil, err
	}
	if habit.UserID != userID {
		return nil, domain.ErrHabitNotFound
	}

	if !habit.AutoAdjustDifficulty {
		return &DifficultyAdjustment{ShouldAdjust: false}, nil
	}

	twoWeeksAgo := domain.StartOfDay(s.clock.Now()).AddDate(0, 0, -14)
	logs, err := s.logs.ListByHabitSince(ctx, userID, habitID, twoWeeksAgo)
	if err != nil {
		return nil, err
	}

	if len(logs) < minLogsForAdjustment {
		return &DifficultyAdjustment{ShouldAdjust: false, Reason: "not enough data"}, nil
	}

	completed := 0
	for _, l := range logs {
		if l.Completed {
			completed++
		}
	}
	successRate := float64(completed) / float64(len(logs)) * 100

	result := &DifficultyAdjustment{
		CurrentDifficulty: habit.Difficulty,
		NewDifficulty:     habit.Difficulty,
		SuccessRate:       math.Round(successRate),
	}

	switch {
	case successRate >= stepUpThreshold && habit.Difficulty != domain.DifficultyHard:
		result.ShouldAdjust = true
		result.NewDifficulty = domain.StepUpDifficulty(habit.Difficulty)
		result.Message = "You're crushing this! Ready to level up?"
	case successRate < stepDownThreshold && habit.Difficulty != domain.DifficultyEasy:
		result.ShouldAdjust = true
		result.NewDifficulty = domain.StepDownDifficulty(habit.Difficulty)
		result.Message = "Let's make this more manageable for now."
	}

	return result, nil
}

type FeedbackTrend struct {
	HasEnoughData  bool           `json:"has_enough_data"`
	Feedback       map[string]int `json:"feedback,omitempty"`
	Total          int            `json:"total,omitempty"`
	Trend          string         `json:"trend,omitempty"`
	Recommendation string         `json:"recommendation,omitempty"`
}

// GetFeedbackTrend summarizes the last 30 feedback-bearing logs.
func (s *DifficultyService) GetFeedbackTrend(ctx context.Context, userID, habitID string) (*FeedbackTrend, error) {
	habit, err := s.habits.GetByID(ctx, habitID)
	if err != nil {
		return nil, err
	}
	if habit.UserID != userID {
		return nil, domain.ErrHabitNotFound
	}

	// Feedback is sparse, so look back further than the adjustment window.
	since := domain.StartOfDay(s.clock.Now()).AddDate(0, 0, -90)
	logs, err := s.logs.ListByHabitSince(ctx, userID, habitID, since)
	if err != nil {
		return nil, err
	}

	var withFeedback []*domain.HabitLog
	for _, l := range logs {
		if l.DifficultyFeedback != "" {
			withFeedback = append(withFeedback, l)
		}
	}
	if len(withFeedback) == 0 {
		return &FeedbackTrend{HasEnoughData: false}, nil
	}

	sort.Slice(withFeedback, func(i, j int) bool {
		return withFeedback[i].Date.After(withFeedback[j].Date)
	})
	if len(withFeedback) > feedbackWindow {
		withFeedback = withFeedback[:feedbackWindow]
	}

	feedback := make(map[string]int, len(domain.DifficultyFeedbacks))
	for _, f := range domain.DifficultyFeedbacks {
		feedback[f] = 0
	}
	for _, l := range withFeedback {
		feedback[l.DifficultyFeedback]++
	}

	total := len(withFeedback)
	tooEasyPct := float64(feedback[domain.FeedbackTooEasy]) / float64(total) * 100
	tooHardPct := float64(feedback[domain.FeedbackTooHard]) / float64(total) * 100

	var recommendation string
	switch {
	case tooEasyPct > 50:
		recommendation = "Consider making this habit more challenging"
	case tooHardPct > 50:
		recommendation = "This might be too difficult, consider simplifying"
	case float64(feedback[domain.FeedbackJustRight]+feedback[domain.FeedbackChallenging])/float64(total) > 0.7:
		recommendation = "Difficulty level seems perfect!"
	}

	trend := "comfortable"
	if tooHardPct > tooEasyPct {
		trend = "struggling"
	}

	return &FeedbackTrend{
		HasEnoughData:  true,
		Feedback:       feedback,
		Total:          total,
		Trend:          trend,
		Recommendation: recommendation,
	}, nil
}

// ApplyAdjustment writes a new difficulty level after an explicit user
// confirmation.
func (s *DifficultyService) ApplyAdjustment(ctx context.Context, userID, habitID, newDifficulty string) (*domain.Habit, error) {
	if !domain.ValidDifficulty(newDifficulty) {
		return nil, domain.ErrInvalidDifficulty
	}

	habit, err := s.habits.GetByID(ctx, habitID)
	if err != nil {
		return nil, err
	}
	if habit.UserID != userID {
		return nil, domain.ErrHabitNotFound
	}

	habit.Difficulty = newDifficulty
	habit.UpdatedAt = s.clock.Now()
	if err := s.habits.Update(ctx, habit); err != nil {
		return nil, fmt.Errorf("difficulty service: failed to apply adjustment: %w", err)
	}

	return habit, nil
}
