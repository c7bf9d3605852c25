package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInsightNotFound    = errors.New("insight not found")
	ErrInvalidInsightType = errors.New("invalid insight type")
	ErrInvalidPriority    = errors.New("invalid priority level")
)

const (
	InsightAchievement = "achievement"
	InsightWarning     = "warning"
	InsightPattern     = "pattern"
	InsightTip         = "tip"
	InsightSuggestion  = "suggestion"

	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"

	TrendImproving = "improving"
	TrendStable    = "stable"
	TrendDeclining = "declining"
)

var InsightTypes = []string{InsightAchievement, InsightWarning, InsightPattern, InsightTip, InsightSuggestion}

func ValidInsightType(t string) bool {
	for _, v := range InsightTypes {
		if t == v {
			return true
		}
	}
	return false
}

func ValidPriority(p string) bool {
	return p == PriorityLow || p == PriorityMedium || p == PriorityHigh
}

// PatternPayload carries the detected behavioral pattern, when the insight
// has one.
type PatternPayload struct {
	BestDay         string  `json:"best_day,omitempty"`
	BestTime        string  `json:"best_time,omitempty"`
	SuccessRate     float64 `json:"success_rate,omitempty"`
	CompletionTrend string  `json:"completion_trend,omitempty"`
}

// Insight is a generated record, never user-authored. Expired insights are
// purged by the weekly job.
type Insight struct {
	ID      string `json:"id" db:"id"`
	UserID  string `json:"user_id" db:"user_id"`
	HabitID string `json:"habit_id,omitempty" db:"habit_id"`

	Type    string `json:"type" db:"type"`
	Title   string `json:"title" db:"title"`
	Message string `json:"message" db:"message"`

	Pattern *PatternPayload `json:"pattern,omitempty"`

	Priority string `json:"priority" db:"priority"`
	IsRead   bool   `json:"is_read" db:"is_read"`

	GeneratedAt time.Time `json:"generated_at" db:"generated_at"`
	ExpiresAt   time.Time `json:"expires_at" db:"expires_at"`
}

func NewInsight(userID, habitID, insightType, title, message, priority string, generatedAt time.Time, ttlDays int) (*Insight, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, errors.New("user_id is required")
	}
	if !ValidInsightType(insightType) {
		return nil, ErrInvalidInsightType
	}
	if !ValidPriority(priority) {
		return nil, ErrInvalidPriority
	}
	if strings.TrimSpace(title) == "" || strings.TrimSpace(message) == "" {
		return nil, errors.New("title and message are required")
	}

	generatedAt = generatedAt.UTC()

	return &Insight{
		ID:          uuid.New().String(),
		UserID:      userID,
		HabitID:     habitID,
		Type:        insightType,
		Title:       title,
		Message:     message,
		Priority:    priority,
		GeneratedAt: generatedAt,
		ExpiresAt:   generatedAt.AddDate(0, 0, ttlDays),
	}, nil
}

func (i *Insight) MarkRead() {
	i.IsRead = true
}

func (i *Insight) Expired(now time.Time) bool {
	return now.After(i.ExpiresAt)
}
