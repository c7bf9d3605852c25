package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidMood     = errors.New("invalid mood value")
	ErrInvalidFeedback = errors.New("invalid difficulty feedback value")
	ErrNotesTooLong    = errors.New("notes are too long (max 500 chars)")
	ErrLogAlreadyDone  = errors.New("log already marked completed")
)

const (
	MoodGreat      = "great"
	MoodGood       = "good"
	MoodOkay       = "okay"
	MoodStruggling = "struggling"
	MoodSkipped    = "skipped"

	FeedbackTooEasy     = "too-easy"
	FeedbackJustRight   = "just-right"
	FeedbackChallenging = "challenging"
	FeedbackTooHard     = "too-hard"

	MaxNotesLen = 500
)

var Moods = []string{MoodGreat, MoodGood, MoodOkay, MoodStruggling, MoodSkipped}

var DifficultyFeedbacks = []string{FeedbackTooEasy, FeedbackJustRight, FeedbackChallenging, FeedbackTooHard}

func ValidMood(m string) bool {
	for _, v := range Moods {
		if m == v {
			return true
		}
	}
	return false
}

func ValidFeedback(f string) bool {
	for _, v := range DifficultyFeedbacks {
		if f == v {
			return true
		}
	}
	return false
}

// HabitLog records one calendar day of one habit for one user.
// At most one log exists per (user, habit, day); repositories enforce this
// with an atomic upsert keyed on the triple.
type HabitLog struct {
	ID      string `json:"id" db:"id"`
	UserID  string `json:"user_id" db:"user_id"`
	HabitID string `json:"habit_id" db:"habit_id"`

	// Date is always a day boundary (StartOfDay).
	Date        time.Time  `json:"date" db:"date"`
	Completed   bool       `json:"completed" db:"completed"`
	CompletedAt *time.Time `json:"completed_at,omitempty" db:"completed_at"`

	Mood               string `json:"mood,omitempty" db:"mood"`
	DifficultyFeedback string `json:"difficulty_feedback,omitempty" db:"difficulty_feedback"`
	DurationMinutes    int    `json:"duration_minutes,omitempty" db:"duration_minutes"`
	Notes              string `json:"notes,omitempty" db:"notes"`

	Forgiven       bool   `json:"forgiven" db:"forgiven"`
	ForgivenReason string `json:"forgiven_reason,omitempty" db:"forgiven_reason"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

func NewHabitLog(userID, habitID string, day time.Time) *HabitLog {
	now := time.Now().UTC()

	return &HabitLog{
		ID:        uuid.New().String(),
		UserID:    userID,
		HabitID:   habitID,
		Date:      StartOfDay(day),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (l *HabitLog) Validate() error {
	if strings.TrimSpace(l.UserID) == "" {
		return errors.New("user_id is required")
	}
	if strings.TrimSpace(l.HabitID) == "" {
		return errors.New("habit_id is required")
	}
	if l.Date.IsZero() {
		return errors.New("date is required")
	}
	if l.Mood != "" && !ValidMood(l.Mood) {
		return ErrInvalidMood
	}
	if l.DifficultyFeedback != "" && !ValidFeedback(l.DifficultyFeedback) {
		return ErrInvalidFeedback
	}
	if l.DurationMinutes < 0 {
		return errors.New("duration cannot be negative")
	}
	if len(l.Notes) > MaxNotesLen {
		return ErrNotesTooLong
	}
	return nil
}

// MarkCompleted flags the day as done at the given instant. Re-marking an
// already completed log just refreshes the timestamp; streak idempotence is
// handled by the streak engine.
func (l *HabitLog) MarkCompleted(at time.Time) {
	at = at.UTC()
	l.Completed = true
	l.CompletedAt = &at
	l.UpdatedAt = at
}

func (l *HabitLog) MarkMissed() {
	l.Completed = false
	l.CompletedAt = nil
	l.UpdatedAt = time.Now().UTC()
}

// Forgive marks the day as excused without counting it as completed.
func (l *HabitLog) Forgive(reason string) {
	l.Forgiven = true
	l.ForgivenReason = reason
	l.UpdatedAt = time.Now().UTC()
}

// Counts reports whether the day keeps a streak alive: either completed or
// explicitly forgiven.
func (l *HabitLog) Counts() bool {
	return l.Completed || l.Forgiven
}
