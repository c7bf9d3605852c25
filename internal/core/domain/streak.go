package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrStreakNotFound       = errors.New("streak not found")
	ErrForgivenessExhausted = errors.New("no forgiveness remaining this month")
	ErrInvalidStreakReason  = errors.New("invalid streak history reason")
)

const (
	StreakReasonCompleted = "completed"
	StreakReasonBroken    = "broken"
	StreakReasonPaused    = "paused"

	// DefaultMaxForgiveness is the monthly allowance of excused missed days.
	DefaultMaxForgiveness = 2
)

// StreakMilestones are the fixed thresholds, ascending. Each is recorded at
// most once per streak record.
var StreakMilestones = []int{7, 14, 21, 30, 60, 90, 100, 180, 365}

// StreakPeriod is one closed run archived into the streak history.
type StreakPeriod struct {
	Streak    int        `json:"streak"`
	StartDate *time.Time `json:"start_date,omitempty"`
	EndDate   *time.Time `json:"end_date,omitempty"`
	Reason    string     `json:"reason"`
}

type Milestone struct {
	Days       int       `json:"days"`
	AchievedAt time.Time `json:"achieved_at"`
}

// Streak is the source of truth for streak state per (user, habit).
type Streak struct {
	ID      string `json:"id" db:"id"`
	UserID  string `json:"user_id" db:"user_id"`
	HabitID string `json:"habit_id" db:"habit_id"`

	CurrentStreak int `json:"current_streak" db:"current_streak"`
	LongestStreak int `json:"longest_streak" db:"longest_streak"`

	StreakStartDate   *time.Time `json:"streak_start_date,omitempty" db:"streak_start_date"`
	LastCompletedDate *time.Time `json:"last_completed_date,omitempty" db:"last_completed_date"`

	ForgivenessUsed      int       `json:"forgiveness_used" db:"forgiveness_used"`
	MaxForgiveness       int       `json:"max_forgiveness" db:"max_forgiveness"`
	ForgivenessResetDate time.Time `json:"forgiveness_reset_date" db:"forgiveness_reset_date"`

	History    []StreakPeriod `json:"history"`
	Milestones []Milestone    `json:"milestones"`

	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

func NewStreak(userID, habitID string, now time.Time) *Streak {
	return &Streak{
		ID:                   uuid.New().String(),
		UserID:               userID,
		HabitID:              habitID,
		MaxForgiveness:       DefaultMaxForgiveness,
		ForgivenessResetDate: StartOfMonth(now),
		UpdatedAt:            now.UTC(),
	}
}

// ArchiveRun closes the current run into the history with the given reason.
// Callers reset CurrentStreak themselves; a zero-length run is never archived.
func (s *Streak) ArchiveRun(reason string) {
	if s.CurrentStreak == 0 {
		return
	}
	s.History = append(s.History, StreakPeriod{
		Streak:    s.CurrentStreak,
		StartDate: s.StreakStartDate,
		EndDate:   s.LastCompletedDate,
		Reason:    reason,
	})
}

// HasMilestone reports whether the threshold was already recorded.
func (s *Streak) HasMilestone(days int) bool {
	for _, m := range s.Milestones {
		if m.Days == days {
			return true
		}
	}
	return false
}

// NextMilestone returns the lowest unattained threshold that the current
// streak has reached. Only one threshold is surfaced per call; a streak that
// jumps several thresholds at once collects them over subsequent updates.
func (s *Streak) NextMilestone() (int, bool) {
	for _, m := range StreakMilestones {
		if s.CurrentStreak >= m && !s.HasMilestone(m) {
			return m, true
		}
	}
	return 0, false
}

// RecordMilestone appends a newly achieved threshold. Duplicates are ignored.
func (s *Streak) RecordMilestone(days int, at time.Time) {
	if s.HasMilestone(days) {
		return
	}
	s.Milestones = append(s.Milestones, Milestone{Days: days, AchievedAt: at.UTC()})
}

// ResetForgivenessIfStale zeroes the monthly forgiveness counter when the
// calendar month has advanced past the recorded reset date. Returns true when
// a reset happened so callers know to persist.
func (s *Streak) ResetForgivenessIfStale(now time.Time) bool {
	if StartOfMonth(now).After(StartOfMonth(s.ForgivenessResetDate)) {
		s.ForgivenessUsed = 0
		s.ForgivenessResetDate = StartOfMonth(now)
		return true
	}
	return false
}

// ForgivenessRemaining never goes below zero.
func (s *Streak) ForgivenessRemaining() int {
	remaining := s.MaxForgiveness - s.ForgivenessUsed
	if remaining < 0 {
		return 0
	}
	return remaining
}
