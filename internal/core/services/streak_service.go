package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/ashu2906-design/habit-flow/internal/core/domain"
)

// StreakService owns all streak state transitions: continuation, breaking,
// milestones, and the monthly forgiveness allowance.
type StreakService struct {
	streaks domain.StreakRepository
	logs    domain.HabitLogRepository
	habits  domain.HabitRepository
	users   domain.UserRepository
	clock   domain.Clock
}

func NewStreakService(
	streaks domain.StreakRepository,
	logs domain.HabitLogRepository,
	habits domain.HabitRepository,
	users domain.UserRepository,
	clock domain.Clock,
) *StreakService {
	return &StreakService{
		streaks: streaks,
		logs:    logs,
		habits:  habits,
		users:   users,
		clock:   clock,
	}
}

type StreakUpdate struct {
	CurrentStreak int               `json:"current_streak"`
	LongestStreak int               `json:"longest_streak"`
	Milestone     *domain.Milestone `json:"milestone,omitempty"`
}

type ForgivenessResult struct {
	CurrentStreak        int `json:"current_streak"`
	LongestStreak        int `json:"longest_streak"`
	ForgivenessRemaining int `json:"forgiveness_remaining"`
}

type RecoverySuggestion struct {
	Date   time.Time `json:"date"`
	Reason string    `json:"reason"`
}

type RecoveryOptions struct {
	CanRecover           bool                 `json:"can_recover"`
	ForgivenessRemaining int                  `json:"forgiveness_remaining"`
	Suggestions          []RecoverySuggestion `json:"suggestions"`
}

func (s *StreakService) Get(ctx context.Context, userID, habitID string) (*domain.Streak, error) {
	return s.streaks.GetByUserAndHabit(ctx, userID, habitID)
}

// UpdateStreak applies one day's completion to the streak record.
//
// A completion continues the streak when the previous completion was
// yesterday, and is a no-op on the counter when the same day is re-submitted.
// Any wider gap archives the old run and restarts at 1. Incomplete days never
// mutate the streak here; breaking on a missed day is the nightly sweep's
// decision (ResolveMissedDay), where forgiveness applies.
func (s *StreakService) UpdateStreak(ctx context.Context, userID, habitID string, day time.Time, completed bool) (*StreakUpdate, error) {
	day = domain.StartOfDay(day)

	streak, err := s.loadOrCreate(ctx, userID, habitID)
	if err != nil {
		return nil, err
	}

	if !completed {
		return &StreakUpdate{
			CurrentStreak: streak.CurrentStreak,
			LongestStreak: streak.LongestStreak,
		}, nil
	}

	yesterday := day.AddDate(0, 0, -1)
	last := streak.LastCompletedDate
	continues := last != nil && (domain.SameDay(*last, yesterday) || domain.SameDay(*last, day))

	if last == nil || continues {
		if last == nil || !domain.SameDay(*last, day) {
			streak.CurrentStreak++
			if streak.StreakStartDate == nil {
				start := day
				streak.StreakStartDate = &start
			}
		}
	} else {
		// Gap of two or more days: the old run is history.
		streak.ArchiveRun(domain.StreakReasonBroken)
		streak.CurrentStreak = 1
		start := day
		streak.StreakStartDate = &start
	}

	completedDay := day
	streak.LastCompletedDate = &completedDay

	if streak.CurrentStreak > streak.LongestStreak {
		streak.LongestStreak = streak.CurrentStreak
	}

	// Only the lowest unattained threshold is emitted per update; a streak
	// that jumps several at once collects the rest on later completions.
	var milestone *domain.Milestone
	if days, ok := streak.NextMilestone(); ok {
		streak.RecordMilestone(days, s.clock.Now())
		m := streak.Milestones[len(streak.Milestones)-1]
		milestone = &m
	}

	streak.UpdatedAt = s.clock.Now()
	if err := s.streaks.Save(ctx, streak); err != nil {
		return nil, fmt.Errorf("streak service: failed to save streak: %w", err)
	}

	return &StreakUpdate{
		CurrentStreak: streak.CurrentStreak,
		LongestStreak: streak.LongestStreak,
		Milestone:     milestone,
	}, nil
}

// ResolveMissedDay handles one habit that has no completed or forgiven log
// for the given day. Called by the daily sweep.
//
// The streak is left intact when the user is still eligible for forgiveness;
// actually consuming the quota stays an explicit user action. Otherwise the
// run is archived as broken and the cached habit stats are zeroed. Either way
// a placeholder log is backfilled so the daily series has no holes.
func (s *StreakService) ResolveMissedDay(ctx context.Context, userID, habitID string, day time.Time) error {
	day = domain.StartOfDay(day)

	placeholder := domain.NewHabitLog(userID, habitID, day)
	if err := s.logs.CreateIfAbsent(ctx, placeholder); err != nil {
		return fmt.Errorf("streak service: failed to backfill missed log: %w", err)
	}

	streak, err := s.streaks.GetByUserAndHabit(ctx, userID, habitID)
	if errors.Is(err, domain.ErrStreakNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	if streak.CurrentStreak == 0 {
		return nil
	}

	eligible, err := s.eligibleForForgiveness(ctx, streak)
	if err != nil {
		return err
	}
	if eligible {
		return nil
	}

	streak.ArchiveRun(domain.StreakReasonBroken)
	streak.CurrentStreak = 0
	streak.StreakStartDate = nil
	streak.UpdatedAt = s.clock.Now()

	if err := s.streaks.Save(ctx, streak); err != nil {
		return fmt.Errorf("streak service: failed to save broken streak: %w", err)
	}

	habit, err := s.habits.GetByID(ctx, habitID)
	if err != nil {
		return fmt.Errorf("streak service: streak broken but stats not synced: %w", err)
	}
	habit.Stats.CurrentStreak = 0
	return s.habits.UpdateStats(ctx, habitID, habit.Stats)
}

// CanUseForgiveness reports whether the user may excuse a missed day for this
// habit: forgiveness mode enabled and the monthly quota not exhausted. The
// counter auto-resets when the calendar month has advanced.
func (s *StreakService) CanUseForgiveness(ctx context.Context, userID, habitID string) (bool, error) {
	streak, err := s.streaks.GetByUserAndHabit(ctx, userID, habitID)
	if errors.Is(err, domain.ErrStreakNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return s.eligibleForForgiveness(ctx, streak)
}

// ApplyForgiveness excuses an existing missed-day log, consuming one unit of
// the monthly quota. Quota exhaustion surfaces as ErrForgivenessExhausted,
// which callers present as a rejection, not a fault.
func (s *StreakService) ApplyForgiveness(ctx context.Context, userID, habitID, logID, reason string) (*ForgivenessResult, error) {
	streak, err := s.streaks.GetByUserAndHabit(ctx, userID, habitID)
	if err != nil {
		return nil, err
	}

	eligible, err := s.eligibleForForgiveness(ctx, streak)
	if err != nil {
		return nil, err
	}
	if !eligible {
		return nil, domain.ErrForgivenessExhausted
	}

	log, err := s.logs.GetByID(ctx, logID)
	if err != nil {
		return nil, err
	}
	if log.UserID != userID || log.HabitID != habitID {
		return nil, domain.ErrLogNotFound
	}

	log.Forgive(reason)
	if err := s.logs.Upsert(ctx, log); err != nil {
		return nil, fmt.Errorf("streak service: failed to mark log forgiven: %w", err)
	}

	streak.ForgivenessUsed++
	streak.UpdatedAt = s.clock.Now()
	if err := s.streaks.Save(ctx, streak); err != nil {
		return nil, fmt.Errorf("streak service: failed to save forgiveness: %w", err)
	}

	return &ForgivenessResult{
		CurrentStreak:        streak.CurrentStreak,
		LongestStreak:        streak.LongestStreak,
		ForgivenessRemaining: streak.ForgivenessRemaining(),
	}, nil
}

// RecoverStreak retroactively excuses a missed day that may not have a log
// yet, upserting a forgiven (but not completed) record for it.
func (s *StreakService) RecoverStreak(ctx context.Context, userID, habitID string, day time.Time, reason string) (*ForgivenessResult, error) {
	streak, err := s.streaks.GetByUserAndHabit(ctx, userID, habitID)
	if err != nil {
		return nil, err
	}

	eligible, err := s.eligibleForForgiveness(ctx, streak)
	if err != nil {
		return nil, err
	}
	if !eligible {
		return nil, domain.ErrForgivenessExhausted
	}

	day = domain.StartOfDay(day)

	log, err := s.logs.GetByDay(ctx, userID, habitID, day)
	if errors.Is(err, domain.ErrLogNotFound) {
		log = domain.NewHabitLog(userID, habitID, day)
	} else if err != nil {
		return nil, err
	}

	log.Completed = false
	log.CompletedAt = nil
	log.Forgive(reason)
	if err := s.logs.Upsert(ctx, log); err != nil {
		return nil, fmt.Errorf("streak service: failed to upsert forgiven log: %w", err)
	}

	streak.ForgivenessUsed++
	streak.UpdatedAt = s.clock.Now()
	if err := s.streaks.Save(ctx, streak); err != nil {
		return nil, fmt.Errorf("streak service: failed to save recovery: %w", err)
	}

	return &ForgivenessResult{
		CurrentStreak:        streak.CurrentStreak,
		LongestStreak:        streak.LongestStreak,
		ForgivenessRemaining: streak.ForgivenessRemaining(),
	}, nil
}

// GetRecoveryOptions lists recent missed days that forgiveness could still
// excuse, newest first.
func (s *StreakService) GetRecoveryOptions(ctx context.Context, userID, habitID string) (*RecoveryOptions, error) {
	streak, err := s.streaks.GetByUserAndHabit(ctx, userID, habitID)
	if errors.Is(err, domain.ErrStreakNotFound) {
		return &RecoveryOptions{}, nil
	}
	if err != nil {
		return nil, err
	}

	eligible, err := s.eligibleForForgiveness(ctx, streak)
	if err != nil {
		return nil, err
	}
	if !eligible {
		return &RecoveryOptions{}, nil
	}

	weekAgo := domain.StartOfDay(s.clock.Now()).AddDate(0, 0, -7)
	logs, err := s.logs.ListByHabitSince(ctx, userID, habitID, weekAgo)
	if err != nil {
		return nil, err
	}

	var suggestions []RecoverySuggestion
	for _, l := range logs {
		if !l.Completed && !l.Forgiven {
			suggestions = append(suggestions, RecoverySuggestion{
				Date:   l.Date,
				Reason: "Apply forgiveness to recover streak",
			})
		}
	}
	sort.Slice(suggestions, func(i, j int) bool {
		return suggestions[i].Date.After(suggestions[j].Date)
	})

	return &RecoveryOptions{
		CanRecover:           len(suggestions) > 0,
		ForgivenessRemaining: streak.ForgivenessRemaining(),
		Suggestions:          suggestions,
	}, nil
}

func (s *StreakService) loadOrCreate(ctx context.Context, userID, habitID string) (*domain.Streak, error) {
	streak, err := s.streaks.GetByUserAndHabit(ctx, userID, habitID)
	if errors.Is(err, domain.ErrStreakNotFound) {
		return domain.NewStreak(userID, habitID, s.clock.Now()), nil
	}
	if err != nil {
		return nil, err
	}
	return streak, nil
}

func (s *StreakService) eligibleForForgiveness(ctx context.Context, streak *domain.Streak) (bool, error) {
	if streak.ResetForgivenessIfStale(s.clock.Now()) {
		if err := s.streaks.Save(ctx, streak); err != nil {
			return false, fmt.Errorf("streak service: failed to persist forgiveness reset: %w", err)
		}
	}

	user, err := s.users.GetByID(ctx, streak.UserID)
	if err != nil {
		return false, err
	}
	if !user.Preferences.ForgivenessMode {
		return false, nil
	}

	return streak.ForgivenessUsed < streak.MaxForgiveness, nil
}
