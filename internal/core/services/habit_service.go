package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ashu2906-design/habit-flow/internal/core/domain"
)

// HabitService owns the habit lifecycle: creation, edits, pause windows, and
// archival. Logging days against a habit lives in LogService.
type HabitService struct {
	habits  domain.HabitRepository
	streaks domain.StreakRepository
	clock   domain.Clock
}

func NewHabitService(habits domain.HabitRepository, streaks domain.StreakRepository, clock domain.Clock) *HabitService {
	return &HabitService{
		habits:  habits,
		streaks: streaks,
		clock:   clock,
	}
}

type CreateHabitInput struct {
	Name                 string `json:"name"`
	Description          string `json:"description"`
	Category             string `json:"category"`
	Icon                 string `json:"icon"`
	Color                string `json:"color"`
	Difficulty           string `json:"difficulty"`
	AutoAdjustDifficulty bool   `json:"auto_adjust_difficulty"`
}

func (s *HabitService) Create(ctx context.Context, userID string, input CreateHabitInput) (*domain.Habit, error) {
	habit, err := domain.NewHabit(
		userID, input.Name, input.Description, input.Category,
		input.Icon, input.Color, input.Difficulty, input.AutoAdjustDifficulty,
	)
	if err != nil {
		return nil, err
	}

	if err := s.habits.Create(ctx, habit); err != nil {
		return nil, fmt.Errorf("habit service: failed to create habit: %w", err)
	}

	return habit, nil
}

func (s *HabitService) Get(ctx context.Context, userID, habitID string) (*domain.Habit, error) {
	habit, err := s.habits.GetByID(ctx, habitID)
	if err != nil {
		return nil, err
	}
	if habit.UserID != userID {
		return nil, domain.ErrHabitNotFound
	}
	return habit, nil
}

// List returns the user's habits, archived ones included when includeArchived
// is set.
func (s *HabitService) List(ctx context.Context, userID string, includeArchived bool) ([]*domain.Habit, error) {
	if includeArchived {
		return s.habits.ListByUserID(ctx, userID)
	}
	return s.habits.ListActiveByUserID(ctx, userID)
}

func (s *HabitService) Update(ctx context.Context, userID, habitID string, input CreateHabitInput) (*domain.Habit, error) {
	habit, err := s.Get(ctx, userID, habitID)
	if err != nil {
		return nil, err
	}

	if err := habit.Update(
		input.Name, input.Description, input.Category,
		input.Icon, input.Color, input.Difficulty, input.AutoAdjustDifficulty,
	); err != nil {
		return nil, err
	}

	if err := s.habits.Update(ctx, habit); err != nil {
		return nil, fmt.Errorf("habit service: failed to update habit: %w", err)
	}

	return habit, nil
}

// Pause suspends the habit until the given date (nil means indefinitely).
// The daily sweep skips paused habits, so the streak is held, not broken.
func (s *HabitService) Pause(ctx context.Context, userID, habitID string, until *time.Time) (*domain.Habit, error) {
	habit, err := s.Get(ctx, userID, habitID)
	if err != nil {
		return nil, err
	}

	if err := habit.Pause(until); err != nil {
		return nil, err
	}

	if err := s.habits.Update(ctx, habit); err != nil {
		return nil, fmt.Errorf("habit service: failed to pause habit: %w", err)
	}

	return habit, nil
}

func (s *HabitService) Resume(ctx context.Context, userID, habitID string) (*domain.Habit, error) {
	habit, err := s.Get(ctx, userID, habitID)
	if err != nil {
		return nil, err
	}

	if err := habit.Resume(); err != nil {
		return nil, err
	}

	if err := s.habits.Update(ctx, habit); err != nil {
		return nil, fmt.Errorf("habit service: failed to resume habit: %w", err)
	}

	return habit, nil
}

// Archive soft-deletes the habit. Its logs and streak history are retained;
// the open streak run is archived with a paused reason rather than broken.
func (s *HabitService) Archive(ctx context.Context, userID, habitID string) (*domain.Habit, error) {
	habit, err := s.Get(ctx, userID, habitID)
	if err != nil {
		return nil, err
	}

	habit.Archive()
	if err := s.habits.Update(ctx, habit); err != nil {
		return nil, fmt.Errorf("habit service: failed to archive habit: %w", err)
	}

	streak, err := s.streaks.GetByUserAndHabit(ctx, userID, habitID)
	if err != nil && !errors.Is(err, domain.ErrStreakNotFound) {
		return nil, err
	}
	if err == nil && streak.CurrentStreak > 0 {
		streak.ArchiveRun(domain.StreakReasonPaused)
		streak.CurrentStreak = 0
		streak.StreakStartDate = nil
		streak.UpdatedAt = s.clock.Now()
		if err := s.streaks.Save(ctx, streak); err != nil {
			return nil, fmt.Errorf("habit service: failed to close streak on archive: %w", err)
		}
	}

	return habit, nil
}

func (s *HabitService) Restore(ctx context.Context, userID, habitID string) (*domain.Habit, error) {
	habit, err := s.Get(ctx, userID, habitID)
	if err != nil {
		return nil, err
	}

	habit.Restore()
	if err := s.habits.Update(ctx, habit); err != nil {
		return nil, fmt.Errorf("habit service: failed to restore habit: %w", err)
	}

	return habit, nil
}

// Delete permanently removes the habit definition.
func (s *HabitService) Delete(ctx context.Context, userID, habitID string) error {
	if _, err := s.Get(ctx, userID, habitID); err != nil {
		return err
	}
	return s.habits.Delete(ctx, habitID)
}
