package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"time"

	"github.com/ashu2906-design/habit-flow/internal/core/domain"
)

// LogService is the write path for daily habit logs. Every completion flows
// through here so the streak engine and the cached stat blocks stay in step
// with the log store.
type LogService struct {
	logs      domain.HabitLogRepository
	habits    domain.HabitRepository
	users     domain.UserRepository
	streakSvc *StreakService
	notifier  domain.Notifier
	clock     domain.Clock
}

func NewLogService(
	logs domain.HabitLogRepository,
	habits domain.HabitRepository,
	users domain.UserRepository,
	streakSvc *StreakService,
	notifier domain.Notifier,
	clock domain.Clock,
) *LogService {
	return &LogService{
		logs:      logs,
		habits:    habits,
		users:     users,
		streakSvc: streakSvc,
		notifier:  notifier,
		clock:     clock,
	}
}

// LogInput carries the optional context a user can attach to a day.
type LogInput struct {
	Date               time.Time
	Completed          bool
	Mood               string
	DifficultyFeedback string
	DurationMinutes    int
	Notes              string
}

type LogResult struct {
	Log    *domain.HabitLog `json:"log"`
	Streak *StreakUpdate    `json:"streak,omitempty"`
}

// LogHabit records (or re-records) one calendar day for a habit. The write is
// an upsert on the (user, habit, day) key, so submitting the same day twice
// updates the existing record instead of duplicating it. Completions feed the
// streak engine; re-submitting an already completed day is a counter no-op.
func (s *LogService) LogHabit(ctx context.Context, userID, habitID string, input LogInput) (*LogResult, error) {
	habit, err := s.habits.GetByID(ctx, habitID)
	if err != nil {
		return nil, err
	}
	if habit.UserID != userID {
		return nil, domain.ErrHabitNotFound
	}
	if !habit.IsActive {
		return nil, domain.ErrHabitArchived
	}

	day := input.Date
	if day.IsZero() {
		day = s.clock.Now()
	}
	day = domain.StartOfDay(day)

	logEntry, err := s.logs.GetByDay(ctx, userID, habitID, day)
	if errors.Is(err, domain.ErrLogNotFound) {
		logEntry = domain.NewHabitLog(userID, habitID, day)
	} else if err != nil {
		return nil, err
	}

	if input.Completed {
		logEntry.MarkCompleted(s.clock.Now())
	} else {
		logEntry.MarkMissed()
	}
	logEntry.Mood = input.Mood
	logEntry.DifficultyFeedback = input.DifficultyFeedback
	logEntry.DurationMinutes = input.DurationMinutes
	logEntry.Notes = input.Notes

	if err := logEntry.Validate(); err != nil {
		return nil, err
	}

	if err := s.logs.Upsert(ctx, logEntry); err != nil {
		return nil, fmt.Errorf("log service: failed to upsert log: %w", err)
	}

	update, err := s.streakSvc.UpdateStreak(ctx, userID, habitID, day, logEntry.Completed)
	if err != nil {
		return nil, err
	}

	if err := s.syncHabitStats(ctx, habit, update); err != nil {
		return nil, err
	}
	if err := s.syncUserStats(ctx, userID); err != nil {
		return nil, err
	}

	if update.Milestone != nil {
		s.notifyMilestone(userID, habit.Name, update.Milestone.Days)
	}

	return &LogResult{Log: logEntry, Streak: update}, nil
}

// ForgiveLog excuses one missed day through the streak engine, which owns the
// monthly quota.
func (s *LogService) ForgiveLog(ctx context.Context, userID, habitID, logID, reason string) (*ForgivenessResult, error) {
	return s.streakSvc.ApplyForgiveness(ctx, userID, habitID, logID, reason)
}

// TodayEntry pairs a habit with its log for the current day, if any.
type TodayEntry struct {
	Habit     *domain.Habit    `json:"habit"`
	Log       *domain.HabitLog `json:"log,omitempty"`
	Completed bool             `json:"completed"`
}

type TodayView struct {
	Date      time.Time    `json:"date"`
	Entries   []TodayEntry `json:"entries"`
	Completed int          `json:"completed"`
	Total     int          `json:"total"`
}

// GetToday assembles the daily check-in screen: every habit trackable today
// with its log state. Paused and archived habits are excluded.
func (s *LogService) GetToday(ctx context.Context, userID string) (*TodayView, error) {
	today := domain.StartOfDay(s.clock.Now())

	habits, err := s.habits.ListActiveByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	logs, err := s.logs.ListByUserAndDay(ctx, userID, today)
	if err != nil {
		return nil, err
	}
	logsByHabit := make(map[string]*domain.HabitLog, len(logs))
	for _, l := range logs {
		logsByHabit[l.HabitID] = l
	}

	view := &TodayView{Date: today}
	for _, habit := range habits {
		if !habit.Trackable(today) {
			continue
		}
		entry := TodayEntry{Habit: habit, Log: logsByHabit[habit.ID]}
		if entry.Log != nil && entry.Log.Completed {
			entry.Completed = true
			view.Completed++
		}
		view.Entries = append(view.Entries, entry)
	}
	view.Total = len(view.Entries)

	return view, nil
}

// GetCalendar returns one habit's day records for a calendar month.
func (s *LogService) GetCalendar(ctx context.Context, userID, habitID string, year int, month time.Month) ([]domain.HabitDayRecord, error) {
	habit, err := s.habits.GetByID(ctx, habitID)
	if err != nil {
		return nil, err
	}
	if habit.UserID != userID {
		return nil, domain.ErrHabitNotFound
	}

	from := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, -1)

	logs, err := s.logs.ListByHabitRange(ctx, userID, habitID, from, to)
	if err != nil {
		return nil, err
	}

	records := make([]domain.HabitDayRecord, 0, len(logs))
	for _, l := range logs {
		records = append(records, domain.HabitDayRecord{
			Date:      l.Date.Format("2006-01-02"),
			Completed: l.Completed,
			Mood:      l.Mood,
			Forgiven:  l.Forgiven,
		})
	}
	return records, nil
}

// syncHabitStats refreshes the habit's cached stat block from the trailing 30
// days of logs plus the authoritative streak counters.
func (s *LogService) syncHabitStats(ctx context.Context, habit *domain.Habit, update *StreakUpdate) error {
	since := domain.StartOfDay(s.clock.Now()).AddDate(0, 0, -30)
	logs, err := s.logs.ListByHabitSince(ctx, habit.UserID, habit.ID, since)
	if err != nil {
		return err
	}

	total := 0
	var lastCompleted *time.Time
	for _, l := range logs {
		if l.Completed {
			total++
			if lastCompleted == nil || l.Date.After(*lastCompleted) {
				d := l.Date
				lastCompleted = &d
			}
		}
	}

	rate := 0.0
	if len(logs) > 0 {
		rate = math.Round(float64(total) / float64(len(logs)) * 100)
	}

	habit.Stats = domain.HabitStats{
		TotalCompletions: total,
		CurrentStreak:    update.CurrentStreak,
		LongestStreak:    update.LongestStreak,
		SuccessRate:      rate,
		LastCompleted:    lastCompleted,
	}

	if err := s.habits.UpdateStats(ctx, habit.ID, habit.Stats); err != nil {
		return fmt.Errorf("log service: failed to sync habit stats: %w", err)
	}
	return nil
}

func (s *LogService) syncUserStats(ctx context.Context, userID string) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	habits, err := s.habits.ListActiveByUserID(ctx, userID)
	if err != nil {
		return err
	}

	stats := domain.UserStats{TotalHabits: len(habits)}
	for _, h := range habits {
		stats.TotalCompletions += h.Stats.TotalCompletions
		if h.Stats.LongestStreak > stats.LongestStreak {
			stats.LongestStreak = h.Stats.LongestStreak
		}
	}

	user.Stats = stats
	user.UpdatedAt = s.clock.Now()
	if err := s.users.Update(ctx, user); err != nil {
		return fmt.Errorf("log service: failed to sync user stats: %w", err)
	}
	return nil
}

// notifyMilestone dispatches the celebration without blocking the request.
// Failures are logged and dropped.
func (s *LogService) notifyMilestone(userID, habitName string, days int) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		user, err := s.users.GetByID(ctx, userID)
		if err != nil {
			log.Printf("WARN: milestone notification skipped, user lookup failed: %v", err)
			return
		}
		if err := s.notifier.NotifyMilestone(ctx, user, habitName, days); err != nil {
			log.Printf("WARN: milestone notification failed: %v", err)
		}
	}()
}
