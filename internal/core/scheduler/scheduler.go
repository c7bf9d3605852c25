package scheduler

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/ashu2906-design/habit-flow/internal/core/domain"
	"github.com/ashu2906-design/habit-flow/internal/core/services"
)

// Scheduler drives the recurring sweeps: the nightly missed-day check-in, the
// weekly insight generation, and hourly reminder dispatch. Each sweep isolates
// per-user and per-habit failures so one bad record never aborts the pass.
type Scheduler struct {
	users  domain.UserRepository
	habits domain.HabitRepository
	logs   domain.HabitLogRepository

	streakSvc  *services.StreakService
	insightSvc *services.InsightService
	notifier   domain.Notifier
	clock      domain.Clock

	tick time.Duration

	stop chan struct{}
	wg   sync.WaitGroup

	lastDaily    time.Time
	lastWeekly   time.Time
	lastReminder int
}

func New(
	users domain.UserRepository,
	habits domain.HabitRepository,
	logs domain.HabitLogRepository,
	streakSvc *services.StreakService,
	insightSvc *services.InsightService,
	notifier domain.Notifier,
	clock domain.Clock,
) *Scheduler {
	return &Scheduler{
		users:        users,
		habits:       habits,
		logs:         logs,
		streakSvc:    streakSvc,
		insightSvc:   insightSvc,
		notifier:     notifier,
		clock:        clock,
		tick:         time.Minute,
		stop:         make(chan struct{}),
		lastReminder: -1,
	}
}

// Start launches the scheduling loop in the background. Stop shuts it down
// and waits for any in-flight sweep to finish.
func (s *Scheduler) Start(ctx context.Context) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		log.Println("Scheduler started in background...")

		ticker := time.NewTicker(s.tick)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				s.dispatch(ctx)
			case <-s.stop:
				log.Println("Scheduler shutting down...")
				return
			case <-ctx.Done():
				log.Println("Scheduler shutting down...")
				return
			}
		}
	}()
}

func (s *Scheduler) Stop() {
	close(s.stop)
	s.wg.Wait()
}

// dispatch fires whichever sweeps are due at the current instant. The daily
// check-in runs once per calendar day (over yesterday), the weekly sweep once
// per Monday, and reminders once per clock hour.
func (s *Scheduler) dispatch(ctx context.Context) {
	now := s.clock.Now().UTC()
	today := domain.StartOfDay(now)

	if !domain.SameDay(s.lastDaily, today) {
		s.lastDaily = today
		s.RunDailyCheckIn(ctx, today.AddDate(0, 0, -1))
	}

	if now.Weekday() == time.Monday && !domain.SameDay(s.lastWeekly, today) {
		s.lastWeekly = today
		s.RunWeeklyInsights(ctx)
	}

	if now.Hour() != s.lastReminder {
		s.lastReminder = now.Hour()
		s.RunReminders(ctx, now.Hour())
	}
}

// RunDailyCheckIn visits every trackable habit of every active user and
// resolves the given day if it was missed: a placeholder log is backfilled
// and the streak is broken unless forgiveness still covers it. Days already
// completed or forgiven are left alone.
func (s *Scheduler) RunDailyCheckIn(ctx context.Context, day time.Time) {
	day = domain.StartOfDay(day)

	users, err := s.users.ListActive(ctx)
	if err != nil {
		log.Printf("Scheduler: daily check-in aborted, cannot list users: %v", err)
		return
	}

	for _, user := range users {
		if err := s.checkInUser(ctx, user, day); err != nil {
			log.Printf("Scheduler: daily check-in failed for user %s: %v", user.ID, err)
		}
	}
}

func (s *Scheduler) checkInUser(ctx context.Context, user *domain.User, day time.Time) error {
	habits, err := s.habits.ListActiveByUserID(ctx, user.ID)
	if err != nil {
		return err
	}

	logs, err := s.logs.ListByUserAndDay(ctx, user.ID, day)
	if err != nil {
		return err
	}
	logged := make(map[string]*domain.HabitLog, len(logs))
	for _, l := range logs {
		logged[l.HabitID] = l
	}

	for _, habit := range habits {
		if !habit.Trackable(day) {
			continue
		}
		if l, ok := logged[habit.ID]; ok && l.Counts() {
			continue
		}
		if err := s.streakSvc.ResolveMissedDay(ctx, user.ID, habit.ID, day); err != nil {
			log.Printf("Scheduler: missed-day resolution failed for habit %s: %v", habit.ID, err)
		}
	}
	return nil
}

// RunWeeklyInsights generates and stores each active user's insight batch,
// sends the weekly summary, and purges expired insights at the end.
func (s *Scheduler) RunWeeklyInsights(ctx context.Context) {
	users, err := s.users.ListActive(ctx)
	if err != nil {
		log.Printf("Scheduler: weekly insights aborted, cannot list users: %v", err)
		return
	}

	for _, user := range users {
		insights, err := s.insightSvc.GenerateAndStore(ctx, user.ID)
		if err != nil {
			log.Printf("Scheduler: insight generation failed for user %s: %v", user.ID, err)
			continue
		}
		if len(insights) == 0 {
			continue
		}
		if err := s.notifier.SendWeeklySummary(ctx, user, insights); err != nil {
			log.Printf("Scheduler: weekly summary dispatch failed for user %s: %v", user.ID, err)
		}
	}

	purged, err := s.insightSvc.PurgeExpired(ctx)
	if err != nil {
		log.Printf("Scheduler: insight purge failed: %v", err)
		return
	}
	if purged > 0 {
		log.Printf("Scheduler: purged %d expired insights", purged)
	}
}

// RunReminders notifies every active user whose preferred reminder hour
// matches, listing the habits still open today. Users with nothing pending
// are skipped.
func (s *Scheduler) RunReminders(ctx context.Context, hour int) {
	users, err := s.users.ListActive(ctx)
	if err != nil {
		log.Printf("Scheduler: reminder sweep aborted, cannot list users: %v", err)
		return
	}

	today := domain.StartOfDay(s.clock.Now())

	for _, user := range users {
		reminderHour, ok := user.ReminderHour()
		if !ok || reminderHour != hour {
			continue
		}

		pending, err := s.pendingHabits(ctx, user.ID, today)
		if err != nil {
			log.Printf("Scheduler: reminder lookup failed for user %s: %v", user.ID, err)
			continue
		}
		if len(pending) == 0 {
			continue
		}

		if err := s.notifier.SendDailyReminder(ctx, user, pending); err != nil {
			log.Printf("Scheduler: reminder dispatch failed for user %s: %v", user.ID, err)
		}
	}
}

func (s *Scheduler) pendingHabits(ctx context.Context, userID string, day time.Time) ([]*domain.Habit, error) {
	habits, err := s.habits.ListActiveByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	logs, err := s.logs.ListByUserAndDay(ctx, userID, day)
	if err != nil {
		return nil, err
	}
	done := make(map[string]bool, len(logs))
	for _, l := range logs {
		if l.Counts() {
			done[l.HabitID] = true
		}
	}

	var pending []*domain.Habit
	for _, habit := range habits {
		if habit.Trackable(day) && !done[habit.ID] {
			pending = append(pending, habit)
		}
	}
	return pending, nil
}
