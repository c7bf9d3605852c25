package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ashu2906-design/habit-flow/internal/adapters/repository"
	"github.com/ashu2906-design/habit-flow/internal/core/domain"
)

type analyticsFixture struct {
	svc     *AnalyticsService
	habits  *repository.InMemoryHabitRepository
	logs    *repository.InMemoryHabitLogRepository
	streaks *repository.InMemoryStreakRepository
	clock   *fixedClock

	userID string
}

func newAnalyticsFixture(t *testing.T, now time.Time) *analyticsFixture {
	t.Helper()

	f := &analyticsFixture{
		habits:  repository.NewInMemoryHabitRepository(),
		logs:    repository.NewInMemoryHabitLogRepository(),
		streaks: repository.NewInMemoryStreakRepository(),
		clock:   &fixedClock{now: now},
		userID:  "user-1",
	}
	f.svc = NewAnalyticsService(f.habits, f.logs, f.streaks, f.clock)
	return f
}

func (f *analyticsFixture) addHabit(t *testing.T, name string) *domain.Habit {
	t.Helper()
	habit, err := domain.NewHabit(f.userID, name, "", "health", "", "", "medium", false)
	require.NoError(t, err)
	require.NoError(t, f.habits.Create(context.Background(), habit))
	return habit
}

func (f *analyticsFixture) log(t *testing.T, habitID string, d time.Time, completed bool) *domain.HabitLog {
	t.Helper()
	log := domain.NewHabitLog(f.userID, habitID, d)
	if completed {
		log.MarkCompleted(d.Add(9 * time.Hour))
	}
	require.NoError(t, f.logs.Upsert(context.Background(), log))
	return log
}

func TestAnalyticsService_GetOverallStats(t *testing.T) {
	t.Parallel()

	now := day(2025, 3, 20)

	t.Run("Success: Aggregates across habits", func(t *testing.T) {
		t.Parallel()
		f := newAnalyticsFixture(t, now)

		a := f.addHabit(t, "Read")
		b := f.addHabit(t, "Run")

		// Read: 3 of 3. Run: 1 of 2.
		for i := 1; i <= 3; i++ {
			f.log(t, a.ID, now.AddDate(0, 0, -i), true)
		}
		f.log(t, b.ID, now.AddDate(0, 0, -1), true)
		f.log(t, b.ID, now.AddDate(0, 0, -2), false)

		stats, err := f.svc.GetOverallStats(context.Background(), f.userID, 30)
		require.NoError(t, err)

		assert.Equal(t, 2, stats.TotalHabits)
		assert.Equal(t, 4, stats.TotalCompletions)
		assert.InDelta(t, 80.0, stats.SuccessRate, 0.01)

		require.Len(t, stats.TopHabits, 2)
		assert.Equal(t, a.ID, stats.TopHabits[0].HabitID)
		assert.InDelta(t, 100.0, stats.TopHabits[0].Rate, 0.01)

		// Two completions landed on the same day (the 19th).
		require.NotEmpty(t, stats.Timeline)
		last := stats.Timeline[len(stats.Timeline)-1]
		assert.Equal(t, "2025-03-19", last.Date)
		assert.Equal(t, 2, last.Completions)
	})

	t.Run("Success: Active streak count comes from the streak store", func(t *testing.T) {
		t.Parallel()
		f := newAnalyticsFixture(t, now)
		habit := f.addHabit(t, "Read")

		streak := domain.NewStreak(f.userID, habit.ID, now)
		streak.CurrentStreak = 4
		require.NoError(t, f.streaks.Save(context.Background(), streak))

		stats, err := f.svc.GetOverallStats(context.Background(), f.userID, 30)
		require.NoError(t, err)
		assert.Equal(t, 1, stats.ActiveStreaks)
	})

	t.Run("Edge Case: No logs yield zeroes", func(t *testing.T) {
		t.Parallel()
		f := newAnalyticsFixture(t, now)
		f.addHabit(t, "Read")

		stats, err := f.svc.GetOverallStats(context.Background(), f.userID, 30)
		require.NoError(t, err)

		assert.Zero(t, stats.TotalCompletions)
		assert.Zero(t, stats.SuccessRate)
		assert.Empty(t, stats.TopHabits)
		assert.Empty(t, stats.Timeline)
	})
}

func TestAnalyticsService_GetHabitAnalytics(t *testing.T) {
	t.Parallel()

	now := day(2025, 3, 20)

	t.Run("Success: Rate, best day, and feedback distribution", func(t *testing.T) {
		t.Parallel()
		f := newAnalyticsFixture(t, now)
		habit := f.addHabit(t, "Read")

		// Completions on two Mondays and one Tuesday, one miss.
		f.log(t, habit.ID, day(2025, 3, 10), true)
		f.log(t, habit.ID, day(2025, 3, 17), true)
		f.log(t, habit.ID, day(2025, 3, 11), true)
		f.log(t, habit.ID, day(2025, 3, 12), false)

		fb := domain.NewHabitLog(f.userID, habit.ID, day(2025, 3, 13))
		fb.MarkCompleted(day(2025, 3, 13).Add(9 * time.Hour))
		fb.DifficultyFeedback = domain.FeedbackJustRight
		require.NoError(t, f.logs.Upsert(context.Background(), fb))

		analytics, err := f.svc.GetHabitAnalytics(context.Background(), f.userID, habit.ID, 30)
		require.NoError(t, err)

		assert.InDelta(t, 80.0, analytics.CompletionRate, 0.01)
		assert.Equal(t, 4, analytics.TotalCompletions)
		assert.Equal(t, "Monday", analytics.BestDay)
		assert.Equal(t, 1, analytics.DifficultyFeedback[domain.FeedbackJustRight])
		assert.Len(t, analytics.Timeline, 5)
	})

	t.Run("Success: Streak counters attach when a streak exists", func(t *testing.T) {
		t.Parallel()
		f := newAnalyticsFixture(t, now)
		habit := f.addHabit(t, "Read")

		streak := domain.NewStreak(f.userID, habit.ID, now)
		streak.CurrentStreak = 3
		streak.LongestStreak = 9
		require.NoError(t, f.streaks.Save(context.Background(), streak))

		analytics, err := f.svc.GetHabitAnalytics(context.Background(), f.userID, habit.ID, 30)
		require.NoError(t, err)
		assert.Equal(t, 3, analytics.CurrentStreak)
		assert.Equal(t, 9, analytics.LongestStreak)
	})

	t.Run("Edge Case: Missing streak record is tolerated", func(t *testing.T) {
		t.Parallel()
		f := newAnalyticsFixture(t, now)
		habit := f.addHabit(t, "Read")

		analytics, err := f.svc.GetHabitAnalytics(context.Background(), f.userID, habit.ID, 30)
		require.NoError(t, err)
		assert.Zero(t, analytics.CurrentStreak)
	})

	t.Run("Fail: Another user's habit is not found", func(t *testing.T) {
		t.Parallel()
		f := newAnalyticsFixture(t, now)
		habit := f.addHabit(t, "Read")

		_, err := f.svc.GetHabitAnalytics(context.Background(), "intruder", habit.ID, 30)
		assert.ErrorIs(t, err, domain.ErrHabitNotFound)
	})
}

func TestAnalyticsService_GetHeatmap(t *testing.T) {
	t.Parallel()

	t.Run("Success: Intensity scales against the observed maximum", func(t *testing.T) {
		t.Parallel()
		f := newAnalyticsFixture(t, day(2025, 3, 20))

		a := f.addHabit(t, "Read")
		b := f.addHabit(t, "Run")

		// Two completions on the 10th, one on the 11th, a miss on the 12th.
		f.log(t, a.ID, day(2025, 3, 10), true)
		f.log(t, b.ID, day(2025, 3, 10), true)
		f.log(t, a.ID, day(2025, 3, 11), true)
		f.log(t, a.ID, day(2025, 3, 12), false)

		cells, err := f.svc.GetHeatmap(context.Background(), f.userID)
		require.NoError(t, err)

		require.Len(t, cells, 2)
		assert.Equal(t, "2025-03-10", cells[0].Date)
		assert.Equal(t, 2, cells[0].Count)
		assert.Equal(t, 4, cells[0].Intensity)
		assert.Equal(t, "2025-03-11", cells[1].Date)
		assert.Equal(t, 1, cells[1].Count)
		assert.Equal(t, 2, cells[1].Intensity)
	})

	t.Run("Edge Case: No completions produce no cells", func(t *testing.T) {
		t.Parallel()
		f := newAnalyticsFixture(t, day(2025, 3, 20))

		cells, err := f.svc.GetHeatmap(context.Background(), f.userID)
		require.NoError(t, err)
		assert.Empty(t, cells)
	})
}

func TestAnalyticsService_CompareHabits(t *testing.T) {
	t.Parallel()

	t.Run("Success: Ranked by completion rate", func(t *testing.T) {
		t.Parallel()
		f := newAnalyticsFixture(t, day(2025, 3, 20))

		a := f.addHabit(t, "Read")
		b := f.addHabit(t, "Run")

		f.log(t, a.ID, day(2025, 3, 18), true)
		f.log(t, a.ID, day(2025, 3, 19), false)
		f.log(t, b.ID, day(2025, 3, 19), true)

		comparisons, err := f.svc.CompareHabits(context.Background(), f.userID, 30)
		require.NoError(t, err)

		require.Len(t, comparisons, 2)
		assert.Equal(t, b.ID, comparisons[0].HabitID)
		assert.InDelta(t, 100.0, comparisons[0].CompletionRate, 0.01)
		assert.Equal(t, a.ID, comparisons[1].HabitID)
		assert.InDelta(t, 50.0, comparisons[1].CompletionRate, 0.01)
	})
}

func TestAnalyticsService_GetWeekdayWeekendSplit(t *testing.T) {
	t.Parallel()

	t.Run("Success: Weekend and weekday rates are independent", func(t *testing.T) {
		t.Parallel()
		f := newAnalyticsFixture(t, day(2025, 3, 20))
		habit := f.addHabit(t, "Read")

		// Weekdays: 1 of 2. Weekend: 1 of 1.
		f.log(t, habit.ID, day(2025, 3, 17), true)  // Monday
		f.log(t, habit.ID, day(2025, 3, 18), false) // Tuesday
		f.log(t, habit.ID, day(2025, 3, 15), true)  // Saturday

		split, err := f.svc.GetWeekdayWeekendSplit(context.Background(), f.userID)
		require.NoError(t, err)

		assert.InDelta(t, 50.0, split.WeekdayRate, 0.01)
		assert.InDelta(t, 100.0, split.WeekendRate, 0.01)
	})
}
