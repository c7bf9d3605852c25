package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/ashu2906-design/habit-flow/internal/adapters/handler/http/middleware"
	"github.com/ashu2906-design/habit-flow/internal/adapters/repository"
	"github.com/ashu2906-design/habit-flow/internal/core/domain"
	"github.com/ashu2906-design/habit-flow/internal/core/services"
)

type fixedClock struct {
	now time.Time
}

func (c *fixedClock) Now() time.Time { return c.now }

func day(year int, month time.Month, d int) time.Time {
	return time.Date(year, month, d, 0, 0, 0, 0, time.UTC)
}

type nopNotifier struct{}

func (nopNotifier) SendDailyReminder(ctx context.Context, user *domain.User, pending []*domain.Habit) error {
	return nil
}
func (nopNotifier) NotifyMilestone(ctx context.Context, user *domain.User, habitName string, days int) error {
	return nil
}
func (nopNotifier) SendWeeklySummary(ctx context.Context, user *domain.User, insights []*domain.Insight) error {
	return nil
}

// testEnv wires the full service stack over in-memory repositories with a
// fixed clock, plus a router whose protected routes run as a known user.
type testEnv struct {
	router *gin.Engine
	clock  *fixedClock

	users    *repository.InMemoryUserRepository
	habits   *repository.InMemoryHabitRepository
	logs     *repository.InMemoryHabitLogRepository
	streaks  *repository.InMemoryStreakRepository
	insights *repository.InMemoryInsightRepository
	pairings *repository.InMemoryAccountabilityRepository

	authSvc       *services.AuthService
	habitSvc      *services.HabitService
	logSvc        *services.LogService
	streakSvc     *services.StreakService
	insightSvc    *services.InsightService
	analyticsSvc  *services.AnalyticsService
	difficultySvc *services.DifficultyService
	socialSvc     *services.SocialService

	user *domain.User
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	env := &testEnv{
		clock:    &fixedClock{now: day(2025, 3, 12)},
		users:    repository.NewInMemoryUserRepository(),
		habits:   repository.NewInMemoryHabitRepository(),
		logs:     repository.NewInMemoryHabitLogRepository(),
		streaks:  repository.NewInMemoryStreakRepository(),
		insights: repository.NewInMemoryInsightRepository(),
		pairings: repository.NewInMemoryAccountabilityRepository(),
	}

	tokens := services.NewTokenService("test-secret", "habit-flow-test", time.Hour, env.users)
	env.authSvc = services.NewAuthService(env.users, tokens)
	env.streakSvc = services.NewStreakService(env.streaks, env.logs, env.habits, env.users, env.clock)
	env.insightSvc = services.NewInsightService(env.habits, env.logs, env.insights, env.clock)
	env.difficultySvc = services.NewDifficultyService(env.habits, env.logs, env.clock)
	env.habitSvc = services.NewHabitService(env.habits, env.streaks, env.clock)
	env.logSvc = services.NewLogService(env.logs, env.habits, env.users, env.streakSvc, nopNotifier{}, env.clock)
	env.analyticsSvc = services.NewAnalyticsService(env.habits, env.logs, env.streaks, env.clock)
	env.socialSvc = services.NewSocialService(env.pairings, env.users, env.habits, env.streaks, env.clock)

	user, err := domain.NewUser("user-1", "tester", "tester@example.com")
	require.NoError(t, err)
	require.NoError(t, user.SetPassword("supersecret"))
	require.NoError(t, env.users.Create(context.Background(), user))
	env.user = user

	router := gin.New()
	api := router.Group("")

	authHandler := NewAuthHandler(env.authSvc)
	authHandler.RegisterRoutes(api)

	protected := api.Group("")
	protected.Use(func(c *gin.Context) {
		c.Set(middleware.ContextUserIDKey, user.ID)
		c.Next()
	})
	authHandler.RegisterProtectedRoutes(protected)
	NewHabitHandler(env.habitSvc, env.difficultySvc).RegisterRoutes(protected)
	NewLogHandler(env.logSvc).RegisterRoutes(protected)
	NewStreakHandler(env.streakSvc).RegisterRoutes(protected)
	NewInsightHandler(env.insightSvc).RegisterRoutes(protected)
	NewAnalyticsHandler(env.analyticsSvc).RegisterRoutes(protected)
	NewSocialHandler(env.socialSvc).RegisterRoutes(protected)

	env.router = router
	return env
}

func (env *testEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, out any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), out))
}

func (env *testEnv) createHabit(t *testing.T, name string) *domain.Habit {
	t.Helper()
	habit, err := env.habitSvc.Create(context.Background(), env.user.ID, services.CreateHabitInput{
		Name:     name,
		Category: domain.CategoryHealth,
	})
	require.NoError(t, err)
	return habit
}
