package http

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ashu2906-design/habit-flow/internal/core/domain"
)

func TestInsightHandler(t *testing.T) {
	t.Parallel()

	t.Run("Success: Generate on demand and list", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)
		env.createHabit(t, "Read")

		w := env.do(t, http.MethodPost, "/insights/generate", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"count"`)

		w = env.do(t, http.MethodGet, "/insights", nil)
		require.Equal(t, http.StatusOK, w.Code)

		var insights []domain.Insight
		decodeBody(t, w, &insights)
		assert.NotEmpty(t, insights)
	})

	t.Run("Success: Mark read removes from the unread list", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)
		env.createHabit(t, "Read")

		w := env.do(t, http.MethodPost, "/insights/generate", nil)
		require.Equal(t, http.StatusOK, w.Code)

		unread, err := env.insightSvc.ListForUser(context.Background(), env.user.ID, true)
		require.NoError(t, err)
		require.NotEmpty(t, unread)

		w = env.do(t, http.MethodPost, "/insights/"+unread[0].ID+"/read", nil)
		require.Equal(t, http.StatusNoContent, w.Code)

		remaining, err := env.insightSvc.ListForUser(context.Background(), env.user.ID, true)
		require.NoError(t, err)
		assert.Len(t, remaining, len(unread)-1)
	})

	t.Run("Fail: Marking an unknown insight maps to 404", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)

		w := env.do(t, http.MethodPost, "/insights/nope/read", nil)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("Success: Patterns report", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)
		habit := env.createHabit(t, "Read")

		w := env.do(t, http.MethodPost, "/habits/"+habit.ID+"/logs", gin.H{
			"date":      "2025-03-10",
			"completed": true,
		})
		require.Equal(t, http.StatusOK, w.Code)

		w = env.do(t, http.MethodGet, "/insights/patterns", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"best_day":"Monday"`)
	})

	t.Run("Success: Best time suggestion for a habit", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)
		habit := env.createHabit(t, "Read")

		w := env.do(t, http.MethodGet, "/habits/"+habit.ID+"/best-time", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"confidence":"low"`)
	})
}

func TestAnalyticsHandler(t *testing.T) {
	t.Parallel()

	t.Run("Success: Overview aggregates", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)
		habit := env.createHabit(t, "Read")

		w := env.do(t, http.MethodPost, "/habits/"+habit.ID+"/logs", gin.H{"completed": true})
		require.Equal(t, http.StatusOK, w.Code)

		w = env.do(t, http.MethodGet, "/analytics/overview", nil)
		require.Equal(t, http.StatusOK, w.Code)

		var stats domain.OverallStats
		decodeBody(t, w, &stats)
		assert.Equal(t, 1, stats.TotalHabits)
		assert.Equal(t, 1, stats.TotalCompletions)
	})

	t.Run("Success: Habit detail with days filter", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)
		habit := env.createHabit(t, "Read")

		w := env.do(t, http.MethodPost, "/habits/"+habit.ID+"/logs", gin.H{"completed": true})
		require.Equal(t, http.StatusOK, w.Code)

		w = env.do(t, http.MethodGet, "/habits/"+habit.ID+"/analytics?days=7", nil)
		require.Equal(t, http.StatusOK, w.Code)

		var analytics domain.HabitAnalytics
		decodeBody(t, w, &analytics)
		assert.Equal(t, habit.ID, analytics.HabitID)
		assert.Equal(t, 1, analytics.TotalCompletions)
	})

	t.Run("Fail: Unknown habit maps to 404", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)

		w := env.do(t, http.MethodGet, "/habits/nope/analytics", nil)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("Success: Heatmap, compare, and weekday split respond", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)
		habit := env.createHabit(t, "Read")

		w := env.do(t, http.MethodPost, "/habits/"+habit.ID+"/logs", gin.H{"completed": true})
		require.Equal(t, http.StatusOK, w.Code)

		for _, path := range []string{"/analytics/heatmap", "/analytics/compare", "/analytics/weekday-split"} {
			w = env.do(t, http.MethodGet, path, nil)
			assert.Equal(t, http.StatusOK, w.Code, path)
		}
	})
}
