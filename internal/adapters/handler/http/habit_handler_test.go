package http

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ashu2906-design/habit-flow/internal/core/domain"
	"github.com/ashu2906-design/habit-flow/internal/core/services"
)

func TestHabitHandler_Create(t *testing.T) {
	t.Parallel()

	t.Run("Success: Habit created with defaults", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)

		w := env.do(t, http.MethodPost, "/habits", gin.H{"name": "Read"})

		require.Equal(t, http.StatusCreated, w.Code)

		var habit domain.Habit
		decodeBody(t, w, &habit)
		assert.Equal(t, "Read", habit.Name)
		assert.Equal(t, env.user.ID, habit.UserID)
		assert.Equal(t, domain.DifficultyMedium, habit.Difficulty)
	})

	t.Run("Fail: Missing name is a binding error", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)

		w := env.do(t, http.MethodPost, "/habits", gin.H{"description": "no name"})

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Fail: Invalid category maps to 400", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)

		w := env.do(t, http.MethodPost, "/habits", gin.H{"name": "Read", "category": "gaming"})

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestHabitHandler_GetAndList(t *testing.T) {
	t.Parallel()

	t.Run("Success: Fetch by id", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)
		habit := env.createHabit(t, "Read")

		w := env.do(t, http.MethodGet, "/habits/"+habit.ID, nil)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), habit.ID)
	})

	t.Run("Fail: Unknown id maps to 404", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)

		w := env.do(t, http.MethodGet, "/habits/does-not-exist", nil)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("Success: Archived habits appear only when requested", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)
		env.createHabit(t, "Read")
		archived := env.createHabit(t, "Run")
		_, err := env.habitSvc.Archive(context.Background(), env.user.ID, archived.ID)
		require.NoError(t, err)

		w := env.do(t, http.MethodGet, "/habits", nil)
		require.Equal(t, http.StatusOK, w.Code)
		var active []domain.Habit
		decodeBody(t, w, &active)
		assert.Len(t, active, 1)

		w = env.do(t, http.MethodGet, "/habits?include_archived=true", nil)
		require.Equal(t, http.StatusOK, w.Code)
		var all []domain.Habit
		decodeBody(t, w, &all)
		assert.Len(t, all, 2)
	})
}

func TestHabitHandler_Lifecycle(t *testing.T) {
	t.Parallel()

	t.Run("Success: Pause and resume round trip", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)
		habit := env.createHabit(t, "Read")

		until := time.Date(2025, 3, 20, 0, 0, 0, 0, time.UTC)
		w := env.do(t, http.MethodPost, "/habits/"+habit.ID+"/pause", gin.H{"until": until})
		require.Equal(t, http.StatusOK, w.Code)

		var paused domain.Habit
		decodeBody(t, w, &paused)
		assert.True(t, paused.IsPaused)

		w = env.do(t, http.MethodPost, "/habits/"+habit.ID+"/resume", nil)
		require.Equal(t, http.StatusOK, w.Code)

		var resumed domain.Habit
		decodeBody(t, w, &resumed)
		assert.False(t, resumed.IsPaused)
	})

	t.Run("Fail: Resuming an unpaused habit maps to 409", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)
		habit := env.createHabit(t, "Read")

		w := env.do(t, http.MethodPost, "/habits/"+habit.ID+"/resume", nil)

		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("Fail: Updating an archived habit maps to 409", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)
		habit := env.createHabit(t, "Read")

		w := env.do(t, http.MethodPost, "/habits/"+habit.ID+"/archive", nil)
		require.Equal(t, http.StatusOK, w.Code)

		w = env.do(t, http.MethodPut, "/habits/"+habit.ID, gin.H{"name": "Read more"})
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("Success: Delete removes the habit", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)
		habit := env.createHabit(t, "Read")

		w := env.do(t, http.MethodDelete, "/habits/"+habit.ID, nil)
		require.Equal(t, http.StatusNoContent, w.Code)

		w = env.do(t, http.MethodGet, "/habits/"+habit.ID, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestHabitHandler_Difficulty(t *testing.T) {
	t.Parallel()

	t.Run("Success: Suggestion for an opted-in habit", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)

		habit, err := env.habitSvc.Create(context.Background(), env.user.ID, services.CreateHabitInput{
			Name:                 "Pushups",
			Category:             domain.CategoryHealth,
			AutoAdjustDifficulty: true,
		})
		require.NoError(t, err)

		for i := 1; i <= 8; i++ {
			d := env.clock.now.AddDate(0, 0, -i)
			log := domain.NewHabitLog(env.user.ID, habit.ID, d)
			log.MarkCompleted(d.Add(8 * time.Hour))
			require.NoError(t, env.logs.Upsert(context.Background(), log))
		}

		w := env.do(t, http.MethodGet, "/habits/"+habit.ID+"/difficulty", nil)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"should_adjust":true`)
		assert.Contains(t, w.Body.String(), domain.DifficultyHard)
	})

	t.Run("Success: Apply writes the new level", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)
		habit := env.createHabit(t, "Pushups")

		w := env.do(t, http.MethodPut, "/habits/"+habit.ID+"/difficulty", gin.H{"difficulty": "hard"})

		require.Equal(t, http.StatusOK, w.Code)

		var updated domain.Habit
		decodeBody(t, w, &updated)
		assert.Equal(t, domain.DifficultyHard, updated.Difficulty)
	})

	t.Run("Fail: Invalid level maps to 400", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)
		habit := env.createHabit(t, "Pushups")

		w := env.do(t, http.MethodPut, "/habits/"+habit.ID+"/difficulty", gin.H{"difficulty": "impossible"})

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
