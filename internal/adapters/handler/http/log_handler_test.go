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

func TestLogHandler_Log(t *testing.T) {
	t.Parallel()

	t.Run("Success: Completion returns log and streak", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)
		habit := env.createHabit(t, "Read")

		w := env.do(t, http.MethodPost, "/habits/"+habit.ID+"/logs", gin.H{
			"completed": true,
			"mood":      domain.MoodGood,
		})

		require.Equal(t, http.StatusOK, w.Code)

		var body struct {
			Log    *domain.HabitLog `json:"log"`
			Streak *struct {
				CurrentStreak int `json:"current_streak"`
			} `json:"streak"`
		}
		decodeBody(t, w, &body)
		assert.True(t, body.Log.Completed)
		require.NotNil(t, body.Streak)
		assert.Equal(t, 1, body.Streak.CurrentStreak)
	})

	t.Run("Success: Explicit date is honored", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)
		habit := env.createHabit(t, "Read")

		w := env.do(t, http.MethodPost, "/habits/"+habit.ID+"/logs", gin.H{
			"date":      "2025-03-10",
			"completed": true,
		})

		require.Equal(t, http.StatusOK, w.Code)

		log, err := env.logs.GetByDay(context.Background(), env.user.ID, habit.ID, day(2025, 3, 10))
		require.NoError(t, err)
		assert.True(t, log.Completed)
	})

	t.Run("Fail: Malformed date maps to 400", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)
		habit := env.createHabit(t, "Read")

		w := env.do(t, http.MethodPost, "/habits/"+habit.ID+"/logs", gin.H{
			"date":      "10/03/2025",
			"completed": true,
		})

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Fail: Invalid mood maps to 400", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)
		habit := env.createHabit(t, "Read")

		w := env.do(t, http.MethodPost, "/habits/"+habit.ID+"/logs", gin.H{
			"completed": true,
			"mood":      "ecstatic",
		})

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Fail: Archived habit maps to 409", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)
		habit := env.createHabit(t, "Read")
		_, err := env.habitSvc.Archive(context.Background(), env.user.ID, habit.ID)
		require.NoError(t, err)

		w := env.do(t, http.MethodPost, "/habits/"+habit.ID+"/logs", gin.H{"completed": true})

		assert.Equal(t, http.StatusConflict, w.Code)
	})
}

func TestLogHandler_Today(t *testing.T) {
	t.Parallel()

	t.Run("Success: Daily check-in view", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)
		habit := env.createHabit(t, "Read")
		env.createHabit(t, "Run")

		w := env.do(t, http.MethodPost, "/habits/"+habit.ID+"/logs", gin.H{"completed": true})
		require.Equal(t, http.StatusOK, w.Code)

		w = env.do(t, http.MethodGet, "/today", nil)
		require.Equal(t, http.StatusOK, w.Code)

		var view struct {
			Completed int `json:"completed"`
			Total     int `json:"total"`
		}
		decodeBody(t, w, &view)
		assert.Equal(t, 1, view.Completed)
		assert.Equal(t, 2, view.Total)
	})
}

func TestLogHandler_Calendar(t *testing.T) {
	t.Parallel()

	t.Run("Success: Month view", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)
		habit := env.createHabit(t, "Read")

		w := env.do(t, http.MethodPost, "/habits/"+habit.ID+"/logs", gin.H{
			"date":      "2025-03-10",
			"completed": true,
		})
		require.Equal(t, http.StatusOK, w.Code)

		w = env.do(t, http.MethodGet, "/habits/"+habit.ID+"/logs/calendar?year=2025&month=3", nil)
		require.Equal(t, http.StatusOK, w.Code)

		var records []domain.HabitDayRecord
		decodeBody(t, w, &records)
		require.Len(t, records, 1)
		assert.Equal(t, "2025-03-10", records[0].Date)
	})

	t.Run("Fail: Missing year maps to 400", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)
		habit := env.createHabit(t, "Read")

		w := env.do(t, http.MethodGet, "/habits/"+habit.ID+"/logs/calendar?month=3", nil)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestLogHandler_Forgive(t *testing.T) {
	t.Parallel()

	t.Run("Success: Missed day excused", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)
		habit := env.createHabit(t, "Read")

		w := env.do(t, http.MethodPost, "/habits/"+habit.ID+"/logs", gin.H{
			"date":      "2025-03-10",
			"completed": true,
		})
		require.Equal(t, http.StatusOK, w.Code)

		missed := domain.NewHabitLog(env.user.ID, habit.ID, day(2025, 3, 11))
		require.NoError(t, env.logs.Upsert(context.Background(), missed))

		w = env.do(t, http.MethodPost, "/habits/"+habit.ID+"/logs/forgive", gin.H{
			"log_id": missed.ID,
			"reason": "sick",
		})

		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"forgiveness_remaining":1`)
	})

	t.Run("Fail: Exhausted quota maps to 422", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)
		habit := env.createHabit(t, "Read")

		w := env.do(t, http.MethodPost, "/habits/"+habit.ID+"/logs", gin.H{
			"date":      "2025-03-08",
			"completed": true,
		})
		require.Equal(t, http.StatusOK, w.Code)

		streak, err := env.streaks.GetByUserAndHabit(context.Background(), env.user.ID, habit.ID)
		require.NoError(t, err)
		streak.ForgivenessUsed = streak.MaxForgiveness
		require.NoError(t, env.streaks.Save(context.Background(), streak))

		missed := domain.NewHabitLog(env.user.ID, habit.ID, day(2025, 3, 11))
		require.NoError(t, env.logs.Upsert(context.Background(), missed))

		w = env.do(t, http.MethodPost, "/habits/"+habit.ID+"/logs/forgive", gin.H{"log_id": missed.ID})

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})
}
