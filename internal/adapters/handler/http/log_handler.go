package http

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ashu2906-design/habit-flow/internal/adapters/handler/http/middleware"
	"github.com/ashu2906-design/habit-flow/internal/core/domain"
	"github.com/ashu2906-design/habit-flow/internal/core/services"
)

type LogHandler struct {
	svc *services.LogService
}

func NewLogHandler(svc *services.LogService) *LogHandler {
	return &LogHandler{
		svc: svc,
	}
}

type logRequest struct {
	Date               string `json:"date"`
	Completed          bool   `json:"completed"`
	Mood               string `json:"mood"`
	DifficultyFeedback string `json:"difficulty_feedback"`
	DurationMinutes    int    `json:"duration_minutes"`
	Notes              string `json:"notes"`
}

type forgiveRequest struct {
	LogID  string `json:"log_id" binding:"required"`
	Reason string `json:"reason"`
}

func (h *LogHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/today", h.Today)

	logs := router.Group("/habits/:id/logs")
	{
		logs.POST("", h.Log)
		logs.POST("/forgive", h.Forgive)
		logs.GET("/calendar", h.Calendar)
	}
}

func (h *LogHandler) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrHabitNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "habit not found"})
	case errors.Is(err, domain.ErrLogNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "log not found"})
	case errors.Is(err, domain.ErrHabitArchived):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrForgivenessExhausted):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrInvalidMood),
		errors.Is(err, domain.ErrInvalidFeedback),
		errors.Is(err, domain.ErrNotesTooLong):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

func (h *LogHandler) Log(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "user context missing"})
		return
	}

	var req logRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	input := services.LogInput{
		Completed:          req.Completed,
		Mood:               req.Mood,
		DifficultyFeedback: req.DifficultyFeedback,
		DurationMinutes:    req.DurationMinutes,
		Notes:              req.Notes,
	}
	if req.Date != "" {
		day, err := time.Parse("2006-01-02", req.Date)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date format, use YYYY-MM-DD"})
			return
		}
		input.Date = day
	}

	result, err := h.svc.LogHabit(c.Request.Context(), userID, c.Param("id"), input)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *LogHandler) Forgive(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "user context missing"})
		return
	}

	var req forgiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.svc.ForgiveLog(c.Request.Context(), userID, c.Param("id"), req.LogID, req.Reason)
	if err != nil {
		if errors.Is(err, domain.ErrStreakNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "no streak for this habit"})
			return
		}
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *LogHandler) Today(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "user context missing"})
		return
	}

	view, err := h.svc.GetToday(c.Request.Context(), userID)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

func (h *LogHandler) Calendar(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "user context missing"})
		return
	}

	year, err := strconv.Atoi(c.Query("year"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "year query parameter required"})
		return
	}
	month, err := strconv.Atoi(c.Query("month"))
	if err != nil || month < 1 || month > 12 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "month query parameter must be 1-12"})
		return
	}

	records, err := h.svc.GetCalendar(c.Request.Context(), userID, c.Param("id"), year, time.Month(month))
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, records)
}
