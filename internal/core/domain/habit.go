package domain

import (
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrHabitNameEmpty     = errors.New("habit name cannot be empty")
	ErrHabitNameTooLong   = errors.New("habit name is too long (max 100 chars)")
	ErrHabitDescTooLong   = errors.New("habit description is too long (max 500 chars)")
	ErrHabitInvalidUserID = errors.New("invalid user id")
	ErrInvalidCategory    = errors.New("invalid habit category")
	ErrInvalidDifficulty  = errors.New("invalid difficulty (must be easy, medium, or hard)")
	ErrInvalidColor       = errors.New("invalid color format (must be #RRGGBB)")
	ErrHabitArchived      = errors.New("cannot update an archived habit")
	ErrHabitNotPaused     = errors.New("habit is not paused")
)

var colorRegex = regexp.MustCompile(`^#([A-Fa-f0-9]{6}|[A-Fa-f0-9]{3})$`)

const (
	CategoryHealth       = "health"
	CategoryProductivity = "productivity"
	CategoryMindfulness  = "mindfulness"
	CategoryLearning     = "learning"
	CategorySocial       = "social"
	CategoryFinance      = "finance"
	CategoryOther        = "other"

	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"

	DefaultIcon  = "star"
	DefaultColor = "#6366f1"
	MaxNameLen   = 100
	MaxDescLen   = 500
)

var Categories = []string{
	CategoryHealth, CategoryProductivity, CategoryMindfulness,
	CategoryLearning, CategorySocial, CategoryFinance, CategoryOther,
}

func ValidCategory(c string) bool {
	for _, v := range Categories {
		if c == v {
			return true
		}
	}
	return false
}

func ValidDifficulty(d string) bool {
	return d == DifficultyEasy || d == DifficultyMedium || d == DifficultyHard
}

// StepUpDifficulty returns the next harder level, or the same level at the top.
func StepUpDifficulty(d string) string {
	switch d {
	case DifficultyEasy:
		return DifficultyMedium
	case DifficultyMedium:
		return DifficultyHard
	default:
		return d
	}
}

// StepDownDifficulty returns the next easier level, or the same level at the bottom.
func StepDownDifficulty(d string) string {
	switch d {
	case DifficultyHard:
		return DifficultyMedium
	case DifficultyMedium:
		return DifficultyEasy
	default:
		return d
	}
}

// HabitStats is a denormalized read model maintained by the log and streak
// services. The Streak record is the source of truth for streak lengths.
type HabitStats struct {
	TotalCompletions int        `json:"total_completions" db:"total_completions"`
	CurrentStreak    int        `json:"current_streak" db:"current_streak"`
	LongestStreak    int        `json:"longest_streak" db:"longest_streak"`
	SuccessRate      float64    `json:"success_rate" db:"success_rate"`
	LastCompleted    *time.Time `json:"last_completed,omitempty" db:"last_completed"`
}

type Habit struct {
	ID          string `json:"id" db:"id"`
	UserID      string `json:"user_id" db:"user_id"`
	Name        string `json:"name" db:"name"`
	Description string `json:"description,omitempty" db:"description"`
	Category    string `json:"category" db:"category"`
	Icon        string `json:"icon" db:"icon"`
	Color       string `json:"color" db:"color"`

	Difficulty           string `json:"difficulty" db:"difficulty"`
	AutoAdjustDifficulty bool   `json:"auto_adjust_difficulty" db:"auto_adjust_difficulty"`

	IsActive    bool       `json:"is_active" db:"is_active"`
	IsPaused    bool       `json:"is_paused" db:"is_paused"`
	PausedUntil *time.Time `json:"paused_until,omitempty" db:"paused_until"`

	Stats HabitStats `json:"stats"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

func validateHabitFields(name, desc, category, difficulty, color string) error {
	if strings.TrimSpace(name) == "" {
		return ErrHabitNameEmpty
	}
	if len(strings.TrimSpace(name)) > MaxNameLen {
		return ErrHabitNameTooLong
	}
	if len(strings.TrimSpace(desc)) > MaxDescLen {
		return ErrHabitDescTooLong
	}
	if !ValidCategory(category) {
		return ErrInvalidCategory
	}
	if !ValidDifficulty(difficulty) {
		return ErrInvalidDifficulty
	}
	if color != "" && !colorRegex.MatchString(color) {
		return ErrInvalidColor
	}
	return nil
}

func NewHabit(userID, name, description, category, icon, color, difficulty string, autoAdjust bool) (*Habit, error) {
	if userID == "" {
		return nil, ErrHabitInvalidUserID
	}

	if category == "" {
		category = CategoryOther
	}
	if difficulty == "" {
		difficulty = DifficultyMedium
	}
	if icon == "" {
		icon = DefaultIcon
	}
	if color == "" {
		color = DefaultColor
	}

	if err := validateHabitFields(name, description, category, difficulty, color); err != nil {
		return nil, err
	}

	now := time.Now().UTC()

	return &Habit{
		ID:                   uuid.New().String(),
		UserID:               userID,
		Name:                 strings.TrimSpace(name),
		Description:          strings.TrimSpace(description),
		Category:             category,
		Icon:                 icon,
		Color:                color,
		Difficulty:           difficulty,
		AutoAdjustDifficulty: autoAdjust,
		IsActive:             true,
		CreatedAt:            now,
		UpdatedAt:            now,
	}, nil
}

func (h *Habit) Update(name, description, category, icon, color, difficulty string, autoAdjust bool) error {
	if !h.IsActive {
		return ErrHabitArchived
	}

	if err := validateHabitFields(name, description, category, difficulty, color); err != nil {
		return err
	}

	h.Name = strings.TrimSpace(name)
	h.Description = strings.TrimSpace(description)
	h.Category = category
	h.Icon = icon
	h.Color = color
	h.Difficulty = difficulty
	h.AutoAdjustDifficulty = autoAdjust
	h.UpdatedAt = time.Now().UTC()

	return nil
}

// Pause suspends streak tracking until the given date. A nil until pauses
// indefinitely.
func (h *Habit) Pause(until *time.Time) error {
	if !h.IsActive {
		return ErrHabitArchived
	}

	h.IsPaused = true
	h.PausedUntil = until
	h.UpdatedAt = time.Now().UTC()
	return nil
}

func (h *Habit) Resume() error {
	if !h.IsPaused {
		return ErrHabitNotPaused
	}

	h.IsPaused = false
	h.PausedUntil = nil
	h.UpdatedAt = time.Now().UTC()
	return nil
}

func (h *Habit) Archive() {
	if !h.IsActive {
		return
	}

	h.IsActive = false
	h.UpdatedAt = time.Now().UTC()
}

func (h *Habit) Restore() {
	if h.IsActive {
		return
	}
	h.IsActive = true
	h.UpdatedAt = time.Now().UTC()
}

// Trackable reports whether the habit should be visited by the daily sweep:
// active and not currently paused as of the given day.
func (h *Habit) Trackable(day time.Time) bool {
	if !h.IsActive {
		return false
	}
	if !h.IsPaused {
		return true
	}
	// A pause with an expiry resumes tracking once the resume date passes.
	return h.PausedUntil != nil && !day.Before(StartOfDay(*h.PausedUntil))
}
