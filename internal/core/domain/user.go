package domain

import (
	"errors"
	"net/mail"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailAlreadyExists = errors.New("email already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidEmail       = errors.New("invalid email format")
	ErrUsernameTooShort   = errors.New("username must be at least 3 characters")
	ErrPasswordTooShort   = errors.New("password must be at least 8 characters long")
	ErrInvalidReminder    = errors.New("invalid reminder time (must be HH:MM 24h)")
	ErrInvalidWeekStart   = errors.New("week must start on Monday or Sunday")
)

var reminderRegex = regexp.MustCompile(`^([0-1][0-9]|2[0-3]):[0-5][0-9]$`)

const (
	WeekStartMonday = "Monday"
	WeekStartSunday = "Sunday"

	DefaultReminderTime = "09:00"
)

// Preferences drive the reminder sweep and the forgiveness rules.
type Preferences struct {
	ReminderTime    string `json:"reminder_time"`
	WeekStartsOn    string `json:"week_starts_on"`
	ForgivenessMode bool   `json:"forgiveness_mode"`
}

// UserStats is a denormalized aggregate, refreshed by the log service.
type UserStats struct {
	TotalHabits      int `json:"total_habits"`
	TotalCompletions int `json:"total_completions"`
	LongestStreak    int `json:"longest_streak"`
}

type User struct {
	ID           string `json:"id" db:"id"`
	Username     string `json:"username" db:"username"`
	Email        string `json:"email" db:"email"`
	PasswordHash string `json:"-" db:"password_hash"`

	Preferences Preferences `json:"preferences"`
	Stats       UserStats   `json:"stats"`

	IsActive  bool      `json:"is_active" db:"is_active"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

func NewUser(id, username, email string) (*User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)

	if utf8.RuneCountInString(username) < 3 {
		return nil, ErrUsernameTooShort
	}
	if !isValidEmail(email) {
		return nil, ErrInvalidEmail
	}

	now := time.Now().UTC()
	return &User{
		ID:       id,
		Username: username,
		Email:    strings.ToLower(email),
		Preferences: Preferences{
			ReminderTime:    DefaultReminderTime,
			WeekStartsOn:    WeekStartMonday,
			ForgivenessMode: true,
		},
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func (u *User) SetPassword(plainPassword string) error {
	if utf8.RuneCountInString(plainPassword) < 8 {
		return ErrPasswordTooShort
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(plainPassword), 12)
	if err != nil {
		return err
	}

	u.PasswordHash = string(hash)
	u.UpdatedAt = time.Now().UTC()
	return nil
}

func (u *User) CheckPassword(plainPassword string) error {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(plainPassword))
}

func (u *User) UpdatePreferences(p Preferences) error {
	if p.ReminderTime != "" && !reminderRegex.MatchString(p.ReminderTime) {
		return ErrInvalidReminder
	}
	if p.WeekStartsOn != WeekStartMonday && p.WeekStartsOn != WeekStartSunday {
		return ErrInvalidWeekStart
	}

	if p.ReminderTime == "" {
		p.ReminderTime = u.Preferences.ReminderTime
	}
	u.Preferences = p
	u.UpdatedAt = time.Now().UTC()
	return nil
}

// ReminderHour parses the hour component of the preferred reminder time.
func (u *User) ReminderHour() (int, bool) {
	parts := strings.SplitN(u.Preferences.ReminderTime, ":", 2)
	if len(parts) != 2 {
		return 0, false
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, false
	}
	return hour, true
}

func isValidEmail(email string) bool {
	_, err := mail.ParseAddress(email)
	return err == nil
}
