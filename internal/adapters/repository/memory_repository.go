package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/ashu2906-design/habit-flow/internal/core/domain"
)

// In-memory implementations of every repository port. Used by the test suite
// and by local development without a database.

type InMemoryHabitRepository struct {
	store map[string]*domain.Habit

	mu sync.RWMutex
}

func NewInMemoryHabitRepository() *InMemoryHabitRepository {
	return &InMemoryHabitRepository{
		store: make(map[string]*domain.Habit),
	}
}

func (r *InMemoryHabitRepository) Create(ctx context.Context, habit *domain.Habit) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.store[habit.ID] = habit
	return nil
}

func (r *InMemoryHabitRepository) GetByID(ctx context.Context, id string) (*domain.Habit, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	habit, ok := r.store[id]
	if !ok {
		return nil, domain.ErrHabitNotFound
	}
	return habit, nil
}

func (r *InMemoryHabitRepository) ListByUserID(ctx context.Context, userID string) ([]*domain.Habit, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var habits []*domain.Habit
	for _, h := range r.store {
		if h.UserID == userID {
			habits = append(habits, h)
		}
	}

	sort.Slice(habits, func(i, j int) bool {
		return habits[i].CreatedAt.Before(habits[j].CreatedAt)
	})

	return habits, nil
}

func (r *InMemoryHabitRepository) ListActiveByUserID(ctx context.Context, userID string) ([]*domain.Habit, error) {
	all, err := r.ListByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	var habits []*domain.Habit
	for _, h := range all {
		if h.IsActive {
			habits = append(habits, h)
		}
	}
	return habits, nil
}

func (r *InMemoryHabitRepository) Update(ctx context.Context, habit *domain.Habit) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.store[habit.ID]; !ok {
		return domain.ErrHabitNotFound
	}

	r.store[habit.ID] = habit
	return nil
}

func (r *InMemoryHabitRepository) UpdateStats(ctx context.Context, id string, stats domain.HabitStats) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	habit, ok := r.store[id]
	if !ok {
		return domain.ErrHabitNotFound
	}

	habit.Stats = stats
	return nil
}

func (r *InMemoryHabitRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.store[id]; !ok {
		return domain.ErrHabitNotFound
	}

	delete(r.store, id)
	return nil
}

type InMemoryUserRepository struct {
	store map[string]*domain.User

	mu sync.RWMutex
}

func NewInMemoryUserRepository() *InMemoryUserRepository {
	return &InMemoryUserRepository{
		store: make(map[string]*domain.User),
	}
}

func (r *InMemoryUserRepository) Create(ctx context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.store {
		if strings.EqualFold(u.Email, user.Email) {
			return domain.ErrEmailAlreadyExists
		}
	}

	r.store[user.ID] = user
	return nil
}

func (r *InMemoryUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.store[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return user, nil
}

func (r *InMemoryUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.store {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *InMemoryUserRepository) Update(ctx context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.store[user.ID]; !ok {
		return domain.ErrUserNotFound
	}

	r.store[user.ID] = user
	return nil
}

func (r *InMemoryUserRepository) ListActive(ctx context.Context) ([]*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var users []*domain.User
	for _, u := range r.store {
		if u.IsActive {
			users = append(users, u)
		}
	}

	sort.Slice(users, func(i, j int) bool {
		return users[i].CreatedAt.Before(users[j].CreatedAt)
	})

	return users, nil
}

type InMemoryHabitLogRepository struct {
	store  map[string]*domain.HabitLog
	byDate map[string]string // (user, habit, day) key -> log ID

	mu sync.Mutex
}

func NewInMemoryHabitLogRepository() *InMemoryHabitLogRepository {
	return &InMemoryHabitLogRepository{
		store:  make(map[string]*domain.HabitLog),
		byDate: make(map[string]string),
	}
}

func logKey(userID, habitID string, day time.Time) string {
	return userID + "|" + habitID + "|" + domain.StartOfDay(day).Format("2006-01-02")
}

func (r *InMemoryHabitLogRepository) Upsert(ctx context.Context, log *domain.HabitLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := logKey(log.UserID, log.HabitID, log.Date)
	if existingID, ok := r.byDate[key]; ok && existingID != log.ID {
		// Preserve the key invariant: the day already has a record, so the
		// incoming write replaces it under the original ID.
		log.ID = existingID
	}

	r.store[log.ID] = log
	r.byDate[key] = log.ID
	return nil
}

func (r *InMemoryHabitLogRepository) CreateIfAbsent(ctx context.Context, log *domain.HabitLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := logKey(log.UserID, log.HabitID, log.Date)
	if _, ok := r.byDate[key]; ok {
		return nil
	}

	r.store[log.ID] = log
	r.byDate[key] = log.ID
	return nil
}

func (r *InMemoryHabitLogRepository) GetByID(ctx context.Context, id string) (*domain.HabitLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	log, ok := r.store[id]
	if !ok {
		return nil, domain.ErrLogNotFound
	}
	return log, nil
}

func (r *InMemoryHabitLogRepository) GetByDay(ctx context.Context, userID, habitID string, day time.Time) (*domain.HabitLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id, ok := r.byDate[logKey(userID, habitID, day)]
	if !ok {
		return nil, domain.ErrLogNotFound
	}
	return r.store[id], nil
}

func (r *InMemoryHabitLogRepository) ListByUserSince(ctx context.Context, userID string, since time.Time) ([]*domain.HabitLog, error) {
	return r.list(func(l *domain.HabitLog) bool {
		return l.UserID == userID && !l.Date.Before(since)
	}), nil
}

func (r *InMemoryHabitLogRepository) ListByHabitSince(ctx context.Context, userID, habitID string, since time.Time) ([]*domain.HabitLog, error) {
	return r.list(func(l *domain.HabitLog) bool {
		return l.UserID == userID && l.HabitID == habitID && !l.Date.Before(since)
	}), nil
}

func (r *InMemoryHabitLogRepository) ListByHabitRange(ctx context.Context, userID, habitID string, from, to time.Time) ([]*domain.HabitLog, error) {
	return r.list(func(l *domain.HabitLog) bool {
		return l.UserID == userID && l.HabitID == habitID &&
			!l.Date.Before(from) && !l.Date.After(to)
	}), nil
}

func (r *InMemoryHabitLogRepository) ListByUserAndDay(ctx context.Context, userID string, day time.Time) ([]*domain.HabitLog, error) {
	target := domain.StartOfDay(day)
	return r.list(func(l *domain.HabitLog) bool {
		return l.UserID == userID && domain.SameDay(l.Date, target)
	}), nil
}

func (r *InMemoryHabitLogRepository) list(match func(*domain.HabitLog) bool) []*domain.HabitLog {
	r.mu.Lock()
	defer r.mu.Unlock()

	var logs []*domain.HabitLog
	for _, l := range r.store {
		if match(l) {
			logs = append(logs, l)
		}
	}

	sort.Slice(logs, func(i, j int) bool {
		return logs[i].Date.Before(logs[j].Date)
	})

	return logs
}

type InMemoryStreakRepository struct {
	store map[string]*domain.Streak // keyed by (user, habit)

	mu sync.RWMutex
}

func NewInMemoryStreakRepository() *InMemoryStreakRepository {
	return &InMemoryStreakRepository{
		store: make(map[string]*domain.Streak),
	}
}

func streakKey(userID, habitID string) string {
	return userID + "|" + habitID
}

func (r *InMemoryStreakRepository) GetByUserAndHabit(ctx context.Context, userID, habitID string) (*domain.Streak, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	streak, ok := r.store[streakKey(userID, habitID)]
	if !ok {
		return nil, domain.ErrStreakNotFound
	}
	return streak, nil
}

func (r *InMemoryStreakRepository) Save(ctx context.Context, streak *domain.Streak) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.store[streakKey(streak.UserID, streak.HabitID)] = streak
	return nil
}

func (r *InMemoryStreakRepository) ListActiveByUserID(ctx context.Context, userID string) ([]*domain.Streak, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var streaks []*domain.Streak
	for _, s := range r.store {
		if s.UserID == userID && s.CurrentStreak > 0 {
			streaks = append(streaks, s)
		}
	}
	return streaks, nil
}

type InMemoryInsightRepository struct {
	store map[string]*domain.Insight

	mu sync.RWMutex
}

func NewInMemoryInsightRepository() *InMemoryInsightRepository {
	return &InMemoryInsightRepository{
		store: make(map[string]*domain.Insight),
	}
}

func (r *InMemoryInsightRepository) CreateBatch(ctx context.Context, insights []*domain.Insight) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, i := range insights {
		r.store[i.ID] = i
	}
	return nil
}

func (r *InMemoryInsightRepository) GetByID(ctx context.Context, id string) (*domain.Insight, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	insight, ok := r.store[id]
	if !ok {
		return nil, domain.ErrInsightNotFound
	}
	return insight, nil
}

func (r *InMemoryInsightRepository) ListByUserID(ctx context.Context, userID string, unreadOnly bool) ([]*domain.Insight, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var insights []*domain.Insight
	for _, i := range r.store {
		if i.UserID != userID {
			continue
		}
		if unreadOnly && i.IsRead {
			continue
		}
		insights = append(insights, i)
	}

	sort.Slice(insights, func(i, j int) bool {
		return insights[i].GeneratedAt.After(insights[j].GeneratedAt)
	})

	return insights, nil
}

func (r *InMemoryInsightRepository) MarkRead(ctx context.Context, id, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	insight, ok := r.store[id]
	if !ok || insight.UserID != userID {
		return domain.ErrInsightNotFound
	}

	insight.MarkRead()
	return nil
}

func (r *InMemoryInsightRepository) DeleteExpired(ctx context.Context, now time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	deleted := 0
	for id, i := range r.store {
		if i.Expired(now) {
			delete(r.store, id)
			deleted++
		}
	}
	return deleted, nil
}

type InMemoryAccountabilityRepository struct {
	store map[string]*domain.Accountability

	mu sync.RWMutex
}

func NewInMemoryAccountabilityRepository() *InMemoryAccountabilityRepository {
	return &InMemoryAccountabilityRepository{
		store: make(map[string]*domain.Accountability),
	}
}

func (r *InMemoryAccountabilityRepository) Create(ctx context.Context, pairing *domain.Accountability) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.store[pairing.ID] = pairing
	return nil
}

func (r *InMemoryAccountabilityRepository) GetByID(ctx context.Context, id string) (*domain.Accountability, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	pairing, ok := r.store[id]
	if !ok {
		return nil, domain.ErrAccountabilityNotFound
	}
	return pairing, nil
}

func (r *InMemoryAccountabilityRepository) GetByPair(ctx context.Context, userID, partnerID string) (*domain.Accountability, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.store {
		if (p.UserID == userID && p.PartnerID == partnerID) ||
			(p.UserID == partnerID && p.PartnerID == userID) {
			return p, nil
		}
	}
	return nil, domain.ErrAccountabilityNotFound
}

func (r *InMemoryAccountabilityRepository) ListByUserID(ctx context.Context, userID, status string) ([]*domain.Accountability, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var pairings []*domain.Accountability
	for _, p := range r.store {
		if !p.Involves(userID) {
			continue
		}
		if status != "" && p.Status != status {
			continue
		}
		pairings = append(pairings, p)
	}

	sort.Slice(pairings, func(i, j int) bool {
		return pairings[i].CreatedAt.Before(pairings[j].CreatedAt)
	})

	return pairings, nil
}

func (r *InMemoryAccountabilityRepository) Update(ctx context.Context, pairing *domain.Accountability) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.store[pairing.ID]; !ok {
		return domain.ErrAccountabilityNotFound
	}

	r.store[pairing.ID] = pairing
	return nil
}
