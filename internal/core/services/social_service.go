package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/ashu2906-design/habit-flow/internal/core/domain"
)

// SocialService manages accountability pairings and what partners can see of
// each other.
type SocialService struct {
	pairings domain.AccountabilityRepository
	users    domain.UserRepository
	habits   domain.HabitRepository
	streaks  domain.StreakRepository
	clock    domain.Clock
}

func NewSocialService(
	pairings domain.AccountabilityRepository,
	users domain.UserRepository,
	habits domain.HabitRepository,
	streaks domain.StreakRepository,
	clock domain.Clock,
) *SocialService {
	return &SocialService{
		pairings: pairings,
		users:    users,
		habits:   habits,
		streaks:  streaks,
		clock:    clock,
	}
}

// RequestPairing invites another user by email. Only one pairing may exist
// per pair of users, in either direction.
func (s *SocialService) RequestPairing(ctx context.Context, userID, partnerEmail string) (*domain.Accountability, error) {
	partner, err := s.users.GetByEmail(ctx, partnerEmail)
	if err != nil {
		return nil, err
	}

	existing, err := s.pairings.GetByPair(ctx, userID, partner.ID)
	if err != nil && !errors.Is(err, domain.ErrAccountabilityNotFound) {
		return nil, err
	}
	if existing != nil && existing.Status != domain.PairingRejected {
		return nil, domain.ErrPairingExists
	}

	pairing, err := domain.NewAccountability(userID, partner.ID)
	if err != nil {
		return nil, err
	}

	if err := s.pairings.Create(ctx, pairing); err != nil {
		return nil, fmt.Errorf("social service: failed to create pairing: %w", err)
	}

	return pairing, nil
}

// RespondToPairing accepts or rejects a pending request. Only the invited
// side may respond.
func (s *SocialService) RespondToPairing(ctx context.Context, userID, pairingID string, accept bool) (*domain.Accountability, error) {
	pairing, err := s.pairings.GetByID(ctx, pairingID)
	if err != nil {
		return nil, err
	}
	if pairing.PartnerID != userID {
		return nil, domain.ErrAccountabilityNotFound
	}

	if accept {
		err = pairing.Accept(s.clock.Now())
	} else {
		err = pairing.Reject()
	}
	if err != nil {
		return nil, err
	}

	if err := s.pairings.Update(ctx, pairing); err != nil {
		return nil, fmt.Errorf("social service: failed to update pairing: %w", err)
	}

	return pairing, nil
}

func (s *SocialService) ListPairings(ctx context.Context, userID, status string) ([]*domain.Accountability, error) {
	return s.pairings.ListByUserID(ctx, userID, status)
}

// ShareHabit exposes one of the caller's habits to the partner.
func (s *SocialService) ShareHabit(ctx context.Context, userID, pairingID, habitID string) (*domain.Accountability, error) {
	pairing, err := s.pairings.GetByID(ctx, pairingID)
	if err != nil {
		return nil, err
	}
	if !pairing.Involves(userID) {
		return nil, domain.ErrAccountabilityNotFound
	}

	habit, err := s.habits.GetByID(ctx, habitID)
	if err != nil {
		return nil, err
	}
	if habit.UserID != userID {
		return nil, domain.ErrHabitNotFound
	}

	if err := pairing.ShareHabit(habitID); err != nil {
		return nil, err
	}

	if err := s.pairings.Update(ctx, pairing); err != nil {
		return nil, fmt.Errorf("social service: failed to share habit: %w", err)
	}

	return pairing, nil
}

func (s *SocialService) UnshareHabit(ctx context.Context, userID, pairingID, habitID string) (*domain.Accountability, error) {
	pairing, err := s.pairings.GetByID(ctx, pairingID)
	if err != nil {
		return nil, err
	}
	if !pairing.Involves(userID) {
		return nil, domain.ErrAccountabilityNotFound
	}

	pairing.UnshareHabit(habitID)

	if err := s.pairings.Update(ctx, pairing); err != nil {
		return nil, fmt.Errorf("social service: failed to unshare habit: %w", err)
	}

	return pairing, nil
}

// SharedHabitView is what a partner sees of one shared habit: identity and
// streak progress, never logs, moods, or notes.
type SharedHabitView struct {
	HabitID       string  `json:"habit_id"`
	Name          string  `json:"name"`
	Icon          string  `json:"icon"`
	Color         string  `json:"color"`
	CurrentStreak int     `json:"current_streak"`
	LongestStreak int     `json:"longest_streak"`
	SuccessRate   float64 `json:"success_rate"`
}

type PartnerView struct {
	PartnerID    string            `json:"partner_id"`
	Username     string            `json:"username"`
	SharedHabits []SharedHabitView `json:"shared_habits"`
}

// GetPartnerView assembles the partner's shared habits for the caller. Only
// habits the partner explicitly shared on this pairing are included.
func (s *SocialService) GetPartnerView(ctx context.Context, userID, pairingID string) (*PartnerView, error) {
	pairing, err := s.pairings.GetByID(ctx, pairingID)
	if err != nil {
		return nil, err
	}
	if !pairing.Involves(userID) {
		return nil, domain.ErrAccountabilityNotFound
	}
	if pairing.Status != domain.PairingAccepted {
		return nil, domain.ErrPairingNotAccepted
	}

	partnerID := pairing.PartnerOf(userID)
	partner, err := s.users.GetByID(ctx, partnerID)
	if err != nil {
		return nil, err
	}

	view := &PartnerView{PartnerID: partnerID, Username: partner.Username}

	for _, habitID := range pairing.SharedHabits {
		habit, err := s.habits.GetByID(ctx, habitID)
		if err != nil {
			if errors.Is(err, domain.ErrHabitNotFound) {
				continue
			}
			return nil, err
		}
		// Shared lists are per pairing, not per side; show only the
		// partner's habits here.
		if habit.UserID != partnerID {
			continue
		}

		shared := SharedHabitView{
			HabitID:     habit.ID,
			Name:        habit.Name,
			Icon:        habit.Icon,
			Color:       habit.Color,
			SuccessRate: habit.Stats.SuccessRate,
		}
		streak, err := s.streaks.GetByUserAndHabit(ctx, partnerID, habitID)
		if err == nil {
			shared.CurrentStreak = streak.CurrentStreak
			shared.LongestStreak = streak.LongestStreak
		} else if !errors.Is(err, domain.ErrStreakNotFound) {
			return nil, err
		}

		view.SharedHabits = append(view.SharedHabits, shared)
	}

	return view, nil
}
