package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrAccountabilityNotFound = errors.New("accountability pairing not found")
	ErrPairingExists          = errors.New("accountability relationship already exists")
	ErrSelfPairing            = errors.New("cannot pair with yourself")
	ErrPairingNotPending      = errors.New("request is not pending")
	ErrPairingNotAccepted     = errors.New("partnership is not active")
)

const (
	PairingPending  = "pending"
	PairingAccepted = "accepted"
	PairingRejected = "rejected"
)

type PairingSettings struct {
	AllowNotifications bool `json:"allow_notifications"`
	ShareAllHabits     bool `json:"share_all_habits"`
}

// Accountability pairs two users. The pairing is stored once, directed from
// requester to partner, but treated as undirected once accepted.
type Accountability struct {
	ID        string `json:"id" db:"id"`
	UserID    string `json:"user_id" db:"user_id"`
	PartnerID string `json:"partner_id" db:"partner_id"`

	Status       string          `json:"status" db:"status"`
	SharedHabits []string        `json:"shared_habits"`
	Settings     PairingSettings `json:"settings"`

	CreatedAt  time.Time  `json:"created_at" db:"created_at"`
	AcceptedAt *time.Time `json:"accepted_at,omitempty" db:"accepted_at"`
}

func NewAccountability(userID, partnerID string) (*Accountability, error) {
	if userID == "" || partnerID == "" {
		return nil, errors.New("both user ids are required")
	}
	if userID == partnerID {
		return nil, ErrSelfPairing
	}

	return &Accountability{
		ID:        uuid.New().String(),
		UserID:    userID,
		PartnerID: partnerID,
		Status:    PairingPending,
		Settings:  PairingSettings{AllowNotifications: true},
		CreatedAt: time.Now().UTC(),
	}, nil
}

func (a *Accountability) Accept(now time.Time) error {
	if a.Status != PairingPending {
		return ErrPairingNotPending
	}
	now = now.UTC()
	a.Status = PairingAccepted
	a.AcceptedAt = &now
	return nil
}

func (a *Accountability) Reject() error {
	if a.Status != PairingPending {
		return ErrPairingNotPending
	}
	a.Status = PairingRejected
	return nil
}

// Involves reports whether the given user is either side of the pairing.
func (a *Accountability) Involves(userID string) bool {
	return a.UserID == userID || a.PartnerID == userID
}

// PartnerOf returns the other side of the pairing for the given user.
func (a *Accountability) PartnerOf(userID string) string {
	if a.UserID == userID {
		return a.PartnerID
	}
	return a.UserID
}

func (a *Accountability) ShareHabit(habitID string) error {
	if a.Status != PairingAccepted {
		return ErrPairingNotAccepted
	}
	for _, id := range a.SharedHabits {
		if id == habitID {
			return nil
		}
	}
	a.SharedHabits = append(a.SharedHabits, habitID)
	return nil
}

func (a *Accountability) UnshareHabit(habitID string) {
	for i, id := range a.SharedHabits {
		if id == habitID {
			a.SharedHabits = append(a.SharedHabits[:i], a.SharedHabits[i+1:]...)
			return
		}
	}
}
