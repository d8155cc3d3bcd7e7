// Package sharing holds the group join-request state machine. Functions here validate
// and perform transitions on in-memory records; persisting them is up to the caller.
package sharing

import (
	"crypto/subtle"
	"fmt"
	"time"

	"finance_tracker/internal/apperr"
	"finance_tracker/internal/domain"

	"github.com/oklog/ulid/v2"
)

// Event is something that moves a join request out of its current state
type Event string

const (
	EventAccept Event = "accept"
	EventRevoke Event = "revoke"
	EventExpire Event = "expire"
)

// transitions is the complete state machine. Anything missing is rejected.
var transitions = map[domain.SharingStatus]map[Event]domain.SharingStatus{
	domain.SharingPending: {
		EventAccept: domain.SharingAccepted,
		EventRevoke: domain.SharingRevoked,
		EventExpire: domain.SharingExpired,
	},
}

// Next returns the state reached from `from` on ev
func Next(from domain.SharingStatus, ev Event) (domain.SharingStatus, error) {
	to, ok := transitions[from][ev]
	if !ok {
		return from, apperr.Wrap(apperr.ErrInvalidTransition, fmt.Errorf("%s on %s", ev, from))
	}
	return to, nil
}

// NewToken returns a fresh sharing token
func NewToken() string {
	return ulid.Make().String()
}

// RequestJoin validates a join request of userID for group and returns the new PENDING
// record. existing is the latest request of the same user for the group, or nil.
// A REVOKED or EXPIRED request is superseded by the new one.
func RequestJoin(now time.Time, userID uint, group domain.Group, token string, existing *domain.GroupSharing) (*domain.GroupSharing, error) {
	if group.CreatorID == userID {
		return nil, apperr.ErrCreatorCannotJoin
	}
	if group.SharingToken == "" || subtle.ConstantTimeCompare([]byte(group.SharingToken), []byte(token)) != 1 {
		return nil, apperr.ErrInvalidSharingToken
	}
	if !group.IsSharing {
		return nil, apperr.ErrSharingDisabled
	}
	if existing != nil {
		switch existing.Status {
		case domain.SharingPending:
			return nil, apperr.ErrAlreadyPending
		case domain.SharingAccepted:
			return nil, apperr.ErrAlreadyMember
		}
	}
	return &domain.GroupSharing{
		GroupID:      group.ID,
		SharedUserID: userID,
		Status:       domain.SharingPending,
		SharingToken: token,
		JoinedAt:     now,
	}, nil
}

// Accept moves a PENDING request to ACCEPTED and returns the member row to create.
// The caller fills the member name.
func Accept(s *domain.GroupSharing, now time.Time) (domain.GroupMember, error) {
	to, err := Next(s.Status, EventAccept)
	if err != nil {
		return domain.GroupMember{}, err
	}
	s.Status = to
	s.AcceptedAt = &now
	userID := s.SharedUserID
	return domain.GroupMember{
		GroupID: s.GroupID,
		UserID:  &userID,
		Role:    domain.RoleMember,
	}, nil
}

// Revoke moves a PENDING request to REVOKED
func Revoke(s *domain.GroupSharing) error {
	return fire(s, EventRevoke)
}

// Expire moves a PENDING request to EXPIRED
func Expire(s *domain.GroupSharing) error {
	return fire(s, EventExpire)
}

// Expired reports whether a PENDING request joined before now-ttl
func Expired(s domain.GroupSharing, now time.Time, ttl time.Duration) bool {
	return s.Status == domain.SharingPending && s.JoinedAt.Before(now.Add(-ttl))
}

func fire(s *domain.GroupSharing, ev Event) error {
	to, err := Next(s.Status, ev)
	if err != nil {
		return err
	}
	s.Status = to
	return nil
}
