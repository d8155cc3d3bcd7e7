package service

import (
	"context"
	"errors"
	"time"

	"finance_tracker/internal/apperr"
	"finance_tracker/internal/domain"
	"finance_tracker/internal/guard"
	"finance_tracker/internal/metrics"
	"finance_tracker/internal/repository"
	"finance_tracker/internal/sharing"

	"github.com/sirupsen/logrus"
)

// expireBatch bounds how many requests one expirer pass loads at once
const expireBatch = 200

// SharingService runs the group join-request workflow
type SharingService struct {
	d Deps
}

// NewSharingService returns the sharing use cases
func NewSharingService(d Deps) *SharingService {
	return &SharingService{d: d.withDefaults()}
}

// RequestJoin files a PENDING join request of userID for a group shared under token
func (s *SharingService) RequestJoin(ctx context.Context, userID, groupID uint, token string) (*domain.GroupSharing, error) {
	var out *domain.GroupSharing
	err := runUnit(ctx, s.d.Store, s.d.RetryLimit, "request_join", func(tx *repository.Store) error {
		g, err := tx.FindGroupByID(ctx, groupID)
		if err != nil {
			return err
		}
		existing, err := tx.FindActiveSharing(ctx, groupID, userID)
		if err != nil && !errors.Is(err, apperr.ErrNotFound) {
			return err
		}
		gs, err := sharing.RequestJoin(s.d.Now(), userID, *g, token, existing)
		if err != nil {
			return err
		}
		if _, err := tx.FindGroupMemberByGroupAndUser(ctx, groupID, userID); err == nil {
			return apperr.ErrAlreadyMember
		} else if !errors.Is(err, apperr.ErrNotFound) {
			return err
		}
		if err := tx.CreateGroupSharing(ctx, gs); err != nil {
			return err
		}
		// version bump: of two concurrent requests on one group only one commits
		if err := tx.UpdateGroupSharing(ctx, g); err != nil {
			return err
		}
		out = gs
		return nil
	})
	logResult("request_join", logrus.Fields{"user_id": userID, "group_id": groupID}, err)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Accept turns a PENDING request into group membership. Group admin only.
func (s *SharingService) Accept(ctx context.Context, userID, sharingID uint) (*domain.GroupMember, error) {
	var out *domain.GroupMember
	err := runUnit(ctx, s.d.Store, s.d.RetryLimit, "accept_sharing", func(tx *repository.Store) error {
		gs, err := tx.FindGroupSharingByID(ctx, sharingID)
		if err != nil {
			return err
		}
		g, err := tx.FindGroupByID(ctx, gs.GroupID)
		if err != nil {
			return err
		}
		if err := guard.CheckAdmin(*g, userID); err != nil {
			return err
		}
		joiner, err := tx.FindUserByID(ctx, gs.SharedUserID)
		if err != nil {
			return err
		}
		from := gs.Status
		member, err := sharing.Accept(gs, s.d.Now())
		if err != nil {
			return err
		}
		member.Name = joiner.Username
		if err := tx.TransitionSharing(ctx, gs, from); err != nil {
			return err
		}
		if err := tx.CreateGroupMember(ctx, &member); err != nil {
			return err
		}
		// the member list is part of the settlement
		if err := tx.UpdateGroupSharing(ctx, g); err != nil {
			return err
		}
		out = &member
		return nil
	})
	logResult("accept_sharing", logrus.Fields{"user_id": userID, "sharing_id": sharingID}, err)
	if err != nil {
		return nil, err
	}
	if err := s.d.Cache.Invalidate(ctx, out.GroupID); err != nil {
		logrus.WithFields(logrus.Fields{"group_id": out.GroupID, "error": err.Error()}).Warn("Settlement cache invalidation failed")
	}
	return out, nil
}

// Revoke withdraws a PENDING request. The group admin and the requester may revoke.
func (s *SharingService) Revoke(ctx context.Context, userID, sharingID uint) error {
	err := runUnit(ctx, s.d.Store, s.d.RetryLimit, "revoke_sharing", func(tx *repository.Store) error {
		gs, err := tx.FindGroupSharingByID(ctx, sharingID)
		if err != nil {
			return err
		}
		if gs.SharedUserID != userID {
			g, err := tx.FindGroupByID(ctx, gs.GroupID)
			if err != nil {
				return err
			}
			if err := guard.CheckAdmin(*g, userID); err != nil {
				return err
			}
		}
		from := gs.Status
		if err := sharing.Revoke(gs); err != nil {
			return err
		}
		return tx.TransitionSharing(ctx, gs, from)
	})
	logResult("revoke_sharing", logrus.Fields{"user_id": userID, "sharing_id": sharingID}, err)
	return err
}

// ExpirePending moves PENDING requests older than ttl to EXPIRED and returns how many
// it expired. A request accepted or revoked meanwhile is left alone.
func (s *SharingService) ExpirePending(ctx context.Context, ttl time.Duration) (int, error) {
	now := s.d.Now()
	cutoff := now.Add(-ttl)
	expired := 0
	for {
		batch, err := s.d.Store.FindPendingSharingsBefore(ctx, cutoff, expireBatch)
		if err != nil {
			return expired, err
		}
		progressed := false
		for i := range batch {
			gs := &batch[i]
			if !sharing.Expired(*gs, now, ttl) {
				continue
			}
			if err := sharing.Expire(gs); err != nil {
				return expired, err
			}
			err := s.d.Store.TransitionSharing(ctx, gs, domain.SharingPending)
			switch {
			case err == nil:
				expired++
				progressed = true
			case apperr.IsRetryable(err):
				progressed = true // someone else moved it on
			default:
				return expired, err
			}
		}
		if len(batch) < expireBatch || !progressed {
			break
		}
	}
	metrics.SharingsExpired(expired)
	logrus.WithFields(logrus.Fields{"expired": expired, "cutoff": cutoff.Format(time.RFC3339)}).Info("Pending join requests expired")
	return expired, nil
}
