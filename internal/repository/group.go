package repository

import (
	"context"
	"fmt"
	"time"

	"finance_tracker/internal/apperr"
	"finance_tracker/internal/domain"
)

// CreateGroup inserts a group together with its members
func (s *Store) CreateGroup(ctx context.Context, g *domain.Group) error {
	return writeErr("create group", s.conn(ctx).Create(g).Error)
}

// FindGroupByID returns a group without its members
func (s *Store) FindGroupByID(ctx context.Context, id uint) (*domain.Group, error) {
	var g domain.Group
	if err := s.conn(ctx).First(&g, id).Error; err != nil {
		return nil, lookupErr(err, "group", id)
	}
	return &g, nil
}

// UpdateGroupBalance refreshes the cached balance of g, versioned like wallet balances
func (s *Store) UpdateGroupBalance(ctx context.Context, g *domain.Group) error {
	if err := s.updateVersioned(ctx, &domain.Group{}, g.ID, g.Version, map[string]any{"balance": g.Balance}); err != nil {
		return err
	}
	g.Version++
	return nil
}

// UpdateGroupSharing persists the sharing token and flag of g
func (s *Store) UpdateGroupSharing(ctx context.Context, g *domain.Group) error {
	fields := map[string]any{"sharing_token": g.SharingToken, "is_sharing": g.IsSharing}
	if err := s.updateVersioned(ctx, &domain.Group{}, g.ID, g.Version, fields); err != nil {
		return err
	}
	g.Version++
	return nil
}

// DeleteGroupCascade removes a group and every row that belongs to it.
// Call it inside Transaction so the cascade is all-or-nothing.
func (s *Store) DeleteGroupCascade(ctx context.Context, groupID uint) error {
	db := s.conn(ctx)
	for _, m := range []any{&domain.GroupTransaction{}, &domain.GroupSharing{}, &domain.GroupMember{}} {
		if err := db.Where("group_id = ?", groupID).Delete(m).Error; err != nil {
			return apperr.Internal(fmt.Sprintf("delete %T", m), err)
		}
	}
	res := db.Delete(&domain.Group{}, groupID)
	if res.Error != nil {
		return apperr.Internal("delete group", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("group", groupID)
	}
	return nil
}

// CreateGroupMember inserts a member
func (s *Store) CreateGroupMember(ctx context.Context, m *domain.GroupMember) error {
	return writeErr("create group member", s.conn(ctx).Create(m).Error)
}

// FindGroupMemberByID returns a member of the given group
func (s *Store) FindGroupMemberByID(ctx context.Context, groupID, memberID uint) (*domain.GroupMember, error) {
	var m domain.GroupMember
	if err := s.conn(ctx).Where("group_id = ?", groupID).First(&m, memberID).Error; err != nil {
		return nil, lookupErr(err, "group_member", memberID)
	}
	return &m, nil
}

// FindGroupMemberByGroupAndUser returns the member of a group linked to a user
func (s *Store) FindGroupMemberByGroupAndUser(ctx context.Context, groupID, userID uint) (*domain.GroupMember, error) {
	var m domain.GroupMember
	if err := s.conn(ctx).Where("group_id = ? AND user_id = ?", groupID, userID).First(&m).Error; err != nil {
		return nil, lookupErr(err, "group_member", userID)
	}
	return &m, nil
}

// FindGroupMembersByGroup returns the members of a group in id order
func (s *Store) FindGroupMembersByGroup(ctx context.Context, groupID uint) ([]domain.GroupMember, error) {
	var members []domain.GroupMember
	err := s.conn(ctx).Where("group_id = ?", groupID).Order("id").Find(&members).Error
	return members, writeErr("list group members", err)
}

// CreateGroupTransaction inserts a group transaction
func (s *Store) CreateGroupTransaction(ctx context.Context, t *domain.GroupTransaction) error {
	return writeErr("create group transaction", s.conn(ctx).Create(t).Error)
}

// FindGroupTransactionByID returns a transaction of the given group
func (s *Store) FindGroupTransactionByID(ctx context.Context, groupID, id uint) (*domain.GroupTransaction, error) {
	var t domain.GroupTransaction
	if err := s.conn(ctx).Where("group_id = ?", groupID).First(&t, id).Error; err != nil {
		return nil, lookupErr(err, "group_transaction", id)
	}
	return &t, nil
}

// FindGroupTransactionsByGroup returns the full log of a group
func (s *Store) FindGroupTransactionsByGroup(ctx context.Context, groupID uint) ([]domain.GroupTransaction, error) {
	var txs []domain.GroupTransaction
	err := s.conn(ctx).Where("group_id = ?", groupID).Order("id").Find(&txs).Error
	return txs, writeErr("list group transactions", err)
}

// SaveGroupTransaction writes every column of t
func (s *Store) SaveGroupTransaction(ctx context.Context, t *domain.GroupTransaction) error {
	return writeErr("save group transaction", s.conn(ctx).Save(t).Error)
}

// DeleteGroupTransaction removes a group transaction
func (s *Store) DeleteGroupTransaction(ctx context.Context, groupID, id uint) error {
	res := s.conn(ctx).Where("group_id = ?", groupID).Delete(&domain.GroupTransaction{}, id)
	if res.Error != nil {
		return apperr.Internal("delete group transaction", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("group_transaction", id)
	}
	return nil
}

// CreateGroupSharing inserts a join request
func (s *Store) CreateGroupSharing(ctx context.Context, gs *domain.GroupSharing) error {
	return writeErr("create group sharing", s.conn(ctx).Create(gs).Error)
}

// FindGroupSharingByID returns a join request
func (s *Store) FindGroupSharingByID(ctx context.Context, id uint) (*domain.GroupSharing, error) {
	var gs domain.GroupSharing
	if err := s.conn(ctx).First(&gs, id).Error; err != nil {
		return nil, lookupErr(err, "group_sharing", id)
	}
	return &gs, nil
}

// FindActiveSharing returns the PENDING or ACCEPTED request of a user for a group
func (s *Store) FindActiveSharing(ctx context.Context, groupID, userID uint) (*domain.GroupSharing, error) {
	var gs domain.GroupSharing
	err := s.conn(ctx).
		Where("group_id = ? AND shared_user_id = ? AND status IN ?", groupID, userID,
			[]domain.SharingStatus{domain.SharingPending, domain.SharingAccepted}).
		Order("id desc").
		First(&gs).Error
	if err != nil {
		return nil, lookupErr(err, "group_sharing", fmt.Sprintf("group %d user %d", groupID, userID))
	}
	return &gs, nil
}

// TransitionSharing persists gs.Status (and AcceptedAt) only if the stored status is
// still from. A request that moved on concurrently yields apperr.ErrVersionConflict.
func (s *Store) TransitionSharing(ctx context.Context, gs *domain.GroupSharing, from domain.SharingStatus) error {
	res := s.conn(ctx).Model(&domain.GroupSharing{}).
		Where("id = ? AND status = ?", gs.ID, from).
		Updates(map[string]any{"status": gs.Status, "accepted_at": gs.AcceptedAt})
	if res.Error != nil {
		return apperr.Internal("update group sharing", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.Wrap(apperr.ErrVersionConflict, fmt.Errorf("group sharing %d is no longer %s", gs.ID, from))
	}
	return nil
}

// FindPendingSharingsBefore returns PENDING requests that joined before cutoff
func (s *Store) FindPendingSharingsBefore(ctx context.Context, cutoff time.Time, limit int) ([]domain.GroupSharing, error) {
	var out []domain.GroupSharing
	err := s.conn(ctx).
		Where("status = ? AND joined_at < ?", domain.SharingPending, cutoff).
		Order("id").
		Limit(limit).
		Find(&out).Error
	return out, writeErr("list pending sharings", err)
}
