package service

import (
	"context"
	"errors"
	"time"

	"finance_tracker/internal/apperr"
	"finance_tracker/internal/domain"
	"finance_tracker/internal/events"
	"finance_tracker/internal/guard"
	"finance_tracker/internal/ledger"
	"finance_tracker/internal/metrics"
	"finance_tracker/internal/money"
	"finance_tracker/internal/repository"
	"finance_tracker/internal/sharing"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// MemberInput is one member listed at group creation
type MemberInput struct {
	Name          string
	UserID        *uint
	IsCreator     bool            // This entry is the creating user
	AdvanceAmount decimal.Decimal // Pre-paid advance, informational
}

// GroupInput creates a group
type GroupInput struct {
	Name           string
	InitialFunding decimal.Decimal
	Members        []MemberInput
}

// GroupTransactionInput is the full state of a group transaction after create or edit
type GroupTransactionInput struct {
	MemberID uint
	Type     domain.GroupTransactionType
	Source   domain.GroupExpenseSource
	Amount   decimal.Decimal
	Note     string
	Date     time.Time
}

func (in GroupTransactionInput) validate() error {
	if !in.Type.Valid() {
		return apperr.Invalid("invalid_type", "type must be INCOME, EXPENSE or CONTRIBUTE")
	}
	if err := money.RequirePositive(in.Amount); err != nil {
		return err
	}
	if in.Type.RequiresSource() && in.Source == domain.SourceNone {
		return apperr.ErrSourceRequired
	}
	if in.Source != domain.SourceNone && !in.Source.Valid() {
		return apperr.Invalid("invalid_source", "source must be MEMBER_ADVANCE, MEMBER_SPONSOR or GROUP_FUND")
	}
	return nil
}

// GroupResult is a committed group transaction together with the refreshed settlement
type GroupResult struct {
	Transaction *domain.GroupTransaction `json:"transaction,omitempty"`
	Summary     *ledger.Summary          `json:"summary"`
}

// GroupService keeps group balances equal to the settlement of the group log
type GroupService struct {
	d Deps
}

// NewGroupService returns the group use cases
func NewGroupService(d Deps) *GroupService {
	return &GroupService{d: d.withDefaults()}
}

// CreateGroup creates a group owned by userID. The creator always ends up as the single
// ADMIN member, either from the entry flagged IsCreator or added automatically.
func (s *GroupService) CreateGroup(ctx context.Context, userID uint, in GroupInput) (*domain.Group, error) {
	if money.IsNegative(in.InitialFunding) {
		return nil, apperr.Invalid("invalid_amount", "initial funding cannot be negative")
	}
	if err := money.RequireScale(in.InitialFunding); err != nil {
		return nil, err
	}
	user, err := s.d.Store.FindUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	g := &domain.Group{
		CreatorID:      userID,
		Name:           in.Name,
		InitialFunding: money.Round(in.InitialFunding),
		Balance:        money.Round(in.InitialFunding),
	}
	creatorSeen := false
	linked := map[uint]bool{} // users already linked to a member entry
	for _, m := range in.Members {
		if money.IsNegative(m.AdvanceAmount) {
			return nil, apperr.Invalid("invalid_amount", "advance amount cannot be negative")
		}
		if err := money.RequireScale(m.AdvanceAmount); err != nil {
			return nil, err
		}
		isCreator := m.IsCreator || (m.UserID != nil && *m.UserID == userID)
		if isCreator {
			if creatorSeen {
				return nil, apperr.ErrDuplicateCreator
			}
			creatorSeen = true
		} else if m.UserID != nil {
			if linked[*m.UserID] {
				return nil, apperr.ErrDuplicateMember
			}
			linked[*m.UserID] = true
			if _, err := s.d.Store.FindUserByID(ctx, *m.UserID); err != nil {
				return nil, err
			}
		}
		member := domain.GroupMember{Name: m.Name, UserID: m.UserID, Role: domain.RoleMember, AdvanceAmount: m.AdvanceAmount}
		if isCreator {
			uid := userID
			member.UserID, member.Role = &uid, domain.RoleAdmin
			if member.Name == "" {
				member.Name = user.Username
			}
		}
		g.Members = append(g.Members, member)
	}
	if !creatorSeen {
		uid := userID
		admin := domain.GroupMember{UserID: &uid, Name: user.Username, Role: domain.RoleAdmin}
		g.Members = append([]domain.GroupMember{admin}, g.Members...)
	}

	err = s.d.Store.CreateGroup(ctx, g)
	logResult("create_group", logrus.Fields{"user_id": userID, "group_id": g.ID, "members": len(g.Members)}, err)
	if err != nil {
		return nil, err
	}
	return g, nil
}

// loadGroup resolves a group and its members and checks that userID is a member
func loadGroup(ctx context.Context, tx *repository.Store, userID, groupID uint) (*domain.Group, []domain.GroupMember, domain.GroupMember, error) {
	g, err := tx.FindGroupByID(ctx, groupID)
	if err != nil {
		return nil, nil, domain.GroupMember{}, err
	}
	members, err := tx.FindGroupMembersByGroup(ctx, groupID)
	if err != nil {
		return nil, nil, domain.GroupMember{}, err
	}
	actor, err := guard.CheckMembership(members, userID)
	if err != nil {
		return nil, nil, domain.GroupMember{}, err
	}
	return g, members, actor, nil
}

// settle recomputes the settlement from the stored log and refreshes the cached balance
func settle(ctx context.Context, tx *repository.Store, g *domain.Group, members []domain.GroupMember) (*ledger.Summary, error) {
	log, err := tx.FindGroupTransactionsByGroup(ctx, g.ID)
	if err != nil {
		return nil, err
	}
	summary, err := ledger.Settle(*g, members, log)
	if err != nil {
		return nil, apperr.Internal("settle group", err)
	}
	g.Balance = summary.GroupBalance
	if err := tx.UpdateGroupBalance(ctx, g); err != nil {
		return nil, err
	}
	summary.GroupVersion = g.Version
	return summary, nil
}

// GetSettlement returns the settlement summary of a group, from cache when possible
func (s *GroupService) GetSettlement(ctx context.Context, userID, groupID uint) (*ledger.Summary, error) {
	// g is read before the log, so a commit after this point moves the version past
	// the one the summary is tagged with and the stored entry is never served.
	g, members, _, err := loadGroup(ctx, s.d.Store, userID, groupID)
	if err != nil {
		return nil, err
	}
	if cached, ok, err := s.d.Cache.Get(ctx, groupID, g.Version); err != nil {
		logrus.WithFields(logrus.Fields{"group_id": groupID, "error": err.Error()}).Warn("Settlement cache read failed")
	} else if ok {
		metrics.SettlementRead(true)
		return cached, nil
	}
	metrics.SettlementRead(false)

	log, err := s.d.Store.FindGroupTransactionsByGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	summary, err := ledger.Settle(*g, members, log)
	if err != nil {
		return nil, apperr.Internal("settle group", err)
	}
	if err := s.d.Cache.Set(ctx, summary); err != nil {
		logrus.WithFields(logrus.Fields{"group_id": groupID, "error": err.Error()}).Warn("Settlement cache write failed")
	}
	return summary, nil
}

// AddGroupTransaction records a group transaction attributed to in.MemberID
func (s *GroupService) AddGroupTransaction(ctx context.Context, userID, groupID uint, in GroupTransactionInput) (*GroupResult, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	var res *GroupResult
	err := runUnit(ctx, s.d.Store, s.d.RetryLimit, "add_group_transaction", func(tx *repository.Store) error {
		g, members, _, err := loadGroup(ctx, tx, userID, groupID)
		if err != nil {
			return err
		}
		if _, err := tx.FindGroupMemberByID(ctx, groupID, in.MemberID); err != nil {
			return err
		}
		t := &domain.GroupTransaction{
			GroupID:   groupID,
			MemberID:  in.MemberID,
			CreatedBy: userID,
			Type:      in.Type,
			Source:    in.Source,
			Amount:    in.Amount,
			Note:      in.Note,
			Date:      s.dateOrToday(in.Date),
		}
		if err := tx.CreateGroupTransaction(ctx, t); err != nil {
			return err
		}
		summary, err := settle(ctx, tx, g, members)
		if err != nil {
			return err
		}
		res = &GroupResult{Transaction: t, Summary: summary}
		return nil
	})
	logResult("add_group_transaction", logrus.Fields{
		"user_id":  userID,
		"group_id": groupID,
		"type":     in.Type,
		"source":   in.Source,
		"amount":   money.String(in.Amount),
	}, err)
	if err != nil {
		return nil, err
	}
	s.afterCommit(ctx, events.GroupTransactionCreated, *res.Transaction, userID, res.Summary)
	return res, nil
}

// checkEditor allows the group admin and the user who recorded the row
func checkEditor(g *domain.Group, t *domain.GroupTransaction, userID uint) error {
	if t.CreatedBy == userID {
		return nil
	}
	return guard.CheckAdmin(*g, userID)
}

// UpdateGroupTransaction replaces a group transaction with in and recomputes the settlement
func (s *GroupService) UpdateGroupTransaction(ctx context.Context, userID, groupID, txID uint, in GroupTransactionInput) (*GroupResult, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	var res *GroupResult
	err := runUnit(ctx, s.d.Store, s.d.RetryLimit, "update_group_transaction", func(tx *repository.Store) error {
		g, members, _, err := loadGroup(ctx, tx, userID, groupID)
		if err != nil {
			return err
		}
		t, err := tx.FindGroupTransactionByID(ctx, groupID, txID)
		if err != nil {
			return err
		}
		if err := checkEditor(g, t, userID); err != nil {
			return err
		}
		if _, err := tx.FindGroupMemberByID(ctx, groupID, in.MemberID); err != nil {
			return err
		}
		t.MemberID, t.Type, t.Source, t.Amount, t.Note = in.MemberID, in.Type, in.Source, in.Amount, in.Note
		if !in.Date.IsZero() {
			t.Date = in.Date
		}
		if err := tx.SaveGroupTransaction(ctx, t); err != nil {
			return err
		}
		summary, err := settle(ctx, tx, g, members)
		if err != nil {
			return err
		}
		res = &GroupResult{Transaction: t, Summary: summary}
		return nil
	})
	logResult("update_group_transaction", logrus.Fields{"user_id": userID, "group_id": groupID, "group_transaction_id": txID}, err)
	if err != nil {
		return nil, err
	}
	s.afterCommit(ctx, events.GroupTransactionUpdated, *res.Transaction, userID, res.Summary)
	return res, nil
}

// DeleteGroupTransaction removes a group transaction and recomputes the settlement
func (s *GroupService) DeleteGroupTransaction(ctx context.Context, userID, groupID, txID uint) (*GroupResult, error) {
	var (
		res     *GroupResult
		deleted domain.GroupTransaction
	)
	err := runUnit(ctx, s.d.Store, s.d.RetryLimit, "delete_group_transaction", func(tx *repository.Store) error {
		g, members, _, err := loadGroup(ctx, tx, userID, groupID)
		if err != nil {
			return err
		}
		t, err := tx.FindGroupTransactionByID(ctx, groupID, txID)
		if err != nil {
			return err
		}
		if err := checkEditor(g, t, userID); err != nil {
			return err
		}
		if err := tx.DeleteGroupTransaction(ctx, groupID, txID); err != nil {
			return err
		}
		summary, err := settle(ctx, tx, g, members)
		if err != nil {
			return err
		}
		deleted = *t
		res = &GroupResult{Summary: summary}
		return nil
	})
	logResult("delete_group_transaction", logrus.Fields{"user_id": userID, "group_id": groupID, "group_transaction_id": txID}, err)
	if err != nil {
		return nil, err
	}
	s.afterCommit(ctx, events.GroupTransactionDeleted, deleted, userID, res.Summary)
	return res, nil
}

// DeleteGroup removes a group with its members, transactions and join requests. Admin only.
func (s *GroupService) DeleteGroup(ctx context.Context, userID, groupID uint) error {
	err := runUnit(ctx, s.d.Store, s.d.RetryLimit, "delete_group", func(tx *repository.Store) error {
		g, err := tx.FindGroupByID(ctx, groupID)
		if err != nil {
			return err
		}
		if err := guard.CheckAdmin(*g, userID); err != nil {
			return err
		}
		return tx.DeleteGroupCascade(ctx, groupID)
	})
	logResult("delete_group", logrus.Fields{"user_id": userID, "group_id": groupID}, err)
	if err == nil {
		s.invalidate(ctx, groupID)
	}
	return err
}

// EnableSharing opens the group for join requests under a freshly issued token. Admin only.
func (s *GroupService) EnableSharing(ctx context.Context, userID, groupID uint) (string, error) {
	var token string
	err := runUnit(ctx, s.d.Store, s.d.RetryLimit, "enable_sharing", func(tx *repository.Store) error {
		g, err := tx.FindGroupByID(ctx, groupID)
		if err != nil {
			return err
		}
		if err := guard.CheckAdmin(*g, userID); err != nil {
			return err
		}
		g.SharingToken, g.IsSharing = sharing.NewToken(), true
		if err := tx.UpdateGroupSharing(ctx, g); err != nil {
			return err
		}
		token = g.SharingToken
		return nil
	})
	logResult("enable_sharing", logrus.Fields{"user_id": userID, "group_id": groupID}, err)
	return token, err
}

// DisableSharing closes the group for join requests and drops its token. Admin only.
func (s *GroupService) DisableSharing(ctx context.Context, userID, groupID uint) error {
	err := runUnit(ctx, s.d.Store, s.d.RetryLimit, "disable_sharing", func(tx *repository.Store) error {
		g, err := tx.FindGroupByID(ctx, groupID)
		if err != nil {
			return err
		}
		if err := guard.CheckAdmin(*g, userID); err != nil {
			return err
		}
		g.SharingToken, g.IsSharing = "", false
		return tx.UpdateGroupSharing(ctx, g)
	})
	logResult("disable_sharing", logrus.Fields{"user_id": userID, "group_id": groupID}, err)
	return err
}

// afterCommit refreshes derived state outside the unit of work. Failures are logged only.
func (s *GroupService) afterCommit(ctx context.Context, eventType string, t domain.GroupTransaction, actorID uint, summary *ledger.Summary) {
	s.invalidate(ctx, t.GroupID)
	ev := events.NewGroupTransactionEvent(eventType, t, actorID, summary.GroupBalance)
	if err := s.d.Publisher.PublishGroupTransaction(ctx, ev); err != nil {
		logrus.WithFields(logrus.Fields{
			"group_id":   t.GroupID,
			"event_type": eventType,
			"error":      err.Error(),
		}).Warn("Group transaction event not published")
	}
}

func (s *GroupService) invalidate(ctx context.Context, groupID uint) {
	if err := s.d.Cache.Invalidate(ctx, groupID); err != nil && !errors.Is(err, context.Canceled) {
		logrus.WithFields(logrus.Fields{"group_id": groupID, "error": err.Error()}).Warn("Settlement cache invalidation failed")
	}
}

func (s *GroupService) dateOrToday(d time.Time) time.Time {
	if d.IsZero() {
		return s.d.Now()
	}
	return d
}
