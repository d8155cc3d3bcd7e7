package service

import (
	"context"
	"fmt"
	"testing"

	"finance_tracker/internal/apperr"
	"finance_tracker/internal/cache"
	"finance_tracker/internal/domain"
	"finance_tracker/internal/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestCreateGroupMembers(t *testing.T) {
	f := newFixture(t)
	svc := NewGroupService(f.deps)
	ctx := context.Background()

	g, err := svc.CreateGroup(ctx, f.alice.ID, GroupInput{
		Name:    "Trip",
		Members: []MemberInput{{Name: "Bob", UserID: &f.bob.ID, AdvanceAmount: dec("50")}, {Name: "Carol"}},
	})
	require.NoError(t, err)
	require.Len(t, g.Members, 3)
	assert.Equal(t, domain.RoleAdmin, g.Members[0].Role, "creator added as admin")
	assert.True(t, g.Members[0].IsUser(f.alice.ID))
	assert.Equal(t, "alice", g.Members[0].Name)
	assert.Equal(t, domain.RoleMember, g.Members[1].Role)

	flagged, err := svc.CreateGroup(ctx, f.alice.ID, GroupInput{
		Name:    "Flat",
		Members: []MemberInput{{Name: "Me", IsCreator: true}, {Name: "Bob", UserID: &f.bob.ID}},
	})
	require.NoError(t, err)
	require.Len(t, flagged.Members, 2)
	assert.Equal(t, domain.RoleAdmin, flagged.Members[0].Role)
	assert.Equal(t, "Me", flagged.Members[0].Name)

	_, err = svc.CreateGroup(ctx, f.alice.ID, GroupInput{
		Name:    "Broken",
		Members: []MemberInput{{Name: "A", IsCreator: true}, {Name: "B", IsCreator: true}},
	})
	assert.ErrorIs(t, err, apperr.ErrDuplicateCreator)

	_, err = svc.CreateGroup(ctx, f.alice.ID, GroupInput{
		Name:    "Broken",
		Members: []MemberInput{{Name: "A", IsCreator: true}, {Name: "Alice again", UserID: &f.alice.ID}},
	})
	assert.ErrorIs(t, err, apperr.ErrDuplicateCreator)

	_, err = svc.CreateGroup(ctx, f.alice.ID, GroupInput{
		Name:    "Broken",
		Members: []MemberInput{{Name: "Bob", UserID: &f.bob.ID}, {Name: "Bobby", UserID: &f.bob.ID}},
	})
	assert.ErrorIs(t, err, apperr.ErrDuplicateMember)

	ghost := uint(999)
	_, err = svc.CreateGroup(ctx, f.alice.ID, GroupInput{
		Name:    "Broken",
		Members: []MemberInput{{Name: "Nobody", UserID: &ghost}},
	})
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = svc.CreateGroup(ctx, f.alice.ID, GroupInput{Name: "Broken", InitialFunding: dec("10.005")})
	assert.ErrorIs(t, err, apperr.ErrInvalidAmount)
}

func TestGroupSettlementScenario(t *testing.T) {
	f := newFixture(t)
	svc := NewGroupService(f.deps)
	ctx := context.Background()

	g, err := svc.CreateGroup(ctx, f.alice.ID, GroupInput{Name: "Trip", Members: []MemberInput{{Name: "Bob", UserID: &f.bob.ID}}})
	require.NoError(t, err)
	alice, bob := g.Members[0], g.Members[1]

	res, err := svc.AddGroupTransaction(ctx, f.alice.ID, g.ID, GroupTransactionInput{
		MemberID: alice.ID, Type: domain.GroupExpense, Source: domain.SourceGroupFund, Amount: dec("40.00"),
	})
	require.NoError(t, err)
	assert.True(t, res.Summary.TotalExpense.Equal(dec("40")))
	assert.True(t, res.Summary.GroupBalance.IsZero())

	res, err = svc.AddGroupTransaction(ctx, f.bob.ID, g.ID, GroupTransactionInput{
		MemberID: bob.ID, Type: domain.GroupContribute, Source: domain.SourceMemberSponsor, Amount: dec("40.00"),
	})
	require.NoError(t, err)
	assert.True(t, res.Summary.TotalSponsorship.Equal(dec("40")))
	assert.True(t, res.Summary.GroupBalance.IsZero())
	assert.True(t, res.Summary.NetExpense.IsZero())
	bobSettlement, ok := res.Summary.Member(bob.ID)
	require.True(t, ok)
	assert.True(t, bobSettlement.TotalSponsorship.Equal(dec("40")))
	assert.False(t, bobSettlement.IsCreator)

	stored, err := f.store.FindGroupByID(ctx, g.ID)
	require.NoError(t, err)
	assert.True(t, stored.Balance.IsZero())
	assert.Equal(t, uint(2), stored.Version)

	income, err := svc.AddGroupTransaction(ctx, f.bob.ID, g.ID, GroupTransactionInput{
		MemberID: bob.ID, Type: domain.GroupIncome, Amount: dec("15.50"),
	})
	require.NoError(t, err)
	assert.True(t, income.Summary.GroupBalance.Equal(dec("15.50")))

	stored, err = f.store.FindGroupByID(ctx, g.ID)
	require.NoError(t, err)
	assert.True(t, stored.Balance.Equal(dec("15.5")), "cached balance follows the settlement")

	assert.Equal(t, []string{events.GroupTransactionCreated, events.GroupTransactionCreated, events.GroupTransactionCreated}, f.publisher.types())
}

func TestSettlementCache(t *testing.T) {
	f := newFixture(t)
	svc := NewGroupService(f.deps)
	ctx := context.Background()
	key := cache.SettlementKey

	g, err := svc.CreateGroup(ctx, f.alice.ID, GroupInput{Name: "Flat", InitialFunding: dec("100")})
	require.NoError(t, err)

	s, err := svc.GetSettlement(ctx, f.alice.ID, g.ID)
	require.NoError(t, err)
	assert.True(t, s.GroupBalance.Equal(dec("100")))
	assert.True(t, f.redis.Exists(key(g.ID)))

	_, err = svc.AddGroupTransaction(ctx, f.alice.ID, g.ID, GroupTransactionInput{
		MemberID: g.Members[0].ID, Type: domain.GroupExpense, Source: domain.SourceMemberAdvance, Amount: dec("30"),
	})
	require.NoError(t, err)
	assert.False(t, f.redis.Exists(key(g.ID)), "committed mutation invalidates the summary")

	s, err = svc.GetSettlement(ctx, f.alice.ID, g.ID)
	require.NoError(t, err)
	assert.True(t, s.GroupBalance.Equal(dec("70")))
	assert.True(t, s.TotalAdvance.Equal(dec("30")))

	// served from cache
	current, err := f.store.FindGroupByID(ctx, g.ID)
	require.NoError(t, err)
	require.NoError(t, f.redis.Set(key(g.ID), fmt.Sprintf(`{"group_id":%d,"group_version":%d,"group_balance":"1.23"}`, g.ID, current.Version)))
	s, err = svc.GetSettlement(ctx, f.alice.ID, g.ID)
	require.NoError(t, err)
	assert.True(t, s.GroupBalance.Equal(dec("1.23")))

	_, err = svc.GetSettlement(ctx, f.bob.ID, g.ID)
	assert.ErrorIs(t, err, apperr.ErrAuthorization)
}

func TestSettlementReadOverlappingCommit(t *testing.T) {
	f := newFixture(t)
	svc := NewGroupService(f.deps)
	ctx := context.Background()

	g, err := svc.CreateGroup(ctx, f.alice.ID, GroupInput{Name: "Flat"})
	require.NoError(t, err)
	admin := g.Members[0]

	// commit a write right after the reader has loaded the log and before it fills the cache
	armed := false
	err = f.store.DB().Callback().Query().After("gorm:query").Register("test:commit_after_log_read", func(tx *gorm.DB) {
		if !armed || tx.Statement.Table != "group_transactions" {
			return
		}
		armed = false
		_, err := svc.AddGroupTransaction(ctx, f.alice.ID, g.ID, GroupTransactionInput{
			MemberID: admin.ID, Type: domain.GroupIncome, Amount: dec("50"),
		})
		require.NoError(t, err)
	})
	require.NoError(t, err)

	armed = true
	s, err := svc.GetSettlement(ctx, f.alice.ID, g.ID)
	require.NoError(t, err)
	assert.True(t, s.GroupBalance.IsZero(), "reader saw the log before the commit")
	assert.True(t, f.redis.Exists(cache.SettlementKey(g.ID)))

	s, err = svc.GetSettlement(ctx, f.alice.ID, g.ID)
	require.NoError(t, err)
	assert.True(t, s.GroupBalance.Equal(dec("50")))
	assert.Equal(t, 1, s.TransactionCount)

	cached, err := svc.GetSettlement(ctx, f.alice.ID, g.ID)
	require.NoError(t, err)
	assert.True(t, cached.GroupBalance.Equal(dec("50")))
}

func TestAcceptRefreshesSettlement(t *testing.T) {
	f := newFixture(t)
	groups := NewGroupService(f.deps)
	sharings := NewSharingService(f.deps)
	ctx := context.Background()
	g, token := sharedGroup(t, f)

	req, err := sharings.RequestJoin(ctx, f.bob.ID, g.ID, token)
	require.NoError(t, err)

	s, err := groups.GetSettlement(ctx, f.alice.ID, g.ID)
	require.NoError(t, err)
	require.Len(t, s.Members, 1)
	require.True(t, f.redis.Exists(cache.SettlementKey(g.ID)))

	_, err = sharings.Accept(ctx, f.alice.ID, req.ID)
	require.NoError(t, err)

	s, err = groups.GetSettlement(ctx, f.alice.ID, g.ID)
	require.NoError(t, err)
	assert.Len(t, s.Members, 2)
}

func TestGroupTransactionRules(t *testing.T) {
	f := newFixture(t)
	svc := NewGroupService(f.deps)
	ctx := context.Background()
	carol := f.user(t, "carol")

	g, err := svc.CreateGroup(ctx, f.alice.ID, GroupInput{Name: "Trip", Members: []MemberInput{
		{Name: "Bob", UserID: &f.bob.ID},
		{Name: "Carol", UserID: &carol.ID},
	}})
	require.NoError(t, err)
	admin, bob := g.Members[0], g.Members[1]

	tests := []struct {
		name    string
		userID  uint
		in      GroupTransactionInput
		wantErr error
	}{
		{"non member", 999, GroupTransactionInput{MemberID: admin.ID, Type: domain.GroupIncome, Amount: dec("1")}, apperr.ErrAuthorization},
		{"missing source", f.alice.ID, GroupTransactionInput{MemberID: admin.ID, Type: domain.GroupExpense, Amount: dec("1")}, apperr.ErrSourceRequired},
		{"contribution without source", f.alice.ID, GroupTransactionInput{MemberID: admin.ID, Type: domain.GroupContribute, Amount: dec("1")}, apperr.ErrSourceRequired},
		{"unknown source", f.alice.ID, GroupTransactionInput{MemberID: admin.ID, Type: domain.GroupExpense, Source: "LOAN", Amount: dec("1")}, apperr.ErrValidation},
		{"negative amount", f.alice.ID, GroupTransactionInput{MemberID: admin.ID, Type: domain.GroupIncome, Amount: dec("-1")}, apperr.ErrInvalidAmount},
		{"sub-cent amount", f.alice.ID, GroupTransactionInput{MemberID: admin.ID, Type: domain.GroupIncome, Amount: dec("0.005")}, apperr.ErrInvalidAmount},
		{"member of another group", f.alice.ID, GroupTransactionInput{MemberID: 999, Type: domain.GroupIncome, Amount: dec("1")}, apperr.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.AddGroupTransaction(ctx, tt.userID, g.ID, tt.in)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	res, err := svc.AddGroupTransaction(ctx, f.bob.ID, g.ID, GroupTransactionInput{
		MemberID: bob.ID, Type: domain.GroupIncome, Amount: dec("10"),
	})
	require.NoError(t, err)
	txID := res.Transaction.ID

	// carol is a member but neither the recorder nor the admin
	_, err = svc.UpdateGroupTransaction(ctx, carol.ID, g.ID, txID, GroupTransactionInput{MemberID: bob.ID, Type: domain.GroupIncome, Amount: dec("5")})
	assert.ErrorIs(t, err, apperr.ErrAuthorization)
	_, err = svc.DeleteGroupTransaction(ctx, carol.ID, g.ID, txID)
	assert.ErrorIs(t, err, apperr.ErrAuthorization)

	res, err = svc.UpdateGroupTransaction(ctx, f.bob.ID, g.ID, txID, GroupTransactionInput{
		MemberID: bob.ID, Type: domain.GroupContribute, Source: domain.SourceMemberSponsor, Amount: dec("25"),
	})
	require.NoError(t, err)
	assert.True(t, res.Summary.TotalIncome.IsZero())
	assert.True(t, res.Summary.TotalSponsorship.Equal(dec("25")))

	res, err = svc.DeleteGroupTransaction(ctx, f.alice.ID, g.ID, txID)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Summary.TransactionCount)
	assert.True(t, res.Summary.GroupBalance.IsZero())

	assert.Equal(t, []string{events.GroupTransactionCreated, events.GroupTransactionUpdated, events.GroupTransactionDeleted}, f.publisher.types())
}

func TestDeleteGroupAndSharingToggle(t *testing.T) {
	f := newFixture(t)
	svc := NewGroupService(f.deps)
	ctx := context.Background()

	g, err := svc.CreateGroup(ctx, f.alice.ID, GroupInput{Name: "Trip", Members: []MemberInput{{Name: "Bob", UserID: &f.bob.ID}}})
	require.NoError(t, err)

	_, err = svc.EnableSharing(ctx, f.bob.ID, g.ID)
	assert.ErrorIs(t, err, apperr.ErrAuthorization)

	token, err := svc.EnableSharing(ctx, f.alice.ID, g.ID)
	require.NoError(t, err)
	assert.Len(t, token, 26)
	stored, err := f.store.FindGroupByID(ctx, g.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsSharing)
	assert.Equal(t, token, stored.SharingToken)

	require.NoError(t, svc.DisableSharing(ctx, f.alice.ID, g.ID))
	stored, err = f.store.FindGroupByID(ctx, g.ID)
	require.NoError(t, err)
	assert.False(t, stored.IsSharing)
	assert.Empty(t, stored.SharingToken)

	_, err = svc.AddGroupTransaction(ctx, f.bob.ID, g.ID, GroupTransactionInput{MemberID: g.Members[1].ID, Type: domain.GroupIncome, Amount: dec("3")})
	require.NoError(t, err)

	assert.ErrorIs(t, svc.DeleteGroup(ctx, f.bob.ID, g.ID), apperr.ErrAuthorization)
	require.NoError(t, svc.DeleteGroup(ctx, f.alice.ID, g.ID))

	_, err = f.store.FindGroupByID(ctx, g.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	log, err := f.store.FindGroupTransactionsByGroup(ctx, g.ID)
	require.NoError(t, err)
	assert.Empty(t, log)
	assert.ErrorIs(t, svc.DeleteGroup(ctx, f.alice.ID, g.ID), apperr.ErrNotFound)
}
