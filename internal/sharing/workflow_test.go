package sharing

import (
	"testing"
	"time"

	"finance_tracker/internal/apperr"
	"finance_tracker/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func sharedGroup() domain.Group {
	return domain.Group{ID: 5, CreatorID: 1, SharingToken: "01HZX3TOKEN", IsSharing: true}
}

func TestRequestJoin(t *testing.T) {
	g := sharedGroup()

	tests := []struct {
		name     string
		userID   uint
		group    func(domain.Group) domain.Group
		token    string
		existing *domain.GroupSharing
		wantErr  error
	}{
		{name: "creator cannot join", userID: 1, token: g.SharingToken, wantErr: apperr.ErrCreatorCannotJoin},
		{name: "wrong token", userID: 2, token: "nope", wantErr: apperr.ErrInvalidSharingToken},
		{name: "group without token", userID: 2, token: "",
			group: func(g domain.Group) domain.Group { g.SharingToken = ""; return g }, wantErr: apperr.ErrInvalidSharingToken},
		{name: "sharing disabled", userID: 2, token: g.SharingToken,
			group: func(g domain.Group) domain.Group { g.IsSharing = false; return g }, wantErr: apperr.ErrSharingDisabled},
		{name: "already pending", userID: 2, token: g.SharingToken,
			existing: &domain.GroupSharing{Status: domain.SharingPending}, wantErr: apperr.ErrAlreadyPending},
		{name: "already member", userID: 2, token: g.SharingToken,
			existing: &domain.GroupSharing{Status: domain.SharingAccepted}, wantErr: apperr.ErrAlreadyMember},
		{name: "first request", userID: 2, token: g.SharingToken},
		{name: "supersedes revoked", userID: 2, token: g.SharingToken, existing: &domain.GroupSharing{Status: domain.SharingRevoked}},
		{name: "supersedes expired", userID: 2, token: g.SharingToken, existing: &domain.GroupSharing{Status: domain.SharingExpired}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			group := g
			if tt.group != nil {
				group = tt.group(g)
			}
			s, err := RequestJoin(now, tt.userID, group, tt.token, tt.existing)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
				assert.Nil(t, s)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, domain.SharingPending, s.Status)
			assert.Equal(t, g.ID, s.GroupID)
			assert.Equal(t, tt.userID, s.SharedUserID)
			assert.Equal(t, now, s.JoinedAt)
			assert.Nil(t, s.AcceptedAt)
		})
	}
}

func TestAccept(t *testing.T) {
	s := &domain.GroupSharing{ID: 9, GroupID: 5, SharedUserID: 2, Status: domain.SharingPending, JoinedAt: now}

	m, err := Accept(s, now.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, domain.SharingAccepted, s.Status)
	require.NotNil(t, s.AcceptedAt)
	assert.Equal(t, now.Add(time.Hour), *s.AcceptedAt)

	assert.Equal(t, uint(5), m.GroupID)
	assert.Equal(t, domain.RoleMember, m.Role)
	require.NotNil(t, m.UserID)
	assert.Equal(t, uint(2), *m.UserID)

	// ACCEPTED is terminal
	_, err = Accept(s, now)
	assert.ErrorIs(t, err, apperr.ErrInvalidTransition)
}

func TestTransitionsOnlyLeavePending(t *testing.T) {
	all := []domain.SharingStatus{domain.SharingPending, domain.SharingAccepted, domain.SharingRevoked, domain.SharingExpired}
	events := []Event{EventAccept, EventRevoke, EventExpire}

	for _, from := range all {
		for _, ev := range events {
			to, err := Next(from, ev)
			if from == domain.SharingPending {
				require.NoError(t, err)
				assert.NotEqual(t, from, to)
				continue
			}
			assert.ErrorIs(t, err, apperr.ErrInvalidTransition, "%s on %s", ev, from)
			assert.Equal(t, from, to)
		}
	}
}

func TestRevokeAndExpire(t *testing.T) {
	s := &domain.GroupSharing{Status: domain.SharingPending}
	require.NoError(t, Revoke(s))
	assert.Equal(t, domain.SharingRevoked, s.Status)
	assert.ErrorIs(t, Expire(s), apperr.ErrInvalidTransition)
	assert.Equal(t, domain.SharingRevoked, s.Status)

	s = &domain.GroupSharing{Status: domain.SharingPending}
	require.NoError(t, Expire(s))
	assert.Equal(t, domain.SharingExpired, s.Status)
	assert.ErrorIs(t, Revoke(s), apperr.ErrInvalidTransition)
}

func TestExpired(t *testing.T) {
	s := domain.GroupSharing{Status: domain.SharingPending, JoinedAt: now.Add(-49 * time.Hour)}
	assert.True(t, Expired(s, now, 48*time.Hour))
	assert.False(t, Expired(s, now, 72*time.Hour))

	s.Status = domain.SharingAccepted
	assert.False(t, Expired(s, now, time.Hour))
}

func TestNewToken(t *testing.T) {
	a, b := NewToken(), NewToken()
	assert.Len(t, a, 26)
	assert.NotEqual(t, a, b)
}
