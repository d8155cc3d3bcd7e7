// Package guard holds the authorization checks run before any ledger mutation.
package guard

import (
	"fmt"

	"finance_tracker/internal/apperr"
	"finance_tracker/internal/domain"
)

// CheckOwnership fails with an authorization error unless userID owns entity
func CheckOwnership(entity domain.OwnerEntity, userID uint) error {
	if entity.OwnerID() != userID {
		return apperr.Wrap(apperr.Forbidden("not the owner"), fmt.Errorf("user %d, owner %d", userID, entity.OwnerID()))
	}
	return nil
}

// CheckMembership returns the member of the group linked to userID
func CheckMembership(members []domain.GroupMember, userID uint) (domain.GroupMember, error) {
	for _, m := range members {
		if m.IsUser(userID) {
			return m, nil
		}
	}
	return domain.GroupMember{}, apperr.Forbidden(fmt.Sprintf("user %d is not a group member", userID))
}

// CheckAdmin fails unless userID administers the group. The creator is its only admin.
func CheckAdmin(group domain.Group, userID uint) error {
	if group.CreatorID != userID {
		return apperr.Forbidden(fmt.Sprintf("user %d is not the admin of group %d", userID, group.ID))
	}
	return nil
}
