package domain

import (
	apperrors "github.com/louisbranch/adventuring.party/internal/platform/errors"
)

// ValidateCharacterStatusChange enforces who may move an approved member's
// character status. The campaign admin may set any status; the character's
// owning user may only set inactive (a self-initiated leave); everyone else
// is forbidden.
func ValidateCharacterStatusChange(actorRole Role, actorOwnsMember bool, newStatus CharacterStatus) error {
	if newStatus != CharacterStatusActive && newStatus != CharacterStatusInactive && newStatus != CharacterStatusDeceased {
		return apperrors.E(apperrors.KindInvalidInput, "character status is invalid")
	}
	if actorRole == RoleAdmin {
		return nil
	}
	if actorOwnsMember && newStatus == CharacterStatusInactive {
		return nil
	}
	return apperrors.E(apperrors.KindForbidden, "only the campaign admin may set this character status")
}

// ValidateDecisionTransition reports whether a member admission decision may
// proceed. Approve and reject are valid only from pending; decided rows are
// terminal and repeated decisions are no-ops handled by the caller.
func ValidateDecisionTransition(current MemberStatus) bool {
	return current == MemberStatusPending
}
