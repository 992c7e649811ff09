package domain

import "strings"

// Role is a user's effective permission level inside a campaign, ordered
// from no access to full control. The zero value is RoleNone.
type Role int

const (
	// RoleNone indicates no membership trace in the campaign.
	RoleNone Role = iota
	// RoleObserver indicates a pending applicant who may view but not act.
	RoleObserver
	// RolePlayer indicates an approved player-seat member.
	RolePlayer
	// RoleDM indicates an approved dungeon-master-seat member.
	RoleDM
	// RoleAdmin indicates the campaign owner. Never persisted, always derived.
	RoleAdmin
)

// AtLeast reports whether the role meets the required minimum. The ordering
// invariant is none < observer < player < dm < admin.
func (r Role) AtLeast(required Role) bool {
	return r >= required
}

// RoleLabel returns the string label for a role.
func RoleLabel(role Role) string {
	switch role {
	case RoleObserver:
		return "OBSERVER"
	case RolePlayer:
		return "PLAYER"
	case RoleDM:
		return "DM"
	case RoleAdmin:
		return "ADMIN"
	default:
		return "NONE"
	}
}

// PartyRole is the stored seat role on a member or invite row. The campaign
// owner's admin level is derived, never stored, so PartyRole has no admin value.
type PartyRole int

const (
	// PartyRoleUnspecified represents an invalid party role.
	PartyRoleUnspecified PartyRole = iota
	// PartyRolePlayer seats a character as a regular player.
	PartyRolePlayer
	// PartyRoleDM seats a character as a dungeon master.
	PartyRoleDM
)

// HierarchyRole maps a stored party role onto the role hierarchy.
func (p PartyRole) HierarchyRole() Role {
	switch p {
	case PartyRolePlayer:
		return RolePlayer
	case PartyRoleDM:
		return RoleDM
	default:
		return RoleNone
	}
}

// PartyRoleLabel returns the string label for a party role.
func PartyRoleLabel(role PartyRole) string {
	switch role {
	case PartyRolePlayer:
		return "PLAYER"
	case PartyRoleDM:
		return "DM"
	default:
		return "UNSPECIFIED"
	}
}

// PartyRoleFromLabel converts a party role label to a PartyRole value.
func PartyRoleFromLabel(label string) PartyRole {
	switch strings.ToUpper(strings.TrimSpace(label)) {
	case "PLAYER":
		return PartyRolePlayer
	case "DM":
		return PartyRoleDM
	default:
		return PartyRoleUnspecified
	}
}

// ResolveRole computes a user's effective role in a campaign from the
// campaign record and the user's member rows there. The owner is always an
// implicit admin. A user with rows but no approved row is an observer. An
// approved user holds the highest hierarchy role among their approved rows.
func ResolveRole(campaign Campaign, userID string, members []Member) Role {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return RoleNone
	}
	if campaign.OwnerID == userID {
		return RoleAdmin
	}

	resolved := RoleNone
	for _, member := range members {
		if member.UserID != userID {
			continue
		}
		if member.Status != MemberStatusApproved {
			if resolved == RoleNone {
				resolved = RoleObserver
			}
			continue
		}
		if seat := member.PartyRole.HierarchyRole(); seat > resolved {
			resolved = seat
		}
	}
	return resolved
}
