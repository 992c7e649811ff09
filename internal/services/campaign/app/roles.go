package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	apperrors "github.com/louisbranch/adventuring.party/internal/platform/errors"
	"github.com/louisbranch/adventuring.party/internal/services/campaign/domain"
	"github.com/louisbranch/adventuring.party/internal/services/campaign/storage"
)

// RoleService resolves a user's effective role in a campaign. Other modules
// (and sibling services like messaging) consume it through ResolveRole as a
// narrow read.
type RoleService struct {
	campaigns storage.CampaignStore
	members   storage.MemberStore
}

// NewRoleService constructs a role resolver over campaign and member storage.
func NewRoleService(campaigns storage.CampaignStore, members storage.MemberStore) *RoleService {
	return &RoleService{campaigns: campaigns, members: members}
}

// ResolveRole returns the user's effective role. A missing campaign or a user
// with no trace in it resolves to RoleNone without error; the caller decides
// whether that is a not-found or a forbidden.
func (s *RoleService) ResolveRole(ctx context.Context, campaignID, userID string) (domain.Role, error) {
	if s == nil || s.campaigns == nil || s.members == nil {
		return domain.RoleNone, fmt.Errorf("role service is not configured")
	}
	campaignID = strings.TrimSpace(campaignID)
	userID = strings.TrimSpace(userID)
	if campaignID == "" || userID == "" {
		return domain.RoleNone, nil
	}

	campaign, err := s.campaigns.GetCampaign(ctx, campaignID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return domain.RoleNone, nil
		}
		return domain.RoleNone, fmt.Errorf("resolve role campaign lookup: %w", err)
	}

	// The owner shortcut skips the member query; owners hold admin without
	// any member row.
	if campaign.OwnerID == userID {
		return domain.RoleAdmin, nil
	}

	members, err := s.members.ListMembersByCampaignAndUser(ctx, campaignID, userID)
	if err != nil {
		return domain.RoleNone, fmt.Errorf("resolve role member lookup: %w", err)
	}
	return domain.ResolveRole(campaign, userID, members), nil
}

// RequireRole resolves the user's role and fails with a forbidden error when
// it falls below the required floor.
func (s *RoleService) RequireRole(ctx context.Context, campaignID, userID string, required domain.Role) (domain.Role, error) {
	role, err := s.ResolveRole(ctx, campaignID, userID)
	if err != nil {
		return domain.RoleNone, err
	}
	if !role.AtLeast(required) {
		return role, apperrors.EK(apperrors.KindForbidden, "campaign.role_insufficient",
			fmt.Sprintf("requires %s role or above", domain.RoleLabel(required)))
	}
	return role, nil
}
