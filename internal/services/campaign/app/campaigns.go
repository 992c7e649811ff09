package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	apperrors "github.com/louisbranch/adventuring.party/internal/platform/errors"
	"github.com/louisbranch/adventuring.party/internal/platform/id"
	"github.com/louisbranch/adventuring.party/internal/services/campaign/domain"
	"github.com/louisbranch/adventuring.party/internal/services/campaign/storage"
)

// CampaignService owns campaign metadata use-cases.
type CampaignService struct {
	campaigns storage.CampaignStore
	members   storage.MemberStore
	roles     *RoleService
	audit     *AuditEmitter
	clock     func() time.Time
	newID     func() (string, error)
}

// NewCampaignService constructs campaign metadata use-cases.
func NewCampaignService(campaigns storage.CampaignStore, members storage.MemberStore, roles *RoleService, audit *AuditEmitter, clock func() time.Time, newID func() (string, error)) *CampaignService {
	if clock == nil {
		clock = time.Now
	}
	if newID == nil {
		newID = id.NewID
	}
	return &CampaignService{
		campaigns: campaigns,
		members:   members,
		roles:     roles,
		audit:     audit,
		clock:     clock,
		newID:     newID,
	}
}

// Create persists a new campaign owned by the caller.
func (s *CampaignService) Create(ctx context.Context, ownerID string, input domain.CreateCampaignInput) (domain.Campaign, error) {
	if s == nil || s.campaigns == nil {
		return domain.Campaign{}, fmt.Errorf("campaign service is not configured")
	}
	input.OwnerID = ownerID
	campaign, err := domain.CreateCampaign(input, s.clock, s.newID)
	if err != nil {
		return domain.Campaign{}, apperrors.E(apperrors.KindInvalidInput, err.Error())
	}
	if err := s.campaigns.PutCampaign(ctx, campaign); err != nil {
		return domain.Campaign{}, fmt.Errorf("create campaign: %w", err)
	}
	s.audit.Emit(ctx, "campaign.created", campaign.ID, ownerID, map[string]any{"name": campaign.Name})
	return campaign, nil
}

// Get fetches one campaign by id.
func (s *CampaignService) Get(ctx context.Context, campaignID string) (domain.Campaign, error) {
	if s == nil || s.campaigns == nil {
		return domain.Campaign{}, fmt.Errorf("campaign service is not configured")
	}
	campaign, err := s.campaigns.GetCampaign(ctx, campaignID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return domain.Campaign{}, apperrors.EK(apperrors.KindNotFound, "campaign.not_found", "campaign not found")
		}
		return domain.Campaign{}, fmt.Errorf("get campaign: %w", err)
	}
	return campaign, nil
}

// ListByOwner lists the caller's campaigns.
func (s *CampaignService) ListByOwner(ctx context.Context, ownerID string) ([]domain.Campaign, error) {
	if s == nil || s.campaigns == nil {
		return nil, fmt.Errorf("campaign service is not configured")
	}
	campaigns, err := s.campaigns.ListCampaignsByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list campaigns: %w", err)
	}
	return campaigns, nil
}

// ListMembers lists a campaign's member rows. Callers need at least observer
// standing; anyone with no trace in the campaign is refused.
func (s *CampaignService) ListMembers(ctx context.Context, actorUserID, campaignID string) ([]domain.Member, error) {
	if s == nil || s.campaigns == nil || s.members == nil || s.roles == nil {
		return nil, fmt.Errorf("campaign service is not configured")
	}
	if _, err := s.Get(ctx, campaignID); err != nil {
		return nil, err
	}
	if _, err := s.roles.RequireRole(ctx, campaignID, actorUserID, domain.RoleObserver); err != nil {
		return nil, err
	}
	members, err := s.members.ListMembersByCampaign(ctx, campaignID)
	if err != nil {
		return nil, fmt.Errorf("list campaign members: %w", err)
	}
	return members, nil
}
