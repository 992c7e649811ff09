package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	apperrors "github.com/louisbranch/adventuring.party/internal/platform/errors"
	"github.com/louisbranch/adventuring.party/internal/platform/id"
	"github.com/louisbranch/adventuring.party/internal/services/campaign/domain"
	"github.com/louisbranch/adventuring.party/internal/services/campaign/storage"
	notifdomain "github.com/louisbranch/adventuring.party/internal/services/notifications/domain"
)

// InviteService owns the invite lifecycle: admin-issued offers, invitee
// responses, and the pending membership an acceptance creates.
type InviteService struct {
	campaigns  storage.CampaignStore
	invites    storage.InviteStore
	users      storage.UserStore
	characters storage.CharacterStore
	membership *MembershipService
	roles      *RoleService
	notifier   Notifier
	audit      *AuditEmitter
	clock      func() time.Time
	newID      func() (string, error)
}

// NewInviteService constructs invite use-cases.
func NewInviteService(campaigns storage.CampaignStore, invites storage.InviteStore, users storage.UserStore, characters storage.CharacterStore, membership *MembershipService, roles *RoleService, notifier Notifier, audit *AuditEmitter, clock func() time.Time, newID func() (string, error)) *InviteService {
	if clock == nil {
		clock = time.Now
	}
	if newID == nil {
		newID = id.NewID
	}
	return &InviteService{
		campaigns:  campaigns,
		invites:    invites,
		users:      users,
		characters: characters,
		membership: membership,
		roles:      roles,
		notifier:   notifier,
		audit:      audit,
		clock:      clock,
		newID:      newID,
	}
}

// RespondInput describes one invitee response.
type RespondInput struct {
	InviteID string
	Accept   bool
	// CharacterID names the character joining on acceptance; ignored on
	// decline.
	CharacterID string
}

// Create issues one invite. Only a campaign admin may invite; a pending
// invite already on file for the same campaign+invitee is returned unchanged
// with no second notification.
func (s *InviteService) Create(ctx context.Context, actorUserID string, input domain.CreateInviteInput) (domain.Invite, error) {
	if s == nil || s.invites == nil {
		return domain.Invite{}, fmt.Errorf("invite service is not configured")
	}

	campaign, err := s.getCampaign(ctx, input.CampaignID)
	if err != nil {
		return domain.Invite{}, err
	}
	if _, err := s.roles.RequireRole(ctx, campaign.ID, actorUserID, domain.RoleAdmin); err != nil {
		return domain.Invite{}, err
	}

	invitedUserID := strings.TrimSpace(input.InvitedUserID)
	if invitedUserID == campaign.OwnerID {
		return domain.Invite{}, apperrors.EK(apperrors.KindInvalidInput, "invite.owner_self",
			"the campaign owner cannot be invited")
	}
	if _, err := s.users.GetUser(ctx, invitedUserID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return domain.Invite{}, inviteeNotRegisteredError()
		}
		return domain.Invite{}, fmt.Errorf("lookup invited user: %w", err)
	}

	if existing, err := s.invites.GetPendingInviteByCampaignAndUser(ctx, campaign.ID, invitedUserID); err == nil {
		return existing, nil
	} else if !errors.Is(err, storage.ErrNotFound) {
		return domain.Invite{}, fmt.Errorf("check pending invite: %w", err)
	}

	input.InvitedByUserID = actorUserID
	invite, err := domain.CreateInvite(input, s.clock, s.newID)
	if err != nil {
		return domain.Invite{}, apperrors.E(apperrors.KindInvalidInput, err.Error())
	}
	if err := s.invites.PutInvite(ctx, invite); err != nil {
		// Lost a create race; the earlier invite wins.
		if errors.Is(err, storage.ErrConflict) {
			if existing, lookupErr := s.invites.GetPendingInviteByCampaignAndUser(ctx, campaign.ID, invitedUserID); lookupErr == nil {
				return existing, nil
			}
			return domain.Invite{}, apperrors.EK(apperrors.KindConflict, "invite.pending_exists",
				"a pending invite already exists for this user")
		}
		return domain.Invite{}, fmt.Errorf("put invite: %w", err)
	}

	payload, encodeErr := notifdomain.EncodePayload(notifdomain.TypeCampaignInvite, notifdomain.CampaignInvitePayload{
		CampaignID:      campaign.ID,
		CampaignName:    campaign.Name,
		InviteID:        invite.ID,
		InvitedByUserID: invite.InvitedByUserID,
		PartyRole:       domain.PartyRoleLabel(invite.PartyRole),
	})
	if encodeErr != nil {
		log.Printf("encode invite payload invite=%s: %v", invite.ID, encodeErr)
	}
	notifyBestEffort(ctx, s.notifier, notifdomain.CreateInput{
		RecipientUserID: invite.InvitedUserID,
		Type:            notifdomain.TypeCampaignInvite,
		CampaignID:      campaign.ID,
		PayloadJSON:     payload,
		DedupeKey:       fmt.Sprintf("%s:%s", notifdomain.TypeCampaignInvite, invite.ID),
	})

	s.audit.Emit(ctx, "invite.created", campaign.ID, actorUserID, map[string]any{"invite_id": invite.ID})
	return invite, nil
}

// CreateByEmail resolves the invitee through the user directory first. An
// address with no account is a distinct not-found signal so the caller can
// branch into an email-only flow; no invite row is written.
func (s *InviteService) CreateByEmail(ctx context.Context, actorUserID, campaignID, email string, partyRole domain.PartyRole) (domain.Invite, error) {
	if s == nil || s.users == nil {
		return domain.Invite{}, fmt.Errorf("invite service is not configured")
	}
	email = strings.TrimSpace(email)
	if email == "" {
		return domain.Invite{}, apperrors.E(apperrors.KindInvalidInput, "invitee email is required")
	}
	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return domain.Invite{}, inviteeNotRegisteredError()
		}
		return domain.Invite{}, fmt.Errorf("lookup invitee by email: %w", err)
	}
	return s.Create(ctx, actorUserID, domain.CreateInviteInput{
		CampaignID:    campaignID,
		InvitedUserID: user.ID,
		PartyRole:     partyRole,
	})
}

// Respond records the invitee's decision. Responses to an invite that is not
// the caller's, or that already left pending, are no-ops returning the
// current state. Acceptance creates a pending membership for the named
// character, which must belong to the caller.
func (s *InviteService) Respond(ctx context.Context, actorUserID string, input RespondInput) (domain.Invite, error) {
	if s == nil || s.invites == nil {
		return domain.Invite{}, fmt.Errorf("invite service is not configured")
	}

	invite, err := s.getInvite(ctx, input.InviteID)
	if err != nil {
		return domain.Invite{}, err
	}
	if invite.InvitedUserID != actorUserID {
		return invite, nil
	}
	if invite.Status != domain.InviteStatusPending {
		return invite, nil
	}

	status := domain.InviteStatusDeclined
	var created domain.Member
	if input.Accept {
		status = domain.InviteStatusAccepted
		characterID := strings.TrimSpace(input.CharacterID)
		if characterID == "" {
			return domain.Invite{}, apperrors.EK(apperrors.KindInvalidInput, "invite.character_required",
				"accepting an invite requires a character")
		}
		character, err := s.characters.GetCharacter(ctx, characterID)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return domain.Invite{}, apperrors.EK(apperrors.KindNotFound, "character.not_found", "character not found")
			}
			return domain.Invite{}, fmt.Errorf("lookup accepting character: %w", err)
		}
		if character.OwnerUserID != actorUserID {
			return domain.Invite{}, apperrors.EK(apperrors.KindForbidden, "member.character_not_owned",
				"character does not belong to the joining user")
		}
		// The member row lands before the invite is consumed, so a
		// blocked seat (or any other create failure) leaves the offer
		// open instead of burning it.
		created, err = s.membership.createFromInvite(ctx, actorUserID, domain.CreateMemberInput{
			CampaignID:  invite.CampaignID,
			CharacterID: characterID,
			UserID:      actorUserID,
			PartyRole:   invite.PartyRole,
		})
		if err != nil {
			return domain.Invite{}, err
		}
	}

	responded, matched, err := s.invites.RespondInvite(ctx, invite.ID, status, s.clock().UTC())
	if err != nil {
		if status == domain.InviteStatusAccepted {
			s.backOutMembership(ctx, created)
		}
		return domain.Invite{}, fmt.Errorf("respond invite: %w", err)
	}
	if !matched {
		// Lost the response race; the other outcome stands.
		if status == domain.InviteStatusAccepted {
			s.backOutMembership(ctx, created)
		}
		return responded, nil
	}

	// Either outcome resolves the invitee's inbox offer.
	resolveActionBestEffort(ctx, s.notifier, actorUserID,
		fmt.Sprintf("%s:%s", notifdomain.TypeCampaignInvite, responded.ID))

	s.audit.Emit(ctx, "invite.responded", responded.CampaignID, actorUserID, map[string]any{
		"invite_id": responded.ID,
		"status":    domain.InviteStatusLabel(responded.Status),
	})
	return responded, nil
}

// List lists the caller's invites, newest first.
func (s *InviteService) List(ctx context.Context, userID string) ([]domain.Invite, error) {
	if s == nil || s.invites == nil {
		return nil, fmt.Errorf("invite service is not configured")
	}
	invites, err := s.invites.ListInvitesByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list invites: %w", err)
	}
	return invites, nil
}

// Get fetches one invite for its respondent or a campaign admin.
func (s *InviteService) Get(ctx context.Context, actorUserID, inviteID string) (domain.Invite, error) {
	invite, err := s.getInvite(ctx, inviteID)
	if err != nil {
		return domain.Invite{}, err
	}
	if invite.InvitedUserID == actorUserID {
		return invite, nil
	}
	if _, err := s.roles.RequireRole(ctx, invite.CampaignID, actorUserID, domain.RoleAdmin); err != nil {
		return domain.Invite{}, err
	}
	return invite, nil
}

func (s *InviteService) getInvite(ctx context.Context, inviteID string) (domain.Invite, error) {
	invite, err := s.invites.GetInvite(ctx, inviteID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return domain.Invite{}, apperrors.EK(apperrors.KindNotFound, "invite.not_found", "invite not found")
		}
		return domain.Invite{}, fmt.Errorf("get invite: %w", err)
	}
	return invite, nil
}

func (s *InviteService) getCampaign(ctx context.Context, campaignID string) (domain.Campaign, error) {
	campaign, err := s.campaigns.GetCampaign(ctx, campaignID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return domain.Campaign{}, apperrors.EK(apperrors.KindNotFound, "campaign.not_found", "campaign not found")
		}
		return domain.Campaign{}, fmt.Errorf("get campaign: %w", err)
	}
	return campaign, nil
}

// backOutMembership rejects the pending row created for an acceptance whose
// invite transition lost, freeing the character's seat, and closes the join
// request it raised with the campaign owner.
func (s *InviteService) backOutMembership(ctx context.Context, member domain.Member) {
	if member.ID == "" {
		return
	}
	if _, _, err := s.membership.members.RejectMember(ctx, member.ID); err != nil {
		log.Printf("back out invite membership member=%s: %v", member.ID, err)
	}
	campaign, err := s.campaigns.GetCampaign(ctx, member.CampaignID)
	if err != nil {
		log.Printf("back out invite membership campaign lookup campaign=%s: %v", member.CampaignID, err)
		return
	}
	resolveActionBestEffort(ctx, s.notifier, campaign.OwnerID,
		fmt.Sprintf("%s:%s", notifdomain.TypeCharacterPendingApproval, member.ID))
}

func inviteeNotRegisteredError() error {
	return apperrors.EK(apperrors.KindNotFound, "invite.invitee_not_registered",
		"invited user has no account")
}
