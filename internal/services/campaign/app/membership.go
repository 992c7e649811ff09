package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	apperrors "github.com/louisbranch/adventuring.party/internal/platform/errors"
	"github.com/louisbranch/adventuring.party/internal/platform/id"
	"github.com/louisbranch/adventuring.party/internal/services/campaign/domain"
	"github.com/louisbranch/adventuring.party/internal/services/campaign/storage"
	notifdomain "github.com/louisbranch/adventuring.party/internal/services/notifications/domain"
)

// MembershipService owns the member lifecycle: creation, admission decisions,
// and roster status changes, with notification fan-out on each transition.
type MembershipService struct {
	campaigns  storage.CampaignStore
	members    storage.MemberStore
	characters storage.CharacterStore
	roles      *RoleService
	notifier   Notifier
	audit      *AuditEmitter
	clock      func() time.Time
	newID      func() (string, error)
}

// NewMembershipService constructs membership use-cases.
func NewMembershipService(campaigns storage.CampaignStore, members storage.MemberStore, characters storage.CharacterStore, roles *RoleService, notifier Notifier, audit *AuditEmitter, clock func() time.Time, newID func() (string, error)) *MembershipService {
	if clock == nil {
		clock = time.Now
	}
	if newID == nil {
		newID = id.NewID
	}
	return &MembershipService{
		campaigns:  campaigns,
		members:    members,
		characters: characters,
		roles:      roles,
		notifier:   notifier,
		audit:      audit,
		clock:      clock,
		newID:      newID,
	}
}

// Create persists one member row on a campaign admin's authority. Membership
// only enters through an admin or an accepted invite; there is no open
// self-join. The character must belong to the member user and must not
// already hold a seat anywhere.
func (s *MembershipService) Create(ctx context.Context, actorUserID string, input domain.CreateMemberInput) (domain.Member, error) {
	if s == nil || s.members == nil {
		return domain.Member{}, fmt.Errorf("membership service is not configured")
	}
	campaign, err := s.getCampaign(ctx, input.CampaignID)
	if err != nil {
		return domain.Member{}, err
	}
	if _, err := s.roles.RequireRole(ctx, campaign.ID, actorUserID, domain.RoleAdmin); err != nil {
		return domain.Member{}, err
	}
	return s.create(ctx, actorUserID, campaign, input)
}

// createFromInvite admits an accepted invite as a pending row. Holding the
// responded invite is the authorization, so no campaign role is required of
// the caller, and the row always enters pending.
func (s *MembershipService) createFromInvite(ctx context.Context, actorUserID string, input domain.CreateMemberInput) (domain.Member, error) {
	if s == nil || s.members == nil {
		return domain.Member{}, fmt.Errorf("membership service is not configured")
	}
	campaign, err := s.getCampaign(ctx, input.CampaignID)
	if err != nil {
		return domain.Member{}, err
	}
	input.InitialStatus = domain.MemberStatusPending
	return s.create(ctx, actorUserID, campaign, input)
}

func (s *MembershipService) create(ctx context.Context, actorUserID string, campaign domain.Campaign, input domain.CreateMemberInput) (domain.Member, error) {
	character, err := s.getCharacter(ctx, input.CharacterID)
	if err != nil {
		return domain.Member{}, err
	}
	if character.OwnerUserID != input.UserID {
		return domain.Member{}, apperrors.EK(apperrors.KindForbidden, "member.character_not_owned",
			"character does not belong to the joining user")
	}

	// Pre-check keeps the common duplicate friendly; the partial unique
	// index backstops the race.
	seatCount, err := s.members.CountActiveSeatsByCharacter(ctx, input.CharacterID)
	if err != nil {
		return domain.Member{}, fmt.Errorf("check character seat: %w", err)
	}
	if seatCount > 0 {
		return domain.Member{}, seatTakenError()
	}

	member, err := domain.CreateMember(input, s.clock, s.newID)
	if err != nil {
		return domain.Member{}, apperrors.E(apperrors.KindInvalidInput, err.Error())
	}
	if err := s.members.PutMember(ctx, member); err != nil {
		if errors.Is(err, storage.ErrSeatTaken) {
			return domain.Member{}, seatTakenError()
		}
		return domain.Member{}, fmt.Errorf("put member: %w", err)
	}

	switch member.Status {
	case domain.MemberStatusPending:
		// Ask the campaign owner to decide.
		payload, encodeErr := notifdomain.EncodePayload(notifdomain.TypeCharacterPendingApproval, notifdomain.CharacterPendingApprovalPayload{
			CampaignID:        campaign.ID,
			CampaignName:      campaign.Name,
			MemberID:          member.ID,
			CharacterID:       character.ID,
			CharacterName:     character.Name,
			RequestedByUserID: member.UserID,
		})
		if encodeErr != nil {
			log.Printf("encode pending approval payload member=%s: %v", member.ID, encodeErr)
		}
		notifyBestEffort(ctx, s.notifier, notifdomain.CreateInput{
			RecipientUserID: campaign.OwnerID,
			Type:            notifdomain.TypeCharacterPendingApproval,
			CampaignID:      campaign.ID,
			PayloadJSON:     payload,
			DedupeKey:       fmt.Sprintf("%s:%s", notifdomain.TypeCharacterPendingApproval, member.ID),
		})
	case domain.MemberStatusApproved:
		s.announceNewPartyMember(ctx, campaign, member, character.Name, actorUserID)
	}

	s.audit.Emit(ctx, "member.created", campaign.ID, actorUserID, map[string]any{
		"member_id": member.ID,
		"status":    domain.MemberStatusLabel(member.Status),
	})
	return member, nil
}

// Approve admits one pending member. The decision is a conditional update:
// if the row already left pending, the call is an idempotent no-op returning
// the current record.
func (s *MembershipService) Approve(ctx context.Context, actorUserID, memberID string) (domain.Member, error) {
	member, campaign, err := s.loadDecisionTarget(ctx, actorUserID, memberID)
	if err != nil {
		return domain.Member{}, err
	}
	if !domain.ValidateDecisionTransition(member.Status) {
		return member, nil
	}

	decided, matched, err := s.members.ApproveMember(ctx, member.ID, actorUserID, s.clock().UTC())
	if err != nil {
		return domain.Member{}, fmt.Errorf("approve member: %w", err)
	}
	if !matched {
		return decided, nil
	}

	characterName := s.characterName(ctx, decided.CharacterID)

	payload, encodeErr := notifdomain.EncodePayload(notifdomain.TypeCharacterApproved, notifdomain.CharacterDecisionPayload{
		CampaignID:      campaign.ID,
		CampaignName:    campaign.Name,
		MemberID:        decided.ID,
		CharacterID:     decided.CharacterID,
		CharacterName:   characterName,
		DecidedByUserID: actorUserID,
	})
	if encodeErr != nil {
		log.Printf("encode approval payload member=%s: %v", decided.ID, encodeErr)
	}
	notifyBestEffort(ctx, s.notifier, notifdomain.CreateInput{
		RecipientUserID: decided.UserID,
		Type:            notifdomain.TypeCharacterApproved,
		CampaignID:      campaign.ID,
		PayloadJSON:     payload,
		DedupeKey:       fmt.Sprintf("%s:%s", notifdomain.TypeCharacterApproved, decided.ID),
	})
	s.announceNewPartyMember(ctx, campaign, decided, characterName, actorUserID)
	resolveActionBestEffort(ctx, s.notifier, campaign.OwnerID,
		fmt.Sprintf("%s:%s", notifdomain.TypeCharacterPendingApproval, decided.ID))

	s.audit.Emit(ctx, "member.approved", campaign.ID, actorUserID, map[string]any{"member_id": decided.ID})
	return decided, nil
}

// Reject declines one pending member. Like Approve, a row that already left
// pending makes this an idempotent no-op.
func (s *MembershipService) Reject(ctx context.Context, actorUserID, memberID string) (domain.Member, error) {
	member, campaign, err := s.loadDecisionTarget(ctx, actorUserID, memberID)
	if err != nil {
		return domain.Member{}, err
	}
	if !domain.ValidateDecisionTransition(member.Status) {
		return member, nil
	}

	decided, matched, err := s.members.RejectMember(ctx, member.ID)
	if err != nil {
		return domain.Member{}, fmt.Errorf("reject member: %w", err)
	}
	if !matched {
		return decided, nil
	}

	payload, encodeErr := notifdomain.EncodePayload(notifdomain.TypeCharacterRejected, notifdomain.CharacterDecisionPayload{
		CampaignID:      campaign.ID,
		CampaignName:    campaign.Name,
		MemberID:        decided.ID,
		CharacterID:     decided.CharacterID,
		CharacterName:   s.characterName(ctx, decided.CharacterID),
		DecidedByUserID: actorUserID,
	})
	if encodeErr != nil {
		log.Printf("encode rejection payload member=%s: %v", decided.ID, encodeErr)
	}
	// Rejection stays between the decider and the applicant.
	notifyBestEffort(ctx, s.notifier, notifdomain.CreateInput{
		RecipientUserID: decided.UserID,
		Type:            notifdomain.TypeCharacterRejected,
		CampaignID:      campaign.ID,
		PayloadJSON:     payload,
		DedupeKey:       fmt.Sprintf("%s:%s", notifdomain.TypeCharacterRejected, decided.ID),
	})
	resolveActionBestEffort(ctx, s.notifier, campaign.OwnerID,
		fmt.Sprintf("%s:%s", notifdomain.TypeCharacterPendingApproval, decided.ID))

	s.audit.Emit(ctx, "member.rejected", campaign.ID, actorUserID, map[string]any{"member_id": decided.ID})
	return decided, nil
}

// UpdateCharacterStatus moves an approved member's roster status. The admin
// may set any status; the owning user may only step back to inactive. Setting
// the current value again is a no-op.
func (s *MembershipService) UpdateCharacterStatus(ctx context.Context, actorUserID, memberID string, newStatus domain.CharacterStatus) (domain.Member, error) {
	if s == nil || s.members == nil {
		return domain.Member{}, fmt.Errorf("membership service is not configured")
	}
	member, err := s.getMember(ctx, memberID)
	if err != nil {
		return domain.Member{}, err
	}
	campaign, err := s.getCampaign(ctx, member.CampaignID)
	if err != nil {
		return domain.Member{}, err
	}

	actorRole, err := s.roles.ResolveRole(ctx, campaign.ID, actorUserID)
	if err != nil {
		return domain.Member{}, err
	}
	if err := domain.ValidateCharacterStatusChange(actorRole, member.UserID == actorUserID, newStatus); err != nil {
		return domain.Member{}, err
	}

	updated, matched, err := s.members.SetCharacterStatus(ctx, member.ID, newStatus)
	if err != nil {
		return domain.Member{}, fmt.Errorf("set character status: %w", err)
	}
	if !matched {
		return updated, nil
	}

	s.announceCharacterStatus(ctx, campaign, updated, actorUserID)
	s.audit.Emit(ctx, "member.character_status", campaign.ID, actorUserID, map[string]any{
		"member_id": updated.ID,
		"status":    domain.CharacterStatusLabel(updated.CharacterStatus),
	})
	return updated, nil
}

// CascadeOnCharacterDelete flips the character's approved+active memberships
// to inactive through the leave path. Rows already inactive or deceased are
// left alone; member rows are never deleted.
func (s *MembershipService) CascadeOnCharacterDelete(ctx context.Context, actorUserID, characterID string) (int, error) {
	if s == nil || s.members == nil {
		return 0, fmt.Errorf("membership service is not configured")
	}
	members, err := s.members.ListMembersByCharacter(ctx, characterID)
	if err != nil {
		return 0, fmt.Errorf("list character memberships: %w", err)
	}

	changed := 0
	for _, member := range members {
		if member.Status != domain.MemberStatusApproved || member.CharacterStatus != domain.CharacterStatusActive {
			continue
		}
		updated, matched, err := s.members.SetCharacterStatus(ctx, member.ID, domain.CharacterStatusInactive)
		if err != nil {
			return changed, fmt.Errorf("cascade character delete member %s: %w", member.ID, err)
		}
		if !matched {
			continue
		}
		changed++
		if campaign, campaignErr := s.getCampaign(ctx, member.CampaignID); campaignErr == nil {
			s.announceCharacterStatus(ctx, campaign, updated, actorUserID)
			s.audit.Emit(ctx, "member.character_status", campaign.ID, actorUserID, map[string]any{
				"member_id": updated.ID,
				"status":    domain.CharacterStatusLabel(updated.CharacterStatus),
				"cascade":   true,
			})
		}
	}
	return changed, nil
}

// Get fetches one member row by id.
func (s *MembershipService) Get(ctx context.Context, memberID string) (domain.Member, error) {
	return s.getMember(ctx, memberID)
}

func (s *MembershipService) loadDecisionTarget(ctx context.Context, actorUserID, memberID string) (domain.Member, domain.Campaign, error) {
	if s == nil || s.members == nil {
		return domain.Member{}, domain.Campaign{}, fmt.Errorf("membership service is not configured")
	}
	member, err := s.getMember(ctx, memberID)
	if err != nil {
		return domain.Member{}, domain.Campaign{}, err
	}
	campaign, err := s.getCampaign(ctx, member.CampaignID)
	if err != nil {
		return domain.Member{}, domain.Campaign{}, err
	}
	if _, err := s.roles.RequireRole(ctx, campaign.ID, actorUserID, domain.RoleAdmin); err != nil {
		return domain.Member{}, domain.Campaign{}, err
	}
	return member, campaign, nil
}

// announceNewPartyMember fans out to every other approved member, skipping
// the newcomer and the deciding actor. Each write is independent; one failed
// recipient never blocks the rest.
func (s *MembershipService) announceNewPartyMember(ctx context.Context, campaign domain.Campaign, member domain.Member, characterName string, actorUserID string) {
	roster, err := s.members.ListMembersByCampaign(ctx, campaign.ID)
	if err != nil {
		log.Printf("new party member fan-out roster lookup campaign=%s: %v", campaign.ID, err)
		return
	}

	payload, encodeErr := notifdomain.EncodePayload(notifdomain.TypeNewPartyMember, notifdomain.NewPartyMemberPayload{
		CampaignID:    campaign.ID,
		CampaignName:  campaign.Name,
		MemberID:      member.ID,
		CharacterID:   member.CharacterID,
		CharacterName: characterName,
		UserID:        member.UserID,
	})
	if encodeErr != nil {
		log.Printf("encode new party member payload member=%s: %v", member.ID, encodeErr)
	}
	for _, recipient := range fanOutRecipients(roster, campaign.OwnerID, member.UserID, actorUserID) {
		notifyBestEffort(ctx, s.notifier, notifdomain.CreateInput{
			RecipientUserID: recipient,
			Type:            notifdomain.TypeNewPartyMember,
			CampaignID:      campaign.ID,
			PayloadJSON:     payload,
			DedupeKey:       fmt.Sprintf("%s:%s:%s", notifdomain.TypeNewPartyMember, member.ID, recipient),
		})
	}
}

// announceCharacterStatus fans out character.left or character.deceased to
// the rest of the party, excluding the acting user. A return to active is
// silent.
func (s *MembershipService) announceCharacterStatus(ctx context.Context, campaign domain.Campaign, member domain.Member, actorUserID string) {
	var notificationType string
	switch member.CharacterStatus {
	case domain.CharacterStatusInactive:
		notificationType = notifdomain.TypeCharacterLeft
	case domain.CharacterStatusDeceased:
		notificationType = notifdomain.TypeCharacterDeceased
	default:
		return
	}

	roster, err := s.members.ListMembersByCampaign(ctx, campaign.ID)
	if err != nil {
		log.Printf("character status fan-out roster lookup campaign=%s: %v", campaign.ID, err)
		return
	}

	payload, encodeErr := notifdomain.EncodePayload(notificationType, notifdomain.CharacterStatusPayload{
		CampaignID:    campaign.ID,
		CampaignName:  campaign.Name,
		MemberID:      member.ID,
		CharacterID:   member.CharacterID,
		CharacterName: s.characterName(ctx, member.CharacterID),
	})
	if encodeErr != nil {
		log.Printf("encode character status payload member=%s: %v", member.ID, encodeErr)
	}
	for _, recipient := range fanOutRecipients(roster, campaign.OwnerID, actorUserID) {
		notifyBestEffort(ctx, s.notifier, notifdomain.CreateInput{
			RecipientUserID: recipient,
			Type:            notificationType,
			CampaignID:      campaign.ID,
			PayloadJSON:     payload,
			DedupeKey:       fmt.Sprintf("%s:%s:%s", notificationType, member.ID, recipient),
		})
	}
}

// fanOutRecipients collects the owner plus every approved member's user,
// deduplicated, excluding the given users.
func fanOutRecipients(roster []domain.Member, ownerID string, excludeUserIDs ...string) []string {
	seen := map[string]bool{}
	for _, excluded := range excludeUserIDs {
		seen[excluded] = true
	}
	var recipients []string
	if ownerID != "" && !seen[ownerID] {
		seen[ownerID] = true
		recipients = append(recipients, ownerID)
	}
	for _, member := range roster {
		if member.Status != domain.MemberStatusApproved {
			continue
		}
		if seen[member.UserID] {
			continue
		}
		seen[member.UserID] = true
		recipients = append(recipients, member.UserID)
	}
	return recipients
}

func (s *MembershipService) getMember(ctx context.Context, memberID string) (domain.Member, error) {
	member, err := s.members.GetMember(ctx, memberID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return domain.Member{}, apperrors.EK(apperrors.KindNotFound, "member.not_found", "campaign member not found")
		}
		return domain.Member{}, fmt.Errorf("get member: %w", err)
	}
	return member, nil
}

func (s *MembershipService) getCampaign(ctx context.Context, campaignID string) (domain.Campaign, error) {
	campaign, err := s.campaigns.GetCampaign(ctx, campaignID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return domain.Campaign{}, apperrors.EK(apperrors.KindNotFound, "campaign.not_found", "campaign not found")
		}
		return domain.Campaign{}, fmt.Errorf("get campaign: %w", err)
	}
	return campaign, nil
}

func (s *MembershipService) getCharacter(ctx context.Context, characterID string) (storage.Character, error) {
	character, err := s.characters.GetCharacter(ctx, characterID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return storage.Character{}, apperrors.EK(apperrors.KindNotFound, "character.not_found", "character not found")
		}
		return storage.Character{}, fmt.Errorf("get character: %w", err)
	}
	return character, nil
}

func (s *MembershipService) characterName(ctx context.Context, characterID string) string {
	if s.characters == nil {
		return ""
	}
	character, err := s.characters.GetCharacter(ctx, characterID)
	if err != nil {
		return ""
	}
	return character.Name
}

func seatTakenError() error {
	return apperrors.EK(apperrors.KindConflict, "member.seat_taken",
		"character already has a pending or approved membership in another campaign")
}
