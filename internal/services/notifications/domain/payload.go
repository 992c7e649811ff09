package domain

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Notification type tokens. Producers send these verbatim; consumers switch
// on them to decode the payload variant.
const (
	// TypeCampaignInvite offers campaign membership to the recipient.
	TypeCampaignInvite = "campaign.invite"
	// TypeCharacterPendingApproval asks a campaign owner to decide on a
	// join request.
	TypeCharacterPendingApproval = "character_pending_approval"
	// TypeCharacterApproved tells a requester their character was admitted.
	TypeCharacterApproved = "character_approved"
	// TypeCharacterRejected tells a requester their character was turned away.
	TypeCharacterRejected = "character_rejected"
	// TypeNewPartyMember announces an admitted character to the rest of
	// the party.
	TypeNewPartyMember = "newPartyMember"
	// TypeCharacterLeft announces a character stepping back from the party.
	TypeCharacterLeft = "character.left"
	// TypeCharacterDeceased announces an in-fiction character death.
	TypeCharacterDeceased = "character.deceased"
	// TypeSessionRSVP is reserved for the session scheduler.
	TypeSessionRSVP = "session.rsvp"
)

// CampaignInvitePayload carries one campaign membership offer.
type CampaignInvitePayload struct {
	CampaignID      string `json:"campaign_id"`
	CampaignName    string `json:"campaign_name"`
	InviteID        string `json:"invite_id"`
	InvitedByUserID string `json:"invited_by_user_id"`
	PartyRole       string `json:"party_role"`
}

// CharacterPendingApprovalPayload carries one join request awaiting a decision.
type CharacterPendingApprovalPayload struct {
	CampaignID        string `json:"campaign_id"`
	CampaignName      string `json:"campaign_name"`
	MemberID          string `json:"member_id"`
	CharacterID       string `json:"character_id"`
	CharacterName     string `json:"character_name"`
	RequestedByUserID string `json:"requested_by_user_id"`
}

// CharacterDecisionPayload carries one approve/reject outcome back to the
// requester.
type CharacterDecisionPayload struct {
	CampaignID      string `json:"campaign_id"`
	CampaignName    string `json:"campaign_name"`
	MemberID        string `json:"member_id"`
	CharacterID     string `json:"character_id"`
	CharacterName   string `json:"character_name"`
	DecidedByUserID string `json:"decided_by_user_id"`
}

// NewPartyMemberPayload announces an admitted character to approved members.
type NewPartyMemberPayload struct {
	CampaignID    string `json:"campaign_id"`
	CampaignName  string `json:"campaign_name"`
	MemberID      string `json:"member_id"`
	CharacterID   string `json:"character_id"`
	CharacterName string `json:"character_name"`
	UserID        string `json:"user_id"`
}

// CharacterStatusPayload announces a roster status change to the party.
type CharacterStatusPayload struct {
	CampaignID    string `json:"campaign_id"`
	CampaignName  string `json:"campaign_name"`
	MemberID      string `json:"member_id"`
	CharacterID   string `json:"character_id"`
	CharacterName string `json:"character_name"`
}

// RequiresAction reports whether a notification type represents an open
// offer or request the recipient is expected to resolve.
func RequiresAction(notificationType string) bool {
	switch strings.TrimSpace(notificationType) {
	case TypeCampaignInvite, TypeCharacterPendingApproval:
		return true
	default:
		return false
	}
}

// EncodePayload serializes one typed payload variant, checking that the
// variant matches the declared notification type.
func EncodePayload(notificationType string, payload any) (string, error) {
	if err := checkPayloadVariant(notificationType, payload); err != nil {
		return "", err
	}
	encoded, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("encode %s payload: %w", notificationType, err)
	}
	return string(encoded), nil
}

// DecodePayload deserializes one payload into the variant declared by the
// notification type. Unknown types decode into a generic map so old readers
// survive new producers.
func DecodePayload(notificationType string, payloadJSON string) (any, error) {
	raw := []byte(strings.TrimSpace(payloadJSON))
	if len(raw) == 0 {
		raw = []byte("{}")
	}

	decode := func(target any) (any, error) {
		if err := json.Unmarshal(raw, target); err != nil {
			return nil, fmt.Errorf("decode %s payload: %w", notificationType, err)
		}
		return target, nil
	}

	switch strings.TrimSpace(notificationType) {
	case TypeCampaignInvite:
		return decode(&CampaignInvitePayload{})
	case TypeCharacterPendingApproval:
		return decode(&CharacterPendingApprovalPayload{})
	case TypeCharacterApproved, TypeCharacterRejected:
		return decode(&CharacterDecisionPayload{})
	case TypeNewPartyMember:
		return decode(&NewPartyMemberPayload{})
	case TypeCharacterLeft, TypeCharacterDeceased:
		return decode(&CharacterStatusPayload{})
	default:
		return decode(&map[string]any{})
	}
}

func checkPayloadVariant(notificationType string, payload any) error {
	var ok bool
	switch strings.TrimSpace(notificationType) {
	case TypeCampaignInvite:
		_, ok = payload.(CampaignInvitePayload)
	case TypeCharacterPendingApproval:
		_, ok = payload.(CharacterPendingApprovalPayload)
	case TypeCharacterApproved, TypeCharacterRejected:
		_, ok = payload.(CharacterDecisionPayload)
	case TypeNewPartyMember:
		_, ok = payload.(NewPartyMemberPayload)
	case TypeCharacterLeft, TypeCharacterDeceased:
		_, ok = payload.(CharacterStatusPayload)
	default:
		return fmt.Errorf("unknown notification type %q", notificationType)
	}
	if !ok {
		return fmt.Errorf("payload %T does not match notification type %q", payload, notificationType)
	}
	return nil
}
