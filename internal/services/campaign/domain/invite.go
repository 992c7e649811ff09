package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/louisbranch/adventuring.party/internal/platform/id"
)

var (
	// ErrEmptyInviteCampaignID indicates a missing campaign ID.
	ErrEmptyInviteCampaignID = errors.New("campaign id is required")
	// ErrEmptyInvitedUserID indicates a missing invitee.
	ErrEmptyInvitedUserID = errors.New("invited user id is required")
	// ErrEmptyInvitedByUserID indicates a missing inviter.
	ErrEmptyInvitedByUserID = errors.New("invited-by user id is required")
)

// InviteStatus is the lifecycle status of an invite. The first response
// (accept or decline) is terminal.
//
// StatusExpired is reserved: it is declared for forward compatibility but no
// transition currently produces it and no expiry timer exists.
type InviteStatus int

const (
	// InviteStatusUnspecified represents an invalid invite status.
	InviteStatusUnspecified InviteStatus = iota
	// InviteStatusPending indicates an invite awaiting the invitee's response.
	InviteStatusPending
	// InviteStatusAccepted indicates the invitee accepted.
	InviteStatusAccepted
	// InviteStatusDeclined indicates the invitee declined.
	InviteStatusDeclined
	// InviteStatusExpired is reserved and never produced.
	InviteStatusExpired
)

// InviteStatusLabel returns the string label for an invite status.
func InviteStatusLabel(status InviteStatus) string {
	switch status {
	case InviteStatusPending:
		return "PENDING"
	case InviteStatusAccepted:
		return "ACCEPTED"
	case InviteStatusDeclined:
		return "DECLINED"
	case InviteStatusExpired:
		return "EXPIRED"
	default:
		return "UNSPECIFIED"
	}
}

// InviteStatusFromLabel converts a status label to an InviteStatus value.
func InviteStatusFromLabel(label string) InviteStatus {
	switch strings.ToUpper(strings.TrimSpace(label)) {
	case "PENDING":
		return InviteStatusPending
	case "ACCEPTED":
		return InviteStatusAccepted
	case "DECLINED":
		return InviteStatusDeclined
	case "EXPIRED":
		return InviteStatusExpired
	default:
		return InviteStatusUnspecified
	}
}

// Invite is a one-time offer for a known user to join a campaign with a
// given seat role. At most one pending invite exists per campaign+invitee.
type Invite struct {
	ID              string
	CampaignID      string
	InvitedUserID   string
	InvitedByUserID string
	PartyRole       PartyRole
	Status          InviteStatus
	CreatedAt       time.Time
	RespondedAt     *time.Time
}

// CreateInviteInput describes the metadata needed to create an invite.
type CreateInviteInput struct {
	CampaignID      string
	InvitedUserID   string
	InvitedByUserID string
	PartyRole       PartyRole
}

// CreateInvite creates a new pending invite with a generated ID.
func CreateInvite(input CreateInviteInput, now func() time.Time, idGenerator func() (string, error)) (Invite, error) {
	if now == nil {
		now = time.Now
	}
	if idGenerator == nil {
		idGenerator = id.NewID
	}

	normalized, err := NormalizeCreateInviteInput(input)
	if err != nil {
		return Invite{}, err
	}

	inviteID, err := idGenerator()
	if err != nil {
		return Invite{}, fmt.Errorf("generate invite id: %w", err)
	}

	return Invite{
		ID:              inviteID,
		CampaignID:      normalized.CampaignID,
		InvitedUserID:   normalized.InvitedUserID,
		InvitedByUserID: normalized.InvitedByUserID,
		PartyRole:       normalized.PartyRole,
		Status:          InviteStatusPending,
		CreatedAt:       now().UTC(),
	}, nil
}

// NormalizeCreateInviteInput trims and validates invite input metadata.
func NormalizeCreateInviteInput(input CreateInviteInput) (CreateInviteInput, error) {
	input.CampaignID = strings.TrimSpace(input.CampaignID)
	if input.CampaignID == "" {
		return CreateInviteInput{}, ErrEmptyInviteCampaignID
	}
	input.InvitedUserID = strings.TrimSpace(input.InvitedUserID)
	if input.InvitedUserID == "" {
		return CreateInviteInput{}, ErrEmptyInvitedUserID
	}
	input.InvitedByUserID = strings.TrimSpace(input.InvitedByUserID)
	if input.InvitedByUserID == "" {
		return CreateInviteInput{}, ErrEmptyInvitedByUserID
	}
	if input.PartyRole != PartyRolePlayer && input.PartyRole != PartyRoleDM {
		return CreateInviteInput{}, ErrInvalidPartyRole
	}
	return input, nil
}
