package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/louisbranch/adventuring.party/internal/platform/id"
)

var (
	// ErrEmptyMemberCampaignID indicates a missing campaign ID.
	ErrEmptyMemberCampaignID = errors.New("campaign id is required")
	// ErrEmptyCharacterID indicates a missing character ID.
	ErrEmptyCharacterID = errors.New("character id is required")
	// ErrEmptyMemberUserID indicates a missing user ID.
	ErrEmptyMemberUserID = errors.New("user id is required")
	// ErrInvalidPartyRole indicates a missing or invalid party role.
	ErrInvalidPartyRole = errors.New("party role is required")
	// ErrInvalidInitialStatus indicates an unsupported initial member status.
	ErrInvalidInitialStatus = errors.New("initial member status must be pending or approved")
)

// MemberStatus is the admission status of a member row. Approved and
// rejected are terminal: a decided row never returns to pending.
type MemberStatus int

const (
	// MemberStatusUnspecified represents an invalid member status.
	MemberStatusUnspecified MemberStatus = iota
	// MemberStatusPending indicates a seat awaiting admin decision.
	MemberStatusPending
	// MemberStatusApproved indicates an admitted party member.
	MemberStatusApproved
	// MemberStatusRejected indicates a declined applicant.
	MemberStatusRejected
)

// MemberStatusLabel returns the string label for a member status.
func MemberStatusLabel(status MemberStatus) string {
	switch status {
	case MemberStatusPending:
		return "PENDING"
	case MemberStatusApproved:
		return "APPROVED"
	case MemberStatusRejected:
		return "REJECTED"
	default:
		return "UNSPECIFIED"
	}
}

// MemberStatusFromLabel converts a status label to a MemberStatus value.
func MemberStatusFromLabel(label string) MemberStatus {
	switch strings.ToUpper(strings.TrimSpace(label)) {
	case "PENDING":
		return MemberStatusPending
	case "APPROVED":
		return MemberStatusApproved
	case "REJECTED":
		return MemberStatusRejected
	default:
		return MemberStatusUnspecified
	}
}

// CharacterStatus is the in-fiction status of an approved member's
// character. It is meaningful only once the member is approved.
type CharacterStatus int

const (
	// CharacterStatusUnspecified represents an invalid character status.
	CharacterStatusUnspecified CharacterStatus = iota
	// CharacterStatusActive indicates a character playing in the campaign.
	CharacterStatusActive
	// CharacterStatusInactive indicates a character that left the campaign.
	CharacterStatusInactive
	// CharacterStatusDeceased indicates a character that died in the fiction.
	CharacterStatusDeceased
)

// CharacterStatusLabel returns the string label for a character status.
func CharacterStatusLabel(status CharacterStatus) string {
	switch status {
	case CharacterStatusActive:
		return "ACTIVE"
	case CharacterStatusInactive:
		return "INACTIVE"
	case CharacterStatusDeceased:
		return "DECEASED"
	default:
		return "UNSPECIFIED"
	}
}

// CharacterStatusFromLabel converts a status label to a CharacterStatus value.
func CharacterStatusFromLabel(label string) CharacterStatus {
	switch strings.ToUpper(strings.TrimSpace(label)) {
	case "ACTIVE":
		return CharacterStatusActive
	case "INACTIVE":
		return CharacterStatusInactive
	case "DECEASED":
		return CharacterStatusDeceased
	default:
		return CharacterStatusUnspecified
	}
}

// Member binds one character/user pair to one campaign. A character holds at
// most one member row with status pending or approved across all campaigns.
type Member struct {
	ID              string
	CampaignID      string
	CharacterID     string
	UserID          string
	PartyRole       PartyRole
	Status          MemberStatus
	CharacterStatus CharacterStatus
	RequestedAt     time.Time
	ApprovedAt      *time.Time
	ApprovedBy      string
	JoinedAt        *time.Time
}

// CreateMemberInput describes the metadata needed to create a member row.
type CreateMemberInput struct {
	CampaignID    string
	CharacterID   string
	UserID        string
	PartyRole     PartyRole
	InitialStatus MemberStatus
	ApprovedBy    string
}

// CreateMember creates a member row in its initial state. Invite acceptance
// creates pending rows; an admin adding a known user may create an approved
// row directly, which stamps approval and join times immediately.
func CreateMember(input CreateMemberInput, now func() time.Time, idGenerator func() (string, error)) (Member, error) {
	if now == nil {
		now = time.Now
	}
	if idGenerator == nil {
		idGenerator = id.NewID
	}

	normalized, err := NormalizeCreateMemberInput(input)
	if err != nil {
		return Member{}, err
	}

	memberID, err := idGenerator()
	if err != nil {
		return Member{}, fmt.Errorf("generate member id: %w", err)
	}

	requestedAt := now().UTC()
	member := Member{
		ID:              memberID,
		CampaignID:      normalized.CampaignID,
		CharacterID:     normalized.CharacterID,
		UserID:          normalized.UserID,
		PartyRole:       normalized.PartyRole,
		Status:          normalized.InitialStatus,
		CharacterStatus: CharacterStatusActive,
		RequestedAt:     requestedAt,
	}
	if normalized.InitialStatus == MemberStatusApproved {
		approvedAt := requestedAt
		member.ApprovedAt = &approvedAt
		member.JoinedAt = &approvedAt
		member.ApprovedBy = normalized.ApprovedBy
	}
	return member, nil
}

// NormalizeCreateMemberInput trims and validates member input metadata.
func NormalizeCreateMemberInput(input CreateMemberInput) (CreateMemberInput, error) {
	input.CampaignID = strings.TrimSpace(input.CampaignID)
	if input.CampaignID == "" {
		return CreateMemberInput{}, ErrEmptyMemberCampaignID
	}
	input.CharacterID = strings.TrimSpace(input.CharacterID)
	if input.CharacterID == "" {
		return CreateMemberInput{}, ErrEmptyCharacterID
	}
	input.UserID = strings.TrimSpace(input.UserID)
	if input.UserID == "" {
		return CreateMemberInput{}, ErrEmptyMemberUserID
	}
	if input.PartyRole != PartyRolePlayer && input.PartyRole != PartyRoleDM {
		return CreateMemberInput{}, ErrInvalidPartyRole
	}
	if input.InitialStatus == MemberStatusUnspecified {
		input.InitialStatus = MemberStatusPending
	}
	if input.InitialStatus != MemberStatusPending && input.InitialStatus != MemberStatusApproved {
		return CreateMemberInput{}, ErrInvalidInitialStatus
	}
	input.ApprovedBy = strings.TrimSpace(input.ApprovedBy)
	return input, nil
}

// HoldsActiveSeat reports whether the row blocks the character from joining
// another campaign: pending and approved rows both hold the seat.
func (m Member) HoldsActiveSeat() bool {
	return m.Status == MemberStatusPending || m.Status == MemberStatusApproved
}
