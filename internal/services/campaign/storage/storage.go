// Package storage defines the persistence boundary for campaign membership
// state. Implementations live in subpackages; business logic depends only on
// these interfaces so tests can substitute in-memory fakes.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/louisbranch/adventuring.party/internal/services/campaign/domain"
)

var (
	// ErrNotFound indicates a requested record is missing.
	ErrNotFound = errors.New("record not found")
	// ErrConflict indicates a write conflicts with a uniqueness constraint.
	ErrConflict = errors.New("record conflict")
	// ErrSeatTaken indicates the character already holds a pending or
	// approved member row in some campaign.
	ErrSeatTaken = errors.New("character already holds an active campaign seat")
)

// CampaignStore persists campaign metadata records.
type CampaignStore interface {
	PutCampaign(ctx context.Context, campaign domain.Campaign) error
	GetCampaign(ctx context.Context, campaignID string) (domain.Campaign, error)
	ListCampaignsByOwner(ctx context.Context, ownerID string) ([]domain.Campaign, error)
}

// MemberStore persists campaign member rows.
//
// The decision methods (ApproveMember, RejectMember, SetCharacterStatus) are
// conditional updates: they match the row id together with the expected prior
// status, report matched=false without mutating anything when the row has
// already moved on, and return the current row either way. That conditional
// match is the only concurrency guard for simultaneous decisions.
type MemberStore interface {
	PutMember(ctx context.Context, member domain.Member) error
	GetMember(ctx context.Context, memberID string) (domain.Member, error)
	ListMembersByCampaign(ctx context.Context, campaignID string) ([]domain.Member, error)
	ListMembersByCampaignAndUser(ctx context.Context, campaignID, userID string) ([]domain.Member, error)
	ListMembersByCharacter(ctx context.Context, characterID string) ([]domain.Member, error)
	CountActiveSeatsByCharacter(ctx context.Context, characterID string) (int, error)
	ApproveMember(ctx context.Context, memberID, approvedBy string, at time.Time) (domain.Member, bool, error)
	RejectMember(ctx context.Context, memberID string) (domain.Member, bool, error)
	SetCharacterStatus(ctx context.Context, memberID string, status domain.CharacterStatus) (domain.Member, bool, error)
}

// InviteStore persists campaign invite rows.
type InviteStore interface {
	PutInvite(ctx context.Context, invite domain.Invite) error
	GetInvite(ctx context.Context, inviteID string) (domain.Invite, error)
	GetPendingInviteByCampaignAndUser(ctx context.Context, campaignID, invitedUserID string) (domain.Invite, error)
	ListInvitesByUser(ctx context.Context, invitedUserID string) ([]domain.Invite, error)
	RespondInvite(ctx context.Context, inviteID string, status domain.InviteStatus, at time.Time) (domain.Invite, bool, error)
}

// User is the narrow user-directory record consumed by invite flows.
type User struct {
	ID          string
	Email       string
	DisplayName string
	CreatedAt   time.Time
}

// UserStore looks up users by id or email for invite resolution.
type UserStore interface {
	PutUser(ctx context.Context, user User) error
	GetUser(ctx context.Context, userID string) (User, error)
	GetUserByEmail(ctx context.Context, email string) (User, error)
}

// Character is the narrow character-roster record consumed by membership flows.
type Character struct {
	ID          string
	OwnerUserID string
	Name        string
	CreatedAt   time.Time
}

// CharacterStore checks character existence and ownership.
type CharacterStore interface {
	PutCharacter(ctx context.Context, character Character) error
	GetCharacter(ctx context.Context, characterID string) (Character, error)
}

// AuditEvent records one operation outcome for operational telemetry.
type AuditEvent struct {
	EventName  string
	Severity   string
	CampaignID string
	ActorID    string
	RequestID  string
	TraceID    string
	SpanID     string
	Attributes map[string]any
	Timestamp  time.Time
}

// AuditEventStore appends operation audit events.
type AuditEventStore interface {
	AppendAuditEvent(ctx context.Context, event AuditEvent) error
}
