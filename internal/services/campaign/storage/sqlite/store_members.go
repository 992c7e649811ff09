package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/louisbranch/adventuring.party/internal/services/campaign/domain"
	"github.com/louisbranch/adventuring.party/internal/services/campaign/storage"
)

const memberColumns = `id, campaign_id, character_id, user_id, party_role, status, character_status, requested_at, approved_at, approved_by, joined_at`

// PutMember inserts one member row. The partial unique index on active seats
// is the backstop for the one-active-campaign-per-character invariant; a
// violation surfaces as storage.ErrSeatTaken.
func (s *Store) PutMember(ctx context.Context, member domain.Member) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(member.ID) == "" {
		return fmt.Errorf("member id is required")
	}
	if strings.TrimSpace(member.CampaignID) == "" {
		return fmt.Errorf("campaign id is required")
	}
	if strings.TrimSpace(member.CharacterID) == "" {
		return fmt.Errorf("character id is required")
	}

	_, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO campaign_members (`+memberColumns+`)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`, member.ID, member.CampaignID, member.CharacterID, member.UserID,
		domain.PartyRoleLabel(member.PartyRole),
		domain.MemberStatusLabel(member.Status),
		domain.CharacterStatusLabel(member.CharacterStatus),
		toMillis(member.RequestedAt),
		toNullMillis(member.ApprovedAt),
		member.ApprovedBy,
		toNullMillis(member.JoinedAt))
	if err != nil {
		if isUniqueConstraintError(err) {
			return storage.ErrSeatTaken
		}
		return fmt.Errorf("put member: %w", err)
	}
	return nil
}

// GetMember fetches one member row by id.
func (s *Store) GetMember(ctx context.Context, memberID string) (domain.Member, error) {
	if err := ctx.Err(); err != nil {
		return domain.Member{}, err
	}
	if s == nil || s.sqlDB == nil {
		return domain.Member{}, fmt.Errorf("storage is not configured")
	}
	memberID = strings.TrimSpace(memberID)
	if memberID == "" {
		return domain.Member{}, fmt.Errorf("member id is required")
	}

	row := s.sqlDB.QueryRowContext(ctx, `
SELECT `+memberColumns+`
FROM campaign_members
WHERE id = ?
`, memberID)
	member, err := scanMember(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Member{}, storage.ErrNotFound
		}
		return domain.Member{}, fmt.Errorf("get member: %w", err)
	}
	return member, nil
}

// ListMembersByCampaign lists all member rows for one campaign.
func (s *Store) ListMembersByCampaign(ctx context.Context, campaignID string) ([]domain.Member, error) {
	return s.listMembers(ctx, `
SELECT `+memberColumns+`
FROM campaign_members
WHERE campaign_id = ?
ORDER BY requested_at ASC, id ASC
`, strings.TrimSpace(campaignID))
}

// ListMembersByCampaignAndUser lists one user's member rows in one campaign.
func (s *Store) ListMembersByCampaignAndUser(ctx context.Context, campaignID, userID string) ([]domain.Member, error) {
	return s.listMembers(ctx, `
SELECT `+memberColumns+`
FROM campaign_members
WHERE campaign_id = ? AND user_id = ?
ORDER BY requested_at ASC, id ASC
`, strings.TrimSpace(campaignID), strings.TrimSpace(userID))
}

// ListMembersByCharacter lists all member rows for one character.
func (s *Store) ListMembersByCharacter(ctx context.Context, characterID string) ([]domain.Member, error) {
	return s.listMembers(ctx, `
SELECT `+memberColumns+`
FROM campaign_members
WHERE character_id = ?
ORDER BY requested_at ASC, id ASC
`, strings.TrimSpace(characterID))
}

func (s *Store) listMembers(ctx context.Context, query string, args ...any) ([]domain.Member, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	for _, arg := range args {
		if value, ok := arg.(string); ok && value == "" {
			return nil, fmt.Errorf("list members: empty id argument")
		}
	}

	rows, err := s.sqlDB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	defer rows.Close()

	var members []domain.Member
	for rows.Next() {
		member, scanErr := scanMember(rows.Scan)
		if scanErr != nil {
			return nil, fmt.Errorf("scan member row: %w", scanErr)
		}
		members = append(members, member)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate member rows: %w", err)
	}
	return members, nil
}

// CountActiveSeatsByCharacter counts pending/approved rows for one character.
func (s *Store) CountActiveSeatsByCharacter(ctx context.Context, characterID string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if s == nil || s.sqlDB == nil {
		return 0, fmt.Errorf("storage is not configured")
	}
	characterID = strings.TrimSpace(characterID)
	if characterID == "" {
		return 0, fmt.Errorf("character id is required")
	}

	var count int
	if err := s.sqlDB.QueryRowContext(ctx, `
SELECT COUNT(1)
FROM campaign_members
WHERE character_id = ? AND status IN ('PENDING', 'APPROVED')
`, characterID).Scan(&count); err != nil {
		return 0, fmt.Errorf("count active seats: %w", err)
	}
	return count, nil
}

// ApproveMember conditionally moves one pending member to approved. The
// WHERE clause matching id AND status is the concurrency guard: of two
// simultaneous decisions exactly one matches; the other gets matched=false
// and the current row unchanged.
func (s *Store) ApproveMember(ctx context.Context, memberID, approvedBy string, at time.Time) (domain.Member, bool, error) {
	if err := ctx.Err(); err != nil {
		return domain.Member{}, false, err
	}
	if s == nil || s.sqlDB == nil {
		return domain.Member{}, false, fmt.Errorf("storage is not configured")
	}
	memberID = strings.TrimSpace(memberID)
	if memberID == "" {
		return domain.Member{}, false, fmt.Errorf("member id is required")
	}

	millis := toMillis(at)
	result, err := s.sqlDB.ExecContext(ctx, `
UPDATE campaign_members
SET status = 'APPROVED', character_status = 'ACTIVE', approved_at = ?, approved_by = ?, joined_at = ?
WHERE id = ? AND status = 'PENDING'
`, millis, strings.TrimSpace(approvedBy), millis, memberID)
	if err != nil {
		return domain.Member{}, false, fmt.Errorf("approve member: %w", err)
	}
	return s.decisionOutcome(ctx, memberID, result)
}

// RejectMember conditionally moves one pending member to rejected.
func (s *Store) RejectMember(ctx context.Context, memberID string) (domain.Member, bool, error) {
	if err := ctx.Err(); err != nil {
		return domain.Member{}, false, err
	}
	if s == nil || s.sqlDB == nil {
		return domain.Member{}, false, fmt.Errorf("storage is not configured")
	}
	memberID = strings.TrimSpace(memberID)
	if memberID == "" {
		return domain.Member{}, false, fmt.Errorf("member id is required")
	}

	result, err := s.sqlDB.ExecContext(ctx, `
UPDATE campaign_members
SET status = 'REJECTED'
WHERE id = ? AND status = 'PENDING'
`, memberID)
	if err != nil {
		return domain.Member{}, false, fmt.Errorf("reject member: %w", err)
	}
	return s.decisionOutcome(ctx, memberID, result)
}

// SetCharacterStatus conditionally updates an approved member's character
// status.
func (s *Store) SetCharacterStatus(ctx context.Context, memberID string, status domain.CharacterStatus) (domain.Member, bool, error) {
	if err := ctx.Err(); err != nil {
		return domain.Member{}, false, err
	}
	if s == nil || s.sqlDB == nil {
		return domain.Member{}, false, fmt.Errorf("storage is not configured")
	}
	memberID = strings.TrimSpace(memberID)
	if memberID == "" {
		return domain.Member{}, false, fmt.Errorf("member id is required")
	}

	result, err := s.sqlDB.ExecContext(ctx, `
UPDATE campaign_members
SET character_status = ?
WHERE id = ? AND status = 'APPROVED' AND character_status <> ?
`, domain.CharacterStatusLabel(status), memberID, domain.CharacterStatusLabel(status))
	if err != nil {
		return domain.Member{}, false, fmt.Errorf("set character status: %w", err)
	}
	return s.decisionOutcome(ctx, memberID, result)
}

func (s *Store) decisionOutcome(ctx context.Context, memberID string, result sql.Result) (domain.Member, bool, error) {
	affected, err := result.RowsAffected()
	if err != nil {
		return domain.Member{}, false, fmt.Errorf("decision rows affected: %w", err)
	}
	member, err := s.GetMember(ctx, memberID)
	if err != nil {
		return domain.Member{}, false, err
	}
	return member, affected > 0, nil
}

// scanMember loads one member row, normalizing legacy values at the
// data-access boundary: rows written before the status column defaulted are
// treated as approved, and a missing character status as active. Business
// logic above never sees the blanks.
func scanMember(scan func(...any) error) (domain.Member, error) {
	var member domain.Member
	var partyRole, status, characterStatus string
	var requestedAt int64
	var approvedAt, joinedAt sql.NullInt64
	if err := scan(&member.ID, &member.CampaignID, &member.CharacterID, &member.UserID,
		&partyRole, &status, &characterStatus, &requestedAt, &approvedAt, &member.ApprovedBy, &joinedAt); err != nil {
		return domain.Member{}, err
	}

	member.PartyRole = domain.PartyRoleFromLabel(partyRole)
	if strings.TrimSpace(status) == "" {
		member.Status = domain.MemberStatusApproved
	} else {
		member.Status = domain.MemberStatusFromLabel(status)
	}
	if strings.TrimSpace(characterStatus) == "" {
		member.CharacterStatus = domain.CharacterStatusActive
	} else {
		member.CharacterStatus = domain.CharacterStatusFromLabel(characterStatus)
	}
	member.RequestedAt = fromMillis(requestedAt)
	member.ApprovedAt = fromNullMillis(approvedAt)
	member.JoinedAt = fromNullMillis(joinedAt)
	return member, nil
}
