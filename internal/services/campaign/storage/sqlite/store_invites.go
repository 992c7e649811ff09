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

const inviteColumns = `id, campaign_id, invited_user_id, invited_by_user_id, party_role, status, created_at, responded_at`

// PutInvite inserts one invite row. The partial unique index on pending
// invites enforces one live invite per campaign and invitee; a violation
// surfaces as storage.ErrConflict.
func (s *Store) PutInvite(ctx context.Context, invite domain.Invite) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(invite.ID) == "" {
		return fmt.Errorf("invite id is required")
	}
	if strings.TrimSpace(invite.CampaignID) == "" {
		return fmt.Errorf("campaign id is required")
	}
	if strings.TrimSpace(invite.InvitedUserID) == "" {
		return fmt.Errorf("invited user id is required")
	}

	_, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO campaign_invites (`+inviteColumns+`)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
`, invite.ID, invite.CampaignID, invite.InvitedUserID, invite.InvitedByUserID,
		domain.PartyRoleLabel(invite.PartyRole),
		domain.InviteStatusLabel(invite.Status),
		toMillis(invite.CreatedAt),
		toNullMillis(invite.RespondedAt))
	if err != nil {
		if isUniqueConstraintError(err) {
			return storage.ErrConflict
		}
		return fmt.Errorf("put invite: %w", err)
	}
	return nil
}

// GetInvite fetches one invite row by id.
func (s *Store) GetInvite(ctx context.Context, inviteID string) (domain.Invite, error) {
	if err := ctx.Err(); err != nil {
		return domain.Invite{}, err
	}
	if s == nil || s.sqlDB == nil {
		return domain.Invite{}, fmt.Errorf("storage is not configured")
	}
	inviteID = strings.TrimSpace(inviteID)
	if inviteID == "" {
		return domain.Invite{}, fmt.Errorf("invite id is required")
	}

	row := s.sqlDB.QueryRowContext(ctx, `
SELECT `+inviteColumns+`
FROM campaign_invites
WHERE id = ?
`, inviteID)
	invite, err := scanInvite(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Invite{}, storage.ErrNotFound
		}
		return domain.Invite{}, fmt.Errorf("get invite: %w", err)
	}
	return invite, nil
}

// GetPendingInviteByCampaignAndUser fetches the live invite for one campaign
// and invitee, if any.
func (s *Store) GetPendingInviteByCampaignAndUser(ctx context.Context, campaignID, invitedUserID string) (domain.Invite, error) {
	if err := ctx.Err(); err != nil {
		return domain.Invite{}, err
	}
	if s == nil || s.sqlDB == nil {
		return domain.Invite{}, fmt.Errorf("storage is not configured")
	}
	campaignID = strings.TrimSpace(campaignID)
	invitedUserID = strings.TrimSpace(invitedUserID)
	if campaignID == "" || invitedUserID == "" {
		return domain.Invite{}, fmt.Errorf("campaign id and invited user id are required")
	}

	row := s.sqlDB.QueryRowContext(ctx, `
SELECT `+inviteColumns+`
FROM campaign_invites
WHERE campaign_id = ? AND invited_user_id = ? AND status = 'PENDING'
`, campaignID, invitedUserID)
	invite, err := scanInvite(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Invite{}, storage.ErrNotFound
		}
		return domain.Invite{}, fmt.Errorf("get pending invite: %w", err)
	}
	return invite, nil
}

// ListInvitesByUser lists all invites addressed to one user, newest first.
func (s *Store) ListInvitesByUser(ctx context.Context, invitedUserID string) ([]domain.Invite, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	invitedUserID = strings.TrimSpace(invitedUserID)
	if invitedUserID == "" {
		return nil, fmt.Errorf("invited user id is required")
	}

	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT `+inviteColumns+`
FROM campaign_invites
WHERE invited_user_id = ?
ORDER BY created_at DESC, id DESC
`, invitedUserID)
	if err != nil {
		return nil, fmt.Errorf("list invites by user: %w", err)
	}
	defer rows.Close()

	var invites []domain.Invite
	for rows.Next() {
		invite, scanErr := scanInvite(rows.Scan)
		if scanErr != nil {
			return nil, fmt.Errorf("scan invite row: %w", scanErr)
		}
		invites = append(invites, invite)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate invite rows: %w", err)
	}
	return invites, nil
}

// RespondInvite conditionally moves one pending invite to the given terminal
// status, stamping responded_at. The WHERE clause matching id AND status is
// the concurrency guard; a row that already moved on comes back unchanged
// with matched=false.
func (s *Store) RespondInvite(ctx context.Context, inviteID string, status domain.InviteStatus, at time.Time) (domain.Invite, bool, error) {
	if err := ctx.Err(); err != nil {
		return domain.Invite{}, false, err
	}
	if s == nil || s.sqlDB == nil {
		return domain.Invite{}, false, fmt.Errorf("storage is not configured")
	}
	inviteID = strings.TrimSpace(inviteID)
	if inviteID == "" {
		return domain.Invite{}, false, fmt.Errorf("invite id is required")
	}
	if status != domain.InviteStatusAccepted && status != domain.InviteStatusDeclined {
		return domain.Invite{}, false, fmt.Errorf("invite response status must be accepted or declined")
	}

	result, err := s.sqlDB.ExecContext(ctx, `
UPDATE campaign_invites
SET status = ?, responded_at = ?
WHERE id = ? AND status = 'PENDING'
`, domain.InviteStatusLabel(status), toMillis(at), inviteID)
	if err != nil {
		return domain.Invite{}, false, fmt.Errorf("respond invite: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return domain.Invite{}, false, fmt.Errorf("respond invite rows affected: %w", err)
	}
	invite, err := s.GetInvite(ctx, inviteID)
	if err != nil {
		return domain.Invite{}, false, err
	}
	return invite, affected > 0, nil
}

func scanInvite(scan func(...any) error) (domain.Invite, error) {
	var invite domain.Invite
	var partyRole, status string
	var createdAt int64
	var respondedAt sql.NullInt64
	if err := scan(&invite.ID, &invite.CampaignID, &invite.InvitedUserID, &invite.InvitedByUserID,
		&partyRole, &status, &createdAt, &respondedAt); err != nil {
		return domain.Invite{}, err
	}

	invite.PartyRole = domain.PartyRoleFromLabel(partyRole)
	invite.Status = domain.InviteStatusFromLabel(status)
	invite.CreatedAt = fromMillis(createdAt)
	invite.RespondedAt = fromNullMillis(respondedAt)
	return invite, nil
}
