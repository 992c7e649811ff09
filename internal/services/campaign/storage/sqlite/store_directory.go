package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/louisbranch/adventuring.party/internal/services/campaign/storage"
)

// PutUser upserts one user-directory row.
func (s *Store) PutUser(ctx context.Context, user storage.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(user.ID) == "" {
		return fmt.Errorf("user id is required")
	}
	if strings.TrimSpace(user.Email) == "" {
		return fmt.Errorf("user email is required")
	}

	_, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO users (id, email, display_name, created_at)
VALUES (?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
  email = excluded.email,
  display_name = excluded.display_name
`, user.ID, strings.ToLower(strings.TrimSpace(user.Email)), user.DisplayName, toMillis(user.CreatedAt))
	if err != nil {
		if isUniqueConstraintError(err) {
			return storage.ErrConflict
		}
		return fmt.Errorf("put user: %w", err)
	}
	return nil
}

// GetUser fetches one user by id.
func (s *Store) GetUser(ctx context.Context, userID string) (storage.User, error) {
	return s.getUser(ctx, `
SELECT id, email, display_name, created_at
FROM users
WHERE id = ?
`, strings.TrimSpace(userID))
}

// GetUserByEmail fetches one user by email. Lookup is case insensitive
// because addresses are stored lowercased.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (storage.User, error) {
	return s.getUser(ctx, `
SELECT id, email, display_name, created_at
FROM users
WHERE email = ?
`, strings.ToLower(strings.TrimSpace(email)))
}

func (s *Store) getUser(ctx context.Context, query, key string) (storage.User, error) {
	if err := ctx.Err(); err != nil {
		return storage.User{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.User{}, fmt.Errorf("storage is not configured")
	}
	if key == "" {
		return storage.User{}, fmt.Errorf("user lookup key is required")
	}

	var user storage.User
	var createdAt int64
	err := s.sqlDB.QueryRowContext(ctx, query, key).Scan(&user.ID, &user.Email, &user.DisplayName, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.User{}, storage.ErrNotFound
		}
		return storage.User{}, fmt.Errorf("get user: %w", err)
	}
	user.CreatedAt = fromMillis(createdAt)
	return user, nil
}

// PutCharacter upserts one character-roster row.
func (s *Store) PutCharacter(ctx context.Context, character storage.Character) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(character.ID) == "" {
		return fmt.Errorf("character id is required")
	}
	if strings.TrimSpace(character.OwnerUserID) == "" {
		return fmt.Errorf("character owner id is required")
	}

	_, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO characters (id, owner_user_id, name, created_at)
VALUES (?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
  owner_user_id = excluded.owner_user_id,
  name = excluded.name
`, character.ID, character.OwnerUserID, character.Name, toMillis(character.CreatedAt))
	if err != nil {
		return fmt.Errorf("put character: %w", err)
	}
	return nil
}

// GetCharacter fetches one character by id.
func (s *Store) GetCharacter(ctx context.Context, characterID string) (storage.Character, error) {
	if err := ctx.Err(); err != nil {
		return storage.Character{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.Character{}, fmt.Errorf("storage is not configured")
	}
	characterID = strings.TrimSpace(characterID)
	if characterID == "" {
		return storage.Character{}, fmt.Errorf("character id is required")
	}

	var character storage.Character
	var createdAt int64
	err := s.sqlDB.QueryRowContext(ctx, `
SELECT id, owner_user_id, name, created_at
FROM characters
WHERE id = ?
`, characterID).Scan(&character.ID, &character.OwnerUserID, &character.Name, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.Character{}, storage.ErrNotFound
		}
		return storage.Character{}, fmt.Errorf("get character: %w", err)
	}
	character.CreatedAt = fromMillis(createdAt)
	return character, nil
}

// AppendAuditEvent appends one operation audit event row.
func (s *Store) AppendAuditEvent(ctx context.Context, event storage.AuditEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(event.EventName) == "" {
		return fmt.Errorf("audit event name is required")
	}

	attributes := event.Attributes
	if attributes == nil {
		attributes = map[string]any{}
	}
	attributesJSON, err := json.Marshal(attributes)
	if err != nil {
		return fmt.Errorf("marshal audit attributes: %w", err)
	}

	_, err = s.sqlDB.ExecContext(ctx, `
INSERT INTO audit_events (event_name, severity, campaign_id, actor_id, request_id, trace_id, span_id, attributes_json, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
`, event.EventName, event.Severity, event.CampaignID, event.ActorID,
		event.RequestID, event.TraceID, event.SpanID, string(attributesJSON), toMillis(event.Timestamp))
	if err != nil {
		return fmt.Errorf("append audit event: %w", err)
	}
	return nil
}
