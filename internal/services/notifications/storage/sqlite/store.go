// Package sqlite provides SQLite-backed persistence for notification inbox state.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	sqlitemigrate "github.com/louisbranch/adventuring.party/internal/platform/storage/sqlitemigrate"
	"github.com/louisbranch/adventuring.party/internal/services/notifications/domain"
	"github.com/louisbranch/adventuring.party/internal/services/notifications/storage/sqlite/migrations"
	_ "modernc.org/sqlite"
)

const notificationColumns = `id, recipient_user_id, type, campaign_id, payload_json, dedupe_key, requires_action, created_at, updated_at, read_at, action_taken_at`

// Store provides SQLite-backed persistence for notification inbox state.
type Store struct {
	sqlDB *sql.DB
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

func toNullMillis(value *time.Time) sql.NullInt64 {
	if value == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: toMillis(*value), Valid: true}
}

func fromNullMillis(value sql.NullInt64) *time.Time {
	if !value.Valid {
		return nil
	}
	at := fromMillis(value.Int64)
	return &at
}

// Open opens a notifications SQLite store at the provided path.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL&_pragma=foreign_keys(ON)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	store := &Store{sqlDB: sqlDB}
	if err := store.runMigrations(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return store, nil
}

// Close closes the underlying SQLite database.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

func (s *Store) runMigrations() error {
	return sqlitemigrate.ApplyMigrations(s.sqlDB, migrations.FS, "")
}

func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(strings.ToLower(err.Error()), "unique constraint failed")
}

// PutNotification persists one notification inbox row.
func (s *Store) PutNotification(ctx context.Context, notification domain.Notification) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(notification.ID) == "" {
		return fmt.Errorf("notification id is required")
	}
	if strings.TrimSpace(notification.RecipientUserID) == "" {
		return fmt.Errorf("recipient user id is required")
	}
	if strings.TrimSpace(notification.Type) == "" {
		return fmt.Errorf("notification type is required")
	}
	payloadJSON := strings.TrimSpace(notification.PayloadJSON)
	if payloadJSON == "" {
		payloadJSON = "{}"
	}

	requiresAction := 0
	if notification.RequiresAction {
		requiresAction = 1
	}
	_, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO notifications (`+notificationColumns+`)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`, notification.ID, notification.RecipientUserID, notification.Type, notification.CampaignID,
		payloadJSON, notification.DedupeKey, requiresAction,
		toMillis(notification.CreatedAt), toMillis(notification.UpdatedAt),
		toNullMillis(notification.ReadAt), toNullMillis(notification.ActionTakenAt))
	if err != nil {
		if isUniqueConstraintError(err) {
			return domain.ErrConflict
		}
		return fmt.Errorf("put notification: %w", err)
	}
	return nil
}

// GetNotificationByRecipientAndDedupeKey loads one recipient notification by dedupe key.
func (s *Store) GetNotificationByRecipientAndDedupeKey(ctx context.Context, recipientUserID string, dedupeKey string) (domain.Notification, error) {
	if err := ctx.Err(); err != nil {
		return domain.Notification{}, err
	}
	if s == nil || s.sqlDB == nil {
		return domain.Notification{}, fmt.Errorf("storage is not configured")
	}
	recipientUserID = strings.TrimSpace(recipientUserID)
	dedupeKey = strings.TrimSpace(dedupeKey)
	if recipientUserID == "" {
		return domain.Notification{}, fmt.Errorf("recipient user id is required")
	}
	if dedupeKey == "" {
		return domain.Notification{}, domain.ErrNotFound
	}

	row := s.sqlDB.QueryRowContext(ctx, `
SELECT `+notificationColumns+`
FROM notifications
WHERE recipient_user_id = ? AND dedupe_key = ?
`, recipientUserID, dedupeKey)
	notification, err := scanNotification(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Notification{}, domain.ErrNotFound
		}
		return domain.Notification{}, fmt.Errorf("get notification by dedupe key: %w", err)
	}
	return notification, nil
}

// ListNotificationsByRecipient lists one recipient inbox newest-first with
// cursor pagination. The page token is the id of the last item on the
// previous page.
func (s *Store) ListNotificationsByRecipient(ctx context.Context, recipientUserID string, pageSize int, pageToken string) (domain.NotificationPage, error) {
	if err := ctx.Err(); err != nil {
		return domain.NotificationPage{}, err
	}
	if s == nil || s.sqlDB == nil {
		return domain.NotificationPage{}, fmt.Errorf("storage is not configured")
	}
	recipientUserID = strings.TrimSpace(recipientUserID)
	pageToken = strings.TrimSpace(pageToken)
	if recipientUserID == "" {
		return domain.NotificationPage{}, fmt.Errorf("recipient user id is required")
	}
	if pageSize <= 0 {
		return domain.NotificationPage{}, fmt.Errorf("page size must be greater than zero")
	}

	limit := pageSize + 1
	if pageToken == "" {
		rows, err := s.sqlDB.QueryContext(ctx, `
SELECT `+notificationColumns+`
FROM notifications
WHERE recipient_user_id = ?
ORDER BY created_at DESC, id DESC
LIMIT ?
`, recipientUserID, limit)
		if err != nil {
			return domain.NotificationPage{}, fmt.Errorf("list notifications: %w", err)
		}
		defer rows.Close()
		return collectNotificationPage(rows, pageSize)
	}

	tokenCreatedAt, err := s.notificationCreatedAtByID(ctx, recipientUserID, pageToken)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.NotificationPage{}, nil
		}
		return domain.NotificationPage{}, err
	}

	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT `+notificationColumns+`
FROM notifications
WHERE recipient_user_id = ?
  AND (created_at < ? OR (created_at = ? AND id < ?))
ORDER BY created_at DESC, id DESC
LIMIT ?
`, recipientUserID, toMillis(tokenCreatedAt), toMillis(tokenCreatedAt), pageToken, limit)
	if err != nil {
		return domain.NotificationPage{}, fmt.Errorf("list notifications with token: %w", err)
	}
	defer rows.Close()
	return collectNotificationPage(rows, pageSize)
}

// CountUnreadNotificationsByRecipient returns unread inbox count for one recipient.
func (s *Store) CountUnreadNotificationsByRecipient(ctx context.Context, recipientUserID string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if s == nil || s.sqlDB == nil {
		return 0, fmt.Errorf("storage is not configured")
	}
	recipientUserID = strings.TrimSpace(recipientUserID)
	if recipientUserID == "" {
		return 0, fmt.Errorf("recipient user id is required")
	}

	var unreadCount int
	if err := s.sqlDB.QueryRowContext(ctx, `
SELECT COUNT(1)
FROM notifications
WHERE recipient_user_id = ? AND read_at IS NULL
`, recipientUserID).Scan(&unreadCount); err != nil {
		return 0, fmt.Errorf("count unread notifications: %w", err)
	}
	return unreadCount, nil
}

// MarkNotificationRead marks one notification row as read for a recipient.
// Re-reading an already read row is a no-op that returns the current row.
func (s *Store) MarkNotificationRead(ctx context.Context, recipientUserID string, notificationID string, readAt time.Time) (domain.Notification, error) {
	if err := ctx.Err(); err != nil {
		return domain.Notification{}, err
	}
	if s == nil || s.sqlDB == nil {
		return domain.Notification{}, fmt.Errorf("storage is not configured")
	}
	recipientUserID = strings.TrimSpace(recipientUserID)
	notificationID = strings.TrimSpace(notificationID)
	if recipientUserID == "" {
		return domain.Notification{}, fmt.Errorf("recipient user id is required")
	}
	if notificationID == "" {
		return domain.Notification{}, fmt.Errorf("notification id is required")
	}

	millis := toMillis(readAt)
	if _, err := s.sqlDB.ExecContext(ctx, `
UPDATE notifications
SET read_at = ?, updated_at = ?
WHERE recipient_user_id = ? AND id = ? AND read_at IS NULL
`, millis, millis, recipientUserID, notificationID); err != nil {
		return domain.Notification{}, fmt.Errorf("mark notification read: %w", err)
	}
	return s.getNotificationByRecipientAndID(ctx, recipientUserID, notificationID)
}

// MarkAllNotificationsRead marks a recipient's entire unread inbox as read.
func (s *Store) MarkAllNotificationsRead(ctx context.Context, recipientUserID string, readAt time.Time) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if s == nil || s.sqlDB == nil {
		return 0, fmt.Errorf("storage is not configured")
	}
	recipientUserID = strings.TrimSpace(recipientUserID)
	if recipientUserID == "" {
		return 0, fmt.Errorf("recipient user id is required")
	}

	millis := toMillis(readAt)
	result, err := s.sqlDB.ExecContext(ctx, `
UPDATE notifications
SET read_at = ?, updated_at = ?
WHERE recipient_user_id = ? AND read_at IS NULL
`, millis, millis, recipientUserID)
	if err != nil {
		return 0, fmt.Errorf("mark all notifications read: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("mark all notifications read rows affected: %w", err)
	}
	return int(affected), nil
}

// MarkNotificationActionTaken resolves one actionable notification by
// recipient and dedupe key, stamping read as a side effect. Already resolved
// rows come back unchanged.
func (s *Store) MarkNotificationActionTaken(ctx context.Context, recipientUserID string, dedupeKey string, at time.Time) (domain.Notification, error) {
	if err := ctx.Err(); err != nil {
		return domain.Notification{}, err
	}
	if s == nil || s.sqlDB == nil {
		return domain.Notification{}, fmt.Errorf("storage is not configured")
	}
	recipientUserID = strings.TrimSpace(recipientUserID)
	dedupeKey = strings.TrimSpace(dedupeKey)
	if recipientUserID == "" {
		return domain.Notification{}, fmt.Errorf("recipient user id is required")
	}
	if dedupeKey == "" {
		return domain.Notification{}, fmt.Errorf("dedupe key is required")
	}

	millis := toMillis(at)
	if _, err := s.sqlDB.ExecContext(ctx, `
UPDATE notifications
SET action_taken_at = ?, read_at = COALESCE(read_at, ?), updated_at = ?
WHERE recipient_user_id = ? AND dedupe_key = ? AND action_taken_at IS NULL
`, millis, millis, millis, recipientUserID, dedupeKey); err != nil {
		return domain.Notification{}, fmt.Errorf("mark notification action taken: %w", err)
	}
	return s.GetNotificationByRecipientAndDedupeKey(ctx, recipientUserID, dedupeKey)
}

func (s *Store) notificationCreatedAtByID(ctx context.Context, recipientUserID string, notificationID string) (time.Time, error) {
	row := s.sqlDB.QueryRowContext(ctx, `
SELECT created_at
FROM notifications
WHERE recipient_user_id = ? AND id = ?
`, recipientUserID, notificationID)
	var createdAtMillis int64
	if err := row.Scan(&createdAtMillis); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return time.Time{}, domain.ErrNotFound
		}
		return time.Time{}, fmt.Errorf("lookup notification cursor: %w", err)
	}
	return fromMillis(createdAtMillis), nil
}

func (s *Store) getNotificationByRecipientAndID(ctx context.Context, recipientUserID string, notificationID string) (domain.Notification, error) {
	row := s.sqlDB.QueryRowContext(ctx, `
SELECT `+notificationColumns+`
FROM notifications
WHERE recipient_user_id = ? AND id = ?
`, recipientUserID, notificationID)
	notification, err := scanNotification(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Notification{}, domain.ErrNotFound
		}
		return domain.Notification{}, fmt.Errorf("get notification by id: %w", err)
	}
	return notification, nil
}

func scanNotification(scan func(...any) error) (domain.Notification, error) {
	var notification domain.Notification
	var requiresAction int
	var createdAt, updatedAt int64
	var readAt, actionTakenAt sql.NullInt64
	if err := scan(&notification.ID, &notification.RecipientUserID, &notification.Type,
		&notification.CampaignID, &notification.PayloadJSON, &notification.DedupeKey,
		&requiresAction, &createdAt, &updatedAt, &readAt, &actionTakenAt); err != nil {
		return domain.Notification{}, err
	}
	notification.RequiresAction = requiresAction != 0
	notification.CreatedAt = fromMillis(createdAt)
	notification.UpdatedAt = fromMillis(updatedAt)
	notification.ReadAt = fromNullMillis(readAt)
	notification.ActionTakenAt = fromNullMillis(actionTakenAt)
	return notification, nil
}

func collectNotificationPage(rows *sql.Rows, pageSize int) (domain.NotificationPage, error) {
	page := domain.NotificationPage{
		Notifications: make([]domain.Notification, 0, pageSize),
	}
	for rows.Next() {
		notification, err := scanNotification(rows.Scan)
		if err != nil {
			return domain.NotificationPage{}, fmt.Errorf("scan notification row: %w", err)
		}
		page.Notifications = append(page.Notifications, notification)
	}
	if err := rows.Err(); err != nil {
		return domain.NotificationPage{}, fmt.Errorf("iterate notification rows: %w", err)
	}
	if len(page.Notifications) > pageSize {
		page.NextPageToken = page.Notifications[pageSize-1].ID
		page.Notifications = page.Notifications[:pageSize]
	}
	return page, nil
}
