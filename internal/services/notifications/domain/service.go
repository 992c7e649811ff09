// Package domain holds notification inbox lifecycle behavior.
package domain

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/louisbranch/adventuring.party/internal/platform/id"
)

var (
	// ErrNotFound indicates a notification record was not found.
	ErrNotFound = errors.New("notification not found")
	// ErrConflict indicates a write conflicted with existing uniqueness constraints.
	ErrConflict = errors.New("notification conflict")
	// ErrStoreNotConfigured indicates the service is missing persistence wiring.
	ErrStoreNotConfigured = errors.New("notification store is not configured")
	// ErrRecipientUserIDRequired indicates recipient identity is required.
	ErrRecipientUserIDRequired = errors.New("recipient user id is required")
	// ErrTypeRequired indicates a notification type is required.
	ErrTypeRequired = errors.New("notification type is required")
	// ErrNotificationIDRequired indicates notification ID is required.
	ErrNotificationIDRequired = errors.New("notification id is required")
	// ErrDedupeKeyRequired indicates a dedupe key is required for the lookup.
	ErrDedupeKeyRequired = errors.New("notification dedupe key is required")
)

const (
	defaultPageSize = 50
	maxPageSize     = 200
)

// Notification captures one append-only, user-targeted inbox item. Rows are
// never deleted; the recipient is the only mutator, and the only mutable
// fields are the read and action-taken stamps.
type Notification struct {
	ID              string
	RecipientUserID string
	Type            string
	CampaignID      string
	PayloadJSON     string
	DedupeKey       string
	RequiresAction  bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
	ReadAt          *time.Time
	ActionTakenAt   *time.Time
}

// NotificationPage is a paged recipient inbox view.
type NotificationPage struct {
	Notifications []Notification
	NextPageToken string
}

// CreateInput describes one producer notification request.
type CreateInput struct {
	RecipientUserID string
	Type            string
	CampaignID      string
	PayloadJSON     string
	DedupeKey       string
}

// ListInboxInput configures recipient inbox listing.
type ListInboxInput struct {
	RecipientUserID string
	PageSize        int
	PageToken       string
}

// MarkReadInput identifies one recipient notification to acknowledge.
type MarkReadInput struct {
	RecipientUserID string
	NotificationID  string
}

// MarkActionTakenInput resolves an actionable notification by its dedupe key,
// so producers can close the offer they opened without knowing the inbox row id.
type MarkActionTakenInput struct {
	RecipientUserID string
	DedupeKey       string
}

// Store is the domain persistence boundary for notification lifecycle behavior.
type Store interface {
	PutNotification(ctx context.Context, notification Notification) error
	GetNotificationByRecipientAndDedupeKey(ctx context.Context, recipientUserID string, dedupeKey string) (Notification, error)
	ListNotificationsByRecipient(ctx context.Context, recipientUserID string, pageSize int, pageToken string) (NotificationPage, error)
	CountUnreadNotificationsByRecipient(ctx context.Context, recipientUserID string) (int, error)
	MarkNotificationRead(ctx context.Context, recipientUserID string, notificationID string, readAt time.Time) (Notification, error)
	MarkAllNotificationsRead(ctx context.Context, recipientUserID string, readAt time.Time) (int, error)
	MarkNotificationActionTaken(ctx context.Context, recipientUserID string, dedupeKey string, at time.Time) (Notification, error)
}

// Service orchestrates recipient inbox lifecycle behavior.
type Service struct {
	store Store
	clock func() time.Time
	newID func() (string, error)
}

// NewService constructs notification domain use-cases.
func NewService(store Store, clock func() time.Time, newID func() (string, error)) *Service {
	if clock == nil {
		clock = time.Now
	}
	if newID == nil {
		newID = id.NewID
	}
	return &Service{
		store: store,
		clock: clock,
		newID: newID,
	}
}

// Create stores one notification item and de-duplicates by recipient+dedupe
// key: replayed producer requests return the existing row instead of a second
// inbox item.
func (s *Service) Create(ctx context.Context, input CreateInput) (Notification, error) {
	if s == nil || s.store == nil {
		return Notification{}, ErrStoreNotConfigured
	}
	recipientUserID := strings.TrimSpace(input.RecipientUserID)
	if recipientUserID == "" {
		return Notification{}, ErrRecipientUserIDRequired
	}
	notificationType := strings.TrimSpace(input.Type)
	if notificationType == "" {
		return Notification{}, ErrTypeRequired
	}
	dedupeKey := strings.TrimSpace(input.DedupeKey)
	if dedupeKey != "" {
		existing, err := s.store.GetNotificationByRecipientAndDedupeKey(ctx, recipientUserID, dedupeKey)
		if err == nil {
			return existing, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return Notification{}, err
		}
	}

	notificationID, err := s.newID()
	if err != nil {
		return Notification{}, err
	}
	now := s.nowUTC()
	notification := Notification{
		ID:              notificationID,
		RecipientUserID: recipientUserID,
		Type:            notificationType,
		CampaignID:      strings.TrimSpace(input.CampaignID),
		PayloadJSON:     strings.TrimSpace(input.PayloadJSON),
		DedupeKey:       dedupeKey,
		RequiresAction:  RequiresAction(notificationType),
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.store.PutNotification(ctx, notification); err != nil {
		// Two producers racing the same dedupe key: whoever lost the
		// insert reads back the winner's row.
		if dedupeKey != "" && errors.Is(err, ErrConflict) {
			existing, lookupErr := s.store.GetNotificationByRecipientAndDedupeKey(ctx, recipientUserID, dedupeKey)
			if lookupErr == nil {
				return existing, nil
			}
			if errors.Is(lookupErr, ErrNotFound) {
				return Notification{}, err
			}
			return Notification{}, lookupErr
		}
		return Notification{}, err
	}
	return notification, nil
}

// ListInbox lists recipient inbox notifications newest first.
func (s *Service) ListInbox(ctx context.Context, input ListInboxInput) (NotificationPage, error) {
	if s == nil || s.store == nil {
		return NotificationPage{}, ErrStoreNotConfigured
	}
	recipientUserID := strings.TrimSpace(input.RecipientUserID)
	if recipientUserID == "" {
		return NotificationPage{}, ErrRecipientUserIDRequired
	}
	pageSize := input.PageSize
	switch {
	case pageSize <= 0:
		pageSize = defaultPageSize
	case pageSize > maxPageSize:
		pageSize = maxPageSize
	}
	return s.store.ListNotificationsByRecipient(ctx, recipientUserID, pageSize, strings.TrimSpace(input.PageToken))
}

// UnreadCount returns the recipient's unread inbox count.
func (s *Service) UnreadCount(ctx context.Context, recipientUserID string) (int, error) {
	if s == nil || s.store == nil {
		return 0, ErrStoreNotConfigured
	}
	recipientUserID = strings.TrimSpace(recipientUserID)
	if recipientUserID == "" {
		return 0, ErrRecipientUserIDRequired
	}
	return s.store.CountUnreadNotificationsByRecipient(ctx, recipientUserID)
}

// MarkRead marks one recipient notification as read.
func (s *Service) MarkRead(ctx context.Context, input MarkReadInput) (Notification, error) {
	if s == nil || s.store == nil {
		return Notification{}, ErrStoreNotConfigured
	}
	recipientUserID := strings.TrimSpace(input.RecipientUserID)
	if recipientUserID == "" {
		return Notification{}, ErrRecipientUserIDRequired
	}
	notificationID := strings.TrimSpace(input.NotificationID)
	if notificationID == "" {
		return Notification{}, ErrNotificationIDRequired
	}
	return s.store.MarkNotificationRead(ctx, recipientUserID, notificationID, s.nowUTC())
}

// MarkAllRead marks the recipient's entire unread inbox as read and returns
// how many rows changed.
func (s *Service) MarkAllRead(ctx context.Context, recipientUserID string) (int, error) {
	if s == nil || s.store == nil {
		return 0, ErrStoreNotConfigured
	}
	recipientUserID = strings.TrimSpace(recipientUserID)
	if recipientUserID == "" {
		return 0, ErrRecipientUserIDRequired
	}
	return s.store.MarkAllNotificationsRead(ctx, recipientUserID, s.nowUTC())
}

// MarkActionTaken resolves one actionable notification by recipient and
// dedupe key, stamping both action-taken and read so the offer stops
// surfacing as pending.
func (s *Service) MarkActionTaken(ctx context.Context, input MarkActionTakenInput) (Notification, error) {
	if s == nil || s.store == nil {
		return Notification{}, ErrStoreNotConfigured
	}
	recipientUserID := strings.TrimSpace(input.RecipientUserID)
	if recipientUserID == "" {
		return Notification{}, ErrRecipientUserIDRequired
	}
	dedupeKey := strings.TrimSpace(input.DedupeKey)
	if dedupeKey == "" {
		return Notification{}, ErrDedupeKeyRequired
	}
	return s.store.MarkNotificationActionTaken(ctx, recipientUserID, dedupeKey, s.nowUTC())
}

func (s *Service) nowUTC() time.Time {
	if s.clock == nil {
		return time.Now().UTC()
	}
	return s.clock().UTC()
}
