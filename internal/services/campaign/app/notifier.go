// Package app orchestrates campaign membership use-cases over the storage
// boundary, fanning out inbox notifications as a side effect.
package app

import (
	"context"
	"log"

	notifdomain "github.com/louisbranch/adventuring.party/internal/services/notifications/domain"
)

// Notifier is the narrow inbox-producer contract consumed by campaign
// services. All calls are best-effort: callers log failures and never roll
// back the state transition that triggered them.
type Notifier interface {
	Notify(ctx context.Context, input notifdomain.CreateInput) error
	ResolveAction(ctx context.Context, recipientUserID, dedupeKey string) error
}

// InboxNotifier bridges campaign fan-out onto the notifications service.
type InboxNotifier struct {
	notifications *notifdomain.Service
}

// NewInboxNotifier wraps the notifications domain service.
func NewInboxNotifier(notifications *notifdomain.Service) *InboxNotifier {
	return &InboxNotifier{notifications: notifications}
}

// Notify appends one inbox item.
func (n *InboxNotifier) Notify(ctx context.Context, input notifdomain.CreateInput) error {
	if n == nil || n.notifications == nil {
		return notifdomain.ErrStoreNotConfigured
	}
	_, err := n.notifications.Create(ctx, input)
	return err
}

// ResolveAction marks the recipient's actionable inbox item as handled.
func (n *InboxNotifier) ResolveAction(ctx context.Context, recipientUserID, dedupeKey string) error {
	if n == nil || n.notifications == nil {
		return notifdomain.ErrStoreNotConfigured
	}
	_, err := n.notifications.MarkActionTaken(ctx, notifdomain.MarkActionTakenInput{
		RecipientUserID: recipientUserID,
		DedupeKey:       dedupeKey,
	})
	return err
}

func notifyBestEffort(ctx context.Context, notifier Notifier, input notifdomain.CreateInput) {
	if notifier == nil {
		return
	}
	if err := notifier.Notify(ctx, input); err != nil {
		log.Printf("notification fan-out failed type=%s recipient=%s: %v", input.Type, input.RecipientUserID, err)
	}
}

func resolveActionBestEffort(ctx context.Context, notifier Notifier, recipientUserID, dedupeKey string) {
	if notifier == nil {
		return
	}
	if err := notifier.ResolveAction(ctx, recipientUserID, dedupeKey); err != nil {
		log.Printf("notification action resolve failed recipient=%s dedupe_key=%s: %v", recipientUserID, dedupeKey, err)
	}
}
