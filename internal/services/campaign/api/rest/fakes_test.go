package rest

import (
	"context"

	"github.com/louisbranch/adventuring.party/internal/services/campaign/app"
	"github.com/louisbranch/adventuring.party/internal/services/campaign/domain"
	notifdomain "github.com/louisbranch/adventuring.party/internal/services/notifications/domain"
)

type fakeCampaignService struct {
	createFn      func(ctx context.Context, ownerID string, input domain.CreateCampaignInput) (domain.Campaign, error)
	getFn         func(ctx context.Context, campaignID string) (domain.Campaign, error)
	listFn        func(ctx context.Context, ownerID string) ([]domain.Campaign, error)
	listMembersFn func(ctx context.Context, actorUserID, campaignID string) ([]domain.Member, error)
}

func (f *fakeCampaignService) Create(ctx context.Context, ownerID string, input domain.CreateCampaignInput) (domain.Campaign, error) {
	return f.createFn(ctx, ownerID, input)
}

func (f *fakeCampaignService) Get(ctx context.Context, campaignID string) (domain.Campaign, error) {
	return f.getFn(ctx, campaignID)
}

func (f *fakeCampaignService) ListByOwner(ctx context.Context, ownerID string) ([]domain.Campaign, error) {
	return f.listFn(ctx, ownerID)
}

func (f *fakeCampaignService) ListMembers(ctx context.Context, actorUserID, campaignID string) ([]domain.Member, error) {
	return f.listMembersFn(ctx, actorUserID, campaignID)
}

type fakeMembershipService struct {
	createFn       func(ctx context.Context, actorUserID string, input domain.CreateMemberInput) (domain.Member, error)
	approveFn      func(ctx context.Context, actorUserID, memberID string) (domain.Member, error)
	rejectFn       func(ctx context.Context, actorUserID, memberID string) (domain.Member, error)
	updateStatusFn func(ctx context.Context, actorUserID, memberID string, newStatus domain.CharacterStatus) (domain.Member, error)
}

func (f *fakeMembershipService) Create(ctx context.Context, actorUserID string, input domain.CreateMemberInput) (domain.Member, error) {
	return f.createFn(ctx, actorUserID, input)
}

func (f *fakeMembershipService) Approve(ctx context.Context, actorUserID, memberID string) (domain.Member, error) {
	return f.approveFn(ctx, actorUserID, memberID)
}

func (f *fakeMembershipService) Reject(ctx context.Context, actorUserID, memberID string) (domain.Member, error) {
	return f.rejectFn(ctx, actorUserID, memberID)
}

func (f *fakeMembershipService) UpdateCharacterStatus(ctx context.Context, actorUserID, memberID string, newStatus domain.CharacterStatus) (domain.Member, error) {
	return f.updateStatusFn(ctx, actorUserID, memberID, newStatus)
}

type fakeInviteService struct {
	createFn        func(ctx context.Context, actorUserID string, input domain.CreateInviteInput) (domain.Invite, error)
	createByEmailFn func(ctx context.Context, actorUserID, campaignID, email string, partyRole domain.PartyRole) (domain.Invite, error)
	respondFn       func(ctx context.Context, actorUserID string, input app.RespondInput) (domain.Invite, error)
	listFn          func(ctx context.Context, userID string) ([]domain.Invite, error)
	getFn           func(ctx context.Context, actorUserID, inviteID string) (domain.Invite, error)
}

func (f *fakeInviteService) Create(ctx context.Context, actorUserID string, input domain.CreateInviteInput) (domain.Invite, error) {
	return f.createFn(ctx, actorUserID, input)
}

func (f *fakeInviteService) CreateByEmail(ctx context.Context, actorUserID, campaignID, email string, partyRole domain.PartyRole) (domain.Invite, error) {
	return f.createByEmailFn(ctx, actorUserID, campaignID, email, partyRole)
}

func (f *fakeInviteService) Respond(ctx context.Context, actorUserID string, input app.RespondInput) (domain.Invite, error) {
	return f.respondFn(ctx, actorUserID, input)
}

func (f *fakeInviteService) List(ctx context.Context, userID string) ([]domain.Invite, error) {
	return f.listFn(ctx, userID)
}

func (f *fakeInviteService) Get(ctx context.Context, actorUserID, inviteID string) (domain.Invite, error) {
	return f.getFn(ctx, actorUserID, inviteID)
}

type fakeNotificationService struct {
	listInboxFn   func(ctx context.Context, input notifdomain.ListInboxInput) (notifdomain.NotificationPage, error)
	unreadFn      func(ctx context.Context, recipientUserID string) (int, error)
	markReadFn    func(ctx context.Context, input notifdomain.MarkReadInput) (notifdomain.Notification, error)
	markAllReadFn func(ctx context.Context, recipientUserID string) (int, error)
}

func (f *fakeNotificationService) ListInbox(ctx context.Context, input notifdomain.ListInboxInput) (notifdomain.NotificationPage, error) {
	return f.listInboxFn(ctx, input)
}

func (f *fakeNotificationService) UnreadCount(ctx context.Context, recipientUserID string) (int, error) {
	return f.unreadFn(ctx, recipientUserID)
}

func (f *fakeNotificationService) MarkRead(ctx context.Context, input notifdomain.MarkReadInput) (notifdomain.Notification, error) {
	return f.markReadFn(ctx, input)
}

func (f *fakeNotificationService) MarkAllRead(ctx context.Context, recipientUserID string) (int, error) {
	return f.markAllReadFn(ctx, recipientUserID)
}
