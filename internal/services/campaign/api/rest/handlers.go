package rest

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	apperrors "github.com/louisbranch/adventuring.party/internal/platform/errors"
	"github.com/louisbranch/adventuring.party/internal/platform/httpx"
	"github.com/louisbranch/adventuring.party/internal/services/campaign/app"
	"github.com/louisbranch/adventuring.party/internal/services/campaign/domain"
	notifdomain "github.com/louisbranch/adventuring.party/internal/services/notifications/domain"
)

// campaignService defines the campaign operations used by the handlers.
type campaignService interface {
	Create(ctx context.Context, ownerID string, input domain.CreateCampaignInput) (domain.Campaign, error)
	Get(ctx context.Context, campaignID string) (domain.Campaign, error)
	ListByOwner(ctx context.Context, ownerID string) ([]domain.Campaign, error)
	ListMembers(ctx context.Context, actorUserID, campaignID string) ([]domain.Member, error)
}

// membershipService defines the member lifecycle operations used by the handlers.
type membershipService interface {
	Create(ctx context.Context, actorUserID string, input domain.CreateMemberInput) (domain.Member, error)
	Approve(ctx context.Context, actorUserID, memberID string) (domain.Member, error)
	Reject(ctx context.Context, actorUserID, memberID string) (domain.Member, error)
	UpdateCharacterStatus(ctx context.Context, actorUserID, memberID string, newStatus domain.CharacterStatus) (domain.Member, error)
}

// inviteService defines the invite lifecycle operations used by the handlers.
type inviteService interface {
	Create(ctx context.Context, actorUserID string, input domain.CreateInviteInput) (domain.Invite, error)
	CreateByEmail(ctx context.Context, actorUserID, campaignID, email string, partyRole domain.PartyRole) (domain.Invite, error)
	Respond(ctx context.Context, actorUserID string, input app.RespondInput) (domain.Invite, error)
	List(ctx context.Context, userID string) ([]domain.Invite, error)
	Get(ctx context.Context, actorUserID, inviteID string) (domain.Invite, error)
}

// notificationService defines the inbox operations used by the handlers.
type notificationService interface {
	ListInbox(ctx context.Context, input notifdomain.ListInboxInput) (notifdomain.NotificationPage, error)
	UnreadCount(ctx context.Context, recipientUserID string) (int, error)
	MarkRead(ctx context.Context, input notifdomain.MarkReadInput) (notifdomain.Notification, error)
	MarkAllRead(ctx context.Context, recipientUserID string) (int, error)
}

type handlers struct {
	campaigns     campaignService
	membership    membershipService
	invites       inviteService
	notifications notificationService
}

type createCampaignRequest struct {
	Name    string `json:"name"`
	Setting string `json:"setting"`
	Edition string `json:"edition"`
}

type createMemberRequest struct {
	CharacterID string `json:"characterId"`
	UserID      string `json:"userId"`
	PartyRole   string `json:"partyRole"`
	Status      string `json:"status"`
}

type createInviteRequest struct {
	UserID    string `json:"userId"`
	Email     string `json:"email"`
	PartyRole string `json:"partyRole"`
}

type respondInviteRequest struct {
	Action      string `json:"action"`
	CharacterID string `json:"characterId"`
}

type characterStatusRequest struct {
	CharacterStatus string `json:"characterStatus"`
}

func (h handlers) handleCreateCampaign(w http.ResponseWriter, r *http.Request) {
	ctx, userID, err := requestUser(r)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	var body createCampaignRequest
	if err := decodeJSON(r, &body); err != nil {
		httpx.WriteError(w, err)
		return
	}
	campaign, err := h.campaigns.Create(ctx, userID, domain.CreateCampaignInput{
		Name:    body.Name,
		Setting: body.Setting,
		Edition: body.Edition,
	})
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	_ = httpx.WriteJSON(w, http.StatusCreated, campaignToView(campaign))
}

func (h handlers) handleListCampaigns(w http.ResponseWriter, r *http.Request) {
	ctx, userID, err := requestUser(r)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	campaigns, err := h.campaigns.ListByOwner(ctx, userID)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	views := make([]campaignView, 0, len(campaigns))
	for _, campaign := range campaigns {
		views = append(views, campaignToView(campaign))
	}
	_ = httpx.WriteJSON(w, http.StatusOK, map[string]any{"campaigns": views})
}

func (h handlers) handleGetCampaign(w http.ResponseWriter, r *http.Request) {
	ctx, _, err := requestUser(r)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	campaign, err := h.campaigns.Get(ctx, r.PathValue("campaignID"))
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	_ = httpx.WriteJSON(w, http.StatusOK, campaignToView(campaign))
}

func (h handlers) handleListMembers(w http.ResponseWriter, r *http.Request) {
	ctx, userID, err := requestUser(r)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	members, err := h.campaigns.ListMembers(ctx, userID, r.PathValue("campaignID"))
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	_ = httpx.WriteJSON(w, http.StatusOK, map[string]any{"members": membersToView(members)})
}

func (h handlers) handleCreateMember(w http.ResponseWriter, r *http.Request) {
	ctx, userID, err := requestUser(r)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	var body createMemberRequest
	if err := decodeJSON(r, &body); err != nil {
		httpx.WriteError(w, err)
		return
	}
	memberUserID := strings.TrimSpace(body.UserID)
	if memberUserID == "" {
		memberUserID = userID
	}
	member, err := h.membership.Create(ctx, userID, domain.CreateMemberInput{
		CampaignID:    r.PathValue("campaignID"),
		CharacterID:   body.CharacterID,
		UserID:        memberUserID,
		PartyRole:     domain.PartyRoleFromLabel(body.PartyRole),
		InitialStatus: domain.MemberStatusFromLabel(body.Status),
	})
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	_ = httpx.WriteJSON(w, http.StatusCreated, memberToView(member))
}

func (h handlers) handleApproveMember(w http.ResponseWriter, r *http.Request) {
	h.decideMember(w, r, h.membership.Approve)
}

func (h handlers) handleRejectMember(w http.ResponseWriter, r *http.Request) {
	h.decideMember(w, r, h.membership.Reject)
}

func (h handlers) decideMember(w http.ResponseWriter, r *http.Request, decide func(context.Context, string, string) (domain.Member, error)) {
	ctx, userID, err := requestUser(r)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	member, err := decide(ctx, userID, r.PathValue("memberID"))
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	_ = httpx.WriteJSON(w, http.StatusOK, memberToView(member))
}

func (h handlers) handleCharacterStatus(w http.ResponseWriter, r *http.Request) {
	ctx, userID, err := requestUser(r)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	var body characterStatusRequest
	if err := decodeJSON(r, &body); err != nil {
		httpx.WriteError(w, err)
		return
	}
	status := domain.CharacterStatusFromLabel(body.CharacterStatus)
	if status == domain.CharacterStatusUnspecified {
		httpx.WriteError(w, apperrors.E(apperrors.KindInvalidInput, "characterStatus must be ACTIVE, INACTIVE or DECEASED"))
		return
	}
	member, err := h.membership.UpdateCharacterStatus(ctx, userID, r.PathValue("memberID"), status)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	_ = httpx.WriteJSON(w, http.StatusOK, memberToView(member))
}

func (h handlers) handleCreateInvite(w http.ResponseWriter, r *http.Request) {
	ctx, userID, err := requestUser(r)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	var body createInviteRequest
	if err := decodeJSON(r, &body); err != nil {
		httpx.WriteError(w, err)
		return
	}
	campaignID := r.PathValue("campaignID")
	partyRole := domain.PartyRoleFromLabel(body.PartyRole)

	var invite domain.Invite
	switch {
	case strings.TrimSpace(body.UserID) != "":
		invite, err = h.invites.Create(ctx, userID, domain.CreateInviteInput{
			CampaignID:    campaignID,
			InvitedUserID: body.UserID,
			PartyRole:     partyRole,
		})
	case strings.TrimSpace(body.Email) != "":
		invite, err = h.invites.CreateByEmail(ctx, userID, campaignID, body.Email, partyRole)
	default:
		err = apperrors.E(apperrors.KindInvalidInput, "userId or email is required")
	}
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	_ = httpx.WriteJSON(w, http.StatusCreated, inviteToView(invite))
}

func (h handlers) handleListInvites(w http.ResponseWriter, r *http.Request) {
	ctx, userID, err := requestUser(r)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	invites, err := h.invites.List(ctx, userID)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	_ = httpx.WriteJSON(w, http.StatusOK, map[string]any{"invites": invitesToView(invites)})
}

func (h handlers) handleGetInvite(w http.ResponseWriter, r *http.Request) {
	ctx, userID, err := requestUser(r)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	invite, err := h.invites.Get(ctx, userID, r.PathValue("inviteID"))
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	_ = httpx.WriteJSON(w, http.StatusOK, inviteToView(invite))
}

func (h handlers) handleRespondInvite(w http.ResponseWriter, r *http.Request) {
	ctx, userID, err := requestUser(r)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	var body respondInviteRequest
	if err := decodeJSON(r, &body); err != nil {
		httpx.WriteError(w, err)
		return
	}
	action := strings.ToLower(strings.TrimSpace(body.Action))
	if action != "accept" && action != "decline" {
		httpx.WriteError(w, apperrors.E(apperrors.KindInvalidInput, "action must be accept or decline"))
		return
	}
	invite, err := h.invites.Respond(ctx, userID, app.RespondInput{
		InviteID:    r.PathValue("inviteID"),
		Accept:      action == "accept",
		CharacterID: body.CharacterID,
	})
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	_ = httpx.WriteJSON(w, http.StatusOK, inviteToView(invite))
}

func (h handlers) handleListNotifications(w http.ResponseWriter, r *http.Request) {
	ctx, userID, err := requestUser(r)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	pageSize := 0
	if raw := strings.TrimSpace(r.URL.Query().Get("pageSize")); raw != "" {
		parsed, parseErr := strconv.Atoi(raw)
		if parseErr != nil || parsed < 0 {
			httpx.WriteError(w, apperrors.E(apperrors.KindInvalidInput, "pageSize must be a non-negative integer"))
			return
		}
		pageSize = parsed
	}
	page, err := h.notifications.ListInbox(ctx, notifdomain.ListInboxInput{
		RecipientUserID: userID,
		PageSize:        pageSize,
		PageToken:       r.URL.Query().Get("pageToken"),
	})
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	_ = httpx.WriteJSON(w, http.StatusOK, notificationPageToView(page, requestLocalizer(r)))
}

func (h handlers) handleUnreadCount(w http.ResponseWriter, r *http.Request) {
	ctx, userID, err := requestUser(r)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	count, err := h.notifications.UnreadCount(ctx, userID)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	_ = httpx.WriteJSON(w, http.StatusOK, map[string]any{"unreadCount": count})
}

func (h handlers) handleMarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	ctx, userID, err := requestUser(r)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	notification, err := h.notifications.MarkRead(ctx, notifdomain.MarkReadInput{
		RecipientUserID: userID,
		NotificationID:  r.PathValue("notificationID"),
	})
	if err != nil {
		httpx.WriteError(w, mapNotificationError(err))
		return
	}
	_ = httpx.WriteJSON(w, http.StatusOK, notificationToView(notification, requestLocalizer(r)))
}

func (h handlers) handleMarkAllNotificationsRead(w http.ResponseWriter, r *http.Request) {
	ctx, userID, err := requestUser(r)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	updated, err := h.notifications.MarkAllRead(ctx, userID)
	if err != nil {
		httpx.WriteError(w, mapNotificationError(err))
		return
	}
	_ = httpx.WriteJSON(w, http.StatusOK, map[string]any{"updated": updated})
}

// mapNotificationError translates inbox sentinels into typed API errors.
func mapNotificationError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, notifdomain.ErrNotFound):
		return apperrors.EK(apperrors.KindNotFound, "notification.not_found", "notification not found")
	case errors.Is(err, notifdomain.ErrNotificationIDRequired),
		errors.Is(err, notifdomain.ErrRecipientUserIDRequired):
		return apperrors.E(apperrors.KindInvalidInput, err.Error())
	default:
		return err
	}
}

// decodeJSON parses a JSON request body, rejecting unknown shapes gently.
func decodeJSON(r *http.Request, target any) error {
	if r == nil || r.Body == nil {
		return apperrors.E(apperrors.KindInvalidInput, "request body is required")
	}
	decoder := json.NewDecoder(r.Body)
	if err := decoder.Decode(target); err != nil {
		return apperrors.E(apperrors.KindInvalidInput, "request body is not valid JSON")
	}
	return nil
}
