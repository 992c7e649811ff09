package rest

import (
	"encoding/json"
	"time"

	"github.com/louisbranch/adventuring.party/internal/services/campaign/domain"
	notifdomain "github.com/louisbranch/adventuring.party/internal/services/notifications/domain"
	"github.com/louisbranch/adventuring.party/internal/services/notifications/render"
)

type campaignView struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Setting   string    `json:"setting,omitempty"`
	Edition   string    `json:"edition,omitempty"`
	OwnerID   string    `json:"ownerId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type memberView struct {
	ID              string     `json:"id"`
	CampaignID      string     `json:"campaignId"`
	CharacterID     string     `json:"characterId"`
	UserID          string     `json:"userId"`
	PartyRole       string     `json:"partyRole"`
	Status          string     `json:"status"`
	CharacterStatus string     `json:"characterStatus"`
	RequestedAt     time.Time  `json:"requestedAt"`
	ApprovedAt      *time.Time `json:"approvedAt,omitempty"`
	ApprovedBy      string     `json:"approvedBy,omitempty"`
	JoinedAt        *time.Time `json:"joinedAt,omitempty"`
}

type inviteView struct {
	ID              string     `json:"id"`
	CampaignID      string     `json:"campaignId"`
	InvitedUserID   string     `json:"invitedUserId"`
	InvitedByUserID string     `json:"invitedByUserId"`
	PartyRole       string     `json:"partyRole"`
	Status          string     `json:"status"`
	CreatedAt       time.Time  `json:"createdAt"`
	RespondedAt     *time.Time `json:"respondedAt,omitempty"`
}

type notificationView struct {
	ID             string          `json:"id"`
	Type           string          `json:"type"`
	CampaignID     string          `json:"campaignId,omitempty"`
	Title          string          `json:"title"`
	Body           string          `json:"body"`
	Payload        json.RawMessage `json:"payload"`
	RequiresAction bool            `json:"requiresAction"`
	CreatedAt      time.Time       `json:"createdAt"`
	ReadAt         *time.Time      `json:"readAt,omitempty"`
	ActionTakenAt  *time.Time      `json:"actionTakenAt,omitempty"`
}

type notificationPageView struct {
	Notifications []notificationView `json:"notifications"`
	NextPageToken string             `json:"nextPageToken,omitempty"`
}

func campaignToView(campaign domain.Campaign) campaignView {
	return campaignView{
		ID:        campaign.ID,
		Name:      campaign.Name,
		Setting:   campaign.Setting,
		Edition:   campaign.Edition,
		OwnerID:   campaign.OwnerID,
		CreatedAt: campaign.CreatedAt,
		UpdatedAt: campaign.UpdatedAt,
	}
}

func memberToView(member domain.Member) memberView {
	return memberView{
		ID:              member.ID,
		CampaignID:      member.CampaignID,
		CharacterID:     member.CharacterID,
		UserID:          member.UserID,
		PartyRole:       domain.PartyRoleLabel(member.PartyRole),
		Status:          domain.MemberStatusLabel(member.Status),
		CharacterStatus: domain.CharacterStatusLabel(member.CharacterStatus),
		RequestedAt:     member.RequestedAt,
		ApprovedAt:      member.ApprovedAt,
		ApprovedBy:      member.ApprovedBy,
		JoinedAt:        member.JoinedAt,
	}
}

func membersToView(members []domain.Member) []memberView {
	views := make([]memberView, 0, len(members))
	for _, member := range members {
		views = append(views, memberToView(member))
	}
	return views
}

func inviteToView(invite domain.Invite) inviteView {
	return inviteView{
		ID:              invite.ID,
		CampaignID:      invite.CampaignID,
		InvitedUserID:   invite.InvitedUserID,
		InvitedByUserID: invite.InvitedByUserID,
		PartyRole:       domain.PartyRoleLabel(invite.PartyRole),
		Status:          domain.InviteStatusLabel(invite.Status),
		CreatedAt:       invite.CreatedAt,
		RespondedAt:     invite.RespondedAt,
	}
}

func invitesToView(invites []domain.Invite) []inviteView {
	views := make([]inviteView, 0, len(invites))
	for _, invite := range invites {
		views = append(views, inviteToView(invite))
	}
	return views
}

func notificationToView(notification notifdomain.Notification, loc render.Localizer) notificationView {
	payload := json.RawMessage(notification.PayloadJSON)
	if len(payload) == 0 {
		payload = json.RawMessage("{}")
	}
	rendered := render.Render(loc, render.Input{Type: notification.Type, PayloadJSON: notification.PayloadJSON})
	return notificationView{
		ID:             notification.ID,
		Type:           notification.Type,
		CampaignID:     notification.CampaignID,
		Title:          rendered.Title,
		Body:           rendered.BodyText,
		Payload:        payload,
		RequiresAction: notification.RequiresAction,
		CreatedAt:      notification.CreatedAt,
		ReadAt:         notification.ReadAt,
		ActionTakenAt:  notification.ActionTakenAt,
	}
}

func notificationPageToView(page notifdomain.NotificationPage, loc render.Localizer) notificationPageView {
	views := make([]notificationView, 0, len(page.Notifications))
	for _, notification := range page.Notifications {
		views = append(views, notificationToView(notification, loc))
	}
	return notificationPageView{Notifications: views, NextPageToken: page.NextPageToken}
}
