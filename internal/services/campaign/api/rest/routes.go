package rest

import "net/http"

func registerRoutes(mux *http.ServeMux, h handlers) {
	if mux == nil {
		return
	}
	mux.HandleFunc(http.MethodPost+" /campaigns", h.handleCreateCampaign)
	mux.HandleFunc(http.MethodGet+" /campaigns", h.handleListCampaigns)
	mux.HandleFunc(http.MethodGet+" /campaigns/{campaignID}", h.handleGetCampaign)
	mux.HandleFunc(http.MethodGet+" /campaigns/{campaignID}/members", h.handleListMembers)
	mux.HandleFunc(http.MethodPost+" /campaigns/{campaignID}/members", h.handleCreateMember)
	mux.HandleFunc(http.MethodPost+" /campaigns/{campaignID}/invites", h.handleCreateInvite)

	mux.HandleFunc(http.MethodPost+" /campaign-members/{memberID}/approve", h.handleApproveMember)
	mux.HandleFunc(http.MethodPost+" /campaign-members/{memberID}/reject", h.handleRejectMember)
	mux.HandleFunc(http.MethodPatch+" /campaign-members/{memberID}/character-status", h.handleCharacterStatus)

	mux.HandleFunc(http.MethodGet+" /invites", h.handleListInvites)
	mux.HandleFunc(http.MethodGet+" /invites/{inviteID}", h.handleGetInvite)
	mux.HandleFunc(http.MethodPost+" /invites/{inviteID}/respond", h.handleRespondInvite)

	mux.HandleFunc(http.MethodGet+" /notifications", h.handleListNotifications)
	mux.HandleFunc(http.MethodGet+" /notifications/unread-count", h.handleUnreadCount)
	mux.HandleFunc(http.MethodPost+" /notifications/read-all", h.handleMarkAllNotificationsRead)
	mux.HandleFunc(http.MethodPatch+" /notifications/{notificationID}/read", h.handleMarkNotificationRead)
}
