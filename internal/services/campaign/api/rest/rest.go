// Package rest exposes the campaign, membership, invite and notification
// operations as an authenticated JSON API.
package rest

import (
	"net/http"

	"github.com/louisbranch/adventuring.party/internal/platform/httpx"
	"github.com/louisbranch/adventuring.party/internal/platform/session"
)

// Deps wires the API onto application services.
type Deps struct {
	Campaigns     campaignService
	Membership    membershipService
	Invites       inviteService
	Notifications notificationService
	SessionGrants session.GrantConfig
}

// NewHandler builds the API handler with its middleware chain. Every route
// requires an authenticated session.
func NewHandler(deps Deps) http.Handler {
	mux := http.NewServeMux()
	registerRoutes(mux, handlers{
		campaigns:     deps.Campaigns,
		membership:    deps.Membership,
		invites:       deps.Invites,
		notifications: deps.Notifications,
	})
	return httpx.Chain(mux,
		httpx.RequestID(),
		httpx.RecoverPanic(),
		requireSession(deps.SessionGrants),
	)
}
