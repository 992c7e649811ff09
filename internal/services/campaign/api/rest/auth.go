package rest

import (
	"context"
	"net/http"
	"strings"

	apperrors "github.com/louisbranch/adventuring.party/internal/platform/errors"
	"github.com/louisbranch/adventuring.party/internal/platform/httpx"
	"github.com/louisbranch/adventuring.party/internal/platform/session"
)

type authContextKey string

const userIDContextKey authContextKey = "user-id"

// withUserID returns ctx carrying the authenticated user id.
func withUserID(ctx context.Context, userID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, userIDContextKey, userID)
}

// userIDFromContext returns the authenticated user id carried by ctx, if any.
func userIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if userID, ok := ctx.Value(userIDContextKey).(string); ok {
		return userID
	}
	return ""
}

// requireSession authenticates every request from the session cookie or a
// bearer grant and stores the user id on the request context.
func requireSession(cfg session.GrantConfig) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		if next == nil {
			next = http.NotFoundHandler()
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			grant, ok := session.ReadCookie(r)
			if !ok {
				grant = bearerGrant(r)
			}
			claims, err := session.ValidateGrant(grant, cfg)
			if err != nil {
				httpx.WriteError(w, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(withUserID(r.Context(), claims.UserID)))
		})
	}
}

// bearerGrant extracts a session grant from the Authorization header.
func bearerGrant(r *http.Request) string {
	if r == nil {
		return ""
	}
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}

// requestUser returns the request context and authenticated user id, failing
// closed when the middleware did not run.
func requestUser(r *http.Request) (context.Context, string, error) {
	ctx := httpx.RequestContext(r)
	userID := strings.TrimSpace(userIDFromContext(ctx))
	if userID == "" {
		return ctx, "", apperrors.E(apperrors.KindUnauthorized, "authentication is required")
	}
	return ctx, userID, nil
}
