package app

import (
	"context"
	"testing"

	apperrors "github.com/louisbranch/adventuring.party/internal/platform/errors"
	"github.com/louisbranch/adventuring.party/internal/services/campaign/domain"
)

func TestResolveRoleMissingCampaignIsNone(t *testing.T) {
	t.Parallel()
	env := newTestEnv()

	role, err := env.roles.ResolveRole(context.Background(), "missing", "user-1")
	if err != nil {
		t.Fatalf("ResolveRole: %v", err)
	}
	if role != domain.RoleNone {
		t.Fatalf("role = %v, want none", role)
	}
}

func TestResolveRoleOwnerIsAdminWithoutRows(t *testing.T) {
	t.Parallel()
	env := newTestEnv()
	env.seedCampaign("camp-1", "user-owner")

	role, err := env.roles.ResolveRole(context.Background(), "camp-1", "user-owner")
	if err != nil {
		t.Fatalf("ResolveRole: %v", err)
	}
	if role != domain.RoleAdmin {
		t.Fatalf("owner role = %v, want admin", role)
	}
}

func TestResolveRolePendingOnlyIsObserver(t *testing.T) {
	t.Parallel()
	env := newTestEnv()
	env.seedCampaign("camp-1", "user-owner")
	env.seedUser("user-2", "u2@example.com")
	env.seedCharacter("char-1", "user-2", "Aldric")

	if _, err := env.membership.Create(context.Background(), "user-owner", domain.CreateMemberInput{
		CampaignID:  "camp-1",
		CharacterID: "char-1",
		UserID:      "user-2",
		PartyRole:   domain.PartyRolePlayer,
	}); err != nil {
		t.Fatalf("Create member: %v", err)
	}

	role, err := env.roles.ResolveRole(context.Background(), "camp-1", "user-2")
	if err != nil {
		t.Fatalf("ResolveRole: %v", err)
	}
	if role != domain.RoleObserver {
		t.Fatalf("pending-only role = %v, want observer", role)
	}
}

func TestRequireRoleMapsToForbidden(t *testing.T) {
	t.Parallel()
	env := newTestEnv()
	env.seedCampaign("camp-1", "user-owner")

	_, err := env.roles.RequireRole(context.Background(), "camp-1", "user-stranger", domain.RolePlayer)
	if !apperrors.IsKind(err, apperrors.KindForbidden) {
		t.Fatalf("RequireRole = %v, want forbidden kind", err)
	}

	if _, err := env.roles.RequireRole(context.Background(), "camp-1", "user-owner", domain.RoleAdmin); err != nil {
		t.Fatalf("RequireRole owner: %v", err)
	}
}
