package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/louisbranch/adventuring.party/internal/services/campaign/domain"
	"github.com/louisbranch/adventuring.party/internal/services/campaign/storage"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "campaign.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}

func testTime() time.Time {
	return time.Date(2026, time.March, 14, 9, 26, 53, 0, time.UTC)
}

func putTestCampaign(t *testing.T, store *Store, id, ownerID string) domain.Campaign {
	t.Helper()
	campaign := domain.Campaign{
		ID:        id,
		Name:      "The Sunken Vault",
		Setting:   "Forgotten Realms",
		Edition:   "5e",
		OwnerID:   ownerID,
		CreatedAt: testTime(),
		UpdatedAt: testTime(),
	}
	if err := store.PutCampaign(context.Background(), campaign); err != nil {
		t.Fatalf("PutCampaign: %v", err)
	}
	return campaign
}

func pendingMember(id, campaignID, characterID, userID string) domain.Member {
	return domain.Member{
		ID:              id,
		CampaignID:      campaignID,
		CharacterID:     characterID,
		UserID:          userID,
		PartyRole:       domain.PartyRolePlayer,
		Status:          domain.MemberStatusPending,
		CharacterStatus: domain.CharacterStatusActive,
		RequestedAt:     testTime(),
	}
}

func TestCampaignRoundTrip(t *testing.T) {
	t.Parallel()
	store := newTestStore(t)
	ctx := context.Background()

	want := putTestCampaign(t, store, "camp-1", "user-owner")

	got, err := store.GetCampaign(ctx, "camp-1")
	if err != nil {
		t.Fatalf("GetCampaign: %v", err)
	}
	if got != want {
		t.Fatalf("GetCampaign = %+v, want %+v", got, want)
	}

	if _, err := store.GetCampaign(ctx, "missing"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("GetCampaign missing = %v, want ErrNotFound", err)
	}

	campaigns, err := store.ListCampaignsByOwner(ctx, "user-owner")
	if err != nil {
		t.Fatalf("ListCampaignsByOwner: %v", err)
	}
	if len(campaigns) != 1 || campaigns[0].ID != "camp-1" {
		t.Fatalf("ListCampaignsByOwner = %+v, want single camp-1", campaigns)
	}
}

func TestPutMemberSeatUniqueness(t *testing.T) {
	t.Parallel()
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.PutMember(ctx, pendingMember("mem-1", "camp-1", "char-1", "user-1")); err != nil {
		t.Fatalf("PutMember: %v", err)
	}

	err := store.PutMember(ctx, pendingMember("mem-2", "camp-2", "char-1", "user-1"))
	if !errors.Is(err, storage.ErrSeatTaken) {
		t.Fatalf("PutMember duplicate seat = %v, want ErrSeatTaken", err)
	}

	if _, matched, err := store.RejectMember(ctx, "mem-1"); err != nil || !matched {
		t.Fatalf("RejectMember = matched %v, err %v", matched, err)
	}

	// Rejected rows release the seat.
	if err := store.PutMember(ctx, pendingMember("mem-3", "camp-2", "char-1", "user-1")); err != nil {
		t.Fatalf("PutMember after rejection: %v", err)
	}

	count, err := store.CountActiveSeatsByCharacter(ctx, "char-1")
	if err != nil {
		t.Fatalf("CountActiveSeatsByCharacter: %v", err)
	}
	if count != 1 {
		t.Fatalf("CountActiveSeatsByCharacter = %d, want 1", count)
	}
}

func TestApproveMemberConditional(t *testing.T) {
	t.Parallel()
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.PutMember(ctx, pendingMember("mem-1", "camp-1", "char-1", "user-1")); err != nil {
		t.Fatalf("PutMember: %v", err)
	}

	decidedAt := testTime().Add(time.Hour)
	member, matched, err := store.ApproveMember(ctx, "mem-1", "user-dm", decidedAt)
	if err != nil {
		t.Fatalf("ApproveMember: %v", err)
	}
	if !matched {
		t.Fatal("ApproveMember first decision matched = false, want true")
	}
	if member.Status != domain.MemberStatusApproved {
		t.Fatalf("Status = %v, want approved", member.Status)
	}
	if member.CharacterStatus != domain.CharacterStatusActive {
		t.Fatalf("CharacterStatus = %v, want active", member.CharacterStatus)
	}
	if member.ApprovedBy != "user-dm" {
		t.Fatalf("ApprovedBy = %q, want user-dm", member.ApprovedBy)
	}
	if member.ApprovedAt == nil || !member.ApprovedAt.Equal(decidedAt) {
		t.Fatalf("ApprovedAt = %v, want %v", member.ApprovedAt, decidedAt)
	}
	if member.JoinedAt == nil || !member.JoinedAt.Equal(decidedAt) {
		t.Fatalf("JoinedAt = %v, want %v", member.JoinedAt, decidedAt)
	}

	// A second decision of either kind loses the conditional match and
	// leaves the row untouched.
	again, matched, err := store.ApproveMember(ctx, "mem-1", "user-other", decidedAt.Add(time.Hour))
	if err != nil {
		t.Fatalf("ApproveMember repeat: %v", err)
	}
	if matched {
		t.Fatal("ApproveMember repeat matched = true, want false")
	}
	if again.ApprovedBy != "user-dm" {
		t.Fatalf("repeat ApprovedBy = %q, want user-dm", again.ApprovedBy)
	}

	rejected, matched, err := store.RejectMember(ctx, "mem-1")
	if err != nil {
		t.Fatalf("RejectMember after approval: %v", err)
	}
	if matched {
		t.Fatal("RejectMember after approval matched = true, want false")
	}
	if rejected.Status != domain.MemberStatusApproved {
		t.Fatalf("Status after losing reject = %v, want approved", rejected.Status)
	}
}

func TestSetCharacterStatusConditional(t *testing.T) {
	t.Parallel()
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.PutMember(ctx, pendingMember("mem-1", "camp-1", "char-1", "user-1")); err != nil {
		t.Fatalf("PutMember: %v", err)
	}

	// Pending members have no roster status to change.
	if _, matched, err := store.SetCharacterStatus(ctx, "mem-1", domain.CharacterStatusInactive); err != nil || matched {
		t.Fatalf("SetCharacterStatus on pending = matched %v, err %v", matched, err)
	}

	if _, _, err := store.ApproveMember(ctx, "mem-1", "user-dm", testTime()); err != nil {
		t.Fatalf("ApproveMember: %v", err)
	}

	member, matched, err := store.SetCharacterStatus(ctx, "mem-1", domain.CharacterStatusDeceased)
	if err != nil {
		t.Fatalf("SetCharacterStatus: %v", err)
	}
	if !matched {
		t.Fatal("SetCharacterStatus matched = false, want true")
	}
	if member.CharacterStatus != domain.CharacterStatusDeceased {
		t.Fatalf("CharacterStatus = %v, want deceased", member.CharacterStatus)
	}

	// Setting the same value again is a no-op.
	if _, matched, err := store.SetCharacterStatus(ctx, "mem-1", domain.CharacterStatusDeceased); err != nil || matched {
		t.Fatalf("SetCharacterStatus repeat = matched %v, err %v", matched, err)
	}
}

func TestScanMemberNormalizesLegacyBlanks(t *testing.T) {
	t.Parallel()
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.sqlDB.ExecContext(ctx, `
INSERT INTO campaign_members (id, campaign_id, character_id, user_id, party_role, status, character_status, requested_at)
VALUES ('mem-legacy', 'camp-1', 'char-1', 'user-1', 'PLAYER', '', '', ?)
`, toMillis(testTime()))
	if err != nil {
		t.Fatalf("insert legacy row: %v", err)
	}

	member, err := store.GetMember(ctx, "mem-legacy")
	if err != nil {
		t.Fatalf("GetMember: %v", err)
	}
	if member.Status != domain.MemberStatusApproved {
		t.Fatalf("legacy Status = %v, want approved", member.Status)
	}
	if member.CharacterStatus != domain.CharacterStatusActive {
		t.Fatalf("legacy CharacterStatus = %v, want active", member.CharacterStatus)
	}
}

func TestPutInvitePendingDedupe(t *testing.T) {
	t.Parallel()
	store := newTestStore(t)
	ctx := context.Background()

	invite := domain.Invite{
		ID:              "inv-1",
		CampaignID:      "camp-1",
		InvitedUserID:   "user-2",
		InvitedByUserID: "user-owner",
		PartyRole:       domain.PartyRolePlayer,
		Status:          domain.InviteStatusPending,
		CreatedAt:       testTime(),
	}
	if err := store.PutInvite(ctx, invite); err != nil {
		t.Fatalf("PutInvite: %v", err)
	}

	dup := invite
	dup.ID = "inv-2"
	if err := store.PutInvite(ctx, dup); !errors.Is(err, storage.ErrConflict) {
		t.Fatalf("PutInvite duplicate = %v, want ErrConflict", err)
	}

	got, err := store.GetPendingInviteByCampaignAndUser(ctx, "camp-1", "user-2")
	if err != nil {
		t.Fatalf("GetPendingInviteByCampaignAndUser: %v", err)
	}
	if got.ID != "inv-1" {
		t.Fatalf("pending invite id = %q, want inv-1", got.ID)
	}

	if _, matched, err := store.RespondInvite(ctx, "inv-1", domain.InviteStatusDeclined, testTime().Add(time.Hour)); err != nil || !matched {
		t.Fatalf("RespondInvite = matched %v, err %v", matched, err)
	}

	// A declined invite no longer blocks a fresh one.
	if err := store.PutInvite(ctx, dup); err != nil {
		t.Fatalf("PutInvite after decline: %v", err)
	}
	if _, err := store.GetPendingInviteByCampaignAndUser(ctx, "camp-1", "user-3"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("pending invite for other user = %v, want ErrNotFound", err)
	}
}

func TestRespondInviteConditional(t *testing.T) {
	t.Parallel()
	store := newTestStore(t)
	ctx := context.Background()

	invite := domain.Invite{
		ID:              "inv-1",
		CampaignID:      "camp-1",
		InvitedUserID:   "user-2",
		InvitedByUserID: "user-owner",
		PartyRole:       domain.PartyRoleDM,
		Status:          domain.InviteStatusPending,
		CreatedAt:       testTime(),
	}
	if err := store.PutInvite(ctx, invite); err != nil {
		t.Fatalf("PutInvite: %v", err)
	}

	respondedAt := testTime().Add(time.Minute)
	got, matched, err := store.RespondInvite(ctx, "inv-1", domain.InviteStatusAccepted, respondedAt)
	if err != nil {
		t.Fatalf("RespondInvite: %v", err)
	}
	if !matched {
		t.Fatal("RespondInvite first response matched = false, want true")
	}
	if got.Status != domain.InviteStatusAccepted {
		t.Fatalf("Status = %v, want accepted", got.Status)
	}
	if got.RespondedAt == nil || !got.RespondedAt.Equal(respondedAt) {
		t.Fatalf("RespondedAt = %v, want %v", got.RespondedAt, respondedAt)
	}

	again, matched, err := store.RespondInvite(ctx, "inv-1", domain.InviteStatusDeclined, respondedAt.Add(time.Hour))
	if err != nil {
		t.Fatalf("RespondInvite repeat: %v", err)
	}
	if matched {
		t.Fatal("RespondInvite repeat matched = true, want false")
	}
	if again.Status != domain.InviteStatusAccepted {
		t.Fatalf("repeat Status = %v, want accepted unchanged", again.Status)
	}

	if _, _, err := store.RespondInvite(ctx, "inv-1", domain.InviteStatusPending, respondedAt); err == nil {
		t.Fatal("RespondInvite with pending status should fail")
	}
}

func TestUserDirectory(t *testing.T) {
	t.Parallel()
	store := newTestStore(t)
	ctx := context.Background()

	user := storage.User{
		ID:          "user-1",
		Email:       "Frodo@Shire.example",
		DisplayName: "Frodo",
		CreatedAt:   testTime(),
	}
	if err := store.PutUser(ctx, user); err != nil {
		t.Fatalf("PutUser: %v", err)
	}

	got, err := store.GetUserByEmail(ctx, "frodo@shire.example")
	if err != nil {
		t.Fatalf("GetUserByEmail: %v", err)
	}
	if got.ID != "user-1" {
		t.Fatalf("GetUserByEmail id = %q, want user-1", got.ID)
	}
	if got.Email != "frodo@shire.example" {
		t.Fatalf("stored email = %q, want lowercased", got.Email)
	}

	if _, err := store.GetUserByEmail(ctx, "sam@shire.example"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("GetUserByEmail missing = %v, want ErrNotFound", err)
	}
	if _, err := store.GetUser(ctx, "missing"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("GetUser missing = %v, want ErrNotFound", err)
	}
}

func TestCharacterRoundTrip(t *testing.T) {
	t.Parallel()
	store := newTestStore(t)
	ctx := context.Background()

	character := storage.Character{
		ID:          "char-1",
		OwnerUserID: "user-1",
		Name:        "Pippin",
		CreatedAt:   testTime(),
	}
	if err := store.PutCharacter(ctx, character); err != nil {
		t.Fatalf("PutCharacter: %v", err)
	}

	got, err := store.GetCharacter(ctx, "char-1")
	if err != nil {
		t.Fatalf("GetCharacter: %v", err)
	}
	if got != character {
		t.Fatalf("GetCharacter = %+v, want %+v", got, character)
	}
}

func TestAppendAuditEvent(t *testing.T) {
	t.Parallel()
	store := newTestStore(t)
	ctx := context.Background()

	err := store.AppendAuditEvent(ctx, storage.AuditEvent{
		EventName:  "member.approved",
		Severity:   "info",
		CampaignID: "camp-1",
		ActorID:    "user-dm",
		RequestID:  "api-1",
		Attributes: map[string]any{"member_id": "mem-1"},
		Timestamp:  testTime(),
	})
	if err != nil {
		t.Fatalf("AppendAuditEvent: %v", err)
	}

	var count int
	if err := store.sqlDB.QueryRowContext(ctx, `SELECT COUNT(1) FROM audit_events WHERE event_name = 'member.approved'`).Scan(&count); err != nil {
		t.Fatalf("count audit events: %v", err)
	}
	if count != 1 {
		t.Fatalf("audit event count = %d, want 1", count)
	}
}
