package app

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/louisbranch/adventuring.party/internal/services/campaign/domain"
	"github.com/louisbranch/adventuring.party/internal/services/campaign/storage"
	notifdomain "github.com/louisbranch/adventuring.party/internal/services/notifications/domain"
)

// fakeStore is an in-memory implementation of every campaign storage
// interface. Conditional updates take the mutex so concurrency tests exercise
// the same exactly-one-winner behavior as the SQLite store.
type fakeStore struct {
	mu         sync.Mutex
	campaigns  map[string]domain.Campaign
	members    map[string]domain.Member
	invites    map[string]domain.Invite
	users      map[string]storage.User
	characters map[string]storage.Character
	audits     []storage.AuditEvent

	// beforeRespondInvite runs once ahead of the next RespondInvite,
	// outside the lock, to interleave a concurrent writer.
	beforeRespondInvite func()
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		campaigns:  make(map[string]domain.Campaign),
		members:    make(map[string]domain.Member),
		invites:    make(map[string]domain.Invite),
		users:      make(map[string]storage.User),
		characters: make(map[string]storage.Character),
	}
}

func (f *fakeStore) PutCampaign(_ context.Context, campaign domain.Campaign) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.campaigns[campaign.ID] = campaign
	return nil
}

func (f *fakeStore) GetCampaign(_ context.Context, campaignID string) (domain.Campaign, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	campaign, ok := f.campaigns[campaignID]
	if !ok {
		return domain.Campaign{}, storage.ErrNotFound
	}
	return campaign, nil
}

func (f *fakeStore) ListCampaignsByOwner(_ context.Context, ownerID string) ([]domain.Campaign, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var campaigns []domain.Campaign
	for _, campaign := range f.campaigns {
		if campaign.OwnerID == ownerID {
			campaigns = append(campaigns, campaign)
		}
	}
	sort.Slice(campaigns, func(i, j int) bool { return campaigns[i].ID < campaigns[j].ID })
	return campaigns, nil
}

func (f *fakeStore) PutMember(_ context.Context, member domain.Member) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if member.HoldsActiveSeat() {
		for _, existing := range f.members {
			if existing.CharacterID == member.CharacterID && existing.HoldsActiveSeat() {
				return storage.ErrSeatTaken
			}
		}
	}
	f.members[member.ID] = member
	return nil
}

func (f *fakeStore) GetMember(_ context.Context, memberID string) (domain.Member, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	member, ok := f.members[memberID]
	if !ok {
		return domain.Member{}, storage.ErrNotFound
	}
	return member, nil
}

func (f *fakeStore) listMembers(match func(domain.Member) bool) []domain.Member {
	var members []domain.Member
	for _, member := range f.members {
		if match(member) {
			members = append(members, member)
		}
	}
	sort.Slice(members, func(i, j int) bool { return members[i].ID < members[j].ID })
	return members
}

func (f *fakeStore) ListMembersByCampaign(_ context.Context, campaignID string) ([]domain.Member, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.listMembers(func(m domain.Member) bool { return m.CampaignID == campaignID }), nil
}

func (f *fakeStore) ListMembersByCampaignAndUser(_ context.Context, campaignID, userID string) ([]domain.Member, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.listMembers(func(m domain.Member) bool { return m.CampaignID == campaignID && m.UserID == userID }), nil
}

func (f *fakeStore) ListMembersByCharacter(_ context.Context, characterID string) ([]domain.Member, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.listMembers(func(m domain.Member) bool { return m.CharacterID == characterID }), nil
}

func (f *fakeStore) CountActiveSeatsByCharacter(_ context.Context, characterID string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	count := 0
	for _, member := range f.members {
		if member.CharacterID == characterID && member.HoldsActiveSeat() {
			count++
		}
	}
	return count, nil
}

func (f *fakeStore) ApproveMember(_ context.Context, memberID, approvedBy string, at time.Time) (domain.Member, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	member, ok := f.members[memberID]
	if !ok {
		return domain.Member{}, false, storage.ErrNotFound
	}
	if member.Status != domain.MemberStatusPending {
		return member, false, nil
	}
	member.Status = domain.MemberStatusApproved
	member.CharacterStatus = domain.CharacterStatusActive
	member.ApprovedAt = &at
	member.ApprovedBy = approvedBy
	member.JoinedAt = &at
	f.members[memberID] = member
	return member, true, nil
}

func (f *fakeStore) RejectMember(_ context.Context, memberID string) (domain.Member, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	member, ok := f.members[memberID]
	if !ok {
		return domain.Member{}, false, storage.ErrNotFound
	}
	if member.Status != domain.MemberStatusPending {
		return member, false, nil
	}
	member.Status = domain.MemberStatusRejected
	f.members[memberID] = member
	return member, true, nil
}

func (f *fakeStore) SetCharacterStatus(_ context.Context, memberID string, status domain.CharacterStatus) (domain.Member, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	member, ok := f.members[memberID]
	if !ok {
		return domain.Member{}, false, storage.ErrNotFound
	}
	if member.Status != domain.MemberStatusApproved || member.CharacterStatus == status {
		return member, false, nil
	}
	member.CharacterStatus = status
	f.members[memberID] = member
	return member, true, nil
}

func (f *fakeStore) PutInvite(_ context.Context, invite domain.Invite) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if invite.Status == domain.InviteStatusPending {
		for _, existing := range f.invites {
			if existing.CampaignID == invite.CampaignID &&
				existing.InvitedUserID == invite.InvitedUserID &&
				existing.Status == domain.InviteStatusPending {
				return storage.ErrConflict
			}
		}
	}
	f.invites[invite.ID] = invite
	return nil
}

func (f *fakeStore) GetInvite(_ context.Context, inviteID string) (domain.Invite, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	invite, ok := f.invites[inviteID]
	if !ok {
		return domain.Invite{}, storage.ErrNotFound
	}
	return invite, nil
}

func (f *fakeStore) GetPendingInviteByCampaignAndUser(_ context.Context, campaignID, invitedUserID string) (domain.Invite, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, invite := range f.invites {
		if invite.CampaignID == campaignID && invite.InvitedUserID == invitedUserID &&
			invite.Status == domain.InviteStatusPending {
			return invite, nil
		}
	}
	return domain.Invite{}, storage.ErrNotFound
}

func (f *fakeStore) ListInvitesByUser(_ context.Context, invitedUserID string) ([]domain.Invite, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var invites []domain.Invite
	for _, invite := range f.invites {
		if invite.InvitedUserID == invitedUserID {
			invites = append(invites, invite)
		}
	}
	sort.Slice(invites, func(i, j int) bool { return invites[i].ID < invites[j].ID })
	return invites, nil
}

func (f *fakeStore) RespondInvite(_ context.Context, inviteID string, status domain.InviteStatus, at time.Time) (domain.Invite, bool, error) {
	f.mu.Lock()
	hook := f.beforeRespondInvite
	f.beforeRespondInvite = nil
	f.mu.Unlock()
	if hook != nil {
		hook()
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	invite, ok := f.invites[inviteID]
	if !ok {
		return domain.Invite{}, false, storage.ErrNotFound
	}
	if invite.Status != domain.InviteStatusPending {
		return invite, false, nil
	}
	invite.Status = status
	invite.RespondedAt = &at
	f.invites[inviteID] = invite
	return invite, true, nil
}

func (f *fakeStore) PutUser(_ context.Context, user storage.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users[user.ID] = user
	return nil
}

func (f *fakeStore) GetUser(_ context.Context, userID string) (storage.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[userID]
	if !ok {
		return storage.User{}, storage.ErrNotFound
	}
	return user, nil
}

func (f *fakeStore) GetUserByEmail(_ context.Context, email string) (storage.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, user := range f.users {
		if user.Email == email {
			return user, nil
		}
	}
	return storage.User{}, storage.ErrNotFound
}

func (f *fakeStore) PutCharacter(_ context.Context, character storage.Character) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.characters[character.ID] = character
	return nil
}

func (f *fakeStore) GetCharacter(_ context.Context, characterID string) (storage.Character, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	character, ok := f.characters[characterID]
	if !ok {
		return storage.Character{}, storage.ErrNotFound
	}
	return character, nil
}

func (f *fakeStore) AppendAuditEvent(_ context.Context, event storage.AuditEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.audits = append(f.audits, event)
	return nil
}

// fakeNotifier records fan-out without a backing inbox.
type fakeNotifier struct {
	mu       sync.Mutex
	created  []notifdomain.CreateInput
	resolved []string
	failAll  bool
}

func (f *fakeNotifier) Notify(_ context.Context, input notifdomain.CreateInput) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAll {
		return fmt.Errorf("notifier unavailable")
	}
	f.created = append(f.created, input)
	return nil
}

func (f *fakeNotifier) ResolveAction(_ context.Context, recipientUserID, dedupeKey string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAll {
		return fmt.Errorf("notifier unavailable")
	}
	f.resolved = append(f.resolved, recipientUserID+"|"+dedupeKey)
	return nil
}

func (f *fakeNotifier) byType(notificationType string) []notifdomain.CreateInput {
	f.mu.Lock()
	defer f.mu.Unlock()
	var matches []notifdomain.CreateInput
	for _, input := range f.created {
		if input.Type == notificationType {
			matches = append(matches, input)
		}
	}
	return matches
}

func fixedClock(at time.Time) func() time.Time {
	return func() time.Time { return at }
}

func sequentialIDs(prefix string) func() (string, error) {
	var mu sync.Mutex
	counter := 0
	return func() (string, error) {
		mu.Lock()
		defer mu.Unlock()
		counter++
		return fmt.Sprintf("%s-%d", prefix, counter), nil
	}
}

// testEnv wires every app service over one fake store.
type testEnv struct {
	store      *fakeStore
	notifier   *fakeNotifier
	roles      *RoleService
	campaigns  *CampaignService
	membership *MembershipService
	invites    *InviteService
	now        time.Time
}

func newTestEnv() *testEnv {
	store := newFakeStore()
	notifier := &fakeNotifier{}
	now := time.Date(2026, time.March, 14, 9, 0, 0, 0, time.UTC)
	clock := fixedClock(now)
	newID := sequentialIDs("id")
	roles := NewRoleService(store, store)
	audit := NewAuditEmitter(store, clock)
	membership := NewMembershipService(store, store, store, roles, notifier, audit, clock, newID)
	return &testEnv{
		store:      store,
		notifier:   notifier,
		roles:      roles,
		campaigns:  NewCampaignService(store, store, roles, audit, clock, newID),
		membership: membership,
		invites:    NewInviteService(store, store, store, store, membership, roles, notifier, audit, clock, newID),
		now:        now,
	}
}

func (e *testEnv) seedUser(id, email string) {
	_ = e.store.PutUser(context.Background(), storage.User{ID: id, Email: email, CreatedAt: e.now})
}

func (e *testEnv) seedCharacter(id, ownerID, name string) {
	_ = e.store.PutCharacter(context.Background(), storage.Character{ID: id, OwnerUserID: ownerID, Name: name, CreatedAt: e.now})
}

func (e *testEnv) seedCampaign(id, ownerID string) domain.Campaign {
	campaign := domain.Campaign{
		ID:        id,
		Name:      "The Sunken Vault",
		OwnerID:   ownerID,
		CreatedAt: e.now,
		UpdatedAt: e.now,
	}
	_ = e.store.PutCampaign(context.Background(), campaign)
	return campaign
}
