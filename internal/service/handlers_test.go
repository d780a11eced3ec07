package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lmorchard/fediring-manager/internal/biz/domain"
	"github.com/lmorchard/fediring-manager/internal/biz/usecase"
)

const testNamespace = "fediring"

type handlerFixture struct {
	router   *Router
	statuses *mockStatusRepo
	states   *mockStateRepo
	profiles *mockProfileRepo
	handlers *Handlers
}

func newHandlerFixture(t *testing.T, admins []string) *handlerFixture {
	t.Helper()

	statuses := &mockStatusRepo{}
	states := newMockStateRepo()
	profiles := &mockProfileRepo{
		rows: domain.MemberList{
			{"member", "feed_url"},
			{"alice@a.example"},
			{"bob@b.example"},
			{"carol@c.example"},
			{"dave@d.example"},
		},
	}

	renderer := newTestRenderer(t)
	handlers := NewHandlers(
		usecase.NewPermissionGate(admins),
		usecase.NewLedgerUsecase(states, testNamespace),
		usecase.NewSelectorUsecase(profiles, states, testNamespace, 0.5),
		usecase.NewMembersUsecase(profiles),
		renderer,
		statuses,
		2,
	)

	router := NewRouter(renderer, statuses)
	handlers.RegisterAll(router)

	return &handlerFixture{
		router:   router,
		statuses: statuses,
		states:   states,
		profiles: profiles,
		handlers: handlers,
	}
}

func (f *handlerFixture) addresses() []string {
	var out []string
	for _, row := range f.profiles.rows[1:] {
		out = append(out, row.Address())
	}
	return out
}

func (f *handlerFixture) pending(t *testing.T) domain.DeferredRequestList {
	t.Helper()
	state, err := f.states.Load(context.Background(), testNamespace)
	require.NoError(t, err)
	return state.PendingRequests
}

func TestAddByNonAdminDefersRequest(t *testing.T) {
	f := newHandlerFixture(t, []string{"admin@a.example"})

	f.router.Route(context.Background(), mentionFrom("newbie@n.example", "@fediring add me"))

	pending := f.pending(t)
	require.Len(t, pending, 1)
	assert.Equal(t, "add newbie@n.example", pending[0].Request)
	assert.Equal(t, "newbie@n.example", pending[0].From)

	assert.NotContains(t, f.addresses(), "newbie@n.example", "membership must not change")
	assert.Equal(t, 0, f.profiles.persisted)

	require.Len(t, f.statuses.replies, 1)
	assert.Contains(t, f.statuses.replies[0].text, "passed your request along")
}

func TestAddByNonAdminTwiceDefersOnce(t *testing.T) {
	f := newHandlerFixture(t, nil)

	f.router.Route(context.Background(), mentionFrom("newbie@n.example", "add me"))
	f.router.Route(context.Background(), mentionFrom("newbie@n.example", "add me"))

	require.Len(t, f.pending(t), 1)
	assert.Equal(t, 1, f.states.saves)
	assert.Len(t, f.statuses.replies, 2, "both mentions still get a reply")
}

func TestAddByAdminAppendsMember(t *testing.T) {
	f := newHandlerFixture(t, []string{"admin@a.example"})

	f.router.Route(context.Background(), mentionFrom("admin@a.example", "add eve@e.example"))

	assert.Contains(t, f.addresses(), "eve@e.example")
	assert.Equal(t, 1, f.profiles.persisted)
	assert.Empty(t, f.pending(t))

	require.Len(t, f.statuses.replies, 1)
	assert.Contains(t, f.statuses.replies[0].text, "eve@e.example")
}

func TestAddByAdminClearsMatchingDeferred(t *testing.T) {
	f := newHandlerFixture(t, []string{"admin@a.example"})

	// A non-admin request queues, then the admin fulfils it verbatim.
	f.router.Route(context.Background(), mentionFrom("newbie@n.example", "add me"))
	require.Len(t, f.pending(t), 1)

	f.router.Route(context.Background(), mentionFrom("admin@a.example", "add newbie@n.example"))

	assert.Contains(t, f.addresses(), "newbie@n.example")
	assert.Empty(t, f.pending(t))
}

func TestRemoveByAdminFiltersMember(t *testing.T) {
	f := newHandlerFixture(t, []string{"admin@a.example"})

	f.router.Route(context.Background(), mentionFrom("admin@a.example", "remove bob@b.example"))

	assert.NotContains(t, f.addresses(), "bob@b.example")
	assert.Contains(t, f.addresses(), "alice@a.example")
	assert.Equal(t, domain.MemberRow{"member", "feed_url"}, f.profiles.rows[0], "header row survives")
}

func TestRemoveByNonAdminDefersRequest(t *testing.T) {
	f := newHandlerFixture(t, []string{"admin@a.example"})

	f.router.Route(context.Background(), mentionFrom("bob@b.example", "remove me"))

	pending := f.pending(t)
	require.Len(t, pending, 1)
	assert.Equal(t, "remove bob@b.example", pending[0].Request)
	assert.Contains(t, f.addresses(), "bob@b.example", "membership must not change")
}

func TestRandomRepliesWithOneMember(t *testing.T) {
	f := newHandlerFixture(t, nil)

	f.router.Route(context.Background(), mentionFrom("alice@a.example", "random"))

	require.Len(t, f.statuses.replies, 1)
	assert.Contains(t, f.statuses.replies[0].text, "Say hello to")
	assert.Contains(t, f.statuses.replies[0].text, "@")
}

func TestMentionCommandRequiresAdmin(t *testing.T) {
	f := newHandlerFixture(t, []string{"admin@a.example"})

	f.router.Route(context.Background(), mentionFrom("alice@a.example", "mention"))

	assert.Empty(t, f.statuses.broadcasts)
	require.Len(t, f.statuses.replies, 1)
	assert.Contains(t, f.statuses.replies[0].text, "went wrong")
}

func TestMentionCommandBroadcasts(t *testing.T) {
	f := newHandlerFixture(t, []string{"admin@a.example"})

	f.router.Route(context.Background(), mentionFrom("admin@a.example", "mention"))

	require.Len(t, f.statuses.broadcasts, 1)
	assert.Contains(t, f.statuses.broadcasts[0], "- @")
	assert.Empty(t, f.statuses.replies)
}

func TestHelpHidesAdminCommandsFromNonAdmins(t *testing.T) {
	f := newHandlerFixture(t, []string{"admin@a.example"})

	f.router.Route(context.Background(), mentionFrom("alice@a.example", "help"))

	require.Len(t, f.statuses.replies, 1)
	text := f.statuses.replies[0].text
	assert.Contains(t, text, "add me")
	assert.Contains(t, text, "random")
	assert.NotContains(t, text, "flush")
	assert.NotContains(t, text, "pending")

	f.router.Route(context.Background(), mentionFrom("admin@a.example", "help"))
	require.Len(t, f.statuses.replies, 2)
	assert.Contains(t, f.statuses.replies[1].text, "flush")
}

func TestPendingListsRequests(t *testing.T) {
	f := newHandlerFixture(t, []string{"admin@a.example"})

	f.router.Route(context.Background(), mentionFrom("newbie@n.example", "add me"))
	f.router.Route(context.Background(), mentionFrom("admin@a.example", "pending"))

	require.Len(t, f.statuses.replies, 2)
	assert.Contains(t, f.statuses.replies[1].text, "add newbie@n.example")
	assert.Contains(t, f.statuses.replies[1].text, "from newbie@n.example")
}

func TestDeferAndCancel(t *testing.T) {
	f := newHandlerFixture(t, []string{"admin@a.example"})

	f.router.Route(context.Background(), mentionFrom("admin@a.example", "defer add eve@e.example"))
	pending := f.pending(t)
	require.Len(t, pending, 1)
	assert.Equal(t, "add eve@e.example", pending[0].Request)
	assert.Equal(t, "admin@a.example", pending[0].From)

	f.router.Route(context.Background(), mentionFrom("admin@a.example", "cancel add eve@e.example"))
	assert.Empty(t, f.pending(t))
}

func TestCancelMissingRequestStillReplies(t *testing.T) {
	f := newHandlerFixture(t, []string{"admin@a.example"})
	savesBefore := f.states.saves

	f.router.Route(context.Background(), mentionFrom("admin@a.example", "cancel add nobody@x.example"))

	assert.Equal(t, savesBefore, f.states.saves, "no persistence write for a missing request")
	require.Len(t, f.statuses.replies, 1)
	assert.Contains(t, f.statuses.replies[0].text, "Cancelled")
}

func TestFlushClearsLedger(t *testing.T) {
	f := newHandlerFixture(t, []string{"admin@a.example"})

	f.router.Route(context.Background(), mentionFrom("newbie@n.example", "add me"))
	f.router.Route(context.Background(), mentionFrom("bob@b.example", "remove me"))
	require.Len(t, f.pending(t), 2)

	f.router.Route(context.Background(), mentionFrom("admin@a.example", "flush"))
	assert.Empty(t, f.pending(t))
}
