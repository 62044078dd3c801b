package views

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rostra-dev/rostra/pkg/engine"
	"github.com/rostra-dev/rostra/pkg/events"
	"github.com/rostra-dev/rostra/pkg/identity"
	"github.com/rostra-dev/rostra/pkg/storage"
	"github.com/rostra-dev/rostra/pkg/types"
)

func newTestStack(t *testing.T) (*engine.Engine, *Views) {
	t.Helper()
	s, err := storage.Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return engine.New(s, events.NewBroker()), New(s)
}

func mustIdentity(t *testing.T) *identity.Identity {
	t.Helper()
	id, err := identity.Generate()
	require.NoError(t, err)
	return id
}

func post(t *testing.T, e *engine.Engine, ident *identity.Identity, parent *types.EventID, personaTag, content string) types.EventID {
	t.Helper()
	id, _, err := e.PublishSocialPost(ident, parent, types.SocialPost{PersonaTag: personaTag, Content: content}, nil)
	require.NoError(t, err)
	return id
}

func TestTimelineFollowingIncludesSelfAndFollowees(t *testing.T) {
	e, v := newTestStack(t)
	alice := mustIdentity(t)
	bob := mustIdentity(t)

	followID, _, err := e.PublishFollowUpdate(alice, nil, types.FollowUpdate{Followee: bob.Public})
	require.NoError(t, err)

	aliceHead := post(t, e, alice, &followID, "", "alice's own post")
	bobHead := post(t, e, bob, nil, "", "bob's post")

	items, err := v.TimelineFollowing(alice.Public, 0, types.EventID{}, 10)
	require.NoError(t, err)

	var gotIDs []types.EventID
	for _, it := range items {
		gotIDs = append(gotIDs, it.EventID)
	}
	require.Contains(t, gotIDs, aliceHead)
	require.Contains(t, gotIDs, bobHead)
}

func TestTimelineFollowingAppliesTagFilter(t *testing.T) {
	e, v := newTestStack(t)
	alice := mustIdentity(t)
	bob := mustIdentity(t)

	_, _, err := e.PublishFollowUpdate(alice, nil, types.FollowUpdate{
		Followee: bob.Public,
		Mode:     types.FollowModeOnly,
		Tags:     []string{"art"},
	})
	require.NoError(t, err)

	matching := post(t, e, bob, nil, "art", "a painting")
	offTopic := types.SocialPost{PersonaTag: "politics", Content: "a rant"}
	id2, _, err := e.PublishSocialPost(bob, &matching, offTopic, nil)
	require.NoError(t, err)

	items, err := v.TimelineFollowing(alice.Public, 0, types.EventID{}, 10)
	require.NoError(t, err)

	var gotIDs []types.EventID
	for _, it := range items {
		gotIDs = append(gotIDs, it.EventID)
	}
	require.Contains(t, gotIDs, matching)
	require.NotContains(t, gotIDs, id2)
}

func TestReplyCreatesNotificationForParentAuthor(t *testing.T) {
	e, v := newTestStack(t)
	alice := mustIdentity(t)
	bob := mustIdentity(t)

	root := post(t, e, alice, nil, "", "alice's post")
	_, _, err := e.PublishSocialPost(bob, nil, types.SocialPost{Content: "a reply"}, &root)
	require.NoError(t, err)

	notes, err := v.Notifications(alice.Public, 0, 0, 10)
	require.NoError(t, err)
	require.Len(t, notes, 1)
	require.Equal(t, alice.Public, notes[0].Recipient)
}

func TestFolloweesRoundTrip(t *testing.T) {
	e, v := newTestStack(t)
	alice := mustIdentity(t)
	bob := mustIdentity(t)

	_, _, err := e.PublishFollowUpdate(alice, nil, types.FollowUpdate{
		Followee: bob.Public,
		Mode:     types.FollowModeExcept,
		Tags:     []string{"spoilers"},
	})
	require.NoError(t, err)

	followees, err := v.Followees(alice.Public)
	require.NoError(t, err)
	require.Len(t, followees, 1)
	require.Equal(t, bob.Public, followees[0].Followee)

	followers, err := v.Followers(bob.Public)
	require.NoError(t, err)
	require.Equal(t, []types.AuthorID{alice.Public}, followers)
}
