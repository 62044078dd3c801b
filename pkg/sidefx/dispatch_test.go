package sidefx

import (
	"crypto/ed25519"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rostra-dev/rostra/pkg/codec"
	"github.com/rostra-dev/rostra/pkg/identity"
	"github.com/rostra-dev/rostra/pkg/storage"
	"github.com/rostra-dev/rostra/pkg/types"
)

func openTestStore(t *testing.T) *storage.Store {
	t.Helper()
	s, err := storage.Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func signedEvent(t *testing.T, priv ed25519.PrivateKey, author types.AuthorID, kind types.Kind, ts uint64, parent, auxParent types.EventID, flags uint8, content []byte) ([]byte, types.EventID) {
	t.Helper()
	hash := codec.HashContent(content)
	env := codec.NewEnvelope(kind, author, ts, parent, auxParent, hash, uint32(len(content)), types.AuxKey{}, flags)
	return codec.Sign(env, priv)
}

func TestDispatchSocialPostReplyAndMention(t *testing.T) {
	s := openTestStore(t)

	_, parentPriv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)
	var parentAuthor types.AuthorID
	copy(parentAuthor[:], parentPriv.Public().(ed25519.PublicKey))

	mentionedID, err := identity.Generate()
	require.NoError(t, err)

	parentContent := []byte(`{"content":"original post"}`)
	parentRaw, parentID := signedEvent(t, parentPriv, parentAuthor, types.KindSocialPost, 100, types.ZeroEventID, types.ZeroEventID, 0, parentContent)

	_, replyPriv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)
	var replyAuthor types.AuthorID
	copy(replyAuthor[:], replyPriv.Public().(ed25519.PublicKey))

	mentionTag, err := identity.Render(mentionedID.Public)
	require.NoError(t, err)
	replyPayload, err := codec.EncodeSocialPost(types.SocialPost{Content: "nice post <rostra:" + mentionTag + ">"})
	require.NoError(t, err)
	_, replyID := signedEvent(t, replyPriv, replyAuthor, types.KindSocialPost, 200, parentID, parentID, types.FlagReplyAux, replyPayload)

	err = s.Update(func(tx *storage.Tx) error {
		require.NoError(t, tx.PutEvent(parentID, parentRaw))
		require.NoError(t, Dispatch(tx, &types.Envelope{Kind: types.KindSocialPost, Author: parentAuthor, Timestamp: 100}, parentID, parentContent))
		return Dispatch(tx, &types.Envelope{Kind: types.KindSocialPost, Author: replyAuthor, Timestamp: 200, AuxParent: parentID, Flags: types.FlagReplyAux}, replyID, replyPayload)
	})
	require.NoError(t, err)

	err = s.View(func(tx *storage.Tx) error {
		require.EqualValues(t, 1, tx.GetReplyCount(parentID))

		notes, err := tx.ListNotifications(parentAuthor, 0, 0, 10)
		require.NoError(t, err)
		require.Len(t, notes, 1)
		require.Equal(t, replyID, notes[0].EventID)

		mentionNotes, err := tx.ListNotifications(mentionedID.Public, 0, 0, 10)
		require.NoError(t, err)
		require.Len(t, mentionNotes, 1)
		return nil
	})
	require.NoError(t, err)
}

func TestDispatchFollowAndUnfollow(t *testing.T) {
	s := openTestStore(t)

	var author, followee types.AuthorID
	author[0], followee[0] = 1, 2

	payload, err := codec.EncodeFollowUpdate(types.FollowUpdate{Followee: followee, Mode: types.FollowModeOnly, Tags: []string{"art"}})
	require.NoError(t, err)

	err = s.Update(func(tx *storage.Tx) error {
		return Dispatch(tx, &types.Envelope{Kind: types.KindFollowUpdate, Author: author}, types.EventID{}, payload)
	})
	require.NoError(t, err)

	err = s.View(func(tx *storage.Tx) error {
		state, ok, err := tx.GetFollow(author, followee)
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, types.FollowModeOnly, state.Mode)
		return nil
	})
	require.NoError(t, err)

	unfollowPayload, err := codec.EncodeUnfollow(types.Unfollow{Followee: followee})
	require.NoError(t, err)
	err = s.Update(func(tx *storage.Tx) error {
		return Dispatch(tx, &types.Envelope{Kind: types.KindUnfollow, Author: author}, types.EventID{}, unfollowPayload)
	})
	require.NoError(t, err)

	err = s.View(func(tx *storage.Tx) error {
		_, ok, err := tx.GetFollow(author, followee)
		require.NoError(t, err)
		require.False(t, ok)
		return nil
	})
	require.NoError(t, err)
}

func TestDispatchProfileUpdate(t *testing.T) {
	s := openTestStore(t)

	var author types.AuthorID
	author[0] = 7

	payload, err := codec.EncodeProfileUpdate(types.ProfileUpdate{
		DisplayName: "Ada",
		Bio:         "building things",
		Avatar:      []byte("https://example.invalid/ada.png"),
	})
	require.NoError(t, err)

	err = s.Update(func(tx *storage.Tx) error {
		return Dispatch(tx, &types.Envelope{Kind: types.KindProfileUpdate, Author: author}, types.EventID{}, payload)
	})
	require.NoError(t, err)

	err = s.View(func(tx *storage.Tx) error {
		profile, ok, err := tx.GetProfile(author)
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, "Ada", profile.DisplayName)
		require.Equal(t, "building things", profile.Bio)
		require.Equal(t, []byte("https://example.invalid/ada.png"), profile.Avatar)
		return nil
	})
	require.NoError(t, err)

	update, err := codec.EncodeProfileUpdate(types.ProfileUpdate{DisplayName: "Ada Lovelace"})
	require.NoError(t, err)
	err = s.Update(func(tx *storage.Tx) error {
		return Dispatch(tx, &types.Envelope{Kind: types.KindProfileUpdate, Author: author}, types.EventID{}, update)
	})
	require.NoError(t, err)

	err = s.View(func(tx *storage.Tx) error {
		profile, ok, err := tx.GetProfile(author)
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, "Ada Lovelace", profile.DisplayName)
		require.Empty(t, profile.Bio)
		return nil
	})
	require.NoError(t, err)
}

func TestDispatchUnknownKindIsNoop(t *testing.T) {
	s := openTestStore(t)
	err := s.Update(func(tx *storage.Tx) error {
		return Dispatch(tx, &types.Envelope{Kind: 999}, types.EventID{}, []byte("anything"))
	})
	require.NoError(t, err)
}

func TestDispatchInvalidPayloadReturnsSentinel(t *testing.T) {
	s := openTestStore(t)
	err := s.Update(func(tx *storage.Tx) error {
		return Dispatch(tx, &types.Envelope{Kind: types.KindFollowUpdate}, types.EventID{}, []byte("not json"))
	})
	require.ErrorIs(t, err, ErrInvalidPayload)
}
