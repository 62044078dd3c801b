package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/rostra-dev/rostra/pkg/codec"
	"github.com/rostra-dev/rostra/pkg/events"
	"github.com/rostra-dev/rostra/pkg/identity"
	"github.com/rostra-dev/rostra/pkg/storage"
	"github.com/rostra-dev/rostra/pkg/types"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	s, err := storage.Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return New(s, events.NewBroker())
}

func mustIdentity(t *testing.T) *identity.Identity {
	t.Helper()
	id, err := identity.Generate()
	require.NoError(t, err)
	return id
}

func buildEvent(t *testing.T, ident *identity.Identity, kind types.Kind, ts uint64, parent, auxParent types.EventID, flags uint8, content []byte) ([]byte, types.EventID) {
	t.Helper()
	hash := codec.HashContent(content)
	env := codec.NewEnvelope(kind, ident.Public, ts, parent, auxParent, hash, uint32(len(content)), types.AuxKey{}, flags)
	return codec.Sign(env, ident.Private)
}

// Scenario 1: event-before-content.
func TestEventBeforeContent(t *testing.T) {
	e := newTestEngine(t)
	ident := mustIdentity(t)

	content, err := codec.EncodeSocialPost(types.SocialPost{Content: "hello"})
	require.NoError(t, err)
	raw, id := buildEvent(t, ident, types.KindSocialPost, 1, types.ZeroEventID, types.ZeroEventID, 0, content)

	gotID, err := e.InsertEvent(raw)
	require.NoError(t, err)
	require.Equal(t, id, gotID)

	heads, err := e.Heads(ident.Public)
	require.NoError(t, err)
	require.Equal(t, []types.EventID{id}, heads)

	hash := codec.HashContent(content)
	var rc uint32
	var scheduled bool
	err = e.store.View(func(tx *storage.Tx) error {
		rc = tx.GetRC(hash)
		_, queuedID, ok := tx.PeekEarliestContentFetch()
		scheduled = ok && queuedID == id
		return nil
	})
	require.NoError(t, err)
	require.EqualValues(t, 1, rc)
	require.True(t, scheduled, "event should be queued for content fetch")

	require.NoError(t, e.ProcessEventContent(id, content))

	err = e.store.View(func(tx *storage.Tx) error {
		_, hasRow, err := tx.GetContentState(id)
		require.NoError(t, err)
		require.False(t, hasRow)
		require.EqualValues(t, 1, tx.GetRC(hash))
		return nil
	})
	require.NoError(t, err)
}

// Scenario 2: content-first.
func TestContentFirstImmediateProcess(t *testing.T) {
	e := newTestEngine(t)
	ident := mustIdentity(t)

	content, err := codec.EncodeSocialPost(types.SocialPost{Content: "shared"})
	require.NoError(t, err)
	hash := codec.HashContent(content)

	raw1, _ := buildEvent(t, ident, types.KindSocialPost, 1, types.ZeroEventID, types.ZeroEventID, 0, content)
	id1, err := e.InsertEvent(raw1)
	require.NoError(t, err)
	require.NoError(t, e.ProcessEventContent(id1, content))

	raw2, _ := buildEvent(t, ident, types.KindSocialPost, 2, id1, types.ZeroEventID, 0, content)
	id2, err := e.InsertEvent(raw2)
	require.NoError(t, err)

	err = e.store.View(func(tx *storage.Tx) error {
		_, hasRow, err := tx.GetContentState(id2)
		require.NoError(t, err)
		require.False(t, hasRow, "should be immediately Processed")
		require.EqualValues(t, 2, tx.GetRC(hash))
		return nil
	})
	require.NoError(t, err)
}

// Scenario 3: delete-before-target.
func TestDeleteBeforeTarget(t *testing.T) {
	e := newTestEngine(t)
	ident := mustIdentity(t)

	content, err := codec.EncodeSocialPost(types.SocialPost{Content: "to be deleted"})
	require.NoError(t, err)
	hash := codec.HashContent(content)
	_, targetID := buildEvent(t, ident, types.KindSocialPost, 10, types.ZeroEventID, types.ZeroEventID, 0, content)

	deleteRaw, deleteID := buildEvent(t, ident, types.KindContentDelete, 1, types.ZeroEventID, targetID, types.FlagDeletion, nil)
	_, err = e.InsertEvent(deleteRaw)
	require.NoError(t, err)

	targetRaw, gotTargetID := buildEvent(t, ident, types.KindSocialPost, 10, types.ZeroEventID, types.ZeroEventID, 0, content)
	require.Equal(t, targetID, gotTargetID)
	_, err = e.InsertEvent(targetRaw)
	require.NoError(t, err)

	err = e.store.View(func(tx *storage.Tx) error {
		state, hasRow, err := tx.GetContentState(targetID)
		require.NoError(t, err)
		require.True(t, hasRow)
		require.Equal(t, types.StateDeleted, state.Kind)
		require.Equal(t, deleteID, state.DeletedBy)
		require.EqualValues(t, 0, tx.GetRC(hash), "rc never incremented for a born-deleted event")
		return nil
	})
	require.NoError(t, err)
}

// Scenario 4: delete-after-prune.
func TestDeleteAfterPrune(t *testing.T) {
	e := newTestEngine(t)
	ident := mustIdentity(t)

	content, err := codec.EncodeSocialPost(types.SocialPost{Content: "prune me"})
	require.NoError(t, err)
	hash := codec.HashContent(content)

	raw, id := buildEvent(t, ident, types.KindSocialPost, 1, types.ZeroEventID, types.ZeroEventID, 0, content)
	_, err = e.InsertEvent(raw)
	require.NoError(t, err)
	require.NoError(t, e.ProcessEventContent(id, content))

	pruned, err := e.PruneContent(id)
	require.NoError(t, err)
	require.True(t, pruned)

	err = e.store.View(func(tx *storage.Tx) error {
		require.EqualValues(t, 0, tx.GetRC(hash))
		return nil
	})
	require.NoError(t, err)

	deleteRaw, deleteID := buildEvent(t, ident, types.KindContentDelete, 2, types.ZeroEventID, id, types.FlagDeletion, nil)
	_, err = e.InsertEvent(deleteRaw)
	require.NoError(t, err)

	err = e.store.View(func(tx *storage.Tx) error {
		state, hasRow, err := tx.GetContentState(id)
		require.NoError(t, err)
		require.True(t, hasRow)
		require.Equal(t, types.StateDeleted, state.Kind)
		require.Equal(t, deleteID, state.DeletedBy)
		require.EqualValues(t, 0, tx.GetRC(hash))
		return nil
	})
	require.NoError(t, err)
}

// Scenario 5: stale publish.
func TestStalePublish(t *testing.T) {
	e := newTestEngine(t)
	ident := mustIdentity(t)

	_, _, err := e.PublishSocialPost(ident, nil, types.SocialPost{Content: "first"}, nil)
	require.NoError(t, err)

	heads, err := e.Heads(ident.Public)
	require.NoError(t, err)
	require.Len(t, heads, 1)

	var bogus types.EventID
	bogus[0] = 0xEE
	_, _, err = e.PublishSocialPost(ident, &bogus, types.SocialPost{Content: "stale"}, nil)
	require.ErrorIs(t, err, ErrStaleHead)

	headsAfter, err := e.Heads(ident.Public)
	require.NoError(t, err)
	require.Equal(t, heads, headsAfter)
}

// Scenario 6: fetcher backoff.
func TestRecordFailedContentFetchBackoff(t *testing.T) {
	e := newTestEngine(t)
	ident := mustIdentity(t)

	content := []byte("will never arrive")
	raw, id := buildEvent(t, ident, types.KindSocialPost, 1, types.ZeroEventID, types.ZeroEventID, 0, content)
	_, err := e.InsertEvent(raw)
	require.NoError(t, err)

	next, err := e.recordFailureAt(id, time.Unix(100, 0))
	require.NoError(t, err)
	require.EqualValues(t, 160, next)

	next, err = e.recordFailureAt(id, time.Unix(170, 0))
	require.NoError(t, err)
	require.EqualValues(t, 260, next)

	for i := 0; i < 28; i++ {
		next, err = e.recordFailureAt(id, time.Unix(int64(1000+i), 0))
		require.NoError(t, err)
	}
	require.EqualValues(t, 86400, next-1027)
}

func (e *Engine) recordFailureAt(id types.EventID, at time.Time) (uint64, error) {
	if err := e.RecordFailedContentFetch(id, at); err != nil {
		return 0, err
	}
	var next uint64
	err := e.store.View(func(tx *storage.Tx) error {
		state, _, err := tx.GetContentState(id)
		if err != nil {
			return err
		}
		next = state.NextAttempt
		return nil
	})
	return next, err
}
