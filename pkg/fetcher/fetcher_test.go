package fetcher

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/rostra-dev/rostra/pkg/codec"
	"github.com/rostra-dev/rostra/pkg/engine"
	"github.com/rostra-dev/rostra/pkg/events"
	"github.com/rostra-dev/rostra/pkg/identity"
	"github.com/rostra-dev/rostra/pkg/storage"
	"github.com/rostra-dev/rostra/pkg/types"
)

type fakeTransport struct {
	content []byte
	fail    bool
	calls   chan struct{}
}

func (f *fakeTransport) Fetch(ctx context.Context, hash types.ContentHash, contentLen uint32) ([]byte, error) {
	select {
	case f.calls <- struct{}{}:
	default:
	}
	if f.fail {
		return nil, errors.New("fake transport: fetch failed")
	}
	return f.content, nil
}

func newTestEngine(t *testing.T) (*engine.Engine, *storage.Store, *events.Broker) {
	t.Helper()
	s, err := storage.Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	broker := events.NewBroker()
	broker.Start()
	t.Cleanup(broker.Stop)

	return engine.New(s, broker), s, broker
}

func insertEventAwaitingContent(t *testing.T, eng *engine.Engine, content []byte) types.EventID {
	t.Helper()
	ident, err := identity.Generate()
	require.NoError(t, err)

	hash := codec.HashContent(content)
	env := codec.NewEnvelope(types.KindSocialPost, ident.Public, 1, types.ZeroEventID, types.ZeroEventID, hash, uint32(len(content)), types.AuxKey{}, 0)
	raw, id := codec.Sign(env, ident.Private)

	gotID, err := eng.InsertEvent(raw)
	require.NoError(t, err)
	require.Equal(t, id, gotID)
	return id
}

func TestFetcherProcessesOnSuccess(t *testing.T) {
	eng, store, broker := newTestEngine(t)
	content := []byte(`{"content":"fetched from afar"}`)
	id := insertEventAwaitingContent(t, eng, content)

	tp := &fakeTransport{content: content, calls: make(chan struct{}, 8)}
	f := New(eng, store, tp, broker, Config{})
	f.Start()
	defer f.Stop()

	select {
	case <-tp.calls:
	case <-time.After(2 * time.Second):
		t.Fatal("transport.Fetch was never called")
	}

	require.Eventually(t, func() bool {
		var hasRow bool
		err := store.View(func(tx *storage.Tx) error {
			_, hasRow, _ = tx.GetContentState(id)
			return nil
		})
		require.NoError(t, err)
		return !hasRow
	}, 2*time.Second, 10*time.Millisecond, "content state should clear once processed")
}

func TestFetcherBacksOffOnFailure(t *testing.T) {
	eng, store, broker := newTestEngine(t)
	content := []byte(`{"content":"never arrives"}`)
	id := insertEventAwaitingContent(t, eng, content)

	tp := &fakeTransport{fail: true, calls: make(chan struct{}, 8)}
	f := New(eng, store, tp, broker, Config{})
	f.Start()
	defer f.Stop()

	select {
	case <-tp.calls:
	case <-time.After(2 * time.Second):
		t.Fatal("transport.Fetch was never called")
	}

	require.Eventually(t, func() bool {
		var attemptCount uint32
		err := store.View(func(tx *storage.Tx) error {
			state, hasRow, err := tx.GetContentState(id)
			if err != nil || !hasRow {
				return err
			}
			attemptCount = state.AttemptCount
			return nil
		})
		require.NoError(t, err)
		return attemptCount >= 1
	}, 2*time.Second, 10*time.Millisecond, "a failed fetch should record a backoff attempt")
}
