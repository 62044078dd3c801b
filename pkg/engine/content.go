package engine

import (
	"errors"
	"strconv"
	"time"

	"github.com/rostra-dev/rostra/pkg/codec"
	"github.com/rostra-dev/rostra/pkg/events"
	"github.com/rostra-dev/rostra/pkg/metrics"
	"github.com/rostra-dev/rostra/pkg/sidefx"
	"github.com/rostra-dev/rostra/pkg/storage"
	"github.com/rostra-dev/rostra/pkg/types"
)

// processContentTx runs the verify/dispatch/commit steps of content
// processing against tx, which the caller already has open and in which it
// has confirmed state.Kind == StateMissing. It performs no transaction
// management of its own so that a caller already mid-transaction (InsertEvent,
// for content available at insert time) can fold this into its own commit
// instead of opening a second one.
func (e *Engine) processContentTx(tx *storage.Tx, env *types.Envelope, id types.EventID, state types.ContentState, content []byte) (ok, hashMismatch, invalidKind bool, err error) {
	hash := codec.HashContent(content)
	if hash != env.ContentHash || uint32(len(content)) != env.ContentLen {
		if err := e.markInvalid(tx, env, id, state); err != nil {
			return false, false, false, err
		}
		return false, true, false, nil
	}

	timer := metrics.NewTimer()
	dispatchErr := sidefx.Dispatch(tx, env, id, content)
	timer.ObserveDurationVec(metrics.SideEffectDuration, strconv.Itoa(int(env.Kind)))
	if errors.Is(dispatchErr, sidefx.ErrInvalidPayload) {
		if err := e.markInvalid(tx, env, id, state); err != nil {
			return false, false, false, err
		}
		return false, false, true, nil
	}
	if dispatchErr != nil {
		return false, false, false, dispatchErr
	}

	if !tx.HasContent(hash) {
		if err := tx.PutContent(hash, content); err != nil {
			return false, false, false, err
		}
	}
	if err := tx.DeleteContentState(id); err != nil {
		return false, false, false, err
	}
	if err := tx.UnscheduleContentFetch(state.NextAttempt, id); err != nil {
		return false, false, false, err
	}
	return true, false, false, nil
}

// ProcessEventContent verifies bytes against the event's committed
// hash/length, runs the kind's side effects, and clears the Missing state, in
// one transaction. insertEvent (see insert.go) handles content already known
// at insert time inline via processContentTx; this entry point is for
// content that becomes available only after the event was already committed
// — the fetcher's job once a fetch succeeds.
func (e *Engine) ProcessEventContent(id types.EventID, content []byte) error {
	var (
		author       types.AuthorID
		ok           bool
		hashMismatch bool
		invalidKind  bool
	)

	err := e.store.Update(func(tx *storage.Tx) error {
		raw, err := tx.GetEvent(id)
		if errors.Is(err, storage.ErrNotFound) {
			e.log.Debug().Msg("process_event_content: unknown event id")
			return nil
		}
		if err != nil {
			return err
		}
		env, _, err := codec.Decode(raw)
		if err != nil {
			return err
		}
		author = env.Author

		state, hasRow, err := tx.GetContentState(id)
		if err != nil {
			return err
		}
		if !hasRow || state.Kind != types.StateMissing {
			return ErrAlreadyProcessed
		}

		ok, hashMismatch, invalidKind, err = e.processContentTx(tx, env, id, state, content)
		return err
	})

	if err != nil {
		return err
	}
	if hashMismatch {
		return ErrHashMismatch
	}
	if invalidKind {
		return ErrInvalidContent
	}
	if !ok {
		return nil
	}

	if e.broker != nil {
		e.broker.Publish(&events.Event{Type: events.ContentReady, Author: author, EventID: id})
	}
	return nil
}

// markInvalid applies the Invalid transition: rc-1, drop the fetch
// schedule, discard bytes.
func (e *Engine) markInvalid(tx *storage.Tx, env *types.Envelope, id types.EventID, state types.ContentState) error {
	if _, err := tx.AddRC(env.ContentHash, -1); err != nil {
		return err
	}
	if err := tx.UnscheduleContentFetch(state.NextAttempt, id); err != nil {
		return err
	}
	return tx.PutContentState(id, types.ContentState{Kind: types.StateInvalid})
}

// RecordFailedContentFetch reschedules a Missing event's next attempt with
// exponential backoff (60s, x1.5, cap 86400s).
func (e *Engine) RecordFailedContentFetch(id types.EventID, attemptedAt time.Time) error {
	var newNext uint64

	err := e.store.Update(func(tx *storage.Tx) error {
		state, hasRow, err := tx.GetContentState(id)
		if err != nil {
			return err
		}
		if !hasRow || state.Kind != types.StateMissing {
			return ErrUnknownEvent
		}

		if err := tx.UnscheduleContentFetch(state.NextAttempt, id); err != nil {
			return err
		}

		backoff := 60.0
		for i := uint32(0); i < state.AttemptCount; i++ {
			backoff *= 1.5
			if backoff >= 86400 {
				backoff = 86400
				break
			}
		}
		newNext = uint64(attemptedAt.Unix()) + uint64(backoff)

		if err := tx.PutContentState(id, types.ContentState{
			Kind:         types.StateMissing,
			LastAttempt:  attemptedAt,
			AttemptCount: state.AttemptCount + 1,
			NextAttempt:  newNext,
		}); err != nil {
			return err
		}
		return tx.ScheduleContentFetch(newNext, id)
	})
	if err != nil {
		return err
	}

	metrics.FetchBackoffSeconds.Set(float64(newNext) - float64(attemptedAt.Unix()))
	return nil
}

// PruneContent locally discards bytes for a Processed event to save space.
// Returns false if the event's state is not Processed.
func (e *Engine) PruneContent(id types.EventID) (bool, error) {
	pruned := false

	err := e.store.Update(func(tx *storage.Tx) error {
		if !tx.HasEvent(id) {
			return ErrUnknownEvent
		}
		raw, err := tx.GetEvent(id)
		if err != nil {
			return err
		}
		env, _, err := codec.Decode(raw)
		if err != nil {
			return err
		}

		_, hasRow, err := tx.GetContentState(id)
		if err != nil {
			return err
		}
		if hasRow {
			return nil // not Processed
		}

		if _, err := tx.AddRC(env.ContentHash, -1); err != nil {
			return err
		}
		if err := tx.PutContentState(id, types.ContentState{Kind: types.StatePruned}); err != nil {
			return err
		}
		pruned = true
		return nil
	})

	return pruned, err
}
