package sidefx

import (
	"github.com/rostra-dev/rostra/pkg/codec"
	"github.com/rostra-dev/rostra/pkg/storage"
	"github.com/rostra-dev/rostra/pkg/types"
)

// DeleteContent applies the content state-transition table for a
// content-delete event naming target as its victim. The kind-2 side effect
// in dispatch.go is its only caller; pkg/engine's PruneContent does its own
// bookkeeping and does not call it.
func DeleteContent(tx *storage.Tx, target, deletedBy types.EventID) error {
	if !tx.HasEvent(target) {
		// Born-deleted: record the intent so it fires when target arrives.
		return tx.PutMissing(target, types.MissingEntry{HasDeletedBy: true, DeletedBy: deletedBy})
	}

	state, hasRow, err := tx.GetContentState(target)
	if err != nil {
		return err
	}

	switch {
	case !hasRow, state.Kind == types.StateMissing: // Processed or Missing
		raw, err := tx.GetEvent(target)
		if err != nil {
			return err
		}
		env, _, err := codec.Decode(raw)
		if err != nil {
			return err
		}
		if _, err := tx.AddRC(env.ContentHash, -1); err != nil {
			return err
		}
		if state.Kind == types.StateMissing {
			if err := tx.UnscheduleContentFetch(state.NextAttempt, target); err != nil {
				return err
			}
		}
	case state.Kind == types.StateDeleted:
		return nil // unchanged
	case state.Kind == types.StatePruned, state.Kind == types.StateInvalid:
		// refcount already released, bytes already gone; just relabel below.
	}

	return tx.PutContentState(target, types.ContentState{Kind: types.StateDeleted, DeletedBy: deletedBy})
}
