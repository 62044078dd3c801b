package engine

import (
	"encoding/hex"
	"errors"

	"github.com/rostra-dev/rostra/pkg/codec"
	"github.com/rostra-dev/rostra/pkg/events"
	"github.com/rostra-dev/rostra/pkg/metrics"
	"github.com/rostra-dev/rostra/pkg/storage"
	"github.com/rostra-dev/rostra/pkg/types"
)

// InsertEvent decodes, verifies, and commits a new event plus its DAG and
// refcount bookkeeping in one write transaction. When content is already
// available at insert time (content_len==0, or the content bytes are already
// in the store under another event's hash), processing that content — side
// effects and the Missing-state clear — happens inside this same
// transaction, so a crash can never leave an event durably indexed with its
// already-known content stuck in Missing. Post-commit notifications fire
// once the transaction has committed.
func (e *Engine) InsertEvent(raw []byte) (types.EventID, error) {
	return e.insertEvent(raw, nil)
}

// insertEvent is InsertEvent's implementation. localContent, when non-nil,
// is content the caller already holds in memory for this exact event (a
// local publish) and is processed in the same transaction as the insert
// even when the store has never seen this content hash before; InsertEvent
// itself passes nil, since an event arriving with only its raw envelope has
// no such bytes to offer beyond what the store may already know.
func (e *Engine) insertEvent(raw []byte, localContent []byte) (types.EventID, error) {
	timer := metrics.NewTimer()
	defer timer.ObserveDuration(metrics.InsertEventDuration)

	env, id, err := codec.Decode(raw)
	if err != nil {
		metrics.EventsIngestedTotal.WithLabelValues("rejected").Inc()
		switch {
		case errors.Is(err, codec.ErrMalformedEnvelope):
			return types.EventID{}, ErrMalformedEnvelope
		case errors.Is(err, codec.ErrBadSignature):
			return types.EventID{}, ErrBadSignature
		case errors.Is(err, codec.ErrEmptyContentHashMismatch):
			return types.EventID{}, ErrEmptyContentHashMismatch
		default:
			return types.EventID{}, err
		}
	}

	var (
		headsChanged        bool
		missingScheduled    bool
		contentReady        bool
		contentHashMismatch bool
		contentInvalidKind  bool
	)

	err = e.store.Update(func(tx *storage.Tx) error {
		if tx.HasEvent(id) {
			return ErrAlreadyPresent
		}

		missingEntry, hasMissing, err := tx.GetMissing(id)
		if err != nil {
			return err
		}
		isBornDeleted := hasMissing && missingEntry.HasDeletedBy

		if err := tx.PutEvent(id, raw); err != nil {
			return err
		}
		if err := tx.PutAuthorTimeIndex(env.Author, env.Timestamp, id); err != nil {
			return err
		}

		if env.HasParent() {
			if err := tx.RemoveHead(env.Author, env.Parent); err != nil {
				return err
			}
		}
		if env.HasAuxParent() && !env.IsReplyAux() {
			if err := tx.RemoveHead(env.Author, env.AuxParent); err != nil {
				return err
			}
		}
		if err := tx.AddHead(env.Author, id); err != nil {
			return err
		}
		headsChanged = true

		for _, parent := range []types.EventID{env.Parent, env.AuxParent} {
			if parent.IsZero() || tx.HasEvent(parent) {
				continue
			}
			_, has, err := tx.GetMissing(parent)
			if err != nil {
				return err
			}
			if !has {
				if err := tx.PutMissing(parent, types.MissingEntry{}); err != nil {
					return err
				}
			}
		}

		if hasMissing {
			if err := tx.DeleteMissing(id); err != nil {
				return err
			}
		}

		switch {
		case isBornDeleted:
			if err := tx.PutContentState(id, types.ContentState{Kind: types.StateDeleted, DeletedBy: missingEntry.DeletedBy}); err != nil {
				return err
			}
		case env.ContentLen == 0:
			if !tx.HasContent(types.EmptyContentHash) {
				if err := tx.PutContent(types.EmptyContentHash, nil); err != nil {
					return err
				}
			}
			if _, err := tx.AddRC(types.EmptyContentHash, 1); err != nil {
				return err
			}
			// Mark Missing so processContentTx's precondition holds, then
			// immediately clear it in this same commit.
			state := types.ContentState{Kind: types.StateMissing}
			if err := tx.PutContentState(id, state); err != nil {
				return err
			}
			ok, mismatch, invalid, perr := e.processContentTx(tx, env, id, state, nil)
			if perr != nil {
				return perr
			}
			contentReady, contentHashMismatch, contentInvalidKind = ok, mismatch, invalid
		default:
			if _, err := tx.AddRC(env.ContentHash, 1); err != nil {
				return err
			}

			data := localContent
			if data == nil && tx.HasContent(env.ContentHash) {
				stored, err := tx.GetContent(env.ContentHash)
				if err != nil {
					return err
				}
				data = stored
			}

			if data != nil {
				state := types.ContentState{Kind: types.StateMissing}
				if err := tx.PutContentState(id, state); err != nil {
					return err
				}
				ok, mismatch, invalid, perr := e.processContentTx(tx, env, id, state, data)
				if perr != nil {
					return perr
				}
				contentReady, contentHashMismatch, contentInvalidKind = ok, mismatch, invalid
			} else {
				if err := tx.PutContentState(id, types.ContentState{Kind: types.StateMissing, NextAttempt: 0}); err != nil {
					return err
				}
				if err := tx.ScheduleContentFetch(0, id); err != nil {
					return err
				}
				missingScheduled = true
			}
		}

		return nil
	})

	if err != nil {
		switch {
		case errors.Is(err, ErrAlreadyPresent):
			metrics.EventsIngestedTotal.WithLabelValues("duplicate").Inc()
			return id, ErrAlreadyPresent
		default:
			metrics.EventsIngestedTotal.WithLabelValues("rejected").Inc()
			return types.EventID{}, err
		}
	}
	metrics.EventsIngestedTotal.WithLabelValues("accepted").Inc()

	if headsChanged && e.broker != nil {
		e.broker.Publish(&events.Event{Type: events.HeadsChanged, Author: env.Author, EventID: id})
	}
	if missingScheduled && e.broker != nil {
		e.broker.Publish(&events.Event{Type: events.ContentMissing, Author: env.Author, EventID: id})
	}

	switch {
	case contentReady && e.broker != nil:
		e.broker.Publish(&events.Event{Type: events.ContentReady, Author: env.Author, EventID: id})
	case contentHashMismatch:
		e.log.Error().Str("event_id", hex.EncodeToString(id[:])).Msg("content known at insert time failed its own hash check")
	case contentInvalidKind:
		e.log.Warn().Str("event_id", hex.EncodeToString(id[:])).Msg("content known at insert time failed payload validation")
	}

	return id, nil
}
