package storage

import (
	"encoding/binary"
	"encoding/json"

	"github.com/rostra-dev/rostra/pkg/types"
)

// contentStateRecord is the JSON-encoded value of an events_content_state row.
type contentStateRecord struct {
	Kind         types.ContentStateKind `json:"kind"`
	LastAttempt  int64                  `json:"last_attempt,omitempty"` // unix seconds
	AttemptCount uint32                 `json:"attempt_count,omitempty"`
	NextAttempt  uint64                 `json:"next_attempt,omitempty"`
	DeletedBy    types.EventID          `json:"deleted_by,omitempty"`
}

// GetContentState looks up an events_content_state row. Absence means
// Processed.
func (tx *Tx) GetContentState(id types.EventID) (types.ContentState, bool, error) {
	data := tx.bucket(bucketEventsContentState).Get(id[:])
	if data == nil {
		return types.ContentState{Kind: types.StateProcessed}, false, nil
	}
	var rec contentStateRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return types.ContentState{}, false, err
	}
	return types.ContentState{
		Kind:         rec.Kind,
		LastAttempt:  secondsToTime(rec.LastAttempt),
		AttemptCount: rec.AttemptCount,
		NextAttempt:  rec.NextAttempt,
		DeletedBy:    rec.DeletedBy,
	}, true, nil
}

// PutContentState inserts or overwrites an events_content_state row.
func (tx *Tx) PutContentState(id types.EventID, state types.ContentState) error {
	rec := contentStateRecord{
		Kind:         state.Kind,
		LastAttempt:  timeToSeconds(state.LastAttempt),
		AttemptCount: state.AttemptCount,
		NextAttempt:  state.NextAttempt,
		DeletedBy:    state.DeletedBy,
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return tx.bucket(bucketEventsContentState).Put(id[:], data)
}

// DeleteContentState removes an events_content_state row, transitioning the
// event back to the implicit Processed state.
func (tx *Tx) DeleteContentState(id types.EventID) error {
	return tx.bucket(bucketEventsContentState).Delete(id[:])
}

// ContentStateCounts scans events_content_state and tallies rows by kind,
// for metrics. The Processed count (no row) is not included since it is not
// materialized; callers derive it as CountEvents minus the others.
func (tx *Tx) ContentStateCounts() (map[string]uint64, error) {
	counts := make(map[string]uint64)
	b := tx.bucket(bucketEventsContentState)
	c := b.Cursor()
	for k, v := c.First(); k != nil; k, v = c.Next() {
		var rec contentStateRecord
		if err := json.Unmarshal(v, &rec); err != nil {
			return nil, err
		}
		counts[rec.Kind.String()]++
	}
	return counts, nil
}

// ScheduleContentFetch inserts an events_content_missing row.
func (tx *Tx) ScheduleContentFetch(nextAttempt uint64, id types.EventID) error {
	return tx.bucket(bucketEventsContentMissing).Put(contentMissingKey(nextAttempt, id), nil)
}

// UnscheduleContentFetch removes an events_content_missing row. Callers must
// pass the next_attempt value the row was inserted with (the composite key).
func (tx *Tx) UnscheduleContentFetch(nextAttempt uint64, id types.EventID) error {
	return tx.bucket(bucketEventsContentMissing).Delete(contentMissingKey(nextAttempt, id))
}

// PeekEarliestContentFetch returns the smallest (next_attempt, event_id) row
// in events_content_missing, used by the fetcher to decide whether to sleep
// or act.
func (tx *Tx) PeekEarliestContentFetch() (nextAttempt uint64, id types.EventID, ok bool) {
	b := tx.bucket(bucketEventsContentMissing)
	c := b.Cursor()
	k, _ := c.First()
	if k == nil {
		return 0, types.EventID{}, false
	}
	return binary.BigEndian.Uint64(k[0:8]), eventIDFromTail(k), true
}

// CountContentMissing returns the queue depth for metrics.
func (tx *Tx) CountContentMissing() uint64 {
	return uint64(tx.bucket(bucketEventsContentMissing).Stats().KeyN)
}

// HasContent reports whether bytes for hash are already stored.
func (tx *Tx) HasContent(hash types.ContentHash) bool {
	return tx.bucket(bucketContentStore).Get(hash[:]) != nil
}

// PutContent stores bytes under hash, overwriting any value already there.
func (tx *Tx) PutContent(hash types.ContentHash, data []byte) error {
	return tx.bucket(bucketContentStore).Put(hash[:], data)
}

// GetContent retrieves bytes stored under hash.
func (tx *Tx) GetContent(hash types.ContentHash) ([]byte, error) {
	data := tx.bucket(bucketContentStore).Get(hash[:])
	if data == nil {
		return nil, ErrNotFound
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

// GetRC returns the current refcount for hash (0 if absent).
func (tx *Tx) GetRC(hash types.ContentHash) uint32 {
	data := tx.bucket(bucketContentRC).Get(hash[:])
	if data == nil {
		return 0
	}
	return binary.BigEndian.Uint32(data)
}

// AddRC adds delta (positive or negative) to hash's refcount and persists
// the result, matching the +1/-1 bookkeeping throughout content ingestion.
func (tx *Tx) AddRC(hash types.ContentHash, delta int32) (uint32, error) {
	cur := int64(tx.GetRC(hash)) + int64(delta)
	if cur < 0 {
		cur = 0
	}
	buf := make([]byte, 4)
	binary.BigEndian.PutUint32(buf, uint32(cur))
	if err := tx.bucket(bucketContentRC).Put(hash[:], buf); err != nil {
		return 0, err
	}
	return uint32(cur), nil
}

// SumRC sums every content hash's refcount, for metrics.
func (tx *Tx) SumRC() uint64 {
	var sum uint64
	b := tx.bucket(bucketContentRC)
	c := b.Cursor()
	for k, v := c.First(); k != nil; k, v = c.Next() {
		sum += uint64(binary.BigEndian.Uint32(v))
	}
	return sum
}

// IncReplyCount increments the reply_count bookkeeping for a social-post
// event named as a reply target. Not one of the named durable tables;
// added because the side effect it backs is explicitly required.
func (tx *Tx) IncReplyCount(id types.EventID) (uint32, error) {
	b := tx.bucket(bucketReplyCounts)
	cur := uint32(0)
	if data := b.Get(id[:]); data != nil {
		cur = binary.BigEndian.Uint32(data)
	}
	cur++
	buf := make([]byte, 4)
	binary.BigEndian.PutUint32(buf, cur)
	return cur, b.Put(id[:], buf)
}

// GetReplyCount returns the current reply_count for id.
func (tx *Tx) GetReplyCount(id types.EventID) uint32 {
	data := tx.bucket(bucketReplyCounts).Get(id[:])
	if data == nil {
		return 0
	}
	return binary.BigEndian.Uint32(data)
}
