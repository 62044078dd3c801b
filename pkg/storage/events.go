package storage

import (
	"encoding/json"
	"errors"

	"github.com/rostra-dev/rostra/pkg/types"
)

// ErrNotFound is returned by Get-style lookups that find nothing.
var ErrNotFound = errors.New("storage: not found")

// HasEvent reports whether event_id has already been accepted.
func (tx *Tx) HasEvent(id types.EventID) bool {
	return tx.bucket(bucketEvents).Get(id[:]) != nil
}

// PutEvent stores the raw 192-byte envelope under event_id. Storage is
// agnostic to the envelope's internal layout; encoding/decoding is pkg/codec's
// job, so callers pass already-encoded bytes.
func (tx *Tx) PutEvent(id types.EventID, envelope []byte) error {
	return tx.bucket(bucketEvents).Put(id[:], envelope)
}

// GetEvent returns the raw envelope bytes for event_id.
func (tx *Tx) GetEvent(id types.EventID) ([]byte, error) {
	data := tx.bucket(bucketEvents).Get(id[:])
	if data == nil {
		return nil, ErrNotFound
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

// PutAuthorTimeIndex inserts the (author, timestamp, event_id) ordering key.
func (tx *Tx) PutAuthorTimeIndex(author types.AuthorID, ts uint64, id types.EventID) error {
	return tx.bucket(bucketEventsByAuthorTime).Put(authorTimeKey(author, ts, id), nil)
}

// ScanAuthorTime walks events_by_author_time for a single author in
// ascending (timestamp, event_id) order, calling fn for each entry. fn
// returning false stops the scan early.
func (tx *Tx) ScanAuthorTime(author types.AuthorID, fn func(ts uint64, id types.EventID) bool) error {
	b := tx.bucket(bucketEventsByAuthorTime)
	c := b.Cursor()
	prefix := author[:]
	for k, _ := c.Seek(prefix); k != nil && hasPrefix(k, prefix); k, _ = c.Next() {
		ts := beUint64(k[32:40])
		id := eventIDFromTail(k)
		if !fn(ts, id) {
			break
		}
	}
	return nil
}

// maxKeyForPrefix returns the largest possible key carrying prefix, so that
// seeking to it and stepping back once lands on the last real key under
// prefix (if any exist), regardless of what the suffix bytes of real keys
// happen to contain.
func maxKeyForPrefix(prefix []byte, suffixLen int) []byte {
	out := make([]byte, len(prefix)+suffixLen)
	copy(out, prefix)
	for i := len(prefix); i < len(out); i++ {
		out[i] = 0xff
	}
	return out
}

// ScanAuthorTimeDesc walks events_by_author_time for a single author in
// descending (timestamp, event_id) order, starting strictly before the
// given cursor (a zero cursor starts from the newest row), calling fn for
// each entry. fn returning false stops the scan early.
func (tx *Tx) ScanAuthorTimeDesc(author types.AuthorID, cursorTS uint64, cursorID types.EventID, fn func(ts uint64, id types.EventID) bool) error {
	b := tx.bucket(bucketEventsByAuthorTime)
	c := b.Cursor()
	prefix := author[:]

	var seekKey []byte
	if cursorTS == 0 && cursorID.IsZero() {
		seekKey = maxKeyForPrefix(prefix, 8+16)
	} else {
		seekKey = authorTimeKey(author, cursorTS, cursorID)
	}
	// Seek lands on the smallest key >= seekKey (possibly nil, possibly a
	// foreign author's key); stepping back once always yields the largest
	// key < seekKey, which is this author's newest entry at-or-before the
	// cursor, or a foreign, lexicographically-smaller author's key that the
	// hasPrefix check below correctly rejects.
	c.Seek(seekKey)
	k, _ := c.Prev()

	for ; k != nil && hasPrefix(k, prefix); k, _ = c.Prev() {
		ts := beUint64(k[32:40])
		id := eventIDFromTail(k)
		if !fn(ts, id) {
			break
		}
	}
	return nil
}

// CountEvents returns the total number of accepted events.
func (tx *Tx) CountEvents() uint64 {
	return uint64(tx.bucket(bucketEvents).Stats().KeyN)
}

// AddHead inserts event_id into author's heads set.
func (tx *Tx) AddHead(author types.AuthorID, id types.EventID) error {
	return tx.bucket(bucketHeads).Put(headKey(author, id), nil)
}

// RemoveHead removes event_id from author's heads set, if present.
func (tx *Tx) RemoveHead(author types.AuthorID, id types.EventID) error {
	return tx.bucket(bucketHeads).Delete(headKey(author, id))
}

// ListHeads returns author's current heads, lexicographically sorted by
// event_id (bbolt's cursor already yields them in byte order, which for a
// fixed author prefix is equivalent to sorting by event_id).
func (tx *Tx) ListHeads(author types.AuthorID) []types.EventID {
	b := tx.bucket(bucketHeads)
	c := b.Cursor()
	prefix := author[:]
	var heads []types.EventID
	for k, _ := c.Seek(prefix); k != nil && hasPrefix(k, prefix); k, _ = c.Next() {
		heads = append(heads, eventIDFromTail(k))
	}
	return heads
}

// CountHeads returns the total number of (author, head) rows across all
// authors.
func (tx *Tx) CountHeads() uint64 {
	return uint64(tx.bucket(bucketHeads).Stats().KeyN)
}

// missingRecord is the JSON-encoded value of an events_missing row.
type missingRecord struct {
	HasDeletedBy bool          `json:"has_deleted_by,omitempty"`
	DeletedBy    types.EventID `json:"deleted_by,omitempty"`
}

// GetMissing looks up an events_missing row.
func (tx *Tx) GetMissing(id types.EventID) (types.MissingEntry, bool, error) {
	data := tx.bucket(bucketEventsMissing).Get(id[:])
	if data == nil {
		return types.MissingEntry{}, false, nil
	}
	var rec missingRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return types.MissingEntry{}, false, err
	}
	return types.MissingEntry{HasDeletedBy: rec.HasDeletedBy, DeletedBy: rec.DeletedBy}, true, nil
}

// PutMissing inserts or overwrites an events_missing row.
func (tx *Tx) PutMissing(id types.EventID, entry types.MissingEntry) error {
	rec := missingRecord{HasDeletedBy: entry.HasDeletedBy, DeletedBy: entry.DeletedBy}
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return tx.bucket(bucketEventsMissing).Put(id[:], data)
}

// DeleteMissing removes an events_missing row, e.g. once the event finally
// arrives.
func (tx *Tx) DeleteMissing(id types.EventID) error {
	return tx.bucket(bucketEventsMissing).Delete(id[:])
}

func hasPrefix(b, prefix []byte) bool {
	if len(b) < len(prefix) {
		return false
	}
	for i := range prefix {
		if b[i] != prefix[i] {
			return false
		}
	}
	return true
}

func beUint64(b []byte) uint64 {
	var v uint64
	for _, c := range b {
		v = v<<8 | uint64(c)
	}
	return v
}
