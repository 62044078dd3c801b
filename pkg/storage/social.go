package storage

import (
	"encoding/json"

	"github.com/rostra-dev/rostra/pkg/types"
)

// PutFollow upserts a follow_state row.
func (tx *Tx) PutFollow(author, followee types.AuthorID, state types.FollowState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return err
	}
	return tx.bucket(bucketFollowState).Put(followKey(author, followee), data)
}

// DeleteFollow removes a follow_state row.
func (tx *Tx) DeleteFollow(author, followee types.AuthorID) error {
	return tx.bucket(bucketFollowState).Delete(followKey(author, followee))
}

// GetFollow looks up a single follow_state row.
func (tx *Tx) GetFollow(author, followee types.AuthorID) (types.FollowState, bool, error) {
	data := tx.bucket(bucketFollowState).Get(followKey(author, followee))
	if data == nil {
		return types.FollowState{}, false, nil
	}
	var state types.FollowState
	if err := json.Unmarshal(data, &state); err != nil {
		return types.FollowState{}, false, err
	}
	return state, true, nil
}

// ListFollowees returns every followee author follows.
func (tx *Tx) ListFollowees(author types.AuthorID) ([]types.FollowState, error) {
	b := tx.bucket(bucketFollowState)
	c := b.Cursor()
	prefix := author[:]
	var out []types.FollowState
	for k, v := c.Seek(prefix); k != nil && hasPrefix(k, prefix); k, v = c.Next() {
		var state types.FollowState
		if err := json.Unmarshal(v, &state); err != nil {
			return nil, err
		}
		out = append(out, state)
	}
	return out, nil
}

// ListFollowers does a full scan of follow_state to find every author who
// follows followee. follow_state is keyed (author, followee), so there is
// no ordered prefix for "followers of X"; this is the one read view the
// engine does not need to serve at high frequency, so a full scan is
// acceptable here.
func (tx *Tx) ListFollowers(followee types.AuthorID) ([]types.AuthorID, error) {
	b := tx.bucket(bucketFollowState)
	c := b.Cursor()
	var out []types.AuthorID
	for k, v := c.First(); k != nil; k, v = c.Next() {
		var state types.FollowState
		if err := json.Unmarshal(v, &state); err != nil {
			return nil, err
		}
		if state.Followee == followee {
			var author types.AuthorID
			copy(author[:], k[0:32])
			out = append(out, author)
		}
	}
	return out, nil
}

// PutNotification inserts a notifications row keyed by
// (recipient, author_timestamp, seq).
func (tx *Tx) PutNotification(n types.Notification) error {
	data, err := json.Marshal(n)
	if err != nil {
		return err
	}
	return tx.bucket(bucketNotifications).Put(notificationKey(n.Recipient, n.AuthorTimestamp, n.Seq), data)
}

// ListNotifications scans notifications for recipient in descending
// (ts, seq) order starting strictly before the cursor, returning at most n
// rows. A zero cursor starts from the newest row.
func (tx *Tx) ListNotifications(recipient types.AuthorID, cursorTS, cursorSeq uint64, n int) ([]types.Notification, error) {
	b := tx.bucket(bucketNotifications)
	c := b.Cursor()
	prefix := recipient[:]

	var seekKey []byte
	if cursorTS == 0 && cursorSeq == 0 {
		seekKey = maxKeyForPrefix(prefix, 8+8)
	} else {
		seekKey = notificationKey(recipient, cursorTS, cursorSeq)
	}

	// Seek lands on the smallest key >= seekKey; stepping back once always
	// yields the largest key strictly before it, whether or not that key
	// belongs to this recipient (a foreign prefix is rejected by hasPrefix
	// below).
	c.Seek(seekKey)
	k, v := c.Prev()

	var out []types.Notification
	for ; k != nil && hasPrefix(k, prefix) && len(out) < n; k, v = c.Prev() {
		var note types.Notification
		if err := json.Unmarshal(v, &note); err != nil {
			return nil, err
		}
		out = append(out, note)
	}
	return out, nil
}

// PutTimelineNetwork inserts a timeline_network row. The value carries the
// author so ListTimelineNetwork can exclude a given author without a second
// lookup.
func (tx *Tx) PutTimelineNetwork(ts uint64, id types.EventID, author types.AuthorID) error {
	return tx.bucket(bucketTimelineNetwork).Put(timelineNetworkKey(ts, id), author[:])
}

// ListTimelineNetwork scans timeline_network newest-first, excluding rows
// authored by exclude, starting strictly before the cursor. A zero cursor
// starts from the newest row.
func (tx *Tx) ListTimelineNetwork(cursorTS uint64, cursorID types.EventID, n int, exclude types.AuthorID) ([]types.EventID, []uint64, error) {
	b := tx.bucket(bucketTimelineNetwork)
	c := b.Cursor()

	var k, v []byte
	if cursorTS == 0 && cursorID.IsZero() {
		k, v = c.Last()
	} else {
		seekKey := timelineNetworkKey(cursorTS, cursorID)
		k, v = c.Seek(seekKey)
		if k != nil {
			k, v = c.Prev()
		} else {
			k, v = c.Last()
		}
	}

	var ids []types.EventID
	var timestamps []uint64
	for ; k != nil && len(ids) < n; k, v = c.Prev() {
		var author types.AuthorID
		copy(author[:], v)
		if author == exclude {
			continue
		}
		ids = append(ids, eventIDFromTail(k))
		timestamps = append(timestamps, beUint64(k[0:8]))
	}
	return ids, timestamps, nil
}

// PutProfile replaces the profile-update snapshot for author. Not one of
// the named durable tables; added because the side effect needs somewhere
// to land.
func (tx *Tx) PutProfile(author types.AuthorID, profile types.Profile) error {
	data, err := json.Marshal(profile)
	if err != nil {
		return err
	}
	return tx.bucket(bucketProfiles).Put(author[:], data)
}

// GetProfile looks up author's latest profile snapshot.
func (tx *Tx) GetProfile(author types.AuthorID) (types.Profile, bool, error) {
	data := tx.bucket(bucketProfiles).Get(author[:])
	if data == nil {
		return types.Profile{}, false, nil
	}
	var p types.Profile
	if err := json.Unmarshal(data, &p); err != nil {
		return types.Profile{}, false, err
	}
	return p, true, nil
}
