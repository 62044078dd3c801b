package views

import (
	"sort"

	"github.com/rs/zerolog"

	"github.com/rostra-dev/rostra/pkg/codec"
	rostralog "github.com/rostra-dev/rostra/pkg/log"
	"github.com/rostra-dev/rostra/pkg/storage"
	"github.com/rostra-dev/rostra/pkg/types"
)

// timelineFanout bounds how many candidate rows are pulled per contributing
// author before the cross-author merge, per the top-n-per-source property:
// the global top n of a union of sorted sources is always contained in the
// union of each individual source's own top n. The merge is therefore exact
// for page sizes up to timelineFanout.
const timelineFanout = 200

// Views serves read-only snapshot queries over a storage.Store.
type Views struct {
	store *storage.Store
	log   zerolog.Logger
}

// New wires a Views to a store.
func New(store *storage.Store) *Views {
	return &Views{store: store, log: rostralog.WithComponent("views")}
}

// TimelineItem is one row of a timeline or notification snapshot.
type TimelineItem struct {
	EventID   types.EventID
	Timestamp uint64
}

// Followees returns every followee author follows, with their follow state.
func (v *Views) Followees(author types.AuthorID) ([]types.FollowState, error) {
	var out []types.FollowState
	err := v.store.View(func(tx *storage.Tx) error {
		var err error
		out, err = tx.ListFollowees(author)
		return err
	})
	return out, err
}

// Followers returns every author following followee.
func (v *Views) Followers(followee types.AuthorID) ([]types.AuthorID, error) {
	var out []types.AuthorID
	err := v.store.View(func(tx *storage.Tx) error {
		var err error
		out, err = tx.ListFollowers(followee)
		return err
	})
	return out, err
}

// Notifications returns recipient's notifications newest first, starting
// strictly before the cursor; a zero cursor starts from the newest row.
func (v *Views) Notifications(recipient types.AuthorID, cursorTS, cursorSeq uint64, n int) ([]types.Notification, error) {
	var out []types.Notification
	err := v.store.View(func(tx *storage.Tx) error {
		var err error
		out, err = tx.ListNotifications(recipient, cursorTS, cursorSeq, n)
		return err
	})
	return out, err
}

// TimelineNetwork returns the full network timeline newest first, excluding
// rows authored by exclude, starting strictly before the cursor.
func (v *Views) TimelineNetwork(cursorTS uint64, cursorID types.EventID, n int, exclude types.AuthorID) ([]TimelineItem, error) {
	var items []TimelineItem
	err := v.store.View(func(tx *storage.Tx) error {
		ids, timestamps, err := tx.ListTimelineNetwork(cursorTS, cursorID, n, exclude)
		if err != nil {
			return err
		}
		for i := range ids {
			items = append(items, TimelineItem{EventID: ids[i], Timestamp: timestamps[i]})
		}
		return nil
	})
	return items, err
}

// TimelineFollowing returns author's following timeline: the transitive set
// {author} ∪ followees(author), merged newest first by author_timestamp,
// filtered by each followee's follow-mode/tag policy (author's own events
// always pass). Pagination cursor is (author_timestamp, event_id).
func (v *Views) TimelineFollowing(author types.AuthorID, cursorTS uint64, cursorID types.EventID, n int) ([]TimelineItem, error) {
	var items []TimelineItem

	err := v.store.View(func(tx *storage.Tx) error {
		followees, err := tx.ListFollowees(author)
		if err != nil {
			return err
		}

		sources := make([]types.FollowState, 0, len(followees)+1)
		sources = append(sources, types.FollowState{Followee: author}) // no Mode: unfiltered
		sources = append(sources, followees...)

		var candidates []TimelineItem
		for _, src := range sources {
			collected := 0
			scanErr := tx.ScanAuthorTimeDesc(src.Followee, cursorTS, cursorID, func(ts uint64, id types.EventID) bool {
				if collected >= timelineFanout {
					return false
				}
				if !v.passesFollowPolicy(tx, src, id) {
					return true
				}
				candidates = append(candidates, TimelineItem{EventID: id, Timestamp: ts})
				collected++
				return true
			})
			if scanErr != nil {
				return scanErr
			}
		}

		sort.Slice(candidates, func(i, j int) bool {
			if candidates[i].Timestamp != candidates[j].Timestamp {
				return candidates[i].Timestamp > candidates[j].Timestamp
			}
			return string(candidates[i].EventID[:]) > string(candidates[j].EventID[:])
		})
		if len(candidates) > n {
			candidates = candidates[:n]
		}
		items = candidates
		return nil
	})

	return items, err
}

// passesFollowPolicy applies src's follow-mode/tag filter to event id. A
// zero Mode (the synthetic "self" source) always passes. Non-social-post
// kinds carry no persona tag and always pass once authored by a followed
// identity.
func (v *Views) passesFollowPolicy(tx *storage.Tx, src types.FollowState, id types.EventID) bool {
	if src.Mode == "" {
		return true
	}

	raw, err := tx.GetEvent(id)
	if err != nil {
		return false
	}
	env, _, err := codec.Decode(raw)
	if err != nil {
		return false
	}
	if env.Kind != types.KindSocialPost {
		return true
	}

	tagged := env.AuxKey != (types.AuxKey{})
	matches := false
	for _, tag := range src.Tags {
		if codec.PersonaTagKey(tag) == env.AuxKey {
			matches = true
			break
		}
	}

	switch src.Mode {
	case types.FollowModeOnly:
		return tagged && matches
	case types.FollowModeExcept:
		return !tagged || !matches
	default:
		return true
	}
}
