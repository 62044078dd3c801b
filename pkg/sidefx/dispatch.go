package sidefx

import (
	"errors"
	"regexp"

	"github.com/rostra-dev/rostra/pkg/codec"
	"github.com/rostra-dev/rostra/pkg/identity"
	"github.com/rostra-dev/rostra/pkg/storage"
	"github.com/rostra-dev/rostra/pkg/types"
)

// ErrInvalidPayload is returned by Dispatch when content bytes don't parse
// for the event's kind; the caller treats this as an invalid-content
// transition.
var ErrInvalidPayload = errors.New("sidefx: invalid payload for kind")

var mentionPattern = regexp.MustCompile(`<rostra:([A-Za-z0-9]+)>`)

// notificationSeq is a process-local monotonic counter disambiguating
// notifications that land in the same (recipient, author_timestamp) second.
// It resets on restart; duplicate seq values across restarts only risk an
// overwritten row for an already-delivered notification, never data loss of
// an undelivered one, since the eventID are unique and included in Dispatch.
type notificationSeq struct{ n uint64 }

func (s *notificationSeq) next() uint64 {
	s.n++
	return s.n
}

var globalSeq notificationSeq

// Dispatch runs the side effect for env's kind against content bytes, inside
// tx. It is called once per event, from inside the transaction that
// processes the event's content (ProcessEventContent's, or InsertEvent's
// when the content is already known at insert time), only when content
// state is about to become Processed.
func Dispatch(tx *storage.Tx, env *types.Envelope, id types.EventID, content []byte) error {
	switch env.Kind {
	case types.KindSocialPost:
		return dispatchSocialPost(tx, env, id, content)
	case types.KindContentDelete:
		return dispatchContentDelete(tx, env, id, content)
	case types.KindFollowUpdate:
		return dispatchFollowUpdate(tx, env, content)
	case types.KindUnfollow:
		return dispatchUnfollow(tx, env, content)
	case types.KindProfileUpdate:
		return dispatchProfileUpdate(tx, env, content)
	default:
		// Unknown kind: accepted, opaque, no indices.
		return nil
	}
}

func dispatchSocialPost(tx *storage.Tx, env *types.Envelope, id types.EventID, content []byte) error {
	post, err := codec.DecodeSocialPost(content)
	if err != nil {
		return ErrInvalidPayload
	}

	if err := tx.PutTimelineNetwork(env.Timestamp, id, env.Author); err != nil {
		return err
	}

	if env.IsReplyAux() && env.HasAuxParent() {
		if _, err := tx.IncReplyCount(env.AuxParent); err != nil {
			return err
		}
		if raw, err := tx.GetEvent(env.AuxParent); err == nil {
			parentEnv, _, decodeErr := codec.Decode(raw)
			if decodeErr == nil {
				if err := tx.PutNotification(types.Notification{
					Recipient:       parentEnv.Author,
					AuthorTimestamp: env.Timestamp,
					Seq:             globalSeq.next(),
					EventID:         id,
				}); err != nil {
					return err
				}
			}
		} else if !errors.Is(err, storage.ErrNotFound) {
			return err
		}
	}

	for _, match := range mentionPattern.FindAllStringSubmatch(post.Content, -1) {
		mentioned, err := identity.Parse(match[1])
		if err != nil {
			continue // not a well-formed identity; skip rather than fail the post
		}
		if err := tx.PutNotification(types.Notification{
			Recipient:       mentioned,
			AuthorTimestamp: env.Timestamp,
			Seq:             globalSeq.next(),
			EventID:         id,
		}); err != nil {
			return err
		}
	}

	return nil
}

func dispatchContentDelete(tx *storage.Tx, env *types.Envelope, id types.EventID, content []byte) error {
	// The target is named structurally via aux_parent + FlagDeletion, not via
	// payload content.
	if !env.HasAuxParent() {
		return ErrInvalidPayload
	}
	return DeleteContent(tx, env.AuxParent, id)
}

func dispatchFollowUpdate(tx *storage.Tx, env *types.Envelope, content []byte) error {
	payload, err := codec.DecodeFollowUpdate(content)
	if err != nil {
		return ErrInvalidPayload
	}
	return tx.PutFollow(env.Author, payload.Followee, types.FollowState{
		Followee: payload.Followee,
		Mode:     payload.Mode,
		Tags:     payload.Tags,
	})
}

func dispatchUnfollow(tx *storage.Tx, env *types.Envelope, content []byte) error {
	payload, err := codec.DecodeUnfollow(content)
	if err != nil {
		return ErrInvalidPayload
	}
	return tx.DeleteFollow(env.Author, payload.Followee)
}

func dispatchProfileUpdate(tx *storage.Tx, env *types.Envelope, content []byte) error {
	payload, err := codec.DecodeProfileUpdate(content)
	if err != nil {
		return ErrInvalidPayload
	}
	return tx.PutProfile(env.Author, types.Profile{
		DisplayName: payload.DisplayName,
		Bio:         payload.Bio,
		Avatar:      payload.Avatar,
	})
}
