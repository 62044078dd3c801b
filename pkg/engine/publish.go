package engine

import (
	"time"

	"github.com/rostra-dev/rostra/pkg/codec"
	"github.com/rostra-dev/rostra/pkg/identity"
	"github.com/rostra-dev/rostra/pkg/types"
)

// resolveParent applies the stale-head rule to every local publish: a nil
// parentHeadID is only valid when the author currently has no heads (first
// event); otherwise parentHeadID must name one of the author's current
// heads.
func (e *Engine) resolveParent(author types.AuthorID, parentHeadID *types.EventID) (types.EventID, error) {
	heads, err := e.Heads(author)
	if err != nil {
		return types.EventID{}, err
	}

	if parentHeadID == nil {
		if len(heads) != 0 {
			return types.EventID{}, ErrStaleHead
		}
		return types.ZeroEventID, nil
	}

	for _, h := range heads {
		if h == *parentHeadID {
			return *parentHeadID, nil
		}
	}
	return types.EventID{}, ErrStaleHead
}

// publish builds, signs, and inserts a new local event of kind for ident,
// returning its id and the author's updated heads.
func (e *Engine) publish(ident *identity.Identity, kind types.Kind, parentHeadID *types.EventID, auxParent types.EventID, flags uint8, auxKey types.AuxKey, content []byte) (types.EventID, []types.EventID, error) {
	parent, err := e.resolveParent(ident.Public, parentHeadID)
	if err != nil {
		return types.EventID{}, nil, err
	}

	hash := codec.HashContent(content)
	env := codec.NewEnvelope(kind, ident.Public, uint64(time.Now().Unix()), parent, auxParent, hash, uint32(len(content)), auxKey, flags)
	raw, _ := codec.Sign(env, ident.Private)

	// A local publish already knows its own bytes: insertEvent folds their
	// processing into the same commit as the insert itself, rather than
	// leaving this event sitting in events_content_missing waiting for the
	// fetcher to retrieve content we produced ourselves.
	id, err := e.insertEvent(raw, content)
	if err != nil {
		return types.EventID{}, nil, err
	}

	heads, err := e.Heads(ident.Public)
	if err != nil {
		return types.EventID{}, nil, err
	}
	return id, heads, nil
}

// PublishSocialPost builds and inserts a new social-post event. If replyTo
// is non-nil, the event's aux_parent names the replied-to event and carries
// FlagReplyAux so the reply is indexed without joining the DAG merge
// frontier. The payload's persona tag is also digested into aux_key so a
// following timeline can apply follow-mode/tag filtering without fetching
// content.
func (e *Engine) PublishSocialPost(ident *identity.Identity, parentHeadID *types.EventID, payload types.SocialPost, replyTo *types.EventID) (types.EventID, []types.EventID, error) {
	content, err := codec.EncodeSocialPost(payload)
	if err != nil {
		return types.EventID{}, nil, err
	}

	var auxParent types.EventID
	var flags uint8
	if replyTo != nil {
		auxParent = *replyTo
		flags = types.FlagReplyAux
	}

	auxKey := codec.PersonaTagKey(payload.PersonaTag)
	return e.publish(ident, types.KindSocialPost, parentHeadID, auxParent, flags, auxKey, content)
}

// PublishProfileUpdate replaces the author's profile snapshot.
func (e *Engine) PublishProfileUpdate(ident *identity.Identity, parentHeadID *types.EventID, payload types.ProfileUpdate) (types.EventID, []types.EventID, error) {
	content, err := codec.EncodeProfileUpdate(payload)
	if err != nil {
		return types.EventID{}, nil, err
	}
	return e.publish(ident, types.KindProfileUpdate, parentHeadID, types.ZeroEventID, 0, types.AuxKey{}, content)
}

// PublishFollowUpdate implements the follow-managed endpoint.
func (e *Engine) PublishFollowUpdate(ident *identity.Identity, parentHeadID *types.EventID, payload types.FollowUpdate) (types.EventID, []types.EventID, error) {
	content, err := codec.EncodeFollowUpdate(payload)
	if err != nil {
		return types.EventID{}, nil, err
	}
	return e.publish(ident, types.KindFollowUpdate, parentHeadID, types.ZeroEventID, 0, types.AuxKey{}, content)
}

// PublishUnfollow implements the unfollow-managed endpoint.
func (e *Engine) PublishUnfollow(ident *identity.Identity, parentHeadID *types.EventID, payload types.Unfollow) (types.EventID, []types.EventID, error) {
	content, err := codec.EncodeUnfollow(payload)
	if err != nil {
		return types.EventID{}, nil, err
	}
	return e.publish(ident, types.KindUnfollow, parentHeadID, types.ZeroEventID, 0, types.AuxKey{}, content)
}

// PublishContentDelete builds and inserts a content-delete event naming
// target via aux_parent + FlagDeletion.
func (e *Engine) PublishContentDelete(ident *identity.Identity, parentHeadID *types.EventID, target types.EventID) (types.EventID, []types.EventID, error) {
	return e.publish(ident, types.KindContentDelete, parentHeadID, target, types.FlagDeletion, types.AuxKey{}, nil)
}
