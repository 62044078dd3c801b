package codec

import (
	"encoding/json"

	"github.com/rostra-dev/rostra/pkg/types"
)

// Payload content bytes are JSON, one shape per kind. The wire envelope
// treats content as opaque; this is the schema side-effect handlers and
// publishers agree on.

// EncodeSocialPost serializes a social-post payload.
func EncodeSocialPost(p types.SocialPost) ([]byte, error) { return json.Marshal(p) }

// DecodeSocialPost parses a social-post payload.
func DecodeSocialPost(data []byte) (types.SocialPost, error) {
	var p types.SocialPost
	err := json.Unmarshal(data, &p)
	return p, err
}

// EncodeFollowUpdate serializes a follow-update payload.
func EncodeFollowUpdate(p types.FollowUpdate) ([]byte, error) { return json.Marshal(p) }

// DecodeFollowUpdate parses a follow-update payload.
func DecodeFollowUpdate(data []byte) (types.FollowUpdate, error) {
	var p types.FollowUpdate
	err := json.Unmarshal(data, &p)
	return p, err
}

// EncodeUnfollow serializes an unfollow payload.
func EncodeUnfollow(p types.Unfollow) ([]byte, error) { return json.Marshal(p) }

// DecodeUnfollow parses an unfollow payload.
func DecodeUnfollow(data []byte) (types.Unfollow, error) {
	var p types.Unfollow
	err := json.Unmarshal(data, &p)
	return p, err
}

// EncodeProfileUpdate serializes a profile-update payload.
func EncodeProfileUpdate(p types.ProfileUpdate) ([]byte, error) { return json.Marshal(p) }

// DecodeProfileUpdate parses a profile-update payload.
func DecodeProfileUpdate(data []byte) (types.ProfileUpdate, error) {
	var p types.ProfileUpdate
	err := json.Unmarshal(data, &p)
	return p, err
}
