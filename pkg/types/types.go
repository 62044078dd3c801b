package types

import "time"

// EnvelopeSize is the fixed wire size of a signed event envelope.
const EnvelopeSize = 192

// SignedSize is the number of leading bytes the signature covers.
const SignedSize = 128

// EventID is the truncated BLAKE3 hash of a full envelope ("short event id").
type EventID [16]byte

// ZeroEventID is the genesis parent sentinel (no parent).
var ZeroEventID EventID

// IsZero reports whether id is the genesis sentinel.
func (id EventID) IsZero() bool { return id == ZeroEventID }

// ContentHash is the full BLAKE3 hash of a content payload.
type ContentHash [32]byte

// EmptyContentHash is the hash of the zero-length byte string, precomputed
// once by pkg/codec.
var EmptyContentHash ContentHash

// AuthorID is an Ed25519 public key.
type AuthorID [32]byte

// AuxKey is a 16-byte kind-specific key (e.g. a persona tag digest).
type AuxKey [16]byte

// Flag bits defined on Envelope.Flags.
const (
	// FlagDeletion marks this event's AuxParent as a content-delete target:
	// the aux parent's content transitions to Deleted without needing a
	// fetched payload to name the target.
	FlagDeletion uint8 = 1 << 0

	// FlagReplyAux marks this event's AuxParent as a reply target rather
	// than a DAG-merge tip: the side-effect dispatcher indexes a
	// notification for the replied-to author but heads bookkeeping must
	// not touch the aux parent.
	FlagReplyAux uint8 = 1 << 1
)

// Kind tags the payload schema and side-effect handler for an event.
type Kind uint16

const (
	KindSocialPost    Kind = 1
	KindContentDelete Kind = 2
	KindFollowUpdate  Kind = 3
	KindUnfollow      Kind = 4
	KindProfileUpdate Kind = 5
)

// Envelope is the fixed 192-byte signed record propagated between peers.
type Envelope struct {
	Version     uint8
	Flags       uint8
	Kind        Kind
	Author      AuthorID
	Timestamp   uint64
	Parent      EventID
	AuxParent   EventID
	ContentHash ContentHash
	ContentLen  uint32
	AuxKey      AuxKey
	Signature   [64]byte
}

// HasParent reports whether Parent is a real (non-genesis) reference.
func (e *Envelope) HasParent() bool { return !e.Parent.IsZero() }

// HasAuxParent reports whether AuxParent is populated.
func (e *Envelope) HasAuxParent() bool { return !e.AuxParent.IsZero() }

// IsDeletion reports whether FlagDeletion is set.
func (e *Envelope) IsDeletion() bool { return e.Flags&FlagDeletion != 0 }

// IsReplyAux reports whether FlagReplyAux is set.
func (e *Envelope) IsReplyAux() bool { return e.Flags&FlagReplyAux != 0 }

// ContentStateKind enumerates the per-event content state machine.
// The zero value is never stored: "no entry" means Processed.
type ContentStateKind uint8

const (
	// StateProcessed is implicit (no stored row) but named here for callers
	// that need to reason about the full state set.
	StateProcessed ContentStateKind = iota
	StateMissing
	StateInvalid
	StateDeleted
	StatePruned
)

func (s ContentStateKind) String() string {
	switch s {
	case StateProcessed:
		return "processed"
	case StateMissing:
		return "missing"
	case StateInvalid:
		return "invalid"
	case StateDeleted:
		return "deleted"
	case StatePruned:
		return "pruned"
	default:
		return "unknown"
	}
}

// ContentState is the materialized per-event content state row. Only one of
// the kind-specific fields is meaningful, selected by Kind.
type ContentState struct {
	Kind ContentStateKind

	// Missing
	LastAttempt  time.Time
	AttemptCount uint32
	NextAttempt  uint64 // unix seconds; scheduling key

	// Deleted
	DeletedBy EventID
}

// MissingEntry mirrors an events_missing row: an event referenced as a
// parent/aux_parent but not yet ingested, optionally carrying a pending
// deletion for when it eventually arrives "born deleted".
type MissingEntry struct {
	HasDeletedBy bool
	DeletedBy    EventID
}

// FollowMode selects how FollowState.Tags is interpreted.
type FollowMode string

const (
	FollowModeExcept FollowMode = "except" // follow everything except Tags
	FollowModeOnly   FollowMode = "only"   // follow only Tags
)

// FollowState is the persisted (author, followee) edge.
type FollowState struct {
	Followee AuthorID
	Mode     FollowMode
	Tags     []string
}

// Profile is the latest profile-update snapshot for an author.
type Profile struct {
	DisplayName string
	Bio         string
	Avatar      []byte
}

// Notification is a single (recipient, author_timestamp, seq) row.
type Notification struct {
	Recipient       AuthorID
	AuthorTimestamp uint64
	Seq             uint64
	EventID         EventID
}

// SocialPost is the decoded payload of a KindSocialPost event.
type SocialPost struct {
	PersonaTag string
	Content    string
}

// FollowUpdate is the decoded payload of a KindFollowUpdate event.
type FollowUpdate struct {
	Followee AuthorID
	Mode     FollowMode
	Tags     []string
}

// Unfollow is the decoded payload of a KindUnfollow event.
type Unfollow struct {
	Followee AuthorID
}

// ProfileUpdate is the decoded payload of a KindProfileUpdate event.
type ProfileUpdate struct {
	DisplayName string
	Bio         string
	Avatar      []byte
}
