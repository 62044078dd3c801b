package codec

import (
	"crypto/ed25519"

	"github.com/rostra-dev/rostra/pkg/types"
)

// NewEnvelope builds an unsigned envelope with version 1 and the given
// fields, ready for Sign.
func NewEnvelope(kind types.Kind, author types.AuthorID, timestamp uint64, parent, auxParent types.EventID, contentHash types.ContentHash, contentLen uint32, auxKey types.AuxKey, flags uint8) *types.Envelope {
	return &types.Envelope{
		Version:     1,
		Flags:       flags,
		Kind:        kind,
		Author:      author,
		Timestamp:   timestamp,
		Parent:      parent,
		AuxParent:   auxParent,
		ContentHash: contentHash,
		ContentLen:  contentLen,
		AuxKey:      auxKey,
	}
}

// Verify checks that raw carries a valid signature for its claimed author
// without otherwise validating structural invariants. Decode already does
// this as part of parsing; Verify exists for callers holding a parsed
// envelope and the original bytes.
func Verify(env *types.Envelope, raw []byte) bool {
	if len(raw) != types.EnvelopeSize {
		return false
	}
	return ed25519.Verify(env.Author[:], raw[:types.SignedSize], env.Signature[:])
}
