package codec

import (
	"lukechampine.com/blake3"

	"github.com/rostra-dev/rostra/pkg/types"
)

func init() {
	types.EmptyContentHash = HashContent(nil)
}

// HashContent returns the full 32-byte BLAKE3 hash of content bytes.
func HashContent(data []byte) types.ContentHash {
	return types.ContentHash(blake3.Sum256(data))
}

// EventID computes the truncated (16-byte) BLAKE3 hash of a full 192-byte
// envelope, the "short event id" used throughout.
func EventID(envelope []byte) types.EventID {
	full := blake3.Sum256(envelope)
	var id types.EventID
	copy(id[:], full[:16])
	return id
}

// PersonaTagKey computes the truncated (16-byte) BLAKE3 digest of a persona
// tag string, carried in an event's aux_key so followers can filter a
// following timeline by tag without fetching the tagged event's content.
// An empty tag maps to the zero AuxKey ("untagged").
func PersonaTagKey(tag string) types.AuxKey {
	var key types.AuxKey
	if tag == "" {
		return key
	}
	full := blake3.Sum256([]byte(tag))
	copy(key[:], full[:16])
	return key
}
