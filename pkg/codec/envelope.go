package codec

import (
	"crypto/ed25519"
	"encoding/binary"

	"github.com/rostra-dev/rostra/pkg/types"
)

// Byte offsets of the fixed 192-byte envelope.
const (
	offVersion = 0
	offFlags = 1
	offKind = 2 // 2 bytes
	offAuthor = 4 // 32 bytes
	offTimestamp = 36 // 8 bytes
	offParent = 44 // 16 bytes
	offAuxParent = 60 // 16 bytes
	offContentHash = 76 // 32 bytes
	offContentLen = 108 // 4 bytes
	offAuxKey = 112 // 16 bytes
	offSignature = 128 // 64 bytes
)

// Decode parses raw into an Envelope, verifying its size, structural
// invariants, and signature. It does not touch the store.
func Decode(raw []byte) (*types.Envelope, types.EventID, error) {
	if len(raw) != types.EnvelopeSize {
		return nil, types.EventID{}, ErrMalformedEnvelope
	}

	env := &types.Envelope{
		Version: raw[offVersion],
		Flags: raw[offFlags],
		Kind: types.Kind(binary.LittleEndian.Uint16(raw[offKind : offKind+2])),
		Timestamp: binary.LittleEndian.Uint64(raw[offTimestamp : offTimestamp+8]),
		ContentLen: binary.LittleEndian.Uint32(raw[offContentLen : offContentLen+4]),
	}
	copy(env.Author[:], raw[offAuthor:offAuthor+32])
	copy(env.Parent[:], raw[offParent:offParent+16])
	copy(env.AuxParent[:], raw[offAuxParent:offAuxParent+16])
	copy(env.ContentHash[:], raw[offContentHash:offContentHash+32])
	copy(env.AuxKey[:], raw[offAuxKey:offAuxKey+16])
	copy(env.Signature[:], raw[offSignature:offSignature+64])

	if !ed25519.Verify(env.Author[:], raw[:types.SignedSize], env.Signature[:]) {
		return nil, types.EventID{}, ErrBadSignature
	}

	if env.ContentLen == 0 && env.ContentHash != types.EmptyContentHash {
		return nil, types.EventID{}, ErrEmptyContentHashMismatch
	}

	return env, EventID(raw), nil
}

// Encode serializes env into its 192-byte wire form without signing. The
// signature field is left as whatever env.Signature currently holds; callers
// typically call Sign (which calls Encode internally) instead.
func Encode(env *types.Envelope) []byte {
	raw := make([]byte, types.EnvelopeSize)
	raw[offVersion] = env.Version
	raw[offFlags] = env.Flags
	binary.LittleEndian.PutUint16(raw[offKind:offKind+2], uint16(env.Kind))
	copy(raw[offAuthor:offAuthor+32], env.Author[:])
	binary.LittleEndian.PutUint64(raw[offTimestamp:offTimestamp+8], env.Timestamp)
	copy(raw[offParent:offParent+16], env.Parent[:])
	copy(raw[offAuxParent:offAuxParent+16], env.AuxParent[:])
	copy(raw[offContentHash:offContentHash+32], env.ContentHash[:])
	binary.LittleEndian.PutUint32(raw[offContentLen:offContentLen+4], env.ContentLen)
	copy(raw[offAuxKey:offAuxKey+16], env.AuxKey[:])
	copy(raw[offSignature:offSignature+64], env.Signature[:])
	return raw
}

// Sign fills in env.Signature over bytes 0..128 using priv, then returns the
// full 192-byte encoded envelope and its event id.
func Sign(env *types.Envelope, priv ed25519.PrivateKey) ([]byte, types.EventID) {
	raw := Encode(env)
	sig := ed25519.Sign(priv, raw[:types.SignedSize])
	copy(raw[offSignature:offSignature+64], sig)
	copy(env.Signature[:], sig)
	return raw, EventID(raw)
}
