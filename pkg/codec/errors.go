package codec

import "errors"

var (
	// ErrMalformedEnvelope is returned when the input is not exactly
	// EnvelopeSize bytes.
	ErrMalformedEnvelope = errors.New("codec: malformed envelope")

	// ErrBadSignature is returned when the signature does not verify for
	// the envelope's author.
	ErrBadSignature = errors.New("codec: bad signature")

	// ErrEmptyContentHashMismatch is returned when content_len == 0 but
	// content_hash is not the hash of the empty string.
	ErrEmptyContentHashMismatch = errors.New("codec: content_hash does not match empty content")
)
