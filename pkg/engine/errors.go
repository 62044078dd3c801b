package engine

import "errors"

// Error taxonomy raised to ingestion callers.
var (
	ErrMalformedEnvelope = errors.New("engine: malformed envelope")
	ErrBadSignature = errors.New("engine: bad signature")
	ErrEmptyContentHashMismatch = errors.New("engine: content_hash does not match empty content")
	ErrHashMismatch = errors.New("engine: content hash mismatch")
	ErrInvalidContent = errors.New("engine: content did not parse for its kind")
	ErrAlreadyPresent = errors.New("engine: event already present")
	ErrAlreadyProcessed = errors.New("engine: content already processed")
	ErrStaleHead = errors.New("engine: parent_head_id is not a current head")
	ErrUnknownEvent = errors.New("engine: unknown event")
	ErrBadSecret = errors.New("engine: invalid identity secret")
)
