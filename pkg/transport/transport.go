// Package transport defines the collaborator boundary the missing-content
// fetcher calls out through. This repo implements no network transport or
// hole-punching; a separate process satisfies Fetcher over whatever wire
// protocol peers agree on, verifying bytes against content_hash as they
// stream (the BAO verified-streaming discipline) before returning them.
package transport

import (
	"context"

	"github.com/rostra-dev/rostra/pkg/types"
)

// Fetcher retrieves content bytes for a known content hash, out-of-band
// from event propagation. Fetch returns the full, verified content on
// success; a non-nil error (including ctx cancellation) is always treated
// as an ordinary fetch failure by the caller, never as invalid content —
// only a verified hash mismatch after a successful transfer does that.
type Fetcher interface {
	Fetch(ctx context.Context, hash types.ContentHash, contentLen uint32) ([]byte, error)
}
