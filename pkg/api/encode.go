package api

import (
	"encoding/hex"
	"fmt"

	"github.com/rostra-dev/rostra/pkg/types"
)

func hexEventID(id types.EventID) string { return hex.EncodeToString(id[:]) }

func parseEventID(s string) (types.EventID, error) {
	var id types.EventID
	raw, err := hex.DecodeString(s)
	if err != nil {
		return id, fmt.Errorf("bad event id: %w", err)
	}
	if len(raw) != len(id) {
		return id, fmt.Errorf("bad event id: expected %d bytes, got %d", len(id), len(raw))
	}
	copy(id[:], raw)
	return id, nil
}

func hexEventIDs(ids []types.EventID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = hexEventID(id)
	}
	return out
}
