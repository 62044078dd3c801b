package engine

import (
	"bytes"
	"sort"

	"github.com/rostra-dev/rostra/pkg/storage"
	"github.com/rostra-dev/rostra/pkg/types"
)

// headsCap bounds the response size of Heads.
const headsCap = 10

// Heads returns author's current heads, lexicographically sorted by event
// id and capped at headsCap.
func (e *Engine) Heads(author types.AuthorID) ([]types.EventID, error) {
	var heads []types.EventID
	err := e.store.View(func(tx *storage.Tx) error {
		heads = tx.ListHeads(author)
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(heads, func(i, j int) bool { return bytes.Compare(heads[i][:], heads[j][:]) < 0 })
	if len(heads) > headsCap {
		heads = heads[:headsCap]
	}
	return heads, nil
}
