package engine

import "github.com/rostra-dev/rostra/pkg/storage"

// EventCount implements metrics.StatsSource.
func (e *Engine) EventCount() (uint64, error) {
	var n uint64
	err := e.store.View(func(tx *storage.Tx) error {
		n = tx.CountEvents()
		return nil
	})
	return n, err
}

// HeadCount implements metrics.StatsSource.
func (e *Engine) HeadCount() (uint64, error) {
	var n uint64
	err := e.store.View(func(tx *storage.Tx) error {
		n = tx.CountHeads()
		return nil
	})
	return n, err
}

// ContentStateCounts implements metrics.StatsSource.
func (e *Engine) ContentStateCounts() (map[string]uint64, error) {
	var counts map[string]uint64
	err := e.store.View(func(tx *storage.Tx) error {
		var err error
		counts, err = tx.ContentStateCounts()
		return err
	})
	return counts, err
}

// ContentRefcountSum implements metrics.StatsSource.
func (e *Engine) ContentRefcountSum() (uint64, error) {
	var n uint64
	err := e.store.View(func(tx *storage.Tx) error {
		n = tx.SumRC()
		return nil
	})
	return n, err
}

// MissingQueueDepth implements metrics.StatsSource.
func (e *Engine) MissingQueueDepth() (uint64, error) {
	var n uint64
	err := e.store.View(func(tx *storage.Tx) error {
		n = tx.CountContentMissing()
		return nil
	})
	return n, err
}
