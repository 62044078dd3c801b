package metrics

import "time"

// StatsSource is satisfied by pkg/engine's Engine and exposes just enough
// to drive periodic gauge collection without metrics importing engine
// (which itself imports metrics for inline instrumentation).
type StatsSource interface {
	EventCount() (uint64, error)
	HeadCount() (uint64, error)
	ContentStateCounts() (map[string]uint64, error)
	ContentRefcountSum() (uint64, error)
	MissingQueueDepth() (uint64, error)
}

// Collector polls a StatsSource on an interval and updates the package
// gauges. It does not itself observe per-operation histograms/counters —
// those are incremented inline by engine/fetcher/api at the call site.
type Collector struct {
	source StatsSource
	stopCh chan struct{}
}

// NewCollector creates a new metrics collector.
func NewCollector(source StatsSource) *Collector {
	return &Collector{
		source: source,
		stopCh: make(chan struct{}),
	}
}

// Start begins collecting metrics.
func (c *Collector) Start() {
	ticker := time.NewTicker(15 * time.Second)
	go func() {
		c.collect()

		for {
			select {
			case <-ticker.C:
				c.collect()
			case <-c.stopCh:
				ticker.Stop()
				return
			}
		}
	}()
}

// Stop stops the collector.
func (c *Collector) Stop() {
	close(c.stopCh)
}

func (c *Collector) collect() {
	if n, err := c.source.EventCount(); err == nil {
		EventsTotal.Set(float64(n))
	}
	if n, err := c.source.HeadCount(); err == nil {
		HeadsTotal.Set(float64(n))
	}
	if counts, err := c.source.ContentStateCounts(); err == nil {
		for state, n := range counts {
			ContentStateTotal.WithLabelValues(state).Set(float64(n))
		}
	}
	if n, err := c.source.ContentRefcountSum(); err == nil {
		ContentRefcountSum.Set(float64(n))
	}
	if n, err := c.source.MissingQueueDepth(); err == nil {
		MissingQueueDepth.Set(float64(n))
	}
}
