/*
Package metrics defines Rostra's Prometheus metrics and the /metrics HTTP
handler. The /health and /ready endpoints are served by pkg/api.

Gauges track store size (events, heads, content state, refcounts) and the
fetcher's backlog; counters/histograms track ingestion outcomes, fetch
attempts, and API request latency. Collector polls a StatsSource (satisfied
by pkg/engine) on a 15s ticker to refresh the gauges; everything else is
updated inline at the call site.
*/
package metrics
