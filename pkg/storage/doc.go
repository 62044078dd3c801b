/*
Package storage is the durable store: a bbolt-backed set of tables with
multi-reader/single-writer transactions, atomic multi-table commit, and
crash recovery via bbolt's copy-on-write B+tree.

Store.Update opens one write transaction per ingestion call, so event
acceptance and its derived indices (heads, content state, refcounts,
side-effect tables) commit all-or-nothing. Store.View opens
a read-only, snapshot-isolated transaction for the read views in pkg/views.
Tx exposes one typed method pair per logical table; it does not know about
envelopes or signatures — pkg/codec and pkg/engine own that, passing already
verified bytes and extracted fields across the Tx boundary.
*/
package storage
