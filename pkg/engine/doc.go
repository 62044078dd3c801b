/*
Package engine implements the DAG index and ingestion API: the
single-writer-transaction critical sections insert_event, process_event_content,
record_failed_content_fetch, and prune_content, plus the publish_* helpers
that build, sign, and insert a new local event. delete_content is
pkg/sidefx's DeleteContent, run inside the transaction that processes a
content-delete event's content.

Engine owns a storage.Store handle and an events.Broker; every write method
opens exactly one storage.Store.Update transaction and fires its post-commit
broker notifications only after that transaction returns successfully.
Side effects (pkg/sidefx) run inside the same transaction as the content
write that triggers them.
*/
package engine
