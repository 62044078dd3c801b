/*
Package sidefx implements the side-effect dispatcher: a closed table
mapping event kind to handler, invoked once per event from inside
process_event_content's write transaction so that content acceptance and its
derived indices commit atomically.

Handlers never open their own transaction; they're handed the same
*storage.Tx the caller is already inside. A handler returns ErrInvalidPayload
when the decoded payload doesn't parse for its kind, which the caller
(pkg/engine) turns into the Invalid content-state transition. Unknown kinds
are not an error: Dispatch is a no-op for them.
*/
package sidefx
