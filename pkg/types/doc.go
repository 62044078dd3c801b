/*
Package types defines the core data structures shared across Rostra's
event/content storage engine.

It holds the wire-format envelope, the identifiers derived from it, and the
small set of enums the rest of the engine switches on (content state, event
kind, follow-graph mode). Nothing in this package touches storage, crypto, or
I/O — it is pure data definition, the same role pkg/types plays for the
orchestrator this engine was adapted from.
*/
package types
