/*
Package api implements the HTTP/JSON surface consumer applications use to
drive a single node's engine: generating identities, publishing events
through the managed (sign-and-submit) endpoints, and reading the heads,
timeline, and notification snapshots views.Views serves.

# Protocol

Every request carries `X-Rostra-Api-Version: 0`; a missing or mismatched
value is rejected before any handler runs. Write endpoints additionally
carry `X-Rostra-Id-Secret: <24-word mnemonic>`, which must recover the
identity named by the request's `{id}` path segment. Errors are always
`{ "error": "<text>" }` with a status in {400,401,403,409,500}; the mapping
from engine/identity errors to status codes lives in errors.go.

# Routes

	GET  /api/generate-id
	GET  /api/{id}/heads
	POST /api/{id}/publish-social-post-managed
	POST /api/{id}/update-social-profile-managed
	POST /api/{id}/follow-managed
	POST /api/{id}/unfollow-managed
	GET  /api/{id}/followees
	GET  /api/{id}/followers
	GET  /api/{id}/notifications
	GET  /api/{id}/following
	GET  /api/{id}/network

GET /health, /ready, and /metrics are served unversioned, outside the
middleware chain, for use by process supervisors and Prometheus.

This package holds no business logic of its own: every handler's job is to
decode a request, call an Engine or Views method, and encode the result or
error. The semantics (stale-head rejection, content state, timeline
filtering) all live in pkg/engine and pkg/views.
*/
package api
