/*
Package fetcher runs the missing-content fetcher: a single cooperative task
that drains events_content_missing ordered by next_attempt, issuing fetches
through a transport.Fetcher and feeding results back into the engine.

The task sleeps until the earliest scheduled attempt or a wake notification
from pkg/events, whichever comes first, so a freshly-Missing event (next
attempt 0) is picked up immediately rather than waiting out whatever the
task was last sleeping for. It fans a bounded number of distinct event ids
out to concurrent goroutines, capped both globally and per-author, while
serializing repeat attempts of the same id.
*/
package fetcher
