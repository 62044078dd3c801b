/*
Package events is the in-memory broker the engine uses to announce
post-commit state changes: new heads and content moving into or out of the
missing queue. A NotificationCreated type is defined, but nothing publishes
it. Fetcher and API consumers subscribe to these to wake up without polling
the store.

# Usage

	broker := events.NewBroker()
	broker.Start()
	defer broker.Stop()

	sub := broker.Subscribe()
	defer broker.Unsubscribe(sub)

	for ev := range sub {
		switch ev.Type {
		case events.ContentMissing:
			// wake the fetcher's scheduling loop
		case events.HeadsChanged:
			// invalidate a cached heads response
		}
	}

Broadcast is non-blocking: a full subscriber buffer drops the event rather
than stalling the broadcaster. Publish itself waits only while the broker's
internal buffer is full, and never blocks past a stopped broker. Delivery is best-effort — nothing here replaces a durable
read of the store for anything that must not be missed.
*/
package events
