// Package state provides the shared contact cache.
//
// # Overview
//
// Cache turns the push notifications of a contact store into one hot stream
// that any number of readers share. It is the coordination point where store
// notifications meet the list, detail and edit views.
//
// # Architecture
//
//	Source                        Cache                        Subscribers
//	┌──────────────────┐   poke   ┌──────────────────┐  offer  ┌────────────┐
//	│ change callback  │─────────→│ actor goroutine  │────────→│ sub.C()    │
//	│ ListContacts()   │←─────────│ last value       │────────→│ sub.C()    │
//	└──────────────────┘  query   │ Snapshot         │         └────────────┘
//	                              └──────────────────┘
//
// One actor goroutine exists per activation. It owns the registration and
// runs every query, so there is never more than one registration and one
// in-flight query. Notifications that arrive during a query coalesce into a
// single follow-up query.
//
// # Lifecycle
//
//   - The first Subscribe activates: register, then query.
//   - A late Subscribe receives the last value at once (replay of one).
//   - When the last subscription closes a teardown timer is armed for the
//     grace window (1.5s by default). Subscribing before it fires disarms it
//     and reuses the registration and last value with no new query.
//   - When the timer fires the registration is released and the last value
//     discarded. The next Subscribe starts over.
//
// # Failures
//
// A failed query is emitted as a failure result; the stream continues and
// the previous contacts stay in the Snapshot. The next change notification,
// or a call to Refresh, queries again. Cancellation during teardown is never
// emitted.
//
// # Delivery
//
// Each subscription holds at most one undelivered value. A reader that falls
// behind sees only the newest emission, never an older one after a newer one,
// and never blocks the actor.
//
// # Snapshot
//
// Snapshot returns a copy of the last outcome with failure bookkeeping, for
// callers that poll: the TUI status line, the retry poller and the CLI.
//
//	snap := cache.Snapshot()
//	if snap.IsOffline() {
//		// two or more queries in a row have failed
//	}
package state
