// Package state shares the latest glucose display between the fetcher and
// its presenters.
//
// # Overview
//
// The fetcher is the single writer. The terminal UI, the one-shot printer and
// the MQTT sink are readers running on other goroutines. Store mediates
// between them with a sync.RWMutex and hands out Snapshot copies, so readers
// never observe a half-written update and never block on network I/O.
//
//	Producer (fetcher):            Consumers:
//	┌──────────────────┐           ┌──────────────────────┐
//	│ FetchLatest()    │           │ ui: store.Snapshot() │
//	│      ↓           │  (mutex)  │ mqttsink: Subscribe()│
//	│ store.Update()   │──────────→│ once: Title()        │
//	│ store.Fail*()    │           └──────────────────────┘
//	└──────────────────┘
//
// # Update Semantics
//
//	store.Update(reading, text)
//	→ Text, Reading replaced; LastError cleared; failures reset
//
//	store.Fail(err)
//	→ Text and Reading kept; LastError recorded; failures++
//
//	store.FailWith(err, ErrorMarker)
//	→ Text replaced by the marker; Reading kept; failures++
//
// A parse failure uses Fail so the last good display survives. A transport
// failure uses FailWith so the user sees that the site is unreachable.
//
// # Presentation Policy
//
// Snapshot.Title applies the stale-reading policy. When hideStale is set and
// the held reading is older than the staleness window, the title is empty.
// The error marker is always shown.
//
// # Subscriptions
//
// Subscribe returns a channel that receives a Snapshot after every change.
// The channel holds one value and a slow reader only sees the latest state.
package state
