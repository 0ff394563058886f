// Package app is the composition root for glucobar.
//
// # Overview
//
// Run wires configuration, logging, the Nightscout client, the fetcher, the
// shared state.Store and one of two presenters:
//
//   - Once mode performs a single refresh and prints the status title to
//     stdout. It suits status bars that shell out on their own schedule
//     (tmux, polybar, i3blocks, xbar).
//   - Interactive mode starts the background poller, the optional MQTT
//     sink and the terminal status view. It blocks until the user quits.
//
// # Data Flow
//
//	┌──────────────┐
//	│   Run()      │
//	└──────┬───────┘
//	       ├─────> config.LoadEnvFile() / config.Load()
//	       ├─────> logging.New()         log file, never stdout
//	       ├─────> nightscout.NewClient()
//	       ├─────> state.NewStore()
//	       ├─────> fetcher.New()
//	       ├─────> mqttsink (optional)   Subscribe() -> publish
//	       ├─────> StartPoller()         ticker -> fetcher.Refresh()
//	       └─────> ui.Run()              reads store.Snapshot()
//
// # Polling Behavior
//
// The poller ticks every poll_interval (default 5s) and calls Refresh on
// every tick. The fetcher decides whether a tick reaches the network. A
// successful fetch holds off further calls for refresh_period (default
// 60s). A failed fetch does not, so the next tick retries. One loop runs
// ticks in sequence, and the fetcher's in-flight guard skips a manual
// refresh from the UI that overlaps a tick.
//
// # Error Handling
//
// Fatal errors (returned from Run):
//   - Invalid configuration or missing Nightscout URL
//   - Log file cannot be created
//   - Nightscout URL cannot be parsed
//
// Recoverable errors are logged and reflected in the store. They never
// stop the poller:
//   - Network failures and non-2xx responses
//   - Unusable response bodies
//   - MQTT connection or publish failures
package app
