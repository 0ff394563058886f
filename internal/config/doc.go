// Package config loads glucobar settings.
//
// # Resolution Order
//
//  1. An optional .env file (LoadEnvFile) populates the process environment
//     without overriding variables that are already set
//  2. The TOML file at the given path, or ~/.config/glucobar/config.toml
//  3. GLUCOBAR_* environment variables override individual file values
//  4. Anything still empty falls back to defaults
//
// A missing config file is not an error. nightscout_url has no default and
// must be supplied by the file or GLUCOBAR_NIGHTSCOUT_URL.
//
// # TOML Format
//
//	nightscout_url = "https://example.herokuapp.com"
//	unit = "mmol"            # or "mgdl"
//	low = 80                 # mg/dL
//	high = 240               # mg/dL
//	stale_after = "15m"
//	refresh_period = "60s"   # minimum gap between API calls
//	poll_interval = "5s"     # scheduler tick
//	hide_stale = true
//	log_file = "~/.local/share/glucobar/glucobar.log"
//	log_level = "info"
//
//	[mqtt]
//	broker = "localhost:1883"
//	topic_prefix = "glucobar"
//	client_id = "glucobar"
//
// # Environment Overrides
//
//   - GLUCOBAR_NIGHTSCOUT_URL
//   - GLUCOBAR_UNIT
//   - GLUCOBAR_LOG_FILE
//   - GLUCOBAR_LOG_LEVEL
//   - GLUCOBAR_MQTT_BROKER
//
// # Errors
//
// Load fails on unreadable or unparsable files, unknown units or log levels,
// non-positive durations, thresholds that do not satisfy 0 < low < high, and
// a missing Nightscout URL. Paths starting with ~ are expanded.
package config
