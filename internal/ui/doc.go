// Package ui provides the Bubble Tea status view for glucobar.
//
// The view is read-only. A tick reads state.Store and re-renders; the
// background poller in package app does the fetching. The layout is:
//
//   - Header: the glucose text coloured by range, a "stale" badge and an
//     offline marker. With hide_stale set, a stale reading's text is hidden
//     and only the badge remains.
//   - Detail panel: mg/dL and mmol values, range, trend, reading age, last
//     refresh time and the last error with its failure count.
//   - Log pane: the tail of the log file, coloured by level. Toggled with l.
//   - Footer: the last action result and short key help.
//
// Keys: r forces a refresh, o opens the Nightscout site, T cycles the theme,
// l toggles the log pane, h or ? shows help, e or ctrl+c quits. Theme and log
// pane visibility are saved to the prefs file.
package ui
