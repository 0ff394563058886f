// Package logtail reads the tail of the glucobar log file for the status view.
//
// Read keeps a ring buffer of maxLines entries and scans the file once, so
// memory stays O(maxLines) however large the log grows. A missing file is
// not an error; the logger may not have written anything yet.
//
//	lines, err := logtail.Read(cfg.LogFile, 200)
//
// ParseLevel recovers the severity from a line written by the logging
// package so the UI can colour it:
//
//	2022-09-19 15:08:00 WRN nightscout request failed error=...
//	                    ^^^
package logtail
