// Package glucose holds the pure domain logic for a single CGM reading.
//
// # Overview
//
// Nothing in this package performs I/O. It converts sensor glucose values
// between mg/dL and mmol/L, maps Nightscout trend codes to display glyphs,
// classifies a value against low/high thresholds, and decides whether a
// reading is stale relative to a clock.
//
// # Units
//
// Nightscout reports SGV in mg/dL. The mmol/L value is mg/dL divided by 18
// and is always rendered with one decimal place:
//
//	90  mg/dL -> "5.0"
//	100 mg/dL -> "5.6"
//
// # Trend Glyphs
//
//	DoubleUp      ⇈
//	SingleUp      ↑
//	FortyFiveUp   ↗
//	Flat          →
//	FortyFiveDown ↘
//	SingleDown    ↓
//	DoubleDown    ⇊
//	NONE          ⇼
//	anything else ↛
//
// # Range and Staleness
//
// A value at or below the low threshold is low. A value at or above the high
// threshold is high. Only values strictly between the two are in range.
//
// A reading is stale when it is strictly older than the staleness window.
// A reading exactly at the window edge, or timestamped in the future, is fresh.
package glucose
