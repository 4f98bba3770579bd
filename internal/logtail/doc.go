// Package logtail reads the tail of the JSON log file written by the TUI and
// renders its lines for a terminal.
//
// # Reading
//
// Read returns the last N lines of a file in one pass using a ring buffer,
// so memory is O(N) regardless of file size. A missing file is not an error:
// the TUI may simply not have run yet.
//
// # Decoding
//
// Parse decodes one zap JSON line into an Entry. The standard keys (time,
// level, logger, msg) become fields of the Entry; caller and stacktrace are
// dropped; everything else lands in Fields. Lines that are not JSON (a panic
// trace, say) are kept verbatim in Raw.
//
// Format renders an Entry on one line with fields sorted by key:
//
//	2026-01-02T15:04:05.000Z WARN  [cache] contact query failed error=... failures=2
//
// AtLeast filters by minimum level using zap's level names.
package logtail
