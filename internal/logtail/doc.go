// Package logtail reads the tail of assetdesk's own log file for the Logs
// view.
//
// # Reading
//
// Read keeps a ring buffer of the last maxLines lines, so memory stays
// O(maxLines) however large the file grows. A non-positive maxLines reads
// everything. A missing file is not an error; it simply has no lines yet.
//
//	lines, err := logtail.Read(cfg.LogPath, 400)
//
// # Parsing
//
// The console logs through slog's text handler, which writes records like
//
//	time=2025-10-08T21:01:05.000Z level=WARN msg="refresh failed" error="..."
//
// Parse splits such a line into time, level, message and remaining
// attributes so the view can color each part. Anything else (a stray panic
// trace, a line from an older format) is returned untouched in Raw.
package logtail
