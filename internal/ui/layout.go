package ui

import "time"

// Terminal width thresholds for responsive layouts.
const (
	// LayoutCompactWidth is the threshold below which compact mode is used.
	LayoutCompactWidth = 100

	// LayoutWideWidth is the minimum width to show secondary columns.
	LayoutWideWidth = 140
)

// Log display limits.
const (
	// LogBufferLimit is the maximum number of log lines read from the file.
	LogBufferLimit = 2000
)

// Timing constants.
const (
	// DefaultUIInterval is the default UI refresh interval.
	DefaultUIInterval = time.Second

	// FlashDuration is how long a status message stays in the footer.
	FlashDuration = 5 * time.Second

	// ActionTimeout bounds a single user-initiated API call.
	ActionTimeout = 30 * time.Second
)
