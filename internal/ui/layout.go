package ui

import "time"

// Terminal width thresholds for responsive layouts.
const (
	// LayoutCompactWidth is the threshold below which compact mode is used.
	LayoutCompactWidth = 100

	// LayoutLabelWidth is the width of field labels on the detail screen.
	LayoutLabelWidth = 16
)

// Vertical space taken by the header and command bar.
const chromeHeight = 2

// Timing constants.
const (
	// DefaultUIInterval is the default snapshot refresh interval.
	DefaultUIInterval = time.Second

	// FlashDuration is how long a status message stays in the command bar.
	FlashDuration = 3 * time.Second
)
