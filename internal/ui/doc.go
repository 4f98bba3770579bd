// Package ui provides the terminal user interface of the contacts tool.
//
// # Architecture Overview
//
// The UI is a Bubble Tea program. Model owns one list view, one detail view
// and one edit session, all opened through repo.Repository in New. The views
// are goroutines that talk over channels; the model bridges them into the
// Bubble Tea loop:
//
//   - Keystrokes in the search box are offered to the list view's query
//     channel. The view debounces them.
//   - Opening a row offers its lookup key to the detail view; leaving the
//     detail screen offers the empty key, which releases the detail view's
//     subscription.
//   - waitFor* commands turn each emission into a message and re-arm after
//     it is handled.
//   - Detail results are applied to the edit session; the editor follows the
//     session's state updates.
//
// offer drains a pending value before sending, so a slow view only ever sees
// the newest query or key and Update never blocks.
//
// # Screens
//
//   - List: search box and contact rows. A failed query keeps the rows shown
//     and prints the error above them.
//   - Detail: the joined record in a scrollable viewport, or the not-found,
//     failed or loading state.
//   - Editor: one text input per phone and email. Empty fields are flagged
//     and block saving. ctrl+s saves, esc discards.
//
// # Header
//
// The header is rebuilt from a cache Snapshot every tick: LIVE, IDLE, the
// classified error of the last query, or OFFLINE with "Retrying..." after two
// consecutive failures.
//
// # Preferences
//
// The theme (T cycles it) and the last search are saved to prefs.toml on
// theme change and on quit, and restored by the next start.
package ui
