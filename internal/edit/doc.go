// Package edit implements the edit session of a detail screen.
//
// A Session moves between three states:
//
//	Idle ──detail found──→ Viewing ──Edit()──→ Editing
//	  ↑                      ↑  ↑                 │
//	  └──not found/failed────┘  └─CancelEdit()────┤
//	                            └─Save() done─────┘
//
// Editing captures the shown record twice: Original, an exact snapshot, and
// Working, the copy UpdateField modifies. An emptied field is invalid and
// blocks Save. Save writes only the fields whose record differs from the
// original, one write per field, and returns to Viewing with the entered
// values. At most one save runs at a time; field updates and cancellation
// never wait for it.
//
// Callers feed view.Detail results to Apply; new emissions of the record
// being edited never overwrite the working copy.
package edit
