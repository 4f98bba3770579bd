// Package view derives the query and detail streams from the shared cache.
//
// Both views are goroutine pipelines owned by the caller's context:
//
//	queries ─debounce─┐
//	                  ├─ latest-wins filter ──→ Contacts
//	cache.Subscribe() ┘
//
//	keys ─────────────┐
//	                  ├─ latest-wins join ────→ Detail
//	cache.Subscribe() ┘   (phones → emails)
//
// A new input cancels the task still running for the previous one, and a
// result produced by a superseded task is dropped, so an older result is never
// emitted after a newer one. Cancellation is silent: it never produces a
// failure.
//
// Contacts holds one cache subscription for its lifetime. Detail holds one
// only while a key is selected, so a detail screen that goes idle lets the
// cache start its grace window.
package view
