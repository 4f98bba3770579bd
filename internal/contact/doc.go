// Package contact defines the contact data model and the Source contract the
// rest of the module reads from and writes back to.
//
// # Overview
//
// The external contact store is the single source of truth. Everything above
// it (the shared cache, the list and detail views, the edit session) consumes
// the types declared here:
//
//   - Contact: one row of the contact list (identity = ID).
//   - DetailField: one phone number or email address row.
//   - DetailedContact: a Contact joined with its phones and emails.
//   - Result: success-or-failure value returned by every read.
//   - Source: the narrow query/update/notify interface over the store.
//
// # Error Model
//
// Reads never panic past the Source boundary. They return a Result whose Err
// is a *Error carrying one of three codes:
//
//   - CodeSourceUnavailable: the store produced no usable result.
//   - CodeSchemaMismatch: an expected column or field is absent.
//   - CodeWriteRejected: a field update failed.
//
// Callers test for a class with errors.Is against the exported sentinels:
//
//	if errors.Is(res.Err, contact.ErrSchemaMismatch) {
//		// render a "store incompatible" affordance
//	}
//
// Context cancellation is never folded into a Result. Pipelines check
// IsCancellation and drop the outcome instead of reporting it.
//
// # Pure Helpers
//
// Filter and MatchLookupKey are the synchronous building blocks of the query
// and detail views. Both are safe for concurrent use and never mutate their
// input.
package contact
