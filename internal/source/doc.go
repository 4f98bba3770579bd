// Package source provides the concrete contact stores behind contact.Source.
//
// # Stores
//
//   - SQLite: a database file laid out like the platform contact provider
//     (contacts, raw_contacts, data). Detail rows are filtered to the
//     configured account types and ordered by type label.
//   - Memory: an in-process store with call counters and failure injection,
//     used by tests and by demo mode.
//
// # Change Notification
//
// Writes made through a store notify its subscribers synchronously after
// commit. The SQLite store additionally watches the database directory with
// fsnotify while it has subscribers, so edits made by another process (the
// CLI, a sync job, sqlite3 on the shell) reach every open view. File events
// are debounced (100ms by default) because a single commit touches both the
// database and its WAL.
//
// # vCard
//
// Import and Export translate between the store and vCard files: FN is the
// display name, UID the lookup key, TEL and EMAIL the detail rows with their
// first TYPE parameter as the label.
package source
