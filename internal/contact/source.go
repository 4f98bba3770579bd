package contact

import "context"

// Source is the narrow interface over the external contact store.
//
// ListContacts returns every contact ordered by display name. ListDetails
// returns the rows of one kind for a contact, restricted to recognized
// account types and ordered by type label ascending. WriteField updates one
// field; writes are independent of each other.
//
// SubscribeToChanges registers onChange to be called after the store
// changes. The returned function deregisters it. onChange may be invoked from
// any goroutine and must not block.
type Source interface {
	ListContacts(ctx context.Context) Result[[]Contact]
	ListDetails(ctx context.Context, contactID int64, kind Kind) Result[[]DetailField]
	WriteField(ctx context.Context, fieldID int64, value string) error
	SubscribeToChanges(onChange func()) (unsubscribe func(), err error)
}

// Writer is the write half of Source used by edit sessions.
type Writer interface {
	WriteField(ctx context.Context, fieldID int64, value string) error
}

// DetailLister is the detail half of Source used by detail views.
type DetailLister interface {
	ListDetails(ctx context.Context, contactID int64, kind Kind) Result[[]DetailField]
}
