package edit

import "github.com/ShayOinif/Contacts/internal/contact"

// State is the closed set of session states: Idle, Viewing or Editing.
// States are immutable once published.
type State interface {
	isState()
}

// Idle means no record is shown.
type Idle struct{}

// Viewing shows a record. SaveErr holds the write failures of the last save
// of this record, if any.
type Viewing struct {
	Detail  contact.DetailedContact
	SaveErr error
}

// Editing holds the snapshot taken when editing started and the working copy
// the user modifies. Working always has the same fields in the same order as
// Original; only values differ. Invalid lists the ids of fields whose value
// is empty. Saving is set while a save is in flight. SaveErr holds the write
// failures of the last save that finished while editing continued; the
// failed fields keep their old value in Original so the next save sends them
// again.
type Editing struct {
	Original contact.DetailedContact
	Working  contact.DetailedContact
	Invalid  map[int64]struct{}
	Saving   bool
	SaveErr  error
}

func (Idle) isState()    {}
func (Viewing) isState() {}
func (Editing) isState() {}

// Valid reports whether the working copy may be saved.
func (e Editing) Valid() bool {
	return len(e.Invalid) == 0
}

// IsInvalid reports whether the field with the given id is empty.
func (e Editing) IsInvalid(fieldID int64) bool {
	_, ok := e.Invalid[fieldID]
	return ok
}

// Dirty reports whether the working copy differs from the original.
func (e Editing) Dirty() bool {
	return !e.Working.Equal(e.Original)
}

func cloneInvalid(in map[int64]struct{}) map[int64]struct{} {
	out := make(map[int64]struct{}, len(in))
	for id := range in {
		out[id] = struct{}{}
	}
	return out
}
