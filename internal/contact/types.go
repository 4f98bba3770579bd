package contact

import "fmt"

// Contact is one record of the contact list.
//
// ID is stable across refreshes of the same underlying record and is the
// identity used for list keying. LookupKey is the store's merge key; linked
// records share fragments of it.
type Contact struct {
	ID          int64  `json:"id" yaml:"id"`
	LookupKey   string `json:"lookup_key" yaml:"lookup_key"`
	DisplayName string `json:"display_name" yaml:"display_name"`
	PhotoURI    string `json:"photo_uri,omitempty" yaml:"photo_uri,omitempty"`
}

// HasPhoto reports whether the contact carries a thumbnail URI.
func (c Contact) HasPhoto() bool {
	return c.PhotoURI != ""
}

// Kind selects the detail rows of a contact.
type Kind int

const (
	// Phone selects phone number rows.
	Phone Kind = iota + 1
	// Email selects email address rows.
	Email
)

func (k Kind) String() string {
	switch k {
	case Phone:
		return "phone"
	case Email:
		return "email"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// DetailField is one phone or email row. ID is zero when the store offers no
// per-field identity.
type DetailField struct {
	ID    int64  `json:"id,omitempty" yaml:"id,omitempty"`
	Value string `json:"value" yaml:"value"`
	Type  string `json:"type" yaml:"type"`
}

// DetailedContact is a contact joined with its detail rows. Phones and Emails
// are ordered by Type ascending, then source order.
type DetailedContact struct {
	Contact Contact       `json:"contact" yaml:"contact"`
	Phones  []DetailField `json:"phones" yaml:"phones"`
	Emails  []DetailField `json:"emails" yaml:"emails"`
}

// Fields returns the rows of the given kind.
func (d DetailedContact) Fields(kind Kind) []DetailField {
	switch kind {
	case Phone:
		return d.Phones
	case Email:
		return d.Emails
	default:
		return nil
	}
}

// Clone returns a copy whose slices do not alias d.
func (d DetailedContact) Clone() DetailedContact {
	d.Phones = cloneFields(d.Phones)
	d.Emails = cloneFields(d.Emails)
	return d
}

// Equal reports whether two detailed contacts are identical field by field.
func (d DetailedContact) Equal(other DetailedContact) bool {
	return d.Contact == other.Contact &&
		fieldsEqual(d.Phones, other.Phones) &&
		fieldsEqual(d.Emails, other.Emails)
}

func cloneFields(fields []DetailField) []DetailField {
	if fields == nil {
		return nil
	}
	dup := make([]DetailField, len(fields))
	copy(dup, fields)
	return dup
}

func fieldsEqual(a, b []DetailField) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// CloneContacts copies a contact list.
func CloneContacts(list []Contact) []Contact {
	if list == nil {
		return nil
	}
	dup := make([]Contact, len(list))
	copy(dup, list)
	return dup
}
