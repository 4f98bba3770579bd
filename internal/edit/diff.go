package edit

import "github.com/ShayOinif/Contacts/internal/contact"

// Diff returns the fields of working that differ from their counterpart in
// original, phones first. Fields are paired by id; fields without an id are
// paired by position, which relies on the order being stable for the
// lifetime of the session. Fields are compared as whole records.
func Diff(original, working contact.DetailedContact) []contact.DetailField {
	var changed []contact.DetailField
	for _, kind := range []contact.Kind{contact.Phone, contact.Email} {
		before := original.Fields(kind)
		byID := make(map[int64]contact.DetailField, len(before))
		for _, f := range before {
			if f.ID != 0 {
				byID[f.ID] = f
			}
		}

		for i, f := range working.Fields(kind) {
			var (
				prev contact.DetailField
				ok   bool
			)
			if f.ID != 0 {
				prev, ok = byID[f.ID]
			} else if i < len(before) {
				prev, ok = before[i], true
			}
			if !ok || prev != f {
				changed = append(changed, f)
			}
		}
	}
	return changed
}
