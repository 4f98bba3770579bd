package contact

import (
	"context"
	"strings"

	"golang.org/x/text/cases"
)

// lookupKeySeparator splits compound lookup keys of linked records.
const lookupKeySeparator = "."

// cancelCheckEvery bounds how many contacts are scanned between ctx checks.
const cancelCheckEvery = 256

// Filter returns the contacts whose display name contains query, compared
// with Unicode case folding. An empty query returns the whole list. The
// input is never modified; order is preserved.
func Filter(list []Contact, query string) []Contact {
	out, _ := FilterContext(context.Background(), list, query)
	return out
}

// FilterContext is Filter with cooperative cancellation. On cancellation it
// returns ctx.Err() and no partial result.
func FilterContext(ctx context.Context, list []Contact, query string) ([]Contact, error) {
	if query == "" {
		if list == nil {
			return []Contact{}, nil
		}
		return CloneContacts(list), nil
	}

	// Casers are stateful; one per call keeps Filter safe for concurrent use.
	folder := cases.Fold()
	needle := folder.String(query)

	out := make([]Contact, 0, len(list))
	for i, c := range list {
		if i%cancelCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		if strings.Contains(folder.String(c.DisplayName), needle) {
			out = append(out, c)
		}
	}
	return out, nil
}

// MatchLookupKey reports whether key selects a record whose lookup key is
// candidate. key may be compound: it is split on "." and matches when any
// non-empty fragment is contained in candidate.
func MatchLookupKey(key, candidate string) bool {
	for _, fragment := range strings.Split(key, lookupKeySeparator) {
		if fragment == "" {
			continue
		}
		if strings.Contains(candidate, fragment) {
			return true
		}
	}
	return false
}

// FindByLookupKey returns the first contact in list order matched by key.
func FindByLookupKey(list []Contact, key string) (Contact, bool) {
	for _, c := range list {
		if MatchLookupKey(key, c.LookupKey) {
			return c, true
		}
	}
	return Contact{}, false
}
