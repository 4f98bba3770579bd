package state

import (
	"fmt"
	"time"

	"github.com/ShayOinif/Contacts/internal/contact"
)

// Snapshot represents the latest data available to callers that poll instead
// of subscribing (status lines, the retry poller, the CLI).
type Snapshot struct {
	Contacts            []contact.Contact
	HasData             bool
	LastUpdated         time.Time
	LastError           error
	ConsecutiveFailures int // Number of consecutive failed queries
	Subscribers         int
	Active              bool // A source registration is held
}

// IsOffline returns true when the store has failed for multiple queries in a row.
func (s Snapshot) IsOffline() bool {
	return s.ConsecutiveFailures >= 2
}

// record folds one query outcome into the snapshot. When the query failed the
// previous contacts are kept but the error is recorded for visibility.
func (s *Snapshot) record(res contact.Result[[]contact.Contact], now time.Time) {
	s.LastUpdated = now
	if res.Err != nil {
		s.LastError = res.Err
		s.ConsecutiveFailures++
		return
	}
	s.Contacts = res.Value
	s.HasData = true
	s.LastError = nil
	s.ConsecutiveFailures = 0
}

func (s Snapshot) clone() Snapshot {
	snap := s
	snap.Contacts = contact.CloneContacts(s.Contacts)
	if s.LastError != nil {
		snap.LastError = fmt.Errorf("%w", s.LastError)
	}
	return snap
}
