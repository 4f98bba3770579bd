package state

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/ShayOinif/Contacts/internal/contact"
)

func TestSnapshot_RecordAndClone(t *testing.T) {
	var s Snapshot

	list := []contact.Contact{{ID: 1, DisplayName: "Ada"}, {ID: 2, DisplayName: "Alan"}}
	now := time.Now()
	s.record(contact.Success(list), now)

	snap := s.clone()
	if !snap.HasData || len(snap.Contacts) != 2 {
		t.Fatalf("snapshot = %#v, want 2 contacts with HasData", snap)
	}
	if !snap.LastUpdated.Equal(now) {
		t.Fatalf("LastUpdated = %v, want %v", snap.LastUpdated, now)
	}
	if snap.LastError != nil {
		t.Fatalf("LastError = %v, want nil", snap.LastError)
	}

	// Returned snapshot should be independent of the stored one.
	snap.Contacts[0].ID = 999
	if s.clone().Contacts[0].ID != 1 {
		t.Fatalf("clone should copy contacts; got id %d want 1", s.clone().Contacts[0].ID)
	}
}

func TestSnapshot_FailureKeepsPreviousData(t *testing.T) {
	var s Snapshot
	s.record(contact.Success([]contact.Contact{{ID: 1}}), time.Now())

	origErr := errors.New("boom")
	s.record(contact.Failure[[]contact.Contact](origErr), time.Now())

	snap := s.clone()
	if len(snap.Contacts) != 1 || snap.Contacts[0].ID != 1 {
		t.Fatalf("contacts changed on error: got %#v", snap.Contacts)
	}
	if snap.LastError == nil || snap.LastError.Error() != "boom" {
		t.Fatalf("LastError = %v, want boom", snap.LastError)
	}
	if !errors.Is(snap.LastError, origErr) {
		t.Fatalf("cloned error should still wrap the original")
	}
	if reflect.ValueOf(snap.LastError).Pointer() == reflect.ValueOf(origErr).Pointer() {
		t.Fatalf("Snapshot should clone error instance")
	}
}

func TestSnapshot_ConsecutiveFailures(t *testing.T) {
	var s Snapshot
	fail := func(msg string) { s.record(contact.Failure[[]contact.Contact](errors.New(msg)), time.Now()) }

	if s.ConsecutiveFailures != 0 || s.IsOffline() {
		t.Fatalf("fresh snapshot: failures=%d offline=%v", s.ConsecutiveFailures, s.IsOffline())
	}

	fail("fail 1")
	if s.ConsecutiveFailures != 1 {
		t.Fatalf("ConsecutiveFailures = %d, want 1", s.ConsecutiveFailures)
	}
	if s.IsOffline() {
		t.Fatal("IsOffline() = true, want false with 1 failure")
	}

	fail("fail 2")
	if !s.IsOffline() {
		t.Fatal("IsOffline() = false, want true with 2 failures")
	}

	fail("fail 3")
	if s.ConsecutiveFailures != 3 {
		t.Fatalf("ConsecutiveFailures = %d, want 3", s.ConsecutiveFailures)
	}

	s.record(contact.Success([]contact.Contact{}), time.Now())
	if s.ConsecutiveFailures != 0 || s.IsOffline() {
		t.Fatalf("success should reset: failures=%d offline=%v", s.ConsecutiveFailures, s.IsOffline())
	}
}
