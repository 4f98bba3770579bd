package edit

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/ShayOinif/Contacts/internal/contact"
	"github.com/ShayOinif/Contacts/internal/source"
	"github.com/ShayOinif/Contacts/internal/view"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func ada() contact.DetailedContact {
	return contact.DetailedContact{
		Contact: contact.Contact{ID: 1, LookupKey: "0r1-ada", DisplayName: "Ada Lovelace"},
		Phones:  []contact.DetailField{{ID: 11, Value: "555-1111", Type: "home"}},
		Emails:  []contact.DetailField{{ID: 21, Value: "ada@example.com", Type: "work"}},
	}
}

func found(d contact.DetailedContact) view.DetailResult {
	return view.DetailResult{Key: d.Contact.LookupKey, Status: view.StatusFound, Detail: d}
}

func viewing(t *testing.T, src *source.Memory) *Session {
	t.Helper()
	s := New(src, Options{})
	t.Cleanup(s.Close)
	s.Apply(found(ada()))
	require.IsType(t, Viewing{}, s.State())
	return s
}

func TestSession_StartsIdle(t *testing.T) {
	s := New(source.NewMemory(), Options{})
	defer s.Close()

	assert.Equal(t, Idle{}, s.State())
	assert.NotEmpty(t, s.ID)
	assert.False(t, s.Edit(), "edit is a no-op outside Viewing")
	assert.False(t, s.CancelEdit())
	assert.False(t, s.UpdateField(11, "x", contact.Phone))
	assert.NoError(t, s.Save(context.Background()))
}

func TestSession_EditThenCancelRestoresSnapshot(t *testing.T) {
	s := viewing(t, source.NewMemory(ada()))

	require.True(t, s.Edit())
	require.True(t, s.UpdateField(11, "", contact.Phone))
	require.True(t, s.UpdateField(21, "other@example.com", contact.Email))
	require.True(t, s.UpdateField(11, "555-0000", contact.Phone))
	require.True(t, s.CancelEdit())

	v, ok := s.State().(Viewing)
	require.True(t, ok)
	if diff := cmp.Diff(ada(), v.Detail); diff != "" {
		t.Fatalf("detail after cancel (-want +got):\n%s", diff)
	}
}

func TestSession_EmptyValueIsInvalid(t *testing.T) {
	src := source.NewMemory(ada())
	s := viewing(t, src)
	require.True(t, s.Edit())

	require.True(t, s.UpdateField(11, "", contact.Phone))
	ed := s.State().(Editing)
	assert.True(t, ed.IsInvalid(11))
	assert.False(t, ed.Valid())

	require.NoError(t, s.Save(context.Background()))
	assert.IsType(t, Editing{}, s.State(), "save is blocked while a field is invalid")
	assert.Empty(t, src.Writes())

	require.True(t, s.UpdateField(11, "555-3333", contact.Phone))
	ed = s.State().(Editing)
	assert.False(t, ed.IsInvalid(11))
	assert.True(t, ed.Valid())
}

func TestSession_UpdateFieldIsIdempotent(t *testing.T) {
	s := viewing(t, source.NewMemory(ada()))
	require.True(t, s.Edit())

	require.True(t, s.UpdateField(11, "555-2222", contact.Phone))
	first := s.State().(Editing)
	require.True(t, s.UpdateField(11, "555-2222", contact.Phone))
	second := s.State().(Editing)

	assert.True(t, first.Working.Equal(second.Working))
	assert.Equal(t, first.Invalid, second.Invalid)
	assert.False(t, s.UpdateField(99, "x", contact.Phone), "unknown field")
	assert.False(t, s.UpdateField(21, "x", contact.Phone), "email id under phone kind")
}

func TestSession_PublishedStatesAreNotMutated(t *testing.T) {
	s := viewing(t, source.NewMemory(ada()))
	require.True(t, s.Edit())

	before := s.State().(Editing)
	require.True(t, s.UpdateField(11, "", contact.Phone))

	assert.Equal(t, "555-1111", before.Working.Phones[0].Value)
	assert.Empty(t, before.Invalid)
}

func TestSession_SaveWritesOnlyChangedFields(t *testing.T) {
	src := source.NewMemory(ada())
	s := viewing(t, src)

	require.True(t, s.Edit())
	require.True(t, s.UpdateField(11, "555-2222", contact.Phone))
	require.NoError(t, s.Save(context.Background()))

	assert.Equal(t, []source.Write{{FieldID: 11, Value: "555-2222"}}, src.Writes())

	v, ok := s.State().(Viewing)
	require.True(t, ok)
	assert.Equal(t, "555-2222", v.Detail.Phones[0].Value)
	assert.Equal(t, "ada@example.com", v.Detail.Emails[0].Value)
	assert.NoError(t, v.SaveErr)
}

func TestSession_SaveWithoutChangesWritesNothing(t *testing.T) {
	src := source.NewMemory(ada())
	s := viewing(t, src)

	require.True(t, s.Edit())
	require.True(t, s.UpdateField(11, "555-1111", contact.Phone))
	require.NoError(t, s.Save(context.Background()))

	assert.Empty(t, src.Writes())
	assert.IsType(t, Viewing{}, s.State())
}

func TestSession_WriteFailureIsReported(t *testing.T) {
	src := source.NewMemory(ada())
	src.FailWrite(11, errors.New("read-only account"))
	s := viewing(t, src)

	require.True(t, s.Edit())
	require.True(t, s.UpdateField(11, "555-2222", contact.Phone))
	require.True(t, s.UpdateField(21, "ada@lovelace.org", contact.Email))

	err := s.Save(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, contact.ErrWriteRejected)
	assert.Len(t, src.Writes(), 2, "a failed write does not stop the others")

	v, ok := s.State().(Viewing)
	require.True(t, ok, "the session returns to Viewing with the entered values")
	assert.Equal(t, "555-2222", v.Detail.Phones[0].Value)
	assert.ErrorIs(t, v.SaveErr, contact.ErrWriteRejected)

	// Re-emissions of the same record keep the failure visible.
	s.Apply(found(ada()))
	assert.Error(t, s.State().(Viewing).SaveErr)
}

// blockingWrites holds every WriteField until release is closed.
func blockingWrites(src *source.Memory) (entered chan int64, release chan struct{}) {
	entered = make(chan int64, 8)
	release = make(chan struct{})
	src.BeforeWrite = func(ctx context.Context, fieldID int64) {
		entered <- fieldID
		select {
		case <-release:
		case <-ctx.Done():
		}
	}
	return entered, release
}

func TestSession_SingleSaveInFlight(t *testing.T) {
	src := source.NewMemory(ada())
	entered, release := blockingWrites(src)
	s := viewing(t, src)

	require.True(t, s.Edit())
	require.True(t, s.UpdateField(11, "555-2222", contact.Phone))

	done := make(chan error, 1)
	go func() { done <- s.Save(context.Background()) }()
	<-entered

	assert.True(t, s.State().(Editing).Saving)
	assert.NoError(t, s.Save(context.Background()), "second save is a no-op")

	close(release)
	require.NoError(t, <-done)
	assert.Len(t, src.Writes(), 1)
}

func TestSession_EditDuringSaveStaysEditing(t *testing.T) {
	src := source.NewMemory(ada())
	entered, release := blockingWrites(src)
	s := viewing(t, src)

	require.True(t, s.Edit())
	require.True(t, s.UpdateField(11, "555-2222", contact.Phone))

	done := make(chan error, 1)
	go func() { done <- s.Save(context.Background()) }()
	<-entered

	// Updates never wait for the save.
	require.True(t, s.UpdateField(21, "ada@lovelace.org", contact.Email))
	close(release)
	require.NoError(t, <-done)

	ed, ok := s.State().(Editing)
	require.True(t, ok)
	assert.False(t, ed.Saving)
	assert.Equal(t, "555-2222", ed.Original.Phones[0].Value, "saved values become the new original")
	assert.Equal(t, "ada@example.com", ed.Original.Emails[0].Value)
	assert.Equal(t, []contact.DetailField{{ID: 21, Value: "ada@lovelace.org", Type: "work"}}, Diff(ed.Original, ed.Working))
}

func TestSession_FailedWriteDuringEditIsResent(t *testing.T) {
	src := source.NewMemory(ada())
	src.FailWrite(11, errors.New("read-only account"))
	s := viewing(t, src)

	require.True(t, s.Edit())
	require.True(t, s.UpdateField(11, "555-2222", contact.Phone))

	// The user keeps typing while the phone write is in flight.
	src.BeforeWrite = func(ctx context.Context, fieldID int64) {
		if fieldID == 11 {
			s.UpdateField(21, "ada@lovelace.org", contact.Email)
		}
	}
	err := s.Save(context.Background())
	require.ErrorIs(t, err, contact.ErrWriteRejected)

	ed, ok := s.State().(Editing)
	require.True(t, ok)
	assert.Equal(t, "555-1111", ed.Original.Phones[0].Value, "a failed write is not taken as saved")
	assert.ErrorIs(t, ed.SaveErr, contact.ErrWriteRejected)
	assert.Equal(t, []contact.DetailField{
		{ID: 11, Value: "555-2222", Type: "home"},
		{ID: 21, Value: "ada@lovelace.org", Type: "work"},
	}, Diff(ed.Original, ed.Working))

	src.BeforeWrite = nil
	src.FailWrite(11, nil)
	require.NoError(t, s.Save(context.Background()))

	v, ok := s.State().(Viewing)
	require.True(t, ok)
	assert.NoError(t, v.SaveErr)
	assert.Equal(t, "555-2222", v.Detail.Phones[0].Value)

	phones := src.ListDetails(context.Background(), 1, contact.Phone)
	require.True(t, phones.OK())
	assert.Equal(t, "555-2222", phones.Value[0].Value, "the retried phone reaches the store")
}

func TestSession_CancelDuringSaveWins(t *testing.T) {
	src := source.NewMemory(ada())
	entered, release := blockingWrites(src)
	s := viewing(t, src)

	require.True(t, s.Edit())
	require.True(t, s.UpdateField(11, "555-2222", contact.Phone))

	done := make(chan error, 1)
	go func() { done <- s.Save(context.Background()) }()
	<-entered

	require.True(t, s.CancelEdit())
	close(release)
	require.NoError(t, <-done)

	v, ok := s.State().(Viewing)
	require.True(t, ok)
	assert.Equal(t, "555-1111", v.Detail.Phones[0].Value)
}

func TestSession_ContextCancelDuringSave(t *testing.T) {
	src := source.NewMemory(ada())
	entered, _ := blockingWrites(src)
	s := viewing(t, src)

	require.True(t, s.Edit())
	require.True(t, s.UpdateField(11, "555-2222", contact.Phone))
	require.True(t, s.UpdateField(21, "ada@lovelace.org", contact.Email))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Save(ctx) }()
	<-entered
	cancel()

	err := <-done
	assert.ErrorIs(t, err, context.Canceled)
	ed, ok := s.State().(Editing)
	require.True(t, ok)
	assert.False(t, ed.Saving)
	assert.Len(t, src.Writes(), 0, "the cancelled write never reached the store")
}

func TestSession_ApplyDoesNotClobberWorkingCopy(t *testing.T) {
	s := viewing(t, source.NewMemory(ada()))
	require.True(t, s.Edit())
	require.True(t, s.UpdateField(11, "555-2222", contact.Phone))

	refreshed := ada()
	refreshed.Emails[0].Value = "changed@example.com"
	s.Apply(found(refreshed))
	s.Apply(view.DetailResult{Status: view.StatusFailed, Err: errors.New("boom")})

	ed, ok := s.State().(Editing)
	require.True(t, ok)
	assert.Equal(t, "555-2222", ed.Working.Phones[0].Value)
}

func TestSession_ApplyTransitions(t *testing.T) {
	s := viewing(t, source.NewMemory(ada()))

	s.Apply(view.DetailResult{Status: view.StatusNotFound})
	assert.Equal(t, Idle{}, s.State())

	s.Apply(found(ada()))
	require.True(t, s.Edit())

	other := ada()
	other.Contact.ID = 2
	s.Apply(found(other))
	v, ok := s.State().(Viewing)
	require.True(t, ok, "selecting another record discards the edit")
	assert.Equal(t, int64(2), v.Detail.Contact.ID)
}

func TestSession_UpdatesClosedOnClose(t *testing.T) {
	s := New(source.NewMemory(), Options{})
	s.Apply(found(ada()))
	s.Close()

	st, ok := <-s.Updates()
	require.True(t, ok, "pending update is still delivered")
	assert.IsType(t, Viewing{}, st)
	_, ok = <-s.Updates()
	assert.False(t, ok)
	assert.False(t, s.Edit())
}

func TestDiff_PairsByIDAndPosition(t *testing.T) {
	original := contact.DetailedContact{
		Phones: []contact.DetailField{{ID: 1, Value: "a"}, {ID: 2, Value: "b"}},
		Emails: []contact.DetailField{{Value: "x@y"}, {Value: "z@y"}},
	}
	working := original.Clone()
	working.Phones[1].Value = "B"
	working.Emails[0].Value = "X@y"

	got := Diff(original, working)
	want := []contact.DetailField{{ID: 2, Value: "B"}, {Value: "X@y"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("Diff (-want +got):\n%s", diff)
	}
	assert.Empty(t, Diff(original, original.Clone()))
}
