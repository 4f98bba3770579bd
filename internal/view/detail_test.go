package view

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ShayOinif/Contacts/internal/contact"
)

func TestDetail_ResolvesAndJoins(t *testing.T) {
	src, cache := fixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	keys := make(chan string, 1)
	out := Detail(ctx, cache, src, keys, Options{})

	keys <- "0r1-ada"
	res := next(t, out)
	require.Equal(t, StatusFound, res.Status, "err: %v", res.Err)

	want := people()[0]
	if diff := cmp.Diff(want, res.Detail); diff != "" {
		t.Fatalf("detail mismatch (-want +got):\n%s", diff)
	}
}

func TestDetail_CompoundKeyMatchesAnyFragment(t *testing.T) {
	src, cache := fixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	keys := make(chan string, 1)
	out := Detail(ctx, cache, src, keys, Options{})

	keys <- "unknown..0r2-alan"
	res := next(t, out)
	require.Equal(t, StatusFound, res.Status)
	assert.Equal(t, int64(2), res.Detail.Contact.ID)
	assert.Empty(t, res.Detail.Emails)
}

func TestDetail_UnknownKeyIsNotFound(t *testing.T) {
	src, cache := fixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	keys := make(chan string, 1)
	out := Detail(ctx, cache, src, keys, Options{})

	keys <- "nobody"
	res := next(t, out)
	assert.Equal(t, StatusNotFound, res.Status)
	assert.NoError(t, res.Err)
	assert.Equal(t, 0, src.DetailCalls())
}

func TestDetail_PhoneFailureSkipsEmails(t *testing.T) {
	src, cache := fixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	src.FailDetails(contact.Phone, contact.Unavailable("list phone details", errors.New("provider returned null")))

	keys := make(chan string, 1)
	out := Detail(ctx, cache, src, keys, Options{})

	keys <- "0r1-ada"
	res := next(t, out)
	assert.Equal(t, StatusFailed, res.Status)
	assert.ErrorIs(t, res.Err, contact.ErrSourceUnavailable)
	assert.Equal(t, 1, src.DetailCalls(), "emails must not be queried after the phones query failed")
}

func TestDetail_EmailFailureFailsWholeRecord(t *testing.T) {
	src, cache := fixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	src.FailDetails(contact.Email, contact.SchemaMismatch("list email details", "data1"))

	keys := make(chan string, 1)
	out := Detail(ctx, cache, src, keys, Options{})

	keys <- "0r1-ada"
	res := next(t, out)
	assert.Equal(t, StatusFailed, res.Status)
	assert.ErrorIs(t, res.Err, contact.ErrSchemaMismatch)
	assert.Empty(t, res.Detail.Phones, "no partial record")
}

func TestDetail_ListFailureIsForwarded(t *testing.T) {
	src, cache := fixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	src.FailList(contact.Unavailable("list contacts", errors.New("provider returned null")))

	keys := make(chan string, 1)
	out := Detail(ctx, cache, src, keys, Options{})

	keys <- "0r1-ada"
	res := next(t, out)
	assert.Equal(t, StatusFailed, res.Status)
	assert.ErrorIs(t, res.Err, contact.ErrSourceUnavailable)
}

func TestDetail_ReResolvesOnChange(t *testing.T) {
	src, cache := fixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	keys := make(chan string, 1)
	out := Detail(ctx, cache, src, keys, Options{})

	keys <- "0r1-ada"
	require.Equal(t, StatusFound, next(t, out).Status)

	require.NoError(t, src.WriteField(context.Background(), 11, "555-9999"))
	res := next(t, out)
	require.Equal(t, StatusFound, res.Status)
	assert.Equal(t, "555-9999", res.Detail.Phones[0].Value)

	src.Remove(1)
	assert.Equal(t, StatusNotFound, next(t, out).Status)
}

func TestDetail_ClearingKeyGoesIdleAndReleasesCache(t *testing.T) {
	src, cache := fixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	keys := make(chan string, 1)
	out := Detail(ctx, cache, src, keys, Options{})

	keys <- "0r1-ada"
	require.Equal(t, StatusFound, next(t, out).Status)

	keys <- ""
	res := next(t, out)
	assert.Equal(t, StatusIdle, res.Status)
	require.Eventually(t, func() bool { return cache.Snapshot().Subscribers == 0 }, time.Second, 5*time.Millisecond)
	require.Eventually(t, func() bool { return src.Subscribers() == 0 }, time.Second, 5*time.Millisecond)
}

func TestDetail_KeySwitchDropsStaleResolution(t *testing.T) {
	src, cache := fixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var calls atomic.Int32
	entered := make(chan struct{})
	src.BeforeDetails = func(ctx context.Context, kind contact.Kind) {
		if calls.Add(1) == 1 {
			close(entered)
			<-ctx.Done()
		}
	}

	keys := make(chan string)
	out := Detail(ctx, cache, src, keys, Options{})

	keys <- "0r1-ada"
	<-entered
	keys <- "0r2-alan"

	res := next(t, out)
	require.Equal(t, StatusFound, res.Status)
	assert.Equal(t, "0r2-alan", res.Key)
	assert.Equal(t, int64(2), res.Detail.Contact.ID)
	quiet(t, out, 100*time.Millisecond)
}

func TestStatus_String(t *testing.T) {
	assert.Equal(t, "idle", StatusIdle.String())
	assert.Equal(t, "not_found", StatusNotFound.String())
	assert.Equal(t, "found", StatusFound.String())
	assert.Equal(t, "failed", StatusFailed.String())
	assert.Equal(t, "status(9)", Status(9).String())
}
