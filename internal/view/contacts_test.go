package view

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ShayOinif/Contacts/internal/contact"
)

func TestContacts_InitialQueryAppliesImmediately(t *testing.T) {
	_, cache := fixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	out := Contacts(ctx, cache, make(chan string), Options{Debounce: time.Hour})

	res := next(t, out)
	require.True(t, res.OK())
	assert.Equal(t, []string{"Ada Lovelace", "Alan Turing", "Grace Hopper"}, names(res.Value))
}

func TestContacts_OnlyLastQueryInsideDebounceIsApplied(t *testing.T) {
	_, cache := fixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	queries := make(chan string)
	out := Contacts(ctx, cache, queries, Options{Debounce: 80 * time.Millisecond})
	next(t, out)

	queries <- "al"
	queries <- "gr"

	res := next(t, out)
	require.True(t, res.OK())
	assert.Equal(t, []string{"Grace Hopper"}, names(res.Value))
	quiet(t, out, 200*time.Millisecond)
}

func TestContacts_QueryMatchesAndMisses(t *testing.T) {
	_, cache := fixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	queries := make(chan string)
	out := Contacts(ctx, cache, queries, Options{Debounce: 10 * time.Millisecond})
	next(t, out)

	queries <- "ADA"
	res := next(t, out)
	require.True(t, res.OK())
	assert.Equal(t, []string{"Ada Lovelace"}, names(res.Value))

	queries <- "zzz"
	res = next(t, out)
	require.True(t, res.OK())
	assert.NotNil(t, res.Value)
	assert.Empty(t, res.Value)

	queries <- ""
	res = next(t, out)
	require.True(t, res.OK())
	assert.Len(t, res.Value, 3)
}

func TestContacts_RepeatedQueryIsNotReapplied(t *testing.T) {
	_, cache := fixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	queries := make(chan string)
	out := Contacts(ctx, cache, queries, Options{Debounce: 10 * time.Millisecond})
	next(t, out)

	queries <- ""
	quiet(t, out, 100*time.Millisecond)
}

func TestContacts_ChangeRefiltersWithAppliedQuery(t *testing.T) {
	src, cache := fixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	queries := make(chan string)
	out := Contacts(ctx, cache, queries, Options{Debounce: -1})
	next(t, out)

	queries <- "a"
	res := next(t, out)
	require.Len(t, res.Value, 3)

	src.Remove(2)
	res = next(t, out)
	require.True(t, res.OK())
	assert.Equal(t, []string{"Ada Lovelace", "Grace Hopper"}, names(res.Value))
}

func TestContacts_ForwardsFailures(t *testing.T) {
	src, cache := fixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	out := Contacts(ctx, cache, nil, Options{})
	next(t, out)

	src.FailList(contact.SchemaMismatch("list contacts", "photo_uri"))
	src.Notify()
	res := next(t, out)
	assert.ErrorIs(t, res.Err, contact.ErrSchemaMismatch)

	src.FailList(nil)
	src.Notify()
	res = next(t, out)
	assert.True(t, res.OK())
}

func TestContacts_ClosedQueriesKeepLastQuery(t *testing.T) {
	src, cache := fixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	queries := make(chan string, 1)
	out := Contacts(ctx, cache, queries, Options{Debounce: -1})
	next(t, out)

	queries <- "grace"
	close(queries)
	res := next(t, out)
	assert.Equal(t, []string{"Grace Hopper"}, names(res.Value))

	src.Put(contact.DetailedContact{Contact: contact.Contact{ID: 4, LookupKey: "0r4", DisplayName: "Grace Kelly"}})
	res = next(t, out)
	assert.Equal(t, []string{"Grace Hopper", "Grace Kelly"}, names(res.Value))
}

func TestContacts_CancelClosesStreamAndReleasesCache(t *testing.T) {
	src, cache := fixture(t)
	ctx, cancel := context.WithCancel(context.Background())

	out := Contacts(ctx, cache, nil, Options{})
	next(t, out)
	cancel()

	for range out {
	}
	require.Eventually(t, func() bool { return cache.Snapshot().Subscribers == 0 }, time.Second, 5*time.Millisecond)
	require.Eventually(t, func() bool { return src.Subscribers() == 0 }, time.Second, 5*time.Millisecond)
}

func TestContacts_SharedAcrossViews(t *testing.T) {
	src, cache := fixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a := Contacts(ctx, cache, nil, Options{})
	b := Contacts(ctx, cache, nil, Options{})
	next(t, a)
	next(t, b)

	assert.Equal(t, 1, src.ListCalls())
}
