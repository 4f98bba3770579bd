// Package repo is the caller-facing surface of the contact core: one shared
// cache over a Source, the list and detail views derived from it, and edit
// sessions that write back through the same Source.
package repo

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/ShayOinif/Contacts/internal/contact"
	"github.com/ShayOinif/Contacts/internal/edit"
	"github.com/ShayOinif/Contacts/internal/state"
	"github.com/ShayOinif/Contacts/internal/view"
)

// Options configure a Repository. Zero values use the package defaults.
type Options struct {
	Grace    time.Duration
	Debounce time.Duration
	Logger   *zap.Logger
}

// Repository wires a Source into the cache, views and edit sessions.
type Repository struct {
	src   contact.Source
	cache *state.Cache
	view  view.Options
	log   *zap.Logger
}

// New creates a repository over src. Nothing is queried until the first
// observer subscribes.
func New(src contact.Source, opts Options) *Repository {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Repository{
		src: src,
		cache: state.New(src, state.Options{
			Grace:  opts.Grace,
			Logger: logger.Named("cache"),
		}),
		view: view.Options{
			Debounce: opts.Debounce,
			Logger:   logger.Named("view"),
		},
		log: logger,
	}
}

// ObserveContacts streams the contact list filtered by the latest query.
func (r *Repository) ObserveContacts(ctx context.Context, queries <-chan string) <-chan contact.Result[[]contact.Contact] {
	return view.Contacts(ctx, r.cache, queries, r.view)
}

// ObserveDetail streams the record selected by the latest key.
func (r *Repository) ObserveDetail(ctx context.Context, keys <-chan string) <-chan view.DetailResult {
	return view.Detail(ctx, r.cache, r.src, keys, r.view)
}

// NewSession returns an Idle edit session that saves through the source.
func (r *Repository) NewSession() *edit.Session {
	return edit.New(r.src, edit.Options{Logger: r.log.Named("edit")})
}

// Refresh asks the cache to re-query if it is active.
func (r *Repository) Refresh() {
	r.cache.Refresh()
}

// Snapshot returns the cache state.
func (r *Repository) Snapshot() state.Snapshot {
	return r.cache.Snapshot()
}

// Close tears the cache down. Open views end with their contexts.
func (r *Repository) Close() {
	r.cache.Close()
}
