package view

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/ShayOinif/Contacts/internal/contact"
)

// Contacts emits the shared contact list filtered by the most recent query.
//
// The initial query is "" and applies at once. Every later query waits for
// the debounce window; a query replaced inside the window is never applied.
// Each new query or list emission cancels the filter still running for the
// previous one, and only the newest result is emitted. Source failures are
// forwarded unchanged. The channel is closed when ctx ends.
func Contacts(ctx context.Context, stream Stream, queries <-chan string, opts Options) <-chan contact.Result[[]contact.Contact] {
	out := make(chan contact.Result[[]contact.Contact])
	q := &queryLoop{
		stream:   stream,
		queries:  queries,
		out:      out,
		debounce: opts.debounce(),
		log:      opts.logger(),
	}
	go q.run(ctx)
	return out
}

type queryLoop struct {
	stream   Stream
	queries  <-chan string
	out      chan<- contact.Result[[]contact.Contact]
	debounce time.Duration
	log      *zap.Logger

	list    *contact.Result[[]contact.Contact]
	applied string
	pending string
	tasks   *latest[contact.Result[[]contact.Contact]]
}

func (q *queryLoop) run(ctx context.Context) {
	defer close(q.out)

	sub := q.stream.Subscribe()
	defer sub.Close()

	q.tasks = newLatest[contact.Result[[]contact.Contact]](ctx)
	defer q.tasks.wait()

	var (
		timer   *time.Timer
		timerCh <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case res, ok := <-sub.C():
			if !ok {
				return
			}
			q.list = &res
			if !q.refilter(ctx) {
				return
			}

		case query, ok := <-q.queries:
			if !ok {
				// Keep serving the last applied query until ctx ends.
				q.queries = nil
				continue
			}
			q.pending = query
			if q.debounce <= 0 {
				if !q.apply(ctx) {
					return
				}
				continue
			}
			if timer == nil {
				timer = time.NewTimer(q.debounce)
			} else {
				timer.Reset(q.debounce)
			}
			timerCh = timer.C

		case <-timerCh:
			timerCh = nil
			if !q.apply(ctx) {
				return
			}

		case o := <-q.tasks.results():
			if !q.tasks.current(o) {
				continue
			}
			if !emit(ctx, q.out, o.val) {
				return
			}
		}
	}
}

// apply promotes the pending query. A query equal to the applied one is a
// no-op.
func (q *queryLoop) apply(ctx context.Context) bool {
	if q.pending == q.applied {
		return true
	}
	q.log.Debug("query applied", zap.String("query", q.pending))
	q.applied = q.pending
	return q.refilter(ctx)
}

// refilter restarts filtering of the current list with the applied query.
func (q *queryLoop) refilter(ctx context.Context) bool {
	if q.list == nil {
		return true
	}
	if q.list.Err != nil {
		q.tasks.stop()
		return emit(ctx, q.out, contact.Failure[[]contact.Contact](q.list.Err))
	}

	snapshot, query := q.list.Value, q.applied
	q.tasks.start(func(ctx context.Context) (contact.Result[[]contact.Contact], bool) {
		filtered, err := contact.FilterContext(ctx, snapshot, query)
		if err != nil {
			return contact.Result[[]contact.Contact]{}, false
		}
		return contact.Success(filtered), true
	})
	return true
}
