package view

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/ShayOinif/Contacts/internal/contact"
	"github.com/ShayOinif/Contacts/internal/state"
)

// Status classifies a detail emission.
type Status int

const (
	// StatusIdle means no record is selected.
	StatusIdle Status = iota
	// StatusNotFound means the key matched no contact.
	StatusNotFound
	// StatusFound carries the joined record.
	StatusFound
	// StatusFailed carries the read failure.
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusNotFound:
		return "not_found"
	case StatusFound:
		return "found"
	case StatusFailed:
		return "failed"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// DetailResult is one emission of Detail.
type DetailResult struct {
	Key    string
	Status Status
	Detail contact.DetailedContact
	Err    error
}

// Detail emits the detailed record selected by the most recent key.
//
// The record is resolved against the shared list on every new key and on
// every list emission while a key is selected: the first contact matched by
// the key is joined with its phones, then its emails. A failure of either
// query fails the whole resolution and the emails query is skipped when the
// phones query failed. A key matching nothing yields StatusNotFound;
// clearing the key yields StatusIdle. Switching keys cancels the resolution
// still running for the previous one. The channel is closed when ctx ends.
func Detail(ctx context.Context, stream Stream, details contact.DetailLister, keys <-chan string, opts Options) <-chan DetailResult {
	out := make(chan DetailResult)
	d := &detailLoop{
		stream:  stream,
		details: details,
		keys:    keys,
		out:     out,
		log:     opts.logger(),
	}
	go d.run(ctx)
	return out
}

type detailLoop struct {
	stream  Stream
	details contact.DetailLister
	keys    <-chan string
	out     chan<- DetailResult
	log     *zap.Logger

	sub   *state.Subscription
	list  *contact.Result[[]contact.Contact]
	key   string
	tasks *latest[DetailResult]
}

func (d *detailLoop) run(ctx context.Context) {
	defer close(d.out)

	d.tasks = newLatest[DetailResult](ctx)
	defer d.tasks.wait()
	defer d.release()

	for {
		// The list is only followed while a key is selected.
		var listCh <-chan contact.Result[[]contact.Contact]
		if d.sub != nil {
			listCh = d.sub.C()
		}

		select {
		case <-ctx.Done():
			return

		case key, ok := <-d.keys:
			if !ok {
				d.keys = nil
				continue
			}
			if !d.selectKey(ctx, key) {
				return
			}

		case res, ok := <-listCh:
			if !ok {
				return
			}
			d.list = &res
			if !d.resolve(ctx) {
				return
			}

		case o := <-d.tasks.results():
			if !d.tasks.current(o) {
				continue
			}
			if !emit(ctx, d.out, o.val) {
				return
			}
		}
	}
}

func (d *detailLoop) selectKey(ctx context.Context, key string) bool {
	if key == d.key {
		return true
	}
	d.key = key
	d.tasks.stop()

	if key == "" {
		d.release()
		return emit(ctx, d.out, DetailResult{Status: StatusIdle})
	}
	if d.sub == nil {
		// A replayed value, if any, arrives on the channel.
		d.sub = d.stream.Subscribe()
		return true
	}
	return d.resolve(ctx)
}

func (d *detailLoop) release() {
	if d.sub != nil {
		d.sub.Close()
		d.sub = nil
	}
	d.list = nil
}

// resolve restarts resolution of the selected key against the current list.
func (d *detailLoop) resolve(ctx context.Context) bool {
	if d.key == "" || d.list == nil {
		return true
	}
	key := d.key
	if d.list.Err != nil {
		d.tasks.stop()
		return emit(ctx, d.out, DetailResult{Key: key, Status: StatusFailed, Err: d.list.Err})
	}
	c, ok := contact.FindByLookupKey(d.list.Value, key)
	if !ok {
		d.tasks.stop()
		return emit(ctx, d.out, DetailResult{Key: key, Status: StatusNotFound})
	}

	d.tasks.start(func(ctx context.Context) (DetailResult, bool) {
		return join(ctx, d.details, key, c, d.log)
	})
	return true
}

// join resolves key to c's joined record. It reports false when cancelled.
func join(ctx context.Context, details contact.DetailLister, key string, c contact.Contact, log *zap.Logger) (DetailResult, bool) {
	record, err := Join(ctx, details, c)
	if ctx.Err() != nil || contact.IsCancellation(err) {
		return DetailResult{}, false
	}
	if err != nil {
		log.Warn("resolve contact detail", zap.String("key", key), zap.Error(err))
		return DetailResult{Key: key, Status: StatusFailed, Err: err}, true
	}
	return DetailResult{Key: key, Status: StatusFound, Detail: record}, true
}

// Join reads the phones, then the emails, of c. A phones failure skips the
// emails query.
func Join(ctx context.Context, details contact.DetailLister, c contact.Contact) (contact.DetailedContact, error) {
	phones := details.ListDetails(ctx, c.ID, contact.Phone)
	if phones.Err != nil {
		return contact.DetailedContact{}, phones.Err
	}
	emails := details.ListDetails(ctx, c.ID, contact.Email)
	if emails.Err != nil {
		return contact.DetailedContact{}, emails.Err
	}
	return contact.DetailedContact{
		Contact: c,
		Phones:  phones.Value,
		Emails:  emails.Value,
	}, nil
}
