package state

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ShayOinif/Contacts/internal/contact"
)

// DefaultGrace is how long the source registration outlives its last subscriber.
const DefaultGrace = 1500 * time.Millisecond

// Source is the part of contact.Source the cache reads from.
type Source interface {
	ListContacts(ctx context.Context) contact.Result[[]contact.Contact]
	SubscribeToChanges(onChange func()) (unsubscribe func(), err error)
}

// Options configure a Cache.
type Options struct {
	// Grace keeps the registration alive after the last subscriber leaves.
	// Zero uses DefaultGrace.
	Grace  time.Duration
	Logger *zap.Logger
}

// Cache multiplexes one source registration into any number of subscribers.
// The first subscriber activates it (one registration, one query); every
// change notification re-queries and re-emits; the last value is replayed to
// late subscribers. When the last subscriber leaves, teardown waits for the
// grace window.
type Cache struct {
	src   Source
	grace time.Duration
	log   *zap.Logger

	mu       sync.Mutex
	subs     map[*Subscription]struct{}
	run      *activation
	last     *contact.Result[[]contact.Contact]
	snapshot Snapshot
	teardown *time.Timer
	epoch    uint64
	closed   bool
}

// activation is one registration cycle, owned by a single actor goroutine.
type activation struct {
	ctx     context.Context
	cancel  context.CancelFunc
	trigger chan struct{}
	done    chan struct{}
}

// poke requests a re-query. Pokes arriving while one is pending coalesce.
func (a *activation) poke() {
	select {
	case a.trigger <- struct{}{}:
	default:
	}
}

// New creates an inactive cache over src.
func New(src Source, opts Options) *Cache {
	grace := opts.Grace
	if grace <= 0 {
		grace = DefaultGrace
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Cache{
		src:   src,
		grace: grace,
		log:   logger,
		subs:  make(map[*Subscription]struct{}),
	}
}

// Subscribe attaches a new subscriber. If a value has already been emitted it
// is available on the subscription's channel immediately.
func (c *Cache) Subscribe() *Subscription {
	sub := &Subscription{cache: c, ch: make(chan contact.Result[[]contact.Contact], 1)}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		sub.closed = true
		close(sub.ch)
		return sub
	}

	c.subs[sub] = struct{}{}
	if c.teardown != nil {
		c.teardown.Stop()
		c.teardown = nil
		c.epoch++
		c.log.Debug("teardown cancelled", zap.Int("subscribers", len(c.subs)))
	}
	if c.run == nil {
		c.activate()
	}
	if c.last != nil {
		sub.offer(*c.last)
	}
	return sub
}

// Refresh asks an active cache to re-query now. It does nothing while the
// cache has no registration.
func (c *Cache) Refresh() {
	c.mu.Lock()
	run := c.run
	c.mu.Unlock()

	if run != nil {
		run.poke()
	}
}

// Snapshot returns a copy of the current cache state.
func (c *Cache) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	snap := c.snapshot.clone()
	snap.Subscribers = len(c.subs)
	snap.Active = c.run != nil
	return snap
}

// Close tears down the registration immediately and closes every
// subscription. The cache cannot be reused.
func (c *Cache) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.epoch++
	if c.teardown != nil {
		c.teardown.Stop()
		c.teardown = nil
	}
	for sub := range c.subs {
		sub.closeLocked()
	}
	c.subs = make(map[*Subscription]struct{})
	run := c.run
	c.run = nil
	c.last = nil
	c.mu.Unlock()

	if run != nil {
		run.cancel()
		<-run.done
	}
}

// activate starts a new registration cycle. Caller holds c.mu.
func (c *Cache) activate() {
	ctx, cancel := context.WithCancel(context.Background())
	run := &activation{
		ctx:     ctx,
		cancel:  cancel,
		trigger: make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
	c.run = run
	c.log.Debug("activating contact cache")
	go c.loop(run)
}

func (c *Cache) loop(run *activation) {
	defer close(run.done)

	var unsubscribe func()
	defer func() {
		if unsubscribe != nil {
			unsubscribe()
			c.log.Debug("source registration released")
		}
	}()

	for {
		// A failed registration is retried on the next poke, so Refresh can
		// recover a cache that never managed to register.
		if unsubscribe == nil {
			fn, err := c.src.SubscribeToChanges(run.poke)
			if err != nil {
				c.log.Warn("register for contact changes", zap.Error(err))
				c.publish(run, contact.Failure[[]contact.Contact](contact.Unavailable("subscribe to changes", err)))
			} else {
				unsubscribe = fn
			}
		}

		if unsubscribe != nil {
			res := c.src.ListContacts(run.ctx)
			switch {
			case contact.IsCancellation(res.Err):
				if run.ctx.Err() != nil {
					return
				}
			case res.Err != nil:
				c.log.Warn("query contacts", zap.Error(res.Err))
				c.publish(run, res)
			default:
				c.publish(run, res)
			}
		}

		select {
		case <-run.ctx.Done():
			return
		case <-run.trigger:
		}
	}
}

// publish records res and delivers it to every subscriber, unless run has
// already been replaced.
func (c *Cache) publish(run *activation, res contact.Result[[]contact.Contact]) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.run != run {
		return
	}
	c.last = &res
	c.snapshot.record(res, time.Now())
	for sub := range c.subs {
		sub.offer(res)
	}
}

// unsubscribe detaches sub and arms teardown when it was the last one.
func (c *Cache) unsubscribe(sub *Subscription) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if sub.closed {
		return
	}
	delete(c.subs, sub)
	sub.closeLocked()

	if len(c.subs) > 0 || c.run == nil || c.closed {
		return
	}
	c.epoch++
	epoch := c.epoch
	c.teardown = time.AfterFunc(c.grace, func() { c.expire(epoch) })
	c.log.Debug("teardown armed", zap.Duration("grace", c.grace))
}

// expire ends the registration cycle if nothing happened since the teardown
// for epoch was armed.
func (c *Cache) expire(epoch uint64) {
	c.mu.Lock()
	if epoch != c.epoch || len(c.subs) > 0 || c.run == nil {
		c.mu.Unlock()
		return
	}
	run := c.run
	c.run = nil
	c.last = nil
	c.teardown = nil
	c.mu.Unlock()

	c.log.Debug("grace window elapsed, deactivating contact cache")
	run.cancel()
	<-run.done
}

// Subscription is one attached reader of a Cache.
type Subscription struct {
	cache  *Cache
	ch     chan contact.Result[[]contact.Contact]
	closed bool // guarded by cache.mu
}

// C delivers emissions in order. A subscriber that falls behind only sees the
// newest value. Received lists are shared and must not be modified. The
// channel is closed by Close.
func (s *Subscription) C() <-chan contact.Result[[]contact.Contact] {
	return s.ch
}

// Close detaches the subscription. Safe to call more than once.
func (s *Subscription) Close() {
	s.cache.unsubscribe(s)
}

// offer replaces any undelivered value with v. Only the cache sends, always
// under cache.mu, so the send after draining cannot block.
func (s *Subscription) offer(v contact.Result[[]contact.Contact]) {
	if s.closed {
		return
	}
	select {
	case <-s.ch:
	default:
	}
	s.ch <- v
}

func (s *Subscription) closeLocked() {
	if s.closed {
		return
	}
	s.closed = true
	close(s.ch)
}
