package view

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/ShayOinif/Contacts/internal/state"
)

// DefaultDebounce is the quiet period a query must survive before it is applied.
const DefaultDebounce = 300 * time.Millisecond

// Stream is the shared contact stream the views read from.
type Stream interface {
	Subscribe() *state.Subscription
}

// Options configure the views.
type Options struct {
	// Debounce applies to query changes in Contacts. Zero uses
	// DefaultDebounce; negative disables debouncing.
	Debounce time.Duration
	Logger   *zap.Logger
}

func (o Options) debounce() time.Duration {
	switch {
	case o.Debounce == 0:
		return DefaultDebounce
	case o.Debounce < 0:
		return 0
	default:
		return o.Debounce
	}
}

func (o Options) logger() *zap.Logger {
	if o.Logger == nil {
		return zap.NewNop()
	}
	return o.Logger
}

// emit sends v on out unless ctx ends first.
func emit[T any](ctx context.Context, out chan<- T, v T) bool {
	select {
	case out <- v:
		return true
	case <-ctx.Done():
		return false
	}
}
