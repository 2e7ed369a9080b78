package gamecache

import "context"

// Loader runs the cache bootstrap in the background.
type Loader struct {
	ready chan struct{}
	m     *Manager
	err   error
}

// Load opens the cache in dir on a new goroutine. The returned Loader's
// Ready channel is closed once bootstrap has finished, successfully or not.
// Cancelling ctx aborts bootstrap between steps.
func Load(ctx context.Context, dir string, opts ...Option) *Loader {
	l := &Loader{ready: make(chan struct{})}
	go func() {
		defer close(l.ready)
		l.m, l.err = open(ctx, dir, opts)
	}()
	return l
}

// Ready returns a channel that is closed when bootstrap finishes.
func (l *Loader) Ready() <-chan struct{} {
	return l.ready
}

// Wait blocks until bootstrap finishes or ctx is done.
func (l *Loader) Wait(ctx context.Context) (*Manager, error) {
	select {
	case <-l.ready:
		return l.m, l.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Err returns ErrNotReady while bootstrap is running and its result after.
func (l *Loader) Err() error {
	select {
	case <-l.ready:
		return l.err
	default:
		return ErrNotReady
	}
}
