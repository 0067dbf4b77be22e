package asset

import "context"

// Future is a model load in flight.
type Future struct {
	URI string

	done  chan struct{}
	model *Model
	err   error
}

// Go starts loading uri on its own goroutine.
func Go(ctx context.Context, l Loader, uri string) *Future {
	f := &Future{URI: uri, done: make(chan struct{})}
	go func() {
		defer close(f.done)
		f.model, f.err = l.Load(ctx, uri)
	}()
	return f
}

// Resolved returns a future that has already completed.
func Resolved(uri string, m *Model, err error) *Future {
	f := &Future{URI: uri, done: make(chan struct{}), model: m, err: err}
	close(f.done)
	return f
}

func (f *Future) Done() <-chan struct{} { return f.done }

// Ready reports whether the load has completed, without blocking.
func (f *Future) Ready() bool {
	select {
	case <-f.done:
		return true
	default:
		return false
	}
}

// Result blocks until the load completes.
func (f *Future) Result() (*Model, error) {
	<-f.done
	return f.model, f.err
}
