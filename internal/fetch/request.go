package fetch

import (
	"context"

	"github.com/google/uuid"
)

// Result is the terminal outcome of a Request. Exactly one of Value and Err
// is set.
type Result struct {
	RequestID string
	Value     any
	Err       error
}

// Request is a fetch running in the background. Its result is delivered once
// on Done and the channel is then closed.
type Request struct {
	ID     string
	URL    string
	done   chan Result
	cancel context.CancelFunc
}

// Start issues the request in its own goroutine.
func (f *Fetcher) Start(ctx context.Context, url string) *Request {
	ctx, cancel := context.WithCancel(ctx)
	r := &Request{
		ID:     uuid.NewString(),
		URL:    url,
		done:   make(chan Result, 1),
		cancel: cancel,
	}

	go func() {
		defer cancel()
		value, err := f.do(ctx, r.ID, url)
		r.done <- Result{RequestID: r.ID, Value: value, Err: err}
		close(r.done)
	}()

	return r
}

func (r *Request) Done() <-chan Result {
	return r.done
}

// Cancel aborts the request. The result is still delivered, carrying the
// transport error caused by cancellation if the request had not finished.
func (r *Request) Cancel() {
	r.cancel()
}

// Wait blocks until the result arrives or ctx ends.
func (r *Request) Wait(ctx context.Context) (any, error) {
	select {
	case res := <-r.done:
		return res.Value, res.Err
	case <-ctx.Done():
		r.cancel()
		return nil, &TransportError{Err: ctx.Err()}
	}
}
