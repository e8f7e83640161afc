package dslconfig

import (
	"context"
	"sync"
)

// Future is a deferred completion. It settles exactly once, either with a
// value or with an error. A Future produced by a fully synchronous callback is
// already settled when it is returned.
type Future struct {
	done chan struct{}
	once sync.Once
	val  any
	err  error
}

func newFuture() *Future { return &Future{done: make(chan struct{})} }

// Resolved returns a settled Future holding v.
func Resolved(v any) *Future {
	f := newFuture()
	f.settle(v, nil)
	return f
}

// Rejected returns a settled Future holding err.
func Rejected(err error) *Future {
	f := newFuture()
	f.settle(nil, err)
	return f
}

// NewPromise returns a pending Future together with the functions that settle
// it. Only the first call to resolve or reject has an effect.
func NewPromise() (f *Future, resolve func(any), reject func(error)) {
	f = newFuture()
	return f, func(v any) { f.settle(v, nil) }, func(err error) { f.settle(nil, err) }
}

func (f *Future) settle(v any, err error) {
	f.once.Do(func() {
		f.val, f.err = v, err
		close(f.done)
	})
}

// Ready reports whether the Future has settled.
func (f *Future) Ready() bool {
	select {
	case <-f.done:
		return true
	default:
		return false
	}
}

// Done returns a channel closed once the Future settles.
func (f *Future) Done() <-chan struct{} { return f.done }

// Value returns the resolved value, or nil while pending or after rejection.
func (f *Future) Value() any {
	if !f.Ready() {
		return nil
	}
	return f.val
}

// Err returns the rejection error, or nil while pending or after resolution.
func (f *Future) Err() error {
	if !f.Ready() {
		return nil
	}
	return f.err
}

// Builder returns the resolved value as a *Builder. Nested entry calls resolve
// to the builder they were invoked on, so this continues a chain once the
// nested call has completed.
func (f *Future) Builder() *Builder {
	d, _ := f.Value().(*Builder)
	return d
}

// Wait blocks until the Future settles or ctx is done.
func (f *Future) Wait(ctx context.Context) (any, error) {
	select {
	case <-f.done:
		return f.val, f.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Then returns a Future settled with the result of fn applied to f's value.
// A rejection skips fn and passes through unchanged. When fn returns a
// *Future, the returned Future follows it. fn runs immediately when f is
// already settled, so chains over settled futures stay synchronous.
func (f *Future) Then(fn func(any) (any, error)) *Future {
	out := newFuture()
	f.onSettle(func(v any, err error) {
		if err != nil {
			out.settle(nil, err)
			return
		}
		nv, nerr := fn(v)
		if next, ok := nv.(*Future); ok && nerr == nil && next != nil {
			next.onSettle(out.settle)
			return
		}
		out.settle(nv, nerr)
	})
	return out
}

func (f *Future) onSettle(fn func(any, error)) {
	if f.Ready() {
		fn(f.val, f.err)
		return
	}
	go func() {
		<-f.done
		fn(f.val, f.err)
	}()
}
