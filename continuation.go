package dslconfig

import (
	"fmt"
	"iter"
)

// Steps is a suspendable step sequence. Each yielded Future is awaited before
// the sequence resumes; yielding a non-nil error fails the sequence. The
// sequence completes when it returns.
//
//	func(d *dslconfig.Builder) dslconfig.Steps {
//		return func(yield func(*dslconfig.Future, error) bool) {
//			if !yield(d.Sub("server", configureServer), nil) {
//				return
//			}
//			d.Set("name", "edge")
//		}
//	}
type Steps = iter.Seq2[*Future, error]

// Callback is the configuration callback run against a builder. It must be
// one of:
//
//	func(*Builder)
//	func(*Builder) error
//	func(*Builder) *Future
//	func(*Builder) Steps
//
// Any other value fails with a ConventionError.
type Callback any

// continuation is the normalized form of every accepted Callback.
type continuation func(d *Builder) *Future

func continuationOf(cb Callback, path string) (continuation, error) {
	switch fn := cb.(type) {
	case func(*Builder):
		if fn == nil {
			break
		}
		return func(d *Builder) *Future {
			fn(d)
			return Resolved(nil)
		}, nil
	case func(*Builder) error:
		if fn == nil {
			break
		}
		return func(d *Builder) *Future {
			if err := fn(d); err != nil {
				return Rejected(err)
			}
			return Resolved(nil)
		}, nil
	case func(*Builder) *Future:
		if fn == nil {
			break
		}
		return func(d *Builder) *Future {
			if f := fn(d); f != nil {
				return f
			}
			return Resolved(nil)
		}, nil
	case func(*Builder) Steps:
		if fn == nil {
			break
		}
		return func(d *Builder) *Future { return pump(fn(d)) }, nil
	}
	return nil, &ConventionError{Path: path, Type: fmt.Sprintf("%T", cb)}
}

// pump drives a step sequence. Settled futures are consumed in a loop on the
// calling goroutine; a pending one suspends the sequence until it settles.
func pump(seq Steps) *Future {
	if seq == nil {
		return Resolved(nil)
	}
	next, stop := iter.Pull2(seq)
	out := newFuture()
	finish := func(err error) {
		stop()
		out.settle(nil, err)
	}
	var step func()
	step = func() {
		for {
			f, err, ok := next()
			switch {
			case !ok:
				finish(nil)
				return
			case err != nil:
				finish(err)
				return
			case f == nil:
				continue
			case !f.Ready():
				f.onSettle(func(_ any, ferr error) {
					if ferr != nil {
						finish(ferr)
						return
					}
					step()
				})
				return
			}
			if ferr := f.Err(); ferr != nil {
				finish(ferr)
				return
			}
		}
	}
	step()
	return out
}

// run executes cb against d. The result resolves to d after cb and every
// nested call it started have completed, in call order.
func (d *Builder) run(cb Callback) *Future {
	cont, err := continuationOf(cb, d.path)
	if err != nil {
		d.fail(err)
		return Rejected(err)
	}
	return cont(d).Then(func(any) (any, error) { return d.drain(0), nil })
}

// drain waits for the nested calls recorded on d starting at index i.
func (d *Builder) drain(i int) *Future {
	if d.err != nil {
		return Rejected(d.err)
	}
	for ; i < len(d.pending); i++ {
		p := d.pending[i]
		if !p.Ready() {
			next := i + 1
			return p.Then(func(any) (any, error) { return d.drain(next), nil })
		}
		if err := p.Err(); err != nil {
			return Rejected(err)
		}
	}
	return Resolved(d)
}
