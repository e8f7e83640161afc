package dslconfig

import (
	"context"

	"github.com/rs/zerolog"
)

// ConfigureOption customizes a Configure call.
type ConfigureOption func(*configureOptions)

type configureOptions struct {
	log zerolog.Logger
}

// WithLogger routes entry calls and continuation lifecycle events to log.
// Every event is logged at debug level.
func WithLogger(log zerolog.Logger) ConfigureOption {
	return func(o *configureOptions) { o.log = log }
}

func newConfigureOptions(opts []ConfigureOption) configureOptions {
	o := configureOptions{log: zerolog.Nop()}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return o
}

// Configure runs cb against a fresh instance of the schema and returns a
// Future of the finished tree: a map[string]any, or a []any for schemas
// declared with Sublist. The Future is already settled when cb and every
// nested callback it triggered completed synchronously.
//
// Any failure, at any nesting depth, rejects the Future with that error and no
// tree is delivered. The schema is sealed by the call.
func (s *Schema) Configure(cb Callback, opts ...ConfigureOption) *Future {
	o := newConfigureOptions(opts)
	if err := s.Err(); err != nil {
		return Rejected(err)
	}
	s.seal()
	d, err := s.instantiate(o.log, "", nil, nil)
	if err != nil {
		return Rejected(err)
	}
	o.log.Debug().Int("entries", len(d.entries)).Msg("configure")
	f := d.run(cb).Then(func(any) (any, error) { return d.tree(), nil })
	f.onSettle(func(_ any, err error) {
		if err != nil {
			o.log.Debug().Err(err).Msg("configure failed")
			return
		}
		o.log.Debug().Msg("configured")
	})
	return f
}

// Load is Configure followed by Wait.
func (s *Schema) Load(ctx context.Context, cb Callback, opts ...ConfigureOption) (any, error) {
	return s.Configure(cb, opts...).Wait(ctx)
}
