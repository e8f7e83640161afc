package dslconfig

import (
	"strconv"

	"github.com/rs/zerolog"

	"github.com/reoring/dslconfig/internal/deepcopy"
)

// Tree containers are kept internal until materialization so that nested
// instances can keep mutating their own tree after being placed in a parent.
type (
	mapSlot  map[string]any
	listSlot struct{ items []any }
)

// Builder is the builder surface bound to one instance tree. Entry points are
// invoked by their declared method name. Plain calls return the same Builder
// for chaining; nested calls return a Future resolving to the same Builder.
//
// A Builder is not safe for concurrent use. Calls made after a failure are
// no-ops that report the first failure.
type Builder struct {
	entries map[string]*entry
	shape   shape
	fields  mapSlot
	items   []any

	parent *Builder
	origin *entry // entry of parent that created this instance
	path   string

	pending []*Future
	last    *Future // latest run against this instance
	err     error
	log     zerolog.Logger
}

// instantiate creates a fresh instance seeded with the declared defaults.
func (s *Schema) instantiate(log zerolog.Logger, path string, parent *Builder, origin *entry) (*Builder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	d := &Builder{
		entries: s.entries,
		shape:   s.shape,
		parent:  parent,
		origin:  origin,
		path:    path,
		log:     log,
	}
	if s.shape == shapeList {
		d.items = []any{}
		return d, nil
	}
	d.fields = mapSlot{}
	for _, m := range s.order {
		e := s.entries[m]
		switch e.kind {
		case kindValue:
			switch {
			case e.hasDefault:
				v, err := deepcopy.Clone(e.def)
				if err != nil {
					return nil, declError(e.method, CodeInvalidDefault, "", err)
				}
				d.fields[e.slot] = v
			case e.defNested:
				child, err := e.nested.instantiate(log, path+"/"+e.slot, d, e)
				if err != nil {
					return nil, err
				}
				d.fields[e.slot] = child
			}
		case kindList:
			d.fields[e.slot] = &listSlot{items: []any{}}
		case kindMapping:
			d.fields[e.slot] = mapSlot{}
		}
	}
	return d, nil
}

// Err returns the first failure recorded on this builder.
func (d *Builder) Err() error { return d.err }

// Path returns the pointer-style location of this builder's tree ("" for the root).
func (d *Builder) Path() string { return d.path }

func (d *Builder) fail(err error) {
	if d.err == nil {
		d.err = err
	}
}

// lookup resolves method and checks the calling form against its declaration.
func (d *Builder) lookup(method string, nested, keyed bool) (*entry, error) {
	e, ok := d.entries[method]
	if !ok {
		return nil, callError(d.path, method, CodeUnknownEntry)
	}
	switch {
	case nested && e.nested == nil:
		return nil, callError(d.path, method, CodePlainEntry)
	case !nested && e.nested != nil:
		return nil, callError(d.path, method, CodeNestedEntry)
	case keyed && !e.kind.keyed():
		return nil, callError(d.path, method, CodeUnkeyedEntry)
	case !keyed && e.kind.keyed():
		return nil, callError(d.path, method, CodeKeyedEntry)
	}
	return e, nil
}

// Set calls a plain value, list or sublist entry: a value entry stores v,
// list and sublist entries append it.
func (d *Builder) Set(method string, v any) *Builder {
	if d.err != nil {
		return d
	}
	e, err := d.lookup(method, false, false)
	if err != nil {
		d.fail(err)
		return d
	}
	switch e.kind {
	case kindValue:
		d.fields[e.slot] = v
	case kindList:
		ls := d.list(e.slot)
		ls.items = append(ls.items, v)
	case kindSublist:
		d.items = append(d.items, v)
	}
	d.log.Debug().Str("path", d.path).Str("entry", method).Str("kind", e.kind.String()).Msg("set")
	return d
}

// SetKey calls a plain mapping or submapping entry, storing v under key.
func (d *Builder) SetKey(method, key string, v any) *Builder {
	if d.err != nil {
		return d
	}
	e, err := d.lookup(method, false, true)
	if err != nil {
		d.fail(err)
		return d
	}
	d.mapping(e)[key] = v
	d.log.Debug().Str("path", d.path).Str("entry", method).Str("key", key).Msg("set key")
	return d
}

// Sub calls a nested value, list or sublist entry. A fresh instance of the
// nested schema is placed in the tree at call time, then cb runs against it.
// The returned Future resolves to d once cb and everything it started have
// completed.
func (d *Builder) Sub(method string, cb Callback) *Future {
	if d.err != nil {
		return Rejected(d.err)
	}
	e, err := d.lookup(method, true, false)
	if err != nil {
		d.fail(err)
		return Rejected(err)
	}
	var (
		path  string
		place func(*Builder)
	)
	switch e.kind {
	case kindValue:
		path = d.path + "/" + e.slot
		place = func(c *Builder) { d.fields[e.slot] = c }
	case kindList:
		ls := d.list(e.slot)
		path = d.path + "/" + e.slot + "/" + strconv.Itoa(len(ls.items))
		place = func(c *Builder) { ls.items = append(ls.items, c) }
	case kindSublist:
		path = d.path + "/" + strconv.Itoa(len(d.items))
		place = func(c *Builder) { d.items = append(d.items, c) }
	}
	child, err := e.nested.instantiate(d.log, path, d, e)
	if err != nil {
		d.fail(err)
		return Rejected(err)
	}
	place(child)
	return d.start(method, child, cb)
}

// SubKey calls a nested mapping or submapping entry. Repeated calls with the
// same key on the same builder reuse the instance created by the first call,
// so their mutations merge into one nested tree.
func (d *Builder) SubKey(method, key string, cb Callback) *Future {
	if d.err != nil {
		return Rejected(d.err)
	}
	e, err := d.lookup(method, true, true)
	if err != nil {
		d.fail(err)
		return Rejected(err)
	}
	m := d.mapping(e)
	child, ok := m[key].(*Builder)
	if !ok || child.parent != d || child.origin != e {
		path := d.path + "/" + key
		if e.kind == kindMapping {
			path = d.path + "/" + e.slot + "/" + key
		}
		child, err = e.nested.instantiate(d.log, path, d, e)
		if err != nil {
			d.fail(err)
			return Rejected(err)
		}
		m[key] = child
	}
	return d.start(method, child, cb)
}

// start runs cb against child and tracks it until d completes. A child reused
// by a same-key call runs cb only after its previous run has settled, so at
// most one callback touches an instance at a time.
func (d *Builder) start(method string, child *Builder, cb Callback) *Future {
	d.log.Debug().Str("path", child.path).Str("entry", method).Msg("nested call")
	var f *Future
	if prev := child.last; prev != nil && !prev.Ready() {
		f = prev.Then(func(any) (any, error) { return child.run(cb), nil })
	} else {
		f = child.run(cb)
	}
	child.last = f
	d.pending = append(d.pending, f)
	if err := f.Err(); err != nil {
		d.fail(err)
	}
	return f.Then(func(any) (any, error) { return d, nil })
}

func (d *Builder) list(slot string) *listSlot {
	if ls, ok := d.fields[slot].(*listSlot); ok {
		return ls
	}
	ls := &listSlot{items: []any{}}
	d.fields[slot] = ls
	return ls
}

func (d *Builder) mapping(e *entry) mapSlot {
	if e.kind == kindSubmapping {
		return d.fields
	}
	if m, ok := d.fields[e.slot].(mapSlot); ok {
		return m
	}
	m := mapSlot{}
	d.fields[e.slot] = m
	return m
}

// tree materializes the instance into plain maps, slices and scalars.
func (d *Builder) tree() any {
	if d.shape == shapeList {
		return materializeList(d.items)
	}
	return materializeMap(d.fields)
}

func materialize(v any) any {
	switch t := v.(type) {
	case *Builder:
		return t.tree()
	case *listSlot:
		return materializeList(t.items)
	case mapSlot:
		return materializeMap(t)
	default:
		return v
	}
}

func materializeList(items []any) []any {
	out := make([]any, len(items))
	for i, v := range items {
		out[i] = materialize(v)
	}
	return out
}

func materializeMap(m mapSlot) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = materialize(v)
	}
	return out
}
