package dslconfig

import (
	"sync"

	"github.com/hashicorp/go-multierror"

	"github.com/reoring/dslconfig/internal/deepcopy"
)

type kind int

const (
	kindValue kind = iota
	kindList
	kindSublist
	kindMapping
	kindSubmapping
)

func (k kind) String() string {
	switch k {
	case kindValue:
		return "value"
	case kindList:
		return "list"
	case kindSublist:
		return "sublist"
	case kindMapping:
		return "mapping"
	case kindSubmapping:
		return "submapping"
	}
	return "unknown"
}

func (k kind) keyed() bool { return k == kindMapping || k == kindSubmapping }

type shape int

const (
	shapeMap shape = iota
	shapeList
)

// entry is the handler record behind one builder method.
type entry struct {
	kind       kind
	method     string // builder method name
	slot       string // tree key for value/list/mapping
	def        any
	hasDefault bool
	defNested  bool
	nested     *Schema
}

// Schema holds entry-point declarations. It never holds a configuration tree:
// every Configure call and every nested entry call works on a fresh instance
// seeded from the declarations, so one Schema can serve as a template for any
// number of trees.
//
// A Schema becomes sealed once it is configured or passed to Nested of another
// schema. Sealed schemas reject further declarations; use Clone to derive a
// new one.
type Schema struct {
	mu      sync.RWMutex
	entries map[string]*entry
	order   []string // method names in declaration order
	shape   shape
	sealed  bool
	errs    *multierror.Error
}

// New creates an empty mapping-shaped schema.
func New() *Schema {
	return &Schema{entries: map[string]*entry{}}
}

// EntryOption customizes a single declaration.
type EntryOption func(*entryOptions)

type entryOptions struct {
	def        any
	hasDefault bool
	defNested  bool
	nested     *Schema
	hasNested  bool
	method     string
}

// Default seeds a value entry with v. The value is deep-cloned at declaration
// and again for every instance, so neither the caller nor sibling trees observe
// each other's mutations.
func Default(v any) EntryOption {
	return func(o *entryOptions) { o.def, o.hasDefault = v, true }
}

// Nested makes the entry take a callback run against a fresh instance of
// template. The template is sealed by the declaration, unless it is the
// declaring schema itself.
func Nested(template *Schema) EntryOption {
	return func(o *entryOptions) { o.nested, o.hasNested = template, true }
}

// DefaultNested seeds a nested value entry with the nested schema's default
// tree, so the slot is present even when the entry is never called.
func DefaultNested() EntryOption {
	return func(o *entryOptions) { o.defNested = true }
}

// Method names the builder method of a list or mapping entry when it differs
// from the tree slot (for example a "servers" slot filled by "server" calls).
func Method(name string) EntryOption {
	return func(o *entryOptions) { o.method = name }
}

// Value declares a scalar entry stored at tree[name].
func (s *Schema) Value(name string, opts ...EntryOption) *Schema {
	return s.declare(kindValue, name, opts)
}

// List declares a list entry stored at tree[name]; each call appends one
// element.
func (s *Schema) List(name string, opts ...EntryOption) *Schema {
	return s.declare(kindList, name, opts)
}

// Sublist declares a flattening list entry. The schema's own tree becomes a
// sequence at declaration time and every call appends to it directly; several
// sublist entries interleave in call order.
func (s *Schema) Sublist(name string, opts ...EntryOption) *Schema {
	return s.declare(kindSublist, name, opts)
}

// Mapping declares a keyed entry stored at tree[name][key].
func (s *Schema) Mapping(name string, opts ...EntryOption) *Schema {
	return s.declare(kindMapping, name, opts)
}

// Submapping declares a flattening keyed entry writing tree[key] directly.
func (s *Schema) Submapping(name string, opts ...EntryOption) *Schema {
	return s.declare(kindSubmapping, name, opts)
}

func (s *Schema) declare(k kind, name string, opts []EntryOption) *Schema {
	var o entryOptions
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.check(k, name, &o); err != nil {
		s.errs = multierror.Append(s.errs, err)
		return s
	}

	e := &entry{kind: k, method: name, slot: name, nested: o.nested, defNested: o.defNested}
	if o.method != "" {
		e.method = o.method
	}
	if o.hasDefault {
		def, err := deepcopy.Clone(o.def)
		if err != nil {
			s.errs = multierror.Append(s.errs, declError(name, CodeInvalidDefault, "", err))
			return s
		}
		e.def, e.hasDefault = def, true
	}
	// a self-nested schema stays open until it is configured or nested
	// elsewhere, so recursive entries can be declared in any order
	if o.nested != nil && o.nested != s {
		o.nested.seal()
	}
	if k == kindSublist {
		s.shape = shapeList
	}

	if _, ok := s.entries[e.method]; ok {
		s.forget(e.method)
	}
	s.entries[e.method] = e
	s.order = append(s.order, e.method)
	return s
}

// check validates a declaration against the schema state. Caller holds s.mu.
func (s *Schema) check(k kind, name string, o *entryOptions) error {
	if s.sealed {
		return declError(name, CodeSealed, "clone the schema to extend it", ErrSealed)
	}
	if name == "" {
		return declError(name, CodeInvalidName, "", nil)
	}
	if o.method != "" && k != kindList && k != kindMapping {
		return declError(name, CodeInvalidOption, "Method applies to list and mapping entries", nil)
	}
	if o.hasDefault && (k != kindValue || o.hasNested) {
		return declError(name, CodeInvalidOption, "Default applies to plain value entries", nil)
	}
	if o.defNested && (k != kindValue || !o.hasNested) {
		return declError(name, CodeInvalidOption, "DefaultNested applies to nested value entries", nil)
	}
	if o.hasNested {
		if o.nested == nil {
			return declError(name, CodeInvalidNested, "nil template", nil)
		}
		if o.nested == s && o.defNested {
			return declError(name, CodeInvalidNested, "a schema cannot seed itself", nil)
		}
		if o.nested != s {
			if err := o.nested.Err(); err != nil {
				return declError(name, CodeInvalidNested, "template has declaration errors", err)
			}
		}
	}
	switch {
	case k == kindSublist:
		for _, m := range s.order {
			if s.entries[m].kind != kindSublist {
				return declError(name, CodeShapeConflict, "sublist entries cannot be mixed with "+s.entries[m].kind.String()+" entry "+m, nil)
			}
		}
	case s.shape == shapeList:
		return declError(name, CodeShapeConflict, "schema is list-shaped after a sublist declaration", nil)
	}
	return nil
}

// forget drops method from the declaration order. Caller holds s.mu.
func (s *Schema) forget(method string) {
	for i, m := range s.order {
		if m == method {
			s.order = append(s.order[:i], s.order[i+1:]...)
			return
		}
	}
}

func (s *Schema) seal() {
	s.mu.Lock()
	s.sealed = true
	s.mu.Unlock()
}

// Sealed reports whether the schema rejects further declarations.
func (s *Schema) Sealed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sealed
}

// Err returns every declaration error recorded so far, aggregated, or nil.
func (s *Schema) Err() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.errs.ErrorOrNil()
}

// Entries lists the builder method names in declaration order.
func (s *Schema) Entries() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.order...)
}

// Clone returns an unsealed copy of the declarations. Entry records are shared
// by reference since they are never mutated after declaration; nested
// templates stay shared and sealed.
func (s *Schema) Clone() *Schema {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := &Schema{
		entries: make(map[string]*entry, len(s.entries)),
		order:   append([]string(nil), s.order...),
		shape:   s.shape,
	}
	for m, e := range s.entries {
		out.entries[m] = e
	}
	if s.errs != nil {
		out.errs = multierror.Append(nil, s.errs.Errors...)
	}
	return out
}
