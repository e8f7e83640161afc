// Package dslconfig builds fluent configuration DSLs from declarations.
//
// A Schema declares named entry points. Configure runs a callback against a
// Builder bound to a fresh tree; the callback calls entry points by name and
// the finished tree (plain maps, slices and scalars) is returned through a
// Future.
//
// Declaration forms:
//   - Value(name): tree[name] = v, optional Default(v).
//   - List(name): tree[name] = append(tree[name], v).
//   - Sublist(name): the whole tree becomes a slice; calls append to it.
//   - Mapping(name): tree[name][key] = v.
//   - Submapping(name): tree[key] = v.
//
// With Nested(template), an entry takes a callback instead of a value and runs
// it against a fresh instance of the template. Mapping and Submapping entries
// reuse the instance when called again with the same key, merging the calls.
//
// Callbacks may be plain (func(*Builder), func(*Builder) error), deferred
// (func(*Builder) *Future) or step sequences (func(*Builder) Steps). The
// returned Future is already settled when everything ran synchronously.
//
// Design policy:
//   - Schemas are templates: they hold declarations only and are sealed once
//     configured or nested. Clone derives an extensible copy.
//   - Failures are never recovered: the first error at any depth rejects the
//     outermost Configure, and no tree is delivered.
//   - A Builder belongs to a single logical thread of control.
//
// Example
//
//	person := dslconfig.New().Value("age")
//	s := dslconfig.New().
//	    Value("name", dslconfig.Default("default1")).
//	    List("tags").
//	    Mapping("people", dslconfig.Nested(person))
//
//	tree, err := s.Load(ctx, func(d *dslconfig.Builder) error {
//	    d.Set("tags", "a").Set("tags", "b")
//	    d.SubKey("people", "bob", func(p *dslconfig.Builder) { p.Set("age", 5) })
//	    d.SubKey("people", "bob", func(p *dslconfig.Builder) { p.Set("age", 6) })
//	    return d.Err()
//	})
//	// tree: {"name": "default1", "tags": ["a", "b"], "people": {"bob": {"age": 6}}}
//
// Schemas can also be declared from YAML or JSON documents with the schemafile
// package.
package dslconfig
