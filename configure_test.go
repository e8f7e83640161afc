package dslconfig_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reoring/dslconfig"
)

func load(t *testing.T, s *dslconfig.Schema, cb dslconfig.Callback) any {
	t.Helper()
	f := s.Configure(cb)
	require.True(t, f.Ready(), "expected a synchronous result")
	require.NoError(t, f.Err())
	return f.Value()
}

func TestValue_DefaultsToAbsent(t *testing.T) {
	s := dslconfig.New().Value("value1").Value("value2")

	tree := load(t, s, func(*dslconfig.Builder) {})
	assert.Equal(t, map[string]any{}, tree)
}

func TestValue_SetsValues(t *testing.T) {
	s := dslconfig.New().Value("value1").Value("value2")

	tree := load(t, s, func(d *dslconfig.Builder) {
		d.Set("value1", "value1").Set("value2", "value2")
	})
	assert.Equal(t, map[string]any{"value1": "value1", "value2": "value2"}, tree)
}

func TestValue_Default(t *testing.T) {
	s := dslconfig.New().Value("name", dslconfig.Default("default1"))

	assert.Equal(t, map[string]any{"name": "default1"}, load(t, s, func(*dslconfig.Builder) {}))
	assert.Equal(t, map[string]any{"name": "x"}, load(t, s, func(d *dslconfig.Builder) { d.Set("name", "x") }))
}

func TestValue_DefaultIsDeepIndependent(t *testing.T) {
	def := map[string]any{"hosts": []any{"a"}}
	s := dslconfig.New().Value("cfg", dslconfig.Default(def))

	// mutating the declared value later must not leak into trees
	def["hosts"].([]any)[0] = "mutated"

	first := load(t, s, func(*dslconfig.Builder) {}).(map[string]any)
	assert.Equal(t, []any{"a"}, first["cfg"].(map[string]any)["hosts"])

	// nor must mutating one tree leak into the next
	first["cfg"].(map[string]any)["hosts"].([]any)[0] = "changed"
	second := load(t, s, func(*dslconfig.Builder) {}).(map[string]any)
	assert.Equal(t, []any{"a"}, second["cfg"].(map[string]any)["hosts"])
}

func TestList_DefaultsAndOrder(t *testing.T) {
	s := dslconfig.New().List("list1").List("list2")

	assert.Equal(t, map[string]any{"list1": []any{}, "list2": []any{}}, load(t, s, func(*dslconfig.Builder) {}))

	tree := load(t, s, func(d *dslconfig.Builder) {
		d.Set("list1", "value1_1").
			Set("list1", "value1_2").
			Set("list2", "value2_1").
			Set("list2", "value2_2")
	})
	assert.Equal(t, map[string]any{
		"list1": []any{"value1_1", "value1_2"},
		"list2": []any{"value2_1", "value2_2"},
	}, tree)
}

func TestList_MethodName(t *testing.T) {
	s := dslconfig.New().List("servers", dslconfig.Method("server"))

	tree := load(t, s, func(d *dslconfig.Builder) {
		d.Set("server", "a").Set("server", "b")
	})
	assert.Equal(t, map[string]any{"servers": []any{"a", "b"}}, tree)
	assert.Equal(t, []string{"server"}, s.Entries())
}

func TestSublist_ConvertsTreeToSequence(t *testing.T) {
	s := dslconfig.New().Sublist("sublist1").Sublist("sublist2")

	assert.Equal(t, []any{}, load(t, s, func(*dslconfig.Builder) {}))

	tree := load(t, s, func(d *dslconfig.Builder) {
		d.Set("sublist1", "value1_1").
			Set("sublist2", "value2_1").
			Set("sublist1", "value1_2")
	})
	assert.Equal(t, []any{"value1_1", "value2_1", "value1_2"}, tree)
}

func TestMapping_DefaultsAndKeys(t *testing.T) {
	s := dslconfig.New().Mapping("mapping1").Mapping("mapping2")

	assert.Equal(t, map[string]any{"mapping1": map[string]any{}, "mapping2": map[string]any{}}, load(t, s, func(*dslconfig.Builder) {}))

	tree := load(t, s, func(d *dslconfig.Builder) {
		d.SetKey("mapping1", "key1 1", "value1_1").
			SetKey("mapping1", "key1 2", "value1_2").
			SetKey("mapping2", "key2 1", "value2_1")
	})
	assert.Equal(t, map[string]any{
		"mapping1": map[string]any{"key1 1": "value1_1", "key1 2": "value1_2"},
		"mapping2": map[string]any{"key2 1": "value2_1"},
	}, tree)
}

func TestSubmapping_WritesIntoOwningTree(t *testing.T) {
	s := dslconfig.New().Submapping("submapping1").Submapping("submapping2").Value("name")

	tree := load(t, s, func(d *dslconfig.Builder) {
		d.SetKey("submapping1", "key1", "value1").
			SetKey("submapping2", "key2", "value2").
			Set("name", "n")
	})
	assert.Equal(t, map[string]any{"key1": "value1", "key2": "value2", "name": "n"}, tree)
}

func TestNestedValue(t *testing.T) {
	s := dslconfig.New().
		Value("sub1", dslconfig.Nested(dslconfig.New().Value("sub1value1").Value("sub1value2"))).
		Value("sub2", dslconfig.Nested(dslconfig.New().Value("sub2value1")))

	assert.Equal(t, map[string]any{}, load(t, s, func(*dslconfig.Builder) {}))

	tree := load(t, s, func(d *dslconfig.Builder) {
		d.Sub("sub1", func(s1 *dslconfig.Builder) {
			s1.Set("sub1value1", "a").Set("sub1value2", "b")
		}).Builder().Sub("sub2", func(s2 *dslconfig.Builder) {
			s2.Set("sub2value1", "c")
		})
	})
	assert.Equal(t, map[string]any{
		"sub1": map[string]any{"sub1value1": "a", "sub1value2": "b"},
		"sub2": map[string]any{"sub2value1": "c"},
	}, tree)
}

func TestNestedValue_DefaultNested(t *testing.T) {
	inner := dslconfig.New().Value("port", dslconfig.Default(80)).List("hosts")
	s := dslconfig.New().Value("server", dslconfig.Nested(inner), dslconfig.DefaultNested())

	assert.Equal(t, map[string]any{"server": map[string]any{"port": 80, "hosts": []any{}}}, load(t, s, func(*dslconfig.Builder) {}))

	// a call replaces the seeded instance with a fresh one
	tree := load(t, s, func(d *dslconfig.Builder) {
		d.Sub("server", func(b *dslconfig.Builder) { b.Set("hosts", "h1") })
	})
	assert.Equal(t, map[string]any{"server": map[string]any{"port": 80, "hosts": []any{"h1"}}}, tree)
}

func TestNestedList_OneElementPerCall(t *testing.T) {
	item := dslconfig.New().Value("v")
	s := dslconfig.New().List("items", dslconfig.Nested(item))

	tree := load(t, s, func(d *dslconfig.Builder) {
		d.Sub("items", func(b *dslconfig.Builder) { b.Set("v", 1) })
		d.Sub("items", func(b *dslconfig.Builder) { b.Set("v", 2) })
		d.Sub("items", func(b *dslconfig.Builder) {})
	})
	assert.Equal(t, map[string]any{"items": []any{
		map[string]any{"v": 1},
		map[string]any{"v": 2},
		map[string]any{},
	}}, tree)
}

func TestNestedSublist_Interleaves(t *testing.T) {
	a := dslconfig.New().Value("a")
	b := dslconfig.New().Value("b")
	s := dslconfig.New().Sublist("a", dslconfig.Nested(a)).Sublist("b", dslconfig.Nested(b)).Sublist("raw")

	tree := load(t, s, func(d *dslconfig.Builder) {
		d.Sub("a", func(x *dslconfig.Builder) { x.Set("a", 1) })
		d.Set("raw", "r")
		d.Sub("b", func(x *dslconfig.Builder) { x.Set("b", 2) })
	})
	assert.Equal(t, []any{map[string]any{"a": 1}, "r", map[string]any{"b": 2}}, tree)
}

func TestNestedSublist_ListShapedChild(t *testing.T) {
	row := dslconfig.New().Sublist("cell")
	s := dslconfig.New().List("rows", dslconfig.Nested(row))

	tree := load(t, s, func(d *dslconfig.Builder) {
		d.Sub("rows", func(r *dslconfig.Builder) { r.Set("cell", 1).Set("cell", 2) })
		d.Sub("rows", func(r *dslconfig.Builder) {})
	})
	assert.Equal(t, map[string]any{"rows": []any{[]any{1, 2}, []any{}}}, tree)
}

func TestNestedMapping_SameKeyMerges(t *testing.T) {
	person := dslconfig.New().Value("age").Value("email")
	s := dslconfig.New().Mapping("people", dslconfig.Nested(person))

	tree := load(t, s, func(d *dslconfig.Builder) {
		d.SubKey("people", "bob", func(p *dslconfig.Builder) { p.Set("age", 5) })
		d.SubKey("people", "bob", func(p *dslconfig.Builder) { p.Set("age", 6) })
	})
	assert.Equal(t, map[string]any{"people": map[string]any{"bob": map[string]any{"age": 6}}}, tree)

	tree = load(t, s, func(d *dslconfig.Builder) {
		d.SubKey("people", "bob", func(p *dslconfig.Builder) { p.Set("age", 5) })
		d.SubKey("people", "alice", func(p *dslconfig.Builder) { p.Set("age", 7) })
		d.SubKey("people", "bob", func(p *dslconfig.Builder) { p.Set("email", "bob@example.com") })
	})
	assert.Equal(t, map[string]any{"people": map[string]any{
		"bob":   map[string]any{"age": 5, "email": "bob@example.com"},
		"alice": map[string]any{"age": 7},
	}}, tree)
}

func TestNestedSubmapping_PlainOverwriteStartsFresh(t *testing.T) {
	svc := dslconfig.New().Value("image").Value("replicas")
	s := dslconfig.New().
		Submapping("service", dslconfig.Nested(svc)).
		Submapping("raw")

	tree := load(t, s, func(d *dslconfig.Builder) {
		d.SubKey("service", "web", func(b *dslconfig.Builder) { b.Set("image", "nginx") })
		d.SetKey("raw", "web", "x")
		d.SubKey("service", "web", func(b *dslconfig.Builder) { b.Set("replicas", 2) })
	})
	assert.Equal(t, map[string]any{"web": map[string]any{"replicas": 2}}, tree)
}

func TestNestedSubmapping_SameKeyMerges(t *testing.T) {
	svc := dslconfig.New().Value("image").List("ports")
	s := dslconfig.New().Submapping("service", dslconfig.Nested(svc))

	tree := load(t, s, func(d *dslconfig.Builder) {
		d.SubKey("service", "web", func(b *dslconfig.Builder) { b.Set("image", "nginx").Set("ports", 80) })
		d.SubKey("service", "db", func(b *dslconfig.Builder) { b.Set("image", "postgres") })
		d.SubKey("service", "web", func(b *dslconfig.Builder) { b.Set("ports", 443) })
	})
	assert.Equal(t, map[string]any{
		"web": map[string]any{"image": "nginx", "ports": []any{80, 443}},
		"db":  map[string]any{"image": "postgres", "ports": []any{}},
	}, tree)
}

func TestConfigure_TwiceIsIndependent(t *testing.T) {
	tmpl := dslconfig.New().List("tags").Mapping("labels")
	s := tmpl.Clone()

	first := load(t, s, func(d *dslconfig.Builder) { d.Set("tags", "a").SetKey("labels", "k", "v") })
	second := load(t, s, func(d *dslconfig.Builder) { d.Set("tags", "b") })

	assert.Equal(t, map[string]any{"tags": []any{"a"}, "labels": map[string]any{"k": "v"}}, first)
	assert.Equal(t, map[string]any{"tags": []any{"b"}, "labels": map[string]any{}}, second)
}

func TestLoad(t *testing.T) {
	s := dslconfig.New().Value("name")

	tree, err := s.Load(context.Background(), func(d *dslconfig.Builder) error {
		d.Set("name", "n")
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"name": "n"}, tree)
}

func TestConfigure_SealsSchema(t *testing.T) {
	s := dslconfig.New().Value("a")
	load(t, s, func(*dslconfig.Builder) {})
	assert.True(t, s.Sealed())

	s.Value("b")
	require.Error(t, s.Err())
	assert.ErrorIs(t, s.Err(), dslconfig.ErrSealed)
}
