package dslconfig_test

import (
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reoring/dslconfig"
)

func jsonSchemaOf(t *testing.T, s *dslconfig.Schema) string {
	t.Helper()
	sch, err := s.JSONSchema()
	require.NoError(t, err)
	b, err := json.Marshal(sch)
	require.NoError(t, err)
	return string(b)
}

func TestJSONSchema_Object(t *testing.T) {
	person := dslconfig.New().Value("age")
	s := dslconfig.New().
		Value("name", dslconfig.Default("default1")).
		Value("note").
		List("servers", dslconfig.Method("server")).
		Mapping("people", dslconfig.Nested(person))

	assert.JSONEq(t, `{
		"type": "object",
		"additionalProperties": false,
		"required": ["name", "people", "servers"],
		"properties": {
			"name": {"default": "default1"},
			"note": {},
			"servers": {"type": "array", "default": [], "$comment": "filled by server"},
			"people": {
				"type": "object",
				"default": {},
				"additionalProperties": {"type": "object", "additionalProperties": false, "properties": {"age": {}}}
			}
		}
	}`, jsonSchemaOf(t, s))
}

func TestJSONSchema_SublistAndSubmapping(t *testing.T) {
	a := dslconfig.New().Value("a")
	b := dslconfig.New().Value("b")
	list := dslconfig.New().Sublist("a", dslconfig.Nested(a)).Sublist("b", dslconfig.Nested(b))
	assert.JSONEq(t, `{
		"type": "array",
		"default": [],
		"items": {"anyOf": [
			{"type": "object", "additionalProperties": false, "properties": {"a": {}}},
			{"type": "object", "additionalProperties": false, "properties": {"b": {}}}
		]}
	}`, jsonSchemaOf(t, list))

	m := dslconfig.New().Submapping("x")
	assert.JSONEq(t, `{"type": "object", "additionalProperties": {}}`, jsonSchemaOf(t, m))
}

func TestJSONSchema_Recursive(t *testing.T) {
	node := dslconfig.New().Value("name")
	node.List("children", dslconfig.Nested(node))
	assert.JSONEq(t, `{
		"type": "object",
		"additionalProperties": false,
		"required": ["children"],
		"properties": {"name": {}, "children": {"type": "array", "default": [], "items": {}}}
	}`, jsonSchemaOf(t, node))
}
