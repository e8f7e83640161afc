// Package jsonschema holds the JSON Schema subset used to describe the shape of
// configuration trees.
package jsonschema

// Schema is a JSON Schema node. An empty Schema accepts any value.
type Schema struct {
	Type    string `json:"type,omitempty" yaml:"type,omitempty"`
	Default any    `json:"default,omitempty" yaml:"default,omitempty"`
	// Comment records the builder method filling a slot when its name differs
	// from the slot name.
	Comment string `json:"$comment,omitempty" yaml:"$comment,omitempty"`

	// Object
	Properties           map[string]*Schema `json:"properties,omitempty" yaml:"properties,omitempty"`
	Required             []string           `json:"required,omitempty" yaml:"required,omitempty"`
	AdditionalProperties any                `json:"additionalProperties,omitempty" yaml:"additionalProperties,omitempty"`

	// Array
	Items *Schema `json:"items,omitempty" yaml:"items,omitempty"`

	// Union
	AnyOf []*Schema `json:"anyOf,omitempty" yaml:"anyOf,omitempty"`
}

// Any returns the schema accepting every value.
func Any() *Schema { return &Schema{} }
