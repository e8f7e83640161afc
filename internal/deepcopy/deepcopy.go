// Package deepcopy produces structurally independent copies of default values.
package deepcopy

import "github.com/mitchellh/copystructure"

// Clone returns a copy of v that shares no mutable substructure with it.
// Maps, slices, pointers and structs are copied recursively; nil stays nil.
func Clone(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	return copystructure.Copy(v)
}
