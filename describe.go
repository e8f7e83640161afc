package dslconfig

import (
	"sort"

	"github.com/reoring/dslconfig/internal/deepcopy"
	js "github.com/reoring/dslconfig/jsonschema"
)

// JSONSchema describes the shape of the trees Configure produces. Slots that
// are always present (lists, mappings, defaulted values) are required. A
// schema nested in itself is described as accepting any value below the first
// level of recursion.
func (s *Schema) JSONSchema() (*js.Schema, error) {
	if err := s.Err(); err != nil {
		return nil, err
	}
	return s.describe(map[*Schema]bool{})
}

func (s *Schema) describe(visiting map[*Schema]bool) (*js.Schema, error) {
	if visiting[s] {
		return js.Any(), nil
	}
	visiting[s] = true
	defer delete(visiting, s)

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.shape == shapeList {
		out := &js.Schema{Type: "array", Default: []any{}}
		var alts []*js.Schema
		for _, m := range s.order {
			e := s.entries[m]
			if e.nested == nil {
				// a plain sublist entry accepts any element
				return out, nil
			}
			ns, err := e.nested.describe(visiting)
			if err != nil {
				return nil, err
			}
			alts = append(alts, ns)
		}
		switch len(alts) {
		case 0:
		case 1:
			out.Items = alts[0]
		default:
			out.Items = &js.Schema{AnyOf: alts}
		}
		return out, nil
	}

	out := &js.Schema{Type: "object", Properties: map[string]*js.Schema{}, AdditionalProperties: false}
	var extra []*js.Schema
	for _, m := range s.order {
		e := s.entries[m]
		var elem *js.Schema
		if e.nested != nil {
			ns, err := e.nested.describe(visiting)
			if err != nil {
				return nil, err
			}
			elem = ns
		}
		var p *js.Schema
		required := false
		switch e.kind {
		case kindValue:
			p = elem
			if p == nil {
				p = js.Any()
			}
			if e.hasDefault {
				def, err := deepcopy.Clone(e.def)
				if err != nil {
					return nil, declError(e.method, CodeInvalidDefault, "", err)
				}
				p = &js.Schema{Default: def}
			}
			required = e.hasDefault || e.defNested
		case kindList:
			p = &js.Schema{Type: "array", Items: elem, Default: []any{}}
			required = true
		case kindMapping:
			p = &js.Schema{Type: "object", AdditionalProperties: true, Default: map[string]any{}}
			if elem != nil {
				p.AdditionalProperties = elem
			}
			required = true
		case kindSubmapping:
			if elem == nil {
				elem = js.Any()
			}
			extra = append(extra, elem)
			continue
		}
		if e.method != e.slot {
			p.Comment = "filled by " + e.method
		}
		out.Properties[e.slot] = p
		if required {
			out.Required = append(out.Required, e.slot)
		}
	}
	sort.Strings(out.Required)
	switch len(extra) {
	case 0:
	case 1:
		out.AdditionalProperties = extra[0]
	default:
		out.AdditionalProperties = &js.Schema{AnyOf: extra}
	}
	return out, nil
}
