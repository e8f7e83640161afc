// Package schemafile declares dslconfig schemas from YAML or JSON documents.
//
// A document lists entries in declaration order. Nested schemas are either
// inline or refer to a named template declared under "templates" (or passed
// in through Options.Templates):
//
//	templates:
//	  person:
//	    entries:
//	      - {name: age, kind: value}
//	entries:
//	  - {name: name, kind: value, default: default1}
//	  - {name: tags, kind: list}
//	  - {name: people, kind: mapping, schema: {ref: person}}
//
// A template may refer to itself to describe a recursive tree. References
// that loop through other templates are rejected with ErrTemplateCycle.
//
// A null default is the same as no default.
package schemafile

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/go-playground/validator/v10"
	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/reoring/dslconfig"
)

// Document is the top-level schema file.
type Document struct {
	Templates map[string]Definition `json:"templates,omitempty" yaml:"templates,omitempty" validate:"dive"`
	Entries   []Entry               `json:"entries" yaml:"entries" validate:"dive"`
}

// Definition is a named template.
type Definition struct {
	Entries []Entry `json:"entries" yaml:"entries" validate:"dive"`
}

// Entry is one declaration.
type Entry struct {
	Name          string     `json:"name" yaml:"name" validate:"required"`
	Kind          string     `json:"kind" yaml:"kind" validate:"required,oneof=value list sublist mapping submapping"`
	Method        string     `json:"method,omitempty" yaml:"method,omitempty"`
	Default       any        `json:"default,omitempty" yaml:"default,omitempty"`
	DefaultNested bool       `json:"defaultNested,omitempty" yaml:"defaultNested,omitempty"`
	Schema        *SchemaRef `json:"schema,omitempty" yaml:"schema,omitempty"`
}

// SchemaRef is a nested schema, either a template reference or inline entries.
type SchemaRef struct {
	Ref     string  `json:"ref,omitempty" yaml:"ref,omitempty" validate:"required_without=Entries,excluded_with=Entries"`
	Entries []Entry `json:"entries,omitempty" yaml:"entries,omitempty" validate:"dive"`
}

// Options tunes decoding and reference resolution.
type Options struct {
	// Strict rejects unknown document fields.
	Strict bool
	// Templates are additional named templates available to "ref". Templates
	// declared in the document take precedence.
	Templates map[string]*dslconfig.Schema
}

var (
	// ErrUnknownTemplate is returned for a "ref" naming no template.
	ErrUnknownTemplate = errors.New("schemafile: unknown template")
	// ErrTemplateCycle is returned when templates refer to each other in a cycle.
	ErrTemplateCycle = errors.New("schemafile: template reference cycle")
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// ParseYAML decodes a YAML document and builds its schema.
func ParseYAML(data []byte, opts Options) (*dslconfig.Schema, error) {
	doc, err := DecodeYAML(data, opts.Strict)
	if err != nil {
		return nil, err
	}
	return Build(doc, opts)
}

// ParseJSON decodes a JSON document and builds its schema.
func ParseJSON(data []byte, opts Options) (*dslconfig.Schema, error) {
	doc, err := DecodeJSON(data, opts.Strict)
	if err != nil {
		return nil, err
	}
	return Build(doc, opts)
}

// DecodeYAML decodes a YAML document without building it.
func DecodeYAML(data []byte, strict bool) (*Document, error) {
	var doc Document
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(strict)
	if err := dec.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("schemafile: decode yaml: %w", err)
	}
	return &doc, nil
}

// DecodeJSON decodes a JSON document without building it.
func DecodeJSON(data []byte, strict bool) (*Document, error) {
	var doc Document
	dec := json.NewDecoder(bytes.NewReader(data))
	if strict {
		dec.DisallowUnknownFields()
	}
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("schemafile: decode json: %w", err)
	}
	return &doc, nil
}

// Build validates doc and declares its schema. Declaration errors reported by
// dslconfig are returned as is.
func Build(doc *Document, opts Options) (*dslconfig.Schema, error) {
	if err := validate.Struct(doc); err != nil {
		return nil, fmt.Errorf("schemafile: invalid document: %w", err)
	}
	b := &builder{doc: doc, opts: opts, built: map[string]*dslconfig.Schema{}, building: map[string]*dslconfig.Schema{}}
	s, err := b.declare(dslconfig.New(), doc.Entries)
	if err != nil {
		return nil, err
	}
	if err := s.Err(); err != nil {
		return nil, err
	}
	return s, nil
}

type builder struct {
	doc   *Document
	opts  Options
	built map[string]*dslconfig.Schema
	// templates under declaration, innermost last
	building map[string]*dslconfig.Schema
	stack    []string
}

func (b *builder) declare(s *dslconfig.Schema, entries []Entry) (*dslconfig.Schema, error) {
	for _, e := range entries {
		var opts []dslconfig.EntryOption
		if e.Method != "" {
			opts = append(opts, dslconfig.Method(e.Method))
		}
		if e.Default != nil {
			opts = append(opts, dslconfig.Default(e.Default))
		}
		if e.Schema != nil {
			nested, err := b.resolve(e.Schema)
			if err != nil {
				return nil, fmt.Errorf("entry %q: %w", e.Name, err)
			}
			opts = append(opts, dslconfig.Nested(nested))
		}
		if e.DefaultNested {
			opts = append(opts, dslconfig.DefaultNested())
		}
		switch e.Kind {
		case "value":
			s.Value(e.Name, opts...)
		case "list":
			s.List(e.Name, opts...)
		case "sublist":
			s.Sublist(e.Name, opts...)
		case "mapping":
			s.Mapping(e.Name, opts...)
		case "submapping":
			s.Submapping(e.Name, opts...)
		}
	}
	return s, nil
}

func (b *builder) resolve(ref *SchemaRef) (*dslconfig.Schema, error) {
	if ref.Ref == "" {
		return b.declare(dslconfig.New(), ref.Entries)
	}
	if s, ok := b.built[ref.Ref]; ok {
		return s, nil
	}
	def, ok := b.doc.Templates[ref.Ref]
	if !ok {
		if s, ok := b.opts.Templates[ref.Ref]; ok && s != nil {
			return s, nil
		}
		return nil, fmt.Errorf("%w %q", ErrUnknownTemplate, ref.Ref)
	}
	if s, ok := b.building[ref.Ref]; ok {
		// a template may nest itself; a loop through other templates is rejected
		if b.stack[len(b.stack)-1] == ref.Ref {
			return s, nil
		}
		return nil, fmt.Errorf("%w at %q", ErrTemplateCycle, ref.Ref)
	}
	s := dslconfig.New()
	b.building[ref.Ref] = s
	b.stack = append(b.stack, ref.Ref)
	defer func() {
		delete(b.building, ref.Ref)
		b.stack = b.stack[:len(b.stack)-1]
	}()
	if _, err := b.declare(s, def.Entries); err != nil {
		return nil, err
	}
	b.built[ref.Ref] = s
	return s, nil
}
