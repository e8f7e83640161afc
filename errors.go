package dslconfig

import (
	"errors"
	"fmt"
	"strings"

	"github.com/hashicorp/go-multierror"

	"github.com/reoring/dslconfig/i18n"
)

// Error codes (exported consts for IDE completion and type safety by convention)
const (
	// Declaration time
	CodeInvalidName    = "invalid_name"
	CodeInvalidOption  = "invalid_option"
	CodeInvalidDefault = "invalid_default"
	CodeInvalidNested  = "invalid_nested"
	CodeShapeConflict  = "shape_conflict"
	CodeSealed         = "sealed"
	// Builder calls
	CodeUnknownEntry = "unknown_entry"
	CodeNestedEntry  = "nested_entry"
	CodePlainEntry   = "plain_entry"
	CodeKeyedEntry   = "keyed_entry"
	CodeUnkeyedEntry = "unkeyed_entry"
	// Callbacks
	CodeConventionMismatch = "convention_mismatch"
)

// ErrSealed is the cause of declarations made on a schema that was already
// used as a nested template or configured.
var ErrSealed = errors.New("dslconfig: schema is sealed")

// DeclarationError reports an invalid schema declaration.
type DeclarationError struct {
	Entry   string // Entry-point name being declared.
	Code    string // One of the declaration codes listed above.
	Message string
	Hint    string // Optional: remediation hints.
	Cause   error  // Optional: underlying error.
}

func (e *DeclarationError) Error() string {
	b := &strings.Builder{}
	fmt.Fprintf(b, "%s at %q: %s", e.Code, e.Entry, e.Message)
	if e.Hint != "" {
		fmt.Fprintf(b, " (%s)", e.Hint)
	}
	if e.Cause != nil {
		fmt.Fprintf(b, ": %v", e.Cause)
	}
	return b.String()
}

func (e *DeclarationError) Unwrap() error { return e.Cause }

func declError(entry, code, hint string, cause error) *DeclarationError {
	return &DeclarationError{Entry: entry, Code: code, Message: i18n.T(code, map[string]string{"entry": entry}), Hint: hint, Cause: cause}
}

// CallError reports a builder call that does not match the declared entry.
type CallError struct {
	Path    string // Pointer-style location of the builder in the tree (for example: /people/bob).
	Entry   string
	Code    string
	Message string
}

func (e *CallError) Error() string {
	path := e.Path
	if path == "" {
		path = "/"
	}
	return fmt.Sprintf("%s at %s: %s %q", e.Code, path, e.Message, e.Entry)
}

func callError(path, entry, code string) *CallError {
	return &CallError{Path: path, Entry: entry, Code: code, Message: i18n.T(code, map[string]string{"entry": entry})}
}

// ConventionError reports a callback whose type is none of the accepted
// calling conventions.
type ConventionError struct {
	Path string
	Type string // Go type of the rejected callback.
}

func (e *ConventionError) Error() string {
	path := e.Path
	if path == "" {
		path = "/"
	}
	return fmt.Sprintf("%s at %s: %s %s", CodeConventionMismatch, path, i18n.T(CodeConventionMismatch, nil), e.Type)
}

// AsDeclarationErrors extracts every DeclarationError carried by err, which may
// be a single error or the aggregate returned by Schema.Err.
func AsDeclarationErrors(err error) []*DeclarationError {
	if err == nil {
		return nil
	}
	errs := []error{err}
	var merr *multierror.Error
	if errors.As(err, &merr) {
		errs = merr.Errors
	}
	var out []*DeclarationError
	for _, e := range errs {
		var de *DeclarationError
		if errors.As(e, &de) {
			out = append(out, de)
		}
	}
	return out
}
