package clip

import (
	"fmt"
	"strings"
)

// ErrorKind classifies everything a parse can report. User-input kinds are
// carried by ParseError; ArgumentNotFound and KindInvalidSpec mark developer
// errors and are never produced for bad input.
type ErrorKind string

const (
	// KindInvalidSpec marks a malformed AppSpec detected by Build.
	KindInvalidSpec ErrorKind = "invalid_spec"
	// KindArgumentNotFound marks a matches query for an id never declared.
	KindArgumentNotFound ErrorKind = "argument_not_found"

	KindUnknownArgument         ErrorKind = "unknown_argument"
	KindMissingRequiredArgument ErrorKind = "missing_required_argument"
	KindArgumentConflict        ErrorKind = "argument_conflict"
	KindWrongNumberOfValues     ErrorKind = "wrong_number_of_values"
	KindInvalidValue            ErrorKind = "invalid_value"
	KindInvalidSubcommand       ErrorKind = "invalid_subcommand"
	KindEmptyValue              ErrorKind = "empty_value"
	KindValueValidationFailure  ErrorKind = "value_validation_failure"
	KindTooManyOccurrences      ErrorKind = "too_many_occurrences"
	KindInvalidUTF8             ErrorKind = "invalid_utf8"
)

// ParseError is the typed user-input error returned by Parse. Message
// rendering for end users is delegated to the format package; Error()
// produces a plain diagnostic.
//
// The validator aggregates independent violations into a single ParseError
// whose Violations() lists every finding; the aggregate's Kind/Name mirror
// the first one.
type ParseError struct {
	Kind       ErrorKind
	Name       string // offending argument, group, or subcommand name
	Other      string // second party of a conflict, or the missing dependency
	Value      string // offending captured value, when applicable
	Suggestion string // closest known name, empty when none within threshold
	Message    string

	reported []*ParseError
}

func (e *ParseError) Error() string {
	if len(e.reported) > 0 {
		parts := make([]string, len(e.reported))
		for i, v := range e.reported {
			parts[i] = v.Error()
		}
		return strings.Join(parts, "; ")
	}
	if e.Message != "" {
		return e.Message
	}
	return string(e.Kind)
}

// Unwrap exposes aggregated violations to errors.Is/errors.As.
func (e *ParseError) Unwrap() []error {
	errs := make([]error, len(e.reported))
	for i, v := range e.reported {
		errs[i] = v
	}
	return errs
}

// Violations returns every independent finding in this error. A non-aggregate
// error reports itself.
func (e *ParseError) Violations() []*ParseError {
	if len(e.reported) == 0 {
		return []*ParseError{e}
	}
	return e.reported
}

// aggregate folds validator findings into one report. One finding passes
// through untouched; several are carried together under the first one's kind.
func aggregate(violations []*ParseError) error {
	switch len(violations) {
	case 0:
		return nil
	case 1:
		return violations[0]
	}
	return &ParseError{
		Kind:     violations[0].Kind,
		Name:     violations[0].Name,
		reported: violations,
	}
}

// SpecError reports a developer error: a malformed spec caught by Build, or a
// matches query against an undeclared id. It is never returned for bad user
// input and is never downgraded to a ParseError.
type SpecError struct {
	Kind    ErrorKind
	Message string
}

func (e *SpecError) Error() string {
	return e.Message
}

func specErrorf(format string, args ...any) *SpecError {
	return &SpecError{Kind: KindInvalidSpec, Message: fmt.Sprintf(format, args...)}
}

// RequestKind distinguishes the two terminal request outcomes.
type RequestKind string

const (
	HelpRequest    RequestKind = "help"
	VersionRequest RequestKind = "version"
)

// Request is the terminal outcome produced when an auto-injected help or
// version argument is matched. It is distinct from both success and a
// ParseError: the caller is expected to render help/version for Path and
// exit zero. It implements error so Parse keeps a two-value signature.
type Request struct {
	Kind RequestKind
	Path []string // command chain from the root, e.g. ["myapp", "run"]
}

func (r *Request) Error() string {
	return string(r.Kind) + " requested for " + strings.Join(r.Path, " ")
}

// HelpRequested reports whether err is a help request.
func HelpRequested(err error) bool {
	r, ok := err.(*Request)
	return ok && r.Kind == HelpRequest
}

// VersionRequested reports whether err is a version request.
func VersionRequested(err error) bool {
	r, ok := err.(*Request)
	return ok && r.Kind == VersionRequest
}
