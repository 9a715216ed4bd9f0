package errors

import (
	"fmt"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseParse    Phase = "parse"    // lexing and tree construction
	PhaseResolve  Phase = "resolve"  // type reference resolution
	PhaseGenerate Phase = "generate" // target code generation
	PhaseConfig   Phase = "config"   // target selection and options
)

// Kind categorizes the error
type Kind string

const (
	KindSyntax          Kind = "syntax"
	KindUnexpectedEOF   Kind = "unexpected_eof"
	KindUnknownKeyword  Kind = "unknown_keyword"
	KindDisallowedName  Kind = "disallowed_name"
	KindUndefinedType   Kind = "undefined_type"
	KindDuplicateName   Kind = "duplicate_name"
	KindRecursiveRecord Kind = "recursive_record"
	KindUnsupported     Kind = "unsupported"
	KindTypeLookup      Kind = "type_lookup"
	KindRender          Kind = "render"
	KindNotFound        Kind = "not_found"
	KindInvalidInput    Kind = "invalid_input"
	KindSignature       Kind = "signature_mismatch"
)

// Category is the coarse error class a driver maps to an exit code.
type Category string

const (
	CategorySyntax     Category = "syntax"
	CategorySemantic   Category = "semantic"
	CategoryGeneration Category = "generation"
)

// DefaultFile is used when an error has no file name attached.
const DefaultFile = "<text>"

// Error is the structured error type used throughout the compiler
type Error struct {
	Cause  error
	Phase  Phase
	Kind   Kind
	File   string
	Source string // offending source line, if known
	Detail string
	Path   []string
	Line   int
	Column int
}

// Error implements the error interface.
//
// Positioned errors use the "file:line:col: Error: message" form, errors
// without a position use "file: Error: message".
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteString(e.file())
	if e.Line > 0 {
		fmt.Fprintf(&b, ":%d:%d", e.Line, e.Column)
	}
	b.WriteString(": ")
	if e.Category() == CategoryGeneration {
		b.WriteString("Internal ")
	}
	b.WriteString("Error: ")
	if e.Detail != "" {
		b.WriteString(e.Detail)
	} else {
		b.WriteString(string(e.Kind))
	}

	if len(e.Path) > 0 {
		b.WriteString(" (in ")
		b.WriteString(strings.Join(e.Path, "."))
		b.WriteByte(')')
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Render returns the message followed by the offending source line and a
// caret under the error column, when both are known.
func (e *Error) Render() string {
	msg := e.Error()
	if e.Source == "" || e.Line <= 0 {
		return msg
	}
	col := e.Column - 1
	if col < 0 {
		col = 0
	}
	return fmt.Sprintf("%s\n    %s\n    %s^", msg, e.Source, strings.Repeat(" ", col))
}

// Category reports which of the three user-facing error classes this is.
func (e *Error) Category() Category {
	switch e.Phase {
	case PhaseParse:
		return CategorySyntax
	case PhaseResolve:
		return CategorySemantic
	default:
		return CategoryGeneration
	}
}

// WithFile returns a copy of the error attached to a file name.
func (e *Error) WithFile(file string) *Error {
	c := *e
	c.File = file
	return &c
}

func (e *Error) file() string {
	if e.File == "" {
		return DefaultFile
	}
	return e.File
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// At sets the source position (1-based line and column)
func (b *Builder) At(line, column int) *Builder {
	b.err.Line = line
	b.err.Column = column
	return b
}

// File sets the file name
func (b *Builder) File(name string) *Builder {
	b.err.File = name
	return b
}

// Source sets the offending source line
func (b *Builder) Source(line string) *Builder {
	b.err.Source = line
	return b
}

// Path sets the module/function/field path
func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// Syntax creates a positioned syntax error
func Syntax(line, column int, source, format string, args ...any) *Error {
	return New(PhaseParse, KindSyntax).At(line, column).Source(source).Detail(format, args...).Build()
}

// UnexpectedEOF creates an error for input that ends inside a form
func UnexpectedEOF(line, column int, expected string) *Error {
	return &Error{
		Phase:  PhaseParse,
		Kind:   KindUnexpectedEOF,
		Line:   line,
		Column: column,
		Detail: fmt.Sprintf("Unexpected end of input, expected %s", expected),
	}
}

// UnknownKeyword creates an error for an unexpected keyword in member position
func UnknownKeyword(keyword string, line, column int, source string) *Error {
	return &Error{
		Phase:  PhaseParse,
		Kind:   KindUnknownKeyword,
		Line:   line,
		Column: column,
		Source: source,
		Detail: fmt.Sprintf("Unexpected keyword: %q", keyword),
	}
}

// DisallowedName creates an error for an identifier with disallowed characters
func DisallowedName(text string, line, column int, source string) *Error {
	return &Error{
		Phase:  PhaseParse,
		Kind:   KindDisallowedName,
		Line:   line,
		Column: column,
		Source: source,
		Detail: fmt.Sprintf("Disallowed character in name: %q, allowed are: a-z, A-Z, 0-9 and -", text),
	}
}

// UndefinedType creates a semantic error for a type name that resolves to
// neither a record nor an enum. The position is the declaration site.
func UndefinedType(name string, line, column int) *Error {
	return &Error{
		Phase:  PhaseResolve,
		Kind:   KindUndefinedType,
		Line:   line,
		Column: column,
		Detail: fmt.Sprintf("Undefined data type '%s'", name),
	}
}

// DuplicateName creates a semantic error for a name declared twice in one scope
func DuplicateName(what, name string, line, column, prevLine, prevColumn int) *Error {
	return &Error{
		Phase:  PhaseResolve,
		Kind:   KindDuplicateName,
		Line:   line,
		Column: column,
		Detail: fmt.Sprintf("Duplicate %s '%s' (previously declared at %d:%d)", what, name, prevLine, prevColumn),
	}
}

// RecursiveRecord creates a semantic error for a record reference cycle
func RecursiveRecord(cycle []string, line, column int) *Error {
	return &Error{
		Phase:  PhaseResolve,
		Kind:   KindRecursiveRecord,
		Line:   line,
		Column: column,
		Path:   cycle,
		Detail: fmt.Sprintf("Record '%s' contains itself: %s", cycle[0], strings.Join(cycle, " -> ")),
	}
}

// Generation creates a code generation error naming the value involved
func Generation(path []string, format string, args ...any) *Error {
	return &Error{
		Phase:  PhaseGenerate,
		Kind:   KindTypeLookup,
		Path:   path,
		Detail: fmt.Sprintf(format, args...),
	}
}

// Unsupported creates an unsupported operation error
func Unsupported(phase Phase, path []string, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnsupported,
		Path:   path,
		Detail: what,
	}
}

// Render wraps a template execution failure
func Render(what string, cause error) *Error {
	return &Error{
		Phase:  PhaseGenerate,
		Kind:   KindRender,
		Detail: fmt.Sprintf("render %s", what),
		Cause:  cause,
	}
}

// NotFound creates a not-found error
func NotFound(phase Phase, what, name string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotFound,
		Detail: fmt.Sprintf("%s %q not found", what, name),
	}
}

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Detail: detail,
	}
}

// SignatureMismatch creates an error for a guest import whose core wasm
// signature disagrees with the boundary table.
func SignatureMismatch(module, name, want, got string) *Error {
	return &Error{
		Phase:  PhaseGenerate,
		Kind:   KindSignature,
		Path:   []string{module, name},
		Detail: fmt.Sprintf("import %s.%s has signature %s, want %s", module, name, got, want),
	}
}

// List collects several errors found in one pass.
type List struct {
	Errors []*Error
}

// Error joins the member messages one per line.
func (l *List) Error() string {
	msgs := make([]string, 0, len(l.Errors))
	for _, e := range l.Errors {
		msgs = append(msgs, e.Error())
	}
	return strings.Join(msgs, "\n")
}

// Unwrap exposes the members to errors.Is/As.
func (l *List) Unwrap() []error {
	errs := make([]error, 0, len(l.Errors))
	for _, e := range l.Errors {
		errs = append(errs, e)
	}
	return errs
}

// Err returns nil for an empty list, the single error for a list of one, or the list.
func (l *List) Err() error {
	switch len(l.Errors) {
	case 0:
		return nil
	case 1:
		return l.Errors[0]
	default:
		return l
	}
}
