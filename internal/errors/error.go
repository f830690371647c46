package errors

import (
	"bufio"
	stderrors "errors"
	"fmt"
	"os"
	"strings"
)

// Category represents the kind of failure.
type Category string

const (
	CategoryConfig      Category = "config"
	CategoryResolution  Category = "resolution"
	CategoryTransform   Category = "transform"
	CategoryPersistence Category = "persistence"
	CategoryCLI         Category = "cli"
)

// Sentinels for errors.Is matching by category.
var (
	ErrConfiguration = &Error{Category: CategoryConfig, Message: "configuration error"}
	ErrResolution    = &Error{Category: CategoryResolution, Message: "resolution error"}
	ErrTransform     = &Error{Category: CategoryTransform, Message: "transform error"}
	ErrPersistence   = &Error{Category: CategoryPersistence, Message: "persistence error"}
)

// Location represents a position in a source file.
type Location struct {
	File   string
	Line   int
	Column int
}

// String returns the location as a formatted string.
func (l *Location) String() string {
	if l == nil {
		return ""
	}
	if l.Line == 0 {
		return l.File
	}
	if l.Column > 0 {
		return fmt.Sprintf("%s:%d:%d", l.File, l.Line, l.Column)
	}
	return fmt.Sprintf("%s:%d", l.File, l.Line)
}

// Error is a structured error with module, source location and suggestions.
type Error struct {
	// Code is a unique error identifier (e.g., "E110").
	Code string

	// Category is the failure kind.
	Category Category

	// Message is a short description of the error.
	Message string

	// Detail is a longer explanation of the error.
	Detail string

	// Module is the injector module being processed, if any.
	Module string

	// Location is the file (and optionally line/column) involved.
	Location *Location

	// Context contains surrounding source lines.
	Context []string

	// Suggestion is a hint on how to fix the error.
	Suggestion string

	// Wrapped is the underlying error, if any.
	Wrapped error
}

// Error implements the error interface.
func (e *Error) Error() string {
	var b strings.Builder
	if e.Code != "" {
		b.WriteString(e.Code)
		b.WriteString(": ")
	}
	b.WriteString(e.Message)
	if e.Module != "" {
		fmt.Fprintf(&b, ": module %q", e.Module)
	}
	if e.Location != nil {
		b.WriteString(": ")
		b.WriteString(e.Location.String())
	}
	if e.Wrapped != nil {
		b.WriteString(": ")
		b.WriteString(e.Wrapped.Error())
	}
	return b.String()
}

// Unwrap returns the wrapped error for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Wrapped
}

// Is reports whether target is a category sentinel (an *Error without a
// code) of the same category, or an *Error with the same code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Code == "" {
		return t.Category != "" && t.Category == e.Category
	}
	return t.Code == e.Code
}

// WithModule records the module being processed.
func (e *Error) WithModule(module string) *Error {
	e.Module = module
	return e
}

// WithPath records the file involved without a line position.
func (e *Error) WithPath(path string) *Error {
	e.Location = &Location{File: path}
	return e
}

// WithLocation adds a source location and reads the surrounding lines.
func (e *Error) WithLocation(file string, line, column int) *Error {
	e.Location = &Location{File: file, Line: line, Column: column}
	e.Context = readContextLines(file, line, 5)
	return e
}

// WithSuggestion adds a fix suggestion to the error.
func (e *Error) WithSuggestion(s string) *Error {
	e.Suggestion = s
	return e
}

// WithDetail adds a detailed explanation to the error.
func (e *Error) WithDetail(d string) *Error {
	e.Detail = d
	return e
}

// Wrap wraps another error.
func (e *Error) Wrap(err error) *Error {
	e.Wrapped = err
	return e
}

// readContextLines reads lines around the specified line number from a file.
func readContextLines(filename string, targetLine, contextSize int) []string {
	file, err := os.Open(filename)
	if err != nil {
		return nil
	}
	defer file.Close()

	var lines []string
	scanner := bufio.NewScanner(file)
	lineNum := 0
	startLine := targetLine - contextSize/2
	endLine := targetLine + contextSize/2

	for scanner.Scan() {
		lineNum++
		if lineNum >= startLine && lineNum <= endLine {
			lines = append(lines, scanner.Text())
		}
		if lineNum > endLine {
			break
		}
	}

	return lines
}

// New creates an Error from a registered error code.
func New(code string) *Error {
	template, ok := registry[code]
	if !ok {
		return &Error{
			Code:    code,
			Message: "Unknown error",
		}
	}
	return &Error{
		Code:     code,
		Category: template.Category,
		Message:  template.Message,
		Detail:   template.Detail,
	}
}

// Newf creates a new Error with a formatted message (no code).
func Newf(category Category, format string, args ...any) *Error {
	return &Error{
		Category: category,
		Message:  fmt.Sprintf(format, args...),
	}
}

// FromError wraps a standard error in an Error. An *Error is returned as a
// copy so that callers can annotate it without touching the original.
func FromError(err error, code string) *Error {
	if err == nil {
		return nil
	}
	if ie, ok := err.(*Error); ok {
		return ie.Clone()
	}
	return New(code).Wrap(err)
}

// Clone returns a copy of e that can be modified independently.
func (e *Error) Clone() *Error {
	c := *e
	if e.Location != nil {
		loc := *e.Location
		c.Location = &loc
	}
	if e.Context != nil {
		c.Context = append([]string(nil), e.Context...)
	}
	return &c
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target any) bool {
	return stderrors.As(err, target)
}

// CategoryOf returns the category of the first *Error in err's chain.
func CategoryOf(err error) Category {
	for err != nil {
		if ie, ok := err.(*Error); ok && ie.Category != "" {
			return ie.Category
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return ""
		}
		err = u.Unwrap()
	}
	return ""
}
