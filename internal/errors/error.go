package errors

import (
	"bufio"
	"fmt"
	"os"
)

// Category groups error codes.
type Category string

const (
	CategoryConfig  Category = "config"
	CategoryRuntime Category = "runtime"
	CategoryCLI     Category = "cli"
)

// Location is a position in a file.
type Location struct {
	File   string `json:"file"`
	Line   int    `json:"line"`
	Column int    `json:"column,omitempty"`
}

// String returns the location as file:line[:column].
func (l *Location) String() string {
	if l == nil {
		return ""
	}
	if l.Column > 0 {
		return fmt.Sprintf("%s:%d:%d", l.File, l.Line, l.Column)
	}
	return fmt.Sprintf("%s:%d", l.File, l.Line)
}

// FaultError is a structured error with a registry code and a fix hint.
type FaultError struct {
	// Code is a registry identifier (e.g. "F101").
	Code string

	Category Category

	// Message is a short description.
	Message string

	// Detail is a longer explanation.
	Detail string

	// Location points into the offending file, if any.
	Location *Location

	// Context holds the lines around Location.
	Context []string

	// Suggestion is a hint on how to fix the error.
	Suggestion string

	DocURL string

	// Wrapped is the underlying error, if any.
	Wrapped error
}

// Error implements the error interface.
func (e *FaultError) Error() string {
	msg := e.Message
	if e.Code != "" {
		msg = e.Code + ": " + msg
	}
	if e.Wrapped != nil {
		msg += ": " + e.Wrapped.Error()
	}
	return msg
}

// Unwrap returns the wrapped error for errors.Is/As support.
func (e *FaultError) Unwrap() error {
	return e.Wrapped
}

// WithLocation adds a file position and reads the surrounding lines.
func (e *FaultError) WithLocation(file string, line, column int) *FaultError {
	e.Location = &Location{File: file, Line: line, Column: column}
	e.Context = readContextLines(file, line, 5)
	return e
}

// WithSuggestion adds a fix suggestion.
func (e *FaultError) WithSuggestion(s string) *FaultError {
	e.Suggestion = s
	return e
}

// WithDetail replaces the registry detail.
func (e *FaultError) WithDetail(d string) *FaultError {
	e.Detail = d
	return e
}

// Wrap sets the underlying error.
func (e *FaultError) Wrap(err error) *FaultError {
	e.Wrapped = err
	return e
}

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

// New creates a FaultError from a registered code.
func New(code string) *FaultError {
	template, ok := registry[code]
	if !ok {
		return &FaultError{
			Code:    code,
			Message: "Unknown error",
		}
	}
	return &FaultError{
		Code:     code,
		Category: template.Category,
		Message:  template.Message,
		Detail:   template.Detail,
		DocURL:   template.DocURL,
	}
}

// Newf creates an uncoded FaultError with a formatted message.
func Newf(category Category, format string, args ...any) *FaultError {
	return &FaultError{
		Category: category,
		Message:  fmt.Sprintf(format, args...),
	}
}

// FromError wraps err under code unless it already is a *FaultError.
func FromError(err error, code string) *FaultError {
	if err == nil {
		return nil
	}
	if fe, ok := err.(*FaultError); ok {
		return fe
	}
	return New(code).Wrap(err)
}
