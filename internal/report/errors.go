package report

import (
	"errors"
	"fmt"
)

// ErrParse is the sentinel all parse failures wrap, so callers can test with
// errors.Is without caring about the detail.
var ErrParse = errors.New("parse error")

// ParseError reports an export that could not be reconciled into a
// rectangular row set after cleaning. It is fatal for the single file it
// describes and carries enough context to point the user at the problem.
type ParseError struct {
	Report string
	Line   int
	Detail string
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("parse %s: line %d: %s", e.Report, e.Line, e.Detail)
	}
	return fmt.Sprintf("parse %s: %s", e.Report, e.Detail)
}

// Unwrap makes errors.Is(err, ErrParse) succeed.
func (e *ParseError) Unwrap() error {
	return ErrParse
}

func newParseError(report string, line int, format string, args ...any) *ParseError {
	return &ParseError{Report: report, Line: line, Detail: fmt.Sprintf(format, args...)}
}
