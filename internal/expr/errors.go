package expr

import (
	"errors"
	"fmt"
)

var (
	ErrParse           = errors.New("parse error")
	ErrUnknownVariable = errors.New("unknown variable")
	ErrInvalidRange    = errors.New("invalid range")
	ErrNonNumeric      = errors.New("non-numeric value")
)

// ParseError reports a malformed expression. Column is 1-based and counts
// bytes in the parameter's raw expression.
type ParseError struct {
	Param  string
	Text   string
	Column int
	Msg    string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s in parameter %s: %s at column %d of %q", ErrParse, e.Param, e.Msg, e.Column, e.Text)
}

func (e *ParseError) Unwrap() error { return ErrParse }

// UnknownVariableError names an identifier that matches no parameter and the
// parameter whose expression used it.
type UnknownVariableError struct {
	Param string
	Name  string
}

func (e *UnknownVariableError) Error() string {
	return fmt.Sprintf("%s %q referenced by parameter %s", ErrUnknownVariable, e.Name, e.Param)
}

func (e *UnknownVariableError) Unwrap() error { return ErrUnknownVariable }

// RangeError reports a range term with non-integer bounds or a zero step.
type RangeError struct {
	Param string
	Text  string
	Msg   string
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("%s in parameter %s: %s in %q", ErrInvalidRange, e.Param, e.Msg, e.Text)
}

func (e *RangeError) Unwrap() error { return ErrInvalidRange }

// NonNumericError reports arithmetic over a string value or a result that is
// not a finite number.
type NonNumericError struct {
	Param string
	Msg   string
}

func (e *NonNumericError) Error() string {
	return fmt.Sprintf("%s in parameter %s: %s", ErrNonNumeric, e.Param, e.Msg)
}

func (e *NonNumericError) Unwrap() error { return ErrNonNumeric }
