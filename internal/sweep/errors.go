package sweep

import (
	"errors"
	"fmt"
)

var (
	ErrNoParameters       = errors.New("no parameters defined")
	ErrInvalidName        = errors.New("invalid parameter name")
	ErrDuplicateParameter = errors.New("duplicate parameter")
)

// DuplicateError reports two definitions that resolve to the same parameter
// or the same environment variable.
type DuplicateError struct {
	First  string
	Second string
	Env    string
}

func (e *DuplicateError) Error() string {
	if e.First == e.Second {
		return fmt.Sprintf("%s %s", ErrDuplicateParameter, e.First)
	}
	return fmt.Sprintf("%s: %s and %s both map to %s", ErrDuplicateParameter, e.First, e.Second, e.Env)
}

func (e *DuplicateError) Unwrap() error { return ErrDuplicateParameter }
