package graph

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNodeNotFound       = errors.New("node not found")
	ErrCircularDependency = errors.New("circular dependency")
)

// CycleError names the nodes of one cycle. Each member depends on the one
// after it and the last depends on the first.
type CycleError struct {
	Members []string
}

func (e *CycleError) Error() string {
	if len(e.Members) == 0 {
		return ErrCircularDependency.Error()
	}
	path := append(append([]string{}, e.Members...), e.Members[0])
	return fmt.Sprintf("%s: %s", ErrCircularDependency, strings.Join(path, " -> "))
}

func (e *CycleError) Unwrap() error { return ErrCircularDependency }

func notFound(id string) error {
	return fmt.Errorf("%w: %s", ErrNodeNotFound, id)
}
