package resultstore

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrSchemaIncompatible = errors.New("result file is incompatible")
	ErrRowShape           = errors.New("row does not match schema")
	ErrCorrupt            = errors.New("result file is corrupt")
	ErrClosed             = errors.New("result store is closed")
)

// SchemaError reports an existing file whose header differs from the
// current run's columns.
type SchemaError struct {
	Path     string
	Expected []string
	Found    []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("%s: %s: header mismatch\nexpected: %s\nfound:    %s\nplease use a different output file or remove the existing one",
		ErrSchemaIncompatible, e.Path, strings.Join(e.Expected, ","), strings.Join(e.Found, ","))
}

func (e *SchemaError) Unwrap() error { return ErrSchemaIncompatible }
