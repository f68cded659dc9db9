package resultstore

import (
	"fmt"
	"strings"
)

// Schema lists the file's columns by group.
type Schema struct {
	Params  []string
	Metrics []string
	Outputs []string
}

// Header returns every column name in file order.
func (s Schema) Header() []string {
	out := make([]string, 0, len(s.Params)+len(s.Metrics)+len(s.Outputs))
	out = append(out, s.Params...)
	out = append(out, s.Metrics...)
	return append(out, s.Outputs...)
}

// Row is one successful run. Each group must match the schema's length.
type Row struct {
	Params  []string
	Metrics []string
	Outputs []string
}

func (s Schema) record(r Row) ([]string, error) {
	if len(r.Params) != len(s.Params) || len(r.Metrics) != len(s.Metrics) || len(r.Outputs) != len(s.Outputs) {
		return nil, fmt.Errorf("%w: got %d/%d/%d values, want %d/%d/%d",
			ErrRowShape, len(r.Params), len(r.Metrics), len(r.Outputs),
			len(s.Params), len(s.Metrics), len(s.Outputs))
	}
	return Schema(r).Header(), nil
}

// key identifies a row by its parameter values.
func key(params []string) string {
	return strings.Join(params, "\x1f")
}
