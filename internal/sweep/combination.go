package sweep

import (
	"strings"

	"github.com/vk/runexp/internal/expr"
	"github.com/zclconf/go-cty/cty"
)

// Combination is one complete assignment of values, ordered by declaration.
type Combination struct {
	names  []string
	envs   []string
	values []cty.Value
}

// Names returns the parameter names in declaration order.
func (c Combination) Names() []string { return c.names }

// Values returns the values in declaration order.
func (c Combination) Values() []cty.Value { return c.values }

// Len returns the number of parameters.
func (c Combination) Len() int { return len(c.values) }

// Value looks up a parameter by name, ignoring case.
func (c Combination) Value(name string) (cty.Value, bool) {
	name = NormalizeName(name)
	for i, n := range c.names {
		if n == name {
			return c.values[i], true
		}
	}
	return cty.NilVal, false
}

// Rendered returns every value formatted for output, in declaration order.
func (c Combination) Rendered() []string {
	out := make([]string, len(c.values))
	for i, v := range c.values {
		out[i] = expr.Render(v)
	}
	return out
}

// Key identifies the combination by its rendered values.
func (c Combination) Key() string {
	return strings.Join(c.Rendered(), "\x1f")
}

// Environ returns NAME=value pairs for the child process environment.
func (c Combination) Environ() []string {
	out := make([]string, len(c.values))
	for i, v := range c.values {
		out[i] = c.envs[i] + "=" + expr.Render(v)
	}
	return out
}

// String formats the combination as space separated NAME=value pairs.
func (c Combination) String() string {
	parts := make([]string, len(c.values))
	for i, v := range c.values {
		parts[i] = c.names[i] + "=" + expr.Render(v)
	}
	return strings.Join(parts, " ")
}
