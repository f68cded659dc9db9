package sweep

import (
	"fmt"
	"iter"
	"strings"
	"unicode"

	"github.com/vk/runexp/internal/expr"
	"github.com/vk/runexp/internal/graph"
	"github.com/zclconf/go-cty/cty"
)

// Definition is a parameter as declared by the user.
type Definition struct {
	Name       string
	Expression string
}

// Param is a resolved parameter.
type Param struct {
	Name  string
	Env   string
	Index int
	List  *expr.List
	// Domain holds a free parameter's values; it is nil for dependent ones.
	Domain []cty.Value
}

// Free reports whether the parameter references no other parameter.
func (p *Param) Free() bool { return !p.List.Dependent() }

// Plan is the resolved form of a set of definitions.
type Plan struct {
	params []*Param
	byName map[string]*Param
	order  []string
}

// NormalizeName returns the canonical, uppercase form of a parameter name.
func NormalizeName(name string) string {
	return strings.ToUpper(strings.TrimSpace(name))
}

// EnvName maps a parameter name to its environment variable: uppercase, with
// every character that is not a letter or digit replaced by an underscore.
func EnvName(name string) string {
	return strings.Map(func(r rune) rune {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			return unicode.ToUpper(r)
		}
		return '_'
	}, name)
}

// Resolve validates and orders defs. Errors abort the whole run: invalid
// or duplicate names, malformed expressions, unknown references, invalid
// ranges and reference cycles.
func Resolve(defs []Definition) (*Plan, error) {
	if len(defs) == 0 {
		return nil, ErrNoParameters
	}

	plan := &Plan{byName: make(map[string]*Param, len(defs))}
	envs := make(map[string]string, len(defs))
	for i, d := range defs {
		name := NormalizeName(d.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: definition %d has an empty name", ErrInvalidName, i+1)
		}
		if _, dup := plan.byName[name]; dup {
			return nil, &DuplicateError{First: name, Second: name}
		}
		env := EnvName(name)
		if other, dup := envs[env]; dup {
			return nil, &DuplicateError{First: other, Second: name, Env: env}
		}
		envs[env] = name

		p := &Param{Name: name, Env: env, Index: i}
		plan.params = append(plan.params, p)
		plan.byName[name] = p
	}

	known := func(name string) bool {
		_, ok := plan.byName[name]
		return ok
	}
	g := graph.New()
	for i, p := range plan.params {
		list, err := expr.ParseList(p.Name, defs[i].Expression, known)
		if err != nil {
			return nil, err
		}
		p.List = list
		g.AddNode(p.Name)
	}
	for _, p := range plan.params {
		for _, ref := range p.List.Refs() {
			if err := g.AddEdge(ref, p.Name); err != nil {
				return nil, err
			}
		}
		if p.Free() {
			p.Domain = p.List.Values()
		}
	}

	order, err := g.TopologicalSort()
	if err != nil {
		return nil, err
	}
	plan.order = order
	return plan, nil
}

// Params returns the resolved parameters in declaration order.
func (p *Plan) Params() []*Param { return p.params }

// Names returns the parameter names in declaration order.
func (p *Plan) Names() []string {
	out := make([]string, len(p.params))
	for i, param := range p.params {
		out[i] = param.Name
	}
	return out
}

// Order returns the parameter names in evaluation order.
func (p *Plan) Order() []string { return p.order }

// Param looks up a parameter by name, ignoring case.
func (p *Plan) Param(name string) (*Param, bool) {
	param, ok := p.byName[NormalizeName(name)]
	return param, ok
}

// Combinations enumerates the plan lazily. The first declared free
// parameter changes slowest. A repeated value tuple is yielded once.
// Evaluation errors are yielded once and end the sequence.
func (p *Plan) Combinations() iter.Seq2[Combination, error] {
	return func(yield func(Combination, error) bool) {
		var free []*Param
		for _, param := range p.params {
			if param.Free() {
				if len(param.Domain) == 0 {
					return
				}
				free = append(free, param)
			}
		}

		var dependents []*Param
		for _, name := range p.order {
			if param := p.byName[name]; !param.Free() {
				dependents = append(dependents, param)
			}
		}

		names := p.Names()
		envs := make([]string, len(p.params))
		for i, param := range p.params {
			envs[i] = param.Env
		}

		seen := make(map[string]bool)
		cursor := make([]int, len(free))
		for {
			values := make([]cty.Value, len(p.params))
			assigned := make([]bool, len(p.params))
			for i, param := range free {
				values[param.Index] = param.Domain[cursor[i]]
				assigned[param.Index] = true
			}
			lookup := func(name string) (cty.Value, bool) {
				param, ok := p.byName[name]
				if !ok || !assigned[param.Index] {
					return cty.NilVal, false
				}
				return values[param.Index], true
			}
			for _, param := range dependents {
				v, err := param.List.Eval(lookup)
				if err != nil {
					yield(Combination{}, err)
					return
				}
				values[param.Index] = v
				assigned[param.Index] = true
			}

			c := Combination{names: names, envs: envs, values: values}
			if key := c.Key(); !seen[key] {
				seen[key] = true
				if !yield(c, nil) {
					return
				}
			}

			if !advance(cursor, free) {
				return
			}
		}
	}
}

// advance steps the odometer with the last parameter as the fastest digit.
// It returns false after the final combination.
func advance(cursor []int, free []*Param) bool {
	for i := len(cursor) - 1; i >= 0; i-- {
		cursor[i]++
		if cursor[i] < len(free[i].Domain) {
			return true
		}
		cursor[i] = 0
	}
	return false
}

// All materializes the whole sequence, failing on the first evaluation
// error.
func (p *Plan) All() ([]Combination, error) {
	var out []Combination
	for c, err := range p.Combinations() {
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}
