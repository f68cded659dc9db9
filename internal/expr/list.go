package expr

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/zclconf/go-cty/cty"
)

// TermKind classifies one comma-separated term.
type TermKind int

const (
	// Literal is a fixed value: a string, a number or a constant expression.
	Literal TermKind = iota
	// Range is an integer range expanded at parse time.
	Range
	// Reference is an expression over other parameters, evaluated per
	// combination.
	Reference
)

// Term is one parsed comma-separated item of a parameter's expression.
type Term struct {
	Kind   TermKind
	Text   string
	Values []cty.Value // Literal and Range
	Node   Node        // Reference
	Refs   []string    // Reference: uppercase names in first-seen order
}

// List is a parameter's parsed expression.
type List struct {
	Param string
	Raw   string
	Terms []Term
}

// ParseList parses raw as the expression of param. Known reports whether an
// uppercase name is a declared parameter; identifiers that fail it make a
// term a literal string, or an UnknownVariableError when the term contains
// an operator.
func ParseList(param, raw string, known func(name string) bool) (*List, error) {
	list := &List{Param: param, Raw: raw}

	offset := 0
	for _, part := range strings.Split(raw, ",") {
		lead := len(part) - len(strings.TrimLeft(part, " \t"))
		text := strings.TrimSpace(part)
		base := offset + lead
		offset += len(part) + 1

		if text == "" {
			return nil, &ParseError{Param: param, Text: raw, Column: base + 1, Msg: "empty term"}
		}
		term, err := parseTerm(param, text, known)
		if err != nil {
			var se *syntaxError
			if errors.As(err, &se) {
				return nil, &ParseError{Param: param, Text: raw, Column: base + se.offset + 1, Msg: se.msg}
			}
			return nil, err
		}
		list.Terms = append(list.Terms, term)
	}

	if list.Dependent() && len(list.Terms) > 1 {
		return nil, &ParseError{
			Param:  param,
			Text:   raw,
			Column: 1,
			Msg:    "an expression that references other parameters must be the only term",
		}
	}
	return list, nil
}

func parseTerm(param, text string, known func(string) bool) (Term, error) {
	if strings.Contains(text, ":") {
		values, err := expandRange(param, text)
		if err != nil {
			return Term{}, err
		}
		return Term{Kind: Range, Text: text, Values: values}, nil
	}

	node, err := parseArith(text)
	if err == nil {
		var refs []string
		seen := make(map[string]bool)
		unknown := ""
		for _, id := range idents(node) {
			name := strings.ToUpper(id.name)
			if !known(name) {
				if unknown == "" {
					unknown = id.name
				}
				continue
			}
			if !seen[name] {
				seen[name] = true
				refs = append(refs, name)
			}
		}

		switch {
		case unknown == "" && len(refs) == 0:
			v, err := node.Eval(func(string) (cty.Value, bool) { return cty.NilVal, false })
			if err != nil {
				return Term{}, withParam(err, param)
			}
			return Term{Kind: Literal, Text: text, Values: []cty.Value{v}}, nil
		case unknown == "":
			return Term{Kind: Reference, Text: text, Node: node, Refs: refs}, nil
		case !strings.ContainsAny(text, "+*^"):
			return Term{Kind: Literal, Text: text, Values: []cty.Value{String(text)}}, nil
		default:
			return Term{}, &UnknownVariableError{Param: param, Name: unknown}
		}
	}

	if !strings.ContainsAny(text, "+*^") {
		return Term{Kind: Literal, Text: text, Values: []cty.Value{String(text)}}, nil
	}
	return Term{}, err
}

// maxRangeLen bounds how many values a single range may expand to.
const maxRangeLen = 1 << 20

func expandRange(param, text string) ([]cty.Value, error) {
	parts := strings.Split(text, ":")
	if len(parts) != 2 && len(parts) != 3 {
		return nil, &RangeError{Param: param, Text: text, Msg: "expected start:end or start:end:step"}
	}
	bounds := make([]int64, 3)
	bounds[2] = 1
	for i, p := range parts {
		n, err := strconv.ParseInt(strings.TrimSpace(p), 10, 64)
		if err != nil {
			return nil, &RangeError{Param: param, Text: text, Msg: fmt.Sprintf("bound %q is not an integer", strings.TrimSpace(p))}
		}
		bounds[i] = n
	}
	start, end, step := bounds[0], bounds[1], bounds[2]
	if step == 0 {
		return nil, &RangeError{Param: param, Text: text, Msg: "step must not be zero"}
	}

	// Distances are taken as uint64 so that stepping never overflows.
	var span, stride uint64
	switch {
	case step > 0 && start < end:
		span, stride = uint64(end-start), uint64(step)
	case step < 0 && start > end:
		span, stride = uint64(start-end), uint64(-step)
	default:
		return nil, nil
	}
	count := (span-1)/stride + 1
	if count > maxRangeLen {
		return nil, &RangeError{Param: param, Text: text, Msg: fmt.Sprintf("range has %d values, more than the limit of %d", count, maxRangeLen)}
	}

	values := make([]cty.Value, 0, count)
	for k := range count {
		values = append(values, cty.NumberIntVal(start+int64(k)*step))
	}
	return values, nil
}

// Dependent reports whether the list references other parameters.
func (l *List) Dependent() bool {
	for _, t := range l.Terms {
		if t.Kind == Reference {
			return true
		}
	}
	return false
}

// Refs returns the uppercase names the list references.
func (l *List) Refs() []string {
	var refs []string
	for _, t := range l.Terms {
		refs = append(refs, t.Refs...)
	}
	return refs
}

// Values expands a free list into its values, duplicates removed by
// rendered form in first-seen order.
func (l *List) Values() []cty.Value {
	var out []cty.Value
	seen := make(map[string]bool)
	for _, t := range l.Terms {
		for _, v := range t.Values {
			key := Render(v)
			if seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, v)
		}
	}
	return out
}

// Eval computes a dependent list's single value.
func (l *List) Eval(lookup func(name string) (cty.Value, bool)) (cty.Value, error) {
	if !l.Dependent() {
		return cty.NilVal, fmt.Errorf("parameter %s does not reference other parameters", l.Param)
	}
	v, err := l.Terms[0].Node.Eval(lookup)
	if err != nil {
		return cty.NilVal, withParam(err, l.Param)
	}
	return v, nil
}

func withParam(err error, param string) error {
	var nn *NonNumericError
	if errors.As(err, &nn) && nn.Param == "" {
		nn.Param = param
	}
	var uv *UnknownVariableError
	if errors.As(err, &uv) && uv.Param == "" {
		uv.Param = param
	}
	return err
}
