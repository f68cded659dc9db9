package expr

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/zclconf/go-cty/cty"
)

// Node is a parsed arithmetic expression.
type Node interface {
	// Eval computes the node's value. Lookup resolves an uppercase
	// parameter name to its current value.
	Eval(lookup func(name string) (cty.Value, bool)) (cty.Value, error)
}

type numberNode struct {
	value float64
}

type identNode struct {
	name  string // as written
	start int
}

type binaryNode struct {
	op          tokenKind
	left, right Node
}

func (n *numberNode) Eval(func(string) (cty.Value, bool)) (cty.Value, error) {
	return Number(n.value), nil
}

func (n *identNode) Eval(lookup func(string) (cty.Value, bool)) (cty.Value, error) {
	v, ok := lookup(strings.ToUpper(n.name))
	if !ok {
		return cty.NilVal, &UnknownVariableError{Name: n.name}
	}
	return v, nil
}

func (n *binaryNode) Eval(lookup func(string) (cty.Value, bool)) (cty.Value, error) {
	l, err := n.left.Eval(lookup)
	if err != nil {
		return cty.NilVal, err
	}
	r, err := n.right.Eval(lookup)
	if err != nil {
		return cty.NilVal, err
	}
	for _, v := range []cty.Value{l, r} {
		if !IsNumber(v) {
			return cty.NilVal, &NonNumericError{Msg: fmt.Sprintf("cannot apply %s to %q", n.op, Render(v))}
		}
	}

	a, b := asFloat(l), asFloat(r)
	var out float64
	switch n.op {
	case tokPlus:
		out = a + b
	case tokStar:
		out = a * b
	case tokCaret:
		out = math.Pow(a, b)
	}
	if math.IsNaN(out) || math.IsInf(out, 0) {
		return cty.NilVal, &NonNumericError{Msg: fmt.Sprintf("%s %s %s is not a finite number", Render(l), n.op, Render(r))}
	}
	return Number(out), nil
}

// idents collects every identifier in the tree, left to right.
func idents(n Node) []*identNode {
	switch n := n.(type) {
	case *identNode:
		return []*identNode{n}
	case *binaryNode:
		return append(idents(n.left), idents(n.right)...)
	}
	return nil
}

type parser struct {
	toks []token
	pos  int
}

// parseArith parses a single arithmetic term.
func parseArith(s string) (Node, error) {
	toks, err := lex(s)
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks}
	n, err := p.sum()
	if err != nil {
		return nil, err
	}
	if t := p.peek(); t.kind != tokEOF {
		return nil, &syntaxError{offset: t.start, msg: fmt.Sprintf("unexpected %s", describe(t))}
	}
	return n, nil
}

func (p *parser) peek() token { return p.toks[p.pos] }

func (p *parser) next() token {
	t := p.toks[p.pos]
	if t.kind != tokEOF {
		p.pos++
	}
	return t
}

func (p *parser) sum() (Node, error) {
	left, err := p.product()
	if err != nil {
		return nil, err
	}
	for p.peek().kind == tokPlus {
		p.next()
		right, err := p.product()
		if err != nil {
			return nil, err
		}
		left = &binaryNode{op: tokPlus, left: left, right: right}
	}
	return left, nil
}

func (p *parser) product() (Node, error) {
	left, err := p.power()
	if err != nil {
		return nil, err
	}
	for {
		t := p.peek()
		switch {
		case t.kind == tokStar:
			p.next()
		case p.implicit():
			// number immediately followed by an identifier
		default:
			return left, nil
		}
		right, err := p.power()
		if err != nil {
			return nil, err
		}
		left = &binaryNode{op: tokStar, left: left, right: right}
	}
}

// implicit reports whether the next token is an identifier written directly
// after a numeric literal.
func (p *parser) implicit() bool {
	if p.pos == 0 {
		return false
	}
	prev, cur := p.toks[p.pos-1], p.toks[p.pos]
	return prev.kind == tokNumber && cur.kind == tokIdent && cur.start == prev.end
}

func (p *parser) power() (Node, error) {
	base, err := p.atom()
	if err != nil {
		return nil, err
	}
	if p.peek().kind != tokCaret {
		return base, nil
	}
	p.next()
	exp, err := p.power()
	if err != nil {
		return nil, err
	}
	return &binaryNode{op: tokCaret, left: base, right: exp}, nil
}

func (p *parser) atom() (Node, error) {
	t := p.next()
	switch t.kind {
	case tokNumber:
		return numberFromToken(t, false)
	case tokIdent:
		return &identNode{name: t.text, start: t.start}, nil
	case tokMinus, tokPlus:
		num := p.peek()
		if num.kind == tokNumber && num.start == t.end {
			p.next()
			return numberFromToken(num, t.kind == tokMinus)
		}
	}
	return nil, &syntaxError{offset: t.start, msg: fmt.Sprintf("unexpected %s", describe(t))}
}

func numberFromToken(t token, negate bool) (Node, error) {
	f, err := strconv.ParseFloat(t.text, 64)
	if err != nil || math.IsInf(f, 0) {
		return nil, &syntaxError{offset: t.start, msg: fmt.Sprintf("invalid number %q", t.text)}
	}
	if negate {
		f = -f
	}
	return &numberNode{value: f}, nil
}

func describe(t token) string {
	if t.kind == tokEOF {
		return t.kind.String()
	}
	return fmt.Sprintf("%s %q", t.kind, t.text)
}
