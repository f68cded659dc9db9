package expr

import "fmt"

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokNumber
	tokIdent
	tokPlus
	tokStar
	tokCaret
	tokMinus
)

func (k tokenKind) String() string {
	switch k {
	case tokEOF:
		return "end of expression"
	case tokNumber:
		return "number"
	case tokIdent:
		return "identifier"
	case tokPlus:
		return "'+'"
	case tokStar:
		return "'*'"
	case tokCaret:
		return "'^'"
	case tokMinus:
		return "'-'"
	}
	return "unknown"
}

// token is a lexeme with byte offsets into the lexed text.
type token struct {
	kind  tokenKind
	text  string
	start int
	end   int
}

// syntaxError is positioned relative to the lexed term; ParseList rebases it
// onto the full raw expression.
type syntaxError struct {
	offset int
	msg    string
}

func (e *syntaxError) Error() string { return fmt.Sprintf("%s at offset %d", e.msg, e.offset) }

func isDigit(c byte) bool  { return c >= '0' && c <= '9' }
func isLetter(c byte) bool { return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c == '_' }

// lex splits an arithmetic term into tokens.
func lex(s string) ([]token, error) {
	var toks []token
	i := 0
	for i < len(s) {
		c := s[i]
		switch {
		case c == ' ' || c == '\t':
			i++
		case isDigit(c) || c == '.' && i+1 < len(s) && isDigit(s[i+1]):
			end := scanNumber(s, i)
			toks = append(toks, token{kind: tokNumber, text: s[i:end], start: i, end: end})
			i = end
		case isLetter(c):
			end := i + 1
			for end < len(s) && (isLetter(s[end]) || isDigit(s[end])) {
				end++
			}
			toks = append(toks, token{kind: tokIdent, text: s[i:end], start: i, end: end})
			i = end
		case c == '+':
			toks = append(toks, token{kind: tokPlus, text: "+", start: i, end: i + 1})
			i++
		case c == '*':
			toks = append(toks, token{kind: tokStar, text: "*", start: i, end: i + 1})
			i++
		case c == '^':
			toks = append(toks, token{kind: tokCaret, text: "^", start: i, end: i + 1})
			i++
		case c == '-':
			toks = append(toks, token{kind: tokMinus, text: "-", start: i, end: i + 1})
			i++
		default:
			return nil, &syntaxError{offset: i, msg: fmt.Sprintf("unexpected character %q", c)}
		}
	}
	toks = append(toks, token{kind: tokEOF, start: len(s), end: len(s)})
	return toks, nil
}

// scanNumber returns the end of the numeric literal starting at i: digits
// with an optional fraction and an optional exponent. An `e` not followed by
// digits is left for the identifier that implicit multiplication expects.
func scanNumber(s string, i int) int {
	for i < len(s) && isDigit(s[i]) {
		i++
	}
	if i < len(s) && s[i] == '.' {
		i++
		for i < len(s) && isDigit(s[i]) {
			i++
		}
	}
	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		j := i + 1
		if j < len(s) && (s[j] == '+' || s[j] == '-') {
			j++
		}
		if j < len(s) && isDigit(s[j]) {
			for j < len(s) && isDigit(s[j]) {
				j++
			}
			i = j
		}
	}
	return i
}
