package deq

import (
	"math"
	"strconv"
	"strings"
)

// Kind tags the variant of a Value.
type Kind uint8

// Value kinds; their names are what the type word pushes as a symbol.
const (
	KindInt Kind = iota + 1
	KindFloat
	KindBool
	KindString
	KindSymbol
	KindQuotation
)

var kindNames = [...]string{
	"invalid",
	"int",
	"float",
	"bool",
	"string",
	"symbol",
	"quotation",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "kind(" + strconv.Itoa(int(k)) + ")"
}

// Value is an immutable runtime datum. String renders literal syntax that
// lexes back to an equal value.
type Value interface {
	Kind() Kind
	String() string
}

// Int is a signed 64-bit integer; arithmetic wraps around on overflow.
type Int int64

// Float is an IEEE-754 double.
type Float float64

// Bool is a boolean.
type Bool bool

// String is immutable text.
type String string

// Symbol is a self-quoting word name, written :name.
type Symbol string

// Quotation is a captured, unexecuted sequence of tokens.
type Quotation struct {
	body []Token
}

func (Int) Kind() Kind        { return KindInt }
func (Float) Kind() Kind      { return KindFloat }
func (Bool) Kind() Kind       { return KindBool }
func (String) Kind() Kind     { return KindString }
func (Symbol) Kind() Kind     { return KindSymbol }
func (*Quotation) Kind() Kind { return KindQuotation }

func (i Int) String() string { return strconv.FormatInt(int64(i), 10) }

func (f Float) String() string {
	s := strconv.FormatFloat(float64(f), 'f', -1, 64)
	if math.IsInf(float64(f), 0) || math.IsNaN(float64(f)) {
		return s
	}
	if !strings.ContainsRune(s, '.') {
		s += ".0"
	}
	return s
}

func (b Bool) String() string { return strconv.FormatBool(bool(b)) }

func (s String) String() string {
	var sb strings.Builder
	sb.Grow(len(s) + 2)
	sb.WriteByte('"')
	for _, r := range string(s) {
		switch r {
		case '"':
			sb.WriteString(`\"`)
		case '\\':
			sb.WriteString(`\\`)
		case '\n':
			sb.WriteString(`\n`)
		case '\t':
			sb.WriteString(`\t`)
		case '\r':
			sb.WriteString(`\r`)
		case 0:
			sb.WriteString(`\0`)
		default:
			sb.WriteRune(r)
		}
	}
	sb.WriteByte('"')
	return sb.String()
}

func (sym Symbol) String() string { return ":" + string(sym) }

// NewQuotation returns a quotation over a copy of the given tokens.
func NewQuotation(body ...Token) *Quotation {
	return &Quotation{body: append([]Token(nil), body...)}
}

// Len returns the number of top-level tokens in the quotation.
func (q *Quotation) Len() int { return len(q.body) }

// Tokens returns a copy of the quotation's tokens.
func (q *Quotation) Tokens() []Token { return append([]Token(nil), q.body...) }

// Source renders the quotation's tokens without the enclosing brackets.
func (q *Quotation) Source() string {
	var sb strings.Builder
	for i, tok := range q.body {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(tok.String())
	}
	return sb.String()
}

func (q *Quotation) String() string { return "[" + q.Source() + "]" }

// Display renders v the way the print word writes it: strings are written
// raw, everything else in literal syntax.
func Display(v Value) string {
	if s, ok := v.(String); ok {
		return string(s)
	}
	return v.String()
}

// Equal reports whether two values are the same; numbers compare by
// numeric value across Int and Float, quotations by their source.
func Equal(a, b Value) bool {
	if isNumber(a) && isNumber(b) {
		return compareNumbers(a, b) == 0 && !isNaN(a) && !isNaN(b)
	}
	if a.Kind() != b.Kind() {
		return false
	}
	if qa, ok := a.(*Quotation); ok {
		return qa == b.(*Quotation) || qa.String() == b.String()
	}
	return a == b
}

func isNumber(v Value) bool {
	switch v.(type) {
	case Int, Float:
		return true
	}
	return false
}

func isNaN(v Value) bool {
	f, ok := v.(Float)
	return ok && math.IsNaN(float64(f))
}

func toFloat(v Value) float64 {
	switch n := v.(type) {
	case Int:
		return float64(n)
	case Float:
		return float64(n)
	}
	return math.NaN()
}

// compareNumbers orders two numeric values. Integers compare exactly, also
// against floats; NaN is left to callers.
func compareNumbers(a, b Value) int {
	switch x := a.(type) {
	case Int:
		switch y := b.(type) {
		case Int:
			return compareInts(x, y)
		case Float:
			return compareIntFloat(x, float64(y))
		}
	case Float:
		if y, ok := b.(Int); ok {
			return -compareIntFloat(y, float64(x))
		}
	}
	return compareFloats(toFloat(a), toFloat(b))
}

func compareInts(x, y Int) int {
	switch {
	case x < y:
		return -1
	case x > y:
		return 1
	}
	return 0
}

func compareFloats(x, y float64) int {
	switch {
	case x < y:
		return -1
	case x > y:
		return 1
	}
	return 0
}

// compareIntFloat compares x with y without rounding x to a float.
func compareIntFloat(x Int, y float64) int {
	switch {
	case math.IsNaN(y):
		return 0
	case y < -(1 << 63):
		return 1
	case y >= 1<<63:
		return -1
	}
	t := math.Trunc(y)
	if c := compareInts(x, Int(t)); c != 0 {
		return c
	}
	return compareFloats(t, y)
}
