package deq

import (
	"fmt"
	"math"
	"strings"
	"unicode/utf8"
)

type opcode uint8

const (
	opNone opcode = iota

	// arithmetic: a b -- c
	opAdd // +
	opSub // -
	opMul // *
	opDiv // /
	opMod // mod
	opNeg // neg    a -- -a
	opAbs // abs    a -- |a|

	// comparison: a b -- bool
	opEq // =
	opNe // <>
	opLt // <
	opGt // >
	opLe // <=
	opGe // >=

	// logic and bits
	opAnd // and
	opOr  // or
	opXor // xor
	opNot // not    a -- !a
	opShl // shl    a n -- a<<n
	opShr // shr    a n -- a>>n

	// deque shuffling
	opDup      // dup        a -- a a
	opDrop     // drop       a --
	opSwap     // swap       a b -- b a
	opOver     // over       a b -- a b a
	opRotFront // rot-front  pop the back, push it on the front
	opRotBack  // rot-back   pop the front, push it on the back
	opMove     // move       pop this end, push the opposite end
	opLen      // len        -- n
	opClear    // clear

	// control
	opCall   // call    [q] --
	opIf     // if      bool [then] [else] --
	opWhile  // while   [cond] [body] --
	opTimes  // times   n [body] --
	opDefine // define  [body] name --
	opForget // forget  name --

	// values
	opQuote   // quote    v -- [v]
	opCompose // compose  [a] [b] -- [a b]
	opConcat  // concat   "a" "b" -- "ab"
	opType    // type     v -- :kind

	// output
	opPrint // print  v --
	opEmit  // emit   rune --
	opTrace // trace
	opExit  // exit   code --

	opMax
)

var (
	opTable [opMax]func(in *Interp, end End)
	opNames [opMax]string
	opArity [opMax]int
)

func init() {
	for _, def := range []struct {
		op    opcode
		name  string
		arity int
		fn    func(in *Interp, end End)
	}{
		{opAdd, "+", 2, (*Interp).add},
		{opSub, "-", 2, (*Interp).sub},
		{opMul, "*", 2, (*Interp).mul},
		{opDiv, "/", 2, (*Interp).div},
		{opMod, "mod", 2, (*Interp).mod},
		{opNeg, "neg", 1, (*Interp).neg},
		{opAbs, "abs", 1, (*Interp).abs},

		{opEq, "=", 2, (*Interp).eq},
		{opNe, "<>", 2, (*Interp).ne},
		{opLt, "<", 2, (*Interp).lt},
		{opGt, ">", 2, (*Interp).gt},
		{opLe, "<=", 2, (*Interp).le},
		{opGe, ">=", 2, (*Interp).ge},

		{opAnd, "and", 2, (*Interp).and},
		{opOr, "or", 2, (*Interp).or},
		{opXor, "xor", 2, (*Interp).xor},
		{opNot, "not", 1, (*Interp).not},
		{opShl, "shl", 2, (*Interp).shl},
		{opShr, "shr", 2, (*Interp).shr},

		{opDup, "dup", 1, (*Interp).dup},
		{opDrop, "drop", 1, (*Interp).drop},
		{opSwap, "swap", 2, (*Interp).swap},
		{opOver, "over", 2, (*Interp).over},
		{opRotFront, "rot-front", 1, (*Interp).rotFront},
		{opRotBack, "rot-back", 1, (*Interp).rotBack},
		{opMove, "move", 1, (*Interp).move},
		{opLen, "len", 0, (*Interp).length},
		{opClear, "clear", 0, (*Interp).clear},

		{opCall, "call", 1, (*Interp).call},
		{opIf, "if", 3, (*Interp).ifElse},
		{opWhile, "while", 2, (*Interp).while},
		{opTimes, "times", 2, (*Interp).times},
		{opDefine, "define", 2, (*Interp).define},
		{opForget, "forget", 1, (*Interp).forget},

		{opQuote, "quote", 1, (*Interp).quote},
		{opCompose, "compose", 2, (*Interp).compose},
		{opConcat, "concat", 2, (*Interp).concat},
		{opType, "type", 1, (*Interp).typeOf},

		{opPrint, "print", 1, (*Interp).print},
		{opEmit, "emit", 1, (*Interp).emit},
		{opTrace, "trace", 0, (*Interp).trace},
		{opExit, "exit", 1, (*Interp).exit},
	} {
		opTable[def.op] = def.fn
		opNames[def.op] = def.name
		opArity[def.op] = def.arity
	}
	for op := opcode(1); op < opMax; op++ {
		if opTable[op] == nil {
			panic("deq: builtin table missing opcode " + opNames[op])
		}
	}
}

func (op opcode) String() string {
	if op < opMax && opNames[op] != "" {
		return opNames[op]
	}
	return "<invalid>"
}

//// operand access

func (in *Interp) push(end End, v Value) { in.haltif(in.deque.Push(end, v)) }

func (in *Interp) pop(end End) Value {
	v, err := in.deque.Pop(end)
	in.haltif(err)
	return v
}

func (in *Interp) popKind(end End, kinds ...Kind) Value {
	v := in.pop(end)
	for _, k := range kinds {
		if v.Kind() == k {
			return v
		}
	}
	in.halt(&Error{Kind: TypeError, Expected: kinds, Got: v.Kind()})
	return nil
}

func (in *Interp) popInt(end End) Int       { return in.popKind(end, KindInt).(Int) }
func (in *Interp) popBool(end End) Bool     { return in.popKind(end, KindBool).(Bool) }
func (in *Interp) popString(end End) String { return in.popKind(end, KindString).(String) }
func (in *Interp) popQuotation(end End) *Quotation {
	return in.popKind(end, KindQuotation).(*Quotation)
}
func (in *Interp) popNumber(end End) Value { return in.popKind(end, KindInt, KindFloat) }

// popName pops a word name given as a Symbol or String.
func (in *Interp) popName(end End) string {
	switch v := in.popKind(end, KindSymbol, KindString).(type) {
	case Symbol:
		return string(v)
	case String:
		return string(v)
	}
	return ""
}

// operands pops the right-hand operand, then the left-hand one.
func (in *Interp) operands(end End) (a, b Value) {
	b = in.pop(end)
	a = in.pop(end)
	return a, b
}

func (in *Interp) numbers(end End) (a, b Value) {
	b = in.popNumber(end)
	a = in.popNumber(end)
	return a, b
}

func (in *Interp) typeError(got Value, expected ...Kind) {
	in.halt(&Error{Kind: TypeError, Expected: expected, Got: got.Kind()})
}

//// arithmetic

func (in *Interp) arith(end End, intOp func(a, b Int) Int, floatOp func(a, b float64) float64) {
	a, b := in.numbers(end)
	if x, ok := a.(Int); ok {
		if y, ok := b.(Int); ok {
			in.push(end, intOp(x, y))
			return
		}
	}
	in.push(end, Float(floatOp(toFloat(a), toFloat(b))))
}

func (in *Interp) add(end End) {
	in.arith(end,
		func(a, b Int) Int { return a + b },
		func(a, b float64) float64 { return a + b })
}

func (in *Interp) sub(end End) {
	in.arith(end,
		func(a, b Int) Int { return a - b },
		func(a, b float64) float64 { return a - b })
}

func (in *Interp) mul(end End) {
	in.arith(end,
		func(a, b Int) Int { return a * b },
		func(a, b float64) float64 { return a * b })
}

func (in *Interp) div(end End) {
	in.arith(end,
		func(a, b Int) Int {
			if b == 0 {
				in.halt(&Error{Kind: DivisionByZero})
			}
			return a / b
		},
		func(a, b float64) float64 { return a / b })
}

func (in *Interp) mod(end End) {
	in.arith(end,
		func(a, b Int) Int {
			if b == 0 {
				in.halt(&Error{Kind: DivisionByZero})
			}
			return a % b
		},
		math.Mod)
}

func (in *Interp) neg(end End) {
	switch v := in.popNumber(end).(type) {
	case Int:
		in.push(end, -v)
	case Float:
		in.push(end, -v)
	}
}

func (in *Interp) abs(end End) {
	switch v := in.popNumber(end).(type) {
	case Int:
		if v < 0 {
			v = -v
		}
		in.push(end, v)
	case Float:
		in.push(end, Float(math.Abs(float64(v))))
	}
}

//// comparison

func (in *Interp) eq(end End) {
	a, b := in.operands(end)
	in.push(end, Bool(Equal(a, b)))
}

func (in *Interp) ne(end End) {
	a, b := in.operands(end)
	in.push(end, Bool(!Equal(a, b)))
}

// order compares two numbers or two strings; ok is false if either is NaN.
func (in *Interp) order(end End) (cmp int, ok bool) {
	a, b := in.operands(end)
	if x, isStr := a.(String); isStr {
		y, isStr := b.(String)
		if !isStr {
			in.typeError(b, KindString)
		}
		return strings.Compare(string(x), string(y)), true
	}
	if !isNumber(a) {
		in.typeError(a, KindInt, KindFloat, KindString)
	}
	if !isNumber(b) {
		in.typeError(b, KindInt, KindFloat)
	}
	if isNaN(a) || isNaN(b) {
		return 0, false
	}
	return compareNumbers(a, b), true
}

func (in *Interp) lt(end End) { c, ok := in.order(end); in.push(end, Bool(ok && c < 0)) }
func (in *Interp) gt(end End) { c, ok := in.order(end); in.push(end, Bool(ok && c > 0)) }
func (in *Interp) le(end End) { c, ok := in.order(end); in.push(end, Bool(ok && c <= 0)) }
func (in *Interp) ge(end End) { c, ok := in.order(end); in.push(end, Bool(ok && c >= 0)) }

//// logic and bits

// logic applies a logical operator to two Bools, or a bitwise one to two Ints.
func (in *Interp) logic(end End, boolOp func(a, b bool) bool, intOp func(a, b Int) Int) {
	a, b := in.operands(end)
	switch x := a.(type) {
	case Bool:
		y, ok := b.(Bool)
		if !ok {
			in.typeError(b, KindBool)
		}
		in.push(end, Bool(boolOp(bool(x), bool(y))))
	case Int:
		y, ok := b.(Int)
		if !ok {
			in.typeError(b, KindInt)
		}
		in.push(end, intOp(x, y))
	default:
		in.typeError(a, KindBool, KindInt)
	}
}

func (in *Interp) and(end End) {
	in.logic(end,
		func(a, b bool) bool { return a && b },
		func(a, b Int) Int { return a & b })
}

func (in *Interp) or(end End) {
	in.logic(end,
		func(a, b bool) bool { return a || b },
		func(a, b Int) Int { return a | b })
}

func (in *Interp) xor(end End) {
	in.logic(end,
		func(a, b bool) bool { return a != b },
		func(a, b Int) Int { return a ^ b })
}

func (in *Interp) not(end End) { in.push(end, !in.popBool(end)) }

// shift moves bits left or right; a negative count shifts the other way.
func shift(a, n Int, left bool) Int {
	if n < 0 {
		left, n = !left, -n
		if n < 0 {
			n = 64
		}
	}
	if left {
		return a << uint64(n)
	}
	return a >> uint64(n)
}

func (in *Interp) shl(end End) {
	n := in.popInt(end)
	in.push(end, shift(in.popInt(end), n, true))
}

func (in *Interp) shr(end End) {
	n := in.popInt(end)
	in.push(end, shift(in.popInt(end), n, false))
}

//// deque shuffling

func (in *Interp) dup(end End) {
	v, err := in.deque.Peek(end)
	in.haltif(err)
	in.push(end, v)
}

func (in *Interp) drop(end End) { in.pop(end) }

func (in *Interp) swap(end End) {
	a, b := in.operands(end)
	in.push(end, b)
	in.push(end, a)
}

func (in *Interp) over(end End) { in.push(end, in.deque.at(end, 1)) }

func (in *Interp) rotFront(End) { in.push(Front, in.pop(Back)) }
func (in *Interp) rotBack(End)  { in.push(Back, in.pop(Front)) }

func (in *Interp) move(end End) { in.push(end.opposite(), in.pop(end)) }

func (in *Interp) length(end End) { in.push(end, Int(in.deque.Len())) }
func (in *Interp) clear(End)      { in.deque.Clear() }

//// control

func (in *Interp) call(end End) {
	in.enter(frame{body: in.popQuotation(end).body, end: end, word: "call"})
}

func (in *Interp) ifElse(end End) {
	elseQ := in.popQuotation(end)
	thenQ := in.popQuotation(end)
	if in.popBool(end) {
		in.enter(frame{body: thenQ.body, end: end, word: "if"})
	} else {
		in.enter(frame{body: elseQ.body, end: end, word: "if"})
	}
}

func (in *Interp) while(end End) {
	body := in.popQuotation(end)
	cond := in.popQuotation(end)
	in.enter(frame{end: end, word: "while", loop: &loop{
		at:   in.tok,
		cond: cond,
		body: body,
	}})
}

func (in *Interp) times(end End) {
	body := in.popQuotation(end)
	n := in.popInt(end)
	in.enter(frame{end: end, word: "times", loop: &loop{
		at:    in.tok,
		body:  body,
		count: int64(n),
	}})
}

func (in *Interp) define(end End) {
	name := in.popName(end)
	body := in.popQuotation(end)
	in.dict.Define(name, body)
	in.logf("define %v %v", name, body)
}

func (in *Interp) forget(end End) {
	name := in.popName(end)
	in.haltif(in.dict.Forget(name))
	in.logf("forget %v", name)
}

//// values

func (in *Interp) quote(end End) {
	v := in.pop(end)
	in.push(end, &Quotation{body: []Token{{Kind: Literal, Value: v, Pos: in.tok.Pos}}})
}

func (in *Interp) compose(end End) {
	b := in.popQuotation(end)
	a := in.popQuotation(end)
	body := make([]Token, 0, len(a.body)+len(b.body))
	body = append(body, a.body...)
	body = append(body, b.body...)
	in.push(end, &Quotation{body: body})
}

func (in *Interp) concat(end End) {
	b := in.popString(end)
	a := in.popString(end)
	in.push(end, a+b)
}

func (in *Interp) typeOf(end End) { in.push(end, Symbol(in.pop(end).Kind().String())) }

//// output

func (in *Interp) print(end End) {
	v := in.pop(end)
	_, err := in.out.Write([]byte(Display(v) + "\n"))
	in.haltif(err)
}

func (in *Interp) emit(end End) {
	n := in.popInt(end)
	if n < 0 || n > utf8.MaxRune || !utf8.ValidRune(rune(n)) {
		in.halt(&Error{Kind: RangeError, Reason: fmt.Sprintf("invalid code point %d", n)})
	}
	in.haltif(writeRune(in.out, rune(n)))
}

func (in *Interp) trace(End) {
	_, err := in.out.Write([]byte(in.deque.String() + "\n"))
	in.haltif(err)
}

func (in *Interp) exit(end End) {
	code := in.popInt(end)
	if code == 0 {
		in.halt(nil)
	}
	in.halt(&Error{Kind: Exit, Code: int64(code)})
}
