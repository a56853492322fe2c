package deq

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type interpTestCases []interpTestCase

func (its interpTestCases) run(t *testing.T) {
	for _, it := range its {
		if !t.Run(it.name, it.run) {
			return
		}
	}
}

func interpTest(name string) (it interpTestCase) {
	it.name = name
	return it
}

type interpTestCase struct {
	name    string
	source  string
	opts    []Option
	timeout time.Duration
	wantErr error
	expect  []func(t *testing.T, res interpResult)
}

type interpResult struct {
	in   *Interp
	snap Snapshot
	err  error
	out  string
}

func (it interpTestCase) withSource(lines ...string) interpTestCase {
	it.source = strings.Join(lines, "\n")
	return it
}

func (it interpTestCase) withOptions(opts ...Option) interpTestCase {
	it.opts = append(it.opts, opts...)
	return it
}

func (it interpTestCase) withTimeout(timeout time.Duration) interpTestCase {
	it.timeout = timeout
	return it
}

func (it interpTestCase) expectDeque(values ...Value) interpTestCase {
	it.expect = append(it.expect, func(t *testing.T, res interpResult) {
		if diff := cmp.Diff([]Value(values), []Value(res.in.Deque().Snapshot()), valueComparer, cmpopts.EquateEmpty()); diff != "" {
			t.Errorf("unexpected deque (-want +got):\n%v", diff)
		}
	})
	return it
}

func (it interpTestCase) expectSameAs(source string) interpTestCase {
	it.expect = append(it.expect, func(t *testing.T, res interpResult) {
		want, err := Run(context.Background(), source)
		require.NoError(t, err, "unexpected error from %q", source)
		if diff := cmp.Diff([]Value(want), []Value(res.snap), valueComparer, cmpopts.EquateEmpty()); diff != "" {
			t.Errorf("expected same deque as %q (-want +got):\n%v", source, diff)
		}
	})
	return it
}

func (it interpTestCase) expectOutput(lines ...string) interpTestCase {
	it.expect = append(it.expect, func(t *testing.T, res interpResult) {
		assert.Equal(t, strings.Join(lines, "\n"), res.out, "expected output")
	})
	return it
}

func (it interpTestCase) expectError(kind error, checks ...func(t *testing.T, err *Error)) interpTestCase {
	it.wantErr = kind
	it.expect = append(it.expect, func(t *testing.T, res interpResult) {
		var de *Error
		if assert.True(t, errors.As(res.err, &de), "expected a *deq.Error, got %T", res.err) {
			for _, check := range checks {
				check(t, de)
			}
		}
	})
	return it
}

func (it interpTestCase) expectErrorString(message string) interpTestCase {
	it.expect = append(it.expect, func(t *testing.T, res interpResult) {
		assert.EqualError(t, res.err, message)
	})
	return it
}

func (it interpTestCase) expectDefined(name, body string) interpTestCase {
	it.expect = append(it.expect, func(t *testing.T, res interpResult) {
		def, err := res.in.Dictionary().Resolve(name)
		if assert.NoError(t, err) {
			assert.False(t, def.IsBuiltin(), "expected %v to be user defined", name)
			assert.Equal(t, body, def.Body.String())
		}
	})
	return it
}

func (it interpTestCase) run(t *testing.T) {
	res := it.runInterp(t, nil)
	if t.Failed() {
		t.Logf("re-running %q with tracing", it.source)
		it.runInterp(t, t.Logf)
		return
	}
	for _, expect := range it.expect {
		expect(t, res)
	}
}

func (it interpTestCase) runInterp(t *testing.T, logf func(string, ...interface{})) (res interpResult) {
	const defaultTimeout = time.Second
	timeout := it.timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	var out strings.Builder
	opts := append([]Option{WithOutput(&out)}, it.opts...)
	if logf != nil {
		opts = append(opts, WithLogf(logf))
	}
	res.in = New(opts...)
	res.snap, res.err = res.in.Run(ctx, it.source)
	res.out = out.String()

	if it.wantErr != nil {
		assert.True(t, errors.Is(res.err, it.wantErr), "expected error: %v\ngot: %+v", it.wantErr, res.err)
	} else {
		assert.NoError(t, res.err, "unexpected run error")
	}
	return res
}

var valueComparer = cmp.Comparer(func(a, b Value) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Kind() == b.Kind() && a.String() == b.String()
})

func quot(src string) *Quotation {
	toks, err := Lex("", src)
	if err != nil {
		panic(err)
	}
	return NewQuotation(toks...)
}

func wantWord(word string) func(t *testing.T, err *Error) {
	return func(t *testing.T, err *Error) { assert.Equal(t, word, err.Word, "expected error word") }
}

func wantPos(line, col int) func(t *testing.T, err *Error) {
	return func(t *testing.T, err *Error) {
		assert.Equal(t, line, err.Pos.Line, "expected error line")
		assert.Equal(t, col, err.Pos.Col, "expected error column")
	}
}

func wantOperands(want, have int) func(t *testing.T, err *Error) {
	return func(t *testing.T, err *Error) {
		assert.Equal(t, want, err.Want, "expected wanted operands")
		assert.Equal(t, have, err.Have, "expected available operands")
	}
}

//// tests

func TestInterp_literals(t *testing.T) {
	interpTestCases{
		interpTest("empty").withSource("").expectDeque(),
		interpTest("comments only").withSource("# nothing", "  # to see").expectDeque(),
		interpTest("numbers").withSource("1 -2 +3 0.5 -1.25").
			expectDeque(Int(1), Int(-2), Int(3), Float(0.5), Float(-1.25)),
		interpTest("bools").withSource("true false").expectDeque(Bool(true), Bool(false)),
		interpTest("strings").withSource(`"a b" "say \"hi\"\n" ""`).
			expectDeque(String("a b"), String("say \"hi\"\n"), String("")),
		interpTest("symbols").withSource(":foo :+").expectDeque(Symbol("foo"), Symbol("+")),
		interpTest("chars").withSource(`'a' '\n' <ESC> ^C ' '`).
			expectDeque(Int('a'), Int('\n'), Int(0x1b), Int(3), Int(' ')),
		interpTest("quotations are not executed").withSource("[1 2 +] [foo]").
			expectDeque(quot("1 2 +"), quot("foo")),
		interpTest("quotation adjacent brackets").withSource(`[[1]["x"]]`).
			expectDeque(quot(`[1] ["x"]`)),
	}.run(t)
}

func TestInterp_arithmetic(t *testing.T) {
	interpTestCases{
		// the first popped operand is the right-hand one
		interpTest("add").withSource("3 4 +").expectDeque(Int(7)),
		interpTest("sub").withSource("3 4 -").expectDeque(Int(-1)),
		interpTest("mul").withSource("3 4 *").expectDeque(Int(12)),
		interpTest("div").withSource("12 4 /").expectDeque(Int(3)),
		interpTest("div order").withSource("4 12 /").expectDeque(Int(0)),
		interpTest("div truncates").withSource("-7 2 /").expectDeque(Int(-3)),
		interpTest("mod").withSource("-7 2 mod 7 3 mod").expectDeque(Int(-1), Int(1)),
		interpTest("mixed float").withSource("1 2.5 + 1.5 2 *").expectDeque(Float(3.5), Float(3)),
		interpTest("float div").withSource("1.0 4 /").expectDeque(Float(0.25)),
		interpTest("neg abs").withSource("5 neg -3 abs -1.5 abs").expectDeque(Int(-5), Int(3), Float(1.5)),
		interpTest("wraps around").withSource("9223372036854775807 1 +").
			expectDeque(Int(-9223372036854775808)),
		interpTest("div by zero").withSource("7 0 /").
			expectError(DivisionByZero, wantWord("/"), wantPos(1, 5)),
		interpTest("mod by zero").withSource("7 0 mod").expectError(DivisionByZero),
		interpTest("not a number").withSource(`1 "2" +`).
			expectError(TypeError, wantWord("+"), func(t *testing.T, err *Error) {
				assert.Equal(t, []Kind{KindInt, KindFloat}, err.Expected)
				assert.Equal(t, KindString, err.Got)
			}),
	}.run(t)
}

func TestInterp_comparison(t *testing.T) {
	interpTestCases{
		interpTest("equality").withSource(`1 1 = 1 2 = 1 1.0 = "a" "a" = :a "a" = [1 2] [1 2] =`).
			expectDeque(Bool(true), Bool(false), Bool(true), Bool(true), Bool(false), Bool(true)),
		interpTest("inequality").withSource("1 2 <> true true <>").expectDeque(Bool(true), Bool(false)),
		interpTest("ordering").withSource("3 4 < 3 4 > 4 4 <= 4 4 >= 2.5 2 >").
			expectDeque(Bool(true), Bool(false), Bool(true), Bool(true), Bool(true)),
		interpTest("string ordering").withSource(`"abc" "abd" < "b" "a" <`).
			expectDeque(Bool(true), Bool(false)),
		interpTest("unordered").withSource(`1 "a" <`).expectError(TypeError, wantWord("<")),
		interpTest("exact mixed comparison").
			withSource(
				"9007199254740993 9007199254740992.0 =",
				"9007199254740993 9007199254740992.0 >",
				"9007199254740992.0 9007199254740993 <",
				"-2.5 -2 < 3 2.5 >",
				"9223372036854775807 9223372036854775808.0 <",
				"-Inf -9223372036854775808 <",
				"1 NaN = NaN 1 <").
			expectDeque(
				Bool(false), Bool(true), Bool(true),
				Bool(true), Bool(true),
				Bool(true),
				Bool(true),
				Bool(false), Bool(false)),
	}.run(t)
}

func TestInterp_logic(t *testing.T) {
	interpTestCases{
		interpTest("bools").withSource("true false and true false or true true xor false not").
			expectDeque(Bool(false), Bool(true), Bool(false), Bool(true)),
		interpTest("bitwise").withSource("6 3 and 6 3 or 6 3 xor").
			expectDeque(Int(2), Int(7), Int(5)),
		interpTest("shifts").withSource("1 4 shl 16 2 shr -8 1 shr 1 -1 shl").
			expectDeque(Int(16), Int(4), Int(-4), Int(0)),
		interpTest("mixed").withSource("true 1 and").expectError(TypeError, wantWord("and")),
		interpTest("not int").withSource("1 not").expectError(TypeError, wantWord("not")),
	}.run(t)
}

func TestInterp_shuffling(t *testing.T) {
	interpTestCases{
		interpTest("dup").withSource("1 dup").expectDeque(Int(1), Int(1)),
		interpTest("drop").withSource("1 2 drop").expectDeque(Int(1)),
		interpTest("swap").withSource("1 2 swap").expectDeque(Int(2), Int(1)),
		interpTest("over").withSource("1 2 over").expectDeque(Int(1), Int(2), Int(1)),
		interpTest("rot-front").withSource("1 2 3 rot-front").expectDeque(Int(3), Int(1), Int(2)),
		interpTest("rot-back").withSource("1 2 3 rot-back").expectDeque(Int(2), Int(3), Int(1)),
		interpTest("rot ignores direction").withSource("1 2 3 !rot-front").
			expectDeque(Int(3), Int(1), Int(2)),
		interpTest("move").withSource("1 2 3 move").expectDeque(Int(3), Int(1), Int(2)),
		interpTest("move front").withSource("1 2 3 !move").expectDeque(Int(2), Int(3), Int(1)),
		interpTest("len").withSource("1 2 3 len").expectDeque(Int(1), Int(2), Int(3), Int(3)),
		interpTest("clear").withSource("1 2 clear len").expectDeque(Int(0)),
	}.run(t)
}

func TestInterp_directions(t *testing.T) {
	interpTestCases{
		interpTest("push front").withSource("1 2 !3").expectDeque(Int(3), Int(1), Int(2)),
		interpTest("push back explicitly").withSource("1 !2 3!").expectDeque(Int(2), Int(1), Int(3)),
		interpTest("drop front").withSource("1 2 3 !drop").expectDeque(Int(2), Int(3)),
		interpTest("drop back").withSource("1 2 3 drop!").expectDeque(Int(1), Int(2)),
		interpTest("mirrored sub").withSource("10 3 !-").expectDeque(Int(-7)),
		interpTest("front literals").withSource(`1 !"s" ![2] !:k`).
			expectDeque(Symbol("k"), quot("2"), String("s"), Int(1)),
		interpTest("front call").withSource("1 ![2 3] !call").expectDeque(Int(3), Int(2), Int(1)),
		interpTest("front user word").withSource("[1 +] :inc define", "5 !7 !inc").
			expectDeque(Int(8), Int(5)),
		interpTest("nested tokens may override").withSource("[!0 1!] :ends define", "5 ends !ends").
			expectDeque(Int(0), Int(0), Int(5), Int(1), Int(1)),
		interpTest("front underflow").withSource("!drop").
			expectError(Underflow, wantWord("drop"), wantOperands(1, 0)),
		interpTest("bang is a word").withSource("!").expectError(UnknownWord, wantWord("!")),
	}.run(t)
}

func TestInterp_control(t *testing.T) {
	interpTestCases{
		interpTest("call").withSource("[1 2 +] call").expectDeque(Int(3)),
		interpTest("define then invoke").withSource(`[1 2 +] "add3" define add3`).
			expectSameAs("1 2 +").
			expectDefined("add3", "[1 2 +]"),
		interpTest("define symbol name").withSource("[dup *] :square define 7 square").
			expectDeque(Int(49)),
		interpTest("if true").withSource("true [1] [2] if").expectDeque(Int(1)),
		interpTest("if false").withSource("false [1] [2] if").expectDeque(Int(2)),
		interpTest("if wants a bool").withSource("1 [2] [3] if").
			expectError(TypeError, wantWord("if"), wantPos(1, 11), func(t *testing.T, err *Error) {
				assert.Equal(t, []Kind{KindBool}, err.Expected)
				assert.Equal(t, KindInt, err.Got)
			}),
		interpTest("while counts").withSource("0 [dup 3 <] [1 +] while").expectDeque(Int(3)),
		interpTest("while never").withSource("5 [dup 3 <] [1 +] while").expectDeque(Int(5)),
		interpTest("while wants a bool").withSource("[1] [] while").
			expectError(TypeError, wantWord("while")),
		interpTest("times").withSource("0 3 [1 +] times").expectDeque(Int(3)),
		interpTest("times none").withSource("0 -1 [1 +] times").expectDeque(Int(0)),
		interpTest("nested loops").withSource("0 3 [2 [1 +] times] times").expectDeque(Int(6)),
		interpTest("redefine builtin").withSource("[drop 42] :+ define 1 2 +").
			expectDeque(Int(1), Int(42)),
		interpTest("redefine user word").withSource("[1] :x define [2] :x define x").
			expectDeque(Int(2)),
		interpTest("forget").withSource("[1] :one define :one forget [2] :two define").
			expectDefined("two", "[2]").
			expectDeque(),
		interpTest("forget brings back a builtin").withSource(`[drop 42] :+ define "+" forget 1 2 +`).
			expectDeque(Int(3)),
		interpTest("forgotten word").withSource("[1] :one define :one forget one").
			expectError(UnknownWord, wantWord("one")),
		interpTest("forget builtin").withSource(":dup forget").
			expectError(UnknownWord, wantWord("dup")),
		interpTest("forget wants a name").withSource("1 forget").
			expectError(TypeError, wantWord("forget")),
		interpTest("late binding").withSource("[y] :x define [7] :y define x").
			expectDeque(Int(7)),
		interpTest("define wants a quotation").withSource("1 :x define").
			expectError(TypeError, wantWord("define")),
		interpTest("define wants a name").withSource("[1] 2 define").
			expectError(TypeError, wantWord("define"), func(t *testing.T, err *Error) {
				assert.Equal(t, []Kind{KindSymbol, KindString}, err.Expected)
			}),
		interpTest("tail recursion").
			withSource("[1 + dup 10000 < [loop] [] if] :loop define 0 loop").
			withOptions(WithMaxDepth(8)).
			expectDeque(Int(10000)),
		interpTest("recursion limit").withSource("[recur 1] :recur define recur").
			withOptions(Options(WithMaxDepth(10))).
			expectError(RecursionLimit, func(t *testing.T, err *Error) {
				assert.Equal(t, 10, err.Limit)
				assert.Equal(t, 11, err.Depth)
				assert.Equal(t, "recur", err.Word)
			}),
		interpTest("default recursion limit").withSource("[recur 1] :recur define recur").
			expectError(RecursionLimit, func(t *testing.T, err *Error) {
				assert.Equal(t, DefaultMaxDepth, err.Limit)
			}),
	}.run(t)
}

func TestInterp_values(t *testing.T) {
	interpTestCases{
		interpTest("quote").withSource("5 quote").expectDeque(quot("5")),
		interpTest("quote call").withSource(`"x" quote call`).expectDeque(String("x")),
		interpTest("compose").withSource("[1] [2 +] compose dup call").
			expectDeque(quot("1 2 +"), Int(3)),
		interpTest("concat").withSource(`"ab" "cd" concat`).expectDeque(String("abcd")),
		interpTest("type").withSource(`5 type 1.5 type "s" type :x type [] type true type`).
			expectDeque(Symbol("int"), Symbol("float"), Symbol("string"),
				Symbol("symbol"), Symbol("quotation"), Symbol("bool")),
	}.run(t)
}

func TestInterp_output(t *testing.T) {
	interpTestCases{
		interpTest("print").withSource(`"hi" print 42 print :sym print`).
			expectOutput("hi", "42", ":sym", "").
			expectDeque(),
		interpTest("emit").withSource("72 emit 'i' emit <NL> emit").expectOutput("Hi", ""),
		interpTest("emit negative").withSource("'a' emit -1 emit").
			expectOutput("a").
			expectError(RangeError, wantWord("emit"), wantPos(1, 13), func(t *testing.T, err *Error) {
				assert.Equal(t, "invalid code point -1", err.Reason)
			}),
		interpTest("emit beyond runes").withSource("4294967361 emit").
			expectOutput("").
			expectError(RangeError, wantWord("emit"), func(t *testing.T, err *Error) {
				assert.Equal(t, "invalid code point 4294967361", err.Reason)
			}),
		interpTest("emit surrogate").withSource("55296 emit").
			expectErrorString("deq: range error in emit: invalid code point 55296 at 1:7").
			expectError(RangeError),
		interpTest("trace").withSource("1 2 trace 3 trace").
			expectOutput("[1 2]", "[1 2 3]", "").
			expectDeque(Int(1), Int(2), Int(3)),
		interpTest("exit 0").withSource(`1 2 "bye" print 0 exit 3`).
			expectOutput("bye", "").
			expectDeque(Int(1), Int(2)),
		interpTest("exit code").withSource(`"partial" print 5 exit`).
			expectOutput("partial", "").
			expectError(Exit, func(t *testing.T, err *Error) {
				assert.Equal(t, int64(5), err.Code)
			}),
	}.run(t)
}

func TestInterp_errors(t *testing.T) {
	interpTestCases{
		interpTest("underflow").withSource("+").
			expectError(Underflow, wantWord("+"), wantPos(1, 1), wantOperands(2, 0)).
			expectErrorString("deq: underflow: + needs 2 operands, have 0 at 1:1"),
		interpTest("underflow with some").withSource("1 +").
			expectError(Underflow, wantOperands(2, 1)),
		interpTest("unknown word").withSource("foo").
			expectError(UnknownWord, wantWord("foo")).
			expectErrorString(`deq: unknown word "foo" at 1:1`),
		interpTest("named source").withSource("1", "  bar").withOptions(WithName("prog.deq")).
			expectError(UnknownWord, wantWord("bar"), wantPos(2, 3)).
			expectErrorString(`deq: unknown word "bar" at prog.deq:2:3`),
		interpTest("halts on first error").withSource(`1 foo "after" print`).
			expectError(UnknownWord).
			expectOutput("").
			expectDeque(Int(1)),
		interpTest("lex errors run nothing").withSource(`"x" print 1 2 ]`).
			expectError(LexError, wantPos(1, 15)).
			expectErrorString("deq: lex error: unexpected ] at 1:15").
			expectOutput(""),
		interpTest("capacity").withSource("1 2 3").withOptions(WithCapacity(2)).
			expectError(CapacityExceeded, wantPos(1, 5), func(t *testing.T, err *Error) {
				assert.Equal(t, 2, err.Limit)
			}).
			expectDeque(Int(1), Int(2)),
		interpTest("runaway expansion").withSource("[1 grow] :grow define grow").
			withOptions(WithCapacity(100)).
			expectError(CapacityExceeded),
		interpTest("step limit").withSource("[true] [] while").withOptions(WithStepLimit(100)).
			expectError(Aborted, func(t *testing.T, err *Error) {
				assert.True(t, errors.Is(err, ErrStepLimit))
			}),
		interpTest("within step limit").withSource("1 2 +").withOptions(WithStepLimit(3)).
			expectDeque(Int(3)),
		interpTest("deadline").withSource("[true] [] while").withTimeout(10*time.Millisecond).
			expectError(Aborted, func(t *testing.T, err *Error) {
				assert.True(t, errors.Is(err, context.DeadlineExceeded))
			}),
	}.run(t)
}

func TestInterp_underflowEveryBuiltin(t *testing.T) {
	for op := opcode(1); op < opMax; op++ {
		arity := opArity[op]
		if arity == 0 {
			continue
		}
		name := opNames[op]
		src := strings.TrimSpace(strings.Repeat("1 ", arity-1) + name)
		t.Run(name, func(t *testing.T) {
			_, err := Run(context.Background(), src)
			var de *Error
			require.True(t, errors.As(err, &de), "expected *Error, got %v", err)
			assert.Equal(t, Underflow, de.Kind)
			assert.Equal(t, arity, de.Want)
			assert.Equal(t, arity-1, de.Have)
			assert.Equal(t, name, de.Word)
		})
	}
}

func TestInterp_logging(t *testing.T) {
	var lines []string
	_, err := Run(context.Background(), "1 2 +", WithLogf(func(mess string, args ...interface{}) {
		lines = append(lines, fmt.Sprintf(mess, args...))
	}))
	require.NoError(t, err)
	assert.Equal(t, []string{
		"exec 1:1 1 -- []",
		"exec 1:3 2 -- [1]",
		"exec 1:5 + -- [1 2]",
	}, lines)
}

func TestInterp_nonTransactional(t *testing.T) {
	in := New()
	_, err := in.Run(context.Background(), "[9] :nine define 1 2 foo")
	require.True(t, errors.Is(err, UnknownWord))
	assert.Equal(t, "[1 2]", in.Deque().String())

	snap, err := in.Run(context.Background(), "nine +")
	require.NoError(t, err)
	assert.Equal(t, "[1 11]", snap.String())
}

func TestRunWithState(t *testing.T) {
	ctx := context.Background()
	store, dict := NewDeque(0), NewDictionary()

	snap, dict, err := RunWithState(ctx, "1 2", store, dict)
	require.NoError(t, err)
	assert.Equal(t, "[1 2]", snap.String())

	snap, dict, err = RunWithState(ctx, "+ [dup *] :sq define", store, dict)
	require.NoError(t, err)
	assert.Equal(t, "[3]", snap.String())

	snap, dict, err = RunWithState(ctx, "sq", store, dict)
	require.NoError(t, err)
	assert.Equal(t, "[9]", snap.String())
	assert.Equal(t, "[9]", store.String())

	// failed fragments leave state untouched
	_, dict, err = RunWithState(ctx, "[0] :zero define drop drop", store, dict)
	require.True(t, errors.Is(err, Underflow), "expected underflow, got %v", err)
	assert.Equal(t, "[9]", store.String())
	_, err = dict.Resolve("zero")
	assert.True(t, errors.Is(err, UnknownWord))

	_, _, err = RunWithState(ctx, "[", store, dict)
	assert.True(t, IsIncomplete(err))
	assert.Equal(t, "[9]", store.String())

	names := make([]string, 0, 1)
	for _, def := range dict.UserWords() {
		names = append(names, def.Name)
	}
	assert.Equal(t, []string{"sq"}, names)

	snap, _, err = RunWithState(ctx, "1 2 3", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "[1 2 3]", snap.String())
}

func TestRun_independent(t *testing.T) {
	ctx := context.Background()
	_, err := Run(ctx, "[1] :one define")
	require.NoError(t, err)
	_, err = Run(ctx, "one")
	assert.True(t, errors.Is(err, UnknownWord), "definitions must not leak between runs")
}
