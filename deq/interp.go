package deq

import (
	"context"
	"errors"

	"github.com/jcorbin/godeq/internal/flushio"
	"github.com/jcorbin/godeq/internal/panicerr"
)

// Interp executes token sequences against a Deque and a Dictionary.
//
// An Interp is not safe for concurrent use; run independent programs on
// independent Interps.
type Interp struct {
	deque *Deque
	dict  *Dictionary
	out   flushio.WriteFlusher
	logfn func(mess string, args ...interface{})

	name      string
	maxDepth  int
	stepLimit int
	steps     int

	frames []frame
	tok    Token // token being executed
}

// frame is one level of the call stack: a token sequence being executed,
// or a loop driving repeated entry into its quotations.
type frame struct {
	body []Token
	pc   int
	end  End    // Front or Back, used by unmodified tokens
	word string // what entered the frame
	loop *loop
}

type loop struct {
	at      Token // the while or times token
	cond    *Quotation
	body    *Quotation
	count   int64
	testing bool // while awaits the condition's result
}

func (fr frame) exhausted() bool { return fr.loop == nil && fr.pc >= len(fr.body) }

func (in *Interp) logf(mess string, args ...interface{}) {
	if in.logfn != nil {
		in.logfn(mess, args...)
	}
}

func (in *Interp) halt(err error) {
	var de *Error
	if errors.As(err, &de) {
		if de.Pos == (Pos{}) {
			de.Pos = in.tok.Pos
		}
		if de.Word == "" && in.tok.Kind == WordRef {
			de.Word = in.tok.Name
		}
		if de.Depth == 0 {
			de.Depth = len(in.frames)
		}
	}

	// ignore any panics while trying to flush output
	func() {
		defer func() { recover() }()
		if ferr := in.out.Flush(); err == nil {
			err = ferr
		}
	}()

	if err == nil {
		in.logf("halt")
	} else {
		in.logf("halt error: %v", err)
	}
	panicerr.Halt(err)
}

func (in *Interp) haltif(err error) {
	if err != nil {
		in.halt(err)
	}
}

func (in *Interp) abort(cause error) {
	in.halt(&Error{Kind: Aborted, Err: cause})
}

func (in *Interp) run(ctx context.Context, prog []Token) {
	in.frames = append(in.frames[:0], frame{body: prog, end: Back, word: in.name})
	in.steps = 0
	defer func() { in.frames = in.frames[:0] }()

	done := ctx.Done()
	for {
		select {
		case <-done:
			in.abort(ctx.Err())
		default:
		}
		if !in.step() {
			return
		}
	}
}

// step executes the next token or loop iteration, returning false once the
// program has run to completion.
func (in *Interp) step() bool {
	for len(in.frames) > 0 {
		i := len(in.frames) - 1
		if in.frames[i].exhausted() {
			in.frames = in.frames[:i]
			continue
		}

		if lim := in.stepLimit; lim > 0 {
			if in.steps >= lim {
				in.abort(ErrStepLimit)
			}
			in.steps++
		}

		if in.frames[i].loop != nil {
			in.iterate(i)
			return true
		}

		fr := &in.frames[i]
		tok := fr.body[fr.pc]
		fr.pc++
		end := tok.End
		if end == DefaultEnd {
			end = fr.end
		}
		in.exec(tok, end)
		return true
	}
	return false
}

func (in *Interp) exec(tok Token, end End) {
	in.tok = tok
	if in.logfn != nil {
		in.logf("exec %v %v -- %v", tok.Pos, tok, in.deque)
	}
	switch tok.Kind {
	case Literal:
		in.push(end, tok.Value)
	case WordRef:
		in.dispatch(tok.Name, end)
	default:
		in.halt(lexError(tok.Pos, false, "unexpected "+tok.Kind.String()))
	}
}

func (in *Interp) dispatch(name string, end End) {
	def, err := in.dict.Resolve(name)
	in.haltif(err)
	if !def.IsBuiltin() {
		in.enter(frame{body: def.Body.body, end: end, word: name})
		return
	}
	if want, have := opArity[def.op], in.deque.Len(); have < want {
		in.halt(&Error{Kind: Underflow, Want: want, Have: have})
	}
	opTable[def.op](in, end)
}

// enter pushes a new frame, replacing the current one if it has nothing left
// to execute.
func (in *Interp) enter(fr frame) {
	if i := len(in.frames) - 1; i >= 0 && in.frames[i].exhausted() {
		in.frames = in.frames[:i]
	}
	if lim := in.maxDepth; lim > 0 && len(in.frames) >= lim {
		in.halt(&Error{Kind: RecursionLimit, Word: fr.word, Depth: len(in.frames) + 1, Limit: lim})
	}
	in.frames = append(in.frames, fr)
}

// iterate advances the loop frame at index i by one round.
func (in *Interp) iterate(i int) {
	fr := in.frames[i]
	lp := fr.loop
	in.tok = lp.at
	switch {
	case lp.cond == nil:
		if lp.count <= 0 {
			in.frames = in.frames[:i]
			return
		}
		lp.count--
		in.enter(frame{body: lp.body.body, end: fr.end, word: fr.word})

	case !lp.testing:
		lp.testing = true
		in.enter(frame{body: lp.cond.body, end: fr.end, word: fr.word})

	default:
		lp.testing = false
		if !in.popBool(fr.end) {
			in.frames = in.frames[:i]
			return
		}
		in.enter(frame{body: lp.body.body, end: fr.end, word: fr.word})
	}
}
