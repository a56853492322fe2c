package deq

import (
	"context"

	"github.com/jcorbin/godeq/internal/panicerr"
)

// New creates an Interp with an empty deque and a dictionary holding only
// the built-in words.
func New(opts ...Option) *Interp {
	return newInterp(NewDeque(0), NewDictionary(), opts)
}

func newInterp(store *Deque, dict *Dictionary, opts []Option) *Interp {
	in := &Interp{deque: store, dict: dict}
	in.apply(opts...)
	return in
}

// Deque returns the deque the Interp operates on.
func (in *Interp) Deque() *Deque { return in.deque }

// Dictionary returns the dictionary the Interp resolves words in.
func (in *Interp) Dictionary() *Dictionary { return in.dict }

// Run lexes and executes source against the Interp's current state,
// returning a snapshot of the deque once the program completes.
//
// State changes made before an error are kept; use RunWithState for
// all-or-nothing execution.
func (in *Interp) Run(ctx context.Context, source string) (Snapshot, error) {
	prog, err := Lex(in.name, source)
	if err != nil {
		return nil, err
	}
	name := in.name
	if name == "" {
		name = "deq"
	}
	if err := panicerr.Recover(name, func() error {
		in.run(ctx, prog)
		return in.out.Flush()
	}); err != nil {
		return nil, err
	}
	return in.deque.Snapshot(), nil
}

// Run executes a complete program from an empty deque and a dictionary
// seeded with the built-in words, returning the final deque contents front
// to back.
func Run(ctx context.Context, source string, opts ...Option) (Snapshot, error) {
	return New(opts...).Run(ctx, source)
}

// RunWithState executes source against copies of store and dict, threading
// state across successive program fragments. Only a successful run is
// committed back into store and dict; on error both are left untouched.
// Nil arguments start from fresh state.
func RunWithState(
	ctx context.Context,
	source string,
	store *Deque,
	dict *Dictionary,
	opts ...Option,
) (Snapshot, *Dictionary, error) {
	if store == nil {
		store = NewDeque(0)
	}
	if dict == nil {
		dict = NewDictionary()
	}
	in := newInterp(store.Clone(), dict.Clone(), opts)
	snap, err := in.Run(ctx, source)
	if err != nil {
		return nil, dict, err
	}
	*store = *in.deque
	*dict = *in.dict
	return snap, dict, nil
}
