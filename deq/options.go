package deq

import (
	"io"

	"github.com/jcorbin/godeq/internal/flushio"
)

// Option configures an Interp.
type Option interface{ apply(in *Interp) }

// DefaultMaxDepth bounds nested quotation execution unless WithMaxDepth
// says otherwise.
const DefaultMaxDepth = 1000

var defaults = []Option{
	withOutput(io.Discard),
	withMaxDepth(DefaultMaxDepth),
}

// Options combines several options into one.
func Options(opts ...Option) Option { return options(opts) }

// WithOutput directs print, emit, and trace; output is discarded by default.
func WithOutput(w io.Writer) Option { return withOutput(w) }

// WithLogf installs a trace logging function, called once per executed
// token; nil disables logging.
func WithLogf(logfn func(mess string, args ...interface{})) Option { return withLogfn(logfn) }

// WithName sets the source name reported in token positions.
func WithName(name string) Option { return withName(name) }

// WithMaxDepth bounds the call stack; exceeding it fails with
// RecursionLimit. A depth of 0 removes the bound.
func WithMaxDepth(depth int) Option { return withMaxDepth(depth) }

// WithCapacity limits how many values the deque may hold; pushing past it
// fails with CapacityExceeded. A capacity of 0 removes the limit.
func WithCapacity(limit int) Option { return withCapacity(limit) }

// WithStepLimit aborts a run after n execution steps; 0 means no limit.
func WithStepLimit(n int) Option { return withStepLimit(n) }

func (in *Interp) apply(opts ...Option) {
	for _, opt := range defaults {
		opt.apply(in)
	}
	options(opts).apply(in)
}

type options []Option
type withLogfn func(mess string, args ...interface{})
type outputOption struct{ io.Writer }
type withName string
type withMaxDepth int
type withCapacity int
type withStepLimit int

func withOutput(w io.Writer) outputOption { return outputOption{w} }

func (opts options) apply(in *Interp) {
	for _, opt := range opts {
		if opt != nil {
			opt.apply(in)
		}
	}
}

func (logfn withLogfn) apply(in *Interp) { in.logfn = logfn }

func (o outputOption) apply(in *Interp) {
	if in.out != nil {
		in.out.Flush()
	}
	in.out = flushio.NewWriteFlusher(o.Writer)
}

func (name withName) apply(in *Interp)      { in.name = string(name) }
func (depth withMaxDepth) apply(in *Interp) { in.maxDepth = int(depth) }
func (lim withCapacity) apply(in *Interp)   { in.deque.SetLimit(int(lim)) }
func (lim withStepLimit) apply(in *Interp)  { in.stepLimit = int(lim) }
