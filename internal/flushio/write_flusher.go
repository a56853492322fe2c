// Package flushio adapts plain writers into ones that must be flushed before
// their output is guaranteed to be visible.
package flushio

import (
	"bufio"
	"io"
)

// WriteFlusher is a flush-able io.Writer.
type WriteFlusher interface {
	io.Writer
	Flush() error
}

// Discard is a WriteFlusher that drops everything written to it.
var Discard WriteFlusher = nopFlusher{io.Discard}

// NewWriteFlusher creates a flushable writer: io.Discard and in-memory
// buffers get a noop Flush, an existing WriteFlusher is returned as-is, and
// anything else is wrapped in a bufio.Writer.
func NewWriteFlusher(w io.Writer) WriteFlusher {
	switch impl := w.(type) {
	case nil:
		return Discard
	case WriteFlusher:
		return impl
	}
	if w == io.Discard {
		return Discard
	}

	// in memory buffers, as implemented by types like bytes.Buffer and
	// strings.Builder, do not need to be flushed
	type buffer interface {
		io.Writer
		Len() int
		Reset()
	}
	if _, isBuffer := w.(buffer); isBuffer {
		return nopFlusher{w}
	}

	return bufio.NewWriter(w)
}

type nopFlusher struct{ io.Writer }

func (nf nopFlusher) Flush() error { return nil }
