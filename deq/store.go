package deq

import (
	"errors"
	"strings"

	"github.com/jcorbin/godeq/internal/deque"
)

// Deque is the double-ended value store that all words operate on. Index 0
// is the front; the back behaves like a traditional stack top.
//
// Pops and peeks on an empty deque fail with an Underflow *Error; pushes
// beyond a non-zero limit fail with a CapacityExceeded *Error.
type Deque struct {
	values deque.Deque[Value]
}

// NewDeque creates an empty deque holding at most limit values; a limit of
// 0 means unlimited.
func NewDeque(limit int) *Deque {
	var d Deque
	d.values.Limit = limit
	return &d
}

// Len returns the number of values held.
func (d *Deque) Len() int { return d.values.Len() }

// IsEmpty returns true if the deque holds no values.
func (d *Deque) IsEmpty() bool { return d.values.IsEmpty() }

// Limit returns the capacity limit, 0 meaning unlimited.
func (d *Deque) Limit() int { return d.values.Limit }

// SetLimit changes the capacity limit; values already held are kept even if
// they exceed it.
func (d *Deque) SetLimit(limit int) { d.values.Limit = limit }

func (d *Deque) PushFront(v Value) error { return storeError(d.values.PushFront(v)) }
func (d *Deque) PushBack(v Value) error  { return storeError(d.values.PushBack(v)) }

func (d *Deque) PopFront() (Value, error) {
	v, err := d.values.PopFront()
	return v, storeError(err)
}

func (d *Deque) PopBack() (Value, error) {
	v, err := d.values.PopBack()
	return v, storeError(err)
}

func (d *Deque) PeekFront() (Value, error) {
	v, err := d.values.PeekFront()
	return v, storeError(err)
}

func (d *Deque) PeekBack() (Value, error) {
	v, err := d.values.PeekBack()
	return v, storeError(err)
}

// Push adds v at the given end; DefaultEnd means Back.
func (d *Deque) Push(end End, v Value) error {
	if end == Front {
		return d.PushFront(v)
	}
	return d.PushBack(v)
}

// Pop removes a value from the given end; DefaultEnd means Back.
func (d *Deque) Pop(end End) (Value, error) {
	if end == Front {
		return d.PopFront()
	}
	return d.PopBack()
}

// Peek returns the value at the given end without removing it.
func (d *Deque) Peek(end End) (Value, error) {
	if end == Front {
		return d.PeekFront()
	}
	return d.PeekBack()
}

// at returns the i-th value counting inward from the given end.
func (d *Deque) at(end End, i int) Value {
	if end == Front {
		return d.values.At(i)
	}
	return d.values.At(d.values.Len() - 1 - i)
}

// Clear removes all values.
func (d *Deque) Clear() { d.values.Clear() }

// Clone returns an independent copy; values themselves are immutable and
// shared.
func (d *Deque) Clone() *Deque {
	return &Deque{values: *d.values.Clone()}
}

// Snapshot returns the values front to back.
func (d *Deque) Snapshot() Snapshot {
	return Snapshot(d.values.AppendTo(make([]Value, 0, d.values.Len())))
}

func (d *Deque) String() string { return d.Snapshot().String() }

func storeError(err error) error {
	var (
		lim deque.LimitError
		emp deque.EmptyError
	)
	switch {
	case err == nil:
		return nil
	case errors.As(err, &lim):
		return &Error{Kind: CapacityExceeded, Limit: lim.Limit}
	case errors.As(err, &emp):
		return &Error{Kind: Underflow, Want: 1}
	}
	return err
}

// Snapshot is a copy of deque contents, front to back.
type Snapshot []Value

// String renders the snapshot as [v1 v2 ...] in literal syntax.
func (snap Snapshot) String() string {
	var sb strings.Builder
	sb.WriteByte('[')
	for i, v := range snap {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(v.String())
	}
	sb.WriteByte(']')
	return sb.String()
}

// Equal reports whether two snapshots hold equal values in the same order.
func (snap Snapshot) Equal(other Snapshot) bool {
	if len(snap) != len(other) {
		return false
	}
	for i := range snap {
		if !Equal(snap[i], other[i]) {
			return false
		}
	}
	return true
}
