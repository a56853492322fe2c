// Package deque provides a paged double-ended queue.
package deque

import "fmt"

// DefaultPageSize provides a default for Deque.PageSize.
const DefaultPageSize = 64

// Deque implements a double-ended queue stored in fixed-size pages.
//
// Pages are kept in a window of a larger page table that is re-centered
// whenever either end runs out of room, so pushing and popping at either end
// is amortized O(1). The zero value is an empty, unlimited deque.
type Deque[T any] struct {
	// PageSize specifies the length for newly allocated pages.
	PageSize int

	// Limit specifies a maximum number of elements, past which any push
	// results in a LimitError; 0 means unlimited.
	Limit int

	pages [][]T // pages[lo:hi] are allocated
	lo    int
	hi    int
	head  int // offset of the front element within pages[lo]
	size  int
}

// LimitError indicates that a push would exceed Limit.
type LimitError struct {
	Op    string
	Limit int
}

func (lim LimitError) Error() string {
	return fmt.Sprintf("deque limit %v exceeded by %v", lim.Limit, lim.Op)
}

// EmptyError indicates a pop or peek on an empty deque.
type EmptyError struct {
	Op string
}

func (emp EmptyError) Error() string {
	return fmt.Sprintf("%v on empty deque", emp.Op)
}

// Len returns the number of elements.
func (d *Deque[T]) Len() int { return d.size }

// IsEmpty returns true if the deque holds no elements.
func (d *Deque[T]) IsEmpty() bool { return d.size == 0 }

func (d *Deque[T]) pageSize() int {
	if d.PageSize <= 0 {
		d.PageSize = DefaultPageSize
	}
	return d.PageSize
}

func (d *Deque[T]) checkLimit(op string) error {
	if lim := d.Limit; lim > 0 && d.size >= lim {
		return LimitError{op, lim}
	}
	return nil
}

// PushBack appends v after the last element.
// Returns a LimitError if Limit would be exceeded.
func (d *Deque[T]) PushBack(v T) error {
	if err := d.checkLimit("push_back"); err != nil {
		return err
	}
	ps := d.pageSize()
	pos := d.head + d.size
	if d.lo+pos/ps == d.hi {
		if d.hi == len(d.pages) {
			d.recenter()
		}
		d.pages[d.hi] = make([]T, ps)
		d.hi++
	}
	d.pages[d.lo+pos/ps][pos%ps] = v
	d.size++
	return nil
}

// PushFront prepends v before the first element.
// Returns a LimitError if Limit would be exceeded.
func (d *Deque[T]) PushFront(v T) error {
	if err := d.checkLimit("push_front"); err != nil {
		return err
	}
	ps := d.pageSize()
	if d.lo == d.hi {
		// no pages yet, start in the middle of a fresh one
		if d.hi == len(d.pages) {
			d.recenter()
		}
		d.pages[d.hi] = make([]T, ps)
		d.hi++
		d.head = ps / 2
	}
	if d.head == 0 {
		if d.lo == 0 {
			d.recenter()
		}
		d.lo--
		d.pages[d.lo] = make([]T, ps)
		d.head = ps
	}
	d.head--
	d.pages[d.lo][d.head] = v
	d.size++
	return nil
}

// PopFront removes and returns the first element.
func (d *Deque[T]) PopFront() (v T, err error) {
	if d.size == 0 {
		return v, EmptyError{"pop_front"}
	}
	ps := d.pageSize()
	page := d.pages[d.lo]
	v = page[d.head]
	var zero T
	page[d.head] = zero
	d.head++
	d.size--
	if d.size == 0 {
		d.release()
	} else if d.head == ps {
		d.pages[d.lo] = nil
		d.lo++
		d.head = 0
	}
	return v, nil
}

// PopBack removes and returns the last element.
func (d *Deque[T]) PopBack() (v T, err error) {
	if d.size == 0 {
		return v, EmptyError{"pop_back"}
	}
	ps := d.pageSize()
	pos := d.head + d.size - 1
	pageID, i := d.lo+pos/ps, pos%ps
	page := d.pages[pageID]
	v = page[i]
	var zero T
	page[i] = zero
	d.size--
	if d.size == 0 {
		d.release()
	} else if i == 0 {
		d.pages[pageID] = nil
		d.hi = pageID
	}
	return v, nil
}

// PeekFront returns the first element without removing it.
func (d *Deque[T]) PeekFront() (v T, err error) {
	if d.size == 0 {
		return v, EmptyError{"peek_front"}
	}
	return d.pages[d.lo][d.head], nil
}

// PeekBack returns the last element without removing it.
func (d *Deque[T]) PeekBack() (v T, err error) {
	if d.size == 0 {
		return v, EmptyError{"peek_back"}
	}
	return d.At(d.size - 1), nil
}

// At returns the i-th element counting from the front; it panics if i is out
// of range, like a slice index.
func (d *Deque[T]) At(i int) T {
	if i < 0 || i >= d.size {
		panic(fmt.Sprintf("deque index %v out of range [0:%v]", i, d.size))
	}
	ps := d.pageSize()
	pos := d.head + i
	return d.pages[d.lo+pos/ps][pos%ps]
}

// AppendTo appends all elements, front to back, to buf.
func (d *Deque[T]) AppendTo(buf []T) []T {
	if d.size == 0 {
		return buf
	}
	ps := d.pageSize()
	first, last := d.head, d.head+d.size
	for pageID := d.lo; pageID < d.hi; pageID++ {
		base := (pageID - d.lo) * ps
		i, j := 0, ps
		if first > base {
			i = first - base
		}
		if last < base+ps {
			j = last - base
		}
		if i < j {
			buf = append(buf, d.pages[pageID][i:j]...)
		}
	}
	return buf
}

// Clear removes all elements, keeping PageSize and Limit.
func (d *Deque[T]) Clear() {
	d.release()
	d.size = 0
}

// Clone returns an independent copy with the same settings and contents.
func (d *Deque[T]) Clone() *Deque[T] {
	c := &Deque[T]{PageSize: d.PageSize}
	for _, v := range d.AppendTo(make([]T, 0, d.size)) {
		c.PushBack(v)
	}
	c.Limit = d.Limit
	return c
}

func (d *Deque[T]) release() {
	for i := d.lo; i < d.hi; i++ {
		d.pages[i] = nil
	}
	d.lo, d.hi, d.head = 0, 0, 0
	d.pages = d.pages[:0]
}

// recenter moves the allocated page window into the middle of a page table
// that has room for at least as many pages again on both sides.
func (d *Deque[T]) recenter() {
	used := d.hi - d.lo
	pages := make([][]T, 2*used+2)
	start := (len(pages) - used) / 2
	copy(pages[start:], d.pages[d.lo:d.hi])
	d.pages = pages
	d.lo, d.hi = start, start+used
}
