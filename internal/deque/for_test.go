package deque

// Dump provides page window data for testing.
type Dump struct {
	Lo, Hi, Head int
	Pages        int
}

// Dump returns page window data for testing.
func (d *Deque[T]) Dump() Dump {
	return Dump{d.lo, d.hi, d.head, len(d.pages)}
}
