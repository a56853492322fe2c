/*
Package deq implements a concatenative language whose programs operate on a
double-ended queue of values rather than a stack.

Programs are whitespace separated tokens, executed left to right:

	1 2 +                    # push 1, push 2, add them: [3]
	[dup *] :square define   # name a quotation
	3 square print           # prints 9

Literals are integers, floats, true and false, "strings", :symbols, character
literals like 'a' or <ESC>, and [quotations] of unexecuted code. Anything
else names a word in the Dictionary.

The back of the deque is the conventional stack top: literals push there and
words pop their operands from there, the first popped being the right-hand
operand, so 3 4 - leaves -1. A leading ! aims a token at the front instead,
a trailing ! at the back:

	1 2 !3      # [3 1 2]
	!drop       # [1 2]
	!dup +!     # [1 1 2], then 1 + 2 at the back: [1 3]

Quotations run by call, if, while, times, or a defined word execute against
whichever end invoked them.

Errors are reported as *Error values whose Kind may be tested with errors.Is:

	_, err := deq.Run(ctx, "+")
	errors.Is(err, deq.Underflow) // true
*/
package deq
