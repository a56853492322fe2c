package deq

import (
	"fmt"
	"strconv"
)

// TokenKind classifies a Token.
type TokenKind uint8

// Scan produces all token kinds; Lex folds bracketed regions into Literal
// quotations and drops comments, so only Literal and WordRef reach the
// interpreter.
const (
	Literal TokenKind = iota + 1
	WordRef
	QuotationStart
	QuotationEnd
	Comment
)

var tokenKindNames = [...]string{
	"invalid",
	"literal",
	"word",
	"quotation start",
	"quotation end",
	"comment",
}

func (k TokenKind) String() string {
	if int(k) < len(tokenKindNames) {
		return tokenKindNames[k]
	}
	return "token(" + strconv.Itoa(int(k)) + ")"
}

// End selects one end of the deque.
type End uint8

// DefaultEnd defers to the end of the frame executing the token; the top
// level program runs against the Back.
const (
	DefaultEnd End = iota
	Front
	Back
)

func (e End) String() string {
	switch e {
	case Front:
		return "front"
	case Back:
		return "back"
	}
	return "default"
}

func (e End) opposite() End {
	if e == Front {
		return Back
	}
	return Front
}

// Pos locates a token in its source.
type Pos struct {
	Name string
	Line int
	Col  int
}

func (pos Pos) String() string {
	if pos.Name == "" {
		return fmt.Sprintf("%v:%v", pos.Line, pos.Col)
	}
	return fmt.Sprintf("%v:%v:%v", pos.Name, pos.Line, pos.Col)
}

// Token is one lexical element of a program.
type Token struct {
	Kind  TokenKind
	Value Value  // Literal
	Name  string // WordRef, or the text of a Comment
	End   End
	Pos   Pos
}

// String renders the token in source syntax, including any direction mark.
func (tok Token) String() string {
	var s string
	switch tok.Kind {
	case Literal:
		s = tok.Value.String()
	case WordRef:
		s = tok.Name
	case QuotationStart:
		s = "["
	case QuotationEnd:
		return "]"
	case Comment:
		return "#" + tok.Name
	default:
		return tok.Kind.String()
	}
	switch tok.End {
	case Front:
		return "!" + s
	case Back:
		if tok.Kind == Literal {
			switch tok.Value.(type) {
			case String, *Quotation:
				// closing delimiters take no suffix mark
				return s
			}
		}
		return s + "!"
	}
	return s
}
