package deq

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Lex turns source text into the token sequence executed by an Interp.
// Bracketed regions become single Literal quotation tokens and comments are
// dropped. Any error is a LexError; nothing is executed when lexing fails.
func Lex(name, source string) ([]Token, error) {
	raw, err := Scan(name, source)
	if err != nil {
		return nil, err
	}
	return nest(raw)
}

// Scan splits source text into a flat token sequence, without matching
// quotation brackets; QuotationStart, QuotationEnd, and Comment tokens are
// retained.
func Scan(name, source string) ([]Token, error) {
	sc := scanner{src: source}
	sc.pos = Pos{Name: name, Line: 1, Col: 1}
	if err := sc.scan(); err != nil {
		return nil, err
	}
	return sc.toks, nil
}

func nest(raw []Token) ([]Token, error) {
	type open struct {
		start Token
		outer []Token
	}
	var (
		opens []open
		cur   []Token
	)
	for _, tok := range raw {
		switch tok.Kind {
		case Comment:
		case QuotationStart:
			opens = append(opens, open{tok, cur})
			cur = nil
		case QuotationEnd:
			i := len(opens) - 1
			if i < 0 {
				return nil, lexError(tok.Pos, false, "unexpected ]")
			}
			o := opens[i]
			opens = opens[:i]
			cur = append(o.outer, Token{
				Kind:  Literal,
				Value: &Quotation{body: cur},
				End:   o.start.End,
				Pos:   o.start.Pos,
			})
		default:
			cur = append(cur, tok)
		}
	}
	if i := len(opens) - 1; i >= 0 {
		return nil, lexError(opens[i].start.Pos, true, "unterminated quotation")
	}
	return cur, nil
}

type scanner struct {
	src  string
	off  int
	pos  Pos
	toks []Token

	front bool // a bare ! marks the next literal
}

func (sc *scanner) peek() (rune, int) {
	if sc.off >= len(sc.src) {
		return -1, 0
	}
	return utf8.DecodeRuneInString(sc.src[sc.off:])
}

func (sc *scanner) next() rune {
	r, size := sc.peek()
	if size == 0 {
		return -1
	}
	sc.off += size
	if r == '\n' {
		sc.pos.Line++
		sc.pos.Col = 1
	} else {
		sc.pos.Col++
	}
	return r
}

func (sc *scanner) emit(tok Token) {
	if sc.front {
		tok.End = Front
		sc.front = false
	}
	sc.toks = append(sc.toks, tok)
}

func isDelim(r rune) bool {
	return r < 0 || unicode.IsSpace(r) || r == '[' || r == ']' || r == '"'
}

func (sc *scanner) scan() error {
	for {
		r, _ := sc.peek()
		pos := sc.pos
		switch {
		case r < 0:
			if sc.front {
				sc.toks = append(sc.toks, Token{Kind: WordRef, Name: "!", Pos: sc.pos})
			}
			return nil

		case unicode.IsSpace(r):
			sc.next()

		case r == '#':
			sc.next()
			start := sc.off
			for r, _ := sc.peek(); r >= 0 && r != '\n'; r, _ = sc.peek() {
				sc.next()
			}
			sc.emit(Token{Kind: Comment, Name: sc.src[start:sc.off], Pos: pos})

		case r == '[':
			sc.next()
			sc.emit(Token{Kind: QuotationStart, Pos: pos})

		case r == ']':
			sc.next()
			sc.emit(Token{Kind: QuotationEnd, Pos: pos})

		case r == '"':
			s, err := sc.scanString()
			if err != nil {
				return err
			}
			sc.emit(Token{Kind: Literal, Value: String(s), Pos: pos})

		case r == '\'':
			if tok, ok := sc.scanChar(); ok {
				sc.emit(tok)
				break
			}
			fallthrough

		default:
			word := sc.scanWord()
			if word == "!" {
				if r, _ := sc.peek(); r == '[' || r == '"' {
					sc.front = true
					break
				}
			}
			tok, err := classify(word, pos)
			if err != nil {
				return err
			}
			sc.emit(tok)
		}
	}
}

func (sc *scanner) scanWord() string {
	start := sc.off
	for r, _ := sc.peek(); !isDelim(r); r, _ = sc.peek() {
		sc.next()
	}
	return sc.src[start:sc.off]
}

// scanChar reads a quoted character literal, which may quote a delimiter like
// ' ' or '['. It leaves the scanner untouched if no literal is found.
func (sc *scanner) scanChar() (Token, bool) {
	pos, off := sc.pos, sc.off
	r, _, tail, err := strconv.UnquoteChar(sc.src[off+1:], '\'')
	if err != nil || !strings.HasPrefix(tail, "'") {
		return Token{}, false
	}
	end := len(sc.src) - len(tail) + 1
	if end < len(sc.src) {
		if next, _ := utf8.DecodeRuneInString(sc.src[end:]); !isDelim(next) {
			return Token{}, false
		}
	}
	for sc.off < end {
		sc.next()
	}
	return Token{Kind: Literal, Value: Int(r), Pos: pos}, true
}

func (sc *scanner) scanString() (string, error) {
	start := sc.pos
	sc.next() // opening quote
	var sb strings.Builder
	for {
		escPos := sc.pos
		switch r := sc.next(); r {
		case -1:
			return "", lexError(start, true, "unterminated string")
		case '"':
			return sb.String(), nil
		case '\\':
			switch e := sc.next(); e {
			case '"', '\\':
				sb.WriteRune(e)
			case 'n':
				sb.WriteByte('\n')
			case 't':
				sb.WriteByte('\t')
			case 'r':
				sb.WriteByte('\r')
			case '0':
				sb.WriteByte(0)
			case -1:
				return "", lexError(start, true, "unterminated string")
			default:
				return "", lexError(escPos, false, fmt.Sprintf("invalid escape \\%c in string", e))
			}
		default:
			sb.WriteRune(r)
		}
	}
}

// classify turns a bare word into a literal or word reference token.
func classify(word string, pos Pos) (Token, error) {
	tok := Token{Kind: WordRef, Pos: pos}
	if n := len(word); n > 1 {
		if word[0] == '!' {
			tok.End = Front
			word = word[1:]
		} else if word[n-1] == '!' {
			tok.End = Back
			word = word[:n-1]
		}
	}

	if looksNumeric(word) {
		v, ok := parseNumber(word)
		if !ok {
			return Token{}, lexError(pos, false, fmt.Sprintf("malformed number %q", word))
		}
		tok.Kind, tok.Value = Literal, v
		return tok, nil
	}

	switch {
	case word == "true" || word == "false":
		tok.Kind, tok.Value = Literal, Bool(word == "true")
	case word == "+Inf":
		tok.Kind, tok.Value = Literal, Float(math.Inf(1))
	case word == "-Inf":
		tok.Kind, tok.Value = Literal, Float(math.Inf(-1))
	case word == "NaN":
		tok.Kind, tok.Value = Literal, Float(math.NaN())
	case len(word) > 1 && word[0] == ':':
		tok.Kind, tok.Value = Literal, Symbol(word[1:])
	case word[0] == '\'':
		r, err := unquoteChar(word)
		if err != nil {
			return Token{}, lexError(pos, false, fmt.Sprintf("invalid character literal %v: %v", word, err))
		}
		tok.Kind, tok.Value = Literal, Int(r)
	default:
		if r, isCtl := controlWords[word]; isCtl {
			tok.Kind, tok.Value = Literal, Int(r)
		} else {
			tok.Name = word
		}
	}
	return tok, nil
}

func isDigit(c byte) bool { return '0' <= c && c <= '9' }

// looksNumeric reports whether a word commits to the number grammar: it
// starts with a digit, or with a sign or point followed by a digit.
func looksNumeric(word string) bool {
	switch {
	case word == "":
		return false
	case isDigit(word[0]):
		return true
	case len(word) > 1 && strings.IndexByte("+-.", word[0]) >= 0:
		return isDigit(word[1]) || (word[0] != '.' && word[1] == '.' && len(word) > 2 && isDigit(word[2]))
	}
	return false
}

// parseNumber accepts exactly [+-]?[0-9]+(\.[0-9]+)? ; integers must fit in
// 64 bits.
func parseNumber(word string) (Value, bool) {
	i := 0
	if word[0] == '+' || word[0] == '-' {
		i++
	}
	digits := i
	for i < len(word) && isDigit(word[i]) {
		i++
	}
	if i == digits {
		return nil, false
	}
	if i == len(word) {
		n, err := strconv.ParseInt(word, 10, 64)
		if err != nil {
			return nil, false
		}
		return Int(n), true
	}
	if word[i] != '.' {
		return nil, false
	}
	i++
	frac := i
	for i < len(word) && isDigit(word[i]) {
		i++
	}
	if i == frac || i != len(word) {
		return nil, false
	}
	f, err := strconv.ParseFloat(word, 64)
	if err != nil {
		return nil, false
	}
	return Float(f), true
}
