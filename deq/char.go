package deq

import (
	"errors"
	"io"
	"strconv"
	"strings"
)

// controlRune names a control code point usable as a character literal.
type controlRune struct {
	name string
	r    rune
}

var c0Controls = [...]controlRune{
	{"<NUL>", 0x00}, {"<SOH>", 0x01}, {"<STX>", 0x02}, {"<ETX>", 0x03},
	{"<EOT>", 0x04}, {"<ENQ>", 0x05}, {"<ACK>", 0x06}, {"<BEL>", 0x07},
	{"<BS>", 0x08}, {"<HT>", 0x09}, {"<NL>", 0x0A}, {"<VT>", 0x0B},
	{"<NP>", 0x0C}, {"<CR>", 0x0D}, {"<SO>", 0x0E}, {"<SI>", 0x0F},
	{"<DLE>", 0x10}, {"<DC1>", 0x11}, {"<DC2>", 0x12}, {"<DC3>", 0x13},
	{"<DC4>", 0x14}, {"<NAK>", 0x15}, {"<SYN>", 0x16}, {"<ETB>", 0x17},
	{"<CAN>", 0x18}, {"<EM>", 0x19}, {"<SUB>", 0x1A}, {"<ESC>", 0x1B},
	{"<FS>", 0x1C}, {"<GS>", 0x1D}, {"<RS>", 0x1E}, {"<US>", 0x1F},
	{"<SP>", 0x20}, {"<DEL>", 0x7F},
}

// controlWords maps mnemonics like <ESC> or <esc>, and caret forms like ^C,
// to their code points. ESC and GS have no caret form, since [ and ] are
// structural.
var controlWords map[string]rune

func init() {
	controlWords = make(map[string]rune, 3*len(c0Controls))
	for _, ctl := range c0Controls {
		controlWords[strings.ToUpper(ctl.name)] = ctl.r
		controlWords[strings.ToLower(ctl.name)] = ctl.r
		if caret := caretForm(ctl.r); caret != "" && !strings.ContainsAny(caret[1:], "[]") {
			controlWords[caret] = ctl.r
		}
	}
}

// caretForm computes the ^-escaped printable form of a C0 control rune.
func caretForm(r rune) string {
	if r < 0x20 || r == 0x7f {
		return "^" + string(r^0x40)
	}
	return ""
}

var errInvalidChar = errors.New(`character literal must be 'X', '\X', ^X, or <NAME>`)

// unquoteChar parses a character literal token: a control mnemonic, a caret
// form, or a single-quoted rune using Go escape syntax.
func unquoteChar(token string) (rune, error) {
	if r, defined := controlWords[token]; defined {
		return r, nil
	}
	if len(token) < 3 || token[0] != '\'' || token[len(token)-1] != '\'' {
		return 0, errInvalidChar
	}
	r, _, tail, err := strconv.UnquoteChar(token[1:], '\'')
	if err != nil {
		return 0, errInvalidChar
	}
	if tail != "'" {
		return 0, errInvalidChar
	}
	return r, nil
}

// writeRune writes r to w in UTF-8, using the narrowest interface w offers.
func writeRune(w io.Writer, r rune) (err error) {
	type runeWriter interface {
		WriteRune(r rune) (size int, err error)
	}
	if r < 0x80 {
		if bw, ok := w.(io.ByteWriter); ok {
			err = bw.WriteByte(byte(r))
		} else {
			_, err = w.Write([]byte{byte(r)})
		}
	} else if rw, ok := w.(runeWriter); ok {
		_, err = rw.WriteRune(r)
	} else {
		_, err = io.WriteString(w, string(r))
	}
	return err
}
