package main

import (
	"bufio"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"golang.org/x/term"
)

// lineReader reads one line of input after showing a prompt.
type lineReader interface {
	ReadLine(prompt string) (string, error)
}

// isTerminal reports whether r is a terminal device.
func isTerminal(r interface{}) bool {
	f, ok := r.(*os.File)
	if !ok {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// scanLines reads plain lines, for sessions whose input is not a terminal.
type scanLines struct {
	sc   *bufio.Scanner
	out  io.Writer
	hist term.History
}

func newScanLines(in io.Reader, out io.Writer, hist term.History) *scanLines {
	return &scanLines{sc: bufio.NewScanner(in), out: out, hist: hist}
}

func (sl *scanLines) ReadLine(prompt string) (string, error) {
	if _, err := io.WriteString(sl.out, prompt); err != nil {
		return "", err
	}
	if !sl.sc.Scan() {
		if err := sl.sc.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	line := sl.sc.Text()
	if sl.hist != nil {
		sl.hist.Add(line)
	}
	return line, nil
}

// termLines edits lines on a raw mode terminal.
type termLines struct {
	*term.Terminal
}

func (tl termLines) ReadLine(prompt string) (string, error) {
	tl.SetPrompt(prompt)
	return tl.Terminal.ReadLine()
}

// openTerminal puts f into raw mode for line editing; the returned function
// restores its prior state.
func openTerminal(f *os.File, out io.Writer, hist term.History) (termLines, func(), error) {
	fd := int(f.Fd())
	state, err := term.MakeRaw(fd)
	if err != nil {
		return termLines{}, nil, err
	}
	t := term.NewTerminal(struct {
		io.Reader
		io.Writer
	}{f, out}, prompt)
	if width, height, err := term.GetSize(fd); err == nil {
		t.SetSize(width, height)
	}
	if hist != nil {
		t.History = hist
	}
	return termLines{t}, func() { term.Restore(fd, state) }, nil
}
