// Package fileinput gathers named program sources from files, standard
// input, and command line snippets.
package fileinput

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// Source is a complete program text together with the name its positions
// are reported under.
type Source struct {
	Name string
	Text string
}

// Line returns the text of the given 1-based line, without its line feed.
func (src Source) Line(n int) (string, bool) {
	if n < 1 {
		return "", false
	}
	text := src.Text
	for i := 1; i < n; i++ {
		j := strings.IndexByte(text, '\n')
		if j < 0 {
			return "", false
		}
		text = text[j+1:]
	}
	if j := strings.IndexByte(text, '\n'); j >= 0 {
		text = text[:j]
	}
	return text, true
}

// Snippet names the i-th (0-based) command line program text.
func Snippet(i int, text string) Source {
	return Source{Name: fmt.Sprintf("-e#%d", i+1), Text: text}
}

// Read reads a whole source from r, naming it after r if r has a Name
// method, as *os.File does.
func Read(r io.Reader) (Source, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return Source{}, err
	}
	return Source{Name: nameOf(r), Text: string(b)}, nil
}

// Load reads the named file; "-" reads standard input.
func Load(name string) (Source, error) {
	if name == "-" {
		src, err := Read(os.Stdin)
		src.Name = "<stdin>"
		return src, err
	}
	f, err := os.Open(name)
	if err != nil {
		return Source{}, err
	}
	defer f.Close()
	return Read(f)
}

// LoadAll loads every named file, stopping at the first failure.
func LoadAll(names ...string) ([]Source, error) {
	srcs := make([]Source, 0, len(names))
	for _, name := range names {
		src, err := Load(name)
		if err != nil {
			return nil, err
		}
		srcs = append(srcs, src)
	}
	return srcs, nil
}

func nameOf(obj interface{}) string {
	if nom, ok := obj.(interface{ Name() string }); ok {
		return nom.Name()
	}
	return fmt.Sprintf("<unnamed %T>", obj)
}
