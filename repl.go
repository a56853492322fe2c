package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/jcorbin/godeq/deq"
	"github.com/jcorbin/godeq/internal/fileinput"
	"github.com/jcorbin/godeq/internal/logio"
	"github.com/jcorbin/godeq/internal/store"
)

const (
	prompt         = "deq> "
	continuePrompt = "...> "
	historySize    = 1000
)

// repl threads one deque and dictionary through successive fragments; a
// fragment that fails leaves the session as it was.
type repl struct {
	cfg config
	log *logio.Logger
	out io.Writer
	db  *store.Store

	deque *deq.Deque
	dict  *deq.Dictionary
}

func newREPL(cfg config, out io.Writer, log *logio.Logger, db *store.Store) (*repl, error) {
	r := &repl{
		cfg:   cfg,
		log:   log,
		out:   out,
		db:    db,
		deque: deq.NewDeque(0),
		dict:  deq.NewDictionary(),
	}
	if err := r.restoreWords(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *repl) restoreWords() error {
	if r.db == nil {
		return nil
	}
	words, err := r.db.Words()
	if err != nil {
		return err
	}
	for _, w := range words {
		toks, err := deq.Lex(w.Name, w.Source)
		if err != nil {
			return fmt.Errorf("restore word %v: %w", w.Name, err)
		}
		r.dict.Define(w.Name, deq.NewQuotation(toks...))
	}
	return nil
}

// saveWords writes every user word to the store, and deletes stored words
// that have since been forgotten.
func (r *repl) saveWords() error {
	if r.db == nil {
		return nil
	}
	stored, err := r.db.Words()
	if err != nil {
		return err
	}
	for _, w := range stored {
		if def, err := r.dict.Resolve(w.Name); err != nil || def.IsBuiltin() {
			if err := r.db.DelWord(w.Name); err != nil {
				return err
			}
		}
	}
	defs := r.dict.UserWords()
	words := make([]store.Word, len(defs))
	for i, def := range defs {
		words[i] = store.Word{Name: def.Name, Source: def.Body.Source()}
	}
	return r.db.PutWords(words...)
}

func (r *repl) eval(ctx context.Context, name, src string) (deq.Snapshot, error) {
	ctx, cancel := r.cfg.withTimeout(ctx)
	defer cancel()
	opts := append(r.cfg.options(r.log),
		deq.WithName(name),
		deq.WithOutput(r.out))
	snap, dict, err := deq.RunWithState(ctx, src, r.deque, r.dict, opts...)
	if err != nil {
		return nil, err
	}
	r.dict = dict
	if err := r.saveWords(); err != nil {
		r.log.Printf("WARN", "unable to save words: %v", err)
	}
	return snap, nil
}

// preload runs whole programs into the session before it goes interactive.
func (r *repl) preload(ctx context.Context, srcs []fileinput.Source) {
	for _, src := range srcs {
		if _, err := r.eval(ctx, src.Name, src.Text); err != nil {
			reportError(r.log, src, err)
		}
	}
}

// loop reads fragments until EOF, showing the deque after each success.
// Input that ends inside a string or quotation is continued on the next
// line.
func (r *repl) loop(ctx context.Context, lines lineReader) error {
	var pending string
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		p := prompt
		if pending != "" {
			p = continuePrompt
		}
		line, err := lines.ReadLine(p)
		if err == io.EOF {
			if pending != "" {
				r.log.Printf("WARN", "discarded incomplete input")
			}
			return nil
		} else if err != nil {
			return err
		}

		src := line
		if pending != "" {
			src = pending + "\n" + line
		}
		if strings.TrimSpace(src) == "" {
			continue
		}

		snap, err := r.eval(ctx, "repl", src)
		if deq.IsIncomplete(err) {
			pending = src
			continue
		}
		pending = ""
		if err != nil {
			r.log.Printf("ERROR", "%v", err)
			continue
		}
		if _, err := fmt.Fprintln(r.out, snap); err != nil {
			return err
		}
	}
}

// history is a term.History that also appends every entry to the session
// store, if any.
type history struct {
	db    *store.Store
	log   *logio.Logger
	lines []string // oldest first
}

func loadHistory(db *store.Store, log *logio.Logger) (*history, error) {
	h := &history{db: db, log: log}
	if db == nil {
		return h, nil
	}
	cmds, err := db.LastCmds(historySize)
	if err != nil {
		return nil, err
	}
	for _, cmd := range cmds {
		h.lines = append(h.lines, cmd.Text)
	}
	return h, nil
}

func (h *history) Add(entry string) {
	if strings.TrimSpace(entry) == "" {
		return
	}
	h.lines = append(h.lines, entry)
	if len(h.lines) > historySize {
		h.lines = h.lines[len(h.lines)-historySize:]
	}
	if h.db != nil {
		if _, err := h.db.AddCmd(entry); err != nil {
			h.log.Printf("WARN", "unable to record history: %v", err)
		}
	}
}

func (h *history) Len() int { return len(h.lines) }

func (h *history) At(i int) string { return h.lines[len(h.lines)-1-i] }
