// Command deq runs programs written in deq, a concatenative language whose
// values live on a double-ended queue.
package main

import (
	"context"
	"errors"
	"flag"
	"io"
	"os"
	"os/signal"

	"github.com/jcorbin/godeq/internal/fileinput"
	"github.com/jcorbin/godeq/internal/logio"
	"github.com/jcorbin/godeq/internal/store"
)

func main() {
	log := logio.NewLogger(os.Stderr)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	cmd := command{
		stdin:  os.Stdin,
		stdout: os.Stdout,
		stderr: os.Stderr,
		log:    log,
	}
	log.ErrorIf(cmd.run(ctx, os.Args[1:]))
	stop()
	os.Exit(log.ExitCode())
}

type command struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
	log    *logio.Logger
}

func (cmd command) run(ctx context.Context, args []string) error {
	cfg, err := parseConfig(args, cmd.stderr)
	if errors.Is(err, flag.ErrHelp) {
		return nil
	} else if err != nil {
		return err
	}

	srcs := make([]fileinput.Source, 0, len(cfg.Exprs)+len(cfg.Files))
	for i, text := range cfg.Exprs {
		srcs = append(srcs, fileinput.Snippet(i, text))
	}
	files, err := fileinput.LoadAll(cfg.Files...)
	if err != nil {
		return err
	}
	srcs = append(srcs, files...)

	if !cfg.Interactive {
		if len(srcs) == 0 && !isTerminal(cmd.stdin) {
			src, err := fileinput.Read(cmd.stdin)
			if err != nil {
				return err
			}
			src.Name = "<stdin>"
			srcs = append(srcs, src)
		}
		if len(srcs) > 0 {
			return runBatch(ctx, cfg, srcs, cmd.stdout, cmd.log)
		}
	}
	return cmd.session(ctx, cfg, srcs)
}

// session runs an interactive session, after loading any given programs
// into it.
func (cmd command) session(ctx context.Context, cfg config, srcs []fileinput.Source) error {
	var db *store.Store
	if cfg.DB != "" {
		var err error
		if db, err = store.Open(cfg.DB); err != nil {
			return err
		}
		defer db.Close()
	}

	hist, err := loadHistory(db, cmd.log)
	if err != nil {
		return err
	}

	if f, ok := cmd.stdin.(*os.File); ok && isTerminal(f) {
		lines, restore, err := openTerminal(f, cmd.stdout, hist)
		if err != nil {
			return err
		}
		defer restore()
		cmd.log.SetOutput(lines)
		defer cmd.log.SetOutput(cmd.stderr)

		r, err := newREPL(cfg, lines, cmd.log, db)
		if err != nil {
			return err
		}
		r.preload(ctx, srcs)
		return r.loop(ctx, lines)
	}

	r, err := newREPL(cfg, cmd.stdout, cmd.log, db)
	if err != nil {
		return err
	}
	r.preload(ctx, srcs)
	return r.loop(ctx, newScanLines(cmd.stdin, cmd.stdout, hist))
}
