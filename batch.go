package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"runtime"
	"strings"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"

	"github.com/jcorbin/godeq/deq"
	"github.com/jcorbin/godeq/internal/fileinput"
	"github.com/jcorbin/godeq/internal/logio"
	"github.com/jcorbin/godeq/internal/panicerr"
)

type batchResult struct {
	out  bytes.Buffer
	snap deq.Snapshot
	err  error
}

// runBatch runs every source concurrently, each on its own interpreter, then
// writes their outputs, and any non-empty final deque, in source order.
// Program failures are logged as errors; only a failure to write output is
// returned.
func runBatch(ctx context.Context, cfg config, srcs []fileinput.Source, out io.Writer, log *logio.Logger) error {
	results := make([]batchResult, len(srcs))

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(runtime.GOMAXPROCS(0))
	for i, src := range srcs {
		res := &results[i]
		eg.Go(func() error {
			ctx, cancel := cfg.withTimeout(ctx)
			defer cancel()
			opts := append(cfg.options(log),
				deq.WithName(src.Name),
				deq.WithOutput(&res.out))
			res.snap, res.err = deq.Run(ctx, src.Text, opts...)
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return err
	}

	for i := range results {
		res := &results[i]
		if _, err := res.out.WriteTo(out); err != nil {
			return err
		}
		if res.err != nil {
			reportError(log, srcs[i], res.err)
		} else if len(res.snap) > 0 {
			if _, err := fmt.Fprintln(out, res.snap); err != nil {
				return err
			}
		}
	}
	return nil
}

// reportError logs a failed run, quoting the offending source line when the
// error has a position within it.
func reportError(log *logio.Logger, src fileinput.Source, err error) {
	log.Errorf("%v", err)
	if panicerr.IsPanic(err) {
		log.Printf("", "%s", panicerr.PanicStack(err))
		return
	}
	var de *deq.Error
	if !errors.As(err, &de) || de.Pos.Line < 1 || de.Pos.Name != src.Name {
		return
	}
	line, ok := src.Line(de.Pos.Line)
	if !ok {
		return
	}
	col := de.Pos.Col - 1
	if n := utf8.RuneCountInString(line); col > n {
		col = n
	}
	log.Printf("", "  %v", line)
	log.Printf("", "  %v^", strings.Repeat(" ", col))
}
