package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/jcorbin/godeq/deq"
	"github.com/jcorbin/godeq/internal/logio"
)

// config collects engine and session settings from a YAML file and the
// command line; explicitly given flags override the file.
type config struct {
	Timeout   time.Duration `yaml:"timeout"`
	Trace     bool          `yaml:"trace"`
	Capacity  int           `yaml:"capacity"`
	MaxDepth  int           `yaml:"max_depth"`
	StepLimit int           `yaml:"step_limit"`
	DB        string        `yaml:"db"`

	Interactive bool     `yaml:"-"`
	Exprs       []string `yaml:"-"`
	Files       []string `yaml:"-"`
}

func defaultConfig() config {
	return config{MaxDepth: deq.DefaultMaxDepth}
}

// load merges settings from the named YAML file; unknown keys are errors.
func (cfg *config) load(name string) error {
	b, err := os.ReadFile(name)
	if err != nil {
		return err
	}
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("config %v: %w", name, err)
	}
	return nil
}

func parseConfig(args []string, errOut io.Writer) (config, error) {
	fs := flag.NewFlagSet("deq", flag.ContinueOnError)
	fs.SetOutput(errOut)
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: deq [flags] [file ...]\n\n")
		fmt.Fprintf(fs.Output(), "Runs each program file, or -e text, concurrently; with no programs, runs\n")
		fmt.Fprintf(fs.Output(), "standard input, or an interactive session if it is a terminal.\n\n")
		fs.PrintDefaults()
	}

	var (
		flags      config
		configPath string
	)
	fs.StringVar(&configPath, "config", "", "read settings from a YAML file")
	fs.DurationVar(&flags.Timeout, "timeout", 0, "specify a time limit for each program run")
	fs.BoolVar(&flags.Trace, "trace", false, "enable trace logging")
	fs.IntVar(&flags.Capacity, "capacity", 0, "limit how many values the deque may hold")
	fs.IntVar(&flags.MaxDepth, "max-depth", deq.DefaultMaxDepth, "limit nested quotation depth; 0 for none")
	fs.IntVar(&flags.StepLimit, "step-limit", 0, "abort programs after this many steps")
	fs.StringVar(&flags.DB, "db", "", "keep session history and words in this database file")
	fs.BoolVar(&flags.Interactive, "i", false, "start an interactive session, after running any programs")
	fs.Func("e", "run program `text`; may be repeated", func(text string) error {
		flags.Exprs = append(flags.Exprs, text)
		return nil
	})
	if err := fs.Parse(args); err != nil {
		return config{}, err
	}

	cfg := defaultConfig()
	if configPath != "" {
		if err := cfg.load(configPath); err != nil {
			return config{}, err
		}
	}
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "timeout":
			cfg.Timeout = flags.Timeout
		case "trace":
			cfg.Trace = flags.Trace
		case "capacity":
			cfg.Capacity = flags.Capacity
		case "max-depth":
			cfg.MaxDepth = flags.MaxDepth
		case "step-limit":
			cfg.StepLimit = flags.StepLimit
		case "db":
			cfg.DB = flags.DB
		}
	})
	cfg.Interactive = flags.Interactive
	cfg.Exprs = flags.Exprs
	cfg.Files = fs.Args()
	return cfg, nil
}

func (cfg config) options(log *logio.Logger) []deq.Option {
	opts := []deq.Option{
		deq.WithMaxDepth(cfg.MaxDepth),
		deq.WithStepLimit(cfg.StepLimit),
	}
	if cfg.Capacity > 0 {
		opts = append(opts, deq.WithCapacity(cfg.Capacity))
	}
	if cfg.Trace {
		opts = append(opts, deq.WithLogf(log.Leveledf("TRACE")))
	}
	return opts
}

func (cfg config) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if cfg.Timeout > 0 {
		return context.WithTimeout(ctx, cfg.Timeout)
	}
	return context.WithCancel(ctx)
}
