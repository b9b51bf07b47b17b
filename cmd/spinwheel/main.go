// Spinwheel is a data-driven weighted prize wheel for the terminal.
// Usage: spinwheel [--version] [--config <file>] [--seed <n>] [--plain] [--script <file>] [--trace] [content_directory]
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/nathoo/spinwheel/cli"
	"github.com/nathoo/spinwheel/config"
	"github.com/nathoo/spinwheel/engine"
	"github.com/nathoo/spinwheel/engine/ledger"
	"github.com/nathoo/spinwheel/loader"
	"github.com/nathoo/spinwheel/tui"
)

// Set via -ldflags at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const usage = "Usage: spinwheel [--version] [--config <file>] [--seed <n>] [--plain] [--script <file>] [--trace] [content_directory]\n"

func main() {
	plain := false
	trace := false
	configFile := "config.yaml"
	var contentDir string
	var scriptFile string
	var seed int64

	args := os.Args[1:]
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--version":
			fmt.Printf("spinwheel %s (commit %s, built %s)\n", version, commit, date)
			return
		case "--plain":
			plain = true
		case "--trace":
			trace = true
		case "--script", "--config", "--seed":
			if i+1 >= len(args) {
				fmt.Fprintf(os.Stderr, "%s requires a value\n", args[i])
				os.Exit(1)
			}
			flag := args[i]
			i++
			switch flag {
			case "--script":
				scriptFile = args[i]
			case "--config":
				configFile = args[i]
			case "--seed":
				n, err := strconv.ParseInt(args[i], 10, 64)
				if err != nil {
					fmt.Fprintf(os.Stderr, "--seed must be an integer\n")
					os.Exit(1)
				}
				seed = n
			}
		default:
			if contentDir == "" {
				contentDir = args[i]
			}
		}
	}

	cfg, err := config.Load(configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}
	if contentDir != "" {
		cfg.Content = contentDir
	}
	if seed != 0 {
		cfg.Seed = seed
	}
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}

	logger, logCloser, err := config.NewLogger(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer logCloser.Close()

	if err := run(cfg, logger, plain, trace, scriptFile); err != nil {
		logger.Error("spinwheel exited", "error", err)
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		logCloser.Close()
		os.Exit(1)
	}
}

func run(cfg config.Config, logger *slog.Logger, plain, trace bool, scriptFile string) error {
	// Load and compile Lua content.
	defs, err := loader.Load(cfg.Content, loader.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("loading content: %w", err)
	}

	opts := []engine.Option{engine.WithSeed(cfg.Seed), engine.WithLogger(logger)}

	// The ledger is optional; an empty path disables it.
	var history *ledger.Ledger
	if cfg.Ledger != "" {
		history, err = ledger.Open(cfg.Ledger)
		if err != nil {
			return err
		}
		defer history.Close()
		if err := history.Migrate(context.Background()); err != nil {
			return err
		}
		opts = append(opts, engine.WithRecorder(history))
	}

	eng := engine.New(defs, opts...)
	logger.Info("engine ready", "seed", cfg.Seed, "content", cfg.Content, "ledger", cfg.Ledger)

	newCLI := func() *cli.CLI {
		c := cli.New(eng, defs)
		if cfg.SaveDir != "" {
			c.SaveDir = cfg.SaveDir
		}
		c.TickRate = cfg.TickRate
		c.Trace = trace
		if history != nil {
			c.History = history
		}
		return c
	}

	// Script mode: open file, force plain, echo commands.
	if scriptFile != "" {
		f, err := os.Open(scriptFile)
		if err != nil {
			return fmt.Errorf("opening script: %w", err)
		}
		defer f.Close()
		printBanner(defs.Game.Title, defs.Game.Version, defs.Game.Author)
		c := newCLI()
		c.In = f
		c.EchoInput = true
		c.Run()
		return nil
	}

	// Use plain CLI if --plain flag or stdout is not a terminal.
	if plain || !isTerminal() {
		printBanner(defs.Game.Title, defs.Game.Version, defs.Game.Author)
		newCLI().Run()
		return nil
	}

	tuiOpts := tui.Options{SaveDir: cfg.SaveDir, TickRate: cfg.TickRate}
	if history != nil {
		tuiOpts.Ledger = history
	}
	return tui.Run(eng, defs, tuiOpts)
}

func printBanner(title, version, author string) {
	line := title
	if version != "" {
		line += " v" + version
	}
	if author != "" {
		line += " by " + author
	}
	fmt.Printf("%s\n\n", line)
}

// isTerminal returns true if stdout is a terminal (not piped/redirected).
func isTerminal() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}
