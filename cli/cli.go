// Package cli provides terminal I/O, output formatting, and meta-command
// dispatch for the spinwheel engine.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/nathoo/spinwheel/engine"
	"github.com/nathoo/spinwheel/engine/ledger"
	"github.com/nathoo/spinwheel/engine/state"
	"github.com/nathoo/spinwheel/types"
)

// maxSpinSeconds bounds the simulated time a single spin may take before
// the CLI gives up waiting for it.
const maxSpinSeconds = 600

// History is the read side of the spin ledger.
type History interface {
	Recent(ctx context.Context, n int) ([]ledger.Entry, error)
	Summary(ctx context.Context) (ledger.Summary, error)
}

// CLI handles terminal interaction with the player.
type CLI struct {
	Engine    *engine.Engine
	Defs      *state.Defs
	History   History // optional; enables /history
	In        io.Reader
	Out       io.Writer
	SaveDir   string
	TickRate  int // simulation steps per second while a spin plays out
	Trace     bool
	EchoInput bool   // echo each input line after the prompt (for script playback)
	lastCmd   string // for "again"/"g" repeat
}

// New creates a CLI wired to the given engine.
func New(eng *engine.Engine, defs *state.Defs) *CLI {
	home, _ := os.UserHomeDir()
	saveDir := filepath.Join(home, ".spinwheel", "saves")
	return &CLI{
		Engine:   eng,
		Defs:     defs,
		In:       os.Stdin,
		Out:      os.Stdout,
		SaveDir:  saveDir,
		TickRate: 60,
	}
}

// Run shows the intro and the status, then reads commands until the input
// ends or the player quits. A spin is played out to completion before the
// next prompt.
func (c *CLI) Run() {
	if intro := c.Defs.Game.Intro; intro != "" {
		c.printLine(intro)
		c.printLine("")
	}
	c.show(c.Engine.Step("status"))

	scanner := bufio.NewScanner(c.In)
	for {
		c.print("> ")
		if !scanner.Scan() || c.handle(scanner.Text()) {
			return
		}
	}
}

// handle runs one input line and reports whether the player quit.
func (c *CLI) handle(line string) bool {
	input := strings.TrimSpace(line)
	// Blank lines and # comments in scripts are skipped.
	if input == "" || strings.HasPrefix(input, "#") {
		return false
	}
	if c.EchoInput {
		c.printLine(input)
	}

	if strings.HasPrefix(input, "/") {
		return c.handleMeta(input)
	}
	if IsRepeat(input) {
		if c.lastCmd == "" {
			c.printLine("Nothing to repeat.")
			return false
		}
		input = c.lastCmd
	}
	c.lastCmd = input

	c.show(c.Engine.Step(input))
	if c.Engine.Spinning() {
		c.playOut()
	}
	return false
}

// playOut ticks the engine at TickRate until the wheel stops.
func (c *CLI) playOut() {
	rate := c.TickRate
	if rate <= 0 {
		rate = 60
	}
	dt := 1 / float64(rate)

	for frames := maxSpinSeconds * rate; frames > 0 && c.Engine.Spinning(); frames-- {
		c.show(c.Engine.Tick(dt))
	}
	if c.Engine.Spinning() {
		c.printSystem("The wheel is still turning; giving up on it.")
	}
}

// handleMeta runs a meta-command. Returns true if the game should exit.
func (c *CLI) handleMeta(input string) bool {
	m := Meta{Engine: c.Engine, History: c.History, SaveDir: c.SaveDir, Trace: c.Trace}
	out, quit := m.Do(input)
	c.Trace = m.Trace
	for _, l := range out {
		if l.System {
			c.printSystem(l.Text)
		} else {
			c.printLine(l.Text)
		}
	}
	return quit
}

// show prints a result's narration, followed by its trace when enabled.
func (c *CLI) show(result types.Result) {
	for _, line := range result.Output {
		c.printLine(line)
	}
	if c.Trace {
		for _, line := range TraceLines(result) {
			c.printLine(line)
		}
	}
}

func (c *CLI) printLine(text string) {
	fmt.Fprintln(c.Out, text)
}

func (c *CLI) print(text string) {
	fmt.Fprint(c.Out, text)
}

func (c *CLI) printSystem(text string) {
	fmt.Fprintf(c.Out, "[%s]\n", text)
}
