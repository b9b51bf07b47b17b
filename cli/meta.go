package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/nathoo/spinwheel/engine"
	"github.com/nathoo/spinwheel/engine/save"
	"github.com/nathoo/spinwheel/types"
)

// Line is one line of meta-command output. System lines are status
// messages, set apart from game narration by the front-end.
type Line struct {
	Text   string
	System bool
}

func system(text string) []Line {
	return []Line{{Text: text, System: true}}
}

func plain(lines ...string) []Line {
	out := make([]Line, 0, len(lines))
	for _, l := range lines {
		out = append(out, Line{Text: l})
	}
	return out
}

// Meta runs the slash commands shared by the plain and Bubble Tea
// front-ends.
type Meta struct {
	Engine  *engine.Engine
	History History // optional; enables /history
	SaveDir string
	Trace   bool
}

// Do runs one meta command. quit is true for /quit and /exit.
func (m *Meta) Do(input string) (out []Line, quit bool) {
	parts := strings.Fields(input)
	if len(parts) == 0 {
		return nil, false
	}
	cmd, arg := parts[0], ""
	if len(parts) > 1 {
		arg = parts[1]
	}

	switch cmd {
	case "/quit", "/exit":
		return system("Goodbye."), true
	case "/save":
		return m.save(arg), false
	case "/load":
		return m.load(arg), false
	case "/history":
		return m.history(arg), false
	case "/help":
		return m.help(), false
	case "/state":
		return m.state(), false
	case "/trace":
		m.Trace = !m.Trace
		if m.Trace {
			return system("Trace output enabled."), false
		}
		return system("Trace output disabled."), false
	default:
		return system(fmt.Sprintf("Unknown command: %s. Type /help for available commands.", cmd)), false
	}
}

func (m *Meta) savePath(name string) (string, string) {
	if name == "" {
		name = "quicksave"
	}
	return name, filepath.Join(m.SaveDir, name+".json")
}

func (m *Meta) save(arg string) []Line {
	name, path := m.savePath(arg)

	data, err := m.Engine.Save()
	if err == nil {
		err = os.MkdirAll(m.SaveDir, 0o755)
	}
	if err == nil {
		err = os.WriteFile(path, data, 0o644)
	}
	if err != nil {
		return system(fmt.Sprintf("Save failed: %v", err))
	}
	return system(fmt.Sprintf("Game saved to %s.", name))
}

func (m *Meta) load(arg string) []Line {
	name, path := m.savePath(arg)

	sd, err := readSave(path)
	if err == nil {
		err = m.Engine.Restore(sd)
	}
	if err != nil {
		return system(fmt.Sprintf("Load failed: %v", err))
	}

	out := system(fmt.Sprintf("Game loaded from %s (round %d).", name, sd.Round))
	return append(out, plain(m.Engine.Step("status").Output...)...)
}

func readSave(path string) (*save.SaveData, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return save.Load(data)
}

func (m *Meta) history(arg string) []Line {
	if m.History == nil {
		return system("No spin history is being kept.")
	}
	n := 10
	if arg != "" {
		v, err := strconv.Atoi(arg)
		if err != nil || v < 1 {
			return system("Usage: /history [count]")
		}
		n = v
	}

	ctx := context.Background()
	entries, err := m.History.Recent(ctx, n)
	if err != nil {
		return system(fmt.Sprintf("History failed: %v", err))
	}
	if len(entries) == 0 {
		return system("No spins recorded yet.")
	}

	var out []Line
	for _, e := range entries {
		out = append(out, Line{Text: fmt.Sprintf("  round %d, spin %d: %s (+%d) → %d",
			e.Round, e.Spin, e.Name, e.Prize, e.Money)})
	}

	sum, err := m.History.Summary(ctx)
	if err != nil {
		return append(out, system(fmt.Sprintf("History failed: %v", err))...)
	}
	out = append(out, Line{Text: fmt.Sprintf("%d spin(s), %d won in total, %s per spin on average.",
		sum.Spins, sum.TotalPrize, sum.AveragePrize.StringFixed(2))})
	for _, t := range sum.Segments {
		out = append(out, Line{Text: fmt.Sprintf("  %-16s %3d hit(s) %6d won", t.Name, t.Hits, t.Prize)})
	}
	return out
}

func (m *Meta) help() []Line {
	out := plain(
		"System:",
		"  /save [name]     Save game (default: quicksave)",
		"  /load [name]     Load game (default: quicksave)",
		"  /history [n]     Show the last n recorded spins",
		"  /quit            Exit game",
		"  /help            Show this help",
		"  /state           Debug: dump current state",
		"  /trace           Toggle debug trace output",
		"",
	)
	out = append(out, plain(m.Engine.Step("help").Output...)...)
	return append(out, plain("  again (g)                       Repeat your last command")...)
}

func (m *Meta) state() []Line {
	s := m.Engine.State
	w := m.Engine.Wheel
	lines := []string{
		fmt.Sprintf("Round: %d, spins taken: %d", s.Round, s.SpinCount),
		fmt.Sprintf("Money: %d, spins left: %d", s.Player.Money, s.Player.SpinsLeft),
		fmt.Sprintf("Rotation: %.2f, phase: %s", w.Rotation(), w.Phase()),
		fmt.Sprintf("RNG: seed %d, position %d", s.RNGSeed, s.RNGPosition),
	}
	if len(s.Flags) > 0 {
		lines = append(lines, fmt.Sprintf("Flags: %v", s.Flags))
	}
	if len(s.Counters) > 0 {
		lines = append(lines, fmt.Sprintf("Counters: %v", s.Counters))
	}

	out := make([]Line, 0, len(lines))
	for _, l := range lines {
		out = append(out, system(l)...)
	}
	return out
}

// TraceLines lists the effects and events behind a result, one per line,
// each prefixed with "[trace]".
func TraceLines(result types.Result) []string {
	var lines []string
	if len(result.Effects) > 0 {
		lines = append(lines, fmt.Sprintf("[trace] Effects: %d", len(result.Effects)))
		for _, e := range result.Effects {
			lines = append(lines, fmt.Sprintf("[trace]   %s %v", e.Type, e.Params))
		}
	}
	if len(result.Events) > 0 {
		lines = append(lines, fmt.Sprintf("[trace] Events: %d", len(result.Events)))
		for _, e := range result.Events {
			lines = append(lines, fmt.Sprintf("[trace]   %s", e.Type))
		}
	}
	return lines
}

// IsRepeat reports whether input asks to repeat the previous command.
func IsRepeat(input string) bool {
	lower := strings.ToLower(input)
	return lower == "again" || lower == "g"
}
