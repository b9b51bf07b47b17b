package tui

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"

	"github.com/nathoo/spinwheel/cli"
	"github.com/nathoo/spinwheel/engine"
	"github.com/nathoo/spinwheel/engine/state"
	"github.com/nathoo/spinwheel/types"
)

// moneyTweenSeconds is how long the money counter takes to catch up.
const moneyTweenSeconds = 0.8

// rawLine is a transcript line kept unstyled so it can be re-wrapped
// when the terminal is resized.
type rawLine struct {
	text string
	kind lineKind
}

// Options configures the TUI.
type Options struct {
	SaveDir  string
	TickRate int         // frames per second while the wheel or counter moves
	Ledger   cli.History // optional; enables /history
}

// Model is the Bubble Tea model for the spinwheel TUI.
type Model struct {
	engine *engine.Engine
	defs   *state.Defs
	meta   *cli.Meta

	viewport viewport.Model
	input    textinput.Model
	recall   *Recall

	rawLines []rawLine

	// Money counter animation.
	shownMoney float32
	moneyTween *gween.Tween
	moneyTo    int

	width    int
	height   int
	ready    bool
	quitting bool
	ticking  bool
	lastCmd  string
	tickRate int
}

// introMsg carries the opening text into the Update loop.
type introMsg []string

// tickMsg advances the wheel and the money counter by one frame.
type tickMsg time.Time

// New creates a TUI model wired to the given engine.
func New(eng *engine.Engine, defs *state.Defs, opts Options) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Focus()
	ti.CharLimit = 256
	ti.PromptStyle = styleInputPrompt

	if opts.SaveDir == "" {
		home, _ := os.UserHomeDir()
		opts.SaveDir = filepath.Join(home, ".spinwheel", "saves")
	}
	if opts.TickRate <= 0 {
		opts.TickRate = 60
	}

	money := eng.State.Player.Money
	return Model{
		engine:     eng,
		defs:       defs,
		meta:       &cli.Meta{Engine: eng, History: opts.Ledger, SaveDir: opts.SaveDir},
		input:      ti,
		recall:     NewRecall(100),
		shownMoney: float32(money),
		moneyTo:    money,
		tickRate:   opts.TickRate,
	}
}

// Run starts the Bubble Tea program.
func Run(eng *engine.Engine, defs *state.Defs, opts Options) error {
	m := New(eng, defs, opts)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())
	_, err := p.Run()
	return err
}

// Init returns the initial command that produces the intro and status.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.initialOutput())
}

func (m Model) initialOutput() tea.Cmd {
	return func() tea.Msg {
		var lines []string

		title := m.defs.Game.Title
		if m.defs.Game.Version != "" {
			title += " v" + m.defs.Game.Version
		}
		if m.defs.Game.Author != "" {
			title += " by " + m.defs.Game.Author
		}
		lines = append(lines, title, "")

		if m.defs.Game.Intro != "" {
			lines = append(lines, m.defs.Game.Intro, "")
		}

		result := m.engine.Step("status")
		lines = append(lines, result.Output...)

		return introMsg(lines)
	}
}

// Update handles messages (key presses, window resize, game output, ticks).
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		vpHeight := m.height - 2 // 1 status bar + 1 input line
		if vpHeight < 1 {
			vpHeight = 1
		}

		if !m.ready {
			m.viewport = viewport.New(m.width, vpHeight)
			m.viewport.KeyMap = viewportKeyMap()
			m.ready = true
		} else {
			m.viewport.Width = m.width
			m.viewport.Height = vpHeight
		}

		m.refreshViewport()

	case tea.KeyMsg:
		if next, cmd, handled := m.handleKey(msg); handled {
			return next, cmd
		}

	case introMsg:
		m.narrate(msg)
		m.endTurn()

	case tickMsg:
		return m.handleTick()
	}

	var inputCmd tea.Cmd
	m.input, inputCmd = m.input.Update(msg)
	cmds = append(cmds, inputCmd)

	return m, tea.Batch(cmds...)
}

// handleKey deals with the keys the prompt does not own. handled is false
// for keys that should reach the text input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd, bool) {
	switch msg.String() {
	case "ctrl+c":
		m.quitting = true
		return m, tea.Quit, true

	case "enter":
		next, cmd := m.handleEnter()
		return next, cmd, true

	case "up":
		if line, ok := m.recall.Older(); ok {
			m.setInput(line)
		}
		return m, nil, true

	case "down":
		// Past the newest entry this clears the prompt.
		line, _ := m.recall.Newer()
		m.setInput(line)
		return m, nil, true

	case "pgup", "pgdown":
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd, true
	}
	return m, nil, false
}

func (m *Model) setInput(line string) {
	m.input.SetValue(line)
	m.input.CursorEnd()
}

// handleEnter processes the submitted input line.
func (m Model) handleEnter() (tea.Model, tea.Cmd) {
	input := strings.TrimSpace(m.input.Value())
	m.input.SetValue("")

	if input == "" {
		return m, nil
	}

	m.recall.Push(input)
	m.recall.Reset()

	if cli.IsRepeat(input) {
		if m.lastCmd == "" {
			m.echo(input)
			m.report([]cli.Line{{Text: "Nothing to repeat.", System: true}})
			m.endTurn()
			return m, nil
		}
		input = m.lastCmd
	} else {
		m.lastCmd = input
	}
	m.echo(input)

	if strings.HasPrefix(input, "/") {
		output, quit := m.handleMeta(input)
		m.report(output)
		m.endTurn()
		if quit {
			m.quitting = true
			return m, tea.Quit
		}
		cmd := m.startTicking()
		return m, cmd
	}

	m.narrate(m.withTrace(m.engine.Step(input)))
	m.endTurn()
	cmd := m.startTicking()
	return m, cmd
}

// startTicking schedules the next frame if something is moving and no
// frame is already pending. It marks the model as ticking.
func (m *Model) startTicking() tea.Cmd {
	m.syncMoney()
	if m.ticking || !m.animating() {
		return nil
	}
	m.ticking = true
	return m.tick()
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(time.Second/time.Duration(m.tickRate), func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// animating reports whether the wheel or the money counter is in motion.
func (m Model) animating() bool {
	return m.engine.Spinning() || m.moneyTween != nil
}

// handleTick advances one fixed frame. Frames use a fixed dt so a spin
// plays out the same regardless of terminal latency.
func (m Model) handleTick() (tea.Model, tea.Cmd) {
	dt := 1 / float64(m.tickRate)

	if m.engine.Spinning() {
		result := m.engine.Tick(dt)
		if len(result.Output) > 0 || len(result.Events) > 0 {
			m.narrate(m.withTrace(result))
			m.endTurn()
		}
	}

	m.syncMoney()
	if m.moneyTween != nil {
		v, done := m.moneyTween.Update(float32(dt))
		m.shownMoney = v
		if done {
			m.shownMoney = float32(m.moneyTo)
			m.moneyTween = nil
		}
	}

	if !m.animating() {
		m.ticking = false
		return m, nil
	}
	return m, m.tick()
}

// syncMoney retargets the money counter when the balance changed.
func (m *Model) syncMoney() {
	money := m.engine.State.Player.Money
	if money == m.moneyTo {
		return
	}
	m.moneyTo = money
	m.moneyTween = gween.New(m.shownMoney, float32(money), moneyTweenSeconds, ease.OutCubic)
}

// displayMoney is the animated balance shown in the status bar.
func (m Model) displayMoney() int {
	if m.moneyTween == nil {
		return m.moneyTo
	}
	return int(m.shownMoney + 0.5)
}

func (m Model) withTrace(result types.Result) []string {
	if !m.meta.Trace {
		return result.Output
	}
	return append(result.Output, cli.TraceLines(result)...)
}

func (m *Model) echo(input string) {
	m.rawLines = append(m.rawLines, rawLine{text: "> " + input, kind: kindInput})
}

func (m *Model) narrate(lines []string) {
	for _, line := range lines {
		m.rawLines = append(m.rawLines, rawLine{text: line, kind: classifyLine(line)})
	}
}

// report appends meta-command output. System lines are bracketed.
func (m *Model) report(lines []cli.Line) {
	for _, l := range lines {
		if l.System {
			m.rawLines = append(m.rawLines, rawLine{text: "[" + l.Text + "]", kind: kindSystem})
			continue
		}
		m.narrate([]string{l.Text})
	}
}

// endTurn closes a block of output with a blank line and redraws.
func (m *Model) endTurn() {
	m.rawLines = append(m.rawLines, rawLine{})
	m.refreshViewport()
}

// refreshViewport re-wraps and re-styles all raw lines at the current width
// and updates the viewport content.
func (m *Model) refreshViewport() {
	if !m.ready {
		return
	}

	width := m.width
	if width < 10 {
		width = 10
	}

	var styled []string
	for _, rl := range m.rawLines {
		if rl.text == "" {
			styled = append(styled, "")
			continue
		}

		styled = append(styled, renderLineKind(wordWrap(rl.text, width), rl.kind))
	}

	m.viewport.SetContent(strings.Join(styled, "\n"))
	m.viewport.GotoBottom()
}

// renderLineKind applies the style for a given lineKind.
func renderLineKind(line string, kind lineKind) string {
	switch kind {
	case kindInput:
		return stylePlayerInput.Render(line)
	case kindWin:
		return styleWin.Render(line)
	case kindMiss:
		return styleMiss.Render(line)
	case kindRound:
		return styleRound.Render(line)
	case kindSystem:
		return styleSystem.Render(line)
	case kindError:
		return styleError.Render(line)
	case kindTrace:
		return styleTrace.Render(line)
	default:
		return styleNarration.Render(line)
	}
}

// wordWrap wraps text to fit within the given width, breaking at word
// boundaries.
func wordWrap(text string, width int) string {
	if width <= 0 || len(text) <= width {
		return text
	}

	var b strings.Builder
	lineLen := 0
	for i, word := range strings.Fields(text) {
		switch {
		case i == 0:
			lineLen = len(word)
		case lineLen+1+len(word) > width:
			b.WriteString("\n")
			lineLen = len(word)
		default:
			b.WriteString(" ")
			lineLen += 1 + len(word)
		}
		b.WriteString(word)
	}
	return b.String()
}

// View renders the full TUI layout: viewport + status bar + input.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return "Loading..."
	}

	return m.viewport.View() + "\n" + m.renderStatusBar() + "\n" + m.input.View()
}

// handleMeta runs a meta-command through the shared dispatcher. Loading
// a save retargets the money counter straight away.
func (m *Model) handleMeta(input string) ([]cli.Line, bool) {
	out, quit := m.meta.Do(input)
	switch strings.Fields(input)[0] {
	case "/load":
		m.moneyTo = m.engine.State.Player.Money
		m.shownMoney = float32(m.moneyTo)
		m.moneyTween = nil
	case "/help":
		out = append(out,
			cli.Line{},
			cli.Line{Text: "Navigation: PgUp/PgDn to scroll, Up/Down for command history"})
	}
	return out, quit
}

// viewportKeyMap returns a viewport keymap with Up/Down disabled
// (we use those for input history).
func viewportKeyMap() viewport.KeyMap {
	return viewport.KeyMap{
		PageDown:     key.NewBinding(key.WithKeys("pgdown")),
		PageUp:       key.NewBinding(key.WithKeys("pgup")),
		HalfPageDown: key.NewBinding(key.WithKeys("ctrl+d")),
		HalfPageUp:   key.NewBinding(key.WithKeys("ctrl+u")),
		Up:           key.NewBinding(key.WithDisabled()),
		Down:         key.NewBinding(key.WithDisabled()),
	}
}
