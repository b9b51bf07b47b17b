package tui

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/shopspring/decimal"

	"github.com/nathoo/spinwheel/cli"
	"github.com/nathoo/spinwheel/engine"
	"github.com/nathoo/spinwheel/engine/ledger"
	"github.com/nathoo/spinwheel/engine/state"
	"github.com/nathoo/spinwheel/types"
)

func TestClassifyLine(t *testing.T) {
	tests := []struct {
		line string
		want lineKind
	}{
		{"The wheel stops on Gold! You win 10.", kindWin},
		{"The wheel stops on Bust.", kindMiss},
		{"Round 1 is over. You have 20. Type 'new' to play another round.", kindRound},
		{"Round 2 begins. You have 3 spin(s).", kindRound},
		{"[Game saved to test.]", kindSystem},
		{"[trace] Effects: 2", kindTrace},
		{"There is no segment \"ruby\" on the wheel.", kindError},
		{"Which gold? (2:Gold Bar, 3:Gold Coin).", kindError},
		{"Usage: remove <segment>", kindError},
		{"You have no spins left this round. Type 'new' to start another.", kindError},
		{"The wheel spins at 900°/s...", kindNarration},
		{"", kindNarration},
	}
	for _, tt := range tests {
		got := classifyLine(tt.line)
		if got != tt.want {
			t.Errorf("classifyLine(%q) = %v, want %v", tt.line, got, tt.want)
		}
	}
}

func TestWordWrap(t *testing.T) {
	tests := []struct {
		text  string
		width int
		want  string
	}{
		{"short", 80, "short"},
		{"hello world", 5, "hello\nworld"},
		{"The wheel stops on Gold Bar and you win fifty.", 20,
			"The wheel stops on\nGold Bar and you win\nfifty."},
		{"", 80, ""},
		{"one", 80, "one"},
		{"a b c d e", 3, "a b\nc d\ne"},
	}
	for _, tt := range tests {
		got := wordWrap(tt.text, tt.width)
		if got != tt.want {
			t.Errorf("wordWrap(%q, %d) =\n  %q\nwant:\n  %q", tt.text, tt.width, got, tt.want)
		}
	}
}

func TestRecall_OlderWalksBack(t *testing.T) {
	r := NewRecall(5)
	r.Push("spin")
	r.Push("odds")
	r.Push("status")

	for _, want := range []string{"status", "odds", "spin", "spin"} {
		got, ok := r.Older()
		if !ok || got != want {
			t.Errorf("Older() = %q (ok=%v), want %q", got, ok, want)
		}
	}
}

func TestRecall_Newer(t *testing.T) {
	r := NewRecall(5)
	r.Push("spin")
	r.Push("odds")

	r.Older() // "odds"
	r.Older() // "spin"

	next, ok := r.Newer()
	if !ok || next != "odds" {
		t.Errorf("expected 'odds', got %q (ok=%v)", next, ok)
	}
	if _, ok := r.Newer(); ok {
		t.Error("expected false when past newest entry")
	}
	// Back on a fresh line, Older starts from the newest again.
	if prev, _ := r.Older(); prev != "odds" {
		t.Errorf("expected 'odds', got %q", prev)
	}
}

func TestRecall_Empty(t *testing.T) {
	r := NewRecall(5)
	if _, ok := r.Older(); ok {
		t.Error("expected false on empty recall")
	}
	if _, ok := r.Newer(); ok {
		t.Error("expected false on empty recall")
	}
}

func TestRecall_Limit(t *testing.T) {
	r := NewRecall(2)
	r.Push("a")
	r.Push("b")
	r.Push("c") // "a" evicted

	if r.Len() != 2 {
		t.Fatalf("expected 2 entries, got %d", r.Len())
	}
	prev, _ := r.Older()
	if prev != "c" {
		t.Errorf("expected 'c', got %q", prev)
	}
	prev, _ = r.Older()
	if prev != "b" {
		t.Errorf("expected 'b', got %q", prev)
	}
	prev, _ = r.Older()
	if prev != "b" {
		t.Errorf("expected 'b' at boundary, got %q", prev)
	}
}

func TestRecall_SkipsRepeats(t *testing.T) {
	r := NewRecall(5)
	r.Push("spin")
	r.Push("spin")
	r.Push("spin")

	if r.Len() != 1 {
		t.Errorf("expected 1 entry, got %d", r.Len())
	}
}

func TestRecall_Reset(t *testing.T) {
	r := NewRecall(5)
	r.Push("spin")
	r.Push("odds")

	r.Older()
	r.Older()
	r.Reset()

	prev, ok := r.Older()
	if !ok || prev != "odds" {
		t.Errorf("expected 'odds' after reset, got %q", prev)
	}
}

// testDefs returns a one-segment wheel for TUI testing.
func testDefs() *state.Defs {
	return &state.Defs{
		Game: types.GameDef{
			Title:         "Test Wheel",
			Author:        "Test",
			Version:       "1.0",
			Intro:         "Welcome to the test.",
			SpinsPerRound: 3,
		},
		Wheel: types.WheelDef{
			ID:   "main",
			Name: "Main",
			Segments: []types.SegmentDef{
				{ID: "gold", Name: "Gold", Prize: 10, Weight: 1, Color: "#ffcc00"},
			},
		},
	}
}

func newTestModel(t *testing.T) Model {
	t.Helper()
	defs := testDefs()
	eng := engine.New(defs, engine.WithSeed(3))
	return New(eng, defs, Options{SaveDir: t.TempDir(), TickRate: 30})
}

// submit types a line and presses enter.
func submit(t *testing.T, m Model, line string) Model {
	t.Helper()
	m.input.SetValue(line)
	next, _ := m.handleEnter()
	return next.(Model)
}

// runTicks feeds frames until nothing is animating.
func runTicks(t *testing.T, m Model) Model {
	t.Helper()
	for i := 0; i < 10000 && m.animating(); i++ {
		next, _ := m.Update(tickMsg(time.Now()))
		m = next.(Model)
	}
	if m.animating() {
		t.Fatal("animation never finished")
	}
	return m
}

func rawText(m Model) string {
	var lines []string
	for _, rl := range m.rawLines {
		lines = append(lines, rl.text)
	}
	return strings.Join(lines, "\n")
}

func joinLines(lines []cli.Line) string {
	texts := make([]string, len(lines))
	for i, l := range lines {
		texts[i] = l.Text
	}
	return strings.Join(texts, "\n")
}

func TestSpin_TicksUntilSettled(t *testing.T) {
	m := newTestModel(t)

	m = submit(t, m, "spin")
	if !m.engine.Spinning() {
		t.Fatal("expected the wheel to be spinning")
	}
	if !m.ticking {
		t.Error("expected a frame to be scheduled")
	}

	m = runTicks(t, m)

	if !strings.Contains(rawText(m), "The wheel stops on Gold! You win 10.") {
		t.Errorf("expected stop message, got:\n%s", rawText(m))
	}
	if m.ticking {
		t.Error("expected ticking to stop once idle")
	}
	if m.displayMoney() != 10 {
		t.Errorf("expected counter to reach 10, got %d", m.displayMoney())
	}
}

func TestMoneyCounter_Animates(t *testing.T) {
	m := newTestModel(t)
	m.engine.State.Player.Money = 100
	m.syncMoney()

	if m.moneyTween == nil {
		t.Fatal("expected a money tween")
	}
	next, _ := m.Update(tickMsg(time.Now()))
	m = next.(Model)

	shown := m.displayMoney()
	if shown <= 0 || shown >= 100 {
		t.Errorf("expected counter part-way after one frame, got %d", shown)
	}

	m = runTicks(t, m)
	if m.displayMoney() != 100 {
		t.Errorf("expected counter to settle at 100, got %d", m.displayMoney())
	}
}

func TestStatusBar(t *testing.T) {
	m := newTestModel(t)
	m.width = 80

	bar := m.renderStatusBar()
	for _, want := range []string{"Main", "Gold", "$0", "Spins: 3", "R:1"} {
		if !strings.Contains(bar, want) {
			t.Errorf("expected %q in status bar %q", want, bar)
		}
	}
}

func TestHandleEnter_Again(t *testing.T) {
	m := newTestModel(t)

	m = submit(t, m, "g")
	if !strings.Contains(rawText(m), "Nothing to repeat.") {
		t.Error("expected nothing to repeat message")
	}

	m = submit(t, m, "status")
	m = submit(t, m, "again")
	if n := strings.Count(rawText(m), "Spins left: 3"); n != 2 {
		t.Errorf("expected status twice, got %d", n)
	}
}

func TestHandleMeta_Quit(t *testing.T) {
	m := newTestModel(t)

	_, quit := m.handleMeta("/quit")
	if !quit {
		t.Error("expected quit=true for /quit")
	}

	_, quit = m.handleMeta("/exit")
	if !quit {
		t.Error("expected quit=true for /exit")
	}
}

func TestHandleMeta_SaveAndLoad(t *testing.T) {
	m := newTestModel(t)
	m.engine.State.Player.Money = 42

	output, quit := m.handleMeta("/save test")
	if quit {
		t.Error("save should not quit")
	}
	if len(output) == 0 || !strings.Contains(output[0].Text, "Game saved") {
		t.Errorf("expected save confirmation, got %v", output)
	}

	m.engine.State.Player.Money = 0
	output, _ = m.handleMeta("/load test")
	if len(output) == 0 || !strings.Contains(output[0].Text, "Game loaded from test (round 1).") {
		t.Errorf("expected load confirmation, got %v", output)
	}
	if m.engine.State.Player.Money != 42 {
		t.Errorf("expected money 42 after load, got %d", m.engine.State.Player.Money)
	}
}

func TestHandleMeta_LoadNonexistent(t *testing.T) {
	m := newTestModel(t)

	output, quit := m.handleMeta("/load nonexistent")
	if quit {
		t.Error("load should not quit")
	}
	if len(output) == 0 || !strings.Contains(output[0].Text, "Load failed") {
		t.Errorf("expected load failure, got %v", output)
	}
}

func TestHandleMeta_LoadWhileSpinning(t *testing.T) {
	m := newTestModel(t)
	m.handleMeta("/save test")
	m.engine.Step("spin")

	output, _ := m.handleMeta("/load test")
	if len(output) == 0 || !strings.Contains(output[0].Text, "spinning") {
		t.Errorf("expected load refused while spinning, got %v", output)
	}
}

func TestHandleMeta_Help(t *testing.T) {
	m := newTestModel(t)

	output, quit := m.handleMeta("/help")
	if quit {
		t.Error("help should not quit")
	}

	joined := joinLines(output)
	for _, expected := range []string{"/save", "/load", "/quit", "/history", "spin", "odds"} {
		if !strings.Contains(joined, expected) {
			t.Errorf("expected %q in help output", expected)
		}
	}
}

func TestHandleMeta_Trace(t *testing.T) {
	m := newTestModel(t)

	output, _ := m.handleMeta("/trace")
	if !m.meta.Trace {
		t.Error("expected trace to be enabled")
	}
	if len(output) == 0 || !strings.Contains(output[0].Text, "enabled") {
		t.Errorf("expected enabled message, got %v", output)
	}

	output, _ = m.handleMeta("/trace")
	if m.meta.Trace {
		t.Error("expected trace to be disabled")
	}
	if len(output) == 0 || !strings.Contains(output[0].Text, "disabled") {
		t.Errorf("expected disabled message, got %v", output)
	}
}

func TestHandleMeta_Unknown(t *testing.T) {
	m := newTestModel(t)

	output, quit := m.handleMeta("/bogus")
	if quit {
		t.Error("unknown command should not quit")
	}
	if len(output) == 0 || !strings.Contains(output[0].Text, "Unknown command") {
		t.Errorf("expected unknown command message, got %v", output)
	}
}

func TestHandleMeta_State(t *testing.T) {
	m := newTestModel(t)

	output, _ := m.handleMeta("/state")
	joined := joinLines(output)
	if !strings.Contains(joined, "Round: 1") {
		t.Error("expected round in state output")
	}
	if !strings.Contains(joined, "phase: idle") {
		t.Error("expected wheel phase in state output")
	}
}

type stubLedger struct{}

func (stubLedger) Recent(context.Context, int) ([]ledger.Entry, error) {
	return []ledger.Entry{{Round: 1, Spin: 1, Name: "Gold", Prize: 10}}, nil
}

func (stubLedger) Summary(context.Context) (ledger.Summary, error) {
	return ledger.Summary{Spins: 1, TotalPrize: 10, AveragePrize: decimal.NewFromInt(10)}, nil
}

func TestHandleMeta_History(t *testing.T) {
	m := newTestModel(t)

	output, _ := m.handleMeta("/history")
	if len(output) != 1 || !strings.Contains(output[0].Text, "No spin history") {
		t.Errorf("expected no history message, got %v", output)
	}

	m.meta.History = stubLedger{}
	output, _ = m.handleMeta("/history")
	joined := joinLines(output)
	if !strings.Contains(joined, "round 1, spin 1: Gold (+10)") {
		t.Errorf("expected entry line, got %v", output)
	}
	if !strings.Contains(joined, "1 spin(s), 10 won in total, 10.00 per spin on average.") {
		t.Errorf("expected summary line, got %v", output)
	}
}

func TestReport_BracketsSystemLines(t *testing.T) {
	m := newTestModel(t)
	m.report([]cli.Line{
		{Text: "Game saved to test.", System: true},
		{Text: "The wheel stops on Gold! You win 10."},
	})

	if len(m.rawLines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(m.rawLines))
	}
	if got := m.rawLines[0]; got.text != "[Game saved to test.]" || got.kind != kindSystem {
		t.Errorf("unexpected system line %+v", got)
	}
	if m.rawLines[1].kind != kindWin {
		t.Errorf("expected plain lines to be classified, got %v", m.rawLines[1].kind)
	}
}

func TestHandleKey_Recall(t *testing.T) {
	m := newTestModel(t)
	m = submit(t, m, "status")
	m = submit(t, m, "odds")

	press := func(k tea.KeyType) {
		next, _, handled := m.handleKey(tea.KeyMsg{Type: k})
		if !handled {
			t.Fatalf("expected key %v to be handled", k)
		}
		m = next.(Model)
	}

	press(tea.KeyUp)
	press(tea.KeyUp)
	if got := m.input.Value(); got != "status" {
		t.Errorf("expected 'status' after two ups, got %q", got)
	}
	press(tea.KeyDown)
	if got := m.input.Value(); got != "odds" {
		t.Errorf("expected 'odds' after down, got %q", got)
	}
	press(tea.KeyDown)
	if got := m.input.Value(); got != "" {
		t.Errorf("expected a cleared prompt, got %q", got)
	}
}

func TestHandleMeta_LoadSnapsCounter(t *testing.T) {
	m := newTestModel(t)
	m.engine.State.Player.Money = 42
	m.handleMeta("/save test")
	m.engine.State.Player.Money = 0
	m.syncMoney()

	m.handleMeta("/load test")
	if m.moneyTween != nil {
		t.Error("expected no tween after load")
	}
	if m.displayMoney() != 42 {
		t.Errorf("expected counter at 42, got %d", m.displayMoney())
	}
}
