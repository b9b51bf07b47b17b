package loader

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestLoad_MinimalGame(t *testing.T) {
	defs, err := Load("testdata/minimal")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if defs.Game.Title != "Minimal Wheel" {
		t.Errorf("Title = %q, want %q", defs.Game.Title, "Minimal Wheel")
	}
	if defs.Wheel.ID != "main" || defs.Wheel.Name != "main" {
		t.Errorf("wheel = %q/%q, want main/main", defs.Wheel.ID, defs.Wheel.Name)
	}
	if len(defs.Wheel.Segments) != 1 {
		t.Fatalf("expected 1 segment, got %d", len(defs.Wheel.Segments))
	}
	if seg := defs.Wheel.Segments[0]; seg.ID != "coin" || seg.Weight != 1 {
		t.Errorf("segment = %+v, want id coin with default weight 1", seg)
	}
}

func TestLoad_FullGame(t *testing.T) {
	defs, err := Load("testdata/full")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	// Game metadata.
	g := defs.Game
	if g.Title != "Full Test Wheel" || g.Author != "Tester" || g.Version != "0.2" {
		t.Errorf("game metadata = %+v", g)
	}
	if g.SpinsPerRound != 3 || g.StartMoney != 50 {
		t.Errorf("spins/money = %d/%d", g.SpinsPerRound, g.StartMoney)
	}
	if g.SpinSpeed.Min != 600 || g.SpinSpeed.Max != 1200 {
		t.Errorf("spin speed = %+v", g.SpinSpeed)
	}

	// Wheel.
	w := defs.Wheel
	if w.ID != "carnival" || w.Name != "Carnival Wheel" {
		t.Errorf("wheel = %q/%q", w.ID, w.Name)
	}
	if w.UUID != "0b6c3f1e-8d2a-4b7c-9e1f-2a3b4c5d6e7f" {
		t.Errorf("uuid = %q", w.UUID)
	}
	wantIDs := []string{"bust", "coin", "bar", "jackpot"}
	if len(w.Segments) != len(wantIDs) {
		t.Fatalf("expected %d segments, got %d", len(wantIDs), len(w.Segments))
	}
	for i, id := range wantIDs {
		if w.Segments[i].ID != id {
			t.Errorf("segment %d id = %q, want %q", i, w.Segments[i].ID, id)
		}
	}
	jackpot := w.Segments[3]
	if jackpot.Name != "Jackpot" || jackpot.Prize != 250 || jackpot.Weight != 0.25 || jackpot.Color != "#ff0000" {
		t.Errorf("jackpot = %+v", jackpot)
	}

	// Handlers, in file order.
	if len(defs.Handlers) != 4 {
		t.Fatalf("expected 4 handlers, got %d", len(defs.Handlers))
	}
	h := defs.Handlers[0]
	if h.EventType != "prize_won" || len(h.Conditions) != 1 || len(h.Effects) != 3 {
		t.Errorf("first handler = %+v", h)
	}
	if h.Conditions[0].Type != "segment_is" || h.Conditions[0].Params["segment"] != "jackpot" {
		t.Errorf("first condition = %+v", h.Conditions[0])
	}
	if h.Effects[2].Type != "set_weight" || h.Effects[2].Params["weight"] != 0.1 {
		t.Errorf("set_weight effect = %+v", h.Effects[2])
	}

	neg := defs.Handlers[1].Conditions[1]
	if neg.Type != "not" || neg.Inner == nil || neg.Inner.Type != "flag_set" {
		t.Errorf("negated condition = %+v", neg)
	}

	add := defs.Handlers[2].Effects[0]
	if add.Type != "add_segment" || add.Params["id"] != "mega" || add.Params["prize"] != 1000 {
		t.Errorf("add_segment effect = %+v", add)
	}
}

func TestLoad_InvalidRefs_Fails(t *testing.T) {
	_, err := Load("testdata/invalid_refs")
	if err == nil {
		t.Fatal("expected error for invalid references")
	}
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %T", err)
	}
	if len(ve.Errors) != 2 {
		t.Errorf("expected 2 errors, got %v", ve.Errors)
	}
	if !strings.Contains(err.Error(), "undefined segment") {
		t.Errorf("error = %q, expected 'undefined segment'", err.Error())
	}
}

func TestLoad_DuplicateSegments_Fails(t *testing.T) {
	_, err := Load("testdata/duplicate_segments")
	if err == nil {
		t.Fatal("expected error for duplicate segment ids")
	}
	if !strings.Contains(err.Error(), "duplicate segment id") {
		t.Errorf("error = %q, expected 'duplicate segment id'", err.Error())
	}
}

func TestLoad_BadLuaSyntax_Fails(t *testing.T) {
	_, err := Load("testdata/bad_lua")
	if err == nil {
		t.Fatal("expected error for bad Lua syntax")
	}
}

func TestLoad_NoGameDef_Fails(t *testing.T) {
	_, err := Load("testdata/no_game")
	if err == nil {
		t.Fatal("expected error for missing Game{} definition")
	}
	if !strings.Contains(err.Error(), "no Game{} definition") {
		t.Errorf("error = %q, expected 'no Game{} definition'", err.Error())
	}
}

func TestLoad_NoWheel_Fails(t *testing.T) {
	_, err := Load("testdata/no_wheel")
	if err == nil {
		t.Fatal("expected error for missing Wheel definition")
	}
	if !strings.Contains(err.Error(), "no Wheel definition") {
		t.Errorf("error = %q, expected 'no Wheel definition'", err.Error())
	}
}

func TestLoad_MissingDir_Fails(t *testing.T) {
	if _, err := Load("testdata/does_not_exist"); err == nil {
		t.Fatal("expected error for missing directory")
	}
}

func TestLoad_EmptyDir_Fails(t *testing.T) {
	_, err := Load(t.TempDir())
	if err == nil || !strings.Contains(err.Error(), "no .lua files") {
		t.Fatalf("expected no .lua files error, got %v", err)
	}
}

func TestLoad_LogsContent(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	if _, err := Load("testdata/full", WithLogger(logger)); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !strings.Contains(buf.String(), "component=loader") || !strings.Contains(buf.String(), "segments=4") {
		t.Errorf("unexpected log output %q", buf.String())
	}
}

func TestLoad_SandboxEnforced(t *testing.T) {
	// os library should not be available.
	L, _ := newTestVM()
	defer L.Close()

	for _, script := range []string{
		`os.execute("echo pwned")`,
		`io.open("/etc/passwd")`,
		`dofile("x.lua")`,
		`math.randomseed(1)`,
		`return math.random()`,
	} {
		if err := L.DoString(script); err == nil {
			t.Errorf("expected sandbox to block %s", script)
		}
	}
}

func TestLoad_FileOrdering(t *testing.T) {
	files := sortedLuaFiles([]string{"wheel.lua", "game.lua", "handlers.lua", "bonus.lua"})
	if files[0] != "game.lua" {
		t.Errorf("first file = %q, want game.lua", files[0])
	}
	// Rest should be alphabetical.
	want := []string{"game.lua", "bonus.lua", "handlers.lua", "wheel.lua"}
	for i := range want {
		if files[i] != want[i] {
			t.Errorf("file %d = %q, want %q", i, files[i], want[i])
		}
	}
}

func TestLoad_BundledContent(t *testing.T) {
	defs, err := Load("../content/classic")
	if err != nil {
		t.Fatalf("bundled content failed to load: %v", err)
	}
	if len(defs.Wheel.Segments) != 6 {
		t.Errorf("expected 6 segments, got %d", len(defs.Wheel.Segments))
	}
	if defs.SpinsPerRound() != 5 {
		t.Errorf("expected 5 spins per round, got %d", defs.SpinsPerRound())
	}
}
