package resolve

import (
	"errors"
	"testing"

	"github.com/nathoo/spinwheel/engine/wheel"
)

func testSegments() []wheel.Segment {
	return []wheel.Segment{
		{ID: "bust", Name: "Bust", Prize: 0, Weight: 4},
		{ID: "gold_bar", Name: "Gold Bar", Prize: 50, Weight: 1},
		{ID: "gold_coin", Name: "Gold Coin", Prize: 10, Weight: 2},
		{ID: "jackpot", Name: "Jackpot", Prize: 500, Weight: 0.2},
		{Name: "Free Spin", Prize: 0, Weight: 1},
	}
}

func TestSegment(t *testing.T) {
	segs := testSegments()

	tests := []struct {
		ref  string
		want int
	}{
		{"1", 0},
		{"5", 4},
		{"jackpot", 3},
		{"Jackpot", 3},
		{"gold_bar", 1},
		{"gold bar", 1},
		{"coin", 2},
		{"jack", 3},
		{"free spin", 4},
		{"FREE", 4},
		{"  bust  ", 0},
	}
	for _, tt := range tests {
		got, err := Segment(segs, tt.ref)
		if err != nil {
			t.Errorf("Segment(%q) error: %v", tt.ref, err)
			continue
		}
		if got != tt.want {
			t.Errorf("Segment(%q) = %d, want %d", tt.ref, got, tt.want)
		}
	}
}

func TestSegment_NotFound(t *testing.T) {
	segs := testSegments()

	for _, ref := range []string{"", "0", "6", "-1", "diamond"} {
		_, err := Segment(segs, ref)
		var nf *NotFoundError
		if !errors.As(err, &nf) {
			t.Errorf("Segment(%q): expected NotFoundError, got %v", ref, err)
		}
	}
}

func TestSegment_Ambiguous(t *testing.T) {
	segs := testSegments()

	_, err := Segment(segs, "gold")
	var amb *AmbiguityError
	if !errors.As(err, &amb) {
		t.Fatalf("expected AmbiguityError, got %v", err)
	}
	if len(amb.Candidates) != 2 {
		t.Errorf("expected 2 candidates, got %v", amb.Candidates)
	}
	if amb.Error() != "which gold? (2:Gold Bar, 3:Gold Coin)" {
		t.Errorf("unexpected message %q", amb.Error())
	}
}

func TestSegment_ExactNameBeatsWordMatch(t *testing.T) {
	segs := []wheel.Segment{
		{Name: "Gold"},
		{Name: "Gold Bar"},
	}
	got, err := Segment(segs, "gold")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 0 {
		t.Errorf("expected exact name match 0, got %d", got)
	}
}

func TestSegment_DuplicateNames(t *testing.T) {
	segs := []wheel.Segment{{Name: "Cash"}, {Name: "Cash"}}
	_, err := Segment(segs, "cash")
	var amb *AmbiguityError
	if !errors.As(err, &amb) {
		t.Fatalf("expected AmbiguityError for duplicate names, got %v", err)
	}
}
