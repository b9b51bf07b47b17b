// Package tui provides a Bubble Tea terminal UI for the spinwheel engine.
package tui

// Recall keeps the most recent commands typed at the prompt so Up/Down can
// step through them.
type Recall struct {
	lines []string
	limit int
	back  int // 0 = editing a fresh line, n = n-th most recent entry
}

// NewRecall creates a recall buffer holding at most limit commands.
func NewRecall(limit int) *Recall {
	return &Recall{limit: limit}
}

// Push records a command. Repeating the previous command is not recorded.
func (r *Recall) Push(cmd string) {
	if n := len(r.lines); n > 0 && r.lines[n-1] == cmd {
		return
	}
	r.lines = append(r.lines, cmd)
	if over := len(r.lines) - r.limit; over > 0 {
		r.lines = r.lines[over:]
	}
}

// Older steps one entry back in time. It stays on the oldest entry once
// reached and reports false when nothing has been recorded.
func (r *Recall) Older() (string, bool) {
	if len(r.lines) == 0 {
		return "", false
	}
	if r.back < len(r.lines) {
		r.back++
	}
	return r.lines[len(r.lines)-r.back], true
}

// Newer steps one entry forward. It reports false when it moves past the
// newest entry back to a fresh line.
func (r *Recall) Newer() (string, bool) {
	if r.back <= 1 {
		r.back = 0
		return "", false
	}
	r.back--
	return r.lines[len(r.lines)-r.back], true
}

// Reset returns to a fresh line.
func (r *Recall) Reset() {
	r.back = 0
}

// Len returns the number of recorded commands.
func (r *Recall) Len() int {
	return len(r.lines)
}
