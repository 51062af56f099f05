package tui

import (
	"strings"
	"testing"
)

func TestStyleCellsCursor(t *testing.T) {
	cells := styleCells([]rune("ab"), []rune("a"), 1)
	if len(cells) != 2 {
		t.Fatalf("expected 2 cells, got %d", len(cells))
	}
	if cells[0].s != correctStyle.Render("a") {
		t.Fatalf("expected correct style for first rune")
	}
	if cells[1].s != currentWordStyle.Underline(true).Render("b") {
		t.Fatalf("expected underlined current-word style at cursor")
	}
}

func TestStyleCellsNoCursorWhenComplete(t *testing.T) {
	cells := styleCells([]rune("a"), []rune("a"), -1)
	if cells[0].s != correctStyle.Render("a") {
		t.Fatalf("expected correct style for completed rune")
	}
}

func TestStyleCellsKeepsTargetOnMistype(t *testing.T) {
	cells := styleCells([]rune("ab"), []rune("ax"), 2)
	if cells[1].s != incorrectStyle.Render("b") {
		t.Fatalf("expected incorrect style with the target rune shown")
	}
}

func TestStyleCellsWordHighlighting(t *testing.T) {
	cells := styleCells([]rune("one two"), []rune("o"), 1)
	if cells[1].s != currentWordStyle.Underline(true).Render("n") {
		t.Fatalf("expected cursor on current word")
	}
	if cells[2].s != currentWordStyle.Render("e") {
		t.Fatalf("expected current word style for untyped rune")
	}
	if cells[4].s != pendingStyle.Render("t") {
		t.Fatalf("expected pending style for next word")
	}
}

func TestStyleCellsWrongSpaceGlyph(t *testing.T) {
	cells := styleCells([]rune("a b"), []rune("ax"), 2)
	if cells[1].s != incorrectStyle.Render(string(wrongSpaceGlyph)) {
		t.Fatalf("expected glyph for mistyped space")
	}
}

func TestWrapCellsBreaksAtSpaces(t *testing.T) {
	cells := make([]cell, 0)
	for _, r := range "aa bb cc" {
		cells = append(cells, cell{s: string(r), width: 1, isSpace: r == ' '})
	}
	lines := wrapCells(cells, 5)
	if got := strings.Join(lines, "|"); got != "aa |bb cc" {
		t.Fatalf("unexpected wrap: %q", got)
	}
}

func TestWrapCellsLongWord(t *testing.T) {
	cells := make([]cell, 0)
	for _, r := range "abcdef" {
		cells = append(cells, cell{s: string(r), width: 1})
	}
	lines := wrapCells(cells, 4)
	if got := strings.Join(lines, "|"); got != "abcd|ef" {
		t.Fatalf("unexpected wrap: %q", got)
	}
}

func TestWrapCellsWideRunes(t *testing.T) {
	cells := styleCells([]rune("日本 語"), nil, -1)
	lines := wrapCells(cells, 4)
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d: %q", len(lines), lines)
	}
}
