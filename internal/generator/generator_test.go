package generator

import (
	"strings"
	"testing"
)

func TestPassageWordCount(t *testing.T) {
	g := NewSeeded(1)
	text := g.Passage([]string{"alpha", "beta", "gamma"}, Options{Count: 7})
	if got := len(strings.Fields(text)); got != 7 {
		t.Fatalf("expected 7 words, got %d in %q", got, text)
	}
	for _, w := range strings.Fields(text) {
		if w != "alpha" && w != "beta" && w != "gamma" {
			t.Fatalf("unexpected word %q", w)
		}
	}
}

func TestPassageAppliesCapsAndPunct(t *testing.T) {
	g := NewSeeded(2)
	text := g.Passage([]string{"word"}, Options{Count: 3, CapsPct: 1, PunctPct: 1, PunctSet: []rune{'!'}})
	if text != "Word! Word! Word!" {
		t.Fatalf("unexpected passage %q", text)
	}
}

func TestPassageEmpty(t *testing.T) {
	g := NewSeeded(3)
	if got := g.Passage(nil, Options{Count: 5}); got != "" {
		t.Fatalf("expected empty passage, got %q", got)
	}
	if got := g.Passage([]string{"a"}, Options{}); got != "" {
		t.Fatalf("expected empty passage for zero count, got %q", got)
	}
}

func TestIntnCoversRange(t *testing.T) {
	g := NewSeeded(4)
	seen := map[int]bool{}
	for i := 0; i < 200; i++ {
		n := g.Intn(3)
		if n < 0 || n >= 3 {
			t.Fatalf("index out of range: %d", n)
		}
		seen[n] = true
	}
	if len(seen) != 3 {
		t.Fatalf("expected all indexes to be chosen, got %v", seen)
	}
}
