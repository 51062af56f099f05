package metrics

import (
	"math"
	"testing"
)

func TestComputeWPM(t *testing.T) {
	cases := []struct {
		name      string
		correct   int
		elapsedMs int64
		want      int
	}{
		{name: "one minute", correct: 250, elapsedMs: 60000, want: 50},
		{name: "zero elapsed", correct: 250, elapsedMs: 0, want: 0},
		{name: "zero correct", correct: 0, elapsedMs: 1000, want: 0},
		{name: "half minute", correct: 100, elapsedMs: 30000, want: 40},
		{name: "rounds", correct: 13, elapsedMs: 60000, want: 3},
		{name: "negative correct clamps", correct: -4, elapsedMs: 60000, want: 0},
		{name: "negative elapsed", correct: 10, elapsedMs: -5, want: 0},
	}
	for _, tc := range cases {
		if got := ComputeWPM(tc.correct, tc.elapsedMs); got != tc.want {
			t.Fatalf("%s: expected %d, got %d", tc.name, tc.want, got)
		}
	}
}

func TestComputeWPMZeroElapsedAlwaysZero(t *testing.T) {
	for c := 0; c < 500; c += 7 {
		if got := ComputeWPM(c, 0); got != 0 {
			t.Fatalf("expected 0 wpm for %d chars in 0ms, got %d", c, got)
		}
	}
}

func TestComputeAccuracy(t *testing.T) {
	if got := ComputeAccuracy(0, 0); got != 100 {
		t.Fatalf("expected 100 for empty input, got %d", got)
	}
	if got := ComputeAccuracy(90, 100); got != 90 {
		t.Fatalf("expected 90, got %d", got)
	}
	if got := ComputeAccuracy(2, 3); got != 67 {
		t.Fatalf("expected 67, got %d", got)
	}
	if got := ComputeAccuracy(0, 5); got != 0 {
		t.Fatalf("expected 0, got %d", got)
	}
}

func TestComputeAccuracyRange(t *testing.T) {
	for total := 0; total <= 40; total++ {
		for correct := 0; correct <= total; correct++ {
			got := ComputeAccuracy(correct, total)
			if got < 0 || got > 100 {
				t.Fatalf("accuracy(%d, %d) out of range: %d", correct, total, got)
			}
		}
	}
}

func TestComputeErrorCount(t *testing.T) {
	cases := []struct {
		input  string
		target string
		want   int
	}{
		{input: "cbt", target: "cat", want: 1},
		{input: "", target: "cat", want: 0},
		{input: "ca", target: "cat", want: 0},
		{input: "dog", target: "cat", want: 3},
		{input: "cats", target: "cat", want: 1},
		{input: "xy", target: "", want: 2},
		{input: "héllo", target: "hello", want: 1},
		{input: "héllo", target: "héllo", want: 0},
	}
	for _, tc := range cases {
		if got := ComputeErrorCount(tc.input, tc.target); got != tc.want {
			t.Fatalf("errors(%q, %q): expected %d, got %d", tc.input, tc.target, tc.want, got)
		}
	}
}

func TestComputeSnapshot(t *testing.T) {
	m := Compute("cbt", "cat", 0)
	if m.Errors != 1 || m.CorrectCharacters != 2 || m.TotalCharacters != 3 {
		t.Fatalf("unexpected counts: %+v", m)
	}
	if m.WPM != 0 {
		t.Fatalf("expected 0 wpm at zero elapsed, got %d", m.WPM)
	}
	if m.Accuracy != 67 {
		t.Fatalf("expected 67%% accuracy, got %d", m.Accuracy)
	}
	if m.CorrectCharacters != m.TotalCharacters-m.Errors {
		t.Fatalf("correct must equal total minus errors: %+v", m)
	}
}

func TestEmpty(t *testing.T) {
	m := Empty()
	if m.Accuracy != 100 || m.WPM != 0 || m.TotalCharacters != 0 {
		t.Fatalf("unexpected empty metrics: %+v", m)
	}
	if m != Compute("", "abc", 0) {
		t.Fatalf("expected empty metrics to match an empty computation")
	}
}

func TestRates(t *testing.T) {
	wpm, cpm, acc := Rates(250, 50, 60000)
	if math.Abs(wpm-50) > 1e-9 {
		t.Fatalf("expected 50 wpm, got %f", wpm)
	}
	if math.Abs(cpm-250) > 1e-9 {
		t.Fatalf("expected 250 cpm, got %f", cpm)
	}
	if math.Abs(acc-250.0/300.0) > 1e-9 {
		t.Fatalf("unexpected accuracy %f", acc)
	}
	if wpm, cpm, acc := Rates(10, 0, 0); wpm != 0 || cpm != 0 || acc != 0 {
		t.Fatalf("expected zero rates for zero duration")
	}
}
