package tui

import (
	"strings"
	"testing"

	"github.com/verte-zerg/speedtype/internal/metrics"
	"github.com/verte-zerg/speedtype/internal/recorder"
)

func TestRenderFooterFormats(t *testing.T) {
	m := &Model{
		targetRunes: []rune("abcd"),
		inputRunes:  []rune("ab"),
		stats:       metrics.Metrics{WPM: 72, Accuracy: 98, ElapsedMs: 12345, Errors: 1},
	}
	out := m.renderFooter()
	if out == "" {
		t.Fatalf("expected footer output")
	}
	if !containsAll(out, []string{"72 WPM", "98%", "12.3s", "Errors 1", "Progress 50%"}) {
		t.Fatalf("footer missing expected segments: %s", out)
	}
	if strings.Contains(out, "to start") {
		t.Fatalf("start hint shown for a running session: %s", out)
	}
}

func TestRenderFooterStartHint(t *testing.T) {
	m := &Model{targetRunes: []rune("abcd"), stats: metrics.Empty()}
	if out := m.renderFooter(); !strings.Contains(out, "Enter or type to start") {
		t.Fatalf("expected start hint: %s", out)
	}
}

func TestRenderFooterEmptyWithoutText(t *testing.T) {
	m := &Model{}
	if out := m.renderFooter(); out != "" {
		t.Fatalf("expected empty footer, got %q", out)
	}
}

func TestRenderResultsStatus(t *testing.T) {
	cases := []struct {
		name string
		m    *Model
		want string
	}{
		{"saving", &Model{recording: true}, "Saving..."},
		{"best", &Model{outcome: &recorder.Outcome{Persisted: true, PersonalBest: true}}, "new personal best"},
		{"saved", &Model{outcome: &recorder.Outcome{Persisted: true}}, "Saved"},
		{"anonymous", &Model{outcome: &recorder.Outcome{}}, "no username"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tc.m.stats = metrics.Metrics{WPM: 61, Accuracy: 95, ElapsedMs: 30000, Errors: 4}
			out := tc.m.renderResults()
			if !containsAll(out, []string{"61 WPM", "95% accuracy", "30.0s", "4 errors", tc.want}) {
				t.Fatalf("unexpected results panel: %s", out)
			}
		})
	}
}

func containsAll(haystack string, needles []string) bool {
	for _, needle := range needles {
		if !strings.Contains(haystack, needle) {
			return false
		}
	}
	return true
}
