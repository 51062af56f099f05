package stats

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/verte-zerg/speedtype/internal/model"
)

func TestFormatTableAlignsColumns(t *testing.T) {
	headers := []string{"Source", "WPM", "Errors"}
	rows := [][]string{
		{"quote", "97.50", "12"},
		{"fallback", "8.00", "3"},
	}
	rightAlign := map[int]bool{1: true, 2: true}

	lines := formatTable(headers, rows, rightAlign)
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	if lines[0] != "Source     WPM Errors" {
		t.Fatalf("unexpected header line: %q", lines[0])
	}
	if lines[1] != "quote    97.50     12" {
		t.Fatalf("unexpected row line: %q", lines[1])
	}
	if lines[2] != "fallback  8.00      3" {
		t.Fatalf("unexpected row line: %q", lines[2])
	}
}

func TestFormatTableWideRunes(t *testing.T) {
	lines := formatTable([]string{"A", "B"}, [][]string{{"日本", "x"}}, nil)
	if lines[0] != "A    B" {
		t.Fatalf("unexpected header line: %q", lines[0])
	}
	if lines[1] != "日本 x" {
		t.Fatalf("unexpected row line: %q", lines[1])
	}
}

func TestRenderResults(t *testing.T) {
	var buf bytes.Buffer
	results := []model.Result{{
		WPM:       61.5,
		Accuracy:  97.25,
		ElapsedMs: 31200,
		Errors:    4,
		Source:    model.SourceQuote,
		Author:    "An Author With A Remarkably Long Name",
		CreatedAt: time.Date(2024, 5, 1, 10, 0, 0, 0, time.Local),
	}}
	if err := RenderResults(&buf, results); err != nil {
		t.Fatalf("render: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"Recent Results", "2024-05-01 10:00", "61.50", "97.25%", "31.2s", "quote", "..."} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in:\n%s", want, out)
		}
	}
}
