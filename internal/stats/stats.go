// Package stats summarizes a user's typing history.
package stats

import (
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/verte-zerg/speedtype/internal/metrics"
	"github.com/verte-zerg/speedtype/internal/model"
)

const (
	sparkChars         = " .:-=+*#%@"
	defaultTrendWidth  = 60
	trendLabelReserve  = 24
	terminalWidthGuess = 80
)

// Summary aggregates a set of results.
type Summary struct {
	Count        int
	BestWPM      float64
	AvgWPM       float64
	AvgAccuracy  float64
	AvgElapsedMs float64
	TotalErrors  int
	// Overall rates treat every result as one long attempt, so longer
	// attempts weigh more than in the per-result averages.
	OverallWPM      float64
	OverallCPM      float64
	OverallAccuracy float64
}

// Summarize aggregates results. An empty slice yields a zero Summary.
func Summarize(results []model.Result) Summary {
	if len(results) == 0 {
		return Summary{}
	}
	var s Summary
	var wpm, acc, elapsed float64
	var correct int
	var elapsedMs int64
	for _, r := range results {
		wpm += r.WPM
		acc += r.Accuracy
		elapsed += float64(r.ElapsedMs)
		elapsedMs += r.ElapsedMs
		correct += r.CorrectCharacters
		s.TotalErrors += r.Errors
		if r.WPM > s.BestWPM {
			s.BestWPM = r.WPM
		}
	}
	n := float64(len(results))
	s.Count = len(results)
	s.AvgWPM = wpm / n
	s.AvgAccuracy = acc / n
	s.AvgElapsedMs = elapsed / n
	var overallAcc float64
	s.OverallWPM, s.OverallCPM, overallAcc = metrics.Rates(correct, s.TotalErrors, elapsedMs)
	s.OverallAccuracy = overallAcc * 100
	return s
}

// MovingAverage computes a rolling mean over the provided window size.
func MovingAverage(values []float64, window int) []float64 {
	out := make([]float64, len(values))
	if window <= 1 {
		copy(out, values)
		return out
	}
	var sum float64
	for i, v := range values {
		sum += v
		den := float64(i + 1)
		if i >= window {
			sum -= values[i-window]
			den = float64(window)
		}
		out[i] = sum / den
	}
	return out
}

// Sparkline renders values as one line of ASCII, resampled to at most width columns.
func Sparkline(values []float64, width int) string {
	values = resample(values, width)
	if len(values) == 0 {
		return ""
	}
	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if hi-lo < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	last := len(sparkChars) - 1
	for _, v := range values {
		idx := int(math.Round((v - lo) / (hi - lo) * float64(last)))
		b.WriteByte(sparkChars[min(max(idx, 0), last)])
	}
	return b.String()
}

// resample averages consecutive buckets so the output has at most width points.
func resample(values []float64, width int) []float64 {
	if width <= 0 || len(values) <= width {
		return values
	}
	out := make([]float64, width)
	for i := range out {
		start := i * len(values) / width
		end := (i + 1) * len(values) / width
		var sum float64
		for _, v := range values[start:end] {
			sum += v
		}
		out[i] = sum / float64(end-start)
	}
	return out
}

// TrendWidth picks a sparkline width that fits the terminal on stdout.
func TrendWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		width = terminalWidthGuess
	}
	return trendWidthFor(width)
}

func trendWidthFor(total int) int {
	width := total - trendLabelReserve
	if width < 10 {
		return 10
	}
	return min(width, defaultTrendWidth*2)
}

// RenderSummary prints the aggregate block.
func RenderSummary(w io.Writer, username string, s Summary) error {
	if s.Count == 0 {
		_, err := fmt.Fprintf(w, "No results for %s.\n", username)
		return err
	}
	lines := []string{
		fmt.Sprintf("Summary for %s", username),
		fmt.Sprintf("Tests: %d", s.Count),
		fmt.Sprintf("Best WPM: %.2f", s.BestWPM),
		fmt.Sprintf("Avg WPM: %.2f", s.AvgWPM),
		fmt.Sprintf("Avg Accuracy: %.2f%%", s.AvgAccuracy),
		fmt.Sprintf("Avg Time: %.1fs", s.AvgElapsedMs/1000),
		fmt.Sprintf("Total Errors: %d", s.TotalErrors),
		fmt.Sprintf("Overall: %.2f WPM · %.0f CPM · %.2f%% accuracy", s.OverallWPM, s.OverallCPM, s.OverallAccuracy),
		"",
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// RenderTrend prints a moving-average WPM sparkline. results must be oldest first.
func RenderTrend(w io.Writer, results []model.Result, window, width int) error {
	if len(results) < 2 {
		return nil
	}
	wpms := make([]float64, len(results))
	for i, r := range results {
		wpms[i] = r.WPM
	}
	avg := MovingAverage(wpms, window)
	lo, hi := avg[0], avg[0]
	for _, v := range avg {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if _, err := fmt.Fprintf(w, "WPM trend (moving avg %d)\n", max(window, 1)); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "%6.1f |%s| %.1f\n\n", lo, Sparkline(avg, width), hi); err != nil {
		return err
	}
	return nil
}
