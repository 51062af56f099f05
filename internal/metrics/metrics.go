// Package metrics computes typing speed and accuracy.
package metrics

import (
	"math"
	"unicode/utf8"
)

// CharsPerWord is the fixed word length used for WPM.
const CharsPerWord = 5

// Metrics is a point-in-time view of a typing attempt.
type Metrics struct {
	WPM               int   `json:"wpm"`
	Accuracy          int   `json:"accuracy"`
	ElapsedMs         int64 `json:"timeElapsed"`
	TotalCharacters   int   `json:"totalCharacters"`
	CorrectCharacters int   `json:"correctCharacters"`
	Errors            int   `json:"errors"`
}

// Empty returns the metrics of an attempt with no input.
func Empty() Metrics {
	return Metrics{Accuracy: 100}
}

// ComputeWPM converts correct characters typed over elapsedMs into words per minute.
func ComputeWPM(correct int, elapsedMs int64) int {
	if elapsedMs <= 0 || correct <= 0 {
		return 0
	}
	minutes := float64(elapsedMs) / 60000.0
	wpm := math.Round((float64(correct) / CharsPerWord) / minutes)
	if math.IsNaN(wpm) || wpm <= 0 {
		return 0
	}
	return int(wpm)
}

// ComputeAccuracy returns the percentage of correct characters in [0,100].
func ComputeAccuracy(correct, total int) int {
	if total <= 0 {
		return 100
	}
	if correct <= 0 {
		return 0
	}
	if correct >= total {
		return 100
	}
	return int(math.Round(100 * float64(correct) / float64(total)))
}

// ComputeErrorCount counts positions of input that do not match target.
// Input positions past the end of target are errors.
func ComputeErrorCount(input, target string) int {
	errs := 0
	targetRunes := []rune(target)
	i := 0
	for _, r := range input {
		if i >= len(targetRunes) || targetRunes[i] != r {
			errs++
		}
		i++
	}
	return errs
}

// Compute builds a full snapshot for input typed against target.
func Compute(input, target string, elapsedMs int64) Metrics {
	if elapsedMs < 0 {
		elapsedMs = 0
	}
	total := utf8.RuneCountInString(input)
	errs := ComputeErrorCount(input, target)
	correct := total - errs
	return Metrics{
		WPM:               ComputeWPM(correct, elapsedMs),
		Accuracy:          ComputeAccuracy(correct, total),
		ElapsedMs:         elapsedMs,
		TotalCharacters:   total,
		CorrectCharacters: correct,
		Errors:            errs,
	}
}

// Rates computes unrounded WPM, CPM, and accuracy (0-1) for aggregated counts.
func Rates(correct, incorrect int, elapsedMs int64) (wpm, cpm, accuracy float64) {
	if elapsedMs <= 0 {
		return 0, 0, 0
	}
	minutes := float64(elapsedMs) / 60000.0
	wpm = (float64(correct) / CharsPerWord) / minutes
	cpm = float64(correct) / minutes
	den := float64(correct + incorrect)
	if den > 0 {
		accuracy = float64(correct) / den
	}
	return wpm, cpm, accuracy
}
