package tui

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

const wrongSpaceGlyph = '•'

type cell struct {
	s       string
	width   int
	isSpace bool
}

// styleCells colours each target rune by comparing it with the typed buffer.
// cursor < 0 hides the cursor.
func styleCells(target, input []rune, cursor int) []cell {
	word := wordAt(splitWords(target), cursor)

	out := make([]cell, 0, len(target))
	for i, want := range target {
		shown := want
		style := pendingStyle
		switch {
		case i < len(input) && want == ' ' && input[i] != ' ':
			shown = wrongSpaceGlyph
			style = incorrectStyle
		case i < len(input) && input[i] == want:
			style = correctStyle
		case i < len(input):
			style = incorrectStyle
		case want != ' ' && word != nil && i >= word.start && i < word.end:
			style = currentWordStyle
		}
		if i == cursor && i >= len(input) {
			style = style.Underline(true)
		}
		out = append(out, cell{
			s:       style.Render(string(shown)),
			width:   runewidth.RuneWidth(shown),
			isSpace: want == ' ',
		})
	}
	return out
}

type span struct {
	start int
	end   int
}

func splitWords(target []rune) []span {
	var words []span
	start := -1
	for i, r := range target {
		if r == ' ' {
			if start != -1 {
				words = append(words, span{start: start, end: i})
				start = -1
			}
			continue
		}
		if start == -1 {
			start = i
		}
	}
	if start != -1 {
		words = append(words, span{start: start, end: len(target)})
	}
	return words
}

// wordAt returns the word holding cursor, or the next one when it sits on a space.
func wordAt(words []span, cursor int) *span {
	if len(words) == 0 {
		return nil
	}
	if cursor < 0 {
		return &words[0]
	}
	for i := range words {
		if cursor < words[i].end {
			return &words[i]
		}
	}
	return &words[len(words)-1]
}

func joinCells(cells []cell) string {
	var b strings.Builder
	for _, c := range cells {
		b.WriteString(c.s)
	}
	return b.String()
}

// wrapCells breaks cells into lines no wider than width, preferring spaces.
func wrapCells(cells []cell, width int) []string {
	if width <= 0 {
		return []string{joinCells(cells)}
	}
	var lines []string
	line := make([]cell, 0, len(cells))
	lineWidth := 0
	lastSpace := -1

	for i := 0; i < len(cells); {
		c := cells[i]
		if lineWidth+c.width > width && len(line) > 0 {
			if lastSpace >= 0 {
				lines = append(lines, joinCells(line[:lastSpace+1]))
				line = append([]cell{}, line[lastSpace+1:]...)
			} else {
				lines = append(lines, joinCells(line))
				line = line[:0]
			}
			lineWidth = widthOf(line)
			lastSpace = lastSpaceIn(line)
			continue
		}
		line = append(line, c)
		lineWidth += c.width
		if c.isSpace {
			lastSpace = len(line) - 1
		}
		i++
	}
	return append(lines, joinCells(line))
}

func widthOf(line []cell) int {
	total := 0
	for _, c := range line {
		total += c.width
	}
	return total
}

func lastSpaceIn(line []cell) int {
	for i := len(line) - 1; i >= 0; i-- {
		if line[i].isSpace {
			return i
		}
	}
	return -1
}
