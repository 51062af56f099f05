package stats

import (
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/verte-zerg/speedtype/internal/model"
)

const (
	tableTimeLayout = "2006-01-02 15:04"
	maxAuthorWidth  = 24
)

// RenderResults prints an aligned table of results in the given order.
func RenderResults(w io.Writer, results []model.Result) error {
	if len(results) == 0 {
		return nil
	}
	if _, err := fmt.Fprintln(w, "Recent Results"); err != nil {
		return err
	}
	headers := []string{"Date", "WPM", "Accuracy", "Time", "Errors", "Source", "Author"}
	rows := make([][]string, 0, len(results))
	for _, r := range results {
		rows = append(rows, []string{
			r.CreatedAt.Local().Format(tableTimeLayout),
			fmt.Sprintf("%.2f", r.WPM),
			fmt.Sprintf("%.2f%%", r.Accuracy),
			fmt.Sprintf("%.1fs", float64(r.ElapsedMs)/1000),
			fmt.Sprintf("%d", r.Errors),
			r.Source,
			runewidth.Truncate(r.Author, maxAuthorWidth, "..."),
		})
	}
	rightAlign := map[int]bool{1: true, 2: true, 3: true, 4: true}
	for _, line := range formatTable(headers, rows, rightAlign) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

func formatTable(headers []string, rows [][]string, rightAlignCols map[int]bool) []string {
	colCount := len(headers)
	for _, row := range rows {
		colCount = max(colCount, len(row))
	}
	if colCount == 0 {
		return nil
	}

	widths := make([]int, colCount)
	for i, header := range headers {
		widths[i] = runewidth.StringWidth(header)
	}
	for _, row := range rows {
		for i, cell := range row {
			widths[i] = max(widths[i], runewidth.StringWidth(cell))
		}
	}

	lines := make([]string, 0, len(rows)+1)
	if len(headers) > 0 {
		lines = append(lines, formatRow(headers, widths, rightAlignCols))
	}
	for _, row := range rows {
		lines = append(lines, formatRow(row, widths, rightAlignCols))
	}
	return lines
}

func formatRow(row []string, widths []int, rightAlignCols map[int]bool) string {
	cells := make([]string, len(widths))
	for i, width := range widths {
		cell := ""
		if i < len(row) {
			cell = row[i]
		}
		if rightAlignCols[i] {
			cells[i] = runewidth.FillLeft(cell, width)
		} else {
			cells[i] = runewidth.FillRight(cell, width)
		}
	}
	return strings.TrimRight(strings.Join(cells, " "), " ")
}
