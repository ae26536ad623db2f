// Package report renders a human readable summary of a run.
package report

import (
	"strings"

	"github.com/mattn/go-runewidth"

	"feedsync/pkg/utils"
)

// minColumnWidth keeps the separator row at least "---".
const minColumnWidth = 3

// Table renders rows as a Markdown table padded by display width, so that
// accented and wide characters line up in a terminal.
func Table(header []string, rows [][]string) []string {
	strs := utils.NewStringHelper()

	table := make([][]string, 0, len(rows)+1)
	table = append(table, header)
	table = append(table, rows...)

	colCount := 0
	for _, row := range table {
		if len(row) > colCount {
			colCount = len(row)
		}
	}

	cells := make([][]string, len(table))
	colWidths := make([]int, colCount)

	for i := range colWidths {
		colWidths[i] = minColumnWidth
	}

	for r, row := range table {
		cells[r] = make([]string, colCount)

		for c := 0; c < colCount; c++ {
			if c < len(row) {
				cells[r][c] = strs.NormalizeWhitespace(strings.ReplaceAll(row[c], "|", "/"))
			}

			if width := runewidth.StringWidth(cells[r][c]); width > colWidths[c] {
				colWidths[c] = width
			}
		}
	}

	lines := make([]string, 0, len(cells)+1)
	lines = append(lines, formatRow(cells[0], colWidths))

	separator := make([]string, colCount)
	for c, width := range colWidths {
		separator[c] = strings.Repeat("-", width)
	}

	lines = append(lines, formatRow(separator, colWidths))

	for _, row := range cells[1:] {
		lines = append(lines, formatRow(row, colWidths))
	}

	return lines
}

func formatRow(row []string, colWidths []int) string {
	var sb strings.Builder

	sb.WriteString("|")

	for c, content := range row {
		sb.WriteString(" ")
		sb.WriteString(content)

		if padding := colWidths[c] - runewidth.StringWidth(content); padding > 0 {
			sb.WriteString(strings.Repeat(" ", padding))
		}

		sb.WriteString(" |")
	}

	return sb.String()
}
