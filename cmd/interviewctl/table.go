package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"
)

// maxCellWidth truncates long cells such as skills lists
const maxCellWidth = 32

// table is a column-aligned listing that measures cells in display width,
// so names in wide scripts line up
type table struct {
	header []string
	rows   [][]string
}

func newTable(header ...string) *table {
	return &table{header: header}
}

func (t *table) add(cells ...string) {
	t.rows = append(t.rows, cells)
}

func (t *table) widths() []int {
	w := make([]int, len(t.header))
	for _, row := range append([][]string{t.header}, t.rows...) {
		for i, cell := range row {
			if i >= len(w) {
				break
			}
			if n := runewidth.StringWidth(clip(cell)); n > w[i] {
				w[i] = n
			}
		}
	}
	return w
}

func (t *table) render(out io.Writer) {
	w := t.widths()
	line := func(cells []string) {
		parts := make([]string, len(w))
		for i := range w {
			cell := ""
			if i < len(cells) {
				cell = clip(cells[i])
			}
			parts[i] = runewidth.FillRight(cell, w[i])
		}
		fmt.Fprintln(out, strings.TrimRight(strings.Join(parts, "  "), " ")) //nolint:errcheck
	}

	line(t.header)
	rule := make([]string, len(w))
	for i, n := range w {
		rule[i] = strings.Repeat("-", n)
	}
	line(rule)
	for _, row := range t.rows {
		line(row)
	}
}

func clip(s string) string {
	return runewidth.Truncate(s, maxCellWidth, "...")
}
