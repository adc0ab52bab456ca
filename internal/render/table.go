package render

import (
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/tsawler/deckparse/pptx"
)

// gridCell is a table cell anchored at its top-left grid position.
type gridCell struct {
	row, col int
	rowSpan  int
	colSpan  int
	lines    []string
}

// grid lays out a table for fixed-width output. owner maps every grid
// position to the cell covering it.
type grid struct {
	rows, cols int
	cells      []*gridCell
	owner      [][]*gridCell
	widths     []int
	heights    []int
}

func newGrid(t *pptx.TableContent) *grid {
	g := &grid{rows: len(t.Rows), cols: t.Columns}
	for _, row := range t.Rows {
		g.cols = max(g.cols, len(row))
	}
	g.owner = make([][]*gridCell, g.rows)
	for r := range g.owner {
		g.owner[r] = make([]*gridCell, g.cols)
	}
	for r, row := range t.Rows {
		for c, tc := range row {
			if tc.Merged {
				continue
			}
			cell := &gridCell{
				row:     r,
				col:     c,
				rowSpan: max(tc.RowSpan, 1),
				colSpan: max(tc.ColSpan, 1),
				lines:   strings.Split(tc.Text, "\n"),
			}
			g.cells = append(g.cells, cell)
			for dr := 0; dr < cell.rowSpan && r+dr < g.rows; dr++ {
				for dc := 0; dc < cell.colSpan && c+dc < g.cols; dc++ {
					g.owner[r+dr][c+dc] = cell
				}
			}
		}
	}
	g.measure()
	return g
}

func widest(lines []string) int {
	w := 0
	for _, l := range lines {
		w = max(w, runewidth.StringWidth(l))
	}
	return w
}

// measure sizes columns from single-column cells first, then widens the
// columns under spanning cells evenly when they need more room.
func (g *grid) measure() {
	g.widths = make([]int, g.cols)
	for i := range g.widths {
		g.widths[i] = 1
	}
	for _, c := range g.cells {
		if c.colSpan == 1 && c.col < g.cols {
			g.widths[c.col] = max(g.widths[c.col], widest(c.lines))
		}
	}
	for _, c := range g.cells {
		if c.colSpan == 1 {
			continue
		}
		span := min(c.colSpan, g.cols-c.col)
		have := 3 * (span - 1)
		for i := 0; i < span; i++ {
			have += g.widths[c.col+i]
		}
		if need := widest(c.lines); need > have {
			extra := need - have
			for i := 0; i < span; i++ {
				g.widths[c.col+i] += extra / span
				if i < extra%span {
					g.widths[c.col+i]++
				}
			}
		}
	}

	g.heights = make([]int, g.rows)
	for r := range g.heights {
		g.heights[r] = 1
	}
	for _, c := range g.cells {
		g.heights[c.row] = max(g.heights[c.row], len(c.lines))
	}
}

// String renders the grid with ASCII borders. Borders between positions
// owned by the same cell are left open.
func (g *grid) String() string {
	if g.rows == 0 || g.cols == 0 {
		return ""
	}
	var b strings.Builder
	g.border(&b, -1)
	for r := 0; r < g.rows; r++ {
		for line := 0; line < g.heights[r]; line++ {
			g.content(&b, r, line)
		}
		g.border(&b, r)
	}
	return b.String()
}

// border writes the line below row r (r = -1 is the top edge).
func (g *grid) border(b *strings.Builder, r int) {
	edge := r < 0 || r == g.rows-1
	b.WriteByte('+')
	for c := 0; c < g.cols; c++ {
		fill := "-"
		if !edge && g.owner[r][c] != nil && g.owner[r][c] == g.owner[r+1][c] {
			fill = " "
		}
		b.WriteString(strings.Repeat(fill, g.widths[c]+2))
		if c < g.cols-1 {
			b.WriteByte('+')
		}
	}
	b.WriteString("+\n")
}

func (g *grid) content(b *strings.Builder, r, line int) {
	b.WriteByte('|')
	for c := 0; c < g.cols; {
		cell := g.owner[r][c]
		span := 1
		text := ""
		if cell != nil && cell.col == c {
			span = min(cell.colSpan, g.cols-c)
			if cell.row == r && line < len(cell.lines) {
				text = cell.lines[line]
			}
		}
		width := 3 * (span - 1)
		for i := 0; i < span; i++ {
			width += g.widths[c+i]
		}
		b.WriteByte(' ')
		b.WriteString(runewidth.FillRight(text, width))
		b.WriteString(" |")
		c += span
	}
	b.WriteByte('\n')
}
