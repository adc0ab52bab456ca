package xlsx

import (
	"fmt"
	"strconv"
	"strings"
)

// CellType represents the type of data in a cell.
type CellType int

const (
	CellTypeEmpty CellType = iota
	CellTypeString
	CellTypeNumber
	CellTypeBoolean
	CellTypeError
)

func (t CellType) String() string {
	switch t {
	case CellTypeString:
		return "string"
	case CellTypeNumber:
		return "number"
	case CellTypeBoolean:
		return "boolean"
	case CellTypeError:
		return "error"
	default:
		return "empty"
	}
}

// Cell is one worksheet cell. Value holds the display text; numeric cells
// keep the literal number as written.
type Cell struct {
	Value string
	Type  CellType
}

// IsEmpty reports whether the cell carries no value.
func (c *Cell) IsEmpty() bool {
	return c == nil || c.Type == CellTypeEmpty
}

// Number returns the numeric value of a number cell, or of a string cell
// whose text parses as a number.
func (c *Cell) Number() (float64, bool) {
	if c == nil {
		return 0, false
	}
	switch c.Type {
	case CellTypeNumber, CellTypeString:
		f, err := strconv.ParseFloat(strings.TrimSpace(c.Value), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	case CellTypeBoolean:
		if c.Value == "TRUE" {
			return 1, true
		}
		return 0, true
	}
	return 0, false
}

// Sheet is a sparse worksheet: only cells present in the markup are stored.
type Sheet struct {
	Name  string
	cells map[cellKey]Cell
	// MaxRow and MaxCol are the largest 0-based indices holding a cell,
	// or -1 for an empty sheet.
	MaxRow int
	MaxCol int
}

type cellKey struct{ row, col int }

func newSheet(name string) *Sheet {
	return &Sheet{Name: name, cells: make(map[cellKey]Cell), MaxRow: -1, MaxCol: -1}
}

func (s *Sheet) set(row, col int, c Cell) {
	if row < 0 || col < 0 {
		return
	}
	s.cells[cellKey{row, col}] = c
	s.MaxRow = max(s.MaxRow, row)
	s.MaxCol = max(s.MaxCol, col)
}

// Cell returns the cell at the 0-based row and column, or nil if absent.
func (s *Sheet) Cell(row, col int) *Cell {
	if s == nil {
		return nil
	}
	c, ok := s.cells[cellKey{row, col}]
	if !ok {
		return nil
	}
	return &c
}

// CellByRef returns the cell at a reference such as "B3" or "$B$3".
func (s *Sheet) CellByRef(ref string) *Cell {
	col, row, err := ParseCellRef(ref)
	if err != nil {
		return nil
	}
	return s.Cell(row, col)
}

// Worksheet limits. References past MaxColumns or MaxRows do not parse, and
// Range refuses ranges larger than MaxRangeCells.
const (
	MaxColumns    = 16384
	MaxRows       = 1048576
	MaxRangeCells = 1 << 20
)

// Range returns the cells of r in row-major order. Missing cells are nil
// entries so the result has r.Len() elements. It returns nil when the range
// covers more than MaxRangeCells cells.
func (s *Sheet) Range(r Range) []*Cell {
	if r.Len() <= 0 || r.Len() > MaxRangeCells {
		return nil
	}
	out := make([]*Cell, 0, r.Len())
	for row := r.StartRow; row <= r.EndRow; row++ {
		for col := r.StartCol; col <= r.EndCol; col++ {
			out = append(out, s.Cell(row, col))
		}
	}
	return out
}

// Range is an inclusive, 0-based rectangular cell range.
type Range struct {
	StartCol, StartRow int
	EndCol, EndRow     int
}

// Len returns the number of cells covered by the range.
func (r Range) Len() int {
	return (r.EndRow - r.StartRow + 1) * (r.EndCol - r.StartCol + 1)
}

// ParseCellRef parses a reference like "A1", "$AA$100" or "c7" into 0-based
// column and row indices.
func ParseCellRef(ref string) (col, row int, err error) {
	ref = strings.ReplaceAll(ref, "$", "")
	if ref == "" {
		return 0, 0, fmt.Errorf("empty cell reference")
	}

	i := 0
	for i < len(ref) && isLetter(ref[i]) {
		i++
	}
	if i == 0 {
		return 0, 0, fmt.Errorf("invalid cell reference %q: no column letters", ref)
	}
	if i == len(ref) {
		return 0, 0, fmt.Errorf("invalid cell reference %q: no row number", ref)
	}

	if i > 3 {
		return 0, 0, fmt.Errorf("invalid column: %s", ref[:i])
	}
	col = ColumnToIndex(ref[:i])
	if col < 0 || col >= MaxColumns {
		return 0, 0, fmt.Errorf("invalid column: %s", ref[:i])
	}
	n, err := strconv.Atoi(ref[i:])
	if err != nil || n < 1 || n > MaxRows {
		return 0, 0, fmt.Errorf("invalid row: %s", ref[i:])
	}
	return col, n - 1, nil
}

// ParseRangeRef parses "A1:D10" or a single cell "B2". The result is
// normalised so that start precedes end.
func ParseRangeRef(ref string) (Range, error) {
	start, end, found := strings.Cut(ref, ":")
	if !found {
		end = start
	}
	sc, sr, err := ParseCellRef(start)
	if err != nil {
		return Range{}, fmt.Errorf("invalid start cell: %w", err)
	}
	ec, er, err := ParseCellRef(end)
	if err != nil {
		return Range{}, fmt.Errorf("invalid end cell: %w", err)
	}
	return Range{
		StartCol: min(sc, ec), StartRow: min(sr, er),
		EndCol: max(sc, ec), EndRow: max(sr, er),
	}, nil
}

// ColumnToIndex converts column letters to a 0-based index: A=0, Z=25, AA=26.
func ColumnToIndex(col string) int {
	result := 0
	for _, c := range strings.ToUpper(col) {
		if c < 'A' || c > 'Z' {
			return -1
		}
		result = result*26 + int(c-'A') + 1
	}
	return result - 1
}

// IndexToColumn converts a 0-based column index to letters.
func IndexToColumn(index int) string {
	if index < 0 {
		return ""
	}
	var buf []byte
	for index++; index > 0; index /= 26 {
		index--
		buf = append([]byte{byte('A' + index%26)}, buf...)
	}
	return string(buf)
}

func isLetter(c byte) bool {
	return (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z')
}
