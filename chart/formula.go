package chart

import (
	"fmt"
	"strings"

	"github.com/tsawler/deckparse/xlsx"
)

// Area is one sheet-qualified cell range of a series formula.
type Area struct {
	Sheet string
	Range xlsx.Range
}

// ParseFormula decodes a series reference such as "Sheet1!$B$2:$B$5",
// "'Q1 Sales'!$A$2" or "(Sheet1!$A$2:$A$3,Sheet1!$A$5)".
func ParseFormula(f string) ([]Area, error) {
	f = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(f), "="))
	if strings.HasPrefix(f, "(") && strings.HasSuffix(f, ")") {
		f = f[1 : len(f)-1]
	}
	if f == "" {
		return nil, fmt.Errorf("empty formula")
	}

	var areas []Area
	for _, part := range splitAreas(f) {
		a, err := parseArea(part)
		if err != nil {
			return nil, err
		}
		areas = append(areas, a)
	}
	return areas, nil
}

func parseArea(s string) (Area, error) {
	i := strings.LastIndex(s, "!")
	if i <= 0 {
		return Area{}, fmt.Errorf("formula %q has no sheet name", s)
	}
	sheet := strings.TrimSpace(s[:i])
	if len(sheet) >= 2 && sheet[0] == '\'' && sheet[len(sheet)-1] == '\'' {
		sheet = strings.ReplaceAll(sheet[1:len(sheet)-1], "''", "'")
	}
	r, err := xlsx.ParseRangeRef(strings.TrimSpace(s[i+1:]))
	if err != nil {
		return Area{}, fmt.Errorf("formula %q: %w", s, err)
	}
	return Area{Sheet: sheet, Range: r}, nil
}

// splitAreas splits on commas outside quoted sheet names.
func splitAreas(s string) []string {
	var parts []string
	quoted := false
	start := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\'':
			quoted = !quoted
		case ',':
			if !quoted {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	return append(parts, s[start:])
}

// Cells reads the cells a formula refers to, row-major within each area.
// Missing cells are nil entries. A formula naming a sheet the workbook does
// not have, or covering more than xlsx.MaxRangeCells cells, yields no cells.
func Cells(wb *xlsx.Workbook, formula string) []*xlsx.Cell {
	areas, err := ParseFormula(formula)
	if err != nil {
		return nil
	}
	total := 0
	for _, a := range areas {
		total += a.Range.Len()
		if total > xlsx.MaxRangeCells {
			return nil
		}
	}
	out := make([]*xlsx.Cell, 0, total)
	for _, a := range areas {
		sheet, ok := wb.Sheet(a.Sheet)
		if !ok {
			return nil
		}
		out = append(out, sheet.Range(a.Range)...)
	}
	return out
}

// Values reads a formula as numbers. Missing and non-numeric cells are nil.
func Values(wb *xlsx.Workbook, formula string) []*float64 {
	cells := Cells(wb, formula)
	if len(cells) == 0 {
		return nil
	}
	out := make([]*float64, len(cells))
	for i, c := range cells {
		if v, ok := c.Number(); ok {
			out[i] = &v
		}
	}
	return out
}

// Categories reads a formula as category labels: numbers as float64, text
// as string, missing cells as nil.
func Categories(wb *xlsx.Workbook, formula string) []any {
	cells := Cells(wb, formula)
	if len(cells) == 0 {
		return nil
	}
	out := make([]any, len(cells))
	for i, c := range cells {
		out[i] = cellValue(c)
	}
	return out
}

func cellValue(c *xlsx.Cell) any {
	if c.IsEmpty() {
		return nil
	}
	if c.Type == xlsx.CellTypeNumber {
		if v, ok := c.Number(); ok {
			return v
		}
	}
	return c.Value
}
