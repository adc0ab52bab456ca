// Package xlsx decodes spreadsheet workbooks into sparse cell grids. It reads
// OOXML workbooks from disk or memory and the embedded workbooks that back
// presentation charts, including OLE-wrapped and legacy BIFF ones.
package xlsx

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/tsawler/deckparse/opc"
)

// ErrNoWorkbook is returned when a package has no workbook part.
var ErrNoWorkbook = errors.New("no workbook part")

// Workbook is a decoded workbook. Sheets keep workbook order.
type Workbook struct {
	Sheets []*Sheet
}

// Sheet returns the sheet with the given name.
func (w *Workbook) Sheet(name string) (*Sheet, bool) {
	if w == nil {
		return nil, false
	}
	for _, s := range w.Sheets {
		if s.Name == name {
			return s, true
		}
	}
	return nil, false
}

// SheetNames returns the sheet names in workbook order.
func (w *Workbook) SheetNames() []string {
	names := make([]string, len(w.Sheets))
	for i, s := range w.Sheets {
		names[i] = s.Name
	}
	return names
}

// Open reads an .xlsx file from disk.
func Open(filename string) (*Workbook, error) {
	pkg, err := opc.OpenFile(filename)
	if err != nil {
		return nil, err
	}
	defer pkg.Close()
	return OpenPackage(pkg)
}

// OpenBytes decodes an .xlsx workbook held in memory.
func OpenBytes(data []byte) (*Workbook, error) {
	pkg, err := opc.OpenBytes(data)
	if err != nil {
		return nil, err
	}
	return OpenPackage(pkg)
}

// OpenPackage decodes the workbook of an already opened package. Sheets that
// cannot be read are skipped.
func OpenPackage(pkg opc.Package) (*Workbook, error) {
	rels := opc.NewResolver(pkg)
	wbPart := "xl/workbook.xml"
	if rel, ok := rels.ByType("", opc.RelOfficeDocument); ok && !rel.External {
		wbPart = rel.Target
	}

	var wb workbookXML
	if err := opc.ReadXML(pkg, wbPart, &wb); err != nil {
		if errors.Is(err, opc.ErrPartNotFound) {
			return nil, ErrNoWorkbook
		}
		return nil, fmt.Errorf("parsing workbook: %w", err)
	}

	sharedStrings := readSharedStrings(pkg, rels, wbPart)

	w := &Workbook{Sheets: make([]*Sheet, 0, len(wb.Sheets.Sheet))}
	for i, ref := range wb.Sheets.Sheet {
		target, ok := rels.PartTarget(wbPart, ref.RID)
		if !ok {
			target = opc.ResolveTarget(wbPart, fmt.Sprintf("worksheets/sheet%d.xml", i+1))
		}
		var ws worksheetXML
		if err := opc.ReadXML(pkg, target, &ws); err != nil {
			continue
		}
		w.Sheets = append(w.Sheets, buildSheet(ref.Name, &ws, sharedStrings))
	}
	return w, nil
}

func readSharedStrings(pkg opc.Package, rels *opc.Resolver, wbPart string) []string {
	part := opc.ResolveTarget(wbPart, "sharedStrings.xml")
	if rel, ok := rels.ByType(wbPart, "/sharedStrings"); ok && !rel.External {
		part = rel.Target
	}
	var sst sharedStringsXML
	if err := opc.ReadXML(pkg, part, &sst); err != nil {
		return nil
	}
	out := make([]string, len(sst.SI))
	for i, si := range sst.SI {
		out[i] = si.text()
	}
	return out
}

func buildSheet(name string, ws *worksheetXML, sharedStrings []string) *Sheet {
	s := newSheet(name)
	nextRow := 0
	for _, row := range ws.SheetData.Rows {
		rowIdx := nextRow
		if row.R > 0 {
			rowIdx = row.R - 1
		}
		nextRow = rowIdx + 1

		nextCol := 0
		for _, c := range row.Cells {
			col := nextCol
			if c.R != "" {
				parsed, _, err := ParseCellRef(c.R)
				if err != nil {
					continue
				}
				col = parsed
			}
			nextCol = col + 1

			if cell, ok := decodeCell(c, sharedStrings); ok {
				s.set(rowIdx, col, cell)
			}
		}
	}
	return s
}

func decodeCell(c cellXML, sharedStrings []string) (Cell, bool) {
	switch c.T {
	case "s":
		idx, err := strconv.Atoi(c.V)
		if err != nil || idx < 0 || idx >= len(sharedStrings) {
			return Cell{}, false
		}
		return Cell{Value: sharedStrings[idx], Type: CellTypeString}, true
	case "b":
		if c.V == "1" {
			return Cell{Value: "TRUE", Type: CellTypeBoolean}, true
		}
		return Cell{Value: "FALSE", Type: CellTypeBoolean}, true
	case "e":
		return Cell{Value: c.V, Type: CellTypeError}, true
	case "str":
		return Cell{Value: c.V, Type: CellTypeString}, true
	case "inlineStr":
		if c.Is == nil {
			return Cell{}, false
		}
		return Cell{Value: siXML{T: c.Is.T, R: c.Is.R}.text(), Type: CellTypeString}, true
	}
	if c.V == "" {
		return Cell{}, false
	}
	return Cell{Value: c.V, Type: CellTypeNumber}, true
}
