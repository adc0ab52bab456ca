package xlsx

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/richardlehane/mscfb"
	"github.com/shakinm/xlsReader/xls"
)

// ErrUnknownFormat is returned for embedded data that is neither a ZIP
// workbook nor an OLE compound file holding one.
var ErrUnknownFormat = errors.New("unrecognised embedded workbook format")

var (
	zipMagic = []byte("PK\x03\x04")
	cfbMagic = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}
)

// OpenEmbedded decodes a workbook embedded in another package. It accepts a
// plain .xlsx, an OLE compound file whose "Package" stream is an .xlsx, and a
// legacy BIFF workbook (.xls or an OLE object with a "Workbook" stream).
func OpenEmbedded(data []byte) (*Workbook, error) {
	switch {
	case bytes.HasPrefix(data, zipMagic):
		return OpenBytes(data)
	case bytes.HasPrefix(data, cfbMagic):
		return openCompound(data)
	}
	return nil, ErrUnknownFormat
}

func openCompound(data []byte) (*Workbook, error) {
	doc, err := mscfb.New(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("reading compound file: %w", err)
	}

	legacy := false
	for entry, err := doc.Next(); err == nil; entry, err = doc.Next() {
		switch entry.Name {
		case "Package":
			pkg, err := io.ReadAll(entry)
			if err != nil {
				return nil, fmt.Errorf("reading Package stream: %w", err)
			}
			return OpenBytes(pkg)
		case "Workbook", "Book":
			legacy = true
		}
	}
	if legacy {
		return openLegacy(data)
	}
	return nil, ErrUnknownFormat
}

// openLegacy decodes a BIFF workbook. The decoder panics on some malformed
// input, so panics are turned into errors.
func openLegacy(data []byte) (w *Workbook, err error) {
	defer func() {
		if r := recover(); r != nil {
			w = nil
			err = fmt.Errorf("decoding legacy workbook: %v", r)
		}
	}()

	wb, err := xls.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding legacy workbook: %w", err)
	}

	n := wb.GetNumberSheets()
	w = &Workbook{Sheets: make([]*Sheet, 0, n)}
	for i := 0; i < n; i++ {
		ws, err := wb.GetSheet(i)
		if err != nil {
			continue
		}
		s := newSheet(ws.GetName())
		for rowIdx := 0; rowIdx < ws.GetNumberRows(); rowIdx++ {
			row, err := ws.GetRow(rowIdx)
			if err != nil || row == nil {
				continue
			}
			for colIdx, cell := range row.GetCols() {
				if c, ok := legacyCell(cell.GetString()); ok {
					s.set(rowIdx, colIdx, c)
				}
			}
		}
		w.Sheets = append(w.Sheets, s)
	}
	return w, nil
}

// legacyCell classifies a BIFF cell from its display string, the only
// representation the decoder exposes uniformly.
func legacyCell(v string) (Cell, bool) {
	if strings.TrimSpace(v) == "" {
		return Cell{}, false
	}
	if _, err := strconv.ParseFloat(v, 64); err == nil {
		return Cell{Value: v, Type: CellTypeNumber}, true
	}
	return Cell{Value: v, Type: CellTypeString}, true
}
