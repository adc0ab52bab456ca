package xlsx

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/tsawler/deckparse/internal/fixture"
)

func salesWorkbook(t *testing.T) []byte {
	t.Helper()
	return fixture.Workbook(t,
		fixture.Sheet{Name: "Sheet1", Rows: [][]string{
			{"", "Sales"},
			{"Q1", "4.3"},
			{"Q2", "2.5"},
			{"Q3", ""},
		}},
		fixture.Sheet{Name: "Data Two", Rows: [][]string{{"x", "7"}}},
	)
}

func TestOpenBytes(t *testing.T) {
	wb, err := OpenBytes(salesWorkbook(t))
	if err != nil {
		t.Fatalf("OpenBytes: %v", err)
	}

	names := wb.SheetNames()
	if len(names) != 2 || names[0] != "Sheet1" || names[1] != "Data Two" {
		t.Fatalf("SheetNames() = %v", names)
	}

	s, ok := wb.Sheet("Sheet1")
	if !ok {
		t.Fatal("Sheet1 not found")
	}
	if c := s.CellByRef("B1"); c == nil || c.Value != "Sales" || c.Type != CellTypeString {
		t.Errorf("B1 = %+v, want shared string Sales", c)
	}
	if v, ok := s.CellByRef("$B$2").Number(); !ok || v != 4.3 {
		t.Errorf("B2 = %v, %v; want 4.3", v, ok)
	}
	if c := s.CellByRef("B4"); c != nil {
		t.Errorf("B4 = %+v, want missing", c)
	}
	if c := s.CellByRef("A1"); c != nil {
		t.Errorf("A1 = %+v, want missing", c)
	}

	if _, ok := wb.Sheet("Nope"); ok {
		t.Error("unknown sheet reported present")
	}
}

func TestOpen_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "book.xlsx")
	if err := os.WriteFile(path, salesWorkbook(t), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	wb, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if len(wb.Sheets) != 2 {
		t.Errorf("len(Sheets) = %d, want 2", len(wb.Sheets))
	}
}

func TestOpen_NotFound(t *testing.T) {
	if _, err := Open("nonexistent.xlsx"); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestOpenBytes_MissingWorkbook(t *testing.T) {
	data := fixture.Zip(t, map[string]string{"docProps/app.xml": "<Properties/>"})
	_, err := OpenBytes(data)
	if !errors.Is(err, ErrNoWorkbook) {
		t.Errorf("err = %v, want ErrNoWorkbook", err)
	}
}

func TestCellTypes(t *testing.T) {
	sheet := `<worksheet xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main"><sheetData>
<row r="1">
  <c r="A1" t="b"><v>1</v></c>
  <c r="B1" t="e"><v>#N/A</v></c>
  <c r="C1" t="str"><f>A1&amp;"x"</f><v>TRUEx</v></c>
  <c r="D1" t="inlineStr"><is><r><t>rich </t></r><r><t>text</t></r></is></c>
  <c r="E1"><f>SUM(A2:A3)</f></c>
</row>
<row><c><v>10</v></c><c><v>11</v></c></row>
</sheetData></worksheet>`
	data := fixture.Zip(t, map[string]string{
		"xl/workbook.xml": `<workbook xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main"><sheets><sheet name="S"/></sheets></workbook>`,
		"xl/worksheets/sheet1.xml": sheet,
	})
	wb, err := OpenBytes(data)
	if err != nil {
		t.Fatalf("OpenBytes: %v", err)
	}
	s, ok := wb.Sheet("S")
	if !ok {
		t.Fatal("sheet S not found via default sheet path")
	}

	tests := []struct {
		ref      string
		want     string
		wantType CellType
	}{
		{"A1", "TRUE", CellTypeBoolean},
		{"B1", "#N/A", CellTypeError},
		{"C1", "TRUEx", CellTypeString},
		{"D1", "rich text", CellTypeString},
		{"A2", "10", CellTypeNumber},
		{"B2", "11", CellTypeNumber},
	}
	for _, tt := range tests {
		c := s.CellByRef(tt.ref)
		if c == nil {
			t.Errorf("%s missing", tt.ref)
			continue
		}
		if c.Value != tt.want || c.Type != tt.wantType {
			t.Errorf("%s = %q (%s), want %q (%s)", tt.ref, c.Value, c.Type, tt.want, tt.wantType)
		}
	}
	if c := s.CellByRef("E1"); c != nil {
		t.Errorf("formula without cached value should be absent, got %+v", c)
	}
}

func TestOpenEmbedded(t *testing.T) {
	wb, err := OpenEmbedded(salesWorkbook(t))
	if err != nil {
		t.Fatalf("OpenEmbedded(xlsx): %v", err)
	}
	if len(wb.Sheets) != 2 {
		t.Errorf("len(Sheets) = %d", len(wb.Sheets))
	}

	if _, err := OpenEmbedded([]byte("plain text")); !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("err = %v, want ErrUnknownFormat", err)
	}

	truncated := append(append([]byte{}, cfbMagic...), bytes.Repeat([]byte{0}, 16)...)
	if _, err := OpenEmbedded(truncated); err == nil {
		t.Error("expected error for truncated compound file")
	}
}

func BenchmarkOpenBytes(b *testing.B) {
	rows := make([][]string, 500)
	for i := range rows {
		rows[i] = []string{"label", "1.25", "2.5", "3.75"}
	}
	data := fixture.Workbook(b, fixture.Sheet{Name: "Sheet1", Rows: rows})

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := OpenBytes(data); err != nil {
			b.Fatal(err)
		}
	}
}
