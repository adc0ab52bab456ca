// Package fixture builds in-memory OOXML packages for tests.
package fixture

import (
	"archive/zip"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
)

// Zip writes parts into a ZIP archive in lexical part order.
func Zip(t testing.TB, parts map[string]string) []byte {
	t.Helper()

	names := make([]string, 0, len(parts))
	for name := range parts {
		names = append(names, name)
	}
	sort.Strings(names)

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, name := range names {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("Failed to create %s: %v", name, err)
		}
		if _, err := w.Write([]byte(parts[name])); err != nil {
			t.Fatalf("Failed to write %s: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("Failed to close zip writer: %v", err)
	}
	return buf.Bytes()
}

// Sheet describes a worksheet for Workbook. Rows are written from row 1;
// an empty string leaves the cell out. Values that look numeric are written
// as number cells, everything else as shared strings.
type Sheet struct {
	Name string
	Rows [][]string
}

// Workbook builds the bytes of a minimal .xlsx workbook.
func Workbook(t testing.TB, sheets ...Sheet) []byte {
	t.Helper()

	var shared []string
	index := map[string]int{}
	parts := map[string]string{
		"[Content_Types].xml": `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types"><Default Extension="xml" ContentType="application/xml"/></Types>`,
		"_rels/.rels": `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
  <Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="xl/workbook.xml"/>
</Relationships>`,
	}

	var wb, rels strings.Builder
	wb.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<workbook xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main" xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships"><sheets>`)
	rels.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
  <Relationship Id="rIdSST" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/sharedStrings" Target="sharedStrings.xml"/>`)

	for i, s := range sheets {
		fmt.Fprintf(&wb, `<sheet name="%s" sheetId="%d" r:id="rId%d"/>`, s.Name, i+1, i+1)
		fmt.Fprintf(&rels, `
  <Relationship Id="rId%d" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/worksheet" Target="worksheets/sheet%d.xml"/>`, i+1, i+1)

		var ws strings.Builder
		ws.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<worksheet xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main"><sheetData>`)
		for r, row := range s.Rows {
			fmt.Fprintf(&ws, `<row r="%d">`, r+1)
			for c, v := range row {
				if v == "" {
					continue
				}
				ref := fmt.Sprintf("%s%d", column(c), r+1)
				if isNumber(v) {
					fmt.Fprintf(&ws, `<c r="%s"><v>%s</v></c>`, ref, v)
					continue
				}
				idx, ok := index[v]
				if !ok {
					idx = len(shared)
					index[v] = idx
					shared = append(shared, v)
				}
				fmt.Fprintf(&ws, `<c r="%s" t="s"><v>%d</v></c>`, ref, idx)
			}
			ws.WriteString(`</row>`)
		}
		ws.WriteString(`</sheetData></worksheet>`)
		parts[fmt.Sprintf("xl/worksheets/sheet%d.xml", i+1)] = ws.String()
	}
	wb.WriteString(`</sheets></workbook>`)
	rels.WriteString("\n</Relationships>")

	var sst strings.Builder
	fmt.Fprintf(&sst, `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<sst xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main" count="%d" uniqueCount="%d">`, len(shared), len(shared))
	for _, s := range shared {
		fmt.Fprintf(&sst, `<si><t>%s</t></si>`, s)
	}
	sst.WriteString(`</sst>`)

	parts["xl/workbook.xml"] = wb.String()
	parts["xl/_rels/workbook.xml.rels"] = rels.String()
	parts["xl/sharedStrings.xml"] = sst.String()
	return Zip(t, parts)
}

func column(i int) string {
	var buf []byte
	for i++; i > 0; i /= 26 {
		i--
		buf = append([]byte{byte('A' + i%26)}, buf...)
	}
	return string(buf)
}

func isNumber(s string) bool {
	seenDigit := false
	for i, r := range s {
		switch {
		case r >= '0' && r <= '9':
			seenDigit = true
		case r == '.':
		case r == '-' && i == 0:
		default:
			return false
		}
	}
	return seenDigit
}

// Deck returns the parts of a minimal presentation with one slide per
// title. Each slide has a title placeholder and a body text box; all slides
// share one layout, master and theme.
func Deck(titles ...string) map[string]string {
	const (
		ns      = `xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main" xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main" xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships"`
		relType = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/"
		xfrm    = `<p:spPr><a:xfrm><a:off x="0" y="0"/><a:ext cx="100" cy="100"/></a:xfrm></p:spPr>`
	)
	rels := func(entries ...string) string {
		return `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` + strings.Join(entries, "") + `</Relationships>`
	}
	rel := func(id, typ, target string) string {
		return fmt.Sprintf(`<Relationship Id="%s" Type="%s%s" Target="%s"/>`, id, relType, typ, target)
	}

	parts := map[string]string{
		"[Content_Types].xml": `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types"><Default Extension="xml" ContentType="application/xml"/><Override PartName="/ppt/presentation.xml" ContentType="application/vnd.openxmlformats-officedocument.presentationml.presentation.main+xml"/></Types>`,
		"_rels/.rels": rels(rel("rId1", "officeDocument", "ppt/presentation.xml")),
		"ppt/theme/theme1.xml": `<a:theme xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main" name="Fixture"><a:themeElements>` +
			`<a:clrScheme name="Fixture"><a:dk1><a:srgbClr val="000000"/></a:dk1></a:clrScheme>` +
			`<a:fontScheme name="Fixture"><a:majorFont><a:latin typeface="Arial"/></a:majorFont><a:minorFont><a:latin typeface="Arial"/></a:minorFont></a:fontScheme>` +
			`</a:themeElements></a:theme>`,
		"ppt/slideMasters/slideMaster1.xml": `<p:sldMaster ` + ns + `><p:cSld><p:spTree/></p:cSld><p:txStyles>` +
			`<p:titleStyle><a:lvl1pPr><a:defRPr sz="4400"/></a:lvl1pPr></p:titleStyle>` +
			`<p:bodyStyle><a:lvl1pPr><a:defRPr sz="2800"/></a:lvl1pPr></p:bodyStyle></p:txStyles></p:sldMaster>`,
		"ppt/slideMasters/_rels/slideMaster1.xml.rels": rels(rel("rId1", "theme", "../theme/theme1.xml")),
		"ppt/slideLayouts/slideLayout1.xml":            `<p:sldLayout ` + ns + `><p:cSld name="Title and Content"><p:spTree/></p:cSld></p:sldLayout>`,
		"ppt/slideLayouts/_rels/slideLayout1.xml.rels": rels(rel("rId1", "slideMaster", "../slideMasters/slideMaster1.xml")),
	}

	presRels := []string{
		rel("rIdM", "slideMaster", "slideMasters/slideMaster1.xml"),
		rel("rIdT", "theme", "theme/theme1.xml"),
	}
	var ids strings.Builder
	for i, title := range titles {
		n := i + 1
		parts[fmt.Sprintf("ppt/slides/slide%d.xml", n)] = `<p:sld ` + ns + `><p:cSld><p:spTree>` +
			`<p:sp><p:nvSpPr><p:cNvPr id="2" name="Title"/><p:cNvSpPr/><p:nvPr><p:ph type="title"/></p:nvPr></p:nvSpPr>` + xfrm +
			`<p:txBody><a:bodyPr/><a:p><a:r><a:t>` + title + `</a:t></a:r></a:p></p:txBody></p:sp>` +
			`<p:sp><p:nvSpPr><p:cNvPr id="3" name="Body"/><p:cNvSpPr/><p:nvPr><p:ph idx="1"/></p:nvPr></p:nvSpPr>` + xfrm +
			fmt.Sprintf(`<p:txBody><a:bodyPr/><a:p><a:r><a:t>Body %d</a:t></a:r></a:p></p:txBody></p:sp>`, n) +
			`</p:spTree></p:cSld></p:sld>`
		parts[fmt.Sprintf("ppt/slides/_rels/slide%d.xml.rels", n)] = rels(rel("rId1", "slideLayout", "../slideLayouts/slideLayout1.xml"))
		presRels = append(presRels, rel(fmt.Sprintf("rIdS%d", n), "slide", fmt.Sprintf("slides/slide%d.xml", n)))
		fmt.Fprintf(&ids, `<p:sldId id="%d" r:id="rIdS%d"/>`, 255+n, n)
	}
	parts["ppt/_rels/presentation.xml.rels"] = rels(presRels...)
	parts["ppt/presentation.xml"] = `<p:presentation ` + ns + `><p:sldMasterIdLst><p:sldMasterId id="2147483648" r:id="rIdM"/></p:sldMasterIdLst>` +
		`<p:sldIdLst>` + ids.String() + `</p:sldIdLst></p:presentation>`
	return parts
}

// WriteDeck writes a Deck to dir/name and returns the path.
func WriteDeck(t testing.TB, dir, name string, titles ...string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, Zip(t, Deck(titles...)), 0o644); err != nil {
		t.Fatalf("Failed to write %s: %v", p, err)
	}
	return p
}
