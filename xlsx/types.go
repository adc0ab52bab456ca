package xlsx

import (
	"encoding/xml"
	"strings"
)

// workbookXML represents xl/workbook.xml.
type workbookXML struct {
	XMLName xml.Name `xml:"workbook"`
	Sheets  struct {
		Sheet []sheetRefXML `xml:"sheet"`
	} `xml:"sheets"`
}

type sheetRefXML struct {
	Name string `xml:"name,attr"`
	RID  string `xml:"http://schemas.openxmlformats.org/officeDocument/2006/relationships id,attr"`
}

// worksheetXML represents xl/worksheets/sheetN.xml. Only cell data is read.
type worksheetXML struct {
	XMLName   xml.Name `xml:"worksheet"`
	SheetData struct {
		Rows []rowXML `xml:"row"`
	} `xml:"sheetData"`
}

type rowXML struct {
	R     int       `xml:"r,attr"` // 1-based; 0 when omitted
	Cells []cellXML `xml:"c"`
}

type cellXML struct {
	R  string        `xml:"r,attr"`
	T  string        `xml:"t,attr"` // s, n, b, str, e, inlineStr
	V  string        `xml:"v"`
	F  string        `xml:"f"`
	Is *inlineStrXML `xml:"is"`
}

type inlineStrXML struct {
	T string `xml:"t"`
	R []rXML `xml:"r"`
}

// sharedStringsXML represents xl/sharedStrings.xml.
type sharedStringsXML struct {
	XMLName xml.Name `xml:"sst"`
	SI      []siXML  `xml:"si"`
}

type siXML struct {
	T string `xml:"t"`
	R []rXML `xml:"r"` // rich text runs
}

type rXML struct {
	T string `xml:"t"`
}

func (s siXML) text() string {
	if s.T != "" || len(s.R) == 0 {
		return s.T
	}
	var b strings.Builder
	for _, r := range s.R {
		b.WriteString(r.T)
	}
	return b.String()
}
