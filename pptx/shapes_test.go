package pptx

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/tsawler/deckparse/opc"
	"github.com/tsawler/deckparse/style"
)

// shapesOf builds a one-slide deck and extracts its shapes.
func shapesOf(t *testing.T, shapes string, rels ...string) []Shape {
	t.Helper()
	d := newDeck(t)
	part := d.slide(shapes, "", true, rels...)
	pkg := d.pkg()

	got, err := ExtractShapes(opc.NewResolver(pkg), part, style.Cascade{})
	if err != nil {
		t.Fatalf("ExtractShapes failed: %v", err)
	}
	return got
}

func frame(id, uri, payload string) string {
	return `<p:graphicFrame><p:nvGraphicFramePr><p:cNvPr id="` + id + `" name="Frame ` + id + `"/><p:cNvGraphicFramePr/><p:nvPr/></p:nvGraphicFramePr>` +
		`<p:xfrm><a:off x="10" y="20"/><a:ext cx="30" cy="40"/></p:xfrm>` +
		`<a:graphic><a:graphicData uri="` + uri + `">` + payload + `</a:graphicData></a:graphic></p:graphicFrame>`
}

func TestExtractShapes_Order(t *testing.T) {
	group := `<p:grpSp><p:nvGrpSpPr><p:cNvPr id="20" name="Group"/><p:cNvGrpSpPr/><p:nvPr/></p:nvGrpSpPr><p:grpSpPr/>` +
		textShape("21", "", para(run("in group"))) +
		`<p:grpSp><p:nvGrpSpPr><p:cNvPr id="30" name="Inner"/><p:cNvGrpSpPr/><p:nvPr/></p:nvGrpSpPr><p:grpSpPr/>` +
		textShape("31", "", para(run("nested"))) + `</p:grpSp></p:grpSp>`
	unplaced := `<p:sp><p:nvSpPr><p:cNvPr id="99" name="No xfrm"/><p:cNvSpPr/><p:nvPr/></p:nvSpPr><p:spPr/>` +
		`<p:txBody><a:bodyPr/><a:p><a:r><a:t>lost</a:t></a:r></a:p></p:txBody></p:sp>`

	// document order is frame, group, text, unplaced text, text
	shapes := shapesOf(t,
		frame("10", "urn:custom", "")+group+textShape("2", "", para(run("a")))+unplaced+textShape("3", "", para(run("b"))))

	var ids []string
	for _, s := range shapes {
		ids = append(ids, s.ID)
	}
	if got := strings.Join(ids, ","); got != "2,3,10,21,31" {
		t.Errorf("shape ids = %s, want 2,3,10,21,31", got)
	}
	if shapes[2].Transform != (Transform{X: 10, Y: 20, Width: 30, Height: 40}) {
		t.Errorf("frame transform = %+v", shapes[2].Transform)
	}
	if u, ok := shapes[2].Content.(*UnknownContent); !ok || u.URI != "urn:custom" {
		t.Errorf("frame content = %#v, want unknown", shapes[2].Content)
	}
}

func TestExtractShapes_RunOrder(t *testing.T) {
	p := `<a:p><a:r><a:t>Page </a:t></a:r><a:fld id="{1}" type="slidenum"><a:rPr b="1"/><a:t>7</a:t></a:fld>` +
		`<a:br/><a:r><a:t>next line</a:t></a:r><a:endParaRPr/></a:p>`
	shapes := shapesOf(t, textShape("2", "", p))

	runs := shapes[0].Content.(*TextContent).Paragraphs[0].Runs
	var texts []string
	for _, r := range runs {
		texts = append(texts, r.Text)
	}
	if got := strings.Join(texts, "|"); got != "Page |7|\n|next line" {
		t.Errorf("runs = %q", got)
	}
	if !runs[1].Bold {
		t.Error("field run lost its formatting")
	}
}

func TestExtractShapes_EmptyText(t *testing.T) {
	shapes := shapesOf(t, textShape("2", "body", "<a:p><a:endParaRPr/></a:p>"))
	if len(shapes) != 1 {
		t.Fatalf("len(shapes) = %d, want 1", len(shapes))
	}
	if shapes[0].Content != nil {
		t.Errorf("content = %#v, want nil for an empty text body", shapes[0].Content)
	}
	if ph := shapes[0].Placeholder; ph == nil || ph.Kind != style.KindBody {
		t.Errorf("placeholder = %+v", ph)
	}
}

func TestExtractShapes_Hyperlinks(t *testing.T) {
	p := para(
		styledRun(`<a:rPr><a:hlinkClick r:id="rIdWeb"/></a:rPr>`, "site"),
		styledRun(`<a:rPr><a:hlinkClick r:id="rIdJump"/></a:rPr>`, "slide 2"),
		styledRun(`<a:rPr><a:hlinkClick r:id="rIdNone"/></a:rPr>`, "dangling"),
	)
	shapes := shapesOf(t, textShape("2", "", p),
		externalRelXML("rIdWeb", "hyperlink", "https://example.com/q3"),
		relXML("rIdJump", "slide", "slide2.xml"))

	runs := shapes[0].Content.(*TextContent).Paragraphs[0].Runs
	want := []string{"https://example.com/q3", "", ""}
	for i, w := range want {
		if runs[i].Hyperlink != w {
			t.Errorf("run %d hyperlink = %q, want %q", i, runs[i].Hyperlink, w)
		}
	}
}

func TestExtractShapes_NFC(t *testing.T) {
	shapes := shapesOf(t, textShape("2", "", para(run("Cafe\u0301"))))
	if got := shapes[0].Content.(*TextContent).Paragraphs[0].Runs[0].Text; got != "Caf\u00e9" {
		t.Errorf("text = %q, want composed form", got)
	}
}

func TestExtractShapes_WordArt(t *testing.T) {
	sp := strings.Replace(textShape("2", "", para(run("Sale!"))), "<a:bodyPr/>",
		`<a:bodyPr><a:prstTxWarp prst="textArchUp"><a:avLst/></a:prstTxWarp></a:bodyPr>`, 1)
	plain := strings.Replace(textShape("3", "", para(run("Plain"))), "<a:bodyPr/>",
		`<a:bodyPr><a:prstTxWarp prst="textNoShape"/></a:bodyPr>`, 1)
	shapes := shapesOf(t, sp+plain)

	w, ok := shapes[0].Content.(*WordArtContent)
	if !ok || w.Preset != "textArchUp" || w.Paragraphs[0].Text() != "Sale!" {
		t.Errorf("content = %#v, want WordArt", shapes[0].Content)
	}
	if _, ok := shapes[1].Content.(*TextContent); !ok {
		t.Errorf("textNoShape content = %T, want text", shapes[1].Content)
	}
}

const tableURI = "http://schemas.openxmlformats.org/drawingml/2006/table"

func cellXML(attrs, text string) string {
	return `<a:tc` + attrs + `><a:txBody><a:bodyPr/><a:p><a:r><a:t>` + text + `</a:t></a:r></a:p></a:txBody></a:tc>`
}

func TestExtractShapes_Table(t *testing.T) {
	tbl := `<a:tbl><a:tblGrid><a:gridCol w="1"/><a:gridCol w="1"/><a:gridCol w="1"/></a:tblGrid>` +
		`<a:tr h="1">` + cellXML(` gridSpan="2"`, "Region") + cellXML(` hMerge="1"`, "") + cellXML(` rowSpan="2"`, "Total") + `</a:tr>` +
		`<a:tr h="1">` + cellXML("", "North") + cellXML("", "South") + cellXML(` vMerge="1"`, "") + `</a:tr>` +
		`</a:tbl>`
	shapes := shapesOf(t, frame("4", tableURI, tbl))

	tc, ok := shapes[0].Content.(*TableContent)
	if !ok {
		t.Fatalf("content = %T, want *TableContent", shapes[0].Content)
	}
	if tc.Columns != 3 || len(tc.Rows) != 2 {
		t.Fatalf("table = %d cols, %d rows", tc.Columns, len(tc.Rows))
	}

	tests := []struct {
		row, col int
		want     TableCell
	}{
		{0, 0, TableCell{Text: "Region", RowSpan: 1, ColSpan: 2}},
		{0, 1, TableCell{RowSpan: 1, ColSpan: 1, Merged: true}},
		{0, 2, TableCell{Text: "Total", RowSpan: 2, ColSpan: 1}},
		{1, 1, TableCell{Text: "South", RowSpan: 1, ColSpan: 1}},
		{1, 2, TableCell{RowSpan: 1, ColSpan: 1, Merged: true}},
	}
	for _, tt := range tests {
		if got := tc.Rows[tt.row][tt.col]; got != tt.want {
			t.Errorf("cell[%d][%d] = %+v, want %+v", tt.row, tt.col, got, tt.want)
		}
	}
}

const diagramURI = "http://schemas.openxmlformats.org/drawingml/2006/diagram"

const diagramData = `<dgm:dataModel xmlns:dgm="http://schemas.openxmlformats.org/drawingml/2006/diagram" ` + nsA + `>
  <dgm:ptLst>
    <dgm:pt modelId="{0}" type="doc"><dgm:t><a:bodyPr/><a:p><a:endParaRPr/></a:p></dgm:t></dgm:pt>
    <dgm:pt modelId="{B}"><dgm:t><a:bodyPr/><a:p><a:r><a:t>Build</a:t></a:r></a:p></dgm:t></dgm:pt>
    <dgm:pt modelId="{A}"><dgm:t><a:bodyPr/><a:p><a:r><a:t>Plan</a:t></a:r></a:p></dgm:t></dgm:pt>
    <dgm:pt modelId="{A1}"><dgm:t><a:bodyPr/><a:p><a:r><a:t>Scope</a:t></a:r></a:p></dgm:t></dgm:pt>
    <dgm:pt modelId="{T}" type="parTrans"/>
    <dgm:pt modelId="{P}" type="pres"/>
  </dgm:ptLst>
  <dgm:cxnLst>
    <dgm:cxn modelId="{c1}" srcId="{0}" destId="{B}" srcOrd="1" destOrd="0"/>
    <dgm:cxn modelId="{c2}" srcId="{0}" destId="{A}" srcOrd="0" destOrd="0" parTransId="{T}"/>
    <dgm:cxn modelId="{c3}" srcId="{A}" destId="{A1}" srcOrd="0" destOrd="0"/>
    <dgm:cxn modelId="{c4}" srcId="{A1}" destId="{A}" srcOrd="0" destOrd="0"/>
    <dgm:cxn modelId="{c5}" type="presOf" srcId="{A}" destId="{P}" srcOrd="0" destOrd="0"/>
  </dgm:cxnLst>
</dgm:dataModel>`

func TestExtractShapes_SmartArt(t *testing.T) {
	payload := `<dgm:relIds xmlns:dgm="http://schemas.openxmlformats.org/drawingml/2006/diagram" r:dm="rIdD" r:lo="rIdL2" r:qs="rIdQ" r:cs="rIdC"/>`
	d := newDeck(t)
	part := d.slide(frame("7", diagramURI, payload), "", true,
		relXML("rIdD", "diagramData", "../diagrams/data1.xml"))
	d.part("ppt/diagrams/data1.xml", []byte(diagramData))

	shapes, err := ExtractShapes(opc.NewResolver(d.pkg()), part, style.Cascade{})
	if err != nil {
		t.Fatalf("ExtractShapes failed: %v", err)
	}
	sa, ok := shapes[0].Content.(*SmartArtContent)
	if !ok {
		t.Fatalf("content = %T, want *SmartArtContent", shapes[0].Content)
	}
	want := []SmartArtNode{
		{Text: "Plan", Children: []SmartArtNode{{Text: "Scope"}}},
		{Text: "Build"},
	}
	got, _ := json.Marshal(sa.Nodes)
	exp, _ := json.Marshal(want)
	if string(got) != string(exp) {
		t.Errorf("nodes = %s, want %s", got, exp)
	}
}

func TestExtractShapes_SmartArtMissingData(t *testing.T) {
	payload := `<dgm:relIds xmlns:dgm="http://schemas.openxmlformats.org/drawingml/2006/diagram" r:dm="rIdD"/>`
	shapes := shapesOf(t, frame("7", diagramURI, payload))
	if u, ok := shapes[0].Content.(*UnknownContent); !ok || u.URI != diagramURI {
		t.Errorf("content = %#v, want unknown", shapes[0].Content)
	}
}

func TestExtractShapes_Errors(t *testing.T) {
	pkg := opc.MapPackage{
		"ppt/slides/slide1.xml": []byte(`<p:sld ` + nsP + `><p:cSld/></p:sld>`),
		"ppt/slides/slide2.xml": []byte(`<p:sld`),
	}
	rels := opc.NewResolver(pkg)

	if _, err := ExtractShapes(rels, "ppt/slides/slide1.xml", style.Cascade{}); !errors.Is(err, errNoShapeTree) {
		t.Errorf("no tree error = %v", err)
	}
	if _, err := ExtractShapes(rels, "ppt/slides/slide2.xml", style.Cascade{}); err == nil {
		t.Error("malformed slide should fail")
	}
	if _, err := ExtractShapes(rels, "ppt/slides/slide9.xml", style.Cascade{}); !errors.Is(err, opc.ErrPartNotFound) {
		t.Errorf("missing slide error = %v", err)
	}
}

func TestShape_JSONKind(t *testing.T) {
	tests := []struct {
		content Content
		want    string
	}{
		{&UnknownContent{URI: "urn:x"}, `{"kind":"unknown","uri":"urn:x"}`},
		{&SmartArtContent{Nodes: []SmartArtNode{}}, `{"kind":"smartArt","nodes":[]}`},
		{&PictureContent{}, `{"kind":"picture"}`},
	}
	for _, tt := range tests {
		t.Run(tt.content.Kind(), func(t *testing.T) {
			out, err := json.Marshal(Shape{ID: "1", Content: tt.content})
			if err != nil {
				t.Fatalf("Marshal: %v", err)
			}
			var v struct {
				Content json.RawMessage `json:"content"`
			}
			if err := json.Unmarshal(out, &v); err != nil {
				t.Fatalf("Unmarshal: %v", err)
			}
			if string(v.Content) != tt.want {
				t.Errorf("content = %s, want %s", v.Content, tt.want)
			}
		})
	}

	out, _ := json.Marshal(Shape{ID: "1"})
	if strings.Contains(string(out), "content") {
		t.Errorf("empty shape json = %s, want no content", out)
	}
}
