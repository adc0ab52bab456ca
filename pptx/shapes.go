package pptx

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/tsawler/deckparse/chart"
	"github.com/tsawler/deckparse/opc"
	"github.com/tsawler/deckparse/style"
)

// graphicData URIs end with one of these.
const (
	uriTable   = "/table"
	uriChart   = "/chart"
	uriDiagram = "/diagram"
)

var errNoShapeTree = errors.New("missing shape tree")

// ExtractShapes reads the shape tree of slidePart and resolves every run
// through cascade. It fails only when the part is missing, malformed, or has
// no shape tree.
func ExtractShapes(rels *opc.Resolver, slidePart string, cascade style.Cascade) ([]Shape, error) {
	sld, err := readSlide(rels.Package(), slidePart)
	if err != nil {
		return nil, err
	}
	return newShapeExtractor(rels, slidePart, cascade).tree(sld.CSld.SpTree), nil
}

// readSlide decodes a slide part. The result always has a shape tree; a
// slide without one reports errNoShapeTree.
func readSlide(pkg opc.Package, part string) (*slideXML, error) {
	var sld slideXML
	if err := opc.ReadXML(pkg, part, &sld); err != nil {
		return nil, err
	}
	if sld.CSld == nil || sld.CSld.SpTree == nil {
		return nil, fmt.Errorf("%s: %w", part, errNoShapeTree)
	}
	return &sld, nil
}

// shapeExtractor converts the shape tree of one part.
type shapeExtractor struct {
	rels    *opc.Resolver
	part    string
	cascade style.Cascade
}

func newShapeExtractor(rels *opc.Resolver, part string, cascade style.Cascade) *shapeExtractor {
	return &shapeExtractor{rels: rels, part: part, cascade: cascade}
}

// tree flattens a shape tree. Within a tree, text shapes come first, then
// pictures, then graphic frames, then the contents of each group.
func (x *shapeExtractor) tree(t *spTreeXML) []Shape {
	shapes := []Shape{}
	for i := range t.Sp {
		if s, ok := x.sp(&t.Sp[i]); ok {
			shapes = append(shapes, s)
		}
	}
	for i := range t.Pic {
		if s, ok := x.pic(&t.Pic[i]); ok {
			shapes = append(shapes, s)
		}
	}
	for i := range t.GraphicFrame {
		if s, ok := x.graphicFrame(&t.GraphicFrame[i]); ok {
			shapes = append(shapes, s)
		}
	}
	for i := range t.GrpSp {
		shapes = append(shapes, x.tree(&t.GrpSp[i])...)
	}
	return shapes
}

// newShape builds the common part of a shape. Shapes without a transform
// are not extracted.
func newShape(nv *nvXML, xfrm *xfrmXML) (Shape, bool) {
	if xfrm == nil {
		return Shape{}, false
	}
	s := Shape{
		ID:   nv.CNvPr.ID,
		Name: nv.CNvPr.Name,
		Transform: Transform{
			X:      xfrm.Off.X,
			Y:      xfrm.Off.Y,
			Width:  xfrm.Ext.Cx,
			Height: xfrm.Ext.Cy,
		},
	}
	if ph := nv.NvPr.Ph; ph != nil {
		s.Placeholder = &Placeholder{Type: ph.Type, Index: ph.Idx, Kind: style.KindOf(ph.Type)}
	}
	return s, true
}

func (x *shapeExtractor) sp(sp *spXML) (Shape, bool) {
	s, ok := newShape(&sp.NvSpPr, sp.SpPr.Xfrm)
	if !ok {
		return s, false
	}
	if sp.TxBody == nil {
		return s, true
	}
	paras := x.paragraphs(sp.TxBody, placeholderKind(s.Placeholder))
	if warp := sp.TxBody.BodyPr.PrstTxWarp; warp != nil && warp.Prst != "" && warp.Prst != "textNoShape" {
		s.Content = &WordArtContent{Preset: warp.Prst, Paragraphs: paras}
		return s, true
	}
	if hasRuns(paras) {
		s.Content = &TextContent{Paragraphs: paras}
	}
	return s, true
}

// placeholderKind returns the style table kind for a shape. Text outside
// placeholders takes the master's other-text style.
func placeholderKind(ph *Placeholder) style.PlaceholderKind {
	if ph == nil {
		return style.KindOther
	}
	return ph.Kind
}

func hasRuns(paras []Paragraph) bool {
	for _, p := range paras {
		if len(p.Runs) > 0 {
			return true
		}
	}
	return false
}

func (x *shapeExtractor) paragraphs(body *txBodyXML, kind style.PlaceholderKind) []Paragraph {
	paras := make([]Paragraph, 0, len(body.P))
	for i := range body.P {
		paras = append(paras, x.paragraph(&body.P[i], kind))
	}
	return paras
}

func (x *shapeExtractor) paragraph(p *pXML, kind style.PlaceholderKind) Paragraph {
	level := 0
	if p.PPr != nil {
		level = style.ClampLevel(p.PPr.Lvl)
	}
	para := Paragraph{Level: level, Runs: make([]TextRun, 0, len(p.Runs))}
	for _, r := range p.Runs {
		var direct style.TextStyle
		if r.RPr != nil {
			direct = r.RPr.Style()
		}
		resolved := x.cascade.Resolve(kind, level, direct)
		run := TextRun{
			Text:   norm.NFC.String(r.T),
			Bold:   resolved.Bold,
			Italic: resolved.Italic,
			Font:   resolved.Font,
			Size:   resolved.Size,
			Color:  resolved.Color,
		}
		if r.RPr != nil {
			if id := r.RPr.HyperlinkID(); id != "" {
				run.Hyperlink, _ = x.rels.ExternalTarget(x.part, id)
			}
		}
		para.Runs = append(para.Runs, run)
	}
	return para
}

func (x *shapeExtractor) pic(pic *picXML) (Shape, bool) {
	s, ok := newShape(&pic.NvPicPr, pic.SpPr.Xfrm)
	if !ok {
		return s, false
	}
	c := &PictureContent{Description: pic.NvPicPr.CNvPr.Descr}
	blip := pic.BlipFill.Blip
	if blip.Embed != "" {
		c.MediaPart, _ = x.rels.PartTarget(x.part, blip.Embed)
	}
	if blip.Link != "" {
		c.Link, _ = x.rels.ExternalTarget(x.part, blip.Link)
	}
	s.Content = c
	return s, true
}

func (x *shapeExtractor) graphicFrame(gf *graphicFrameXML) (Shape, bool) {
	s, ok := newShape(&gf.NvGraphicFramePr, gf.Xfrm)
	if !ok {
		return s, false
	}
	data := &gf.Graphic.GraphicData
	switch {
	case strings.HasSuffix(data.URI, uriTable) && data.Tbl != nil:
		s.Content = x.table(data.Tbl)
	case strings.HasSuffix(data.URI, uriChart) && data.Chart != nil:
		s.Content = x.chart(data)
	case strings.HasSuffix(data.URI, uriDiagram) && data.RelIDs != nil:
		s.Content = x.smartArt(data)
	default:
		s.Content = &UnknownContent{URI: data.URI}
	}
	return s, true
}

// table converts a:tbl. Span attributes default to 1 and covered positions
// are flagged as merged.
func (x *shapeExtractor) table(tbl *tblXML) *TableContent {
	t := &TableContent{
		Columns: len(tbl.TblGrid.GridCol),
		Rows:    make([][]TableCell, 0, len(tbl.Tr)),
	}
	for _, tr := range tbl.Tr {
		row := make([]TableCell, 0, len(tr.Tc))
		for _, tc := range tr.Tc {
			cell := TableCell{
				RowSpan: max(tc.RowSpan, 1),
				ColSpan: max(tc.GridSpan, 1),
				Merged:  tc.VMerge != "" || tc.HMerge != "",
			}
			if tc.TxBody != nil {
				var parts []string
				for _, p := range x.paragraphs(tc.TxBody, style.KindOther) {
					if text := p.Text(); text != "" {
						parts = append(parts, text)
					}
				}
				cell.Text = strings.Join(parts, " ")
			}
			row = append(row, cell)
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

func (x *shapeExtractor) chart(data *graphicDataXML) Content {
	part, ok := x.rels.PartTarget(x.part, data.Chart.ID)
	if !ok {
		return &UnknownContent{URI: data.URI}
	}
	c := &ChartContent{Part: part}
	if d, ok := chart.Resolve(x.rels, part); ok {
		c.Data = d
	}
	return c
}

func (x *shapeExtractor) smartArt(data *graphicDataXML) Content {
	part, ok := x.rels.PartTarget(x.part, data.RelIDs.DM)
	if !ok {
		return &UnknownContent{URI: data.URI}
	}
	nodes, ok := readDiagram(x.rels.Package(), part)
	if !ok {
		return &UnknownContent{URI: data.URI}
	}
	return &SmartArtContent{Nodes: nodes}
}
