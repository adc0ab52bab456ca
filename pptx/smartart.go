package pptx

import (
	"cmp"
	"slices"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/tsawler/deckparse/opc"
)

// diagramPoint is a content point of a SmartArt data model.
type diagramPoint struct {
	id   string
	text string
}

type diagramEdge struct {
	dest string
	ord  int
}

// readDiagram builds the text hierarchy of a diagram data part from its
// point list and parent-of connections. Presentation and transition points
// are ignored. It reports false when the part cannot be read.
func readDiagram(pkg opc.Package, part string) ([]SmartArtNode, bool) {
	raw, ok := pkg.ReadPart(part)
	if !ok {
		return nil, false
	}
	model, err := opc.ParseNode(raw)
	if err != nil {
		return nil, false
	}

	points := map[string]diagramPoint{}
	var order []string
	var docID string
	for _, pt := range model.Path("ptLst").ChildrenNamed("pt") {
		id, _ := pt.Attr("modelId")
		typ, _ := pt.Attr("type")
		switch typ {
		case "doc":
			docID = id
		case "", "node", "asst":
			points[id] = diagramPoint{id: id, text: pointText(pt)}
			order = append(order, id)
		}
	}

	children := map[string][]diagramEdge{}
	hasParent := map[string]bool{}
	for _, cxn := range model.Path("cxnLst").ChildrenNamed("cxn") {
		if typ, _ := cxn.Attr("type"); typ != "" && typ != "parOf" {
			continue
		}
		src, _ := cxn.Attr("srcId")
		dest, _ := cxn.Attr("destId")
		if _, ok := points[dest]; !ok {
			continue
		}
		ordAttr, _ := cxn.Attr("srcOrd")
		ord, _ := strconv.Atoi(ordAttr)
		children[src] = append(children[src], diagramEdge{dest: dest, ord: ord})
		hasParent[dest] = true
	}
	for src := range children {
		slices.SortStableFunc(children[src], func(a, b diagramEdge) int {
			return cmp.Compare(a.ord, b.ord)
		})
	}

	b := diagramBuilder{points: points, children: children, seen: map[string]bool{}}
	var roots []SmartArtNode
	if docID != "" && len(children[docID]) > 0 {
		roots = b.build(docID)
	} else {
		for _, id := range order {
			if !hasParent[id] && !b.seen[id] {
				b.seen[id] = true
				roots = append(roots, SmartArtNode{Text: points[id].text, Children: b.build(id)})
			}
		}
	}
	if roots == nil {
		roots = []SmartArtNode{}
	}
	return roots, true
}

type diagramBuilder struct {
	points   map[string]diagramPoint
	children map[string][]diagramEdge
	seen     map[string]bool
}

// build returns the children of id. A point is visited once, so cyclic
// connection lists terminate.
func (b *diagramBuilder) build(id string) []SmartArtNode {
	var out []SmartArtNode
	for _, e := range b.children[id] {
		if b.seen[e.dest] {
			continue
		}
		b.seen[e.dest] = true
		out = append(out, SmartArtNode{
			Text:     b.points[e.dest].text,
			Children: b.build(e.dest),
		})
	}
	return out
}

// pointText joins the paragraphs of a point's dgm:t body.
func pointText(pt *opc.Node) string {
	var paras []string
	for _, p := range pt.Child("t").ChildrenNamed("p") {
		if s := p.TextOf("t"); s != "" {
			paras = append(paras, s)
		}
	}
	return norm.NFC.String(strings.Join(paras, "\n"))
}
