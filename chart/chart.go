// Package chart resolves presentation chart parts into literal series data
// read from the chart's embedded workbook.
package chart

import (
	"strings"

	"github.com/tsawler/deckparse/opc"
	"github.com/tsawler/deckparse/xlsx"
)

// Series is one data series. Categories and Values keep the length of their
// source ranges; missing cells are nil.
type Series struct {
	Name       string     `json:"name"`
	Categories []any      `json:"categories"`
	Values     []*float64 `json:"values"`
}

// Data is the resolved content of a chart.
type Data struct {
	Type   string   `json:"type"`
	Title  string   `json:"title,omitempty"`
	Series []Series `json:"series"`
}

// Resolve reads the chart part and the workbook it embeds. It reports false
// when the chart cannot be parsed, has no plot, or has no decodable
// embedded workbook.
func Resolve(rels *opc.Resolver, chartPart string) (*Data, bool) {
	pkg := rels.Package()
	raw, ok := pkg.ReadPart(chartPart)
	if !ok {
		return nil, false
	}
	root, err := opc.ParseNode(raw)
	if err != nil {
		return nil, false
	}
	chartNode := root.Child("chart")
	plots := plotNodes(chartNode.Child("plotArea"))
	if len(plots) == 0 {
		return nil, false
	}

	wbPart, ok := workbookPart(rels, root, chartPart)
	if !ok {
		return nil, false
	}
	wbData, ok := pkg.ReadPart(wbPart)
	if !ok {
		return nil, false
	}
	wb, err := xlsx.OpenEmbedded(wbData)
	if err != nil {
		return nil, false
	}

	d := &Data{
		Type:  strings.TrimSuffix(plots[0].Name(), "Chart"),
		Title: title(chartNode),
	}
	for _, plot := range plots {
		for _, ser := range plot.ChildrenNamed("ser") {
			if s, ok := readSeries(wb, ser); ok {
				d.Series = append(d.Series, s)
			}
		}
	}
	return d, true
}

// plotNodes returns the chart-type children of the plot area (barChart,
// lineChart, pie3DChart, ...) in document order.
func plotNodes(plotArea *opc.Node) []*opc.Node {
	var out []*opc.Node
	for _, n := range plotArea.Elements() {
		if strings.HasSuffix(n.Name(), "Chart") {
			out = append(out, n)
		}
	}
	return out
}

// workbookPart locates the embedded workbook: the c:externalData target,
// else the first package or OLE object relationship of the chart.
func workbookPart(rels *opc.Resolver, root *opc.Node, chartPart string) (string, bool) {
	if id := root.Child("externalData").RelID("id"); id != "" {
		if target, ok := rels.PartTarget(chartPart, id); ok {
			return target, true
		}
	}
	for _, suffix := range []string{opc.RelPackage, opc.RelOLEObject} {
		for _, rel := range rels.Table(chartPart).AllByType(suffix) {
			if !rel.External && opc.HasPart(rels.Package(), rel.Target) {
				return rel.Target, true
			}
		}
	}
	return "", false
}

func title(chartNode *opc.Node) string {
	tx := chartNode.Path("title", "tx")
	if tx == nil {
		return ""
	}
	if rich := tx.Child("rich"); rich != nil {
		var paras []string
		for _, p := range rich.ChildrenNamed("p") {
			paras = append(paras, p.TextOf("t"))
		}
		return strings.TrimSpace(strings.Join(paras, "\n"))
	}
	return strings.TrimSpace(cachedStrings(tx.Child("strRef")))
}

// readSeries resolves one c:ser. Scatter and bubble series use xVal/yVal in
// place of cat/val.
func readSeries(wb *xlsx.Workbook, ser *opc.Node) (Series, bool) {
	cat := firstChild(ser, "cat", "xVal")
	val := firstChild(ser, "val", "yVal")

	catF := refFormula(cat)
	valF := refFormula(val)
	if catF == "" || valF == "" {
		return Series{}, false
	}
	s := Series{
		Name:       seriesName(wb, ser.Child("tx")),
		Categories: Categories(wb, catF),
		Values:     Values(wb, valF),
	}
	if len(s.Categories) == 0 || len(s.Values) == 0 {
		return Series{}, false
	}
	return s, true
}

func seriesName(wb *xlsx.Workbook, tx *opc.Node) string {
	if tx == nil {
		return ""
	}
	if ref := tx.Child("strRef"); ref != nil {
		var parts []string
		for _, c := range Cells(wb, ref.ChildText("f")) {
			if !c.IsEmpty() {
				parts = append(parts, c.Value)
			}
		}
		if len(parts) > 0 {
			return strings.Join(parts, " ")
		}
		return cachedStrings(ref)
	}
	return strings.TrimSpace(tx.ChildText("v"))
}

// refFormula returns the formula of the first reference element (strRef,
// numRef or multiLvlStrRef) under n.
func refFormula(n *opc.Node) string {
	for _, ref := range []string{"numRef", "strRef", "multiLvlStrRef"} {
		if f := n.Path(ref, "f"); f != nil && strings.TrimSpace(f.Text) != "" {
			return strings.TrimSpace(f.Text)
		}
	}
	return ""
}

func cachedStrings(ref *opc.Node) string {
	var parts []string
	for _, pt := range ref.Path("strCache").ChildrenNamed("pt") {
		parts = append(parts, pt.ChildText("v"))
	}
	return strings.Join(parts, " ")
}

func firstChild(n *opc.Node, names ...string) *opc.Node {
	for _, name := range names {
		if c := n.Child(name); c != nil {
			return c
		}
	}
	return nil
}
