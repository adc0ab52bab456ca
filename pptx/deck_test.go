package pptx

import (
	"fmt"
	"strings"
	"testing"

	"github.com/tsawler/deckparse/opc"
)

const (
	nsA = `xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main"`
	nsP = `xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main"`
	nsR = `xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships"`

	relBase = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/"
)

const testTheme = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<a:theme ` + nsA + ` name="Deck Theme">
  <a:themeElements>
    <a:clrScheme name="Deck">
      <a:dk1><a:sysClr val="windowText" lastClr="000000"/></a:dk1>
      <a:lt1><a:sysClr val="window" lastClr="FFFFFF"/></a:lt1>
      <a:dk2><a:srgbClr val="1F497D"/></a:dk2>
      <a:accent1><a:srgbClr val="4F81BD"/></a:accent1>
    </a:clrScheme>
    <a:fontScheme name="Deck">
      <a:majorFont><a:latin typeface="Georgia"/></a:majorFont>
      <a:minorFont><a:latin typeface="Verdana"/></a:minorFont>
    </a:fontScheme>
  </a:themeElements>
</a:theme>`

const testMaster = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<p:sldMaster ` + nsA + ` ` + nsP + `>
  <p:cSld><p:spTree/></p:cSld>
  <p:txStyles>
    <p:titleStyle>
      <a:lvl1pPr><a:defRPr sz="4400" b="1"><a:latin typeface="+mj-lt"/><a:solidFill><a:schemeClr val="tx1"/></a:solidFill></a:defRPr></a:lvl1pPr>
    </p:titleStyle>
    <p:bodyStyle>
      <a:defPPr><a:defRPr sz="1800"><a:solidFill><a:schemeClr val="tx2"/></a:solidFill></a:defRPr></a:defPPr>
      <a:lvl1pPr><a:defRPr sz="3200"/></a:lvl1pPr>
      <a:lvl2pPr><a:defRPr sz="2800" i="1"/></a:lvl2pPr>
    </p:bodyStyle>
    <p:otherStyle>
      <a:lvl1pPr><a:defRPr sz="1400"/></a:lvl1pPr>
    </p:otherStyle>
  </p:txStyles>
</p:sldMaster>`

const testLayout = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<p:sldLayout ` + nsA + ` ` + nsP + `>
  <p:cSld name="Title and Content">
    <p:spTree>
      <p:sp>
        <p:nvSpPr><p:cNvPr id="2" name="Title 1"/><p:cNvSpPr/><p:nvPr><p:ph type="title"/></p:nvPr></p:nvSpPr>
        <p:txBody><a:bodyPr/><a:lstStyle><a:lvl1pPr><a:defRPr sz="4000"/></a:lvl1pPr></a:lstStyle></p:txBody>
      </p:sp>
    </p:spTree>
  </p:cSld>
</p:sldLayout>`

// deck builds a presentation package. Slides link to the single layout
// unless given their own relationships.
type deck struct {
	t        testing.TB
	parts    opc.MapPackage
	slides   int
	noMaster bool
}

func newDeck(t testing.TB) *deck {
	t.Helper()
	return &deck{t: t, parts: opc.MapPackage{}}
}

// withoutMaster leaves the master out of the presentation. Layouts then
// stand alone.
func (d *deck) withoutMaster() *deck {
	d.noMaster = true
	return d
}

// slide adds a slide whose shape tree holds shapes and whose root holds
// extra (timing, transition). rels are extra Relationship elements; when
// layout is false the slide has no layout relationship.
func (d *deck) slide(shapes, extra string, layout bool, rels ...string) string {
	d.slides++
	name := fmt.Sprintf("ppt/slides/slide%d.xml", d.slides)
	d.parts[name] = []byte(slideXMLText(shapes, extra))
	if layout {
		rels = append([]string{relXML("rIdL", "slideLayout", "../slideLayouts/slideLayout1.xml")}, rels...)
	}
	d.parts[opc.RelsPath(name)] = []byte(relsXML(rels...))
	return name
}

// raw adds a slide part with arbitrary content and a layout relationship.
func (d *deck) raw(content string) string {
	d.slides++
	name := fmt.Sprintf("ppt/slides/slide%d.xml", d.slides)
	d.parts[name] = []byte(content)
	d.parts[opc.RelsPath(name)] = []byte(relsXML(relXML("rIdL", "slideLayout", "../slideLayouts/slideLayout1.xml")))
	return name
}

func (d *deck) part(name string, data []byte) *deck {
	d.parts[name] = data
	return d
}

// pkg writes the presentation part and returns the package.
func (d *deck) pkg() opc.MapPackage {
	d.t.Helper()
	p := d.parts
	p["_rels/.rels"] = []byte(relsXML(relXML("rId1", "officeDocument", "ppt/presentation.xml")))
	p["ppt/theme/theme1.xml"] = []byte(testTheme)
	p["ppt/slideLayouts/slideLayout1.xml"] = []byte(testLayout)

	presRels := []string{relXML("rIdT", "theme", "theme/theme1.xml")}
	var masters, ids strings.Builder
	if !d.noMaster {
		p["ppt/slideMasters/slideMaster1.xml"] = []byte(testMaster)
		p["ppt/slideMasters/_rels/slideMaster1.xml.rels"] = []byte(relsXML(
			relXML("rId1", "theme", "../theme/theme1.xml")))
		p["ppt/slideLayouts/_rels/slideLayout1.xml.rels"] = []byte(relsXML(
			relXML("rId1", "slideMaster", "../slideMasters/slideMaster1.xml")))
		presRels = append(presRels, relXML("rIdM", "slideMaster", "slideMasters/slideMaster1.xml"))
		masters.WriteString(`<p:sldMasterIdLst><p:sldMasterId id="2147483648" r:id="rIdM"/></p:sldMasterIdLst>`)
	}
	for i := 1; i <= d.slides; i++ {
		presRels = append(presRels, relXML(fmt.Sprintf("rIdS%d", i), "slide", fmt.Sprintf("slides/slide%d.xml", i)))
		fmt.Fprintf(&ids, `<p:sldId id="%d" r:id="rIdS%d"/>`, 255+i, i)
	}
	p["ppt/_rels/presentation.xml.rels"] = []byte(relsXML(presRels...))

	sldIDs := ""
	if d.slides > 0 {
		sldIDs = "<p:sldIdLst>" + ids.String() + "</p:sldIdLst>"
	}
	p["ppt/presentation.xml"] = []byte(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<p:presentation ` + nsA + ` ` + nsP + ` ` + nsR + `>` + masters.String() + sldIDs + `<p:sldSz cx="9144000" cy="6858000"/></p:presentation>`)
	return p
}

func slideXMLText(shapes, extra string) string {
	return `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<p:sld ` + nsA + ` ` + nsP + ` ` + nsR + `>
  <p:cSld><p:spTree><p:nvGrpSpPr><p:cNvPr id="1" name=""/><p:cNvGrpSpPr/><p:nvPr/></p:nvGrpSpPr><p:grpSpPr/>` + shapes + `</p:spTree></p:cSld>` + extra + `
</p:sld>`
}

func relsXML(rels ...string) string {
	return `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` +
		strings.Join(rels, "") + `</Relationships>`
}

func relXML(id, typ, target string) string {
	return fmt.Sprintf(`<Relationship Id="%s" Type="%s%s" Target="%s"/>`, id, relBase, typ, target)
}

func externalRelXML(id, typ, target string) string {
	return fmt.Sprintf(`<Relationship Id="%s" Type="%s%s" Target="%s" TargetMode="External"/>`, id, relBase, typ, target)
}

const xfrm = `<a:xfrm><a:off x="457200" y="274638"/><a:ext cx="8229600" cy="1143000"/></a:xfrm>`

// textShape renders a p:sp. phType "" means no placeholder; "-" means a
// body placeholder without a type attribute.
func textShape(id, phType string, paragraphs ...string) string {
	ph := ""
	switch phType {
	case "":
	case "-":
		ph = `<p:ph idx="1"/>`
	default:
		ph = `<p:ph type="` + phType + `"/>`
	}
	return `<p:sp><p:nvSpPr><p:cNvPr id="` + id + `" name="Shape ` + id + `"/><p:cNvSpPr/><p:nvPr>` + ph +
		`</p:nvPr></p:nvSpPr><p:spPr>` + xfrm + `</p:spPr><p:txBody><a:bodyPr/><a:lstStyle/>` +
		strings.Join(paragraphs, "") + `</p:txBody></p:sp>`
}

func para(runs ...string) string {
	return "<a:p>" + strings.Join(runs, "") + "</a:p>"
}

func levelPara(lvl int, runs ...string) string {
	return fmt.Sprintf(`<a:p><a:pPr lvl="%d"/>`, lvl) + strings.Join(runs, "") + "</a:p>"
}

func run(text string) string {
	return "<a:r><a:rPr lang=\"en-US\"/><a:t>" + text + "</a:t></a:r>"
}

func styledRun(rPr, text string) string {
	return "<a:r>" + rPr + "<a:t>" + text + "</a:t></a:r>"
}
