package style

// templateXML represents the parts of p:sldMaster and p:sldLayout that carry
// text styles.
type templateXML struct {
	CSld struct {
		Name   string `xml:"name,attr"`
		SpTree struct {
			Shapes []templateShapeXML `xml:"sp"`
			Groups []templateGroupXML `xml:"grpSp"`
		} `xml:"spTree"`
	} `xml:"cSld"`
	TxStyles *txStylesXML `xml:"txStyles"`
}

type templateGroupXML struct {
	Shapes []templateShapeXML `xml:"sp"`
	Groups []templateGroupXML `xml:"grpSp"`
}

type templateShapeXML struct {
	NvSpPr struct {
		NvPr struct {
			Ph *phXML `xml:"ph"`
		} `xml:"nvPr"`
	} `xml:"nvSpPr"`
	TxBody *struct {
		LstStyle *ListStyle `xml:"lstStyle"`
	} `xml:"txBody"`
}

type phXML struct {
	Type string `xml:"type,attr"`
	Idx  string `xml:"idx,attr"`
}

type txStylesXML struct {
	Title *ListStyle `xml:"titleStyle"`
	Body  *ListStyle `xml:"bodyStyle"`
	Other *ListStyle `xml:"otherStyle"`
}

// ListStyle mirrors a:lstStyle, p:titleStyle, p:bodyStyle and p:otherStyle.
type ListStyle struct {
	DefPPr  *paragraphPropsXML `xml:"defPPr"`
	Lvl1pPr *paragraphPropsXML `xml:"lvl1pPr"`
	Lvl2pPr *paragraphPropsXML `xml:"lvl2pPr"`
	Lvl3pPr *paragraphPropsXML `xml:"lvl3pPr"`
	Lvl4pPr *paragraphPropsXML `xml:"lvl4pPr"`
	Lvl5pPr *paragraphPropsXML `xml:"lvl5pPr"`
	Lvl6pPr *paragraphPropsXML `xml:"lvl6pPr"`
	Lvl7pPr *paragraphPropsXML `xml:"lvl7pPr"`
	Lvl8pPr *paragraphPropsXML `xml:"lvl8pPr"`
	Lvl9pPr *paragraphPropsXML `xml:"lvl9pPr"`
}

type paragraphPropsXML struct {
	DefRPr *RunProperties `xml:"defRPr"`
}

func (p *paragraphPropsXML) style() TextStyle {
	if p == nil {
		return TextStyle{}
	}
	return p.DefRPr.Style()
}

func (l *ListStyle) levels() [MaxLevel + 1]*paragraphPropsXML {
	return [MaxLevel + 1]*paragraphPropsXML{
		l.Lvl1pPr, l.Lvl2pPr, l.Lvl3pPr, l.Lvl4pPr, l.Lvl5pPr,
		l.Lvl6pPr, l.Lvl7pPr, l.Lvl8pPr, l.Lvl9pPr,
	}
}

// entry reads the list style as the entry for kind. Title and other use the
// first level filled from the list default; body keeps the default and all
// nine levels separately.
func (l *ListStyle) entry(kind PlaceholderKind) Entry {
	e := Entry{Kind: kind}
	if l == nil {
		return e
	}
	def := l.DefPPr.style()
	lv := l.levels()
	if kind != KindBody {
		e.Default = lv[0].style().FillFrom(def)
		return e
	}
	e.Default = def
	for i, p := range lv {
		e.Levels[i] = p.style()
	}
	return e
}
