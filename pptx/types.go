package pptx

import (
	"encoding/xml"

	"github.com/tsawler/deckparse/opc"
	"github.com/tsawler/deckparse/style"
)

// presentationXML represents ppt/presentation.xml.
type presentationXML struct {
	XMLName      xml.Name `xml:"presentation"`
	SldMasterIDs struct {
		IDs []idRefXML `xml:"sldMasterId"`
	} `xml:"sldMasterIdLst"`
	SldIDLst *struct {
		IDs []idRefXML `xml:"sldId"`
	} `xml:"sldIdLst"`
	SldSz *struct {
		Cx int64 `xml:"cx,attr"`
		Cy int64 `xml:"cy,attr"`
	} `xml:"sldSz"`
}

type idRefXML struct {
	ID  string `xml:"id,attr"`
	RID string `xml:"http://schemas.openxmlformats.org/officeDocument/2006/relationships id,attr"`
}

// slideXML represents p:sld, p:sldLayout and p:notes parts. Only the shape
// tree, timing and transition are read.
type slideXML struct {
	CSld *struct {
		Name   string     `xml:"name,attr"`
		SpTree *spTreeXML `xml:"spTree"`
	} `xml:"cSld"`
	Transition       *opc.Node  `xml:"transition"`
	AlternateContent []opc.Node `xml:"AlternateContent"`
	Timing           *opc.Node  `xml:"timing"`
}

// spTreeXML is a shape tree or group. Each collection keeps document order.
type spTreeXML struct {
	Sp           []spXML           `xml:"sp"`
	Pic          []picXML          `xml:"pic"`
	GraphicFrame []graphicFrameXML `xml:"graphicFrame"`
	GrpSp        []spTreeXML       `xml:"grpSp"`
}

type cNvPrXML struct {
	ID    string `xml:"id,attr"`
	Name  string `xml:"name,attr"`
	Descr string `xml:"descr,attr"`
}

type nvPrXML struct {
	Ph *phXML `xml:"ph"`
}

type phXML struct {
	Type string `xml:"type,attr"`
	Idx  string `xml:"idx,attr"`
}

type nvXML struct {
	CNvPr cNvPrXML `xml:"cNvPr"`
	NvPr  nvPrXML  `xml:"nvPr"`
}

type xfrmXML struct {
	Off struct {
		X int64 `xml:"x,attr"`
		Y int64 `xml:"y,attr"`
	} `xml:"off"`
	Ext struct {
		Cx int64 `xml:"cx,attr"`
		Cy int64 `xml:"cy,attr"`
	} `xml:"ext"`
}

// spXML is a text box or autoshape.
type spXML struct {
	NvSpPr nvXML `xml:"nvSpPr"`
	SpPr   struct {
		Xfrm *xfrmXML `xml:"xfrm"`
	} `xml:"spPr"`
	TxBody *txBodyXML `xml:"txBody"`
}

type txBodyXML struct {
	BodyPr struct {
		PrstTxWarp *struct {
			Prst string `xml:"prst,attr"`
		} `xml:"prstTxWarp"`
	} `xml:"bodyPr"`
	P []pXML `xml:"p"`
}

// pXML is a paragraph. Runs, fields and breaks are kept in document order,
// which the default decoder cannot do for sibling slices.
type pXML struct {
	PPr  *pPrXML
	Runs []runXML
}

type pPrXML struct {
	Lvl int `xml:"lvl,attr"`
}

type runXML struct {
	Break bool                 `xml:"-"`
	RPr   *style.RunProperties `xml:"rPr"`
	T     string               `xml:"t"`
}

// UnmarshalXML implements xml.Unmarshaler.
func (p *pXML) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	for {
		tok, err := d.Token()
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "pPr":
				p.PPr = new(pPrXML)
				if err := d.DecodeElement(p.PPr, &t); err != nil {
					return err
				}
			case "r", "fld", "br":
				var r runXML
				if err := d.DecodeElement(&r, &t); err != nil {
					return err
				}
				if t.Name.Local == "br" {
					r.Break = true
					r.T = "\n"
				}
				p.Runs = append(p.Runs, r)
			default:
				if err := d.Skip(); err != nil {
					return err
				}
			}
		case xml.EndElement:
			return nil
		}
	}
}

// picXML is a picture.
type picXML struct {
	NvPicPr  nvXML `xml:"nvPicPr"`
	BlipFill struct {
		Blip struct {
			Embed string `xml:"http://schemas.openxmlformats.org/officeDocument/2006/relationships embed,attr"`
			Link  string `xml:"http://schemas.openxmlformats.org/officeDocument/2006/relationships link,attr"`
		} `xml:"blip"`
	} `xml:"blipFill"`
	SpPr struct {
		Xfrm *xfrmXML `xml:"xfrm"`
	} `xml:"spPr"`
}

// graphicFrameXML holds a table, chart, diagram or other embedded object.
type graphicFrameXML struct {
	NvGraphicFramePr nvXML    `xml:"nvGraphicFramePr"`
	Xfrm             *xfrmXML `xml:"xfrm"`
	Graphic          struct {
		GraphicData graphicDataXML `xml:"graphicData"`
	} `xml:"graphic"`
}

type graphicDataXML struct {
	URI   string  `xml:"uri,attr"`
	Tbl   *tblXML `xml:"tbl"`
	Chart *struct {
		ID string `xml:"http://schemas.openxmlformats.org/officeDocument/2006/relationships id,attr"`
	} `xml:"chart"`
	RelIDs *struct {
		DM string `xml:"http://schemas.openxmlformats.org/officeDocument/2006/relationships dm,attr"`
	} `xml:"relIds"`
}

type tblXML struct {
	TblGrid struct {
		GridCol []struct{} `xml:"gridCol"`
	} `xml:"tblGrid"`
	Tr []struct {
		Tc []tcXML `xml:"tc"`
	} `xml:"tr"`
}

type tcXML struct {
	TxBody   *txBodyXML `xml:"txBody"`
	RowSpan  int        `xml:"rowSpan,attr"`
	GridSpan int        `xml:"gridSpan,attr"`
	VMerge   string     `xml:"vMerge,attr"`
	HMerge   string     `xml:"hMerge,attr"`
}
