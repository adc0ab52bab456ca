// Package style implements the DrawingML text style model used by
// presentations: theme colour and font schemes, per-placeholder style tables
// read from slide masters and layouts, and the cascade that merges them with
// direct run formatting into one effective style.
package style

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Optional holds a value that may be unset. Unset means "inherit from the
// next level", never "reset to the zero value".
type Optional[T any] struct {
	value T
	set   bool
}

// Some returns a set Optional holding v.
func Some[T any](v T) Optional[T] {
	return Optional[T]{value: v, set: true}
}

// Get returns the value and whether it is set.
func (o Optional[T]) Get() (T, bool) {
	return o.value, o.set
}

// IsSet reports whether a value is present.
func (o Optional[T]) IsSet() bool {
	return o.set
}

// Or returns the value, or def when unset.
func (o Optional[T]) Or(def T) T {
	if o.set {
		return o.value
	}
	return def
}

// fill returns o if set, otherwise other.
func (o Optional[T]) fill(other Optional[T]) Optional[T] {
	if o.set {
		return o
	}
	return other
}

// MarshalJSON encodes an unset value as null.
func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if !o.set {
		return []byte("null"), nil
	}
	return json.Marshal(o.value)
}

// ColorRef is a colour as written in the markup: either a literal RGB hex
// value or a reference to a theme colour slot.
type ColorRef struct {
	RGB    string `json:"rgb,omitempty"`
	Scheme string `json:"scheme,omitempty"`
}

// TextStyle is a partial text style. Every field is optional.
type TextStyle struct {
	Font   Optional[string]   `json:"font"`
	Size   Optional[float64]  `json:"size"` // points
	Bold   Optional[bool]     `json:"bold"`
	Italic Optional[bool]     `json:"italic"`
	Color  Optional[ColorRef] `json:"color"`
}

// FillFrom returns a copy of s with every unset field taken from base.
// Fields already set in s are never overwritten.
func (s TextStyle) FillFrom(base TextStyle) TextStyle {
	return TextStyle{
		Font:   s.Font.fill(base.Font),
		Size:   s.Size.fill(base.Size),
		Bold:   s.Bold.fill(base.Bold),
		Italic: s.Italic.fill(base.Italic),
		Color:  s.Color.fill(base.Color),
	}
}

// IsEmpty reports whether no field is set.
func (s TextStyle) IsEmpty() bool {
	return !s.Font.set && !s.Size.set && !s.Bold.set && !s.Italic.set && !s.Color.set
}

// RunProperties mirrors the run property elements a:rPr, a:defRPr and
// a:endParaRPr.
type RunProperties struct {
	Size       string         `xml:"sz,attr"`
	Bold       string         `xml:"b,attr"`
	Italic     string         `xml:"i,attr"`
	Latin      *typefaceXML   `xml:"latin"`
	SolidFill  *solidFillXML  `xml:"solidFill"`
	HlinkClick *hlinkClickXML `xml:"hlinkClick"`
}

type typefaceXML struct {
	Typeface string `xml:"typeface,attr"`
}

type solidFillXML struct {
	SrgbClr   *valXML `xml:"srgbClr"`
	SchemeClr *valXML `xml:"schemeClr"`
	SysClr    *valXML `xml:"sysClr"`
}

type valXML struct {
	Val     string `xml:"val,attr"`
	LastClr string `xml:"lastClr,attr"`
}

type hlinkClickXML struct {
	ID string `xml:"http://schemas.openxmlformats.org/officeDocument/2006/relationships id,attr"`
}

// Style converts the run properties into a partial style. Attributes absent
// from the markup stay unset.
func (p *RunProperties) Style() TextStyle {
	var s TextStyle
	if p == nil {
		return s
	}
	if sz, ok := parseCentipoints(p.Size); ok {
		s.Size = Some(sz)
	}
	if b, ok := parseBool(p.Bold); ok {
		s.Bold = Some(b)
	}
	if i, ok := parseBool(p.Italic); ok {
		s.Italic = Some(i)
	}
	if p.Latin != nil && p.Latin.Typeface != "" {
		s.Font = Some(p.Latin.Typeface)
	}
	if c, ok := p.SolidFill.color(); ok {
		s.Color = Some(c)
	}
	return s
}

// HyperlinkID returns the relationship id of the run's click hyperlink.
func (p *RunProperties) HyperlinkID() string {
	if p == nil || p.HlinkClick == nil {
		return ""
	}
	return p.HlinkClick.ID
}

func (f *solidFillXML) color() (ColorRef, bool) {
	switch {
	case f == nil:
		return ColorRef{}, false
	case f.SrgbClr != nil && f.SrgbClr.Val != "":
		return ColorRef{RGB: strings.ToUpper(f.SrgbClr.Val)}, true
	case f.SchemeClr != nil && f.SchemeClr.Val != "":
		return ColorRef{Scheme: f.SchemeClr.Val}, true
	case f.SysClr != nil && f.SysClr.LastClr != "":
		return ColorRef{RGB: strings.ToUpper(f.SysClr.LastClr)}, true
	}
	return ColorRef{}, false
}

// parseCentipoints converts a DrawingML font size (hundredths of a point)
// to points.
func parseCentipoints(s string) (float64, bool) {
	if s == "" {
		return 0, false
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, false
	}
	return float64(n) / 100, true
}

// parseBool reads an xsd:boolean attribute.
func parseBool(s string) (bool, bool) {
	switch s {
	case "1", "true", "on":
		return true, true
	case "0", "false", "off":
		return false, true
	}
	return false, false
}
