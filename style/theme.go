package style

import (
	"encoding/xml"
	"strings"

	"github.com/tsawler/deckparse/opc"
)

// ColorScheme maps theme colour slots (dk1, lt1, accent1, ...) to RGB hex.
type ColorScheme map[string]string

// FontScheme holds the heading (major) and body (minor) Latin typefaces.
type FontScheme struct {
	Major string `json:"major,omitempty"`
	Minor string `json:"minor,omitempty"`
}

// Theme is the document-wide colour and font palette.
type Theme struct {
	Name   string      `json:"name,omitempty"`
	Colors ColorScheme `json:"colors"`
	Fonts  FontScheme  `json:"fonts"`
}

// themeXML represents ppt/theme/themeN.xml.
type themeXML struct {
	XMLName  xml.Name `xml:"theme"`
	Name     string   `xml:"name,attr"`
	Elements struct {
		ClrScheme  opc.Node `xml:"clrScheme"`
		FontScheme struct {
			Major fontCollectionXML `xml:"majorFont"`
			Minor fontCollectionXML `xml:"minorFont"`
		} `xml:"fontScheme"`
	} `xml:"themeElements"`
}

type fontCollectionXML struct {
	Latin typefaceXML `xml:"latin"`
}

// ParseTheme decodes a theme part. Colour slots without a concrete RGB value
// are skipped.
func ParseTheme(data []byte) (*Theme, error) {
	var x themeXML
	if err := opc.Unmarshal(data, &x); err != nil {
		return nil, err
	}

	t := &Theme{
		Name:   x.Name,
		Colors: make(ColorScheme),
		Fonts: FontScheme{
			Major: x.Elements.FontScheme.Major.Latin.Typeface,
			Minor: x.Elements.FontScheme.Minor.Latin.Typeface,
		},
	}
	for _, slot := range x.Elements.ClrScheme.Elements() {
		if rgb, ok := slot.Child("srgbClr").Attr("val"); ok && rgb != "" {
			t.Colors[slot.Name()] = strings.ToUpper(rgb)
			continue
		}
		if rgb, ok := slot.Child("sysClr").Attr("lastClr"); ok && rgb != "" {
			t.Colors[slot.Name()] = strings.ToUpper(rgb)
		}
	}
	return t, nil
}

// EmptyTheme returns a theme with no colours and no fonts.
func EmptyTheme() *Theme {
	return &Theme{Colors: ColorScheme{}}
}

// schemeAliases maps the text/background aliases used in run markup to the
// slots defined in the theme.
var schemeAliases = map[string]string{
	"tx1": "dk1",
	"bg1": "lt1",
	"tx2": "dk2",
	"bg2": "lt2",
}

// ResolveColor turns a colour reference into RGB hex. Scheme references that
// the theme does not define report false.
func (t *Theme) ResolveColor(ref ColorRef) (string, bool) {
	if ref.RGB != "" {
		return ref.RGB, true
	}
	if t == nil || ref.Scheme == "" {
		return "", false
	}
	slot := ref.Scheme
	if alias, ok := schemeAliases[slot]; ok {
		slot = alias
	}
	rgb, ok := t.Colors[slot]
	return rgb, ok && rgb != ""
}

// ResolveFont replaces the theme font references "+mj-*" and "+mn-*" with
// the scheme's typefaces. Other names are returned unchanged.
func (t *Theme) ResolveFont(name string) (string, bool) {
	switch {
	case strings.HasPrefix(name, "+mj-"):
		if t == nil || t.Fonts.Major == "" {
			return "", false
		}
		return t.Fonts.Major, true
	case strings.HasPrefix(name, "+mn-"):
		if t == nil || t.Fonts.Minor == "" {
			return "", false
		}
		return t.Fonts.Minor, true
	case name == "":
		return "", false
	}
	return name, true
}
