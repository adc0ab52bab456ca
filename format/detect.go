// Package format detects presentation packages by file name and content.
package format

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/tsawler/deckparse/opc"
)

// ErrUnsupported is returned by Check for inputs that are not an Open XML
// presentation.
var ErrUnsupported = errors.New("unsupported format")

// Format represents a detected file format.
type Format int

const (
	// Unknown indicates an unrecognized format.
	Unknown Format = iota
	// PPTX indicates a PowerPoint presentation (.pptx).
	PPTX
	// PPTM indicates a macro-enabled presentation (.pptm).
	PPTM
	// PPSX indicates a PowerPoint show (.ppsx).
	PPSX
	// POTX indicates a PowerPoint template (.potx).
	POTX
	// PPT indicates a legacy binary presentation (.ppt).
	PPT
	// OOXML indicates an Open XML package that is not a presentation.
	OOXML
)

// String returns the string representation of the format.
func (f Format) String() string {
	switch f {
	case PPTX:
		return "PPTX"
	case PPTM:
		return "PPTM"
	case PPSX:
		return "PPSX"
	case POTX:
		return "POTX"
	case PPT:
		return "PPT"
	case OOXML:
		return "OOXML"
	default:
		return "Unknown"
	}
}

// Extension returns the typical file extension for the format.
func (f Format) Extension() string {
	switch f {
	case PPTX:
		return ".pptx"
	case PPTM:
		return ".pptm"
	case PPSX:
		return ".ppsx"
	case POTX:
		return ".potx"
	case PPT:
		return ".ppt"
	default:
		return ""
	}
}

// IsPresentation reports whether the format can be extracted.
func (f Format) IsPresentation() bool {
	switch f {
	case PPTX, PPTM, PPSX, POTX:
		return true
	}
	return false
}

// Detect determines the format from the file name extension.
func Detect(filename string) Format {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pptx":
		return PPTX
	case ".pptm":
		return PPTM
	case ".ppsx":
		return PPSX
	case ".potx":
		return POTX
	case ".ppt":
		return PPT
	default:
		return Unknown
	}
}

var (
	zipMagic = []byte{0x50, 0x4B, 0x03, 0x04}
	cfbMagic = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}
)

// DetectFromMagic checks leading bytes. A ZIP archive reports Unknown since
// telling Open XML packages apart needs DetectFromReader; an OLE compound
// file reports PPT.
func DetectFromMagic(data []byte) Format {
	if bytes.HasPrefix(data, cfbMagic) {
		return PPT
	}
	return Unknown
}

// mainContentTypes maps the content type of a package's main part to its
// presentation format.
var mainContentTypes = map[string]Format{
	"application/vnd.openxmlformats-officedocument.presentationml.presentation.main+xml": PPTX,
	"application/vnd.ms-powerpoint.presentation.macroEnabled.main+xml":                   PPTM,
	"application/vnd.openxmlformats-officedocument.presentationml.slideshow.main+xml":    PPSX,
	"application/vnd.ms-powerpoint.slideshow.macroEnabled.main+xml":                      PPSX,
	"application/vnd.openxmlformats-officedocument.presentationml.template.main+xml":     POTX,
	"application/vnd.ms-powerpoint.template.macroEnabled.main+xml":                       POTX,
}

type contentTypesXML struct {
	XMLName   xml.Name `xml:"Types"`
	Overrides []struct {
		PartName    string `xml:"PartName,attr"`
		ContentType string `xml:"ContentType,attr"`
	} `xml:"Override"`
}

// DetectFromReader inspects the content. ZIP archives are opened and their
// [Content_Types].xml consulted; packages without one fall back to the
// presence of a ppt/ directory.
func DetectFromReader(r io.ReaderAt, size int64) (Format, error) {
	magic := make([]byte, 8)
	n, err := r.ReadAt(magic, 0)
	if err != nil && err != io.EOF {
		return Unknown, err
	}
	magic = magic[:n]

	if !bytes.HasPrefix(magic, zipMagic) {
		return DetectFromMagic(magic), nil
	}
	pkg, err := opc.OpenReader(r, size)
	if err != nil {
		return Unknown, err
	}
	return detectPackage(pkg), nil
}

// DetectPackage classifies an already opened package.
func DetectPackage(pkg opc.Package) Format {
	return detectPackage(pkg)
}

func detectPackage(pkg opc.Package) Format {
	var ct contentTypesXML
	if err := opc.ReadXML(pkg, "[Content_Types].xml", &ct); err == nil {
		for _, o := range ct.Overrides {
			if f, ok := mainContentTypes[strings.TrimSpace(o.ContentType)]; ok {
				return f
			}
		}
	}
	if len(opc.PartsWithPrefix(pkg, "ppt/")) > 0 {
		return PPTX
	}
	if len(pkg.Parts()) > 0 {
		return OOXML
	}
	return Unknown
}

// Check detects the format of r and fails with ErrUnsupported unless it is
// an Open XML presentation.
func Check(r io.ReaderAt, size int64) (Format, error) {
	f, err := DetectFromReader(r, size)
	if err != nil {
		return Unknown, err
	}
	if !f.IsPresentation() {
		return f, fmt.Errorf("%w: %s", ErrUnsupported, f)
	}
	return f, nil
}
