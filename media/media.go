// Package media inventories the media parts of a presentation package and
// probes image parts for their format and pixel size, optionally running OCR
// on them.
package media

import (
	"bytes"
	"context"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/tsawler/deckparse/opc"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Dir is the package directory holding media parts.
const Dir = "ppt/media/"

// Recognizer extracts text from image bytes. *ocr.Client implements it.
type Recognizer interface {
	RecognizeImage(data []byte) (string, error)
}

// Info describes one media part.
type Info struct {
	Name   string `json:"name"`
	Size   int    `json:"size"`
	Format string `json:"format,omitempty"` // decoder name: png, jpeg, gif, bmp, tiff, webp
	Width  int    `json:"width,omitempty"`
	Height int    `json:"height,omitempty"`
	Text   string `json:"text,omitempty"` // OCR output
	Error  string `json:"error,omitempty"`
}

// IsImage reports whether the part decoded as a raster image.
func (i Info) IsImage() bool {
	return i.Format != ""
}

// Inventory lists every part under the media directory exactly once, sorted.
func Inventory(pkg opc.Package) []string {
	names := opc.PartsWithPrefix(pkg, Dir)
	out := names[:0]
	for i, name := range names {
		if i > 0 && names[i-1] == name {
			continue
		}
		out = append(out, name)
	}
	return out
}

// Probe inspects one media part. Non-image parts (audio, video, EMF/WMF
// vector pictures) carry only their name and size.
func Probe(name string, data []byte) Info {
	info := Info{Name: name, Size: len(data)}
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return info
	}
	info.Format = format
	info.Width = cfg.Width
	info.Height = cfg.Height
	return info
}

// ProbeAll probes the named parts in order. When rec is non-nil, raster
// images are passed through it and the recognised text recorded. It stops
// early if ctx is cancelled and returns what it has.
func ProbeAll(ctx context.Context, pkg opc.Package, names []string, rec Recognizer) []Info {
	out := make([]Info, 0, len(names))
	for _, name := range names {
		if ctx.Err() != nil {
			break
		}
		data, ok := pkg.ReadPart(name)
		if !ok {
			out = append(out, Info{Name: name, Error: "part not readable"})
			continue
		}
		info := Probe(name, data)
		if rec != nil && info.IsImage() {
			text, err := rec.RecognizeImage(data)
			if err != nil {
				info.Error = err.Error()
			} else {
				info.Text = text
			}
		}
		out = append(out, info)
	}
	return out
}
