package deckparse

import (
	"bytes"
	"context"
	"fmt"
	"slices"

	"github.com/tsawler/deckparse/format"
	"github.com/tsawler/deckparse/internal/render"
	"github.com/tsawler/deckparse/media"
	"github.com/tsawler/deckparse/ocr"
	"github.com/tsawler/deckparse/opc"
	"github.com/tsawler/deckparse/pptx"
)

// Extractor provides a fluent interface for extracting presentations. Each
// configuration method returns a new Extractor, so a configured Extractor
// can be shared and reused.
type Extractor struct {
	filename string
	pkg      opc.Package

	options ExtractOptions
	err     error
}

func (e *Extractor) clone() *Extractor {
	return &Extractor{
		filename: e.filename,
		pkg:      e.pkg,
		options:  e.options.clone(),
		err:      e.err,
	}
}

// Workers bounds how many slides are extracted concurrently. Zero means
// GOMAXPROCS.
func (e *Extractor) Workers(n int) *Extractor {
	c := e.clone()
	if n < 0 && c.err == nil {
		c.err = fmt.Errorf("invalid worker count %d", n)
	}
	c.options.workers = n
	return c
}

// Slides restricts the output to the given 1-indexed slide positions.
// Multiple calls are cumulative.
//
// Example:
//
//	deckparse.Open("deck.pptx").Slides(1, 3).Extract(ctx)
func (e *Extractor) Slides(numbers ...int) *Extractor {
	c := e.clone()
	for _, n := range numbers {
		if n < 1 && c.err == nil {
			c.err = fmt.Errorf("invalid slide number %d", n)
		}
	}
	c.options.slides = append(c.options.slides, numbers...)
	return c
}

// ProbeMedia records format and pixel size of every media part.
func (e *Extractor) ProbeMedia() *Extractor {
	c := e.clone()
	c.options.probeMedia = true
	return c
}

// WithOCR recognizes text in media images using Tesseract with the given
// language ("eng", "eng+deu"). It implies ProbeMedia and needs a build with
// the ocr tag.
func (e *Extractor) WithOCR(lang string) *Extractor {
	c := e.clone()
	c.options.probeMedia = true
	c.options.ocr = true
	if lang != "" {
		c.options.ocrLang = lang
	}
	return c
}

// WithRecognizer uses rec for media text recognition instead of the
// built-in OCR client.
func (e *Extractor) WithRecognizer(rec media.Recognizer) *Extractor {
	c := e.clone()
	c.options.probeMedia = true
	c.options.recognizer = rec
	return c
}

// openPackage returns the package to read and a function releasing it.
func (e *Extractor) openPackage() (opc.Package, func(), error) {
	if e.pkg != nil {
		return e.pkg, func() {}, nil
	}
	if e.filename == "" {
		return nil, nil, fmt.Errorf("no filename specified")
	}
	if f := format.Detect(e.filename); f != format.Unknown && !f.IsPresentation() {
		return nil, nil, fmt.Errorf("%w: %s", format.ErrUnsupported, f)
	}
	zp, err := opc.OpenFile(e.filename)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open presentation: %w", err)
	}
	if f := format.DetectPackage(zp); !f.IsPresentation() {
		zp.Close()
		return nil, nil, fmt.Errorf("%w: %s", format.ErrUnsupported, f)
	}
	return zp, func() { zp.Close() }, nil
}

// recognizer returns the configured media recognizer and a function
// releasing it.
func (e *Extractor) recognizer() (media.Recognizer, func(), error) {
	if e.options.recognizer != nil {
		return e.options.recognizer, func() {}, nil
	}
	if !e.options.ocr {
		return nil, func() {}, nil
	}
	client, err := ocr.New()
	if err != nil {
		return nil, nil, err
	}
	if err := client.SetLanguage(e.options.ocrLang); err != nil {
		client.Close()
		return nil, nil, err
	}
	return client, func() { client.Close() }, nil
}

// Extract runs the extraction and returns the document model. Slides that
// could not be processed are reported as warnings.
func (e *Extractor) Extract(ctx context.Context) (*pptx.Document, []Warning, error) {
	if e.err != nil {
		return nil, nil, e.err
	}
	pkg, release, err := e.openPackage()
	if err != nil {
		return nil, nil, err
	}
	defer release()

	rec, releaseRec, err := e.recognizer()
	if err != nil {
		return nil, nil, err
	}
	defer releaseRec()

	doc, skips, err := pptx.Extract(ctx, pkg, pptx.Options{
		Workers:    e.options.workers,
		ProbeMedia: e.options.probeMedia,
		OCR:        rec,
	})
	if err != nil {
		return nil, nil, err
	}
	if e.options.slides != nil {
		doc.Slides = slices.DeleteFunc(doc.Slides, func(s pptx.Slide) bool {
			return !slices.Contains(e.options.slides, s.Number)
		})
		doc.SlideCount = len(doc.Slides)
		skips = slices.DeleteFunc(skips, func(s pptx.Skip) bool {
			return !slices.Contains(e.options.slides, s.Number)
		})
	}
	return doc, skips, nil
}

// Text extracts the presentation and renders it as plain text.
func (e *Extractor) Text(ctx context.Context) (string, []Warning, error) {
	return e.render(ctx, render.FormatText)
}

// Markdown extracts the presentation and renders it as Markdown.
func (e *Extractor) Markdown(ctx context.Context) (string, []Warning, error) {
	return e.render(ctx, render.FormatMarkdown)
}

// HTML extracts the presentation and renders it as HTML.
func (e *Extractor) HTML(ctx context.Context) (string, []Warning, error) {
	return e.render(ctx, render.FormatHTML)
}

func (e *Extractor) render(ctx context.Context, f string) (string, []Warning, error) {
	doc, warnings, err := e.Extract(ctx)
	if err != nil {
		return "", nil, err
	}
	var buf bytes.Buffer
	if err := render.Write(&buf, doc, f); err != nil {
		return "", warnings, err
	}
	return buf.String(), warnings, nil
}
