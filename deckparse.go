// Package deckparse provides a fluent API for extracting slides, formatted
// text, tables, charts and animation timelines from PowerPoint files.
//
// Basic usage:
//
//	doc, warnings, err := deckparse.Open("deck.pptx").Extract(ctx)
//	if err != nil {
//	    // handle error
//	}
//	if len(warnings) > 0 {
//	    log.Println("Warnings:", deckparse.FormatWarnings(warnings))
//	}
//
// With options:
//
//	md, _, err := deckparse.Open("deck.pptx").
//	    Workers(4).
//	    Slides(1, 2, 3).
//	    Markdown(ctx)
//
// For advanced use cases, the lower-level opc and pptx packages are also
// available.
package deckparse

import (
	"strings"

	"github.com/tsawler/deckparse/opc"
	"github.com/tsawler/deckparse/pptx"
)

// Warning reports a slide that was left out of the extracted document.
type Warning = pptx.Skip

// Open returns an Extractor for the named file. The file is opened by the
// terminal operation and closed when it returns.
//
// Example:
//
//	doc, warnings, err := deckparse.Open("deck.pptx").Extract(ctx)
func Open(filename string) *Extractor {
	return &Extractor{
		filename: filename,
		options:  defaultOptions(),
	}
}

// FromPackage creates an Extractor over an already opened package.
// The caller remains responsible for closing it.
func FromPackage(pkg opc.Package) *Extractor {
	return &Extractor{
		pkg:     pkg,
		options: defaultOptions(),
	}
}

// Must is a helper that wraps a call to a function returning (T, error)
// and panics if the error is non-nil.
//
// Example:
//
//	pkg := deckparse.Must(opc.OpenFile("deck.pptx"))
func Must[T any](val T, err error) T {
	if err != nil {
		panic(err)
	}
	return val
}

// MustExtract wraps a terminal operation, discarding warnings and
// panicking on error.
//
// Example:
//
//	text := deckparse.MustExtract(deckparse.Open("deck.pptx").Text(ctx))
func MustExtract[T any](val T, _ []Warning, err error) T {
	if err != nil {
		panic(err)
	}
	return val
}

// FormatWarnings joins warnings into one line each.
func FormatWarnings(warnings []Warning) string {
	lines := make([]string, len(warnings))
	for i, w := range warnings {
		lines[i] = w.String()
	}
	return strings.Join(lines, "\n")
}
