package deckparse

import "github.com/tsawler/deckparse/media"

// ExtractOptions holds configuration for extraction.
type ExtractOptions struct {
	// Slide selection (1-indexed presentation positions); nil means all.
	slides []int

	workers    int
	probeMedia bool

	// OCR of media images. recognizer takes precedence over ocrLang.
	ocr        bool
	ocrLang    string
	recognizer media.Recognizer
}

func defaultOptions() ExtractOptions {
	return ExtractOptions{ocrLang: "eng"}
}

// clone creates a deep copy of ExtractOptions.
func (o ExtractOptions) clone() ExtractOptions {
	n := o
	if o.slides != nil {
		n.slides = append([]int(nil), o.slides...)
	}
	return n
}
