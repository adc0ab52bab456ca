//go:build !ocr

// Package ocr recognises text in slide images. This build has no OCR engine:
// every operation returns ErrOCRNotEnabled. Rebuild with -tags ocr (and
// Tesseract installed) to enable it.
package ocr

import "errors"

// ErrOCRNotEnabled is returned when OCR support was not compiled in.
var ErrOCRNotEnabled = errors.New("OCR support not enabled; rebuild with -tags ocr")

// PageSegMode is the Tesseract page segmentation mode.
type PageSegMode int

// Client is a stub OCR client.
type Client struct{}

// New reports that OCR is unavailable.
func New() (*Client, error) {
	return nil, ErrOCRNotEnabled
}

// Close is a no-op. It is safe to call on a nil client.
func (c *Client) Close() error {
	return nil
}

func (c *Client) RecognizeImage(imageData []byte) (string, error) {
	return "", ErrOCRNotEnabled
}

func (c *Client) SetLanguage(lang string) error {
	return ErrOCRNotEnabled
}

func (c *Client) SetPageSegMode(mode PageSegMode) error {
	return ErrOCRNotEnabled
}
