//go:build ocr

// Package ocr recognises text in slide images using the Tesseract engine via
// gosseract. It requires Tesseract to be installed on the system:
//
//	brew install tesseract          # macOS
//	apt-get install tesseract-ocr   # Ubuntu/Debian
package ocr

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/otiai10/gosseract/v2"
)

// ErrOCRNotEnabled is never returned by this build; it exists so callers can
// test for it regardless of build tags.
var ErrOCRNotEnabled = errors.New("OCR support not enabled; rebuild with -tags ocr")

// PageSegMode is the Tesseract page segmentation mode.
type PageSegMode = gosseract.PageSegMode

// Client wraps a Tesseract handle. Tesseract handles are not safe for
// concurrent use, so calls are serialised.
type Client struct {
	mu     sync.Mutex
	client *gosseract.Client
}

// New creates a client. It must be closed when no longer needed.
func New() (*Client, error) {
	return &Client{client: gosseract.NewClient()}, nil
}

// Close releases the Tesseract handle. It is safe to call on a nil client.
func (c *Client) Close() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.client != nil {
		err := c.client.Close()
		c.client = nil
		return err
	}
	return nil
}

// RecognizeImage returns the trimmed text found in PNG, JPEG, TIFF or BMP
// image data.
func (c *Client) RecognizeImage(imageData []byte) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.client == nil {
		return "", fmt.Errorf("OCR client closed")
	}
	if err := c.client.SetImageFromBytes(imageData); err != nil {
		return "", fmt.Errorf("failed to set image: %w", err)
	}
	text, err := c.client.Text()
	if err != nil {
		return "", fmt.Errorf("OCR failed: %w", err)
	}
	return strings.TrimSpace(text), nil
}

// SetLanguage sets the recognition language(s), "+"-separated (eng+deu).
func (c *Client) SetLanguage(lang string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.client.SetLanguage(strings.Split(lang, "+")...)
}

// SetPageSegMode sets how Tesseract segments the image.
func (c *Client) SetPageSegMode(mode PageSegMode) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.client.SetPageSegMode(mode)
}
