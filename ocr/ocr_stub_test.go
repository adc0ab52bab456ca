//go:build !ocr

package ocr

import (
	"errors"
	"testing"
)

func TestNew_Disabled(t *testing.T) {
	client, err := New()
	if !errors.Is(err, ErrOCRNotEnabled) {
		t.Errorf("New() error = %v, want ErrOCRNotEnabled", err)
	}
	if client != nil {
		t.Error("Expected nil client when OCR is disabled")
	}
}

func TestStubMethods(t *testing.T) {
	var client *Client
	if err := client.Close(); err != nil {
		t.Errorf("Close on nil client should not error: %v", err)
	}
	if _, err := client.RecognizeImage([]byte{1}); !errors.Is(err, ErrOCRNotEnabled) {
		t.Errorf("RecognizeImage error = %v", err)
	}
	if err := client.SetLanguage("eng"); !errors.Is(err, ErrOCRNotEnabled) {
		t.Errorf("SetLanguage error = %v", err)
	}
}
