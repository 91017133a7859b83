//go:build ocr

// Package ocr is the scanned-image token supplier: it runs Tesseract over a
// page image and converts the hOCR word boxes into positioned tokens, the
// same shape the native text-layer extractor produces.
//
// This package wraps the Tesseract OCR engine via gosseract. It requires
// Tesseract to be installed on the system. On macOS, install via:
//
//	brew install tesseract
//
// On Ubuntu/Debian:
//
//	apt-get install tesseract-ocr
package ocr

import (
	"fmt"

	"github.com/otiai10/gosseract/v2"

	"github.com/tsawler/cvlayout/model"
)

// Client wraps Tesseract for OCR operations.
type Client struct {
	client *gosseract.Client
}

// New creates a new OCR client.
// The client should be closed when no longer needed to release resources.
func New() (*Client, error) {
	client := gosseract.NewClient()
	return &Client{client: client}, nil
}

// Close releases OCR resources.
func (c *Client) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

// RecognizeTokens performs OCR on image data (PNG, TIFF, JPEG, etc.) and
// returns the recognized words as a positioned token page. Coordinates are
// image pixels, top-origin, matching the native extractor's convention.
func (c *Client) RecognizeTokens(imageData []byte, pageNumber int) (model.Page, error) {
	hocr, err := c.HOCRText(imageData)
	if err != nil {
		return model.Page{}, err
	}
	return ParseHOCR(hocr, pageNumber)
}

// HOCRText performs OCR on image data and returns the raw hOCR markup,
// which carries per-word bounding boxes.
func (c *Client) HOCRText(imageData []byte) (string, error) {
	if err := c.client.SetImageFromBytes(imageData); err != nil {
		return "", fmt.Errorf("failed to set image: %w", err)
	}

	hocr, err := c.client.HOCRText()
	if err != nil {
		return "", fmt.Errorf("OCR failed: %w", err)
	}
	return hocr, nil
}

// SetLanguage sets the language(s) for OCR recognition.
// Multiple languages can be specified as a "+" separated string (e.g., "eng+fra").
// Default is "eng" (English).
func (c *Client) SetLanguage(lang string) error {
	return c.client.SetLanguage(lang)
}

// SetPageSegMode sets the page segmentation mode.
// This affects how Tesseract analyzes the page layout.
// See gosseract.PageSegMode constants for available modes.
func (c *Client) SetPageSegMode(mode gosseract.PageSegMode) error {
	return c.client.SetPageSegMode(mode)
}
