// Package ocr wraps a Tesseract OCR engine for reading text out of an image
// region, optionally biased with a whitelist alphabet. It plays the role
// original_source/clipcrab-detect/src/ocr.rs gives the `ocrs` crate, but
// binds to github.com/otiai10/gosseract/v2, the Tesseract CGo wrapper most
// commonly reached for in the Go ecosystem.
package ocr

import (
	"fmt"
	"sync"

	"github.com/otiai10/gosseract/v2"
	"gocv.io/x/gocv"
)

// Ocr extracts text from an image region using a single whitelist alphabet.
// A *gosseract.Client is not safe for concurrent use, so Ocr serializes
// access to it with a mutex; callers needing parallelism should construct
// one Ocr per worker, the way detect/season/s2025 does.
type Ocr struct {
	mu            sync.Mutex
	client        *gosseract.Client
	allowedChars  string
}

// New builds an Ocr engine. An empty allowedChars disables whitelisting
// (matches any character Tesseract's model recognizes).
func New(allowedChars string) *Ocr {
	client := gosseract.NewClient()
	if allowedChars != "" {
		client.SetWhitelist(allowedChars)
	}
	return &Ocr{client: client, allowedChars: allowedChars}
}

// Close releases the underlying Tesseract client.
func (o *Ocr) Close() error { return o.client.Close() }

// ExtractText runs OCR over img (any gocv color order; converted to RGB for
// the engine) and returns recognized text lines separated by "\n". It
// returns the empty string on any OCR engine failure, matching the source
// behavior of folding OCR failure into "no text found" rather than
// propagating an error up through the detection pipeline.
func (o *Ocr) ExtractText(img gocv.Mat) string {
	buf, err := gocv.IMEncode(".png", img)
	if err != nil {
		return ""
	}
	defer buf.Close()

	o.mu.Lock()
	defer o.mu.Unlock()

	if err := o.client.SetImageFromBytes(buf.GetBytes()); err != nil {
		return ""
	}
	text, err := o.client.Text()
	if err != nil {
		return ""
	}
	return text
}

func (o *Ocr) String() string {
	return fmt.Sprintf("Ocr(allowed=%q)", o.allowedChars)
}
