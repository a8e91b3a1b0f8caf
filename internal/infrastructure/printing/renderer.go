// Package printing prints HTML documents to PDF with headless Chrome.
package printing

import (
	"context"
	"time"
)

// PaperSize is an ISO paper format
type PaperSize string

const (
	PaperSizeA4 PaperSize = "A4"
	PaperSizeA5 PaperSize = "A5"
)

// IsValid reports whether the paper size is supported
func (p PaperSize) IsValid() bool {
	return p == PaperSizeA4 || p == PaperSizeA5
}

// Dimensions returns width and height in millimeters (portrait)
func (p PaperSize) Dimensions() (width, height int) {
	if p == PaperSizeA5 {
		return 148, 210
	}
	return 210, 297
}

// Margins in millimeters
type Margins struct {
	Top    int
	Right  int
	Bottom int
	Left   int
}

// DefaultMargins are the invoice margins
func DefaultMargins() Margins {
	return Margins{Top: 15, Right: 12, Bottom: 15, Left: 12}
}

// RenderRequest contains the parameters for rendering HTML to PDF
type RenderRequest struct {
	HTML      string
	PaperSize PaperSize
	Landscape bool
	Margins   Margins
	// Title for the PDF document metadata
	Title      string
	HeaderHTML string
	FooterHTML string
	// Timeout overrides the default rendering timeout
	Timeout time.Duration
}

// RenderResult contains the output from PDF rendering
type RenderResult struct {
	PDFData        []byte
	PageCount      int
	RenderDuration time.Duration
}

// PDFRenderer renders HTML to PDF
type PDFRenderer interface {
	Render(ctx context.Context, req *RenderRequest) (*RenderResult, error)
	Close() error
}

// RenderError represents an error during PDF rendering
type RenderError struct {
	Code    string
	Message string
	Cause   error
}

func (e *RenderError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *RenderError) Unwrap() error {
	return e.Cause
}

// Error codes for rendering failures
const (
	ErrCodeRenderTimeout    = "RENDER_TIMEOUT"
	ErrCodeRenderFailed     = "RENDER_FAILED"
	ErrCodeInvalidHTML      = "INVALID_HTML"
	ErrCodeInvalidPaperSize = "INVALID_PAPER_SIZE"
	ErrCodeBusy             = "RENDERER_BUSY"
)

// NewRenderError creates a new RenderError
func NewRenderError(code, message string, cause error) *RenderError {
	return &RenderError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// estimatePageCount counts page objects in a PDF
func estimatePageCount(pdf []byte) int {
	count := 0
	needle := []byte("/Type /Page")
	for i := 0; i+len(needle) <= len(pdf); i++ {
		if string(pdf[i:i+len(needle)]) != string(needle) {
			continue
		}
		// skip "/Type /Pages"
		if next := i + len(needle); next < len(pdf) && pdf[next] == 's' {
			continue
		}
		count++
	}
	if count == 0 && len(pdf) > 0 {
		return 1
	}
	return count
}
