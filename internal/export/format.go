// Package export turns a post into one of four downloadable encodings:
// structured data (JSON), markup (standalone HTML), flow document (DOCX)
// and fixed layout (PDF).
package export

import (
	"errors"
	"fmt"
	"strings"
)

// Format is the closed set of export targets.
type Format int

const (
	StructuredData Format = iota
	Markup
	FlowDocument
	FixedLayout
)

var (
	ErrUnknownFormat = errors.New("unknown export format")
	// ErrConversion wraps any encoder failure. No artifact is produced.
	ErrConversion = errors.New("export conversion failed")
	// ErrDelivery wraps failures handing a finished artifact to a BlobSaver.
	ErrDelivery = errors.New("export delivery failed")
)

// Formats lists every target in menu order.
var Formats = []Format{StructuredData, Markup, FlowDocument, FixedLayout}

// ParseFormat accepts either the format name or its file extension.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "structured", "structured-data", "json":
		return StructuredData, nil
	case "markup", "html":
		return Markup, nil
	case "flow", "flow-document", "docx", "word":
		return FlowDocument, nil
	case "fixed", "fixed-layout", "pdf":
		return FixedLayout, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

func (f Format) String() string {
	switch f {
	case StructuredData:
		return "structured"
	case Markup:
		return "markup"
	case FlowDocument:
		return "flow"
	case FixedLayout:
		return "fixed"
	}
	return fmt.Sprintf("Format(%d)", int(f))
}

// Extension returns the file extension, including the dot.
func (f Format) Extension() string {
	switch f {
	case StructuredData:
		return ".json"
	case Markup:
		return ".html"
	case FlowDocument:
		return ".docx"
	case FixedLayout:
		return ".pdf"
	}
	return ""
}

func (f Format) ContentType() string {
	switch f {
	case StructuredData:
		return "application/json"
	case Markup:
		return "text/html; charset=utf-8"
	case FlowDocument:
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	case FixedLayout:
		return "application/pdf"
	}
	return "application/octet-stream"
}

func (f Format) valid() bool {
	return f >= StructuredData && f <= FixedLayout
}
