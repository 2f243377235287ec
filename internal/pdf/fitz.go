package pdf

import (
	"fmt"
	"image"

	"github.com/gen2brain/go-fitz"
)

const mimePDF = "application/pdf"

// FitzDecoder decodes PDFs with MuPDF.
type FitzDecoder struct{}

func NewFitzDecoder() *FitzDecoder {
	return &FitzDecoder{}
}

func (d *FitzDecoder) Supports(mimeType string) Capability {
	if mimeType == mimePDF {
		return CapabilitySupported
	}
	return CapabilityUnsupported
}

func (d *FitzDecoder) Open(data []byte) (Source, error) {
	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}
	return &fitzSource{doc: doc}, nil
}

type fitzSource struct {
	doc *fitz.Document
}

func (s *fitzSource) NumPage() int {
	return s.doc.NumPage()
}

func (s *fitzSource) Bound(page int) (image.Rectangle, error) {
	//Page numbers are zero indexed in the fitz package.
	return s.doc.Bound(page - 1)
}

func (s *fitzSource) Render(page int, dpi float64) (*image.RGBA, error) {
	return s.doc.ImageDPI(page-1, dpi)
}

func (s *fitzSource) Close() error {
	return s.doc.Close()
}
