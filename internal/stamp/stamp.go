// Package stamp previews submission coordinates on the original PDF.
package stamp

import (
	"bytes"
	"fmt"
	"io"
	"strconv"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	"github.com/kpauljoseph/barcodeplacer/pkg/logger"
	"github.com/kpauljoseph/barcodeplacer/pkg/models"
)

const DefaultLabel = "BARCODE"

func init() {
	api.DisableConfigDir()
}

type Stamper struct {
	label  string
	conf   *model.Configuration
	logger *logger.Logger
}

func New(label string, log *logger.Logger) *Stamper {
	if label == "" {
		label = DefaultLabel
	}
	return &Stamper{
		label:  label,
		conf:   model.NewDefaultConfiguration(),
		logger: logger.OrDiscard(log),
	}
}

// Preview writes a copy of the PDF with a text marker at each coordinate.
// Coordinates are in points from the bottom-left page corner, the same
// values the upload API receives.
func (s *Stamper) Preview(in io.ReadSeeker, out io.Writer, coords []models.SubmissionCoordinate) error {
	data, err := io.ReadAll(in)
	if err != nil {
		return fmt.Errorf("failed to read PDF: %w", err)
	}

	for _, c := range coords {
		wm, err := pdfcpu.ParseTextWatermarkDetails(s.label, description(c), true, types.POINTS)
		if err != nil {
			return fmt.Errorf("failed to build marker for page %d: %w", c.Page, err)
		}

		var stamped bytes.Buffer
		pages := []string{strconv.Itoa(c.Page)}
		if err := api.AddWatermarks(bytes.NewReader(data), &stamped, pages, wm, s.conf); err != nil {
			return fmt.Errorf("failed to stamp page %d: %w", c.Page, err)
		}
		data = stamped.Bytes()
		s.logger.Debug("Stamped page %d at (%d, %d) pt", c.Page, c.X, c.Y)
	}

	if _, err := out.Write(data); err != nil {
		return fmt.Errorf("failed to write preview: %w", err)
	}
	return nil
}

func description(c models.SubmissionCoordinate) string {
	return fmt.Sprintf("font:Helvetica, points:12, pos:bl, off:%d %d, scalefactor:1 abs, rot:0, op:0.8, fillc:#CC0000", c.X, c.Y)
}

// PageDims returns each page's size in points.
func (s *Stamper) PageDims(in io.ReadSeeker) ([]models.PageDimensions, error) {
	dims, err := api.PageDims(in, s.conf)
	if err != nil {
		return nil, fmt.Errorf("failed to read page dimensions: %w", err)
	}
	out := make([]models.PageDimensions, len(dims))
	for i, d := range dims {
		out[i] = models.PageDimensions{Width: d.Width, Height: d.Height}
	}
	return out, nil
}

func (s *Stamper) PageCount(in io.ReadSeeker) (int, error) {
	return api.PageCount(in, s.conf)
}
