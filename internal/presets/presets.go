// Package presets lists the paper sizes exam templates are designed for.
package presets

import (
	"fmt"
	"image/color"
	"io"
	"math"
	"strings"

	"codeberg.org/go-pdf/fpdf"

	"github.com/kpauljoseph/barcodeplacer/internal/geometry"
	"github.com/kpauljoseph/barcodeplacer/internal/raster"
	"github.com/kpauljoseph/barcodeplacer/pkg/models"
)

const (
	DefaultName = "A4"

	// DimensionTolerance is in points.
	DimensionTolerance = 1.0
)

// Preset is a paper size in pixels at the 96 dpi reference.
type Preset struct {
	Name   string
	Width  float64
	Height float64
}

var all = []Preset{
	{Name: "A4", Width: 794, Height: 1123},
	{Name: "Letter", Width: 816, Height: 1056},
	{Name: "Legal", Width: 816, Height: 1344},
	{Name: "A3", Width: 1123, Height: 1587},
	{Name: "A5", Width: 559, Height: 794},
}

func All() []Preset {
	out := make([]Preset, len(all))
	copy(out, all)
	return out
}

func Names() []string {
	names := make([]string, 0, len(all))
	for _, p := range all {
		names = append(names, p.Name)
	}
	return names
}

func Lookup(name string) (Preset, bool) {
	for _, p := range all {
		if strings.EqualFold(p.Name, strings.TrimSpace(name)) {
			return p, true
		}
	}
	return Preset{}, false
}

// Points returns the preset size in PDF points.
func (p Preset) Points() models.PageDimensions {
	return models.PageDimensions{
		Width:  geometry.PixelsToPoints(p.Width, geometry.ImageDPI),
		Height: geometry.PixelsToPoints(p.Height, geometry.ImageDPI),
	}
}

// Matches compares a page size in points against p, in either orientation.
func (p Preset) Matches(width, height, tolerance float64) bool {
	pts := p.Points()

	widthMatch := math.Abs(width-pts.Width) <= tolerance
	heightMatch := math.Abs(height-pts.Height) <= tolerance

	rotatedWidthMatch := math.Abs(width-pts.Height) <= tolerance
	rotatedHeightMatch := math.Abs(height-pts.Width) <= tolerance

	return (widthMatch && heightMatch) || (rotatedWidthMatch && rotatedHeightMatch)
}

// Match finds the preset for a page size given in points.
func Match(width, height, tolerance float64) (Preset, bool) {
	for _, p := range all {
		if p.Matches(width, height, tolerance) {
			return p, true
		}
	}
	return Preset{}, false
}

// Placeholder is a blank white page shown before a document is loaded.
func Placeholder(p Preset) *raster.Buffer {
	b := raster.NewBuffer(1, int(math.Round(p.Width)), int(math.Round(p.Height)))
	b.Fill(color.White)
	return b
}

// WritePlaceholderPDF writes a blank document of the preset size with a
// small label on each page.
func WritePlaceholderPDF(w io.Writer, p Preset, pages int) error {
	if pages < 1 {
		return fmt.Errorf("placeholder needs at least one page, got %d", pages)
	}

	pts := p.Points()
	doc := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "pt",
		Size:           fpdf.SizeType{Wd: pts.Width, Ht: pts.Height},
	})
	doc.SetAutoPageBreak(false, 0)
	doc.SetFont("Helvetica", "", 10)

	for i := 1; i <= pages; i++ {
		doc.AddPage()
		doc.SetTextColor(128, 128, 128)
		doc.Text(36, 36, fmt.Sprintf("%s placeholder - page %d of %d", p.Name, i, pages))
	}

	if err := doc.Output(w); err != nil {
		return fmt.Errorf("failed to write placeholder PDF: %w", err)
	}
	return nil
}
