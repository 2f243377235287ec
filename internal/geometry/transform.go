package geometry

import (
	"math"
	"sort"

	"github.com/kpauljoseph/barcodeplacer/pkg/models"
)

const (
	PointsPerInch = 72.0
	// ImageDPI is the reference resolution assumed for raster image inputs.
	ImageDPI = 96.0
)

// RenderDPI is the resolution native pixels were produced at.
func RenderDPI(kind models.DocumentKind, renderScale float64) float64 {
	if kind == models.KindPDF && renderScale > 0 {
		return PointsPerInch * renderScale
	}
	return ImageDPI
}

func PixelsToPoints(px, dpi float64) float64 {
	if dpi <= 0 {
		dpi = ImageDPI
	}
	return px * (PointsPerInch / dpi)
}

func PointsToPixels(pt, dpi float64) float64 {
	if dpi <= 0 {
		dpi = ImageDPI
	}
	return pt * (dpi / PointsPerInch)
}

// FlipY converts a distance from the top edge into a distance from the bottom edge.
func FlipY(yFromTop, pageHeight float64) float64 {
	return pageHeight - yFromTop
}

// CumulativeOffsets returns the top edge of each page in a vertical stack.
func CumulativeOffsets(heights []float64) []float64 {
	offsets := make([]float64, len(heights))
	var sum float64
	for i, h := range heights {
		offsets[i] = sum
		sum += h
	}
	return offsets
}

// GlobalYToPageLocal maps a Y on the stacked document to a 1-based page and
// the Y within that page. Values above the first page resolve to page 1 and
// values past the end resolve to the last page; callers bound-check first.
func GlobalYToPageLocal(globalY float64, offsets []float64) (int, float64) {
	if len(offsets) == 0 {
		return 0, globalY
	}
	idx := sort.Search(len(offsets), func(i int) bool {
		return offsets[i] > globalY
	}) - 1
	if idx < 0 {
		idx = 0
	}
	return idx + 1, globalY - offsets[idx]
}

// ToSubmission converts a native-pixel region into its bottom-left corner in
// PDF points. The region's bottom edge is converted first and then flipped,
// so Y is the distance from the page bottom to the region bottom.
func ToSubmission(r models.Region, pageNativeHeight, dpi float64) models.SubmissionCoordinate {
	pageHeight := PixelsToPoints(pageNativeHeight, dpi)
	bottomFromTop := PixelsToPoints(r.Y, dpi) + PixelsToPoints(r.Height, dpi)

	return models.SubmissionCoordinate{
		Page: r.Page,
		X:    int(math.Round(PixelsToPoints(r.X, dpi))),
		Y:    int(math.Round(FlipY(bottomFromTop, pageHeight))),
	}
}
