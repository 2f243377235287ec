// Package stitch arranges rendered pages into one vertical coordinate space.
package stitch

import (
	"errors"
	"image"
	"image/color"

	"golang.org/x/image/draw"

	"github.com/kpauljoseph/barcodeplacer/internal/geometry"
	"github.com/kpauljoseph/barcodeplacer/internal/raster"
)

var ErrEmptyDocument = errors.New("document has no pages")

// Pages is anything holding rendered pages in order.
type Pages interface {
	Pages() []raster.Surface
}

// Layout is the page geometry the region editor works against. Sizes come
// from each page, so documents with mixed page sizes map correctly.
// NativeWidth is the widest page; narrower pages sit flush-left.
type Layout interface {
	PageCount() int
	NativeWidth() float64
	PageWidth(page int) float64
	PageHeight(page int) float64
	TotalHeight() float64
	Offsets() []float64
}

type metrics struct {
	width   int
	widths  []float64
	heights []float64
	offsets []float64
	total   float64
}

func measure(pages []raster.Surface) (metrics, error) {
	if len(pages) == 0 {
		return metrics{}, ErrEmptyDocument
	}
	m := metrics{
		widths:  make([]float64, len(pages)),
		heights: make([]float64, len(pages)),
	}
	for i, p := range pages {
		if p.Width() > m.width {
			m.width = p.Width()
		}
		m.widths[i] = float64(p.Width())
		m.heights[i] = float64(p.Height())
		m.total += m.heights[i]
	}
	m.offsets = geometry.CumulativeOffsets(m.heights)
	return m, nil
}

func (m metrics) PageCount() int {
	return len(m.heights)
}

func (m metrics) NativeWidth() float64 {
	return float64(m.width)
}

func (m metrics) PageWidth(page int) float64 {
	if page < 1 || page > len(m.widths) {
		return 0
	}
	return m.widths[page-1]
}

func (m metrics) PageHeight(page int) float64 {
	if page < 1 || page > len(m.heights) {
		return 0
	}
	return m.heights[page-1]
}

func (m metrics) TotalHeight() float64 {
	return m.total
}

func (m metrics) Offsets() []float64 {
	out := make([]float64, len(m.offsets))
	copy(out, m.offsets)
	return out
}

// Canvas is every page painted onto one tall surface.
type Canvas struct {
	metrics
	surface *raster.Buffer
}

// Single composites the pages top to bottom, flush-left, over a white
// background so transparent page areas stay white.
func Single(doc Pages) (*Canvas, error) {
	pages := doc.Pages()
	m, err := measure(pages)
	if err != nil {
		return nil, err
	}

	surface := raster.NewBuffer(0, m.width, int(m.total))
	surface.Fill(color.White)
	for i, p := range pages {
		surface.Composite(p, image.Pt(0, int(m.offsets[i])))
	}

	return &Canvas{metrics: m, surface: surface}, nil
}

func (c *Canvas) Surface() raster.Surface {
	return c.surface
}

// Thumbnail scales the composite down to width pixels, keeping the aspect
// ratio. Widths at or above the native width return a copy at full size.
func (c *Canvas) Thumbnail(width int) *image.RGBA {
	src := c.surface.Image()
	if src == nil || width <= 0 {
		return image.NewRGBA(image.Rect(0, 0, 0, 0))
	}
	if width > c.width {
		width = c.width
	}
	height := int(float64(src.Bounds().Dy()) * float64(width) / float64(c.width))
	if height < 1 {
		height = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return dst
}

// Release frees the composite. The source pages belong to the document.
func (c *Canvas) Release() {
	c.surface.Release()
}

// PageSet keeps each page on its own surface, addressed through the offset table.
type PageSet struct {
	metrics
	pages []raster.Surface
}

func PerPage(doc Pages) (*PageSet, error) {
	pages := doc.Pages()
	m, err := measure(pages)
	if err != nil {
		return nil, err
	}
	return &PageSet{metrics: m, pages: pages}, nil
}

func (s *PageSet) Pages() []raster.Surface {
	return s.pages
}

func (s *PageSet) Page(page int) (raster.Surface, bool) {
	if page < 1 || page > len(s.pages) {
		return nil, false
	}
	return s.pages[page-1], true
}

// Release is a no-op: the pages are shared with the document that owns them.
func (s *PageSet) Release() {}

// Locate maps a global native Y to (page, localY). A Y on a page boundary
// belongs to the page below it; ok is false outside [0, TotalHeight).
func Locate(l Layout, globalY float64) (page int, localY float64, ok bool) {
	if globalY < 0 || globalY >= l.TotalHeight() {
		return 0, 0, false
	}
	page, localY = geometry.GlobalYToPageLocal(globalY, l.Offsets())
	return page, localY, true
}
