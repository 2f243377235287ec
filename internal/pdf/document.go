package pdf

import (
	"github.com/kpauljoseph/barcodeplacer/internal/raster"
	"github.com/kpauljoseph/barcodeplacer/pkg/models"
)

// Document is a rasterized file: one surface per page, in page order.
type Document struct {
	name      string
	kind      models.DocumentKind
	scale     float64
	renderDPI float64
	pages     []raster.Surface
}

func NewDocument(name string, kind models.DocumentKind, scale, renderDPI float64, pages []raster.Surface) *Document {
	return &Document{
		name:      name,
		kind:      kind,
		scale:     scale,
		renderDPI: renderDPI,
		pages:     pages,
	}
}

func (d *Document) Name() string {
	return d.name
}

func (d *Document) Kind() models.DocumentKind {
	return d.kind
}

// Scale is the multiplier applied to the PDF's 72 dpi page size. Always 1
// for images.
func (d *Document) Scale() float64 {
	return d.scale
}

func (d *Document) RenderDPI() float64 {
	return d.renderDPI
}

func (d *Document) PageCount() int {
	return len(d.pages)
}

func (d *Document) Pages() []raster.Surface {
	return d.pages
}

// Page returns the 1-based page.
func (d *Document) Page(page int) (raster.Surface, bool) {
	if page < 1 || page > len(d.pages) {
		return nil, false
	}
	return d.pages[page-1], true
}

// NativeWidth is the widest page in native pixels.
func (d *Document) NativeWidth() float64 {
	var w int
	for _, p := range d.pages {
		if p.Width() > w {
			w = p.Width()
		}
	}
	return float64(w)
}

func (d *Document) PageWidth(page int) float64 {
	p, ok := d.Page(page)
	if !ok {
		return 0
	}
	return float64(p.Width())
}

func (d *Document) PageHeight(page int) float64 {
	p, ok := d.Page(page)
	if !ok {
		return 0
	}
	return float64(p.Height())
}

func (d *Document) TotalHeight() float64 {
	var h int
	for _, p := range d.pages {
		h += p.Height()
	}
	return float64(h)
}

// Uniform reports whether every page has the same pixel size.
func (d *Document) Uniform() bool {
	for _, p := range d.pages {
		if p.Width() != d.pages[0].Width() || p.Height() != d.pages[0].Height() {
			return false
		}
	}
	return true
}

// Release frees every page buffer. Safe to call more than once.
func (d *Document) Release() {
	for _, p := range d.pages {
		p.Release()
	}
}

func (d *Document) Released() bool {
	for _, p := range d.pages {
		if !p.Released() {
			return false
		}
	}
	return true
}
