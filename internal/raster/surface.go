// Package raster holds the pixel buffers pages are rendered into.
package raster

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"

	"golang.org/x/image/draw"
)

// Surface owns one page's pixels. Release drops the buffer; a released
// surface reports zero size and ignores drawing.
type Surface interface {
	PageIndex() int
	Width() int
	Height() int
	Image() *image.RGBA
	Fill(c color.Color)
	Composite(src Surface, at image.Point)
	Release()
	Released() bool
}

// Buffer is the in-memory Surface.
type Buffer struct {
	page int
	img  *image.RGBA
}

func NewBuffer(page, width, height int) *Buffer {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	return &Buffer{
		page: page,
		img:  image.NewRGBA(image.Rect(0, 0, width, height)),
	}
}

// FromImage copies src into a new buffer anchored at the origin.
func FromImage(page int, src image.Image) *Buffer {
	bounds := src.Bounds()
	b := NewBuffer(page, bounds.Dx(), bounds.Dy())
	draw.Draw(b.img, b.img.Bounds(), src, bounds.Min, draw.Src)
	return b
}

// Wrap takes ownership of img without copying. img must start at the origin.
func Wrap(page int, img *image.RGBA) *Buffer {
	return &Buffer{page: page, img: img}
}

func (b *Buffer) PageIndex() int {
	return b.page
}

func (b *Buffer) Width() int {
	if b.img == nil {
		return 0
	}
	return b.img.Bounds().Dx()
}

func (b *Buffer) Height() int {
	if b.img == nil {
		return 0
	}
	return b.img.Bounds().Dy()
}

func (b *Buffer) Image() *image.RGBA {
	return b.img
}

func (b *Buffer) Fill(c color.Color) {
	if b.img == nil {
		return
	}
	draw.Draw(b.img, b.img.Bounds(), &image.Uniform{C: c}, image.Point{}, draw.Src)
}

// Composite paints src over b with its top-left corner at at.
func (b *Buffer) Composite(src Surface, at image.Point) {
	if b.img == nil || src == nil || src.Released() {
		return
	}
	srcImg := src.Image()
	dst := image.Rectangle{Min: at, Max: at.Add(srcImg.Bounds().Size())}
	draw.Draw(b.img, dst, srcImg, srcImg.Bounds().Min, draw.Over)
}

func (b *Buffer) Release() {
	b.img = nil
}

func (b *Buffer) Released() bool {
	return b.img == nil
}

func EncodePNG(w io.Writer, s Surface) error {
	if s == nil || s.Released() {
		return fmt.Errorf("surface for page %d has been released", pageOf(s))
	}
	return png.Encode(w, s.Image())
}

func pageOf(s Surface) int {
	if s == nil {
		return 0
	}
	return s.PageIndex()
}
