package pdf

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/kpauljoseph/barcodeplacer/internal/geometry"
	"github.com/kpauljoseph/barcodeplacer/internal/raster"
	"github.com/kpauljoseph/barcodeplacer/pkg/logger"
	"github.com/kpauljoseph/barcodeplacer/pkg/models"
)

const (
	DefaultRenderScale = 2.0
	// ZoomRenderScale is the floor used when pages will be inspected zoomed in.
	ZoomRenderScale = 3.0
	MaxRenderScale  = 8.0
)

type Rasterizer struct {
	decoder      Decoder
	defaultScale float64
	logger       *logger.Logger
}

func NewRasterizer(decoder Decoder, defaultScale float64, log *logger.Logger) (*Rasterizer, error) {
	if decoder == nil {
		return nil, errors.New("rasterizer needs a PDF decoder")
	}
	if defaultScale <= 0 {
		defaultScale = DefaultRenderScale
	}
	return &Rasterizer{
		decoder:      decoder,
		defaultScale: defaultScale,
		logger:       logger.OrDiscard(log),
	}, nil
}

// SharpScale returns the render scale for zoomed viewing on a display with
// the given device pixel ratio.
func SharpScale(base, devicePixelRatio float64) float64 {
	if devicePixelRatio <= 0 {
		devicePixelRatio = 1
	}
	scale := base * devicePixelRatio
	if scale < ZoomRenderScale {
		scale = ZoomRenderScale
	}
	if scale > MaxRenderScale {
		scale = MaxRenderScale
	}
	return scale
}

// Rasterize renders every page of file. PDF pages are rendered one at a time
// in order and ctx is checked between pages; a cancelled or failed load
// releases whatever was already rendered. A failing page aborts the whole
// document.
func (r *Rasterizer) Rasterize(ctx context.Context, file models.SourceFile, scale float64) (*Document, error) {
	if scale <= 0 {
		scale = r.defaultScale
	}

	switch file.Kind {
	case models.KindPDF:
		if r.decoder.Supports(file.MIMEType) == CapabilityUnsupported {
			return nil, fmt.Errorf("%w: decoder cannot read %s", ErrUnsupportedFormat, file.MIMEType)
		}
		return r.rasterizePDF(ctx, file, scale)
	case models.KindImage:
		return r.rasterizeImage(ctx, file)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, file.Name)
	}
}

func (r *Rasterizer) rasterizePDF(ctx context.Context, file models.SourceFile, scale float64) (*Document, error) {
	r.logger.Debug("Rasterizing PDF %s at %.2fx", file.Name, scale)

	src, err := r.decoder.Open(file.Data)
	if err != nil {
		return nil, &RasterizationError{Err: err}
	}
	defer src.Close()

	numPages := src.NumPage()
	if numPages < 1 {
		return nil, &RasterizationError{Err: errors.New("document has no pages")}
	}

	dpi := geometry.RenderDPI(models.KindPDF, scale)
	pages := make([]raster.Surface, 0, numPages)
	release := func() {
		for _, p := range pages {
			p.Release()
		}
	}

	for page := 1; page <= numPages; page++ {
		select {
		case <-ctx.Done():
			release()
			r.logger.Debug("Rasterization of %s cancelled before page %d", file.Name, page)
			return nil, ctx.Err()
		default:
		}

		img, err := src.Render(page, dpi)
		if err == nil && img == nil {
			err = errors.New("decoder returned no image")
		}
		if err != nil {
			release()
			return nil, &RasterizationError{Page: page, Err: err}
		}

		surface := raster.Wrap(page, img)
		if img.Bounds().Min != (image.Point{}) {
			surface = raster.FromImage(page, img)
		}
		pages = append(pages, surface)
		r.logger.Trace("Page %d rendered at %d x %d px", page, surface.Width(), surface.Height())
	}

	r.logger.Debug("Rasterized %d pages of %s", numPages, file.Name)
	return NewDocument(file.Name, models.KindPDF, scale, dpi, pages), nil
}

func (r *Rasterizer) rasterizeImage(ctx context.Context, file models.SourceFile) (*Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	img, format, err := image.Decode(bytes.NewReader(file.Data))
	if err != nil {
		if errors.Is(err, image.ErrFormat) {
			return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, file.Name)
		}
		return nil, &RasterizationError{Page: 1, Err: err}
	}
	r.logger.Debug("Decoded %s image %s: %d x %d px", format, file.Name, img.Bounds().Dx(), img.Bounds().Dy())

	page := raster.FromImage(1, img)
	return NewDocument(file.Name, models.KindImage, 1, geometry.ImageDPI, []raster.Surface{page}), nil
}
