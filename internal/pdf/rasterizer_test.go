package pdf_test

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"golang.org/x/image/bmp"

	"github.com/kpauljoseph/barcodeplacer/internal/pdf"
	"github.com/kpauljoseph/barcodeplacer/pkg/logger"
	"github.com/kpauljoseph/barcodeplacer/pkg/models"
)

func rasterizerTestLogger() *logger.Logger {
	log := logger.New(
		logger.WithOutput(GinkgoWriter),
		logger.WithPrefix("[pdf-test] "),
		logger.WithFlags(0),
	)
	log.SetVerbose(true)
	log.SetLevel(logger.LevelTrace)
	return log
}

func pdfFile(name string) models.SourceFile {
	return models.SourceFile{Name: name, MIMEType: "application/pdf", Kind: models.KindPDF, Data: []byte("%PDF-fake")}
}

func encodedImage(width, height int, encode func(*bytes.Buffer, image.Image) error) []byte {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	img.Set(0, 0, color.RGBA{255, 0, 0, 255})
	var buf bytes.Buffer
	Expect(encode(&buf, img)).To(Succeed())
	return buf.Bytes()
}

var _ = Describe("Rasterizer", func() {
	var (
		decoder    *fakeDecoder
		rasterizer *pdf.Rasterizer
		ctx        context.Context
	)

	BeforeEach(func() {
		decoder = &fakeDecoder{
			pages:     []image.Point{{595, 842}, {595, 842}},
			supported: pdf.CapabilitySupported,
		}
		var err error
		rasterizer, err = pdf.NewRasterizer(decoder, 2.0, rasterizerTestLogger())
		Expect(err).NotTo(HaveOccurred())
		ctx = context.Background()
	})

	It("should require a decoder", func() {
		_, err := pdf.NewRasterizer(nil, 2.0, nil)
		Expect(err).To(HaveOccurred())
	})

	Context("PDF input", func() {
		It("should render every page in order at 72 dpi times the scale", func() {
			doc, err := rasterizer.Rasterize(ctx, pdfFile("exam.pdf"), 2.5)
			Expect(err).NotTo(HaveOccurred())

			Expect(doc.PageCount()).To(Equal(2))
			Expect(doc.Kind()).To(Equal(models.KindPDF))
			Expect(doc.RenderDPI()).To(Equal(180.0))
			Expect(doc.Scale()).To(Equal(2.5))
			Expect(doc.NativeWidth()).To(Equal(1487.0))
			Expect(doc.PageHeight(2)).To(Equal(2105.0))
			Expect(doc.TotalHeight()).To(Equal(4210.0))
			Expect(decoder.renderedPages()).To(Equal([]int{1, 2}))

			for i, page := range doc.Pages() {
				Expect(page.PageIndex()).To(Equal(i + 1))
			}
		})

		It("should fall back to the default scale", func() {
			doc, err := rasterizer.Rasterize(ctx, pdfFile("exam.pdf"), 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(doc.RenderDPI()).To(Equal(144.0))
		})

		It("should abort the whole document when a page fails", func() {
			decoder.pages = append(decoder.pages, image.Point{X: 595, Y: 842})
			decoder.failPage = 2

			doc, err := rasterizer.Rasterize(ctx, pdfFile("exam.pdf"), 1)
			Expect(doc).To(BeNil())
			Expect(errors.Is(err, pdf.ErrRasterizationFailed)).To(BeTrue())

			var rerr *pdf.RasterizationError
			Expect(errors.As(err, &rerr)).To(BeTrue())
			Expect(rerr.Page).To(Equal(2))
			Expect(decoder.renderedPages()).To(Equal([]int{1, 2}))
		})

		It("should wrap open failures", func() {
			decoder.openErr = errors.New("not a PDF")
			_, err := rasterizer.Rasterize(ctx, pdfFile("broken.pdf"), 1)
			Expect(err).To(MatchError(pdf.ErrRasterizationFailed))
			Expect(err.Error()).To(ContainSubstring("not a PDF"))
		})

		It("should fail on a document without pages", func() {
			decoder.pages = nil
			_, err := rasterizer.Rasterize(ctx, pdfFile("empty.pdf"), 1)
			Expect(err).To(MatchError(pdf.ErrRasterizationFailed))
		})

		It("should refuse when the decoder reports no support", func() {
			decoder.supported = pdf.CapabilityUnsupported
			_, err := rasterizer.Rasterize(ctx, pdfFile("exam.pdf"), 1)
			Expect(err).To(MatchError(pdf.ErrUnsupportedFormat))
		})

		It("should try when support is unknown", func() {
			decoder.supported = pdf.CapabilityUnknown
			_, err := rasterizer.Rasterize(ctx, pdfFile("exam.pdf"), 1)
			Expect(err).NotTo(HaveOccurred())
		})

		It("should stop between pages when cancelled", func() {
			cancelCtx, cancel := context.WithCancel(ctx)
			decoder.pages = []image.Point{{100, 100}, {100, 100}, {100, 100}}
			decoder.onRender = func(page int) {
				if page == 1 {
					cancel()
				}
			}

			doc, err := rasterizer.Rasterize(cancelCtx, pdfFile("exam.pdf"), 1)
			Expect(doc).To(BeNil())
			Expect(err).To(MatchError(context.Canceled))
			Expect(decoder.renderedPages()).To(Equal([]int{1}))
		})
	})

	Context("image input", func() {
		It("should decode a PNG as a single page at 96 dpi", func() {
			data := encodedImage(320, 240, func(b *bytes.Buffer, img image.Image) error { return png.Encode(b, img) })
			doc, err := rasterizer.Rasterize(ctx, models.SourceFile{Name: "scan.png", MIMEType: "image/png", Kind: models.KindImage, Data: data}, 2.0)
			Expect(err).NotTo(HaveOccurred())

			Expect(doc.PageCount()).To(Equal(1))
			Expect(doc.Kind()).To(Equal(models.KindImage))
			Expect(doc.RenderDPI()).To(Equal(96.0))
			Expect(doc.Scale()).To(Equal(1.0))
			Expect(doc.NativeWidth()).To(Equal(320.0))
			Expect(doc.PageHeight(1)).To(Equal(240.0))
			page, ok := doc.Page(1)
			Expect(ok).To(BeTrue())
			Expect(page.Image().RGBAAt(0, 0)).To(Equal(color.RGBA{255, 0, 0, 255}))
		})

		It("should decode a BMP", func() {
			data := encodedImage(16, 8, func(b *bytes.Buffer, img image.Image) error { return bmp.Encode(b, img) })
			doc, err := rasterizer.Rasterize(ctx, models.SourceFile{Name: "scan.bmp", MIMEType: "image/bmp", Kind: models.KindImage, Data: data}, 1)
			Expect(err).NotTo(HaveOccurred())
			Expect(doc.NativeWidth()).To(Equal(16.0))
		})

		It("should report undecodable bytes as unsupported", func() {
			_, err := rasterizer.Rasterize(ctx, models.SourceFile{Name: "notes.txt", Kind: models.KindImage, Data: []byte("hello")}, 1)
			Expect(err).To(MatchError(pdf.ErrUnsupportedFormat))
		})
	})

	It("should reject unknown kinds", func() {
		_, err := rasterizer.Rasterize(ctx, models.SourceFile{Name: "x"}, 1)
		Expect(err).To(MatchError(pdf.ErrUnsupportedFormat))
	})

	DescribeTable("SharpScale",
		func(base, dpr, expected float64) {
			Expect(pdf.SharpScale(base, dpr)).To(Equal(expected))
		},
		Entry("low density display", 1.0, 1.0, 3.0),
		Entry("retina display", 2.0, 2.0, 4.0),
		Entry("unknown ratio", 2.5, 0.0, 3.0),
		Entry("capped", 4.0, 3.0, 8.0),
	)
})
