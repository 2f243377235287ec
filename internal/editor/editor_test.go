package editor_test

import (
	"math/rand"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/kpauljoseph/barcodeplacer/internal/editor"
	"github.com/kpauljoseph/barcodeplacer/internal/raster"
	"github.com/kpauljoseph/barcodeplacer/internal/stitch"
	"github.com/kpauljoseph/barcodeplacer/pkg/logger"
	"github.com/kpauljoseph/barcodeplacer/pkg/models"
)

type pageList []raster.Surface

func (p pageList) Pages() []raster.Surface {
	return p
}

func layoutOf(width int, heights ...int) stitch.Layout {
	pages := make(pageList, len(heights))
	for i, h := range heights {
		pages[i] = raster.NewBuffer(i+1, width, h)
	}
	set, err := stitch.PerPage(pages)
	Expect(err).NotTo(HaveOccurred())
	return set
}

func mixedLayout(sizes ...[2]int) stitch.Layout {
	pages := make(pageList, len(sizes))
	for i, size := range sizes {
		pages[i] = raster.NewBuffer(i+1, size[0], size[1])
	}
	set, err := stitch.PerPage(pages)
	Expect(err).NotTo(HaveOccurred())
	return set
}

func editorTestLogger() *logger.Logger {
	log := logger.New(
		logger.WithOutput(GinkgoWriter),
		logger.WithPrefix("[editor-test] "),
		logger.WithFlags(0),
	)
	log.SetVerbose(true)
	log.SetLevel(logger.LevelTrace)
	return log
}

func click(e *editor.Editor, p editor.Pointer) {
	e.PointerDown(p)
	e.PointerUp(p)
}

func expectInsidePage(r models.Region, width, height float64) {
	Expect(r.X).To(BeNumerically(">=", 0))
	Expect(r.Y).To(BeNumerically(">=", 0))
	Expect(r.X).To(BeNumerically("<=", width-r.Width))
	Expect(r.Y).To(BeNumerically("<=", height-r.Height))
}

var _ = Describe("Region editor", func() {
	Context("barcode mode", func() {
		var ed *editor.Editor

		BeforeEach(func() {
			ed = editor.New(layoutOf(1000, 1200, 1200), 0.5, editor.DefaultOptions(editor.ModeBarcode), editorTestLogger())
		})

		It("should create a fixed-size region centered on the pointer", func() {
			ed.PointerDown(editor.Pointer{X: 150, Y: 300, Page: 2})
			Expect(ed.State()).To(Equal(editor.StateDragging))

			ed.PointerUp(editor.Pointer{X: 150, Y: 300, Page: 2})
			Expect(ed.State()).To(Equal(editor.StateIdle))

			region, ok := ed.Region(2)
			Expect(ok).To(BeTrue())
			Expect(region).To(Equal(models.Region{Page: 2, X: 200, Y: 570, Width: 200, Height: 60}))
			_, ok = ed.Region(1)
			Expect(ok).To(BeFalse())
		})

		It("should clamp a new region into the page", func() {
			click(ed, editor.Pointer{X: 2, Y: 2, Page: 1})
			click(ed, editor.Pointer{X: 499, Y: 599, Page: 2})

			first, _ := ed.Region(1)
			Expect(first.X).To(Equal(0.0))
			Expect(first.Y).To(Equal(0.0))

			second, _ := ed.Region(2)
			Expect(second.X).To(Equal(800.0))
			Expect(second.Y).To(Equal(1140.0))
		})

		It("should keep one region per page", func() {
			click(ed, editor.Pointer{X: 100, Y: 100, Page: 1})
			click(ed, editor.Pointer{X: 400, Y: 500, Page: 1})

			regions := ed.Regions()
			Expect(regions).To(HaveLen(1))
			Expect(regions[0].X).To(Equal(700.0))
			Expect(regions[0].Y).To(Equal(970.0))
		})

		It("should drag a region by its grab offset", func() {
			click(ed, editor.Pointer{X: 150, Y: 300, Page: 1})

			// grab 10 native px right of the region's left edge
			ed.PointerDown(editor.Pointer{X: 105, Y: 290, Page: 1})
			Expect(ed.State()).To(Equal(editor.StateDragging))
			ed.PointerMove(editor.Pointer{X: 205, Y: 340, Page: 1})
			ed.PointerUp(editor.Pointer{X: 205, Y: 340, Page: 1})

			region, _ := ed.Region(1)
			Expect(region.X).To(Equal(400.0))
			Expect(region.Y).To(Equal(670.0))
			Expect(ed.Regions()).To(HaveLen(1))
		})

		It("should keep a dragged region inside the page for any pointer path", func() {
			click(ed, editor.Pointer{X: 250, Y: 300, Page: 1})
			rng := rand.New(rand.NewSource(42))

			ed.PointerDown(editor.Pointer{X: 250, Y: 300, Page: 1})
			for i := 0; i < 500; i++ {
				ed.PointerMove(editor.Pointer{
					X:    rng.Float64()*1400 - 400,
					Y:    rng.Float64()*1600 - 500,
					Page: 1,
				})
				region, _ := ed.Region(1)
				expectInsidePage(region, 1000, 1200)
			}
			ed.PointerUp(editor.Pointer{})
		})

		It("should not move a region to another page while dragging", func() {
			stitched := editor.New(layoutOf(1000, 1200, 1200), 1, editor.DefaultOptions(editor.ModeBarcode), nil)
			click(stitched, editor.Pointer{X: 500, Y: 1000})

			stitched.PointerDown(editor.Pointer{X: 500, Y: 1000})
			stitched.PointerMove(editor.Pointer{X: 500, Y: 1800})
			stitched.PointerUp(editor.Pointer{X: 500, Y: 1800})

			regions := stitched.Regions()
			Expect(regions).To(HaveLen(1))
			Expect(regions[0].Page).To(Equal(1))
			Expect(regions[0].Y).To(Equal(1140.0))
		})

		It("should translate pointers over another page's element", func() {
			click(ed, editor.Pointer{X: 250, Y: 300, Page: 1})
			ed.PointerDown(editor.Pointer{X: 250, Y: 300, Page: 1})
			// 20 display px into page 2 is 1240 native px below the top of page 1
			ed.PointerMove(editor.Pointer{X: 250, Y: 20, Page: 2})
			region, _ := ed.Region(1)
			Expect(region.Y).To(Equal(1140.0))
		})

		It("should resolve pages on a stitched element", func() {
			stitched := editor.New(layoutOf(1000, 500, 600, 550), 1, editor.DefaultOptions(editor.ModeBarcode), nil)
			click(stitched, editor.Pointer{X: 500, Y: 1150})

			region, ok := stitched.Region(3)
			Expect(ok).To(BeTrue())
			Expect(region.Y).To(Equal(20.0))
		})

		It("should end a drag when the pointer leaves", func() {
			click(ed, editor.Pointer{X: 150, Y: 300, Page: 1})
			ed.PointerDown(editor.Pointer{X: 150, Y: 300, Page: 1})
			ed.PointerLeave(editor.Pointer{X: -50, Y: 300, Page: 1})
			Expect(ed.State()).To(Equal(editor.StateIdle))

			ed.PointerMove(editor.Pointer{X: 10, Y: 10, Page: 1})
			region, _ := ed.Region(1)
			Expect(region.X).To(Equal(200.0))
		})

		It("should ignore pointer-down while a drag is in progress", func() {
			ed.PointerDown(editor.Pointer{X: 150, Y: 300, Page: 1})
			ed.PointerDown(editor.Pointer{X: 150, Y: 300, Page: 2})
			ed.PointerUp(editor.Pointer{})

			Expect(ed.Regions()).To(HaveLen(1))
			Expect(ed.Regions()[0].Page).To(Equal(1))
		})

		DescribeTable("ignored gestures",
			func(p editor.Pointer) {
				ed.PointerDown(p)
				Expect(ed.State()).To(Equal(editor.StateIdle))
				Expect(ed.Regions()).To(BeEmpty())
			},
			Entry("left of the page", editor.Pointer{X: -1, Y: 100, Page: 1}),
			Entry("right of the page", editor.Pointer{X: 501, Y: 100, Page: 1}),
			Entry("below the page", editor.Pointer{X: 100, Y: 601, Page: 1}),
			Entry("on the right edge", editor.Pointer{X: 500, Y: 100, Page: 1}),
			Entry("on the bottom edge", editor.Pointer{X: 100, Y: 600, Page: 1}),
			Entry("unknown page", editor.Pointer{X: 100, Y: 100, Page: 3}),
			Entry("below a stitched document", editor.Pointer{X: 100, Y: 1300}),
		)

		It("should ignore moves and releases without a gesture", func() {
			ed.PointerMove(editor.Pointer{X: 10, Y: 10, Page: 1})
			ed.PointerUp(editor.Pointer{X: 10, Y: 10, Page: 1})
			ed.PointerLeave(editor.Pointer{})
			Expect(ed.State()).To(Equal(editor.StateIdle))
			Expect(ed.Regions()).To(BeEmpty())
		})

		It("should shrink the barcode to a page narrower than it", func() {
			narrow := editor.New(layoutOf(150, 40), 1, editor.DefaultOptions(editor.ModeBarcode), nil)
			click(narrow, editor.Pointer{X: 75, Y: 20, Page: 1})
			region, ok := narrow.Region(1)
			Expect(ok).To(BeTrue())
			Expect(region).To(Equal(models.Region{Page: 1, X: 0, Y: 0, Width: 150, Height: 40}))
		})

		It("should clear one page or everything, idempotently", func() {
			click(ed, editor.Pointer{X: 150, Y: 300, Page: 1})
			click(ed, editor.Pointer{X: 150, Y: 300, Page: 2})

			ed.Clear(1)
			Expect(ed.Regions()).To(HaveLen(1))
			ed.Clear(1)
			Expect(ed.Regions()).To(HaveLen(1))

			ed.ClearAll()
			Expect(ed.Regions()).To(BeEmpty())
			ed.ClearAll()
			Expect(ed.Regions()).To(BeEmpty())
			Expect(ed.State()).To(Equal(editor.StateIdle))
		})

		It("should drop an in-flight drag when its region is cleared", func() {
			ed.PointerDown(editor.Pointer{X: 150, Y: 300, Page: 1})
			ed.Clear(1)
			Expect(ed.State()).To(Equal(editor.StateIdle))
			ed.PointerMove(editor.Pointer{X: 10, Y: 10, Page: 1})
			Expect(ed.Regions()).To(BeEmpty())
		})

		It("should follow the region being dragged when another page is cleared", func() {
			click(ed, editor.Pointer{X: 150, Y: 300, Page: 1})
			ed.PointerDown(editor.Pointer{X: 150, Y: 300, Page: 2})
			ed.Clear(1)
			Expect(ed.State()).To(Equal(editor.StateDragging))
			ed.PointerMove(editor.Pointer{X: 160, Y: 300, Page: 2})
			ed.PointerUp(editor.Pointer{})

			region, ok := ed.Region(2)
			Expect(ok).To(BeTrue())
			Expect(region.X).To(Equal(220.0))
		})

		It("should drop regions when the layout changes", func() {
			click(ed, editor.Pointer{X: 150, Y: 300, Page: 1})
			ed.SetLayout(layoutOf(800, 1000))
			Expect(ed.Regions()).To(BeEmpty())
		})

		It("should keep native positions across a resize", func() {
			click(ed, editor.Pointer{X: 150, Y: 300, Page: 1})
			ed.SetScale(1)
			Expect(ed.Scale()).To(Equal(1.0))
			region, _ := ed.Region(1)
			Expect(region.X).To(Equal(200.0))

			// the region now sits at display (200..400, 570..630)
			ed.PointerDown(editor.Pointer{X: 300, Y: 600, Page: 1})
			Expect(ed.State()).To(Equal(editor.StateDragging))
		})
	})

	Context("answer-box mode", func() {
		var ed *editor.Editor

		BeforeEach(func() {
			ed = editor.New(layoutOf(800, 1000, 1000), 1, editor.DefaultOptions(editor.ModeAnswerBox), editorTestLogger())
		})

		drawBox := func(page int, x1, y1, x2, y2 float64) {
			ed.PointerDown(editor.Pointer{X: x1, Y: y1, Page: page})
			ed.PointerMove(editor.Pointer{X: x2, Y: y2, Page: page})
			ed.PointerUp(editor.Pointer{X: x2, Y: y2, Page: page})
		}

		It("should stretch a box from the anchor while placing", func() {
			ed.PointerDown(editor.Pointer{X: 300, Y: 200, Page: 1})
			Expect(ed.State()).To(Equal(editor.StatePlacing))

			draft, ok := ed.Draft()
			Expect(ok).To(BeTrue())
			Expect(draft.Width).To(Equal(0.0))

			ed.PointerMove(editor.Pointer{X: 100, Y: 260, Page: 1})
			draft, _ = ed.Draft()
			Expect(draft).To(Equal(models.Region{Page: 1, X: 100, Y: 200, Width: 200, Height: 60}))
		})

		It("should commit boxes with sequential indexes", func() {
			drawBox(1, 10, 10, 110, 60)
			drawBox(2, 50, 50, 150, 90)

			regions := ed.Regions()
			Expect(regions).To(HaveLen(2))
			Expect(regions[0].Index).To(Equal(1))
			Expect(regions[1].Index).To(Equal(2))
			Expect(regions[1].Page).To(Equal(2))
			Expect(ed.State()).To(Equal(editor.StateIdle))
			_, drafting := ed.Draft()
			Expect(drafting).To(BeFalse())
		})

		DescribeTable("minimum size",
			func(x2, y2 float64, kept bool) {
				drawBox(1, 100, 100, x2, y2)
				if kept {
					Expect(ed.Regions()).To(HaveLen(1))
				} else {
					Expect(ed.Regions()).To(BeEmpty())
				}
			},
			Entry("a click without moving", 100.0, 100.0, false),
			Entry("exactly the threshold", 110.0, 110.0, false),
			Entry("too flat", 200.0, 105.0, false),
			Entry("just above the threshold", 111.0, 111.0, true),
		)

		It("should clamp the drawn box to the page", func() {
			drawBox(1, 700, 900, 900, 1200)
			regions := ed.Regions()
			Expect(regions).To(HaveLen(1))
			Expect(regions[0]).To(Equal(models.Region{Page: 1, Index: 1, X: 700, Y: 900, Width: 100, Height: 100}))
		})

		It("should commit on pointer leave", func() {
			ed.PointerDown(editor.Pointer{X: 10, Y: 10, Page: 1})
			ed.PointerMove(editor.Pointer{X: 60, Y: 60, Page: 1})
			ed.PointerLeave(editor.Pointer{})
			Expect(ed.Regions()).To(HaveLen(1))
			Expect(ed.Regions()[0].Width).To(Equal(50.0))
		})

		It("should drag an existing box instead of drawing over it", func() {
			drawBox(1, 10, 10, 110, 60)
			ed.PointerDown(editor.Pointer{X: 20, Y: 20, Page: 1})
			Expect(ed.State()).To(Equal(editor.StateDragging))
			ed.PointerMove(editor.Pointer{X: 30, Y: 40, Page: 1})
			ed.PointerUp(editor.Pointer{})

			regions := ed.Regions()
			Expect(regions).To(HaveLen(1))
			Expect(regions[0].X).To(Equal(20.0))
			Expect(regions[0].Y).To(Equal(30.0))
			Expect(regions[0].Index).To(Equal(1))
		})

		It("should drop answer assignments together with their box", func() {
			drawBox(1, 10, 10, 110, 60)
			drawBox(1, 200, 200, 300, 260)
			Expect(ed.AssignAnswer(1, "B")).To(Succeed())
			Expect(ed.AssignAnswer(2, "D")).To(Succeed())
			Expect(ed.AssignAnswer(7, "A")).To(HaveOccurred())

			ed.ClearBox(1)
			Expect(ed.Regions()).To(HaveLen(1))
			Expect(ed.Answers()).To(Equal(map[int]string{2: "D"}))

			ed.Clear(1)
			Expect(ed.Answers()).To(BeEmpty())
		})

		It("should not reuse indexes after a box is removed", func() {
			drawBox(1, 10, 10, 110, 60)
			ed.ClearBox(1)
			drawBox(1, 10, 10, 110, 60)
			Expect(ed.Regions()[0].Index).To(Equal(2))
		})
	})

	Context("pages of different widths", func() {
		var ed *editor.Editor

		BeforeEach(func() {
			// landscape A4 followed by portrait A4 at 144 dpi
			ed = editor.New(mixedLayout([2]int{2105, 1488}, [2]int{1488, 2105}), 1, editor.DefaultOptions(editor.ModeBarcode), editorTestLogger())
		})

		It("should ignore clicks right of a narrower page", func() {
			click(ed, editor.Pointer{X: 2000, Y: 300, Page: 2})
			Expect(ed.Regions()).To(BeEmpty())

			click(ed, editor.Pointer{X: 2000, Y: 1488 + 300})
			Expect(ed.Regions()).To(BeEmpty())
		})

		It("should clamp to the width of the page being edited", func() {
			click(ed, editor.Pointer{X: 2000, Y: 300, Page: 1})
			click(ed, editor.Pointer{X: 1480, Y: 300, Page: 2})

			first, _ := ed.Region(1)
			Expect(first.X).To(Equal(1900.0))

			second, _ := ed.Region(2)
			Expect(second).To(Equal(models.Region{Page: 2, X: 1288, Y: 270, Width: 200, Height: 60}))
			expectInsidePage(second, 1488, 2105)
		})

		It("should keep a dragged region on the narrower page", func() {
			click(ed, editor.Pointer{X: 700, Y: 700, Page: 2})
			rng := rand.New(rand.NewSource(7))

			ed.PointerDown(editor.Pointer{X: 700, Y: 700, Page: 2})
			for i := 0; i < 300; i++ {
				ed.PointerMove(editor.Pointer{X: rng.Float64() * 2600, Y: rng.Float64() * 2400, Page: 2})
				region, _ := ed.Region(2)
				expectInsidePage(region, 1488, 2105)
			}
			ed.PointerUp(editor.Pointer{})
		})

		It("should clamp a drawn box to the narrower page", func() {
			boxes := editor.New(mixedLayout([2]int{2105, 1488}, [2]int{1488, 2105}), 1, editor.DefaultOptions(editor.ModeAnswerBox), nil)
			boxes.PointerDown(editor.Pointer{X: 1000, Y: 100, Page: 2})
			boxes.PointerMove(editor.Pointer{X: 3000, Y: 400, Page: 2})
			boxes.PointerUp(editor.Pointer{})

			regions := boxes.Regions()
			Expect(regions).To(HaveLen(1))
			Expect(regions[0].X + regions[0].Width).To(Equal(1488.0))
		})
	})

	DescribeTable("ParseMode",
		func(in string, mode editor.Mode, ok bool) {
			m, err := editor.ParseMode(in)
			if !ok {
				Expect(err).To(HaveOccurred())
				return
			}
			Expect(err).NotTo(HaveOccurred())
			Expect(m).To(Equal(mode))
		},
		Entry("default", "", editor.ModeBarcode, true),
		Entry("barcode", "barcode", editor.ModeBarcode, true),
		Entry("answer boxes", "answer-box", editor.ModeAnswerBox, true),
		Entry("unknown", "lasso", editor.ModeBarcode, false),
	)
})
