// Package editor turns pointer gestures into barcode and answer-box regions.
//
// Pointer coordinates are display pixels local to the host element. The
// editor divides by the current display scale to get native pixels, then
// resolves the page either from Pointer.Page (one element per page) or from
// the layout's offset table (one stitched element).
package editor

import (
	"fmt"
	"sort"

	"github.com/kpauljoseph/barcodeplacer/internal/geometry"
	"github.com/kpauljoseph/barcodeplacer/internal/stitch"
	"github.com/kpauljoseph/barcodeplacer/pkg/logger"
	"github.com/kpauljoseph/barcodeplacer/pkg/models"
)

type Mode int

const (
	// ModeBarcode places one fixed-size region per page.
	ModeBarcode Mode = iota
	// ModeAnswerBox draws any number of variable-size regions.
	ModeAnswerBox
)

func (m Mode) String() string {
	if m == ModeAnswerBox {
		return "answer-box"
	}
	return "barcode"
}

func ParseMode(s string) (Mode, error) {
	switch s {
	case "", "barcode":
		return ModeBarcode, nil
	case "answer-box", "answerbox", "answer_box":
		return ModeAnswerBox, nil
	default:
		return ModeBarcode, fmt.Errorf("unknown editor mode %q", s)
	}
}

type State int

const (
	StateIdle State = iota
	StatePlacing
	StateDragging
)

func (s State) String() string {
	switch s {
	case StatePlacing:
		return "placing"
	case StateDragging:
		return "dragging"
	default:
		return "idle"
	}
}

const (
	DefaultBarcodeWidth  = 200
	DefaultBarcodeHeight = 60
	DefaultMinBoxSize    = 10
)

type Options struct {
	Mode          Mode
	BarcodeWidth  float64
	BarcodeHeight float64
	// MinBoxSize is the size a drawn box must exceed on both axes to be kept.
	MinBoxSize float64
}

func DefaultOptions(mode Mode) Options {
	return Options{
		Mode:          mode,
		BarcodeWidth:  DefaultBarcodeWidth,
		BarcodeHeight: DefaultBarcodeHeight,
		MinBoxSize:    DefaultMinBoxSize,
	}
}

// Pointer is a pointer event position in display pixels. Page 0 means the
// element shows the stitched document and Y runs across all pages; a
// positive Page means the element shows only that page.
type Pointer struct {
	X    float64
	Y    float64
	Page int
}

type gesture struct {
	page int
	// target is the position in regions of the region being dragged, -1 while drawing.
	target  int
	grabX   float64
	grabY   float64
	anchorX float64
	anchorY float64
	draft   models.Region
}

type Editor struct {
	opts      Options
	layout    stitch.Layout
	scale     float64
	state     State
	regions   []models.Region
	active    *gesture
	nextIndex int
	answers   map[int]string
	logger    *logger.Logger
}

func New(layout stitch.Layout, scale float64, opts Options, log *logger.Logger) *Editor {
	if opts.BarcodeWidth <= 0 {
		opts.BarcodeWidth = DefaultBarcodeWidth
	}
	if opts.BarcodeHeight <= 0 {
		opts.BarcodeHeight = DefaultBarcodeHeight
	}
	if opts.MinBoxSize < 0 {
		opts.MinBoxSize = DefaultMinBoxSize
	}
	return &Editor{
		opts:      opts,
		layout:    layout,
		scale:     scale,
		nextIndex: 1,
		answers:   make(map[int]string),
		logger:    logger.OrDiscard(log),
	}
}

func (e *Editor) Mode() Mode {
	return e.opts.Mode
}

func (e *Editor) State() State {
	return e.state
}

func (e *Editor) Scale() float64 {
	return e.scale
}

// SetScale follows a viewport resize. Regions are stored in native pixels
// and do not move.
func (e *Editor) SetScale(scale float64) {
	e.scale = scale
}

// SetLayout switches to a new document or page template, which drops every
// region and any gesture in progress.
func (e *Editor) SetLayout(layout stitch.Layout) {
	e.layout = layout
	e.ClearAll()
}

// PointerDown picks up the region under the pointer or starts a new one.
// It is ignored while another gesture is active or outside the document.
func (e *Editor) PointerDown(p Pointer) {
	if e.state != StateIdle || e.layout == nil {
		return
	}
	page, nx, ny, ok := e.locate(p)
	if !ok {
		e.logger.Trace("Pointer down outside document at (%.1f, %.1f)", p.X, p.Y)
		return
	}

	if i := e.hit(page, nx, ny); i >= 0 {
		r := e.regions[i]
		e.active = &gesture{page: page, target: i, grabX: nx - r.X, grabY: ny - r.Y}
		e.state = StateDragging
		e.logger.Trace("Dragging region on page %d", page)
		return
	}

	switch e.opts.Mode {
	case ModeBarcode:
		e.placeBarcode(page, nx, ny)
	case ModeAnswerBox:
		x, y := e.clampPoint(page, nx, ny)
		e.active = &gesture{
			page:    page,
			target:  -1,
			anchorX: x,
			anchorY: y,
			draft:   models.Region{Page: page, X: x, Y: y},
		}
		e.state = StatePlacing
	}
}

// placeBarcode replaces the page's barcode with one centered on the pointer.
// A fixed-size region needs no stretching, so the gesture goes straight to
// dragging.
func (e *Editor) placeBarcode(page int, nx, ny float64) {
	pageW, pageH := e.pageSize(page)
	w := minFloat(e.opts.BarcodeWidth, pageW)
	h := minFloat(e.opts.BarcodeHeight, pageH)

	r := models.Region{
		Page:   page,
		X:      geometry.Clamp(nx-w/2, 0, pageW-w),
		Y:      geometry.Clamp(ny-h/2, 0, pageH-h),
		Width:  w,
		Height: h,
	}

	e.removeWhere(func(existing models.Region) bool { return existing.Page == page })
	e.regions = append(e.regions, r)
	e.active = &gesture{page: page, target: len(e.regions) - 1, grabX: nx - r.X, grabY: ny - r.Y}
	e.state = StateDragging
	e.logger.Debug("Placed barcode on page %d at (%.1f, %.1f)", page, r.X, r.Y)
}

// PointerMove drags or stretches the active region. The region never
// changes page; coordinates past the page edge are clamped.
func (e *Editor) PointerMove(p Pointer) {
	if e.state == StateIdle || e.active == nil {
		return
	}
	nx, ny, ok := e.relativeTo(e.active.page, p)
	if !ok {
		return
	}
	pageW, pageH := e.pageSize(e.active.page)

	switch e.state {
	case StateDragging:
		r := &e.regions[e.active.target]
		r.X = geometry.Clamp(nx-e.active.grabX, 0, pageW-r.Width)
		r.Y = geometry.Clamp(ny-e.active.grabY, 0, pageH-r.Height)
	case StatePlacing:
		x, y := e.clampPoint(e.active.page, nx, ny)
		e.active.draft = boundingBox(e.active.page, e.active.anchorX, e.active.anchorY, x, y)
	}
}

// PointerUp ends the gesture at the last moved-to position. A drawn box is
// kept only when it exceeds the minimum size on both axes.
func (e *Editor) PointerUp(Pointer) {
	if e.state == StateIdle || e.active == nil {
		e.state = StateIdle
		return
	}
	if e.state == StatePlacing {
		draft := e.active.draft
		if draft.Width > e.opts.MinBoxSize && draft.Height > e.opts.MinBoxSize {
			draft.Index = e.nextIndex
			e.nextIndex++
			e.regions = append(e.regions, draft)
			e.logger.Debug("Added answer box %d on page %d", draft.Index, draft.Page)
		} else {
			e.logger.Trace("Discarded %.1f x %.1f box below minimum size", draft.Width, draft.Height)
		}
	}
	e.active = nil
	e.state = StateIdle
}

// PointerLeave behaves exactly like PointerUp.
func (e *Editor) PointerLeave(p Pointer) {
	e.PointerUp(p)
}

// Draft returns the box being drawn, if any.
func (e *Editor) Draft() (models.Region, bool) {
	if e.state != StatePlacing || e.active == nil {
		return models.Region{}, false
	}
	return e.active.draft, true
}

// Regions returns committed regions ordered by page, then index.
func (e *Editor) Regions() []models.Region {
	out := make([]models.Region, len(e.regions))
	copy(out, e.regions)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Page != out[j].Page {
			return out[i].Page < out[j].Page
		}
		return out[i].Index < out[j].Index
	})
	return out
}

// Region returns the first region on page.
func (e *Editor) Region(page int) (models.Region, bool) {
	for _, r := range e.Regions() {
		if r.Page == page {
			return r, true
		}
	}
	return models.Region{}, false
}

// AssignAnswer records the answer key for an answer box.
func (e *Editor) AssignAnswer(index int, key string) error {
	for _, r := range e.regions {
		if r.Index == index && index > 0 {
			e.answers[index] = key
			return nil
		}
	}
	return fmt.Errorf("no answer box with index %d", index)
}

func (e *Editor) Answers() map[int]string {
	out := make(map[int]string, len(e.answers))
	for k, v := range e.answers {
		out[k] = v
	}
	return out
}

// Clear removes the regions on one page.
func (e *Editor) Clear(page int) {
	e.removeWhere(func(r models.Region) bool { return r.Page == page })
}

// ClearBox removes one answer box by index.
func (e *Editor) ClearBox(index int) {
	e.removeWhere(func(r models.Region) bool { return r.Index == index && index > 0 })
}

// ClearAll removes every region and answer assignment.
func (e *Editor) ClearAll() {
	e.regions = nil
	e.answers = make(map[int]string)
	e.active = nil
	e.state = StateIdle
}

func (e *Editor) removeWhere(match func(models.Region) bool) {
	kept := e.regions[:0]
	target := -1
	for i, r := range e.regions {
		if match(r) {
			delete(e.answers, r.Index)
			continue
		}
		if e.active != nil && e.active.target == i {
			target = len(kept)
		}
		kept = append(kept, r)
	}
	e.regions = kept

	if e.active != nil && e.active.target >= 0 {
		if target < 0 {
			e.active = nil
			e.state = StateIdle
			return
		}
		e.active.target = target
	}
}

// hit returns the topmost region on page containing the native point, or -1.
func (e *Editor) hit(page int, nx, ny float64) int {
	for i := len(e.regions) - 1; i >= 0; i-- {
		r := e.regions[i]
		if r.Page == page && r.Contains(nx, ny) {
			return i
		}
	}
	return -1
}

// locate resolves a pointer to a page and native coordinates inside it.
// Page bounds are half-open: the right and bottom edges are outside the page.
func (e *Editor) locate(p Pointer) (int, float64, float64, bool) {
	nx, ny := geometry.DisplayToNative(p.X, p.Y, e.scale)

	page, localY := p.Page, ny
	if p.Page > 0 {
		if p.Page > e.layout.PageCount() || ny < 0 || ny >= e.layout.PageHeight(p.Page) {
			return 0, 0, 0, false
		}
	} else {
		var ok bool
		if page, localY, ok = stitch.Locate(e.layout, ny); !ok {
			return 0, 0, 0, false
		}
	}

	// a narrower page leaves blank canvas to its right
	if nx < 0 || nx >= e.layout.PageWidth(page) {
		return 0, 0, 0, false
	}
	return page, nx, localY, true
}

// relativeTo converts a pointer to native coordinates local to page, even
// when the pointer is over another page or outside the document.
func (e *Editor) relativeTo(page int, p Pointer) (float64, float64, bool) {
	offsets := e.layout.Offsets()
	if page < 1 || page > len(offsets) {
		return 0, 0, false
	}
	nx, ny := geometry.DisplayToNative(p.X, p.Y, e.scale)

	globalY := ny
	if p.Page > 0 && p.Page <= len(offsets) {
		globalY = offsets[p.Page-1] + ny
	}
	return nx, globalY - offsets[page-1], true
}

func (e *Editor) pageSize(page int) (float64, float64) {
	return e.layout.PageWidth(page), e.layout.PageHeight(page)
}

func (e *Editor) clampPoint(page int, x, y float64) (float64, float64) {
	w, h := e.pageSize(page)
	return geometry.Clamp(x, 0, w), geometry.Clamp(y, 0, h)
}

func boundingBox(page int, x1, y1, x2, y2 float64) models.Region {
	left, right := x1, x2
	if right < left {
		left, right = right, left
	}
	top, bottom := y1, y2
	if bottom < top {
		top, bottom = bottom, top
	}
	return models.Region{Page: page, X: left, Y: top, Width: right - left, Height: bottom - top}
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
