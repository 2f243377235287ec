// Package session ties one selected file to its rendered pages, the region
// editor and the submission assembler.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/kpauljoseph/barcodeplacer/internal/config"
	"github.com/kpauljoseph/barcodeplacer/internal/editor"
	"github.com/kpauljoseph/barcodeplacer/internal/geometry"
	"github.com/kpauljoseph/barcodeplacer/internal/intake"
	"github.com/kpauljoseph/barcodeplacer/internal/pdf"
	"github.com/kpauljoseph/barcodeplacer/internal/stitch"
	"github.com/kpauljoseph/barcodeplacer/internal/submission"
	"github.com/kpauljoseph/barcodeplacer/pkg/logger"
	"github.com/kpauljoseph/barcodeplacer/pkg/models"
)

var (
	// ErrStaleResult is returned to a load that was superseded by a newer
	// one. Its document has already been released.
	ErrStaleResult = errors.New("stale rasterization result discarded")
	ErrNoDocument  = errors.New("no document loaded")
)

// view is the stitched form the editor works against.
type view interface {
	stitch.Layout
	Release()
}

type Session struct {
	mu         sync.Mutex
	rasterizer *pdf.Rasterizer
	cfg        *config.Config
	logger     *logger.Logger

	generation uint64
	cancel     context.CancelFunc

	file   models.SourceFile
	doc    *pdf.Document
	view   view
	editor *editor.Editor
	width  float64
}

func New(rasterizer *pdf.Rasterizer, cfg *config.Config, log *logger.Logger) *Session {
	if cfg == nil {
		cfg = config.Default()
	}
	return &Session{
		rasterizer: rasterizer,
		cfg:        cfg,
		logger:     logger.OrDiscard(log),
		width:      cfg.Viewport.ContainerWidth,
	}
}

// Load validates and renders the file at path.
func (s *Session) Load(ctx context.Context, path string) error {
	file, err := intake.Open(path)
	if err != nil {
		return err
	}
	return s.LoadFile(ctx, file)
}

// LoadFile renders file and makes it the current document. A load still in
// flight is cancelled; if it finishes anyway its result is released and it
// returns ErrStaleResult, so only the newest load is ever observable.
func (s *Session) LoadFile(ctx context.Context, file models.SourceFile) error {
	s.mu.Lock()
	s.generation++
	gen := s.generation
	if s.cancel != nil {
		s.cancel()
	}
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.mu.Unlock()
	defer cancel()

	s.logger.Debug("Loading %s (request %d)", file.Name, gen)
	doc, err := s.rasterizer.Rasterize(ctx, file, s.cfg.RenderScale())

	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.generation {
		if doc != nil {
			doc.Release()
		}
		s.logger.Debug("Discarding result for %s: superseded by request %d", file.Name, s.generation)
		return ErrStaleResult
	}
	s.cancel = nil

	if err != nil {
		return err
	}

	v, err := s.stitch(doc)
	if err != nil {
		doc.Release()
		return err
	}

	s.releaseLocked()
	s.file = file
	s.doc = doc
	s.view = v

	scale := geometry.ComputeScale(v.NativeWidth(), s.width)
	s.editor = editor.New(v, scale, s.cfg.EditorOptions(), s.logger)

	s.logger.Info("Loaded %s: %d page(s), %.0f px wide, display scale %.3f", file.Name, doc.PageCount(), v.NativeWidth(), scale)
	return nil
}

func (s *Session) stitch(doc *pdf.Document) (view, error) {
	if s.cfg.Render.Stitched {
		return stitch.Single(doc)
	}
	return stitch.PerPage(doc)
}

// Remove drops the current document and releases its pages. A load in
// flight is cancelled.
func (s *Session) Remove() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.generation++
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.releaseLocked()
}

func (s *Session) releaseLocked() {
	if s.view != nil {
		s.view.Release()
	}
	if s.doc != nil {
		s.doc.Release()
		s.logger.Debug("Released %s", s.doc.Name())
	}
	s.file = models.SourceFile{}
	s.doc = nil
	s.view = nil
	s.editor = nil
}

// Resize recomputes the display scale for a new container width and
// returns it.
func (s *Session) Resize(containerWidth float64) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.width = containerWidth
	if s.view == nil {
		return geometry.ComputeScale(0, containerWidth)
	}
	scale := geometry.ComputeScale(s.view.NativeWidth(), containerWidth)
	s.editor.SetScale(scale)
	return scale
}

func (s *Session) Document() (*pdf.Document, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc, s.doc != nil
}

func (s *Session) File() models.SourceFile {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.file
}

// Layout returns the stitched view: a *stitch.Canvas or a *stitch.PageSet
// depending on configuration.
func (s *Session) Layout() (stitch.Layout, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view, s.view != nil
}

// Editor returns the region editor for the current document. It is
// replaced on every load.
func (s *Session) Editor() (*editor.Editor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.editor == nil {
		return nil, ErrNoDocument
	}
	return s.editor, nil
}

// Submit converts the placed regions into an upload payload.
func (s *Session) Submit(policy submission.Policy) (*submission.Payload, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.doc == nil {
		return nil, ErrNoDocument
	}

	assembler := submission.NewAssembler(policy, s.logger)
	payload, err := assembler.Assemble(s.editor.Regions(), s.doc, submission.FileRefFrom(s.file))
	if err != nil {
		return nil, fmt.Errorf("failed to assemble %s: %w", s.file.Name, err)
	}
	return payload, nil
}
