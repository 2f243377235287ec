// Package submission converts placed regions into the coordinates the
// upload API expects.
package submission

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/kpauljoseph/barcodeplacer/internal/geometry"
	"github.com/kpauljoseph/barcodeplacer/pkg/logger"
	"github.com/kpauljoseph/barcodeplacer/pkg/models"
	"github.com/kpauljoseph/barcodeplacer/pkg/utils"
)

var ErrIncompleteSubmission = errors.New("incomplete submission")

// IncompleteError names the pages still missing a region.
type IncompleteError struct {
	Missing []int
}

func (e *IncompleteError) Error() string {
	pages := make([]string, len(e.Missing))
	for i, p := range e.Missing {
		pages[i] = strconv.Itoa(p)
	}
	return fmt.Sprintf("%v: no region placed on page(s) %s", ErrIncompleteSubmission, strings.Join(pages, ", "))
}

func (e *IncompleteError) Is(target error) bool {
	return target == ErrIncompleteSubmission
}

// Policy decides which pages must carry a region.
type Policy int

const (
	RequireAny Policy = iota
	RequireEvery
)

func (p Policy) String() string {
	if p == RequireEvery {
		return "every"
	}
	return "any"
}

func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "any":
		return RequireAny, nil
	case "every", "all":
		return RequireEvery, nil
	default:
		return RequireAny, fmt.Errorf("unknown submission policy %q", s)
	}
}

// Geometry is the page information needed to convert native pixels to points.
type Geometry interface {
	PageCount() int
	PageHeight(page int) float64
	RenderDPI() float64
}

type FileRef struct {
	Name     string `json:"name"`
	MIMEType string `json:"mime_type"`
	Size     int    `json:"size"`
	SHA256   string `json:"sha256"`
}

func FileRefFrom(file models.SourceFile) FileRef {
	return FileRef{
		Name:     file.Name,
		MIMEType: file.MIMEType,
		Size:     len(file.Data),
		SHA256:   utils.HashBytes(file.Data),
	}
}

type Payload struct {
	File        FileRef                       `json:"file"`
	Coordinates []models.SubmissionCoordinate `json:"coordinates"`
}

// CoordinatesJSON is the per-page coordinate array sent as one form field.
func (p *Payload) CoordinatesJSON() ([]byte, error) {
	coords := p.Coordinates
	if coords == nil {
		coords = []models.SubmissionCoordinate{}
	}
	return json.Marshal(coords)
}

type Assembler struct {
	policy Policy
	logger *logger.Logger
}

func NewAssembler(policy Policy, log *logger.Logger) *Assembler {
	return &Assembler{policy: policy, logger: logger.OrDiscard(log)}
}

func (a *Assembler) Policy() Policy {
	return a.policy
}

// Assemble converts regions to points, ordered by page and index. Regions
// on pages the document does not have are dropped.
func (a *Assembler) Assemble(regions []models.Region, doc Geometry, file FileRef) (*Payload, error) {
	sorted := make([]models.Region, len(regions))
	copy(sorted, regions)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Page != sorted[j].Page {
			return sorted[i].Page < sorted[j].Page
		}
		return sorted[i].Index < sorted[j].Index
	})

	covered := make(map[int]bool)
	coords := make([]models.SubmissionCoordinate, 0, len(sorted))
	for _, r := range sorted {
		if r.Page < 1 || r.Page > doc.PageCount() {
			a.logger.Warn("Dropping region on page %d: document has %d pages", r.Page, doc.PageCount())
			continue
		}
		c := geometry.ToSubmission(r, doc.PageHeight(r.Page), doc.RenderDPI())
		a.logger.Trace("Page %d region (%.1f, %.1f) px -> (%d, %d) pt", r.Page, r.X, r.Y, c.X, c.Y)
		coords = append(coords, c)
		covered[r.Page] = true
	}

	if missing := a.missingPages(covered, doc.PageCount()); len(missing) > 0 {
		return nil, &IncompleteError{Missing: missing}
	}

	a.logger.Debug("Assembled %d coordinates for %s", len(coords), file.Name)
	return &Payload{File: file, Coordinates: coords}, nil
}

func (a *Assembler) missingPages(covered map[int]bool, pageCount int) []int {
	var missing []int
	for page := 1; page <= pageCount; page++ {
		if !covered[page] {
			missing = append(missing, page)
		}
	}
	if a.policy == RequireAny && len(covered) > 0 {
		return nil
	}
	return missing
}
