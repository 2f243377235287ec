package pdf

import (
	"errors"
	"fmt"
)

var (
	ErrUnsupportedFormat   = errors.New("unsupported format")
	ErrRasterizationFailed = errors.New("rasterization failed")
)

// RasterizationError wraps a decoder failure. Page is 1-based, or 0 when
// the whole document failed to open.
type RasterizationError struct {
	Page int
	Err  error
}

func (e *RasterizationError) Error() string {
	if e.Page > 0 {
		return fmt.Sprintf("rasterization failed on page %d: %v", e.Page, e.Err)
	}
	return fmt.Sprintf("rasterization failed: %v", e.Err)
}

func (e *RasterizationError) Unwrap() []error {
	return []error{ErrRasterizationFailed, e.Err}
}
