package models

// Region is an axis-aligned rectangle in the native pixel space of one page.
// Y is measured from the top edge of the owning page, not from the top of a
// stitched canvas.
type Region struct {
	Page   int     `json:"page"`
	Index  int     `json:"index,omitempty"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

func (r Region) Right() float64 {
	return r.X + r.Width
}

func (r Region) Bottom() float64 {
	return r.Y + r.Height
}

// Contains reports whether the native point lies inside r, edges included.
func (r Region) Contains(x, y float64) bool {
	return x >= r.X && x <= r.Right() && y >= r.Y && y <= r.Bottom()
}

// SubmissionCoordinate is a region corner in PDF points with the origin at
// the bottom-left of the page.
type SubmissionCoordinate struct {
	Page int `json:"page"`
	X    int `json:"x"`
	Y    int `json:"y"`
}
