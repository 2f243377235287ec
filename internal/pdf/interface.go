package pdf

import (
	"image"
)

// Capability is the answer to "can this decoder handle that format".
type Capability int

const (
	CapabilityUnknown Capability = iota
	CapabilitySupported
	CapabilityUnsupported
)

func (c Capability) String() string {
	switch c {
	case CapabilitySupported:
		return "supported"
	case CapabilityUnsupported:
		return "unsupported"
	default:
		return "unknown"
	}
}

// Decoder is the PDF decoding capability handed to the Rasterizer at
// construction time.
type Decoder interface {
	Supports(mimeType string) Capability
	Open(data []byte) (Source, error)
}

// Source is an opened PDF. Page numbers are 1-based.
type Source interface {
	NumPage() int
	// Bound returns the page box in points.
	Bound(page int) (image.Rectangle, error)
	Render(page int, dpi float64) (*image.RGBA, error)
	Close() error
}
