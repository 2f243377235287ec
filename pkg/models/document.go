package models

type PageDimensions struct {
	Width  float64
	Height float64
}

type DocumentKind int

const (
	KindUnknown DocumentKind = iota
	KindPDF
	KindImage
)

func (k DocumentKind) String() string {
	switch k {
	case KindPDF:
		return "pdf"
	case KindImage:
		return "image"
	default:
		return "unknown"
	}
}

// SourceFile is a selected file after format validation.
type SourceFile struct {
	Name     string
	MIMEType string
	Kind     DocumentKind
	Data     []byte
}
