// Package intake validates selected files before they are rasterized.
package intake

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/kpauljoseph/barcodeplacer/internal/pdf"
	"github.com/kpauljoseph/barcodeplacer/pkg/models"
)

var supported = []struct {
	mime       string
	kind       models.DocumentKind
	extensions []string
}{
	{"application/pdf", models.KindPDF, []string{".pdf"}},
	{"image/png", models.KindImage, []string{".png"}},
	{"image/jpeg", models.KindImage, []string{".jpg", ".jpeg"}},
	{"image/gif", models.KindImage, []string{".gif"}},
	{"image/bmp", models.KindImage, []string{".bmp"}},
	{"image/tiff", models.KindImage, []string{".tif", ".tiff"}},
	{"image/webp", models.KindImage, []string{".webp"}},
}

// SupportedExtension reports whether path has an extension we can open.
func SupportedExtension(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, s := range supported {
		for _, e := range s.extensions {
			if e == ext {
				return true
			}
		}
	}
	return false
}

// Open reads and validates a file from disk.
func Open(path string) (models.SourceFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return models.SourceFile{}, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return FromBytes(filepath.Base(path), data)
}

// FromBytes sniffs the content and classifies it. The sniffed type decides;
// a misleading extension does not make a file acceptable.
func FromBytes(name string, data []byte) (models.SourceFile, error) {
	if len(data) == 0 {
		return models.SourceFile{}, fmt.Errorf("%w: %s is empty", pdf.ErrUnsupportedFormat, name)
	}

	detected := mimetype.Detect(data)
	for _, s := range supported {
		if detected.Is(s.mime) {
			return models.SourceFile{
				Name:     name,
				MIMEType: s.mime,
				Kind:     s.kind,
				Data:     data,
			}, nil
		}
	}
	return models.SourceFile{}, fmt.Errorf("%w: %s is %s", pdf.ErrUnsupportedFormat, name, detected.String())
}
