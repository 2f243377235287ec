package submission

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
)

// Metadata is the exam description sent next to the file.
type Metadata struct {
	Title   string
	Subject string
}

// WriteMultipart writes the upload form body: title, subject, the
// JSON-encoded coordinates and the file itself. It returns the content type
// including the boundary.
func WriteMultipart(w io.Writer, p *Payload, meta Metadata, content io.Reader) (string, error) {
	mw := multipart.NewWriter(w)

	coords, err := p.CoordinatesJSON()
	if err != nil {
		return "", fmt.Errorf("failed to encode coordinates: %w", err)
	}

	fields := []struct{ name, value string }{
		{"title", meta.Title},
		{"subject", meta.Subject},
		{"coordinates", string(coords)},
	}
	for _, f := range fields {
		if err := mw.WriteField(f.name, f.value); err != nil {
			return "", fmt.Errorf("failed to write field %s: %w", f.name, err)
		}
	}

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, p.File.Name))
	mimeType := p.File.MIMEType
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	header.Set("Content-Type", mimeType)

	part, err := mw.CreatePart(header)
	if err != nil {
		return "", fmt.Errorf("failed to create file part: %w", err)
	}
	if _, err := io.Copy(part, content); err != nil {
		return "", fmt.Errorf("failed to write file part: %w", err)
	}

	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("failed to close multipart body: %w", err)
	}
	return mw.FormDataContentType(), nil
}
