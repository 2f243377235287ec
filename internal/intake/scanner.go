package intake

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/kpauljoseph/barcodeplacer/pkg/logger"
)

type DocumentPath struct {
	AbsolutePath string
	RelativePath string
}

type DirectoryScanner struct {
	logger *logger.Logger
}

func NewScanner(log *logger.Logger) *DirectoryScanner {
	return &DirectoryScanner{logger: logger.OrDiscard(log)}
}

// FindDocuments walks dir for files with a supported extension.
func (s *DirectoryScanner) FindDocuments(ctx context.Context, dir string) ([]DocumentPath, error) {
	var docs []DocumentPath

	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err != nil {
			return fmt.Errorf("error accessing path %s: %w", path, err)
		}

		if info.IsDir() {
			s.logger.Debug("Scanning directory: %s", path)
			return nil
		}

		if !SupportedExtension(path) {
			return nil
		}

		relPath, err := filepath.Rel(dir, path)
		if err != nil {
			relPath = path
		}
		absPath, err := filepath.Abs(path)
		if err != nil {
			absPath = path
		}

		docs = append(docs, DocumentPath{AbsolutePath: absPath, RelativePath: relPath})
		s.logger.Trace("Found document (%d): %s", len(docs), relPath)
		return nil
	})

	if err != nil {
		return nil, err
	}

	if len(docs) == 0 {
		return nil, fmt.Errorf("no documents found in %s or its subdirectories", dir)
	}

	return docs, nil
}
