package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/kpauljoseph/barcodeplacer/internal/intake"
	"github.com/kpauljoseph/barcodeplacer/internal/pdf"
	"github.com/kpauljoseph/barcodeplacer/internal/raster"
	"github.com/kpauljoseph/barcodeplacer/pkg/utils"
)

func main() {
	scale := flag.Float64("scale", pdf.DefaultRenderScale, "render scale")
	outDir := flag.String("out", "", "directory for page images (default: a new temp dir)")
	flag.Parse()

	if flag.NArg() != 2 {
		fmt.Println("Usage: debug_pdf [-scale 2] [-out dir] file1 file2")
		os.Exit(1)
	}

	dir := *outDir
	if dir == "" {
		dir = utils.GetDefaultOutputDir()
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		fmt.Printf("Error creating output dir: %v\n", err)
		os.Exit(1)
	}

	rasterizer, err := pdf.NewRasterizer(pdf.NewFitzDecoder(), *scale, nil)
	if err != nil {
		fmt.Printf("Error initializing rasterizer: %v\n", err)
		os.Exit(1)
	}

	docs := make([]*pdf.Document, 2)
	for i, path := range flag.Args() {
		file, err := intake.Open(path)
		if err != nil {
			fmt.Printf("Error opening %s: %v\n", path, err)
			os.Exit(1)
		}
		doc, err := rasterizer.Rasterize(context.Background(), file, *scale)
		if err != nil {
			fmt.Printf("Error rendering %s: %v\n", path, err)
			os.Exit(1)
		}
		defer doc.Release()
		docs[i] = doc
	}

	fmt.Printf("\nBasic Properties:\n")
	for i, doc := range docs {
		fmt.Printf("File %d: %s, %s, %d pages at %.0f dpi\n", i+1, doc.Name(), doc.Kind(), doc.PageCount(), doc.RenderDPI())
	}

	maxPages := docs[0].PageCount()
	if docs[1].PageCount() < maxPages {
		maxPages = docs[1].PageCount()
	}

	for page := 1; page <= maxPages; page++ {
		fmt.Printf("\nAnalyzing Page %d:\n", page)

		hashes := make([]string, 2)
		for i, doc := range docs {
			surface, _ := doc.Page(page)
			fmt.Printf("File %d dimensions: %d x %d px\n", i+1, surface.Width(), surface.Height())

			path := filepath.Join(dir, fmt.Sprintf("page%d_file%d.png", page, i+1))
			if err := savePNG(path, surface); err != nil {
				fmt.Printf("Error saving %s: %v\n", path, err)
				continue
			}
			fmt.Printf("File %d image: %s\n", i+1, path)

			hash, err := pageHash(surface)
			if err != nil {
				fmt.Printf("Error hashing page %d of file %d: %v\n", page, i+1, err)
				continue
			}
			hashes[i] = hash
		}

		fmt.Printf("\nImage comparison:\n")
		fmt.Printf("File 1 hash: %s\n", hashes[0])
		fmt.Printf("File 2 hash: %s\n", hashes[1])
		fmt.Printf("Hashes match: %v\n", hashes[0] != "" && hashes[0] == hashes[1])
	}
}

func savePNG(path string, s raster.Surface) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return raster.EncodePNG(f, s)
}

func pageHash(s raster.Surface) (string, error) {
	if s == nil || s.Released() {
		return "", fmt.Errorf("page has been released")
	}
	return utils.GenerateImageHash(s.Image())
}
