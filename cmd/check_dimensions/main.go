package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/kpauljoseph/barcodeplacer/internal/presets"
	"github.com/kpauljoseph/barcodeplacer/internal/stamp"
)

func main() {
	pdfPath := flag.String("file", "", "Path to PDF file")
	tolerance := flag.Float64("tolerance", presets.DimensionTolerance, "allowed difference in points when matching page presets")
	flag.Parse()

	if *pdfPath == "" {
		fmt.Println("Please provide a PDF file path using -file flag")
		os.Exit(1)
	}

	fmt.Printf("Analyzing PDF: %s\n", *pdfPath)

	f, err := os.Open(*pdfPath)
	if err != nil {
		fmt.Printf("Error opening PDF: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	dims, err := stamp.New("", nil).PageDims(f)
	if err != nil {
		fmt.Printf("Error getting page dimensions: %v\n", err)
		os.Exit(1)
	}

	for i, dim := range dims {
		fmt.Printf("\nPage %d:\n", i+1)
		fmt.Printf("Dimensions (Width x Height): %.3f x %.3f points\n", dim.Width, dim.Height)

		if p, ok := presets.Match(dim.Width, dim.Height, *tolerance); ok {
			px := p.Points()
			fmt.Printf("Page size: %s (%.0f x %.0f px at 96 dpi)\n", p.Name, p.Width, p.Height)
			if dim.Width > dim.Height && px.Width < px.Height {
				fmt.Println("Orientation: landscape")
			}
		} else {
			fmt.Println("Page size: custom")
		}
	}
}
