package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"image/png"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/kpauljoseph/barcodeplacer/internal/config"
	"github.com/kpauljoseph/barcodeplacer/internal/editor"
	"github.com/kpauljoseph/barcodeplacer/internal/intake"
	"github.com/kpauljoseph/barcodeplacer/internal/pdf"
	"github.com/kpauljoseph/barcodeplacer/internal/presets"
	"github.com/kpauljoseph/barcodeplacer/internal/session"
	"github.com/kpauljoseph/barcodeplacer/internal/stamp"
	"github.com/kpauljoseph/barcodeplacer/internal/stitch"
	"github.com/kpauljoseph/barcodeplacer/internal/submission"
	"github.com/kpauljoseph/barcodeplacer/pkg/logger"
	"github.com/kpauljoseph/barcodeplacer/pkg/models"
	"github.com/kpauljoseph/barcodeplacer/pkg/version"
)

// gesture is one pointer interaction given on the command line, in display
// pixels. Page 0 means Y is measured down the stitched document.
type gesture struct {
	from, to   editor.Pointer
	isDragging bool
}

type gestureList []gesture

func (g *gestureList) String() string {
	return fmt.Sprintf("%d gesture(s)", len(*g))
}

// Set parses "page:x:y" for a click or "page:x1:y1:x2:y2" for a drag.
func (g *gestureList) Set(value string) error {
	parts := strings.Split(value, ":")
	if len(parts) != 3 && len(parts) != 5 {
		return fmt.Errorf("expected page:x:y or page:x1:y1:x2:y2, got %q", value)
	}

	page, err := strconv.Atoi(parts[0])
	if err != nil || page < 0 {
		return fmt.Errorf("invalid page in %q", value)
	}

	nums := make([]float64, len(parts)-1)
	for i, p := range parts[1:] {
		n, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return fmt.Errorf("invalid coordinate %q in %q", p, value)
		}
		nums[i] = n
	}

	ge := gesture{from: editor.Pointer{X: nums[0], Y: nums[1], Page: page}}
	ge.to = ge.from
	if len(nums) == 4 {
		ge.to = editor.Pointer{X: nums[2], Y: nums[3], Page: page}
		ge.isDragging = true
	}
	*g = append(*g, ge)
	return nil
}

func main() {
	var gestures gestureList

	configPath := flag.String("config", "config.yaml", "path to config file")
	filePath := flag.String("file", "", "PDF or image to place regions on")
	dir := flag.String("dir", "", "list every supported document in a directory instead of placing regions")
	placeholder := flag.String("placeholder", "", "use a blank document of this page preset when no file is given")
	pages := flag.Int("pages", 1, "page count for the placeholder document")
	mode := flag.String("mode", "", "editor mode: barcode or answer-box (overrides config)")
	containerWidth := flag.Float64("container-width", 0, "display width in pixels (overrides config)")
	policy := flag.String("policy", "", "submission policy: any or every (overrides config)")
	stitched := flag.Bool("stitched", false, "render pages onto one canvas")
	outPath := flag.String("out", "", "write the submission payload as JSON to this file instead of stdout")
	formPath := flag.String("form", "", "write the multipart upload body to this file")
	title := flag.String("title", "", "exam title for the upload form")
	subject := flag.String("subject", "", "exam subject for the upload form")
	stampPath := flag.String("stamp", "", "write a PDF preview with a marker at every coordinate")
	previewPath := flag.String("preview-png", "", "write the stitched document as PNG")
	previewWidth := flag.Int("preview-width", 0, "downsample the PNG preview to this width")
	verbose := flag.Bool("verbose", false, "enable verbose logging")
	debug := flag.Bool("debug", false, "enable debug mode with trace logging")
	showVersion := flag.Bool("version", false, "print version information and exit")
	flag.Var(&gestures, "click", "pointer gesture page:x:y or page:x1:y1:x2:y2 in display pixels (repeatable)")
	flag.Parse()

	if *showVersion {
		fmt.Print(version.GetDetailedVersionInfo())
		return
	}

	log := logger.New(logger.WithPrefix("[barcodeplacer] "))
	log.SetVerbose(*verbose)
	if *debug {
		log.SetLevel(logger.LevelTrace)
	}
	if *verbose {
		log.Debug("Verbose logging enabled")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.LoadOrDefault(*configPath)
	if err != nil {
		log.Fatal("Error loading config: %v", err)
	}
	if *mode != "" {
		cfg.Editor.Mode = *mode
	}
	if *containerWidth > 0 {
		cfg.Viewport.ContainerWidth = *containerWidth
	}
	if *policy != "" {
		cfg.Submission.Policy = *policy
	}
	if *stitched {
		cfg.Render.Stitched = true
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal("Invalid configuration: %v", err)
	}

	if *dir != "" {
		if err := listDocuments(ctx, *dir, log); err != nil {
			log.Fatal("Error scanning %s: %v", *dir, err)
		}
		return
	}

	file, err := selectFile(*filePath, *placeholder, *pages, cfg)
	if err != nil {
		log.Fatal("Error selecting file: %v", err)
	}

	rasterizer, err := pdf.NewRasterizer(pdf.NewFitzDecoder(), cfg.RenderScale(), log)
	if err != nil {
		log.Fatal("Error initializing rasterizer: %v", err)
	}

	sess := session.New(rasterizer, cfg, log)
	defer sess.Remove()

	if err := sess.LoadFile(ctx, file); err != nil {
		log.Fatal("Error loading %s: %v", file.Name, err)
	}
	scale := sess.Resize(cfg.Viewport.ContainerWidth)
	log.Debug("Display scale %.3f for container width %.0f", scale, cfg.Viewport.ContainerWidth)

	ed, err := sess.Editor()
	if err != nil {
		log.Fatal("Error starting editor: %v", err)
	}
	for _, g := range gestures {
		ed.PointerDown(g.from)
		if g.isDragging {
			ed.PointerMove(g.to)
		}
		ed.PointerUp(g.to)
	}
	for _, r := range ed.Regions() {
		log.Info("Region on page %d: %.0f,%.0f %.0fx%.0f px", r.Page, r.X, r.Y, r.Width, r.Height)
	}

	if *previewPath != "" {
		if err := writePreview(sess, *previewPath, *previewWidth); err != nil {
			log.Fatal("Error writing preview: %v", err)
		}
		log.Info("Preview saved to: %s", *previewPath)
	}

	payload, err := sess.Submit(cfg.Policy())
	if err != nil {
		if errors.Is(err, submission.ErrIncompleteSubmission) {
			log.Info("Submission blocked: %v", err)
			os.Exit(2)
		}
		log.Fatal("Error assembling submission: %v", err)
	}

	if err := writePayload(payload, *outPath); err != nil {
		log.Fatal("Error writing payload: %v", err)
	}

	if *formPath != "" {
		contentType, err := writeForm(*formPath, payload, submission.Metadata{Title: *title, Subject: *subject}, file.Data)
		if err != nil {
			log.Fatal("Error writing upload form: %v", err)
		}
		log.Info("Upload form saved to: %s (%s)", *formPath, contentType)
	}

	if *stampPath != "" {
		if file.Kind != models.KindPDF {
			log.Info("Skipping stamp preview: %s is not a PDF", file.Name)
		} else if err := writeStamped(*stampPath, file.Data, payload.Coordinates, log); err != nil {
			log.Fatal("Error stamping preview: %v", err)
		} else {
			log.Info("Stamped preview saved to: %s", *stampPath)
		}
	}
}

func selectFile(path, placeholder string, pages int, cfg *config.Config) (models.SourceFile, error) {
	if path != "" {
		return intake.Open(path)
	}

	preset := cfg.Preset()
	if placeholder != "" {
		p, ok := presets.Lookup(placeholder)
		if !ok {
			return models.SourceFile{}, fmt.Errorf("unknown page preset %q (known: %s)", placeholder, strings.Join(presets.Names(), ", "))
		}
		preset = p
	}

	var buf bytes.Buffer
	if err := presets.WritePlaceholderPDF(&buf, preset, pages); err != nil {
		return models.SourceFile{}, err
	}
	return intake.FromBytes(fmt.Sprintf("placeholder-%s.pdf", strings.ToLower(preset.Name)), buf.Bytes())
}

func listDocuments(ctx context.Context, dir string, log *logger.Logger) error {
	docs, err := intake.NewScanner(log).FindDocuments(ctx, dir)
	if err != nil {
		return err
	}

	log.Info("Found %d documents", len(docs))
	for _, d := range docs {
		file, err := intake.Open(d.AbsolutePath)
		if err != nil {
			log.Info("- %s: %v", d.RelativePath, err)
			continue
		}
		log.Info("- %s (%s, %d bytes)", d.RelativePath, file.MIMEType, len(file.Data))
	}
	return nil
}

func writePreview(sess *session.Session, path string, width int) error {
	layout, ok := sess.Layout()
	if !ok {
		return session.ErrNoDocument
	}

	canvas, ok := layout.(*stitch.Canvas)
	if !ok {
		doc, _ := sess.Document()
		single, err := stitch.Single(doc)
		if err != nil {
			return err
		}
		defer single.Release()
		canvas = single
	}

	img := canvas.Surface().Image()
	if width > 0 {
		img = canvas.Thumbnail(width)
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, img)
}

func writePayload(payload *submission.Payload, path string) error {
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	if path == "" {
		_, err = os.Stdout.Write(data)
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func writeForm(path string, payload *submission.Payload, meta submission.Metadata, content []byte) (string, error) {
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	return submission.WriteMultipart(f, payload, meta, bytes.NewReader(content))
}

func writeStamped(path string, data []byte, coords []models.SubmissionCoordinate, log *logger.Logger) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return stamp.New("", log).Preview(bytes.NewReader(data), f, coords)
}
