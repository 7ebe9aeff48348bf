package scraper

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/dgallion1/docintel/internal/document"
	"github.com/dgallion1/docintel/internal/ocr"
)

// PDFScraper reads the native text layer page by page and persists every
// embedded image under a per-document temp directory, optionally running OCR
// on each image as soon as it is saved.
type PDFScraper struct {
	source   PDFSource
	ocr      ocr.Engine
	tempRoot string
	log      *slog.Logger
}

func NewPDFScraper(source PDFSource, engine ocr.Engine, tempRoot string, log *slog.Logger) *PDFScraper {
	if log == nil {
		log = slog.Default()
	}
	return &PDFScraper{source: source, ocr: engine, tempRoot: tempRoot, log: log}
}

// Scrape returns a record whose TempDir the caller must remove once every
// agent reading ImagePaths has finished.
func (s *PDFScraper) Scrape(ctx context.Context, path string) (*document.Record, error) {
	doc, err := s.source.Open(path)
	if err != nil {
		return nil, &document.ScrapeError{Path: path, Err: err}
	}
	defer doc.Close()

	tempDir, err := s.imageDir(path)
	if err != nil {
		return nil, &document.ScrapeError{Path: path, Err: err}
	}
	if err := os.MkdirAll(tempDir, 0o755); err != nil {
		return nil, &document.ScrapeError{Path: path, Err: fmt.Errorf("create image dir: %w", err)}
	}

	log := s.log.With("file", filepath.Base(path))
	rec := &document.Record{
		SourcePath: path,
		Format:     document.FormatPDF,
		TempDir:    tempDir,
	}

	// Page order: native text first, then OCR of that page's images.
	var text strings.Builder
	numPages := doc.NumPages()
	for page := 1; page <= numPages; page++ {
		if err := ctx.Err(); err != nil {
			os.RemoveAll(tempDir)
			return nil, err
		}

		pageText, err := doc.PageText(page)
		if err != nil {
			log.Warn("page text unreadable", "page", page, "error", err)
		}
		text.WriteString(pageText)

		images, err := doc.PageImages(page)
		if err != nil {
			log.Warn("page images unreadable", "page", page, "error", err)
			continue
		}
		for idx, img := range images {
			imgPath := filepath.Join(tempDir, fmt.Sprintf("image_page%d_%d.png", page, idx))
			if err := savePNG(img, imgPath); err != nil {
				log.Warn("skipping embedded image", "page", page, "index", idx, "error", err)
				continue
			}
			rec.ImagePaths = append(rec.ImagePaths, imgPath)

			if s.ocr == nil {
				continue
			}
			ocrText, err := s.ocr.RecognizeText(ctx, imgPath)
			if err != nil {
				log.Warn("ocr failed for embedded image", "image", imgPath, "error", err)
				continue
			}
			text.WriteString(ocrText)
		}
	}

	rec.Text = strings.ToValidUTF8(text.String(), "")
	log.Info("pdf scraped", "pages", numPages, "images", len(rec.ImagePaths), "chars", len(rec.Text))
	return rec, nil
}

// imageDir returns the image directory for path. It is always a child of
// tempRoot so removing it can never take the root with it.
func (s *PDFScraper) imageDir(path string) (string, error) {
	name := document.BaseName(path)
	if name == "" || name == "." || name == ".." {
		name = "document"
	}
	dir := filepath.Join(s.tempRoot, name)
	rel, err := filepath.Rel(s.tempRoot, dir)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("image dir for %q escapes temp root", filepath.Base(path))
	}
	return dir, nil
}
