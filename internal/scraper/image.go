package scraper

import (
	"context"

	"github.com/dgallion1/docintel/internal/document"
	"github.com/dgallion1/docintel/internal/ocr"
)

// ImageScraper OCRs a single raster image file.
type ImageScraper struct {
	ocr ocr.Engine
}

func NewImageScraper(engine ocr.Engine) *ImageScraper {
	return &ImageScraper{ocr: engine}
}

// Scrape never sets TempDir: the input image is not owned by the pipeline.
func (s *ImageScraper) Scrape(ctx context.Context, path string) (*document.Record, error) {
	if s.ocr == nil {
		return nil, &document.ConfigurationError{Field: "ocr", Reason: "no OCR engine configured for image scraping"}
	}
	text, err := s.ocr.RecognizeText(ctx, path)
	if err != nil {
		return nil, err
	}
	return &document.Record{
		Text:       text,
		SourcePath: path,
		Format:     document.FormatImage,
		ImagePaths: []string{path},
	}, nil
}
