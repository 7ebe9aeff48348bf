package scraper

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/dgallion1/docintel/internal/document"
	"github.com/dgallion1/docintel/internal/ocr"
)

// Scraper converts a raw file into a normalized Record.
type Scraper interface {
	Scrape(ctx context.Context, path string) (*document.Record, error)
}

// SupportedExtensions maps every routable extension to its format.
var SupportedExtensions = map[string]document.Format{
	".pdf":  document.FormatPDF,
	".docx": document.FormatDOCX,
	".png":  document.FormatImage,
	".jpg":  document.FormatImage,
	".jpeg": document.FormatImage,
	".xlsx": document.FormatXLSX,
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	_, ok := SupportedExtensions[strings.ToLower(filepath.Ext(filename))]
	return ok
}

// Options configures the scrapers a Router dispatches to.
type Options struct {
	// OCR is optional. Without it PDFs skip image OCR and image files fail
	// with a ConfigurationError.
	OCR ocr.Engine
	// TempRoot holds one image directory per PDF document.
	TempRoot string
	// PDFSource overrides the PDF reader; nil uses ledongthuc/pdf and pdfcpu.
	PDFSource PDFSource
	Logger    *slog.Logger
}

// Router dispatches a file to its scraper by extension.
type Router struct {
	pdf   Scraper
	docx  Scraper
	image Scraper
	xlsx  Scraper
}

func NewRouter(opts Options) *Router {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.TempRoot == "" {
		opts.TempRoot = filepath.Join(os.TempDir(), "docintel-images")
	}
	if opts.PDFSource == nil {
		opts.PDFSource = NewLibSource(opts.Logger)
	}
	return &Router{
		pdf:   NewPDFScraper(opts.PDFSource, opts.OCR, opts.TempRoot, opts.Logger),
		docx:  &DOCXScraper{},
		image: NewImageScraper(opts.OCR),
		xlsx:  &XLSXScraper{},
	}
}

// Route returns the scraper for path. Dispatch looks only at the
// case-insensitive suffix, never at file contents.
func (r *Router) Route(path string) (Scraper, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch SupportedExtensions[ext] {
	case document.FormatPDF:
		return r.pdf, nil
	case document.FormatDOCX:
		return r.docx, nil
	case document.FormatImage:
		return r.image, nil
	case document.FormatXLSX:
		return r.xlsx, nil
	default:
		return nil, &document.UnsupportedFormatError{Ext: ext}
	}
}
