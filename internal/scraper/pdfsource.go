package scraper

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"

	pdflib "github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// PDFSource opens PDF files for page-wise reading.
type PDFSource interface {
	Open(path string) (PDFDocument, error)
}

// PDFDocument exposes the text layer and embedded images of each page.
// Pages are 1-based.
type PDFDocument interface {
	NumPages() int
	PageText(page int) (string, error)
	PageImages(page int) ([]EmbeddedImage, error)
	Close() error
}

// EmbeddedImage is one raster image as stored in the PDF.
type EmbeddedImage struct {
	Data       []byte
	FileType   string // "png", "jpg", "tif", ...
	ColorSpace string // e.g. "DeviceRGB", "DeviceCMYK"
	Err        error  // set when the image stream could not be read
}

// LibSource reads the text layer with ledongthuc/pdf and extracts images with pdfcpu.
type LibSource struct {
	log *slog.Logger
}

func NewLibSource(log *slog.Logger) *LibSource {
	if log == nil {
		log = slog.Default()
	}
	return &LibSource{log: log}
}

type libDocument struct {
	file   *os.File
	reader *pdflib.Reader

	images    *model.Context
	imagesErr error
}

func (s *LibSource) Open(path string) (doc PDFDocument, err error) {
	// ledongthuc/pdf panics on some malformed xref tables.
	defer func() {
		if r := recover(); r != nil {
			doc, err = nil, fmt.Errorf("open pdf: %v", r)
		}
	}()

	f, reader, err := pdflib.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}

	d := &libDocument{file: f, reader: reader}
	d.images, d.imagesErr = readImageContext(path)
	if d.imagesErr != nil {
		s.log.Warn("pdf image layer unavailable", "path", path, "error", d.imagesErr)
	}
	return d, nil
}

func readImageContext(path string) (*model.Context, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	conf := model.NewDefaultConfiguration()
	ctx, err := api.ReadValidateAndOptimize(f, conf)
	if err != nil {
		return nil, fmt.Errorf("pdfcpu read: %w", err)
	}
	return ctx, nil
}

func (d *libDocument) NumPages() int {
	return d.reader.NumPage()
}

func (d *libDocument) PageText(page int) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("page %d text: %v", page, r)
		}
	}()
	p := d.reader.Page(page)
	if p.V.IsNull() {
		return "", nil
	}
	return p.GetPlainText(nil)
}

// PageImages returns the page's images ordered by object number, which is
// the order pdfcpu discovers them in the page resources.
func (d *libDocument) PageImages(page int) ([]EmbeddedImage, error) {
	if d.imagesErr != nil {
		return nil, d.imagesErr
	}
	// Rendered images carry no color space, so read it from the stubs first.
	stubs, err := pdfcpu.ExtractPageImages(d.images, page, true)
	if err != nil {
		return nil, fmt.Errorf("page %d image dicts: %w", page, err)
	}
	byObj, err := pdfcpu.ExtractPageImages(d.images, page, false)
	if err != nil {
		return nil, fmt.Errorf("page %d images: %w", page, err)
	}

	objNrs := make([]int, 0, len(byObj))
	for nr := range byObj {
		objNrs = append(objNrs, nr)
	}
	sort.Ints(objNrs)

	out := make([]EmbeddedImage, 0, len(objNrs))
	for _, nr := range objNrs {
		img := byObj[nr]
		if img.Reader == nil || img.Thumb {
			continue
		}
		data, err := io.ReadAll(img.Reader)
		if err != nil {
			err = fmt.Errorf("image object %d: %w", nr, err)
		}
		out = append(out, EmbeddedImage{
			Data:       data,
			FileType:   img.FileType,
			ColorSpace: stubs[nr].Cs,
			Err:        err,
		})
	}
	return out, nil
}

func (d *libDocument) Close() error {
	return d.file.Close()
}
