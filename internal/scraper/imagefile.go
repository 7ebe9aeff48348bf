package scraper

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	_ "image/jpeg"
	"image/png"
	"os"
	"strings"

	"github.com/hhrutter/tiff"
)

// savePNG decodes an embedded image and persists it as PNG at path.
// CMYK images are converted to RGB first.
func savePNG(img EmbeddedImage, path string) error {
	if img.Err != nil {
		return img.Err
	}
	decoded, err := decodeEmbedded(img)
	if err != nil {
		return err
	}
	if needsRGBConversion(decoded, img.ColorSpace) {
		decoded = toRGBA(decoded)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create image file: %w", err)
	}
	if err := png.Encode(f, decoded); err != nil {
		f.Close()
		os.Remove(path)
		return fmt.Errorf("encode png: %w", err)
	}
	return f.Close()
}

func decodeEmbedded(img EmbeddedImage) (image.Image, error) {
	r := bytes.NewReader(img.Data)
	switch strings.ToLower(img.FileType) {
	case "tif", "tiff":
		// pdfcpu writes DeviceCMYK images as CMYK TIFF; this decoder reads them.
		m, err := tiff.Decode(r)
		if err != nil {
			return nil, fmt.Errorf("decode tiff: %w", err)
		}
		return m, nil
	case "png", "jpg", "jpeg", "":
		m, _, err := image.Decode(r)
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", img.FileType, err)
		}
		return m, nil
	default:
		return nil, fmt.Errorf("unsupported embedded image type %q", img.FileType)
	}
}

func needsRGBConversion(m image.Image, colorSpace string) bool {
	if _, ok := m.(*image.CMYK); ok {
		return true
	}
	return strings.Contains(strings.ToUpper(colorSpace), "CMYK")
}

func toRGBA(m image.Image) *image.RGBA {
	b := m.Bounds()
	out := image.NewRGBA(b)
	draw.Draw(out, b, m, b.Min, draw.Src)
	return out
}
