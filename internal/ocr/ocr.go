package ocr

import (
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"log/slog"
	"os"
	"strings"

	"github.com/dgallion1/docintel/internal/document"
)

// Engine converts a raster image into text.
type Engine interface {
	RecognizeText(ctx context.Context, imagePath string) (string, error)
}

type Config struct {
	Tesseract   string // binary name or absolute path; if empty -> "tesseract"
	Lang        string // default "eng"
	TessdataDir string
	PSM         int // page segmentation mode; 0 leaves tesseract's default
}

// Tesseract runs the local tesseract CLI.
type Tesseract struct {
	cfg    Config
	runner Runner
	logger *slog.Logger
}

func NewTesseract(cfg Config, logger *slog.Logger) *Tesseract {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Tesseract == "" {
		cfg.Tesseract = "tesseract"
	}
	if cfg.Lang == "" {
		cfg.Lang = "eng"
	}
	return &Tesseract{cfg: cfg, runner: execRunner{}, logger: logger}
}

// WithRunner swaps the command runner.
func (t *Tesseract) WithRunner(r Runner) *Tesseract {
	t.runner = r
	return t
}

// RecognizeText returns the OCR output for imagePath. Undecodable images fail with
// *document.OCRError before tesseract is invoked.
func (t *Tesseract) RecognizeText(ctx context.Context, imagePath string) (string, error) {
	if err := checkDecodable(imagePath); err != nil {
		return "", &document.OCRError{Image: imagePath, Err: err}
	}

	// tesseract <file> stdout -l <lang>
	args := []string{imagePath, "stdout", "-l", t.cfg.Lang}
	if t.cfg.PSM > 0 {
		args = append(args, "--psm", fmt.Sprintf("%d", t.cfg.PSM))
	}
	if t.cfg.TessdataDir != "" {
		args = append(args, "--tessdata-dir", t.cfg.TessdataDir)
	}

	out, err := t.runner.Run(ctx, Invocation{Binary: t.cfg.Tesseract, Args: args, Image: imagePath})
	log := t.logger.With(
		"image", imagePath,
		"exit_code", out.ExitCode,
		"duration_ms", out.Elapsed.Milliseconds(),
	)
	if err != nil {
		msg := truncate(strings.TrimSpace(string(out.Stderr)), 512)
		log.Error("tesseract failed", "error", err, "stderr", msg)
		if msg != "" {
			err = fmt.Errorf("tesseract: %w: %s", err, msg)
		} else {
			err = fmt.Errorf("tesseract: %w", err)
		}
		return "", &document.OCRError{Image: imagePath, Err: err}
	}
	log.Debug("ocr complete", "chars", len(out.Stdout))
	return strings.ToValidUTF8(string(out.Stdout), ""), nil
}

func checkDecodable(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if _, _, err := image.DecodeConfig(f); err != nil {
		return fmt.Errorf("decode image: %w", err)
	}
	return nil
}
