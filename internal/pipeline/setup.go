package pipeline

import (
	"log/slog"

	"github.com/dgallion1/docintel/internal/agent"
	"github.com/dgallion1/docintel/internal/config"
	"github.com/dgallion1/docintel/internal/llm"
	"github.com/dgallion1/docintel/internal/ocr"
	"github.com/dgallion1/docintel/internal/scraper"
	"github.com/dgallion1/docintel/internal/tables"
)

// Components are the long-lived pieces built from a Config.
type Components struct {
	Batch  *Batch
	Claude *llm.ClaudeClient // nil when no enabled agent needs it
}

// Close releases client resources.
func (c *Components) Close() {
	if c.Claude != nil {
		c.Claude.Close()
	}
}

// Setup builds the OCR engine, scrapers, capability providers and agents once
// and injects them into a Batch. Missing capabilities fail here, at startup.
func Setup(cfg config.Config, log *slog.Logger) (*Components, error) {
	if log == nil {
		log = slog.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	opts := scraper.Options{TempRoot: cfg.TempImageDir, Logger: log}
	if cfg.OCREnabled {
		opts.OCR = ocr.NewTesseract(ocr.Config{
			Tesseract:   cfg.TesseractBin,
			Lang:        cfg.TesseractLang,
			TessdataDir: cfg.TessdataPrefix,
		}, log)
	} else {
		log.Warn("ocr disabled; image documents will fail and pdf images are not recognized")
	}
	router := scraper.NewRouter(opts)

	var comps Components
	var providers agent.Providers
	if cfg.NeedsLLM() {
		comps.Claude = llm.NewClaudeClient(llm.Config{
			APIKey:  cfg.AnthropicAPIKey,
			Model:   cfg.AnthropicModel,
			BaseURL: cfg.AnthropicBaseURL,
			Timeout: cfg.LLMTimeout,
		}, log)
		providers.Summarizer = comps.Claude
		providers.QuestionAnswerer = comps.Claude
		providers.EntityRecognizer = comps.Claude
		providers.Formula = comps.Claude
	}
	providers.Tables = tables.NewExtractor()

	agents, err := agent.Build(Toggles(cfg), providers, agent.Settings{
		Question:             cfg.QAQuestion,
		Pattern:              cfg.RegexPattern,
		SummaryMaxInputChars: cfg.SummaryMaxInputChars,
		SummaryMinWords:      cfg.SummaryMinWords,
		SummaryMaxWords:      cfg.SummaryMaxWords,
		QAMaxContextWords:    cfg.QAMaxContextWords,
	}, log)
	if err != nil {
		comps.Close()
		return nil, err
	}

	kinds := make([]agent.Kind, 0, len(agents))
	for _, a := range agents {
		kinds = append(kinds, a.Kind())
	}
	log.Info("pipeline configured", "agents", kinds, "ocr", cfg.OCREnabled, "concatenate", cfg.Concatenate)

	comps.Batch = NewBatch(router, agents, log)
	return &comps, nil
}

// Toggles maps the config switches onto agent toggles.
func Toggles(cfg config.Config) agent.Toggles {
	return agent.Toggles{
		Text:    cfg.EnableText,
		Summary: cfg.EnableSummary,
		QA:      cfg.EnableQA,
		Regex:   cfg.EnableRegex,
		NER:     cfg.EnableNER,
		Table:   cfg.EnableTable,
		Formula: cfg.EnableFormula,
	}
}

// DefaultOptions returns the run options configured by cfg.
func DefaultOptions(cfg config.Config) RunOptions {
	return RunOptions{
		InputDir:    cfg.InputDir,
		OutputDir:   cfg.OutputDir,
		Concatenate: cfg.Concatenate,
	}
}
