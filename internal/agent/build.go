package agent

import (
	"log/slog"

	"github.com/dgallion1/docintel/internal/document"
)

// Toggles enables each capability independently.
type Toggles struct {
	Text    bool
	Summary bool
	QA      bool
	Regex   bool
	NER     bool
	Table   bool
	Formula bool
}

// Providers are the capability implementations agents delegate to. Only the
// providers of enabled agents need to be set.
type Providers struct {
	Summarizer       Summarizer
	QuestionAnswerer QuestionAnswerer
	EntityRecognizer EntityRecognizer
	Formula          FormulaRecognizer
	Tables           TableExtractor
}

// Settings carries the per-agent tuning values.
type Settings struct {
	Question             string
	Pattern              string
	SummaryMaxInputChars int
	SummaryMinWords      int
	SummaryMaxWords      int
	QAMaxContextWords    int
}

// Build returns the enabled agents in Order. A missing provider or a bad
// pattern is reported as a *document.ConfigurationError.
func Build(t Toggles, p Providers, s Settings, log *slog.Logger) ([]Agent, error) {
	if log == nil {
		log = slog.Default()
	}
	var agents []Agent

	if t.Text {
		agents = append(agents, TextAgent{})
	}
	if t.Summary {
		if p.Summarizer == nil {
			return nil, missing("summarizer")
		}
		agents = append(agents, &SummaryAgent{
			Provider:      p.Summarizer,
			MaxInputChars: s.SummaryMaxInputChars,
			MinWords:      s.SummaryMinWords,
			MaxWords:      s.SummaryMaxWords,
		})
	}
	if t.QA {
		if p.QuestionAnswerer == nil {
			return nil, missing("question_answerer")
		}
		if s.Question == "" {
			return nil, &document.ConfigurationError{Field: "qa_question", Reason: "must not be empty"}
		}
		if !t.Summary {
			log.Warn("qa enabled without summary; qa runs only on a summary and will be skipped")
		}
		agents = append(agents, &QAAgent{
			Provider:        p.QuestionAnswerer,
			Question:        s.Question,
			MaxContextWords: s.QAMaxContextWords,
		})
	}
	if t.Regex {
		ra, err := NewRegexAgent(s.Pattern)
		if err != nil {
			return nil, err
		}
		agents = append(agents, ra)
	}
	if t.NER {
		if p.EntityRecognizer == nil {
			return nil, missing("entity_recognizer")
		}
		agents = append(agents, &NERAgent{Provider: p.EntityRecognizer})
	}
	if t.Table {
		if p.Tables == nil {
			return nil, missing("table_extractor")
		}
		agents = append(agents, &TableAgent{Extractor: p.Tables})
	}
	if t.Formula {
		if p.Formula == nil {
			return nil, missing("formula_recognizer")
		}
		agents = append(agents, &FormulaAgent{Provider: p.Formula, Log: log})
	}
	return agents, nil
}

func missing(provider string) error {
	return &document.ConfigurationError{Field: provider, Reason: "provider not configured"}
}
