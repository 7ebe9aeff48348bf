// Package agent holds the analysis agents that turn a scraped Record into
// typed artifacts.
//
// Agents run in a fixed dependency order. Each agent declares a precondition
// through Ready; an agent whose precondition is unmet is skipped, which is not
// an error. Capability providers are injected as small interfaces so they can
// be swapped or faked.
package agent

import (
	"context"

	"github.com/dgallion1/docintel/internal/document"
)

// Kind names one analysis capability.
type Kind string

const (
	KindText    Kind = "text"
	KindSummary Kind = "summary"
	KindQA      Kind = "qa"
	KindRegex   Kind = "regex"
	KindNER     Kind = "ner"
	KindTable   Kind = "table"
	KindFormula Kind = "formula"
)

// Order is the dependency order agents run in. Summary follows text and QA
// follows summary.
var Order = []Kind{KindText, KindSummary, KindQA, KindRegex, KindNER, KindTable, KindFormula}

// Artifact is the typed output of one agent invocation.
type Artifact interface {
	Kind() Kind
}

type ExtractedText struct{ Text string }

type Summary struct{ Text string }

type QAResult struct {
	Question string
	Answer   string
}

type RegexMatches struct{ Matches []string }

// EntityList holds person names in text order.
type EntityList struct{ Names []string }

type TableSet struct{ Tables []document.Table }

// FormulaSet holds one markup string per recognized image, in image order.
type FormulaSet struct{ Formulas []string }

func (ExtractedText) Kind() Kind { return KindText }
func (Summary) Kind() Kind       { return KindSummary }
func (QAResult) Kind() Kind      { return KindQA }
func (RegexMatches) Kind() Kind  { return KindRegex }
func (EntityList) Kind() Kind    { return KindNER }
func (TableSet) Kind() Kind      { return KindTable }
func (FormulaSet) Kind() Kind    { return KindFormula }

// Input is what agents read for one document. Text and Summary are filled in
// by the orchestrator as the text and summary agents produce artifacts.
type Input struct {
	Record  *document.Record
	Text    string
	Summary string
}

// ExtractedText returns the text agent's output when it ran, otherwise the
// record text with invalid UTF-8 dropped.
func (in *Input) ExtractedText() string {
	if in.Text != "" {
		return in.Text
	}
	if in.Record == nil {
		return ""
	}
	return in.Record.NormalizedText()
}

// Agent is one analysis capability.
type Agent interface {
	Kind() Kind
	// Ready reports whether the agent's input requirement is met.
	Ready(in *Input) bool
	Execute(ctx context.Context, in *Input) (Artifact, error)
}

// Summarizer condenses text to between minWords and maxWords words.
type Summarizer interface {
	Summarize(ctx context.Context, text string, minWords, maxWords int) (string, error)
}

// QuestionAnswerer answers question using only passage.
type QuestionAnswerer interface {
	Answer(ctx context.Context, question, passage string) (string, error)
}

// Entity is one recognized span. Group is the entity category ("PER",
// "B-PER", "ORG", ...). Start and End are byte offsets into the input, zero
// when the provider does not report them.
type Entity struct {
	Word  string `json:"word"`
	Group string `json:"group"`
	Start int    `json:"start"`
	End   int    `json:"end"`
}

// EntityRecognizer tags the named entities in text.
type EntityRecognizer interface {
	Entities(ctx context.Context, text string) ([]Entity, error)
}

// FormulaRecognizer converts an image of a formula into LaTeX markup.
type FormulaRecognizer interface {
	RecognizeFormula(ctx context.Context, imagePath string) (string, error)
}

// TableExtractor finds the tables in a PDF file.
type TableExtractor interface {
	ExtractFile(ctx context.Context, path string) ([]document.Table, error)
}

func agentErr(kind Kind, err error) error {
	return &document.AgentError{Agent: string(kind), Err: err}
}
