package agent

import (
	"context"
	"errors"
	"strings"
)

// TextAgent emits the record text with invalid UTF-8 dropped. It never fails.
type TextAgent struct{}

func (TextAgent) Kind() Kind        { return KindText }
func (TextAgent) Ready(*Input) bool { return true }

func (TextAgent) Execute(_ context.Context, in *Input) (Artifact, error) {
	if in.Record == nil {
		return ExtractedText{}, nil
	}
	return ExtractedText{Text: in.Record.NormalizedText()}, nil
}

// SummaryAgent summarizes the extracted text. Input beyond MaxInputChars is
// dropped before summarizing and the result is cut to MaxWords words.
type SummaryAgent struct {
	Provider      Summarizer
	MaxInputChars int
	MinWords      int
	MaxWords      int
}

func (a *SummaryAgent) Kind() Kind { return KindSummary }

func (a *SummaryAgent) Ready(in *Input) bool {
	return strings.TrimSpace(in.ExtractedText()) != ""
}

func (a *SummaryAgent) Execute(ctx context.Context, in *Input) (Artifact, error) {
	text := truncateRunes(in.ExtractedText(), a.MaxInputChars)
	summary, err := a.Provider.Summarize(ctx, text, a.MinWords, a.MaxWords)
	if err != nil {
		return nil, agentErr(KindSummary, err)
	}
	return Summary{Text: truncateWords(strings.TrimSpace(summary), a.MaxWords)}, nil
}

// QAAgent answers a fixed question against the summary, never against raw text.
type QAAgent struct {
	Provider        QuestionAnswerer
	Question        string
	MaxContextWords int
}

var errEmptyContext = errors.New("question answering needs a non-empty context")

func (a *QAAgent) Kind() Kind { return KindQA }

func (a *QAAgent) Ready(in *Input) bool {
	return strings.TrimSpace(in.Summary) != ""
}

func (a *QAAgent) Execute(ctx context.Context, in *Input) (Artifact, error) {
	passage := truncateWords(in.Summary, a.MaxContextWords)
	if strings.TrimSpace(passage) == "" {
		return nil, agentErr(KindQA, errEmptyContext)
	}
	answer, err := a.Provider.Answer(ctx, a.Question, passage)
	if err != nil {
		return nil, agentErr(KindQA, err)
	}
	return QAResult{Question: a.Question, Answer: strings.TrimSpace(answer)}, nil
}

// truncateRunes keeps the first n runes of s; n <= 0 keeps everything.
func truncateRunes(s string, n int) string {
	if n <= 0 {
		return s
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}

// truncateWords keeps the first n whitespace-separated words of s joined by
// single spaces; n <= 0 keeps everything.
func truncateWords(s string, n int) string {
	if n <= 0 {
		return s
	}
	words := strings.Fields(s)
	if len(words) <= n {
		return s
	}
	return strings.Join(words[:n], " ")
}
