package agent

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/dgallion1/docintel/internal/document"
)

// RegexAgent lists every non-overlapping match of a pattern in text order.
type RegexAgent struct {
	re *regexp.Regexp
}

// NewRegexAgent compiles pattern up front so a malformed pattern fails at
// startup instead of per document.
func NewRegexAgent(pattern string) (*RegexAgent, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, &document.ConfigurationError{Field: "regex_pattern", Reason: err.Error()}
	}
	return &RegexAgent{re: re}, nil
}

func (a *RegexAgent) Kind() Kind        { return KindRegex }
func (a *RegexAgent) Ready(*Input) bool { return true }

func (a *RegexAgent) Execute(_ context.Context, in *Input) (Artifact, error) {
	matches := a.re.FindAllString(in.ExtractedText(), -1)
	if matches == nil {
		matches = []string{}
	}
	return RegexMatches{Matches: matches}, nil
}

// NERAgent extracts person names.
type NERAgent struct {
	Provider EntityRecognizer
}

func (a *NERAgent) Kind() Kind        { return KindNER }
func (a *NERAgent) Ready(*Input) bool { return true }

func (a *NERAgent) Execute(ctx context.Context, in *Input) (Artifact, error) {
	text := in.ExtractedText()
	if strings.TrimSpace(text) == "" {
		return EntityList{Names: []string{}}, nil
	}
	ents, err := a.Provider.Entities(ctx, text)
	if err != nil {
		return nil, agentErr(KindNER, err)
	}
	return EntityList{Names: PersonNames(ents)}, nil
}

// PersonNames keeps PERSON entities and merges adjacent pieces of one name.
// A piece continues the previous name if it is a "##" subword, if its offsets
// touch the previous piece, or if it is tagged I-PER. A non-person entity
// between two pieces ends the name.
func PersonNames(ents []Entity) []string {
	names := []string{}
	var cur *Entity
	flush := func() {
		if cur != nil {
			if w := strings.TrimSpace(cur.Word); w != "" {
				names = append(names, w)
			}
			cur = nil
		}
	}

	for _, e := range ents {
		prefix, group := splitGroup(e.Group)
		if group != "PER" && group != "PERSON" {
			flush()
			continue
		}
		if cur == nil {
			piece := e
			piece.Word = strings.TrimPrefix(piece.Word, "##")
			cur = &piece
			continue
		}
		switch {
		case strings.HasPrefix(e.Word, "##"):
			cur.Word += strings.TrimPrefix(e.Word, "##")
			cur.End = e.End
		case e.End > 0 && e.Start == cur.End:
			cur.Word += e.Word
			cur.End = e.End
		case prefix == "I":
			cur.Word += " " + e.Word
			cur.End = e.End
		default:
			flush()
			piece := e
			cur = &piece
		}
	}
	flush()
	return names
}

// splitGroup separates an IOB prefix from the category: "B-PER" -> ("B", "PER").
func splitGroup(g string) (prefix, group string) {
	g = strings.ToUpper(strings.TrimSpace(g))
	if len(g) > 2 && g[1] == '-' && (g[0] == 'B' || g[0] == 'I') {
		return g[:1], g[2:]
	}
	return "", g
}

// TableAgent extracts tables from the source PDF.
type TableAgent struct {
	Extractor TableExtractor
}

// ErrNotPDF is returned when table extraction runs on a non-PDF source.
var ErrNotPDF = fmt.Errorf("table extraction requires a %s source", ".pdf")

func (a *TableAgent) Kind() Kind { return KindTable }

func (a *TableAgent) Ready(in *Input) bool {
	return in.Record != nil && isPDF(in.Record.SourcePath)
}

func (a *TableAgent) Execute(ctx context.Context, in *Input) (Artifact, error) {
	if in.Record == nil || !isPDF(in.Record.SourcePath) {
		return nil, agentErr(KindTable, ErrNotPDF)
	}
	tables, err := a.Extractor.ExtractFile(ctx, in.Record.SourcePath)
	if err != nil {
		return nil, agentErr(KindTable, err)
	}
	if tables == nil {
		tables = []document.Table{}
	}
	return TableSet{Tables: tables}, nil
}

func isPDF(path string) bool {
	return strings.HasSuffix(strings.ToLower(path), ".pdf")
}
