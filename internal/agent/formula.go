package agent

import (
	"context"
	"log/slog"
	"strings"
)

// FormulaAgent recognizes formula markup in every persisted image. A failed
// image is logged and skipped.
type FormulaAgent struct {
	Provider FormulaRecognizer
	Log      *slog.Logger
}

func (a *FormulaAgent) Kind() Kind { return KindFormula }

func (a *FormulaAgent) Ready(in *Input) bool {
	return in.Record != nil && len(in.Record.ImagePaths) > 0
}

func (a *FormulaAgent) Execute(ctx context.Context, in *Input) (Artifact, error) {
	log := a.Log
	if log == nil {
		log = slog.Default()
	}

	formulas := []string{}
	if in.Record == nil {
		return FormulaSet{Formulas: formulas}, nil
	}
	for _, img := range in.Record.ImagePaths {
		if err := ctx.Err(); err != nil {
			return nil, agentErr(KindFormula, err)
		}
		markup, err := a.Provider.RecognizeFormula(ctx, img)
		if err != nil {
			log.Warn("formula recognition failed", "image", img, "error", err)
			continue
		}
		if markup = strings.TrimSpace(markup); markup != "" {
			formulas = append(formulas, markup)
		}
	}
	return FormulaSet{Formulas: formulas}, nil
}
