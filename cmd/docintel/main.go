package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/dgallion1/docintel/internal/config"
	"github.com/dgallion1/docintel/internal/pipeline"
)

func main() {
	os.Exit(run())
}

// run returns the process exit code so deferred cleanup runs before exit.
func run() int {
	var (
		configFile  = flag.String("config", "", "YAML config file overlaid on the environment")
		input       = flag.String("input", "", "input directory (overrides INPUT_DIR)")
		out         = flag.String("output", "", "output directory or afs URL (overrides OUTPUT_DIR)")
		concatenate = flag.Bool("concatenate", false, "write all extracted text to "+pipeline.ConcatenatedFile)
		text        = flag.Bool("text", true, "write extracted text")
		summary     = flag.Bool("summary", true, "summarize documents")
		qa          = flag.Bool("qa", true, "answer the QA question from the summary")
		regex       = flag.Bool("regex", true, "collect regex matches")
		ner         = flag.Bool("ner", true, "extract person names")
		table       = flag.Bool("table", true, "extract tables from PDFs")
		formula     = flag.Bool("formula", false, "recognize formulas in PDF images")
		question    = flag.String("question", "", "QA question (overrides QA_QUESTION)")
		pattern     = flag.String("pattern", "", "regex pattern (overrides REGEX_PATTERN)")
	)
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	if *configFile != "" {
		if err := cfg.ApplyFile(*configFile); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
	}

	// Only flags given on the command line override the loaded config.
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "input":
			cfg.InputDir = *input
		case "output":
			cfg.OutputDir = *out
		case "concatenate":
			cfg.Concatenate = *concatenate
		case "text":
			cfg.EnableText = *text
		case "summary":
			cfg.EnableSummary = *summary
		case "qa":
			cfg.EnableQA = *qa
		case "regex":
			cfg.EnableRegex = *regex
		case "ner":
			cfg.EnableNER = *ner
		case "table":
			cfg.EnableTable = *table
		case "formula":
			cfg.EnableFormula = *formula
		case "question":
			cfg.QAQuestion = *question
		case "pattern":
			cfg.RegexPattern = *pattern
		}
	})

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(logger)

	comps, err := pipeline.Setup(cfg, logger)
	if err != nil {
		logger.Error("invalid configuration", "error", err)
		return 1
	}
	defer comps.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	batchRun := pipeline.NewRun(pipeline.DefaultOptions(cfg))
	runErr := comps.Batch.Run(ctx, batchRun)
	rep := batchRun.Snapshot()

	if comps.Claude != nil {
		logger.Info("llm latency", "model", comps.Claude.Model(), "stats", comps.Claude.Stats.Snapshot())
	}
	if runErr != nil {
		logger.Error("batch run failed", "run_id", batchRun.ID, "status", rep.Status, "error", runErr)
	}

	fmt.Printf("Processed %d documents: %d done, %d failed. Results are saved in %s\n",
		len(rep.Files), rep.Done, rep.Failed, cfg.OutputDir)
	if runErr != nil {
		return 1
	}
	return 0
}
