package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"

	"github.com/dgallion1/docintel/internal/agent"
	"github.com/dgallion1/docintel/internal/document"
	"github.com/dgallion1/docintel/internal/output"
	"github.com/dgallion1/docintel/internal/scraper"
)

// ConcatenatedFile is written at the output root when concatenation is on.
const ConcatenatedFile = "concatenated_text.txt"

// Router picks the scraper for a file.
type Router interface {
	Route(path string) (scraper.Scraper, error)
}

// Batch processes every supported file of an input directory, strictly in
// listing order and one file at a time. A failing file never stops the batch.
type Batch struct {
	router Router
	agents []agent.Agent
	log    *slog.Logger
}

func NewBatch(router Router, agents []agent.Agent, log *slog.Logger) *Batch {
	if log == nil {
		log = slog.Default()
	}
	return &Batch{router: router, agents: agents, log: log}
}

// ListInputs returns the supported files of dir sorted by name. Other entries are ignored.
func ListInputs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("list input dir: %w", err)
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() || !scraper.IsSupportedExtension(e.Name()) {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	return files, nil
}

// Run processes run.Options.InputDir. It returns an error only when the batch
// cannot start or ctx is cancelled; per-file failures land in the run's file
// reports.
func (b *Batch) Run(ctx context.Context, run *Run) (err error) {
	run.start()
	defer func() {
		switch {
		case err == nil:
			run.finish(RunCompleted, nil)
		case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
			run.finish(RunCancelled, err)
		default:
			run.finish(RunFailed, err)
		}
	}()

	opts := run.Options
	log := b.log.With("run_id", run.ID)

	files, err := ListInputs(opts.InputDir)
	if err != nil {
		return err
	}
	w, err := output.NewWriter(opts.OutputDir)
	if err != nil {
		return err
	}
	log.Info("batch started", "input_dir", opts.InputDir, "output_dir", w.Root(), "files", len(files))

	var concat []string
	var runErr error
	for _, file := range files {
		if err := ctx.Err(); err != nil {
			runErr = err
			break
		}
		fr, text := b.processFile(ctx, w, file)
		if opts.Concatenate && fr.State == StateDone {
			concat = append(concat, text)
		}
		run.addFile(fr)
	}

	// Rewritten from scratch each run, also after cancellation.
	if opts.Concatenate {
		if err := w.WriteText(context.WithoutCancel(ctx), ConcatenatedFile, strings.Join(concat, "\n\n")); err != nil {
			log.Error("concatenation write failed", "error", err)
			if runErr == nil {
				runErr = err
			}
		}
	}

	snap := run.Snapshot()
	log.Info("batch finished", "files", len(snap.Files), "done", snap.Done, "failed", snap.Failed)
	return runErr
}

// tempDir is the per-document image directory. Release removes it once.
type tempDir struct {
	path string
	once sync.Once
	log  *slog.Logger
}

func (t *tempDir) Release() {
	if t.path == "" {
		return
	}
	t.once.Do(func() {
		if err := os.RemoveAll(t.path); err != nil {
			t.log.Warn("temp dir cleanup failed", "dir", t.path, "error", err)
			return
		}
		t.log.Debug("temp dir removed", "dir", t.path)
	})
}

// processFile drives one file through Pending, Scraped, Analyzed, Persisted
// and Done, or to Failed. It returns the report and the text that feeds
// concatenation.
func (b *Batch) processFile(ctx context.Context, w *output.Writer, file string) (FileReport, string) {
	name := filepath.Base(file)
	fr := FileReport{Path: file, Name: name, State: StatePending}
	log := b.log.With("file", name)
	log.Info("processing document")

	fail := func(err error) (FileReport, string) {
		fr.State = StateFailed
		fr.Error = err.Error()
		log.Error("document failed", "error", err)
		return fr, ""
	}

	s, err := b.router.Route(file)
	if err != nil {
		return fail(err)
	}
	rec, err := s.Scrape(ctx, file)
	if err != nil {
		return fail(err)
	}
	tmp := &tempDir{path: rec.TempDir, log: log}
	defer tmp.Release()
	fr.State = StateScraped
	log.Info("document scraped", "format", rec.Format, "chars", len(rec.Text), "images", len(rec.ImagePaths))

	docName := output.SanitizeName(document.BaseName(file))
	if docName == "" {
		docName = "document"
	}

	if rec.IsTabular() {
		rel := path.Join(docName, docName+"_structured.csv")
		if err := w.WriteCSV(ctx, rel, rec.Header, rec.Rows); err != nil {
			return fail(err)
		}
		fr.Artifacts = append(fr.Artifacts, rel)
		fr.State = StatePersisted
		log.Info("structured rows persisted", "rows", len(rec.Rows), "path", rel)
		fr.State = StateDone
		return fr, rec.NormalizedText()
	}

	in := &agent.Input{Record: rec}
	var artifacts []agent.Artifact
	for _, a := range b.agents {
		kind := a.Kind()
		if !a.Ready(in) {
			fr.outcome(kind, AgentSkipped, nil)
			log.Debug("agent skipped, precondition unmet", "agent", kind)
			continue
		}
		art, err := a.Execute(ctx, in)
		if err != nil {
			fr.outcome(kind, AgentFailed, err)
			log.Warn("agent failed", "agent", kind, "error", err)
			continue
		}
		switch v := art.(type) {
		case agent.ExtractedText:
			in.Text = v.Text
		case agent.Summary:
			in.Summary = v.Text
		}
		artifacts = append(artifacts, art)
		fr.outcome(kind, AgentProduced, nil)
	}
	fr.State = StateAnalyzed
	log.Info("document analyzed", "artifacts", len(artifacts))

	for _, art := range artifacts {
		written, err := persist(ctx, w, docName, art)
		if err != nil {
			return fail(err)
		}
		fr.Artifacts = append(fr.Artifacts, written...)
	}
	fr.State = StatePersisted
	log.Info("artifacts persisted", "files", len(fr.Artifacts))

	tmp.Release()
	fr.State = StateDone
	log.Info("document done")
	return fr, in.ExtractedText()
}

// persist writes one artifact and returns the paths written, relative to the output root.
func persist(ctx context.Context, w *output.Writer, docName string, art agent.Artifact) ([]string, error) {
	rel := func(name string) string { return path.Join(docName, name) }

	switch v := art.(type) {
	case agent.ExtractedText:
		p := rel("extracted_text.txt")
		return []string{p}, w.WriteText(ctx, p, v.Text)
	case agent.Summary:
		p := rel("summary.txt")
		return []string{p}, w.WriteText(ctx, p, v.Text)
	case agent.QAResult:
		p := rel("qa_result.txt")
		return []string{p}, w.WriteText(ctx, p, fmt.Sprintf("Question: %s\nAnswer: %s", v.Question, v.Answer))
	case agent.RegexMatches:
		p := rel("regex_matches.txt")
		return []string{p}, w.WriteLines(ctx, p, v.Matches)
	case agent.EntityList:
		p := rel("person_names.txt")
		return []string{p}, w.WriteLines(ctx, p, v.Names)
	case agent.TableSet:
		var paths []string
		for _, t := range v.Tables {
			p := rel(fmt.Sprintf("table_page%d_table%d.csv", t.Page, t.Index))
			if err := w.WriteCSV(ctx, p, nil, t.Rows); err != nil {
				return paths, err
			}
			paths = append(paths, p)
		}
		return paths, nil
	case agent.FormulaSet:
		if len(v.Formulas) == 0 {
			return nil, nil
		}
		p := rel(path.Join("formulas", docName+"_formulas.tex"))
		return []string{p}, w.WriteText(ctx, p, strings.Join(v.Formulas, "\n\n"))
	default:
		return nil, fmt.Errorf("no writer for artifact %s", art.Kind())
	}
}
