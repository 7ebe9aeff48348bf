package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dgallion1/docintel/internal/agent"
	"github.com/dgallion1/docintel/internal/document"
)

func TestRun_Lifecycle(t *testing.T) {
	run := NewRun(RunOptions{InputDir: "in", OutputDir: "out"})
	if run.ID == "" {
		t.Fatal("expected a run ID")
	}
	if run.Status() != RunQueued {
		t.Errorf("expected queued, got %s", run.Status())
	}

	run.start()
	run.addFile(FileReport{Name: "a.pdf", State: StateDone})
	run.addFile(FileReport{Name: "b.pdf", State: StateFailed, Error: "scrape b.pdf: corrupt"})
	run.addFile(FileReport{Name: "c.pdf", State: StateDone})
	run.finish(RunCompleted, nil)

	snap := run.Snapshot()
	if snap.Status != RunCompleted || snap.Done != 2 || snap.Failed != 1 {
		t.Errorf("snapshot: %+v", snap)
	}
	if snap.StartedAt == nil || snap.FinishedAt == nil || snap.FinishedAt.Before(*snap.StartedAt) {
		t.Errorf("timestamps: %v %v", snap.StartedAt, snap.FinishedAt)
	}

	// Snapshots are copies.
	snap.Files[0].Name = "mutated"
	if run.Snapshot().Files[0].Name != "a.pdf" {
		t.Error("snapshot must not alias run state")
	}
}

func TestRun_FinishRecordsError(t *testing.T) {
	run := NewRun(RunOptions{})
	run.finish(RunFailed, errors.New("list input dir: no such file"))
	if snap := run.Snapshot(); snap.Error == "" || snap.Status != RunFailed {
		t.Errorf("snapshot: %+v", snap)
	}
}

func TestRunIDsUnique(t *testing.T) {
	seen := map[string]bool{}
	for range 100 {
		id := NewRun(RunOptions{}).ID
		if seen[id] {
			t.Fatalf("duplicate id %s", id)
		}
		seen[id] = true
	}
}

func TestRunStore_PutGet(t *testing.T) {
	store := NewRunStore(time.Hour)
	run := NewRun(RunOptions{})
	store.Put(run)

	if got := store.Get(run.ID); got != run {
		t.Fatal("expected to get run back")
	}
	if store.Get("nonexistent") != nil {
		t.Error("expected nil for missing run")
	}
}

func TestRunStore_TTLCleanup(t *testing.T) {
	store := NewRunStore(50 * time.Millisecond)

	finished := NewRun(RunOptions{})
	finished.finish(RunCompleted, nil)
	running := NewRun(RunOptions{})
	running.start()
	store.Put(finished)
	store.Put(running)

	time.Sleep(100 * time.Millisecond)

	fresh := NewRun(RunOptions{})
	fresh.finish(RunCompleted, nil)
	store.Put(fresh)

	store.Cleanup()

	if store.Get(finished.ID) != nil {
		t.Error("expected expired run to be cleaned up")
	}
	if store.Get(running.ID) == nil {
		t.Error("running runs are never evicted")
	}
	if store.Get(fresh.ID) == nil {
		t.Error("expected fresh run to survive cleanup")
	}
}

// blockingScraper holds each Scrape until release is closed.
type blockingScraper struct {
	started chan struct{}
	release chan struct{}
}

func (s *blockingScraper) Scrape(ctx context.Context, path string) (*document.Record, error) {
	s.started <- struct{}{}
	select {
	case <-s.release:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return &document.Record{Text: "done", SourcePath: path, Format: document.FormatDOCX}, nil
}

func waitStatus(t *testing.T, run *Run, want RunStatus) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if run.Status() == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("run %s: status %s, want %s", run.ID, run.Status(), want)
}

func TestOrchestrator_RunsSequentially(t *testing.T) {
	in, out := t.TempDir(), t.TempDir()
	touch(t, in, "a.docx")

	bs := &blockingScraper{started: make(chan struct{}, 1), release: make(chan struct{})}
	agents, _ := agent.Build(agent.Toggles{Text: true}, agent.Providers{}, agent.Settings{}, nil)
	o := NewOrchestrator(NewBatch(stubRouter{bs}, agents, nil), RunOptions{InputDir: in, OutputDir: out}, time.Hour, nil)
	o.Start(context.Background())
	defer o.Stop()

	first, err := o.Submit(RunOptions{})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	<-bs.started
	if !o.Active() {
		t.Error("expected an active run")
	}
	if _, err := o.Submit(RunOptions{}); !errors.Is(err, ErrRunInProgress) {
		t.Fatalf("expected ErrRunInProgress, got %v", err)
	}

	close(bs.release)
	waitStatus(t, first, RunCompleted)
	if got := o.GetRun(first.ID); got != first {
		t.Error("run should be retrievable by ID")
	}
	if first.Options.InputDir != in {
		t.Errorf("defaults not applied: %+v", first.Options)
	}

	deadline := time.Now().Add(5 * time.Second)
	for o.Active() && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	second, err := o.Submit(RunOptions{})
	if err != nil {
		t.Fatalf("second submit after completion: %v", err)
	}
	<-bs.started
	waitStatus(t, second, RunCompleted)
}

func TestOrchestrator_StopCancelsRun(t *testing.T) {
	in, out := t.TempDir(), t.TempDir()
	touch(t, in, "a.docx", "b.docx")

	bs := &blockingScraper{started: make(chan struct{}, 2), release: make(chan struct{})}
	o := NewOrchestrator(NewBatch(stubRouter{bs}, nil, nil), RunOptions{InputDir: in, OutputDir: out}, time.Hour, nil)
	o.Start(context.Background())

	run, err := o.Submit(RunOptions{})
	if err != nil {
		t.Fatal(err)
	}
	<-bs.started
	o.Stop()

	if run.Status() != RunCancelled {
		t.Errorf("expected cancelled, got %s", run.Status())
	}
	if snap := run.Snapshot(); len(snap.Files) != 1 || snap.Files[0].State != StateFailed {
		t.Errorf("expected single interrupted file, got %+v", snap.Files)
	}
}

func TestOrchestrator_SubmitBeforeStart(t *testing.T) {
	o := NewOrchestrator(NewBatch(stubRouter{&stubScraper{}}, nil, nil), RunOptions{}, time.Hour, nil)
	if _, err := o.Submit(RunOptions{InputDir: "in", OutputDir: "out"}); err == nil {
		t.Fatal("expected error before Start")
	}
}
