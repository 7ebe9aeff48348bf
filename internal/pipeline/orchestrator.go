package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

// ErrRunInProgress is returned by Submit while another run is active.
var ErrRunInProgress = errors.New("a batch run is already in progress")

// Orchestrator runs batches in the background for the API, one at a time.
type Orchestrator struct {
	batch    *Batch
	runs     *RunStore
	log      *slog.Logger
	defaults RunOptions

	mu      sync.Mutex
	current *Run

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewOrchestrator creates the orchestrator. defaults fills in empty fields of
// submitted run options.
func NewOrchestrator(batch *Batch, defaults RunOptions, runTTL time.Duration, log *slog.Logger) *Orchestrator {
	if log == nil {
		log = slog.Default()
	}
	if runTTL <= 0 {
		runTTL = time.Hour
	}
	return &Orchestrator{
		batch:    batch,
		runs:     NewRunStore(runTTL),
		log:      log,
		defaults: defaults,
	}
}

// Start launches the run store cleanup loop.
func (o *Orchestrator) Start(ctx context.Context) {
	o.ctx, o.cancel = context.WithCancel(ctx)

	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-o.ctx.Done():
				return
			case <-ticker.C:
				o.runs.Cleanup()
			}
		}
	}()
}

// Stop cancels the active run and waits for it to wind down.
func (o *Orchestrator) Stop() {
	if o.cancel != nil {
		o.cancel()
	}
	o.wg.Wait()
}

// Submit starts a run asynchronously. Runs are strictly sequential: while one
// is active Submit fails with ErrRunInProgress.
func (o *Orchestrator) Submit(opts RunOptions) (*Run, error) {
	if opts.InputDir == "" {
		opts.InputDir = o.defaults.InputDir
	}
	if opts.OutputDir == "" {
		opts.OutputDir = o.defaults.OutputDir
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	if o.current != nil {
		return nil, ErrRunInProgress
	}
	ctx := o.ctx
	if ctx == nil {
		return nil, errors.New("orchestrator not started")
	}

	run := NewRun(opts)
	o.runs.Put(run)
	o.current = run

	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		defer func() {
			o.mu.Lock()
			o.current = nil
			o.mu.Unlock()
		}()
		if err := o.batch.Run(ctx, run); err != nil {
			o.log.Error("batch run ended with error", "run_id", run.ID, "error", err)
		}
	}()
	return run, nil
}

// GetRun returns a run by ID.
func (o *Orchestrator) GetRun(id string) *Run {
	return o.runs.Get(id)
}

// Active reports whether a run is in progress.
func (o *Orchestrator) Active() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.current != nil
}
