package pipeline

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// RunStatus represents the state of a batch run.
type RunStatus string

const (
	RunQueued    RunStatus = "queued"
	RunRunning   RunStatus = "running"
	RunCompleted RunStatus = "completed"
	RunCancelled RunStatus = "cancelled"
	RunFailed    RunStatus = "failed"
)

// RunOptions selects the directories and concatenation for one run.
type RunOptions struct {
	InputDir    string `json:"input_dir"`
	OutputDir   string `json:"output_dir"`
	Concatenate bool   `json:"concatenate"`
}

// Run tracks the state of one batch run.
type Run struct {
	mu sync.Mutex

	ID      string
	Options RunOptions

	status     RunStatus
	err        string
	files      []FileReport
	createdAt  time.Time
	startedAt  time.Time
	finishedAt time.Time
	updatedAt  time.Time
}

func NewRun(opts RunOptions) *Run {
	now := time.Now()
	return &Run{
		ID:        uuid.NewString(),
		Options:   opts,
		status:    RunQueued,
		createdAt: now,
		updatedAt: now,
	}
}

func (r *Run) start() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.status = RunRunning
	r.startedAt = time.Now()
	r.updatedAt = r.startedAt
}

// addFile records a finished file.
func (r *Run) addFile(fr FileReport) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.files = append(r.files, fr)
	r.updatedAt = time.Now()
}

func (r *Run) finish(status RunStatus, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.status = status
	if err != nil {
		r.err = err.Error()
	}
	r.finishedAt = time.Now()
	r.updatedAt = r.finishedAt
}

// Status returns the current status.
func (r *Run) Status() RunStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.status
}

func (r *Run) lastUpdate() time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.updatedAt
}

// RunReport is a read-only, JSON-safe copy of run state.
type RunReport struct {
	ID         string       `json:"run_id"`
	Status     RunStatus    `json:"status"`
	Options    RunOptions   `json:"options"`
	Error      string       `json:"error,omitempty"`
	CreatedAt  time.Time    `json:"created_at"`
	StartedAt  *time.Time   `json:"started_at,omitempty"`
	FinishedAt *time.Time   `json:"finished_at,omitempty"`
	Files      []FileReport `json:"files"`
	Done       int          `json:"done"`
	Failed     int          `json:"failed"`
}

// Snapshot returns a JSON-safe copy of the run state.
func (r *Run) Snapshot() RunReport {
	r.mu.Lock()
	defer r.mu.Unlock()

	rep := RunReport{
		ID:        r.ID,
		Status:    r.status,
		Options:   r.Options,
		Error:     r.err,
		CreatedAt: r.createdAt,
		Files:     make([]FileReport, len(r.files)),
	}
	copy(rep.Files, r.files)
	if !r.startedAt.IsZero() {
		t := r.startedAt
		rep.StartedAt = &t
	}
	if !r.finishedAt.IsZero() {
		t := r.finishedAt
		rep.FinishedAt = &t
	}
	for _, f := range r.files {
		switch f.State {
		case StateDone:
			rep.Done++
		case StateFailed:
			rep.Failed++
		}
	}
	return rep
}

// RunStore is a thread-safe in-memory run registry with TTL eviction.
type RunStore struct {
	mu   sync.Mutex
	runs map[string]*Run
	ttl  time.Duration
}

func NewRunStore(ttl time.Duration) *RunStore {
	return &RunStore{
		runs: make(map[string]*Run),
		ttl:  ttl,
	}
}

func (s *RunStore) Put(run *Run) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs[run.ID] = run
}

func (s *RunStore) Get(id string) *Run {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.runs[id]
}

// Cleanup removes finished runs idle for longer than the TTL. Queued and
// running runs are never evicted.
func (s *RunStore) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for id, run := range s.runs {
		switch run.Status() {
		case RunQueued, RunRunning:
			continue
		}
		if now.Sub(run.lastUpdate()) > s.ttl {
			delete(s.runs, id)
		}
	}
}
