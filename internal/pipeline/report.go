package pipeline

import "github.com/dgallion1/docintel/internal/agent"

// FileState is the per-file processing state.
type FileState string

const (
	StatePending   FileState = "pending"
	StateScraped   FileState = "scraped"
	StateAnalyzed  FileState = "analyzed"
	StatePersisted FileState = "persisted"
	StateDone      FileState = "done"
	StateFailed    FileState = "failed"
)

// AgentStatus is the result of one agent for one document.
type AgentStatus string

const (
	AgentProduced AgentStatus = "produced"
	AgentSkipped  AgentStatus = "skipped"
	AgentFailed   AgentStatus = "failed"
)

// AgentOutcome records what one agent did for one document. Skipped means
// its precondition was not met, which is not an error.
type AgentOutcome struct {
	Agent  agent.Kind  `json:"agent"`
	Status AgentStatus `json:"status"`
	Error  string      `json:"error,omitempty"`
}

// FileReport is the result of processing one input file.
type FileReport struct {
	Path      string         `json:"path"`
	Name      string         `json:"name"`
	State     FileState      `json:"state"`
	Outcomes  []AgentOutcome `json:"outcomes,omitempty"`
	Artifacts []string       `json:"artifacts,omitempty"`
	Error     string         `json:"error,omitempty"`
}

func (r *FileReport) outcome(kind agent.Kind, status AgentStatus, err error) {
	o := AgentOutcome{Agent: kind, Status: status}
	if err != nil {
		o.Error = err.Error()
	}
	r.Outcomes = append(r.Outcomes, o)
}

// Outcome returns the outcome recorded for kind, if any.
func (r *FileReport) Outcome(kind agent.Kind) (AgentOutcome, bool) {
	for _, o := range r.Outcomes {
		if o.Agent == kind {
			return o, true
		}
	}
	return AgentOutcome{}, false
}
