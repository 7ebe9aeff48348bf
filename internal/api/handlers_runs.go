package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dgallion1/docintel/internal/pipeline"
)

const maxRunBody = 64 << 10

// handleStartRun accepts an optional JSON body of run options. Empty
// directories fall back to the configured ones.
func (s *Server) handleStartRun(w http.ResponseWriter, r *http.Request) {
	var opts pipeline.RunOptions
	dec := json.NewDecoder(io.LimitReader(r.Body, maxRunBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&opts); err != nil && !errors.Is(err, io.EOF) {
		jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	run, err := s.orchestrator.Submit(opts)
	if errors.Is(err, pipeline.ErrRunInProgress) {
		jsonError(w, err.Error(), http.StatusConflict)
		return
	}
	if err != nil {
		s.log.Error("submit run failed", "error", err)
		jsonError(w, "failed to start run", http.StatusInternalServerError)
		return
	}

	s.log.Info("run submitted", "run_id", run.ID, "input_dir", run.Options.InputDir, "output_dir", run.Options.OutputDir)
	writeJSON(w, http.StatusAccepted, map[string]any{
		"run_id": run.ID,
		"status": run.Status(),
	})
}

func (s *Server) handleRunStatus(w http.ResponseWriter, r *http.Request) {
	run := s.orchestrator.GetRun(chi.URLParam(r, "runID"))
	if run == nil {
		jsonError(w, "run not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, run.Snapshot())
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	writeJSON(w, code, map[string]string{"error": msg})
}
