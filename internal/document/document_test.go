package document

import (
	"errors"
	"fmt"
	"testing"
)

func TestRecord_NormalizedTextDropsInvalidBytes(t *testing.T) {
	r := &Record{Text: "ok\xff\xfe text"}
	if got := r.NormalizedText(); got != "ok text" {
		t.Errorf("expected %q, got %q", "ok text", got)
	}
}

func TestRecord_IsTabular(t *testing.T) {
	if (&Record{Format: FormatPDF}).IsTabular() {
		t.Error("pdf record should not be tabular")
	}
	if !(&Record{Format: FormatXLSX}).IsTabular() {
		t.Error("xlsx record should be tabular")
	}
}

func TestBaseName(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/in/report.pdf", "report"},
		{"scan.final.PNG", "scan.final"},
		{"noext", "noext"},
	}
	for _, tt := range tests {
		if got := BaseName(tt.path); got != tt.want {
			t.Errorf("BaseName(%q): expected %q, got %q", tt.path, tt.want, got)
		}
	}
}

func TestErrors_Unwrap(t *testing.T) {
	cause := errors.New("boom")
	wrapped := fmt.Errorf("outer: %w", &AgentError{Agent: "summary", Err: cause})

	var agentErr *AgentError
	if !errors.As(wrapped, &agentErr) {
		t.Fatal("expected AgentError via errors.As")
	}
	if agentErr.Agent != "summary" {
		t.Errorf("expected agent %q, got %q", "summary", agentErr.Agent)
	}
	if !errors.Is(wrapped, cause) {
		t.Error("expected cause to be reachable through Unwrap")
	}
}

func TestUnsupportedFormatError_Message(t *testing.T) {
	if got := (&UnsupportedFormatError{Ext: ".txt"}).Error(); got != "unsupported file format: .txt" {
		t.Errorf("unexpected message %q", got)
	}
	if got := (&UnsupportedFormatError{}).Error(); got != "unsupported file format: no extension" {
		t.Errorf("unexpected message %q", got)
	}
}
