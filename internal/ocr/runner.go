package ocr

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"time"
)

// Invocation is one tesseract call for one image.
type Invocation struct {
	Binary string
	Args   []string
	Image  string
}

// Output is what the process left behind. ExitCode is -1 when it never
// started or was killed.
type Output struct {
	Stdout   []byte
	Stderr   []byte
	ExitCode int
	Elapsed  time.Duration
}

// Runner executes an Invocation. Tests swap it for a fake.
type Runner interface {
	Run(ctx context.Context, inv Invocation) (Output, error)
}

type execRunner struct{}

func (execRunner) Run(ctx context.Context, inv Invocation) (Output, error) {
	cmd := exec.CommandContext(ctx, inv.Binary, inv.Args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	out := Output{
		Stdout:  stdout.Bytes(),
		Stderr:  stderr.Bytes(),
		Elapsed: time.Since(start),
	}
	if err != nil {
		out.ExitCode = -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			out.ExitCode = exitErr.ExitCode()
		}
	}
	return out, err
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "...(truncated)"
}
