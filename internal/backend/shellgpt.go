package backend

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// ShellGPT turns natural-language requests into shell commands by invoking
// the shell-gpt executable.
type ShellGPT struct {
	path string
}

// NewShellGPT creates a client for the sgpt executable at path (or on PATH).
func NewShellGPT(path string) *ShellGPT {
	return &ShellGPT{path: path}
}

// Name identifies the backend in logs and metrics.
func (s *ShellGPT) Name() string { return "shellgpt" }

// Generate runs sgpt in shell mode over the prompt and returns the
// generated command text.
func (s *ShellGPT) Generate(ctx context.Context, prompt string) (string, error) {
	bin, err := exec.LookPath(s.path)
	if err != nil {
		return "", fmt.Errorf("%w: %s not found in PATH", ErrUnavailable, s.path)
	}

	cmd := exec.CommandContext(ctx, bin, "--shell", "--no-interaction", prompt)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", &ExecError{
			Backend: s.Name(),
			Detail:  strings.TrimSpace(stderr.String()),
			Err:     err,
		}
	}

	out := strings.TrimSpace(stdout.String())
	if out == "" {
		return "", &ExecError{Backend: s.Name(), Err: fmt.Errorf("empty output")}
	}
	return out, nil
}

// Available checks that the executable can be found.
func (s *ShellGPT) Available(_ context.Context) error {
	if _, err := exec.LookPath(s.path); err != nil {
		return fmt.Errorf("%w: %s not found in PATH", ErrUnavailable, s.path)
	}
	return nil
}
