// Package command rebuilds the index by running an external program.
package command

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"

	"github.com/perachon/p7-puls-events-rag/internal/core/domain"
	"github.com/perachon/p7-puls-events-rag/internal/core/ports/driven"
	"github.com/perachon/p7-puls-events-rag/internal/logger"
)

// Ensure Builder implements the interface.
var _ driven.IndexBuilder = (*Builder)(nil)

// Builder runs a configured argv. A zero exit status means the program
// replaced the artifact; anything else is a failed rebuild.
type Builder struct {
	argv []string
	dir  string
	env  []string
}

// Option configures the builder.
type Option func(*Builder)

// WithDir sets the working directory of the command.
func WithDir(dir string) Option {
	return func(b *Builder) {
		b.dir = dir
	}
}

// WithEnv appends KEY=VALUE pairs to the inherited environment.
func WithEnv(env ...string) Option {
	return func(b *Builder) {
		b.env = append(b.env, env...)
	}
}

// New creates a command builder.
func New(argv []string, opts ...Option) (*Builder, error) {
	if len(argv) == 0 || argv[0] == "" {
		return nil, errors.New("command builder: empty command")
	}
	b := &Builder{argv: append([]string(nil), argv...)}
	for _, opt := range opts {
		opt(b)
	}
	return b, nil
}

// Build runs the command and captures the tail of its output.
// The exit code is reported only when the command fails.
func (b *Builder) Build(ctx context.Context) (domain.RebuildDetails, error) {
	cmd := exec.CommandContext(ctx, b.argv[0], b.argv[1:]...)
	cmd.Dir = b.dir
	if len(b.env) > 0 {
		cmd.Env = append(os.Environ(), b.env...)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	logger.Debug("Running rebuild command %q", b.argv)
	err := cmd.Run()

	details := domain.RebuildDetails{
		Stdout: domain.Tail(stdout.String(), domain.OutputTailLimit),
		Stderr: domain.Tail(stderr.String(), domain.OutputTailLimit),
	}
	if err == nil {
		return details, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		code := exitErr.ExitCode()
		details.ReturnCode = &code
		return details, fmt.Errorf("rebuild command exited with code %d", code)
	}
	return details, fmt.Errorf("rebuild command: %w", err)
}
