// Package steps implements the execution step runner and the concrete step
// kinds build rules assemble their work from. Steps are idempotent: rerunning
// one after a crash must converge to the same state, so steps recreate rather
// than append.
package steps

import (
	"context"
	"strings"

	"go.trai.ch/forge/internal/core/domain"
	"go.trai.ch/forge/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.StepRunner = (*Runner)(nil)

// Runner executes a rule's steps in order, aborting on the first failure.
type Runner struct {
	logger ports.Logger
}

// NewRunner creates a new Runner.
func NewRunner(logger ports.Logger) *Runner {
	return &Runner{logger: logger}
}

// Run executes steps sequentially. The first step returning a non-zero exit
// code or an error aborts the remainder and surfaces ErrStepFailed carrying
// the step's description and exit code.
func (r *Runner) Run(ctx context.Context, steps []domain.Step, ec domain.ExecContext) error {
	if ec.Stdout == nil {
		ec.Stdout = &logWriter{logger: r.logger, level: levelInfo}
	}
	if ec.Stderr == nil {
		ec.Stderr = &logWriter{logger: r.logger, level: levelError}
	}

	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			return err
		}

		r.logger.Info(step.Description())
		code, err := step.Run(ctx, ec)
		if err != nil || code != 0 {
			failure := zerr.With(zerr.With(zerr.Wrap(domain.ErrStepFailed, "command exited non-zero"), "step", step.Description()), "exit_code", code)
			if err != nil {
				failure = zerr.With(failure, "cause", err.Error())
			}
			return failure
		}
	}
	return nil
}

const (
	levelInfo  = "info"
	levelError = "error"
)

// logWriter streams step output into the logger one line at a time.
type logWriter struct {
	logger ports.Logger
	level  string
}

func (w *logWriter) Write(p []byte) (n int, err error) {
	lines := strings.Split(strings.TrimSuffix(string(p), "\n"), "\n")
	for _, line := range lines {
		if w.level == levelInfo {
			w.logger.Info(line)
		} else {
			w.logger.Error(zerr.New(line))
		}
	}
	return len(p), nil
}
