package steps_test

import (
	"context"
	"errors"
	"testing"

	"go.trai.ch/forge/internal/core/domain"
	"go.trai.ch/forge/internal/core/ports/mocks"
	"go.trai.ch/forge/internal/engine/steps"
	"go.trai.ch/zerr"
	"go.uber.org/mock/gomock"
)

// scriptedStep is a test step with a fixed outcome.
type scriptedStep struct {
	desc string
	code int
	err  error
	ran  *[]string
}

func (s *scriptedStep) Description() string { return s.desc }

func (s *scriptedStep) Run(context.Context, domain.ExecContext) (int, error) {
	if s.ran != nil {
		*s.ran = append(*s.ran, s.desc)
	}
	return s.code, s.err
}

func quietLogger(t *testing.T) *mocks.MockLogger {
	t.Helper()
	ctrl := gomock.NewController(t)
	logger := mocks.NewMockLogger(ctrl)
	logger.EXPECT().Info(gomock.Any()).AnyTimes()
	logger.EXPECT().Warn(gomock.Any()).AnyTimes()
	logger.EXPECT().Error(gomock.Any()).AnyTimes()
	return logger
}

func TestRunner_Run_InOrder(t *testing.T) {
	var ran []string
	batch := []domain.Step{
		&scriptedStep{desc: "first", ran: &ran},
		&scriptedStep{desc: "second", ran: &ran},
	}

	runner := steps.NewRunner(quietLogger(t))
	if err := runner.Run(context.Background(), batch, domain.ExecContext{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(ran) != 2 || ran[0] != "first" || ran[1] != "second" {
		t.Errorf("expected in-order execution, got %v", ran)
	}
}

func TestRunner_Run_AbortsOnFailure(t *testing.T) {
	var ran []string
	batch := []domain.Step{
		&scriptedStep{desc: "ok", ran: &ran},
		&scriptedStep{desc: "bad", code: 3, ran: &ran},
		&scriptedStep{desc: "never", ran: &ran},
	}

	runner := steps.NewRunner(quietLogger(t))
	err := runner.Run(context.Background(), batch, domain.ExecContext{})
	if !errors.Is(err, domain.ErrStepFailed) {
		t.Fatalf("expected ErrStepFailed, got %v", err)
	}

	zErr, ok := err.(*zerr.Error)
	if !ok {
		t.Fatalf("expected *zerr.Error, got %T", err)
	}
	meta := zErr.Metadata()
	if step, ok := meta["step"].(string); !ok || step != "bad" {
		t.Errorf("expected metadata step=bad, got %v", meta["step"])
	}
	if code, ok := meta["exit_code"].(int); !ok || code != 3 {
		t.Errorf("expected metadata exit_code=3, got %v", meta["exit_code"])
	}

	if len(ran) != 2 {
		t.Errorf("expected the failing step to abort the batch, ran %v", ran)
	}
}

func TestRunner_Run_StepError(t *testing.T) {
	batch := []domain.Step{
		&scriptedStep{desc: "broken", code: 1, err: errors.New("io trouble")},
	}

	runner := steps.NewRunner(quietLogger(t))
	err := runner.Run(context.Background(), batch, domain.ExecContext{})
	if !errors.Is(err, domain.ErrStepFailed) {
		t.Fatalf("expected ErrStepFailed, got %v", err)
	}
}

func TestRunner_Run_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var ran []string
	batch := []domain.Step{&scriptedStep{desc: "never", ran: &ran}}

	runner := steps.NewRunner(quietLogger(t))
	if err := runner.Run(ctx, batch, domain.ExecContext{}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if len(ran) != 0 {
		t.Error("expected no step to run after cancellation")
	}
}
