package ports

import (
	"context"

	"go.trai.ch/forge/internal/core/domain"
)

// StepRunner executes a rule's ordered steps sequentially. The first step
// that exits non-zero aborts the rest and surfaces a step-failed error
// carrying the step's description and exit code.
//
//go:generate go run go.uber.org/mock/mockgen -source=step_runner.go -destination=mocks/mock_step_runner.go -package=mocks
type StepRunner interface {
	Run(ctx context.Context, steps []domain.Step, ec domain.ExecContext) error
}
