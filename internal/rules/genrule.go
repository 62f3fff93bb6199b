package rules

import (
	"go.trai.ch/forge/internal/core/domain"
	"go.trai.ch/forge/internal/engine/steps"
)

var _ domain.BuildRule = (*Genrule)(nil)

// Genrule runs a user-supplied command that reads the declared sources and
// writes the declared output path.
type Genrule struct {
	baseRule
	cmd  []string
	srcs []string
	env  map[string]string
	out  string
}

// Type implements domain.BuildRule.
func (r *Genrule) Type() string { return TypeGenrule }

// Inputs returns the declared source paths.
func (r *Genrule) Inputs() []string { return r.srcs }

// OutputPath returns the declared output path.
func (r *Genrule) OutputPath() string { return r.out }

// BuildSteps removes any previous output and runs the command. The removal
// keeps the step sequence idempotent after a partial run.
func (r *Genrule) BuildSteps(domain.ExecContext) []domain.Step {
	return []domain.Step{
		&steps.RemoveStep{Path: r.out},
		&steps.ShellStep{Argv: r.cmd, Env: r.env},
	}
}

// AppendToRuleKey implements domain.BuildRule. Fields are appended in
// declaration order; cmd is order-sensitive, env is a map and hashed sorted.
func (r *Genrule) AppendToRuleKey(rk domain.RuleKeyAppender) {
	rk.Strings("cmd", r.cmd).
		StringMap("env", r.env).
		String("out", r.out)
}
