package rules

import (
	"go.trai.ch/forge/internal/core/domain"
	"go.trai.ch/forge/internal/engine/steps"
)

var _ domain.BuildRule = (*Zip)(nil)

// Zip packs the declared sources into a deterministic zip archive.
type Zip struct {
	baseRule
	srcs []string
	out  string
}

// Type implements domain.BuildRule.
func (r *Zip) Type() string { return TypeZip }

// Inputs returns the declared source paths.
func (r *Zip) Inputs() []string { return r.srcs }

// OutputPath returns the declared output path.
func (r *Zip) OutputPath() string { return r.out }

// BuildSteps removes any previous archive and packs a fresh one.
func (r *Zip) BuildSteps(domain.ExecContext) []domain.Step {
	return []domain.Step{
		&steps.RemoveStep{Path: r.out},
		&steps.ZipStep{Srcs: r.srcs, Out: r.out},
	}
}

// AppendToRuleKey implements domain.BuildRule. Source order does not affect
// the archive, so srcs hash sorted.
func (r *Zip) AppendToRuleKey(rk domain.RuleKeyAppender) {
	rk.SortedStrings("srcs", r.srcs).
		String("out", r.out)
}
