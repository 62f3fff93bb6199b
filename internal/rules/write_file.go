package rules

import (
	"go.trai.ch/forge/internal/core/domain"
	"go.trai.ch/forge/internal/engine/steps"
)

var _ domain.BuildRule = (*WriteFile)(nil)

// WriteFile materializes fixed contents at the output path.
type WriteFile struct {
	baseRule
	contents string
	out      string
}

// Type implements domain.BuildRule.
func (r *WriteFile) Type() string { return TypeWriteFile }

// Inputs implements domain.BuildRule; the contents are inline, there are no
// file inputs.
func (r *WriteFile) Inputs() []string { return nil }

// OutputPath returns the declared output path.
func (r *WriteFile) OutputPath() string { return r.out }

// BuildSteps writes the contents, truncating any previous output.
func (r *WriteFile) BuildSteps(domain.ExecContext) []domain.Step {
	return []domain.Step{
		&steps.WriteFileStep{Path: r.out, Contents: []byte(r.contents)},
	}
}

// AppendToRuleKey implements domain.BuildRule.
func (r *WriteFile) AppendToRuleKey(rk domain.RuleKeyAppender) {
	rk.String("contents", r.contents).
		String("out", r.out)
}
