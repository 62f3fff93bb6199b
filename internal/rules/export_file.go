package rules

import (
	"fmt"
	"path/filepath"

	"go.trai.ch/forge/internal/core/domain"
	"go.trai.ch/forge/internal/core/ports"
	"go.trai.ch/forge/internal/engine/steps"
)

var (
	_ domain.BuildRule = (*ExportFile)(nil)
	_ domain.AbiRule   = (*ExportFile)(nil)
)

// ExportFile copies one source file to the output path. Its interface hash
// is the source's content hash, so dependents keyed on the interface only
// rebuild when the exported bytes change.
type ExportFile struct {
	baseRule
	src    string
	out    string
	root   string
	hashes ports.FileHashCache
}

// Type implements domain.BuildRule.
func (r *ExportFile) Type() string { return TypeExportFile }

// Inputs returns the single source path.
func (r *ExportFile) Inputs() []string { return []string{r.src} }

// OutputPath returns the declared output path.
func (r *ExportFile) OutputPath() string { return r.out }

// BuildSteps copies the source over the output.
func (r *ExportFile) BuildSteps(domain.ExecContext) []domain.Step {
	return []domain.Step{
		&steps.CopyStep{From: r.src, To: r.out},
	}
}

// AppendToRuleKey implements domain.BuildRule.
func (r *ExportFile) AppendToRuleKey(rk domain.RuleKeyAppender) {
	rk.String("src", r.src).
		String("out", r.out)
}

// AbiKey implements domain.AbiRule.
func (r *ExportFile) AbiKey() (string, bool) {
	h, err := r.hashes.Get(filepath.Join(r.root, r.src))
	if err != nil {
		return "", false
	}
	return fmt.Sprintf("%016x", h), true
}
