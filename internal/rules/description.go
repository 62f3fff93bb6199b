// Package rules defines the closed set of build rule kinds and the factory
// that resolves parsed rule descriptions into the action graph. Every kind is
// a plain struct implementing domain.BuildRule; there is no inheritance, a
// new kind is a new variant.
package rules

import (
	"go.trai.ch/forge/internal/core/domain"
	"go.trai.ch/zerr"
)

// ErrUnknownRuleType is returned for a description whose type tag matches no
// rule kind.
var ErrUnknownRuleType = zerr.New("unknown rule type")

// Rule kind tags.
const (
	TypeGenrule    = "genrule"
	TypeExportFile = "export_file"
	TypeWriteFile  = "write_file"
	TypeZip        = "zip"
)

// Description is the front-end's raw view of one rule: a type tag, the
// declared dependency targets, and a typed argument bundle. The factory turns
// a set of these into resolved BuildRule nodes.
type Description struct {
	Target string
	Type   string
	Deps   []string
	Args   Args
}

// Args is the typed argument bundle. Only the fields relevant to the
// description's type are read.
type Args struct {
	// genrule; srcs shared with zip
	Cmd  []string
	Srcs []string
	Env  map[string]string

	// export_file
	Src string

	// write_file
	Contents string

	// all kinds
	Out string
}

// baseRule carries the identity and dependency edges every kind shares.
type baseRule struct {
	target   domain.BuildTarget
	declared []domain.BuildRule
	extra    []domain.BuildRule
}

func (r *baseRule) Target() domain.BuildTarget       { return r.target }
func (r *baseRule) DeclaredDeps() []domain.BuildRule { return r.declared }
func (r *baseRule) ExtraDeps() []domain.BuildRule    { return r.extra }
