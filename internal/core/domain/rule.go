package domain

import (
	"context"
	"io"
)

// RuleKeyAppender is the surface a rule writes its key-contributing fields
// to. Implementations must serialize every call canonically: fields are
// consumed in call order, semantically unordered collections are sorted, and
// absent values are recorded as an explicit sentinel so that presence and
// absence always produce different keys. Appending two values under one field
// name is a configuration error surfaced when the key is finalized.
type RuleKeyAppender interface {
	// String appends a scalar string field.
	String(field, value string) RuleKeyAppender

	// Strings appends an ordered list field, preserving element order.
	Strings(field string, values []string) RuleKeyAppender

	// SortedStrings appends a set-valued field; elements are sorted before
	// hashing so that declaration order never leaks into the key.
	SortedStrings(field string, values []string) RuleKeyAppender

	// StringMap appends a map field with entries serialized in sorted key order.
	StringMap(field string, m map[string]string) RuleKeyAppender

	// Bool appends a boolean field.
	Bool(field string, value bool) RuleKeyAppender

	// Nullable appends an optional field, recording a distinguishable
	// sentinel when value is nil.
	Nullable(field string, value *string) RuleKeyAppender

	// Path appends an input file as a (path, content hash) pair. Directories
	// are hashed file by file in sorted order.
	Path(field, path string) RuleKeyAppender
}

// ExecContext carries everything a step needs to run. Steps receive it by
// value instead of a reference back to the engine so that rule execution
// cannot reach into the orchestrator.
type ExecContext struct {
	// Root is the project root directory all relative paths resolve against.
	Root string

	// Env holds extra environment entries merged over the process environment.
	Env map[string]string

	Stdout io.Writer
	Stderr io.Writer
}

// Step is a single idempotent, side-effecting unit of rule execution. A zero
// exit code means success; any other aborts the remaining steps of the rule.
type Step interface {
	// Description is a short human-readable rendering of the step, included
	// in failure reports.
	Description() string

	// Run executes the step and returns its exit code.
	Run(ctx context.Context, ec ExecContext) (int, error)
}

// BuildRule is a node in the action graph. Rules are constructed once while
// the graph is built and never mutated afterwards; the engine and dependent
// rules share references to them.
type BuildRule interface {
	// Target is the rule's immutable identity.
	Target() BuildTarget

	// Type is the rule kind tag, seeded into the rule key.
	Type() string

	// DeclaredDeps are the dependencies listed in the rule's description.
	DeclaredDeps() []BuildRule

	// ExtraDeps are dependencies injected by the rule kind itself (toolchain
	// inputs and the like) rather than declared by the user.
	ExtraDeps() []BuildRule

	// Inputs returns the file paths, relative to the project root, whose
	// contents feed this rule. These are the paths compared against outputs
	// for staleness checks.
	Inputs() []string

	// OutputPath returns the path, relative to the project root, where the
	// rule's artifact lands. Empty for rules with no on-disk output.
	OutputPath() string

	// BuildSteps returns the ordered steps that produce the rule's output.
	BuildSteps(ec ExecContext) []Step

	// AppendToRuleKey writes the rule's key-contributing fields, in a fixed
	// declared order, to the appender.
	AppendToRuleKey(rk RuleKeyAppender)
}

// Deps returns the rule's declared and extra dependencies as one ordered,
// deduplicated slice.
func Deps(r BuildRule) []BuildRule {
	declared := r.DeclaredDeps()
	extra := r.ExtraDeps()
	out := make([]BuildRule, 0, len(declared)+len(extra))
	seen := make(map[InternedString]struct{}, len(declared)+len(extra))
	for _, dep := range declared {
		if _, ok := seen[dep.Target().Name()]; ok {
			continue
		}
		seen[dep.Target().Name()] = struct{}{}
		out = append(out, dep)
	}
	for _, dep := range extra {
		if _, ok := seen[dep.Target().Name()]; ok {
			continue
		}
		seen[dep.Target().Name()] = struct{}{}
		out = append(out, dep)
	}
	return out
}

// AbiRule is the optional capability of rules whose dependents may cut over
// to an interface hash. A dependent built against an unchanged AbiKey does
// not need to rebuild when only the rule's implementation changed.
type AbiRule interface {
	BuildRule

	// AbiKey returns a stable hash of the rule's public interface. It is only
	// meaningful after the rule has built at least once.
	AbiKey() (string, bool)
}
