package domain

import "go.trai.ch/zerr"

var (
	// ErrInvalidTarget is returned when a build target string cannot be parsed.
	ErrInvalidTarget = zerr.New("invalid build target")

	// ErrInvalidFlavor is returned when a target flavor has invalid syntax.
	ErrInvalidFlavor = zerr.New("invalid flavor")

	// ErrNoSuchTarget is returned when a rule declares a dependency on a
	// target that does not exist in the graph.
	ErrNoSuchTarget = zerr.New("no such build target")

	// ErrDuplicateTarget is returned when two rules are registered under the
	// same fully qualified target name.
	ErrDuplicateTarget = zerr.New("duplicate build target")

	// ErrCycleDetected is returned when the rule graph is not acyclic.
	ErrCycleDetected = zerr.New("cycle detected")

	// ErrDuplicateRuleKeyField is returned when a rule appends two values
	// under the same field name while its rule key is being computed.
	ErrDuplicateRuleKeyField = zerr.New("duplicate rule key field")

	// ErrMissingRuleKeyField is returned when a required rule key field is
	// appended with no value.
	ErrMissingRuleKeyField = zerr.New("missing rule key field")

	// ErrStepFailed is returned when a build step exits non-zero.
	ErrStepFailed = zerr.New("step failed")

	// ErrDependencyFailed is returned for a rule whose dependency failed;
	// the rule itself is never executed.
	ErrDependencyFailed = zerr.New("dependency failed")

	// ErrBuildBusy is returned when another mutating invocation already holds
	// the build lock.
	ErrBuildBusy = zerr.New("another build is already running")

	// ErrNoTargetsSpecified is returned when a build is requested with no
	// target arguments.
	ErrNoTargetsSpecified = zerr.New("no targets specified")

	// ErrBuildFailed is the aggregate error for an invocation in which at
	// least one rule failed. Per-rule causes are reported separately.
	ErrBuildFailed = zerr.New("build failed")
)
