package domain_test

import (
	"slices"
	"testing"

	"go.trai.ch/forge/internal/core/domain"
	"go.trai.ch/zerr"
)

// fakeRule is a minimal BuildRule for graph tests.
type fakeRule struct {
	target domain.BuildTarget
	deps   []domain.BuildRule
	extra  []domain.BuildRule
}

func newFakeRule(t *testing.T, name string, deps ...domain.BuildRule) *fakeRule {
	t.Helper()
	target, err := domain.ParseBuildTarget(name)
	if err != nil {
		t.Fatalf("failed to parse target %q: %v", name, err)
	}
	return &fakeRule{target: target, deps: deps}
}

func (r *fakeRule) Target() domain.BuildTarget       { return r.target }
func (r *fakeRule) Type() string                     { return "fake" }
func (r *fakeRule) DeclaredDeps() []domain.BuildRule { return r.deps }
func (r *fakeRule) ExtraDeps() []domain.BuildRule    { return r.extra }
func (r *fakeRule) Inputs() []string                 { return nil }
func (r *fakeRule) OutputPath() string               { return "" }

func (r *fakeRule) BuildSteps(domain.ExecContext) []domain.Step { return nil }
func (r *fakeRule) AppendToRuleKey(domain.RuleKeyAppender)      {}

func ruleNames(rules []domain.BuildRule) []string {
	names := make([]string, len(rules))
	for i, r := range rules {
		names[i] = r.Target().FullyQualifiedName()
	}
	return names
}

func TestGraph_AddRule_Duplicate(t *testing.T) {
	g := domain.NewGraph()
	rule := newFakeRule(t, "//lib:a")

	if err := g.AddRule(rule); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	err := g.AddRule(newFakeRule(t, "//lib:a"))
	if err == nil {
		t.Fatal("expected error when adding duplicate rule, got nil")
	}

	zErr, ok := err.(*zerr.Error)
	if !ok {
		t.Fatalf("expected *zerr.Error, got %T", err)
	}
	meta := zErr.Metadata()
	if target, ok := meta["target"].(string); !ok || target != "//lib:a" {
		t.Errorf("expected metadata target=//lib:a, got %v", meta["target"])
	}
}

func TestGraph_Validate_Cycle(t *testing.T) {
	// a -> b -> c -> a
	a := newFakeRule(t, "//cycle:a")
	b := newFakeRule(t, "//cycle:b")
	c := newFakeRule(t, "//cycle:c")
	a.deps = []domain.BuildRule{b}
	b.deps = []domain.BuildRule{c}
	c.deps = []domain.BuildRule{a}

	g := domain.NewGraph()
	for _, r := range []domain.BuildRule{a, b, c} {
		if err := g.AddRule(r); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	err := g.Validate()
	if err == nil {
		t.Fatal("expected error for cycle, got nil")
	}

	zErr, ok := err.(*zerr.Error)
	if !ok {
		t.Fatalf("expected *zerr.Error, got %T", err)
	}
	meta := zErr.Metadata()
	if cycle, ok := meta["cycle"].(string); !ok || cycle == "" {
		t.Errorf("expected metadata cycle to be non-empty string, got %v", meta["cycle"])
	}
}

func TestGraph_Walk_TopologicalOrder(t *testing.T) {
	// app depends on lib, lib depends on base.
	base := newFakeRule(t, "//core:base")
	lib := newFakeRule(t, "//core:lib", base)
	app := newFakeRule(t, "//core:app", lib)

	g := domain.NewGraph()
	for _, r := range []domain.BuildRule{app, lib, base} {
		if err := g.AddRule(r); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if err := g.Validate(); err != nil {
		t.Fatalf("unexpected validation error: %v", err)
	}

	var order []string
	for rule := range g.Walk() {
		order = append(order, rule.Target().FullyQualifiedName())
	}

	expected := []string{"//core:base", "//core:lib", "//core:app"}
	if !slices.Equal(order, expected) {
		t.Errorf("expected order %v, got %v", expected, order)
	}
}

func TestGraph_Roots(t *testing.T) {
	base := newFakeRule(t, "//core:base")
	app := newFakeRule(t, "//core:app", base)
	solo := newFakeRule(t, "//core:solo")

	g := domain.NewGraph()
	for _, r := range []domain.BuildRule{app, base, solo} {
		if err := g.AddRule(r); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if err := g.Validate(); err != nil {
		t.Fatalf("unexpected validation error: %v", err)
	}

	roots := ruleNames(g.Roots())
	slices.Sort(roots)
	expected := []string{"//core:app", "//core:solo"}
	if !slices.Equal(roots, expected) {
		t.Errorf("expected roots %v, got %v", expected, roots)
	}
}

func TestGraph_TransitiveDeps(t *testing.T) {
	base := newFakeRule(t, "//core:base")
	lib := newFakeRule(t, "//core:lib", base)
	app := newFakeRule(t, "//core:app", lib)
	other := newFakeRule(t, "//core:other")

	g := domain.NewGraph()
	for _, r := range []domain.BuildRule{app, lib, base, other} {
		if err := g.AddRule(r); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if err := g.Validate(); err != nil {
		t.Fatalf("unexpected validation error: %v", err)
	}

	closure := ruleNames(g.TransitiveDeps(app))
	expected := []string{"//core:base", "//core:lib", "//core:app"}
	if !slices.Equal(closure, expected) {
		t.Errorf("expected closure %v, got %v", expected, closure)
	}
}

func TestGraph_FindRuleByTarget(t *testing.T) {
	rule := newFakeRule(t, "//lib:a")
	g := domain.NewGraph()
	if err := g.AddRule(rule); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	target, err := domain.ParseBuildTarget("//lib:a")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	found, err := g.FindRuleByTarget(target)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if found != domain.BuildRule(rule) {
		t.Error("expected the registered rule instance")
	}

	missing, err := domain.ParseBuildTarget("//lib:missing")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := g.FindRuleByTarget(missing); err == nil {
		t.Error("expected error for missing target, got nil")
	}
}

func TestDeps_Deduplicates(t *testing.T) {
	shared := newFakeRule(t, "//dep:shared")
	rule := newFakeRule(t, "//dep:rule", shared)
	rule.extra = []domain.BuildRule{shared, newFakeRule(t, "//dep:extra")}

	deps := ruleNames(domain.Deps(rule))
	expected := []string{"//dep:shared", "//dep:extra"}
	if !slices.Equal(deps, expected) {
		t.Errorf("expected deps %v, got %v", expected, deps)
	}
}
