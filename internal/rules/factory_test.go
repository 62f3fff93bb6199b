package rules_test

import (
	"errors"
	"strings"
	"testing"

	"go.uber.org/mock/gomock"

	"go.trai.ch/forge/internal/core/domain"
	"go.trai.ch/forge/internal/core/ports/mocks"
	"go.trai.ch/forge/internal/rules"
	"go.trai.ch/zerr"
)

func newFactory(t *testing.T) *rules.Factory {
	t.Helper()
	ctrl := gomock.NewController(t)
	hashes := mocks.NewMockFileHashCache(ctrl)
	hashes.EXPECT().Get(gomock.Any()).Return(uint64(0xabc), nil).AnyTimes()
	return rules.NewFactory("/project", hashes)
}

func TestFactory_ResolvesAllRuleKinds(t *testing.T) {
	factory := newFactory(t)
	graph, err := factory.Resolve([]rules.Description{
		{
			Target: "//lib:hdr",
			Type:   rules.TypeExportFile,
			Args:   rules.Args{Src: "lib/api.h", Out: "out/api.h"},
		},
		{
			Target: "//lib:version",
			Type:   rules.TypeWriteFile,
			Args:   rules.Args{Contents: "1.2.3\n", Out: "out/version"},
		},
		{
			Target: "//app:bin",
			Type:   rules.TypeGenrule,
			Deps:   []string{"//lib:hdr", "//lib:version"},
			Args: rules.Args{
				Cmd:  []string{"cc", "-o", "out/bin", "app/main.c"},
				Srcs: []string{"app/main.c"},
				Out:  "out/bin",
			},
		},
		{
			Target: "//app:dist",
			Type:   rules.TypeZip,
			Deps:   []string{"//app:bin"},
			Args:   rules.Args{Srcs: []string{"out/bin"}, Out: "out/dist.zip"},
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if graph.RuleCount() != 4 {
		t.Fatalf("expected 4 rules, got %d", graph.RuleCount())
	}

	target, err := domain.ParseBuildTarget("//app:bin")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	rule, err := graph.FindRuleByTarget(target)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rule.Type() != rules.TypeGenrule {
		t.Fatalf("unexpected type %q", rule.Type())
	}
	if len(rule.DeclaredDeps()) != 2 {
		t.Fatalf("expected 2 deps, got %d", len(rule.DeclaredDeps()))
	}
}

func TestFactory_ExportFileAbiKeyIsSourceHash(t *testing.T) {
	factory := newFactory(t)
	graph, err := factory.Resolve([]rules.Description{
		{
			Target: "//lib:hdr",
			Type:   rules.TypeExportFile,
			Args:   rules.Args{Src: "lib/api.h", Out: "out/api.h"},
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	target, _ := domain.ParseBuildTarget("//lib:hdr")
	rule, err := graph.FindRuleByTarget(target)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	abiRule, ok := rule.(domain.AbiRule)
	if !ok {
		t.Fatal("expected export_file to expose an interface hash")
	}
	abi, ok := abiRule.AbiKey()
	if !ok {
		t.Fatal("expected an interface hash")
	}
	if abi != "0000000000000abc" {
		t.Fatalf("unexpected interface hash %q", abi)
	}
}

func TestFactory_UnknownDependencyTarget(t *testing.T) {
	factory := newFactory(t)
	_, err := factory.Resolve([]rules.Description{
		{
			Target: "//app:bin",
			Type:   rules.TypeGenrule,
			Deps:   []string{"//lib:nope"},
			Args:   rules.Args{Cmd: []string{"true"}},
		},
	})
	if !errors.Is(err, domain.ErrNoSuchTarget) {
		t.Fatalf("expected ErrNoSuchTarget, got %v", err)
	}

	var zerrErr *zerr.Error
	if !errors.As(err, &zerrErr) {
		t.Fatalf("expected a zerr error, got %T", err)
	}
	if zerrErr.Metadata()["target"] != "//lib:nope" {
		t.Fatalf("unexpected metadata: %v", zerrErr.Metadata())
	}
}

func TestFactory_DependencyCycle(t *testing.T) {
	factory := newFactory(t)
	_, err := factory.Resolve([]rules.Description{
		{
			Target: "//a:a",
			Type:   rules.TypeGenrule,
			Deps:   []string{"//b:b"},
			Args:   rules.Args{Cmd: []string{"true"}},
		},
		{
			Target: "//b:b",
			Type:   rules.TypeGenrule,
			Deps:   []string{"//a:a"},
			Args:   rules.Args{Cmd: []string{"true"}},
		},
	})
	if !errors.Is(err, domain.ErrCycleDetected) {
		t.Fatalf("expected ErrCycleDetected, got %v", err)
	}

	var zerrErr *zerr.Error
	if !errors.As(err, &zerrErr) {
		t.Fatalf("expected a zerr error, got %T", err)
	}
	cycle, _ := zerrErr.Metadata()["cycle"].(string)
	if !strings.Contains(cycle, "//a:a") || !strings.Contains(cycle, "//b:b") {
		t.Fatalf("cycle path missing participants: %q", cycle)
	}
}

func TestFactory_UnknownRuleType(t *testing.T) {
	factory := newFactory(t)
	_, err := factory.Resolve([]rules.Description{
		{Target: "//lib:a", Type: "cxx_library"},
	})
	if !errors.Is(err, rules.ErrUnknownRuleType) {
		t.Fatalf("expected ErrUnknownRuleType, got %v", err)
	}
}

func TestFactory_DuplicateTarget(t *testing.T) {
	factory := newFactory(t)
	_, err := factory.Resolve([]rules.Description{
		{Target: "//lib:a", Type: rules.TypeWriteFile, Args: rules.Args{Contents: "x", Out: "out/a"}},
		{Target: "//lib:a", Type: rules.TypeWriteFile, Args: rules.Args{Contents: "y", Out: "out/a"}},
	})
	if !errors.Is(err, domain.ErrDuplicateTarget) {
		t.Fatalf("expected ErrDuplicateTarget, got %v", err)
	}
}
