package domain_test

import (
	"testing"

	"go.trai.ch/forge/internal/core/domain"
	"go.trai.ch/zerr"
)

func TestParseBuildTarget(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		repo      string
		baseName  string
		shortName string
		flavor    string
	}{
		{
			name:      "unflavored",
			input:     "//foo/bar:baz",
			baseName:  "//foo/bar",
			shortName: "baz",
		},
		{
			name:      "flavored",
			input:     "//foo/bar:baz#dex",
			baseName:  "//foo/bar",
			shortName: "baz",
			flavor:    "dex",
		},
		{
			name:      "repository qualified",
			input:     "cell@//foo:bar",
			repo:      "cell",
			baseName:  "//foo",
			shortName: "bar",
		},
		{
			name:      "root package",
			input:     "//:root",
			baseName:  "//",
			shortName: "root",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			target, err := domain.ParseBuildTarget(tt.input)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if target.Repository() != tt.repo {
				t.Errorf("expected repository %q, got %q", tt.repo, target.Repository())
			}
			if target.BaseName() != tt.baseName {
				t.Errorf("expected base name %q, got %q", tt.baseName, target.BaseName())
			}
			if target.ShortName() != tt.shortName {
				t.Errorf("expected short name %q, got %q", tt.shortName, target.ShortName())
			}
			if target.Flavor() != tt.flavor {
				t.Errorf("expected flavor %q, got %q", tt.flavor, target.Flavor())
			}
			if target.FullyQualifiedName() != tt.input {
				t.Errorf("expected round trip %q, got %q", tt.input, target.FullyQualifiedName())
			}
		})
	}
}

func TestParseBuildTarget_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "missing prefix", input: "foo/bar:baz"},
		{name: "missing colon", input: "//foo/bar"},
		{name: "empty short name", input: "//foo/bar:"},
		{name: "empty flavor", input: "//foo/bar:baz#"},
		{name: "flavor with space", input: "//foo/bar:baz#de x"},
		{name: "empty repository", input: "@//foo:bar"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := domain.ParseBuildTarget(tt.input); err == nil {
				t.Errorf("expected error for %q, got nil", tt.input)
			}
		})
	}
}

func TestParseBuildTarget_ErrorMetadata(t *testing.T) {
	_, err := domain.ParseBuildTarget("foo:bar")
	if err == nil {
		t.Fatal("expected error, got nil")
	}

	zErr, ok := err.(*zerr.Error)
	if !ok {
		t.Fatalf("expected *zerr.Error, got %T", err)
	}
	meta := zErr.Metadata()
	if target, ok := meta["target"].(string); !ok || target != "foo:bar" {
		t.Errorf("expected metadata target=foo:bar, got %v", meta["target"])
	}
}

func TestBuildTarget_BackslashNormalization(t *testing.T) {
	target, err := domain.NewBuildTarget("", `//foo\bar`, "baz", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if target.BaseName() != "//foo/bar" {
		t.Errorf("expected normalized base name //foo/bar, got %q", target.BaseName())
	}
}

func TestBuildTarget_FlavorInShortName(t *testing.T) {
	// A flavor arriving glued to the short name is split off during
	// construction.
	target, err := domain.NewBuildTarget("", "//foo", "bar#shaded", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if target.ShortName() != "bar" {
		t.Errorf("expected short name bar, got %q", target.ShortName())
	}
	if target.Flavor() != "shaded" {
		t.Errorf("expected flavor shaded, got %q", target.Flavor())
	}
}

func TestBuildTarget_Equality(t *testing.T) {
	a, err := domain.ParseBuildTarget("//foo:bar#dex")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := domain.NewBuildTarget("", "//foo", "bar", "dex")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if a.Name() != b.Name() {
		t.Error("expected equal targets to share an interned name")
	}
	if a != b {
		t.Error("expected equal targets to compare equal")
	}
}

func TestBuildTarget_Unflavored(t *testing.T) {
	target, err := domain.ParseBuildTarget("//foo:bar#dex")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	plain := target.Unflavored()
	if plain.IsFlavored() {
		t.Error("expected unflavored target")
	}
	if plain.FullyQualifiedName() != "//foo:bar" {
		t.Errorf("expected //foo:bar, got %q", plain.FullyQualifiedName())
	}

	// Already unflavored targets come back unchanged.
	if again := plain.Unflavored(); again != plain {
		t.Error("expected unflavored target to be returned unchanged")
	}
}

func TestBuildTarget_WithFlavor(t *testing.T) {
	target, err := domain.ParseBuildTarget("//foo:bar")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	flavored, err := target.WithFlavor("dex")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if flavored.FullyQualifiedName() != "//foo:bar#dex" {
		t.Errorf("expected //foo:bar#dex, got %q", flavored.FullyQualifiedName())
	}

	// Flavoring a flavored target composes the flavors.
	composed, err := flavored.WithFlavor("stripped")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if composed.Flavor() != "dex-stripped" {
		t.Errorf("expected composed flavor dex-stripped, got %q", composed.Flavor())
	}

	if _, err := target.WithFlavor("no spaces"); err == nil {
		t.Error("expected error for invalid flavor, got nil")
	}
}
