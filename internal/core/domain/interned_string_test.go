package domain_test

import (
	"encoding/json"
	"testing"

	"go.trai.ch/forge/internal/core/domain"
)

func TestInternedString(t *testing.T) {
	is1 := domain.NewInternedString("hello")
	is2 := domain.NewInternedString("hello")

	if is1 != is2 {
		t.Error("expected identical strings to intern to equal handles")
	}
	if is1.String() != "hello" {
		t.Errorf("expected String() to return %q, got %q", "hello", is1.String())
	}

	var zero domain.InternedString
	if zero.String() != "" {
		t.Errorf("expected zero value to render empty, got %q", zero.String())
	}
}

func TestInternedString_JSON(t *testing.T) {
	original := domain.NewInternedString("//lib:a")

	data, err := json.Marshal(original)
	if err != nil {
		t.Fatalf("failed to marshal: %v", err)
	}
	if string(data) != `"//lib:a"` {
		t.Errorf("expected JSON %q, got %q", `"//lib:a"`, string(data))
	}

	var decoded domain.InternedString
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("failed to unmarshal: %v", err)
	}
	if decoded != original {
		t.Error("expected decoded handle to equal the original")
	}
}
