package main

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestValidateAccumulatesAllMissingFlags(t *testing.T) {
	err := (&config{}).validate()
	if err == nil {
		t.Fatal("expected an error for an empty config")
	}
	for _, flag := range []string{"-name", "-keyType", "-valueType", "-package"} {
		if !strings.Contains(err.Error(), flag) {
			t.Errorf("expected error to mention %s, got: %v", flag, err)
		}
	}

	cfg := &config{Name: "UserLoader", KeyType: "string", ValueType: "User", Package: "example"}
	if err := cfg.validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestApplyDefaultsDerivesFileName(t *testing.T) {
	cfg := &config{Name: "UserLoader"}
	cfg.applyDefaults()
	if cfg.FileName != "user_loader_gen.go" {
		t.Errorf("expected user_loader_gen.go, got %s", cfg.FileName)
	}

	cfg = &config{Name: "UserLoader", FileName: "custom.go"}
	cfg.applyDefaults()
	if cfg.FileName != "custom.go" {
		t.Errorf("expected explicit file name to win, got %s", cfg.FileName)
	}
}

func TestRenderGoldenOutput(t *testing.T) {
	cfg := &config{Name: "UserLoader", KeyType: "string", ValueType: "User", Package: "example"}
	cfg.applyDefaults()

	got, err := render(cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := `// Code generated by batchloadgen; DO NOT EDIT.

package example

import (
	"github.com/fetchkit/batchloader"
)

// UserLoader batches and caches User lookups keyed by string.
type UserLoader struct {
	batchloader.BatchLoader[string, User]
}

// NewUserLoader creates a UserLoader with the given fetch function.
func NewUserLoader(fetch func(keys []string) ([]*User, []error), opts ...batchloader.Option[string, User]) *UserLoader {
	return &UserLoader{
		BatchLoader: batchloader.New(batchloader.Fetch[string, User](fetch), opts...),
	}
}
`

	if diff := cmp.Diff(want, string(got)); diff != "" {
		t.Errorf("generated loader mismatch (-want +got):\n%s", diff)
	}
}
