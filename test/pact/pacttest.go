//go:build pact
// +build pact

package pacttest

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

// The customizer consumes the commerce platform and is itself consumed by the wizard UI.
const (
	CustomizerName = "portrait-customizer"
	PlatformName   = "portrait-platform"
	WizardUIName   = "portrait-wizard-ui"
)

// Provider states on the platform side.
const (
	StateCatalogSeeded      = "catalog has breeds and coats"
	StateBreedHasCoats      = "breed 7 has compatible coats"
	StateCustomerHasCredits = "customer has 5 credits"
	StateCustomerNoCredits  = "customer has no credits"
)

// Provider states on the customizer side.
const (
	StateNoSessions      = "no wizard sessions are open"
	StatePromptsBaseline = "prompt templates baseline"
)

const (
	CustomerToken  = "pact-customer-token"
	ExampleBreedID = "7"
	MissingSession = "5f0c8a4e-0000-4000-8000-000000000404"
)

// PactDir returns the workspace-level directory for generated pact files.
func PactDir(t testing.TB) string {
	t.Helper()
	dir := filepath.Join(projectRoot(t), "pacts")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("create pact dir: %v", err)
	}
	return dir
}

// PactFile returns the canonical pact file path for a consumer/provider pair.
func PactFile(t testing.TB, consumer, provider string) string {
	t.Helper()
	return filepath.Join(PactDir(t), consumer+"-"+provider+".json")
}

// LogDir returns the log output directory for pact-go.
func LogDir(t testing.TB) string {
	t.Helper()
	dir := filepath.Join(projectRoot(t), "bin", "pact-logs")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("create pact log dir: %v", err)
	}
	return dir
}

// ExampleBreed provides stable breed data for catalog interactions.
func ExampleBreed() map[string]any {
	return map[string]any{
		"id":                 7,
		"name":               "Poodle",
		"animal_type":        "dog",
		"personality_traits": []string{"clever", "proud"},
		"popularity_rank":    3,
	}
}

// ExampleCoat provides stable coat data for catalog interactions.
func ExampleCoat() map[string]any {
	return map[string]any{
		"id":           12,
		"name":         "Apricot",
		"hex_color":    "#FBCEB1",
		"pattern_type": "solid",
		"rarity":       "common",
		"animal_type":  "dog",
	}
}

// projectRoot walks up from this file to the workspace root.
func projectRoot(t testing.TB) string {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("cannot determine caller for pact paths")
	}
	return filepath.Clean(filepath.Join(filepath.Dir(file), "..", ".."))
}
