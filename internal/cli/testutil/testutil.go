// Package testutil provides test utilities for CLI testing.
package testutil

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	fixtures "github.com/leapstack-labs/govpilot/internal/testutil"
)

// ProjectConfig is the govpilot.yaml written by SetupTestProject.
const ProjectConfig = `data_dir: data
state_path: .govpilot/state.db
environment: dev
`

// SetupTestProject creates a temporary project holding a govpilot.yaml and
// the sample catalog under data/. It returns the path of the config file.
func SetupTestProject(t *testing.T) string {
	t.Helper()

	tmpDir := t.TempDir()
	dataDir := filepath.Join(tmpDir, "data")
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		t.Fatalf("failed to create directory %s: %v", dataDir, err)
	}
	fixtures.WriteCatalog(t, dataDir, nil)

	cfgPath := filepath.Join(tmpDir, "govpilot.yaml")
	if err := os.WriteFile(cfgPath, []byte(ProjectConfig), 0o644); err != nil {
		t.Fatalf("failed to create govpilot.yaml: %v", err)
	}
	return cfgPath
}

// WritePolicy writes a policy file next to the project config and returns
// its path.
func WritePolicy(t *testing.T, cfgPath, content string) string {
	t.Helper()
	path := filepath.Join(filepath.Dir(cfgPath), "policy.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to create policy.yaml: %v", err)
	}
	return path
}

// ansiPattern matches ANSI escape codes.
var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

// AssertNoANSI checks that a string contains no ANSI escape codes.
func AssertNoANSI(t *testing.T, s string) {
	t.Helper()
	if ansiPattern.MatchString(s) {
		t.Errorf("string contains ANSI escape codes: %q", s)
	}
}

// AssertValidMarkdown performs basic markdown validation.
// It checks for unclosed code fences and basic structure.
func AssertValidMarkdown(t *testing.T, md string) {
	t.Helper()

	// Check for balanced code fences
	fenceCount := strings.Count(md, "```")
	if fenceCount%2 != 0 {
		t.Errorf("unbalanced code fences in markdown: found %d occurrences", fenceCount)
	}

	// Check that headers have content
	lines := strings.Split(md, "\n")
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "#") && strings.TrimLeft(trimmed, "# ") == "" {
			t.Errorf("empty header at line %d: %q", i+1, line)
		}
	}
}
