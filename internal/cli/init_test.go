package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestInitCommandDefaults(t *testing.T) {
	cmd := newInitCmd(isolatedLoader(t))
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(out)
	cmd.SetArgs([]string{})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	if !strings.Contains(out.String(), "Environment looks good") {
		t.Fatalf("unexpected output: %s", out.String())
	}
}

func TestInitCommandCreatesOutputDir(t *testing.T) {
	outputDir := filepath.Join(t.TempDir(), "artifacts")

	cmd := newInitCmd(isolatedLoader(t))
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(out)
	cmd.SetArgs([]string{"--formats", "json", "--output-dir", outputDir})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	if _, err := os.Stat(outputDir); err != nil {
		t.Fatalf("output dir not created: %v", err)
	}
}

func TestInitCommandRejectsBadWorkers(t *testing.T) {
	cmd := newInitCmd(isolatedLoader(t))
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(out)
	cmd.SetArgs([]string{"--workers", "0"})

	if err := cmd.Execute(); err == nil {
		t.Fatal("expected validation error for zero workers")
	}
}
