package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/example/lockscan/internal/config"
)

func TestDoctorCommandPasses(t *testing.T) {
	cmd := newDoctorCmd(isolatedLoader(t))
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(out)
	cmd.SetArgs([]string{})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("doctor failed: %v", err)
	}

	if !strings.Contains(out.String(), "All checks passed") {
		t.Fatalf("doctor output missing pass line: %s", out.String())
	}
}

func TestDoctorChecksFlagInvalidConfig(t *testing.T) {
	cfg := config.DefaultRuntimeConfig()
	cfg.Workers = 0

	checks := runDoctorChecks(&cfg)

	var failed bool
	for _, check := range checks {
		if check.Name == "Configuration" && check.Error != nil {
			failed = true
		}
	}
	if !failed {
		t.Fatalf("invalid configuration not flagged: %+v", checks)
	}
}

func TestClassifierSelfTest(t *testing.T) {
	check := checkClassifier()
	if check.Error != nil {
		t.Fatalf("classifier self-test failed: %v", check.Error)
	}
}
