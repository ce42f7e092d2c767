package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestConfigInitWritesSample(t *testing.T) {
	target := filepath.Join(t.TempDir(), "config.toml")
	out, err := execute(t, "config", "init", "--path", target)
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	if !strings.Contains(out, target) {
		t.Fatalf("output = %q", out)
	}
	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "[llm]") {
		t.Fatal("sample config missing llm section")
	}
}

func TestConfigInitRefusesOverwrite(t *testing.T) {
	target := filepath.Join(t.TempDir(), "config.toml")
	if _, err := execute(t, "config", "init", "--path", target); err != nil {
		t.Fatal(err)
	}
	if _, err := execute(t, "config", "init", "--path", target); err == nil {
		t.Fatal("expected overwrite refusal")
	}
	if _, err := execute(t, "config", "init", "--path", target, "--overwrite"); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
}

func TestRunRequiresAPIKey(t *testing.T) {
	t.Setenv("DISTILL_LLM_API_KEY", "")
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.toml")
	cfgBody := "[paths]\noutput_dir = \"" + filepath.Join(dir, "out") + "\"\n"
	if err := os.WriteFile(cfgPath, []byte(cfgBody), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := execute(t, "--config", cfgPath, "run", "some text")
	if err == nil {
		t.Fatal("expected missing API key to fail the run")
	}
	if !strings.Contains(err.Error(), "api_key") {
		t.Fatalf("error = %v", err)
	}
}

func TestConfigShowMasksAPIKey(t *testing.T) {
	t.Setenv("DISTILL_LLM_API_KEY", "sk-secret")
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(cfgPath, []byte(""), 0o644); err != nil {
		t.Fatal(err)
	}

	out, err := execute(t, "--config", cfgPath, "config", "show")
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	if strings.Contains(out, "sk-secret") {
		t.Fatal("api key leaked into output")
	}
	if !strings.Contains(out, "(set)") {
		t.Fatalf("output = %q", out)
	}
}
