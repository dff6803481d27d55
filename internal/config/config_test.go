package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/hazyhaar/autoword-vnext/internal/apperr"
)

func TestDefault_IsValid(t *testing.T) {
	c := Default()
	if err := c.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
	if c.LLM.ModelID == "" || c.Audit.BaseDir == "" {
		t.Fatal("defaults should populate required fields")
	}
}

func TestValidate_RejectsBadTemperature(t *testing.T) {
	c := Default()
	c.LLM.Temperature = 5
	err := c.Validate()
	if kind, ok := apperr.KindOf(err); !ok || kind != apperr.ConfigError {
		t.Fatalf("expected CONFIG_ERROR, got %v", err)
	}
}

func TestValidate_RejectsMemoryThresholds(t *testing.T) {
	c := Default()
	c.Executor.MemoryWarningMB = 1024
	c.Executor.MemoryCriticalMB = 512
	if err := c.Validate(); err == nil {
		t.Fatal("expected error when warning >= critical")
	}
}

func TestLoad_YAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	body := "llm:\n  model_id: gpt-test\n  temperature: 0.2\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.LLM.ModelID != "gpt-test" {
		t.Fatalf("model_id: got %q", c.LLM.ModelID)
	}
	if c.Audit.BaseDir == "" {
		t.Fatal("defaults should still apply on top of a partial file")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/config.yaml")
	if kind, ok := apperr.KindOf(err); !ok || kind != apperr.ConfigError {
		t.Fatalf("expected CONFIG_ERROR, got %v", err)
	}
}
