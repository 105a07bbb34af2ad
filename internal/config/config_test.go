package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/valpere/shapetran/internal/translator"
)

func TestLoad_Defaults(t *testing.T) {
	chdir(t, t.TempDir())

	v, err := New("")
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	cfg, err := Load(v)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Backend != DefaultBackend {
		t.Errorf("expected backend %q, got %q", DefaultBackend, cfg.Backend)
	}
	if cfg.MaxInputLength != DefaultMaxInputLength {
		t.Errorf("expected max length %d, got %d", DefaultMaxInputLength, cfg.MaxInputLength)
	}
	if cfg.Timeout != 0 {
		t.Errorf("expected no timeout, got %s", cfg.Timeout)
	}
	if cfg.DBPath != DefaultDBPath {
		t.Errorf("expected db %q, got %q", DefaultDBPath, cfg.DBPath)
	}
	if cfg.Ollama.BaseURL != translator.DefaultOllamaURL || cfg.Ollama.Model != translator.DefaultOllamaModel {
		t.Errorf("unexpected ollama defaults: %+v", cfg.Ollama)
	}
}

func TestLoad_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "shapetran.yaml")
	content := `backend: openai
max_input_length: 1200
timeout: 45s
openai:
  api_key: sk-file
  model: gpt-4o
redis:
  url: redis://localhost:6379/1
  ttl: 600
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	v, err := New(path)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	cfg, err := Load(v)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Backend != "openai" {
		t.Errorf("expected openai, got %q", cfg.Backend)
	}
	if cfg.MaxInputLength != 1200 {
		t.Errorf("expected 1200, got %d", cfg.MaxInputLength)
	}
	if cfg.Timeout != 45*time.Second {
		t.Errorf("expected 45s, got %s", cfg.Timeout)
	}
	svc := cfg.Service("openai")
	if svc.APIKey != "sk-file" || svc.Model != "gpt-4o" {
		t.Errorf("unexpected openai config: %+v", svc)
	}
	if cfg.Redis.URL != "redis://localhost:6379/1" || cfg.Redis.TTL != 600 {
		t.Errorf("unexpected redis config: %+v", cfg.Redis)
	}
}

func TestLoad_FileFoundInWorkingDir(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "shapetran.yaml"), []byte("backend: echo\n"), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	chdir(t, dir)

	v, err := New("")
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	cfg, err := Load(v)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Backend != "echo" {
		t.Errorf("expected echo, got %q", cfg.Backend)
	}
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	if _, err := New(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for a missing explicit config file")
	}
}

func TestLoad_Environment(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("SHAPETRAN_BACKEND", "google")
	t.Setenv("SHAPETRAN_GOOGLE_CREDENTIALS", "/etc/gcp.json")
	t.Setenv("SHAPETRAN_MAX_INPUT_LENGTH", "300")

	v, err := New("")
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	cfg, err := Load(v)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Backend != "google" {
		t.Errorf("expected google, got %q", cfg.Backend)
	}
	if cfg.Service("google").Credentials != "/etc/gcp.json" {
		t.Errorf("unexpected google config: %+v", cfg.Google)
	}
	if cfg.MaxInputLength != 300 {
		t.Errorf("expected 300, got %d", cfg.MaxInputLength)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{name: "valid", cfg: Config{Backend: "ollama", MaxInputLength: 5000}},
		{name: "unlimited", cfg: Config{Backend: "echo"}},
		{name: "unknown backend", cfg: Config{Backend: "systran"}, wantErr: true},
		{name: "negative length", cfg: Config{Backend: "ollama", MaxInputLength: -1}, wantErr: true},
		{name: "negative timeout", cfg: Config{Backend: "ollama", Timeout: -time.Second}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("expected error=%v, got %v", tt.wantErr, err)
			}
		})
	}
}

// chdir changes the working directory for the duration of the test and
// restores it on cleanup (equivalent to testing.T.Chdir from Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd failed: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Chdir failed: %v", err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(prev); err != nil {
			t.Fatalf("restoring working directory: %v", err)
		}
	})
}
