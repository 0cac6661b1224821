package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type sample struct {
	Name string `yaml:"name"`
	Port int    `yaml:"port"`
}

func (s *sample) Validate() error {
	if s.Port <= 0 {
		return errors.New("port must be positive")
	}
	return nil
}

func TestLoad_ExpandsEnv(t *testing.T) {
	t.Setenv("SAMPLE_NAME", "stickies")
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("name: ${SAMPLE_NAME}\nport: 9000\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := sample{Port: 1}
	if err := Load(path, &cfg); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Name != "stickies" || cfg.Port != 9000 {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestLoad_MissingFileKeepsDefaults(t *testing.T) {
	cfg := sample{Name: "default", Port: 8080}
	if err := Load(filepath.Join(t.TempDir(), "absent.yaml"), &cfg); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Name != "default" || cfg.Port != 8080 {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestLoad_ValidatesEvenWithoutFile(t *testing.T) {
	cfg := sample{}
	err := Load(filepath.Join(t.TempDir(), "absent.yaml"), &cfg)
	if err == nil || !strings.Contains(err.Error(), "validation") {
		t.Errorf("err = %v", err)
	}
}

func TestLoad_BadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("port: [unclosed"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg := sample{Port: 1}
	if err := Load(path, &cfg); err == nil {
		t.Error("expected parse error")
	}
}
