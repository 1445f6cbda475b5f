package config

import (
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Timeout != 30*time.Second {
		t.Errorf("Expected Timeout 30s, got %s", cfg.Timeout)
	}
	if cfg.Listen != ":8080" {
		t.Errorf("Expected Listen :8080, got %s", cfg.Listen)
	}
	if cfg.Binaries.AWS != "aws" || cfg.Binaries.Azure != "az" || cfg.Binaries.Gcloud != "gcloud" {
		t.Errorf("Unexpected default binaries: %+v", cfg.Binaries)
	}
	if cfg.MaxOutputKB <= 0 {
		t.Error("MaxOutputKB must default to a positive cap")
	}
}

func TestValidate(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config must validate, got %v", err)
	}

	bad := Default()
	bad.Timeout = 0
	if err := bad.Validate(); err == nil {
		t.Error("zero timeout must not validate")
	}

	bad = Default()
	bad.MaxOutputKB = -1
	if err := bad.Validate(); err == nil {
		t.Error("negative output cap must not validate")
	}

	bad = Default()
	bad.Listen = ""
	if err := bad.Validate(); err == nil {
		t.Error("empty listen address must not validate")
	}
}
